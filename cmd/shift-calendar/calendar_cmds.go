package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/username/shift-calendar/internal/calendar"
	"github.com/username/shift-calendar/internal/leave"
	"github.com/username/shift-calendar/internal/locale"
	"github.com/username/shift-calendar/internal/shift"
	"github.com/username/shift-calendar/pkg/dateutil"
)

func shiftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shift DATE",
		Short: "Print the rotation shift of a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateutil.ParseDate(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				kind, err := a.manager.Shift(ctx, date)
				if err != nil {
					return err
				}
				code := a.manager.Locale(ctx)
				cliPrintf("%s %s (%s)\n", dateutil.FormatDate(date), kind, shiftLabel(kind, code))
				return nil
			})
		},
	}
}

func dayCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "day DATE",
		Short: "Classify a single date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateutil.ParseDate(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				day, err := a.manager.Day(ctx, date)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(day)
				}
				code := a.manager.Locale(ctx)
				printDay(day, code)
				for _, e := range day.Entries {
					cliPrintf("    %s %s\n", e.Emoji, e.Name)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func monthCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "month YEAR MONTH",
		Short: "Print a month grouped by ISO week",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYear(args[0])
			if err != nil {
				return err
			}
			month, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid month %q", args[1])
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				view, err := a.manager.Month(ctx, year, time.Month(month))
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(view)
				}

				code := a.manager.Locale(ctx)
				cliPrintf("\n📅 %04d-%02d\n", view.Year, int(view.Month))
				cliPrintln("═══════════════════════════════════════════════════════")
				for _, week := range view.Weeks {
					cliPrintf("KW %02d  %s\n", week.Number, week.Start)
					for _, day := range week.Days {
						printDay(day, code)
					}
				}
				cliPrintf("\n  Vacation days: %d   Holidays: %d\n", view.Vacations, view.Holidays)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func holidaysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "holidays YEAR",
		Short: "List the holidays of a year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYear(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				code := a.manager.Locale(ctx)
				for _, h := range a.manager.Holidays(year) {
					cliPrintf("  %s  %s  %s\n", dateutil.FormatDate(h.Date), h.Date.Weekday().String()[:3], h.Name(code))
				}
				return nil
			})
		},
	}
}

func daysCmd() *cobra.Command {
	var audit bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "days FROM TO",
		Short: "Count chargeable leave days in a range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parseRange(args[0], args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				result, err := a.manager.Audit(ctx, from, to)
				if err != nil {
					return err
				}
				if asJSON {
					if audit {
						return printJSON(result)
					}
					return printJSON(map[string]float64{"total": result.Total})
				}

				if audit {
					cliPrintln("  Date       | Shift    | Weekend | Holiday | Amount")
					cliPrintln("-------------+----------+---------+---------+-------")
					for _, line := range result.Lines {
						cliPrintf("  %s | %-8s | %-7s | %-7s | %.1f\n",
							line.Day,
							line.Shift,
							yesNo(line.IsWeekend),
							yesNo(line.IsHoliday),
							line.Amount)
					}
				}
				cliPrintf("Chargeable days %s .. %s: %s\n",
					dateutil.FormatDate(from), dateutil.FormatDate(to), formatDays(result.Total))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&audit, "audit", false, "Print the per-day breakdown")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats YEAR",
		Short: "Print the shift statistics of a year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYear(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				stats, err := a.manager.Statistics(ctx, year)
				if err != nil {
					return err
				}
				code := a.manager.Locale(ctx)
				cliPrintf("\n📊 %d\n", stats.Year)
				cliPrintln("═══════════════════════════════════════════════════════")
				cliPrintf("  %-10s %4d\n", shiftLabel(shift.Early, code), stats.Early)
				cliPrintf("  %-10s %4d\n", shiftLabel(shift.Late, code), stats.Late)
				cliPrintf("  %-10s %4d\n", shiftLabel(shift.Night, code), stats.Night)
				cliPrintf("  %-10s %4d\n", locale.Label(locale.KeyVacation, code), stats.Vacation)
				cliPrintf("  %-10s %4d\n", leave.Sick.Label(code), stats.Sick)
				cliPrintf("  Work days  %4d of %d\n", stats.WorkDays, stats.TotalDays)
				return nil
			})
		},
	}
}

func overviewCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "List vacation periods per year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				years, err := a.manager.Overview(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(years)
				}
				code := a.manager.Locale(ctx)
				for _, y := range years {
					cliPrintf("\n🏖  %d: %s days\n", y.Year, formatDays(y.Total))
					for _, p := range y.Periods {
						cliPrintf("  %s .. %s  %5s  %-24s %s\n", p.From, p.To, formatDays(p.Days), p.Type.Label(code), p.Note)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func printDay(day calendar.DayClassification, code string) {
	label := shiftLabel(day.Shift, code)
	switch day.Kind {
	case calendar.KindVacation:
		label = locale.Label(locale.KeyVacation, code)
	case calendar.KindHoliday:
		label = day.Holiday.Name(code)
	}

	marker := "  "
	if day.IsToday {
		marker = "▶ "
	}
	line := fmt.Sprintf("%s%s %s  %-9s %s", marker, dateutil.FormatDate(day.Date), day.Date.Weekday().String()[:2], day.Shift, label)
	if text := day.NoteText(); text != "" {
		line += "  📝 " + text
	}
	cliPrintln(strings.TrimRight(line, " "))
}

func shiftLabel(k shift.Kind, code string) string {
	return locale.Label("shift."+string(k), code)
}

func parseYear(s string) (int, error) {
	year, err := strconv.Atoi(s)
	if err != nil || year < 1 || year > 9999 {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return year, nil
}

func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	from, err := dateutil.ParseDate(fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := dateutil.ParseDate(toStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func formatDays(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
