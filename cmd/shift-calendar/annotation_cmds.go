package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/username/shift-calendar/internal/annotation"
	"github.com/username/shift-calendar/internal/leave"
	"github.com/username/shift-calendar/pkg/dateutil"
)

func vacationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vacation",
		Short: "Book or remove vacation ranges",
	}
	cmd.AddCommand(vacationAddCmd(), vacationDeleteCmd())
	return cmd
}

func vacationAddCmd() *cobra.Command {
	var typeCode string
	var remark string

	cmd := &cobra.Command{
		Use:   "add FROM TO",
		Short: "Book a vacation range on every chargeable day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parseRange(args[0], args[1])
			if err != nil {
				return err
			}
			vt, err := leave.ParseVacationType(typeCode)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				res, err := a.manager.AddVacation(ctx, leave.Booking{
					Start:  from,
					End:    to,
					Type:   vt,
					Remark: remark,
				})
				if err != nil {
					return err
				}
				cliPrintf("✅ %s booked: %s chargeable day(s), %d flagged, %d entries\n",
					vt.Label(a.manager.Locale(ctx)), formatDays(res.Chargeable), res.Flagged, res.Entries)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&typeCode, "type", "t", "1", "Vacation type 1-7")
	cmd.Flags().StringVar(&remark, "remark", "", "Remark appended to the entry name")
	return cmd
}

func vacationDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete FROM TO",
		Short: "Remove vacation flags and vacation entries in a range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parseRange(args[0], args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				n, err := a.manager.DeleteVacation(ctx, from, to)
				if err != nil {
					return err
				}
				cliPrintf("✅ Cleared %d day(s)\n", n)
				return nil
			})
		},
	}
}

func noteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage day notes",
	}
	cmd.AddCommand(noteSetCmd(), noteDeleteCmd())
	return cmd
}

func noteSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set DATE TEXT...",
		Short: "Attach a note to a date",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateutil.ParseDate(args[0])
			if err != nil {
				return err
			}
			text := strings.Join(args[1:], " ")
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.manager.SetNote(ctx, date, text); err != nil {
					return err
				}
				cliPrintf("✅ Note saved for %s\n", dateutil.FormatDate(date))
				return nil
			})
		},
	}
}

func noteDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete DATE",
		Short: "Remove the note of a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateutil.ParseDate(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.manager.DeleteNote(ctx, date); err != nil {
					return err
				}
				cliPrintf("✅ Note removed from %s\n", dateutil.FormatDate(date))
				return nil
			})
		},
	}
}

func importantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "important",
		Short: "Manage important dates",
	}
	cmd.AddCommand(importantListCmd(), importantAddCmd(), importantDeleteCmd())
	return cmd
}

func importantListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List important dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				entries, err := a.manager.ImportantDates(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(entries)
				}
				for _, e := range entries {
					recurring := ""
					if e.Recurring {
						recurring = " (yearly)"
					}
					cliPrintf("  #%d  %s  %s %s%s\n", e.ID, e.Date, e.Emoji, e.Name, recurring)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func importantAddCmd() *cobra.Command {
	var emoji string
	var recurring bool

	cmd := &cobra.Command{
		Use:   "add DATE NAME...",
		Short: "Add an important date",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				stored, err := a.manager.AddImportantDate(ctx, annotation.ImportantDate{
					Date:      args[0],
					Name:      strings.Join(args[1:], " "),
					Emoji:     emoji,
					Recurring: recurring,
				})
				if err != nil {
					return err
				}
				cliPrintf("✅ Added #%d on %s\n", stored.ID, stored.Date)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&emoji, "emoji", "⭐", "Emoji shown next to the name")
	cmd.Flags().BoolVar(&recurring, "recurring", false, "Repeat every year on the same day")
	return cmd
}

func importantDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Remove an important date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				removed, err := a.manager.DeleteImportantDate(ctx, annotation.EntryID(id))
				if err != nil {
					return err
				}
				cliPrintf("✅ Removed #%d %s (%s)\n", removed.ID, removed.Name, removed.Date)
				return nil
			})
		},
	}
}
