package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/username/shift-calendar/internal/backup"
	"github.com/username/shift-calendar/internal/server"
	"github.com/username/shift-calendar/internal/shift"
	"github.com/username/shift-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

func rotationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rotation",
		Short: "Show or change the shift rotation",
	}
	cmd.AddCommand(rotationShowCmd(), rotationSetCmd(), rotationPresetCmd(), rotationPresetsCmd())
	return cmd
}

func rotationShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the active rotation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				r, err := a.manager.Rotation(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(r.Definition())
				}
				printDefinition(r.Definition())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func rotationSetCmd() *cobra.Command {
	var referenceDate string
	var referenceShift string

	cmd := &cobra.Command{
		Use:   "set SEQUENCE",
		Short: "Store a custom rotation, e.g. \"F,F,S,S,N,N,Frei,Frei\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := shift.ParseSequence(args[0])
			if err != nil {
				return err
			}
			refDate, err := dateutil.ParseDate(referenceDate)
			if err != nil {
				return fmt.Errorf("--reference-date: %w", err)
			}
			refKind, err := shift.ParseKind(referenceShift)
			if err != nil {
				return fmt.Errorf("--reference-shift: %w", err)
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				r, err := a.manager.SetRotation(ctx, shift.Definition{
					Sequence:       seq,
					ReferenceDate:  refDate,
					ReferenceShift: refKind,
				})
				if err != nil {
					return err
				}
				cliPrintln("✅ Rotation updated")
				printDefinition(r.Definition())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&referenceDate, "reference-date", "", "Date on which the reference shift starts")
	cmd.Flags().StringVar(&referenceShift, "reference-shift", "", "Shift kind on the reference date")
	_ = cmd.MarkFlagRequired("reference-date")
	_ = cmd.MarkFlagRequired("reference-shift")
	return cmd
}

func rotationPresetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preset NAME",
		Short: "Store a preset as the rotation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				r, err := a.manager.ApplyPreset(ctx, args[0])
				if err != nil {
					return err
				}
				cliPrintf("✅ Rotation set to preset %s\n", args[0])
				printDefinition(r.Definition())
				return nil
			})
		},
	}
}

func rotationPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range shift.PresetNames() {
				p, err := shift.LookupPreset(name)
				if err != nil {
					return err
				}
				cliPrintf("  %-14s %2d days  %s\n", p.Name, len(p.Definition.Sequence), p.Description)
			}
			return nil
		},
	}
}

func printDefinition(def shift.Definition) {
	cliPrintf("  Sequence:        %s\n", shift.FormatSequence(def.Sequence))
	cliPrintf("  Length:          %d\n", len(def.Sequence))
	cliPrintf("  Reference date:  %s\n", dateutil.FormatDate(def.ReferenceDate))
	cliPrintf("  Reference shift: %s\n", def.ReferenceShift)
}

func localeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locale [CODE]",
		Short: "Show or store the display locale (de, en)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if len(args) == 1 {
					if err := a.manager.SetLocale(ctx, args[0]); err != nil {
						return err
					}
				}
				cliPrintln(a.manager.Locale(ctx))
				return nil
			})
		},
	}
}

func backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup FILE",
		Short: "Export the full calendar state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				b, err := a.manager.Backup(ctx)
				if err != nil {
					return err
				}
				if err := backup.NewFile(args[0], logger).Save(b); err != nil {
					return err
				}
				cliPrintf("✅ Backup written to %s\n", args[0])
				return nil
			})
		},
	}
}

func restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore FILE",
		Short: "Replace the calendar state with a backup (current or legacy format)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := backup.NewFile(args[0], logger).Load()
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.manager.Restore(ctx, b); err != nil {
					return err
				}
				cliPrintf("✅ Restored %d vacation day(s), %d important date(s), %d note(s)\n",
					len(b.Vacations), len(b.ImportantDates), len(b.Notes))
				return nil
			})
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calendar over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				listen := a.cfg.Server.GetAddr()
				if addr != "" {
					listen = addr
				}
				logger.Info("Starting server", zap.String("addr", listen))
				srv := server.New(a.manager, listen, a.cfg.Server.GetShutdownTimeout(), logger)
				return srv.Run(ctx)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}
