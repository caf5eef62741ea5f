package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"
	"github.com/username/shift-calendar/internal/leave"
)

func requestCmd() *cobra.Command {
	var typeCode string
	var reason string
	var remark string
	var outPath string

	cmd := &cobra.Command{
		Use:   "request FROM TO",
		Short: "Export a leave request for the configured profile",
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
				req, err := a.manager.NewRequest(ctx, leave.RequestInput{
					Start:  from,
					End:    to,
					Type:   vt,
					Reason: reason,
					Remark: remark,
				})
				if err != nil {
					return err
				}
				return writeJSONFile(outPath, req)
			})
		},
	}

	cmd.Flags().StringVarP(&typeCode, "type", "t", "1", "Vacation type 1-7")
	cmd.Flags().StringVar(&reason, "reason", "", "Reason (required for type 5)")
	cmd.Flags().StringVar(&remark, "remark", "", "Additional remark")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func decideCmd() *cobra.Command {
	var approve bool
	var reject bool
	var reason string
	var signature string
	var outPath string
	var apply bool

	cmd := &cobra.Command{
		Use:   "decide REQUEST_FILE",
		Short: "Approve or reject an exported leave request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if approve == reject {
				return errors.New("exactly one of --approve and --reject is required")
			}
			status := leave.StatusApproved
			if reject {
				status = leave.StatusRejected
			}

			var req leave.Request
			if err := readJSONFile(args[0], &req); err != nil {
				return err
			}
			d, err := leave.Decide(&req, status, reason, signature, time.Now())
			if err != nil {
				return err
			}
			if err := writeJSONFile(outPath, d); err != nil {
				return err
			}
			if !apply {
				return nil
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				return a.manager.ApplyDecision(ctx, d)
			})
		},
	}

	cmd.Flags().BoolVar(&approve, "approve", false, "Approve the request")
	cmd.Flags().BoolVar(&reject, "reject", false, "Reject the request")
	cmd.Flags().StringVar(&reason, "reason", "", "Rejection reason")
	cmd.Flags().StringVar(&signature, "signature", "", "Manager signature (data URL)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&apply, "apply", false, "Also apply the decision to the local calendar")
	return cmd
}

func applyDecisionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply-decision DECISION_FILE",
		Short: "Book or remove the range of a received decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var d leave.Decision
			if err := readJSONFile(args[0], &d); err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.manager.ApplyDecision(ctx, &d); err != nil {
					return err
				}
				cliPrintf("✅ Decision %s (%s) applied\n", d.RequestID, d.Status)
				return nil
			})
		},
	}
}

// readJSONFile decodes a JSON file; comments and trailing commas are allowed
func readJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
