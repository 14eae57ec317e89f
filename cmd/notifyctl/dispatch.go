package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"
	_ "time/tzdata"

	"pride-notify/cmd/bootstrap"
	"pride-notify/internal/domain/notification"
	resdto "pride-notify/internal/handler/dto/response"
	"pride-notify/internal/usecase/dispatch"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func dispatchCmd() *cobra.Command {
	var bulk bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "dispatch [category]",
		Short: "Run one dispatch for a category now",
		Long: `Fetches, sends and records one batch for the category using the same
configuration as the server. No retry is scheduled: a failed batch is
reported and the command exits non-zero.

Categories: loans_due, birthdays, group_loans, atm_expiry, escrow, ledger_report, custom`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := notification.LookupCategory(args[0]); err != nil {
				return err
			}

			var orch *dispatch.Orchestrator
			app := fx.New(
				bootstrap.CoreModule,
				fx.Populate(&orch),
				fx.NopLogger,
			)
			startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := app.Start(startCtx); err != nil {
				return err
			}
			defer func() {
				stopCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
				defer stop()
				_ = app.Stop(stopCtx)
			}()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancelRun := context.WithTimeout(ctx, timeout)
			defer cancelRun()

			mode := dispatch.RecordPerMessage
			if bulk {
				mode = dispatch.RecordBulk
			}
			res, err := orch.Dispatch(ctx, args[0], mode)
			if res != nil {
				if perr := printResult(cmd.OutOrStdout(), resdto.FromBatchResult(res)); perr != nil {
					return perr
				}
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&bulk, "bulk", false, "Record all outcomes in one insert after the batch")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Hour, "Give up on the batch after this long")
	return cmd
}

func printResult(w io.Writer, res *resdto.BatchResultResponse) error {
	if outputFmt == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "CATEGORY\t%s\n", res.Category)
	fmt.Fprintf(tw, "RUN\t%s\n", res.RunID)
	fmt.Fprintf(tw, "STATE\t%s\n", res.State)
	fmt.Fprintf(tw, "FETCHED\t%d\n", res.Fetched)
	fmt.Fprintf(tw, "SENT\t%d\n", res.Sent)
	fmt.Fprintf(tw, "FAILED\t%d\n", res.Failed)
	fmt.Fprintf(tw, "REJECTED\t%d\n", len(res.Rejected))
	fmt.Fprintf(tw, "DURATION\t%dms\n", res.DurationMillis)
	if res.Error != "" {
		fmt.Fprintf(tw, "ERROR\t%s\n", res.Error)
	}
	return tw.Flush()
}
