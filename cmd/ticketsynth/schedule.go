package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/civictriage/ticketsynth/internal/runner"
)

const regenerateTask = "regenerate"

func newScheduleCmd(a *app) *cobra.Command {
	var (
		expr    string
		now     bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Regenerate the corpus on a cron schedule",
		Long: `Schedule keeps running and regenerates the configured output every time
the cron expression fires. Each run overwrites the previous output. With a
fixed --seed every run produces the same tickets apart from submitted_at.
A failed run, including the one started by --now, is logged and the
schedule keeps going.

Expressions take five fields, an optional leading seconds field, or a
descriptor such as @daily or @every 6h.`,
		Example: `  ticketsynth schedule --cron "0 3 * * *" -o data/nightly.jsonl.zst
  ticketsynth schedule --cron "@every 1h" --now -f redis`,
		Args: cobra.NoArgs,
		PreRunE: func(*cobra.Command, []string) error {
			return runner.ValidateSchedule(expr)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := runner.NewTaskRegistry()
			reg.Register(&runner.FuncTask{
				TaskName:    regenerateTask,
				Cron:        expr,
				MaxDuration: timeout,
				Fn: func(ctx context.Context) error {
					sum, err := generate(ctx, a.cfg, a.log)
					if err != nil {
						return err
					}
					a.log.Info("regenerated corpus",
						"run_id", sum.RunID.String(),
						"total", sum.Total,
						"escalation_rate", sum.Rate(),
					)
					return nil
				},
			})

			r := runner.NewRunner(reg, a.log)
			if now {
				// failures are logged by the runner
				_ = r.Trigger(cmd.Context(), regenerateTask)
			}
			return r.Start(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&expr, "cron", "@daily", "cron expression")
	cmd.Flags().BoolVar(&now, "now", false, "run once immediately before waiting for the schedule")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "maximum duration of one run; 0 disables")
	return cmd
}
