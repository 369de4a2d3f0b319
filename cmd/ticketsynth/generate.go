package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/civictriage/ticketsynth/internal/batch"
	"github.com/civictriage/ticketsynth/internal/config"
	"github.com/civictriage/ticketsynth/internal/metrics"
	"github.com/civictriage/ticketsynth/internal/sink"
	"github.com/civictriage/ticketsynth/internal/synth"
	"github.com/civictriage/ticketsynth/internal/ticketnumber"
)

func newGenerateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate a corpus and print the summary",
		Example: `  ticketsynth generate
  ticketsynth generate --count 1000 --seed 42 -o data/sample.jsonl.gz
  ticketsynth generate -f sql -o data/tickets.db`,
		Args: cobra.NoArgs,
		RunE: a.runGenerate,
	}
}

func (a *app) runGenerate(cmd *cobra.Command, _ []string) error {
	sum, err := generate(cmd.Context(), a.cfg, a.log)
	if err != nil {
		return err
	}
	return sum.Fprint(a.out)
}

// generate performs one full run as described by cfg.
func generate(ctx context.Context, cfg *config.Config, log *slog.Logger) (batch.Summary, error) {
	ids, err := ticketnumber.Resolve(cfg.Generator.IDScheme, ticketnumber.Config{
		Prefix:         cfg.Generator.IDPrefix,
		YearTag:        cfg.Generator.YearTag,
		MinCounterSize: cfg.Generator.IDWidth,
	})
	if err != nil {
		return batch.Summary{}, err
	}

	rng, seed := synth.NewRand(cfg.Generator.Seed)
	if cfg.Generator.Seed == 0 {
		log.Info("no seed configured, using a random one", "seed", seed)
	}
	gen := synth.NewGenerator(rng, synth.WithTicketNumbers(ids))

	w, err := sink.Open(ctx, cfg.Output)
	if err != nil {
		return batch.Summary{}, fmt.Errorf("failed to open %s output: %w", cfg.Output.Format, err)
	}

	rec := metrics.NewRecorder()
	runner := batch.NewRunner(gen,
		batch.WithObserver(rec),
		batch.WithLogger(log),
		batch.WithSeed(seed),
	)
	sum, runErr := runner.Run(ctx, cfg.Generator.Count, w)

	if runErr == nil {
		if rr, ok := w.(sink.RunRecorder); ok {
			runErr = rr.RecordRun(ctx, sink.RunInfo{
				RunID:      sum.RunID.String(),
				Seed:       sum.Seed,
				Total:      sum.Total,
				Escalated:  sum.Escalated,
				FinishedAt: time.Now().UTC(),
			})
		}
	}
	closeErr := w.Close()
	if runErr != nil {
		return sum, runErr
	}
	if closeErr != nil {
		return sum, fmt.Errorf("failed to close output: %w", closeErr)
	}

	rec.ObserveBatch(sum.Duration)
	if cfg.Metrics.Textfile != "" {
		if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return sum, err
		}
	}
	log.Info("output written", "format", cfg.Output.Format, "path", cfg.Output.Path)
	return sum, nil
}
