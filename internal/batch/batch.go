// Package batch drives the generator over a run of sequence numbers.
package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/civictriage/ticketsynth/internal/synth"
	"github.com/civictriage/ticketsynth/internal/ticketnumber"
)

// DefaultCount is the size of the standard corpus.
const DefaultCount = 50000

// Sink receives tickets in generation order.
type Sink interface {
	Write(ctx context.Context, t *synth.Ticket) error
}

// Observer is notified after every ticket is written.
type Observer interface {
	Observe(t *synth.Ticket)
}

// Summary of a finished (or aborted) run.
type Summary struct {
	RunID     uuid.UUID
	Seed      int64
	Total     int64
	Escalated int64
	Duration  time.Duration
}

// Rate is the escalated fraction, 0 when nothing was generated.
func (s Summary) Rate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Escalated) / float64(s.Total)
}

// Lines are the two human-readable summary lines printed after a run.
func (s Summary) Lines() []string {
	return []string{
		fmt.Sprintf("Generated %d synthetic tickets", s.Total),
		fmt.Sprintf("Escalation rate: %.2f%%", s.Rate()*100),
	}
}

// Fprint writes Lines to w, one per line.
func (s Summary) Fprint(w io.Writer) error {
	for _, l := range s.Lines() {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

// Runner generates Count tickets and hands each to the sink.
type Runner struct {
	gen       *synth.Generator
	store     ticketnumber.CounterStore
	observers []Observer
	logger    *slog.Logger
	seed      int64
	progress  int64
}

// Option configures a Runner.
type Option func(*Runner)

// WithObserver adds an observer; observers run in registration order.
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observers = append(r.observers, o) }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithSeed records the seed the generator was built with in the Summary.
func WithSeed(seed int64) Option {
	return func(r *Runner) { r.seed = seed }
}

// WithCounterStore replaces the in-memory sequence counter.
func WithCounterStore(s ticketnumber.CounterStore) Option {
	return func(r *Runner) { r.store = s }
}

// WithProgressEvery logs a debug line every n tickets; 0 disables it.
func WithProgressEvery(n int64) Option {
	return func(r *Runner) { r.progress = n }
}

func NewRunner(gen *synth.Generator, opts ...Option) *Runner {
	r := &Runner{
		gen:      gen,
		store:    ticketnumber.NewMemStore(),
		logger:   slog.Default(),
		progress: 10000,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run generates count tickets. The first sink error stops the run; tickets
// already written stay written. The returned Summary covers what was written.
func (r *Runner) Run(ctx context.Context, count int64, sink Sink) (Summary, error) {
	sum := Summary{RunID: uuid.New(), Seed: r.seed}
	log := r.logger.With("run_id", sum.RunID.String())
	log.Info("starting batch", "count", count, "seed", r.seed)

	start := time.Now()

	for i := int64(0); i < count; i++ {
		if err := ctx.Err(); err != nil {
			sum.Duration = time.Since(start)
			return sum, err
		}
		seq, err := r.store.Add(ctx, 1)
		if err != nil {
			sum.Duration = time.Since(start)
			return sum, fmt.Errorf("failed to allocate sequence number: %w", err)
		}
		t := r.gen.Generate(seq)
		if err := sink.Write(ctx, &t); err != nil {
			sum.Duration = time.Since(start)
			log.Error("batch failed", "ticket_id", t.TicketID, "written", sum.Total, "error", err)
			return sum, fmt.Errorf("failed to write %s: %w", t.TicketID, err)
		}
		sum.Total++
		if t.WillEscalate {
			sum.Escalated++
		}
		for _, o := range r.observers {
			o.Observe(&t)
		}
		if r.progress > 0 && sum.Total%r.progress == 0 {
			log.Debug("progress", "written", sum.Total, "escalated", sum.Escalated)
		}
	}

	sum.Duration = time.Since(start)
	log.Info("batch complete", "total", sum.Total, "escalated", sum.Escalated, "duration", sum.Duration)
	return sum, nil
}
