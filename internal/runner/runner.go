// Package runner executes tasks on cron schedules.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Parser accepts standard five-field expressions, an optional leading
// seconds field and descriptors such as @hourly or @every 30m.
var Parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateSchedule reports whether expr parses.
func ValidateSchedule(expr string) error {
	if _, err := Parser.Parse(expr); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	return nil
}

// Runner manages and executes scheduled tasks
type Runner struct {
	cron     *cron.Cron
	registry *TaskRegistry
	logger   *slog.Logger
}

// NewRunner creates a new task runner. A run that is still going when its
// next tick fires causes that tick to be skipped.
func NewRunner(registry *TaskRegistry, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "runner")
	return &Runner{
		cron: cron.New(
			cron.WithParser(Parser),
			cron.WithLogger(cronLogger{logger}),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger})),
		),
		registry: registry,
		logger:   logger,
	}
}

// Start schedules every registered task and blocks until ctx is done, then
// waits for scheduled runs in flight to finish.
func (r *Runner) Start(ctx context.Context) error {
	r.logger.Info("starting task runner")

	for _, name := range r.registry.Names() {
		task, _ := r.registry.Get(name)
		r.logger.Info("registering task", "task", name, "schedule", task.Schedule())

		_, err := r.cron.AddFunc(task.Schedule(), func() {
			r.executeTask(ctx, task)
		})
		if err != nil {
			return fmt.Errorf("failed to schedule task %s: %w", name, err)
		}
	}

	r.cron.Start()
	r.logger.Info("task runner started")

	<-ctx.Done()
	r.logger.Info("context cancelled")
	r.Stop()
	return nil
}

// Trigger runs the named task once, immediately, with the same timeout and
// logging as a scheduled run.
func (r *Runner) Trigger(ctx context.Context, name string) error {
	task, ok := r.registry.Get(name)
	if !ok {
		return fmt.Errorf("unknown task %q", name)
	}
	return r.executeTask(ctx, task)
}

// executeTask runs a single task with timeout and error handling
func (r *Runner) executeTask(ctx context.Context, task Task) error {
	taskCtx := ctx
	if d := task.Timeout(); d > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	r.logger.Info("executing task", "task", task.Name())

	start := time.Now()
	err := task.Run(taskCtx)
	duration := time.Since(start)

	if err != nil {
		r.logger.Error("task failed", "task", task.Name(), "duration", duration, "error", err)
	} else {
		r.logger.Info("task completed", "task", task.Name(), "duration", duration)
	}
	return err
}

// Stop gracefully shuts down the runner
func (r *Runner) Stop() {
	r.logger.Info("stopping task runner")

	// Stop accepting new runs and wait for running ones to complete
	<-r.cron.Stop().Done()

	r.logger.Info("task runner stopped")
}

// cronLogger routes cron's own messages into slog.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}
