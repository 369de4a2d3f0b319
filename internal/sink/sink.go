// Package sink writes generated tickets to their destination.
//
// Every Writer receives tickets in generation order. Nothing is retried and a
// failed run leaves whatever was already written in place.
package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/civictriage/ticketsynth/internal/config"
	"github.com/civictriage/ticketsynth/internal/synth"
)

// ErrUnknownFormat is returned by Open for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// Writer consumes tickets one at a time.
type Writer interface {
	Write(ctx context.Context, t *synth.Ticket) error
	Close() error
}

// RunInfo describes a finished batch.
type RunInfo struct {
	RunID      string    `db:"run_id"`
	Seed       int64     `db:"seed"`
	Total      int64     `db:"total"`
	Escalated  int64     `db:"escalated"`
	FinishedAt time.Time `db:"finished_at"`
}

// RunRecorder is implemented by writers that persist batch metadata next to the tickets.
type RunRecorder interface {
	RecordRun(ctx context.Context, info RunInfo) error
}

// Open returns the writer selected by cfg.Format.
func Open(ctx context.Context, cfg config.OutputConfig) (Writer, error) {
	switch cfg.Format {
	case "jsonl", "":
		c, err := ParseCompression(cfg.Compression)
		if err != nil {
			return nil, err
		}
		return NewJSONL(cfg.Path, c)
	case "sql":
		return OpenSQL(ctx, cfg.SQL.Driver, cfg.ResolvedDSN(), cfg.BatchSize, cfg.SQL.Truncate)
	case "xlsx":
		return NewXLSX(cfg.Path)
	case "redis":
		return OpenRedis(ctx, cfg.Redis, cfg.BatchSize)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, cfg.Format)
	}
}
