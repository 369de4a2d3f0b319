package ticketnumber

import (
	"context"
	"errors"
)

// ErrUnknownGenerator is returned by Resolve for an unrecognised scheme name.
var ErrUnknownGenerator = errors.New("unknown ticket number generator")

// ErrMalformed is returned by Parse when an identifier was not produced by the generator.
var ErrMalformed = errors.New("malformed ticket number")

// Generator defines contract for ticket number generators.
type Generator interface {
	Name() string
	// Format renders the identifier for a 1-based sequence number.
	Format(seq int64) string
	// Parse recovers the sequence number from an identifier produced by Format.
	Parse(id string) (int64, error)
}

// CounterStore abstraction over the sequence counter.
type CounterStore interface {
	// Add returns next counter given offset (>=1).
	Add(ctx context.Context, offset int64) (int64, error)
}

// Config needed by generators.
type Config struct {
	Prefix         string
	YearTag        string
	MinCounterSize int
}

const (
	defaultPrefix         = "TICKET"
	defaultYearTag        = "2024"
	defaultMinCounterSize = 6
)

func (c Config) withDefaults() Config {
	if c.Prefix == "" {
		c.Prefix = defaultPrefix
	}
	if c.MinCounterSize <= 0 {
		c.MinCounterSize = defaultMinCounterSize
	}
	return c
}
