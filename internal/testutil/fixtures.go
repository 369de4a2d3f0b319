// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/civictriage/ticketsynth/internal/synth"
)

// FixedNow anchors submitted_at in fixtures.
var FixedNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

// Generator returns a seeded generator pinned to FixedNow.
func Generator(seed int64) *synth.Generator {
	return synth.NewGenerator(
		rand.New(rand.NewSource(seed)),
		synth.WithClock(func() time.Time { return FixedNow }),
	)
}

// Tickets generates n deterministic tickets with sequence numbers 1..n.
func Tickets(tb testing.TB, n int, seed int64) []synth.Ticket {
	tb.Helper()
	g := Generator(seed)
	out := make([]synth.Ticket, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, g.Generate(int64(i)))
	}
	return out
}

// Escalated returns a ticket that satisfies every escalation invariant.
func Escalated(seq int64) synth.Ticket {
	t := Generator(seq).Generate(seq)
	t.Category = synth.CategoryWaterSupply
	t.Location.Ward = synth.WardKurla
	t.WillEscalate = true
	t.PriorityScore = 0.8
	return t
}

// EncodeJSONL renders tickets the same way the jsonl sink does.
func EncodeJSONL(tb testing.TB, tickets []synth.Ticket) []byte {
	tb.Helper()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for i := range tickets {
		if err := enc.Encode(&tickets[i]); err != nil {
			tb.Fatalf("encode ticket %d: %v", i, err)
		}
	}
	return buf.Bytes()
}

// WriteFile writes data under a fresh temp dir and returns its path.
func WriteFile(tb testing.TB, name string, data []byte) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
	return path
}

// RequireEnv skips the test unless key is set, e.g. for integration targets.
func RequireEnv(tb testing.TB, key string) string {
	tb.Helper()
	v := os.Getenv(key)
	if v == "" {
		tb.Skipf("%s not set", key)
	}
	return v
}
