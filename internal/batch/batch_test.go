package batch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civictriage/ticketsynth/internal/logger"
	"github.com/civictriage/ticketsynth/internal/synth"
	"github.com/civictriage/ticketsynth/internal/testutil"
	"github.com/civictriage/ticketsynth/internal/ticketnumber"
)

type memSink struct {
	tickets []synth.Ticket
	failAt  int
}

func (m *memSink) Write(_ context.Context, t *synth.Ticket) error {
	if m.failAt > 0 && len(m.tickets)+1 == m.failAt {
		return errors.New("disk full")
	}
	m.tickets = append(m.tickets, *t)
	return nil
}

type countingObserver struct{ n int }

func (c *countingObserver) Observe(*synth.Ticket) { c.n++ }

func newRunner(seed int64, opts ...Option) *Runner {
	opts = append([]Option{WithLogger(logger.Discard()), WithSeed(seed)}, opts...)
	return NewRunner(testutil.Generator(seed), opts...)
}

func TestRunFive(t *testing.T) {
	sink := &memSink{}
	obs := &countingObserver{}

	sum, err := newRunner(1, WithObserver(obs)).Run(context.Background(), 5, sink)
	require.NoError(t, err)

	require.Len(t, sink.tickets, 5)
	for i, tk := range sink.tickets {
		assert.Equal(t, ticketnumber.NewYearly(ticketnumber.Config{}).Format(int64(i+1)), tk.TicketID)
	}
	assert.Equal(t, "TICKET-2024-000001", sink.tickets[0].TicketID)
	assert.Equal(t, "TICKET-2024-000005", sink.tickets[4].TicketID)
	assert.Equal(t, int64(5), sum.Total)
	assert.Equal(t, 5, obs.n)
	assert.Equal(t, int64(1), sum.Seed)
	assert.NotEqual(t, uuid.Nil, sum.RunID)
	assert.Equal(t, "Generated 5 synthetic tickets", sum.Lines()[0])
}

func TestRunMatchesGenerator(t *testing.T) {
	sink := &memSink{}
	sum, err := newRunner(99).Run(context.Background(), 300, sink)
	require.NoError(t, err)

	want := testutil.Tickets(t, 300, 99)
	assert.Equal(t, want, sink.tickets)

	var escalated int64
	for _, tk := range want {
		if tk.WillEscalate {
			escalated++
		}
	}
	assert.Equal(t, escalated, sum.Escalated)
}

func TestRunStopsAtFirstSinkError(t *testing.T) {
	sink := &memSink{failAt: 4}
	sum, err := newRunner(1).Run(context.Background(), 10, sink)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TICKET-2024-000004")
	assert.Contains(t, err.Error(), "disk full")
	assert.Len(t, sink.tickets, 3)
	assert.Equal(t, int64(3), sum.Total)
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := &memSink{}
	_, err := newRunner(1).Run(ctx, 10, sink)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sink.tickets)
}

func TestRunContinuesExternalCounter(t *testing.T) {
	store := ticketnumber.NewMemStore()
	_, _ = store.Add(context.Background(), 10)
	sink := &memSink{}
	_, err := newRunner(1, WithCounterStore(store)).Run(context.Background(), 2, sink)
	require.NoError(t, err)
	assert.Equal(t, "TICKET-2024-000011", sink.tickets[0].TicketID)
	assert.Equal(t, "TICKET-2024-000012", sink.tickets[1].TicketID)
}

func TestSummary(t *testing.T) {
	testCases := []struct {
		name      string
		total     int64
		escalated int64
		want      []string
	}{
		{
			name:      "two decimal percentage",
			total:     1000,
			escalated: 246,
			want:      []string{"Generated 1000 synthetic tickets", "Escalation rate: 24.60%"},
		},
		{
			name:      "rounds",
			total:     50000,
			escalated: 1157,
			want:      []string{"Generated 50000 synthetic tickets", "Escalation rate: 2.31%"},
		},
		{
			name:      "none escalated",
			total:     5,
			escalated: 0,
			want:      []string{"Generated 5 synthetic tickets", "Escalation rate: 0.00%"},
		},
		{
			name: "empty",
			want: []string{"Generated 0 synthetic tickets", "Escalation rate: 0.00%"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := Summary{Total: tc.total, Escalated: tc.escalated, Duration: time.Second}
			assert.Equal(t, tc.want, s.Lines())
		})
	}
}
