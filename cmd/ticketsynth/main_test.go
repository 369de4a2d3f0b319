package main

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runContext(t, context.Background(), args...)
}

func runContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		n++
	}
	require.NoError(t, sc.Err())
	return n
}

var rateLine = regexp.MustCompile(`^Escalation rate: \d+\.\d{2}%$`)

func TestDefaultCommandGenerates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tickets.jsonl")

	out, err := run(t, "--count", "5", "--seed", "7", "-o", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Generated 5 synthetic tickets", lines[0])
	assert.Regexp(t, rateLine, lines[1])

	assert.Equal(t, 5, countLines(t, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte(`{"ticket_id":"TICKET-2024-000001",`)))
	assert.Contains(t, string(data), `"ticket_id":"TICKET-2024-000005"`)
}

func TestGenerateValidateStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.jsonl.gz")

	_, err := run(t, "generate", "--count", "200", "--seed", "11", "-o", path, "--year-tag", "2025")
	require.NoError(t, err)

	out, err := run(t, "validate", path, "--expect", "200", "--year-tag", "2025")
	require.NoError(t, err)
	assert.Contains(t, out, "Lines")

	_, err = run(t, "validate", path, "--expect", "201", "--year-tag", "2025")
	assert.ErrorIs(t, err, errValidation)

	// ids carry 2025, so the default year tag flags every line
	_, err = run(t, "validate", path)
	assert.ErrorIs(t, err, errValidation)

	out, err = run(t, "stats", "-o", path)
	require.NoError(t, err)
	assert.Regexp(t, `Tickets\s+200`, out)
	assert.Contains(t, out, "Sanitation")
}

func TestGenerateSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.db")

	out, err := run(t, "--count", "25", "--seed", "3", "-f", "sql", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Generated 25 synthetic tickets")

	db, err := sqlx.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM synthetic_ticket"))
	assert.Equal(t, 25, n)
	var seed int64
	require.NoError(t, db.Get(&seed, "SELECT seed FROM synthetic_batch"))
	assert.Equal(t, int64(3), seed)
}

func TestMetricsTextfile(t *testing.T) {
	dir := t.TempDir()
	prom := filepath.Join(dir, "metrics", "ticketsynth.prom")

	_, err := run(t, "--count", "10", "--seed", "5", "-o", filepath.Join(dir, "t.jsonl"), "--metrics-textfile", prom)
	require.NoError(t, err)

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ticketsynth_tickets_generated_total")
	assert.Contains(t, string(data), "ticketsynth_batch_duration_seconds")
}

func TestInvalidConfiguration(t *testing.T) {
	out := filepath.Join(t.TempDir(), "t.jsonl")
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{"format", []string{"--format", "csv", "-o", out}, "output.format must be one of"},
		{"count", []string{"--count", "0", "-o", out}, "generator.count must be >= 1"},
		{"compression", []string{"--compression", "brotli", "-o", out}, "output.compression must be one of"},
		{"missing config file", []string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, "failed to read config file"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := run(t, tc.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestConfigFileAndFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "ticketsynth.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
generator:
  count: 42
  seed: 9
output:
  format: xlsx
  redis:
    password: hunter2
`), 0o600))

	out, err := run(t, "config", "--config", cfgPath, "--seed", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "count: 42")
	assert.Contains(t, out, "seed: 10")
	assert.Contains(t, out, "format: xlsx")
	assert.Contains(t, out, redacted)
	assert.NotContains(t, out, "hunter2")
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("TICKETSYNTH_GENERATOR_YEAR_TAG", "2031")
	out, err := run(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, `year_tag: "2031"`)
}

func TestScheduleRejectsBadExpression(t *testing.T) {
	_, err := run(t, "schedule", "--cron", "whenever")
	assert.ErrorContains(t, err, "invalid schedule")
}

func TestScheduleNowRegenerates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nightly.jsonl")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := runContext(t, ctx, "schedule", "--cron", "@every 1h", "--now", "--timeout", "30s",
			"--count", "5", "--seed", "2", "-o", path)
		done <- err
	}()

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && bytes.Count(data, []byte("\n")) == 5
	}, 5*time.Second, 20*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("schedule did not stop after cancellation")
	}
	assert.Equal(t, 5, countLines(t, path))
}

func TestScheduleKeepsRunningAfterFailedNow(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err := runContext(t, ctx, "schedule", "--cron", "@every 1h", "--now",
		"--count", "5", "-o", filepath.Join(blocker, "sub", "t.jsonl"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond, "schedule returned before its context ended")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ticketsynth dev"))
	assert.Contains(t, out, "corpus format: 1")
}
