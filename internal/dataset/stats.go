package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/civictriage/ticketsynth/internal/synth"
)

// Stats aggregates a corpus.
type Stats struct {
	Total      int64
	Escalated  int64
	Malformed  int64
	ByCategory map[string]int64
	ByWard     map[string]int64
	ByChannel  map[string]int64
	ByLanguage map[string]int64

	scoreSum [2]float64 // [routine, escalated]
}

func NewStats() *Stats {
	return &Stats{
		ByCategory: make(map[string]int64),
		ByWard:     make(map[string]int64),
		ByChannel:  make(map[string]int64),
		ByLanguage: make(map[string]int64),
	}
}

func (s *Stats) Add(t *synth.Ticket) {
	s.Total++
	idx := 0
	if t.WillEscalate {
		s.Escalated++
		idx = 1
	}
	s.scoreSum[idx] += t.PriorityScore
	s.ByCategory[string(t.Category)]++
	s.ByWard[string(t.Location.Ward)]++
	s.ByChannel[string(t.Channel)]++
	s.ByLanguage[string(t.Language)]++
}

// Rate is the escalated fraction, 0 for an empty corpus.
func (s *Stats) Rate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Escalated) / float64(s.Total)
}

// MeanScore averages the priority score over escalated or routine tickets.
func (s *Stats) MeanScore(escalated bool) float64 {
	n, idx := s.Total-s.Escalated, 0
	if escalated {
		n, idx = s.Escalated, 1
	}
	if n == 0 {
		return 0
	}
	return s.scoreSum[idx] / float64(n)
}

// Collect reads every record from path. Lines that fail to decode are counted as malformed.
func Collect(ctx context.Context, path string) (*Stats, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	s := NewStats()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return s, nil
		}
		if err != nil {
			return nil, err
		}
		if rec.DecodeErr != nil {
			s.Malformed++
			continue
		}
		s.Add(&rec.Ticket)
	}
}

// WriteTo renders the stats as aligned text tables.
func (s *Stats) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	tw := tabwriter.NewWriter(cw, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Tickets\t%d\n", s.Total)
	fmt.Fprintf(tw, "Escalated\t%d\t%.2f%%\n", s.Escalated, s.Rate()*100)
	if s.Malformed > 0 {
		fmt.Fprintf(tw, "Malformed lines\t%d\n", s.Malformed)
	}
	fmt.Fprintf(tw, "Mean score (escalated)\t%.3f\n", s.MeanScore(true))
	fmt.Fprintf(tw, "Mean score (routine)\t%.3f\n", s.MeanScore(false))

	s.section(tw, "Category", s.ByCategory, nil)
	s.section(tw, "Ward", s.ByWard, nil)
	s.section(tw, "Channel", s.ByChannel, nil)
	s.section(tw, "Language", s.ByLanguage, languageName)

	if err := tw.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, cw.err
}

func (s *Stats) section(w io.Writer, title string, counts map[string]int64, label func(string) string) {
	fmt.Fprintf(w, "\n%s\tCount\tShare\n", title)
	for _, k := range slices.Sorted(maps.Keys(counts)) {
		name := k
		if label != nil {
			name = label(k)
		}
		share := 0.0
		if s.Total > 0 {
			share = float64(counts[k]) / float64(s.Total) * 100
		}
		fmt.Fprintf(w, "%s\t%d\t%.2f%%\n", name, counts[k], share)
	}
}

// languageName renders "mr" as "mr (Marathi)".
func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	return fmt.Sprintf("%s (%s)", code, display.English.Tags().Name(tag))
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
