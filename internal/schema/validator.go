package schema

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/xeipuuv/gojsonschema"

	"github.com/civictriage/ticketsynth/internal/dataset"
	"github.com/civictriage/ticketsynth/internal/synth"
	"github.com/civictriage/ticketsynth/internal/ticketnumber"
)

const defaultMaxIssues = 100

// Issue is one rule violation. Line 0 means the corpus as a whole.
type Issue struct {
	Line     int64
	TicketID string
	Field    string
	Message  string
}

func (i Issue) String() string {
	if i.Line == 0 {
		return fmt.Sprintf("corpus: %s: %s", i.Field, i.Message)
	}
	return fmt.Sprintf("line %d (%s): %s: %s", i.Line, i.TicketID, i.Field, i.Message)
}

// Report summarises a validation pass. Issues holds at most the configured
// maximum; IssueCount is the true total.
type Report struct {
	Lines      int64
	Escalated  int64
	IssueCount int64
	Issues     []Issue
	maxIssues  int
}

// OK reports whether no issue was found.
func (r *Report) OK() bool { return r.IssueCount == 0 }

// Truncated reports whether issues were dropped from Issues.
func (r *Report) Truncated() bool { return r.IssueCount > int64(len(r.Issues)) }

func (r *Report) add(i Issue) {
	r.IssueCount++
	if len(r.Issues) < r.maxIssues {
		r.Issues = append(r.Issues, i)
	}
}

// Print writes the issue list followed by totals.
func (r *Report) Print(w io.Writer) error {
	for _, i := range r.Issues {
		if _, err := fmt.Fprintln(w, i); err != nil {
			return err
		}
	}
	if r.Truncated() {
		fmt.Fprintf(w, "... %d more issues not shown\n", r.IssueCount-int64(len(r.Issues)))
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Lines\t%d\n", r.Lines)
	fmt.Fprintf(tw, "Escalated\t%d\n", r.Escalated)
	fmt.Fprintf(tw, "Issues\t%d\n", r.IssueCount)
	return tw.Flush()
}

// Validator checks corpora line by line.
type Validator struct {
	schema    *gojsonschema.Schema
	ids       ticketnumber.Generator
	maxIssues int
}

// Option configures a Validator.
type Option func(*Validator)

// WithMaxIssues caps how many issues a Report keeps.
func WithMaxIssues(n int) Option {
	return func(v *Validator) { v.maxIssues = n }
}

// New compiles the ticket schema. ids must be the scheme the corpus was generated with.
func New(ids ticketnumber.Generator, opts ...Option) (*Validator, error) {
	s, err := compileTicketSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile ticket schema: %w", err)
	}
	v := &Validator{schema: s, ids: ids, maxIssues: defaultMaxIssues}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// ValidateFile opens path (compressed or not) and validates it. expected <= 0 skips the line count check.
func (v *Validator) ValidateFile(ctx context.Context, path string, expected int64) (*Report, error) {
	r, err := dataset.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return v.Validate(ctx, r, expected)
}

// Validate consumes r. Only read errors abort; rule violations end up in the Report.
func (v *Validator) Validate(ctx context.Context, r *dataset.Reader, expected int64) (*Report, error) {
	rep := &Report{maxIssues: v.maxIssues}
	seen := make(map[string]int64)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rep.Lines = rec.Line
		v.checkRecord(rep, &rec, seen)
	}

	if expected > 0 && rep.Lines != expected {
		rep.add(Issue{Field: "lines", Message: fmt.Sprintf("expected %d lines, found %d", expected, rep.Lines)})
	}
	return rep, nil
}

func (v *Validator) checkRecord(rep *Report, rec *dataset.Record, seen map[string]int64) {
	id := rec.Ticket.TicketID

	res, err := v.schema.Validate(gojsonschema.NewBytesLoader(rec.Raw))
	if err != nil {
		rep.add(Issue{Line: rec.Line, TicketID: id, Field: "(root)", Message: "invalid JSON: " + err.Error()})
		return
	}
	for _, e := range res.Errors() {
		rep.add(Issue{Line: rec.Line, TicketID: id, Field: e.Field(), Message: e.Description()})
	}
	if rec.DecodeErr != nil {
		if res.Valid() {
			rep.add(Issue{Line: rec.Line, TicketID: id, Field: "(root)", Message: rec.DecodeErr.Error()})
		}
		return
	}

	if prev, dup := seen[id]; dup {
		rep.add(Issue{Line: rec.Line, TicketID: id, Field: "ticket_id", Message: fmt.Sprintf("duplicate of line %d", prev)})
	} else {
		seen[id] = rec.Line
	}
	if seq, err := v.ids.Parse(id); err != nil {
		rep.add(Issue{Line: rec.Line, TicketID: id, Field: "ticket_id", Message: err.Error()})
	} else if seq != rec.Line {
		rep.add(Issue{Line: rec.Line, TicketID: id, Field: "ticket_id", Message: fmt.Sprintf("sequence %d out of order, expected %d", seq, rec.Line)})
	}

	if rec.Ticket.WillEscalate {
		rep.Escalated++
	}
	for _, i := range CheckLabels(&rec.Ticket) {
		i.Line = rec.Line
		rep.add(i)
	}
}

// CheckLabels verifies the escalation label against category, ward and score.
func CheckLabels(t *synth.Ticket) []Issue {
	var issues []Issue
	add := func(field, format string, args ...any) {
		issues = append(issues, Issue{TicketID: t.TicketID, Field: field, Message: fmt.Sprintf(format, args...)})
	}
	score := t.PriorityScore
	if t.WillEscalate {
		if !t.Category.EscalationProne() {
			add("category", "escalated ticket has category %q", t.Category)
		}
		if !t.Location.Ward.HighDensity() {
			add("location.ward", "escalated ticket is in low-density ward %q", t.Location.Ward)
		}
		if score < synth.EscalatedScoreMin || score > synth.EscalatedScoreMax {
			add("_label_priority_score", "escalated score %v outside [%v, %v]", score, synth.EscalatedScoreMin, synth.EscalatedScoreMax)
		}
	} else if score < synth.RoutineScoreMin || score > synth.RoutineScoreMax {
		add("_label_priority_score", "routine score %v outside [%v, %v]", score, synth.RoutineScoreMin, synth.RoutineScoreMax)
	}
	return issues
}
