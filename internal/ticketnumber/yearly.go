package ticketnumber

import (
	"fmt"
	"strconv"
	"strings"
)

// Yearly: Prefix + "-" + YearTag + "-" + zero-padded counter (min 6), e.g. TICKET-2024-000001.
type Yearly struct{ cfg Config }

func NewYearly(cfg Config) *Yearly {
	cfg = cfg.withDefaults()
	if cfg.YearTag == "" {
		cfg.YearTag = defaultYearTag
	}
	return &Yearly{cfg: cfg}
}

func (g *Yearly) Name() string { return "Yearly" }

func (g *Yearly) Format(seq int64) string {
	return fmt.Sprintf("%s-%s-%0*d", g.cfg.Prefix, g.cfg.YearTag, g.cfg.MinCounterSize, seq)
}

func (g *Yearly) Parse(id string) (int64, error) {
	return parseCounter(g, id, g.cfg.Prefix+"-"+g.cfg.YearTag+"-")
}

// parseCounter strips head from id, reads the counter and insists the id is in
// the canonical form Format would have produced for it.
func parseCounter(g Generator, id, head string) (int64, error) {
	rest, ok := strings.CutPrefix(id, head)
	if !ok || rest == "" {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, id)
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || n < 1 || g.Format(n) != id {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, id)
	}
	return n, nil
}
