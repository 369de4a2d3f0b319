package ticketnumber

import "fmt"

// Sequential drops the year tag: Prefix + "-" + zero-padded counter.
type Sequential struct{ cfg Config }

func NewSequential(cfg Config) *Sequential { return &Sequential{cfg: cfg.withDefaults()} }
func (g *Sequential) Name() string          { return "Sequential" }
func (g *Sequential) Format(seq int64) string {
	return fmt.Sprintf("%s-%0*d", g.cfg.Prefix, g.cfg.MinCounterSize, seq)
}
func (g *Sequential) Parse(id string) (int64, error) {
	return parseCounter(g, id, g.cfg.Prefix+"-")
}
