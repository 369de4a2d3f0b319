package ticketnumber

import (
	"fmt"
	"strings"
)

// Resolve maps a configured scheme name to a concrete Generator.
// Case-insensitive match for leniency. Valid: Yearly, Sequential.
func Resolve(name string, cfg Config) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "yearly", "":
		return NewYearly(cfg), nil
	case "sequential":
		return NewSequential(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownGenerator, name)
	}
}
