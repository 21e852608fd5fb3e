package opcode

import (
	"slices"
	"strings"

	"github.com/wippyai/ie-effects/engine"
)

// Selector matches engine contexts. Conditions that are set must all hold;
// an empty Selector matches everything.
type Selector struct {
	Families []engine.Family
	Flags    engine.Flag // every bit must be present
	Variant  engine.Variant
}

// Matches reports whether ctx satisfies every condition of s.
func (s Selector) Matches(ctx engine.Context) bool {
	if len(s.Families) > 0 && !slices.Contains(s.Families, ctx.Family) {
		return false
	}
	if s.Flags != 0 && ctx.Flags&s.Flags != s.Flags {
		return false
	}
	if s.Variant != engine.VariantNone && ctx.Variant != s.Variant {
		return false
	}
	return true
}

// Level orders selectors by specificity: variant over flag over family.
// When several overrides match, the highest level wins.
func (s Selector) Level() int {
	switch {
	case s.Variant != engine.VariantNone:
		return 3
	case s.Flags != 0:
		return 2
	case len(s.Families) > 0:
		return 1
	}
	return 0
}

func (s Selector) String() string {
	var parts []string
	if len(s.Families) > 0 {
		names := make([]string, len(s.Families))
		for i, f := range s.Families {
			names[i] = f.String()
		}
		parts = append(parts, strings.Join(names, ","))
	}
	if s.Flags != 0 {
		parts = append(parts, "+"+s.Flags.String())
	}
	if s.Variant != engine.VariantNone {
		parts = append(parts, "/"+s.Variant.String())
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

// pick returns the index of the most specific matching selector, or -1.
// Later entries win ties.
func pick(ctx engine.Context, sels []Selector) int {
	best, level := -1, -1
	for i, s := range sels {
		if !s.Matches(ctx) {
			continue
		}
		if l := s.Level(); l >= level {
			best, level = i, l
		}
	}
	return best
}
