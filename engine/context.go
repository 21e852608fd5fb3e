package engine

import (
	"sort"
	"strings"

	"github.com/wippyai/ie-effects/errors"
)

// Family identifies one of the six engine families that produce effect records.
type Family uint8

const (
	FamilyUnknown Family = iota
	FamilyBG1            // Baldur's Gate (and Tales of the Sword Coast)
	FamilyBG2            // Baldur's Gate II (and Throne of Bhaal)
	FamilyPST            // Planescape: Torment
	FamilyIWD            // Icewind Dale (Heart of Winter, Trials of the Luremaster)
	FamilyIWD2           // Icewind Dale II
	FamilyEE             // Enhanced Editions
)

var familyNames = [...]string{
	FamilyUnknown: "unknown",
	FamilyBG1:     "BG1",
	FamilyBG2:     "BG2",
	FamilyPST:     "PST",
	FamilyIWD:     "IWD",
	FamilyIWD2:    "IWD2",
	FamilyEE:      "EE",
}

func (f Family) String() string {
	if int(f) < len(familyNames) {
		return familyNames[f]
	}
	return "unknown"
}

// Families lists every known family in declaration order.
func Families() []Family {
	return []Family{FamilyBG1, FamilyBG2, FamilyPST, FamilyIWD, FamilyIWD2, FamilyEE}
}

// ParseFamily maps a case-insensitive family name to its Family.
func ParseFamily(s string) (Family, error) {
	for i, name := range familyNames {
		if i != int(FamilyUnknown) && strings.EqualFold(name, s) {
			return Family(i), nil
		}
	}
	return FamilyUnknown, errors.InvalidInput(errors.PhaseProfile, "unknown engine family "+s)
}

// Flag is an optional expansion or engine extender capability.
type Flag uint16

const (
	FlagTotSC Flag = 1 << iota // Tales of the Sword Coast
	FlagToB                    // Throne of Bhaal
	FlagTotLM                  // Trials of the Luremaster
	FlagTobEx                  // TobEx engine extender
	FlagEEex                   // EEex engine extender
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{FlagTotSC, "totsc"},
	{FlagToB, "tob"},
	{FlagTotLM, "totlm"},
	{FlagTobEx, "tobex"},
	{FlagEEex, "eeex"},
}

func (f Flag) String() string {
	var parts []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ParseFlag maps a single lower-case flag name to its Flag.
func ParseFlag(s string) (Flag, error) {
	for _, fn := range flagNames {
		if strings.EqualFold(fn.name, s) {
			return fn.flag, nil
		}
	}
	return 0, errors.InvalidInput(errors.PhaseProfile, "unknown expansion flag "+s)
}

// FlagNames returns the names ParseFlag accepts.
func FlagNames() []string {
	names := make([]string, len(flagNames))
	for i, fn := range flagNames {
		names[i] = fn.name
	}
	return names
}

// Variant further forks a family, e.g. the PST premium remaster running on the EE engine.
type Variant uint8

const (
	VariantNone Variant = iota
	VariantBGEE
	VariantBG2EE
	VariantIWDEE
	VariantPSTEE
	VariantEET
)

var variantNames = [...]string{
	VariantNone:  "",
	VariantBGEE:  "BGEE",
	VariantBG2EE: "BG2EE",
	VariantIWDEE: "IWDEE",
	VariantPSTEE: "PSTEE",
	VariantEET:   "EET",
}

func (v Variant) String() string {
	if int(v) < len(variantNames) {
		return variantNames[v]
	}
	return "unknown"
}

// ParseVariant maps a case-insensitive variant tag to its Variant. The empty string is VariantNone.
func ParseVariant(s string) (Variant, error) {
	for i, name := range variantNames {
		if strings.EqualFold(name, s) {
			return Variant(i), nil
		}
	}
	return VariantNone, errors.InvalidInput(errors.PhaseProfile, "unknown engine variant "+s)
}

// Context is an immutable snapshot of the engine a record is interpreted under.
// It is a plain value: copies are independent and the decoder never mutates it.
type Context struct {
	Family  Family
	Flags   Flag
	Variant Variant
}

// New returns a Context for family with the given expansion flags.
func New(family Family, flags ...Flag) Context {
	c := Context{Family: family}
	for _, f := range flags {
		c.Flags |= f
	}
	return c
}

// WithVariant returns a copy of c with the sub-variant set.
func (c Context) WithVariant(v Variant) Context {
	c.Variant = v
	return c
}

// WithFlags returns a copy of c with flags added.
func (c Context) WithFlags(flags ...Flag) Context {
	for _, f := range flags {
		c.Flags |= f
	}
	return c
}

// Has reports whether every bit of f is set.
func (c Context) Has(f Flag) bool {
	return f != 0 && c.Flags&f == f
}

// Enhanced reports whether the context runs on the Enhanced Edition engine.
func (c Context) Enhanced() bool {
	return c.Family == FamilyEE
}

func (c Context) String() string {
	var b strings.Builder
	b.WriteString(c.Family.String())
	if c.Variant != VariantNone {
		b.WriteByte('/')
		b.WriteString(c.Variant.String())
	}
	if c.Flags != 0 {
		b.WriteByte('+')
		b.WriteString(c.Flags.String())
	}
	return b.String()
}

// Presets for the shipped games, keyed by the short names the CLI accepts.
var presets = map[string]Context{
	"bg1":   New(FamilyBG1, FlagTotSC),
	"bg2":   New(FamilyBG2, FlagToB),
	"tobex": New(FamilyBG2, FlagToB, FlagTobEx),
	"pst":   New(FamilyPST),
	"iwd":   New(FamilyIWD, FlagTotLM),
	"iwd2":  New(FamilyIWD2),
	"bgee":  New(FamilyEE).WithVariant(VariantBGEE),
	"bg2ee": New(FamilyEE).WithVariant(VariantBG2EE),
	"iwdee": New(FamilyEE).WithVariant(VariantIWDEE),
	"pstee": New(FamilyEE).WithVariant(VariantPSTEE),
	"eet":   New(FamilyEE).WithVariant(VariantEET),
}

// Preset returns the context for a shipped game short name such as "bg2ee" or "iwd2".
func Preset(name string) (Context, bool) {
	c, ok := presets[strings.ToLower(name)]
	return c, ok
}

// PresetNames returns the names Preset accepts, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
