package opcode

import (
	"math/bits"
	"sort"
	"strconv"
)

// Labels is a named label set for enumerated or bitmask values.
type Labels struct {
	Name   string
	values map[int64]string // enum value -> label
	bits   []string         // bit index -> label, "" for unnamed bits
}

// EnumLabels builds a dense enum: labels[i] names value i.
func EnumLabels(name string, labels ...string) *Labels {
	l := &Labels{Name: name, values: make(map[int64]string, len(labels))}
	for i, s := range labels {
		if s != "" {
			l.values[int64(i)] = s
		}
	}
	return l
}

// SparseLabels builds an enum from explicit value/label pairs.
func SparseLabels(name string, values map[int64]string) *Labels {
	l := &Labels{Name: name, values: make(map[int64]string, len(values))}
	for v, s := range values {
		l.values[v] = s
	}
	return l
}

// BitLabels builds a bitmask label set: labels[i] names bit i.
func BitLabels(name string, labels ...string) *Labels {
	return &Labels{Name: name, bits: append([]string(nil), labels...)}
}

// Enum returns the label of v.
func (l *Labels) Enum(v int64) (string, bool) {
	if l == nil {
		return "", false
	}
	s, ok := l.values[v]
	return s, ok
}

// Bits returns the labels of every named bit set in v, lowest bit first.
// Set bits without a label are reported as "Bit n".
func (l *Labels) Bits(v int64) []string {
	if l == nil {
		return nil
	}
	var out []string
	u := uint32(v)
	for u != 0 {
		i := bits.TrailingZeros32(u)
		u &^= 1 << i
		if i < len(l.bits) && l.bits[i] != "" {
			out = append(out, l.bits[i])
		} else {
			out = append(out, "Bit "+strconv.Itoa(i))
		}
	}
	return out
}

// Bitmask reports whether the set names bits rather than values.
func (l *Labels) Bitmask() bool {
	return l != nil && l.bits != nil
}

// Values returns the enum values in ascending order.
func (l *Labels) Values() []int64 {
	if l == nil {
		return nil
	}
	out := make([]int64, 0, len(l.values))
	for v := range l.values {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of labelled values or bits.
func (l *Labels) Len() int {
	if l == nil {
		return 0
	}
	if l.bits != nil {
		return len(l.bits)
	}
	return len(l.values)
}

// Label sets shared by every opcode: record framing and the two common blocks.
var (
	TargetTypes = EnumLabels("targetTypes",
		"None", "Self", "Preset target", "Party", "Everyone",
		"Everyone except party", "Caster group", "Target group",
		"Everyone except self", "Original caster")

	TimingModes = SparseLabels("timingModes", map[int64]string{
		0:    "Instant/Limited",
		1:    "Instant/Permanent until death",
		2:    "Instant/While equipped",
		3:    "Delay/Limited",
		4:    "Delay/Permanent",
		5:    "Delay/While equipped",
		6:    "Limited after duration",
		7:    "Permanent after duration",
		8:    "Equipped after duration",
		9:    "Instant/Permanent",
		10:   "Instant/Limited (ticks)",
		4096: "Absolute duration",
	})

	ResistDispel = EnumLabels("resistDispel",
		"Natural/Nonmagical", "Dispel/Not bypass resistance",
		"Not dispel/Bypass resistance", "Dispel/Bypass resistance")

	SaveTypes = BitLabels("saveTypes",
		"Spells", "Breath weapon", "Paralyze/Poison/Death", "Rod/Staff/Wand", "Petrify/Polymorph")

	SaveTypesEE = BitLabels("saveTypesEE",
		"Spells", "Breath weapon", "Paralyze/Poison/Death", "Rod/Staff/Wand", "Petrify/Polymorph",
		"", "", "", "", "", "Ignore primary target", "Ignore secondary target",
		"", "", "", "", "", "", "", "", "", "", "", "",
		"Bypass mirror image", "Ignore difficulty")

	SaveTypesIWD2 = BitLabels("saveTypesIWD2",
		"", "", "", "Fortitude", "Reflex", "Will")

	Schools = EnumLabels("schools",
		"None", "Abjuration", "Conjuration", "Divination", "Enchantment",
		"Illusion", "Evocation", "Necromancy", "Alteration", "Generalist")

	SecondaryTypes = EnumLabels("secondaryTypes",
		"None", "Spell protections", "Specific protections", "Illusionary protections",
		"Magic attack", "Divination attack", "Conjuration", "Combat protections",
		"Contingency", "Battleground", "Offensive damage", "Disabling",
		"Combination", "Non-combat")

	ParentTypes = EnumLabels("parentTypes", "None", "Spell", "Item")

	ParentFlags = BitLabels("parentFlags",
		"", "", "", "", "", "", "", "", "", "", "Hostile", "No LOS required",
		"Allow spotting", "Outdoors only", "Non-magical ability", "Trigger/Contingency",
		"", "", "", "", "", "", "", "", "Ex: Castable when silenced")
)

var builtinLabels = []*Labels{
	TargetTypes, TimingModes, ResistDispel, SaveTypes, SaveTypesEE, SaveTypesIWD2,
	Schools, SecondaryTypes, ParentTypes, ParentFlags,
}
