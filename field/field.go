package field

import (
	"encoding/hex"
	"slices"
	"strconv"
	"strings"

	"github.com/wippyai/ie-effects/layout"
)

// Value is a decoded field value. Which members are meaningful depends on Kind:
// Int for numeric kinds, Float for KindFloat, Text for resources and strings.
type Value struct {
	Kind   Kind
	Int    int64
	Float  float64
	Text   string
	Labels []string // enum label or names of set bits
	Types  []string // allowed resource categories, e.g. SPL, ITM
	Signed bool     // Int was sign-extended on decode
}

// Equal reports whether two values are identical, labels included.
func (v Value) Equal(o Value) bool {
	return v.Kind == o.Kind &&
		v.Int == o.Int &&
		v.Float == o.Float &&
		v.Text == o.Text &&
		v.Signed == o.Signed &&
		slices.Equal(v.Labels, o.Labels) &&
		slices.Equal(v.Types, o.Types)
}

// HasLabel reports whether label is one of the value's labels.
func (v Value) HasLabel(label string) bool {
	return slices.Contains(v.Labels, label)
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindUint:
		return strconv.FormatUint(uint64(v.Int), 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 32)
	case KindEnum:
		if len(v.Labels) > 0 {
			return v.Labels[0] + " (" + strconv.FormatInt(v.Int, 10) + ")"
		}
		return strconv.FormatInt(v.Int, 10)
	case KindBitmask:
		s := "0x" + strconv.FormatUint(uint64(v.Int), 16)
		if len(v.Labels) > 0 {
			s += " (" + strings.Join(v.Labels, ", ") + ")"
		}
		return s
	case KindResource:
		if v.Text == "" {
			return "None"
		}
		if len(v.Types) == 1 {
			return v.Text + "." + v.Types[0]
		}
		return v.Text
	case KindString:
		return v.Text
	case KindStrRef:
		if v.Int < 0 {
			return "None"
		}
		return "#" + strconv.FormatInt(v.Int, 10)
	}
	return ""
}

// Descriptor is one decoded, named, offset-addressed field of a record.
// Descriptors are values: replacing a field means swapping the whole Descriptor.
type Descriptor struct {
	ID     layout.ID
	Name   string
	Offset int // absolute within the owning buffer
	Length int
	Raw    []byte // copy of the field's bytes
	Value  Value
}

// End returns the offset one past the field's last byte.
func (d Descriptor) End() int {
	return d.Offset + d.Length
}

// Overlaps reports whether the byte ranges of d and o intersect.
func (d Descriptor) Overlaps(o Descriptor) bool {
	return d.Offset < o.End() && o.Offset < d.End()
}

// Equal reports whether two descriptors are identical.
func (d Descriptor) Equal(o Descriptor) bool {
	return d.ID == o.ID &&
		d.Name == o.Name &&
		d.Offset == o.Offset &&
		d.Length == o.Length &&
		slices.Equal(d.Raw, o.Raw) &&
		d.Value.Equal(o.Value)
}

// Display renders the value the way a record viewer shows it; raw fields as hex.
func (d Descriptor) Display() string {
	if d.Value.Kind == KindRaw {
		return hex.EncodeToString(d.Raw)
	}
	return d.Value.String()
}
