package opcode

import (
	"slices"
	"strconv"

	ieeffects "github.com/wippyai/ie-effects"
	"github.com/wippyai/ie-effects/engine"
	"github.com/wippyai/ie-effects/errors"
	"github.com/wippyai/ie-effects/field"
	"github.com/wippyai/ie-effects/layout"
)

// IDSFiles maps the IDS category numbers used by parameter pairs such as
// "Use EFF file" to the IDS file they select.
var IDSFiles = map[int64]string{
	2: "EA",
	3: "GENERAL",
	4: "RACE",
	5: "CLASS",
	6: "SPECIFIC",
	7: "GENDER",
	8: "ALIGN",
	9: "KIT",
}

// Values holds the current integer value of each driver field.
type Values map[layout.ID]int64

// Spec describes how one slot decodes. A Spec with Switch set is a choice
// between Cases keyed by the value of another field; Resolve picks the leaf.
// A Spec with Halves splits a 4-byte slot into two 16-bit fields.
type Spec struct {
	Name   string
	Kind   field.Kind
	Labels *Labels
	Zero   string    // bitmask label shown when no bit is set
	IDS    layout.ID // field whose value selects the IDS file for this value
	Types  []string  // resource categories

	Switch  layout.ID
	Cases   []Case
	Default *Spec

	Halves []*Spec
}

// Case is one arm of a switching Spec.
type Case struct {
	Values []int64
	Spec   *Spec
}

// Resolve follows Switch arms using vals until it reaches a leaf.
func (s *Spec) Resolve(vals Values) *Spec {
	for s != nil && s.Switch != layout.Invalid {
		v := vals[s.Switch]
		next := s.Default
		for _, c := range s.Cases {
			if slices.Contains(c.Values, v) {
				next = c.Spec
				break
			}
		}
		s = next
	}
	return s
}

// DependsOn reports whether any arm of s reads the value of id.
func (s *Spec) DependsOn(id layout.ID) bool {
	if s == nil {
		return false
	}
	if s.Switch == id || s.IDS == id {
		return true
	}
	for _, c := range s.Cases {
		if c.Spec.DependsOn(id) {
			return true
		}
	}
	for _, h := range s.Halves {
		if h.DependsOn(id) {
			return true
		}
	}
	return s.Default.DependsOn(id)
}

// Split reports whether s divides its slot into two halves.
func (s *Spec) Split() bool {
	return s != nil && len(s.Halves) == 2
}

// Describe decodes raw, the bytes of field id at absolute offset off, as the
// leaf s resolves to under vals.
func (s *Spec) Describe(id layout.ID, off int, raw []byte, vals Values, sym ieeffects.Symbols) field.Descriptor {
	leaf := s.Resolve(vals)
	if leaf == nil {
		leaf = &Spec{Kind: field.KindInt}
	}
	d := field.Descriptor{
		ID:     id,
		Name:   leaf.Name,
		Offset: off,
		Length: len(raw),
		Raw:    append([]byte(nil), raw...),
	}
	if d.Name == "" {
		d.Name = id.String()
	}
	d.Value = leaf.value(raw, vals, sym)
	return d
}

func (s *Spec) value(raw []byte, vals Values, sym ieeffects.Symbols) field.Value {
	v := field.Value{Kind: s.Kind}
	switch s.Kind {
	case field.KindInt, field.KindStrRef:
		v.Int = int64(field.ReadInt(raw))
		v.Signed = true
	case field.KindUint:
		v.Int = int64(field.ReadUint(raw))
	case field.KindEnum:
		v.Int = int64(field.ReadUint(raw))
		if s.IDS != layout.Invalid {
			file, ok := IDSFiles[vals[s.IDS]]
			if !ok {
				break
			}
			v.Types = []string{file}
			if sym != nil {
				if label, ok := sym.Symbol(file, v.Int); ok {
					v.Labels = []string{label}
				}
			}
			break
		}
		if label, ok := s.Labels.Enum(v.Int); ok {
			v.Labels = []string{label}
		}
	case field.KindBitmask:
		v.Int = int64(field.ReadUint(raw))
		if v.Int == 0 {
			if s.Zero != "" {
				v.Labels = []string{s.Zero}
			}
			break
		}
		v.Labels = s.Labels.Bits(v.Int)
	case field.KindFloat:
		v.Float = float64(field.ReadFloat(raw))
	case field.KindResource:
		v.Text = field.ReadText(raw)
		v.Types = slices.Clone(s.Types)
	case field.KindString:
		v.Text = field.ReadText(raw)
	}
	return v
}

// DriverValue normalizes a field value to the form switch cases compare
// against: 16-bit halves unsigned, full slots signed.
func DriverValue(length int, v int64) int64 {
	switch length {
	case 1:
		return int64(uint8(v))
	case 2:
		return int64(uint16(v))
	}
	return int64(int32(v))
}

var highOf = map[layout.ID]layout.ID{
	layout.Param1: layout.Param1High,
	layout.Param2: layout.Param2High,
}

// describeSlot decodes the slot of id from in, yielding two fields when s splits it.
func (s *Spec) describeSlot(in Input, id layout.ID, vals Values) ([]field.Descriptor, error) {
	slot, raw, err := in.slot(id)
	if err != nil {
		return nil, err
	}
	off := in.Base + slot.Offset
	if !s.Split() {
		return []field.Descriptor{s.Describe(id, off, raw, vals, in.Symbols)}, nil
	}
	half := slot.Size / 2
	return []field.Descriptor{
		s.Halves[0].Describe(id, off, raw[:half], vals, in.Symbols),
		s.Halves[1].Describe(highOf[id], off+half, raw[half:], vals, in.Symbols),
	}, nil
}

// Input is what a stage reads: the record bytes and how to interpret them.
type Input struct {
	Context engine.Context
	Layout  *layout.Layout
	Buf     []byte
	Base    int
	Symbols ieeffects.Symbols
}

func (in Input) slot(id layout.ID) (layout.Slot, []byte, error) {
	slot, err := in.Layout.Slot(id)
	if err != nil {
		return layout.Slot{}, nil, err
	}
	start := in.Base + slot.Offset
	if start < 0 || start+slot.Size > len(in.Buf) {
		return layout.Slot{}, nil, errors.OutOfBounds(errors.PhaseDecode,
			[]string{id.String()}, start+slot.Size, len(in.Buf))
	}
	return slot, in.Buf[start : start+slot.Size], nil
}

func (s *Spec) String() string {
	if s == nil {
		return "<nil>"
	}
	if s.Switch != layout.Invalid {
		return s.Name + " (switch on " + s.Switch.Key() + ", " + strconv.Itoa(len(s.Cases)) + " cases)"
	}
	return s.Name + " (" + s.Kind.String() + ")"
}
