package layout

import (
	"github.com/wippyai/ie-effects/errors"
)

const (
	// CompactMinSize is the size of a V1 effect record as embedded in ITM/SPL feature blocks.
	CompactMinSize = 0x30
	// ExtendedMinSize is the size of a V2 effect record as embedded in CRE/EFF files.
	ExtendedMinSize = 0x108
)

// Slot is the physical placement of one logical field, relative to the record start.
type Slot struct {
	ID     ID
	Offset int
	Size   int
}

// Layout is one of the two physical record shapes. The two instances are
// package-level singletons and never change after init.
type Layout struct {
	name    string
	version string
	minSize int
	region  int // start of the stage-2 region (timing mode)
	slots   []Slot
	index   map[ID]int
}

// Compact is the 48-byte "V1" layout.
var Compact = newLayout("compact", "V1", CompactMinSize, 0x0C, []Slot{
	{Opcode, 0x00, 2},
	{Target, 0x02, 1},
	{Power, 0x03, 1},
	{Param1, 0x04, 4},
	{Param2, 0x08, 4},
	{Timing, 0x0C, 1},
	{Resist, 0x0D, 1},
	{Duration, 0x0E, 4},
	{Probability1, 0x12, 1},
	{Probability2, 0x13, 1},
	{Resource, 0x14, 8},
	{DiceCount, 0x1C, 4},
	{DiceSize, 0x20, 4},
	{SaveType, 0x24, 4},
	{SaveBonus, 0x28, 4},
	{Special, 0x2C, 4},
})

// Extended is the 264-byte "V2" layout.
var Extended = newLayout("extended", "V2", ExtendedMinSize, 0x1C, []Slot{
	{Signature, 0x00, 4},
	{Version, 0x04, 4},
	{Opcode, 0x08, 4},
	{Target, 0x0C, 4},
	{Power, 0x10, 4},
	{Param1, 0x14, 4},
	{Param2, 0x18, 4},
	{Timing, 0x1C, 4},
	{Duration, 0x20, 4},
	{Probability1, 0x24, 2},
	{Probability2, 0x26, 2},
	{Resource, 0x28, 8},
	{DiceCount, 0x30, 4},
	{DiceSize, 0x34, 4},
	{SaveType, 0x38, 4},
	{SaveBonus, 0x3C, 4},
	{Special, 0x40, 4},
	{School, 0x44, 4},
	{Unknown48, 0x48, 4},
	{MinLevel, 0x4C, 4},
	{MaxLevel, 0x50, 4},
	{Resist, 0x54, 4},
	{Param3, 0x58, 4},
	{Param4, 0x5C, 4},
	{Param5, 0x60, 4},
	{TimeApplied, 0x64, 4},
	{Resource2, 0x68, 8},
	{Resource3, 0x70, 8},
	{CasterX, 0x78, 4},
	{CasterY, 0x7C, 4},
	{TargetX, 0x80, 4},
	{TargetY, 0x84, 4},
	{ParentType, 0x88, 4},
	{ParentResource, 0x8C, 8},
	{ParentFlags, 0x94, 4},
	{Projectile, 0x98, 4},
	{ParentSlot, 0x9C, 4},
	{VariableName, 0xA0, 32},
	{CasterLevel, 0xC0, 4},
	{FirstApply, 0xC4, 4},
	{SecondaryType, 0xC8, 4},
	{Padding, 0xCC, 60},
})

func newLayout(name, version string, minSize, region int, slots []Slot) *Layout {
	l := &Layout{
		name:    name,
		version: version,
		minSize: minSize,
		region:  region,
		slots:   slots,
		index:   make(map[ID]int, len(slots)),
	}
	for i, s := range slots {
		l.index[s.ID] = i
	}
	return l
}

// ForSize selects the layout for a record of the given total size.
// Sizes below the compact minimum are a structural error.
func ForSize(size int) (*Layout, error) {
	switch {
	case size >= ExtendedMinSize:
		return Extended, nil
	case size >= CompactMinSize:
		return Compact, nil
	default:
		return nil, errors.TooShort(errors.PhaseDecode, nil, size, CompactMinSize)
	}
}

// Name returns "compact" or "extended".
func (l *Layout) Name() string { return l.name }

// Version returns the structure version tag, "V1" or "V2".
func (l *Layout) Version() string { return l.version }

// MinSize returns the smallest record size this layout can decode.
func (l *Layout) MinSize() int { return l.minSize }

// Region returns the offset of the stage-2 region (timing mode) from the record start.
func (l *Layout) Region() int { return l.region }

// Extended reports whether this is the V2 layout.
func (l *Layout) Extended() bool { return l == Extended }

// IDs returns the layout's logical fields in physical order.
func (l *Layout) IDs() []ID {
	ids := make([]ID, len(l.slots))
	for i, s := range l.slots {
		ids[i] = s.ID
	}
	return ids
}

// Slots returns a copy of the layout's slot table.
func (l *Layout) Slots() []Slot {
	out := make([]Slot, len(l.slots))
	copy(out, l.slots)
	return out
}

// Has reports whether the layout defines id (sub-slots count through their parent).
func (l *Layout) Has(id ID) bool {
	if p, _, ok := id.parent(); ok {
		id = p
	}
	_, ok := l.index[id]
	return ok
}

// Slot returns the placement of id. Sub-slot IDs resolve to the upper half of their parent.
func (l *Layout) Slot(id ID) (Slot, error) {
	if p, delta, ok := id.parent(); ok {
		s, err := l.Slot(p)
		if err != nil {
			return Slot{}, err
		}
		return Slot{ID: id, Offset: s.Offset + delta, Size: s.Size - delta}, nil
	}
	i, ok := l.index[id]
	if !ok {
		return Slot{}, errors.FieldNotInLayout(l.name, id.String())
	}
	return l.slots[i], nil
}

// OffsetOf returns the byte offset of id relative to the record start.
func (l *Layout) OffsetOf(id ID) (int, error) {
	s, err := l.Slot(id)
	if err != nil {
		return 0, err
	}
	return s.Offset, nil
}

// IndexOf returns the position of id in the layout's physical slot order.
// A split half reports its parent slot. The position of a field within a
// decoded record can differ when a parameter slot splits into two fields;
// use the record's Map for that.
func (l *Layout) IndexOf(id ID) (int, error) {
	if p, _, ok := id.parent(); ok {
		id = p
	}
	i, ok := l.index[id]
	if !ok {
		return 0, errors.FieldNotInLayout(l.name, id.String())
	}
	return i, nil
}

// RegionOffset returns the offset of id relative to the stage-2 region, the
// form the format documentation uses for the common blocks.
func (l *Layout) RegionOffset(id ID) (int, error) {
	off, err := l.OffsetOf(id)
	if err != nil {
		return 0, err
	}
	return off - l.region, nil
}

func (l *Layout) String() string {
	return l.name + " (" + l.version + ")"
}
