package decoder

import (
	"github.com/wippyai/ie-effects/engine"
	"github.com/wippyai/ie-effects/errors"
	"github.com/wippyai/ie-effects/field"
	"github.com/wippyai/ie-effects/layout"
	"github.com/wippyai/ie-effects/opcode"
)

// Record is one decoded effect: its fields in physical order and a map from
// logical id to each field's position.
type Record struct {
	Opcode  int
	Name    string
	Context engine.Context
	Layout  *layout.Layout
	Base    int // offset of the record in its buffer
	Size    int // declared record size
	Fields  []field.Descriptor
	Map     *layout.Map
}

func newRecord(id int, name string, ctx engine.Context, l *layout.Layout, base, size int, fields []field.Descriptor) *Record {
	m := layout.NewMap(len(fields))
	for i, f := range fields {
		m.Set(f.ID, layout.Entry{Index: i, Offset: f.Offset})
	}
	return &Record{
		Opcode:  id,
		Name:    name,
		Context: ctx,
		Layout:  l,
		Base:    base,
		Size:    size,
		Fields:  fields,
		Map:     m,
	}
}

// Lookup returns the field decoded for id.
func (r *Record) Lookup(id layout.ID) (field.Descriptor, bool) {
	e, ok := r.Map.Get(id)
	if !ok {
		return field.Descriptor{}, false
	}
	return r.Fields[e.Index], true
}

// Values returns the switch-comparable value of every field that can drive
// another field's interpretation.
func (r *Record) Values() opcode.Values {
	vals := make(opcode.Values, 4)
	for _, id := range []layout.ID{layout.Param1, layout.Param1High, layout.Param2, layout.Param2High} {
		if f, ok := r.Lookup(id); ok {
			vals[id] = opcode.DriverValue(f.Length, f.Value.Int)
		}
	}
	return vals
}

// Replacement is a new descriptor for the field with logical id ID.
type Replacement struct {
	ID    layout.ID
	Field field.Descriptor
}

// Apply swaps in replacements by logical id. A replacement must keep the
// offset and length of the field it replaces; otherwise nothing is applied.
func (r *Record) Apply(repls []Replacement) error {
	idx := make([]int, len(repls))
	for i, rp := range repls {
		e, ok := r.Map.Get(rp.ID)
		if !ok {
			return errors.New(errors.PhaseUpdate, errors.KindNotFound).
				Layout(r.Layout.Name()).
				Field(rp.ID.String()).
				Detail("record has no such field").
				Build()
		}
		old := r.Fields[e.Index]
		if rp.Field.Offset != old.Offset || rp.Field.Length != old.Length || rp.Field.ID != rp.ID {
			return errors.New(errors.PhaseUpdate, errors.KindInvalidInput).
				Field(old.Name).
				Detail("replacement at %d+%d does not match field at %d+%d",
					rp.Field.Offset, rp.Field.Length, old.Offset, old.Length).
				Build()
		}
		idx[i] = e.Index
	}
	for i, rp := range repls {
		r.Fields[idx[i]] = rp.Field
	}
	return nil
}

// Clone returns a copy whose field list can be changed independently.
func (r *Record) Clone() *Record {
	fields := make([]field.Descriptor, len(r.Fields))
	copy(fields, r.Fields)
	return newRecord(r.Opcode, r.Name, r.Context, r.Layout, r.Base, r.Size, fields)
}
