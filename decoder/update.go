package decoder

import (
	"go.uber.org/zap"

	"github.com/wippyai/ie-effects/engine"
	"github.com/wippyai/ie-effects/errors"
	"github.com/wippyai/ie-effects/field"
	"github.com/wippyai/ie-effects/layout"
	"github.com/wippyai/ie-effects/opcode"
)

// OnFieldChanged computes the fields whose interpretation changes when field
// id takes value. It reads rec but never modifies it; apply the result with
// rec.Apply. Changing a field nothing depends on yields no replacements.
func (d *Decoder) OnFieldChanged(ctx engine.Context, rec *Record, id layout.ID, value int64) []Replacement {
	if rec == nil {
		return nil
	}
	changed, ok := rec.Lookup(id)
	if !ok {
		return nil
	}
	def := d.registry.Resolve(ctx, rec.Opcode)
	deps := def.Dependents(ctx, id)
	if len(deps) == 0 {
		return nil
	}

	vals := rec.Values()
	vals[id] = opcode.DriverValue(changed.Length, value)

	out := make([]Replacement, 0, len(deps))
	for _, dep := range deps {
		old, ok := rec.Lookup(dep)
		if !ok {
			continue
		}
		nd, ok := def.Reinterpret(ctx, old, vals, d.symbols)
		if !ok {
			continue
		}
		out = append(out, Replacement{ID: dep, Field: nd})
	}
	Logger().Debug("field changed",
		zap.Int("opcode", rec.Opcode),
		zap.String("field", id.Key()),
		zap.Int64("value", value),
		zap.Int("replacements", len(out)))
	return out
}

// Update writes v into the field id of the record in buf, then re-describes
// that field and every field depending on it. The replacements are applied
// to rec and returned. buf must be the buffer rec was decoded from.
func (d *Decoder) Update(ctx engine.Context, rec *Record, buf []byte, id layout.ID, v field.Value) ([]Replacement, error) {
	old, ok := rec.Lookup(id)
	if !ok {
		return nil, errors.FieldNotInLayout(rec.Layout.Name(), id.String())
	}
	if id == layout.Opcode {
		return nil, errors.Unsupported(errors.PhaseUpdate, "changing the opcode needs a full decode")
	}
	if old.Value.Kind == field.KindRaw {
		return nil, errors.New(errors.PhaseUpdate, errors.KindInvalidInput).
			Field(old.Name).
			Detail("raw field is not editable").
			Build()
	}

	def := d.registry.Resolve(ctx, rec.Opcode)
	spec := def.SpecFor(ctx, rec.Layout, id)
	if spec == nil {
		return nil, errors.Unsupported(errors.PhaseUpdate, "field "+id.String()+" has no spec")
	}

	edit := old
	edit.Value = v
	edit.Value.Kind = old.Value.Kind
	raw, err := field.Encode(edit)
	if err != nil {
		return nil, err
	}

	vals := rec.Values()
	vals[id] = opcode.DriverValue(old.Length, v.Int)
	nd := spec.Describe(id, old.Offset, raw, vals, d.symbols)
	if err := field.Put(buf, nd); err != nil {
		return nil, err
	}

	repls := append([]Replacement{{ID: id, Field: nd}}, d.OnFieldChanged(ctx, rec, id, v.Int)...)
	if err := rec.Apply(repls); err != nil {
		return nil, err
	}
	return repls, nil
}
