package opcode

import (
	"github.com/wippyai/ie-effects/engine"
	"github.com/wippyai/ie-effects/field"
	"github.com/wippyai/ie-effects/layout"
)

var (
	opcodeSpec = &Spec{Name: "Type", Kind: field.KindEnum}

	headerCompact = []slotSpec{
		{layout.Opcode, opcodeSpec},
		{layout.Target, &Spec{Name: "Target", Kind: field.KindEnum, Labels: TargetTypes}},
		{layout.Power, &Spec{Name: "Power", Kind: field.KindUint}},
	}
	headerExtended = []slotSpec{
		{layout.Signature, &Spec{Name: "Signature", Kind: field.KindString}},
		{layout.Version, &Spec{Name: "Version", Kind: field.KindString}},
		{layout.Opcode, opcodeSpec},
		{layout.Target, &Spec{Name: "Target", Kind: field.KindEnum, Labels: TargetTypes}},
		{layout.Power, &Spec{Name: "Power", Kind: field.KindUint}},
	}

	trailer = []slotSpec{
		{layout.School, &Spec{Name: "Primary type (school)", Kind: field.KindEnum, Labels: Schools}},
		{layout.Unknown48, &Spec{Name: "Unknown", Kind: field.KindInt}},
		{layout.MinLevel, &Spec{Name: "Minimum level", Kind: field.KindInt}},
		{layout.MaxLevel, &Spec{Name: "Maximum level", Kind: field.KindInt}},
		{layout.Resist, resistSpec},
		{layout.Param3, &Spec{Name: "Parameter 3", Kind: field.KindInt}},
		{layout.Param4, &Spec{Name: "Parameter 4", Kind: field.KindInt}},
		{layout.Param5, &Spec{Name: "Parameter 5", Kind: field.KindInt}},
		{layout.TimeApplied, &Spec{Name: "Time applied (ticks)", Kind: field.KindUint}},
		{layout.Resource2, &Spec{Name: "Resource 2", Kind: field.KindResource}},
		{layout.Resource3, &Spec{Name: "Resource 3", Kind: field.KindResource}},
		{layout.CasterX, &Spec{Name: "Caster location: X", Kind: field.KindInt}},
		{layout.CasterY, &Spec{Name: "Caster location: Y", Kind: field.KindInt}},
		{layout.TargetX, &Spec{Name: "Target location: X", Kind: field.KindInt}},
		{layout.TargetY, &Spec{Name: "Target location: Y", Kind: field.KindInt}},
		{layout.ParentType, &Spec{Name: "Resource type", Kind: field.KindEnum, Labels: ParentTypes}},
		{layout.ParentResource, &Spec{Name: "Parent resource", Kind: field.KindResource}},
		{layout.ParentFlags, &Spec{Name: "Resource flags", Kind: field.KindBitmask, Labels: ParentFlags}},
		{layout.Projectile, &Spec{Name: "Impact projectile", Kind: field.KindInt}},
		{layout.ParentSlot, &Spec{Name: "Source item slot", Kind: field.KindInt}},
		{layout.VariableName, &Spec{Name: "Variable name", Kind: field.KindString}},
		{layout.CasterLevel, &Spec{Name: "Caster level", Kind: field.KindInt}},
		{layout.FirstApply, &Spec{Name: "First apply", Kind: field.KindInt}},
		{layout.SecondaryType, &Spec{Name: "Secondary type", Kind: field.KindEnum, Labels: SecondaryTypes}},
		{layout.Padding, &Spec{Name: "Unused", Kind: field.KindRaw}},
	}
)

// Header decodes the record framing ahead of stage 1. The opcode field is
// labelled with the definition's name under the input context.
func (d *Definition) Header(in Input) ([]field.Descriptor, error) {
	specs := headerCompact
	if in.Layout.Extended() {
		specs = headerExtended
	}
	fs, err := describeAll(in, specs)
	if err != nil {
		return nil, err
	}
	for i := range fs {
		if fs[i].ID == layout.Opcode {
			if name := d.Name(in.Context); name != "" {
				fs[i].Value.Labels = []string{name}
			}
		}
	}
	return fs, nil
}

// Trailer decodes the extended-only fields after stage 5. Compact records have none.
func (d *Definition) Trailer(in Input) ([]field.Descriptor, error) {
	if !in.Layout.Extended() {
		return nil, nil
	}
	return describeAll(in, trailer)
}

// SpecFor returns the spec that decodes id in layout l under ctx, or nil when
// the field is not decoded there.
func (d *Definition) SpecFor(ctx engine.Context, l *layout.Layout, id layout.ID) *Spec {
	if s := d.Plan(ctx).specFor(id); s != nil {
		return s
	}
	if !l.Has(id) {
		return nil
	}
	groups := [][]slotSpec{headerCompact, common1Compact, common2For(ctx)}
	if l.Extended() {
		groups = [][]slotSpec{headerExtended, common1Extended, common2For(ctx), trailer}
	}
	for _, g := range groups {
		for _, s := range g {
			if s.id == id {
				return s.spec
			}
		}
	}
	return nil
}

func common2For(ctx engine.Context) []slotSpec {
	switch ctx.Family {
	case engine.FamilyIWD2:
		return common2IWD2
	case engine.FamilyEE:
		return common2EE
	}
	return common2Default
}
