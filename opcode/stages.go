package opcode

import (
	"github.com/wippyai/ie-effects/field"
	"github.com/wippyai/ie-effects/layout"
)

// Stage byte budgets. Common block 1 is wider in the extended layout.
const (
	ParamsBudget          = 8
	Common1CompactBudget  = 8
	Common1ExtendedBudget = 12
	ResourceBudget        = 8
	Common2Budget         = 16
	SpecialBudget         = 4
)

// Common1Budget returns the stage-2 budget for l.
func Common1Budget(l *layout.Layout) int {
	if l.Extended() {
		return Common1ExtendedBudget
	}
	return Common1CompactBudget
}

// Stage1 is the result of decoding the parameter pair.
type Stage1 struct {
	Fields []field.Descriptor
	Values Values // driver values for later stages
	Tag    *Spec  // how the resource stage reads its bytes
}

// Params decodes stage 1, the parameter pair, and resolves the resource tag.
func (d *Definition) Params(in Input) (Stage1, error) {
	p := d.Plan(in.Context)
	vals, err := readValues(in, p)
	if err != nil {
		return Stage1{}, err
	}
	var out []field.Descriptor
	for _, slot := range []struct {
		id   layout.ID
		spec *Spec
	}{{layout.Param1, p.Param1}, {layout.Param2, p.Param2}} {
		fs, err := slot.spec.describeSlot(in, slot.id, vals)
		if err != nil {
			return Stage1{}, err
		}
		out = append(out, fs...)
	}
	return Stage1{Fields: out, Values: vals, Tag: p.Resource.Resolve(vals)}, nil
}

// readValues reads the raw parameter values every switch and IDS reference may consult.
func readValues(in Input, p Plan) (Values, error) {
	vals := make(Values, 4)
	for _, slot := range []struct {
		id   layout.ID
		spec *Spec
	}{{layout.Param1, p.Param1}, {layout.Param2, p.Param2}} {
		_, raw, err := in.slot(slot.id)
		if err != nil {
			return nil, err
		}
		if slot.spec.Split() {
			vals[slot.id] = int64(field.ReadUint(raw[:2]))
			vals[highOf[slot.id]] = int64(field.ReadUint(raw[2:]))
			continue
		}
		vals[slot.id] = int64(field.ReadInt(raw))
	}
	return vals, nil
}

var (
	timingSpec   = &Spec{Name: "Timing mode", Kind: field.KindEnum, Labels: TimingModes}
	resistSpec   = &Spec{Name: "Dispel/Resistance", Kind: field.KindEnum, Labels: ResistDispel}
	durationSpec = &Spec{Name: "Duration", Kind: field.KindUint}
	prob1Spec    = &Spec{Name: "Probability 1", Kind: field.KindUint}
	prob2Spec    = &Spec{Name: "Probability 2", Kind: field.KindUint}
)

type slotSpec struct {
	id   layout.ID
	spec *Spec
}

var (
	common1Compact = []slotSpec{
		{layout.Timing, timingSpec},
		{layout.Resist, resistSpec},
		{layout.Duration, durationSpec},
		{layout.Probability1, prob1Spec},
		{layout.Probability2, prob2Spec},
	}
	// The extended layout moves dispel/resistance into the trailer.
	common1Extended = []slotSpec{
		{layout.Timing, timingSpec},
		{layout.Duration, durationSpec},
		{layout.Probability1, prob1Spec},
		{layout.Probability2, prob2Spec},
	}
)

// Common1 decodes stage 2: timing, dispel/resistance, duration and probabilities.
// Its shape depends only on the layout.
func (d *Definition) Common1(in Input) ([]field.Descriptor, error) {
	specs := common1Compact
	if in.Layout.Extended() {
		specs = common1Extended
	}
	return describeAll(in, specs)
}

// Resource decodes stage 3 as directed by the tag stage 1 produced.
func (d *Definition) Resource(in Input, tag *Spec) ([]field.Descriptor, error) {
	if tag == nil {
		tag = genericResource
	}
	return describeAll(in, []slotSpec{{layout.Resource, tag}})
}

var (
	common2Default = []slotSpec{
		{layout.DiceCount, &Spec{Name: "# dice thrown", Kind: field.KindInt}},
		{layout.DiceSize, &Spec{Name: "Dice size", Kind: field.KindInt}},
		{layout.SaveType, &Spec{Name: "Save type", Kind: field.KindBitmask, Labels: SaveTypes, Zero: "No save"}},
		{layout.SaveBonus, &Spec{Name: "Save bonus", Kind: field.KindInt}},
	}
	common2EE = []slotSpec{
		{layout.DiceCount, &Spec{Name: "# dice thrown/maximum level", Kind: field.KindInt}},
		{layout.DiceSize, &Spec{Name: "Dice size/minimum level", Kind: field.KindInt}},
		{layout.SaveType, &Spec{Name: "Save type", Kind: field.KindBitmask, Labels: SaveTypesEE, Zero: "No save"}},
		{layout.SaveBonus, &Spec{Name: "Save bonus", Kind: field.KindInt}},
	}
	common2IWD2 = []slotSpec{
		{layout.DiceCount, &Spec{Name: "Save penalty", Kind: field.KindInt}},
		{layout.DiceSize, &Spec{Name: "Parameter", Kind: field.KindInt}},
		{layout.SaveType, &Spec{Name: "Save type", Kind: field.KindBitmask, Labels: SaveTypesIWD2, Zero: "No save"}},
		{layout.SaveBonus, &Spec{Name: "Save bonus", Kind: field.KindInt}},
	}
)

// Common2 decodes stage 4: dice and saving throw. IWD2 replaces the dice with
// its third-edition save penalty and uses Fortitude/Reflex/Will save types.
func (d *Definition) Common2(in Input) ([]field.Descriptor, error) {
	return describeAll(in, common2For(in.Context))
}

// Special decodes stage 5, whose meaning may depend on the stage 1 values.
func (d *Definition) Special(in Input, vals Values) ([]field.Descriptor, error) {
	return d.Plan(in.Context).Special.describeSlot(in, layout.Special, vals)
}

func describeAll(in Input, specs []slotSpec) ([]field.Descriptor, error) {
	out := make([]field.Descriptor, 0, len(specs))
	for _, s := range specs {
		fs, err := s.spec.describeSlot(in, s.id, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, fs...)
	}
	return out, nil
}
