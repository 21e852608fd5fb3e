package opcode

import (
	"slices"

	ieeffects "github.com/wippyai/ie-effects"
	"github.com/wippyai/ie-effects/engine"
	"github.com/wippyai/ie-effects/field"
	"github.com/wippyai/ie-effects/layout"
)

// Plan is the set of per-opcode specs in force for one engine context.
type Plan struct {
	Param1   *Spec
	Param2   *Spec
	Resource *Spec
	Special  *Spec
}

// Override replaces some of a definition's specs when its selector matches.
type Override struct {
	When Selector
	Plan Plan // nil members keep the less specific choice
}

// NameRule renames a definition, or hides it with an empty name, under a selector.
type NameRule struct {
	When Selector
	Name string
}

// Definition describes how one opcode decodes. Definitions are immutable once
// built and safe for concurrent use.
type Definition struct {
	ID        int
	name      string
	games     []engine.Family // nil means every family
	names     []NameRule
	base      Plan
	overrides []Override
	unknown   bool
}

// NewDefinition builds a definition. Nil members of base decode generically.
func NewDefinition(id int, name string, base Plan, games []engine.Family, names []NameRule, overrides []Override) *Definition {
	return &Definition{
		ID:        id,
		name:      name,
		games:     slices.Clone(games),
		names:     slices.Clone(names),
		base:      base,
		overrides: slices.Clone(overrides),
	}
}

// newUnknown is the fallback for opcodes with no definition for a context:
// a generic parameter pair and nothing else interpreted.
func newUnknown(id int) *Definition {
	return &Definition{ID: id, name: "Unknown", unknown: true}
}

var (
	genericParam1   = &Spec{Name: "Parameter 1", Kind: field.KindInt}
	genericParam2   = &Spec{Name: "Parameter 2", Kind: field.KindInt}
	genericResource = &Spec{Name: "Unused", Kind: field.KindRaw}
	genericSpecial  = &Spec{Name: "Special", Kind: field.KindInt}
)

// Unknown reports whether d is an unknown-opcode fallback.
func (d *Definition) Unknown() bool { return d.unknown }

// Name returns the opcode's display name under ctx, or "" when the opcode
// does not exist for that engine.
func (d *Definition) Name(ctx engine.Context) string {
	if d.unknown {
		return d.name
	}
	if d.games != nil && !slices.Contains(d.games, ctx.Family) {
		return ""
	}
	sels := make([]Selector, len(d.names))
	for i, r := range d.names {
		sels[i] = r.When
	}
	if i := pick(ctx, sels); i >= 0 {
		return d.names[i].Name
	}
	return d.name
}

// Available reports whether the opcode exists under ctx.
func (d *Definition) Available(ctx engine.Context) bool {
	return d.Name(ctx) != ""
}

// Plan returns the specs in force for ctx. Each stage takes the most specific
// matching override that sets it: variant over flag over family over base.
func (d *Definition) Plan(ctx engine.Context) Plan {
	p := Plan{
		Param1:   choose(ctx, d.base.Param1, d.overrides, func(p Plan) *Spec { return p.Param1 }),
		Param2:   choose(ctx, d.base.Param2, d.overrides, func(p Plan) *Spec { return p.Param2 }),
		Resource: choose(ctx, d.base.Resource, d.overrides, func(p Plan) *Spec { return p.Resource }),
		Special:  choose(ctx, d.base.Special, d.overrides, func(p Plan) *Spec { return p.Special }),
	}
	if p.Param1 == nil {
		p.Param1 = genericParam1
	}
	if p.Param2 == nil {
		p.Param2 = genericParam2
	}
	if p.Resource == nil {
		p.Resource = genericResource
	}
	if p.Special == nil {
		p.Special = genericSpecial
	}
	return p
}

func choose(ctx engine.Context, base *Spec, overrides []Override, get func(Plan) *Spec) *Spec {
	out, level := base, -1
	for _, o := range overrides {
		s := get(o.Plan)
		if s == nil || !o.When.Matches(ctx) {
			continue
		}
		if l := o.When.Level(); l >= level {
			out, level = s, l
		}
	}
	return out
}

// specFor returns the spec that decodes id under p, descending into split halves.
func (p Plan) specFor(id layout.ID) *Spec {
	switch id {
	case layout.Param1:
		if p.Param1.Split() {
			return p.Param1.Halves[0]
		}
		return p.Param1
	case layout.Param2:
		if p.Param2.Split() {
			return p.Param2.Halves[0]
		}
		return p.Param2
	case layout.Param1High:
		if p.Param1.Split() {
			return p.Param1.Halves[1]
		}
	case layout.Param2High:
		if p.Param2.Split() {
			return p.Param2.Halves[1]
		}
	case layout.Resource:
		return p.Resource
	case layout.Special:
		return p.Special
	}
	return nil
}

// reinterpretable lists the fields whose meaning can depend on another field.
var reinterpretable = []layout.ID{
	layout.Param1, layout.Param1High, layout.Param2, layout.Param2High,
	layout.Resource, layout.Special,
}

// Dependents returns the fields whose interpretation reads the value of id under ctx.
func (d *Definition) Dependents(ctx engine.Context, id layout.ID) []layout.ID {
	p := d.Plan(ctx)
	var out []layout.ID
	for _, dep := range reinterpretable {
		if dep == id {
			continue
		}
		if p.specFor(dep).DependsOn(id) {
			out = append(out, dep)
		}
	}
	return out
}

// Drivers returns every field some other field depends on under ctx.
func (d *Definition) Drivers(ctx engine.Context) []layout.ID {
	var out []layout.ID
	for _, id := range reinterpretable {
		if len(d.Dependents(ctx, id)) > 0 {
			out = append(out, id)
		}
	}
	return out
}

// Reinterpret re-decodes an already decoded field using the driver values in
// vals. The field's bytes are taken from old.Raw; the result is a new
// Descriptor at the same offset and length. ok is false when id has no
// per-opcode spec under ctx.
func (d *Definition) Reinterpret(ctx engine.Context, old field.Descriptor, vals Values, sym ieeffects.Symbols) (field.Descriptor, bool) {
	s := d.Plan(ctx).specFor(old.ID)
	if s == nil {
		return field.Descriptor{}, false
	}
	return s.Describe(old.ID, old.Offset, old.Raw, vals, sym), true
}
