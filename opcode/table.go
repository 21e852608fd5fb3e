package opcode

import (
	"bytes"
	"embed"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/ie-effects/engine"
	"github.com/wippyai/ie-effects/errors"
	"github.com/wippyai/ie-effects/field"
	"github.com/wippyai/ie-effects/layout"
)

//go:embed data/*.yaml
var builtinData embed.FS

// builtinFiles are compiled in this order; label sets come first.
var builtinFiles = []string{"data/labels.yaml", "data/opcodes.yaml"}

type tableYAML struct {
	Labels  map[string]labelsYAML `yaml:"labels"`
	Shapes  map[string]planYAML   `yaml:"shapes"`
	Opcodes []opcodeYAML          `yaml:"opcodes"`
}

type labelsYAML struct {
	Enum   []string         `yaml:"enum"`
	Values map[int64]string `yaml:"values"`
	Bits   []string         `yaml:"bits"`
}

type planYAML struct {
	Param1   *specYAML `yaml:"param1"`
	Param2   *specYAML `yaml:"param2"`
	Resource *specYAML `yaml:"resource"`
	Special  *specYAML `yaml:"special"`
}

type selectorYAML struct {
	Family  []string `yaml:"family"`
	Flag    []string `yaml:"flag"`
	Variant string   `yaml:"variant"`
}

type nameYAML struct {
	When selectorYAML `yaml:"when"`
	Name string       `yaml:"name"`
}

type overrideYAML struct {
	When     selectorYAML `yaml:"when"`
	Shape    string       `yaml:"shape"`
	planYAML `yaml:",inline"`
}

type opcodeYAML struct {
	ID        int            `yaml:"id"`
	Name      string         `yaml:"name"`
	Games     []string       `yaml:"games"`
	Shape     string         `yaml:"shape"`
	Names     []nameYAML     `yaml:"names"`
	Overrides []overrideYAML `yaml:"overrides"`
	planYAML  `yaml:",inline"`
}

type specYAML struct {
	Name    string      `yaml:"name"`
	Kind    string      `yaml:"kind"`
	Labels  string      `yaml:"labels"`
	Zero    string      `yaml:"zero"`
	IDS     string      `yaml:"ids"`
	Types   []string    `yaml:"types"`
	Switch  string      `yaml:"switch"`
	Cases   []caseYAML  `yaml:"cases"`
	Default *specYAML   `yaml:"default"`
	Split   []*specYAML `yaml:"split"`
}

type caseYAML struct {
	Values   []int64 `yaml:"values"`
	specYAML `yaml:",inline"`
}

// Builtin compiles the opcode tables embedded in the package.
func Builtin() ([]*Definition, error) {
	docs := make([][]byte, 0, len(builtinFiles))
	for _, name := range builtinFiles {
		b, err := builtinData.ReadFile(name)
		if err != nil {
			return nil, errors.Load("read "+name, err)
		}
		docs = append(docs, b)
	}
	return Compile(docs...)
}

// Compile builds definitions from one or more YAML table documents. Label
// sets and shapes from earlier documents are visible to later ones.
// Definitions are returned in ascending opcode order.
func Compile(docs ...[]byte) ([]*Definition, error) {
	c := &compiler{
		labels: make(map[string]*Labels),
		shapes: make(map[string]planYAML),
	}
	for _, l := range builtinLabels {
		c.labels[l.Name] = l
	}

	var opcodes []opcodeYAML
	for i, doc := range docs {
		var t tableYAML
		dec := yaml.NewDecoder(bytes.NewReader(doc))
		dec.KnownFields(true)
		if err := dec.Decode(&t); err != nil {
			return nil, errors.ParseFailed("opcode table document "+strconv.Itoa(i), err)
		}
		if err := c.addLabels(t.Labels); err != nil {
			return nil, err
		}
		for name, shape := range t.Shapes {
			if _, dup := c.shapes[name]; dup {
				return nil, errors.Duplicate(errors.PhaseParse, "shape", name)
			}
			c.shapes[name] = shape
		}
		opcodes = append(opcodes, t.Opcodes...)
	}

	seen := make(map[int]bool, len(opcodes))
	defs := make([]*Definition, 0, len(opcodes))
	for _, y := range opcodes {
		if seen[y.ID] {
			return nil, errors.Duplicate(errors.PhaseRegistry, "opcode", y.ID)
		}
		seen[y.ID] = true
		d, err := c.opcode(y)
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs, nil
}

type compiler struct {
	labels map[string]*Labels
	shapes map[string]planYAML
}

func (c *compiler) addLabels(in map[string]labelsYAML) error {
	names := make([]string, 0, len(in))
	for name := range in {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		y := in[name]
		if _, dup := c.labels[name]; dup {
			return errors.Duplicate(errors.PhaseParse, "label set", name)
		}
		var l *Labels
		switch {
		case y.Bits != nil:
			l = BitLabels(name, y.Bits...)
		case y.Values != nil:
			l = SparseLabels(name, y.Values)
			for i, s := range y.Enum {
				if _, ok := l.values[int64(i)]; !ok && s != "" {
					l.values[int64(i)] = s
				}
			}
		default:
			l = EnumLabels(name, y.Enum...)
		}
		c.labels[name] = l
	}
	return nil
}

func (c *compiler) opcode(y opcodeYAML) (*Definition, error) {
	path := []string{"opcode", strconv.Itoa(y.ID)}

	games, err := parseFamilies(path, y.Games)
	if err != nil {
		return nil, err
	}
	base, err := c.plan(path, y.Shape, y.planYAML)
	if err != nil {
		return nil, err
	}

	names := make([]NameRule, 0, len(y.Names))
	for _, n := range y.Names {
		sel, err := parseSelector(path, n.When)
		if err != nil {
			return nil, err
		}
		names = append(names, NameRule{When: sel, Name: n.Name})
	}

	overrides := make([]Override, 0, len(y.Overrides))
	for i, o := range y.Overrides {
		opath := append(path[:len(path):len(path)], "overrides", strconv.Itoa(i))
		sel, err := parseSelector(opath, o.When)
		if err != nil {
			return nil, err
		}
		p, err := c.plan(opath, o.Shape, o.planYAML)
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, Override{When: sel, Plan: p})
	}

	if y.Name == "" && len(names) == 0 {
		return nil, errors.InvalidData(errors.PhaseParse, path, "opcode has no name")
	}
	return NewDefinition(y.ID, y.Name, base, games, names, overrides), nil
}

// plan compiles a stage set, starting from a named shape when one is given.
// Inline stages replace the shape's.
func (c *compiler) plan(path []string, shape string, y planYAML) (Plan, error) {
	if shape != "" {
		s, ok := c.shapes[shape]
		if !ok {
			return Plan{}, errors.New(errors.PhaseParse, errors.KindNotFound).
				Path(path...).
				Detail("shape %q not defined", shape).
				Build()
		}
		if y.Param1 == nil {
			y.Param1 = s.Param1
		}
		if y.Param2 == nil {
			y.Param2 = s.Param2
		}
		if y.Resource == nil {
			y.Resource = s.Resource
		}
		if y.Special == nil {
			y.Special = s.Special
		}
	}

	var p Plan
	var err error
	if p.Param1, err = c.stage(path, layout.Param1, y.Param1); err != nil {
		return Plan{}, err
	}
	if p.Param2, err = c.stage(path, layout.Param2, y.Param2); err != nil {
		return Plan{}, err
	}
	if p.Resource, err = c.stage(path, layout.Resource, y.Resource); err != nil {
		return Plan{}, err
	}
	if p.Special, err = c.stage(path, layout.Special, y.Special); err != nil {
		return Plan{}, err
	}
	return p, nil
}

func (c *compiler) stage(path []string, id layout.ID, y *specYAML) (*Spec, error) {
	if y == nil {
		return nil, nil
	}
	path = append(path[:len(path):len(path)], id.Key())

	if len(y.Split) > 0 {
		if id != layout.Param1 && id != layout.Param2 {
			return nil, errors.InvalidData(errors.PhaseParse, path, "only parameter slots can be split")
		}
		if len(y.Split) != 2 {
			return nil, errors.InvalidData(errors.PhaseParse, path, "split needs exactly two halves")
		}
		lo, err := c.spec(append(path, "low"), id, y.Split[0], id.String())
		if err != nil {
			return nil, err
		}
		hi, err := c.spec(append(path, "high"), highOf[id], y.Split[1], highOf[id].String())
		if err != nil {
			return nil, err
		}
		if lo.DependsOn(id) || hi.DependsOn(highOf[id]) {
			return nil, errors.InvalidData(errors.PhaseParse, path, "field depends on itself")
		}
		return &Spec{Name: y.Name, Halves: []*Spec{lo, hi}}, nil
	}

	s, err := c.spec(path, id, y, id.String())
	if err != nil {
		return nil, err
	}
	if s.DependsOn(id) {
		return nil, errors.InvalidData(errors.PhaseParse, path, "field depends on itself")
	}
	return s, nil
}

// spec compiles one spec tree for the slot id. name is inherited by arms that
// do not set their own.
func (c *compiler) spec(path []string, id layout.ID, y *specYAML, name string) (*Spec, error) {
	if y.Name != "" {
		name = y.Name
	}
	if len(y.Split) > 0 {
		return nil, errors.InvalidData(errors.PhaseParse, path, "split is only allowed at the top of a parameter slot")
	}
	s := &Spec{Name: name, Zero: y.Zero, Types: y.Types}

	if y.Switch != "" {
		drv, err := driver(path, y.Switch)
		if err != nil {
			return nil, err
		}
		s.Switch = drv
		for i, cy := range y.Cases {
			if len(cy.Values) == 0 {
				return nil, errors.InvalidData(errors.PhaseParse, path, "case "+strconv.Itoa(i)+" has no values")
			}
			cs, err := c.spec(append(path, "case", strconv.Itoa(i)), id, &cy.specYAML, name)
			if err != nil {
				return nil, err
			}
			s.Cases = append(s.Cases, Case{Values: cy.Values, Spec: cs})
		}
		if y.Default != nil {
			ds, err := c.spec(append(path, "default"), id, y.Default, name)
			if err != nil {
				return nil, err
			}
			s.Default = ds
		} else {
			s.Default = &Spec{Name: name, Kind: fallbackKind(id)}
		}
		return s, nil
	}

	if y.Labels != "" {
		l, ok := c.labels[y.Labels]
		if !ok {
			return nil, errors.New(errors.PhaseParse, errors.KindNotFound).
				Path(path...).
				Detail("label set %q not defined", y.Labels).
				Build()
		}
		s.Labels = l
	}
	if y.IDS != "" {
		drv, err := driver(path, y.IDS)
		if err != nil {
			return nil, err
		}
		s.IDS = drv
	}

	switch {
	case y.Kind != "":
		k, ok := field.ParseKind(y.Kind)
		if !ok {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
				Path(path...).
				Value(y.Kind).
				Detail("unknown field kind %q", y.Kind).
				Build()
		}
		s.Kind = k
	case s.Labels.Bitmask():
		s.Kind = field.KindBitmask
	case s.Labels != nil, s.IDS != layout.Invalid:
		s.Kind = field.KindEnum
	case len(s.Types) > 0:
		s.Kind = field.KindResource
	default:
		s.Kind = fallbackKind(id)
	}

	if err := checkKind(path, id, s.Kind); err != nil {
		return nil, err
	}
	return s, nil
}

func fallbackKind(id layout.ID) field.Kind {
	if id == layout.Resource {
		return field.KindRaw
	}
	return field.KindInt
}

// checkKind rejects kinds that cannot occupy the slot: text needs the 8-byte
// resource slot, and the resource slot holds only text or raw bytes.
func checkKind(path []string, id layout.ID, k field.Kind) error {
	if id == layout.Resource {
		if k.Textual() || k == field.KindRaw {
			return nil
		}
	} else if !k.Textual() {
		return nil
	}
	return errors.New(errors.PhaseParse, errors.KindInvalidData).
		Path(path...).
		Value(k.String()).
		Detail("kind %s cannot decode %s", k, id.Key()).
		Build()
}

// driver validates a switch or IDS reference: only stage-1 values are known
// before the later stages run.
func driver(path []string, key string) (layout.ID, error) {
	id, ok := layout.ParseID(key)
	if ok {
		switch id {
		case layout.Param1, layout.Param2, layout.Param1High, layout.Param2High:
			return id, nil
		}
	}
	return layout.Invalid, errors.New(errors.PhaseParse, errors.KindInvalidData).
		Path(path...).
		Value(key).
		Detail("%q cannot drive another field", key).
		Build()
}

func parseFamilies(path []string, names []string) ([]engine.Family, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]engine.Family, 0, len(names))
	for _, n := range names {
		f, err := engine.ParseFamily(n)
		if err != nil {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
				Path(path...).
				Cause(err).
				Detail("bad family %q", n).
				Build()
		}
		out = append(out, f)
	}
	return out, nil
}

func parseSelector(path []string, y selectorYAML) (Selector, error) {
	var s Selector
	var err error
	if s.Families, err = parseFamilies(path, y.Family); err != nil {
		return Selector{}, err
	}
	for _, n := range y.Flag {
		f, err := engine.ParseFlag(n)
		if err != nil {
			return Selector{}, errors.New(errors.PhaseParse, errors.KindInvalidData).
				Path(path...).
				Cause(err).
				Detail("bad flag %q", n).
				Build()
		}
		s.Flags |= f
	}
	if y.Variant != "" {
		if s.Variant, err = engine.ParseVariant(y.Variant); err != nil {
			return Selector{}, errors.New(errors.PhaseParse, errors.KindInvalidData).
				Path(path...).
				Cause(err).
				Detail("bad variant %q", y.Variant).
				Build()
		}
	}
	return s, nil
}
