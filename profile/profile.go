package profile

import (
	"io"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/wippyai/ie-effects/engine"
	"github.com/wippyai/ie-effects/errors"
)

// Profile describes one game installation: which engine wrote its records
// and where its IDS files live.
type Profile struct {
	Name    string
	Context engine.Context
	// IDSDir is a directory of IDS files overriding the built-in set.
	IDSDir string
}

var loadOptions = ini.LoadOptions{
	InsensitiveSections:     true,
	InsensitiveKeys:         true,
	SkipUnrecognizableLines: true,
}

// Load reads a profile from an INI file name, []byte or io.Reader:
//
//	[game]
//	name    = Baldur's Gate II
//	preset  = bg2        ; optional starting point
//	family  = BG2
//	variant =
//
//	[expansions]
//	tob   = true
//	tobex = true
//
//	[paths]
//	ids = /games/bg2/override
//
// Keys given next to a preset refine it.
func Load(source any) (*Profile, error) {
	f, err := ini.LoadSources(loadOptions, source)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseProfile, errors.KindInvalidData, err, "load profile")
	}
	return fromINI(f)
}

func fromINI(f *ini.File) (*Profile, error) {
	game := f.Section("game")
	p := &Profile{Name: game.Key("name").String()}

	if name := game.Key("preset").String(); name != "" {
		ctx, ok := engine.Preset(name)
		if !ok {
			err := errors.NotFound(errors.PhaseProfile, "preset", name)
			err.Detail += ", want one of " + strings.Join(engine.PresetNames(), ", ")
			return nil, err
		}
		p.Context = ctx
	}
	if s := game.Key("family").String(); s != "" {
		fam, err := engine.ParseFamily(s)
		if err != nil {
			return nil, err
		}
		p.Context.Family = fam
	}
	if game.HasKey("variant") {
		v, err := engine.ParseVariant(game.Key("variant").String())
		if err != nil {
			return nil, err
		}
		p.Context.Variant = v
	}
	if p.Context.Variant != engine.VariantNone && p.Context.Family == engine.FamilyUnknown {
		p.Context.Family = engine.FamilyEE
	}
	if p.Context.Family == engine.FamilyUnknown {
		return nil, errors.InvalidInput(errors.PhaseProfile, "profile names no engine family or preset")
	}
	if p.Context.Variant != engine.VariantNone && !p.Context.Enhanced() {
		return nil, errors.InvalidInput(errors.PhaseProfile,
			"variant "+p.Context.Variant.String()+" needs the EE family, not "+p.Context.Family.String())
	}

	for _, k := range f.Section("expansions").Keys() {
		flag, err := engine.ParseFlag(k.Name())
		if err != nil {
			return nil, err
		}
		on, err := k.Bool()
		if err != nil {
			return nil, errors.New(errors.PhaseProfile, errors.KindInvalidInput).
				Field(k.Name()).
				Value(k.String()).
				Cause(err).
				Detail("expansion flag must be a boolean").
				Build()
		}
		if on {
			p.Context = p.Context.WithFlags(flag)
		} else {
			p.Context.Flags &^= flag
		}
	}

	p.IDSDir = f.Section("paths").Key("ids").String()
	if p.Name == "" {
		p.Name = p.Context.String()
	}
	return p, nil
}

// WriteTo writes p in the format Load reads. Every flag is written
// explicitly so the file does not depend on preset defaults.
func (p *Profile) WriteTo(w io.Writer) (int64, error) {
	f := ini.Empty(loadOptions)
	game, _ := f.NewSection("game")
	game.Key("name").SetValue(p.Name)
	game.Key("family").SetValue(p.Context.Family.String())
	game.Key("variant").SetValue(p.Context.Variant.String())

	exp, _ := f.NewSection("expansions")
	for _, name := range engine.FlagNames() {
		flag, _ := engine.ParseFlag(name)
		if p.Context.Has(flag) {
			exp.Key(name).SetValue("true")
		} else {
			exp.Key(name).SetValue("false")
		}
	}
	if p.IDSDir != "" {
		paths, _ := f.NewSection("paths")
		paths.Key("ids").SetValue(p.IDSDir)
	}
	return f.WriteTo(w)
}
