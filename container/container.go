package container

import (
	"encoding/binary"
	"os"
	"strconv"
	"strings"

	"github.com/wippyai/ie-effects/engine"
	"github.com/wippyai/ie-effects/errors"
	"github.com/wippyai/ie-effects/layout"
)

// Kind is the container file type.
type Kind string

const (
	KindEFF Kind = "EFF"
	KindITM Kind = "ITM"
	KindSPL Kind = "SPL"
	KindCRE Kind = "CRE"
)

// Ref locates one effect record inside a container. Base and Size are what
// the decoder takes; Size also selects the record layout.
type Ref struct {
	Index int    // position among all records of the file
	Block string // "global", "ability 1", "equipped", ...
	Base  int
	Size  int
}

// File is a container with its effect records located but not decoded.
type File struct {
	Kind    Kind
	Version string
	Data    []byte
	Records []Ref
}

// Open reads and parses a container file.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("reading "+path, err)
	}
	return Parse(data)
}

// Parse locates the effect records of an EFF, ITM, SPL or CRE file.
func Parse(data []byte) (*File, error) {
	if len(data) < 8 {
		return nil, errors.TooShort(errors.PhaseLoad, []string{"header"}, len(data), 8)
	}
	f := &File{
		Kind:    Kind(strings.TrimSpace(string(data[0:4]))),
		Version: strings.TrimSpace(string(data[4:8])),
		Data:    data,
	}
	var err error
	switch f.Kind {
	case KindEFF:
		err = f.locateEFF()
	case KindITM:
		err = f.locateFeatured(itmAbilitySize)
	case KindSPL:
		err = f.locateFeatured(splAbilitySize)
	case KindCRE:
		err = f.locateCRE()
	default:
		return nil, errors.Unsupported(errors.PhaseLoad, "container signature "+strconv.Quote(string(data[0:4])))
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Family guesses the engine family from the file version. ok is false for
// versions every family shares, such as ITM "V1".
func (f *File) Family() (engine.Family, bool) {
	switch f.Kind {
	case KindITM:
		switch f.Version {
		case "V1.1":
			return engine.FamilyPST, true
		case "V2.0":
			return engine.FamilyIWD2, true
		}
	case KindCRE:
		switch f.Version {
		case "V1.2":
			return engine.FamilyPST, true
		case "V2.2":
			return engine.FamilyIWD2, true
		case "V9.0":
			return engine.FamilyIWD, true
		}
	}
	return engine.FamilyUnknown, false
}

// Record returns the bytes of record i.
func (f *File) Record(i int) []byte {
	r := f.Records[i]
	return f.Data[r.Base : r.Base+r.Size]
}

// EFF files wrap one extended record behind their own 8-byte signature.
func (f *File) locateEFF() error {
	if f.Version != "V2.0" {
		return errors.Unsupported(errors.PhaseLoad, "EFF version "+f.Version)
	}
	return f.add("global", 8, layout.ExtendedMinSize)
}

const (
	itmAbilitySize = 0x38
	splAbilitySize = 0x28

	abilitiesOffset = 0x64
	abilitiesCount  = 0x68
	featuresOffset  = 0x6A
	globalIndex     = 0x6E
	globalCount     = 0x70
	headerEnd       = 0x72

	abilityFeatureCount = 0x1E
	abilityFeatureIndex = 0x20
)

// locateFeatured handles ITM and SPL, whose compact records sit in one
// feature block table indexed by the global block and each ability.
func (f *File) locateFeatured(abilitySize int) error {
	d := f.Data
	if len(d) < headerEnd {
		return errors.TooShort(errors.PhaseLoad, []string{string(f.Kind), "header"}, len(d), headerEnd)
	}
	table := int(binary.LittleEndian.Uint32(d[featuresOffset:]))

	block := func(name string, index, count int) error {
		for i := range count {
			if err := f.add(name, table+(index+i)*layout.CompactMinSize, layout.CompactMinSize); err != nil {
				return err
			}
		}
		return nil
	}

	global := "global"
	if f.Kind == KindITM {
		global = "equipped"
	}
	if err := block(global, int(binary.LittleEndian.Uint16(d[globalIndex:])), int(binary.LittleEndian.Uint16(d[globalCount:]))); err != nil {
		return err
	}

	abilities := int(binary.LittleEndian.Uint32(d[abilitiesOffset:]))
	n := int(binary.LittleEndian.Uint16(d[abilitiesCount:]))
	for a := range n {
		at := abilities + a*abilitySize
		if at+abilitySize > len(d) {
			return errors.OutOfBounds(errors.PhaseLoad, []string{string(f.Kind), "ability " + strconv.Itoa(a+1)}, at+abilitySize, len(d))
		}
		count := int(binary.LittleEndian.Uint16(d[at+abilityFeatureCount:]))
		index := int(binary.LittleEndian.Uint16(d[at+abilityFeatureIndex:]))
		if err := block("ability "+strconv.Itoa(a+1), index, count); err != nil {
			return err
		}
	}
	return nil
}

const (
	creEffectVersion = 0x33
	creEffectsOffset = 0x2C4
	creEffectsCount  = 0x2C8
)

// locateCRE handles V1.0 creatures. The effect-version byte selects compact
// or extended records for the whole file.
func (f *File) locateCRE() error {
	if f.Version != "V1.0" {
		return errors.Unsupported(errors.PhaseLoad, "CRE version "+f.Version)
	}
	d := f.Data
	if len(d) < creEffectsCount+4 {
		return errors.TooShort(errors.PhaseLoad, []string{"CRE", "header"}, len(d), creEffectsCount+4)
	}
	size := layout.CompactMinSize
	if d[creEffectVersion] == 1 {
		size = layout.ExtendedMinSize
	}
	off := int(binary.LittleEndian.Uint32(d[creEffectsOffset:]))
	n := int(binary.LittleEndian.Uint32(d[creEffectsCount:]))
	for i := range n {
		if err := f.add("effects", off+i*size, size); err != nil {
			return err
		}
	}
	return nil
}

func (f *File) add(block string, base, size int) error {
	if base < 0 || base+size > len(f.Data) {
		return errors.OutOfBounds(errors.PhaseLoad, []string{string(f.Kind), block}, base+size, len(f.Data))
	}
	f.Records = append(f.Records, Ref{Index: len(f.Records), Block: block, Base: base, Size: size})
	return nil
}
