package decoder

import (
	"strconv"

	"go.uber.org/zap"

	ieeffects "github.com/wippyai/ie-effects"
	"github.com/wippyai/ie-effects/engine"
	"github.com/wippyai/ie-effects/errors"
	"github.com/wippyai/ie-effects/field"
	"github.com/wippyai/ie-effects/layout"
	"github.com/wippyai/ie-effects/opcode"
)

// Options configures decoder behavior.
type Options struct {
	// Registry resolves opcode ids. Nil means opcode.Default().
	Registry *opcode.Registry
	// Symbols labels IDS-typed values. Nil leaves them numeric.
	Symbols ieeffects.Symbols
}

// DefaultOptions returns default decoder configuration.
func DefaultOptions() Options {
	return Options{Registry: opcode.Default()}
}

// Decoder turns effect record bytes into fields. Thread-safe: it holds no
// per-record state.
type Decoder struct {
	registry *opcode.Registry
	symbols  ieeffects.Symbols
}

// New creates a Decoder with the given options.
func New(opts Options) *Decoder {
	if opts.Registry == nil {
		opts.Registry = opcode.Default()
	}
	return &Decoder{registry: opts.Registry, symbols: opts.Symbols}
}

// NewWithDefaults creates a Decoder backed by the process-wide registry.
func NewWithDefaults() *Decoder {
	return New(DefaultOptions())
}

// Registry returns the registry the decoder resolves opcodes from.
func (d *Decoder) Registry() *opcode.Registry {
	return d.registry
}

// stage is one step of the fixed decode sequence with its byte budget.
type stage struct {
	name   string
	budget int
	run    func() ([]field.Descriptor, error)
}

// Decode decodes the record of opcode id that starts at buf[base] and is size
// bytes long. size selects the layout. A record below the compact minimum, or
// extending past the buffer, fails without partial output.
func (d *Decoder) Decode(ctx engine.Context, id int, buf []byte, base, size int) (*Record, error) {
	path := []string{"opcode " + strconv.Itoa(id)}

	l, err := layout.ForSize(size)
	if err != nil {
		return nil, err
	}
	if base < 0 || base+size > len(buf) {
		return nil, errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
			Path(path...).
			Layout(l.Name()).
			Value(base+size).
			Detail("record [%d, %d) exceeds buffer of %d bytes", base, base+size, len(buf)).
			Build()
	}

	def := d.registry.Resolve(ctx, id)
	in := opcode.Input{Context: ctx, Layout: l, Buf: buf, Base: base, Symbols: d.symbols}

	fields, err := def.Header(in)
	if err != nil {
		return nil, err
	}

	var s1 opcode.Stage1
	stages := []stage{
		{"params", opcode.ParamsBudget, func() ([]field.Descriptor, error) {
			var err error
			s1, err = def.Params(in)
			return s1.Fields, err
		}},
		{"common1", opcode.Common1Budget(l), func() ([]field.Descriptor, error) {
			return def.Common1(in)
		}},
		{"resource", opcode.ResourceBudget, func() ([]field.Descriptor, error) {
			return def.Resource(in, s1.Tag)
		}},
		{"common2", opcode.Common2Budget, func() ([]field.Descriptor, error) {
			return def.Common2(in)
		}},
		{"special", opcode.SpecialBudget, func() ([]field.Descriptor, error) {
			return def.Special(in, s1.Values)
		}},
	}
	staged, err := runStages(path, stages)
	if err != nil {
		return nil, err
	}
	fields = append(fields, staged...)

	tail, err := def.Trailer(in)
	if err != nil {
		return nil, err
	}
	fields = append(fields, tail...)
	if n := span(fields); n != l.MinSize() {
		return nil, errors.StageBudget(path, "record", n, l.MinSize())
	}

	rec := newRecord(id, def.Name(ctx), ctx, l, base, size, fields)
	Logger().Debug("decoded effect",
		zap.Int("opcode", id),
		zap.String("name", rec.Name),
		zap.String("layout", l.Name()),
		zap.Int("fields", len(fields)))
	return rec, nil
}

// DecodeAt reads the opcode id from the record itself and decodes it.
func (d *Decoder) DecodeAt(ctx engine.Context, buf []byte, base, size int) (*Record, error) {
	l, err := layout.ForSize(size)
	if err != nil {
		return nil, err
	}
	slot, err := l.Slot(layout.Opcode)
	if err != nil {
		return nil, err
	}
	start := base + slot.Offset
	if base < 0 || start+slot.Size > len(buf) {
		return nil, errors.OutOfBounds(errors.PhaseDecode, []string{"opcode"}, start+slot.Size, len(buf))
	}
	id := int(field.ReadUint(buf[start : start+slot.Size]))
	return d.Decode(ctx, id, buf, base, size)
}

// runStages runs stages in order. A stage whose fields do not cover exactly
// its budget aborts the decode.
func runStages(path []string, stages []stage) ([]field.Descriptor, error) {
	var out []field.Descriptor
	for _, st := range stages {
		fs, err := st.run()
		if err != nil {
			return nil, err
		}
		if n := span(fs); n != st.budget {
			return nil, errors.StageBudget(path, st.name, n, st.budget)
		}
		out = append(out, fs...)
	}
	return out, nil
}

func span(fs []field.Descriptor) int {
	n := 0
	for _, f := range fs {
		n += f.Length
	}
	return n
}
