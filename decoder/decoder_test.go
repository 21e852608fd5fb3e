package decoder

import (
	"encoding/binary"
	stderrors "errors"
	"math/rand"
	"testing"

	"github.com/wippyai/ie-effects/engine"
	"github.com/wippyai/ie-effects/errors"
	"github.com/wippyai/ie-effects/field"
	"github.com/wippyai/ie-effects/layout"
	"github.com/wippyai/ie-effects/opcode"
)

var (
	bg2 = engine.New(engine.FamilyBG2, engine.FlagToB)
	ee  = engine.New(engine.FamilyEE).WithVariant(engine.VariantBG2EE)
)

func newDecoder() *Decoder {
	return New(Options{Registry: opcode.NewRegistry(opcode.Builtin)})
}

// compact returns a 48-byte V1 record at base within a larger buffer.
func compact(base int, id uint16, p1, p2 uint32) []byte {
	buf := make([]byte, base+layout.CompactMinSize+3)
	r := buf[base:]
	binary.LittleEndian.PutUint16(r[0x00:], id)
	binary.LittleEndian.PutUint32(r[0x04:], p1)
	binary.LittleEndian.PutUint32(r[0x08:], p2)
	return buf
}

// extended returns a 264-byte V2 record at offset 0.
func extended(id uint32, p1, p2 uint32) []byte {
	buf := make([]byte, layout.ExtendedMinSize)
	copy(buf, "EFF V2.0")
	binary.LittleEndian.PutUint32(buf[0x08:], id)
	binary.LittleEndian.PutUint32(buf[0x14:], p1)
	binary.LittleEndian.PutUint32(buf[0x18:], p2)
	return buf
}

func mustLookup(t *testing.T, rec *Record, id layout.ID) field.Descriptor {
	t.Helper()
	f, ok := rec.Lookup(id)
	if !ok {
		t.Fatalf("record has no %v field", id)
	}
	return f
}

func TestDecodeACBonus(t *testing.T) {
	dec := newDecoder()
	buf := compact(8, 0, 5, 0x01)
	rec, err := dec.Decode(engine.New(engine.FamilyBG2), 0, buf, 8, layout.CompactMinSize)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if rec.Name != "AC bonus" {
		t.Errorf("name = %q, want AC bonus", rec.Name)
	}
	if rec.Layout != layout.Compact {
		t.Errorf("layout = %v, want compact", rec.Layout)
	}

	p1 := mustLookup(t, rec, layout.Param1)
	if p1.Value.Kind != field.KindInt || p1.Value.Int != 5 {
		t.Errorf("param1 = %v, want int 5", p1.Value)
	}
	p2 := mustLookup(t, rec, layout.Param2)
	if p2.Value.Kind != field.KindBitmask {
		t.Fatalf("param2 kind = %v, want bitmask", p2.Value.Kind)
	}
	if len(p2.Value.Labels) != 1 || p2.Value.Labels[0] != "Crushing weapons" {
		t.Errorf("param2 labels = %v, want only Crushing weapons", p2.Value.Labels)
	}
	if p2.Offset != 8+0x08 {
		t.Errorf("param2 offset = %d, want %d", p2.Offset, 8+0x08)
	}

	op := mustLookup(t, rec, layout.Opcode)
	if !op.Value.HasLabel("AC bonus") {
		t.Errorf("opcode labels = %v", op.Value.Labels)
	}
}

func TestDecodeDamageIWD2(t *testing.T) {
	dec := newDecoder()
	buf := compact(0, 12, 6, 3)

	rec, err := dec.Decode(engine.New(engine.FamilyIWD2), 12, buf, 0, layout.CompactMinSize)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	mode := mustLookup(t, rec, layout.Param2)
	if mode.Name != "Mode" {
		t.Fatalf("param2 name = %q, want Mode", mode.Name)
	}
	if !mode.Value.HasLabel("Save for half") {
		t.Errorf("IWD2 mode labels = %v, want Save for half", mode.Value.Labels)
	}

	rec, err = dec.Decode(engine.New(engine.FamilyBG2), 12, buf, 0, layout.CompactMinSize)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if mode := mustLookup(t, rec, layout.Param2); mode.Value.HasLabel("Save for half") {
		t.Error("generic mode set should not include Save for half")
	}
}

func TestDecodeExtendedOnlyFields(t *testing.T) {
	dec := newDecoder()
	buf := extended(0, 0, 0)
	binary.LittleEndian.PutUint32(buf[0xC0:], 12)

	rec, err := dec.Decode(bg2, 0, buf, 0, layout.ExtendedMinSize)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	lvl := mustLookup(t, rec, layout.CasterLevel)
	if lvl.Offset != 0xC0 || lvl.Value.Int != 12 {
		t.Errorf("caster level = %d at %#x", lvl.Value.Int, lvl.Offset)
	}
	if sig := mustLookup(t, rec, layout.Signature); sig.Value.Text != "EFF " {
		t.Errorf("signature = %q", sig.Value.Text)
	}

	off, err := rec.Layout.OffsetOf(layout.CasterLevel)
	if err != nil || off != 0xC0 {
		t.Errorf("extended OffsetOf(casterLevel) = %#x, %v", off, err)
	}
	_, err = layout.Compact.OffsetOf(layout.CasterLevel)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLayout, Kind: errors.KindFieldNotInLayout}) {
		t.Errorf("compact OffsetOf(casterLevel) err = %v, want field-not-in-layout", err)
	}

	crec, err := dec.Decode(bg2, 0, compact(0, 0, 0, 0), 0, layout.CompactMinSize)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, ok := crec.Lookup(layout.CasterLevel); ok {
		t.Error("compact record should have no caster level")
	}
}

func TestDecodeAttacksPerRoundLiveUpdate(t *testing.T) {
	dec := newDecoder()
	buf := compact(0, 1, 2, 0)
	rec, err := dec.Decode(ee, 1, buf, 0, layout.CompactMinSize)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	before := mustLookup(t, rec, layout.Param1)
	if before.Value.Kind != field.KindEnum || !before.Value.HasLabel("2 attacks per round") {
		t.Fatalf("param1 = %v, want labelled attacks per round", before.Value)
	}

	repls := dec.OnFieldChanged(ee, rec, layout.Param2, 2)
	if len(repls) != 1 || repls[0].ID != layout.Param1 {
		t.Fatalf("replacements = %+v, want one for param1", repls)
	}
	after := repls[0].Field
	if after.Value.Kind != field.KindInt || len(after.Value.Labels) != 0 {
		t.Errorf("replacement = %v, want plain integer", after.Value)
	}
	if after.Offset != before.Offset || after.Length != before.Length {
		t.Errorf("replacement at %d+%d, field at %d+%d", after.Offset, after.Length, before.Offset, before.Length)
	}
	if after.Value.Int != 2 {
		t.Errorf("replacement value = %d, want 2", after.Value.Int)
	}

	// The record itself is untouched until Apply.
	if f := mustLookup(t, rec, layout.Param1); f.Value.Kind != field.KindEnum {
		t.Error("OnFieldChanged modified the record")
	}
	if err := rec.Apply(repls); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if f := mustLookup(t, rec, layout.Param1); f.Value.Kind != field.KindInt {
		t.Error("Apply did not swap the field")
	}
}

func TestOnFieldChangedNoOp(t *testing.T) {
	dec := newDecoder()
	rec, err := dec.Decode(ee, 1, compact(0, 1, 2, 0), 0, layout.CompactMinSize)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for _, id := range []layout.ID{layout.Param1, layout.Duration, layout.Resource, layout.CasterLevel} {
		if got := dec.OnFieldChanged(ee, rec, id, 7); len(got) != 0 {
			t.Errorf("OnFieldChanged(%v) = %+v, want none", id, got)
		}
	}
	if got := dec.OnFieldChanged(bg2, rec, layout.Param2, 2); len(got) != 0 {
		t.Errorf("BG2 has no mode switch, got %+v", got)
	}
	if got := dec.OnFieldChanged(ee, nil, layout.Param2, 2); got != nil {
		t.Error("nil record should yield nothing")
	}
}

func TestOnFieldChangedIdempotent(t *testing.T) {
	dec := newDecoder()
	tests := []struct {
		name string
		id   int
		ctx  engine.Context
		drv  layout.ID
		v    int64
	}{
		{"attacks per round", 1, ee, layout.Param2, 2},
		{"use EFF file", 177, bg2, layout.Param2, 5},
		{"restrict item", 319, ee, layout.Param2, 11},
		{"cast on condition", 232, ee, layout.Param2, 13},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := dec.Decode(tt.ctx, tt.id, compact(0, uint16(tt.id), 1, 0), 0, layout.CompactMinSize)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			first := dec.OnFieldChanged(tt.ctx, rec, tt.drv, tt.v)
			second := dec.OnFieldChanged(tt.ctx, rec, tt.drv, tt.v)
			if len(first) == 0 || len(first) != len(second) {
				t.Fatalf("replacement sets differ: %d vs %d", len(first), len(second))
			}
			for i := range first {
				if first[i].ID != second[i].ID || !first[i].Field.Equal(second[i].Field) {
					t.Errorf("replacement %d differs", i)
				}
			}

			// Applying twice converges on the same field list.
			if err := rec.Apply(first); err != nil {
				t.Fatalf("Apply: %v", err)
			}
			once := rec.Clone()
			if err := rec.Apply(dec.OnFieldChanged(tt.ctx, rec, tt.drv, tt.v)); err != nil {
				t.Fatalf("Apply: %v", err)
			}
			for i := range rec.Fields {
				if !rec.Fields[i].Equal(once.Fields[i]) {
					t.Errorf("field %d changed on second apply", i)
				}
			}
		})
	}
}

func TestDecodeTooShort(t *testing.T) {
	dec := newDecoder()
	buf := make([]byte, layout.CompactMinSize)
	ids := append(dec.Registry().IDs(), 9999, -1)
	for _, id := range ids {
		_, err := dec.Decode(bg2, id, buf, 0, layout.CompactMinSize-1)
		if err == nil {
			t.Fatalf("opcode %d: size %d should fail", id, layout.CompactMinSize-1)
		}
		var e *errors.Error
		if !stderrors.As(err, &e) || !e.Structural() || e.Kind != errors.KindTooShort {
			t.Fatalf("opcode %d: err = %v, want structural too_short", id, err)
		}
	}
}

func TestDecodePastBuffer(t *testing.T) {
	dec := newDecoder()
	buf := make([]byte, 60)
	_, err := dec.Decode(bg2, 0, buf, 20, layout.CompactMinSize)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindOutOfBounds}) {
		t.Errorf("err = %v, want out of bounds", err)
	}
}

func TestDecodeAllFieldsInBounds(t *testing.T) {
	dec := newDecoder()
	rng := rand.New(rand.NewSource(1))
	const base = 5

	for _, name := range engine.PresetNames() {
		ctx, _ := engine.Preset(name)
		for _, size := range []int{layout.CompactMinSize, layout.ExtendedMinSize} {
			buf := make([]byte, base+size)
			rng.Read(buf)
			for _, id := range dec.Registry().Available(ctx) {
				rec, err := dec.Decode(ctx, id, buf, base, size)
				if err != nil {
					t.Fatalf("%s/%d/opcode %d: %v", name, size, id, err)
				}
				checkFields(t, rec, base, size)
			}
		}
	}
}

func checkFields(t *testing.T, rec *Record, base, size int) {
	t.Helper()
	prev := base
	for i, f := range rec.Fields {
		if f.Offset < base || f.End() > base+size {
			t.Fatalf("opcode %d: %s [%d, %d) outside [%d, %d)", rec.Opcode, f.Name, f.Offset, f.End(), base, base+size)
		}
		// Fields are in physical order, so non-overlap reduces to monotonic starts.
		if f.Offset < prev {
			t.Fatalf("opcode %d: field %d %s overlaps its predecessor", rec.Opcode, i, f.Name)
		}
		prev = f.End()
		if e, ok := rec.Map.Get(f.ID); !ok || e.Index != i || e.Offset != f.Offset {
			t.Fatalf("opcode %d: map entry for %v = %+v", rec.Opcode, f.ID, e)
		}
	}
	if rec.Map.Len() != len(rec.Fields) {
		t.Fatalf("opcode %d: map has %d entries for %d fields", rec.Opcode, rec.Map.Len(), len(rec.Fields))
	}
}

func TestRunStagesBudget(t *testing.T) {
	word := field.Descriptor{ID: layout.Param1, Length: 4, Value: field.Value{Kind: field.KindInt}}
	half := field.Descriptor{ID: layout.Param2, Offset: 4, Length: 2, Value: field.Value{Kind: field.KindInt}}
	fixed := func(fs ...field.Descriptor) func() ([]field.Descriptor, error) {
		return func() ([]field.Descriptor, error) { return fs, nil }
	}

	got, err := runStages(nil, []stage{{"params", 8, fixed(word, word)}})
	if err != nil {
		t.Fatalf("runStages: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d fields, want 2", len(got))
	}

	tests := []struct {
		name   string
		stages []stage
	}{
		{"short", []stage{{"params", 8, fixed(word, half)}}},
		{"long", []stage{{"special", 4, fixed(word, half)}}},
		{"later stage", []stage{{"params", 8, fixed(word, word)}, {"resource", 8, fixed()}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ran := false
			stages := append(tt.stages, stage{"after", 0, func() ([]field.Descriptor, error) {
				ran = true
				return nil, nil
			}})
			fs, err := runStages([]string{"opcode 0"}, stages)
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindStageBudget}) {
				t.Fatalf("err = %v, want decode/stage_budget", err)
			}
			if fs != nil {
				t.Errorf("got partial output %v", fs)
			}
			if ran {
				t.Error("stages after the failing one should not run")
			}
		})
	}
}

func TestDecodeUnknownOpcode(t *testing.T) {
	dec := newDecoder()
	for _, id := range []int{9999, 318} {
		rec, err := dec.Decode(bg2, id, compact(0, 0, 0xFFFFFFFF, 7), 0, layout.CompactMinSize)
		if err != nil {
			t.Fatalf("Decode(%d): %v", id, err)
		}
		if rec.Name != "Unknown" {
			t.Errorf("opcode %d name = %q, want Unknown", id, rec.Name)
		}
		p1 := mustLookup(t, rec, layout.Param1)
		p2 := mustLookup(t, rec, layout.Param2)
		if p1.Value.Kind != field.KindInt || p1.Value.Int != -1 {
			t.Errorf("param1 = %v, want int -1", p1.Value)
		}
		if p2.Value.Kind != field.KindInt || p2.Value.Int != 7 {
			t.Errorf("param2 = %v, want int 7", p2.Value)
		}
		if a, b := dec.Registry().Resolve(bg2, id), dec.Registry().Resolve(bg2, id); a != b {
			t.Errorf("opcode %d: fallback not memoized", id)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	dec := newDecoder()
	rng := rand.New(rand.NewSource(7))
	for _, ctx := range []engine.Context{bg2, ee, engine.New(engine.FamilyIWD2)} {
		for _, size := range []int{layout.CompactMinSize, layout.ExtendedMinSize} {
			buf := make([]byte, size)
			rng.Read(buf)
			for _, id := range []int{0, 1, 12, 146, 177, 232, 319, 9999} {
				rec, err := dec.Decode(ctx, id, buf, 0, size)
				if err != nil {
					t.Fatalf("Decode(%d): %v", id, err)
				}
				def := dec.Registry().Resolve(ctx, id)
				vals := rec.Values()
				for _, f := range rec.Fields {
					raw, err := field.Encode(f)
					if err != nil {
						t.Fatalf("opcode %d: Encode(%s): %v", id, f.Name, err)
					}
					spec := def.SpecFor(ctx, rec.Layout, f.ID)
					if spec == nil {
						t.Fatalf("opcode %d: no spec for %v", id, f.ID)
					}
					got := spec.Describe(f.ID, f.Offset, raw, vals, nil)
					if f.ID == layout.Opcode {
						got.Value.Labels = f.Value.Labels
					}
					if !got.Value.Equal(f.Value) {
						t.Errorf("opcode %d %s: %v round-tripped to %v", id, f.Name, f.Value, got.Value)
					}
				}
			}
		}
	}
}

func TestRecordIndexWithSplitParam(t *testing.T) {
	rec, err := newDecoder().Decode(bg2, 12, compact(0, 12, 0, 0), 0, layout.CompactMinSize)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	slot, err := layout.Compact.IndexOf(layout.Timing)
	if err != nil {
		t.Fatalf("IndexOf: %v", err)
	}
	e, ok := rec.Map.Get(layout.Timing)
	if !ok {
		t.Fatal("record map has no timing")
	}
	if slot != 5 || e.Index != 6 {
		t.Errorf("timing slot %d, record index %d, want 5 and 6", slot, e.Index)
	}
	if rec.Fields[e.Index].ID != layout.Timing {
		t.Errorf("Fields[%d] = %v, want timing", e.Index, rec.Fields[e.Index].ID)
	}
}

func TestDecodeAt(t *testing.T) {
	dec := newDecoder()
	rec, err := dec.DecodeAt(bg2, compact(4, 12, 3, 0), 4, layout.CompactMinSize)
	if err != nil {
		t.Fatalf("DecodeAt: %v", err)
	}
	if rec.Opcode != 12 || rec.Name != "Damage" {
		t.Errorf("DecodeAt = %d %q, want 12 Damage", rec.Opcode, rec.Name)
	}

	rec, err = dec.DecodeAt(ee, extended(146, 0, 0), 0, layout.ExtendedMinSize)
	if err != nil {
		t.Fatalf("DecodeAt: %v", err)
	}
	if rec.Opcode != 146 {
		t.Errorf("extended opcode = %d, want 146", rec.Opcode)
	}
}

func TestUpdate(t *testing.T) {
	dec := newDecoder()
	buf := compact(0, 1, 2, 0)
	rec, err := dec.Decode(ee, 1, buf, 0, layout.CompactMinSize)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	repls, err := dec.Update(ee, rec, buf, layout.Param2, field.Value{Int: 2})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(repls) != 2 {
		t.Fatalf("got %d replacements, want 2", len(repls))
	}
	if got := binary.LittleEndian.Uint32(buf[0x08:]); got != 2 {
		t.Errorf("buffer param2 = %d, want 2", got)
	}
	if p2 := mustLookup(t, rec, layout.Param2); !p2.Value.HasLabel("Set % of") {
		t.Errorf("param2 labels = %v, want Set %% of", p2.Value.Labels)
	}
	if p1 := mustLookup(t, rec, layout.Param1); p1.Value.Kind != field.KindInt {
		t.Errorf("param1 kind = %v, want int", p1.Value.Kind)
	}

	// Re-decoding the edited buffer agrees with the live-updated record.
	fresh, err := dec.Decode(ee, 1, buf, 0, layout.CompactMinSize)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i := range fresh.Fields {
		if !fresh.Fields[i].Equal(rec.Fields[i]) {
			t.Errorf("field %d: live %v, fresh %v", i, rec.Fields[i].Value, fresh.Fields[i].Value)
		}
	}

	if _, err := dec.Update(ee, rec, buf, layout.Resource, field.Value{Text: "SPWI304"}); err == nil {
		t.Error("editing an unused resource should fail")
	}
	if _, err := dec.Update(ee, rec, buf, layout.Opcode, field.Value{Int: 3}); err == nil {
		t.Error("editing the opcode should fail")
	}
	if _, err := dec.Update(ee, rec, buf, layout.CasterLevel, field.Value{Int: 3}); err == nil {
		t.Error("editing a field outside the layout should fail")
	}
}

func TestUpdateOutOfRange(t *testing.T) {
	dec := newDecoder()
	tests := []struct {
		name string
		id   uint16
		fid  layout.ID
		v    int64
	}{
		{"probability byte", 1, layout.Probability1, 300},
		{"damage type half", 12, layout.Param2High, 0x10005},
		{"parameter word", 1, layout.Param1, 1 << 33},
		{"negative parameter", 1, layout.Param1, -(1 << 32)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := compact(0, tt.id, 0, 0)
			orig := append([]byte(nil), buf...)
			rec, err := dec.Decode(bg2, int(tt.id), buf, 0, layout.CompactMinSize)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			before := mustLookup(t, rec, tt.fid)

			_, err = dec.Update(bg2, rec, buf, tt.fid, field.Value{Int: tt.v})
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseUpdate, Kind: errors.KindInvalidInput}) {
				t.Fatalf("Update err = %v, want update/invalid_input", err)
			}
			if string(buf) != string(orig) {
				t.Error("rejected update modified the buffer")
			}
			if got := mustLookup(t, rec, tt.fid); !got.Equal(before) {
				t.Errorf("rejected update changed the field to %v", got.Value)
			}
		})
	}
}

func TestUpdateResource(t *testing.T) {
	dec := newDecoder()
	buf := compact(0, 146, 0, 0)
	rec, err := dec.Decode(bg2, 146, buf, 0, layout.CompactMinSize)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, err := dec.Update(bg2, rec, buf, layout.Resource, field.Value{Text: "SPWI304"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := mustLookup(t, rec, layout.Resource).Value.String(); got != "SPWI304.SPL" {
		t.Errorf("resource = %q", got)
	}
	if got := string(buf[0x14:0x1B]); got != "SPWI304" {
		t.Errorf("buffer resource = %q", got)
	}
}

func TestApplyRejectsMovedField(t *testing.T) {
	dec := newDecoder()
	rec, err := dec.Decode(ee, 1, compact(0, 1, 2, 0), 0, layout.CompactMinSize)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	f := mustLookup(t, rec, layout.Param1)
	f.Offset++
	if err := rec.Apply([]Replacement{{ID: layout.Param1, Field: f}}); err == nil {
		t.Error("Apply should reject a replacement at a different offset")
	}
	if err := rec.Apply([]Replacement{{ID: layout.CasterLevel, Field: f}}); err == nil {
		t.Error("Apply should reject an id the record lacks")
	}
}
