package opcode

import (
	"testing"

	"github.com/wippyai/ie-effects/engine"
)

func TestLabelsBits(t *testing.T) {
	l := BitLabels("test", "A", "", "C")
	tests := []struct {
		v    int64
		want []string
	}{
		{0, nil},
		{1, []string{"A"}},
		{5, []string{"A", "C"}},
		{2, []string{"Bit 1"}},
		{0x11, []string{"A", "Bit 4"}},
	}
	for _, tt := range tests {
		got := l.Bits(tt.v)
		if len(got) != len(tt.want) {
			t.Errorf("Bits(%#x) = %v, want %v", tt.v, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Bits(%#x) = %v, want %v", tt.v, got, tt.want)
			}
		}
	}
	if !l.Bitmask() {
		t.Error("BitLabels should report Bitmask")
	}
}

func TestLabelsEnum(t *testing.T) {
	l := EnumLabels("test", "Zero", "", "Two")
	if s, ok := l.Enum(2); !ok || s != "Two" {
		t.Errorf("Enum(2) = %q, %v", s, ok)
	}
	if _, ok := l.Enum(1); ok {
		t.Error("empty labels should be skipped")
	}
	if got := l.Values(); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("Values = %v, want [0 2]", got)
	}
	var none *Labels
	if _, ok := none.Enum(0); ok {
		t.Error("nil Labels should not resolve")
	}
	if s, ok := TimingModes.Enum(4096); !ok || s != "Absolute duration" {
		t.Errorf("TimingModes.Enum(4096) = %q", s)
	}
}

func TestSelectorPick(t *testing.T) {
	sels := []Selector{
		{},
		{Families: []engine.Family{engine.FamilyEE}},
		{Flags: engine.FlagEEex},
		{Families: []engine.Family{engine.FamilyEE}, Variant: engine.VariantPSTEE},
	}
	tests := []struct {
		ctx  engine.Context
		want int
	}{
		{engine.New(engine.FamilyBG2), 0},
		{engine.New(engine.FamilyEE), 1},
		{engine.New(engine.FamilyEE, engine.FlagEEex), 2},
		{engine.New(engine.FamilyEE, engine.FlagEEex).WithVariant(engine.VariantPSTEE), 3},
		{engine.New(engine.FamilyPST).WithVariant(engine.VariantPSTEE), 0},
	}
	for _, tt := range tests {
		if got := pick(tt.ctx, sels); got != tt.want {
			t.Errorf("pick(%v) = %d, want %d", tt.ctx, got, tt.want)
		}
	}
	if got := pick(engine.New(engine.FamilyBG2), sels[1:]); got != -1 {
		t.Errorf("pick with no match = %d, want -1", got)
	}
}
