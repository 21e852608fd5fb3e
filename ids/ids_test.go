package ids

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/wippyai/ie-effects/engine"
	"github.com/wippyai/ie-effects/field"
	"github.com/wippyai/ie-effects/layout"
	"github.com/wippyai/ie-effects/opcode"
)

func TestParse(t *testing.T) {
	src := "IDS V1.0\n" +
		"  4\n" +
		"0x4000 TRUECLASS\n" +
		"2\tELF\n" +
		"-1 NONE\n" +
		"garbage\n" +
		"\n" +
		"010 TEN\n" +
		"2 ELF_AGAIN\n"
	f, err := Parse("race", strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Name != "RACE" {
		t.Errorf("name = %q, want RACE", f.Name)
	}
	if f.Len() != 5 {
		t.Fatalf("got %d entries, want 5", f.Len())
	}

	tests := []struct {
		value int64
		want  string
	}{
		{0x4000, "TRUECLASS"},
		{2, "ELF"},
		{-1, "NONE"},
		{10, "TEN"},
	}
	for _, tt := range tests {
		got, ok := f.Symbol(tt.value)
		if !ok || got != tt.want {
			t.Errorf("Symbol(%d) = %q, %v, want %q", tt.value, got, ok, tt.want)
		}
	}
	if _, ok := f.Symbol(4); ok {
		t.Error("entry count line should not become an entry")
	}
	if v, ok := f.Value("elf_again"); !ok || v != 2 {
		t.Errorf("Value(elf_again) = %d, %v", v, ok)
	}
}

func TestParseFunctions(t *testing.T) {
	src := "IDS V1.0\n" +
		"3 Attack(O:Target*)\n" +
		"0x4017 ClassLevel(O:Object*,I:Type*Class,I:Level*)\n"
	f, err := Parse("ACTION", strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(f.Entries))
	}
	e := f.Entries[1]
	if e.Name != "ClassLevel" || len(e.Args) != 3 {
		t.Fatalf("entry = %+v", e)
	}
	want := []Arg{
		{Type: ArgObject, Name: "Object"},
		{Type: ArgInt, Name: "Type", Table: "Class"},
		{Type: ArgInt, Name: "Level"},
	}
	for i, a := range e.Args {
		if a != want[i] {
			t.Errorf("arg %d = %+v, want %+v", i, a, want[i])
		}
	}
}

func TestSetLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"game/Race.ids":   {Data: []byte("IDS V1.0\n2 ELF\n")},
		"game/CLASS.IDS":  {Data: []byte("2 FIGHTER\n")},
		"game/readme.txt": {Data: []byte("not an ids file")},
	}
	s := NewSet()
	if err := s.Load(fsys, "game"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := s.Names(); len(got) != 2 || got[0] != "CLASS" || got[1] != "RACE" {
		t.Errorf("names = %v, want [CLASS RACE]", got)
	}
	if got, ok := s.Symbol("race.ids", 2); !ok || got != "ELF" {
		t.Errorf("Symbol(race.ids, 2) = %q, %v", got, ok)
	}
	if _, ok := s.Symbol("KIT", 2); ok {
		t.Error("missing file should not resolve")
	}
	if err := s.Load(fsys, "missing"); err == nil {
		t.Error("loading a missing directory should fail")
	}
}

func TestSetOverride(t *testing.T) {
	base, _ := Parse("RACE", strings.NewReader("2 ELF\n"))
	mod, _ := Parse("RACE", strings.NewReader("2 SILVER_ELF\n"))
	s := NewSet(base)
	s.Add(mod)
	if got, _ := s.Symbol("RACE", 2); got != "SILVER_ELF" {
		t.Errorf("Symbol = %q, want SILVER_ELF", got)
	}
}

func TestDefault(t *testing.T) {
	s := Default()
	for _, name := range opcode.IDSFiles {
		if _, ok := s.File(name); !ok {
			t.Errorf("default set lacks %s", name)
		}
	}
	tests := []struct {
		file  string
		value int64
		want  string
	}{
		{"EA", 255, "ENEMY"},
		{"RACE", 2, "ELF"},
		{"CLASS", 2, "FIGHTER"},
		{"ALIGN", 0x11, "LAWFUL_GOOD"},
		{"KIT", 0x40010000, "BERSERKER"},
	}
	for _, tt := range tests {
		if got, ok := s.Symbol(tt.file, tt.value); !ok || got != tt.want {
			t.Errorf("Symbol(%s, %d) = %q, want %q", tt.file, tt.value, got, tt.want)
		}
	}
	if Default() != s {
		t.Error("Default should return the shared set")
	}
}

func TestDefaultLabelsIDSParameters(t *testing.T) {
	def, ok := opcode.Default().Lookup(177)
	if !ok {
		t.Fatal("opcode 177 not registered")
	}
	raw := []byte{2, 0, 0, 0}
	spec := def.SpecFor(engine.New(engine.FamilyBG2), layout.Compact, layout.Param1)
	got := spec.Describe(layout.Param1, 4, raw, opcode.Values{layout.Param2: 4}, Default())
	if got.Value.Kind != field.KindEnum || !got.Value.HasLabel("ELF") {
		t.Errorf("param1 = %v, want ELF", got.Value)
	}
}
