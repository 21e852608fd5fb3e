package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseLayout,
				Kind:   KindFieldNotInLayout,
				Path:   []string{"opcode 12", "special"},
				Layout: "compact",
				Field:  "Caster level",
				Detail: "not here",
			},
			contains: []string{"[layout]", "field_not_in_layout", "opcode 12.special", "compact", "Caster level", "not here"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindTooShort,
			},
			contains: []string{"[decode]", "too_short"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindInvalidData,
				Detail: "bad header",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[load]", "invalid_data", "bad header", "caused by", "underlying error"},
		},
		{
			name: "field only",
			err: &Error{
				Phase: PhaseUpdate,
				Kind:  KindInvalidInput,
				Field: "Parameter 2",
			},
			contains: []string{"[update]", "field Parameter 2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseParse,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindTooShort,
		Path:  []string{"opcode 0"},
	}

	if !err.Is(&Error{Phase: PhaseDecode, Kind: KindTooShort}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseLayout, Kind: KindTooShort}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindStageBudget}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseDecode, Kind: KindTooShort}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestError_Structural(t *testing.T) {
	tests := []struct {
		err  *Error
		want bool
	}{
		{TooShort(PhaseDecode, nil, 47, 48), true},
		{StageBudget(nil, "resource", 7, 8), true},
		{OutOfBounds(PhaseDecode, nil, 300, 264), true},
		{FieldNotInLayout("compact", "Caster level"), false},
		{InvalidInput(PhaseUpdate, "x"), false},
	}
	for _, tt := range tests {
		if got := tt.err.Structural(); got != tt.want {
			t.Errorf("%v Structural() = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseLayout, KindFieldNotInLayout).
		Path("record", "map").
		Layout("compact").
		Field("Caster X").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "extended", "compact").
		Build()

	if err.Phase != PhaseLayout {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseLayout)
	}
	if err.Kind != KindFieldNotInLayout {
		t.Errorf("Kind = %v, want %v", err.Kind, KindFieldNotInLayout)
	}
	if len(err.Path) != 2 || err.Path[0] != "record" || err.Path[1] != "map" {
		t.Errorf("Path = %v, want [record map]", err.Path)
	}
	if err.Layout != "compact" {
		t.Errorf("Layout = %v, want 'compact'", err.Layout)
	}
	if err.Field != "Caster X" {
		t.Errorf("Field = %v, want 'Caster X'", err.Field)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected extended, got compact" {
		t.Errorf("Detail = %v, want 'expected extended, got compact'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("TooShort", func(t *testing.T) {
		err := TooShort(PhaseDecode, []string{"opcode 3"}, 47, 48)
		if err.Kind != KindTooShort {
			t.Errorf("Kind = %v, want %v", err.Kind, KindTooShort)
		}
		if !strings.Contains(err.Detail, "47") || !strings.Contains(err.Detail, "48") {
			t.Errorf("Detail = %v, should contain sizes", err.Detail)
		}
	})

	t.Run("StageBudget", func(t *testing.T) {
		err := StageBudget(nil, "special", 2, 4)
		if err.Kind != KindStageBudget || err.Phase != PhaseDecode {
			t.Errorf("got %v/%v, want decode/stage_budget", err.Phase, err.Kind)
		}
		if err.Value != 2 {
			t.Errorf("Value = %v, want 2", err.Value)
		}
	})

	t.Run("FieldNotInLayout", func(t *testing.T) {
		err := FieldNotInLayout("compact", "Caster level")
		if err.Phase != PhaseLayout || err.Kind != KindFieldNotInLayout {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		err := Duplicate(PhaseRegistry, "opcode", 12)
		if err.Kind != KindDuplicate {
			t.Errorf("Kind = %v, want %v", err.Kind, KindDuplicate)
		}
		if !strings.Contains(err.Error(), "opcode 12 registered twice") {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseParse, "label table", "damageModes")
		if err.Kind != KindNotFound {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		cause := errors.New("io")
		err := Wrap(PhaseLoad, KindInvalidData, cause, "read header")
		if !errors.Is(err, cause) {
			t.Error("Wrap should keep cause in chain")
		}
	})

	t.Run("ParseFailed", func(t *testing.T) {
		err := ParseFailed("opcode table", errors.New("yaml"))
		if err.Phase != PhaseParse || !strings.Contains(err.Detail, "opcode table") {
			t.Errorf("got %v", err)
		}
	})
}
