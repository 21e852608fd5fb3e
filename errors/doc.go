// Package errors provides structured error types for the effect decoder.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries context: field path, layout and logical field names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindTooShort).
//		Path("opcode 12").
//		Layout("compact").
//		Detail("record size %d below minimum %d", 47, 48).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TooShort(errors.PhaseDecode, path, 47, 48)
//	err := errors.FieldNotInLayout("compact", "Caster level")
//
// All errors implement the standard error interface and support errors.Is/As.
// Matching is by (Phase, Kind):
//
//	if errors.Is(err, &ieerrors.Error{Phase: ieerrors.PhaseLayout, Kind: ieerrors.KindFieldNotInLayout}) { ... }
package errors
