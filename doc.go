// Package ieeffects decodes Infinity Engine effect records into named, typed,
// independently addressable fields.
//
// An effect record's layout and meaning depend on the engine that wrote it,
// on the record's structure version, and on the values of sibling fields in
// the same record. The library resolves all three before labelling a byte.
//
// # Architecture Overview
//
//	ieeffects/       Root package with the host-facing Symbols interface
//	├── engine/      Engine context: family, expansion flags, sub-variant
//	├── layout/      Compact (V1) and extended (V2) record layouts, logical IDs
//	├── field/       Field descriptors and the value codec
//	├── opcode/      Opcode definitions, declarative tables, the registry
//	├── decoder/     Five-stage decode pipeline and live re-interpretation
//	├── ids/         IDS symbol files backing Symbols
//	├── profile/     INI game profiles and the active-profile manager
//	├── container/   Effect record locators for EFF, ITM, SPL and CRE files
//	├── errors/      Structured error types
//	└── cmd/effview  Command line and interactive record viewer
//
// # Quick Start
//
//	ctx, _ := engine.Preset("bg2ee")
//	dec := decoder.New(decoder.Options{Symbols: ids.Default()})
//
//	rec, err := dec.Decode(ctx, 12, buf, base, layout.ExtendedMinSize)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range rec.Fields {
//	    fmt.Printf("0x%04x %-24s %s\n", f.Offset, f.Name, f.Display())
//	}
//
// # Live Re-interpretation
//
// Some opcodes overload a field based on a sibling ("driver") field. After the
// host edits a driver, OnFieldChanged returns the replacement descriptors for
// the dependent fields; Record.Apply swaps them in by logical ID:
//
//	repls := dec.OnFieldChanged(ctx, rec, layout.Param2, 2)
//	if err := rec.Apply(repls); err != nil {
//	    log.Fatal(err)
//	}
//
// Decoder.Update does the same after writing the new value into the buffer.
//
// # Game Profiles
//
// The opcode registry caches per-profile availability. Switch profiles through
// profile.Manager, which resets the registry exactly when the context changes.
package ieeffects
