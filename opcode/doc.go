// Package opcode holds the per-opcode decode definitions and the registry
// that serves them.
//
// A Definition decodes one effect record in five fixed stages: the parameter
// pair, common block 1, the resource, common block 2 and the special field.
// Only the parameter pair, the resource and the special field vary by
// opcode; the common blocks vary by layout version and engine family.
//
// Definitions are compiled from the YAML tables embedded under data/. Each
// opcode has a generic spec per stage plus overrides selected by engine
// context, the most specific match winning:
//
//	family < expansion flag < variant
//
// A spec may switch on the value of a parameter ("driver" field). Those
// dependencies are what Dependents reports and Reinterpret recomputes when
// a driver changes.
//
// The Registry builds its table lazily under a mutex and serves reads from an
// atomic pointer. Ids with no definition for a context resolve to a memoized
// "Unknown" fallback that decodes both parameters as plain integers.
package opcode
