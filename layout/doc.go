// Package layout defines the two physical shapes of an effect record and the
// logical field IDs that address them.
//
// # Layouts
//
//	Layout    Version  Min size  Stage-2 region
//	──────────────────────────────────────────
//	Compact   V1       0x30      0x0C
//	Extended  V2       0x108     0x1C
//
// ForSize picks the layout from the record's total size. Each layout exposes
// a fixed, ordered slot table; OffsetOf and IndexOf are total over it and fail
// with KindFieldNotInLayout for anything else, e.g. CasterLevel on Compact.
// Callers check the layout before probing extended-only fields.
//
// # Stage-2 offsets
//
//	Field                 Compact        Extended
//	─────────────────────────────────────────────
//	timing mode           +0x00 (1)      +0x00 (4)
//	duration              +0x02 (4)      +0x04 (4)
//	probability 1 / 2     +0x06/+0x07    +0x08/+0x0A (2 each)
//	resource (8)          +0x08          +0x0C
//	dice count            +0x10          +0x14
//	dice size             +0x14          +0x18
//	save type             +0x18          +0x1C
//	save bonus            +0x1C          +0x20
//	special               +0x20          +0x24
//
// # Record maps
//
// Map is produced once per decoded record and relates each logical ID to its
// index in the field list and its absolute offset, so a single field can be
// replaced without decoding the record again.
package layout
