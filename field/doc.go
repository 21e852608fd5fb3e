// Package field holds the unit of decoded output: a Descriptor naming one
// field of an effect record, where it lives, and what it decoded to.
//
// Descriptors are immutable values and hold no reference to the record they
// came from. Live re-interpretation swaps a whole Descriptor; it never edits
// one in place.
//
// Encode and Put turn a Descriptor's value back into its declared number of
// bytes, which is what in-place field replacement needs and nothing more.
package field
