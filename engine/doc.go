// Package engine describes the engine an effect record is interpreted under.
//
// A Context is the snapshot the host hands to every decode call:
//
//	Family   BG1, BG2, PST, IWD, IWD2 or EE
//	Flags    independent expansions and extenders (TotSC, ToB, TotLM, TobEx, EEex)
//	Variant  a further fork of a family, e.g. PSTEE on the EE engine
//
// Contexts are immutable values. The decoder reads them at call time and
// never stores them past the call, so a host switching games only has to
// pass a different Context (and reset the opcode registry, see package opcode).
package engine
