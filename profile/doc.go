// Package profile loads game profiles from INI files and tracks the active
// one.
//
// A profile pins the engine context records are decoded under. Manager is
// the host-side "current game" facility: switching to a profile with a
// different context resets the opcode registry so availability and the
// unknown-opcode cache are recomputed for the new game.
package profile
