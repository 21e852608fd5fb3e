// Package ids parses Infinity Engine IDS symbol files and serves them as
// ieeffects.Symbols, so IDS-typed effect parameters decode to names such as
// "ELF" or "FIGHTER" instead of bare numbers.
package ids
