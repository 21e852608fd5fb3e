package ieeffects

// Symbols resolves IDS values to their symbolic names, e.g. ("RACE", 2) to "ELF".
// Hosts back it with the game's IDS files; a nil Symbols leaves IDS-typed
// fields labelled by number.
type Symbols interface {
	Symbol(file string, value int64) (string, bool)
}

// SymbolsFunc adapts a function to the Symbols interface.
type SymbolsFunc func(file string, value int64) (string, bool)

// Symbol calls f(file, value).
func (f SymbolsFunc) Symbol(file string, value int64) (string, bool) {
	return f(file, value)
}
