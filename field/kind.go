package field

// Kind is the decoded representation of a field value.
type Kind uint8

const (
	KindInt      Kind = iota // signed little-endian integer
	KindUint                 // unsigned little-endian integer
	KindFloat                // IEEE-754 single
	KindEnum                 // integer with one label
	KindBitmask              // integer with one label per set bit
	KindResource             // 8-byte resource reference
	KindString               // fixed-width literal string
	KindStrRef               // string reference into the talk table
	KindRaw                  // unused or unknown bytes
)

var kindNames = [...]string{
	KindInt:      "int",
	KindUint:     "uint",
	KindFloat:    "float",
	KindEnum:     "enum",
	KindBitmask:  "bitmask",
	KindResource: "resource",
	KindString:   "string",
	KindStrRef:   "strref",
	KindRaw:      "raw",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind maps a table keyword to its Kind.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// Numeric reports whether the value lives in Value.Int.
func (k Kind) Numeric() bool {
	switch k {
	case KindInt, KindUint, KindEnum, KindBitmask, KindStrRef:
		return true
	}
	return false
}

// Textual reports whether the value lives in Value.Text.
func (k Kind) Textual() bool {
	return k == KindResource || k == KindString
}
