package ids

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/ie-effects/errors"
)

// ArgType is the type letter of a script function argument.
type ArgType uint8

const (
	ArgUnknown ArgType = iota
	ArgObject          // O
	ArgAction          // A
	ArgString          // S
	ArgPoint           // P
	ArgInt             // I
)

func argTypeOf(letter string) ArgType {
	switch letter {
	case "O":
		return ArgObject
	case "A":
		return ArgAction
	case "S":
		return ArgString
	case "P":
		return ArgPoint
	case "I":
		return ArgInt
	}
	return ArgUnknown
}

// Arg is one argument of a function entry such as ACTION.IDS "Attack(O:Target*)".
type Arg struct {
	Type ArgType
	Name string
	// Table names the IDS file an integer argument is drawn from, e.g.
	// "Class" in "I:Class*Class".
	Table string
}

// Entry is one line of an IDS file.
type Entry struct {
	Value int64
	Name  string
	Args  []Arg
}

// File is a parsed IDS file. Lookups by value return the first entry with
// that value, which is how the engine resolves duplicates.
type File struct {
	Name    string
	Entries []Entry
	byValue map[int64]int
	byName  map[string]int
}

// Parse reads an IDS file. name is the file's resource name without
// extension, e.g. "RACE". Lines that are neither an entry nor a header are
// skipped and logged.
func Parse(name string, r io.Reader) (*File, error) {
	f := &File{
		Name:    strings.ToUpper(name),
		byValue: make(map[int64]int),
		byName:  make(map[string]int),
	}

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if len(f.Entries) == 0 && isHeader(text) {
			continue
		}
		e, ok := parseEntry(text)
		if !ok {
			Logger().Debug("skipping IDS line",
				zap.String("file", f.Name),
				zap.Int("line", line),
				zap.String("text", text))
			continue
		}
		f.add(e)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.ParseFailed(f.Name+".IDS", err)
	}
	return f, nil
}

// isHeader matches the "IDS V1.0" signature and the bare entry count some
// files carry on the line after it.
func isHeader(text string) bool {
	if strings.HasPrefix(strings.ToUpper(text), "IDS") {
		return true
	}
	_, err := strconv.ParseInt(text, 10, 64)
	return err == nil
}

func parseEntry(text string) (Entry, bool) {
	sep := strings.IndexAny(text, " \t")
	if sep < 0 {
		return Entry{}, false
	}
	v, ok := parseValue(text[:sep])
	if !ok {
		return Entry{}, false
	}
	body := strings.TrimSpace(text[sep+1:])
	if body == "" {
		return Entry{}, false
	}

	open := strings.IndexByte(body, '(')
	if open < 0 {
		return Entry{Value: v, Name: body}, true
	}
	e := Entry{Value: v, Name: strings.TrimSpace(body[:open])}
	inner := strings.TrimRight(body[open+1:], ")")
	for _, a := range strings.Split(inner, ",") {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if arg, ok := parseArg(a); ok {
			e.Args = append(e.Args, arg)
		}
	}
	return e, true
}

// parseValue accepts decimal and 0x-prefixed hex. Hex values are 32-bit
// patterns; decimal ones may be negative.
func parseValue(s string) (int64, bool) {
	if hex, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		v, err := strconv.ParseUint(hex, 16, 32)
		return int64(v), err == nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err == nil
}

func parseArg(s string) (Arg, bool) {
	typ, rest, ok := strings.Cut(s, ":")
	if !ok {
		return Arg{}, false
	}
	name, table, _ := strings.Cut(rest, "*")
	return Arg{Type: argTypeOf(typ), Name: name, Table: table}, true
}

func (f *File) add(e Entry) {
	idx := len(f.Entries)
	f.Entries = append(f.Entries, e)
	if _, dup := f.byValue[e.Value]; !dup {
		f.byValue[e.Value] = idx
	}
	key := strings.ToUpper(e.Name)
	if _, dup := f.byName[key]; !dup {
		f.byName[key] = idx
	}
}

// Symbol returns the name of the first entry with value v.
func (f *File) Symbol(v int64) (string, bool) {
	i, ok := f.byValue[v]
	if !ok {
		return "", false
	}
	return f.Entries[i].Name, true
}

// Value returns the value of the named symbol, case-insensitively.
func (f *File) Value(name string) (int64, bool) {
	i, ok := f.byName[strings.ToUpper(name)]
	if !ok {
		return 0, false
	}
	return f.Entries[i].Value, true
}

// Len returns the number of entries, duplicates included.
func (f *File) Len() int {
	return len(f.Entries)
}
