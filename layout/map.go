package layout

import (
	"iter"

	"github.com/elliotchance/orderedmap/v3"
)

// Entry locates one decoded field: its position in the record's field list
// and its absolute byte offset in the owning buffer.
type Entry struct {
	Index  int
	Offset int
}

// Map relates logical IDs of one decoded record to their Entry, in decode order.
// A Map is filled once by the decoder and read-only afterwards.
type Map struct {
	entries *orderedmap.OrderedMap[ID, Entry]
}

// NewMap returns an empty map sized for n fields.
func NewMap(n int) *Map {
	return &Map{entries: orderedmap.NewOrderedMapWithCapacity[ID, Entry](n)}
}

// Set records the entry for id. It reports whether id was new.
func (m *Map) Set(id ID, e Entry) bool {
	return m.entries.Set(id, e)
}

// Get returns the entry for id.
func (m *Map) Get(id ID) (Entry, bool) {
	return m.entries.Get(id)
}

// Len returns the number of mapped fields.
func (m *Map) Len() int {
	return m.entries.Len()
}

// All iterates entries in decode order.
func (m *Map) All() iter.Seq2[ID, Entry] {
	return m.entries.AllFromFront()
}
