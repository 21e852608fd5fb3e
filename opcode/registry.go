package opcode

import (
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/ie-effects/engine"
	"github.com/wippyai/ie-effects/errors"
)

// Source enumerates every known definition. It is called once per build.
type Source func() ([]*Definition, error)

// Registry maps opcode ids to definitions. The table is built lazily on first
// use, at most once at a time; reads after the build take no lock.
type Registry struct {
	source  Source
	mu      sync.Mutex
	table   atomic.Pointer[table]
	unknown sync.Map // int -> *Definition
}

type table struct {
	defs map[int]*Definition
	ids  []int
	err  error
}

// NewRegistry returns an empty registry that builds from source on first use.
func NewRegistry(source Source) *Registry {
	return &Registry{source: source}
}

var defaultRegistry = NewRegistry(Builtin)

// Default returns the process-wide registry backed by the embedded tables.
func Default() *Registry {
	return defaultRegistry
}

// Reset clears the process-wide registry. Call it when the active game profile changes.
func Reset() {
	defaultRegistry.Reset()
}

// Resolve returns the definition for id under ctx. It never fails: an id with
// no definition, or whose definition is unavailable under ctx, resolves to a
// memoized unknown-opcode stand-in that decodes as two plain integers.
func (r *Registry) Resolve(ctx engine.Context, id int) *Definition {
	if d, ok := r.load().defs[id]; ok && d.Available(ctx) {
		return d
	}
	return r.fallback(id, ctx)
}

// Lookup returns the registered definition for id regardless of availability.
func (r *Registry) Lookup(id int) (*Definition, bool) {
	d, ok := r.load().defs[id]
	return d, ok
}

// IDs returns every registered opcode id in ascending order.
func (r *Registry) IDs() []int {
	ids := r.load().ids
	out := make([]int, len(ids))
	copy(out, ids)
	return out
}

// Available returns the ids of definitions available under ctx, ascending.
func (r *Registry) Available(ctx engine.Context) []int {
	t := r.load()
	out := make([]int, 0, len(t.ids))
	for _, id := range t.ids {
		if t.defs[id].Available(ctx) {
			out = append(out, id)
		}
	}
	return out
}

// Err returns the error of the last build, if it failed. A failed build leaves
// the table empty so every id resolves to its fallback.
func (r *Registry) Err() error {
	return r.load().err
}

// Rebuild discards the current table and builds a new one now.
func (r *Registry) Rebuild() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unknown.Clear()
	t := r.build()
	r.table.Store(t)
	return t.err
}

// Reset clears the built table and the unknown-opcode cache. The next call
// rebuilds lazily. Definitions returned earlier stay valid.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table.Store(nil)
	r.unknown.Clear()
	Logger().Debug("opcode registry reset")
}

func (r *Registry) load() *table {
	if t := r.table.Load(); t != nil {
		return t
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if t := r.table.Load(); t != nil {
		return t
	}
	t := r.build()
	r.table.Store(t)
	return t
}

// build must be called with mu held.
func (r *Registry) build() *table {
	t := &table{defs: make(map[int]*Definition)}
	if r.source == nil {
		return t
	}
	defs, err := r.source()
	if err != nil {
		Logger().Error("opcode table build failed", zap.Error(err))
		t.err = err
		return t
	}
	for _, d := range defs {
		if _, dup := t.defs[d.ID]; dup {
			t.err = errors.Duplicate(errors.PhaseRegistry, "opcode", d.ID)
			Logger().Error("opcode table build failed", zap.Error(t.err))
			t.defs = make(map[int]*Definition)
			t.ids = nil
			return t
		}
		t.defs[d.ID] = d
		t.ids = append(t.ids, d.ID)
	}
	sort.Ints(t.ids)
	Logger().Debug("opcode table built", zap.Int("definitions", len(t.ids)))
	return t
}

func (r *Registry) fallback(id int, ctx engine.Context) *Definition {
	if d, ok := r.unknown.Load(id); ok {
		return d.(*Definition)
	}
	d, loaded := r.unknown.LoadOrStore(id, newUnknown(id))
	if !loaded {
		Logger().Debug("unknown opcode",
			zap.Int("opcode", id),
			zap.Stringer("context", ctx))
	}
	return d.(*Definition)
}
