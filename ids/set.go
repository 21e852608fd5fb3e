package ids

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	ieeffects "github.com/wippyai/ie-effects"
	"github.com/wippyai/ie-effects/errors"
)

//go:embed data/*.IDS
var builtin embed.FS

// Set is a collection of IDS files keyed by upper-case name. It implements
// ieeffects.Symbols and is safe for concurrent reads once loaded.
type Set struct {
	mu    sync.RWMutex
	files map[string]*File
}

var _ ieeffects.Symbols = (*Set)(nil)

// NewSet returns a Set holding files.
func NewSet(files ...*File) *Set {
	s := &Set{files: make(map[string]*File, len(files))}
	for _, f := range files {
		s.Add(f)
	}
	return s
}

// Add registers f, replacing any file of the same name. Game overrides load
// after the defaults and win this way.
func (s *Set) Add(f *File) {
	s.mu.Lock()
	s.files[f.Name] = f
	s.mu.Unlock()
}

// File returns the named file. The name may carry an .IDS extension.
func (s *Set) File(name string) (*File, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[normalize(name)]
	return f, ok
}

// Symbol implements ieeffects.Symbols.
func (s *Set) Symbol(file string, v int64) (string, bool) {
	f, ok := s.File(file)
	if !ok {
		return "", false
	}
	return f.Symbol(v)
}

// Names returns the loaded file names, sorted.
func (s *Set) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.files))
	for n := range s.files {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Load parses every .IDS file in dir of fsys into s.
func (s *Set) Load(fsys fs.FS, dir string) error {
	ents, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return errors.Load("reading IDS directory "+dir, err)
	}
	for _, ent := range ents {
		if ent.IsDir() || !strings.EqualFold(path.Ext(ent.Name()), ".ids") {
			continue
		}
		f, err := s.loadFile(fsys, path.Join(dir, ent.Name()))
		if err != nil {
			return err
		}
		s.Add(f)
	}
	Logger().Debug("loaded IDS files", zap.String("dir", dir), zap.Strings("files", s.Names()))
	return nil
}

func (s *Set) loadFile(fsys fs.FS, name string) (*File, error) {
	r, err := fsys.Open(name)
	if err != nil {
		return nil, errors.Load("opening "+name, err)
	}
	defer r.Close()
	return Parse(normalize(path.Base(name)), r)
}

func normalize(name string) string {
	name = strings.ToUpper(name)
	return strings.TrimSuffix(name, ".IDS")
}

var (
	defaultSet  *Set
	defaultOnce sync.Once
)

// Default returns the IDS files shipped with the module: the categories
// effect parameters select by number (EA, GENERAL, RACE, CLASS, SPECIFIC,
// GENDER, ALIGN, KIT). The set is shared; Add to a NewSet to customize.
func Default() *Set {
	defaultOnce.Do(func() {
		defaultSet = NewSet()
		if err := defaultSet.Load(builtin, "data"); err != nil {
			// The embedded files are fixed at build time.
			panic(err)
		}
	})
	return defaultSet
}
