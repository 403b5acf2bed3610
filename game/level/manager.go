package level

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/robogrid/logging"
)

var (
	ErrLevelNotFound = errors.New("level not found")
	ErrInvalidLevel  = errors.New("invalid level")
)

// PackSeed seeds the rng used to turn level files into Specs, so random
// obstacles and item spawns are identical across runs.
const PackSeed uint64 = 0xC0FFEE

// OrderFile lists level ids, one per line, in play order
const OrderFile = "order.txt"

// Info summarizes a level for listings
type Info struct {
	Index          int    `json:"index"`
	Number         int    `json:"number"`
	ID             string `json:"id"`
	Name           string `json:"name"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Enemies        int    `json:"enemies"`
	Items          int    `json:"items"`
	CompletionFlag string `json:"completion_flag,omitempty"`
	Message        string `json:"message,omitempty"`
}

// Manager loads the level pack and caches the derived Specs
type Manager struct {
	dir       string
	resources *Resources
	specs     []*Spec
	mu        sync.RWMutex
}

// NewManager creates a level manager reading YAML files from dir. An empty
// dir, or a dir without usable levels, serves the embedded pack.
func NewManager(dir string) (*Manager, error) {
	if dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return nil, fmt.Errorf("levels directory does not exist: %s", dir)
		}
	}

	m := &Manager{
		dir:       dir,
		resources: NewResources(dir),
	}
	if err := m.Refresh(); err != nil {
		return nil, err
	}
	return m, nil
}

// Refresh reloads every level from disk
func (m *Manager) Refresh() error {
	var specs []*Spec
	if m.dir != "" {
		specs = buildSpecs(os.DirFS(m.dir))
	}
	if len(specs) == 0 {
		specs = buildSpecs(Embedded())
	}
	if len(specs) == 0 {
		return fmt.Errorf("%w: no loadable levels", ErrInvalidLevel)
	}

	m.mu.Lock()
	m.specs = specs
	m.mu.Unlock()
	return nil
}

// Pack returns the ordered level specs
func (m *Manager) Pack() []*Spec {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Spec, len(m.specs))
	copy(out, m.specs)
	return out
}

// Count returns the number of levels
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.specs)
}

// Get returns the level at a 0-based index
func (m *Manager) Get(index int) (*Spec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if index < 0 || index >= len(m.specs) {
		return nil, fmt.Errorf("%w: index %d", ErrLevelNotFound, index)
	}
	return m.specs[index], nil
}

// Find looks a level up by id or display name, ignoring case
func (m *Manager) Find(name string) (*Spec, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i, spec := range m.specs {
		if strings.EqualFold(spec.ID, name) || strings.EqualFold(spec.Name, name) {
			return spec, i, nil
		}
	}
	return nil, -1, fmt.Errorf("%w: %s", ErrLevelNotFound, name)
}

// List returns a summary of every level
func (m *Manager) List() []*Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]*Info, 0, len(m.specs))
	for i, spec := range m.specs {
		infos = append(infos, &Info{
			Index:          i,
			Number:         i + 1,
			ID:             spec.ID,
			Name:           spec.Name,
			Width:          spec.Width,
			Height:         spec.Height,
			Enemies:        len(spec.Enemies),
			Items:          len(spec.Items),
			CompletionFlag: spec.CompletionFlag,
			Message:        spec.Message,
		})
	}
	return infos
}

// Resources returns the resolver for item and pattern files
func (m *Manager) Resources() *Resources {
	return m.resources
}

// LoadPack reads, converts and validates every level in fsys. Levels that
// fail are logged and skipped.
func LoadPack(fsys fs.FS) ([]*Spec, []error) {
	files, errs := readFiles(fsys)
	rng := rand.New(rand.NewPCG(PackSeed, PackSeed))

	specs := make([]*Spec, 0, len(files))
	for _, nf := range files {
		spec, err := nf.file.ToSpec(nf.id, rng)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalidLevel, nf.id, err))
			continue
		}
		if err := ValidateSpec(spec); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalidLevel, nf.id, err))
			continue
		}
		specs = append(specs, spec)
	}
	return specs, errs
}

func buildSpecs(fsys fs.FS) []*Spec {
	specs, errs := LoadPack(fsys)
	for _, err := range errs {
		logging.Log.WithError(err).Warn("skipping level")
	}
	if len(specs) > 0 {
		logging.Log.WithFields(logrus.Fields{"levels": len(specs)}).Debug("level pack loaded")
	}
	return specs
}

type namedFile struct {
	id   string
	file *File
}

// readFiles honours order.txt when it names at least one loadable level,
// and otherwise reads every *.yaml and *.yml file alphabetically.
func readFiles(fsys fs.FS) ([]namedFile, []error) {
	var errs []error

	if order, err := fs.ReadFile(fsys, OrderFile); err == nil {
		var files []namedFile
		for _, raw := range strings.Split(string(order), "\n") {
			line := strings.TrimSpace(raw)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			id := strings.TrimSuffix(strings.TrimSuffix(line, ".yaml"), ".yml")
			f, err := readOne(fsys, id+".yaml")
			if errors.Is(err, fs.ErrNotExist) {
				f, err = readOne(fsys, id+".yml")
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalidLevel, id, err))
				continue
			}
			files = append(files, namedFile{id: id, file: f})
		}
		if len(files) > 0 {
			return files, errs
		}
	}

	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := fs.Glob(fsys, pattern)
		if err != nil {
			continue
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	files := make([]namedFile, 0, len(paths))
	for _, p := range paths {
		f, err := readOne(fsys, p)
		id := strings.TrimSuffix(strings.TrimSuffix(p, ".yaml"), ".yml")
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalidLevel, id, err))
			continue
		}
		files = append(files, namedFile{id: id, file: f})
	}
	return files, errs
}

func readOne(fsys fs.FS, name string) (*File, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	return ParseFile(data)
}
