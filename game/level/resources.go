package level

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

//go:embed assets
var assets embed.FS

var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrInvalidResource  = errors.New("invalid resource path")
)

// Embedded returns the built-in level pack: YAML levels, order.txt, and the
// items/ and patterns/ resources they reference.
func Embedded() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// Resources resolves item and pattern files referenced by levels. Paths are
// relative to the level directory; anything missing there is looked up in
// the embedded pack.
type Resources struct {
	dir string
}

// NewResources creates a resolver rooted at dir. An empty dir uses only the
// embedded pack.
func NewResources(dir string) *Resources {
	return &Resources{dir: dir}
}

// ReadResource returns the text content of name
func (r *Resources) ReadResource(name string) (string, error) {
	clean := path.Clean(filepath.ToSlash(name))
	if !fs.ValidPath(clean) {
		return "", fmt.Errorf("%w: %s", ErrInvalidResource, name)
	}

	if r.dir != "" {
		data, err := os.ReadFile(filepath.Join(r.dir, filepath.FromSlash(clean)))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to read resource %s: %w", name, err)
		}
	}

	data, err := fs.ReadFile(Embedded(), clean)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrResourceNotFound, name)
	}
	return string(data), nil
}
