package resolver

import (
	"io/fs"
	"path"
	"strings"

	"github.com/livebud/esm/internal/module"
)

// Container creates and caches modules for resolvers
type Container interface {
	CachedModule(path string) (*module.Module, bool)
	NewModule(path, relative string, read func() ([]byte, error)) *module.Module
}

// Interface finds the module an import path refers to. It returns a nil
// module when the path isn't one it can resolve.
type Interface interface {
	ResolveModule(path string, from *module.Module, container Container) (*module.Module, error)
}

// Extensions tried, in order, for an import path
var Extensions = []string{"", ".js", ".mjs", ".ts", "/index.js"}

// New resolver over a filesystem. Relative imports resolve against the
// importing module, everything else against each search path in order.
func New(fsys fs.FS, paths ...string) *Resolver {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	return &Resolver{fsys, paths}
}

type Resolver struct {
	fsys  fs.FS
	paths []string
}

var _ Interface = (*Resolver)(nil)

func isRelative(p string) bool {
	return strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../") || p == "." || p == ".."
}

func (r *Resolver) ResolveModule(importPath string, from *module.Module, container Container) (*module.Module, error) {
	var bases []string
	switch {
	case from != nil && isRelative(importPath):
		bases = []string{path.Join(path.Dir(from.Path), importPath)}
	case isRelative(importPath) || strings.HasPrefix(importPath, "/"):
		bases = []string{path.Clean(strings.TrimPrefix(importPath, "/"))}
	default:
		for _, dir := range r.paths {
			bases = append(bases, path.Join(dir, importPath))
		}
	}
	for _, base := range bases {
		for _, ext := range Extensions {
			candidate := base + ext
			if !fs.ValidPath(candidate) {
				continue
			}
			if mod, ok := container.CachedModule(candidate); ok {
				return mod, nil
			}
			info, err := fs.Stat(r.fsys, candidate)
			if err != nil || info.IsDir() {
				continue
			}
			return container.NewModule(candidate, candidate, r.reader(candidate)), nil
		}
	}
	return nil, nil
}

func (r *Resolver) reader(p string) func() ([]byte, error) {
	return func() ([]byte, error) {
		return fs.ReadFile(r.fsys, p)
	}
}
