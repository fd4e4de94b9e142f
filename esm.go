// Package esm converts ES modules into AMD, CommonJS, globals and
// concatenated bundle formats ahead of time.
package esm

import (
	"context"
	"io"
	"io/fs"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/livebud/esm/internal/container"
	"github.com/livebud/esm/internal/formatter"
	"github.com/livebud/esm/internal/module"
	"github.com/livebud/esm/internal/resolver"
)

// Error is returned for every failure that can be tied to a module
type Error = module.Error

// Output is a converted file
type Output = container.Output

var (
	ErrConfig        = module.ErrConfig
	ErrNotFound      = module.ErrNotFound
	ErrSyntax        = module.ErrSyntax
	ErrUnsupported   = module.ErrUnsupported
	ErrMixedExports  = module.ErrMixedExports
	ErrDuplicate     = module.ErrDuplicate
	ErrUndeclared    = module.ErrUndeclared
	ErrImportAssign  = module.ErrImportAssign
	ErrNotTopLevel   = module.ErrNotTopLevel
	ErrCycle         = module.ErrCycle
	ErrMissingExport = module.ErrMissingExport
	ErrFrozen        = module.ErrFrozen
)

// Formats that can be passed to New
func Formats() []string {
	return formatter.Names()
}

// Options for a compiler
type Options struct {
	// Format is one of Formats(), defaulting to commonjs
	Format string
	// Paths are searched for imports that aren't relative
	Paths []string
	// Root is the global object the globals format attaches modules to
	Root string
	// Names maps a module's path to its name on Root
	Names map[string]string
	Log   *log.Logger
}

// New compiler that reads modules from fsys
func New(fsys fs.FS, options *Options) (*Compiler, error) {
	if options == nil {
		options = &Options{}
	}
	format := options.Format
	if format == "" {
		format = "commonjs"
	}
	f, err := formatter.New(format, &formatter.Options{
		Root:  options.Root,
		Names: options.Names,
	})
	if err != nil {
		return nil, err
	}
	c, err := container.New(f, resolver.New(fsys, options.Paths...))
	if err != nil {
		return nil, err
	}
	c.Log = options.Log
	if c.Log == nil {
		c.Log = log.New(io.Discard)
	}
	return &Compiler{c}, nil
}

// Compiler converts a graph of modules. It converts once: modules have to
// be loaded before the first conversion.
type Compiler struct {
	container *container.Container
}

// Load entry modules along with everything they import. Entry paths are
// relative to the root of the filesystem.
func (c *Compiler) Load(paths ...string) error {
	for _, path := range paths {
		if !strings.HasPrefix(path, "./") && !strings.HasPrefix(path, "../") && !strings.HasPrefix(path, "/") {
			path = "./" + path
		}
		mod, err := c.container.GetModule(path, nil)
		if err != nil {
			return err
		}
		if _, err := mod.Dependencies(); err != nil {
			return err
		}
	}
	return nil
}

// Convert the loaded modules without writing them
func (c *Compiler) Convert() error {
	_, err := c.container.Convert()
	return err
}

// Transform returns the converted files
func (c *Compiler) Transform() ([]*Output, error) {
	return c.container.Transform()
}

// Write the converted files to target, a directory or a .js file for the
// formats that produce a single file
func (c *Compiler) Write(ctx context.Context, target string) error {
	return c.container.Write(ctx, target)
}

// Order is the order modules were converted in, by path
func (c *Compiler) Order() []string {
	mods := c.container.Order()
	paths := make([]string, len(mods))
	for i, mod := range mods {
		paths[i] = mod.Path
	}
	return paths
}
