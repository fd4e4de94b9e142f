// Package container owns the module graph and the conversion pipeline
package container

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/livebud/esm/internal/formatter"
	"github.com/livebud/esm/internal/js"
	"github.com/livebud/esm/internal/module"
	"github.com/livebud/esm/internal/resolver"
	"github.com/livebud/esm/internal/rewriter"
	"github.com/livebud/esm/internal/scope"
	"github.com/livebud/esm/internal/writer"
)

// New container. It needs a formatter and at least one resolver.
func New(f formatter.Interface, resolvers ...resolver.Interface) (*Container, error) {
	if f == nil {
		return nil, module.Errorf(module.Configuration, module.ErrConfig, "", "container needs a formatter")
	}
	if len(resolvers) == 0 {
		return nil, module.Errorf(module.Configuration, module.ErrConfig, "", "container needs at least one resolver")
	}
	return &Container{
		Log:       log.New(io.Discard),
		formatter: f,
		resolvers: resolvers,
		cache:     map[string]*module.Module{},
		ids:       scope.New(),
	}, nil
}

type Container struct {
	Log *log.Logger

	formatter formatter.Interface
	resolvers []resolver.Interface
	modules   []*module.Module
	cache     map[string]*module.Module
	ids       *scope.Scope
	// state is nil until the container converts, after which it's frozen
	state *converted
}

// converted is the result of the one conversion a container runs
type converted struct {
	order []*module.Module
	files []*formatter.File
	err   error
}

var _ module.Loader = (*Container)(nil)
var _ resolver.Container = (*Container)(nil)

// Output is a converted file
type Output struct {
	Filename  string
	Code      string
	SourceMap string
}

// GetModule returns the module for path, imported from `from` when it isn't
// nil. The same module is returned every time a path resolves to it.
func (c *Container) GetModule(path string, from *module.Module) (*module.Module, error) {
	for _, r := range c.resolvers {
		mod, err := r.ResolveModule(path, from, c)
		if err != nil {
			return nil, err
		}
		if mod == nil {
			continue
		}
		return c.register(mod)
	}
	if from == nil {
		return nil, module.Errorf(module.Resolution, module.ErrNotFound, "", "unable to find module %q", path)
	}
	return nil, module.Errorf(module.Resolution, module.ErrNotFound, from.Path, "unable to find module %q imported from %q", path, from.Relative)
}

// CachedModule returns a module that's already been loaded
func (c *Container) CachedModule(path string) (*module.Module, bool) {
	mod, ok := c.cache[path]
	return mod, ok
}

// NewModule creates a module owned by this container. It's added to the
// container once a resolver returns it.
func (c *Container) NewModule(path, relative string, read func() ([]byte, error)) *module.Module {
	return module.New(c, path, relative, read)
}

func (c *Container) register(mod *module.Module) (*module.Module, error) {
	if cached, ok := c.cache[mod.Path]; ok {
		return cached, nil
	}
	if c.state != nil {
		return nil, module.Errorf(module.Usage, module.ErrFrozen, mod.Path, "unable to add %q to a container that has already converted", mod.Relative)
	}
	base := strings.TrimSuffix(mod.Relative, path.Ext(mod.Relative))
	sym, err := c.ids.Declare(mod.Path, js.Sanitize(base))
	if err != nil {
		return nil, err
	}
	mod.ID = sym.Name
	c.cache[mod.Path] = mod
	c.modules = append(c.modules, mod)
	c.Log.Debug("loaded module", "path", mod.Path, "id", mod.ID)
	return mod, nil
}

// Modules loaded so far, in the order they were loaded
func (c *Container) Modules() []*module.Module {
	return c.modules
}

// Convert every module reachable from the loaded modules. The container
// converts once and is frozen afterwards, so later calls return the same
// files.
func (c *Container) Convert() ([]*formatter.File, error) {
	if c.state != nil {
		return c.state.files, c.state.err
	}
	// load the transitive closure before freezing
	for i := 0; i < len(c.modules); i++ {
		if _, err := c.modules[i].Dependencies(); err != nil {
			return nil, err
		}
	}
	c.Log.Debug("assigned module ids", "ids", strings.TrimSpace(c.ids.String()))
	c.state = &converted{}
	c.state.order, c.state.files, c.state.err = c.convert()
	return c.state.files, c.state.err
}

func (c *Container) convert() ([]*module.Module, []*formatter.File, error) {
	for _, mod := range c.modules {
		if err := mod.Validate(); err != nil {
			return nil, nil, err
		}
	}
	order, err := module.Sort(c.modules)
	if err != nil {
		return nil, nil, err
	}
	c.Log.Debug("sorted modules", "order", order)
	if p, ok := c.formatter.(formatter.Preparer); ok {
		if err := p.Prepare(order); err != nil {
			return nil, nil, err
		}
	}
	for _, mod := range order {
		if err := rewriter.Rewrite(mod, c.formatter); err != nil {
			return nil, nil, err
		}
	}
	files, err := c.formatter.Build(order)
	if err != nil {
		return nil, nil, err
	}
	for _, file := range files {
		c.Log.Debug("built file", "format", c.formatter.Name(), "path", file.Path, "size", len(file.Code))
	}
	return order, files, nil
}

// Order is the load order computed by the conversion
func (c *Container) Order() []*module.Module {
	if c.state == nil {
		return nil
	}
	return c.state.order
}

// Transform converts and returns the files in memory
func (c *Container) Transform() ([]*Output, error) {
	files, err := c.Convert()
	if err != nil {
		return nil, err
	}
	outputs := make([]*Output, len(files))
	for i, file := range files {
		outputs[i] = &Output{
			Filename:  file.Path,
			Code:      file.Code,
			SourceMap: file.SourceMap,
		}
	}
	return outputs, nil
}

// Write converts and writes the files to target, which is either a .js file
// for a single output file or a directory
func (c *Container) Write(ctx context.Context, target string) error {
	files, err := c.Convert()
	if err != nil {
		return err
	}
	out := make([]*writer.File, len(files))
	for i, file := range files {
		out[i] = &writer.File{Path: file.Path, Data: []byte(file.Code)}
	}
	if err := writer.Write(ctx, target, out); err != nil {
		return err
	}
	c.Log.Info("wrote files", "target", target, "files", len(files))
	return nil
}
