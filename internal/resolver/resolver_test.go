package resolver_test

import (
	"testing"

	"github.com/livebud/esm/internal/module"
	"github.com/livebud/esm/internal/resolver"
	"github.com/matryer/is"
	"github.com/matthewmueller/virt"
)

type container struct {
	cache map[string]*module.Module
}

func newContainer() *container {
	return &container{map[string]*module.Module{}}
}

func (c *container) GetModule(path string, from *module.Module) (*module.Module, error) {
	return nil, nil
}

func (c *container) CachedModule(path string) (*module.Module, bool) {
	mod, ok := c.cache[path]
	return mod, ok
}

func (c *container) NewModule(path, relative string, read func() ([]byte, error)) *module.Module {
	mod := module.New(c, path, relative, read)
	c.cache[path] = mod
	return mod
}

func TestResolveFromRoot(t *testing.T) {
	is := is.New(t)
	fsys := virt.Map{
		"users/index.js": `export default 1`,
		"users/about.js": `export default 2`,
	}
	res := resolver.New(fsys)
	mod, err := res.ResolveModule("./users/index.js", nil, newContainer())
	is.NoErr(err)
	is.Equal(mod.Path, "users/index.js")
	code, err := mod.Source()
	is.NoErr(err)
	is.Equal(string(code), `export default 1`)
}

func TestResolveFromModule(t *testing.T) {
	is := is.New(t)
	fsys := virt.Map{
		"users/index.js": `import about from './about'`,
		"users/about.js": `export default 2`,
		"shared/util.js": `export var a = 1`,
	}
	c := newContainer()
	res := resolver.New(fsys)
	index, err := res.ResolveModule("users/index.js", nil, c)
	is.NoErr(err)
	about, err := res.ResolveModule("./about", index, c)
	is.NoErr(err)
	is.Equal(about.Path, "users/about.js")
	util, err := res.ResolveModule("../shared/util", index, c)
	is.NoErr(err)
	is.Equal(util.Path, "shared/util.js")
	again, err := res.ResolveModule("./about.js", index, c)
	is.NoErr(err)
	is.Equal(again, about)
}

func TestResolveSearchPaths(t *testing.T) {
	is := is.New(t)
	fsys := virt.Map{
		"app/main.js":         `import 'lib'`,
		"vendor/lib/index.js": `export var lib = 1`,
		"node/other.mjs":      `export var other = 1`,
	}
	c := newContainer()
	res := resolver.New(fsys, "vendor", "node")
	main, err := res.ResolveModule("app/main.js", nil, c)
	is.NoErr(err)
	lib, err := res.ResolveModule("lib", main, c)
	is.NoErr(err)
	is.Equal(lib.Path, "vendor/lib/index.js")
	other, err := res.ResolveModule("other", main, c)
	is.NoErr(err)
	is.Equal(other.Path, "node/other.mjs")
}

func TestResolveMissing(t *testing.T) {
	is := is.New(t)
	res := resolver.New(virt.Map{"a.js": ``})
	mod, err := res.ResolveModule("./b", nil, newContainer())
	is.NoErr(err)
	is.Equal(mod, nil)
	mod, err = res.ResolveModule("../outside", nil, newContainer())
	is.NoErr(err)
	is.Equal(mod, nil)
}
