package container_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/livebud/esm/internal/container"
	"github.com/livebud/esm/internal/formatter"
	"github.com/livebud/esm/internal/module"
	"github.com/livebud/esm/internal/resolver"
	"github.com/matryer/is"
	"github.com/matthewmueller/virt"
)

func load(t testing.TB, name string, fsys virt.Map) *container.Container {
	t.Helper()
	f, err := formatter.New(name, nil)
	if err != nil {
		t.Fatal(err)
	}
	c, err := container.New(f, resolver.New(fsys))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// counter counts how many times the pipeline builds output
type counter struct {
	formatter.Interface
	builds int
}

func (c *counter) Build(mods []*module.Module) ([]*formatter.File, error) {
	c.builds++
	return c.Interface.Build(mods)
}

func TestConfigErrors(t *testing.T) {
	is := is.New(t)
	_, err := container.New(nil, resolver.New(virt.Map{}))
	is.True(errors.Is(err, module.ErrConfig))
	var merr *module.Error
	is.True(errors.As(err, &merr))
	is.Equal(merr.Kind, module.Configuration)
	_, err = container.New(formatter.CommonJS())
	is.True(errors.Is(err, module.ErrConfig))
}

func TestModuleIdentity(t *testing.T) {
	is := is.New(t)
	c := load(t, "commonjs", virt.Map{
		"a.js":       `import { b } from './lib/b'; console.log(b);`,
		"lib/b.js":   `export var b = 1;`,
		"lib/c.js":   `import { b } from './b'; console.log(b);`,
		"lib/d.js":   `import { b } from '../lib/b.js'; console.log(b);`,
		"unused.js":  `console.log("unused");`,
		"other/x.js": ``,
	})
	a, err := c.GetModule("a.js", nil)
	is.NoErr(err)
	again, err := c.GetModule("./a", nil)
	is.NoErr(err)
	is.True(a == again)
	b, err := c.GetModule("lib/b.js", nil)
	is.NoErr(err)
	fromA, err := c.GetModule("./lib/b", a)
	is.NoErr(err)
	is.True(b == fromA)
	_, err = c.GetModule("lib/c.js", nil)
	is.NoErr(err)
	_, err = c.GetModule("lib/d.js", nil)
	is.NoErr(err)
	_, err = c.Convert()
	is.NoErr(err)
	is.Equal(len(c.Modules()), 4)
	for _, mod := range c.Modules() {
		is.Equal(mod.Parses(), 1)
	}
}

func TestIDs(t *testing.T) {
	is := is.New(t)
	c := load(t, "bundle", virt.Map{
		"a-b.js":         ``,
		"a_b.js":         ``,
		"lib/index.js":   ``,
		"1st.js":         ``,
		"lib/$helper.js": ``,
	})
	var ids []string
	for _, p := range []string{"a-b.js", "a_b.js", "lib/index.js", "1st.js", "lib/$helper.js"} {
		mod, err := c.GetModule(p, nil)
		is.NoErr(err)
		ids = append(ids, mod.ID)
	}
	is.Equal(ids, []string{"a_b", "a_b1", "lib_index", "_1st", "lib__helper"})
}

func TestNotFound(t *testing.T) {
	is := is.New(t)
	c := load(t, "amd", virt.Map{
		"a.js": `import './missing';`,
	})
	_, err := c.GetModule("nope.js", nil)
	is.True(errors.Is(err, module.ErrNotFound))
	_, err = c.GetModule("a.js", nil)
	is.NoErr(err)
	_, err = c.Convert()
	is.True(errors.Is(err, module.ErrNotFound))
	var merr *module.Error
	is.True(errors.As(err, &merr))
	is.Equal(merr.Kind, module.Resolution)
	is.True(strings.Contains(err.Error(), `"./missing"`))
	is.True(strings.Contains(err.Error(), `"a.js"`))
}

func TestFrozen(t *testing.T) {
	is := is.New(t)
	c := load(t, "commonjs", virt.Map{
		"a.js": `export var a = 1;`,
		"b.js": `export var b = 2;`,
	})
	a, err := c.GetModule("a.js", nil)
	is.NoErr(err)
	_, err = c.Convert()
	is.NoErr(err)
	cached, err := c.GetModule("a.js", nil)
	is.NoErr(err)
	is.True(a == cached)
	_, err = c.GetModule("b.js", nil)
	is.True(errors.Is(err, module.ErrFrozen))
	var merr *module.Error
	is.True(errors.As(err, &merr))
	is.Equal(merr.Kind, module.Usage)
}

func TestOrder(t *testing.T) {
	is := is.New(t)
	c := load(t, "commonjs", virt.Map{
		"a.js": `import './b'; import './c';`,
		"b.js": `import './c';`,
		"c.js": `import './a';`,
	})
	_, err := c.GetModule("a.js", nil)
	is.NoErr(err)
	is.Equal(c.Order(), nil)
	_, err = c.Convert()
	is.NoErr(err)
	var paths []string
	for _, mod := range c.Order() {
		paths = append(paths, mod.Path)
	}
	is.Equal(paths, []string{"c.js", "b.js", "a.js"})
}

func TestWriteTwice(t *testing.T) {
	is := is.New(t)
	f := &counter{Interface: formatter.CommonJS()}
	c, err := container.New(f, resolver.New(virt.Map{
		"a.js":     `import { b } from './lib/b'; export var a = b + 1;`,
		"lib/b.js": `export var b = 1;`,
	}))
	is.NoErr(err)
	_, err = c.GetModule("a.js", nil)
	is.NoErr(err)
	ctx := context.Background()
	first, second := t.TempDir(), t.TempDir()
	is.NoErr(c.Write(ctx, first))
	is.NoErr(c.Write(ctx, second))
	is.Equal(f.builds, 1)
	for _, p := range []string{"a.js", filepath.Join("lib", "b.js")} {
		one, err := os.ReadFile(filepath.Join(first, p))
		is.NoErr(err)
		two, err := os.ReadFile(filepath.Join(second, p))
		is.NoErr(err)
		is.Equal(string(one), string(two))
		is.True(len(one) > 0)
	}
	for _, mod := range c.Modules() {
		is.Equal(mod.Parses(), 1)
	}
}

func TestWriteBundleFile(t *testing.T) {
	is := is.New(t)
	c := load(t, "bundle", virt.Map{
		"a.js": `import { b } from './b'; console.log(b);`,
		"b.js": `export var b = 1;`,
	})
	_, err := c.GetModule("a.js", nil)
	is.NoErr(err)
	target := filepath.Join(t.TempDir(), "out", "app.js")
	is.NoErr(c.Write(context.Background(), target))
	data, err := os.ReadFile(target)
	is.NoErr(err)
	is.True(strings.Contains(string(data), "console.log(b$$b)"))
}

func TestTransform(t *testing.T) {
	is := is.New(t)
	c := load(t, "amd", virt.Map{
		"a.js":     `import { b } from './lib/b'; export var a = b;`,
		"lib/b.js": `export var b = 1;`,
	})
	_, err := c.GetModule("a.js", nil)
	is.NoErr(err)
	outputs, err := c.Transform()
	is.NoErr(err)
	is.Equal(len(outputs), 2)
	is.Equal(outputs[0].Filename, "lib/b.js")
	is.Equal(outputs[1].Filename, "a.js")
	is.True(strings.HasPrefix(outputs[1].Code, `define(["./lib/b", "exports"], function(__dependency1__, __exports__) {`))
	is.Equal(outputs[1].SourceMap, "")
	again, err := c.Transform()
	is.NoErr(err)
	is.Equal(again[1].Code, outputs[1].Code)
}

func TestConvertErrorCached(t *testing.T) {
	is := is.New(t)
	f := &counter{Interface: formatter.CommonJS()}
	c, err := container.New(f, resolver.New(virt.Map{
		"a.js": "import { b } from './b';\nb++;",
		"b.js": `export var b = 1;`,
	}))
	is.NoErr(err)
	_, err = c.GetModule("a.js", nil)
	is.NoErr(err)
	_, err = c.Convert()
	is.True(errors.Is(err, module.ErrImportAssign))
	_, err = c.Convert()
	is.True(errors.Is(err, module.ErrImportAssign))
	is.Equal(f.builds, 0)
}
