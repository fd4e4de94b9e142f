package formatter

import (
	"fmt"
	"strings"

	"github.com/livebud/esm/internal/js"
	"github.com/livebud/esm/internal/module"
)

// Globals writes one file per module that reads its dependencies from and
// attaches its exports to a global object
func Globals(options *Options) Interface {
	g := &globals{options.Root, options.Names}
	if g.root == "" {
		g.root = "window"
	}
	return &perFile{
		name:    "globals",
		exports: "__exports__",
		wrap:    g.wrap,
	}
}

type globals struct {
	root  string
	names map[string]string
}

// global is where a module lives on the root object
func (g *globals) global(mod *module.Module) string {
	name := mod.ID
	if override, ok := g.names[mod.Relative]; ok {
		name = override
	}
	return js.Print(js.Member(js.Ident(g.root), name))
}

func (g *globals) wrap(mod *module.Module, deps []*dependency, exported bool, body []js.IStmt) (string, error) {
	params := make([]string, 0, len(deps)+1)
	args := make([]string, 0, len(deps)+1)
	for _, dep := range deps {
		params = append(params, dep.name)
		args = append(args, g.global(dep.module))
	}
	if exported {
		global := g.global(mod)
		params = append(params, "__exports__")
		args = append(args, fmt.Sprintf("%s = %s || {}", global, global))
	}
	return fmt.Sprintf("(function(%s) {\n%s\n})(%s);",
		strings.Join(params, ", "),
		concatenate(`"use strict";`, js.PrintStmts(body)),
		strings.Join(args, ", "),
	), nil
}
