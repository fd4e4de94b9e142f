package formatter

import (
	"github.com/livebud/esm/internal/js"
	"github.com/livebud/esm/internal/module"
)

// CommonJS writes one file per module using require and exports
func CommonJS() Interface {
	return &perFile{
		name:    "commonjs",
		exports: "exports",
		wrap:    wrapCommonJS,
	}
}

func wrapCommonJS(mod *module.Module, deps []*dependency, exported bool, body []js.IStmt) (string, error) {
	requires := make([]js.IStmt, 0, len(deps))
	for _, dep := range deps {
		call := require(dep.path)
		if !dep.bound {
			requires = append(requires, js.Stmt(call))
			continue
		}
		requires = append(requires, js.Declare(dep.name, call))
	}
	return concatenate(
		`"use strict";`,
		js.PrintStmts(requires),
		js.PrintStmts(body),
	), nil
}

func require(path string) *js.CallExpr {
	return &js.CallExpr{
		X: js.Ident("require"),
		Args: js.Args{
			List: []js.Arg{{Value: js.String(path)}},
		},
	}
}
