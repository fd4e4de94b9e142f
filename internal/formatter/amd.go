package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/livebud/esm/internal/js"
	"github.com/livebud/esm/internal/module"
)

// AMD writes one file per module wrapped in an anonymous define call
func AMD() Interface {
	return &perFile{
		name:    "amd",
		exports: "__exports__",
		wrap:    wrapAMD,
	}
}

func wrapAMD(mod *module.Module, deps []*dependency, exported bool, body []js.IStmt) (string, error) {
	paths := make([]string, 0, len(deps)+1)
	params := make([]string, 0, len(deps)+1)
	for _, dep := range deps {
		paths = append(paths, strconv.Quote(dep.path))
		params = append(params, dep.name)
	}
	if exported {
		paths = append(paths, strconv.Quote("exports"))
		params = append(params, "__exports__")
	}
	return fmt.Sprintf("define([%s], function(%s) {\n%s\n});",
		strings.Join(paths, ", "),
		strings.Join(params, ", "),
		concatenate(`"use strict";`, js.PrintStmts(body)),
	), nil
}
