package formatter

import (
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/livebud/esm/internal/js"
	"github.com/livebud/esm/internal/module"
	"github.com/livebud/esm/internal/replacement"
)

// outputPath is where a module is written in per-file formats
func outputPath(mod *module.Module) string {
	return strings.TrimSuffix(mod.Relative, path.Ext(mod.Relative)) + ".js"
}

// importPath is the path one module uses to refer to another
func importPath(from, to *module.Module) string {
	rel, err := filepath.Rel(filepath.FromSlash(path.Dir(from.Relative)), filepath.FromSlash(to.Relative))
	if err != nil {
		rel = to.Relative
	}
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel
}

// dependency is a module imported by another module in per-file formats
type dependency struct {
	module *module.Module
	path   string
	name   string
	// bound is false when the dependency is only imported for its side
	// effects
	bound bool
}

func dependencies(mod *module.Module) ([]*dependency, error) {
	decls, err := mod.Declarations()
	if err != nil {
		return nil, err
	}
	var deps []*dependency
	index := map[*module.Module]*dependency{}
	for _, decl := range decls {
		source, err := decl.SourceModule()
		if err != nil {
			return nil, err
		}
		if source == nil {
			continue
		}
		dep, ok := index[source]
		if !ok {
			dep = &dependency{
				module: source,
				path:   importPath(mod, source),
				name:   fmt.Sprintf("__dependency%d__", len(deps)+1),
			}
			index[source] = dep
			deps = append(deps, dep)
		}
		if decl.Kind != module.ImportBare {
			dep.bound = true
		}
	}
	return deps, nil
}

func findDependency(deps []*dependency, decl *module.Declaration) (*dependency, error) {
	source, err := decl.SourceModule()
	if err != nil {
		return nil, err
	}
	for _, dep := range deps {
		if dep.module == source {
			return dep, nil
		}
	}
	return nil, fmt.Errorf("formatter: %s has no dependency on %q", decl.Module.Path, decl.Source)
}

// hasExports reports whether a module exports anything
func hasExports(mod *module.Module) (bool, error) {
	exports, err := mod.Exports()
	if err != nil {
		return false, err
	}
	return len(exports.Specifiers) > 0, nil
}

// unwrapExport swaps an export statement for the declaration it wraps or
// removes it when it's a list of names
func unwrapExport(decl *module.Declaration, loc replacement.Location) *replacement.Replacement {
	if inner := decl.Inner(); inner != nil {
		return replacement.Swap(loc, inner)
	}
	return replacement.Remove(loc)
}

// exportTarget is the expression an exported name is stored in
type exportTarget func(name string) js.IExpr

// reassign keeps exported values in sync when exported locals change
func reassign(mod *module.Module, r *Reassignment, target exportTarget) *replacement.Replacement {
	if r.Loop != nil {
		stmts := make([]js.IStmt, 0, len(r.Locals))
		for _, local := range r.Locals {
			stmts = append(stmts, js.Stmt(chain(mod, local, js.Ident(local), target)))
		}
		return replacement.Prepend(r.Loop, stmts...)
	}
	switch e := r.Expr.(type) {
	case *js.BinaryExpr:
		if v, ok := e.X.(*js.Var); ok {
			return replacement.Swap(r.Location, chain(mod, string(v.Data), e, target))
		}
		return sequence(mod, r, e, target, true)
	case *js.UnaryExpr:
		if !js.IsPostfix(e.Op) {
			v, ok := e.X.(*js.Var)
			if !ok {
				return nil
			}
			return replacement.Swap(r.Location, chain(mod, string(v.Data), e, target))
		}
		return sequence(mod, r, e, target, false)
	}
	return nil
}

// chain produces `exports.b = exports.a = expr`
func chain(mod *module.Module, local string, expr js.IExpr, target exportTarget) js.IExpr {
	names := mod.ExportNames(local)
	for i := len(names) - 1; i >= 0; i-- {
		expr = js.Assign(target(names[i]), expr)
	}
	return expr
}

// sequence evaluates expr and then copies every changed local onto its
// exports. When the value of expr is used, it's saved in a temporary so the
// sequence still evaluates to it.
func sequence(mod *module.Module, r *Reassignment, expr js.IExpr, target exportTarget, group bool) *replacement.Replacement {
	var updates []js.IExpr
	for _, local := range r.Locals {
		updates = append(updates, chain(mod, local, js.Ident(local), target))
	}
	if r.Discarded {
		seq := js.Seq(append([]js.IExpr{expr}, updates...)...)
		if group {
			seq = js.Group(seq)
		}
		return replacement.Swap(r.Location, seq)
	}
	tmp := mod.FreeName("__tmp__")
	list := []js.IExpr{js.Assign(js.Ident(tmp), expr)}
	list = append(list, updates...)
	list = append(list, js.Ident(tmp))
	return replacement.Swap(r.Location, js.Group(js.Seq(list...))).
		Prepend(r.Body, js.Declare(tmp, nil))
}

// exportStatements splits a module's exports into early ones, set before
// the body runs, and late ones, set after. Function declarations are hoisted
// so they're exported early. Reexports are exported early through getters
// on object when getter is set, and skipped otherwise.
func exportStatements(mod *module.Module, target exportTarget, object js.IExpr, getter func(spec *module.Specifier) (js.IExpr, error)) (early, late []js.IStmt, err error) {
	exports, err := mod.Exports()
	if err != nil {
		return nil, nil, err
	}
	for _, spec := range exports.Specifiers {
		decl := spec.Declaration
		if decl.Kind == module.ExportDefault && module.NamedDefault(decl) == "" {
			// assigned in place
			continue
		}
		if !spec.Binds() {
			if getter == nil {
				continue
			}
			expr, err := getter(spec)
			if err != nil {
				return nil, nil, err
			}
			stmt, err := defineGetter(object, spec.Name, expr)
			if err != nil {
				return nil, nil, err
			}
			early = append(early, stmt)
			continue
		}
		assign := js.Stmt(js.Assign(target(spec.Name), js.Ident(spec.From)))
		if kind, _ := mod.LocalKind(spec.From); kind == module.LocalFunction {
			early = append(early, assign)
			continue
		}
		late = append(late, assign)
	}
	return early, late, nil
}

// defineGetter creates a live, read-only export on an exports object
func defineGetter(object js.IExpr, name string, expr js.IExpr) (js.IStmt, error) {
	code := fmt.Sprintf("Object.defineProperty(%s, %s, { enumerable: true, get: function() { return %s; } })",
		js.Print(object), strconv.Quote(name), js.Print(expr))
	getter, err := js.ParseExpr(code)
	if err != nil {
		return nil, fmt.Errorf("formatter: unable to parse getter for %q. %w", name, err)
	}
	return js.Stmt(getter), nil
}

// renameSite is a binding declared by a top-level declaration
type renameSite struct {
	loc  replacement.Location
	name string
}

// bindingSites lists every name a binding pattern declares and where it is
func bindingSites(slot *js.IBinding) (sites []renameSite) {
	switch b := (*slot).(type) {
	case *js.Var:
		sites = append(sites, renameSite{replacement.Binding(slot), string(b.Data)})
	case *js.BindingArray:
		for i := range b.List {
			sites = append(sites, bindingSites(&b.List[i].Binding)...)
		}
		if b.Rest != nil {
			sites = append(sites, bindingSites(&b.Rest)...)
		}
	case *js.BindingObject:
		for i := range b.List {
			item := &b.List[i]
			if v, ok := item.Value.Binding.(*js.Var); ok {
				sites = append(sites, renameSite{replacement.ObjectItem(item), string(v.Data)})
				continue
			}
			sites = append(sites, bindingSites(&item.Value.Binding)...)
		}
		if b.Rest != nil {
			sites = append(sites, renameSite{replacement.Name(&b.Rest), string(b.Rest.Data)})
		}
	}
	return sites
}

// namespaceName is the variable holding a module's namespace object in the
// concatenated formats
func namespaceName(mod *module.Module) string {
	return mod.ID + "$ns"
}

// namespaces creates a frozen namespace object with a getter for every
// export of each module that's imported with `import * as`. They're
// declared before any module body runs.
func namespaces(mods []*module.Module, ref func(spec *module.Specifier) (js.IExpr, error)) ([]js.IStmt, error) {
	var targets []*module.Module
	seen := map[*module.Module]bool{}
	for _, mod := range mods {
		imports, err := mod.Imports()
		if err != nil {
			return nil, err
		}
		for _, spec := range imports.Specifiers {
			if !spec.IsNamespace() {
				continue
			}
			source, err := spec.Declaration.SourceModule()
			if err != nil {
				return nil, err
			}
			if seen[source] {
				continue
			}
			seen[source] = true
			targets = append(targets, source)
		}
	}
	var stmts []js.IStmt
	for _, mod := range targets {
		exports, err := mod.Exports()
		if err != nil {
			return nil, err
		}
		getters := make([]string, 0, len(exports.Specifiers))
		for _, spec := range exports.Specifiers {
			terminal, err := spec.Terminal()
			if err != nil {
				return nil, err
			}
			expr, err := ref(terminal)
			if err != nil {
				return nil, err
			}
			name := spec.Name
			if !js.IsIdentifier(name) {
				name = strconv.Quote(name)
			}
			getters = append(getters, fmt.Sprintf("get %s() { return %s; }", name, js.Print(expr)))
		}
		expr, err := js.ParseExpr(fmt.Sprintf("Object.freeze({%s})", strings.Join(getters, ", ")))
		if err != nil {
			return nil, fmt.Errorf("formatter: unable to create namespace for %q. %w", mod.Path, err)
		}
		stmts = append(stmts, js.Declare(namespaceName(mod), expr))
	}
	return stmts, nil
}

// concatenate joins the printed parts of a file, skipping empty ones
func concatenate(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, "\n")
}
