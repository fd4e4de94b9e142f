package formatter

import (
	"fmt"
	"strings"

	"github.com/livebud/esm/internal/js"
	"github.com/livebud/esm/internal/module"
	"github.com/livebud/esm/internal/replacement"
	"github.com/livebud/esm/internal/scope"
)

// bundleFile is the name of the single file the concatenating formats write
const bundleFile = "bundle.js"

// ModuleVariable concatenates modules into one file. Each module runs in its
// own function and its exports live on a shared `<id>$$` object.
func ModuleVariable() Interface {
	return &variable{
		name: "module-variable",
		target: func(mod *module.Module, name string) js.IExpr {
			return js.Member(js.Ident(mod.ID+"$$"), name)
		},
		declare: func(mod *module.Module, exports []*module.Specifier) []string {
			return []string{mod.ID + "$$ = {}"}
		},
	}
}

// ExportVariable concatenates modules into one file. Each module runs in its
// own function and each export lives in a shared `<id>$$<name>` variable.
// Export names that sanitize to the same identifier get numbered.
func ExportVariable() Interface {
	vars := map[*module.Module]*scope.Scope{}
	variableName := func(mod *module.Module, name string) string {
		s, ok := vars[mod]
		if !ok {
			s = scope.New()
			vars[mod] = s
		}
		if sym, ok := s.LookupByID(name); ok {
			return sym.Name
		}
		sym, err := s.Declare(name, mod.ID+"$$"+js.Sanitize(name))
		if err != nil {
			return mod.ID + "$$" + js.Sanitize(name)
		}
		return sym.Name
	}
	return &variable{
		name: "export-variable",
		target: func(mod *module.Module, name string) js.IExpr {
			return js.Ident(variableName(mod, name))
		},
		declare: func(mod *module.Module, exports []*module.Specifier) []string {
			names := make([]string, 0, len(exports))
			for _, spec := range exports {
				names = append(names, variableName(mod, spec.Name))
			}
			return names
		},
	}
}

type variable struct {
	name   string
	target func(mod *module.Module, name string) js.IExpr
	// declare lists the shared variables a module's exports need
	declare func(mod *module.Module, exports []*module.Specifier) []string
}

var _ Preparer = (*variable)(nil)

// Prepare names the shared export variables in load order before any
// module is rewritten
func (v *variable) Prepare(mods []*module.Module) error {
	for _, mod := range mods {
		specs, err := localExports(mod)
		if err != nil {
			return err
		}
		v.declare(mod, specs)
	}
	return nil
}

func (v *variable) Name() string {
	return v.name
}

func (v *variable) exportTarget(mod *module.Module) exportTarget {
	return func(name string) js.IExpr {
		return v.target(mod, name)
	}
}

// terminalRef is the expression that reads a resolved binding
func (v *variable) terminalRef(terminal *module.Specifier) (js.IExpr, error) {
	if terminal.IsNamespace() {
		source, err := terminal.Declaration.SourceModule()
		if err != nil {
			return nil, err
		}
		return js.Ident(namespaceName(source)), nil
	}
	return v.target(terminal.Module(), terminal.Name), nil
}

func (v *variable) DefaultExport(mod *module.Module, decl *module.Declaration, loc replacement.Location, expr js.IExpr) (*replacement.Replacement, error) {
	if module.NamedDefault(decl) != "" {
		return replacement.Swap(loc, decl.Inner()), nil
	}
	return replacement.Swap(loc, js.Stmt(js.Assign(v.target(mod, "default"), expr))), nil
}

func (v *variable) ExportedReference(mod *module.Module, ref *Reference) (js.IExpr, error) {
	return nil, nil
}

func (v *variable) ImportedReference(mod *module.Module, ref *Reference) (js.IExpr, error) {
	terminal, err := ref.Specifier.Terminal()
	if err != nil {
		return nil, err
	}
	return v.terminalRef(terminal)
}

func (v *variable) LocalReference(mod *module.Module, ref *Reference) (js.IExpr, error) {
	return nil, nil
}

func (v *variable) ProcessFunctionDeclaration(mod *module.Module, loc replacement.Location, node *js.FuncDecl) (*replacement.Replacement, error) {
	return nil, nil
}

func (v *variable) ProcessClassDeclaration(mod *module.Module, loc replacement.Location, node *js.ClassDecl) (*replacement.Replacement, error) {
	return nil, nil
}

func (v *variable) ProcessVariableDeclaration(mod *module.Module, loc replacement.Location, node *js.VarDecl) (*replacement.Replacement, error) {
	return nil, nil
}

func (v *variable) ProcessExportDeclaration(mod *module.Module, decl *module.Declaration, loc replacement.Location) (*replacement.Replacement, error) {
	return unwrapExport(decl, loc), nil
}

func (v *variable) ProcessExportReassignment(mod *module.Module, r *Reassignment) (*replacement.Replacement, error) {
	return reassign(mod, r, v.exportTarget(mod)), nil
}

func (v *variable) ProcessImportDeclaration(mod *module.Module, decl *module.Declaration, loc replacement.Location) (*replacement.Replacement, error) {
	return replacement.Remove(loc), nil
}

// localExports are the exports a module stores itself. Reexports are read
// straight from the module that declares them.
func localExports(mod *module.Module) ([]*module.Specifier, error) {
	exports, err := mod.Exports()
	if err != nil {
		return nil, err
	}
	var specs []*module.Specifier
	for _, spec := range exports.Specifiers {
		if spec.Binds() || spec.Declaration.Kind == module.ExportDefault {
			specs = append(specs, spec)
		}
	}
	return specs, nil
}

func (v *variable) Build(mods []*module.Module) ([]*File, error) {
	var declared []string
	for _, mod := range mods {
		specs, err := localExports(mod)
		if err != nil {
			return nil, err
		}
		if len(specs) == 0 {
			continue
		}
		declared = append(declared, v.declare(mod, specs)...)
	}
	prologue := ""
	if len(declared) > 0 {
		prologue = fmt.Sprintf("var %s;", strings.Join(declared, ", "))
	}
	nss, err := namespaces(mods, v.terminalRef)
	if err != nil {
		return nil, err
	}
	bodies := make([]string, 0, len(mods))
	for _, mod := range mods {
		early, late, err := exportStatements(mod, v.exportTarget(mod), nil, nil)
		if err != nil {
			return nil, err
		}
		tree, err := mod.Tree()
		if err != nil {
			return nil, err
		}
		body := make([]js.IStmt, 0, len(early)+len(tree.BlockStmt.List)+len(late))
		body = append(body, early...)
		body = append(body, tree.BlockStmt.List...)
		body = append(body, late...)
		bodies = append(bodies, fmt.Sprintf("(function() {\n%s\n})();", js.PrintStmts(body)))
	}
	code := wrapBundle(concatenate(prologue, js.PrintStmts(nss), strings.Join(bodies, "\n")))
	return []*File{{Path: bundleFile, Code: code}}, nil
}

// wrapBundle isolates concatenated modules from the surrounding scope
func wrapBundle(body string) string {
	return fmt.Sprintf("(function() {\n%s\n}).call(this);", concatenate(`"use strict";`, body))
}
