package formatter

import (
	"github.com/livebud/esm/internal/js"
	"github.com/livebud/esm/internal/module"
	"github.com/livebud/esm/internal/replacement"
)

// perFile holds the hooks shared by the formats that write one file per
// module. Imports become properties of a dependency object and exports
// become properties of an exports object.
type perFile struct {
	name    string
	exports string
	wrap    func(mod *module.Module, deps []*dependency, exported bool, body []js.IStmt) (string, error)
}

func (f *perFile) Name() string {
	return f.name
}

func (f *perFile) target(name string) js.IExpr {
	return js.Member(js.Ident(f.exports), name)
}

func (f *perFile) DefaultExport(mod *module.Module, decl *module.Declaration, loc replacement.Location, expr js.IExpr) (*replacement.Replacement, error) {
	if module.NamedDefault(decl) != "" {
		return replacement.Swap(loc, decl.Inner()), nil
	}
	return replacement.Swap(loc, js.Stmt(js.Assign(f.target("default"), expr))), nil
}

func (f *perFile) ExportedReference(mod *module.Module, ref *Reference) (js.IExpr, error) {
	return nil, nil
}

func (f *perFile) ImportedReference(mod *module.Module, ref *Reference) (js.IExpr, error) {
	deps, err := dependencies(mod)
	if err != nil {
		return nil, err
	}
	return f.importRef(deps, ref.Specifier)
}

func (f *perFile) importRef(deps []*dependency, spec *module.Specifier) (js.IExpr, error) {
	dep, err := findDependency(deps, spec.Declaration)
	if err != nil {
		return nil, err
	}
	if spec.IsNamespace() {
		return js.Ident(dep.name), nil
	}
	return js.Member(js.Ident(dep.name), spec.From), nil
}

func (f *perFile) LocalReference(mod *module.Module, ref *Reference) (js.IExpr, error) {
	return nil, nil
}

func (f *perFile) ProcessFunctionDeclaration(mod *module.Module, loc replacement.Location, node *js.FuncDecl) (*replacement.Replacement, error) {
	return nil, nil
}

func (f *perFile) ProcessClassDeclaration(mod *module.Module, loc replacement.Location, node *js.ClassDecl) (*replacement.Replacement, error) {
	return nil, nil
}

func (f *perFile) ProcessVariableDeclaration(mod *module.Module, loc replacement.Location, node *js.VarDecl) (*replacement.Replacement, error) {
	return nil, nil
}

func (f *perFile) ProcessExportDeclaration(mod *module.Module, decl *module.Declaration, loc replacement.Location) (*replacement.Replacement, error) {
	return unwrapExport(decl, loc), nil
}

func (f *perFile) ProcessExportReassignment(mod *module.Module, r *Reassignment) (*replacement.Replacement, error) {
	return reassign(mod, r, f.target), nil
}

func (f *perFile) ProcessImportDeclaration(mod *module.Module, decl *module.Declaration, loc replacement.Location) (*replacement.Replacement, error) {
	return replacement.Remove(loc), nil
}

func (f *perFile) Build(mods []*module.Module) ([]*File, error) {
	files := make([]*File, 0, len(mods))
	for _, mod := range mods {
		file, err := f.build(mod)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func (f *perFile) build(mod *module.Module) (*File, error) {
	deps, err := dependencies(mod)
	if err != nil {
		return nil, err
	}
	early, late, err := exportStatements(mod, f.target, js.Ident(f.exports), func(spec *module.Specifier) (js.IExpr, error) {
		if spec.Declaration.Source != "" {
			// export { a } from './a'
			return f.importRef(deps, spec)
		}
		imported, err := spec.ImportSpecifier()
		if err != nil {
			return nil, err
		}
		return f.importRef(deps, imported)
	})
	if err != nil {
		return nil, err
	}
	tree, err := mod.Tree()
	if err != nil {
		return nil, err
	}
	exported, err := hasExports(mod)
	if err != nil {
		return nil, err
	}
	body := make([]js.IStmt, 0, len(early)+len(tree.BlockStmt.List)+len(late))
	body = append(body, early...)
	body = append(body, tree.BlockStmt.List...)
	body = append(body, late...)
	code, err := f.wrap(mod, deps, exported, body)
	if err != nil {
		return nil, err
	}
	return &File{
		Path: outputPath(mod),
		Code: code,
	}, nil
}
