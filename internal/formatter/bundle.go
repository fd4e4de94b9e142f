package formatter

import (
	"github.com/livebud/esm/internal/js"
	"github.com/livebud/esm/internal/module"
	"github.com/livebud/esm/internal/replacement"
)

// Bundle concatenates modules into one shared scope. Top-level bindings
// whose names appear in another module are renamed to `<id>$$<name>`.
func Bundle() Interface {
	return &bundle{}
}

type bundle struct {
	names map[*module.Module]map[string]string
}

var _ Preparer = (*bundle)(nil)

func (b *bundle) Name() string {
	return "bundle"
}

// Prepare decides which top-level bindings to rename. A binding keeps its
// name when no other module mentions it, so it can't capture or shadow
// anything outside of its own module.
func (b *bundle) Prepare(mods []*module.Module) error {
	mentions := map[string]map[*module.Module]bool{}
	for _, mod := range mods {
		for _, word := range mod.Locator().Words() {
			if mentions[word] == nil {
				mentions[word] = map[*module.Module]bool{}
			}
			mentions[word][mod] = true
		}
	}
	b.names = make(map[*module.Module]map[string]string, len(mods))
	for _, mod := range mods {
		locals, err := mod.Locals()
		if err != nil {
			return err
		}
		names := make(map[string]string, len(locals))
		for _, local := range locals {
			names[local] = local
			for other := range mentions[local] {
				if other != mod {
					names[local] = mod.ID + "$$" + local
					break
				}
			}
		}
		b.names[mod] = names
	}
	return nil
}

func (b *bundle) rename(mod *module.Module, local string) *js.Var {
	if name, ok := b.names[mod][local]; ok {
		return js.Ident(name)
	}
	return js.Ident(mod.ID + "$$" + local)
}

// renamed returns the new name of a top-level binding, or nil when it keeps
// its name
func (b *bundle) renamed(mod *module.Module, local string) *js.Var {
	v := b.rename(mod, local)
	if string(v.Data) == local {
		return nil
	}
	return v
}

// terminalRef is the variable a resolved binding lives in
func (b *bundle) terminalRef(terminal *module.Specifier) (js.IExpr, error) {
	decl := terminal.Declaration
	if terminal.IsNamespace() {
		source, err := decl.SourceModule()
		if err != nil {
			return nil, err
		}
		return js.Ident(namespaceName(source)), nil
	}
	if decl.Kind == module.ExportDefault && !terminal.Binds() {
		return js.Ident(terminal.Module().ID + "$$default"), nil
	}
	return b.rename(terminal.Module(), terminal.From), nil
}

func (b *bundle) DefaultExport(mod *module.Module, decl *module.Declaration, loc replacement.Location, expr js.IExpr) (*replacement.Replacement, error) {
	if module.NamedDefault(decl) != "" {
		return replacement.Swap(loc, decl.Inner()), nil
	}
	return replacement.Swap(loc, js.Declare(mod.ID+"$$default", expr)), nil
}

func (b *bundle) ExportedReference(mod *module.Module, ref *Reference) (js.IExpr, error) {
	return b.LocalReference(mod, ref)
}

func (b *bundle) ImportedReference(mod *module.Module, ref *Reference) (js.IExpr, error) {
	terminal, err := ref.Specifier.Terminal()
	if err != nil {
		return nil, err
	}
	return b.terminalRef(terminal)
}

func (b *bundle) LocalReference(mod *module.Module, ref *Reference) (js.IExpr, error) {
	if v := b.renamed(mod, ref.Name); v != nil {
		return v, nil
	}
	return nil, nil
}

func (b *bundle) ProcessFunctionDeclaration(mod *module.Module, loc replacement.Location, node *js.FuncDecl) (*replacement.Replacement, error) {
	if node.Name == nil {
		return nil, nil
	}
	if v := b.renamed(mod, string(node.Name.Data)); v != nil {
		return replacement.Swap(replacement.Name(&node.Name), v), nil
	}
	return nil, nil
}

func (b *bundle) ProcessClassDeclaration(mod *module.Module, loc replacement.Location, node *js.ClassDecl) (*replacement.Replacement, error) {
	if node.Name == nil {
		return nil, nil
	}
	if v := b.renamed(mod, string(node.Name.Data)); v != nil {
		return replacement.Swap(replacement.Name(&node.Name), v), nil
	}
	return nil, nil
}

func (b *bundle) ProcessVariableDeclaration(mod *module.Module, loc replacement.Location, node *js.VarDecl) (*replacement.Replacement, error) {
	r := replacement.New()
	for i := range node.List {
		for _, site := range bindingSites(&node.List[i].Binding) {
			if v := b.renamed(mod, site.name); v != nil {
				r.Swap(site.loc, v)
			}
		}
	}
	return r, nil
}

func (b *bundle) ProcessExportDeclaration(mod *module.Module, decl *module.Declaration, loc replacement.Location) (*replacement.Replacement, error) {
	return unwrapExport(decl, loc), nil
}

// ProcessExportReassignment keeps reassignments as they are since the
// renamed binding is the export
func (b *bundle) ProcessExportReassignment(mod *module.Module, r *Reassignment) (*replacement.Replacement, error) {
	return nil, nil
}

func (b *bundle) ProcessImportDeclaration(mod *module.Module, decl *module.Declaration, loc replacement.Location) (*replacement.Replacement, error) {
	return replacement.Remove(loc), nil
}

func (b *bundle) Build(mods []*module.Module) ([]*File, error) {
	nss, err := namespaces(mods, b.terminalRef)
	if err != nil {
		return nil, err
	}
	bodies := make([]string, 0, len(mods))
	for _, mod := range mods {
		tree, err := mod.Tree()
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, js.PrintStmts(tree.BlockStmt.List))
	}
	code := wrapBundle(concatenate(js.PrintStmts(nss), concatenate(bodies...)))
	return []*File{{Path: bundleFile, Code: code}}, nil
}
