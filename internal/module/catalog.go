package module

import (
	"github.com/livebud/esm/internal/js"
)

// Catalog is the set of import or export declarations in a module
type Catalog struct {
	module       *Module
	imports      bool
	Declarations []*Declaration
	Specifiers   []*Specifier
}

func (c *Catalog) add(decl *Declaration) {
	c.Declarations = append(c.Declarations, decl)
	c.Specifiers = append(c.Specifiers, decl.Specifiers...)
}

// FindByName finds the specifier binding name. That's the local alias for
// imports and the exported name for exports.
func (c *Catalog) FindByName(name string) *Specifier {
	for _, spec := range c.Specifiers {
		if spec.Name == name {
			return spec
		}
	}
	return nil
}

// FindByLocal finds the specifier for a local binding. For exports that's
// the first local export of that binding.
func (c *Catalog) FindByLocal(local string) *Specifier {
	if c.imports {
		return c.FindByName(local)
	}
	for _, spec := range c.Specifiers {
		if spec.From == local && spec.Binds() {
			return spec
		}
	}
	return nil
}

// FindAllByLocal finds every export of a local binding
func (c *Catalog) FindAllByLocal(local string) (specs []*Specifier) {
	if c.imports {
		if spec := c.FindByName(local); spec != nil {
			specs = append(specs, spec)
		}
		return specs
	}
	for _, spec := range c.Specifiers {
		if spec.From == local && spec.Binds() {
			specs = append(specs, spec)
		}
	}
	return specs
}

// FindByIdentifier finds the specifier for the module-level binding an
// identifier refers to
func (c *Catalog) FindByIdentifier(v *js.Var) *Specifier {
	name, ok := c.module.Binding(v)
	if !ok {
		return nil
	}
	return c.FindByLocal(name)
}

// Modules are the distinct modules referenced by the catalog in declaration
// order
func (c *Catalog) Modules() ([]*Module, error) {
	return sourceModules(c.Declarations)
}

func sourceModules(decls []*Declaration) ([]*Module, error) {
	seen := map[*Module]bool{}
	var mods []*Module
	for _, decl := range decls {
		mod, err := decl.SourceModule()
		if err != nil {
			return nil, err
		}
		if mod == nil || seen[mod] {
			continue
		}
		seen[mod] = true
		mods = append(mods, mod)
	}
	return mods, nil
}

func (m *Module) load() error {
	if m.loaded {
		return m.loadErr
	}
	m.loaded = true
	m.loadErr = m.readDeclarations()
	return m.loadErr
}

// readDeclarations classifies every top-level statement once
func (m *Module) readDeclarations() error {
	tree, err := m.Tree()
	if err != nil {
		return err
	}
	m.imports = &Catalog{module: m, imports: true}
	m.exports = &Catalog{module: m}
	m.locals = map[string]LocalKind{}
	m.topVars = map[*js.Var]string{}
	for _, stmt := range tree.BlockStmt.List {
		switch s := stmt.(type) {
		case *js.ImportStmt:
			decl := m.readImport(s)
			m.imports.add(decl)
			m.declarations = append(m.declarations, decl)
		case *js.ExportStmt:
			decl, err := m.readExport(s)
			if err != nil {
				return err
			}
			m.exports.add(decl)
			m.declarations = append(m.declarations, decl)
		default:
			m.declareStmt(stmt)
		}
	}
	for _, v := range tree.BlockStmt.Scope.Declared {
		name := string(v.Data)
		m.topVars[v] = name
		if _, ok := m.locals[name]; ok {
			continue
		}
		switch v.Decl {
		case js.FunctionDecl:
			m.declare(name, LocalFunction)
		case js.VariableDecl:
			m.declare(name, LocalVar)
		default:
			m.declare(name, LocalLet)
		}
	}
	return m.validate()
}

func (m *Module) declare(name string, kind LocalKind) {
	if _, ok := m.locals[name]; ok {
		return
	}
	m.locals[name] = kind
	m.localOrder = append(m.localOrder, name)
}

// declareStmt records the top-level names a statement declares
func (m *Module) declareStmt(node js.INode) {
	switch n := node.(type) {
	case *js.VarDecl:
		kind := LocalVar
		switch n.TokenType {
		case js.LetToken:
			kind = LocalLet
		case js.ConstToken:
			kind = LocalConst
		}
		for _, elem := range n.List {
			for _, name := range BindingNames(elem.Binding) {
				m.declare(name, kind)
			}
		}
	case *js.FuncDecl:
		if n.Name != nil {
			m.declare(string(n.Name.Data), LocalFunction)
		}
	case *js.ClassDecl:
		if n.Name != nil {
			m.declare(string(n.Name.Data), LocalClass)
		}
	}
}

func (m *Module) readImport(stmt *js.ImportStmt) *Declaration {
	decl := &Declaration{
		Module: m,
		Source: js.Unquote(stmt.Module),
		Node:   stmt,
	}
	if stmt.Default != nil {
		decl.Kind = ImportDefault
		decl.Specifiers = append(decl.Specifiers, &Specifier{
			Name:        string(stmt.Default),
			From:        "default",
			Declaration: decl,
		})
	}
	for _, alias := range stmt.List {
		if len(alias.Binding) == 0 {
			continue
		}
		from := string(alias.Binding)
		if alias.Name != nil {
			from = string(alias.Name)
		}
		if from == "*" {
			decl.Kind = ImportNamespace
		} else if decl.Kind != ImportNamespace {
			decl.Kind = ImportNamed
		}
		decl.Specifiers = append(decl.Specifiers, &Specifier{
			Name:        string(alias.Binding),
			From:        js.Unquote([]byte(from)),
			Declaration: decl,
		})
	}
	if decl.Kind == 0 {
		decl.Kind = ImportBare
	}
	return decl
}

func (m *Module) readExport(stmt *js.ExportStmt) (*Declaration, error) {
	decl := &Declaration{
		Module: m,
		Source: js.Unquote(stmt.Module),
		Node:   stmt,
	}
	if stmt.Default {
		decl.Kind = ExportDefault
		from := ""
		switch d := stmt.Decl.(type) {
		case *js.FuncDecl:
			if d.Name != nil {
				from = string(d.Name.Data)
				m.topVars[d.Name] = from
				m.declare(from, LocalFunction)
			}
		case *js.ClassDecl:
			if d.Name != nil {
				from = string(d.Name.Data)
				m.topVars[d.Name] = from
				m.declare(from, LocalClass)
			}
		case *js.Var:
			from = string(d.Data)
		}
		decl.Specifiers = []*Specifier{{Name: "default", From: from, Declaration: decl}}
		return decl, nil
	}
	if stmt.Decl != nil {
		m.declareStmt(stmt.Decl)
		var names []string
		switch d := stmt.Decl.(type) {
		case *js.VarDecl:
			decl.Kind = ExportVariable
			for _, elem := range d.List {
				names = append(names, BindingNames(elem.Binding)...)
			}
		case *js.FuncDecl:
			decl.Kind = ExportFunction
			names = []string{string(d.Name.Data)}
		case *js.ClassDecl:
			decl.Kind = ExportClass
			names = []string{string(d.Name.Data)}
		default:
			return nil, m.errorAtTokens(Classification, ErrUnsupported, []string{"export"}, "unsupported export declaration %q", js.Print(stmt))
		}
		for _, name := range names {
			decl.Specifiers = append(decl.Specifiers, &Specifier{Name: name, From: name, Declaration: decl})
		}
		return decl, nil
	}
	decl.Kind = ExportNamed
	for _, alias := range stmt.List {
		if len(alias.Binding) == 0 {
			continue
		}
		if string(alias.Binding) == "*" || string(alias.Name) == "*" {
			return nil, m.errorAtTokens(Classification, ErrUnsupported, []string{"export", "*"}, "batch re-exports are not supported, list the exported names explicitly: %s", js.Print(stmt))
		}
		from := string(alias.Binding)
		if alias.Name != nil {
			from = string(alias.Name)
		}
		decl.Specifiers = append(decl.Specifiers, &Specifier{
			Name:        js.Unquote(alias.Binding),
			From:        js.Unquote([]byte(from)),
			Declaration: decl,
		})
	}
	return decl, nil
}

// validate checks the rules that hold across declarations
func (m *Module) validate() error {
	var hasDefault, hasNamed bool
	exported := map[string]bool{}
	for _, spec := range m.exports.Specifiers {
		if exported[spec.Name] {
			return m.errorAtTokens(Classification, ErrDuplicate, []string{spec.Name}, "duplicate export %q", spec.Name)
		}
		exported[spec.Name] = true
		if spec.Name == "default" {
			hasDefault = true
		} else {
			hasNamed = true
		}
		if spec.Declaration.Source != "" || spec.From == "" {
			continue
		}
		if _, ok := m.locals[spec.From]; ok {
			continue
		}
		if m.imports.FindByName(spec.From) != nil {
			continue
		}
		if spec.Declaration.Kind == ExportDefault {
			// export default of a global like `export default window`
			continue
		}
		return m.errorAtTokens(Classification, ErrUndeclared, []string{spec.From}, "exported binding %q is not declared", spec.From)
	}
	if hasDefault && hasNamed {
		return m.errorAtTokens(Classification, ErrMixedExports, []string{"export", "default"}, "a module cannot mix a default export with named exports")
	}
	imported := map[string]bool{}
	for _, spec := range m.imports.Specifiers {
		if imported[spec.Name] {
			return m.errorAtTokens(Classification, ErrDuplicate, []string{spec.Name}, "duplicate import %q", spec.Name)
		}
		imported[spec.Name] = true
		if _, ok := m.locals[spec.Name]; ok {
			return m.errorAtTokens(Classification, ErrDuplicate, []string{spec.Name}, "imported binding %q is also declared locally", spec.Name)
		}
	}
	return nil
}

// BindingNames lists the names a binding pattern declares
func BindingNames(binding js.IBinding) []string {
	switch b := binding.(type) {
	case *js.Var:
		return []string{string(b.Data)}
	case *js.BindingArray:
		var names []string
		for _, elem := range b.List {
			names = append(names, BindingNames(elem.Binding)...)
		}
		if b.Rest != nil {
			names = append(names, BindingNames(b.Rest)...)
		}
		return names
	case *js.BindingObject:
		var names []string
		for _, item := range b.List {
			names = append(names, BindingNames(item.Value.Binding)...)
		}
		if b.Rest != nil {
			names = append(names, string(b.Rest.Data))
		}
		return names
	default:
		return nil
	}
}
