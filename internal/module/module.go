// Package module models ES modules, the bindings they import and export and
// how those bindings link across modules.
package module

import (
	"errors"
	"fmt"

	"github.com/livebud/esm/internal/esbuild"
	"github.com/livebud/esm/internal/js"
	"github.com/livebud/esm/internal/scope"
)

// Loader finds modules imported by other modules
type Loader interface {
	GetModule(path string, from *Module) (*Module, error)
}

// LocalKind is how a top-level binding was declared
type LocalKind uint8

const (
	LocalVar LocalKind = iota + 1
	LocalLet
	LocalConst
	LocalFunction
	LocalClass
)

// New module. Path is the canonical path that identifies the module and
// relative is the path used for display and output names.
func New(loader Loader, path, relative string, read func() ([]byte, error)) *Module {
	return &Module{
		Path:     path,
		Relative: relative,
		loader:   loader,
		read:     read,
	}
}

type Module struct {
	Path     string
	Relative string
	// ID is unique across a container and safe to use within identifiers
	ID string

	loader Loader
	read   func() ([]byte, error)
	parses int

	source  []byte
	tree    *js.AST
	locator *js.Locator

	loaded       bool
	loadErr      error
	imports      *Catalog
	exports      *Catalog
	declarations []*Declaration
	locals       map[string]LocalKind
	localOrder   []string
	topVars      map[*js.Var]string
	temps        *scope.Scope
}

func (m *Module) String() string {
	return m.Path
}

// Parses is the number of times the module's source has been parsed
func (m *Module) Parses() int {
	return m.parses
}

// Source code of the module
func (m *Module) Source() ([]byte, error) {
	if m.source != nil {
		return m.source, nil
	}
	source, err := m.read()
	if err != nil {
		return nil, fmt.Errorf("module: unable to read %q: %w", m.Path, err)
	}
	m.source = source
	return source, nil
}

// Tree is the parsed syntax tree, parsed once until the module is reloaded
func (m *Module) Tree() (*js.AST, error) {
	if m.tree != nil {
		return m.tree, nil
	}
	source, err := m.Source()
	if err != nil {
		return nil, err
	}
	m.parses++
	tree, err := js.Parse(m.Path, source)
	if err != nil {
		if keyword, line, column, ok := m.Locator().Nested(); ok {
			return nil, m.errorAt(Semantic, ErrNotTopLevel, line, column, "%s declarations may only appear at the top level", keyword)
		}
		var jsErr *js.Error
		if errors.As(err, &jsErr) {
			return nil, m.errorAt(Classification, ErrSyntax, jsErr.Line, jsErr.Column, "%s", jsErr.Message)
		}
		return nil, Errorf(Classification, ErrSyntax, m.Path, "%s", err)
	}
	m.tree = tree
	return tree, nil
}

// Locator finds source positions within the module
func (m *Module) Locator() *js.Locator {
	if m.locator == nil {
		source, _ := m.Source()
		m.locator = js.NewLocator(source)
	}
	return m.locator
}

// Reload drops every derived cache so the module is read and parsed again
func (m *Module) Reload() {
	m.source = nil
	m.tree = nil
	m.locator = nil
	m.loaded = false
	m.loadErr = nil
	m.imports = nil
	m.exports = nil
	m.declarations = nil
	m.locals = nil
	m.localOrder = nil
	m.topVars = nil
	m.temps = nil
}

// Imports declared by the module
func (m *Module) Imports() (*Catalog, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	return m.imports, nil
}

// Exports declared by the module
func (m *Module) Exports() (*Catalog, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	return m.exports, nil
}

// Declarations are every import and export declaration in source order
func (m *Module) Declarations() ([]*Declaration, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	return m.declarations, nil
}

// Dependencies are the distinct modules this module imports or re-exports
// from, in declaration order
func (m *Module) Dependencies() ([]*Module, error) {
	decls, err := m.Declarations()
	if err != nil {
		return nil, err
	}
	return sourceModules(decls)
}

// Locals are the module's top-level declared names in declaration order.
// Imported names are not included.
func (m *Module) Locals() ([]string, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	return m.localOrder, nil
}

// LocalKind returns how a top-level name was declared
func (m *Module) LocalKind(name string) (LocalKind, bool) {
	if err := m.load(); err != nil {
		return 0, false
	}
	kind, ok := m.locals[name]
	return kind, ok
}

// Binding returns the module-level name an identifier refers to. It returns
// false for globals and for names bound inside functions or blocks.
func (m *Module) Binding(v *js.Var) (string, bool) {
	if v == nil || m.load() != nil {
		return "", false
	}
	root := js.Root(v)
	if name, ok := m.topVars[root]; ok {
		return name, true
	}
	if root.Decl != js.NoDecl {
		return "", false
	}
	name := string(root.Data)
	if _, ok := m.locals[name]; ok {
		return name, true
	}
	if m.imports.FindByName(name) != nil {
		return name, true
	}
	return "", false
}

// Exported reports whether a top-level local is exported by name from this
// module.
func (m *Module) Exported(local string) bool {
	if err := m.load(); err != nil {
		return false
	}
	return m.exports.FindByLocal(local) != nil
}

// ExportNames are the names a top-level local is exported under
func (m *Module) ExportNames(local string) []string {
	if err := m.load(); err != nil {
		return nil
	}
	var names []string
	for _, spec := range m.exports.FindAllByLocal(local) {
		names = append(names, spec.Name)
	}
	return names
}

// Imported reports whether name is bound by an import declaration
func (m *Module) Imported(name string) bool {
	if err := m.load(); err != nil {
		return false
	}
	return m.imports.FindByName(name) != nil
}

// FreeName returns an identifier that doesn't appear anywhere in the module
// and hasn't been handed out before.
func (m *Module) FreeName(base string) string {
	if m.temps == nil {
		m.temps = scope.New()
		m.temps.Reserve(m.Locator().Words()...)
	}
	sym, err := m.temps.Declare(fmt.Sprintf("%s#%d", base, len(m.temps.Symbols())), base)
	if err != nil {
		return m.temps.FindFree(base)
	}
	return sym.Name
}

// Validate loads the module's bindings and resolves every specifier to the
// declaration it ultimately refers to.
func (m *Module) Validate() error {
	decls, err := m.Declarations()
	if err != nil {
		return err
	}
	for _, decl := range decls {
		for _, spec := range decl.Specifiers {
			if _, err := spec.Terminal(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Module) errorAt(kind Kind, cause error, line, column int, format string, args ...interface{}) *Error {
	err := Errorf(kind, cause, m.Path, format, args...)
	err.Line = line
	err.Column = column
	return err
}

// errorAtTokens reports an error at the first occurrence of a token
// sequence, or without a position if it can't be found
func (m *Module) errorAtTokens(kind Kind, cause error, tokens []string, format string, args ...interface{}) *Error {
	line, column, _ := m.Locator().Find(tokens...)
	return m.errorAt(kind, cause, line, column, format, args...)
}

// AssignmentError reports a reassignment of a binding the module can't
// reassign
func (m *Module) AssignmentError(name string) *Error {
	line, column := m.assignmentPosition(name)
	return m.errorAt(Semantic, ErrImportAssign, line, column, "cannot reassign imported binding %q", name)
}

// assignmentPosition finds the first assignment to the imported name,
// falling back to the first textual assignment when esbuild can't parse the
// module
func (m *Module) assignmentPosition(name string) (line, column int) {
	source, err := m.Source()
	if err != nil {
		return 0, 0
	}
	assignments, err := esbuild.ImportAssignments(m.Path, source)
	if err == nil {
		for _, a := range assignments {
			if a.Name == name {
				return a.Line, a.Column
			}
		}
	}
	line, column, _ = m.Locator().Assignment(name)
	return line, column
}
