package module

import (
	"github.com/livebud/esm/internal/js"
)

// Specifier is one name bound by a declaration
type Specifier struct {
	// Name is the name the specifier binds. For imports it's the local
	// alias, for exports it's the exported name.
	Name string
	// From is the name the specifier reads. For imports it's the imported
	// name ("default" or "*" included), for local exports the local binding,
	// for re-exports the name in the source module. It's empty for an
	// anonymous default export.
	From        string
	Declaration *Declaration

	exportLinked bool
	export       *Specifier
	importLinked bool
	imported     *Specifier
	terminal     *Specifier
}

func (s *Specifier) String() string {
	if s.From == "" || s.From == s.Name {
		return s.Name
	}
	return s.From + " as " + s.Name
}

// Module that declared the specifier
func (s *Specifier) Module() *Module {
	return s.Declaration.Module
}

// IsNamespace reports whether the specifier binds a namespace import
func (s *Specifier) IsNamespace() bool {
	return s.Declaration.IsImport() && s.From == "*"
}

// IsImport reports whether the specifier belongs to an import declaration
func (s *Specifier) IsImport() bool {
	return s.Declaration.IsImport()
}

// Binds reports whether an export specifier exports a live local binding.
// Re-exports and exports of imported bindings don't, and neither do default exports of anything other than
// a named function or class: `export default a` exports a's value.
func (s *Specifier) Binds() bool {
	decl := s.Declaration
	if decl.IsImport() || decl.Source != "" || s.From == "" {
		return false
	}
	if _, ok := decl.Module.locals[s.From]; !ok {
		return false
	}
	if decl.Kind != ExportDefault {
		return true
	}
	return NamedDefault(decl) != ""
}

// NamedDefault returns the name of a default exported function or class
// declaration, or "" for any other default export
func NamedDefault(decl *Declaration) string {
	if decl.Kind != ExportDefault {
		return ""
	}
	switch d := decl.Inner().(type) {
	case *js.FuncDecl:
		if d.Name != nil {
			return string(d.Name.Data)
		}
	case *js.ClassDecl:
		if d.Name != nil {
			return string(d.Name.Data)
		}
	}
	return ""
}

// ExportSpecifier is the export in the source module that this specifier
// reads from. It's nil for local exports and namespace imports.
func (s *Specifier) ExportSpecifier() (*Specifier, error) {
	if s.exportLinked {
		return s.export, nil
	}
	if s.Declaration.Source == "" || s.IsNamespace() {
		s.exportLinked = true
		return nil, nil
	}
	source, err := s.Declaration.SourceModule()
	if err != nil {
		return nil, err
	}
	exports, err := source.Exports()
	if err != nil {
		return nil, err
	}
	export := exports.FindByName(s.From)
	if export == nil {
		mod := s.Module()
		return nil, mod.errorAtTokens(Semantic, ErrMissingExport, []string{s.From}, "%q does not export %q", source.Relative, s.From)
	}
	s.export = export
	s.exportLinked = true
	return export, nil
}

// ImportSpecifier is the import that produced a binding this module
// exports again, as in `import { a } from './a'; export { a }`. It's nil
// otherwise.
func (s *Specifier) ImportSpecifier() (*Specifier, error) {
	if s.importLinked {
		return s.imported, nil
	}
	if s.IsImport() || s.Declaration.Source != "" || s.From == "" {
		s.importLinked = true
		return nil, nil
	}
	imports, err := s.Module().Imports()
	if err != nil {
		return nil, err
	}
	s.imported = imports.FindByName(s.From)
	s.importLinked = true
	return s.imported, nil
}

// Terminal follows re-exports and imports back to the specifier where the
// binding was originally declared.
func (s *Specifier) Terminal() (*Specifier, error) {
	if s.terminal != nil {
		return s.terminal, nil
	}
	terminal, err := s.resolve(map[*Specifier]bool{})
	if err != nil {
		return nil, err
	}
	s.terminal = terminal
	return terminal, nil
}

func (s *Specifier) resolve(visited map[*Specifier]bool) (*Specifier, error) {
	if s.terminal != nil {
		return s.terminal, nil
	}
	if visited[s] {
		mod := s.Module()
		return nil, mod.errorAtTokens(Semantic, ErrCycle, []string{s.Name}, "unable to resolve %q in %s: the binding never leaves its import cycle", s.Name, mod.Relative)
	}
	visited[s] = true
	export, err := s.ExportSpecifier()
	if err != nil {
		return nil, err
	}
	if export != nil {
		return export.resolve(visited)
	}
	imported, err := s.ImportSpecifier()
	if err != nil {
		return nil, err
	}
	if imported != nil {
		return imported.resolve(visited)
	}
	return s, nil
}
