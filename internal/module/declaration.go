package module

import (
	"fmt"

	"github.com/livebud/esm/internal/js"
)

// DeclarationKind classifies an import or export statement
type DeclarationKind uint8

const (
	// import a from './a'
	ImportDefault DeclarationKind = iota + 1
	// import { a, b as c } from './a'
	ImportNamed
	// import './a'
	ImportBare
	// import * as a from './a'
	ImportNamespace
	// export default expr
	ExportDefault
	// export { a, b as c } and export { a } from './a'
	ExportNamed
	// export var a = 1
	ExportVariable
	// export function a() {}
	ExportFunction
	// export class A {}
	ExportClass
)

func (k DeclarationKind) String() string {
	switch k {
	case ImportDefault:
		return "import default"
	case ImportNamed:
		return "import named"
	case ImportBare:
		return "import bare"
	case ImportNamespace:
		return "import namespace"
	case ExportDefault:
		return "export default"
	case ExportNamed:
		return "export named"
	case ExportVariable:
		return "export variable"
	case ExportFunction:
		return "export function"
	case ExportClass:
		return "export class"
	default:
		return "unknown"
	}
}

// Declaration is one top-level import or export statement
type Declaration struct {
	Kind   DeclarationKind
	Module *Module
	// Source is the import path as written, empty for local exports
	Source string
	// Node is the *js.ImportStmt or *js.ExportStmt
	Node       js.IStmt
	Specifiers []*Specifier

	resolved bool
	source   *Module
	err      error
}

// IsImport reports whether the declaration is an import statement
func (d *Declaration) IsImport() bool {
	return d.Kind <= ImportNamespace
}

// SourceModule is the module the declaration imports or re-exports from.
// It's nil for local exports.
func (d *Declaration) SourceModule() (*Module, error) {
	if d.Source == "" {
		return nil, nil
	}
	if !d.resolved {
		d.source, d.err = d.Module.loader.GetModule(d.Source, d.Module)
		d.resolved = true
	}
	return d.source, d.err
}

// Inner is the declaration an export statement wraps, like the function in
// `export function a() {}`
func (d *Declaration) Inner() js.IExpr {
	if stmt, ok := d.Node.(*js.ExportStmt); ok {
		return stmt.Decl
	}
	return nil
}

func (d *Declaration) String() string {
	return fmt.Sprintf("%s in %s", d.Kind, d.Module.Path)
}
