// Package formatter turns rewritten modules into code for a target module
// format.
package formatter

import (
	"sort"

	"github.com/livebud/esm/internal/js"
	"github.com/livebud/esm/internal/module"
	"github.com/livebud/esm/internal/replacement"
)

// Interface decides how declarations and references are rewritten for one
// output format and assembles the output files. Reference hooks return nil
// to leave the reference as written.
type Interface interface {
	Name() string
	Build(mods []*module.Module) ([]*File, error)
	DefaultExport(mod *module.Module, decl *module.Declaration, loc replacement.Location, expr js.IExpr) (*replacement.Replacement, error)
	ExportedReference(mod *module.Module, ref *Reference) (js.IExpr, error)
	ImportedReference(mod *module.Module, ref *Reference) (js.IExpr, error)
	LocalReference(mod *module.Module, ref *Reference) (js.IExpr, error)
	ProcessFunctionDeclaration(mod *module.Module, loc replacement.Location, node *js.FuncDecl) (*replacement.Replacement, error)
	ProcessClassDeclaration(mod *module.Module, loc replacement.Location, node *js.ClassDecl) (*replacement.Replacement, error)
	ProcessVariableDeclaration(mod *module.Module, loc replacement.Location, node *js.VarDecl) (*replacement.Replacement, error)
	ProcessExportDeclaration(mod *module.Module, decl *module.Declaration, loc replacement.Location) (*replacement.Replacement, error)
	ProcessExportReassignment(mod *module.Module, r *Reassignment) (*replacement.Replacement, error)
	ProcessImportDeclaration(mod *module.Module, decl *module.Declaration, loc replacement.Location) (*replacement.Replacement, error)
}

// Preparer is implemented by formatters that need to see every module, in
// load order, before any module is rewritten
type Preparer interface {
	Prepare(mods []*module.Module) error
}

// File is an output file
type File struct {
	Path      string
	Code      string
	SourceMap string
}

// Reference is an identifier that refers to a module-level binding
type Reference struct {
	Location replacement.Location
	Var      *js.Var
	// Name of the module-level binding
	Name string
	// Specifier is the import that bound the name, for imported references
	Specifier *module.Specifier
}

// Reassignment is an assignment or update expression that changes one or
// more exported bindings. Loop heads like `for (a of list)` have no
// expression and set Loop instead.
type Reassignment struct {
	Location replacement.Location
	// Expr is the *js.BinaryExpr assignment or *js.UnaryExpr update
	Expr js.IExpr
	// Loop is the body of a for-in or for-of loop that assigns the locals
	// on every iteration
	Loop *[]js.IStmt
	// Locals are the exported local bindings that change
	Locals []string
	// Discarded is true when the value of Expr isn't used
	Discarded bool
	// Body is the module's top-level statement list
	Body *[]js.IStmt
}

// Options for the formatters that need them
type Options struct {
	// Root is the global object the globals format attaches modules to
	Root string
	// Names maps a module's relative path to its global name
	Names map[string]string
}

type constructor func(options *Options) Interface

var formatters = map[string]constructor{
	"amd":             func(o *Options) Interface { return AMD() },
	"commonjs":        func(o *Options) Interface { return CommonJS() },
	"globals":         func(o *Options) Interface { return Globals(o) },
	"module-variable": func(o *Options) Interface { return ModuleVariable() },
	"export-variable": func(o *Options) Interface { return ExportVariable() },
	"bundle":          func(o *Options) Interface { return Bundle() },
}

// Names of the available formats
func Names() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New formatter by name
func New(name string, options *Options) (Interface, error) {
	fn, ok := formatters[name]
	if !ok {
		return nil, module.Errorf(module.Configuration, module.ErrConfig, "", "unknown format %q, expected one of %v", name, Names())
	}
	if options == nil {
		options = &Options{}
	}
	return fn(options), nil
}
