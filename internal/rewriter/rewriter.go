// Package rewriter walks a module's syntax tree once, asks the formatter
// what each module-level reference and declaration should become and then
// applies the answers.
package rewriter

import (
	"fmt"

	"github.com/livebud/esm/internal/formatter"
	"github.com/livebud/esm/internal/js"
	"github.com/livebud/esm/internal/module"
	"github.com/livebud/esm/internal/replacement"
)

// Rewrite the module's syntax tree in place for the formatter
func Rewrite(mod *module.Module, f formatter.Interface) error {
	tree, err := mod.Tree()
	if err != nil {
		return err
	}
	decls, err := mod.Declarations()
	if err != nil {
		return err
	}
	r := &rewriter{
		mod:   mod,
		f:     f,
		queue: replacement.New(),
		body:  &tree.BlockStmt.List,
		decls: make(map[js.IStmt]*module.Declaration, len(decls)),
	}
	for _, decl := range decls {
		r.decls[decl.Node] = decl
	}
	for _, stmt := range tree.BlockStmt.List {
		if err := r.topLevel(stmt); err != nil {
			return err
		}
	}
	if err := r.queue.Apply(); err != nil {
		return fmt.Errorf("rewriter: unable to rewrite %q. %w", mod.Path, err)
	}
	return nil
}

type rewriter struct {
	mod   *module.Module
	f     formatter.Interface
	queue *replacement.Replacement
	body  *[]js.IStmt
	decls map[js.IStmt]*module.Declaration
}

func (r *rewriter) enqueue(rep *replacement.Replacement, err error) error {
	if err != nil {
		return err
	}
	r.queue.And(rep)
	return nil
}

func (r *rewriter) topLevel(stmt js.IStmt) error {
	loc := replacement.Stmt(r.body, stmt)
	switch s := stmt.(type) {
	case *js.ImportStmt:
		return r.enqueue(r.f.ProcessImportDeclaration(r.mod, r.decls[stmt], loc))
	case *js.ExportStmt:
		decl := r.decls[stmt]
		if s.Default {
			return r.defaultExport(decl, s, loc)
		}
		if s.Decl != nil {
			if err := r.declaration(loc, s.Decl); err != nil {
				return err
			}
		}
		return r.enqueue(r.f.ProcessExportDeclaration(r.mod, decl, loc))
	case *js.VarDecl, *js.FuncDecl, *js.ClassDecl:
		return r.declaration(loc, s)
	default:
		return r.stmt(stmt)
	}
}

// declaration walks a top-level declaration without treating its names as
// references, then hands it to the formatter
func (r *rewriter) declaration(loc replacement.Location, node js.INode) error {
	switch d := node.(type) {
	case *js.VarDecl:
		for i := range d.List {
			if err := r.bindingElement(&d.List[i], false); err != nil {
				return err
			}
		}
		return r.enqueue(r.f.ProcessVariableDeclaration(r.mod, loc, d))
	case *js.FuncDecl:
		if err := r.function(&d.Params, &d.Body); err != nil {
			return err
		}
		return r.enqueue(r.f.ProcessFunctionDeclaration(r.mod, loc, d))
	case *js.ClassDecl:
		if err := r.class(d); err != nil {
			return err
		}
		return r.enqueue(r.f.ProcessClassDeclaration(r.mod, loc, d))
	default:
		return module.Errorf(module.Classification, module.ErrUnsupported, r.mod.Path, "unsupported declaration %s", js.Print(node))
	}
}

func (r *rewriter) defaultExport(decl *module.Declaration, s *js.ExportStmt, loc replacement.Location) error {
	switch d := s.Decl.(type) {
	case *js.Var:
		expr, err := r.resolve(replacement.Expr(&s.Decl), d)
		if err != nil {
			return err
		}
		if expr == nil {
			expr = d
		}
		return r.enqueue(r.f.DefaultExport(r.mod, decl, loc, expr))
	case *js.FuncDecl:
		if d.Name != nil {
			if err := r.declaration(loc, d); err != nil {
				return err
			}
		} else if err := r.function(&d.Params, &d.Body); err != nil {
			return err
		}
	case *js.ClassDecl:
		if d.Name != nil {
			if err := r.declaration(loc, d); err != nil {
				return err
			}
		} else if err := r.class(d); err != nil {
			return err
		}
	default:
		if err := r.expr(&s.Decl, false); err != nil {
			return err
		}
	}
	return r.enqueue(r.f.DefaultExport(r.mod, decl, loc, s.Decl))
}

// resolve asks the formatter what a module-level reference becomes. The
// first non-nil answer wins.
func (r *rewriter) resolve(loc replacement.Location, v *js.Var) (js.IExpr, error) {
	name, ok := r.mod.Binding(v)
	if !ok {
		return nil, nil
	}
	ref := &formatter.Reference{Location: loc, Var: v, Name: name}
	_, local := r.mod.LocalKind(name)
	if local && r.mod.Exported(name) {
		expr, err := r.f.ExportedReference(r.mod, ref)
		if err != nil || expr != nil {
			return expr, err
		}
	}
	if r.mod.Imported(name) {
		imports, err := r.mod.Imports()
		if err != nil {
			return nil, err
		}
		ref.Specifier = imports.FindByName(name)
		expr, err := r.f.ImportedReference(r.mod, ref)
		if err != nil || expr != nil {
			return expr, err
		}
	}
	if local {
		return r.f.LocalReference(r.mod, ref)
	}
	return nil, nil
}

func (r *rewriter) reference(loc replacement.Location, v *js.Var) error {
	expr, err := r.resolve(loc, v)
	if err != nil {
		return err
	}
	if expr != nil {
		r.queue.Swap(loc, expr)
	}
	return nil
}

// assignment handles an assignment or update expression in slot whose
// target is in target
func (r *rewriter) assignment(slot *js.IExpr, target *js.IExpr, discarded bool) error {
	locals, err := r.target(target)
	if err != nil {
		return err
	}
	if len(locals) == 0 {
		return nil
	}
	return r.enqueue(r.f.ProcessExportReassignment(r.mod, &formatter.Reassignment{
		Location:  replacement.Expr(slot),
		Expr:      *slot,
		Locals:    locals,
		Discarded: discarded,
		Body:      r.body,
	}))
}

// target walks an assignment target and returns the exported locals it
// assigns to. Assigning to an import is an error.
func (r *rewriter) target(slot *js.IExpr) (locals []string, err error) {
	switch t := (*slot).(type) {
	case *js.Var:
		return r.targetVar(replacement.Expr(slot), t)
	case *js.GroupExpr:
		return r.target(&t.X)
	case *js.ArrayExpr:
		for i := range t.List {
			if t.List[i].Value == nil {
				continue
			}
			names, err := r.target(&t.List[i].Value)
			if err != nil {
				return nil, err
			}
			locals = append(locals, names...)
		}
		return locals, nil
	case *js.ObjectExpr:
		for i := range t.List {
			prop := &t.List[i]
			if prop.Name != nil && prop.Name.Computed != nil {
				if err := r.expr(&prop.Name.Computed, false); err != nil {
					return nil, err
				}
			}
			var names []string
			if v, ok := prop.Value.(*js.Var); ok && prop.Name == nil {
				names, err = r.targetVar(replacement.Property(prop), v)
			} else {
				names, err = r.target(&prop.Value)
			}
			if err != nil {
				return nil, err
			}
			locals = append(locals, names...)
			if prop.Init != nil {
				if err := r.expr(&prop.Init, false); err != nil {
					return nil, err
				}
			}
		}
		return locals, nil
	case *js.BinaryExpr:
		if t.Op != js.EqToken {
			return nil, r.expr(slot, false)
		}
		// default value inside of a destructuring pattern
		locals, err = r.target(&t.X)
		if err != nil {
			return nil, err
		}
		return locals, r.expr(&t.Y, false)
	default:
		return nil, r.expr(slot, false)
	}
}

func (r *rewriter) targetVar(loc replacement.Location, v *js.Var) ([]string, error) {
	name, ok := r.mod.Binding(v)
	if !ok {
		return nil, nil
	}
	if r.mod.Imported(name) {
		return nil, r.mod.AssignmentError(name)
	}
	if err := r.reference(loc, v); err != nil {
		return nil, err
	}
	if r.mod.Exported(name) {
		return []string{name}, nil
	}
	return nil, nil
}
