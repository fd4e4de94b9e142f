package rewriter

import (
	"github.com/livebud/esm/internal/formatter"
	"github.com/livebud/esm/internal/js"
	"github.com/livebud/esm/internal/module"
	"github.com/livebud/esm/internal/replacement"
)

func (r *rewriter) stmts(list []js.IStmt) error {
	for _, stmt := range list {
		if err := r.stmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *rewriter) block(block *js.BlockStmt) error {
	if block == nil {
		return nil
	}
	return r.stmts(block.List)
}

func (r *rewriter) optional(slot *js.IExpr) error {
	if *slot == nil {
		return nil
	}
	return r.expr(slot, false)
}

func (r *rewriter) stmt(stmt js.IStmt) error {
	switch s := stmt.(type) {
	case nil:
		return nil
	case *js.ExprStmt:
		return r.expr(&s.Value, true)
	case *js.VarDecl:
		return r.varDecl(s)
	case *js.FuncDecl:
		return r.function(&s.Params, &s.Body)
	case *js.ClassDecl:
		return r.class(s)
	case *js.BlockStmt:
		return r.stmts(s.List)
	case *js.IfStmt:
		if err := r.expr(&s.Cond, false); err != nil {
			return err
		}
		if err := r.stmt(s.Body); err != nil {
			return err
		}
		return r.stmt(s.Else)
	case *js.DoWhileStmt:
		if err := r.stmt(s.Body); err != nil {
			return err
		}
		return r.expr(&s.Cond, false)
	case *js.WhileStmt:
		if err := r.expr(&s.Cond, false); err != nil {
			return err
		}
		return r.stmt(s.Body)
	case *js.ForStmt:
		if s.Init != nil {
			if err := r.expr(&s.Init, true); err != nil {
				return err
			}
		}
		if err := r.optional(&s.Cond); err != nil {
			return err
		}
		if s.Post != nil {
			if err := r.expr(&s.Post, true); err != nil {
				return err
			}
		}
		return r.block(s.Body)
	case *js.ForInStmt:
		if err := r.forInit(&s.Init, s.Body); err != nil {
			return err
		}
		if err := r.expr(&s.Value, false); err != nil {
			return err
		}
		return r.block(s.Body)
	case *js.ForOfStmt:
		if err := r.forInit(&s.Init, s.Body); err != nil {
			return err
		}
		if err := r.expr(&s.Value, false); err != nil {
			return err
		}
		return r.block(s.Body)
	case *js.SwitchStmt:
		if err := r.expr(&s.Init, false); err != nil {
			return err
		}
		for i := range s.List {
			clause := &s.List[i]
			if err := r.optional(&clause.Cond); err != nil {
				return err
			}
			if err := r.stmts(clause.List); err != nil {
				return err
			}
		}
		return nil
	case *js.ReturnStmt:
		return r.optional(&s.Value)
	case *js.ThrowStmt:
		return r.optional(&s.Value)
	case *js.WithStmt:
		if err := r.expr(&s.Cond, false); err != nil {
			return err
		}
		return r.stmt(s.Body)
	case *js.LabelledStmt:
		return r.stmt(s.Value)
	case *js.TryStmt:
		if err := r.block(s.Body); err != nil {
			return err
		}
		if s.Binding != nil {
			if err := r.binding(&s.Binding, true); err != nil {
				return err
			}
		}
		if err := r.block(s.Catch); err != nil {
			return err
		}
		return r.block(s.Finally)
	case *js.ImportStmt, *js.ExportStmt:
		keyword := "import"
		if _, ok := s.(*js.ExportStmt); ok {
			keyword = "export"
		}
		return module.Errorf(module.Semantic, module.ErrNotTopLevel, r.mod.Path, "%s declarations may only appear at the top level", keyword)
	default:
		return nil
	}
}

// forInit handles the left side of for-in and for-of loops, which is either
// a declaration or an assignment target. Exported locals assigned by the
// loop are updated at the start of every iteration.
func (r *rewriter) forInit(slot *js.IExpr, body *js.BlockStmt) error {
	if decl, ok := (*slot).(*js.VarDecl); ok {
		return r.varDecl(decl)
	}
	locals, err := r.target(slot)
	if err != nil {
		return err
	}
	if len(locals) == 0 || body == nil {
		return nil
	}
	return r.enqueue(r.f.ProcessExportReassignment(r.mod, &formatter.Reassignment{
		Location:  replacement.Expr(slot),
		Loop:      &body.List,
		Locals:    locals,
		Discarded: true,
		Body:      r.body,
	}))
}

func (r *rewriter) varDecl(decl *js.VarDecl) error {
	for i := range decl.List {
		if err := r.bindingElement(&decl.List[i], true); err != nil {
			return err
		}
	}
	return nil
}

func (r *rewriter) bindingElement(elem *js.BindingElement, declare bool) error {
	if err := r.binding(&elem.Binding, declare); err != nil {
		return err
	}
	return r.optional(&elem.Default)
}

// binding walks a binding pattern. Names declared by nested declarations can
// still be module-level, like `var` inside of a top-level block, so those are
// handled as references when declare is set.
func (r *rewriter) binding(slot *js.IBinding, declare bool) error {
	switch b := (*slot).(type) {
	case *js.Var:
		if !declare {
			return nil
		}
		return r.reference(replacement.Binding(slot), b)
	case *js.BindingArray:
		for i := range b.List {
			if err := r.bindingElement(&b.List[i], declare); err != nil {
				return err
			}
		}
		if b.Rest != nil {
			return r.binding(&b.Rest, declare)
		}
		return nil
	case *js.BindingObject:
		for i := range b.List {
			item := &b.List[i]
			if item.Key != nil && item.Key.Computed != nil {
				if err := r.expr(&item.Key.Computed, false); err != nil {
					return err
				}
			}
			if v, ok := item.Value.Binding.(*js.Var); ok {
				if declare {
					if err := r.reference(replacement.ObjectItem(item), v); err != nil {
						return err
					}
				}
			} else if err := r.binding(&item.Value.Binding, declare); err != nil {
				return err
			}
			if err := r.optional(&item.Value.Default); err != nil {
				return err
			}
		}
		if b.Rest != nil && declare {
			return r.reference(replacement.Name(&b.Rest), b.Rest)
		}
		return nil
	default:
		return nil
	}
}

func (r *rewriter) function(params *js.Params, body *js.BlockStmt) error {
	for i := range params.List {
		if err := r.bindingElement(&params.List[i], true); err != nil {
			return err
		}
	}
	if params.Rest != nil {
		if err := r.binding(&params.Rest, true); err != nil {
			return err
		}
	}
	return r.stmts(body.List)
}

func (r *rewriter) class(class *js.ClassDecl) error {
	if err := r.optional(&class.Extends); err != nil {
		return err
	}
	for i := range class.List {
		elem := &class.List[i]
		switch {
		case elem.StaticBlock != nil:
			if err := r.block(elem.StaticBlock); err != nil {
				return err
			}
		case elem.Method != nil:
			if err := r.method(elem.Method); err != nil {
				return err
			}
		default:
			if err := r.optional(&elem.Name.Computed); err != nil {
				return err
			}
			if err := r.optional(&elem.Init); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *rewriter) method(method *js.MethodDecl) error {
	if err := r.optional(&method.Name.Computed); err != nil {
		return err
	}
	return r.function(&method.Params, &method.Body)
}

func (r *rewriter) property(prop *js.Property) error {
	if prop.Name != nil {
		if err := r.optional(&prop.Name.Computed); err != nil {
			return err
		}
	}
	if v, ok := prop.Value.(*js.Var); ok && prop.Name == nil && !prop.Spread {
		return r.reference(replacement.Property(prop), v)
	}
	if err := r.optional(&prop.Value); err != nil {
		return err
	}
	return r.optional(&prop.Init)
}

// expr walks the expression in slot. Discarded is set when the value of the
// expression is never used.
func (r *rewriter) expr(slot *js.IExpr, discarded bool) error {
	switch e := (*slot).(type) {
	case nil:
		return nil
	case *js.Var:
		return r.reference(replacement.Expr(slot), e)
	case *js.BinaryExpr:
		if js.IsAssignment(e.Op) {
			if err := r.expr(&e.Y, false); err != nil {
				return err
			}
			return r.assignment(slot, &e.X, discarded)
		}
		if err := r.expr(&e.X, false); err != nil {
			return err
		}
		return r.expr(&e.Y, false)
	case *js.UnaryExpr:
		if js.IsUpdate(e.Op) {
			return r.assignment(slot, &e.X, discarded)
		}
		return r.expr(&e.X, false)
	case *js.GroupExpr:
		return r.expr(&e.X, discarded)
	case *js.CommaExpr:
		for i := range e.List {
			if err := r.expr(&e.List[i], discarded || i < len(e.List)-1); err != nil {
				return err
			}
		}
		return nil
	case *js.CondExpr:
		if err := r.expr(&e.Cond, false); err != nil {
			return err
		}
		if err := r.expr(&e.X, false); err != nil {
			return err
		}
		return r.expr(&e.Y, false)
	case *js.DotExpr:
		return r.expr(&e.X, false)
	case *js.IndexExpr:
		if err := r.expr(&e.X, false); err != nil {
			return err
		}
		return r.expr(&e.Y, false)
	case *js.CallExpr:
		if err := r.expr(&e.X, false); err != nil {
			return err
		}
		return r.args(&e.Args)
	case *js.NewExpr:
		if err := r.expr(&e.X, false); err != nil {
			return err
		}
		if e.Args != nil {
			return r.args(e.Args)
		}
		return nil
	case *js.ArrayExpr:
		for i := range e.List {
			if err := r.optional(&e.List[i].Value); err != nil {
				return err
			}
		}
		return nil
	case *js.ObjectExpr:
		for i := range e.List {
			if err := r.property(&e.List[i]); err != nil {
				return err
			}
		}
		return nil
	case *js.TemplateExpr:
		if err := r.optional(&e.Tag); err != nil {
			return err
		}
		for i := range e.List {
			if err := r.optional(&e.List[i].Expr); err != nil {
				return err
			}
		}
		return nil
	case *js.YieldExpr:
		return r.optional(&e.X)
	case *js.ArrowFunc:
		return r.function(&e.Params, &e.Body)
	case *js.FuncDecl:
		return r.function(&e.Params, &e.Body)
	case *js.MethodDecl:
		return r.method(e)
	case *js.ClassDecl:
		return r.class(e)
	case *js.VarDecl:
		return r.varDecl(e)
	default:
		return nil
	}
}

func (r *rewriter) args(args *js.Args) error {
	for i := range args.List {
		if err := r.expr(&args.List[i].Value, false); err != nil {
			return err
		}
	}
	return nil
}
