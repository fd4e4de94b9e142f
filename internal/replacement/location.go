package replacement

import (
	"fmt"

	"github.com/livebud/esm/internal/js"
)

// Location is a slot in the syntax tree that holds a node
type Location interface {
	// Node currently held by the slot
	Node() js.INode
	set(nodes []js.INode) error
}

// Expr is an expression slot
func Expr(slot *js.IExpr) Location {
	return &exprLocation{slot}
}

// Stmt is a statement inside of a statement list. The statement is looked
// up by identity when the replacement is applied, so earlier splices into
// the same list don't invalidate it.
func Stmt(list *[]js.IStmt, stmt js.IStmt) Location {
	return &stmtLocation{list, stmt}
}

// Binding is a binding slot in a declaration, parameter or pattern
func Binding(slot *js.IBinding) Location {
	return &bindingLocation{slot}
}

// Name is a declaration name slot, like a function or class name
func Name(slot **js.Var) Location {
	return &nameLocation{slot}
}

// Property is the value of an object literal property. Shorthand properties
// are expanded when the value changes.
func Property(prop *js.Property) Location {
	return &propertyLocation{prop}
}

// ObjectItem is the binding of an object pattern item. Shorthand items are
// expanded when the binding changes.
func ObjectItem(item *js.BindingObjectItem) Location {
	return &objectItemLocation{item}
}

type exprLocation struct {
	slot *js.IExpr
}

func (l *exprLocation) Node() js.INode {
	return *l.slot
}

func (l *exprLocation) set(nodes []js.INode) error {
	exprs := make([]js.IExpr, 0, len(nodes))
	for _, node := range nodes {
		expr, ok := node.(js.IExpr)
		if !ok {
			return fmt.Errorf("replacement: %T is not an expression", node)
		}
		exprs = append(exprs, expr)
	}
	if len(exprs) == 0 {
		return fmt.Errorf("replacement: unable to remove an expression")
	}
	if len(exprs) == 1 {
		*l.slot = exprs[0]
		return nil
	}
	*l.slot = js.Group(js.Seq(exprs...))
	return nil
}

type stmtLocation struct {
	list *[]js.IStmt
	stmt js.IStmt
}

func (l *stmtLocation) Node() js.INode {
	return l.stmt
}

func (l *stmtLocation) set(nodes []js.INode) error {
	stmts := make([]js.IStmt, 0, len(nodes))
	for _, node := range nodes {
		switch n := node.(type) {
		case js.IStmt:
			stmts = append(stmts, n)
		case js.IExpr:
			stmts = append(stmts, js.Stmt(n))
		default:
			return fmt.Errorf("replacement: %T is not a statement", node)
		}
	}
	list := *l.list
	for i, stmt := range list {
		if stmt != l.stmt {
			continue
		}
		out := make([]js.IStmt, 0, len(list)-1+len(stmts))
		out = append(out, list[:i]...)
		out = append(out, stmts...)
		out = append(out, list[i+1:]...)
		*l.list = out
		return nil
	}
	return fmt.Errorf("replacement: statement %q is no longer in its list", js.Print(l.stmt))
}

type bindingLocation struct {
	slot *js.IBinding
}

func (l *bindingLocation) Node() js.INode {
	return *l.slot
}

func (l *bindingLocation) set(nodes []js.INode) error {
	binding, err := single[js.IBinding](nodes)
	if err != nil {
		return err
	}
	*l.slot = binding
	return nil
}

type nameLocation struct {
	slot **js.Var
}

func (l *nameLocation) Node() js.INode {
	return *l.slot
}

func (l *nameLocation) set(nodes []js.INode) error {
	v, err := single[*js.Var](nodes)
	if err != nil {
		return err
	}
	*l.slot = v
	return nil
}

type propertyLocation struct {
	prop *js.Property
}

func (l *propertyLocation) Node() js.INode {
	return l.prop.Value
}

func (l *propertyLocation) set(nodes []js.INode) error {
	expr, err := single[js.IExpr](nodes)
	if err != nil {
		return err
	}
	if l.prop.Name == nil {
		if v, ok := l.prop.Value.(*js.Var); ok {
			l.prop.Name = &js.PropertyName{
				Literal: js.LiteralExpr{TokenType: js.IdentifierToken, Data: v.Data},
			}
		}
	}
	l.prop.Value = expr
	return nil
}

type objectItemLocation struct {
	item *js.BindingObjectItem
}

func (l *objectItemLocation) Node() js.INode {
	return l.item.Value.Binding
}

func (l *objectItemLocation) set(nodes []js.INode) error {
	binding, err := single[js.IBinding](nodes)
	if err != nil {
		return err
	}
	if l.item.Key == nil {
		if v, ok := l.item.Value.Binding.(*js.Var); ok {
			l.item.Key = &js.PropertyName{
				Literal: js.LiteralExpr{TokenType: js.IdentifierToken, Data: v.Data},
			}
		}
	}
	l.item.Value.Binding = binding
	return nil
}

func single[T js.INode](nodes []js.INode) (T, error) {
	var zero T
	if len(nodes) != 1 {
		return zero, fmt.Errorf("replacement: expected exactly one node, got %d", len(nodes))
	}
	node, ok := nodes[0].(T)
	if !ok {
		return zero, fmt.Errorf("replacement: unexpected %T", nodes[0])
	}
	return node, nil
}
