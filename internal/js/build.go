package js

import (
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2/js"
)

// Ident creates an unbound identifier
func Ident(name string) *js.Var {
	return &js.Var{Data: []byte(name)}
}

// String creates a double-quoted string literal
func String(value string) *js.LiteralExpr {
	return &js.LiteralExpr{
		TokenType: js.StringToken,
		Data:      []byte(strconv.Quote(value)),
	}
}

// Member accesses a property, falling back to an index expression when the
// name isn't a plain identifier.
func Member(x js.IExpr, name string) js.IExpr {
	if !IsIdentifier(name) || name == "default" {
		return &js.IndexExpr{X: x, Y: String(name)}
	}
	return &js.DotExpr{
		X: x,
		Y: js.LiteralExpr{TokenType: js.IdentifierToken, Data: []byte(name)},
	}
}

// Assign creates `left = right`
func Assign(left, right js.IExpr) *js.BinaryExpr {
	return &js.BinaryExpr{Op: js.EqToken, X: left, Y: right}
}

// Seq joins expressions with the comma operator
func Seq(exprs ...js.IExpr) js.IExpr {
	if len(exprs) == 1 {
		return exprs[0]
	}
	return &js.CommaExpr{List: exprs}
}

// Group wraps an expression in parentheses
func Group(x js.IExpr) *js.GroupExpr {
	return &js.GroupExpr{X: x}
}

// Stmt wraps an expression in a statement
func Stmt(x js.IExpr) *js.ExprStmt {
	return &js.ExprStmt{Value: x}
}

// Declare creates `var name = init`. A nil init declares without a value.
func Declare(name string, init js.IExpr) *js.VarDecl {
	return &js.VarDecl{
		TokenType: js.VarToken,
		List: []js.BindingElement{
			{Binding: Ident(name), Default: init},
		},
	}
}

// IsIdentifier reports whether name is usable as a bare identifier
func IsIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// Sanitize turns an arbitrary string into a valid identifier
func Sanitize(name string) string {
	var sb strings.Builder
	for i, r := range name {
		switch {
		case r == '_':
			sb.WriteRune(r)
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}
