package js

import (
	"errors"
	"fmt"
	"strings"

	"github.com/livebud/esm/internal/esbuild"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

type (
	INode             = js.INode
	IExpr             = js.IExpr
	IStmt             = js.IStmt
	IBinding          = js.IBinding
	AST               = js.AST
	Scope             = js.Scope
	Var               = js.Var
	DeclType          = js.DeclType
	TokenType         = js.TokenType
	BlockStmt         = js.BlockStmt
	ExprStmt          = js.ExprStmt
	IfStmt            = js.IfStmt
	DoWhileStmt       = js.DoWhileStmt
	WhileStmt         = js.WhileStmt
	ForStmt           = js.ForStmt
	ForInStmt         = js.ForInStmt
	ForOfStmt         = js.ForOfStmt
	SwitchStmt        = js.SwitchStmt
	CaseClause        = js.CaseClause
	ReturnStmt        = js.ReturnStmt
	WithStmt          = js.WithStmt
	LabelledStmt      = js.LabelledStmt
	ThrowStmt         = js.ThrowStmt
	TryStmt           = js.TryStmt
	ImportStmt        = js.ImportStmt
	ExportStmt        = js.ExportStmt
	Alias             = js.Alias
	VarDecl           = js.VarDecl
	FuncDecl          = js.FuncDecl
	ClassDecl         = js.ClassDecl
	ClassElement      = js.ClassElement
	MethodDecl        = js.MethodDecl
	ArrowFunc         = js.ArrowFunc
	Params            = js.Params
	BindingElement    = js.BindingElement
	BindingArray      = js.BindingArray
	BindingObject     = js.BindingObject
	BindingObjectItem = js.BindingObjectItem
	PropertyName      = js.PropertyName
	Property          = js.Property
	LiteralExpr       = js.LiteralExpr
	GroupExpr         = js.GroupExpr
	ArrayExpr         = js.ArrayExpr
	Element           = js.Element
	ObjectExpr        = js.ObjectExpr
	TemplateExpr      = js.TemplateExpr
	NewExpr           = js.NewExpr
	YieldExpr         = js.YieldExpr
	CondExpr          = js.CondExpr
	DotExpr           = js.DotExpr
	IndexExpr         = js.IndexExpr
	CallExpr          = js.CallExpr
	Args              = js.Args
	Arg               = js.Arg
	UnaryExpr         = js.UnaryExpr
	BinaryExpr        = js.BinaryExpr
	CommaExpr         = js.CommaExpr
)

const (
	NoDecl       = js.NoDecl
	VariableDecl = js.VariableDecl
	FunctionDecl = js.FunctionDecl
	ArgumentDecl = js.ArgumentDecl
	LexicalDecl  = js.LexicalDecl
	ExprDecl     = js.ExprDecl

	VarToken        = js.VarToken
	LetToken        = js.LetToken
	ConstToken      = js.ConstToken
	IdentifierToken = js.IdentifierToken
	StringToken     = js.StringToken
	EqToken         = js.EqToken
	PreIncrToken    = js.PreIncrToken
	PreDecrToken    = js.PreDecrToken
	PostIncrToken   = js.PostIncrToken
	PostDecrToken   = js.PostDecrToken
)

// Error is a syntax error in a source file
type Error struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("js: %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("js: %s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
}

// Parse a module. TypeScript sources have their types stripped first.
func Parse(path string, code []byte) (*js.AST, error) {
	if esbuild.IsTypeScript(path) {
		stripped, err := esbuild.StripTypes(path, code)
		if err != nil {
			var esErr *esbuild.Error
			if errors.As(err, &esErr) {
				line, column := esErr.Position()
				return nil, &Error{path, line, column, esErr.Error()}
			}
			return nil, err
		}
		code = stripped
	}
	ast, err := js.Parse(parse.NewInputBytes(code), js.Options{})
	if err != nil {
		var perr *parse.Error
		if errors.As(err, &perr) {
			return nil, &Error{path, perr.Line, perr.Column, perr.Message}
		}
		return nil, &Error{Path: path, Message: err.Error()}
	}
	return ast, nil
}

// ParseExpr parses a JavaScript expression
func ParseExpr(contents string) (js.IExpr, error) {
	ast, err := js.Parse(parse.NewInputString(contents), js.Options{})
	if err != nil {
		return nil, err
	}
	stmts := ast.BlockStmt.List
	if len(stmts) != 1 {
		return nil, fmt.Errorf("js: expected one statement, got %d", len(stmts))
	}
	es, ok := stmts[0].(*js.ExprStmt)
	if !ok {
		return nil, fmt.Errorf("js: expected expression statement, got %T", stmts[0])
	}
	return es.Value, nil
}

// Print a JavaScript AST
func Print(ast js.INode) string {
	return strings.TrimSpace(ast.JS())
}

// PrintStmts prints a list of statements as a program body, one per line
func PrintStmts(stmts []js.IStmt) string {
	lines := make([]string, 0, len(stmts))
	for _, stmt := range stmts {
		code := Print(stmt)
		if code == "" {
			continue
		}
		if !strings.HasSuffix(code, ";") && !(compound(stmt) && strings.HasSuffix(code, "}")) {
			code += ";"
		}
		lines = append(lines, code)
	}
	return strings.Join(lines, "\n")
}

// compound statements end with a block when they're printed
func compound(stmt js.IStmt) bool {
	switch stmt.(type) {
	case *js.FuncDecl, *js.ClassDecl, *js.BlockStmt, *js.IfStmt, *js.ForStmt,
		*js.ForInStmt, *js.ForOfStmt, *js.WhileStmt, *js.TryStmt,
		*js.SwitchStmt, *js.LabelledStmt, *js.WithStmt:
		return true
	default:
		return false
	}
}

// Format normalizes code by parsing and printing it again
func Format(code string) (string, error) {
	ast, err := js.Parse(parse.NewInputString(code), js.Options{})
	if err != nil {
		return "", err
	}
	return Print(ast), nil
}

// IsAssignment reports whether the operator assigns to its left operand
func IsAssignment(op js.TokenType) bool {
	switch op {
	case js.EqToken, js.AddEqToken, js.SubEqToken, js.MulEqToken, js.DivEqToken,
		js.ModEqToken, js.ExpEqToken, js.LtLtEqToken, js.GtGtEqToken,
		js.GtGtGtEqToken, js.BitAndEqToken, js.BitOrEqToken, js.BitXorEqToken,
		js.AndEqToken, js.OrEqToken, js.NullishEqToken:
		return true
	default:
		return false
	}
}

// IsUpdate reports whether the unary operator is an increment or decrement
func IsUpdate(op js.TokenType) bool {
	switch op {
	case js.PreIncrToken, js.PreDecrToken, js.PostIncrToken, js.PostDecrToken:
		return true
	default:
		return false
	}
}

// IsPostfix reports whether the unary operator is a postfix update
func IsPostfix(op js.TokenType) bool {
	return op == js.PostIncrToken || op == js.PostDecrToken
}

// Root follows a variable's links back to its declaring binding
func Root(v *js.Var) *js.Var {
	for v.Link != nil {
		v = v.Link
	}
	return v
}

// Unquote a string literal's data
func Unquote(data []byte) string {
	return strings.Trim(string(data), "\"'")
}
