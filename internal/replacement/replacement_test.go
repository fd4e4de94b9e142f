package replacement_test

import (
	"testing"

	"github.com/livebud/esm/internal/js"
	"github.com/livebud/esm/internal/replacement"
	"github.com/matryer/is"
	"github.com/matthewmueller/diff"
)

func parse(t testing.TB, code string) *js.AST {
	t.Helper()
	ast, err := js.Parse("input.js", []byte(code))
	if err != nil {
		t.Fatal(err)
	}
	return ast
}

func equal(t testing.TB, ast *js.AST, expected string) {
	t.Helper()
	formatted, err := js.Format(expected)
	if err != nil {
		t.Fatal(err)
	}
	actual, err := js.Format(js.PrintStmts(ast.BlockStmt.List))
	if err != nil {
		t.Fatal(err)
	}
	diff.TestString(t, actual, formatted)
}

func TestStatements(t *testing.T) {
	is := is.New(t)
	ast := parse(t, "var a = 1; var b = 2; var c = 3;")
	list := &ast.BlockStmt.List
	a, b, c := (*list)[0], (*list)[1], (*list)[2]
	r := replacement.Remove(replacement.Stmt(list, a)).
		Swap(replacement.Stmt(list, b), js.Stmt(js.Ident("b"))).
		Add(replacement.Stmt(list, c), js.Assign(js.Ident("c"), js.Ident("b"))).
		Insert(replacement.Stmt(list, c), js.Declare("d", nil))
	is.Equal(r.Len(), 4)
	is.NoErr(r.Apply())
	equal(t, ast, "b; var d; var c = 3; c = b;")
}

func TestPrependAfterSplice(t *testing.T) {
	is := is.New(t)
	ast := parse(t, "a(); b();")
	list := &ast.BlockStmt.List
	b := (*list)[1]
	r := replacement.Prepend(list, js.Declare("tmp", nil)).
		Swap(replacement.Stmt(list, b), js.Ident("c"))
	is.NoErr(r.Apply())
	equal(t, ast, "var tmp; a(); c;")
}

func TestExpression(t *testing.T) {
	is := is.New(t)
	ast := parse(t, "f(a);")
	call := ast.BlockStmt.List[0].(*js.ExprStmt).Value.(*js.CallExpr)
	loc := replacement.Expr(&call.Args.List[0].Value)
	is.NoErr(replacement.Swap(loc, js.Member(js.Ident("x"), "a")).Apply())
	equal(t, ast, "f(x.a);")
	is.NoErr(replacement.Add(loc, js.Ident("b")).Apply())
	equal(t, ast, "f((x.a, b));")
	is.True(replacement.Remove(loc).Apply() != nil)
}

func TestShorthandProperty(t *testing.T) {
	is := is.New(t)
	ast := parse(t, "var o = {a};")
	decl := ast.BlockStmt.List[0].(*js.VarDecl)
	object := decl.List[0].Default.(*js.ObjectExpr)
	loc := replacement.Property(&object.List[0])
	is.NoErr(replacement.Swap(loc, js.Member(js.Ident("x"), "a")).Apply())
	equal(t, ast, "var o = {a: x.a};")
}

func TestName(t *testing.T) {
	is := is.New(t)
	ast := parse(t, "function a() { return 1 }")
	fn := ast.BlockStmt.List[0].(*js.FuncDecl)
	is.NoErr(replacement.Swap(replacement.Name(&fn.Name), js.Ident("m$$a")).Apply())
	equal(t, ast, "function m$$a() { return 1 }")
}

func TestAnd(t *testing.T) {
	is := is.New(t)
	var r *replacement.Replacement
	is.Equal(r.Len(), 0)
	is.NoErr(r.Apply())
	ast := parse(t, "a;")
	list := &ast.BlockStmt.List
	other := replacement.Add(replacement.Stmt(list, (*list)[0]), js.Ident("b"))
	r = r.And(other).And(nil)
	is.Equal(r.Len(), 1)
	is.NoErr(r.Apply())
	equal(t, ast, "a; b;")
}

func TestMissingStatement(t *testing.T) {
	is := is.New(t)
	ast := parse(t, "a;")
	list := &ast.BlockStmt.List
	stmt := (*list)[0]
	is.NoErr(replacement.Remove(replacement.Stmt(list, stmt)).Apply())
	is.True(replacement.Remove(replacement.Stmt(list, stmt)).Apply() != nil)
}
