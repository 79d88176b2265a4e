package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tangramlang/tangram/internal/ast"
)

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := New(src, "test.tgm", 0)
	prog := p.ParseProgram()
	require.Empty(t, p.Errors(), "parse errors: %v", p.Errors())
	return prog
}

func TestParseProgram_LiteralOnly(t *testing.T) {
	prog := parseOK(t, "Hello, world!\n")
	require.Len(t, prog.Body.Segments, 1)
	require.Len(t, prog.Body.Segments[0].Statements, 1)
	lit, ok := prog.Body.Segments[0].Statements[0].(*ast.LiteralStmt)
	require.True(t, ok)
	require.Equal(t, "Hello, world!", lit.Text)
}

func TestParseProgram_Placeholder(t *testing.T) {
	prog := parseOK(t, "Hello, ${name}!\n")
	stmts := prog.Body.Segments[0].Statements
	require.Len(t, stmts, 3)
	require.IsType(t, &ast.LiteralStmt{}, stmts[0])
	expr, ok := stmts[1].(*ast.ExprStmt)
	require.True(t, ok)
	ident, ok := expr.Expr.(*ast.Identifier)
	require.True(t, ok)
	require.Equal(t, "name", ident.Name)
	require.IsType(t, &ast.LiteralStmt{}, stmts[2])
}

func TestParseProgram_DirectiveAndInclude(t *testing.T) {
	prog := parseOK(t, `directive "strict";
include "common.tgm";
Body text
`)
	require.Len(t, prog.Directives, 1)
	require.Equal(t, "strict", prog.Directives[0].Name)
	require.Len(t, prog.Includes, 1)
	require.Equal(t, "common.tgm", prog.Includes[0].Path)
}

func TestParseProgram_TopLevelDeclaration(t *testing.T) {
	prog := parseOK(t, "count : int = 3;\nRest\n")
	require.Len(t, prog.TopDecls, 1)
	require.Equal(t, "count", prog.TopDecls[0].Name)
	require.NotNil(t, prog.TopDecls[0].Declared)
	require.Equal(t, "int", prog.TopDecls[0].Declared.Name)
}

func TestParseProgram_SumAndPattern(t *testing.T) {
	prog := parseOK(t, `sum Shape: Circle | Square;
pattern Circle: circle {r:int};
`)
	require.Len(t, prog.Sums, 1)
	require.Equal(t, "Shape", prog.Sums[0].Name)
	require.Equal(t, []string{"Circle", "Square"}, prog.Sums[0].Members)
	require.Len(t, prog.Patterns, 1)
	require.Equal(t, "Circle", prog.Patterns[0].Name)
}

func TestParseProgram_Generator(t *testing.T) {
	prog := parseOK(t, `generator list(xs:int[]) { ${for(x in xs) { ${x}${,} }} }
`)
	require.Len(t, prog.Generators, 1)
	gen := prog.Generators[0]
	require.Equal(t, "list", gen.Name)
	require.Len(t, gen.Params, 1)
	require.Equal(t, "xs", gen.Params[0].Name)
	require.Equal(t, 1, gen.Params[0].Declared.ArrayLevel)
}

func TestParseProgram_IfElse(t *testing.T) {
	prog := parseOK(t, `generator g(v:bool) { ${if(v) { yes } else { no }} }
`)
	gen := prog.Generators[0]
	ifStmt := gen.Body.Segments[0].Statements[0].(*ast.IfStmt)
	require.NotNil(t, ifStmt.Then)
	require.NotNil(t, ifStmt.Else)
}

func TestParseProgram_BreakContinueLevel(t *testing.T) {
	prog := parseOK(t, `generator g() { ${for(i in range(3)) { ${for(j in range(3)) { ${if(i==j) { break 1; }} }} }} }
`)
	require.Len(t, prog.Generators, 1)
}

func TestParseExpression_FormatSpec(t *testing.T) {
	prog := parseOK(t, "generator g(n:int) { ${n$5.2} }\n")
	gen := prog.Generators[0]
	exprStmt := gen.Body.Segments[0].Statements[0].(*ast.ExprStmt)
	require.NotNil(t, exprStmt.Format)
	require.True(t, exprStmt.Format.HasWidth)
	require.Equal(t, 5, exprStmt.Format.Width)
	require.True(t, exprStmt.Format.HasPrec)
	require.Equal(t, 2, exprStmt.Format.Precision)
}

func TestParseExpression_Precedence(t *testing.T) {
	prog := parseOK(t, "x := 1 + 2 * 3;\n")
	decl := prog.TopDecls[0]
	bin, ok := decl.Init.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, ast.OpAdd, bin.Op)
	rhs, ok := bin.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, ast.OpMul, rhs.Op)
}

func TestParseEscapedDollar(t *testing.T) {
	prog := parseOK(t, "price: $$5\n")
	// "price: " then escaped "$" then "5" on the same line collapse into
	// literal statements; no placeholder should be parsed.
	for _, stmt := range prog.Body.Segments[0].Statements {
		_, isExpr := stmt.(*ast.ExprStmt)
		require.False(t, isExpr)
	}
}
