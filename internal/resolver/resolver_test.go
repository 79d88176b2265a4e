package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tangramlang/tangram/internal/ast"
	"github.com/tangramlang/tangram/internal/parser"
	"github.com/tangramlang/tangram/internal/types"
)

func resolveOK(t *testing.T, src string) (*ast.Program, *Resolver) {
	t.Helper()
	p := parser.New(src, "test.tgm", 0)
	prog := p.ParseProgram()
	require.Empty(t, p.Errors(), "parse errors: %v", p.Errors())
	r := New("test.tgm", src)
	r.Resolve(prog)
	return prog, r
}

func firstExprStmt(t *testing.T, block *ast.LiteralBlock) *ast.ExprStmt {
	t.Helper()
	for _, seg := range block.Segments {
		for _, stmt := range seg.Statements {
			if es, ok := stmt.(*ast.ExprStmt); ok {
				return es
			}
		}
	}
	t.Fatalf("no expression statement found")
	return nil
}

func TestResolve_ArithmeticInference(t *testing.T) {
	prog, r := resolveOK(t, `generator g(a:int, b:int) { ${a + b} }
`)
	require.Empty(t, r.Errors())
	gen := prog.Generators[0]
	es := firstExprStmt(t, gen.Body)
	require.Equal(t, types.Int, es.Expr.Result().ID)
}

func TestResolve_ComparisonAndLogical(t *testing.T) {
	prog, r := resolveOK(t, `generator g(a:int, b:int, c:bool) { ${a < b && c} }
`)
	require.Empty(t, r.Errors())
	gen := prog.Generators[0]
	es := firstExprStmt(t, gen.Body)
	require.Equal(t, types.Bool, es.Expr.Result().ID)
}

func TestResolve_ConstantFolding(t *testing.T) {
	prog, r := resolveOK(t, `generator g() { ${2 + 3} }
`)
	require.Empty(t, r.Errors())
	gen := prog.Generators[0]
	es := firstExprStmt(t, gen.Body)
	bin, ok := es.Expr.(*ast.BinaryExpr)
	require.True(t, ok)
	require.True(t, bin.IsConstFold)
	require.Equal(t, int64(5), bin.ConstValue)
}

func TestResolve_AssignmentRequiresRefTarget(t *testing.T) {
	_, r := resolveOK(t, `generator g() { ${1 = 2} }
`)
	require.NotEmpty(t, r.Errors())
}

func TestResolve_ParamDefaultMustBeConstant(t *testing.T) {
	_, r := resolveOK(t, `generator g(a:int, b:int = a) { Body }
`)
	require.NotEmpty(t, r.Errors())
}

func TestResolve_RequiredParamAfterDefaultIsError(t *testing.T) {
	_, r := resolveOK(t, `generator g(a:int = 1, b:int) { Body }
`)
	require.NotEmpty(t, r.Errors())
}

func TestResolve_StackSlotsAreSequentialPerGenerator(t *testing.T) {
	prog, r := resolveOK(t, `generator g() { ${x := 1} ${y := 2} }
`)
	require.Empty(t, r.Errors())
	gen := prog.Generators[0]
	var decls []*ast.DeclStmt
	for _, seg := range gen.Body.Segments {
		for _, stmt := range seg.Statements {
			if d, ok := stmt.(*ast.DeclStmt); ok {
				decls = append(decls, d)
			}
		}
	}
	require.Len(t, decls, 2)
	require.Equal(t, 0, decls[0].Slot)
	require.Equal(t, 1, decls[1].Slot)
	require.Equal(t, 2, gen.StackSize)
}

func TestResolve_BreakLevelExceedingNestingIsError(t *testing.T) {
	_, r := resolveOK(t, `generator g() { ${for(x in [1,2,3]) { ${break 1;} }} }
`)
	require.NotEmpty(t, r.Errors())
}

func TestResolve_BreakLevelWithinNestingIsOK(t *testing.T) {
	_, r := resolveOK(t, `generator g() { ${for(i in range(3)) { ${for(j in range(3)) { ${if(i==j) { break 1; }} }}}} }
`)
	require.Empty(t, r.Errors())
}

func TestResolve_CommaLoopLevelExceedingNestingIsError(t *testing.T) {
	_, r := resolveOK(t, `generator g() { ${for(x in [1,2,3]) { ${x}${,1} }} }
`)
	require.NotEmpty(t, r.Errors())
}

func TestResolve_ForOverArrayBindsElementType(t *testing.T) {
	prog, r := resolveOK(t, `generator g(xs:int[]) { ${for(x in xs) { ${x} }} }
`)
	require.Empty(t, r.Errors())
	gen := prog.Generators[0]
	var forStmt *ast.ForStmt
	for _, seg := range gen.Body.Segments {
		for _, stmt := range seg.Statements {
			if f, ok := stmt.(*ast.ForStmt); ok {
				forStmt = f
			}
		}
	}
	require.NotNil(t, forStmt)
	require.Equal(t, types.Int, forStmt.VarType.ID)
}

func TestResolve_PatternFieldAccess(t *testing.T) {
	prog, r := resolveOK(t, `pattern Decl: {type} {name};
d : Decl = "int foo";
Rest
`)
	require.Empty(t, r.Errors())
	require.Len(t, prog.TopDecls, 1)
	require.Equal(t, types.Pattern, prog.TopDecls[0].ResolvedType.ID)
}

func TestResolve_InstanceofNarrowsFieldAccess(t *testing.T) {
	_, r := resolveOK(t, `pattern A: a {x};
pattern B: b {y};
sum S: A | B;
generator g(v:S) { ${if(v instanceof B) { ${v.y} }} }
`)
	require.Empty(t, r.Errors())
}

func TestResolve_UnknownIdentifierIsError(t *testing.T) {
	_, r := resolveOK(t, `generator g() { ${missing} }
`)
	require.NotEmpty(t, r.Errors())
}

func TestResolve_DeadOutputSegmentZeroesWhitespace(t *testing.T) {
	prog, r := resolveOK(t, "generator g() {\n${x := 1}\nRest\n}\n")
	require.Empty(t, r.Errors())
	gen := prog.Generators[0]
	require.True(t, gen.Body.HasOutput)
	for _, seg := range gen.Body.Segments {
		onlyDecls := len(seg.Statements) > 0
		for _, stmt := range seg.Statements {
			if _, ok := stmt.(*ast.DeclStmt); !ok {
				onlyDecls = false
			}
		}
		if onlyDecls {
			require.Equal(t, 0, seg.Whitespace.Newlines, "a decl-only segment must have its whitespace zeroed")
		}
	}
}

func TestResolve_StringCaseMethodSignatureResolves(t *testing.T) {
	prog, r := resolveOK(t, `generator g(s:string) { ${s.snake_case()} }
`)
	require.Empty(t, r.Errors())
	gen := prog.Generators[0]
	es := firstExprStmt(t, gen.Body)
	require.Equal(t, types.String, es.Expr.Result().ID)
}
