package evaluator

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tangramlang/tangram/internal/host"
	"github.com/tangramlang/tangram/internal/parser"
	"github.com/tangramlang/tangram/internal/resolver"
)

func run(t *testing.T, src string, h host.FileReader, argv []string) string {
	t.Helper()
	p := parser.New(src, "test.tgm", 0)
	prog := p.ParseProgram()
	require.Empty(t, p.Errors(), "parse errors: %v", p.Errors())

	r := resolver.New("test.tgm", src)
	r.Resolve(prog)
	require.Empty(t, r.Errors(), "resolve errors: %v", r.Errors())

	var buf bytes.Buffer
	ev := New(prog, &buf, h, argv, "test.tgm", src)
	require.NoError(t, ev.Run(prog))
	return buf.String()
}

func TestEvaluator_HelloWorld(t *testing.T) {
	out := run(t, "Hello, world!\n", nil, nil)
	require.Equal(t, "Hello, world!", out)
}

func TestEvaluator_ForLoopWithComma(t *testing.T) {
	src := `generator names() {${for(n in ["a","b","c"]) {${n}${,} }}}
${names()}
`
	out := run(t, src, nil, nil)
	require.Equal(t, "a, b, c", out)
}

func TestEvaluator_PatternMatchViaDeclaration(t *testing.T) {
	src := `pattern Decl: {type} {name};
d : Decl = "int foo";
${d.type}
${d.name}
`
	out := run(t, src, nil, nil)
	require.Equal(t, "int\nfoo", out)
}

func TestEvaluator_SumTypeInstanceof(t *testing.T) {
	src := `pattern A: a {x:int};
pattern B: b {y};
sum S: A | B;
generator describe(v:S) {${if(v instanceof A) {A-${v.x}}}${if(v instanceof B) {B-${v.y}}}}
${describe("a 7")}
${describe("b hi")}
`
	out := run(t, src, nil, nil)
	require.Equal(t, "A-7\nB-hi", out)
}

func TestEvaluator_NestedForWithBreakLevel(t *testing.T) {
	src := `generator g() { ${for(i in range(3)) { ${for(j in range(3)) { ${if(i==j) { break 1; }}${i}${j} }}}} }
${g()}
`
	out := run(t, src, nil, nil)
	require.Equal(t, "10 20 21", out)
}

func TestEvaluator_StringCaseConversion(t *testing.T) {
	src := `generator g(s:string) {${s.snake_case()}}
${g("HelloWorld")}
`
	out := run(t, src, nil, nil)
	require.Equal(t, "hello_world", out)
}

func TestEvaluator_IfElseBranches(t *testing.T) {
	src := `generator g(n:int) {${if(n > 0) {positive} else {non-positive}}}
${g(1)}
${g(-1)}
`
	out := run(t, src, nil, nil)
	require.Equal(t, "positive\nnon-positive", out)
}

func TestEvaluator_GeneratorDefaultParameter(t *testing.T) {
	src := `generator greet(name:string = "world") {Hello-${name}!}
${greet()}
${greet("there")}
`
	out := run(t, src, nil, nil)
	require.Equal(t, "Hello-world!\nHello-there!", out)
}

func TestEvaluator_ArrayAppendAndSize(t *testing.T) {
	src := `xs : int[] = [1, 2];
ys := xs.append(3);
${ys.size}
`
	out := run(t, src, nil, nil)
	require.Equal(t, "3", out)
}

func TestEvaluator_ReadJSONDocument(t *testing.T) {
	h := host.Map{"data.json": `{"name": "tangram", "count": 2}`}
	src := `doc := read_json_document("data.json");
${doc.root["name"]}-${doc.root["count"]}
`
	out := run(t, src, h, nil)
	require.Equal(t, "tangram-2", out)
}

func TestEvaluator_KeywordArgumentBinding(t *testing.T) {
	src := `generator g(a:int, b:int = 10) {${a}-${b}}
${g(b=5, a=1)}
`
	out := run(t, src, nil, nil)
	require.Equal(t, "1-5", out)
}

func TestEvaluator_ArrayShapedPatternCoercion(t *testing.T) {
	src := `pattern Decl: {type} {name};
ds : Decl[] = ["int foo", "bool bar"];
${ds[0].type} ${ds[1].name}
`
	out := run(t, src, nil, nil)
	require.Equal(t, "int bar", out)
}

func TestEvaluator_PatternMismatchSurfacesDiagnostic(t *testing.T) {
	src := `pattern Decl: {type} {name};
d : Decl = "oops";
${d.type}
`
	p := parser.New(src, "test.tgm", 0)
	prog := p.ParseProgram()
	require.Empty(t, p.Errors())

	r := resolver.New("test.tgm", src)
	r.Resolve(prog)
	require.Empty(t, r.Errors())

	var buf bytes.Buffer
	ev := New(prog, &buf, nil, nil, "test.tgm", src)
	err := ev.Run(prog)
	require.Error(t, err)
	require.Contains(t, err.Error(), "didn't match")
	require.Contains(t, err.Error(), "pattern defined here")
}
