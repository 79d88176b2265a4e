package pattern

import (
	"testing"

	"github.com/tangramlang/tangram/internal/ast"
)

func word(name string, min, max int) *ast.MatchEntry {
	return &ast.MatchEntry{Kind: ast.EntryWord, FieldName: name, Min: min, Max: max}
}

func raw(text string) *ast.MatchEntry {
	return &ast.MatchEntry{Kind: ast.EntryRaw, RawText: text}
}

func typed(name string, kind ast.EntryKind) *ast.MatchEntry {
	return &ast.MatchEntry{Kind: kind, FieldName: name}
}

func TestMatchPattern_WordAndRaw(t *testing.T) {
	def := &ast.PatternDef{Name: "greeting", Entries: []*ast.MatchEntry{
		raw("hello"),
		word("name", 1, -1),
	}}

	m, err := MatchPattern(NewRegistry(), def, "hello Ada Lovelace")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.Fields["name"].Str; got != "Ada Lovelace" {
		t.Errorf("name = %q, want %q", got, "Ada Lovelace")
	}
}

func TestMatchPattern_TypedSlots(t *testing.T) {
	def := &ast.PatternDef{Name: "reading", Entries: []*ast.MatchEntry{
		raw("temp"),
		typed("celsius", ast.EntryInt),
		raw("ok"),
		typed("stable", ast.EntryBool),
	}}

	m, err := MatchPattern(NewRegistry(), def, "temp 21 ok true")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Fields["celsius"].Int != 21 {
		t.Errorf("celsius = %d, want 21", m.Fields["celsius"].Int)
	}
	if !m.Fields["stable"].Bool {
		t.Errorf("stable = false, want true")
	}
}

func TestMatchPattern_BacktracksWordRangeForFixedSuffix(t *testing.T) {
	// Two adjacent unbounded word fields followed by a fixed raw token;
	// the first field must give back words until "done" is reachable.
	def := &ast.PatternDef{Name: "split", Entries: []*ast.MatchEntry{
		word("first", 1, -1),
		raw("done"),
	}}

	m, err := MatchPattern(NewRegistry(), def, "alpha beta gamma done")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.Fields["first"].Str; got != "alpha beta gamma" {
		t.Errorf("first = %q, want %q", got, "alpha beta gamma")
	}
}

func TestMatchPattern_FailsOnMismatchedRaw(t *testing.T) {
	def := &ast.PatternDef{Name: "greeting", Entries: []*ast.MatchEntry{raw("hello")}}
	if _, err := MatchPattern(NewRegistry(), def, "goodbye"); err == nil {
		t.Fatal("expected a match error")
	}
}

func TestMatchPattern_TrailingInputRejected(t *testing.T) {
	def := &ast.PatternDef{Name: "greeting", Entries: []*ast.MatchEntry{raw("hi")}}
	if _, err := MatchPattern(NewRegistry(), def, "hi there"); err == nil {
		t.Fatal("expected trailing input to be rejected")
	}
}

func TestMatchPattern_ExpressionEntryStopsAtComma(t *testing.T) {
	def := &ast.PatternDef{Name: "call", Entries: []*ast.MatchEntry{
		raw("value"),
		typed("v", ast.EntryExpression),
	}}
	m, err := MatchPattern(NewRegistry(), def, "value a.b(1, 2)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.Fields["v"].Str; got != "a.b(1, 2)" {
		t.Errorf("v = %q, want %q", got, "a.b(1, 2)")
	}
}

func TestMatchSum_PicksMostBytesConsumed(t *testing.T) {
	reg := NewRegistry()
	circle := &ast.PatternDef{Name: "Circle", Entries: []*ast.MatchEntry{
		raw("circle"), typed("r", ast.EntryInt),
	}}
	square := &ast.PatternDef{Name: "Square", Entries: []*ast.MatchEntry{
		raw("circle"), typed("r", ast.EntryInt), raw("filled"),
	}}
	reg.Patterns["Circle"] = circle
	reg.Patterns["Square"] = square
	sum := &ast.SumDef{Name: "Shape", Members: []string{"Circle", "Square"}}

	m, err := MatchSum(reg, sum, "circle 3 filled")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.DefName != "Square" {
		t.Errorf("DefName = %q, want Square (consumes more input)", m.DefName)
	}
}

func TestMatchPattern_CustomNestedEntry(t *testing.T) {
	reg := NewRegistry()
	point := &ast.PatternDef{Name: "Point", Entries: []*ast.MatchEntry{
		typed("x", ast.EntryInt), raw(","), typed("y", ast.EntryInt),
	}}
	reg.Patterns["Point"] = point

	outer := &ast.PatternDef{Name: "Line", Entries: []*ast.MatchEntry{
		raw("from"),
		{Kind: ast.EntryCustom, FieldName: "start", CustomName: "Point"},
	}}

	m, err := MatchPattern(reg, outer, "from 1 , 2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nested := m.Fields["start"].Match
	if nested == nil {
		t.Fatal("expected nested match")
	}
	if nested.Fields["x"].Int != 1 || nested.Fields["y"].Int != 2 {
		t.Errorf("nested fields = %+v", nested.Fields)
	}
}
