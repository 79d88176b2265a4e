// Package resolver builds the symbol table for a parsed Program and
// runs bottom-up type inference over every expression and statement,
// per spec.md §4.4 "Symbol builder / resolver". It also runs constant
// folding (expr.go) and the post-inference dead-output analysis
// (deadoutput.go).
//
// Grounded on the teacher's internal/analyzer package (one Resolver
// struct walking a Program, accumulating diagnostics into a shared
// slice, one resolveX method per node family) and, for the scoping and
// symbol-table mechanics specifically, on
// original_source/src/parsed_state.h via internal/symbols.
package resolver

import (
	"fmt"

	"github.com/tangramlang/tangram/internal/ast"
	"github.com/tangramlang/tangram/internal/diagnostics"
	"github.com/tangramlang/tangram/internal/symbols"
	"github.com/tangramlang/tangram/internal/token"
	"github.com/tangramlang/tangram/internal/types"
)

// Resolver walks one Program, filling in every expression's
// ResultType/Category, every DeclStmt/Param's stack slot, and the
// scope index of every block that opens one.
type Resolver struct {
	files []string
	srcs  []string

	// strictTypes disables the implicit bool->int widening assignable
	// normally allows, when the program carries a
	// `directive "strict_types";` (SPEC_FULL.md supplement).
	strictTypes bool

	Table *symbols.Table

	patternDefs map[string]*ast.PatternDef
	sumDefs     map[string]*ast.SumDef
	generators  map[string]*ast.GeneratorDef
	// genResolved tracks which generators have finished resolution (and
	// so have a trustworthy Body.HasOutput), for exprStmtHasOutput's
	// forward-reference/recursion guard.
	genResolved map[*ast.GeneratorDef]bool

	errs []error

	// slotCounter is reset per generator invocation's static body (one
	// counter per GeneratorDef), since spec.md's stack_slot is "unique
	// within its enclosing callable", not within a lexical scope.
	slotCounter int
}

// New returns a Resolver ready to process prog, with file registered as
// file table index 0 (the index every token from the initial parse
// carries as its Pos.File).
func New(file, src string) *Resolver {
	r := &Resolver{
		Table:       symbols.NewTable(),
		patternDefs: map[string]*ast.PatternDef{},
		sumDefs:     map[string]*ast.SumDef{},
		generators:  map[string]*ast.GeneratorDef{},
		genResolved: map[*ast.GeneratorDef]bool{},
	}
	r.AddFile(file, src)
	return r
}

// AddFile registers an additional source file (an `include`d or -I
// supplied one) and returns the index its tokens' Pos.File must carry
// for errorf to attribute diagnostics to the right file and text.
func (r *Resolver) AddFile(file, src string) int {
	r.files = append(r.files, file)
	r.srcs = append(r.srcs, src)
	return len(r.files) - 1
}

// Errors returns every diagnostic accumulated while resolving.
func (r *Resolver) Errors() []error { return r.errs }

func (r *Resolver) errorf(tok token.Token, format string, args ...any) {
	length := len(tok.Literal)
	if length == 0 {
		length = 1
	}
	idx := tok.Pos.File
	if idx < 0 || idx >= len(r.files) {
		idx = 0
	}
	r.errs = append(r.errs, diagnostics.Diagnostic{
		File: r.files[idx], Source: r.srcs[idx],
		Line: tok.Pos.Line, Column: tok.Pos.Column, Offset: tok.Pos.Offset, Length: length,
		Message: fmt.Sprintf(format, args...),
	})
}

// Resolve runs the full pass: registers every top-level definition,
// then resolves declarations, generator bodies, and the top-level
// literal body, then runs dead-output analysis over every block.
func (r *Resolver) Resolve(prog *ast.Program) {
	for _, d := range prog.Directives {
		if d.Name == "strict_types" {
			r.strictTypes = true
		}
	}

	for _, p := range prog.Patterns {
		r.patternDefs[p.Name] = p
	}
	for _, s := range prog.Sums {
		r.sumDefs[s.Name] = s
	}
	for _, g := range prog.Generators {
		r.generators[g.Name] = g
	}

	root := 0
	for _, p := range prog.Patterns {
		r.Table.Declare(root, &symbols.Symbol{Name: p.Name, Kind: symbols.KindPattern, Type: types.Type{ID: types.Pattern, DefName: p.Name}})
	}
	for _, s := range prog.Sums {
		r.Table.Declare(root, &symbols.Symbol{Name: s.Name, Kind: symbols.KindSum, Type: types.Type{ID: types.Sum, DefName: s.Name}})
	}
	for i, g := range prog.Generators {
		if err := r.Table.Declare(root, &symbols.Symbol{Name: g.Name, Kind: symbols.KindGenerator, Type: types.Scalar(types.Generator), DefIndex: i}); err != nil {
			r.errorf(g.Token, "%s", err)
		}
	}

	for _, d := range prog.TopDecls {
		r.resolveDecl(d, root)
	}

	top := r.slotCounter
	for _, g := range prog.Generators {
		r.resolveGenerator(g)
	}
	r.slotCounter = top

	if prog.Body != nil {
		r.resolveBlock(prog.Body, root, 0)
		r.MarkDeadOutput(prog.Body)
	}
	prog.StackSize = r.slotCounter
}

func (r *Resolver) resolveGenerator(g *ast.GeneratorDef) {
	r.slotCounter = 0
	scope := r.Table.Push(0)
	g.Scope = scope

	seenDefault := false
	for _, param := range g.Params {
		if param.Default != nil {
			seenDefault = true
		} else if seenDefault {
			r.errorf(param.Token, "parameter %q without a default follows a parameter with one", param.Name)
		}
		pt := r.typeExprType(param.Declared)
		if param.Default != nil {
			dt, cat, _ := r.resolveExpr(param.Default, scope)
			if cat != ast.Constant {
				r.errorf(param.Default.Tok(), "default value for parameter %q must be a compile-time constant", param.Name)
			}
			if pt.ID == types.Undefined {
				pt = dt
			}
		}
		param.ResolvedType = pt
		slot := r.slotCounter
		r.slotCounter++
		if err := r.Table.Declare(scope, &symbols.Symbol{Name: param.Name, Kind: symbols.KindVar, Type: pt, StackSlot: slot}); err != nil {
			r.errorf(param.Token, "%s", err)
		}
	}

	r.resolveBlock(g.Body, scope, 0)
	g.StackSize = r.slotCounter
	r.MarkDeadOutput(g.Body)
	r.genResolved[g] = true
}

func (r *Resolver) typeExprType(te *ast.TypeExpr) types.Type {
	if te == nil {
		return types.Type{}
	}
	var base types.Type
	switch te.Name {
	case "int":
		base = types.Scalar(types.Int)
	case "bool":
		base = types.Scalar(types.Bool)
	case "string":
		base = types.Scalar(types.String)
	default:
		if _, ok := r.patternDefs[te.Name]; ok {
			base = types.Type{ID: types.Pattern, DefName: te.Name}
		} else if _, ok := r.sumDefs[te.Name]; ok {
			base = types.Type{ID: types.Sum, DefName: te.Name}
		} else {
			r.errorf(te.Token, "unknown type %q", te.Name)
			base = types.Type{ID: types.Undefined}
		}
	}
	base.ArrayLevel = te.ArrayLevel
	return base
}

func (r *Resolver) resolveDecl(d *ast.DeclStmt, scope int) {
	var declType types.Type
	if d.Declared != nil {
		declType = r.typeExprType(d.Declared)
	} else {
		d.Inferred = true
	}
	var initType types.Type
	if d.Init != nil {
		t, _, _ := r.resolveExpr(d.Init, scope)
		initType = t
	}
	if d.Declared == nil {
		declType = initType
	} else if d.Init != nil && !r.assignable(initType, declType) {
		r.errorf(d.Token, "cannot initialize %q of type %s with value of type %s", d.Name, declType, initType)
	}
	d.ResolvedType = declType
	d.Slot = r.slotCounter
	r.slotCounter++
	if err := r.Table.Declare(scope, &symbols.Symbol{Name: d.Name, Kind: symbols.KindVar, Type: declType, StackSlot: d.Slot}); err != nil {
		r.errorf(d.Token, "%s", err)
	}
}

// resolveBlock resolves every statement of block within scope, with
// loopDepth enclosing for-loops available to break/continue/comma.
func (r *Resolver) resolveBlock(block *ast.LiteralBlock, scope int, loopDepth int) {
	for _, seg := range block.Segments {
		for _, stmt := range seg.Statements {
			r.resolveStmt(stmt, scope, loopDepth)
		}
	}
}

func (r *Resolver) resolveStmt(stmt ast.Statement, scope int, loopDepth int) {
	switch s := stmt.(type) {
	case *ast.LiteralStmt:
		// no symbols, no types

	case *ast.ExprStmt:
		r.resolveExpr(s.Expr, scope)

	case *ast.CommaStmt:
		if s.LoopLevel >= loopDepth {
			r.errorf(s.Token, "comma statement references loop level %d but only %d loop(s) enclose it", s.LoopLevel, loopDepth)
		}
		s.ResolvedLoop = s.LoopLevel

	case *ast.DeclStmt:
		r.resolveDecl(s, scope)

	case *ast.BreakStmt:
		if s.Level >= loopDepth {
			r.errorf(s.Token, "break %d exceeds enclosing loop nesting (%d)", s.Level, loopDepth)
		}

	case *ast.ContinueStmt:
		if s.Level >= loopDepth {
			r.errorf(s.Token, "continue %d exceeds enclosing loop nesting (%d)", s.Level, loopDepth)
		}

	case *ast.ReturnStmt:
		if s.Value != nil {
			r.resolveExpr(s.Value, scope)
		}

	case *ast.IfStmt:
		condType, _, _ := r.resolveExpr(s.Cond, scope)
		if !condType.ConvertibleToInt() {
			r.errorf(s.Cond.Tok(), "if condition must be bool or int, got %s", condType)
		}
		thenScope := r.Table.Push(scope)
		s.ThenScope = thenScope
		r.narrowInstanceof(s.Cond, thenScope)
		r.resolveBlock(s.Then, thenScope, loopDepth)
		if s.Else != nil {
			elseScope := r.Table.Push(scope)
			s.ElseScope = elseScope
			r.resolveBlock(s.Else, elseScope, loopDepth)
		} else {
			s.ElseScope = -1
		}

	case *ast.ForStmt:
		containerType, _, _ := r.resolveExpr(s.Container, scope)
		var elemType types.Type
		switch {
		case containerType.IsArray():
			elemType = containerType.ElemType()
		case containerType.ID == types.IntRange:
			elemType = types.Scalar(types.Int)
		case containerType.ID == types.Custom:
			elemType = types.Scalar(types.Custom)
		default:
			r.errorf(s.Container.Tok(), "for loop requires an array, range, or iterable value, got %s", containerType)
			elemType = types.Type{ID: types.Undefined}
		}
		s.VarType = elemType
		bodyScope := r.Table.Push(scope)
		s.Scope = bodyScope
		slot := r.slotCounter
		r.slotCounter++
		s.VarSlot = slot
		if err := r.Table.Declare(bodyScope, &symbols.Symbol{Name: s.VarName, Kind: symbols.KindVar, Type: elemType, StackSlot: slot}); err != nil {
			r.errorf(s.Token, "%s", err)
		}
		r.resolveBlock(s.Body, bodyScope, loopDepth+1)
	}
}

// narrowInstanceof implements spec.md §4.4's "a true branch refines
// the symbol (in the then-scope only) to the pattern type": when cond
// is `ident instanceof Pattern`, ident is redeclared in thenScope with
// the narrowed type, shadowing the outer declaration.
func (r *Resolver) narrowInstanceof(cond ast.Expression, thenScope int) {
	inst, ok := cond.(*ast.InstanceofExpr)
	if !ok {
		return
	}
	ident, ok := inst.Left.(*ast.Identifier)
	if !ok {
		return
	}
	outer := r.Table.Lookup(thenScope, ident.Name)
	if outer == nil {
		return
	}
	narrowed := *outer
	if _, ok := r.patternDefs[inst.PatternName]; ok {
		narrowed.Type = types.Type{ID: types.Pattern, DefName: inst.PatternName}
	} else if _, ok := r.sumDefs[inst.PatternName]; ok {
		narrowed.Type = types.Type{ID: types.Sum, DefName: inst.PatternName}
	} else {
		return
	}
	r.Table.Declare(thenScope, &narrowed)
}

// assignable reports whether a value of type from may initialize or be
// passed where type to is expected. Implicit bool->int widening is
// suppressed under a `directive "strict_types";` (SPEC_FULL.md
// supplement); pattern/sum-from-string conversion is always allowed,
// since it is the mechanism matching a literal string against a
// pattern's shape relies on.
func (r *Resolver) assignable(from, to types.Type) bool {
	if from.Equal(to) {
		return true
	}
	if to.ArrayLevel == 0 && from.ArrayLevel == 0 {
		if to.ID == types.Int && from.ID == types.Bool && !r.strictTypes {
			return true
		}
	}
	// Pattern/sum targets accept a string source at their own nesting
	// depth or shallower: a bare string is matched once and then wrapped
	// to the target's array shape, an array of strings is matched
	// element-by-element (spec.md §4.5 "Array-shaped targets").
	if (to.ID == types.Pattern || to.ID == types.Sum) && from.ID == types.String && from.ArrayLevel <= to.ArrayLevel {
		return true
	}
	return false
}
