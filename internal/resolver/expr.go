package resolver

import (
	"github.com/tangramlang/tangram/internal/ast"
	"github.com/tangramlang/tangram/internal/builtins"
	"github.com/tangramlang/tangram/internal/symbols"
	"github.com/tangramlang/tangram/internal/types"
)

// resolveExpr infers expr's result type/category, records both on the
// node, folds constant sub-expressions (spec.md §4.4 "Constant
// folding"), and returns (type, category, value) for the caller's own
// use (e.g. checking a default parameter is a constant).
func (r *Resolver) resolveExpr(expr ast.Expression, scope int) (types.Type, ast.ValueCategory, any) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return setMeta(e, types.Scalar(types.Int), ast.Constant, e.Value)

	case *ast.BoolLiteral:
		return setMeta(e, types.Scalar(types.Bool), ast.Constant, e.Value)

	case *ast.StringLiteral:
		return setMeta(e, types.Scalar(types.String), ast.Constant, e.Value)

	case *ast.Identifier:
		sym := r.Table.Lookup(scope, e.Name)
		if sym == nil {
			r.errorf(e.Token, "undefined identifier %q", e.Name)
			return setMeta(e, types.Type{ID: types.Undefined}, ast.Runtime, nil)
		}
		e.Symbol = sym
		cat := ast.RefCategory
		if sym.Kind != symbols.KindVar {
			cat = ast.Runtime
		}
		return setMeta(e, sym.Type, cat, nil)

	case *ast.ArrayLiteral:
		return r.resolveArrayLiteral(e, scope)

	case *ast.BinaryExpr:
		return r.resolveBinary(e, scope)

	case *ast.UnaryExpr:
		return r.resolveUnary(e, scope)

	case *ast.AssignExpr:
		return r.resolveAssign(e, scope)

	case *ast.IndexExpr:
		return r.resolveIndex(e, scope)

	case *ast.DotExpr:
		return r.resolveDot(e, scope)

	case *ast.CallExpr:
		return r.resolveCall(e, scope)

	case *ast.InstanceofExpr:
		return r.resolveInstanceof(e, scope)

	case *ast.RangeExpr:
		return r.resolveRange(e, scope)
	}
	return types.Type{}, ast.Runtime, nil
}

// resultSetter is satisfied by every Expression via its embedded
// exprMeta, letting setMeta write back through the interface instead
// of re-deriving the node-kind switch resolveExpr already did.
type resultSetter interface {
	SetResult(types.Type, ast.ValueCategory)
}

type constSetter interface {
	SetConstValue(any)
}

func setMeta(e ast.Expression, t types.Type, cat ast.ValueCategory, constVal any) (types.Type, ast.ValueCategory, any) {
	e.(resultSetter).SetResult(t, cat)
	if constVal != nil {
		e.(constSetter).SetConstValue(constVal)
	}
	return t, cat, constVal
}

func (r *Resolver) resolveArrayLiteral(e *ast.ArrayLiteral, scope int) (types.Type, ast.ValueCategory, any) {
	cat := ast.Constant
	var elemType types.Type
	for i, el := range e.Elements {
		t, c, _ := r.resolveExpr(el, scope)
		if i == 0 {
			elemType = t
		} else if !t.Equal(elemType) && !r.assignable(t, elemType) {
			r.errorf(el.Tok(), "array element type %s does not match preceding element type %s", t, elemType)
		}
		if c != ast.Constant {
			cat = ast.Runtime
		}
	}
	result := elemType.Array()
	return setMeta(e, result, cat, nil)
}

func (r *Resolver) resolveBinary(e *ast.BinaryExpr, scope int) (types.Type, ast.ValueCategory, any) {
	lt, lc, lv := r.resolveExpr(e.Left, scope)
	rt, rc, rv := r.resolveExpr(e.Right, scope)

	var result types.Type
	switch e.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod, ast.OpBitAnd, ast.OpBitOr:
		if !types.IsNumericCompatible(lt, rt) {
			r.errorf(e.Token, "operator requires int-compatible operands, got %s and %s", lt, rt)
		}
		result = types.Scalar(types.Int)
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		if !types.IsNumericCompatible(lt, rt) {
			r.errorf(e.Token, "comparison requires int-compatible operands, got %s and %s", lt, rt)
		}
		result = types.Scalar(types.Bool)
	case ast.OpEq, ast.OpNeq:
		result = types.Scalar(types.Bool)
	case ast.OpAnd, ast.OpOr:
		if !lt.ConvertibleToInt() || !rt.ConvertibleToInt() {
			r.errorf(e.Token, "logical operator requires bool/int operands, got %s and %s", lt, rt)
		}
		result = types.Scalar(types.Bool)
	}

	cat := ast.Runtime
	var constVal any
	if lc == ast.Constant && rc == ast.Constant {
		cat = ast.Constant
		constVal = foldBinary(e.Op, lv, rv)
	}
	return setMeta(e, result, cat, constVal)
}

func (r *Resolver) resolveUnary(e *ast.UnaryExpr, scope int) (types.Type, ast.ValueCategory, any) {
	t, c, v := r.resolveExpr(e.Right, scope)
	var result types.Type
	switch e.Op {
	case ast.OpNot:
		if !t.ConvertibleToInt() {
			r.errorf(e.Token, "! requires a bool/int operand, got %s", t)
		}
		result = types.Scalar(types.Bool)
	case ast.OpNeg:
		if !t.ConvertibleToInt() {
			r.errorf(e.Token, "unary - requires an int operand, got %s", t)
		}
		result = types.Scalar(types.Int)
	}
	cat := ast.Runtime
	var constVal any
	if c == ast.Constant {
		cat = ast.Constant
		constVal = foldUnary(e.Op, v)
	}
	return setMeta(e, result, cat, constVal)
}

func (r *Resolver) resolveAssign(e *ast.AssignExpr, scope int) (types.Type, ast.ValueCategory, any) {
	tt, tc, _ := r.resolveExpr(e.Target, scope)
	vt, _, _ := r.resolveExpr(e.Value, scope)
	if tc != ast.RefCategory {
		r.errorf(e.Token, "assignment target is not assignable")
	}
	if !r.assignable(vt, tt) {
		r.errorf(e.Token, "cannot assign value of type %s to target of type %s", vt, tt)
	}
	return setMeta(e, tt, ast.Runtime, nil)
}

func (r *Resolver) resolveIndex(e *ast.IndexExpr, scope int) (types.Type, ast.ValueCategory, any) {
	lt, lc, _ := r.resolveExpr(e.Left, scope)
	it, _, _ := r.resolveExpr(e.Index, scope)
	if lt.ID == types.Custom && !lt.IsArray() {
		// A document value takes a string key or an int index and
		// yields another document value.
		return setMeta(e, types.Scalar(types.Custom), ast.Runtime, nil)
	}
	if !lt.IsArray() {
		r.errorf(e.Token, "cannot subscript non-array type %s", lt)
		return setMeta(e, types.Type{ID: types.Undefined}, ast.Runtime, nil)
	}
	if !it.ConvertibleToInt() {
		r.errorf(e.Index.Tok(), "array index must be int, got %s", it)
	}
	result := lt.ElemType()
	cat := ast.Runtime
	if lc == ast.RefCategory {
		cat = ast.RefCategory
	}
	return setMeta(e, result, cat, nil)
}

// resolveDot resolves a dot hop that is NOT the callee of an enclosing
// CallExpr — i.e. a field or property access, never a method (spec.md
// §4.4: "a method tail causes the enclosing call expression to detach
// the method"; CallExpr resolution handles that case directly and
// never calls resolveExpr on its own DotExpr callee).
func (r *Resolver) resolveDot(e *ast.DotExpr, scope int) (types.Type, ast.ValueCategory, any) {
	lt, _, _ := r.resolveExpr(e.Left, scope)

	if lt.ID == types.Pattern {
		if def, ok := r.patternDefs[lt.DefName]; ok {
			if ft, ok := patternFieldType(def, e.Name); ok {
				e.Kind = "field"
				return setMeta(e, ft, ast.RefCategory, nil)
			}
		}
	}
	if t, ok := builtins.Property(lt, e.Name); ok {
		e.Kind = "property"
		return setMeta(e, t, ast.Runtime, nil)
	}
	r.errorf(e.Token, "%s has no field or property %q", lt, e.Name)
	return setMeta(e, types.Type{ID: types.Undefined}, ast.Runtime, nil)
}

func patternFieldType(def *ast.PatternDef, name string) (types.Type, bool) {
	for _, entry := range def.Entries {
		if entry.FieldName != name {
			continue
		}
		switch entry.Kind {
		case ast.EntryBool:
			return types.Scalar(types.Bool), true
		case ast.EntryInt:
			return types.Scalar(types.Int), true
		case ast.EntryWord, ast.EntryString, ast.EntryExpression:
			return types.Scalar(types.String), true
		case ast.EntryCustom:
			return types.Type{ID: types.Pattern, DefName: entry.CustomName}, true
		}
	}
	return types.Type{}, false
}

func (r *Resolver) resolveCall(e *ast.CallExpr, scope int) (types.Type, ast.ValueCategory, any) {
	if dot, ok := e.Callee.(*ast.DotExpr); ok {
		recvType, _, _ := r.resolveExpr(dot.Left, scope)
		e.Receiver = dot.Left
		sig, ok := builtins.Method(recvType, dot.Name)
		if !ok {
			r.errorf(dot.Token, "%s has no method %q", recvType, dot.Name)
			return setMeta(e, types.Type{ID: types.Undefined}, ast.Runtime, nil)
		}
		r.checkArgs(e, sig, scope)
		return setMeta(e, sig.Result, ast.Runtime, nil)
	}

	if ident, ok := e.Callee.(*ast.Identifier); ok {
		if gen, ok := r.generators[ident.Name]; ok {
			sym := r.Table.Lookup(scope, ident.Name)
			if sym != nil {
				ident.Symbol = sym
			}
			r.checkGeneratorArgs(e, gen, scope)
			return setMeta(e, types.Scalar(types.Void), ast.Runtime, nil)
		}
		if sig, ok := builtins.FreeFunctions[ident.Name]; ok {
			r.checkArgs(e, sig, scope)
			return setMeta(e, sig.Result, ast.Runtime, nil)
		}
		// Indirect call through a generator-valued variable: resolved
		// at runtime, checked structurally there instead of here.
		if sym := r.Table.Lookup(scope, ident.Name); sym != nil {
			ident.Symbol = sym
			for _, a := range e.Args {
				r.resolveExpr(a, scope)
			}
			return setMeta(e, types.Scalar(types.Void), ast.Runtime, nil)
		}
		r.errorf(ident.Token, "call to undefined function %q", ident.Name)
		return setMeta(e, types.Type{ID: types.Undefined}, ast.Runtime, nil)
	}

	for _, a := range e.Args {
		r.resolveExpr(a, scope)
	}
	r.errorf(e.Token, "expression is not callable")
	return setMeta(e, types.Type{ID: types.Undefined}, ast.Runtime, nil)
}

func (r *Resolver) checkArgs(e *ast.CallExpr, sig builtins.Signature, scope int) {
	for i, a := range e.Args {
		at, _, _ := r.resolveExpr(a, scope)
		if i < len(sig.Params) && !r.assignable(at, sig.Params[i]) && !at.Equal(sig.Params[i]) {
			r.errorf(a.Tok(), "argument %d: expected %s, got %s", i+1, sig.Params[i], at)
		}
	}
	if len(e.Args) < sig.Minimum {
		r.errorf(e.Token, "expected at least %d argument(s), got %d", sig.Minimum, len(e.Args))
	}
}

func (r *Resolver) checkGeneratorArgs(e *ast.CallExpr, gen *ast.GeneratorDef, scope int) {
	keywordMode := false
	positional := 0
	for i, a := range e.Args {
		r.resolveExpr(a, scope)
		name := ""
		if i < len(e.ArgNames) {
			name = e.ArgNames[i]
		}
		if name != "" {
			keywordMode = true
			found := false
			for _, p := range gen.Params {
				if p.Name == name {
					found = true
					break
				}
			}
			if !found {
				r.errorf(a.Tok(), "generator %q has no parameter %q", gen.Name, name)
			}
			continue
		}
		if keywordMode {
			r.errorf(a.Tok(), "positional argument follows a named argument")
			continue
		}
		positional++
	}
	if positional > len(gen.Params) {
		r.errorf(e.Token, "generator %q takes %d parameter(s), got %d", gen.Name, len(gen.Params), positional)
	}
}

func (r *Resolver) resolveInstanceof(e *ast.InstanceofExpr, scope int) (types.Type, ast.ValueCategory, any) {
	r.resolveExpr(e.Left, scope)
	if _, ok := r.patternDefs[e.PatternName]; !ok {
		if _, ok := r.sumDefs[e.PatternName]; !ok {
			r.errorf(e.Token, "unknown pattern/sum %q", e.PatternName)
		}
	}
	return setMeta(e, types.Scalar(types.Bool), ast.Runtime, nil)
}

func (r *Resolver) resolveRange(e *ast.RangeExpr, scope int) (types.Type, ast.ValueCategory, any) {
	if e.Begin != nil {
		bt, _, _ := r.resolveExpr(e.Begin, scope)
		if !bt.ConvertibleToInt() {
			r.errorf(e.Begin.Tok(), "range begin must be int, got %s", bt)
		}
	}
	et, _, _ := r.resolveExpr(e.End, scope)
	if !et.ConvertibleToInt() {
		r.errorf(e.End.Tok(), "range end must be int, got %s", et)
	}
	return setMeta(e, types.Scalar(types.IntRange), ast.Runtime, nil)
}

// foldBinary computes a constant BinaryExpr's value directly so the
// evaluator can read it off the node without re-walking the subtree
// (spec.md §4.4 "Constant folding").
func foldBinary(op ast.BinOp, l, r any) any {
	li, lIsInt := asInt(l)
	ri, rIsInt := asInt(r)
	switch op {
	case ast.OpAdd:
		if lIsInt && rIsInt {
			return li + ri
		}
		return nil
	case ast.OpSub:
		if lIsInt && rIsInt {
			return li - ri
		}
	case ast.OpMul:
		if lIsInt && rIsInt {
			return li * ri
		}
	case ast.OpDiv:
		if lIsInt && rIsInt && ri != 0 {
			return li / ri
		}
	case ast.OpMod:
		if lIsInt && rIsInt && ri != 0 {
			return li % ri
		}
	case ast.OpBitAnd:
		if lIsInt && rIsInt {
			return li & ri
		}
	case ast.OpBitOr:
		if lIsInt && rIsInt {
			return li | ri
		}
	case ast.OpLt:
		if lIsInt && rIsInt {
			return li < ri
		}
	case ast.OpLe:
		if lIsInt && rIsInt {
			return li <= ri
		}
	case ast.OpGt:
		if lIsInt && rIsInt {
			return li > ri
		}
	case ast.OpGe:
		if lIsInt && rIsInt {
			return li >= ri
		}
	case ast.OpEq:
		return l == r
	case ast.OpNeq:
		return l != r
	case ast.OpAnd:
		lb, lok := asBool(l)
		rb, rok := asBool(r)
		if lok && rok {
			return lb && rb
		}
	case ast.OpOr:
		lb, lok := asBool(l)
		rb, rok := asBool(r)
		if lok && rok {
			return lb || rb
		}
	}
	return nil
}

func foldUnary(op ast.UnaryOp, v any) any {
	switch op {
	case ast.OpNeg:
		if i, ok := asInt(v); ok {
			return -i
		}
	case ast.OpNot:
		if b, ok := asBool(v); ok {
			return !b
		}
	}
	return nil
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func asBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case int64:
		return b != 0, true
	}
	return false, false
}
