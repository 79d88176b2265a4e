package evaluator

import (
	"fmt"

	"github.com/tangramlang/tangram/internal/ast"
	"github.com/tangramlang/tangram/internal/pattern"
	"github.com/tangramlang/tangram/internal/symbols"
)

// eval computes expr's runtime value, mirroring resolveExpr's node-kind
// switch one to one (spec.md §4.6 "Expression evaluation").
func (e *Evaluator) eval(expr ast.Expression) (Value, error) {
	switch x := expr.(type) {
	case *ast.IntLiteral:
		return Int(x.Value), nil

	case *ast.BoolLiteral:
		return Bool(x.Value), nil

	case *ast.StringLiteral:
		return Str(x.Value), nil

	case *ast.ArrayLiteral:
		elems := make([]Value, len(x.Elements))
		for i, el := range x.Elements {
			v, err := e.eval(el)
			if err != nil {
				return Undefined(), err
			}
			elems[i] = v
		}
		return Array(elems), nil

	case *ast.Identifier:
		return e.evalIdentifier(x)

	case *ast.BinaryExpr:
		return e.evalBinary(x)

	case *ast.UnaryExpr:
		return e.evalUnary(x)

	case *ast.AssignExpr:
		return e.evalAssign(x)

	case *ast.IndexExpr:
		return e.evalIndex(x)

	case *ast.DotExpr:
		return e.evalDot(x)

	case *ast.CallExpr:
		return e.evalCall(x)

	case *ast.InstanceofExpr:
		return e.evalInstanceof(x)

	case *ast.RangeExpr:
		return e.evalRange(x)
	}
	return Undefined(), fmt.Errorf("evaluator: unhandled expression %T", expr)
}

// constToValue converts a resolver-folded constant (spec.md §4.4
// "Constant folding") back into a runtime Value without re-evaluating
// its subtree.
func constToValue(v any) Value {
	switch t := v.(type) {
	case int64:
		return Int(t)
	case bool:
		return Bool(t)
	case string:
		return Str(t)
	}
	return Undefined()
}

func (e *Evaluator) evalIdentifier(x *ast.Identifier) (Value, error) {
	sym, _ := x.Symbol.(*symbols.Symbol)
	if sym == nil {
		return Undefined(), fmt.Errorf("evaluator: identifier %q has no resolved symbol", x.Name)
	}
	switch sym.Kind {
	case symbols.KindVar:
		return e.curFrame().get(sym.StackSlot), nil
	case symbols.KindGenerator:
		if gen, ok := e.generators[x.Name]; ok {
			return Value{Kind: KGenerator, Gen: gen}, nil
		}
	case symbols.KindPattern:
		return Value{Kind: KPattern, Str: x.Name}, nil
	case symbols.KindSum:
		return Value{Kind: KSum, Str: x.Name}, nil
	}
	return Undefined(), fmt.Errorf("evaluator: identifier %q has no runtime value", x.Name)
}

func (e *Evaluator) evalBinary(x *ast.BinaryExpr) (Value, error) {
	if x.IsConstFold {
		return constToValue(x.ConstValue), nil
	}

	// Short-circuit: && and || must not evaluate their right operand
	// unless it's needed (spec.md §4.3).
	if x.Op == ast.OpAnd {
		l, err := e.eval(x.Left)
		if err != nil {
			return Undefined(), err
		}
		if !l.Truthy() {
			return Bool(false), nil
		}
		r, err := e.eval(x.Right)
		if err != nil {
			return Undefined(), err
		}
		return Bool(r.Truthy()), nil
	}
	if x.Op == ast.OpOr {
		l, err := e.eval(x.Left)
		if err != nil {
			return Undefined(), err
		}
		if l.Truthy() {
			return Bool(true), nil
		}
		r, err := e.eval(x.Right)
		if err != nil {
			return Undefined(), err
		}
		return Bool(r.Truthy()), nil
	}

	l, err := e.eval(x.Left)
	if err != nil {
		return Undefined(), err
	}
	r, err := e.eval(x.Right)
	if err != nil {
		return Undefined(), err
	}

	switch x.Op {
	case ast.OpAdd:
		return Int(l.AsInt() + r.AsInt()), nil
	case ast.OpSub:
		return Int(l.AsInt() - r.AsInt()), nil
	case ast.OpMul:
		return Int(l.AsInt() * r.AsInt()), nil
	case ast.OpDiv:
		if r.AsInt() == 0 {
			return Undefined(), fmt.Errorf("evaluator: division by zero")
		}
		return Int(l.AsInt() / r.AsInt()), nil
	case ast.OpMod:
		if r.AsInt() == 0 {
			return Undefined(), fmt.Errorf("evaluator: modulo by zero")
		}
		return Int(l.AsInt() % r.AsInt()), nil
	case ast.OpBitAnd:
		return Int(l.AsInt() & r.AsInt()), nil
	case ast.OpBitOr:
		return Int(l.AsInt() | r.AsInt()), nil
	case ast.OpLt:
		return Bool(l.AsInt() < r.AsInt()), nil
	case ast.OpLe:
		return Bool(l.AsInt() <= r.AsInt()), nil
	case ast.OpGt:
		return Bool(l.AsInt() > r.AsInt()), nil
	case ast.OpGe:
		return Bool(l.AsInt() >= r.AsInt()), nil
	case ast.OpEq:
		return Bool(Equal(l, r)), nil
	case ast.OpNeq:
		return Bool(!Equal(l, r)), nil
	}
	return Undefined(), fmt.Errorf("evaluator: unhandled binary operator %v", x.Op)
}

func (e *Evaluator) evalUnary(x *ast.UnaryExpr) (Value, error) {
	if x.IsConstFold {
		return constToValue(x.ConstValue), nil
	}
	v, err := e.eval(x.Right)
	if err != nil {
		return Undefined(), err
	}
	switch x.Op {
	case ast.OpNot:
		return Bool(!v.Truthy()), nil
	case ast.OpNeg:
		return Int(-v.AsInt()), nil
	}
	return Undefined(), fmt.Errorf("evaluator: unhandled unary operator %v", x.Op)
}

func (e *Evaluator) evalAssign(x *ast.AssignExpr) (Value, error) {
	ref, err := e.evalRef(x.Target)
	if err != nil {
		return Undefined(), err
	}
	v, err := e.eval(x.Value)
	if err != nil {
		return Undefined(), err
	}
	coerced, err := e.coerce(x.Token, v, x.Result())
	if err != nil {
		return Undefined(), err
	}
	ref.Set(coerced)
	return coerced, nil
}

// evalRef resolves an assignable expression (spec.md §4.4's
// RefCategory) to a Ref, so assignment can write back into the slot,
// array element, or pattern field it denotes.
func (e *Evaluator) evalRef(expr ast.Expression) (*Ref, error) {
	switch x := expr.(type) {
	case *ast.Identifier:
		sym, _ := x.Symbol.(*symbols.Symbol)
		if sym == nil {
			return nil, fmt.Errorf("evaluator: identifier %q has no resolved symbol", x.Name)
		}
		return slotRef(e.curFrame(), sym.StackSlot), nil

	case *ast.IndexExpr:
		left, err := e.eval(x.Left)
		if err != nil {
			return nil, err
		}
		if left.Kind != KArray {
			return nil, fmt.Errorf("evaluator: cannot index a %s value", left.Kind)
		}
		idx, err := e.eval(x.Index)
		if err != nil {
			return nil, err
		}
		i := int(idx.AsInt())
		if i < 0 || i >= len(*left.Array) {
			return nil, fmt.Errorf("evaluator: array index %d out of range (len %d)", i, len(*left.Array))
		}
		return indexRef(left.Array, i), nil

	case *ast.DotExpr:
		if x.Kind != "field" {
			return nil, fmt.Errorf("evaluator: %q is not an assignable field", x.Name)
		}
		left, err := e.eval(x.Left)
		if err != nil {
			return nil, err
		}
		if left.Match == nil {
			return nil, fmt.Errorf("evaluator: no match data to assign field %q on", x.Name)
		}
		return e.fieldRef(left.Match, x.Name), nil
	}
	return nil, fmt.Errorf("evaluator: %T is not assignable", expr)
}

func (e *Evaluator) evalIndex(x *ast.IndexExpr) (Value, error) {
	left, err := e.eval(x.Left)
	if err != nil {
		return Undefined(), err
	}
	idx, err := e.eval(x.Index)
	if err != nil {
		return Undefined(), err
	}
	switch left.Kind {
	case KArray:
		i := int(idx.AsInt())
		if i < 0 || i >= len(*left.Array) {
			return Undefined(), fmt.Errorf("evaluator: array index %d out of range (len %d)", i, len(*left.Array))
		}
		return (*left.Array)[i], nil
	case KDocument:
		if idx.Kind == KString {
			return Value{Kind: KDocument, Doc: left.Doc.Field(idx.Str)}, nil
		}
		return Value{Kind: KDocument, Doc: left.Doc.At(idx.AsInt())}, nil
	}
	return Undefined(), fmt.Errorf("evaluator: cannot index a %s value", left.Kind)
}

func (e *Evaluator) evalDot(x *ast.DotExpr) (Value, error) {
	left, err := e.eval(x.Left)
	if err != nil {
		return Undefined(), err
	}
	switch x.Kind {
	case "field":
		if left.Match == nil && left.Kind == KString {
			// The narrowed-by-instanceof case (spec.md §4.4): the
			// variable's static type was refined to a pattern in this
			// branch, but its stored value is still the bare matched
			// string, so run it through the match engine here instead
			// of at every place the narrowing could have happened.
			if def, ok := e.reg.Patterns[x.Left.Result().DefName]; ok {
				if m, err := pattern.MatchPattern(e.reg, def, left.Str); err == nil {
					left = PatternValue(m, def.Name, false)
				}
			}
		}
		if left.Match == nil {
			return Undefined(), fmt.Errorf("evaluator: %s has no match data for field %q", left.Kind, x.Name)
		}
		return e.fieldValue(left.Match.Fields[x.Name]), nil
	case "property":
		return e.property(left, x.Name)
	}
	return Undefined(), fmt.Errorf("evaluator: dot expression %q not resolved to a field or property", x.Name)
}

func (e *Evaluator) evalInstanceof(x *ast.InstanceofExpr) (Value, error) {
	left, err := e.eval(x.Left)
	if err != nil {
		return Undefined(), err
	}

	// A value already matched against a pattern/sum (e.g. a sum-typed
	// generator parameter, coerced at call time) carries its concrete
	// member name directly; comparing it again against the match engine
	// would wrongly re-match the def name itself instead of the text
	// that produced it.
	if left.Kind == KSum || left.Kind == KPattern {
		if left.Match != nil {
			return Bool(left.Match.DefName == x.PatternName), nil
		}
		return Bool(left.Str == x.PatternName), nil
	}

	if left.Kind != KString {
		return Bool(false), nil
	}
	if def, ok := e.reg.Patterns[x.PatternName]; ok {
		_, matchErr := pattern.MatchPattern(e.reg, def, left.Str)
		return Bool(matchErr == nil), nil
	}
	if def, ok := e.reg.Sums[x.PatternName]; ok {
		_, matchErr := pattern.MatchSum(e.reg, def, left.Str)
		return Bool(matchErr == nil), nil
	}
	return Bool(false), nil
}

func (e *Evaluator) evalRange(x *ast.RangeExpr) (Value, error) {
	begin := int64(0)
	if x.Begin != nil {
		b, err := e.eval(x.Begin)
		if err != nil {
			return Undefined(), err
		}
		begin = b.AsInt()
	}
	end, err := e.eval(x.End)
	if err != nil {
		return Undefined(), err
	}
	return Value{Kind: KRange, Range: IntRange{Begin: begin, End: end.AsInt()}}, nil
}
