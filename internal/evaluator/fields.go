package evaluator

import "github.com/tangramlang/tangram/internal/pattern"

// fieldValue converts one matched field's pattern.Value into the
// Evaluator's own runtime representation. A VCustom field's nested
// match is re-wrapped as whichever of KPattern/KSum its definition name
// resolves to in the registry: KSum when the name is a sum, KPattern
// otherwise (DefName alone cannot distinguish them, so the registry is
// consulted).
func (e *Evaluator) fieldValue(v pattern.Value) Value {
	switch v.Kind {
	case pattern.VBool:
		return Bool(v.Bool)
	case pattern.VInt:
		return Int(int64(v.Int))
	case pattern.VString, pattern.VExprSource:
		return Str(v.Str)
	case pattern.VCustom:
		_, isSum := e.reg.Sums[v.Match.DefName]
		return PatternValue(v.Match, v.Match.DefName, isSum)
	}
	return Undefined()
}

// toFieldValue converts a Value being assigned into a matched field
// back into the pattern package's field representation, chosen by the
// assigned Value's own runtime Kind (the field's declared entry kind is
// not consulted).
func toFieldValue(v Value) pattern.Value {
	switch v.Kind {
	case KBool:
		return pattern.Value{Kind: pattern.VBool, Bool: v.Bool}
	case KInt:
		return pattern.Value{Kind: pattern.VInt, Int: int(v.Int)}
	case KPattern, KSum:
		return pattern.Value{Kind: pattern.VCustom, Match: v.Match}
	default:
		return pattern.Value{Kind: pattern.VString, Str: v.Str}
	}
}

// fieldRef returns a Ref bound to one named field of a matched
// pattern/sum value.
func (e *Evaluator) fieldRef(m *pattern.Match, name string) *Ref {
	return &Ref{
		get: func() Value { return e.fieldValue(m.Fields[name]) },
		set: func(v Value) { m.Fields[name] = toFieldValue(v) },
	}
}
