package evaluator

import (
	"github.com/tangramlang/tangram/internal/diagnostics"
	"github.com/tangramlang/tangram/internal/pattern"
	"github.com/tangramlang/tangram/internal/token"
	"github.com/tangramlang/tangram/internal/types"
)

// coerce converts v to target's shape at an assignment/declaration/
// argument-binding boundary: bool widens to int, and a string (or
// array of strings, to any nesting depth) assigned to a pattern/sum
// target is run through the match engine (spec.md §4.5 "Array-shaped
// targets": "a string source is matched once; an array source is
// matched element-by-element"). tok locates the coercion site for any
// pattern-mismatch diagnostic.
func (e *Evaluator) coerce(tok token.Token, v Value, target types.Type) (Value, error) {
	if target.IsArray() {
		return e.coerceArray(tok, v, target)
	}
	switch target.ID {
	case types.Int:
		if v.Kind == KBool {
			return Int(v.AsInt()), nil
		}
	case types.Pattern:
		if v.Kind == KString {
			return e.matchPatternValue(tok, target.DefName, v.Str)
		}
	case types.Sum:
		if v.Kind == KString {
			return e.matchSumValue(tok, target.DefName, v.Str)
		}
	}
	return v, nil
}

// coerceArray handles a pattern/sum array target: a bare string is
// matched once and wrapped up to the target's nesting depth; an array
// source descends one level and coerces each element against
// target.ElemType().
func (e *Evaluator) coerceArray(tok token.Token, v Value, target types.Type) (Value, error) {
	if v.Kind == KString {
		elem, err := e.coerce(tok, v, types.Type{ID: target.ID, DefName: target.DefName})
		if err != nil {
			return Value{}, err
		}
		for i := 0; i < target.ArrayLevel; i++ {
			elem = Array([]Value{elem})
		}
		return elem, nil
	}
	if v.Kind != KArray {
		return v, nil
	}
	elemType := target.ElemType()
	out := make([]Value, len(*v.Array))
	for i, el := range *v.Array {
		coerced, err := e.coerce(tok, el, elemType)
		if err != nil {
			return Value{}, err
		}
		out[i] = coerced
	}
	return Array(out), nil
}

func (e *Evaluator) matchPatternValue(tok token.Token, defName, s string) (Value, error) {
	def, ok := e.reg.Patterns[defName]
	if !ok {
		return Value{Kind: KPattern, Str: defName}, nil
	}
	m, err := pattern.MatchPattern(e.reg, def, s)
	if err != nil {
		return Value{}, e.matchErrorDiag(tok, def.Tok(), err)
	}
	return PatternValue(m, defName, false), nil
}

func (e *Evaluator) matchSumValue(tok token.Token, defName, s string) (Value, error) {
	def, ok := e.reg.Sums[defName]
	if !ok {
		return Value{Kind: KSum, Str: defName}, nil
	}
	m, err := pattern.MatchSum(e.reg, def, s)
	if err != nil {
		return Value{}, e.matchErrorDiag(tok, def.Tok(), err)
	}
	return PatternValue(m, m.DefName, true), nil
}

// matchErrorDiag wraps a pattern.MatchError as a located diagnostic:
// the primary location is the coercion site, chained to a secondary
// context line pointing at the pattern/sum definition it failed to
// match against (spec.md §7: pattern-mismatch errors carry the
// pattern-origin secondary context line).
func (e *Evaluator) matchErrorDiag(tok, defTok token.Token, cause error) error {
	return diagnostics.Diagnostic{
		File: e.fileAt(tok.Pos.File), Source: e.srcAt(tok.Pos.File),
		Line: tok.Pos.Line, Column: tok.Pos.Column, Offset: tok.Pos.Offset, Length: locLen(tok),
		Message: cause.Error(),
		Context: &diagnostics.Diagnostic{
			File: e.fileAt(defTok.Pos.File), Source: e.srcAt(defTok.Pos.File),
			Line: defTok.Pos.Line, Column: defTok.Pos.Column, Offset: defTok.Pos.Offset, Length: locLen(defTok),
			Message: "pattern defined here",
		},
	}
}

func locLen(tok token.Token) int {
	if len(tok.Literal) == 0 {
		return 1
	}
	return len(tok.Literal)
}
