// Package pattern implements Tangram's string pattern matching engine:
// matching a pattern definition's entry sequence against a runtime
// string value, and selecting the best-fitting member of a sum type.
//
// Grounded on original_source/src/parse_pattern.h's string_match_pattern
// / string_match_sum and the entry model in
// original_source/src/match_type_definition.h. Word-range backtracking,
// expression-entry balanced-delimiter scanning and sum member selection
// by bytes-consumed all follow that implementation; see DESIGN.md for
// where this Go port diverges.
package pattern

import (
	"fmt"
	"strings"

	"github.com/tangramlang/tangram/internal/ast"
	"github.com/tangramlang/tangram/internal/lexer"
	"github.com/tangramlang/tangram/internal/token"
)

// ValueKind identifies what a matched field's Value holds.
type ValueKind int

const (
	VString ValueKind = iota
	VBool
	VInt
	VExprSource // raw, unparsed source text captured by an EntryExpression slot
	VCustom     // nested match produced by an EntryCustom slot
)

// Value is one field's captured content after a successful match.
type Value struct {
	Kind  ValueKind
	Str   string
	Bool  bool
	Int   int
	Match *Match // set iff Kind == VCustom
}

// Match is the result of successfully matching one pattern definition.
// Fields is keyed by MatchEntry.FieldName; entries with no field name
// (anonymous words/raw text) still consume input but leave no trace
// here — the original indexes field_values positionally instead, but a
// name-keyed map is the idiomatic Go equivalent and is what the
// resolver/evaluator wants for `match.field` access.
type Match struct {
	DefName string
	Fields  map[string]Value
}

// Registry resolves a pattern/sum definition by name, letting
// EntryCustom slots and sum members recurse without a direct AST
// pointer wired in by the parser.
type Registry struct {
	Patterns map[string]*ast.PatternDef
	Sums     map[string]*ast.SumDef
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{Patterns: map[string]*ast.PatternDef{}, Sums: map[string]*ast.SumDef{}}
}

// MatchError reports a pattern/sum that failed to match a string.
type MatchError struct {
	DefName string
	Input   string
	Reason  string
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("pattern %q didn't match %q: %s", e.DefName, e.Input, e.Reason)
}

// wordRange is the mutable per-attempt state of one EntryWord slot's
// quantifier, mirroring original_source's word_range_t. Unlike
// ast.MatchEntry's inclusive Max, max here is exclusive: an attempt
// takes at most max-1 words.
type wordRange struct{ min, max int }

const unbounded = 1 << 20

func freshRange(e *ast.MatchEntry) wordRange {
	max := e.Max + 1
	if e.Max < 0 {
		max = unbounded
	}
	return wordRange{min: e.Min, max: max}
}

// scanner walks a string left to right, byte-offset based, with the
// same whitespace-skipping semantics as the original's tokenizer_t
// (ASCII space/tab/newline only — pattern bodies are expected to be
// plain runtime string data, not source text).
type scanner struct {
	s   string
	pos int
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }

func (sc *scanner) skipWhitespace() {
	for sc.pos < len(sc.s) && isSpace(sc.s[sc.pos]) {
		sc.pos++
	}
}

// nextWordEnd returns the offset of the next whitespace byte (or end
// of string) starting at sc.pos.
func (sc *scanner) nextWordEnd() int {
	i := sc.pos
	for i < len(sc.s) && !isSpace(sc.s[i]) {
		i++
	}
	return i
}

// MatchPattern attempts to match def's entries against the whole of
// input, returning the captured field values. Word-quantifier entries
// backtrack against fixed entries that follow them (original's
// string_match_pattern retry loop).
func MatchPattern(reg *Registry, def *ast.PatternDef, input string) (*Match, error) {
	m, consumed, err := matchPrefixImpl(reg, def, input)
	if err != nil {
		return nil, err
	}
	rest := strings.TrimLeftFunc(input[consumed:], func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' })
	if rest != "" {
		return nil, &MatchError{DefName: def.Name, Input: input, Reason: "trailing input left unmatched"}
	}
	return m, nil
}

// MatchPatternPrefix is MatchPattern but permits unconsumed trailing
// input, reporting how many bytes of s were consumed. Used by sum
// member selection and by nested EntryCustom matching, both of which
// match the prefix of a larger string rather than the whole of it.
func MatchPatternPrefix(reg *Registry, def *ast.PatternDef, s string) (*Match, int, error) {
	return matchPrefixImpl(reg, def, s)
}

func matchPrefixImpl(reg *Registry, def *ast.PatternDef, input string) (*Match, int, error) {
	wordEntries := 0
	for _, e := range def.Entries {
		if e.Kind == ast.EntryWord {
			wordEntries++
		}
	}
	ranges := make([]wordRange, wordEntries)
	idx := 0
	for _, e := range def.Entries {
		if e.Kind == ast.EntryWord {
			ranges[idx] = freshRange(e)
			idx++
		}
	}

	for {
		sc := &scanner{s: input}
		fields := map[string]Value{}
		failed := false
		var failReason string
		rangeIdx := 0

		for entryIndex, e := range def.Entries {
			sc.skipWhitespace()
			switch e.Kind {
			case ast.EntryWord:
				r := &ranges[rangeIdx]
				rangeIdx++
				iterations := r.max - 1
				var words []string
				for i := 0; i < iterations; i++ {
					start := sc.pos
					end := sc.nextWordEnd()
					if start != end {
						words = append(words, sc.s[start:end])
					}
					sc.pos = end
					if end == len(sc.s) {
						break
					}
					sc.skipWhitespace()
				}
				if len(words) < r.min {
					failed, failReason = true, fmt.Sprintf("expected at least %d word(s)", r.min)
					break
				}
				if e.FieldName != "" {
					fields[e.FieldName] = Value{Kind: VString, Str: strings.Join(words, " ")}
				}
				r.max = len(words) + 1

			case ast.EntryBool, ast.EntryInt, ast.EntryString:
				v, n, err := scanTyped(e.Kind, sc.s[sc.pos:])
				if err != nil {
					failed, failReason = true, err.Error()
					break
				}
				sc.pos += n
				if e.FieldName != "" {
					fields[e.FieldName] = v
				}

			case ast.EntryExpression:
				end := scanExpressionEnd(sc.s, sc.pos)
				if e.FieldName != "" {
					fields[e.FieldName] = Value{Kind: VExprSource, Str: sc.s[sc.pos:end]}
				}
				sc.pos = end

			case ast.EntryCustom:
				nested, consumed, err := matchCustomPrefix(reg, e.CustomName, sc.s[sc.pos:])
				if err != nil {
					failed, failReason = true, err.Error()
					break
				}
				sc.pos += consumed
				if e.FieldName != "" {
					fields[e.FieldName] = Value{Kind: VCustom, Match: nested}
				}

			case ast.EntryRaw:
				start := sc.pos
				end := sc.nextWordEnd()
				if input[start:end] != e.RawText {
					failed, failReason = true, fmt.Sprintf("expected %q", e.RawText)
					break
				}
				sc.pos = end
			}

			if failed {
				break
			}
			if e.Kind != ast.EntryWord {
				future := rangeIdx
				for i := entryIndex + 1; i < len(def.Entries); i++ {
					if def.Entries[i].Kind == ast.EntryWord {
						ranges[future] = freshRange(def.Entries[i])
						future++
					}
				}
			}
		}

		if failed {
			if wordEntries == 0 {
				return nil, 0, &MatchError{DefName: def.Name, Input: input, Reason: failReason}
			}
			changed := false
			for i := len(ranges) - 1; i >= 0; i-- {
				if ranges[i].max <= 0 {
					continue
				}
				if ranges[i].max-ranges[i].min > 1 {
					ranges[i].max--
					changed = true
					break
				}
			}
			if !changed {
				return nil, 0, &MatchError{DefName: def.Name, Input: input, Reason: failReason}
			}
			continue
		}

		return &Match{DefName: def.Name, Fields: fields}, sc.pos, nil
	}
}

// matchCustomPrefix recurses an EntryCustom slot into either a nested
// pattern or a nested sum, matching only a prefix of s.
func matchCustomPrefix(reg *Registry, name, s string) (*Match, int, error) {
	if def, ok := reg.Patterns[name]; ok {
		return matchPrefixImpl(reg, def, s)
	}
	if def, ok := reg.Sums[name]; ok {
		return matchSumPrefix(reg, def, s)
	}
	return nil, 0, fmt.Errorf("unknown pattern/sum %q", name)
}

// MatchSum selects the sum member that consumes the most bytes when
// matched against the whole of input, matching original_source's
// "most input bytes wins" rule; ties keep the earliest-declared member
// (original's `consumed > max_consumed` strict inequality preserves
// first-found on ties).
func MatchSum(reg *Registry, def *ast.SumDef, input string) (*Match, error) {
	m, consumed, err := matchSumPrefix(reg, def, input)
	if err != nil {
		return nil, err
	}
	if consumed != len(input) {
		// Re-run the winning member through the full (non-prefix)
		// matcher so trailing garbage is reported the same way a
		// plain pattern match would report it.
		if pdef, ok := reg.Patterns[m.DefName]; ok {
			return MatchPattern(reg, pdef, input)
		}
	}
	return m, nil
}

func matchSumPrefix(reg *Registry, def *ast.SumDef, input string) (*Match, int, error) {
	var best *Match
	bestConsumed := 0
	for _, memberName := range def.Members {
		pdef, ok := reg.Patterns[memberName]
		if !ok {
			if sdef, ok := reg.Sums[memberName]; ok {
				if m, n, err := matchSumPrefix(reg, sdef, input); err == nil && n > bestConsumed {
					best, bestConsumed = m, n
				}
			}
			continue
		}
		if m, n, err := matchPrefixImpl(reg, pdef, input); err == nil && n > bestConsumed {
			best, bestConsumed = m, n
		}
	}
	if best == nil {
		return nil, 0, &MatchError{DefName: def.Name, Input: input, Reason: "no member matched"}
	}
	return best, bestConsumed, nil
}

// scanTyped matches one bool/int/string literal token at the front of
// s using the ordinary language lexer, the same way
// original_source's string_match_bool/int/string reuse its tokenizer.
func scanTyped(kind ast.EntryKind, s string) (Value, int, error) {
	lx := lexer.New(s, 0)
	tok, err := lx.NextToken()
	if err != nil {
		return Value{}, 0, err
	}
	consumed := lx.Offset()
	switch kind {
	case ast.EntryBool:
		if tok.Type != token.TRUE && tok.Type != token.FALSE {
			return Value{}, 0, fmt.Errorf("boolean value expected")
		}
		return Value{Kind: VBool, Bool: tok.Type == token.TRUE}, consumed, nil
	case ast.EntryInt:
		if tok.Type != token.INT {
			return Value{}, 0, fmt.Errorf("integer value expected")
		}
		var n int
		if _, err := fmt.Sscanf(tok.Literal, "%d", &n); err != nil {
			return Value{}, 0, fmt.Errorf("integer value out of range")
		}
		return Value{Kind: VInt, Int: n}, consumed, nil
	case ast.EntryString:
		if tok.Type != token.STRING {
			return Value{}, 0, fmt.Errorf("string value expected")
		}
		return Value{Kind: VString, Str: tok.Literal}, consumed, nil
	}
	return Value{}, 0, fmt.Errorf("unsupported typed entry")
}

// scanExpressionEnd implements original_source's
// string_match_get_end_of_expression: an EntryExpression slot captures
// raw source text up to the first unbalanced ')'/']', a bare '"', or a
// ',' outside any bracket nesting, treating '\' as escaping the
// following byte.
func scanExpressionEnd(s string, start int) int {
	curly, parens, square := 0, 0, 0
	i := start
	for i < len(s) {
		switch s[i] {
		case '{':
			curly++
		case '}':
			curly--
		case '(':
			parens++
		case ')':
			parens--
			if parens < 0 {
				return i
			}
		case '[':
			square++
		case ']':
			square--
			if square < 0 {
				return i
			}
		case '\\':
			i++
			if i >= len(s) {
				return i
			}
		case '"':
			return i
		case ',':
			if parens <= 0 && square <= 0 {
				return i
			}
		}
		i++
	}
	return i
}
