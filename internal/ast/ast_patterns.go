package ast

import (
	"github.com/tangramlang/tangram/internal/token"
	"github.com/tangramlang/tangram/internal/types"
)

// EntryKind enumerates the match-entry kinds of spec.md §3 "Pattern
// definition": word / expression / typed slot / custom / raw.
type EntryKind int

const (
	EntryWord EntryKind = iota
	EntryExpression
	EntryBool
	EntryInt
	EntryString
	EntryCustom
	EntryRaw
)

// MatchEntry is one left-to-right unit of a pattern's entry sequence.
type MatchEntry struct {
	Token token.Token
	Kind  EntryKind

	// EntryWord quantifier range; Max == -1 means unbounded
	// (spec.md §3: "{n,}" etc.).
	Min, Max int

	// EntryCustom: name of the nested pattern/sum definition.
	CustomName string

	// EntryRaw: the literal text to match (escape-stripped once, per
	// spec.md §9 Open question).
	RawText string

	// FieldName is "" for entries with no associated field (raw
	// entries never have one; others may or may not, per spec.md's
	// field model — a field is a named back-reference to a non-raw
	// entry).
	FieldName string
	// FieldType, for a field annotated with an explicit `:Type`
	// specifier inside `{}` (spec.md §4.3).
	FieldType string
}

// PatternDef is a top-level `pattern Name: entries;`.
type PatternDef struct {
	Token   token.Token
	Name    string
	Entries []*MatchEntry
}

func (p *PatternDef) Tok() token.Token { return p.Token }

// SumDef is a top-level `sum Name: A | B | C;`.
type SumDef struct {
	Token   token.Token
	Name    string
	Members []string // pattern/sum names, declaration order
}

func (s *SumDef) Tok() token.Token { return s.Token }

// Param is one generator parameter.
type Param struct {
	Token    token.Token
	Name     string
	Declared *TypeExpr
	Default  Expression // nil if required
	// ResolvedType is filled by the resolver: Declared's type, or (when
	// Declared is nil) the default value's inferred type.
	ResolvedType types.Type
}

// GeneratorDef is a top-level `generator Name(params) { body }`.
type GeneratorDef struct {
	Token     token.Token
	Name      string
	Params    []*Param
	Body      *LiteralBlock
	Scope     int
	// StackSize is the number of stack slots this generator's frame
	// needs, computed by the symbol builder.
	StackSize int
}

func (g *GeneratorDef) Tok() token.Token { return g.Token }
