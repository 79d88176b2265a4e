package ast

import (
	"github.com/tangramlang/tangram/internal/token"
	"github.com/tangramlang/tangram/internal/types"
)

func (s *LiteralStmt) stmtNode()    {}
func (s *IfStmt) stmtNode()        {}
func (s *ForStmt) stmtNode()       {}
func (s *ExprStmt) stmtNode()      {}
func (s *CommaStmt) stmtNode()     {}
func (s *DeclStmt) stmtNode()      {}
func (s *BreakStmt) stmtNode()     {}
func (s *ContinueStmt) stmtNode()  {}
func (s *ReturnStmt) stmtNode()    {}

// Segment is one unit of a LiteralBlock: leading whitespace plus either
// a run of statements or nothing (a forced-newline-only segment),
// spec.md §3 "Literal block".
type Segment struct {
	Whitespace Whitespace
	Statements []Statement
}

// Whitespace mirrors token.Whitespace but lives in ast so the
// dead-output pass (spec.md §4.4) can zero it without reaching into
// the lexer's token type.
type Whitespace struct {
	Newlines int
	Indent   int
	Spaces   int
}

// LiteralBlock is a `{ ... }` body: a sequence of Segments. HasOutput
// is computed by the resolver's dead-output analysis (spec.md §4.4).
type LiteralBlock struct {
	Token     token.Token
	Segments  []*Segment
	HasOutput bool
	// Scope is the index of this block's symbol scope, set by the
	// symbol builder when the block is itself a scope boundary
	// (generator body, if/for body). -1 when the block shares its
	// enclosing scope.
	Scope int
}

func (b *LiteralBlock) Tok() token.Token { return b.Token }

// LiteralStmt is a literal text chunk inside a segment.
type LiteralStmt struct {
	Token         token.Token
	Text          string
	LeadingSpaces int
}

func (s *LiteralStmt) Tok() token.Token { return s.Token }

// IfStmt: `if(cond) { then } [else { else }]`.
type IfStmt struct {
	Token     token.Token
	Cond      Expression
	Then      *LiteralBlock
	Else      *LiteralBlock // nil if absent
	ThenScope int
	ElseScope int
}

func (s *IfStmt) Tok() token.Token { return s.Token }

// ForStmt: `for(x in container) { body }`.
type ForStmt struct {
	Token     token.Token
	VarName   string
	Container Expression
	Body      *LiteralBlock
	Scope     int
	// VarType is filled by the resolver once Container's element type
	// is known.
	VarType types.Type
	// VarSlot is the frame slot the resolver assigned the induction
	// variable, for the evaluator to write into on each iteration.
	VarSlot int
}

func (s *ForStmt) Tok() token.Token { return s.Token }

// ExprStmt evaluates Expr and, if non-void, appends its formatted
// result to the output (spec.md §4.6).
type ExprStmt struct {
	Token  token.Token
	Expr   Expression
	Format *FormatSpec // nil if absent
}

func (s *ExprStmt) Tok() token.Token { return s.Token }

// CommaStmt is `${,}` or `${,N}`: a back-reference to an enclosing for
// loop's "more iterations remain" state (spec.md §3/§4.3).
type CommaStmt struct {
	Token        token.Token
	LoopLevel    int // 0 = innermost enclosing for
	TrailingSpace bool
	// ResolvedLoop is filled by the resolver: index into the active
	// for-loop stack the evaluator maintains.
	ResolvedLoop int
}

func (s *CommaStmt) Tok() token.Token { return s.Token }

// DeclStmt: `name : Type [= init];` or `name := init;`.
type DeclStmt struct {
	Token       token.Token
	Name        string
	Declared    *TypeExpr // nil if inferred
	Init        Expression // nil if no initializer
	Inferred    bool
	ResolvedType types.Type
	Slot        int
}

func (s *DeclStmt) Tok() token.Token { return s.Token }

// BreakStmt / ContinueStmt: `break N;` / `continue N;`, N defaulting to 0.
type BreakStmt struct {
	Token token.Token
	Level int
}

func (s *BreakStmt) Tok() token.Token { return s.Token }

type ContinueStmt struct {
	Token token.Token
	Level int
}

func (s *ContinueStmt) Tok() token.Token { return s.Token }

// ReturnStmt unwinds the current generator invocation.
type ReturnStmt struct {
	Token token.Token
	Value Expression // nil for bare `return;`
}

func (s *ReturnStmt) Tok() token.Token { return s.Token }

// TypeExpr is a parsed type annotation: a base keyword/name plus an
// array-bracket count, e.g. `Decl[]`.
type TypeExpr struct {
	Token      token.Token
	Name       string // "int" | "bool" | "string" | pattern/sum name
	ArrayLevel int
}
