// Package ast defines the typed syntax tree produced by the Tangram
// parser (spec.md §3 "Statement AST nodes").
//
// Nodes are consumed by type switch rather than a Visitor interface:
// Tangram has one evaluation backend (the tree-walking evaluator) and a
// small, closed node set, so the extra indirection a Visitor buys a
// multi-backend compiler does not pay for itself here.
package ast

import (
	"github.com/tangramlang/tangram/internal/token"
	"github.com/tangramlang/tangram/internal/types"
)

// Node is the base interface for every AST node.
type Node interface {
	Tok() token.Token
}

// Statement is a Node appearing in a block's statement list.
type Statement interface {
	Node
	stmtNode()
}

// Expression is a Node that produces a Value when evaluated. ResultType
// and Category are filled in by the resolver (spec.md §3 invariant:
// "every expression node has a known result_type and value_category
// ... after inference completes").
type Expression interface {
	Node
	exprNode()
	// Result and Category expose the exprMeta every concrete
	// Expression embeds, so passes that only need an expression's
	// inferred type (e.g. dead-output analysis) don't need a type
	// switch over every node kind.
	Result() types.Type
	Category() ValueCategory
}

// ValueCategory classifies an expression for assignment/constant-fold
// purposes (spec.md §3).
type ValueCategory int

const (
	Runtime ValueCategory = iota
	RefCategory
	Constant
)

// Program is the root of one compiled Tangram file.
type Program struct {
	File       string
	Directives []*Directive
	Patterns   []*PatternDef
	Sums       []*SumDef
	Generators []*GeneratorDef
	Includes   []*IncludeStmt
	TopDecls   []*DeclStmt
	Body       *LiteralBlock // free top-level literal content, if any
	// StackSize is the number of stack slots the top-level frame needs
	// (TopDecls plus any declarations inside Body share one frame),
	// computed by the symbol builder.
	StackSize int
}

func (p *Program) Tok() token.Token { return token.Token{} }

// Directive is a top-level `directive "name";` (SPEC_FULL.md supplement).
type Directive struct {
	Token token.Token
	Name  string
}

func (d *Directive) Tok() token.Token { return d.Token }

// IncludeStmt is a top-level `include "path";`.
type IncludeStmt struct {
	Token token.Token
	Path  string
}

func (i *IncludeStmt) Tok() token.Token { return i.Token }
