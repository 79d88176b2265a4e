package ast

import (
	"github.com/tangramlang/tangram/internal/token"
	"github.com/tangramlang/tangram/internal/types"
)

// exprMeta is embedded by every Expression to carry the fields the
// resolver fills in (spec.md §3 invariant on result_type/value_category).
type exprMeta struct {
	ResultType types.Type
	Cat        ValueCategory
	// ConstValue holds the already-computed value for a node the
	// resolver folded to a compile-time constant (spec.md §4.4
	// "Constant folding"). It is an evaluator.Value but this package
	// cannot import evaluator (evaluator imports ast), so it is stored
	// as `any` and type-asserted by the evaluator/resolver.
	ConstValue  any
	IsConstFold bool
}

func (e *exprMeta) exprNode() {}

// Result returns the resolver-assigned result type (zero Type before
// resolution runs).
func (e *exprMeta) Result() types.Type { return e.ResultType }

// Category returns the resolver-assigned value category (Runtime
// before resolution runs).
func (e *exprMeta) Category() ValueCategory { return e.Cat }

// SetResult records the resolver's inferred type/category for this
// node. Every Expression gets this for free via the embedded exprMeta,
// so the resolver can write through the Expression interface without a
// type switch over every concrete node kind.
func (e *exprMeta) SetResult(t types.Type, cat ValueCategory) {
	e.ResultType = t
	e.Cat = cat
}

// SetConstValue records a folded compile-time constant value (spec.md
// §4.4 "Constant folding").
func (e *exprMeta) SetConstValue(v any) {
	e.ConstValue = v
	e.IsConstFold = true
}

type Identifier struct {
	Token token.Token
	Name  string
	exprMeta
	// Symbol is set by the resolver to the stack slot this identifier
	// binds to (nil until resolved).
	Symbol any
}

func (i *Identifier) Tok() token.Token { return i.Token }

type IntLiteral struct {
	Token token.Token
	Value int64
	exprMeta
}

func (n *IntLiteral) Tok() token.Token { return n.Token }

type BoolLiteral struct {
	Token token.Token
	Value bool
	exprMeta
}

func (n *BoolLiteral) Tok() token.Token { return n.Token }

type StringLiteral struct {
	Token token.Token
	Value string
	exprMeta
}

func (n *StringLiteral) Tok() token.Token { return n.Token }

// ArrayLiteral is `[e1, e2, ...]`. Category is Constant iff every
// element is constant (spec.md §4.3).
type ArrayLiteral struct {
	Token    token.Token
	Elements []Expression
	exprMeta
}

func (n *ArrayLiteral) Tok() token.Token { return n.Token }

// BinOp enumerates the 15 binary operators across the expression
// grammar's precedence levels (unary operators are UnaryOp).
type BinOp int

const (
	OpOr BinOp = iota
	OpAnd
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpBitAnd
	OpBitOr
)

type BinaryExpr struct {
	Token token.Token
	Op    BinOp
	Left  Expression
	Right Expression
	exprMeta
}

func (n *BinaryExpr) Tok() token.Token { return n.Token }

type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNeg
)

type UnaryExpr struct {
	Token token.Token
	Op    UnaryOp
	Right Expression
	exprMeta
}

func (n *UnaryExpr) Tok() token.Token { return n.Token }

// AssignExpr is `target = value`. Target must resolve to RefCategory
// (spec.md §4.4 Assignment semantics).
type AssignExpr struct {
	Token  token.Token
	Target Expression
	Value  Expression
	exprMeta
}

func (n *AssignExpr) Tok() token.Token { return n.Token }

// IndexExpr is `left[index]`.
type IndexExpr struct {
	Token token.Token
	Left  Expression
	Index Expression
	exprMeta
}

func (n *IndexExpr) Tok() token.Token { return n.Token }

// DotExpr is one `.name` hop in a dotted chain; interpretation (field,
// property, or method) is deferred to resolution (spec.md §4.3).
type DotExpr struct {
	Token token.Token
	Left  Expression
	Name  string
	exprMeta
	// Kind is filled by the resolver: "field" | "property" | "method".
	Kind string
}

func (n *DotExpr) Tok() token.Token { return n.Token }

// CallExpr is `callee(args...)` — callee may itself be a DotExpr whose
// tail was detached as a method (spec.md §4.4 Dot chain).
type CallExpr struct {
	Token     token.Token
	Callee    Expression
	Args      []Expression
	ArgNames  []string // parallel to Args; "" for positional
	exprMeta
	// Receiver is set when Callee was a method tail detached from a
	// DotExpr chain, per spec.md: "a method tail causes the enclosing
	// call expression to detach the method and re-root the receiver."
	Receiver Expression
}

func (n *CallExpr) Tok() token.Token { return n.Token }

// InstanceofExpr is `left instanceof PatternName`.
type InstanceofExpr struct {
	Token      token.Token
	Left       Expression
	PatternName string
	exprMeta
}

func (n *InstanceofExpr) Tok() token.Token { return n.Token }

// RangeExpr is the call range(end) / range(begin,end), which the parser
// builds directly from the `range` keyword as a first-class
// range-producing expression (kept distinct from CallExpr so the evaluator can special
// case for-loop iteration, spec.md §4.6).
type RangeExpr struct {
	Token token.Token
	Begin Expression // nil means 0
	End   Expression
	exprMeta
}

func (n *RangeExpr) Tok() token.Token { return n.Token }

// FormatSpec is the `$format` suffix of an expression statement
// (spec.md §3 "Format specification").
type FormatSpec struct {
	Width     int
	HasWidth  bool
	Precision int
	HasPrec   bool
	Base      int // 0 means default (10)
	Lower     bool
	Raw       string
}
