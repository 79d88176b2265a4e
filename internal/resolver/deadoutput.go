package resolver

import (
	"github.com/tangramlang/tangram/internal/ast"
	"github.com/tangramlang/tangram/internal/types"
)

// MarkDeadOutput runs spec.md §4.4's "dead-output analysis" over block
// after type inference: a segment whose statements can never produce
// output (only declarations, void-result expression statements, or
// control statements wrapping further dead output) has its leading
// Whitespace zeroed, and the newlines it would have emitted are folded
// forward into the next segment that does produce output. It returns
// whether block itself produces any output, so an enclosing IfStmt/
// ForStmt can fold its own dead segments the same way.
func (r *Resolver) MarkDeadOutput(block *ast.LiteralBlock) bool {
	// The parser's per-line segmentation records a new segment's
	// Newlines as only the *extra* blank lines beyond the line break
	// that started it (the break itself is implicit in moving to a new
	// segment). Normalize that here so Whitespace.Newlines becomes the
	// complete count the evaluator flushes verbatim, matching spec.md
	// §3's "whitespace record describing how many newlines ... precede
	// the segment's first output character".
	for i, seg := range block.Segments {
		if i > 0 {
			seg.Whitespace.Newlines++
		}
	}

	hasOutput := false
	pendingNewlines := 0

	for _, seg := range block.Segments {
		segHasOutput := false
		for _, stmt := range seg.Statements {
			if r.stmtHasOutput(stmt) {
				segHasOutput = true
			}
		}

		if segHasOutput {
			seg.Whitespace.Newlines += pendingNewlines
			pendingNewlines = 0
			hasOutput = true
		} else {
			pendingNewlines += seg.Whitespace.Newlines
			seg.Whitespace = ast.Whitespace{}
		}
	}

	block.HasOutput = hasOutput
	return hasOutput
}

func (r *Resolver) stmtHasOutput(stmt ast.Statement) bool {
	switch s := stmt.(type) {
	case *ast.LiteralStmt:
		return true
	case *ast.ExprStmt:
		return r.exprStmtHasOutput(s.Expr)
	case *ast.CommaStmt:
		return true
	case *ast.IfStmt:
		then := r.MarkDeadOutput(s.Then)
		els := false
		if s.Else != nil {
			els = r.MarkDeadOutput(s.Else)
		}
		return then || els
	case *ast.ForStmt:
		return r.MarkDeadOutput(s.Body)
	default:
		// DeclStmt, BreakStmt, ContinueStmt, ReturnStmt never emit.
		return false
	}
}

// exprStmtHasOutput special-cases a generator call: its static result
// type is void (the call writes straight to the output stream rather
// than producing a formattable value), so the ordinary "void never
// emits" rule would wrongly mark every generator invocation dead. A
// direct call to an already-resolved generator inherits that
// generator's own HasOutput; anything else resolving to void (a
// forward-referenced or recursive generator, or an indirect call
// through a generator-valued variable) is assumed live, since nothing
// here can prove it dead.
func (r *Resolver) exprStmtHasOutput(expr ast.Expression) bool {
	if expr.Result().ID != types.Void {
		return true
	}
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		return false
	}
	if ident, ok := call.Callee.(*ast.Identifier); ok {
		if gen, ok := r.generators[ident.Name]; ok && r.genResolved[gen] {
			return gen.Body.HasOutput
		}
	}
	return true
}
