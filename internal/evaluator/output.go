package evaluator

import (
	"io"
	"strings"

	"github.com/tangramlang/tangram/internal/ast"
)

// outputBuffer implements spec.md §4.6's whitespace protocol: output is
// buffered, not written immediately. A segment's whitespace is recorded
// into the pending counters as soon as it's entered; indentation/spaces
// are overwritten by the most recent segment (only the segment that
// finally emits something needs its own indentation), while newlines
// accumulate across however many content-less segments come before it,
// per spec.md's "a segment that never emits leaves counters untouched
// except for its preceding newlines, which accumulate so that
// subsequent segments compensate".
type outputBuffer struct {
	w       io.Writer
	pending ast.Whitespace
}

func newOutputBuffer(w io.Writer) *outputBuffer {
	return &outputBuffer{w: w}
}

// enterSegment records seg's whitespace ahead of running its statements.
func (o *outputBuffer) enterSegment(seg *ast.Segment) {
	o.pending.Newlines += seg.Whitespace.Newlines
	o.pending.Indent = seg.Whitespace.Indent
	o.pending.Spaces = seg.Whitespace.Spaces
}

// write flushes any pending whitespace, then writes s.
func (o *outputBuffer) write(s string) {
	o.flush()
	io.WriteString(o.w, s)
}

func (o *outputBuffer) flush() {
	if o.pending.Newlines > 0 {
		io.WriteString(o.w, strings.Repeat("\n", o.pending.Newlines))
	}
	if n := o.pending.Indent*4 + o.pending.Spaces; n > 0 {
		io.WriteString(o.w, strings.Repeat(" ", n))
	}
	o.pending = ast.Whitespace{}
}

// flushTrailingNewline implements spec.md §4.6 step 5: once a generator
// call's body has finished, any newline still pending (content the body
// ended on a blank line, or on a segment whose own emission was
// suppressed at runtime) is written out on its own, without the
// indentation/spaces that would only make sense ahead of further
// content.
func (o *outputBuffer) flushTrailingNewline() {
	if o.pending.Newlines > 0 {
		io.WriteString(o.w, strings.Repeat("\n", o.pending.Newlines))
	}
	o.pending = ast.Whitespace{}
}
