// Package diagnostics formats parse/resolve/match/evaluation errors the
// way the rest of the toolchain expects: a one-line location/message
// header followed by a cropped source line and a caret/tilde locator
// (spec.md §7 "Error handling design").
package diagnostics

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	maxCharsBefore = 50
	maxCharsAfter  = 50
)

// Diagnostic is one reported error, optionally chained to a secondary
// location (e.g. "see previous declaration").
type Diagnostic struct {
	File    string
	Source  string
	Line    int // 1-based
	Column  int // 1-based
	Offset  int
	Length  int
	Message string
	Context *Diagnostic
}

func (d Diagnostic) Error() string { return d.Format(colorEnabled()) }

// Format renders the diagnostic as
//
//	file(line:col): message
//	 <cropped source line>
//	 <spaces>^<tildes>
//
// per the original implementation's print_error_context_impl, with
// ANSI highlighting of the caret/tilde locator when color is enabled.
func (d Diagnostic) Format(color bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(%d:%d): %s\n", d.File, d.Line, d.Column, d.Message)
	b.WriteString(renderSourceLine(d.Source, d.Offset, d.Column, d.Length, color))
	if d.Context != nil {
		b.WriteByte('\n')
		b.WriteString(d.Context.Format(color))
	}
	return b.String()
}

func renderSourceLine(src string, offset, column, length int, color bool) string {
	if offset > len(src) {
		offset = len(src)
	}
	lineStart := strings.LastIndexByte(src[:offset], '\n')
	if lineStart < 0 {
		lineStart = 0
	} else {
		lineStart++
	}
	lineEnd := offset
	if idx := strings.IndexAny(src[offset:], "\r\n"); idx >= 0 {
		lineEnd = offset + idx
	} else {
		lineEnd = len(src)
	}

	spacesToPrint := column - 1
	cropped := false
	if offset-lineStart > maxCharsBefore {
		newStart := offset - maxCharsBefore
		spacesToPrint -= newStart - lineStart
		lineStart = newStart
	}
	if lineEnd-offset > maxCharsAfter {
		lineEnd = offset + maxCharsAfter
		cropped = true
	}
	if spacesToPrint < 0 {
		spacesToPrint = 0
	}

	dots := ""
	if cropped {
		dots = "..."
	}

	caretLen := length - 1
	if caretLen < 0 {
		caretLen = 0
	}
	if caretLen > maxCharsAfter {
		caretLen = maxCharsAfter
	}

	var b strings.Builder
	fmt.Fprintf(&b, " %s%s\n", src[lineStart:lineEnd], dots)
	b.WriteByte(' ')
	b.WriteString(strings.Repeat(" ", spacesToPrint))
	if color {
		b.WriteString("\x1b[31;1m")
	}
	b.WriteByte('^')
	b.WriteString(strings.Repeat("~", caretLen))
	if color {
		b.WriteString("\x1b[0m")
	}
	return b.String()
}

// colorEnabled applies the usual NO_COLOR / TERM=dumb / isatty gating:
// color is on only when neither opt-out is set and stderr is a
// terminal.
func colorEnabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}
