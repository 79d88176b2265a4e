package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/tangramlang/tangram/internal/ast"
	"github.com/tangramlang/tangram/internal/token"
)

// cursor tracks a hand-rolled walk over p.src, independent of the
// token lexer, used while inside a literal block's raw text.
type cursor struct {
	pos  int
	line int
	col  int
}

func (p *Parser) byteAt(c cursor) byte {
	if c.pos >= len(p.src) {
		return 0
	}
	return p.src[c.pos]
}

func (p *Parser) advanceCursor(c cursor) cursor {
	if c.pos >= len(p.src) {
		return c
	}
	b := p.src[c.pos]
	if b == '\n' {
		c.line++
		c.col = 0
		c.pos++
		return c
	}
	_, w := utf8.DecodeRuneInString(p.src[c.pos:])
	if w == 0 {
		w = 1
	}
	c.pos += w
	c.col++
	return c
}

// measureWhitespace walks whitespace starting at c, mirroring the
// lexer's own rule: a tab or a run of four spaces counts as one
// indentation unit wherever the run starts; spaces left over from a
// shorter run are "trailing spaces"; a newline resets both counts
// (spec.md §4.2).
func (p *Parser) measureWhitespace(c cursor) (ast.Whitespace, cursor) {
	var ws ast.Whitespace
	afterNewline := true
	spacesRun := 0
	for {
		b := p.byteAt(c)
		switch b {
		case '\n':
			ws.Newlines++
			afterNewline = true
			ws.Indent = 0
			ws.Spaces = 0
			spacesRun = 0
			c = p.advanceCursor(c)
		case '\r':
			c = p.advanceCursor(c)
		case '\t':
			if afterNewline {
				ws.Indent++
			} else {
				ws.Spaces++
			}
			c = p.advanceCursor(c)
		case ' ':
			spacesRun++
			if afterNewline {
				if spacesRun == 4 {
					ws.Indent++
					spacesRun = 0
				}
			} else {
				ws.Spaces++
			}
			c = p.advanceCursor(c)
		default:
			ws.Spaces += spacesRun
			return ws, c
		}
	}
}

// parseLiteralBody scans the content of a `{ ... }` literal block
// starting right after the opening brace. ambientIndent is subtracted
// from every segment's measured indentation (spec.md §4.3: "Leading
// indentation of each line is stripped up to the ambient indentation
// level"). Plain '{'/'}' pairs appearing in literal text (outside any
// `${...}` island) are balanced rather than ending the block, so
// templates may emit brace-delimited output (e.g. generated C-like
// code) without needing to escape every brace.
func (p *Parser) parseLiteralBody(tok token.Token, start cursor, ambientIndent int) *ast.LiteralBlock {
	block := &ast.LiteralBlock{Token: tok}
	depth := 1
	c := start

	newSegment := func(ws ast.Whitespace) *ast.Segment {
		ws.Indent -= ambientIndent
		if ws.Indent < 0 {
			ws.Indent = 0
		}
		seg := &ast.Segment{Whitespace: ws}
		block.Segments = append(block.Segments, seg)
		return seg
	}

	ws, c := p.measureWhitespace(c)
	seg := newSegment(ws)

	var textStart = c
	var textLine, textCol = c.line, c.col

	flushText := func(end cursor) {
		if end.pos > textStart.pos {
			raw := p.src[textStart.pos:end.pos]
			// Trailing blanks are dropped only at a line end or the block's
			// closing '}', not before a `$` placeholder or escape.
			trimmed := raw
			if b := p.byteAt(end); b != '$' && b != '\\' {
				trimmed = strings.TrimRight(raw, " \t")
			}
			if trimmed != "" {
				seg.Statements = append(seg.Statements, &ast.LiteralStmt{
					Token: token.Token{Pos: token.Position{Line: textLine, Column: textCol, File: tok.Pos.File}},
					Text:  trimmed,
				})
			}
		}
	}

	for {
		b := p.byteAt(c)
		switch {
		case b == 0:
			flushText(c)
			return block
		case b == '\n':
			flushText(c)
			c = p.advanceCursor(c)
			ws, c = p.measureWhitespace(c)
			seg = newSegment(ws)
			textStart = c
			textLine, textCol = c.line, c.col
		case b == '$' && p.byteAt(p.advanceCursor(c)) == '$':
			// Escaped literal '$'.
			flushText(c)
			c = p.advanceCursor(c)
			c = p.advanceCursor(c)
			textStart = c
			textLine, textCol = c.line, c.col
			// The literal '$' itself becomes part of the next flushed run;
			// emit it directly as its own statement to keep offsets simple.
			seg.Statements = append(seg.Statements, &ast.LiteralStmt{
				Token: token.Token{Pos: token.Position{Line: textLine, Column: textCol, File: tok.Pos.File}},
				Text:  "$",
			})
		case b == '\\' && p.byteAt(p.advanceCursor(c)) == '$':
			flushText(c)
			c = p.advanceCursor(c)
			c = p.advanceCursor(c)
			textStart = c
			textLine, textCol = c.line, c.col
			seg.Statements = append(seg.Statements, &ast.LiteralStmt{
				Token: token.Token{Pos: token.Position{Line: textLine, Column: textCol, File: tok.Pos.File}},
				Text:  "$",
			})
		case b == '$':
			flushText(c)
			c = p.advanceCursor(c) // consume '$'
			stmts, after := p.parsePlaceholder(c)
			seg.Statements = append(seg.Statements, stmts...)
			c = after
			textStart = c
			textLine, textCol = c.line, c.col
		case b == '{':
			depth++
			c = p.advanceCursor(c)
		case b == '}':
			depth--
			if depth == 0 {
				flushText(c)
				c = p.advanceCursor(c) // consume closing '}'
				// Consume one following newline so a lone '}' doesn't emit
				// a blank line (spec.md §4.3).
				if p.byteAt(c) == '\r' {
					c = p.advanceCursor(c)
				}
				if p.byteAt(c) == '\n' {
					c = p.advanceCursor(c)
				}
				p.resumeAfterLiteral(c.pos, c.line, c.col)
				return block
			}
			c = p.advanceCursor(c)
		default:
			c = p.advanceCursor(c)
		}
	}
}

// parsePlaceholder parses what follows a literal '$': either a
// brace-delimited group of one or more statements (`${stmt1; stmt2}`)
// or, when '{' is not next, exactly one statement with no wrapping
// braces of its own (e.g. `$if(...) { ... }`, `$x`, `$,`). It re-enters
// the token-based parser at the given raw offset. For the braced form,
// raw scanning resumes right after the closing '}', so whitespace and
// newlines following the group stay literal output. For the unbraced
// form it resumes at whatever token the parser has already buffered as
// cur, so whitespace between the statement and that token is not
// emitted (spec.md §4.3, grounded on the original implementation's
// parse_literal_block/parse_block_statement dispatch on a lone '$').
func (p *Parser) parsePlaceholder(at cursor) ([]ast.Statement, cursor) {
	if p.byteAt(at) == '{' {
		braceTok := token.Token{Pos: token.Position{Offset: at.pos, Line: at.line, Column: at.col}}
		p.lex.Reset(at.pos+1, at.line, at.col+1)
		p.advance()
		var stmts []ast.Statement
		for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
			stmts = append(stmts, p.parseStatementAndTerminator())
		}
		closeTok, ok := p.expect(token.RBRACE)
		if !ok {
			p.errorf(braceTok, "unterminated '${' group")
			return stmts, cursor{pos: p.cur.Pos.Offset, line: p.cur.Pos.Line, col: p.cur.Pos.Column}
		}
		return stmts, cursor{pos: closeTok.Pos.Offset + 1, line: closeTok.Pos.Line, col: closeTok.Pos.Column + 1}
	}

	p.lex.Reset(at.pos, at.line, at.col)
	p.advance()
	stmt := p.parseStatementAndTerminator()
	return []ast.Statement{stmt}, cursor{pos: p.cur.Pos.Offset, line: p.cur.Pos.Line, col: p.cur.Pos.Column}
}
