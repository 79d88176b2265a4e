// Package parser builds an *ast.Program from a token stream using a
// Pratt-style precedence-climbing expression parser and a hand-written
// recursive-descent statement/literal-block parser (spec.md §4.3).
package parser

import (
	"fmt"

	"github.com/tangramlang/tangram/internal/arena"
	"github.com/tangramlang/tangram/internal/diagnostics"
	"github.com/tangramlang/tangram/internal/lexer"
	"github.com/tangramlang/tangram/internal/token"
)

// Parser consumes one file's tokens and raw source text.
//
// Lookahead is deliberately one token (cur) with on-demand, non-
// mutating lookahead for the rare two-token decisions (decl vs. assign,
// keyword call arguments). An eagerly buffered peek token would force
// the lexer to tokenize past an opening '{' before the parser gets a
// chance to notice that brace starts a literal block rather than a
// nested expression — by then the lexer would already have misread raw
// template text as code. Keeping lookahead lazy avoids that entirely.
type Parser struct {
	src       string
	fileIndex int
	fileName  string
	lex       *lexer.Lexer

	cur token.Token

	errs []error

	// arena interns identifier-class strings (names, fields, generator
	// and pattern/sum names) so a program that mentions the same
	// identifier many times shares one backing string, the way
	// spec.md's bump allocator keeps one copy of every long-lived
	// string for the life of the parsed program.
	arena *arena.Arena
}

// New returns a Parser over src, a single file's contents.
func New(src string, fileName string, fileIndex int) *Parser {
	p := &Parser{src: src, fileName: fileName, fileIndex: fileIndex, lex: lexer.New(src, fileIndex), arena: arena.New()}
	p.advance()
	return p
}

// intern returns the parser's arena-backed copy of s.
func (p *Parser) intern(s string) string { return *p.arena.Intern(s) }

// Errors returns every parse error accumulated so far. A non-empty
// result means ParseProgram's output must not be evaluated (spec.md §7:
// "Lex/parse errors abort the current file and the entire run").
func (p *Parser) Errors() []error { return p.errs }

func (p *Parser) advance() {
	tok, err := p.lex.NextToken()
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", p.fileName, err))
		tok = token.Token{Type: token.EOF}
	}
	p.cur = tok
}

// diag builds a Diagnostic anchored at tok, with length bytes of locator.
func (p *Parser) diag(tok token.Token, length int, format string, args ...any) diagnostics.Diagnostic {
	return diagnostics.Diagnostic{
		File: p.fileName, Source: p.src,
		Line: tok.Pos.Line, Column: tok.Pos.Column, Offset: tok.Pos.Offset, Length: length,
		Message: fmt.Sprintf(format, args...),
	}
}

// peekToken returns the token after cur without consuming it, by
// tokenizing from a throwaway copy of the lexer state. It never mutates
// p.lex and never records an error into p.errs.
func (p *Parser) peekToken() token.Token {
	clone := *p.lex
	tok, err := clone.NextToken()
	if err != nil {
		return token.Token{Type: token.EOF}
	}
	return tok
}

func (p *Parser) peekIs(t token.Type) bool { return p.peekToken().Type == t }

func (p *Parser) errorf(tok token.Token, format string, args ...any) {
	length := len(tok.Literal)
	if length == 0 {
		length = 1
	}
	p.errs = append(p.errs, p.diag(tok, length, format, args...))
}

func (p *Parser) curIs(t token.Type) bool { return p.cur.Type == t }

// expect advances past cur if it matches t, else records an error and
// does not advance (so callers can attempt recovery).
func (p *Parser) expect(t token.Type) (token.Token, bool) {
	if p.cur.Type != t {
		p.errorf(p.cur, "expected %s, got %s %q", t, p.cur.Type, p.cur.Literal)
		return p.cur, false
	}
	tok := p.cur
	p.advance()
	return tok, true
}

// skipToSemiOrBrace is a minimal error-recovery helper: on a parse
// failure inside a statement, resynchronize at the next statement
// boundary so one bad statement doesn't cascade into unrelated errors.
func (p *Parser) skipToSemiOrBrace() {
	for !p.curIs(token.SEMI) && !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		p.advance()
	}
	if p.curIs(token.SEMI) {
		p.advance()
	}
}

// consumeLBraceForLiteral matches an '{' that opens a literal block and
// returns the byte offset/line/column right after it, without letting
// the lexer read any further — the caller switches to raw scanning
// from that point (see parser_literal.go).
func (p *Parser) consumeLBraceForLiteral() (offset, line, col int, ok bool) {
	tok, matched := p.expectLiteralOpen()
	if !matched {
		return 0, 0, 0, false
	}
	return tok.Pos.Offset + 1, tok.Pos.Line, tok.Pos.Column + 1, true
}

// expectLiteralOpen is like expect(token.LBRACE) but does not call
// advance(), since advancing would tokenize into the literal body.
func (p *Parser) expectLiteralOpen() (token.Token, bool) {
	if p.cur.Type != token.LBRACE {
		p.errorf(p.cur, "expected '{', got %s %q", p.cur.Type, p.cur.Literal)
		return p.cur, false
	}
	return p.cur, true
}

// resumeAfterLiteral repositions the lexer at (offset,line,col) — just
// past a literal block's closing '}' — and fetches the first real
// token of whatever follows.
func (p *Parser) resumeAfterLiteral(offset, line, col int) {
	p.lex.Reset(offset, line, col)
	p.advance()
}
