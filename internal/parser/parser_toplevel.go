package parser

import (
	"strings"

	"github.com/tangramlang/tangram/internal/ast"
	"github.com/tangramlang/tangram/internal/token"
)

// peekTokenAt tokenizes starting at raw cursor c using a throwaway copy
// of the lexer, without disturbing p.lex or the real token stream. Used
// by the top-level scanner to recognize a construct keyword before
// deciding whether a line is code or literal output text.
func (p *Parser) peekTokenAt(c cursor) token.Token {
	scratch := *p.lex
	scratch.Reset(c.pos, c.line, c.col)
	tok, err := scratch.NextToken()
	if err != nil {
		return token.Token{Type: token.EOF}
	}
	return tok
}

// peekTwoAt is like peekTokenAt but also returns the token following
// the first one, for the `name :`/`name :=` top-level declaration
// lookahead.
func (p *Parser) peekTwoAt(c cursor) (token.Token, token.Token) {
	scratch := *p.lex
	scratch.Reset(c.pos, c.line, c.col)
	first, err := scratch.NextToken()
	if err != nil {
		return token.Token{Type: token.EOF}, token.Token{Type: token.EOF}
	}
	second, err := scratch.NextToken()
	if err != nil {
		second = token.Token{Type: token.EOF}
	}
	return first, second
}

// enterTokenModeAt repositions the real lexer/parser at c and fetches
// the first token there.
func (p *Parser) enterTokenModeAt(c cursor) {
	p.lex.Reset(c.pos, c.line, c.col)
	p.advance()
}

// cursorAfterCur returns the raw cursor matching wherever the token
// stream currently sits, i.e. right before p.cur. Used to hand control
// back to raw scanning once a token-mode construct has been parsed.
func (p *Parser) cursorAfterCur() cursor {
	return cursor{pos: p.cur.Pos.Offset, line: p.cur.Pos.Line, col: p.cur.Pos.Column}
}

// ParseProgram parses an entire source file (spec.md §6 "Source file
// format"): a sequence of directive/include/pattern/sum/generator/
// top-level-declaration constructs, interleaved with free literal
// output text and `${...}` placeholders — the file is scanned the same
// way as any literal block's body, except a construct keyword at the
// start of a line is recognized and switches into token-mode parsing
// instead of being treated as output (grounded in the original
// implementation's parse_single_statement_impl, which tries
// parse_generator/parse_type_definition before falling back to other
// statement kinds).
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{File: p.fileName}
	body := &ast.LiteralBlock{}
	c := cursor{pos: 0, line: 1, col: 1}

	for {
		ws, afterWS := p.measureWhitespace(c)
		if afterWS.pos >= len(p.src) {
			break
		}

		if handled, next := p.tryTopLevelConstruct(prog, afterWS); handled {
			c = next
			continue
		}

		seg := &ast.Segment{Whitespace: ws}
		body.Segments = append(body.Segments, seg)
		c = p.scanTopLevelLine(seg, afterWS)
	}

	prog.Body = body
	return prog
}

// tryTopLevelConstruct recognizes a directive/include/pattern/sum/
// generator/declaration starting at c. On a match it parses the
// construct fully (in token mode) and returns the cursor positioned
// right after it.
func (p *Parser) tryTopLevelConstruct(prog *ast.Program, c cursor) (bool, cursor) {
	tok := p.peekTokenAt(c)
	switch tok.Type {
	case token.DIRECTIVE:
		p.enterTokenModeAt(c)
		prog.Directives = append(prog.Directives, p.parseDirective())
		return true, p.cursorAfterCur()
	case token.INCLUDE:
		p.enterTokenModeAt(c)
		prog.Includes = append(prog.Includes, p.parseInclude())
		return true, p.cursorAfterCur()
	case token.PATTERN:
		p.enterTokenModeAt(c)
		prog.Patterns = append(prog.Patterns, p.parsePatternDef())
		return true, p.cursorAfterCur()
	case token.SUM:
		p.enterTokenModeAt(c)
		prog.Sums = append(prog.Sums, p.parseSumDef())
		return true, p.cursorAfterCur()
	case token.GENERATOR:
		p.enterTokenModeAt(c)
		prog.Generators = append(prog.Generators, p.parseGeneratorDef())
		return true, p.cursorAfterCur()
	case token.IDENT:
		_, second := p.peekTwoAt(c)
		if second.Type == token.COLON {
			// `name : Type` needs a type name after the colon; any other
			// token (e.g. "price: $$5") leaves the line as literal text.
			switch p.peekTokenAt(cursor{pos: second.Pos.Offset + 1, line: second.Pos.Line, col: second.Pos.Column + 1}).Type {
			case token.IDENT, token.INT_KW, token.BOOL_KW, token.STRING_KW:
			default:
				return false, c
			}
		}
		if second.Type == token.COLON || second.Type == token.DEFINE {
			p.enterTokenModeAt(c)
			decl := p.parseDeclStatement().(*ast.DeclStmt)
			if p.curIs(token.SEMI) {
				p.advance()
			}
			prog.TopDecls = append(prog.TopDecls, decl)
			return true, p.cursorAfterCur()
		}
	}
	return false, c
}

func (p *Parser) parseDirective() *ast.Directive {
	tok := p.cur
	p.advance()
	name, _ := p.expect(token.STRING)
	if p.curIs(token.SEMI) {
		p.advance()
	}
	return &ast.Directive{Token: tok, Name: p.intern(name.Literal)}
}

func (p *Parser) parseInclude() *ast.IncludeStmt {
	tok := p.cur
	p.advance()
	path, _ := p.expect(token.STRING)
	if p.curIs(token.SEMI) {
		p.advance()
	}
	return &ast.IncludeStmt{Token: tok, Path: path.Literal}
}

// parsePatternDef parses `pattern Name: <entries>;`. The entries (raw
// words vs. `{field:Type quantifier}` slots) are parsed here into
// ast.MatchEntry values by parseMatchEntries, grounded on the original's
// parse_pattern_type_definition / parse_type_definition_field;
// internal/pattern only matches input against those entries.
func (p *Parser) parsePatternDef() *ast.PatternDef {
	tok := p.cur
	p.advance()
	name, _ := p.expect(token.IDENT)
	p.expect(token.COLON)

	entries := p.parseMatchEntries()
	if p.curIs(token.SEMI) {
		p.advance()
	}
	return &ast.PatternDef{Token: tok, Name: p.intern(name.Literal), Entries: entries}
}

// parseMatchEntries consumes entries up to the next top-level ';',
// alternating between `{...}` field specifiers (parsed token-wise) and
// runs of raw words (one EntryRaw per token, stored as plain text). The
// type specifier and quantifier inside `{}` are parsed by
// parseMatchField; custom entry names are looked up by internal/pattern
// when matching.
func (p *Parser) parseMatchEntries() []*ast.MatchEntry {
	var entries []*ast.MatchEntry
	for !p.curIs(token.SEMI) && !p.curIs(token.EOF) {
		if p.curIs(token.LBRACE) {
			entries = append(entries, p.parseMatchField())
			continue
		}
		raw := p.cur.Literal
		if raw == "" {
			raw = p.cur.Type.String()
		}
		entries = append(entries, &ast.MatchEntry{Token: p.cur, Kind: ast.EntryRaw, RawText: raw})
		p.advance()
	}
	return entries
}

func (p *Parser) parseMatchField() *ast.MatchEntry {
	tok := p.cur
	p.advance() // consume '{'
	name, _ := p.expect(token.IDENT)
	entry := &ast.MatchEntry{Token: tok, Kind: ast.EntryWord, FieldName: p.intern(name.Literal), Min: 1, Max: 1}
	if p.curIs(token.COLON) {
		p.advance()
		typeTok := p.cur
		p.advance()
		entry.FieldType = typeTok.Literal
		switch typeTok.Type {
		case token.INT_KW:
			entry.Kind = ast.EntryInt
		case token.BOOL_KW:
			entry.Kind = ast.EntryBool
		case token.STRING_KW:
			entry.Kind = ast.EntryString
		default:
			switch typeTok.Literal {
			case "word":
				entry.Kind = ast.EntryWord
			case "expression":
				entry.Kind = ast.EntryExpression
			default:
				entry.Kind = ast.EntryCustom
				entry.CustomName = typeTok.Literal
			}
		}
	}
	switch p.cur.Type {
	case token.STAR:
		entry.Min, entry.Max = 0, -1
		p.advance()
	case token.PLUS:
		entry.Min, entry.Max = 1, -1
		p.advance()
	case token.QUESTION:
		entry.Min, entry.Max = 0, 1
		p.advance()
	case token.LBRACE:
		p.advance()
		min, _ := p.expect(token.INT)
		entry.Min = atoiOrZero(min.Literal)
		entry.Max = entry.Min
		if p.curIs(token.COMMA) {
			p.advance()
			if p.curIs(token.RBRACE) {
				entry.Max = -1
			} else {
				max, _ := p.expect(token.INT)
				entry.Max = atoiOrZero(max.Literal)
			}
		}
		p.expect(token.RBRACE)
	}
	p.expect(token.RBRACE)
	return entry
}

func atoiOrZero(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0
		}
		n = n*10 + int(s[i]-'0')
	}
	return n
}

func (p *Parser) parseSumDef() *ast.SumDef {
	tok := p.cur
	p.advance()
	name, _ := p.expect(token.IDENT)
	p.expect(token.COLON)
	var members []string
	for {
		member, ok := p.expect(token.IDENT)
		if !ok {
			break
		}
		members = append(members, member.Literal)
		if p.curIs(token.BITOR) {
			p.advance()
			continue
		}
		break
	}
	if p.curIs(token.SEMI) {
		p.advance()
	}
	return &ast.SumDef{Token: tok, Name: p.intern(name.Literal), Members: members}
}

func (p *Parser) parseGeneratorDef() *ast.GeneratorDef {
	tok := p.cur
	p.advance()
	name, _ := p.expect(token.IDENT)
	p.expect(token.LPAREN)

	var params []*ast.Param
	if !p.curIs(token.RPAREN) {
		for {
			param := p.parseParam()
			params = append(params, param)
			if p.curIs(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
	}
	p.expect(token.RPAREN)

	body := p.parseNestedLiteralBlock()
	return &ast.GeneratorDef{Token: tok, Name: p.intern(name.Literal), Params: params, Body: body, Scope: -1}
}

func (p *Parser) parseParam() *ast.Param {
	tok := p.cur
	name, _ := p.expect(token.IDENT)
	param := &ast.Param{Token: tok, Name: p.intern(name.Literal)}
	switch {
	case p.curIs(token.DEFINE):
		p.advance()
		param.Default = p.ParseExpression()
	case p.curIs(token.COLON):
		p.advance()
		param.Declared = p.parseTypeExpr()
		if p.curIs(token.ASSIGN) {
			p.advance()
			param.Default = p.ParseExpression()
		}
	default:
		p.errorf(tok, "expected ':' or ':=' after parameter name %q", name.Literal)
	}
	return param
}

// scanTopLevelLine appends the literal content of one line to seg,
// handling escapes and `${...}`/`$stmt` placeholders exactly like
// parseLiteralBody's inner loop, but with no enclosing brace to balance
// (the file itself is the implicit outermost literal block). Returns
// the cursor positioned right after the line's terminating newline (or
// at EOF).
func (p *Parser) scanTopLevelLine(seg *ast.Segment, start cursor) cursor {
	c := start
	textStart := c
	textLine, textCol := c.line, c.col

	flush := func(end cursor) {
		if end.pos > textStart.pos {
			raw := p.src[textStart.pos:end.pos]
			trimmed := raw
			if b := p.byteAt(end); b != '$' && b != '\\' {
				trimmed = strings.TrimRight(raw, " \t")
			}
			if trimmed != "" {
				seg.Statements = append(seg.Statements, &ast.LiteralStmt{
					Token: token.Token{Pos: token.Position{Line: textLine, Column: textCol, File: p.fileIndex}},
					Text:  trimmed,
				})
			}
		}
	}

	for {
		b := p.byteAt(c)
		switch {
		case b == 0 || b == '\n':
			flush(c)
			if b == '\n' {
				c = p.advanceCursor(c)
			}
			return c
		case b == '$' && p.byteAt(p.advanceCursor(c)) == '$':
			flush(c)
			c = p.advanceCursor(p.advanceCursor(c))
			textStart, textLine, textCol = c, c.line, c.col
			seg.Statements = append(seg.Statements, &ast.LiteralStmt{
				Token: token.Token{Pos: token.Position{Line: textLine, Column: textCol, File: p.fileIndex}},
				Text:  "$",
			})
		case b == '\\' && p.byteAt(p.advanceCursor(c)) == '$':
			flush(c)
			c = p.advanceCursor(p.advanceCursor(c))
			textStart, textLine, textCol = c, c.line, c.col
			seg.Statements = append(seg.Statements, &ast.LiteralStmt{
				Token: token.Token{Pos: token.Position{Line: textLine, Column: textCol, File: p.fileIndex}},
				Text:  "$",
			})
		case b == '$':
			flush(c)
			c = p.advanceCursor(c)
			stmts, after := p.parsePlaceholder(c)
			seg.Statements = append(seg.Statements, stmts...)
			c = after
			textStart, textLine, textCol = c, c.line, c.col
		default:
			c = p.advanceCursor(c)
		}
	}
}
