package parser

import (
	"strconv"

	"github.com/tangramlang/tangram/internal/ast"
	"github.com/tangramlang/tangram/internal/token"
)

// parseStatementAndTerminator parses exactly one statement starting at
// p.cur and consumes its trailing ';' if one is present. if/for bodies
// consume their own closing '}' and never take a ';'.
func (p *Parser) parseStatementAndTerminator() ast.Statement {
	var stmt ast.Statement
	switch p.cur.Type {
	case token.IF:
		return p.parseIfStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.BREAK, token.CONTINUE:
		stmt = p.parseBreakContinue()
	case token.RETURN:
		stmt = p.parseReturnStatement()
	case token.COMMA:
		stmt = p.parseCommaStatement()
	case token.IDENT:
		if p.peekIs(token.COLON) || p.peekIs(token.DEFINE) {
			stmt = p.parseDeclStatement()
		} else {
			stmt = p.parseExprStatement()
		}
	default:
		stmt = p.parseExprStatement()
	}
	if p.curIs(token.SEMI) {
		p.advance()
	}
	return stmt
}

func (p *Parser) parseIfStatement() ast.Statement {
	tok := p.cur
	p.advance()
	p.expect(token.LPAREN)
	cond := p.ParseExpression()
	p.expect(token.RPAREN)
	then := p.parseNestedLiteralBlock()
	stmt := &ast.IfStmt{Token: tok, Cond: cond, Then: then, ThenScope: -1, ElseScope: -1}
	if p.curIs(token.ELSE) {
		p.advance()
		stmt.Else = p.parseNestedLiteralBlock()
	}
	return stmt
}

func (p *Parser) parseForStatement() ast.Statement {
	tok := p.cur
	p.advance()
	p.expect(token.LPAREN)
	name, _ := p.expect(token.IDENT)
	p.expect(token.IN)
	container := p.ParseExpression()
	p.expect(token.RPAREN)
	body := p.parseNestedLiteralBlock()
	return &ast.ForStmt{Token: tok, VarName: p.intern(name.Literal), Container: container, Body: body, Scope: -1}
}

// parseNestedLiteralBlock parses a '{ ... }' body appearing as the body
// of an if/for/generator, switching the parser into raw literal-text
// scanning for its contents.
func (p *Parser) parseNestedLiteralBlock() *ast.LiteralBlock {
	tok, ok := p.expectLiteralOpen()
	if !ok {
		return &ast.LiteralBlock{Token: tok}
	}
	start := cursor{pos: tok.Pos.Offset + 1, line: tok.Pos.Line, col: tok.Pos.Column + 1}
	return p.parseLiteralBody(tok, start, 0)
}

func (p *Parser) parseBreakContinue() ast.Statement {
	tok := p.cur
	p.advance()
	level := 0
	if p.curIs(token.INT) {
		n, err := strconv.Atoi(p.cur.Literal)
		if err != nil || n < 0 {
			p.errorf(p.cur, "invalid break/continue level %q", p.cur.Literal)
		}
		level = n
		p.advance()
	}
	if tok.Type == token.BREAK {
		return &ast.BreakStmt{Token: tok, Level: level}
	}
	return &ast.ContinueStmt{Token: tok, Level: level}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	tok := p.cur
	p.advance()
	var val ast.Expression
	if !p.curIs(token.SEMI) && !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		val = p.ParseExpression()
	}
	return &ast.ReturnStmt{Token: tok, Value: val}
}

// parseCommaStatement parses `,` or `,N` — a back-reference to an
// enclosing for loop's "more iterations remain" state (spec.md §3/§4.3).
// TrailingSpace is read straight from the source text: it is set when a
// space or tab follows the statement, or follows the '}' that closes
// its `${...}` group.
func (p *Parser) parseCommaStatement() ast.Statement {
	tok := p.cur
	p.advance()
	level := 0
	end := tok.Pos.Offset + len(tok.Literal)
	if len(tok.Literal) == 0 {
		end = tok.Pos.Offset + 1
	}
	if p.curIs(token.INT) {
		n, err := strconv.Atoi(p.cur.Literal)
		if err != nil || n < 0 {
			p.errorf(p.cur, "invalid comma-statement loop reference %q", p.cur.Literal)
		}
		level = n
		end = p.cur.Pos.Offset + len(p.cur.Literal)
		p.advance()
	}
	if end < len(p.src) && p.src[end] == '}' {
		end++
	}
	trailingSpace := end < len(p.src) && (p.src[end] == ' ' || p.src[end] == '\t')
	return &ast.CommaStmt{Token: tok, LoopLevel: level, TrailingSpace: trailingSpace}
}

func (p *Parser) parseDeclStatement() ast.Statement {
	tok := p.cur
	name := p.cur.Literal
	p.advance()
	stmt := &ast.DeclStmt{Token: tok, Name: name}
	if p.curIs(token.DEFINE) {
		p.advance()
		stmt.Inferred = true
		stmt.Init = p.ParseExpression()
		return stmt
	}
	p.expect(token.COLON)
	stmt.Declared = p.parseTypeExpr()
	if p.curIs(token.ASSIGN) {
		p.advance()
		stmt.Init = p.ParseExpression()
	}
	return stmt
}

func (p *Parser) parseTypeExpr() *ast.TypeExpr {
	tok := p.cur
	name := ""
	switch p.cur.Type {
	case token.INT_KW:
		name = "int"
	case token.BOOL_KW:
		name = "bool"
	case token.STRING_KW:
		name = "string"
	case token.IDENT:
		name = p.cur.Literal
	default:
		p.errorf(p.cur, "expected type name, got %s %q", p.cur.Type, p.cur.Literal)
	}
	p.advance()
	arrayLevel := 0
	for p.curIs(token.LBRACKET) {
		p.advance()
		p.expect(token.RBRACKET)
		arrayLevel++
	}
	return &ast.TypeExpr{Token: tok, Name: name, ArrayLevel: arrayLevel}
}

// parseExprStatement parses a bare expression statement, including an
// optional trailing print-format spec introduced by a literal '$'
// (spec.md §4.3 "Expression `$` format spec"): `${expr$format}`.
// Because the literal scanner has already consumed the statement's
// leading '$', this second '$' is a plain DOLLAR token in the stream.
func (p *Parser) parseExprStatement() ast.Statement {
	tok := p.cur
	expr := p.ParseExpression()
	stmt := &ast.ExprStmt{Token: tok, Expr: expr}
	if _, isAssign := expr.(*ast.AssignExpr); !isAssign && p.curIs(token.DOLLAR) {
		stmt.Format = p.parseFormatSpec()
	}
	return stmt
}

// parseFormatSpec reads the raw format text directly from source
// between the '$' and the next ';' or '}', mirroring the original
// implementation's approach of handing that text to a print-formatting
// library rather than tokenizing it (spec.md §4.3).
func (p *Parser) parseFormatSpec() *ast.FormatSpec {
	start := p.cur.Pos.Offset + 1 // skip '$'
	end := start
	for end < len(p.src) && p.src[end] != ';' && p.src[end] != '}' {
		end++
	}
	raw := p.src[start:end]
	spec := parseFormatText(raw)

	// Resync the token stream to just past the consumed format text.
	line, col := p.cur.Pos.Line, p.cur.Pos.Column
	for i := start; i < end; i++ {
		if p.src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	p.lex.Reset(end, line, col)
	p.advance()
	return spec
}
