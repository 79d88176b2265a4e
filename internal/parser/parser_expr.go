package parser

import (
	"strconv"

	"github.com/tangramlang/tangram/internal/ast"
	"github.com/tangramlang/tangram/internal/token"
)

// ParseExpression parses a full expression, including a top-level
// assignment (spec.md §4.4 Assignment semantics treats `=` as an
// expression so it can appear in an expression statement).
func (p *Parser) ParseExpression() ast.Expression {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() ast.Expression {
	left := p.parseOr()
	if p.curIs(token.ASSIGN) {
		tok := p.cur
		p.advance()
		right := p.parseAssignment()
		return &ast.AssignExpr{Token: tok, Target: left, Value: right}
	}
	return left
}

func (p *Parser) parseOr() ast.Expression {
	left := p.parseAnd()
	for p.curIs(token.OR) {
		tok := p.cur
		p.advance()
		right := p.parseAnd()
		left = &ast.BinaryExpr{Token: tok, Op: ast.OpOr, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expression {
	left := p.parseEquality()
	for p.curIs(token.AND) {
		tok := p.cur
		p.advance()
		right := p.parseEquality()
		left = &ast.BinaryExpr{Token: tok, Op: ast.OpAnd, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseEquality() ast.Expression {
	left := p.parseComparison()
	for p.curIs(token.EQ) || p.curIs(token.NEQ) {
		tok := p.cur
		op := ast.OpEq
		if tok.Type == token.NEQ {
			op = ast.OpNeq
		}
		p.advance()
		right := p.parseComparison()
		left = &ast.BinaryExpr{Token: tok, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseComparison() ast.Expression {
	left := p.parseAdditive()
	for p.curIs(token.LT) || p.curIs(token.LE) || p.curIs(token.GT) || p.curIs(token.GE) {
		tok := p.cur
		var op ast.BinOp
		switch tok.Type {
		case token.LT:
			op = ast.OpLt
		case token.LE:
			op = ast.OpLe
		case token.GT:
			op = ast.OpGt
		case token.GE:
			op = ast.OpGe
		}
		p.advance()
		right := p.parseAdditive()
		left = &ast.BinaryExpr{Token: tok, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expression {
	left := p.parseMultiplicative()
	for p.curIs(token.PLUS) || p.curIs(token.MINUS) || p.curIs(token.BITOR) || p.curIs(token.BITAND) {
		tok := p.cur
		var op ast.BinOp
		switch tok.Type {
		case token.PLUS:
			op = ast.OpAdd
		case token.MINUS:
			op = ast.OpSub
		case token.BITOR:
			op = ast.OpBitOr
		case token.BITAND:
			op = ast.OpBitAnd
		}
		p.advance()
		right := p.parseMultiplicative()
		left = &ast.BinaryExpr{Token: tok, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expression {
	left := p.parseUnary()
	for p.curIs(token.STAR) || p.curIs(token.SLASH) || p.curIs(token.PERCENT) {
		tok := p.cur
		var op ast.BinOp
		switch tok.Type {
		case token.STAR:
			op = ast.OpMul
		case token.SLASH:
			op = ast.OpDiv
		case token.PERCENT:
			op = ast.OpMod
		}
		p.advance()
		right := p.parseUnary()
		left = &ast.BinaryExpr{Token: tok, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expression {
	if p.curIs(token.NOT) || p.curIs(token.MINUS) {
		tok := p.cur
		op := ast.OpNot
		if tok.Type == token.MINUS {
			op = ast.OpNeg
		}
		p.advance()
		right := p.parseUnary()
		return &ast.UnaryExpr{Token: tok, Op: op, Right: right}
	}
	return p.parsePostfix()
}

// parsePostfix handles call / subscript / dot chain / instanceof, left
// to right, any number of times (spec.md §4.3 precedence chain).
func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	for {
		switch {
		case p.curIs(token.DOT):
			tok := p.cur
			p.advance()
			name, ok := p.expect(token.IDENT)
			if !ok {
				return expr
			}
			expr = &ast.DotExpr{Token: tok, Left: expr, Name: p.intern(name.Literal)}
		case p.curIs(token.LPAREN):
			expr = p.parseCall(expr)
		case p.curIs(token.LBRACKET):
			tok := p.cur
			p.advance()
			idx := p.ParseExpression()
			p.expect(token.RBRACKET)
			expr = &ast.IndexExpr{Token: tok, Left: expr, Index: idx}
		case p.curIs(token.INSTANCEOF):
			tok := p.cur
			p.advance()
			name, ok := p.expect(token.IDENT)
			if !ok {
				return expr
			}
			expr = &ast.InstanceofExpr{Token: tok, Left: expr, PatternName: p.intern(name.Literal)}
		default:
			return expr
		}
	}
}

func (p *Parser) parseCall(callee ast.Expression) ast.Expression {
	tok := p.cur
	p.advance() // consume (
	var args []ast.Expression
	var names []string
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		name := ""
		if p.curIs(token.IDENT) && p.peekIs(token.ASSIGN) {
			name = p.cur.Literal
			p.advance()
			p.advance()
		}
		args = append(args, p.ParseExpression())
		names = append(names, name)
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN)

	if dot, ok := callee.(*ast.DotExpr); ok {
		return &ast.CallExpr{Token: tok, Callee: dot, Args: args, ArgNames: names, Receiver: dot.Left}
	}
	return &ast.CallExpr{Token: tok, Callee: callee, Args: args, ArgNames: names}
}

func (p *Parser) parsePrimary() ast.Expression {
	switch p.cur.Type {
	case token.INT:
		tok := p.cur
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			p.errorf(tok, "invalid integer literal %q", tok.Literal)
		}
		p.advance()
		return &ast.IntLiteral{Token: tok, Value: v}
	case token.TRUE, token.FALSE:
		tok := p.cur
		p.advance()
		return &ast.BoolLiteral{Token: tok, Value: tok.Type == token.TRUE}
	case token.STRING:
		tok := p.cur
		p.advance()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal}
	case token.IDENT:
		tok := p.cur
		p.advance()
		return &ast.Identifier{Token: tok, Name: p.intern(tok.Literal)}
	case token.RANGE:
		return p.parseRange()
	case token.LPAREN:
		p.advance()
		inner := p.ParseExpression()
		p.expect(token.RPAREN)
		return inner
	case token.LBRACKET:
		tok := p.cur
		p.advance()
		var elems []ast.Expression
		for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
			elems = append(elems, p.ParseExpression())
			if p.curIs(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
		p.expect(token.RBRACKET)
		return &ast.ArrayLiteral{Token: tok, Elements: elems}
	default:
		p.errorf(p.cur, "unexpected token %s %q in expression", p.cur.Type, p.cur.Literal)
		tok := p.cur
		p.advance()
		return &ast.Identifier{Token: tok, Name: "<error>"}
	}
}

// parseRange parses the free function forms `range(end)` and
// `range(begin,end)` as a first-class RangeExpr so the evaluator's
// for-loop can special-case it (spec.md §4.6).
func (p *Parser) parseRange() ast.Expression {
	tok := p.cur
	p.advance()
	p.expect(token.LPAREN)
	first := p.ParseExpression()
	var begin, end ast.Expression
	if p.curIs(token.COMMA) {
		p.advance()
		begin = first
		end = p.ParseExpression()
	} else {
		end = first
	}
	p.expect(token.RPAREN)
	return &ast.RangeExpr{Token: tok, Begin: begin, End: end}
}
