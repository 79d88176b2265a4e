package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tangramlang/tangram/internal/token"
)

func tokenize(t *testing.T, input string) []token.Token {
	t.Helper()
	l := New(input, 0)
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func TestNextToken_Punctuation(t *testing.T) {
	toks := tokenize(t, `, . = : ; ( ) { } [ ] $ ?`)
	want := []token.Type{
		token.COMMA, token.DOT, token.ASSIGN, token.COLON, token.SEMI,
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.LBRACKET, token.RBRACKET, token.DOLLAR, token.QUESTION, token.EOF,
	}
	require.Len(t, toks, len(want))
	for i, w := range want {
		require.Equalf(t, w, toks[i].Type, "token %d", i)
	}
}

func TestNextToken_Compound(t *testing.T) {
	toks := tokenize(t, `:= <= >= == != && ||`)
	want := []token.Type{token.DEFINE, token.LE, token.GE, token.EQ, token.NEQ, token.AND, token.OR, token.EOF}
	require.Len(t, toks, len(want))
	for i, w := range want {
		require.Equalf(t, w, toks[i].Type, "token %d", i)
	}
}

func TestNextToken_IdentifierVsKeyword(t *testing.T) {
	toks := tokenize(t, `generator foo pattern sum x_1`)
	require.Equal(t, token.GENERATOR, toks[0].Type)
	require.Equal(t, token.IDENT, toks[1].Type)
	require.Equal(t, "foo", toks[1].Literal)
	require.Equal(t, token.PATTERN, toks[2].Type)
	require.Equal(t, token.SUM, toks[3].Type)
	require.Equal(t, token.IDENT, toks[4].Type)
}

func TestNextToken_StringEscapes(t *testing.T) {
	toks := tokenize(t, `"hello\nworld" "a\"b"`)
	require.Equal(t, "hello\nworld", toks[0].Literal)
	require.Equal(t, `a"b`, toks[1].Literal)
}

func TestNextToken_UnterminatedString(t *testing.T) {
	l := New(`"abc`, 0)
	_, err := l.NextToken()
	require.Error(t, err)
}

func TestWhitespace_IndentationUnits(t *testing.T) {
	// One tab and one run of four spaces both count as one indent unit.
	l := New("\n\t\n    x", 0)
	tok, err := l.NextToken()
	require.NoError(t, err)
	require.Equal(t, token.IDENT, tok.Type)
	require.Equal(t, 2, tok.Leading.Newlines)
	require.Equal(t, 1, tok.Leading.Indent)
}

func TestWhitespace_TrailingSpacesAfterIndent(t *testing.T) {
	l := New("\n    x  y", 0)
	tok, err := l.NextToken()
	require.NoError(t, err)
	require.Equal(t, "x", tok.Literal)
	require.Equal(t, 1, tok.Leading.Indent)
	require.Equal(t, 0, tok.Leading.Spaces)

	tok2, err := l.NextToken()
	require.NoError(t, err)
	require.Equal(t, "y", tok2.Literal)
	require.Equal(t, 0, tok2.Leading.Newlines)
	require.Equal(t, 2, tok2.Leading.Spaces)
}

func TestNextToken_Number(t *testing.T) {
	toks := tokenize(t, `42 007`)
	require.Equal(t, token.INT, toks[0].Type)
	require.Equal(t, "42", toks[0].Literal)
	require.Equal(t, "007", toks[1].Literal)
}
