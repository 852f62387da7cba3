package lexer_test

import (
	"testing"

	"github.com/aledsdavies/oakc/internal/frontend/lexer"
	"github.com/stretchr/testify/assert"
)

func tokenize(src string) []lexer.Token {
	lx := lexer.New(src, nil)
	var toks []lexer.Token
	for {
		t := lx.Next()
		toks = append(toks, t)
		if t.Kind == lexer.EOF {
			return toks
		}
	}
}

func kinds(toks []lexer.Token) []lexer.Kind {
	out := make([]lexer.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexRule(t *testing.T) {
	toks := tokenize(`a = "x"? b* !c`)
	assert.Equal(t, []lexer.Kind{
		lexer.IDENT, lexer.EQUALS, lexer.STRING, lexer.QUESTION,
		lexer.IDENT, lexer.STAR, lexer.BANG, lexer.IDENT, lexer.EOF,
	}, kinds(toks))
}

func TestLexSkipsCommentsAndWhitespace(t *testing.T) {
	toks := tokenize("a = b # this is a comment\n    / c")
	assert.Equal(t, []lexer.Kind{
		lexer.IDENT, lexer.EQUALS, lexer.IDENT, lexer.SLASH, lexer.IDENT, lexer.EOF,
	}, kinds(toks))
}

func TestLexStringEscapes(t *testing.T) {
	toks := tokenize(`"a\nb\tc"`)
	assert.Equal(t, lexer.STRING, toks[0].Kind)
	assert.Equal(t, "a\nb\tc", toks[0].Value)
}

func TestLexCharClass(t *testing.T) {
	toks := tokenize(`[a-zA-Z_]`)
	assert.Equal(t, lexer.CHARCLASS, toks[0].Kind)
	assert.Equal(t, "a-zA-Z_", toks[0].Value)
}

func TestLexUnterminatedStringIsIllegal(t *testing.T) {
	toks := tokenize(`"abc`)
	assert.Equal(t, lexer.ILLEGAL, toks[0].Kind)
}

func TestLexUnterminatedCharClassIsIllegal(t *testing.T) {
	toks := tokenize(`[abc`)
	assert.Equal(t, lexer.ILLEGAL, toks[0].Kind)
}

func TestLexTracksLineAndColumn(t *testing.T) {
	toks := tokenize("a\n  b")
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 1, toks[0].Column)
	assert.Equal(t, 2, toks[1].Line)
	assert.Equal(t, 3, toks[1].Column)
}
