package ast_test

import (
	"testing"

	"github.com/aledsdavies/oakc/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierEqualIgnoresSpan(t *testing.T) {
	a := ast.Identifier{Name: "rule", Span: ast.Span{Start: ast.Position{Line: 1, Column: 1}}}
	b := ast.Identifier{Name: "rule", Span: ast.Span{Start: ast.Position{Line: 9, Column: 9}}}
	assert.True(t, a.Equal(b))

	c := ast.Identifier{Name: "other", Span: a.Span}
	assert.False(t, a.Equal(c))
}

func TestGrammarLookupByName(t *testing.T) {
	exprs := []ast.Expression{{Kind: ast.StrLiteral, Str: "x"}}
	rules := []ast.Rule{{Name: ast.Identifier{Name: "a"}, ExprIndex: 0}}
	g := ast.NewGrammar(rules, exprs, nil, nil)

	r, ok := g.FindRuleByIdent("a")
	require.True(t, ok)
	assert.Equal(t, "a", r.Name.Name)

	_, ok = g.FindRuleByIdent("missing")
	assert.False(t, ok)

	idx, ok := g.ExpressionIndexOfRule("a")
	require.True(t, ok)
	assert.Equal(t, ast.StrLiteral, g.ExpressionOf(idx).Kind)
}

func TestGrammarRuleNamesPreservesDeclarationOrder(t *testing.T) {
	rules := []ast.Rule{
		{Name: ast.Identifier{Name: "c"}},
		{Name: ast.Identifier{Name: "a"}},
		{Name: ast.Identifier{Name: "b"}},
	}
	g := ast.NewGrammar(rules, nil, nil, nil)
	assert.Equal(t, []string{"c", "a", "b"}, g.RuleNames())
}

func TestExpressionKindString(t *testing.T) {
	assert.Equal(t, "Optional", ast.Optional.String())
	assert.Equal(t, "NotPredicate", ast.NotPredicate.String())
}
