package ast_test

import (
	"strconv"
	"testing"

	"github.com/aledsdavies/oakc/internal/ast"
	"github.com/stretchr/testify/assert"
)

func TestPartialDiscriminants(t *testing.T) {
	v := ast.Value(1)
	assert.True(t, v.IsValue())
	assert.False(t, v.IsFake())
	assert.False(t, v.IsNothing())

	f := ast.Fake(2)
	assert.True(t, f.IsFake())

	n := ast.Nothing[int]()
	assert.True(t, n.IsNothing())
}

func TestPartialGet(t *testing.T) {
	val, ok := ast.Value("x").Get()
	assert.True(t, ok)
	assert.Equal(t, "x", val)

	val, ok = ast.Fake("y").Get()
	assert.True(t, ok)
	assert.Equal(t, "y", val)

	_, ok = ast.Nothing[string]().Get()
	assert.False(t, ok)
}

func TestMapPartialPreservesDiscriminant(t *testing.T) {
	mapped := ast.MapPartial(ast.Value(3), strconv.Itoa)
	assert.True(t, mapped.IsValue())
	got, _ := mapped.Get()
	assert.Equal(t, "3", got)

	mapped = ast.MapPartial(ast.Fake(4), strconv.Itoa)
	assert.True(t, mapped.IsFake())

	mapped = ast.MapPartial(ast.Nothing[int](), strconv.Itoa)
	assert.True(t, mapped.IsNothing())
	got, ok := mapped.Get()
	assert.False(t, ok)
	assert.Equal(t, "", got)
}
