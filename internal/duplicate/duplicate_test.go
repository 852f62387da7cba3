package duplicate_test

import (
	"testing"

	"github.com/aledsdavies/oakc/internal/ast"
	"github.com/aledsdavies/oakc/internal/diag"
	"github.com/aledsdavies/oakc/internal/duplicate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rule(name string, line int) ast.Rule {
	span := ast.Span{Start: ast.Position{Line: line, Column: 1}, End: ast.Position{Line: line, Column: 1 + len(name)}}
	return ast.Rule{Name: ast.Identifier{Name: name, Span: span}, RuleSpan: span}
}

func TestDetectNoDuplicates(t *testing.T) {
	sink := diag.NewCapturingSink()
	items := []ast.Rule{rule("a", 1), rule("b", 2), rule("c", 3)}

	result := duplicate.Detect(sink, items, "rule")

	assert.True(t, result.IsValue())
	got, _ := result.Get()
	assert.Equal(t, items, got)
	assert.Empty(t, sink.Diagnostics)
}

func TestDetectRetainsFirstOccurrenceInOrder(t *testing.T) {
	sink := diag.NewCapturingSink()
	a1, b, a2, c := rule("a", 1), rule("b", 2), rule("a", 3), rule("c", 4)
	items := []ast.Rule{a1, b, a2, c}

	result := duplicate.Detect(sink, items, "rule")

	assert.True(t, result.IsFake())
	got, ok := result.Get()
	require.True(t, ok)
	assert.Equal(t, []ast.Rule{a1, b, c}, got, "first occurrence retained, later duplicate discarded, no reordering")

	require.Len(t, sink.Diagnostics, 1)
	d := sink.Diagnostics[0]
	assert.Equal(t, diag.DuplicateDefinition, d.Kind)
	assert.Equal(t, a2.RuleSpan, d.Span, "diagnostic primary span is the current (duplicate) item")
	require.NotEmpty(t, d.Notes)
	assert.Equal(t, a1.RuleSpan, d.Notes[0].Span, "first note points at the prior definition")
}

func TestDetectEachDuplicateAfterFirstReported(t *testing.T) {
	sink := diag.NewCapturingSink()
	items := []ast.Rule{rule("a", 1), rule("a", 2), rule("a", 3)}

	result := duplicate.Detect(sink, items, "rule")

	assert.True(t, result.IsFake())
	got, _ := result.Get()
	assert.Len(t, got, 1)
	assert.Len(t, sink.Diagnostics, 2, "two later duplicates after the first occurrence each get a diagnostic")
}
