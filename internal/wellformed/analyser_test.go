package wellformed_test

import (
	"testing"

	"github.com/aledsdavies/oakc/internal/ast"
	"github.com/aledsdavies/oakc/internal/diag"
	"github.com/aledsdavies/oakc/internal/frontend/parser"
	"github.com/aledsdavies/oakc/internal/wellformed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyse(t *testing.T, src string) (*diag.CapturingSink, ast.Partial[*ast.Grammar]) {
	t.Helper()
	sink := diag.NewCapturingSink()
	g, ok := parser.Parse(src, sink)
	require.True(t, ok, "grammar must parse cleanly")
	require.Empty(t, sink.Diagnostics, "parsing must not itself report diagnostics")
	return sink, wellformed.Analyse(g, sink)
}

func TestLeftRecursionDetected(t *testing.T) {
	sink, verdict := analyse(t, `a = a "a" / "b"`)
	assert.True(t, verdict.IsNothing())
	require.True(t, sink.HasKind(diag.LeftRecursion))
}

func TestRightRecursionIsWellFormed(t *testing.T) {
	sink, verdict := analyse(t, `b = "a" b "b" / "b" b`)
	assert.True(t, verdict.IsValue())
	assert.Empty(t, sink.Diagnostics)
}

func TestMutualRecursionBrokenByConsumingRepeat(t *testing.T) {
	sink, verdict := analyse(t, `
g = . / !g1 . ;
g1 = . / "a"? g2 ;
g2 = "b"+ g
`)
	assert.True(t, verdict.IsValue())
	assert.Empty(t, sink.Diagnostics)
}

func TestNeverSucceed(t *testing.T) {
	sink, verdict := analyse(t, `m = !""`)
	assert.True(t, verdict.IsNothing())
	assert.True(t, sink.HasKind(diag.NeverSucceed))
}

func TestLoopRepeat(t *testing.T) {
	sink, verdict := analyse(t, `o = (!.)*`)
	assert.True(t, verdict.IsNothing())
	assert.True(t, sink.HasKind(diag.LoopRepeat))
}

func TestUnreachableBranch(t *testing.T) {
	sink, verdict := analyse(t, `t = ["a-z"]* / "A"+`)
	assert.True(t, verdict.IsNothing())
	require.True(t, sink.HasKind(diag.UnreachableBranch))
	var found bool
	for _, d := range sink.Diagnostics {
		if d.Kind == diag.UnreachableBranch {
			found = len(d.Notes) == 1
		}
	}
	assert.True(t, found, "unreachable branch diagnostic should carry exactly one span note")
}

func TestAlwaysSucceedNoConsume(t *testing.T) {
	sink, verdict := analyse(t, `v3 = (&"x")?`)
	assert.True(t, verdict.IsNothing())
	assert.True(t, sink.HasKind(diag.AlwaysSucceedNoConsume))
}

func TestErrorIdempotence(t *testing.T) {
	// registerError keeps a pathological expression to a single
	// diagnostic, however many times the analyser walks it.
	sink, _ := analyse(t, `m = !""`)
	count := 0
	for _, d := range sink.Diagnostics {
		if d.Kind == diag.NeverSucceed {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestSequenceConsumePropagation(t *testing.T) {
	// "x" always consumes, so by the time the sequence reaches the
	// recursive call to p, consumed_input is true and no left-recursion
	// error should fire even though p calls itself.
	sink, verdict := analyse(t, `p = "x" p / "y"`)
	assert.True(t, verdict.IsValue())
	assert.Empty(t, sink.Diagnostics)
}

func TestEmptyStringLiteralAsChoiceFallbackIsWellFormed(t *testing.T) {
	// Preserves the deliberate asymmetry: "" has never_consume=false,
	// so it is tolerated as a trailing choice fallback.
	sink, verdict := analyse(t, `q = "x" / ""`)
	assert.True(t, verdict.IsValue())
	assert.Empty(t, sink.Diagnostics)
}
