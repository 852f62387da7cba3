package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aledsdavies/oakc/internal/ast"
	"github.com/aledsdavies/oakc/internal/cache"
	"github.com/aledsdavies/oakc/internal/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashSourceIsStableAndSensitive(t *testing.T) {
	a := cache.HashSource(`a = "x"`)
	b := cache.HashSource(`a = "x"`)
	c := cache.HashSource(`a = "y"`)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestStoreThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grammar.oakc-cache")
	entry := cache.Entry{
		Hash:  "abc123",
		State: 0,
		Diagnostics: []diag.Diagnostic{{
			Kind:    diag.LeftRecursion,
			Span:    ast.Span{Start: ast.Position{Line: 1, Column: 1}},
			Message: "left recursion is not supported",
			Notes:   []diag.Note{{Span: ast.Span{Start: ast.Position{Line: 1, Column: 5}}, Message: "cycle here"}},
		}},
	}

	require.NoError(t, cache.Store(path, entry))

	got, ok := cache.Load(path)
	require.True(t, ok)
	assert.Equal(t, entry, got)
}

func TestLoadMissingFileIsCleanMiss(t *testing.T) {
	_, ok := cache.Load(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.False(t, ok)
}

func TestLoadCorruptFileIsCleanMiss(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt")
	require.NoError(t, os.WriteFile(path, []byte("not cbor"), 0o644))
	_, ok := cache.Load(path)
	assert.False(t, ok)
}
