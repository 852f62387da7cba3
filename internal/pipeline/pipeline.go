// Package pipeline wires the front end, duplicate detector,
// well-formedness analyser, and analysis cache into the single
// sequence the CLI drives: surface grammar -> AST -> duplicate check
// -> well-formedness check.
package pipeline

import (
	"github.com/aledsdavies/oakc/internal/ast"
	"github.com/aledsdavies/oakc/internal/cache"
	"github.com/aledsdavies/oakc/internal/diag"
	"github.com/aledsdavies/oakc/internal/duplicate"
	"github.com/aledsdavies/oakc/internal/frontend/parser"
	"github.com/aledsdavies/oakc/internal/wellformed"
)

// Result is the outcome of running the full pipeline once.
type Result struct {
	Grammar  *ast.Grammar
	State    ast.PartialState
	Sink     *diag.CapturingSink
	CacheHit bool
}

// Check parses src, deduplicates its rules, and runs well-formedness
// analysis, consulting cacheFile first when useCache is true. The
// cache only ever short-circuits the well-formedness pass: parsing
// and duplicate detection always run, since they are needed to
// reconstruct a Grammar value for the caller regardless of the cached
// verdict.
func Check(src string, cacheFile string, useCache bool) Result {
	sink := diag.NewCapturingSink()

	g, parseOK := parser.Parse(src, sink)
	if !parseOK {
		return Result{Grammar: g, State: ast.StateNothing, Sink: sink}
	}

	deduped := duplicate.Detect[ast.Rule](sink, g.Rules, "rule")
	rules, usable := deduped.Get()
	if !usable {
		return Result{Grammar: g, State: ast.StateNothing, Sink: sink}
	}
	g = ast.NewGrammar(rules, g.Expressions, g.Functions, g.OtherItems)

	hash := cache.HashSource(src)
	if useCache && cacheFile != "" {
		if entry, ok := cache.Load(cacheFile); ok && entry.Hash == hash {
			for _, d := range entry.Diagnostics {
				diag.Replay(sink, d)
			}
			return Result{Grammar: g, State: ast.PartialState(entry.State), Sink: sink, CacheHit: true}
		}
	}

	before := len(sink.Diagnostics)
	verdict := wellformed.Analyse(g, sink)
	state := verdictState(verdict, deduped)

	if useCache && cacheFile != "" {
		_ = cache.Store(cacheFile, cache.Entry{Hash: hash, State: int(state), Diagnostics: sink.Diagnostics[before:]})
	}

	return Result{Grammar: g, State: state, Sink: sink}
}

// verdictState combines the well-formedness verdict with whether
// duplicate detection already degraded the grammar: a Fake duplicate
// result can never be upgraded to Value even if well-formedness finds
// nothing further wrong, so a duplicate rule name stays reported even
// on an otherwise clean grammar.
func verdictState(verdict ast.Partial[*ast.Grammar], deduped ast.Partial[[]ast.Rule]) ast.PartialState {
	if verdict.IsNothing() {
		return ast.StateNothing
	}
	if deduped.IsFake() {
		return ast.StateFake
	}
	return ast.StateValue
}
