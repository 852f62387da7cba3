// Package duplicate finds, given an ordered sequence of named items,
// any two sharing an identifier, in the manner of liboak's
// middle/analysis/duplicate.rs.
package duplicate

import (
	"fmt"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/aledsdavies/oakc/internal/ast"
	"github.com/aledsdavies/oakc/internal/diag"
)

// Item is anything subject to duplicate-name detection: a grammar
// rule or a host-language function.
type Item interface {
	Ident() ast.Identifier
	Span() ast.Span
}

// Detect scans items in order and reports every identifier shared by
// more than one item. kind is the human-readable word used in
// diagnostics ("rule", "function"). The result retains exactly the
// first-by-position occurrence of each identifier, in input order; no
// item is reordered. Result is Value if every identifier is unique,
// Fake otherwise.
func Detect[T Item](sink diag.Sink, items []T, kind string) ast.Partial[[]T] {
	first := make([]T, 0, len(items))
	seen := make(map[string]T, len(items))
	names := make([]string, 0, len(items))
	hasDuplicate := false

	for _, item := range items {
		name := item.Ident().Name
		if prior, dup := seen[name]; dup {
			hasDuplicate = true
			reportDuplicate(sink, kind, prior, item, names)
			continue
		}
		seen[name] = item
		names = append(names, name)
		first = append(first, item)
	}

	if hasDuplicate {
		return ast.Fake(first)
	}
	return ast.Value(first)
}

func reportDuplicate[T Item](sink diag.Sink, kind string, prior, current T, distinctNames []string) {
	b := sink.Error(diag.DuplicateDefinition, current.Span(),
		fmt.Sprintf("duplicate definition of %s with name `%s`", kind, current.Ident().Name))
	b.SpanNote(prior.Span(), fmt.Sprintf("previous definition of `%s` here", prior.Ident().Name))

	if hint := nearestOtherName(current.Ident().Name, distinctNames); hint != "" {
		b.SpanNote(current.Span(), fmt.Sprintf("did you mean to name this `%s` instead?", hint))
	}
	b.Emit()
}

// nearestOtherName returns the fuzzy-closest name in candidates that
// is not target itself, or "" when no other candidate fuzzy-matches
// target (including when candidates is empty). This is a
// convenience hint layered on top of duplicate detection, not part of
// its core semantics.
func nearestOtherName(target string, candidates []string) string {
	var others []string
	for _, c := range candidates {
		if c != target {
			others = append(others, c)
		}
	}
	ranks := fuzzy.RankFindFold(target, others)
	if len(ranks) == 0 {
		return ""
	}
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance {
			best = r
		}
	}
	return best.Target
}
