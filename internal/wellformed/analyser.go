// Package wellformed implements a monotone fixed-point analysis that
// detects left recursion, unreachable choice branches, vacuous
// repetitions, infinite (e*) loops, and predicates that can never
// succeed, grounded on liboak's middle/analysis/well_formedness.rs.
package wellformed

import (
	"fmt"
	"strings"

	"github.com/aledsdavies/oakc/internal/ast"
	"github.com/aledsdavies/oakc/internal/diag"
)

type recFrame struct {
	rule          string
	consumedInput bool
}

// analyser owns all mutable state for one well-formedness pass. It is
// single-use: construct with newAnalyser, call run once.
type analyser struct {
	grammar *ast.Grammar
	sink    diag.Sink

	rulesWFA        map[string]WFA
	recursionPath   []recFrame
	consumedInput   bool
	reachedFixpoint bool
	wellFormed      bool
	errors          map[ast.ExprIndex]bool
}

func newAnalyser(g *ast.Grammar, sink diag.Sink) *analyser {
	a := &analyser{
		grammar:    g,
		sink:       sink,
		rulesWFA:   make(map[string]WFA, len(g.Rules)),
		wellFormed: true,
		errors:     make(map[ast.ExprIndex]bool),
	}
	for _, r := range g.Rules {
		a.rulesWFA[r.Name.Name] = defaultWFA()
	}
	return a
}

// Analyse runs the well-formedness pass over g, emitting diagnostics
// to sink. It returns Value(g) if no error was emitted, Nothing
// otherwise.
func Analyse(g *ast.Grammar, sink diag.Sink) ast.Partial[*ast.Grammar] {
	a := newAnalyser(g, sink)
	a.visitRules()
	if a.wellFormed {
		return ast.Value(g)
	}
	return ast.Nothing[*ast.Grammar]()
}

// visitRules is the fixed-point driver: repeat until a full pass
// changes no rule's WFA, or a fatal error stops analysis. Termination
// is guaranteed because WFA values move monotonically through a
// finite 16-element lattice per rule.
func (a *analyser) visitRules() {
	for !a.reachedFixpoint && a.wellFormed {
		a.reachedFixpoint = true
		for _, rule := range a.grammar.Rules {
			a.visitRule(rule.Name.Name)
			if !a.wellFormed {
				return
			}
		}
	}
}

func (a *analyser) visitRule(rule string) WFA {
	if a.isRecursive(rule) {
		if !a.consumeInputSince(rule) && !a.consumedInput {
			a.errorLeftRecursion(rule)
		}
	} else {
		a.pushRuleInPath(rule)
		wfa := a.visitRuleExpr(rule)
		a.popRuleInPath()
		a.fixpointUpdate(rule, wfa)
	}
	return a.rulesWFA[rule]
}

func (a *analyser) visitRuleExpr(rule string) WFA {
	idx, _ := a.grammar.ExpressionIndexOfRule(rule)
	return a.visitExpr(idx)
}

func (a *analyser) pushRuleInPath(rule string) {
	a.recursionPath = append(a.recursionPath, recFrame{rule: rule, consumedInput: a.consumedInput})
	a.consumedInput = false
}

func (a *analyser) popRuleInPath() {
	n := len(a.recursionPath) - 1
	old := a.recursionPath[n]
	a.recursionPath = a.recursionPath[:n]
	a.consumedInput = old.consumedInput
}

func (a *analyser) fixpointUpdate(rule string, wfa WFA) {
	if !wfa.equal(a.rulesWFA[rule]) {
		a.reachedFixpoint = false
		a.rulesWFA[rule] = wfa
	}
}

func (a *analyser) isRecursive(rule string) bool {
	for _, f := range a.recursionPath {
		if f.rule == rule {
			return true
		}
	}
	return false
}

// recPathFrom returns the frames above (and not including) rule, from
// the top of the stack down to that frame, in stack order (innermost
// first).
func (a *analyser) recPathFrom(rule string) []recFrame {
	var out []recFrame
	for i := len(a.recursionPath) - 1; i >= 0; i-- {
		if a.recursionPath[i].rule == rule {
			break
		}
		out = append(out, a.recursionPath[i])
	}
	return out
}

func (a *analyser) consumeInputSince(rule string) bool {
	hasConsumed := false
	for _, f := range a.recPathFrom(rule) {
		hasConsumed = hasConsumed || f.consumedInput
	}
	return hasConsumed
}

func (a *analyser) saveConsumed() bool    { return a.consumedInput }
func (a *analyser) restoreConsumed(v bool) { a.consumedInput = v }

func (a *analyser) registerError(idx ast.ExprIndex) bool {
	if a.errors[idx] {
		return false
	}
	a.errors[idx] = true
	return true
}

func (a *analyser) errorLeftRecursion(ruleName string) {
	a.wellFormed = false
	rule, ok := a.grammar.FindRuleByIdent(ruleName)
	if !ok {
		return
	}
	if !a.registerError(rule.ExprIndex) {
		return
	}
	path := []string{ruleName}
	frames := a.recPathFrom(ruleName)
	for i := len(frames) - 1; i >= 0; i-- {
		path = append(path, frames[i].rule)
	}
	path = append(path, ruleName)
	cycle := strings.Join(path, " -> ")
	a.sink.Error(diag.LeftRecursion, rule.RuleSpan, fmt.Sprintf(
		"left recursion is not supported; the following rule cycle consumes no input and would loop forever\nDetected cycle: %s\n"+
			"rewrite one of the rules so it consumes at least one atom before calling the next one, typically with a repeat operator (`e*` or `e+`)",
		cycle)).Emit()
}

func (a *analyser) errorNeverSucceed(idx ast.ExprIndex) {
	if !a.registerError(idx) {
		return
	}
	a.wellFormed = false
	expr := a.grammar.ExpressionOf(idx)
	a.sink.Error(diag.NeverSucceed, expr.Span, "expression will never succeed; remove it").Emit()
}

func (a *analyser) errorAlwaysSucceedNoConsume(idx ast.ExprIndex) {
	if !a.registerError(idx) {
		return
	}
	a.wellFormed = false
	expr := a.grammar.ExpressionOf(idx)
	a.sink.Error(diag.AlwaysSucceedNoConsume, expr.Span, "expression will always succeed without consuming any input; remove it").Emit()
}

func (a *analyser) errorLoopRepeat(idx ast.ExprIndex) {
	if !a.registerError(idx) {
		return
	}
	a.wellFormed = false
	expr := a.grammar.ExpressionOf(idx)
	a.sink.Error(diag.LoopRepeat, expr.Span,
		"infinite loop: the repeat operator's sub-expression can succeed without consuming input; "+
			"rewrite it to consume at least one atom, or remove the repeat operator").Emit()
}

func (a *analyser) errorUnreachableBranch(choiceIdx, branchIdx ast.ExprIndex) {
	if !a.registerError(branchIdx) {
		return
	}
	a.wellFormed = false
	choiceExpr := a.grammar.ExpressionOf(choiceIdx)
	branchExpr := a.grammar.ExpressionOf(branchIdx)
	a.sink.Error(diag.UnreachableBranch, choiceExpr.Span,
		"unreachable branch in a choice expression: a branch other than the last always succeeds, "+
			"so later branches can never be tried; move it to the end or remove it").
		SpanNote(branchExpr.Span, "branch always succeeding").
		Emit()
}
