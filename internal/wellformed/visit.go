package wellformed

import "github.com/aledsdavies/oakc/internal/ast"

// visitExpr dispatches on expression kind, computing child WFAs
// first and combining them, then enforces the two lattice invariants
// and applies the expression-level diagnostics.
func (a *analyser) visitExpr(idx ast.ExprIndex) WFA {
	wfa := a.walkExpr(idx)

	if !wfa.CanFail && !wfa.CanSucceed {
		panic("expression must either fail or succeed")
	}
	if wfa.AlwaysConsume && wfa.NeverConsume {
		panic("expression cannot always and never consume at the same time")
	}

	switch {
	case wfa.CanFail && !wfa.CanSucceed:
		a.errorNeverSucceed(idx)
		wfa.CanSucceed = true // error-recovery
	case wfa.CanSucceed && !wfa.CanFail && wfa.NeverConsume:
		a.errorAlwaysSucceedNoConsume(idx)
		wfa.NeverConsume = false // error-recovery
	}
	return wfa
}

func (a *analyser) walkExpr(idx ast.ExprIndex) WFA {
	expr := a.grammar.ExpressionOf(idx)
	switch expr.Kind {
	case ast.StrLiteral:
		return a.visitStrLiteral(expr.Str)
	case ast.CharClass, ast.AnyChar:
		return defaultWFA()
	case ast.NonTerminal:
		return a.visitRule(expr.Ref.Name)
	case ast.Sequence:
		return a.visitSequence(expr.Children)
	case ast.Choice:
		return a.visitChoice(idx, expr.Children)
	case ast.ZeroOrMore:
		return a.visitZeroOrMore(idx, expr.Child)
	case ast.OneOrMore:
		return a.visitRepeat(idx, expr.Child)
	case ast.Optional:
		return a.visitOptional(expr.Child)
	case ast.AndPredicate:
		return a.visitSyntacticPredicate(expr.Child)
	case ast.NotPredicate:
		return a.visitNotPredicate(expr.Child)
	default:
		panic("unknown expression kind")
	}
}

// visitStrLiteral: the empty literal is tolerated as a non-consuming,
// always-succeeding fallback without setting NeverConsume. This
// asymmetry is intentional, not an oversight: it lets "" serve as a
// trailing choice fallback without tripping the always-succeed-and-
// never-consume diagnostic.
func (a *analyser) visitStrLiteral(s string) WFA {
	wfa := defaultWFA()
	if s == "" {
		wfa.CanFail = false
		wfa.AlwaysConsume = false
	}
	return wfa
}

// visitRepeat is the shared combinator for ZeroOrMore and OneOrMore:
// a repeat whose child can succeed without consuming would loop
// forever.
func (a *analyser) visitRepeat(this ast.ExprIndex, child ast.ExprIndex) WFA {
	childWFA := a.visitExpr(child)
	if childWFA.CanSucceed && !childWFA.AlwaysConsume {
		a.errorLoopRepeat(this)
		return defaultWFA()
	}
	return childWFA
}

func (a *analyser) visitZeroOrMore(this ast.ExprIndex, child ast.ExprIndex) WFA {
	childWFA := a.visitRepeat(this, child)
	return alwaysSucceed(childWFA.NeverConsume)
}

func (a *analyser) visitOptional(child ast.ExprIndex) WFA {
	childWFA := a.visitExpr(child)
	return alwaysSucceed(childWFA.NeverConsume)
}

func (a *analyser) visitSyntacticPredicate(child ast.ExprIndex) WFA {
	wfa := a.visitExpr(child)
	wfa.AlwaysConsume = false
	wfa.NeverConsume = true
	return wfa
}

func (a *analyser) visitNotPredicate(child ast.ExprIndex) WFA {
	wfa := a.visitSyntacticPredicate(child)
	wfa.CanSucceed, wfa.CanFail = wfa.CanFail, wfa.CanSucceed
	return wfa
}

func (a *analyser) visitChoice(this ast.ExprIndex, children []ast.ExprIndex) WFA {
	wfa := WFA{CanFail: true, CanSucceed: false, AlwaysConsume: true, NeverConsume: true}
	for i, child := range children {
		savepoint := a.saveConsumed()
		childWFA := a.visitExpr(child)
		a.restoreConsumed(savepoint)

		wfa.CanFail = wfa.CanFail && childWFA.CanFail
		wfa.CanSucceed = wfa.CanSucceed || childWFA.CanSucceed
		wfa.AlwaysConsume = wfa.AlwaysConsume && childWFA.AlwaysConsume
		wfa.NeverConsume = wfa.NeverConsume && childWFA.NeverConsume

		if i != len(children)-1 && !childWFA.CanFail {
			a.errorUnreachableBranch(this, child)
			return wfa
		}
	}
	return wfa
}

func (a *analyser) visitSequence(children []ast.ExprIndex) WFA {
	savepoint := a.saveConsumed()
	wfa := WFA{CanFail: false, CanSucceed: true, AlwaysConsume: false, NeverConsume: true}
	for _, child := range children {
		childWFA := a.visitExpr(child)
		wfa.CanFail = wfa.CanFail || childWFA.CanFail
		wfa.CanSucceed = wfa.CanSucceed && childWFA.CanSucceed
		wfa.AlwaysConsume = wfa.AlwaysConsume || childWFA.AlwaysConsume
		wfa.NeverConsume = wfa.NeverConsume && childWFA.NeverConsume
		if childWFA.AlwaysConsume {
			a.consumedInput = true
		}
	}
	a.restoreConsumed(savepoint)
	return wfa
}
