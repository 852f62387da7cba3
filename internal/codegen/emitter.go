package codegen

import (
	"fmt"

	"github.com/aledsdavies/oakc/internal/ast"
	"github.com/aledsdavies/oakc/internal/diag"
)

// Emitter dispatches expression compilation by kind. Leaf kinds
// (StrLiteral, CharClass, AnyChar, NonTerminal) and Optional compile
// for real; every other operator kind is a back-end's job and is
// reported through Unsupported instead of silently mis-emitted.
type Emitter struct {
	Grammar *ast.Grammar
	Sink    diag.Sink
	Names   *NameSource

	// Unsupported records every expression index the emitter could not
	// lower, so callers (e.g. the `build` command) can report which
	// operators blocked full code generation.
	Unsupported []ast.ExprIndex
}

// NewEmitter builds an Emitter over g, reporting anything it cannot
// lower to sink.
func NewEmitter(g *ast.Grammar, sink diag.Sink) *Emitter {
	return &Emitter{Grammar: g, Sink: sink, Names: &NameSource{}}
}

// CompileRecognizer compiles idx in recognizer mode under cont.
func (e *Emitter) CompileRecognizer(idx ast.ExprIndex, cont Continuation) string {
	expr := e.Grammar.ExpressionOf(idx)
	switch expr.Kind {
	case ast.StrLiteral:
		return e.wrapLeaf(cont, fmt.Sprintf("state.MatchString(%q)", expr.Str))
	case ast.AnyChar:
		return e.wrapLeaf(cont, "state.MatchAny()")
	case ast.CharClass:
		return e.wrapLeaf(cont, fmt.Sprintf("state.MatchClass(%s)", renderRanges(expr.Ranges)))
	case ast.NonTerminal:
		return e.wrapLeaf(cont, fmt.Sprintf("parse%s(state)", expr.Ref.Name))
	case ast.Optional:
		oc := NewOptionalRecognizer(idx)
		return oc.CompileRecognizer(e.Names, e.CompileRecognizer, cont)
	default:
		return e.reportUnsupported(idx, expr, cont)
	}
}

// wrapLeaf produces `state = <matchExpr>; <success>` without any
// mark/restore of its own: leaf matchers either consume exactly what
// they match or fail outright, so they need no snapshot.
func (e *Emitter) wrapLeaf(cont Continuation, matchExpr string) string {
	success, _ := cont.Unwrap()
	return fmt.Sprintf("{\nstate = %s\n%s\n}", matchExpr, success)
}

func (e *Emitter) reportUnsupported(idx ast.ExprIndex, expr ast.Expression, cont Continuation) string {
	e.Unsupported = append(e.Unsupported, idx)
	e.Sink.Error(diag.UnsupportedOperator, expr.Span,
		fmt.Sprintf("this core does not compile %s expressions; only the optional operator is illustrated here", expr.Kind)).Emit()
	success, _ := cont.Unwrap()
	return fmt.Sprintf("{\nstate = state.Fail() /* unsupported: %s */\n%s\n}", expr.Kind, success)
}

func renderRanges(ranges []ast.CharRange) string {
	out := "[]oakc.CharRange{"
	for i, r := range ranges {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("{Lo: %q, Hi: %q}", r.Lo, r.Hi)
	}
	return out + "}"
}
