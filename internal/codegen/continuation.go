// Package codegen implements a continuation-passing operator compiler
// for the `optional` operator, in both recognizer and parser mode,
// grounded on liboak's back/continuation.rs and
// back/compiler/optional.rs.
//
// Only `optional` is fully compiled here; every other PEG operator is
// a back-end's job and out of this core's scope. Emitter still
// dispatches every kind so that `optional` and the leaf expressions
// it wraps produce real code, and reports an UnsupportedOperator
// diagnostic for anything it cannot lower, rather than silently
// emitting wrong code.
package codegen

import "github.com/aledsdavies/oakc/internal/ast"

// Continuation is a pair of host-language expression snippets: a
// success expression (evaluated once the sub-expression has
// succeeded) and a failure expression. There is no map-failure: every
// optional-style operator converts failure into a non-failing
// alternative by restoring runtime state, never by rewriting the
// ambient failure continuation.
type Continuation struct {
	Success string
	Failure string
}

// NewContinuation builds a continuation from its two expressions.
func NewContinuation(success, failure string) Continuation {
	return Continuation{Success: success, Failure: failure}
}

// MapSuccess replaces the success expression with f(old success,
// failure), producing a new continuation.
func (c Continuation) MapSuccess(f func(success, failure string) string) Continuation {
	return Continuation{Success: f(c.Success, c.Failure), Failure: c.Failure}
}

// ExprCompiler compiles the expression at idx under a continuation in
// recognizer mode (no value is produced), returning the compiled host
// expression.
type ExprCompiler func(idx ast.ExprIndex, cont Continuation) string

// CompileSuccess invokes compiler on childIdx with the current
// (success, failure), using its result as the new success.
func (c Continuation) CompileSuccess(compiler ExprCompiler, childIdx ast.ExprIndex) Continuation {
	return c.MapSuccess(func(success, failure string) string {
		return compiler(childIdx, NewContinuation(success, failure))
	})
}

// UnwrapSuccess returns the success expression alone.
func (c Continuation) UnwrapSuccess() string { return c.Success }

// Unwrap returns both expressions.
func (c Continuation) Unwrap() (string, string) { return c.Success, c.Failure }

// NameSource hands out fresh mark and result-variable names, grounded
// on liboak's Context.next_mark_name.
type NameSource struct {
	marks, results, values int
}

func (n *NameSource) NextMark() string {
	n.marks++
	return markName(n.marks)
}

func (n *NameSource) NextResult() string {
	n.results++
	return resultName(n.results)
}

func (n *NameSource) NextValue() string {
	n.values++
	return valueName(n.values)
}
