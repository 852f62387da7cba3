package codegen

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/aledsdavies/oakc/internal/ast"
)

func markName(n int) string   { return fmt.Sprintf("mark%d", n) }
func resultName(n int) string { return fmt.Sprintf("result%d", n) }
func valueName(n int) string  { return fmt.Sprintf("value%d", n) }

// Mode selects which of the two lowerings of `optional` to produce.
type Mode int

const (
	// ModeRecognizer discards the child's value; it only reports
	// whether the child matched.
	ModeRecognizer Mode = iota
	// ModeParser produces a value of "optional T".
	ModeParser
)

var optionalBodyTmpl = template.Must(template.New("optional").Parse(
	`{ {{.Mark}} := state.Mark()
state = {{.Body}}
if state.IsFailed() {
	state = state.RestoreFromFailure({{.Mark}})
}
{{.Success}} }`))

// OptionalCompiler lowers a single `optional` (`e?`) expression to
// host code via continuation passing, in either recognizer or parser
// mode.
type OptionalCompiler struct {
	ExprIdx ast.ExprIndex
	Mode    Mode
}

// NewOptionalRecognizer builds an OptionalCompiler for recognizer mode.
func NewOptionalRecognizer(exprIdx ast.ExprIndex) OptionalCompiler {
	return OptionalCompiler{ExprIdx: exprIdx, Mode: ModeRecognizer}
}

// NewOptionalParser builds an OptionalCompiler for parser mode.
func NewOptionalParser(exprIdx ast.ExprIndex) OptionalCompiler {
	return OptionalCompiler{ExprIdx: exprIdx, Mode: ModeParser}
}

// compile is the skeleton shared by both modes: snapshot state, run
// body, and on failure restore from the mark, then fall through to
// the enclosing continuation's success. The produced expression never
// reaches the outer failure continuation.
func (c OptionalCompiler) compile(names *NameSource, cont Continuation, body string) string {
	mark := names.NextMark()
	return cont.MapSuccess(func(success, _ string) string {
		return renderOptionalBody(mark, body, success)
	}).UnwrapSuccess()
}

func renderOptionalBody(mark, body, success string) string {
	var buf bytes.Buffer
	_ = optionalBodyTmpl.Execute(&buf, struct{ Mark, Body, Success string }{mark, body, success})
	return buf.String()
}

// CompileRecognizer compiles the child in recognizer mode with a
// trivial (passthrough) success and a failure that marks the runtime
// state failed, then wraps it with the mark/restore skeleton.
func (c OptionalCompiler) CompileRecognizer(names *NameSource, compileChild ExprCompiler, cont Continuation) string {
	body := compileChild(c.ExprIdx, NewContinuation("state", "state.Fail()"))
	return c.compile(names, cont, body)
}

// ValueCompiler compiles idx in parser (value-producing) mode: the
// compiled body assigns the matched value into valueVar before
// evaluating the continuation's success.
type ValueCompiler func(idx ast.ExprIndex, valueVar string, cont Continuation) string

var optionalResultDeclTmpl = template.Must(template.New("optional-result").Parse(
	`{
var {{.ResultVar}} = Absent[any]()
{{.OptionalExpr}}
}`))

// CompileParser additionally allocates a result variable initialised
// to "absent", runs the child using a value-constructor continuation
// that, on success, sets the result to "present(value)", and leaves
// it "absent" on the mark/restore fallback path.
func (c OptionalCompiler) CompileParser(names *NameSource, compileValue ValueCompiler, cont Continuation) string {
	resultVar := names.NextResult()
	valueVar := names.NextValue()

	ctorSuccess := fmt.Sprintf("%s = Present(%s)\nstate", resultVar, valueVar)
	body := compileValue(c.ExprIdx, valueVar, NewContinuation(ctorSuccess, "state.Fail()"))
	optionalExpr := c.compile(names, cont, body)

	var buf bytes.Buffer
	_ = optionalResultDeclTmpl.Execute(&buf, struct{ ResultVar, OptionalExpr string }{resultVar, optionalExpr})
	return buf.String()
}
