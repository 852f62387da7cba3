package codegen

import (
	"bytes"
	"text/template"

	"github.com/aledsdavies/oakc/internal/ast"
	"github.com/aledsdavies/oakc/internal/diag"
)

var fileTmpl = template.Must(template.New("file").Parse(
	`// Code generated by oakc; DO NOT EDIT.

package {{.Package}}
{{range .Functions}}
func parse{{.RuleName}}(state State) State {{.Body}}
{{end}}`))

type ruleFunction struct {
	RuleName string
	Body     string
}

// GenerateFile compiles every rule body reachable from the grammar
// into a recognizer-mode Go function, using Emitter to lower each
// expression. Rules that reach an operator this core cannot compile
// still get a function emitted (so the file is syntactically
// complete); the emitter records every such expression in
// Unsupported so the caller can report what blocked full compilation.
func GenerateFile(g *ast.Grammar, sink diag.Sink, packageName string) (string, []ast.ExprIndex) {
	emitter := NewEmitter(g, sink)
	functions := make([]ruleFunction, 0, len(g.Rules))
	for _, rule := range g.Rules {
		top := NewContinuation("return state", "return state")
		body := emitter.CompileRecognizer(rule.ExprIndex, top)
		functions = append(functions, ruleFunction{RuleName: rule.Name.Name, Body: body})
	}

	var buf bytes.Buffer
	_ = fileTmpl.Execute(&buf, struct {
		Package   string
		Functions []ruleFunction
	}{packageName, functions})
	return buf.String(), emitter.Unsupported
}
