package codegen_test

import (
	"testing"

	"github.com/aledsdavies/oakc/internal/ast"
	"github.com/aledsdavies/oakc/internal/codegen"
	"github.com/stretchr/testify/assert"
)

func literalCompiler(idx ast.ExprIndex, cont codegen.Continuation) string {
	success, _ := cont.Unwrap()
	return "{\nstate = state.MatchString(\"x\")\n" + success + "\n}"
}

func TestOptionalCompileRecognizer(t *testing.T) {
	names := &codegen.NameSource{}
	oc := codegen.NewOptionalRecognizer(0)
	out := oc.CompileRecognizer(names, literalCompiler, codegen.NewContinuation("return state", "return state"))

	assert.Contains(t, out, "mark1 := state.Mark()")
	assert.Contains(t, out, "state.MatchString(\"x\")")
	assert.Contains(t, out, "RestoreFromFailure(mark1)")
	assert.Contains(t, out, "return state")
}

func literalValueCompiler(idx ast.ExprIndex, valueVar string, cont codegen.Continuation) string {
	success, _ := cont.Unwrap()
	return "{\n" + valueVar + " = state.MatchString(\"x\")\n" + success + "\n}"
}

func TestOptionalCompileParserProducesValueDecl(t *testing.T) {
	names := &codegen.NameSource{}
	oc := codegen.NewOptionalParser(0)
	out := oc.CompileParser(names, literalValueCompiler, codegen.NewContinuation("return state", "return state"))

	assert.Contains(t, out, "var result1 = Absent[any]()")
	assert.Contains(t, out, "value1 = state.MatchString")
	assert.Contains(t, out, "result1 = Present(value1)")
}

func TestOptionalCompilerNamesDoNotCollideAcrossCalls(t *testing.T) {
	names := &codegen.NameSource{}
	oc1 := codegen.NewOptionalRecognizer(0)
	oc2 := codegen.NewOptionalRecognizer(1)

	out1 := oc1.CompileRecognizer(names, literalCompiler, codegen.NewContinuation("return state", "return state"))
	out2 := oc2.CompileRecognizer(names, literalCompiler, codegen.NewContinuation("return state", "return state"))

	assert.Contains(t, out1, "mark1")
	assert.Contains(t, out2, "mark2")
}
