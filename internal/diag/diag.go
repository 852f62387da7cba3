// Package diag implements the core's diagnostic sink: an append-only
// interface the analyser and duplicate detector emit to, rendered in
// a Rust/Clang-style source snippet. The core never reads diagnostics
// back; tests substitute a capturing Sink.
package diag

import (
	"fmt"
	"strings"

	"github.com/aledsdavies/oakc/internal/ast"
)

// Kind tags the taxonomy of well-formedness and duplicate-name errors.
// It lets tests assert on the kind of a diagnostic without matching
// message text; Sink.Error takes it alongside the span and message.
type Kind string

const (
	LeftRecursion          Kind = "LeftRecursion"
	NeverSucceed           Kind = "NeverSucceed"
	AlwaysSucceedNoConsume Kind = "AlwaysSucceedNoConsume"
	LoopRepeat             Kind = "LoopRepeat"
	UnreachableBranch      Kind = "UnreachableBranch"
	DuplicateDefinition    Kind = "DuplicateDefinition"
	SyntaxError            Kind = "SyntaxError"
	UnsupportedOperator    Kind = "UnsupportedOperator"
)

// Note is a secondary location attached to a Diagnostic via SpanNote.
type Note struct {
	Span    ast.Span
	Message string
}

// Diagnostic is one reported error: a kind, a primary span, a
// message, and zero or more notes.
type Diagnostic struct {
	Kind    Kind
	Span    ast.Span
	Message string
	Notes   []Note
}

// Builder accumulates notes for one diagnostic before Emit delivers
// it to the owning Sink.
type Builder struct {
	sink *CapturingSink // not set by either sink; delivery goes through emit
	d    Diagnostic
	emit func(Diagnostic)
}

// SpanNote attaches a secondary location to the diagnostic under
// construction and returns the builder for chaining.
func (b *Builder) SpanNote(span ast.Span, message string) *Builder {
	b.d.Notes = append(b.d.Notes, Note{Span: span, Message: message})
	return b
}

// Emit delivers the accumulated diagnostic to the sink.
func (b *Builder) Emit() {
	b.emit(b.d)
}

// Sink is the externally-owned diagnostic backend. The core depends
// only on this interface, never on a concrete delivery mechanism.
type Sink interface {
	// Error starts a new diagnostic of the given kind at span, with the
	// given primary message, and returns a Builder for attaching notes.
	Error(kind Kind, span ast.Span, message string) *Builder
}

// CapturingSink is an in-memory Sink for tests: it records every
// diagnostic emitted, in emission order.
type CapturingSink struct {
	Diagnostics []Diagnostic
}

// NewCapturingSink returns an empty capturing sink.
func NewCapturingSink() *CapturingSink {
	return &CapturingSink{}
}

func (s *CapturingSink) Error(kind Kind, span ast.Span, message string) *Builder {
	b := &Builder{d: Diagnostic{Kind: kind, Span: span, Message: message}}
	b.emit = func(d Diagnostic) { s.Diagnostics = append(s.Diagnostics, d) }
	return b
}

// Replay re-emits a previously captured diagnostic to sink, in the
// same Error/SpanNote/Emit shape it was originally built with. Used
// to repopulate a sink from diagnostics loaded back out of the cache.
func Replay(sink Sink, d Diagnostic) {
	b := sink.Error(d.Kind, d.Span, d.Message)
	for _, n := range d.Notes {
		b.SpanNote(n.Span, n.Message)
	}
	b.Emit()
}

// HasKind reports whether any captured diagnostic carries kind.
func (s *CapturingSink) HasKind(kind Kind) bool {
	for _, d := range s.Diagnostics {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// SourceSink renders diagnostics as Rust/Clang-style source snippets
// to an in-memory accumulator.
type SourceSink struct {
	Source string
	Out    *strings.Builder
}

// NewSourceSink builds a sink that renders against src, writing to a
// fresh internal buffer. Call String to retrieve the rendered text.
func NewSourceSink(src string) *SourceSink {
	return &SourceSink{Source: src, Out: &strings.Builder{}}
}

func (s *SourceSink) Error(kind Kind, span ast.Span, message string) *Builder {
	b := &Builder{d: Diagnostic{Kind: kind, Span: span, Message: message}}
	b.emit = func(d Diagnostic) { s.render(d) }
	return b
}

func (s *SourceSink) render(d Diagnostic) {
	fmt.Fprintf(s.Out, "error[%s]: %s\n", d.Kind, d.Message)
	s.renderSpan(d.Span)
	for _, n := range d.Notes {
		fmt.Fprintf(s.Out, "note: %s\n", n.Message)
		s.renderSpan(n.Span)
	}
}

func (s *SourceSink) renderSpan(span ast.Span) {
	lines := strings.Split(s.Source, "\n")
	line := span.Start.Line
	if line <= 0 || line > len(lines) {
		return
	}
	content := lines[line-1]
	fmt.Fprintf(s.Out, "  --> %d:%d\n", span.Start.Line, span.Start.Column)
	s.Out.WriteString("   |\n")
	fmt.Fprintf(s.Out, "%2d | %s\n", line, content)
	s.Out.WriteString("   | ")
	if span.Start.Column > 0 && span.Start.Column <= len(content)+1 {
		s.Out.WriteString(strings.Repeat(" ", span.Start.Column-1) + "^")
	}
	s.Out.WriteString("\n")
}

// String returns everything rendered so far.
func (s *SourceSink) String() string {
	return s.Out.String()
}
