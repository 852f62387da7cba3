// Package ast defines the grammar data model consumed by the
// well-formedness analyser and the operator compiler: identifiers,
// indexed expressions, rules, and the grammar table that owns them.
package ast

import "fmt"

// Position is a single point in the grammar source.
type Position struct {
	Line   int
	Column int
	Offset int // byte offset in source
}

// Span is a half-open range of source positions, [Start, End).
type Span struct {
	Start Position
	End   Position
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Start.Line, s.Start.Column)
}

// Identifier is an opaque name with an associated source span.
// Identifiers compare by their textual name only; the span carries
// location, not identity.
type Identifier struct {
	Name string
	Span Span
}

// Equal reports whether two identifiers denote the same name,
// ignoring their spans.
func (id Identifier) Equal(other Identifier) bool {
	return id.Name == other.Name
}

func (id Identifier) String() string { return id.Name }

// ExpressionKind tags the payload carried by an Expression.
type ExpressionKind int

const (
	StrLiteral ExpressionKind = iota
	CharClass
	AnyChar
	NonTerminal
	Sequence
	Choice
	ZeroOrMore
	OneOrMore
	Optional
	AndPredicate
	NotPredicate
)

func (k ExpressionKind) String() string {
	switch k {
	case StrLiteral:
		return "StrLiteral"
	case CharClass:
		return "CharClass"
	case AnyChar:
		return "AnyChar"
	case NonTerminal:
		return "NonTerminal"
	case Sequence:
		return "Sequence"
	case Choice:
		return "Choice"
	case ZeroOrMore:
		return "ZeroOrMore"
	case OneOrMore:
		return "OneOrMore"
	case Optional:
		return "Optional"
	case AndPredicate:
		return "AndPredicate"
	case NotPredicate:
		return "NotPredicate"
	default:
		return "Unknown"
	}
}

// CharRange is one inclusive codepoint range of a CharClass.
type CharRange struct {
	Lo, Hi rune
}

// ExprIndex addresses an Expression in a Grammar's expression table.
type ExprIndex int

// Expression is one node of a rule's body, addressed by a dense
// non-negative index into the owning Grammar's expression table.
// Exactly one payload field is meaningful, selected by Kind.
type Expression struct {
	Kind ExpressionKind
	Span Span

	// StrLiteral
	Str string
	// CharClass
	Ranges []CharRange
	// NonTerminal
	Ref Identifier
	// Sequence, Choice
	Children []ExprIndex
	// ZeroOrMore, OneOrMore, Optional, AndPredicate, NotPredicate
	Child ExprIndex
}

// Rule is a named, spanned grammar production. Its body is the
// sub-tree reachable from ExprIndex in the owning Grammar's table.
type Rule struct {
	Name      Identifier
	ExprIndex ExprIndex
	RuleSpan  Span
}

func (r Rule) Ident() Identifier { return r.Name }
func (r Rule) Span() Span        { return r.RuleSpan }

// Function is an opaque host-language item passed through to code
// generation but still named and subject to duplicate-name detection.
type Function struct {
	Name     Identifier
	FuncSpan Span
	Body     string // opaque host-language source, passed through verbatim
}

func (f Function) Ident() Identifier { return f.Name }
func (f Function) Span() Span        { return f.FuncSpan }

// Item is an opaque passthrough host-language item that is not named
// and so is not subject to duplicate-name detection.
type Item struct {
	Source string
}

// Grammar is an ordered collection of rules, a dense expression
// table, and the host-language items carried through to code
// generation untouched by analysis.
type Grammar struct {
	Rules       []Rule
	Expressions []Expression
	Functions   []Function
	OtherItems  []Item

	byName map[string]int // rule name -> index into Rules
}

// NewGrammar builds a Grammar and its name index. Rules must already
// be duplicate-free; callers typically pass the Value/Fake payload of
// duplicate.Detect through here.
func NewGrammar(rules []Rule, exprs []Expression, funcs []Function, items []Item) *Grammar {
	g := &Grammar{Rules: rules, Expressions: exprs, Functions: funcs, OtherItems: items}
	g.byName = make(map[string]int, len(rules))
	for i, r := range rules {
		g.byName[r.Name.Name] = i
	}
	return g
}

// ExpressionOf returns the expression stored at idx. It panics on an
// out-of-range index, since a well-typed AST never produces one.
func (g *Grammar) ExpressionOf(idx ExprIndex) Expression {
	return g.Expressions[idx]
}

// FindRuleByIdent looks up a rule by name, reporting whether it exists.
func (g *Grammar) FindRuleByIdent(name string) (Rule, bool) {
	i, ok := g.byName[name]
	if !ok {
		return Rule{}, false
	}
	return g.Rules[i], true
}

// ExpressionIndexOfRule returns the body index of the named rule.
func (g *Grammar) ExpressionIndexOfRule(name string) (ExprIndex, bool) {
	r, ok := g.FindRuleByIdent(name)
	if !ok {
		return 0, false
	}
	return r.ExprIndex, true
}

// RuleNames returns every rule identifier, in declaration order.
func (g *Grammar) RuleNames() []string {
	names := make([]string, len(g.Rules))
	for i, r := range g.Rules {
		names[i] = r.Name.Name
	}
	return names
}
