// Package parser is a small recursive-descent parser for the minimal
// PEG surface syntax this repository uses to exercise the
// well-formedness core end to end. It is deliberately thin: the
// grammar surface syntax itself is an external collaborator, not the
// subject of this core's analysis.
package parser

import (
	"fmt"

	"github.com/aledsdavies/oakc/internal/ast"
	"github.com/aledsdavies/oakc/internal/diag"
	"github.com/aledsdavies/oakc/internal/frontend/lexer"
)

// Parser builds an ast.Grammar from grammar source text.
type Parser struct {
	toks []lexer.Token
	pos  int
	sink diag.Sink

	exprs []ast.Expression
	rules []ast.Rule
}

// Parse tokenizes and parses src into a Grammar, reporting syntax
// errors to sink. The returned Grammar is never nil and holds every
// rule that parsed; ok is false if any syntax error was reported.
func Parse(src string, sink diag.Sink) (*ast.Grammar, bool) {
	lx := lexer.New(src, nil)
	var toks []lexer.Token
	for {
		t := lx.Next()
		toks = append(toks, t)
		if t.Kind == lexer.EOF {
			break
		}
	}
	p := &Parser{toks: toks, sink: sink}
	ok := p.parseGrammar()
	g := ast.NewGrammar(p.rules, p.exprs, nil, nil)
	return g, ok
}

func (p *Parser) current() lexer.Token { return p.toks[p.pos] }

func (p *Parser) peekIs(k lexer.Kind) bool { return p.current().Kind == k }

func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k lexer.Kind) (lexer.Token, bool) {
	if p.peekIs(k) {
		return p.advance(), true
	}
	p.errorf("expected %s, found %s", k, p.current())
	return p.current(), false
}

func (p *Parser) errorf(format string, args ...any) {
	t := p.current()
	p.sink.Error(diag.SyntaxError, posSpan(t), fmt.Sprintf(format, args...)).Emit()
}

func posSpan(t lexer.Token) ast.Span {
	start := ast.Position{Line: t.Line, Column: t.Column, Offset: t.Offset}
	end := ast.Position{Line: t.Line, Column: t.Column + len(t.Value), Offset: t.Offset + len(t.Value)}
	return ast.Span{Start: start, End: end}
}

func spanUnion(a, b ast.Span) ast.Span {
	return ast.Span{Start: a.Start, End: b.End}
}

func (p *Parser) push(expr ast.Expression) ast.ExprIndex {
	idx := ast.ExprIndex(len(p.exprs))
	p.exprs = append(p.exprs, expr)
	return idx
}

// parseGrammar := rule*
func (p *Parser) parseGrammar() bool {
	ok := true
	for !p.peekIs(lexer.EOF) {
		if !p.parseRule() {
			ok = false
			p.recoverToNextRule()
		}
	}
	return ok
}

// recoverToNextRule skips tokens until it finds `identifier '='`,
// which is the only reliable start-of-rule lookahead in this minimal
// grammar, so one syntax error does not cascade into every later rule.
func (p *Parser) recoverToNextRule() {
	for !p.peekIs(lexer.EOF) {
		if p.peekIs(lexer.IDENT) && p.pos+1 < len(p.toks) && p.toks[p.pos+1].Kind == lexer.EQUALS {
			return
		}
		p.advance()
	}
}

// rule := Identifier '=' choice ';'?
func (p *Parser) parseRule() bool {
	nameTok, ok := p.expect(lexer.IDENT)
	if !ok {
		return false
	}
	if _, ok := p.expect(lexer.EQUALS); !ok {
		return false
	}
	bodyIdx, bodySpan, ok := p.parseChoice()
	if !ok {
		return false
	}
	if p.peekIs(lexer.SEMICOLON) {
		p.advance()
	}
	nameSpan := posSpan(nameTok)
	p.rules = append(p.rules, ast.Rule{
		Name:      ast.Identifier{Name: nameTok.Value, Span: nameSpan},
		ExprIndex: bodyIdx,
		RuleSpan:  spanUnion(nameSpan, bodySpan),
	})
	return true
}

// choice := sequence ('/' sequence)*
func (p *Parser) parseChoice() (ast.ExprIndex, ast.Span, bool) {
	firstIdx, span, ok := p.parseSequence()
	if !ok {
		return 0, span, false
	}
	children := []ast.ExprIndex{firstIdx}
	for p.peekIs(lexer.SLASH) {
		p.advance()
		idx, s, ok := p.parseSequence()
		if !ok {
			return 0, span, false
		}
		children = append(children, idx)
		span = spanUnion(span, s)
	}
	if len(children) == 1 {
		return firstIdx, span, true
	}
	idx := p.push(ast.Expression{Kind: ast.Choice, Children: children, Span: span})
	return idx, span, true
}

// sequence := unary+
func (p *Parser) parseSequence() (ast.ExprIndex, ast.Span, bool) {
	firstIdx, span, ok := p.parseUnary()
	if !ok {
		return 0, span, false
	}
	children := []ast.ExprIndex{firstIdx}
	for p.startsUnary() {
		idx, s, ok := p.parseUnary()
		if !ok {
			return 0, span, false
		}
		children = append(children, idx)
		span = spanUnion(span, s)
	}
	if len(children) == 1 {
		return firstIdx, span, true
	}
	idx := p.push(ast.Expression{Kind: ast.Sequence, Children: children, Span: span})
	return idx, span, true
}

func (p *Parser) startsUnary() bool {
	switch p.current().Kind {
	case lexer.IDENT:
		// `identifier '='` starts the next rule, not another element here.
		return !(p.pos+1 < len(p.toks) && p.toks[p.pos+1].Kind == lexer.EQUALS)
	case lexer.STRING, lexer.CHARCLASS, lexer.DOT, lexer.LPAREN, lexer.AMP, lexer.BANG:
		return true
	default:
		return false
	}
}

// unary := prefix? primary suffix?
func (p *Parser) parseUnary() (ast.ExprIndex, ast.Span, bool) {
	var prefixKind lexer.Kind
	var prefixTok lexer.Token
	hasPrefix := false
	if p.peekIs(lexer.AMP) || p.peekIs(lexer.BANG) {
		prefixTok = p.advance()
		prefixKind = prefixTok.Kind
		hasPrefix = true
	}

	idx, span, ok := p.parsePrimary()
	if !ok {
		return 0, span, false
	}

	if hasPrefix {
		span = spanUnion(posSpan(prefixTok), span)
	}

	switch p.current().Kind {
	case lexer.STAR:
		s := p.advance()
		idx = p.push(ast.Expression{Kind: ast.ZeroOrMore, Child: idx, Span: spanUnion(span, posSpan(s))})
		span = spanUnion(span, posSpan(s))
	case lexer.PLUS:
		s := p.advance()
		idx = p.push(ast.Expression{Kind: ast.OneOrMore, Child: idx, Span: spanUnion(span, posSpan(s))})
		span = spanUnion(span, posSpan(s))
	case lexer.QUESTION:
		s := p.advance()
		idx = p.push(ast.Expression{Kind: ast.Optional, Child: idx, Span: spanUnion(span, posSpan(s))})
		span = spanUnion(span, posSpan(s))
	}

	if hasPrefix {
		kind := ast.AndPredicate
		if prefixKind == lexer.BANG {
			kind = ast.NotPredicate
		}
		idx = p.push(ast.Expression{Kind: kind, Child: idx, Span: span})
	}
	return idx, span, true
}

// primary := Identifier | StringLiteral | CharClass | '.' | '(' choice ')'
func (p *Parser) parsePrimary() (ast.ExprIndex, ast.Span, bool) {
	t := p.current()
	switch t.Kind {
	case lexer.IDENT:
		if p.pos+1 < len(p.toks) && p.toks[p.pos+1].Kind == lexer.EQUALS {
			p.errorf("unexpected start of rule %s; expected an expression", t)
			return 0, posSpan(t), false
		}
		p.advance()
		span := posSpan(t)
		idx := p.push(ast.Expression{Kind: ast.NonTerminal, Ref: ast.Identifier{Name: t.Value, Span: span}, Span: span})
		return idx, span, true
	case lexer.STRING:
		p.advance()
		span := posSpan(t)
		idx := p.push(ast.Expression{Kind: ast.StrLiteral, Str: t.Value, Span: span})
		return idx, span, true
	case lexer.CHARCLASS:
		p.advance()
		span := posSpan(t)
		ranges, err := parseCharClassBody(t.Value)
		if err != nil {
			p.errorf("invalid character class %q: %v", t.Value, err)
			return 0, span, false
		}
		idx := p.push(ast.Expression{Kind: ast.CharClass, Ranges: ranges, Span: span})
		return idx, span, true
	case lexer.DOT:
		p.advance()
		span := posSpan(t)
		idx := p.push(ast.Expression{Kind: ast.AnyChar, Span: span})
		return idx, span, true
	case lexer.LPAREN:
		p.advance()
		idx, span, ok := p.parseChoice()
		if !ok {
			return 0, span, false
		}
		closeTok, ok := p.expect(lexer.RPAREN)
		if !ok {
			return 0, span, false
		}
		return idx, spanUnion(span, posSpan(closeTok)), true
	default:
		p.errorf("unexpected %s; expected an identifier, a literal, a character class, '.', or '('", t)
		return 0, posSpan(t), false
	}
}

// parseCharClassBody turns a class body like "a-zA-Z_0-9" into ranges.
func parseCharClassBody(body string) ([]ast.CharRange, error) {
	runes := []rune(body)
	var ranges []ast.CharRange
	for i := 0; i < len(runes); i++ {
		lo := runes[i]
		if i+2 < len(runes) && runes[i+1] == '-' {
			hi := runes[i+2]
			if hi < lo {
				return nil, fmt.Errorf("range %c-%c has lo > hi", lo, hi)
			}
			ranges = append(ranges, ast.CharRange{Lo: lo, Hi: hi})
			i += 2
			continue
		}
		ranges = append(ranges, ast.CharRange{Lo: lo, Hi: lo})
	}
	if len(ranges) == 0 {
		return nil, fmt.Errorf("character class must not be empty")
	}
	return ranges, nil
}
