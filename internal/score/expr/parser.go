package expr

import (
	"fmt"
	"strings"

	"github.com/tansive/conductor/internal/score/lexer"
)

// Error reports a token that does not fit the expression grammar.
type Error struct {
	Expected string
	Found    lexer.Token
}

func (e *Error) Error() string {
	return fmt.Sprintf("Expected %s, found: %s at %s", e.Expected, e.Found, e.Found.Loc)
}

type parser struct {
	tokens []lexer.Token
	pos    int
}

// Parse reads one expression from tokens starting at pos and returns it
// together with the position of the first token after it. Parsing stops at
// the first token that cannot continue the expression, such as ";".
func Parse(tokens []lexer.Token, pos int) (Node, int, error) {
	p := &parser{tokens: tokens, pos: pos}
	n, err := p.parseOr()
	if err != nil {
		return nil, pos, err
	}
	return n, p.pos, nil
}

func (p *parser) peek() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Kind: lexer.EOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) next() lexer.Token {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().IsKeyword("OR") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: "OR", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().IsKeyword("AND") {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: "AND", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (Node, error) {
	if p.peek().IsKeyword("NOT") {
		p.next()
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: "NOT", X: x}, nil
	}
	return p.parseComparison()
}

var comparisonOps = map[lexer.Kind]string{
	lexer.Eq:   "=",
	lexer.Neq:  "<>",
	lexer.Lt:   "<",
	lexer.LtEq: "<=",
	lexer.Gt:   ">",
	lexer.GtEq: ">=",
}

func (p *parser) parseComparison() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.IsKeyword("IS") {
			p.next()
			not := false
			if p.peek().IsKeyword("NOT") {
				p.next()
				not = true
			}
			if t := p.next(); !t.IsKeyword("NULL") {
				return nil, &Error{Expected: "NULL", Found: t}
			}
			left = &IsNull{X: left, Not: not}
			continue
		}
		op, ok := comparisonOps[tok.Kind]
		if !ok {
			return left, nil
		}
		p.next()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.peek().Kind {
		case lexer.Plus:
			op = "+"
		case lexer.Minus:
			op = "-"
		default:
			return left, nil
		}
		p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseMultiplicative() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.peek().Kind {
		case lexer.Mul:
			op = "*"
		case lexer.Div:
			op = "/"
		case lexer.Mod:
			op = "%"
		default:
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() (Node, error) {
	switch p.peek().Kind {
	case lexer.Minus:
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: "-", X: x}, nil
	case lexer.Plus:
		p.next()
		return p.parseUnary()
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.next()
	switch tok.Kind {
	case lexer.Number:
		return &Literal{Kind: LiteralNumber, Value: tok.Value}, nil
	case lexer.String:
		return &Literal{Kind: LiteralString, Value: tok.Value}, nil
	case lexer.LParen:
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if t := p.next(); t.Kind != lexer.RParen {
			return nil, &Error{Expected: "')'", Found: t}
		}
		return n, nil
	case lexer.Word:
		switch strings.ToUpper(tok.Value) {
		case "TRUE":
			return &Literal{Kind: LiteralBool, Value: "true"}, nil
		case "FALSE":
			return &Literal{Kind: LiteralBool, Value: "false"}, nil
		case "NULL":
			return &Literal{Kind: LiteralNull}, nil
		}
		if reserved[strings.ToUpper(tok.Value)] {
			break
		}
		return p.parseName(tok.Value)
	case lexer.QuotedIdent:
		return p.parseName(tok.Value)
	}
	return nil, &Error{Expected: "an expression", Found: tok}
}

// parseName reads the rest of a dotted identifier or a function call whose
// first part has already been consumed.
func (p *parser) parseName(first string) (Node, error) {
	if p.peek().Kind == lexer.LParen {
		p.next()
		call := &Call{Name: first}
		if p.peek().Kind == lexer.RParen {
			p.next()
			return call, nil
		}
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			t := p.next()
			if t.Kind == lexer.RParen {
				return call, nil
			}
			if t.Kind != lexer.Comma {
				return nil, &Error{Expected: "',' or ')'", Found: t}
			}
		}
	}
	ident := &Ident{Parts: []string{first}}
	for p.peek().Kind == lexer.Period {
		p.next()
		t := p.next()
		if t.Kind != lexer.Word && t.Kind != lexer.QuotedIdent {
			return nil, &Error{Expected: "identifier", Found: t}
		}
		ident.Parts = append(ident.Parts, t.Value)
	}
	return ident, nil
}
