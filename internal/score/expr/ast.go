// Package expr implements the boolean expression language used by
// authorization policies.
package expr

import (
	"strings"

	"github.com/tansive/conductor/internal/score/lexer"
)

// Node is an expression tree node. String renders the node as canonical
// text that parses back to an equal tree.
type Node interface {
	String() string
	precedence() int
}

// Binding strength of each form, loosest first.
const (
	precOr = iota + 1
	precAnd
	precNot
	precCompare
	precAdd
	precMul
	precUnary
	precPrimary
)

type LiteralKind int

const (
	LiteralNull LiteralKind = iota
	LiteralBool
	LiteralNumber
	LiteralString
)

type Literal struct {
	Kind LiteralKind
	// Value holds "true"/"false" for booleans, the digits of a number and the
	// unquoted text of a string.
	Value string
}

func (l *Literal) String() string {
	switch l.Kind {
	case LiteralNull:
		return "NULL"
	case LiteralBool:
		return strings.ToUpper(l.Value)
	case LiteralString:
		return "'" + strings.ReplaceAll(l.Value, "'", "''") + "'"
	default:
		return l.Value
	}
}

func (l *Literal) precedence() int { return precPrimary }

// Ident is a possibly dotted identifier such as claims.role.
type Ident struct {
	Parts []string
}

func (i *Ident) String() string {
	parts := make([]string, len(i.Parts))
	for n, p := range i.Parts {
		parts[n] = QuoteIdent(p)
	}
	return strings.Join(parts, ".")
}

func (i *Ident) precedence() int { return precPrimary }

// Unary is NOT x or -x.
type Unary struct {
	Op string
	X  Node
}

func (u *Unary) String() string {
	if u.Op == "NOT" {
		return "NOT " + wrap(u.X, precNot, false)
	}
	if inner, ok := u.X.(*Unary); ok && inner.Op == u.Op {
		return u.Op + "(" + inner.String() + ")"
	}
	return u.Op + wrap(u.X, precUnary, false)
}

func (u *Unary) precedence() int {
	if u.Op == "NOT" {
		return precNot
	}
	return precUnary
}

type Binary struct {
	Op    string
	Left  Node
	Right Node
}

func (b *Binary) String() string {
	p := b.precedence()
	return wrap(b.Left, p, false) + " " + b.Op + " " + wrap(b.Right, p, true)
}

func (b *Binary) precedence() int {
	return binaryPrecedence(b.Op)
}

// IsNull is x IS NULL or x IS NOT NULL.
type IsNull struct {
	X   Node
	Not bool
}

func (n *IsNull) String() string {
	s := wrap(n.X, precCompare, true) + " IS "
	if n.Not {
		s += "NOT "
	}
	return s + "NULL"
}

func (n *IsNull) precedence() int { return precCompare }

type Call struct {
	Name string
	Args []Node
}

func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return QuoteIdent(c.Name) + "(" + strings.Join(args, ", ") + ")"
}

func (c *Call) precedence() int { return precPrimary }

func binaryPrecedence(op string) int {
	switch op {
	case "OR":
		return precOr
	case "AND":
		return precAnd
	case "=", "<>", "<", "<=", ">", ">=":
		return precCompare
	case "+", "-":
		return precAdd
	case "*", "/", "%":
		return precMul
	}
	return 0
}

// wrap parenthesizes n when it binds looser than its parent. Operators are
// left associative, so a right operand of equal strength is wrapped too.
func wrap(n Node, parent int, right bool) string {
	p := n.precedence()
	if p < parent || (right && p == parent) {
		return "(" + n.String() + ")"
	}
	return n.String()
}

var reserved = map[string]bool{
	"AND":   true,
	"OR":    true,
	"NOT":   true,
	"IS":    true,
	"NULL":  true,
	"TRUE":  true,
	"FALSE": true,
}

// QuoteIdent returns name as written when it is a plain identifier and as a
// double quoted identifier otherwise.
func QuoteIdent(name string) string {
	if lexer.IsBareIdent(name) && !reserved[strings.ToUpper(name)] {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
