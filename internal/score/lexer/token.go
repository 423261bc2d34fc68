// Package lexer splits score source text into tokens carrying their source
// position.
package lexer

import (
	"fmt"
	"strings"
)

type Kind int

const (
	EOF Kind = iota
	Word
	QuotedIdent
	String
	DollarString
	Number
	LParen
	RParen
	Comma
	SemiColon
	Period
	Eq
	Neq
	Lt
	LtEq
	Gt
	GtEq
	Plus
	Minus
	Mul
	Div
	Mod
)

var kindNames = map[Kind]string{
	EOF:          "EOF",
	Word:         "word",
	QuotedIdent:  "quoted identifier",
	String:       "string",
	DollarString: "dollar quoted string",
	Number:       "number",
	LParen:       "(",
	RParen:       ")",
	Comma:        ",",
	SemiColon:    ";",
	Period:       ".",
	Eq:           "=",
	Neq:          "<>",
	Lt:           "<",
	LtEq:         "<=",
	Gt:           ">",
	GtEq:         ">=",
	Plus:         "+",
	Minus:        "-",
	Mul:          "*",
	Div:          "/",
	Mod:          "%",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Location is a 1-based line and column.
type Location struct {
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("Line: %d, Column: %d", l.Line, l.Column)
}

type Token struct {
	Kind  Kind
	Value string
	Loc   Location
}

// IsKeyword reports whether the token is the bare word kw, ignoring case.
// Quoted identifiers never match a keyword.
func (t Token) IsKeyword(kw string) bool {
	return t.Kind == Word && strings.EqualFold(t.Value, kw)
}

func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "EOF"
	case Word, Number:
		return t.Value
	case QuotedIdent:
		return `"` + strings.ReplaceAll(t.Value, `"`, `""`) + `"`
	case String:
		return "'" + strings.ReplaceAll(t.Value, "'", "''") + "'"
	case DollarString:
		return "$$" + t.Value + "$$"
	default:
		return t.Kind.String()
	}
}
