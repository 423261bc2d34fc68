package expr

import (
	"github.com/tansive/conductor/internal/score/lexer"
)

// Expression wraps a parsed expression tree. It is persisted as its
// canonical text.
type Expression struct {
	Root Node
}

// ParseString parses text as a single expression. Trailing tokens are an
// error.
func ParseString(text string) (Expression, error) {
	tokens, err := lexer.Tokenize(text)
	if err != nil {
		return Expression{}, err
	}
	n, pos, err := Parse(tokens, 0)
	if err != nil {
		return Expression{}, err
	}
	if tokens[pos].Kind != lexer.EOF {
		return Expression{}, &Error{Expected: "end of expression", Found: tokens[pos]}
	}
	return Expression{Root: n}, nil
}

// MustParse is like ParseString but panics on error. For literals in tests
// and fixtures.
func MustParse(text string) Expression {
	e, err := ParseString(text)
	if err != nil {
		panic(err)
	}
	return e
}

func (e Expression) String() string {
	if e.Root == nil {
		return ""
	}
	return e.Root.String()
}

func (e Expression) Equal(other Expression) bool {
	return e.String() == other.String()
}

func (e Expression) IsZero() bool {
	return e.Root == nil
}

func (e Expression) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *Expression) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*e = Expression{}
		return nil
	}
	parsed, err := ParseString(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
