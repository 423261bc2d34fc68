package lexer

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Error reports text that could not be split into tokens.
type Error struct {
	Expected string
	Found    string
	Loc      Location
}

func (e *Error) Error() string {
	return fmt.Sprintf("Expected %s, found: %s at %s", e.Expected, e.Found, e.Loc)
}

type lexer struct {
	src  []rune
	pos  int
	line int
	col  int
}

// Tokenize returns all tokens of src. The last token is always EOF.
func Tokenize(src string) ([]Token, error) {
	l := &lexer{src: []rune(src), line: 1, col: 1}
	var tokens []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens, nil
		}
	}
}

func (l *lexer) peek(off int) rune {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) loc() Location {
	return Location{Line: l.line, Column: l.col}
}

func (l *lexer) eof() bool {
	return l.pos >= len(l.src)
}

func (l *lexer) skipSpaceAndComments() error {
	for !l.eof() {
		r := l.peek(0)
		switch {
		case unicode.IsSpace(r):
			l.advance()
		case r == '-' && l.peek(1) == '-':
			for !l.eof() && l.peek(0) != '\n' {
				l.advance()
			}
		case r == '/' && l.peek(1) == '*':
			start := l.loc()
			l.advance()
			l.advance()
			for {
				if l.eof() {
					return &Error{Expected: "end of comment '*/'", Found: "EOF", Loc: start}
				}
				if l.peek(0) == '*' && l.peek(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) next() (Token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		return Token{}, err
	}
	start := l.loc()
	if l.eof() {
		return Token{Kind: EOF, Loc: start}, nil
	}

	r := l.peek(0)
	switch {
	case IsIdentStart(r):
		var sb strings.Builder
		for !l.eof() && IsIdentPart(l.peek(0)) {
			sb.WriteRune(l.advance())
		}
		return Token{Kind: Word, Value: norm.NFC.String(sb.String()), Loc: start}, nil
	case unicode.IsDigit(r):
		return l.number(start), nil
	case r == '"':
		s, err := l.quoted('"', start, "closing '\"' of quoted identifier")
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: QuotedIdent, Value: norm.NFC.String(s), Loc: start}, nil
	case r == '\'':
		s, err := l.quoted('\'', start, "closing \"'\" of string literal")
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: String, Value: s, Loc: start}, nil
	case r == '$':
		return l.dollarString(start)
	}

	l.advance()
	switch r {
	case '(':
		return Token{Kind: LParen, Value: "(", Loc: start}, nil
	case ')':
		return Token{Kind: RParen, Value: ")", Loc: start}, nil
	case ',':
		return Token{Kind: Comma, Value: ",", Loc: start}, nil
	case ';':
		return Token{Kind: SemiColon, Value: ";", Loc: start}, nil
	case '.':
		return Token{Kind: Period, Value: ".", Loc: start}, nil
	case '=':
		return Token{Kind: Eq, Value: "=", Loc: start}, nil
	case '+':
		return Token{Kind: Plus, Value: "+", Loc: start}, nil
	case '-':
		return Token{Kind: Minus, Value: "-", Loc: start}, nil
	case '*':
		return Token{Kind: Mul, Value: "*", Loc: start}, nil
	case '/':
		return Token{Kind: Div, Value: "/", Loc: start}, nil
	case '%':
		return Token{Kind: Mod, Value: "%", Loc: start}, nil
	case '!':
		if l.peek(0) == '=' {
			l.advance()
			return Token{Kind: Neq, Value: "!=", Loc: start}, nil
		}
	case '<':
		switch l.peek(0) {
		case '=':
			l.advance()
			return Token{Kind: LtEq, Value: "<=", Loc: start}, nil
		case '>':
			l.advance()
			return Token{Kind: Neq, Value: "<>", Loc: start}, nil
		}
		return Token{Kind: Lt, Value: "<", Loc: start}, nil
	case '>':
		if l.peek(0) == '=' {
			l.advance()
			return Token{Kind: GtEq, Value: ">=", Loc: start}, nil
		}
		return Token{Kind: Gt, Value: ">", Loc: start}, nil
	}
	return Token{}, &Error{Expected: "a valid token", Found: fmt.Sprintf("%q", r), Loc: start}
}

func (l *lexer) number(start Location) Token {
	var sb strings.Builder
	for !l.eof() && unicode.IsDigit(l.peek(0)) {
		sb.WriteRune(l.advance())
	}
	if l.peek(0) == '.' && unicode.IsDigit(l.peek(1)) {
		sb.WriteRune(l.advance())
		for !l.eof() && unicode.IsDigit(l.peek(0)) {
			sb.WriteRune(l.advance())
		}
	}
	return Token{Kind: Number, Value: sb.String(), Loc: start}
}

// quoted reads a literal delimited by q. A doubled delimiter is an escaped
// delimiter.
func (l *lexer) quoted(q rune, start Location, expected string) (string, error) {
	l.advance()
	var sb strings.Builder
	for {
		if l.eof() {
			return "", &Error{Expected: expected, Found: "EOF", Loc: start}
		}
		r := l.advance()
		if r == q {
			if l.peek(0) == q {
				l.advance()
				sb.WriteRune(q)
				continue
			}
			return sb.String(), nil
		}
		sb.WriteRune(r)
	}
}

func (l *lexer) dollarString(start Location) (Token, error) {
	l.advance()
	var tag strings.Builder
	for !l.eof() && l.peek(0) != '$' {
		r := l.peek(0)
		if !IsIdentPart(r) || (tag.Len() == 0 && unicode.IsDigit(r)) {
			return Token{}, &Error{Expected: "dollar quote tag", Found: fmt.Sprintf("%q", r), Loc: l.loc()}
		}
		tag.WriteRune(l.advance())
	}
	if l.eof() {
		return Token{}, &Error{Expected: "'$' closing the dollar quote tag", Found: "EOF", Loc: start}
	}
	l.advance()

	delim := []rune("$" + tag.String() + "$")
	var body strings.Builder
	for {
		if l.eof() {
			return Token{}, &Error{Expected: "closing " + string(delim), Found: "EOF", Loc: start}
		}
		if l.hasPrefix(delim) {
			for range delim {
				l.advance()
			}
			return Token{Kind: DollarString, Value: body.String(), Loc: start}, nil
		}
		body.WriteRune(l.advance())
	}
}

func (l *lexer) hasPrefix(p []rune) bool {
	if l.pos+len(p) > len(l.src) {
		return false
	}
	for i, r := range p {
		if l.src[l.pos+i] != r {
			return false
		}
	}
	return true
}

// IsIdentStart reports whether r can begin a bare identifier: an
// underscore or any Unicode letter.
func IsIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func IsIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// IsBareIdent reports whether s lexes back to itself as a single unquoted
// identifier.
func IsBareIdent(s string) bool {
	if s == "" || !norm.NFC.IsNormalString(s) {
		return false
	}
	for i, r := range s {
		if (i == 0 && !IsIdentStart(r)) || !IsIdentPart(r) {
			return false
		}
	}
	return true
}
