package parser

import (
	"errors"
	"strconv"

	"github.com/tansive/conductor/internal/catalog"
	"github.com/tansive/conductor/internal/score/expr"
	"github.com/tansive/conductor/internal/score/lexer"
)

const statementKeywords = "one of [TABLE HTTP_HANDLER AUTHENTICATION_POLICY AUTHORIZATION_POLICY]"

type parser struct {
	tokens []lexer.Token
	pos    int
}

// Parse parses a score file. The first statement must declare the
// namespace; statements are separated by semicolons.
func Parse(text string) ([]Statement, error) {
	tokens, err := lexer.Tokenize(text)
	if err != nil {
		var lexErr *lexer.Error
		if errors.As(err, &lexErr) {
			return nil, &ParseError{
				Expected: lexErr.Expected,
				Found:    lexErr.Found,
				Line:     lexErr.Loc.Line,
				Column:   lexErr.Loc.Column,
			}
		}
		return nil, err
	}
	p := &parser{tokens: tokens}
	return p.parseScript()
}

func (p *parser) peek() lexer.Token {
	return p.tokens[p.pos]
}

func (p *parser) next() lexer.Token {
	t := p.tokens[p.pos]
	if t.Kind != lexer.EOF {
		p.pos++
	}
	return t
}

func (p *parser) errorAt(expected string, found lexer.Token) *ParseError {
	return &ParseError{
		Expected: expected,
		Found:    found.String(),
		Line:     found.Loc.Line,
		Column:   found.Loc.Column,
	}
}

func (p *parser) expectKeyword(kw string) (lexer.Token, error) {
	t := p.next()
	if !t.IsKeyword(kw) {
		return t, p.errorAt(kw, t)
	}
	return t, nil
}

func (p *parser) expectKind(k lexer.Kind, expected string) (lexer.Token, error) {
	t := p.next()
	if t.Kind != k {
		return t, p.errorAt(expected, t)
	}
	return t, nil
}

func (p *parser) parseIdentifier() (string, error) {
	t := p.next()
	if t.Kind != lexer.Word && t.Kind != lexer.QuotedIdent {
		return "", p.errorAt("identifier", t)
	}
	if t.Value == "" {
		return "", p.errorAt("non-empty identifier", t)
	}
	return t.Value, nil
}

func (p *parser) parseScript() ([]Statement, error) {
	first := p.peek()
	if !first.IsKeyword("NAMESPACE") {
		return nil, p.errorAt("NAMESPACE", first)
	}
	ns, err := p.parseNamespace()
	if err != nil {
		return nil, err
	}
	stmts := []Statement{ns}

	for {
		t := p.next()
		switch t.Kind {
		case lexer.EOF:
			return stmts, nil
		case lexer.SemiColon:
		default:
			return nil, p.errorAt("';' or EOF", t)
		}
		for p.peek().Kind == lexer.SemiColon {
			p.next()
		}
		if p.peek().Kind == lexer.EOF {
			return stmts, nil
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

func (p *parser) parseStatement() (Statement, error) {
	t := p.peek()
	switch {
	case t.IsKeyword("TABLE"):
		return p.parseTable()
	case t.IsKeyword("HTTP_HANDLER"):
		return p.parseHttpHandler()
	case t.IsKeyword("AUTHENTICATION_POLICY"):
		return p.parseAuthenticationPolicy()
	case t.IsKeyword("AUTHORIZATION_POLICY"):
		return p.parseAuthorizationPolicy()
	}
	return nil, p.errorAt(statementKeywords, t)
}

// NAMESPACE name
func (p *parser) parseNamespace() (*NamespaceDecl, error) {
	kw := p.next()
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	return &NamespaceDecl{Name: name, Loc: kw.Loc}, nil
}

// TABLE name UUID 'uuid' ( column, ... )
func (p *parser) parseTable() (*TableDecl, error) {
	kw := p.next()
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("UUID"); err != nil {
		return nil, err
	}
	idTok, err := p.expectKind(lexer.String, "quoted uuid")
	if err != nil {
		return nil, err
	}
	id, perr := catalog.ParseTableID(idTok.Value)
	if perr != nil {
		return nil, p.errorAt("a valid uuid", idTok)
	}
	if _, err := p.expectKind(lexer.LParen, "'('"); err != nil {
		return nil, err
	}

	tbl := &TableDecl{Name: name, ID: id, Loc: kw.Loc}
	for {
		if p.peek().Kind == lexer.RParen {
			p.next()
			return tbl, nil
		}
		col, err := p.parseColumn()
		if err != nil {
			return nil, err
		}
		tbl.Columns = append(tbl.Columns, col)

		t := p.next()
		switch t.Kind {
		case lexer.Comma:
		case lexer.RParen:
			return tbl, nil
		default:
			return nil, p.errorAt("',' or ')'", t)
		}
	}
}

// name data-type UID n
func (p *parser) parseColumn() (ColumnDef, error) {
	start := p.peek()
	name, err := p.parseIdentifier()
	if err != nil {
		return ColumnDef{}, err
	}
	dt, err := p.parseDataType()
	if err != nil {
		return ColumnDef{}, err
	}
	if _, err := p.expectKeyword("UID"); err != nil {
		return ColumnDef{}, err
	}
	uidTok, err := p.expectKind(lexer.Number, "unsigned integer")
	if err != nil {
		return ColumnDef{}, err
	}
	uid, perr := strconv.ParseUint(uidTok.Value, 10, 32)
	if perr != nil {
		return ColumnDef{}, p.errorAt("an unsigned 32-bit integer", uidTok)
	}
	return ColumnDef{Name: name, DataType: dt, UID: catalog.ColumnID(uid), Loc: start.Loc}, nil
}

// type-name [( n [, n] )]
func (p *parser) parseDataType() (catalog.DataType, error) {
	nameTok := p.peek()
	if nameTok.Kind != lexer.Word {
		return "", p.errorAt("data type", nameTok)
	}
	p.next()

	var params []int
	if p.peek().Kind == lexer.LParen {
		p.next()
		for {
			t, err := p.expectKind(lexer.Number, "integer")
			if err != nil {
				return "", err
			}
			v, perr := strconv.Atoi(t.Value)
			if perr != nil {
				return "", p.errorAt("integer", t)
			}
			params = append(params, v)
			sep := p.next()
			if sep.Kind == lexer.RParen {
				break
			}
			if sep.Kind != lexer.Comma {
				return "", p.errorAt("',' or ')'", sep)
			}
		}
	}

	if !catalog.DataTypeExists(nameTok.Value) {
		return "", p.errorAt("a known data type", nameTok)
	}
	dt, err := catalog.ParseDataType(nameTok.Value, params)
	if err != nil {
		return "", p.errorAt("valid parameters for data type "+nameTok.Value, nameTok)
	}
	return dt, nil
}

// HTTP_HANDLER name POLICY policy AS $$ body $$
func (p *parser) parseHttpHandler() (*HttpHandlerDecl, error) {
	kw := p.next()
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("POLICY"); err != nil {
		return nil, err
	}
	policy, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("AS"); err != nil {
		return nil, err
	}
	body, err := p.expectKind(lexer.DollarString, "dollar quoted statement")
	if err != nil {
		return nil, err
	}
	return &HttpHandlerDecl{Name: name, Policy: policy, Body: body.Value, Loc: kw.Loc}, nil
}

// AUTHENTICATION_POLICY name TYPE = anonymous
func (p *parser) parseAuthenticationPolicy() (*AuthenticationPolicyDecl, error) {
	kw := p.next()
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("TYPE"); err != nil {
		return nil, err
	}
	if _, err := p.expectKind(lexer.Eq, "'='"); err != nil {
		return nil, err
	}
	t := p.next()
	typ, ok := catalog.ParseAuthenticationType(t.Value)
	if t.Kind != lexer.Word || !ok {
		return nil, p.errorAt("anonymous", t)
	}
	return &AuthenticationPolicyDecl{Name: name, Type: typ, Loc: kw.Loc}, nil
}

// AUTHORIZATION_POLICY name permissive_expr = expression
func (p *parser) parseAuthorizationPolicy() (*AuthorizationPolicyDecl, error) {
	kw := p.next()
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("permissive_expr"); err != nil {
		return nil, err
	}
	if _, err := p.expectKind(lexer.Eq, "'='"); err != nil {
		return nil, err
	}
	n, pos, err := expr.Parse(p.tokens, p.pos)
	if err != nil {
		var exprErr *expr.Error
		if errors.As(err, &exprErr) {
			return nil, p.errorAt(exprErr.Expected, exprErr.Found)
		}
		return nil, err
	}
	p.pos = pos
	return &AuthorizationPolicyDecl{Name: name, PermissiveExpr: expr.Expression{Root: n}, Loc: kw.Loc}, nil
}
