// Package parser turns score source text into statements.
package parser

import (
	"github.com/tansive/conductor/internal/catalog"
	"github.com/tansive/conductor/internal/score/expr"
	"github.com/tansive/conductor/internal/score/lexer"
)

// Statement is one declaration of a score file. Pos is where its keyword
// starts.
type Statement interface {
	Pos() lexer.Location
	Keyword() string
}

type NamespaceDecl struct {
	Name string
	Loc  lexer.Location
}

type TableDecl struct {
	Name    string
	ID      catalog.TableID
	Columns []ColumnDef
	Loc     lexer.Location
}

type ColumnDef struct {
	Name     string
	DataType catalog.DataType
	UID      catalog.ColumnID
	Loc      lexer.Location
}

type HttpHandlerDecl struct {
	Name   string
	Policy string
	Body   string
	Loc    lexer.Location
}

type AuthenticationPolicyDecl struct {
	Name string
	Type catalog.AuthenticationType
	Loc  lexer.Location
}

type AuthorizationPolicyDecl struct {
	Name           string
	PermissiveExpr expr.Expression
	Loc            lexer.Location
}

func (s *NamespaceDecl) Pos() lexer.Location            { return s.Loc }
func (s *TableDecl) Pos() lexer.Location                { return s.Loc }
func (s *HttpHandlerDecl) Pos() lexer.Location          { return s.Loc }
func (s *AuthenticationPolicyDecl) Pos() lexer.Location { return s.Loc }
func (s *AuthorizationPolicyDecl) Pos() lexer.Location  { return s.Loc }

func (s *NamespaceDecl) Keyword() string            { return "NAMESPACE" }
func (s *TableDecl) Keyword() string                { return "TABLE" }
func (s *HttpHandlerDecl) Keyword() string          { return "HTTP_HANDLER" }
func (s *AuthenticationPolicyDecl) Keyword() string { return "AUTHENTICATION_POLICY" }
func (s *AuthorizationPolicyDecl) Keyword() string  { return "AUTHORIZATION_POLICY" }
