// Package compiler turns parsed score files into a validated catalog.
package compiler

import (
	"fmt"

	"github.com/tansive/conductor/internal/catalog"
	"github.com/tansive/conductor/internal/score/lexer"
	"github.com/tansive/conductor/internal/score/parser"
)

// File is the parsed content of one score file.
type File struct {
	Path       string
	Statements []parser.Statement
}

type site struct {
	path string
	loc  lexer.Location
}

func (s site) String() string {
	return fmt.Sprintf("%s %s", s.path, s.loc)
}

type compiler struct {
	ns       *catalog.Namespace
	nsSite   site
	tableIDs map[catalog.TableID]site
	tables   map[string]site
	handlers map[string]site
	authn    map[string]site
	authz    map[string]site
}

// Compile merges files into one catalog. All files must declare the same
// namespace. No files yields an empty catalog.
func Compile(files []File) (*catalog.Catalog, error) {
	c := &compiler{
		tableIDs: make(map[catalog.TableID]site),
		tables:   make(map[string]site),
		handlers: make(map[string]site),
		authn:    make(map[string]site),
		authz:    make(map[string]site),
	}
	for _, f := range files {
		if err := c.compileFile(f); err != nil {
			return nil, err
		}
	}

	out := catalog.New()
	if c.ns == nil {
		return out, nil
	}
	if err := c.checkPolicyReferences(); err != nil {
		return nil, err
	}
	out.Namespaces[c.ns.Name] = c.ns
	if err := out.Validate(); err != nil {
		return nil, ErrCompile.Err(err)
	}
	return out, nil
}

func (c *compiler) compileFile(f File) error {
	if len(f.Statements) == 0 {
		return &CompileError{Kind: ErrMissingNamespaceDecl, Path: f.Path, Loc: lexer.Location{Line: 1, Column: 1},
			Detail: "file is empty"}
	}
	decl, ok := f.Statements[0].(*parser.NamespaceDecl)
	if !ok {
		return &CompileError{Kind: ErrMissingNamespaceDecl, Path: f.Path, Loc: f.Statements[0].Pos(),
			Detail: "first statement is " + f.Statements[0].Keyword() + ", not NAMESPACE"}
	}
	if err := c.declareNamespace(f.Path, decl); err != nil {
		return err
	}

	for _, stmt := range f.Statements[1:] {
		s := site{path: f.Path, loc: stmt.Pos()}
		var err error
		switch stmt := stmt.(type) {
		case *parser.NamespaceDecl:
			err = c.declareNamespace(f.Path, stmt)
		case *parser.TableDecl:
			err = c.addTable(s, stmt)
		case *parser.HttpHandlerDecl:
			err = c.addHttpHandler(s, stmt)
		case *parser.AuthenticationPolicyDecl:
			err = c.addAuthenticationPolicy(s, stmt)
		case *parser.AuthorizationPolicyDecl:
			err = c.addAuthorizationPolicy(s, stmt)
		default:
			err = ErrCompile.Msgf("%s: unsupported statement %T", s, stmt)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) declareNamespace(path string, decl *parser.NamespaceDecl) error {
	if c.ns == nil {
		c.ns = catalog.NewNamespace(decl.Name)
		c.nsSite = site{path: path, loc: decl.Loc}
		return nil
	}
	if decl.Name != c.ns.Name {
		return &CompileError{
			Kind:   ErrConflictingNamespace,
			Path:   path,
			Loc:    decl.Loc,
			Entity: "namespace " + decl.Name,
			Detail: fmt.Sprintf("namespace %s conflicts with namespace %s declared at %s", decl.Name, c.ns.Name, c.nsSite),
		}
	}
	return nil
}

func (c *compiler) addTable(s site, decl *parser.TableDecl) error {
	entity := "table " + decl.Name
	if prev, dup := c.tableIDs[decl.ID]; dup {
		return &CompileError{Kind: ErrConflictingTable, Path: s.path, Loc: s.loc, Entity: entity,
			Detail: fmt.Sprintf("table %s reuses uuid %s already declared at %s", decl.Name, decl.ID, prev)}
	}
	if prev, dup := c.tables[decl.Name]; dup {
		return &CompileError{Kind: ErrConflictingTable, Path: s.path, Loc: s.loc, Entity: entity,
			Detail: fmt.Sprintf("table %s is already declared at %s", decl.Name, prev)}
	}

	tbl := &catalog.Table{Namespace: c.ns.Name, ID: decl.ID, Name: decl.Name, Columns: make([]catalog.Column, 0, len(decl.Columns))}
	uids := make(map[catalog.ColumnID]string)
	names := make(map[string]bool)
	for _, col := range decl.Columns {
		colSite := site{path: s.path, loc: col.Loc}
		if prev, dup := uids[col.UID]; dup {
			return &CompileError{Kind: ErrConflictingColumn, Path: s.path, Loc: col.Loc, Entity: entity + " column " + col.Name,
				Detail: fmt.Sprintf("column %s of table %s reuses uid %d of column %s", col.Name, decl.Name, col.UID, prev)}
		}
		if names[col.Name] {
			return &CompileError{Kind: ErrConflictingColumn, Path: s.path, Loc: col.Loc, Entity: entity + " column " + col.Name,
				Detail: fmt.Sprintf("column %s is declared twice in table %s at %s", col.Name, decl.Name, colSite)}
		}
		uids[col.UID] = col.Name
		names[col.Name] = true
		tbl.Columns = append(tbl.Columns, catalog.Column{ID: col.UID, Name: col.Name, DataType: col.DataType})
	}

	c.tableIDs[decl.ID] = s
	c.tables[decl.Name] = s
	c.ns.Tables[tbl.ID] = tbl
	return nil
}

func (c *compiler) addHttpHandler(s site, decl *parser.HttpHandlerDecl) error {
	if prev, dup := c.handlers[decl.Name]; dup {
		return &CompileError{Kind: ErrConflictingHandler, Path: s.path, Loc: s.loc, Entity: "http handler " + decl.Name,
			Detail: fmt.Sprintf("http handler %s is already declared at %s", decl.Name, prev)}
	}
	c.handlers[decl.Name] = s
	c.ns.HttpHandlers[decl.Name] = &catalog.HttpHandler{
		Namespace: c.ns.Name,
		Name:      decl.Name,
		Body:      decl.Body,
		Policy:    decl.Policy,
	}
	return nil
}

func (c *compiler) addAuthenticationPolicy(s site, decl *parser.AuthenticationPolicyDecl) error {
	if prev, dup := c.authn[decl.Name]; dup {
		return &CompileError{Kind: ErrConflictingPolicy, Path: s.path, Loc: s.loc, Entity: "authentication policy " + decl.Name,
			Detail: fmt.Sprintf("authentication policy %s is already declared at %s", decl.Name, prev)}
	}
	c.authn[decl.Name] = s
	c.ns.AuthenticationPolicies[decl.Name] = &catalog.AuthenticationPolicy{
		Namespace: c.ns.Name,
		Name:      decl.Name,
		Type:      decl.Type,
	}
	return nil
}

func (c *compiler) addAuthorizationPolicy(s site, decl *parser.AuthorizationPolicyDecl) error {
	if prev, dup := c.authz[decl.Name]; dup {
		return &CompileError{Kind: ErrConflictingPolicy, Path: s.path, Loc: s.loc, Entity: "authorization policy " + decl.Name,
			Detail: fmt.Sprintf("authorization policy %s is already declared at %s", decl.Name, prev)}
	}
	c.authz[decl.Name] = s
	c.ns.AuthorizationPolicies[decl.Name] = &catalog.AuthorizationPolicy{
		Namespace:      c.ns.Name,
		Name:           decl.Name,
		PermissiveExpr: decl.PermissiveExpr,
	}
	return nil
}

// checkPolicyReferences runs after every file is read, so a handler may
// name a policy declared later or in another file.
func (c *compiler) checkPolicyReferences() error {
	for _, h := range c.ns.SortedHttpHandlers() {
		if _, ok := c.ns.AuthorizationPolicies[h.Policy]; ok {
			continue
		}
		s := c.handlers[h.Name]
		return &CompileError{Kind: ErrUnknownPolicy, Path: s.path, Loc: s.loc, Entity: "http handler " + h.Name,
			Detail: fmt.Sprintf("http handler %s references undeclared authorization policy %s", h.Name, h.Policy)}
	}
	return nil
}
