// Package catalog holds the in-memory catalog model: namespaces with their
// tables, http handlers and access policies. Tables and columns carry stable
// identities that survive renames, which is what Diff keys on.
package catalog

import (
	"sort"
	"strings"

	"github.com/tansive/conductor/internal/common/uuid"
	"github.com/tansive/conductor/internal/score/expr"
)

// TableID is the immutable identity of a table, assigned at declaration.
type TableID uuid.UUID

func (id TableID) String() string {
	return uuid.UUID(id).String()
}

func (id TableID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

func (id TableID) Compare(other TableID) int {
	return uuid.Compare(uuid.UUID(id), uuid.UUID(other))
}

func (id TableID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *TableID) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	if err != nil {
		return ErrInvalidCatalog.MsgErr("invalid table uuid "+string(text), err)
	}
	*id = TableID(u)
	return nil
}

func ParseTableID(s string) (TableID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return TableID{}, err
	}
	return TableID(u), nil
}

func MustParseTableID(s string) TableID {
	return TableID(uuid.MustParse(s))
}

// NewTableID returns a fresh time ordered table identity.
func NewTableID() TableID {
	return TableID(uuid.New())
}

// ColumnID is the immutable identity of a column within its table.
type ColumnID uint32

type Catalog struct {
	Namespaces map[string]*Namespace
}

type Namespace struct {
	Name                   string
	Tables                 map[TableID]*Table
	HttpHandlers           map[string]*HttpHandler
	AuthenticationPolicies map[string]*AuthenticationPolicy
	AuthorizationPolicies  map[string]*AuthorizationPolicy
}

type Table struct {
	Namespace string   `json:"namespace"`
	ID        TableID  `json:"uuid"`
	Name      string   `json:"name"`
	Columns   []Column `json:"columns"`
}

type Column struct {
	ID       ColumnID `json:"uid"`
	Name     string   `json:"name"`
	DataType DataType `json:"data_type"`
}

type HttpHandler struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	// Body is the query statement served by the handler. It is opaque here.
	Body   string `json:"body"`
	Policy string `json:"policy"`
}

type AuthenticationType string

const (
	AuthenticationAnonymous AuthenticationType = "anonymous"
)

// ParseAuthenticationType resolves a type name, ignoring case.
func ParseAuthenticationType(s string) (AuthenticationType, bool) {
	switch AuthenticationType(strings.ToLower(s)) {
	case AuthenticationAnonymous:
		return AuthenticationAnonymous, true
	}
	return "", false
}

type AuthenticationPolicy struct {
	Namespace string             `json:"namespace"`
	Name      string             `json:"name"`
	Type      AuthenticationType `json:"type"`
}

type AuthorizationPolicy struct {
	Namespace      string          `json:"namespace"`
	Name           string          `json:"name"`
	PermissiveExpr expr.Expression `json:"permissive_expr"`
}

func New() *Catalog {
	return &Catalog{Namespaces: make(map[string]*Namespace)}
}

func NewNamespace(name string) *Namespace {
	return &Namespace{
		Name:                   name,
		Tables:                 make(map[TableID]*Table),
		HttpHandlers:           make(map[string]*HttpHandler),
		AuthenticationPolicies: make(map[string]*AuthenticationPolicy),
		AuthorizationPolicies:  make(map[string]*AuthorizationPolicy),
	}
}

// SortedNamespaces returns the namespaces ordered by name.
func (c *Catalog) SortedNamespaces() []*Namespace {
	out := make([]*Namespace, 0, len(c.Namespaces))
	for _, ns := range c.Namespaces {
		out = append(out, ns)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// IsEmpty reports whether c has no namespaces. A nil catalog is empty.
func (c *Catalog) IsEmpty() bool {
	return c == nil || len(c.Namespaces) == 0
}

func (c *Catalog) Clone() *Catalog {
	if c == nil {
		return New()
	}
	out := New()
	for name, ns := range c.Namespaces {
		out.Namespaces[name] = ns.Clone()
	}
	return out
}

// Equal reports structural equality. Column order is not significant. A nil
// catalog equals any empty catalog.
func (c *Catalog) Equal(other *Catalog) bool {
	if c == nil || other == nil {
		return c.IsEmpty() && other.IsEmpty()
	}
	if len(c.Namespaces) != len(other.Namespaces) {
		return false
	}
	for name, ns := range c.Namespaces {
		o, ok := other.Namespaces[name]
		if !ok || !ns.Equal(o) {
			return false
		}
	}
	return true
}

// SortedTables returns the tables ordered by identity.
func (ns *Namespace) SortedTables() []*Table {
	out := make([]*Table, 0, len(ns.Tables))
	for _, t := range ns.Tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Compare(out[j].ID) < 0 })
	return out
}

// TableByName finds a table by its display name.
func (ns *Namespace) TableByName(name string) (*Table, bool) {
	for _, t := range ns.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

func (ns *Namespace) SortedHttpHandlers() []*HttpHandler {
	return sortedByName(ns.HttpHandlers)
}

func (ns *Namespace) SortedAuthenticationPolicies() []*AuthenticationPolicy {
	return sortedByName(ns.AuthenticationPolicies)
}

func (ns *Namespace) SortedAuthorizationPolicies() []*AuthorizationPolicy {
	return sortedByName(ns.AuthorizationPolicies)
}

func (ns *Namespace) IsEmpty() bool {
	return len(ns.Tables) == 0 &&
		len(ns.HttpHandlers) == 0 &&
		len(ns.AuthenticationPolicies) == 0 &&
		len(ns.AuthorizationPolicies) == 0
}

func (ns *Namespace) Clone() *Namespace {
	out := NewNamespace(ns.Name)
	for id, t := range ns.Tables {
		out.Tables[id] = t.Clone()
	}
	for name, h := range ns.HttpHandlers {
		c := *h
		out.HttpHandlers[name] = &c
	}
	for name, p := range ns.AuthenticationPolicies {
		c := *p
		out.AuthenticationPolicies[name] = &c
	}
	for name, p := range ns.AuthorizationPolicies {
		c := *p
		out.AuthorizationPolicies[name] = &c
	}
	return out
}

func (ns *Namespace) Equal(other *Namespace) bool {
	if ns.Name != other.Name ||
		len(ns.Tables) != len(other.Tables) ||
		len(ns.HttpHandlers) != len(other.HttpHandlers) ||
		len(ns.AuthenticationPolicies) != len(other.AuthenticationPolicies) ||
		len(ns.AuthorizationPolicies) != len(other.AuthorizationPolicies) {
		return false
	}
	for id, t := range ns.Tables {
		o, ok := other.Tables[id]
		if !ok || !t.Equal(o) {
			return false
		}
	}
	for name, h := range ns.HttpHandlers {
		o, ok := other.HttpHandlers[name]
		if !ok || !h.Equal(o) {
			return false
		}
	}
	for name, p := range ns.AuthenticationPolicies {
		o, ok := other.AuthenticationPolicies[name]
		if !ok || !p.Equal(o) {
			return false
		}
	}
	for name, p := range ns.AuthorizationPolicies {
		o, ok := other.AuthorizationPolicies[name]
		if !ok || !p.Equal(o) {
			return false
		}
	}
	return true
}

// QualifiedName renders namespace.table.
func (t *Table) QualifiedName() string {
	return qualify(t.Namespace, t.Name)
}

// ColumnIndex returns the position of the column with the given identity,
// or -1.
func (t *Table) ColumnIndex(id ColumnID) int {
	for i := range t.Columns {
		if t.Columns[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *Table) Column(id ColumnID) (Column, bool) {
	if i := t.ColumnIndex(id); i >= 0 {
		return t.Columns[i], true
	}
	return Column{}, false
}

func (t *Table) ColumnByName(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

func (t *Table) Clone() *Table {
	c := *t
	c.Columns = append([]Column(nil), t.Columns...)
	return &c
}

// Equal compares tables by identity and attributes. Column order is not
// significant: columns are matched by uid, so two tables listing the same
// columns in a different order are equal, and Diff emits no edit for a
// reorder.
func (t *Table) Equal(other *Table) bool {
	if t.Namespace != other.Namespace || t.ID != other.ID || t.Name != other.Name ||
		len(t.Columns) != len(other.Columns) {
		return false
	}
	for _, c := range t.Columns {
		o, ok := other.Column(c.ID)
		if !ok || o != c {
			return false
		}
	}
	return true
}

// Definition renders the table as it appears in a CREATE TABLE edit.
func (t *Table) Definition() string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = c.String()
	}
	return t.QualifiedName() + " (" + strings.Join(cols, ", ") + ")"
}

func (c Column) String() string {
	return expr.QuoteIdent(c.Name) + " " + c.DataType.String() + " UID " + formatUID(c.ID)
}

func (h *HttpHandler) Equal(other *HttpHandler) bool {
	return *h == *other
}

func (h *HttpHandler) QualifiedName() string {
	return qualify(h.Namespace, h.Name)
}

func (p *AuthenticationPolicy) Equal(other *AuthenticationPolicy) bool {
	return *p == *other
}

func (p *AuthenticationPolicy) QualifiedName() string {
	return qualify(p.Namespace, p.Name)
}

func (p *AuthorizationPolicy) Equal(other *AuthorizationPolicy) bool {
	return p.Namespace == other.Namespace && p.Name == other.Name && p.PermissiveExpr.Equal(other.PermissiveExpr)
}

func (p *AuthorizationPolicy) QualifiedName() string {
	return qualify(p.Namespace, p.Name)
}

type named interface {
	*HttpHandler | *AuthenticationPolicy | *AuthorizationPolicy
}

func sortedByName[T named](m map[string]T) []T {
	keys := sortedNames(m)
	out := make([]T, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}

func sortedNames[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func qualify(namespace, name string) string {
	return expr.QuoteIdent(namespace) + "." + expr.QuoteIdent(name)
}
