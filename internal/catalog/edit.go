package catalog

import (
	"strconv"

	"github.com/tansive/conductor/internal/score/expr"
)

type EditKind string

const (
	KindCreateNamespace             EditKind = "create_namespace"
	KindDropNamespace               EditKind = "drop_namespace"
	KindCreateTable                 EditKind = "create_table"
	KindDropTable                   EditKind = "drop_table"
	KindRenameTable                 EditKind = "rename_table"
	KindAddColumn                   EditKind = "add_column"
	KindDropColumn                  EditKind = "drop_column"
	KindRenameColumn                EditKind = "rename_column"
	KindAlterColumnType             EditKind = "alter_column_type"
	KindReplaceHttpHandler          EditKind = "replace_http_handler"
	KindDropHttpHandler             EditKind = "drop_http_handler"
	KindReplaceAuthenticationPolicy EditKind = "replace_authentication_policy"
	KindDropAuthenticationPolicy    EditKind = "drop_authentication_policy"
	KindReplaceAuthorizationPolicy  EditKind = "replace_authorization_policy"
	KindDropAuthorizationPolicy     EditKind = "drop_authorization_policy"
)

// Edit is one structural change between two catalogs. String renders it as
// a single line.
type Edit interface {
	Kind() EditKind
	NamespaceName() string
	String() string
}

type CreateNamespace struct {
	Name string
}

type DropNamespace struct {
	Name string
}

// CreateTable carries the complete table definition, columns included.
type CreateTable struct {
	Table *Table
}

type DropTable struct {
	Table *Table
}

type RenameTable struct {
	Namespace string
	ID        TableID
	From      string
	To        string
}

// AddColumn inserts Column at Position of the table's column list. A
// position past the end appends.
type AddColumn struct {
	Namespace string
	Table     TableID
	TableName string
	Position  int
	Column    Column
}

type DropColumn struct {
	Namespace string
	Table     TableID
	TableName string
	Column    Column
}

type RenameColumn struct {
	Namespace string
	Table     TableID
	TableName string
	Column    ColumnID
	From      string
	To        string
}

type AlterColumnType struct {
	Namespace  string
	Table      TableID
	TableName  string
	Column     ColumnID
	ColumnName string
	From       DataType
	To         DataType
}

type ReplaceHttpHandler struct {
	Handler *HttpHandler
}

type DropHttpHandler struct {
	Handler *HttpHandler
}

type ReplaceAuthenticationPolicy struct {
	Policy *AuthenticationPolicy
}

type DropAuthenticationPolicy struct {
	Policy *AuthenticationPolicy
}

type ReplaceAuthorizationPolicy struct {
	Policy *AuthorizationPolicy
}

type DropAuthorizationPolicy struct {
	Policy *AuthorizationPolicy
}

func (e *CreateNamespace) Kind() EditKind             { return KindCreateNamespace }
func (e *DropNamespace) Kind() EditKind               { return KindDropNamespace }
func (e *CreateTable) Kind() EditKind                 { return KindCreateTable }
func (e *DropTable) Kind() EditKind                   { return KindDropTable }
func (e *RenameTable) Kind() EditKind                 { return KindRenameTable }
func (e *AddColumn) Kind() EditKind                   { return KindAddColumn }
func (e *DropColumn) Kind() EditKind                  { return KindDropColumn }
func (e *RenameColumn) Kind() EditKind                { return KindRenameColumn }
func (e *AlterColumnType) Kind() EditKind             { return KindAlterColumnType }
func (e *ReplaceHttpHandler) Kind() EditKind          { return KindReplaceHttpHandler }
func (e *DropHttpHandler) Kind() EditKind             { return KindDropHttpHandler }
func (e *ReplaceAuthenticationPolicy) Kind() EditKind { return KindReplaceAuthenticationPolicy }
func (e *DropAuthenticationPolicy) Kind() EditKind    { return KindDropAuthenticationPolicy }
func (e *ReplaceAuthorizationPolicy) Kind() EditKind  { return KindReplaceAuthorizationPolicy }
func (e *DropAuthorizationPolicy) Kind() EditKind     { return KindDropAuthorizationPolicy }

func (e *CreateNamespace) NamespaceName() string             { return e.Name }
func (e *DropNamespace) NamespaceName() string               { return e.Name }
func (e *CreateTable) NamespaceName() string                 { return e.Table.Namespace }
func (e *DropTable) NamespaceName() string                   { return e.Table.Namespace }
func (e *RenameTable) NamespaceName() string                 { return e.Namespace }
func (e *AddColumn) NamespaceName() string                   { return e.Namespace }
func (e *DropColumn) NamespaceName() string                  { return e.Namespace }
func (e *RenameColumn) NamespaceName() string                { return e.Namespace }
func (e *AlterColumnType) NamespaceName() string             { return e.Namespace }
func (e *ReplaceHttpHandler) NamespaceName() string          { return e.Handler.Namespace }
func (e *DropHttpHandler) NamespaceName() string             { return e.Handler.Namespace }
func (e *ReplaceAuthenticationPolicy) NamespaceName() string { return e.Policy.Namespace }
func (e *DropAuthenticationPolicy) NamespaceName() string    { return e.Policy.Namespace }
func (e *ReplaceAuthorizationPolicy) NamespaceName() string  { return e.Policy.Namespace }
func (e *DropAuthorizationPolicy) NamespaceName() string     { return e.Policy.Namespace }

func (e *CreateNamespace) String() string {
	return "CREATE NAMESPACE " + expr.QuoteIdent(e.Name)
}

func (e *DropNamespace) String() string {
	return "DROP NAMESPACE " + expr.QuoteIdent(e.Name)
}

func (e *CreateTable) String() string {
	return "CREATE TABLE " + e.Table.Definition()
}

func (e *DropTable) String() string {
	return "DROP TABLE " + e.Table.QualifiedName()
}

func (e *RenameTable) String() string {
	return "ALTER TABLE " + qualify(e.Namespace, e.From) + " RENAME TO " + expr.QuoteIdent(e.To)
}

func (e *AddColumn) String() string {
	return "ALTER TABLE " + qualify(e.Namespace, e.TableName) + " ADD COLUMN " + e.Column.String()
}

func (e *DropColumn) String() string {
	return "ALTER TABLE " + qualify(e.Namespace, e.TableName) + " DROP COLUMN " + expr.QuoteIdent(e.Column.Name)
}

func (e *RenameColumn) String() string {
	return "ALTER TABLE " + qualify(e.Namespace, e.TableName) + " RENAME COLUMN " +
		expr.QuoteIdent(e.From) + " TO " + expr.QuoteIdent(e.To)
}

func (e *AlterColumnType) String() string {
	return "ALTER TABLE " + qualify(e.Namespace, e.TableName) + " ALTER COLUMN " +
		expr.QuoteIdent(e.ColumnName) + " TYPE " + e.To.String()
}

func (e *ReplaceHttpHandler) String() string {
	return "REPLACE HTTP_HANDLER " + e.Handler.QualifiedName()
}

func (e *DropHttpHandler) String() string {
	return "DROP HTTP_HANDLER " + e.Handler.QualifiedName()
}

func (e *ReplaceAuthenticationPolicy) String() string {
	return "REPLACE AUTHENTICATION_POLICY " + e.Policy.QualifiedName()
}

func (e *DropAuthenticationPolicy) String() string {
	return "DROP AUTHENTICATION_POLICY " + e.Policy.QualifiedName()
}

func (e *ReplaceAuthorizationPolicy) String() string {
	return "REPLACE AUTHORIZATION_POLICY " + e.Policy.QualifiedName()
}

func (e *DropAuthorizationPolicy) String() string {
	return "DROP AUTHORIZATION_POLICY " + e.Policy.QualifiedName()
}

func formatUID(id ColumnID) string {
	return strconv.FormatUint(uint64(id), 10)
}
