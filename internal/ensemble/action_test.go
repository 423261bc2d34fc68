package ensemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tansive/conductor/internal/catalog"
)

var usersID = catalog.MustParseTableID("11111111-1111-1111-1111-111111111111")

func baseCatalog() *catalog.Catalog {
	c := catalog.New()
	ns := catalog.NewNamespace("shop")
	ns.Tables[usersID] = &catalog.Table{
		Namespace: "shop",
		ID:        usersID,
		Name:      "users",
		Columns:   []catalog.Column{{ID: 1, Name: "id", DataType: catalog.Integer}},
	}
	c.Namespaces["shop"] = ns
	return c
}

func TestActionFor(t *testing.T) {
	c := baseCatalog()
	users := c.Namespaces["shop"].Tables[usersID]

	tests := []struct {
		name string
		edit catalog.Edit
		kind ActionKind
		ok   bool
	}{
		{"create table", &catalog.CreateTable{Table: users}, ActionCreateTable, true},
		{"drop table", &catalog.DropTable{Table: users}, ActionDropTable, true},
		{"rename table", &catalog.RenameTable{Namespace: "shop", ID: usersID, From: "people", To: "users"}, ActionAlterTable, true},
		{"add column", &catalog.AddColumn{Namespace: "shop", Table: usersID, TableName: "users", Column: catalog.Column{ID: 2, Name: "x", DataType: catalog.Text}}, ActionAlterTable, true},
		{"create namespace", &catalog.CreateNamespace{Name: "shop"}, "", false},
		{"replace handler", &catalog.ReplaceHttpHandler{Handler: &catalog.HttpHandler{Namespace: "shop", Name: "h"}}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, ok := actionFor(c, tt.edit)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.kind, a.Kind)
			assert.Equal(t, usersID, a.Table.ID)
			if a.Kind == ActionDropTable {
				assert.Nil(t, a.Schema)
			} else {
				assert.True(t, users.Equal(a.Schema))
				assert.NotSame(t, users, a.Schema)
			}
		})
	}
}

func TestEnqueueCollapsesSchemaUpdates(t *testing.T) {
	ref := TableRef{Namespace: "shop", ID: usersID, Name: "users"}
	other := TableRef{Namespace: "shop", ID: catalog.MustParseTableID("22222222-2222-2222-2222-222222222222"), Name: "orders"}
	v1 := &catalog.Table{Namespace: "shop", ID: usersID, Name: "users"}
	v2 := &catalog.Table{Namespace: "shop", ID: usersID, Name: "people"}

	var q []Action
	q = enqueue(q, Action{Kind: ActionCreateTable, Table: ref, Schema: v1})
	q = enqueue(q, Action{Kind: ActionAlterTable, Table: TableRef{Namespace: "shop", ID: usersID, Name: "people"}, Schema: v2})
	require.Len(t, q, 1)
	assert.Equal(t, ActionCreateTable, q[0].Kind)
	assert.Same(t, v2, q[0].Schema)
	assert.Equal(t, "people", q[0].Table.Name)

	q = enqueue(q, Action{Kind: ActionAlterTable, Table: other})
	q = enqueue(q, Action{Kind: ActionAlterTable, Table: ref, Schema: v1})
	assert.Len(t, q, 3)

	q = enqueue(q, Action{Kind: ActionDropTable, Table: ref})
	q = enqueue(q, Action{Kind: ActionAlterTable, Table: ref})
	assert.Len(t, q, 5)
}

func TestCommitErrorMatchesCause(t *testing.T) {
	cause := catalog.ErrTableExists
	err := error(&CommitError{Index: 2, Action: Action{Kind: ActionCreateTable, Table: TableRef{Namespace: "shop", ID: usersID, Name: "users"}}, Err: cause})
	assert.ErrorIs(t, err, ErrCommit)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "action 2 (create_table shop.users (11111111-1111-1111-1111-111111111111))")
}
