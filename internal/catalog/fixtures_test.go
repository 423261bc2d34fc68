package catalog

import (
	"github.com/tansive/conductor/internal/score/expr"
)

var (
	usersID  = MustParseTableID("11111111-1111-1111-1111-111111111111")
	ordersID = MustParseTableID("22222222-2222-2222-2222-222222222222")
)

// testCatalog builds namespace "shop" with two tables, one handler and both
// kinds of policy.
func testCatalog() *Catalog {
	c := New()
	ns := NewNamespace("shop")
	ns.Tables[usersID] = &Table{
		Namespace: "shop",
		ID:        usersID,
		Name:      "users",
		Columns: []Column{
			{ID: 1, Name: "id", DataType: Integer},
			{ID: 2, Name: "email", DataType: "VARCHAR(255)"},
		},
	}
	ns.Tables[ordersID] = &Table{
		Namespace: "shop",
		ID:        ordersID,
		Name:      "orders",
		Columns: []Column{
			{ID: 1, Name: "id", DataType: BigInt},
			{ID: 2, Name: "user_id", DataType: Integer},
			{ID: 3, Name: "total", DataType: "DECIMAL(10,2)"},
		},
	}
	ns.AuthenticationPolicies["anon"] = &AuthenticationPolicy{Namespace: "shop", Name: "anon", Type: AuthenticationAnonymous}
	ns.AuthorizationPolicies["allow_all"] = &AuthorizationPolicy{Namespace: "shop", Name: "allow_all", PermissiveExpr: expr.MustParse("true")}
	ns.HttpHandlers["list_users"] = &HttpHandler{Namespace: "shop", Name: "list_users", Body: "SELECT * FROM users", Policy: "allow_all"}
	c.Namespaces["shop"] = ns
	return c
}

func editStrings(edits []Edit) []string {
	out := make([]string, len(edits))
	for i, e := range edits {
		out[i] = e.String()
	}
	return out
}
