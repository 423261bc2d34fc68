package catalog

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/tansive/conductor/internal/score/expr"
)

var (
	genNamespaces = []string{"alpha", "beta", "gamma"}
	genTableIDs   = []TableID{
		MustParseTableID("00000000-0000-7000-8000-000000000001"),
		MustParseTableID("00000000-0000-7000-8000-000000000002"),
		MustParseTableID("00000000-0000-7000-8000-000000000003"),
		MustParseTableID("00000000-0000-7000-8000-000000000004"),
		MustParseTableID("00000000-0000-7000-8000-000000000005"),
	}
	genTableNames  = []string{"t1", "t2", "t3", "t4", "t5"}
	genColumnNames = []string{"c1", "c2", "c3", "c4", "c5", "c6"}
	genDataTypes   = []DataType{Integer, BigInt, Text, Boolean, "VARCHAR(8)", "DECIMAL(10,2)"}
	genExprs       = []string{"true", "false", "1 = 1", "role = 'admin'"}
)

func genCatalog(t *rapid.T, label string) *Catalog {
	c := New()
	names := rapid.SliceOfDistinct(rapid.SampledFrom(genNamespaces), rapid.ID[string]).Draw(t, label+" namespaces")
	for _, name := range names {
		c.Namespaces[name] = genNamespace(t, label+" "+name, name)
	}
	return c
}

func genNamespace(t *rapid.T, label, name string) *Namespace {
	ns := NewNamespace(name)

	ids := rapid.SliceOfDistinct(rapid.IntRange(0, len(genTableIDs)-1), rapid.ID[int]).Draw(t, label+" tables")
	tableNames := rapid.Permutation(genTableNames).Draw(t, label+" table names")
	for i, idx := range ids {
		id := genTableIDs[idx]
		tbl := &Table{Namespace: name, ID: id, Name: tableNames[i]}
		uids := rapid.SliceOfDistinct(rapid.IntRange(1, len(genColumnNames)), rapid.ID[int]).Draw(t, fmt.Sprintf("%s %d uids", label, idx))
		colNames := rapid.Permutation(genColumnNames).Draw(t, fmt.Sprintf("%s %d column names", label, idx))
		for j, uid := range uids {
			tbl.Columns = append(tbl.Columns, Column{
				ID:       ColumnID(uid),
				Name:     colNames[j],
				DataType: rapid.SampledFrom(genDataTypes).Draw(t, fmt.Sprintf("%s %d type %d", label, idx, uid)),
			})
		}
		ns.Tables[id] = tbl
	}

	for _, p := range rapid.SliceOfDistinct(rapid.SampledFrom([]string{"anon", "guest"}), rapid.ID[string]).Draw(t, label+" authn") {
		ns.AuthenticationPolicies[p] = &AuthenticationPolicy{Namespace: name, Name: p, Type: AuthenticationAnonymous}
	}

	var policies []string
	for _, p := range rapid.SliceOfDistinct(rapid.SampledFrom([]string{"p1", "p2", "p3"}), rapid.ID[string]).Draw(t, label+" authz") {
		ns.AuthorizationPolicies[p] = &AuthorizationPolicy{
			Namespace:      name,
			Name:           p,
			PermissiveExpr: expr.MustParse(rapid.SampledFrom(genExprs).Draw(t, label+" expr "+p)),
		}
		policies = append(policies, p)
	}
	if len(policies) > 0 {
		for _, h := range rapid.SliceOfDistinct(rapid.SampledFrom([]string{"h1", "h2"}), rapid.ID[string]).Draw(t, label+" handlers") {
			ns.HttpHandlers[h] = &HttpHandler{
				Namespace: name,
				Name:      h,
				Body:      rapid.SampledFrom([]string{"SELECT 1", "SELECT 2"}).Draw(t, label+" body "+h),
				Policy:    rapid.SampledFrom(policies).Draw(t, label+" policy "+h),
			}
		}
	}
	return ns
}

func TestPropertyDiffApplyReachesTarget(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		from := genCatalog(t, "from")
		to := genCatalog(t, "to")
		fromCopy := from.Clone()
		toCopy := to.Clone()

		edits, err := Diff(from, to)
		if err != nil {
			t.Fatalf("diff: %v", err)
		}
		got, err := ApplyAll(from, edits)
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		if !got.Equal(to) {
			t.Fatalf("applying %v did not reach the target catalog", editStrings(edits))
		}
		if err := got.Validate(); err != nil {
			t.Fatalf("result is invalid: %v", err)
		}
		if !from.Equal(fromCopy) || !to.Equal(toCopy) {
			t.Fatalf("diff or apply modified an input")
		}
	})
}

func TestPropertyDiffIsDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		from := genCatalog(t, "from")
		to := genCatalog(t, "to")

		first, err := Diff(from, to)
		if err != nil {
			t.Fatalf("diff: %v", err)
		}
		second, err := Diff(from.Clone(), to.Clone())
		if err != nil {
			t.Fatalf("diff: %v", err)
		}
		a, b := editStrings(first), editStrings(second)
		if fmt.Sprint(a) != fmt.Sprint(b) {
			t.Fatalf("diff is not deterministic:\n%v\n%v", a, b)
		}
	})
}

func TestPropertyDiffSelfIsEmpty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := genCatalog(t, "catalog")
		edits, err := Diff(c, c.Clone())
		if err != nil {
			t.Fatalf("diff: %v", err)
		}
		if len(edits) != 0 {
			t.Fatalf("expected no edits, got %v", editStrings(edits))
		}
	})
}
