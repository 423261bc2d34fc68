package catalog

import (
	"sort"
)

// Diff returns the ordered edits that transform from into to. A nil catalog
// is treated as empty. Both inputs are validated first and never modified.
//
// The script creates namespaces first, then per namespace (in name order)
// drops tables, creates tables, alters tables, drops handlers and policies
// and finally replaces policies and handlers. Namespaces that only exist in
// from are emptied in that pass and dropped at the end.
func Diff(from, to *Catalog) ([]Edit, error) {
	if from == nil {
		from = New()
	}
	if to == nil {
		to = New()
	}
	if err := from.Validate(); err != nil {
		return nil, ErrDiff.MsgErr("source catalog is invalid", err)
	}
	if err := to.Validate(); err != nil {
		return nil, ErrDiff.MsgErr("target catalog is invalid", err)
	}

	names := make(map[string]bool)
	for name := range from.Namespaces {
		names[name] = true
	}
	for name := range to.Namespaces {
		names[name] = true
	}

	var creates, body, drops []Edit
	for _, name := range sortedKeys(names) {
		a, inFrom := from.Namespaces[name]
		b, inTo := to.Namespaces[name]
		switch {
		case !inFrom:
			creates = append(creates, &CreateNamespace{Name: name})
			body = append(body, diffNamespace(NewNamespace(name), b)...)
		case !inTo:
			body = append(body, diffNamespace(a, NewNamespace(name))...)
			drops = append(drops, &DropNamespace{Name: name})
		default:
			body = append(body, diffNamespace(a, b)...)
		}
	}

	edits := make([]Edit, 0, len(creates)+len(body)+len(drops))
	edits = append(edits, creates...)
	edits = append(edits, body...)
	edits = append(edits, drops...)
	return edits, nil
}

func diffNamespace(a, b *Namespace) []Edit {
	var tableDrops, tableCreates, tableAlters []Edit

	ids := make(map[TableID]bool)
	for id := range a.Tables {
		ids[id] = true
	}
	for id := range b.Tables {
		ids[id] = true
	}
	sortedIDs := make([]TableID, 0, len(ids))
	for id := range ids {
		sortedIDs = append(sortedIDs, id)
	}
	sort.Slice(sortedIDs, func(i, j int) bool { return sortedIDs[i].Compare(sortedIDs[j]) < 0 })

	for _, id := range sortedIDs {
		ta, inA := a.Tables[id]
		tb, inB := b.Tables[id]
		switch {
		case !inB:
			tableDrops = append(tableDrops, &DropTable{Table: ta.Clone()})
		case !inA:
			tableCreates = append(tableCreates, &CreateTable{Table: tb.Clone()})
		default:
			tableAlters = append(tableAlters, diffTable(ta, tb)...)
		}
	}

	var handlerDrops, handlerReplaces []Edit
	for _, name := range unionKeys(a.HttpHandlers, b.HttpHandlers) {
		ha, inA := a.HttpHandlers[name]
		hb, inB := b.HttpHandlers[name]
		switch {
		case !inB:
			c := *ha
			handlerDrops = append(handlerDrops, &DropHttpHandler{Handler: &c})
		case !inA || !ha.Equal(hb):
			c := *hb
			handlerReplaces = append(handlerReplaces, &ReplaceHttpHandler{Handler: &c})
		}
	}

	var authnDrops, authnReplaces []Edit
	for _, name := range unionKeys(a.AuthenticationPolicies, b.AuthenticationPolicies) {
		pa, inA := a.AuthenticationPolicies[name]
		pb, inB := b.AuthenticationPolicies[name]
		switch {
		case !inB:
			c := *pa
			authnDrops = append(authnDrops, &DropAuthenticationPolicy{Policy: &c})
		case !inA || !pa.Equal(pb):
			c := *pb
			authnReplaces = append(authnReplaces, &ReplaceAuthenticationPolicy{Policy: &c})
		}
	}

	var authzDrops, authzReplaces []Edit
	for _, name := range unionKeys(a.AuthorizationPolicies, b.AuthorizationPolicies) {
		pa, inA := a.AuthorizationPolicies[name]
		pb, inB := b.AuthorizationPolicies[name]
		switch {
		case !inB:
			c := *pa
			authzDrops = append(authzDrops, &DropAuthorizationPolicy{Policy: &c})
		case !inA || !pa.Equal(pb):
			c := *pb
			authzReplaces = append(authzReplaces, &ReplaceAuthorizationPolicy{Policy: &c})
		}
	}

	var edits []Edit
	for _, group := range [][]Edit{
		tableDrops, tableCreates, tableAlters,
		handlerDrops, authzDrops, authnDrops,
		authnReplaces, authzReplaces, handlerReplaces,
	} {
		edits = append(edits, group...)
	}
	return edits
}

// diffTable compares two versions of the same table. It emits the table
// rename, then column drops, then column adds in target position order,
// then renames and type changes of columns present in both.
func diffTable(a, b *Table) []Edit {
	var edits []Edit
	if a.Name != b.Name {
		edits = append(edits, &RenameTable{Namespace: b.Namespace, ID: b.ID, From: a.Name, To: b.Name})
	}

	var dropped []Column
	for _, c := range a.Columns {
		if b.ColumnIndex(c.ID) < 0 {
			dropped = append(dropped, c)
		}
	}
	sort.Slice(dropped, func(i, j int) bool { return dropped[i].ID < dropped[j].ID })
	for _, c := range dropped {
		edits = append(edits, &DropColumn{Namespace: b.Namespace, Table: b.ID, TableName: b.Name, Column: c})
	}

	for pos, c := range b.Columns {
		if a.ColumnIndex(c.ID) < 0 {
			edits = append(edits, &AddColumn{Namespace: b.Namespace, Table: b.ID, TableName: b.Name, Position: pos, Column: c})
		}
	}

	var kept []Column
	for _, c := range b.Columns {
		if a.ColumnIndex(c.ID) >= 0 {
			kept = append(kept, c)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].ID < kept[j].ID })
	for _, cb := range kept {
		ca, _ := a.Column(cb.ID)
		if ca.Name != cb.Name {
			edits = append(edits, &RenameColumn{
				Namespace: b.Namespace,
				Table:     b.ID,
				TableName: b.Name,
				Column:    cb.ID,
				From:      ca.Name,
				To:        cb.Name,
			})
		}
		if ca.DataType != cb.DataType {
			edits = append(edits, &AlterColumnType{
				Namespace:  b.Namespace,
				Table:      b.ID,
				TableName:  b.Name,
				Column:     cb.ID,
				ColumnName: cb.Name,
				From:       ca.DataType,
				To:         cb.DataType,
			})
		}
	}
	return edits
}

func unionKeys[T any](a, b map[string]T) []string {
	keys := make(map[string]bool, len(a)+len(b))
	for k := range a {
		keys[k] = true
	}
	for k := range b {
		keys[k] = true
	}
	return sortedKeys(keys)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
