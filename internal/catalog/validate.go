package catalog

import (
	"slices"

	"github.com/tansive/conductor/internal/common/apperrors"
)

// Validate checks the catalog invariants and returns ErrInvalidCatalog
// describing the first violation found. Namespaces and their contents are
// visited in sorted order so the reported violation is stable.
func (c *Catalog) Validate() apperrors.Error {
	for _, key := range sortedNames(c.Namespaces) {
		ns := c.Namespaces[key]
		if ns == nil {
			return ErrInvalidCatalog.Msgf("namespace %s is nil", key)
		}
		if key != ns.Name {
			return ErrInvalidCatalog.Msgf("namespace key %s does not match name %s", key, ns.Name)
		}
	}
	for _, ns := range c.SortedNamespaces() {
		if err := ns.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (ns *Namespace) Validate() apperrors.Error {
	if ns.Name == "" {
		return ErrInvalidCatalog.Msg("namespace name is empty")
	}

	names := make(map[string]TableID)
	ids := make([]TableID, 0, len(ns.Tables))
	for id := range ns.Tables {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, TableID.Compare)
	for _, id := range ids {
		if t := ns.Tables[id]; t == nil || id != t.ID {
			return ErrInvalidCatalog.Msgf("table key %s in namespace %s does not match its uuid", id, ns.Name)
		}
	}
	for _, t := range ns.SortedTables() {
		if t.ID.IsNil() {
			return ErrInvalidCatalog.Msgf("table %s has a nil uuid", t.QualifiedName())
		}
		if t.Name == "" {
			return ErrInvalidCatalog.Msgf("table %s in namespace %s has no name", t.ID, ns.Name)
		}
		if t.Namespace != ns.Name {
			return ErrInvalidCatalog.Msgf("table %s names namespace %s but is held by %s", t.Name, t.Namespace, ns.Name)
		}
		if other, dup := names[t.Name]; dup {
			return ErrInvalidCatalog.Msgf("table name %s is used by %s and %s", t.QualifiedName(), other, t.ID)
		}
		names[t.Name] = t.ID
		if err := t.validateColumns(); err != nil {
			return err
		}
	}

	for _, key := range sortedNames(ns.AuthenticationPolicies) {
		p := ns.AuthenticationPolicies[key]
		if p == nil || key != p.Name || p.Namespace != ns.Name {
			return ErrInvalidCatalog.Msgf("authentication policy %s is not keyed by its name in namespace %s", key, ns.Name)
		}
		if _, ok := ParseAuthenticationType(string(p.Type)); !ok {
			return ErrInvalidCatalog.Msgf("authentication policy %s has unknown type %q", p.QualifiedName(), p.Type)
		}
	}
	for _, key := range sortedNames(ns.AuthorizationPolicies) {
		p := ns.AuthorizationPolicies[key]
		if p == nil || key != p.Name || p.Namespace != ns.Name {
			return ErrInvalidCatalog.Msgf("authorization policy %s is not keyed by its name in namespace %s", key, ns.Name)
		}
		if p.PermissiveExpr.IsZero() {
			return ErrInvalidCatalog.Msgf("authorization policy %s has no permissive expression", p.QualifiedName())
		}
	}
	for _, key := range sortedNames(ns.HttpHandlers) {
		h := ns.HttpHandlers[key]
		if h == nil || key != h.Name || h.Namespace != ns.Name {
			return ErrInvalidCatalog.Msgf("http handler %s is not keyed by its name in namespace %s", key, ns.Name)
		}
		if _, ok := ns.AuthorizationPolicies[h.Policy]; !ok {
			return ErrInvalidCatalog.Msgf("http handler %s references unknown authorization policy %s", h.QualifiedName(), h.Policy)
		}
	}
	return nil
}

func (t *Table) validateColumns() apperrors.Error {
	ids := make(map[ColumnID]bool, len(t.Columns))
	names := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if c.Name == "" {
			return ErrInvalidCatalog.Msgf("column %d of table %s has no name", c.ID, t.QualifiedName())
		}
		if ids[c.ID] {
			return ErrInvalidCatalog.Msgf("column uid %d is repeated in table %s", c.ID, t.QualifiedName())
		}
		if names[c.Name] {
			return ErrInvalidCatalog.Msgf("column name %s is repeated in table %s", c.Name, t.QualifiedName())
		}
		if _, err := ParseDataTypeString(string(c.DataType)); err != nil {
			return ErrInvalidCatalog.MsgErr("column "+c.Name+" of table "+t.QualifiedName()+" has an invalid type", err)
		}
		ids[c.ID] = true
		names[c.Name] = true
	}
	return nil
}
