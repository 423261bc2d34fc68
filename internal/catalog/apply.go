package catalog

import (
	"github.com/tansive/conductor/internal/common/apperrors"
)

// Apply returns a copy of c with edit applied. c is left untouched.
func Apply(c *Catalog, edit Edit) (*Catalog, error) {
	out := c.Clone()
	if err := out.Apply(edit); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyAll applies edits in order to a copy of c.
func ApplyAll(c *Catalog, edits []Edit) (*Catalog, error) {
	out := c.Clone()
	for _, e := range edits {
		if err := out.Apply(e); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Apply mutates c in place. c must be exclusively owned by the caller. A
// failed edit leaves c unchanged. Name uniqueness is not checked here since
// an edit script may pass through states where two tables share a name;
// Validate the result once the whole script is applied.
func (c *Catalog) Apply(edit Edit) error {
	if c.Namespaces == nil {
		c.Namespaces = make(map[string]*Namespace)
	}
	if e, ok := edit.(*CreateNamespace); ok {
		if _, exists := c.Namespaces[e.Name]; exists {
			return ErrNamespaceExists.Msgf("namespace %s already exists", e.Name)
		}
		c.Namespaces[e.Name] = NewNamespace(e.Name)
		return nil
	}

	ns, ok := c.Namespaces[edit.NamespaceName()]
	if !ok || ns == nil {
		return ErrNamespaceNotFound.Msgf("namespace %s not found applying %s", edit.NamespaceName(), edit)
	}
	ns.initMaps()

	switch e := edit.(type) {
	case *DropNamespace:
		if !ns.IsEmpty() {
			return ErrNamespaceNotEmpty.Msgf("namespace %s is not empty", e.Name)
		}
		delete(c.Namespaces, e.Name)

	case *CreateTable:
		if _, exists := ns.Tables[e.Table.ID]; exists {
			return ErrTableExists.Msgf("table %s with uuid %s already exists", e.Table.QualifiedName(), e.Table.ID)
		}
		ns.Tables[e.Table.ID] = e.Table.Clone()

	case *DropTable:
		if _, exists := ns.Tables[e.Table.ID]; !exists {
			return ErrTableNotFound.Msgf("table %s with uuid %s not found", e.Table.QualifiedName(), e.Table.ID)
		}
		delete(ns.Tables, e.Table.ID)

	case *RenameTable:
		t, err := tableByID(ns, e.ID)
		if err != nil {
			return err
		}
		t.Name = e.To

	case *AddColumn:
		t, err := tableByID(ns, e.Table)
		if err != nil {
			return err
		}
		if t.ColumnIndex(e.Column.ID) >= 0 {
			return ErrColumnExists.Msgf("column uid %d already exists in %s", e.Column.ID, t.QualifiedName())
		}
		pos := min(max(e.Position, 0), len(t.Columns))
		t.Columns = append(t.Columns, Column{})
		copy(t.Columns[pos+1:], t.Columns[pos:])
		t.Columns[pos] = e.Column

	case *DropColumn:
		t, i, err := columnByID(ns, e.Table, e.Column.ID)
		if err != nil {
			return err
		}
		t.Columns = append(t.Columns[:i], t.Columns[i+1:]...)

	case *RenameColumn:
		t, i, err := columnByID(ns, e.Table, e.Column)
		if err != nil {
			return err
		}
		t.Columns[i].Name = e.To

	case *AlterColumnType:
		t, i, err := columnByID(ns, e.Table, e.Column)
		if err != nil {
			return err
		}
		t.Columns[i].DataType = e.To

	case *ReplaceHttpHandler:
		h := *e.Handler
		ns.HttpHandlers[h.Name] = &h

	case *DropHttpHandler:
		if _, exists := ns.HttpHandlers[e.Handler.Name]; !exists {
			return ErrHandlerNotFound.Msgf("http handler %s not found", e.Handler.QualifiedName())
		}
		delete(ns.HttpHandlers, e.Handler.Name)

	case *ReplaceAuthenticationPolicy:
		p := *e.Policy
		ns.AuthenticationPolicies[p.Name] = &p

	case *DropAuthenticationPolicy:
		if _, exists := ns.AuthenticationPolicies[e.Policy.Name]; !exists {
			return ErrPolicyNotFound.Msgf("authentication policy %s not found", e.Policy.QualifiedName())
		}
		delete(ns.AuthenticationPolicies, e.Policy.Name)

	case *ReplaceAuthorizationPolicy:
		p := *e.Policy
		ns.AuthorizationPolicies[p.Name] = &p

	case *DropAuthorizationPolicy:
		if _, exists := ns.AuthorizationPolicies[e.Policy.Name]; !exists {
			return ErrPolicyNotFound.Msgf("authorization policy %s not found", e.Policy.QualifiedName())
		}
		delete(ns.AuthorizationPolicies, e.Policy.Name)

	default:
		return ErrUnknownEdit.Msgf("unknown edit %T", edit)
	}
	return nil
}

func (ns *Namespace) initMaps() {
	if ns.Tables == nil {
		ns.Tables = make(map[TableID]*Table)
	}
	if ns.HttpHandlers == nil {
		ns.HttpHandlers = make(map[string]*HttpHandler)
	}
	if ns.AuthenticationPolicies == nil {
		ns.AuthenticationPolicies = make(map[string]*AuthenticationPolicy)
	}
	if ns.AuthorizationPolicies == nil {
		ns.AuthorizationPolicies = make(map[string]*AuthorizationPolicy)
	}
}

func tableByID(ns *Namespace, id TableID) (*Table, apperrors.Error) {
	t, ok := ns.Tables[id]
	if !ok {
		return nil, ErrTableNotFound.Msgf("table with uuid %s not found in namespace %s", id, ns.Name)
	}
	return t, nil
}

func columnByID(ns *Namespace, table TableID, col ColumnID) (*Table, int, apperrors.Error) {
	t, err := tableByID(ns, table)
	if err != nil {
		return nil, -1, err
	}
	i := t.ColumnIndex(col)
	if i < 0 {
		return nil, -1, ErrColumnNotFound.Msgf("column uid %d not found in %s", col, t.QualifiedName())
	}
	return t, i, nil
}
