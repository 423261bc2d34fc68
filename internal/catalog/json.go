package catalog

import (
	jsonitor "github.com/json-iterator/go"
)

var json = jsonitor.ConfigCompatibleWithStandardLibrary

// The catalog is encoded with its maps flattened into sorted lists, so the
// same catalog always encodes to the same bytes.

type catalogJSON struct {
	Namespaces []*Namespace `json:"namespaces"`
}

type namespaceJSON struct {
	Name                   string                  `json:"name"`
	Tables                 []*Table                `json:"tables"`
	HttpHandlers           []*HttpHandler          `json:"http_handlers"`
	AuthenticationPolicies []*AuthenticationPolicy `json:"authentication_policies"`
	AuthorizationPolicies  []*AuthorizationPolicy  `json:"authorization_policies"`
}

func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(catalogJSON{Namespaces: c.SortedNamespaces()})
}

func (c *Catalog) UnmarshalJSON(data []byte) error {
	var w catalogJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	c.Namespaces = make(map[string]*Namespace, len(w.Namespaces))
	for _, ns := range w.Namespaces {
		if ns == nil {
			return ErrInvalidCatalog.Msg("null namespace")
		}
		if _, dup := c.Namespaces[ns.Name]; dup {
			return ErrInvalidCatalog.Msgf("namespace %s is listed twice", ns.Name)
		}
		c.Namespaces[ns.Name] = ns
	}
	return nil
}

func (ns *Namespace) MarshalJSON() ([]byte, error) {
	tables := ns.SortedTables()
	for i, t := range tables {
		if t.Columns == nil {
			c := *t
			c.Columns = []Column{}
			tables[i] = &c
		}
	}
	return json.Marshal(namespaceJSON{
		Name:                   ns.Name,
		Tables:                 tables,
		HttpHandlers:           ns.SortedHttpHandlers(),
		AuthenticationPolicies: ns.SortedAuthenticationPolicies(),
		AuthorizationPolicies:  ns.SortedAuthorizationPolicies(),
	})
}

func (ns *Namespace) UnmarshalJSON(data []byte) error {
	var w namespaceJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*ns = *NewNamespace(w.Name)
	for _, t := range w.Tables {
		if t == nil {
			return ErrInvalidCatalog.Msgf("null table in namespace %s", w.Name)
		}
		if _, dup := ns.Tables[t.ID]; dup {
			return ErrInvalidCatalog.Msgf("table uuid %s is listed twice in namespace %s", t.ID, w.Name)
		}
		ns.Tables[t.ID] = t
	}
	for _, h := range w.HttpHandlers {
		if h == nil {
			return ErrInvalidCatalog.Msgf("null http handler in namespace %s", w.Name)
		}
		if _, dup := ns.HttpHandlers[h.Name]; dup {
			return ErrInvalidCatalog.Msgf("http handler %s is listed twice in namespace %s", h.Name, w.Name)
		}
		ns.HttpHandlers[h.Name] = h
	}
	for _, p := range w.AuthenticationPolicies {
		if p == nil {
			return ErrInvalidCatalog.Msgf("null authentication policy in namespace %s", w.Name)
		}
		if _, dup := ns.AuthenticationPolicies[p.Name]; dup {
			return ErrInvalidCatalog.Msgf("authentication policy %s is listed twice in namespace %s", p.Name, w.Name)
		}
		ns.AuthenticationPolicies[p.Name] = p
	}
	for _, p := range w.AuthorizationPolicies {
		if p == nil {
			return ErrInvalidCatalog.Msgf("null authorization policy in namespace %s", w.Name)
		}
		if _, dup := ns.AuthorizationPolicies[p.Name]; dup {
			return ErrInvalidCatalog.Msgf("authorization policy %s is listed twice in namespace %s", p.Name, w.Name)
		}
		ns.AuthorizationPolicies[p.Name] = p
	}
	return nil
}
