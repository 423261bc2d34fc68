package score

import (
	"strconv"
	"strings"

	"github.com/tansive/conductor/internal/catalog"
	"github.com/tansive/conductor/internal/score/expr"
)

// Format renders ns as a score file that compiles back to the same
// namespace.
func Format(ns *catalog.Namespace) string {
	var b strings.Builder
	b.WriteString("NAMESPACE " + expr.QuoteIdent(ns.Name) + ";\n")

	for _, t := range ns.SortedTables() {
		b.WriteString("\nTABLE " + expr.QuoteIdent(t.Name) + " UUID '" + t.ID.String() + "' (")
		for i, c := range t.Columns {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString("\n    " + c.String())
		}
		if len(t.Columns) > 0 {
			b.WriteString("\n")
		}
		b.WriteString(");\n")
	}

	if len(ns.AuthenticationPolicies) > 0 {
		b.WriteString("\n")
	}
	for _, p := range ns.SortedAuthenticationPolicies() {
		b.WriteString("AUTHENTICATION_POLICY " + expr.QuoteIdent(p.Name) + " TYPE = " + string(p.Type) + ";\n")
	}
	if len(ns.AuthorizationPolicies) > 0 {
		b.WriteString("\n")
	}
	for _, p := range ns.SortedAuthorizationPolicies() {
		b.WriteString("AUTHORIZATION_POLICY " + expr.QuoteIdent(p.Name) + " permissive_expr = " + p.PermissiveExpr.String() + ";\n")
	}

	for _, h := range ns.SortedHttpHandlers() {
		tag := dollarTag(h.Body)
		b.WriteString("\nHTTP_HANDLER " + expr.QuoteIdent(h.Name) + " POLICY " + expr.QuoteIdent(h.Policy) +
			" AS " + tag + h.Body + tag + ";\n")
	}
	return b.String()
}

// dollarTag picks a dollar quote delimiter whose first occurrence in
// body+tag is the closing one.
func dollarTag(body string) string {
	tag := "$$"
	for i := 0; strings.Contains(body+tag[:len(tag)-1], tag); i++ {
		tag = "$q" + strconv.Itoa(i) + "$"
	}
	return tag
}
