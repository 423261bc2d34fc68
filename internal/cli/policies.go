package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tansive/conductor/internal/catalog"
	"github.com/tansive/conductor/internal/catalog/auth"
	"github.com/tansive/conductor/internal/score"
)

type policyDecision struct {
	Namespace  string `json:"namespace"`
	Handler    string `json:"handler"`
	Policy     string `json:"policy"`
	Expression string `json:"expression"`
	Allowed    bool   `json:"allowed"`
}

func newPoliciesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "policies <dir>",
		Short: "Evaluate the authorization policy of every HTTP handler",
		Long: `Compile a score directory and evaluate the authorization policy guarding
each HTTP handler. Policies are folded over their literals: a policy allows
only when its expression is TRUE without any request context.

Examples:
  conductor policies ./score`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := score.Load(args[0])
			if err != nil {
				return err
			}
			decisions := evaluatePolicies(c, auth.ConstantEvaluator{})
			w := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(w, decisions)
			}
			if len(decisions) == 0 {
				_, err := fmt.Fprintln(w, "No HTTP handlers.")
				return err
			}

			title := cases.Title(language.English)
			headers := []string{"namespace", "handler", "policy", "expression", "decision"}
			for i, h := range headers {
				headers[i] = title.String(h)
			}
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, strings.Join(headers, "\t"))
			for _, d := range decisions {
				decision := "deny"
				if d.Allowed {
					decision = "allow"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.Namespace, d.Handler, d.Policy, d.Expression, decision)
			}
			return tw.Flush()
		},
	}
}

func evaluatePolicies(c *catalog.Catalog, ev auth.Evaluator) []policyDecision {
	decisions := []policyDecision{}
	for _, ns := range c.SortedNamespaces() {
		for _, h := range ns.SortedHttpHandlers() {
			d := policyDecision{Namespace: ns.Name, Handler: h.Name, Policy: h.Policy}
			if p, ok := ns.AuthorizationPolicies[h.Policy]; ok {
				d.Expression = p.PermissiveExpr.String()
				d.Allowed = ev.Evaluate(p)
			}
			decisions = append(decisions, d)
		}
	}
	return decisions
}
