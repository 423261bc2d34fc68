package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/tansive/conductor/internal/catalog"
)

var (
	createColor  = color.New(color.FgGreen)
	dropColor    = color.New(color.FgRed).Add(color.Bold)
	alterColor   = color.New(color.FgYellow)
	replaceColor = color.New(color.FgCyan)
	summaryLabel = color.New(color.FgHiMagenta, color.Bold)
)

// editColor picks the color of an edit line from its kind. Colors are
// dropped when stdout is not a terminal.
func editColor(kind catalog.EditKind) *color.Color {
	k := string(kind)
	switch {
	case strings.HasPrefix(k, "create_"), k == string(catalog.KindAddColumn):
		return createColor
	case strings.HasPrefix(k, "drop_"):
		return dropColor
	case strings.HasPrefix(k, "replace_"):
		return replaceColor
	}
	return alterColor
}

// printEdits prints one edit per line terminated by ";", or "No changes."
func printEdits(w io.Writer, edits []catalog.Edit, jsonOutput bool) error {
	if jsonOutput {
		out := make([]editJSON, len(edits))
		for i, e := range edits {
			out[i] = editJSON{Kind: e.Kind(), Namespace: e.NamespaceName(), Edit: e.String()}
		}
		return printJSON(w, out)
	}
	if len(edits) == 0 {
		_, err := fmt.Fprintln(w, "No changes.")
		return err
	}
	for _, e := range edits {
		if _, err := editColor(e.Kind()).Fprintln(w, e.String()+";"); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(w io.Writer, format string, args ...any) {
	summaryLabel.Fprintf(w, format, args...)
}
