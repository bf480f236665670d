// Package cli holds small presentation helpers shared by the CLI's
// subcommands — currently just the table renderer the list command uses to
// show a loaded unit directory's jigs, tests, and scenarios.
package cli

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	cfstrings "github.com/giantswarm/cfti/pkg/strings"
)

// Row is one line of a rendered table: a fixed id/name/description shape,
// which covers every unit kind `cfti list` prints.
type Row struct {
	ID          string
	Name        string
	Description string
}

// WriteTable renders rows as a bordered table with the given column
// headers to w, truncating descriptions to keep wide unit files from
// blowing out terminal width.
func WriteTable(w io.Writer, headers [3]string, rows []Row) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{headers[0], headers[1], headers[2]})

	for _, r := range rows {
		t.AppendRow(table.Row{r.ID, r.Name, cfstrings.TruncateDescription(r.Description, 60)})
	}

	t.SetStyle(table.StyleLight)
	t.Render()
}
