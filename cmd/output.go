package cmd

import (
	"io"
	"strings"

	"github.com/habedi/escola/client"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// newTable returns a left-aligned table writing to w.
func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetRowLine(false)
	return table
}

// oneLine flattens free text so it fits in a table cell.
func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if max > 0 && len([]rune(s)) > max {
		return string([]rune(s)[:max-1]) + "…"
	}
	return s
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func idOrDash(id *client.ID) string {
	if id == nil {
		return "-"
	}
	return orDash(id.String())
}

func userName(u *client.User) string {
	if u == nil {
		return "-"
	}
	if u.NomeCompleto != "" {
		return u.NomeCompleto
	}
	return orDash(u.Email)
}

// printPageFooter tells the user how to fetch more when the listing has another page.
func printPageFooter(cmd *cobra.Command, count, page int, hasNext bool) {
	if count > 0 {
		cmd.Printf("Total: %d\n", count)
	}
	if hasNext {
		cmd.Printf("More results are available; use --page %d.\n", page+1)
	}
}

func printComentarios(cmd *cobra.Command, comentarios []client.Comentario, depth int) {
	for _, c := range comentarios {
		cmd.Printf("%s- %s: %s (%s)\n", strings.Repeat("  ", depth), userName(c.Usuario),
			oneLine(c.Texto, 0), c.DataCriacao.Local().Format("2006-01-02 15:04"))
		printComentarios(cmd, c.Respostas, depth+1)
	}
}
