// Package output renders the outcome of a run for the terminal.
package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jakopako/storesnap/internal/run"
	"github.com/jakopako/storesnap/internal/target"
	"github.com/olekukonko/tablewriter"
)

// WriteSummary prints one row per store with the captured steps. Stores
// without any screenshot are colored red, partially captured ones yellow.
func WriteSummary(w io.Writer, res *run.Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Store", "Folder", "Screenshots", "Captured"})

	total := 0
	for _, tr := range res.Targets {
		captured := make([]string, 0, len(tr.Steps))
		for _, s := range tr.Steps {
			captured = append(captured, string(s))
		}
		label := tr.Label
		if label == "" {
			label = "-"
		}
		row := []string{tr.Target.String(), label, strconv.Itoa(len(tr.Steps)), strings.Join(captured, ", ")}
		total += len(tr.Steps)

		switch {
		case len(tr.Steps) == 0:
			table.Rich(row, rowColors(tablewriter.FgRedColor, len(row)))
		case len(tr.Steps) < len(target.Steps):
			table.Rich(row, rowColors(tablewriter.FgYellowColor, len(row)))
		default:
			table.Append(row)
		}
	}
	table.SetFooter([]string{"total", fmt.Sprintf("%d stores", len(res.Targets)), strconv.Itoa(total), ""})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT})
	table.SetBorder(false)
	table.Render()
}

func rowColors(color, n int) []tablewriter.Colors {
	colors := make([]tablewriter.Colors, n)
	for i := range colors {
		colors[i] = tablewriter.Colors{tablewriter.Normal, color}
	}
	return colors
}
