package report

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"urap-polar/internal/domain"
)

// WriteTable renders the per-sensor rows as a text grid.
func WriteTable(w io.Writer, s *domain.Session) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(CSVHeader)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, row := range sensorRows(s) {
		table.Append(row.strings())
	}
	table.Render()
}
