package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"urap-polar/internal/domain"
)

// WriteCSV one row per sensor under CSVHeader.
func WriteCSV(w io.Writer, s *domain.Session) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range sensorRows(s) {
		if err := cw.Write(row.strings()); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
