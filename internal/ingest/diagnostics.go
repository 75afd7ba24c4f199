package ingest

import (
	"fmt"

	"go.uber.org/zap"
)

// Diagnostic one value, row or file that was dropped or defaulted during a
// lenient parse. Line is 1-based, 0 when the diagnostic is about the whole
// file.
type Diagnostic struct {
	File   string
	Line   int
	Reason string
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", d.File, d.Line, d.Reason)
	}
	return fmt.Sprintf("%s: %s", d.File, d.Reason)
}

// diagnostics collects Diagnostic values and mirrors them to the logger at
// debug level.
type diagnostics struct {
	items  []Diagnostic
	logger *zap.Logger
}

func (d *diagnostics) add(file string, line int, format string, args ...any) {
	item := Diagnostic{File: file, Line: line, Reason: fmt.Sprintf(format, args...)}
	d.items = append(d.items, item)
	d.logger.Debug("lenient parse",
		zap.String("file", item.File),
		zap.Int("line", item.Line),
		zap.String("reason", item.Reason),
	)
}
