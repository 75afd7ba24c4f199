package ingest

import (
	"strconv"
	"strings"
)

// splitLines splits on \n, \r\n and \r.
func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.Split(content, "\n")
}

// splitKeyValue splits at the first comma; values may contain commas.
func splitKeyValue(line string) (key, value string, ok bool) {
	idx := strings.IndexByte(line, ',')
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}

func parseInt(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// stripBOM drops a leading UTF-8 byte order mark.
func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
