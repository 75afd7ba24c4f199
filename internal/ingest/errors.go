package ingest

import (
	"errors"
	"fmt"
)

// ErrFormat archive does not have the recording_<id>_csv layout
var ErrFormat = errors.New("invalid recording archive")

// FormatError structural problem with an export archive. Only these abort a
// load; everything below the folder/session_info level degrades instead.
type FormatError struct {
	Path   string // archive path or the missing entry
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Path)
}

func (e *FormatError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrFormat, e.Err}
	}
	return []error{ErrFormat}
}
