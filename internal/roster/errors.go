package roster

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInsufficientRows is returned when the file has no data rows to import.
var ErrInsufficientRows = errors.New("CSV must contain a header row and at least one data row")

// ErrNoValidRecipients is returned when every data row was skipped.
var ErrNoValidRecipients = errors.New("no valid recipients found in file")

// MissingColumnsError reports required columns absent from the header row.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// DuplicateIDError reports a certification_id that appears on more than one
// row. Row is the 1-based position of the second occurrence, counting the
// header as row 1.
type DuplicateIDError struct {
	ID  string
	Row int
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate certification_id %q on row %d", e.ID, e.Row)
}
