package roster

import "strings"

// Required column names, matched case-insensitively against the header row.
const (
	ColumnName  = "name"
	ColumnID    = "certification_id"
	ColumnEmail = "email"
)

// RequiredColumns returns the header names every roster file must carry,
// in canonical order. Callers use it for template generation and error
// reporting; the slice is freshly allocated on each call.
func RequiredColumns() []string {
	return []string{ColumnName, ColumnID, ColumnEmail}
}

// columnIndex holds the position of each required column in the header row.
type columnIndex struct {
	name  int
	id    int
	email int
}

// minFields is the field count a data row needs for every required column
// to be addressable.
func (c columnIndex) minFields() int {
	n := c.name
	if c.id > n {
		n = c.id
	}
	if c.email > n {
		n = c.email
	}
	return n + 1
}

// resolveColumns locates the required columns in a header row. Matching is
// case-insensitive, order does not matter, and unknown columns are ignored.
// If a required name appears more than once the first occurrence wins.
func resolveColumns(header []string) (columnIndex, error) {
	idx := columnIndex{name: -1, id: -1, email: -1}
	for i, cell := range header {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case ColumnName:
			if idx.name < 0 {
				idx.name = i
			}
		case ColumnID:
			if idx.id < 0 {
				idx.id = i
			}
		case ColumnEmail:
			if idx.email < 0 {
				idx.email = i
			}
		}
	}
	var missing []string
	if idx.name < 0 {
		missing = append(missing, ColumnName)
	}
	if idx.id < 0 {
		missing = append(missing, ColumnID)
	}
	if idx.email < 0 {
		missing = append(missing, ColumnEmail)
	}
	if len(missing) > 0 {
		return columnIndex{}, &MissingColumnsError{Missing: missing}
	}
	return idx, nil
}
