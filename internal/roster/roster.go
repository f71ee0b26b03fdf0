package roster

import "fmt"

// Recipient is one validated roster row. Row is 1-based and counts the
// header as row 1, matching SkippedRow numbering.
type Recipient struct {
	Row             int    `json:"row"`
	Name            string `json:"name"`
	CertificationID string `json:"certification_id"`
	Email           string `json:"email,omitempty"`
}

// SkippedRow records a data row that could not become a recipient. Row is
// 1-based and counts the header as row 1, so the first data row is row 2.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Result is the outcome of a successful parse. Recipients holds the rows
// that validated, in file order; Skipped holds the diagnostics for rows
// that did not.
type Result struct {
	Recipients []Recipient  `json:"recipients"`
	Skipped    []SkippedRow `json:"skipped,omitempty"`
}

// Parse converts raw CSV text into certificate recipients.
//
// Line endings are normalized first, then the text runs through the row
// splitter, field tokenizer, header resolver and per-row validator
// described in the package documentation. Blank rows are dropped before
// numbering, so reported row numbers count surviving rows only.
//
// Email is optional per row; name and certification_id are required and
// rows missing either are skipped. A certification_id seen twice aborts
// the parse with a [DuplicateIDError].
func Parse(input string) (*Result, error) {
	rows := splitRows(normalizeNewlines(input))
	if len(rows) < 2 {
		return nil, ErrInsufficientRows
	}

	cols, err := resolveColumns(splitFields(rows[0]))
	if err != nil {
		return nil, err
	}

	need := cols.minFields()
	seen := make(map[string]struct{}, len(rows)-1)
	res := &Result{}
	for i, row := range rows[1:] {
		rowNum := i + 2
		fields := splitFields(row)
		if len(fields) < need {
			res.skip(rowNum, fmt.Sprintf("expected at least %d columns, got %d", need, len(fields)))
			continue
		}

		name := cleanField(fields[cols.name])
		id := cleanField(fields[cols.id])
		email := cleanField(fields[cols.email])
		if name == "" {
			res.skip(rowNum, fmt.Sprintf("empty required field %q", ColumnName))
			continue
		}
		if id == "" {
			res.skip(rowNum, fmt.Sprintf("empty required field %q", ColumnID))
			continue
		}
		if _, dup := seen[id]; dup {
			return nil, &DuplicateIDError{ID: id, Row: rowNum}
		}
		seen[id] = struct{}{}

		res.Recipients = append(res.Recipients, Recipient{
			Row:             rowNum,
			Name:            name,
			CertificationID: id,
			Email:           email,
		})
	}

	if len(res.Recipients) == 0 {
		return nil, ErrNoValidRecipients
	}
	return res, nil
}

func (r *Result) skip(row int, reason string) {
	r.Skipped = append(r.Skipped, SkippedRow{Row: row, Reason: reason})
}
