package roster

import "strings"

// normalizeNewlines rewrites Windows and classic Mac line endings to plain
// newlines so the row splitter only has to deal with one terminator.
func normalizeNewlines(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// splitRows cuts normalized text into logical rows. A newline inside a
// quoted region belongs to the current row, so quoted values may span
// multiple physical lines. Rows that are empty or whitespace-only are
// dropped. An unterminated quote at end of input still yields the partial
// row rather than losing it.
//
// The scan is byte-wise: quotes, commas and newlines are all ASCII, and
// UTF-8 continuation bytes can never alias them.
func splitRows(text string) []string {
	var rows []string
	start := 0
	inQuotes := false
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '"':
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				// Escaped quote pair, resolved later by the tokenizer.
				i++
				continue
			}
			inQuotes = !inQuotes
		case '\n':
			if inQuotes {
				continue
			}
			if row := text[start:i]; strings.TrimSpace(row) != "" {
				rows = append(rows, row)
			}
			start = i + 1
		}
	}
	if start < len(text) {
		if row := text[start:]; strings.TrimSpace(row) != "" {
			rows = append(rows, row)
		}
	}
	return rows
}
