package roster

import "strings"

// splitFields cuts a single logical row into cleaned field values. Commas
// inside quoted regions are literal, a doubled quote inside a quoted region
// emits one quote character, and a lone quote toggles the quoted state
// without appearing in the output. The final accumulator is always flushed,
// so a row always yields at least one field.
func splitFields(row string) []string {
	fields := make([]string, 0, 8)
	var field strings.Builder
	inQuotes := false
	for i := 0; i < len(row); i++ {
		c := row[i]
		switch c {
		case '"':
			if inQuotes && i+1 < len(row) && row[i+1] == '"' {
				field.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case ',':
			if inQuotes {
				field.WriteByte(',')
				continue
			}
			fields = append(fields, cleanField(field.String()))
			field.Reset()
		default:
			field.WriteByte(c)
		}
	}
	return append(fields, cleanField(field.String()))
}

// cleanField trims surrounding whitespace, then strips one surviving
// matched quote pair and trims again. Only a matched pair is stripped:
// a value whose content legitimately starts or ends with a single quote,
// such as the result of unescaping `"Say ""Hi"""`, is left intact.
func cleanField(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
