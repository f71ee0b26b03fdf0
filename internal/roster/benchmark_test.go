package roster

import (
	"fmt"
	"strings"
	"testing"
)

// buildRoster generates a parseable roster with n data rows.
func buildRoster(n int) string {
	var b strings.Builder
	b.WriteString("name,certification_id,email\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "\"Holder, Number %d\",CERT-%06d,holder%d@example.com\n", i, i, i)
	}
	return b.String()
}

// BenchmarkParse benchmarks the full pipeline on a mid-size roster. This is
// the hot path of every upload and preview request.
func BenchmarkParse(b *testing.B) {
	input := buildRoster(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(input); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSplitRows benchmarks row splitting alone, the only stage that
// touches every byte of the document.
func BenchmarkSplitRows(b *testing.B) {
	input := buildRoster(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		splitRows(input)
	}
}

// BenchmarkSplitFields_Quoted benchmarks tokenizing a row with quoted
// commas and escaped quotes.
func BenchmarkSplitFields_Quoted(b *testing.B) {
	row := "\"Doe, Jane \"\"JJ\"\"\",CERT-000123,jane@example.com"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		splitFields(row)
	}
}
