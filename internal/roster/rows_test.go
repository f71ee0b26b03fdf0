package roster

import (
	"reflect"
	"testing"
)

// ============================================================================
// Newline Normalization Tests
// ============================================================================

func TestNormalizeNewlines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "unix untouched", input: "a\nb\n", want: "a\nb\n"},
		{name: "windows", input: "a\r\nb\r\n", want: "a\nb\n"},
		{name: "classic mac", input: "a\rb\r", want: "a\nb\n"},
		{name: "mixed", input: "a\r\nb\rc\n", want: "a\nb\nc\n"},
		{name: "no newlines", input: "abc", want: "abc"},
		{name: "empty", input: "", want: ""},
		{name: "cr inside quotes still normalized", input: "\"a\rb\"", want: "\"a\nb\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeNewlines(tt.input)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// ============================================================================
// Row Splitter Tests
// ============================================================================

func TestSplitRows(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "simple rows",
			input: "a,b\nc,d",
			want:  []string{"a,b", "c,d"},
		},
		{
			name:  "trailing newline yields no extra row",
			input: "a,b\nc,d\n",
			want:  []string{"a,b", "c,d"},
		},
		{
			name:  "newline inside quotes stays in row",
			input: "a,\"line one\nline two\"\nb,c",
			want:  []string{"a,\"line one\nline two\"", "b,c"},
		},
		{
			name:  "blank rows dropped",
			input: "a\n\n\nb",
			want:  []string{"a", "b"},
		},
		{
			name:  "whitespace only rows dropped",
			input: "a\n   \n\t\nb",
			want:  []string{"a", "b"},
		},
		{
			name:  "escaped quote pair does not end quoted region",
			input: "\"say \"\"hi\"\"\nstill quoted\",b\nc",
			want:  []string{"\"say \"\"hi\"\"\nstill quoted\",b", "c"},
		},
		{
			name:  "unterminated quote keeps trailing partial row",
			input: "a,b\n\"unterminated,c",
			want:  []string{"a,b", "\"unterminated,c"},
		},
		{
			name:  "unterminated quote swallows rest of input into one row",
			input: "a\n\"open\nnever closed",
			want:  []string{"a", "\"open\nnever closed"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "only blank lines",
			input: "\n\n  \n",
			want:  nil,
		},
		{
			name:  "single row no newline",
			input: "a,b,c",
			want:  []string{"a,b,c"},
		},
		{
			name:  "doubled quote outside quoted region toggles twice",
			input: "a\"\"b\nc",
			want:  []string{"a\"\"b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitRows(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
