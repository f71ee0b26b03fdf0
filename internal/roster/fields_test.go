package roster

import (
	"reflect"
	"testing"
)

// ============================================================================
// Field Tokenizer Tests
// ============================================================================

func TestSplitFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "simple fields",
			input: "a,b,c",
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "whitespace trimmed",
			input: "  a , b ,c  ",
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "comma inside quotes is literal",
			input: "\"Doe, Jane\",C-1",
			want:  []string{"Doe, Jane", "C-1"},
		},
		{
			name:  "doubled quote inside quotes is literal quote",
			input: "\"Say \"\"Hi\"\"\",x",
			want:  []string{"Say \"Hi\"", "x"},
		},
		{
			name:  "newline inside quotes preserved",
			input: "\"line one\nline two\",x",
			want:  []string{"line one\nline two", "x"},
		},
		{
			name:  "empty fields kept",
			input: "a,,c",
			want:  []string{"a", "", "c"},
		},
		{
			name:  "trailing comma yields trailing empty field",
			input: "a,b,",
			want:  []string{"a", "b", ""},
		},
		{
			name:  "leading comma yields leading empty field",
			input: ",b",
			want:  []string{"", "b"},
		},
		{
			name:  "empty row yields one empty field",
			input: "",
			want:  []string{""},
		},
		{
			name:  "quoted empty field",
			input: "a,\"\",c",
			want:  []string{"a", "", "c"},
		},
		{
			name:  "stray quotes are consumed not emitted",
			input: "Jane \"The Boss\" Doe,x",
			want:  []string{"Jane The Boss Doe", "x"},
		},
		{
			name:  "unterminated quote keeps remainder as one field",
			input: "a,\"b,c",
			want:  []string{"a", "b,c"},
		},
		{
			name:  "quoted field with surrounding spaces",
			input: "  \"padded\"  ,x",
			want:  []string{"padded", "x"},
		},
		{
			name:  "fully escaped quoted value loses outer pair",
			input: "\"\"\"Doe\"\"\",x",
			want:  []string{"Doe", "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitFields(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// ============================================================================
// Field Cleaning Tests
// ============================================================================

func TestCleanField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "abc", want: "abc"},
		{name: "trimmed", input: "  abc  ", want: "abc"},
		{name: "matched quote pair stripped", input: "\"abc\"", want: "abc"},
		{name: "inner whitespace trimmed after strip", input: "\" abc \"", want: "abc"},
		{name: "leading quote alone kept", input: "\"abc", want: "\"abc"},
		{name: "trailing quote alone kept", input: "abc\"", want: "abc\""},
		{name: "interior quotes kept", input: "Say \"Hi\" now", want: "Say \"Hi\" now"},
		{name: "single quote char untouched", input: "\"", want: "\""},
		{name: "bare pair collapses to empty", input: "\"\"", want: ""},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cleanField(tt.input)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
