package roster

import (
	"errors"
	"reflect"
	"testing"
)

// ============================================================================
// Header Resolver Tests
// ============================================================================

func TestResolveColumns(t *testing.T) {
	tests := []struct {
		name    string
		header  []string
		want    columnIndex
		missing []string
	}{
		{
			name:   "canonical order",
			header: []string{"name", "certification_id", "email"},
			want:   columnIndex{name: 0, id: 1, email: 2},
		},
		{
			name:   "case insensitive",
			header: []string{"Name", "CERTIFICATION_ID", "Email"},
			want:   columnIndex{name: 0, id: 1, email: 2},
		},
		{
			name:   "reordered",
			header: []string{"email", "name", "certification_id"},
			want:   columnIndex{name: 1, id: 2, email: 0},
		},
		{
			name:   "extra columns ignored",
			header: []string{"cohort", "name", "notes", "certification_id", "email", "score"},
			want:   columnIndex{name: 1, id: 3, email: 4},
		},
		{
			name:   "padded cells",
			header: []string{" name ", "\tcertification_id", "email "},
			want:   columnIndex{name: 0, id: 1, email: 2},
		},
		{
			name:   "duplicate header first wins",
			header: []string{"name", "name", "certification_id", "email"},
			want:   columnIndex{name: 0, id: 2, email: 3},
		},
		{
			name:    "missing email",
			header:  []string{"name", "certification_id"},
			missing: []string{"email"},
		},
		{
			name:    "missing id and email",
			header:  []string{"name", "id", "mail"},
			missing: []string{"certification_id", "email"},
		},
		{
			name:    "all missing",
			header:  []string{"a", "b", "c"},
			missing: []string{"name", "certification_id", "email"},
		},
		{
			name:    "empty header",
			header:  []string{""},
			missing: []string{"name", "certification_id", "email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveColumns(tt.header)
			if tt.missing != nil {
				var mc *MissingColumnsError
				if !errors.As(err, &mc) {
					t.Fatalf("expected MissingColumnsError, got %v", err)
				}
				if !reflect.DeepEqual(mc.Missing, tt.missing) {
					t.Errorf("expected missing %v, got %v", tt.missing, mc.Missing)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestColumnIndexMinFields(t *testing.T) {
	tests := []struct {
		name string
		idx  columnIndex
		want int
	}{
		{name: "canonical", idx: columnIndex{name: 0, id: 1, email: 2}, want: 3},
		{name: "email first", idx: columnIndex{name: 1, id: 2, email: 0}, want: 3},
		{name: "sparse header", idx: columnIndex{name: 1, id: 3, email: 4}, want: 5},
		{name: "name last", idx: columnIndex{name: 5, id: 0, email: 1}, want: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.idx.minFields(); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestRequiredColumns(t *testing.T) {
	want := []string{"name", "certification_id", "email"}
	got := RequiredColumns()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	// Callers may mutate the returned slice without poisoning later calls.
	got[0] = "mutated"
	if again := RequiredColumns(); again[0] != "name" {
		t.Errorf("expected fresh slice, got %v", again)
	}
}
