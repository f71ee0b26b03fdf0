package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

func TestToPgText(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantStr   string
	}{
		{name: "plain", input: "hello", wantValid: true, wantStr: "hello"},
		{name: "trimmed", input: "  hello  ", wantValid: true, wantStr: "hello"},
		{name: "empty is null", input: "", wantValid: false},
		{name: "whitespace is null", input: "   ", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toPgText(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, want %v", got.Valid, tt.wantValid)
			}
			if got.Valid && got.String != tt.wantStr {
				t.Errorf("String = %q, want %q", got.String, tt.wantStr)
			}
		})
	}
}

func TestFromPgText(t *testing.T) {
	if got := fromPgText(pgtype.Text{String: "x", Valid: true}); got != "x" {
		t.Errorf("expected %q, got %q", "x", got)
	}
	if got := fromPgText(pgtype.Text{Valid: false}); got != "" {
		t.Errorf("expected empty string for NULL, got %q", got)
	}
}

func TestPgUUIDRoundTrip(t *testing.T) {
	id := uuid.New()

	pg := toPgUUID(id)
	if !pg.Valid {
		t.Fatal("expected valid pg uuid")
	}
	if back := fromPgUUID(pg); back != id {
		t.Errorf("round trip changed value: %s -> %s", id, back)
	}
}

func TestPgUUIDNil(t *testing.T) {
	pg := toPgUUID(uuid.Nil)
	if pg.Valid {
		t.Error("zero uuid should map to NULL")
	}
	if back := fromPgUUID(pgtype.UUID{Valid: false}); back != uuid.Nil {
		t.Errorf("NULL should map to uuid.Nil, got %s", back)
	}
}

func TestPgDateRoundTrip(t *testing.T) {
	day := time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC)

	pg := toPgDate(&day)
	if !pg.Valid {
		t.Fatal("expected valid pg date")
	}
	back := fromPgDate(pg)
	if back == nil || !back.Equal(day) {
		t.Errorf("round trip changed value: %v -> %v", day, back)
	}

	if toPgDate(nil).Valid {
		t.Error("nil time should map to NULL")
	}
	if fromPgDate(pgtype.Date{Valid: false}) != nil {
		t.Error("NULL date should map to nil")
	}
}

func TestFromPgTime(t *testing.T) {
	now := time.Now().Truncate(time.Microsecond)

	back := fromPgTime(pgtype.Timestamptz{Time: now, Valid: true})
	if back == nil || !back.Equal(now) {
		t.Errorf("expected %v, got %v", now, back)
	}

	if fromPgTime(pgtype.Timestamptz{Valid: false}) != nil {
		t.Error("NULL timestamp should map to nil")
	}
}
