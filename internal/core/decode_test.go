package core

import (
	"errors"
	"strings"
	"testing"
)

// ============================================================================
// DecodeRoster
// ============================================================================

func TestDecodeRoster_PlainUTF8(t *testing.T) {
	got, err := DecodeRoster([]byte("name,certification_id\nJosé,CERT-001\n"), 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "José") {
		t.Errorf("expected UTF-8 content preserved, got %q", got)
	}
}

func TestDecodeRoster_StripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name,certification_id\n")...)
	got, err := DecodeRoster(data, 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, "name,") {
		t.Errorf("expected BOM stripped, got leading bytes %q", got[:4])
	}
}

func TestDecodeRoster_Windows1252(t *testing.T) {
	// "José" with 0xE9 for é, as Excel exports it.
	data := []byte{'J', 'o', 's', 0xE9}
	got, err := DecodeRoster(data, 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "José" {
		t.Errorf("expected %q, got %q", "José", got)
	}
}

func TestDecodeRoster_MostlyUTF8KeepsGoodSequences(t *testing.T) {
	// Valid multi-byte UTF-8 plus one stray broken byte. The é must
	// survive and only the broken byte becomes the replacement rune.
	data := append([]byte("Jos\xc3\xa9,"), 0xFF)
	got, err := DecodeRoster(data, 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "José") {
		t.Errorf("expected valid UTF-8 preserved, got %q", got)
	}
	if !strings.Contains(got, "�") {
		t.Errorf("expected replacement rune for broken byte, got %q", got)
	}
}

func TestDecodeRoster_TooLarge(t *testing.T) {
	data := make([]byte, 100)
	_, err := DecodeRoster(data, 50)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var tooLarge *FileTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected FileTooLargeError, got %T", err)
	}
	if tooLarge.Size != 100 {
		t.Errorf("expected size 100, got %d", tooLarge.Size)
	}
}

func TestDecodeRoster_SizeLimitInclusive(t *testing.T) {
	data := make([]byte, 50)
	if _, err := DecodeRoster(data, 50); err != nil {
		t.Errorf("expected file at exactly the limit to pass, got %v", err)
	}
}

func TestHasMultiByteUTF8(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  bool
	}{
		{name: "ascii only", input: []byte("plain text"), want: false},
		{name: "valid two byte rune", input: []byte("Jos\xc3\xa9"), want: true},
		{name: "single byte latin1", input: []byte{'J', 'o', 's', 0xE9}, want: false},
		{name: "empty", input: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasMultiByteUTF8(tt.input); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
