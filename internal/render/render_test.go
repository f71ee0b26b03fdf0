package render

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"testing"
)

// ============================================================================
// ParseHexColor
// ============================================================================

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  color.RGBA
	}{
		{
			name:  "six digit",
			input: "#1a365d",
			want:  color.RGBA{R: 0x1a, G: 0x36, B: 0x5d, A: 255},
		},
		{
			name:  "three digit expands",
			input: "#1a3",
			want:  color.RGBA{R: 0x11, G: 0xaa, B: 0x33, A: 255},
		},
		{
			name:  "uppercase digits",
			input: "#FF00AA",
			want:  color.RGBA{R: 0xff, G: 0x00, B: 0xaa, A: 255},
		},
		{
			name:  "surrounding whitespace",
			input: "  #000000  ",
			want:  color.RGBA{A: 255},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHexColor(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseHexColor_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "missing prefix", input: "1a365d"},
		{name: "wrong length", input: "#1a36"},
		{name: "non hex digits", input: "#zzzzzz"},
		{name: "empty", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseHexColor(tt.input); err == nil {
				t.Errorf("expected error for %q, got nil", tt.input)
			}
		})
	}
}

// ============================================================================
// File names
// ============================================================================

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain name",
			input: "John Doe",
			want:  "John_Doe",
		},
		{
			name:  "run of specials collapses",
			input: "Anna / Maria // Lopez",
			want:  "Anna_Maria_Lopez",
		},
		{
			name:  "keeps dots and dashes",
			input: "J.R. Smith-Jones",
			want:  "J.R._Smith-Jones",
		},
		{
			name:  "trims edge underscores",
			input: "  O'Brien  ",
			want:  "O_Brien",
		},
		{
			name:  "all specials falls back",
			input: "///",
			want:  "certificate",
		},
		{
			name:  "empty falls back",
			input: "",
			want:  "certificate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFileName(tt.input)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSanitizeFileName_Truncates(t *testing.T) {
	long := strings.Repeat("a", 300)
	got := SanitizeFileName(long)
	if len(got) != maxFileNameLen {
		t.Errorf("expected length %d, got %d", maxFileNameLen, len(got))
	}
}

func TestCertificateFileName(t *testing.T) {
	got := CertificateFileName("John Doe", "CERT-001")
	want := "John_Doe_CERT-001.png"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

// ============================================================================
// Renderer
// ============================================================================

func TestNewRenderer_BuiltinFont(t *testing.T) {
	r, err := NewRenderer("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r == nil {
		t.Fatal("expected renderer, got nil")
	}
}

func TestNewRenderer_MissingFile(t *testing.T) {
	if _, err := NewRenderer("/nonexistent/font.ttf"); err == nil {
		t.Error("expected error for missing font file, got nil")
	}
}

func TestRender(t *testing.T) {
	r, err := NewRenderer("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	accent := color.RGBA{R: 0x1a, G: 0x36, B: 0x5d, A: 255}
	data, err := r.Render(Certificate{
		RecipientName:   "John Doe",
		CertificationID: "CERT-001",
		EventTitle:      "Go Fundamentals",
		Issuer:          "Acme Training",
		IssuedOn:        "January 15, 2026",
		Accent:          accent,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != canvasWidth || bounds.Dy() != canvasHeight {
		t.Errorf("expected %dx%d canvas, got %dx%d",
			canvasWidth, canvasHeight, bounds.Dx(), bounds.Dy())
	}

	// The corner outside the frame stays white, the frame itself is accent.
	if got := color.RGBAModel.Convert(img.At(10, 10)); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("expected white background at (10,10), got %v", got)
	}
	if got := color.RGBAModel.Convert(img.At(100, 42)); got != accent {
		t.Errorf("expected accent frame at (100,42), got %v", got)
	}
}

func TestRender_LongNameShrinks(t *testing.T) {
	r, err := NewRenderer("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := r.Render(Certificate{
		RecipientName:   strings.Repeat("Maximiliana Wolfeschlegelstein ", 4),
		CertificationID: "CERT-002",
		EventTitle:      "Advanced Systems Design",
		Issuer:          "Acme Training",
		Accent:          color.RGBA{R: 0x1a, G: 0x36, B: 0x5d, A: 255},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}
}

func TestRender_NoIssueDate(t *testing.T) {
	r, err := NewRenderer("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := r.Render(Certificate{
		RecipientName:   "Jane Roe",
		CertificationID: "CERT-003",
		EventTitle:      "Kubernetes Basics",
		Issuer:          "Acme Training",
		Accent:          color.RGBA{R: 0x1a, G: 0x36, B: 0x5d, A: 255},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRender_Background(t *testing.T) {
	r, err := NewRenderer("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A small solid background scales up to fill the whole canvas.
	bgColor := color.RGBA{R: 0xee, G: 0xe4, B: 0xc8, A: 255}
	bg := image.NewRGBA(image.Rect(0, 0, 175, 124))
	draw.Draw(bg, bg.Bounds(), image.NewUniform(bgColor), image.Point{}, draw.Src)

	data, err := r.Render(Certificate{
		RecipientName:   "John Doe",
		CertificationID: "CERT-004",
		EventTitle:      "Go Fundamentals",
		Issuer:          "Acme Training",
		Accent:          color.RGBA{R: 0x1a, G: 0x36, B: 0x5d, A: 255},
		Background:      bg,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}

	// The background replaces both the white canvas and the accent frames.
	if got := color.RGBAModel.Convert(img.At(10, 10)); got != bgColor {
		t.Errorf("expected background color at (10,10), got %v", got)
	}
	if got := color.RGBAModel.Convert(img.At(100, 42)); got != bgColor {
		t.Errorf("expected background color at (100,42), got %v", got)
	}
}
