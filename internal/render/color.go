package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseHexColor parses #RGB and #RRGGBB hex colors into an opaque RGBA.
func ParseHexColor(s string) (color.RGBA, error) {
	raw := strings.TrimSpace(s)
	if !strings.HasPrefix(raw, "#") {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: missing # prefix", s)
	}
	hex := raw[1:]

	switch len(hex) {
	case 3:
		// Each nibble doubles: #1a3 is #11aa33.
		var b strings.Builder
		for i := 0; i < 3; i++ {
			b.WriteByte(hex[i])
			b.WriteByte(hex[i])
		}
		hex = b.String()
	case 6:
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: want #RGB or #RRGGBB", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, nil
}
