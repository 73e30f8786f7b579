package imaging

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// White is the default fill used for erased text and masked panel pixels.
var White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// ParseColor parses a "#RRGGBB" or "#RGB" hex string into an opaque colour.
// An empty string yields White.
func ParseColor(hex string) (color.NRGBA, error) {
	if hex == "" {
		return White, nil
	}
	if hex[0] != '#' {
		hex = "#" + hex
	}
	if !validHex(hex[1:]) {
		return color.NRGBA{}, fmt.Errorf("invalid fill color %q: want 3 or 6 hex digits", hex)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid fill color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// validHex reports whether s is exactly 3 or 6 hex digits. colorful.Hex
// scans with Sscanf and accepts shorter or longer input.
func validHex(s string) bool {
	if len(s) != 3 && len(s) != 6 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
