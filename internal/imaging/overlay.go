package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"
)

// OverlayColor is the default outline colour for panel overlays.
var OverlayColor = color.NRGBA{R: 255, G: 0, B: 0, A: 255}

// DrawPanels returns a copy of img with each rectangle outlined and numbered
// in list order, starting at 0. It is a debugging aid for checking a
// segmentation by eye.
func DrawPanels(img image.Image, rects []image.Rectangle, outline color.NRGBA, thickness int) *image.NRGBA {
	bounds := img.Bounds()
	result := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	if thickness < 1 {
		thickness = 1
	}

	labelColor := color.NRGBA{255, 255, 255, 255}
	for i, r := range rects {
		for t := 0; t < thickness; t++ {
			// Horizontal edges
			for x := r.Min.X; x < r.Max.X; x++ {
				setIn(result, x, r.Min.Y+t, outline)
				setIn(result, x, r.Max.Y-1-t, outline)
			}
			// Vertical edges
			for y := r.Min.Y; y < r.Max.Y; y++ {
				setIn(result, r.Min.X+t, y, outline)
				setIn(result, r.Max.X-1-t, y, outline)
			}
		}
		drawLabel(result, r.Min.X+thickness+1, r.Min.Y+thickness+1, strconv.Itoa(i), labelColor, outline)
	}

	return result
}

func setIn(img *image.NRGBA, x, y int, c color.NRGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetNRGBA(x, y, c)
	}
}

// drawLabel draws a simple text label at the given position using a 3x5 pixel
// digit font.
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
	}

	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	// Draw background
	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			setIn(img, x+dx, y+dy, bg)
		}
	}

	// Draw text
	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					setIn(img, cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
