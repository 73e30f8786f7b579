package segment

import (
	"image"
	"image/color"
)

var (
	inkGray = color.NRGBA{100, 100, 100, 255}
	black   = color.NRGBA{0, 0, 0, 255}
	white   = color.NRGBA{255, 255, 255, 255}
)

// createPage creates a blank white page.
func createPage(width, height int) *image.NRGBA {
	return fillRect(image.NewNRGBA(image.Rect(0, 0, width, height)), image.Rect(0, 0, width, height), white)
}

func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) *image.NRGBA {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// drawPanel draws a panel with a 2px black border and gray art inside.
func drawPanel(img *image.NRGBA, r image.Rectangle) {
	fillRect(img, r, black)
	fillRect(img, r.Inset(2), inkGray)
}

// drawOutline draws a 1px black rectangle outline on the edge of r.
func drawOutline(img *image.NRGBA, r image.Rectangle) {
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), black)
	fillRect(img, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), black)
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), black)
	fillRect(img, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), black)
}

// createMask creates a background mask of the given size with the listed
// rectangles left dark.
func createMask(width, height int, dark ...image.Rectangle) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, width, height))
	for i := range mask.Pix {
		mask.Pix[i] = 255
	}
	for _, r := range dark {
		r = r.Intersect(mask.Bounds())
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				mask.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return mask
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
