package segment

import (
	"image"

	bildseg "github.com/anthonynsimon/bild/segment"

	"github.com/ironsheep/manga-panels/internal/imaging"
)

// DefaultMinBubblePixels is the smallest white region reported as a speech bubble.
const DefaultMinBubblePixels = 64

// SpeechBubbles finds the white regions of a page that contain text.
//
// The page is thresholded without smoothing so thin balloon outlines survive,
// then 8-connected white regions are labelled. A region is a bubble when
// textMask marks at least one of its pixels, it does not touch the page edge
// and it has at least minPixels pixels. textMask must share the page's
// zero-origin coordinate space. Bounding boxes are returned in the raster
// order of each region's first pixel.
func SpeechBubbles(img image.Image, textMask *image.Alpha, threshold uint8, minPixels int) []image.Rectangle {
	bin := bildseg.Threshold(imaging.ChannelZero(img), threshold)
	l := labelComponents(bin, 255, true)

	touched := make([]bool, len(l.counts))
	mb := textMask.Bounds().Intersect(image.Rect(0, 0, l.width, l.height))
	for y := mb.Min.Y; y < mb.Max.Y; y++ {
		row := textMask.Pix[textMask.PixOffset(mb.Min.X, y):]
		for x := 0; x < mb.Dx(); x++ {
			if row[x] != 0 {
				touched[l.labels[y*l.width+mb.Min.X+x]] = true
			}
		}
	}

	page := image.Rect(0, 0, l.width, l.height)
	bubbles := make([]image.Rectangle, 0)
	for id := 1; id <= l.n(); id++ {
		box := l.bounds[id]
		if !touched[id] || l.counts[id] < minPixels || touchesEdge(box, page) {
			continue
		}
		bubbles = append(bubbles, box)
	}
	return bubbles
}

func touchesEdge(r, page image.Rectangle) bool {
	return r.Min.X <= page.Min.X || r.Min.Y <= page.Min.Y || r.Max.X >= page.Max.X || r.Max.Y >= page.Max.Y
}
