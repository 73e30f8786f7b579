package segment

import (
	"image"
	"sort"

	"github.com/anthonynsimon/bild/blur"
	bildseg "github.com/anthonynsimon/bild/segment"

	"github.com/ironsheep/manga-panels/internal/imaging"
)

const (
	// DefaultThreshold is the binarization level separating paper-white
	// pixels from everything else.
	DefaultThreshold = 230

	// BorderWidth is the width in pixels of the frame painted around the page
	// so that the page edge never fuses with interior gutters.
	BorderWidth = 5

	// blurRadius gives bild a 5-tap Gaussian kernel.
	blurRadius = 2.0
)

// Binarize projects img to one channel, smooths it and thresholds it.
// Pixels strictly above threshold become 255, all others 0.
func Binarize(img image.Image, threshold uint8) *image.Gray {
	gray := imaging.ChannelZero(img)
	if threshold == 255 {
		b := gray.Bounds()
		return image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	}
	smoothed := blur.Gaussian(gray, blurRadius)
	// bild keeps values at or above its level.
	return bildseg.Threshold(smoothed, threshold+1)
}

// BackgroundMask derives the binary mask of the page's gutter network.
//
// The returned mask has the page's size and a zero origin; 255 marks gutter
// pixels. When the binarized page holds fewer than two components (a blank or
// fully dark page) the mask is empty, and downstream area filtering rejects
// whatever is left.
func BackgroundMask(img image.Image, threshold uint8) *image.Gray {
	bin := Binarize(img, threshold)
	drawFrame(bin, BorderWidth, 0)

	l := labelComponents(bin, 255, false)
	mask := image.NewGray(image.Rect(0, 0, l.width, l.height))

	// Slot 0 holds every dark pixel, frame included.
	order := make([]int, len(l.counts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return l.counts[order[a]] > l.counts[order[b]]
	})
	if len(order) < 2 {
		return mask
	}

	pick := int32(order[1])
	for y := 0; y < l.height; y++ {
		row := mask.Pix[y*mask.Stride:]
		for x := 0; x < l.width; x++ {
			if l.labels[y*l.width+x] == pick {
				row[x] = 255
			}
		}
	}
	return mask
}

// drawFrame paints a frame of the given width along the inside of g's bounds.
func drawFrame(g *image.Gray, width int, value uint8) {
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := g.Pix[g.PixOffset(b.Min.X, y):]
		edgeRow := y-b.Min.Y < width || b.Max.Y-1-y < width
		for x := 0; x < b.Dx(); x++ {
			if edgeRow || x < width || b.Dx()-1-x < width {
				row[x] = value
			}
		}
	}
}
