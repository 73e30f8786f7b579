package imaging

import (
	"image"
)

// ChannelZero projects an image onto a single channel.
//
// Grayscale images are copied as they are. For colour images the first
// channel (red in Go's RGBA order) is taken verbatim rather than computing a
// luminance, so a coloured scan is segmented on the same plane every time.
// The returned image always has a zero origin.
func ChannelZero(img image.Image) *image.Gray {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	dst := image.NewGray(image.Rect(0, 0, width, height))

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < height; y++ {
			srcRow := src.Pix[src.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+width], srcRow[:width])
		}
	case *image.NRGBA:
		for y := 0; y < height; y++ {
			srcRow := src.Pix[src.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			dstRow := dst.Pix[y*dst.Stride:]
			for x := 0; x < width; x++ {
				dstRow[x] = srcRow[x*4]
			}
		}
	default:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r, _, _, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				dst.Pix[y*dst.Stride+x] = uint8(r >> 8)
			}
		}
	}

	return dst
}

// Histogram counts the occurrences of every gray level.
func Histogram(gray *image.Gray) [256]int {
	var hist [256]int
	b := gray.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := gray.Pix[gray.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			hist[row[x]]++
		}
	}
	return hist
}
