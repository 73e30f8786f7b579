package imaging

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
)

// coverageThreshold is the minimum rasterized coverage for a pixel to count
// as inside a polygon. It keeps pixels whose centre lies on an edge (half
// coverage) and corner pixels (quarter coverage) but drops slivers.
const coverageThreshold = 0x30

// PointF is a polygon vertex in pixel space. Integer coordinates fall on pixel
// corners; add 0.5 to address a pixel centre.
type PointF struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect returns the closed four-point polygon of an axis-aligned rectangle.
func Rect(r image.Rectangle) []PointF {
	return []PointF{
		{X: float64(r.Min.X), Y: float64(r.Min.Y)},
		{X: float64(r.Max.X), Y: float64(r.Min.Y)},
		{X: float64(r.Max.X), Y: float64(r.Max.Y)},
		{X: float64(r.Min.X), Y: float64(r.Max.Y)},
	}
}

// PolygonMask rasterizes closed polygons into a binary mask of the given size.
//
// Pixels inside any polygon are 0xFF, all others 0. Polygons are rasterized
// one at a time into their own bounding box, so overlapping polygons never
// cancel each other out regardless of winding. Polygons with fewer than three
// vertices or lying entirely outside the mask are ignored.
func PolygonMask(width, height int, polys ...[]PointF) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	for _, p := range polys {
		FillPolygon(mask, p)
	}
	return mask
}

// FillPolygon marks the pixels of mask covered by the closed polygon p.
func FillPolygon(mask *image.Alpha, p []PointF) {
	if len(p) < 3 {
		return
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range p {
		minX = math.Min(minX, v.X)
		minY = math.Min(minY, v.Y)
		maxX = math.Max(maxX, v.X)
		maxY = math.Max(maxY, v.Y)
	}
	full := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	)
	box := full.Intersect(mask.Bounds())
	if box.Empty() {
		return
	}

	// Rasterize over the polygon's own bounding box so no vertex falls
	// outside the rasterizer, then copy the part that lands on the mask.
	ox, oy := float32(full.Min.X), float32(full.Min.Y)
	z := vector.NewRasterizer(full.Dx(), full.Dy())
	z.MoveTo(float32(p[0].X)-ox, float32(p[0].Y)-oy)
	for _, v := range p[1:] {
		z.LineTo(float32(v.X)-ox, float32(v.Y)-oy)
	}
	z.ClosePath()

	cov := image.NewAlpha(image.Rect(0, 0, full.Dx(), full.Dy()))
	z.Draw(cov, cov.Bounds(), image.Opaque, image.Point{})

	for y := 0; y < box.Dy(); y++ {
		covRow := cov.Pix[cov.PixOffset(box.Min.X-full.Min.X, box.Min.Y-full.Min.Y+y):]
		maskRow := mask.Pix[mask.PixOffset(box.Min.X, box.Min.Y+y):]
		for x := 0; x < box.Dx(); x++ {
			if covRow[x] >= coverageThreshold {
				maskRow[x] = 0xFF
			}
		}
	}
}

// Paint sets every pixel of img marked in mask to c. The mask and image must
// share the same zero-origin bounds.
func Paint(img *image.NRGBA, mask *image.Alpha, c color.NRGBA) {
	b := img.Bounds().Intersect(mask.Bounds())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		maskRow := mask.Pix[mask.PixOffset(b.Min.X, y):]
		imgRow := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			if maskRow[x] == 0 {
				continue
			}
			i := x * 4
			imgRow[i], imgRow[i+1], imgRow[i+2], imgRow[i+3] = c.R, c.G, c.B, c.A
		}
	}
}
