package textdetect

import (
	"context"
	"image"

	"github.com/ironsheep/manga-panels/internal/imaging"
)

// Polygon is a closed text region outline in pixel coordinates relative to
// the image's top-left corner, whatever its bounds.
type Polygon []imaging.PointF

// BoxPolygon returns the four-point polygon of a rectangle.
func BoxPolygon(r image.Rectangle) Polygon {
	return Polygon(imaging.Rect(r))
}

// Detector finds text regions in a batch of images.
//
// Detect returns one polygon list per input image, in input order.
type Detector interface {
	Detect(ctx context.Context, imgs []image.Image) ([][]Polygon, error)
}

// ConcurrentSafe is implemented by detectors that accept overlapping Detect
// calls. Detectors that do not implement it are serialized.
type ConcurrentSafe interface {
	ConcurrentSafe() bool
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(ctx context.Context, imgs []image.Image) ([][]Polygon, error)

// Detect calls f.
func (f DetectorFunc) Detect(ctx context.Context, imgs []image.Image) ([][]Polygon, error) {
	return f(ctx, imgs)
}
