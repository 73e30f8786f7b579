package textdetect

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/ironsheep/manga-panels/internal/imaging"
)

// ErrNoDetector is returned when text masking is requested without a detector.
var ErrNoDetector = errors.New("no text detector configured")

// Masker turns detector output into per-page text masks.
type Masker struct {
	detector   Detector
	fill       color.NRGBA
	concurrent bool
	mu         sync.Mutex
}

// NewMasker creates a Masker around d. Erased pixels are painted with fill.
func NewMasker(d Detector, fill color.NRGBA) *Masker {
	m := &Masker{detector: d, fill: fill}
	if cs, ok := d.(ConcurrentSafe); ok {
		m.concurrent = cs.ConcurrentSafe()
	}
	return m
}

// Masks runs the detector once over the whole batch and rasterizes each
// image's polygons into a text mask with the image's zero-origin size.
func (m *Masker) Masks(ctx context.Context, imgs []*image.NRGBA) ([]*image.Alpha, error) {
	if m == nil || m.detector == nil {
		return nil, ErrNoDetector
	}
	if len(imgs) == 0 {
		return []*image.Alpha{}, nil
	}

	batch := make([]image.Image, len(imgs))
	for i, img := range imgs {
		batch[i] = img
	}

	if !m.concurrent {
		m.mu.Lock()
		defer m.mu.Unlock()
	}
	polys, err := m.detector.Detect(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("text detection failed: %w", err)
	}
	if len(polys) != len(imgs) {
		return nil, fmt.Errorf("text detection returned %d results for %d images", len(polys), len(imgs))
	}

	masks := make([]*image.Alpha, len(imgs))
	for i, img := range imgs {
		b := img.Bounds()
		outlines := make([][]imaging.PointF, len(polys[i]))
		for j, p := range polys[i] {
			outlines[j] = p
		}
		masks[i] = imaging.PolygonMask(b.Dx(), b.Dy(), outlines...)
	}
	return masks, nil
}

// Erase paints the pixels marked in mask with the fill colour, in place.
func (m *Masker) Erase(img *image.NRGBA, mask *image.Alpha) {
	imaging.Paint(img, mask, m.fill)
}

// Remove detects text on every image, erases it in place and returns the
// masks that were applied.
func (m *Masker) Remove(ctx context.Context, imgs []*image.NRGBA) ([]*image.Alpha, error) {
	masks, err := m.Masks(ctx, imgs)
	if err != nil {
		return nil, err
	}
	for i, img := range imgs {
		m.Erase(img, masks[i])
	}
	return masks, nil
}
