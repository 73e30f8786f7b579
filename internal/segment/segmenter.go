package segment

import (
	"image"
)

// Segmenter runs mask building, contour extraction and area filtering with
// one fixed configuration. The zero value is not usable; set Window.
type Segmenter struct {
	Window    Window
	Threshold uint8
}

// NewSegmenter returns a Segmenter for the given window using DefaultThreshold.
func NewSegmenter(w Window) Segmenter {
	return Segmenter{Window: w, Threshold: DefaultThreshold}
}

// Candidates returns the panel candidates of img accepted by the window, in
// traversal order.
func (s Segmenter) Candidates(img image.Image) []Candidate {
	b := img.Bounds()
	pageArea := b.Dx() * b.Dy()
	mask := BackgroundMask(img, s.threshold())
	all := FindCandidatesMin(mask, s.Window.Min*float64(pageArea))
	return s.Window.Filter(all, pageArea)
}

// Panels normalizes candidates on a w x h page and sorts them top to bottom.
func Panels(candidates []Candidate, w, h int) []Panel {
	panels := make([]Panel, len(candidates))
	for i, c := range candidates {
		panels[i] = Normalize(c.Bounds, w, h)
	}
	SortByY(panels)
	return panels
}

// Segment returns the normalized panels of img sorted by y.
func (s Segmenter) Segment(img image.Image) []Panel {
	b := img.Bounds()
	return Panels(s.Candidates(img), b.Dx(), b.Dy())
}

func (s Segmenter) threshold() uint8 {
	if s.Threshold == 0 {
		return DefaultThreshold
	}
	return s.Threshold
}
