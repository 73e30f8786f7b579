package segment

import (
	"errors"
	"fmt"
)

// ErrInvalidWindow is returned when a panel size window is empty or out of range.
var ErrInvalidWindow = errors.New("invalid panel size window")

// Window is the accepted range of candidate areas as fractions of the page area.
type Window struct {
	Min float64
	Max float64
}

// NewWindow builds a Window from percentages of the page area.
// It requires 0 < minPct < maxPct <= 100.
func NewWindow(minPct, maxPct float64) (Window, error) {
	if !(minPct > 0) || !(maxPct <= 100) || minPct >= maxPct {
		return Window{}, fmt.Errorf("%w: min %v%%, max %v%%", ErrInvalidWindow, minPct, maxPct)
	}
	return Window{Min: minPct / 100, Max: maxPct / 100}, nil
}

// Accept reports whether a region of the given area fits the window on a page
// of pageArea pixels. Both bounds are inclusive.
func (w Window) Accept(area float64, pageArea int) bool {
	pa := float64(pageArea)
	return area >= w.Min*pa && area <= w.Max*pa
}

// Filter returns the candidates accepted by the window, in their original order.
func (w Window) Filter(candidates []Candidate, pageArea int) []Candidate {
	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if w.Accept(c.Area, pageArea) {
			kept = append(kept, c)
		}
	}
	return kept
}
