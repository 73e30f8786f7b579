package segment

import (
	"fmt"
	"image"
	"sort"
	"strconv"
	"strings"
)

// Panel is a panel's bounding box in percent of the page width and height.
//
// Path always describes the bounding rectangle as a closed five-point polygon,
// never the traced boundary of the region.
type Panel struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Path   string  `json:"path"`
}

// Normalize converts a pixel bounding box on a w x h page to a Panel.
func Normalize(r image.Rectangle, w, h int) Panel {
	x := float64(r.Min.X) / float64(w) * 100
	y := float64(r.Min.Y) / float64(h) * 100
	pw := float64(r.Dx()) / float64(w) * 100
	ph := float64(r.Dy()) / float64(h) * 100
	return Panel{
		X:      x,
		Y:      y,
		Width:  pw,
		Height: ph,
		Path:   RectPath(x, y, pw, ph),
	}
}

// RectPath formats the rectangle path "x y, x+w y, x+w y+h, x y+h, x y".
func RectPath(x, y, w, h float64) string {
	pts := [5][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}, {x, y}}
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = formatNumber(p[0]) + " " + formatNumber(p[1])
	}
	return strings.Join(parts, ", ")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParsePath reads a rectangle path back into its origin and size.
func ParsePath(path string) (x, y, w, h float64, err error) {
	parts := strings.Split(path, ",")
	if len(parts) != 5 {
		return 0, 0, 0, 0, fmt.Errorf("path has %d points, want 5", len(parts))
	}

	var pts [5][2]float64
	for i, part := range parts {
		fields := strings.Fields(part)
		if len(fields) != 2 {
			return 0, 0, 0, 0, fmt.Errorf("point %d: want 2 coordinates, got %d", i, len(fields))
		}
		for k, f := range fields {
			v, perr := strconv.ParseFloat(f, 64)
			if perr != nil {
				return 0, 0, 0, 0, fmt.Errorf("point %d: %w", i, perr)
			}
			pts[i][k] = v
		}
	}

	if pts[0] != pts[4] {
		return 0, 0, 0, 0, fmt.Errorf("path is not closed")
	}
	if pts[0][1] != pts[1][1] || pts[1][0] != pts[2][0] || pts[2][1] != pts[3][1] || pts[3][0] != pts[0][0] {
		return 0, 0, 0, 0, fmt.Errorf("path is not an axis-aligned rectangle")
	}

	x, y = pts[0][0], pts[0][1]
	return x, y, pts[2][0] - x, pts[2][1] - y, nil
}

// SortByY orders panels top to bottom. Panels with equal y keep their order.
func SortByY(panels []Panel) {
	sort.SliceStable(panels, func(i, j int) bool {
		return panels[i].Y < panels[j].Y
	})
}
