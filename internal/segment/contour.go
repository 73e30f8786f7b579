package segment

import (
	"image"
	"math"
	"sort"

	"github.com/ironsheep/manga-panels/internal/imaging"
)

// Candidate is a traced border of the background mask that may be a panel.
//
// Two kinds of border are traced. A dark region enclosed by gutter yields its
// hole border, which runs over the white pixels hugging the region. A white
// region that does not reach the page frame yields its own outer border.
type Candidate struct {
	// Contour is the border as pixel coordinates, closed implicitly, with
	// straight runs compressed to their end points.
	Contour []image.Point

	// Bounds is the smallest rectangle containing Contour (Max exclusive).
	// For a hole border that is the dark region's box grown by one pixel.
	Bounds image.Rectangle

	// Area is the area enclosed by Contour through the pixel centres. A w x h
	// white region encloses (w-1)*(h-1); a w x h dark rectangle has a hole
	// border enclosing (w+1)*(h+1)-2, the corners being cut diagonally.
	Area float64

	// Pixels is the number of pixels in the region the border belongs to.
	Pixels int
}

// Polygon returns the contour as vertices on pixel centres, ready for
// imaging.PolygonMask.
func (c Candidate) Polygon() []imaging.PointF {
	poly := make([]imaging.PointF, len(c.Contour))
	for i, p := range c.Contour {
		poly[i] = imaging.PointF{X: float64(p.X) + 0.5, Y: float64(p.Y) + 0.5}
	}
	return poly
}

// FindCandidates traces every border of a background mask below the page
// frame.
//
// The mask is not modified: the frame is re-whitened on a copy so that panels
// touching the page edge are closed off by it. Every 4-connected dark region
// gives one hole border and every 8-connected white region other than the
// one holding the frame gives one outer border. Candidates are returned in
// the raster order of each border's starting pixel.
func FindCandidates(mask *image.Gray) []Candidate {
	return FindCandidatesMin(mask, 0)
}

// FindCandidatesMin is FindCandidates but skips borders whose bounding box is
// smaller than minArea before tracing them. No skipped border could have
// reached minArea, since a border never encloses more than its bounding box.
func FindCandidatesMin(mask *image.Gray, minArea float64) []Candidate {
	b := mask.Bounds()
	work := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		copy(work.Pix[y*work.Stride:y*work.Stride+b.Dx()], mask.Pix[mask.PixOffset(b.Min.X, b.Min.Y+y):])
	}
	drawFrame(work, BorderWidth, 255)

	w, h := b.Dx(), b.Dy()
	white := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < w && y < h && work.Pix[y*work.Stride+x] == 255
	}
	limit := 4*w*h + 8

	type border struct {
		start int
		c     Candidate
	}
	var found []border

	dark := labelComponents(work, 0, false)
	for id := 1; id <= dark.n(); id++ {
		box := dark.bounds[id].Inset(-1)
		if float64(box.Dx()*box.Dy()) < minArea {
			continue
		}
		// The first dark pixel in raster order always has white to its west.
		seed := dark.seeds[id]
		sx, sy := seed%w-1, seed/w
		contour := traceBorder(white, sx, sy, 0, limit)
		found = append(found, border{start: seed - 1, c: newCandidate(contour, dark.counts[id])})
	}

	light := labelComponents(work, 255, true)
	frame := int32(0)
	if len(light.labels) > 0 {
		frame = light.labels[0]
	}
	for id := 1; id <= light.n(); id++ {
		if int32(id) == frame {
			continue
		}
		box := light.bounds[id]
		if float64(box.Dx()*box.Dy()) < minArea {
			continue
		}
		seed := light.seeds[id]
		contour := traceBorder(white, seed%w, seed/w, 4, limit)
		found = append(found, border{start: seed, c: newCandidate(contour, light.counts[id])})
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].start < found[j].start
	})
	candidates := make([]Candidate, len(found))
	for i, f := range found {
		candidates[i] = f.c
	}
	return candidates
}

func newCandidate(contour []image.Point, pixels int) Candidate {
	contour = simplify(contour)
	return Candidate{
		Contour: contour,
		Bounds:  pointBounds(contour),
		Area:    polygonArea(contour),
		Pixels:  pixels,
	}
}

// traceBorder follows a border by Moore-neighbour tracing over the pixels for
// which in holds, starting at (sx, sy) with the neighbour in direction back
// known to be outside. Pixels are stepped through their eight neighbours, so
// the region on the other side of the border behaves as 4-connected.
func traceBorder(in func(x, y int) bool, sx, sy, back, limit int) []image.Point {
	contour := []image.Point{{X: sx, Y: sy}}

	cx, cy := sx, sy
	firstMove := -1

	for step := 0; step < limit; step++ {
		next := -1
		for k := 1; k <= 8; k++ {
			d := (back + k) % 8
			if in(cx+dirX[d], cy+dirY[d]) {
				next = d
				break
			}
		}
		if next < 0 {
			// Isolated pixel
			return contour
		}
		if cx == sx && cy == sy {
			if firstMove < 0 {
				firstMove = next
			} else if next == firstMove {
				// Back at the start about to repeat the first move; the
				// start pixel was appended on arrival.
				return contour[:len(contour)-1]
			}
		}

		// The last neighbour checked before next was outside; it becomes the
		// backtrack of the pixel we move to.
		prev := (next + 7) % 8
		bx, by := cx+dirX[prev], cy+dirY[prev]
		cx, cy = cx+dirX[next], cy+dirY[next]
		back = dirIndex(bx-cx, by-cy)
		contour = append(contour, image.Point{X: cx, Y: cy})
	}

	return contour
}

// dirIndex maps a unit step to its neighbour index.
func dirIndex(dx, dy int) int {
	for i := range dirX {
		if dirX[i] == dx && dirY[i] == dy {
			return i
		}
	}
	return 0
}

// pointBounds is the smallest rectangle holding every point.
func pointBounds(pts []image.Point) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: pts[0], Max: pts[0].Add(image.Pt(1, 1))}
	for _, p := range pts[1:] {
		r = r.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	return r
}

// simplify drops every point that continues the previous step in the same
// direction, keeping only the corners of the closed boundary.
func simplify(pts []image.Point) []image.Point {
	n := len(pts)
	if n < 3 {
		return pts
	}
	out := make([]image.Point, 0, n/2+1)
	for i := 0; i < n; i++ {
		prev := pts[(i+n-1)%n]
		next := pts[(i+1)%n]
		in := pts[i].Sub(prev)
		outStep := next.Sub(pts[i])
		if in != outStep {
			out = append(out, pts[i])
		}
	}
	return out
}

// polygonArea is the shoelace area of a closed polygon.
func polygonArea(pts []image.Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	var sum int
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(float64(sum)) / 2
}
