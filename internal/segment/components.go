package segment

import (
	"image"
)

// Neighbour offsets, clockwise on screen starting east: E, SE, S, SW, W, NW, N, NE.
var (
	dirX = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	dirY = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
)

// labeling is the result of connected-component labelling of one gray level.
//
// Pixels equal to the labelled value get ids 1..n in the raster order of their
// component's first pixel; every other pixel keeps id 0. counts[0] is the
// number of unlabelled pixels, mirroring the background slot of the classic
// connected-components-with-stats output.
type labeling struct {
	width, height int
	labels        []int32
	counts        []int
	bounds        []image.Rectangle
	seeds         []int
}

// labelComponents labels the components of pixels equal to want. With conn8
// false, pixels connect through their four edge neighbours only.
func labelComponents(g *image.Gray, want uint8, conn8 bool) *labeling {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	l := &labeling{
		width:  w,
		height: h,
		labels: make([]int32, w*h),
		counts: []int{0},
		bounds: []image.Rectangle{{}},
		seeds:  []int{-1},
	}

	steps := 4
	offsets := [8]int{0, 2, 4, 6} // E, S, W, N
	if conn8 {
		steps = 8
		offsets = [8]int{0, 1, 2, 3, 4, 5, 6, 7}
	}

	var queue []int
	for y := 0; y < h; y++ {
		row := g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			i := y*w + x
			if row[x] != want {
				l.counts[0]++
				continue
			}
			if l.labels[i] != 0 {
				continue
			}

			id := int32(len(l.counts))
			l.labels[i] = id
			count := 0
			minX, minY, maxX, maxY := x, y, x, y
			queue = append(queue[:0], i)

			for len(queue) > 0 {
				p := queue[len(queue)-1]
				queue = queue[:len(queue)-1]
				count++
				px, py := p%w, p/w
				if px < minX {
					minX = px
				}
				if px > maxX {
					maxX = px
				}
				if py > maxY {
					maxY = py
				}

				for k := 0; k < steps; k++ {
					d := offsets[k]
					nx, ny := px+dirX[d], py+dirY[d]
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					n := ny*w + nx
					if l.labels[n] != 0 || g.Pix[g.PixOffset(b.Min.X+nx, b.Min.Y+ny)] != want {
						continue
					}
					l.labels[n] = id
					queue = append(queue, n)
				}
			}

			l.counts = append(l.counts, count)
			l.bounds = append(l.bounds, image.Rect(minX, minY, maxX+1, maxY+1))
			l.seeds = append(l.seeds, i)
		}
	}

	return l
}

// n returns the number of labelled components.
func (l *labeling) n() int {
	return len(l.counts) - 1
}
