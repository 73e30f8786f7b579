package segment

import (
	"image"
	"image/color"
	"testing"
)

func TestBinarize(t *testing.T) {
	img := createPage(60, 60)
	fillRect(img, image.Rect(20, 20, 40, 40), black)

	bin := Binarize(img, DefaultThreshold)
	if bin.Bounds() != image.Rect(0, 0, 60, 60) {
		t.Fatalf("bounds: got %v", bin.Bounds())
	}

	tests := []struct {
		name string
		x, y int
		want uint8
	}{
		{"far paper", 5, 5, 255},
		{"ink", 30, 30, 0},
		{"one pixel out", 19, 30, 0},
		{"two pixels out", 18, 30, 0},
		{"three pixels out", 17, 30, 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bin.GrayAt(tt.x, tt.y).Y; got != tt.want {
				t.Errorf("pixel (%d,%d): got %d, want %d", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestBinarizeStrictThreshold(t *testing.T) {
	tests := []struct {
		name      string
		level     uint8
		threshold uint8
		want      uint8
	}{
		{"at threshold", 230, 230, 0},
		{"above threshold", 240, 230, 255},
		{"white at top level", 255, 255, 0},
		{"black at zero", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := color.NRGBA{tt.level, tt.level, tt.level, 255}
			img := fillRect(image.NewNRGBA(image.Rect(0, 0, 30, 30)), image.Rect(0, 0, 30, 30), c)
			bin := Binarize(img, tt.threshold)
			if bin.Bounds() != image.Rect(0, 0, 30, 30) {
				t.Fatalf("bounds: got %v", bin.Bounds())
			}
			if got := bin.GrayAt(15, 15).Y; got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBackgroundMaskSelectsGutter(t *testing.T) {
	img := createPage(200, 200)
	drawPanel(img, image.Rect(20, 20, 180, 70))
	drawPanel(img, image.Rect(20, 90, 180, 190))

	mask := BackgroundMask(img, DefaultThreshold)

	if mask.GrayAt(10, 10).Y != 255 {
		t.Error("margin should belong to the gutter")
	}
	if mask.GrayAt(100, 80).Y != 255 {
		t.Error("gap between panels should belong to the gutter")
	}
	if mask.GrayAt(100, 40).Y != 0 {
		t.Error("panel interior should not belong to the gutter")
	}
	if mask.GrayAt(2, 2).Y != 0 {
		t.Error("frame should not belong to the gutter")
	}
}

func TestBackgroundMaskIgnoresEnclosedWhite(t *testing.T) {
	img := createPage(200, 200)
	drawPanel(img, image.Rect(20, 20, 180, 70))
	drawPanel(img, image.Rect(20, 90, 180, 190))
	// A small white window inside the second panel forms its own component,
	// smaller than the gutter.
	fillRect(img, image.Rect(60, 120, 100, 160), white)

	mask := BackgroundMask(img, DefaultThreshold)
	if mask.GrayAt(10, 10).Y != 255 {
		t.Error("margin should belong to the gutter")
	}
	if mask.GrayAt(80, 140).Y != 0 {
		t.Error("enclosed white window should not belong to the gutter")
	}
}

func TestBackgroundMaskUniformPage(t *testing.T) {
	tests := []struct {
		name string
		page func() *image.NRGBA
	}{
		{"black", func() *image.NRGBA { return fillRect(createPage(50, 50), image.Rect(0, 0, 50, 50), black) }},
		{"white", func() *image.NRGBA { return createPage(50, 50) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask := BackgroundMask(tt.page(), DefaultThreshold)
			if mask.Bounds() != image.Rect(0, 0, 50, 50) {
				t.Fatalf("bounds: got %v", mask.Bounds())
			}
			if got := FindCandidates(mask); len(got) > 1 {
				t.Errorf("uniform page: got %d candidates, want at most 1", len(got))
			}
		})
	}
}

func TestDrawFrame(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 20, 20))
	drawFrame(g, 3, 255)

	for _, p := range []image.Point{{0, 0}, {2, 10}, {19, 19}, {17, 5}, {10, 17}} {
		if g.GrayAt(p.X, p.Y).Y != 255 {
			t.Errorf("pixel %v should be in the frame", p)
		}
	}
	for _, p := range []image.Point{{3, 3}, {10, 10}, {16, 16}} {
		if g.GrayAt(p.X, p.Y).Y != 0 {
			t.Errorf("pixel %v should be outside the frame", p)
		}
	}
}
