package pipeline

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/ironsheep/manga-panels/internal/textdetect"
)

var (
	black    = color.NRGBA{0, 0, 0, 255}
	white    = color.NRGBA{255, 255, 255, 255}
	inkGray  = color.NRGBA{100, 100, 100, 255}
	color150 = color.NRGBA{150, 150, 150, 255}
)

func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

// createTwoPanelPage draws a 200x200 page with panels covering 20% and 40%
// of its area.
func createTwoPanelPage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 200, 200))
	fillRect(img, img.Bounds(), white)
	for _, r := range []image.Rectangle{image.Rect(20, 20, 180, 70), image.Rect(20, 90, 180, 190)} {
		fillRect(img, r, black)
		fillRect(img, r.Inset(2), inkGray)
	}
	return img
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", name, err)
	}
	return path
}

func quietLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

// fakeDetector returns the same polygons for every image of a batch.
type fakeDetector struct {
	mu     sync.Mutex
	polys  []textdetect.Polygon
	err    error
	calls  int
	batchN []int
}

func (f *fakeDetector) Detect(_ context.Context, imgs []image.Image) ([][]textdetect.Polygon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.batchN = append(f.batchN, len(imgs))
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]textdetect.Polygon, len(imgs))
	for i := range out {
		out[i] = f.polys
	}
	return out, nil
}

// memStore records saved results.
type memStore struct {
	mu      sync.Mutex
	sources []string
	results []*ExtractionResult
	err     error
}

func (m *memStore) Save(_ context.Context, source string, res *ExtractionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sources = append(m.sources, source)
	m.results = append(m.results, res)
	return nil
}
