package server

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

// createTwoPanelPage draws a 200x200 page with a short panel above a tall one.
func createTwoPanelPage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 200, 200))
	fillRect(img, img.Bounds(), color.NRGBA{255, 255, 255, 255})
	for _, r := range []image.Rectangle{image.Rect(20, 20, 180, 70), image.Rect(20, 90, 180, 190)} {
		fillRect(img, r, color.NRGBA{0, 0, 0, 255})
		fillRect(img, r.Inset(2), color.NRGBA{100, 100, 100, 255})
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
}

func quietLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

// fakeFetcher writes a fixed number of two-panel pages, or fails.
type fakeFetcher struct {
	t     *testing.T
	pages int
	err   error

	mu   sync.Mutex
	dirs []string
}

func (f *fakeFetcher) Chapter(_ context.Context, _ string, dir string) ([]string, error) {
	f.mu.Lock()
	f.dirs = append(f.dirs, dir)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	paths := make([]string, f.pages)
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("page_%03d.png", i+1))
		writePNG(f.t, paths[i], createTwoPanelPage())
	}
	return paths, nil
}

func newTestServer(t *testing.T, f *fakeFetcher, keep bool) *Server {
	t.Helper()
	s, err := New(Options{
		Fetcher:       f,
		WorkDir:       t.TempDir(),
		KeepDownloads: keep,
		Log:           quietLogger(),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}
