package store

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ironsheep/manga-panels/internal/pipeline"
	"github.com/ironsheep/manga-panels/internal/segment"
)

func sampleResult() *pipeline.ExtractionResult {
	p := segment.Normalize(image.Rect(10, 20, 110, 70), 200, 100)
	return &pipeline.ExtractionResult{
		Author:    []string{},
		Tags:      []string{},
		PageCount: 1,
		Pages: []pipeline.PageRecord{{
			PageIndex: "images/page_001.png",
			Image:     "https://example.com/page_001.png",
			Panels:    []segment.Panel{p},
		}},
	}
}

func TestFileStoreSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "result.json")
	s := NewFileStore(path)

	want := sampleResult()
	if err := s.Save(context.Background(), "images", want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, "\n  \"author\": []") {
		t.Errorf("output not indented or author not an array:\n%s", text)
	}
	if !strings.Contains(text, `"path": "5 20, 55 20, 55 70, 5 70, 5 20"`) {
		t.Errorf("unexpected path in output:\n%s", text)
	}
}

func TestFileStoreOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.json")
	s := NewFileStore(path)

	first := sampleResult()
	second := sampleResult()
	second.Pages = []pipeline.PageRecord{}
	second.PageCount = 0

	for _, r := range []*pipeline.ExtractionResult{first, second} {
		if err := s.Save(context.Background(), "x", r); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.PageCount != 0 {
		t.Errorf("page count: got %d, want 0", got.PageCount)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestNewFileStoreDefault(t *testing.T) {
	if got := NewFileStore("").Path; got != DefaultFileName {
		t.Errorf("got %q, want %q", got, DefaultFileName)
	}
}

func TestFileStoreCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := filepath.Join(t.TempDir(), "output.json")
	if err := NewFileStore(path).Save(ctx, "x", sampleResult()); err == nil {
		t.Error("expected error for canceled context")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("nothing should be written after cancellation")
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	if _, err := NewFileStore(filepath.Join(t.TempDir(), "none.json")).Load(); err == nil {
		t.Error("expected error for missing file")
	}
}
