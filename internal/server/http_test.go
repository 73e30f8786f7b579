package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ironsheep/manga-panels/internal/fetch"
	"github.com/ironsheep/manga-panels/internal/pipeline"
	"github.com/ironsheep/manga-panels/internal/textdetect"
)

type chapterResponse struct {
	Data  *pipeline.ExtractionResult `json:"data"`
	Error *MCPError                  `json:"error"`
}

func postChapter(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, chapterResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chapter", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out chapterResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return rec, out
}

func TestHTTPRoot(t *testing.T) {
	h := newTestServer(t, &fakeFetcher{t: t}, false).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"Hello":"World"}` {
		t.Errorf("body: got %s", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q", ct)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown path: got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chapter", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /chapter: got %d", rec.Code)
	}
}

type fakeTextBackend struct{ info textdetect.Info }

func (f fakeTextBackend) Info() textdetect.Info { return f.info }

func TestHTTPHealth(t *testing.T) {
	t.Run("without text backend", func(t *testing.T) {
		h := newTestServer(t, &fakeFetcher{t: t}, false).Handler()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d", rec.Code)
		}
		var body map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("response is not JSON: %v", err)
		}
		if body["status"] != "ok" || body["version"] != Version {
			t.Errorf("body: got %v", body)
		}
		if _, ok := body["text_detection"]; ok {
			t.Error("text_detection reported without a backend")
		}
	})

	t.Run("with text backend", func(t *testing.T) {
		info := textdetect.Info{Available: true, Version: "5.3.0", Language: "jpn", Backend: "gosseract"}
		s, err := New(Options{
			Fetcher: &fakeFetcher{t: t},
			WorkDir: t.TempDir(),
			Text:    fakeTextBackend{info: info},
			Log:     quietLogger(),
		})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		var body healthBody
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("response is not JSON: %v", err)
		}
		if body.TextDetection == nil || *body.TextDetection != info {
			t.Errorf("text_detection: got %+v, want %+v", body.TextDetection, info)
		}
	})
}

func TestHTTPChapter(t *testing.T) {
	f := &fakeFetcher{t: t, pages: 2}
	h := newTestServer(t, f, false).Handler()

	rec, out := postChapter(t, h, `{"chapter_url":"https://example.com/c/1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	if out.Data == nil || out.Data.PageCount != 2 {
		t.Fatalf("data: got %+v", out.Data)
	}
	if out.Data.Author == nil || out.Data.Tags == nil {
		t.Error("author and tags should be arrays")
	}
	for _, p := range out.Data.Pages {
		if len(p.Panels) != 2 {
			t.Errorf("%s: got %d panels, want 2", p.PageIndex, len(p.Panels))
		}
	}
}

func TestHTTPChapterErrors(t *testing.T) {
	tests := []struct {
		name     string
		fetchErr error
		body     string
		want     int
	}{
		{"invalid json", nil, `{`, http.StatusBadRequest},
		{"missing url", nil, `{}`, http.StatusBadRequest},
		{"invalid url", fmt.Errorf("%w: ftp://x", fetch.ErrInvalidURL), `{"chapter_url":"ftp://x"}`, http.StatusBadRequest},
		{"download failure", &fetch.StatusError{URL: "https://example.com/p1.jpg", Code: 404}, `{"chapter_url":"https://example.com/c/1"}`, http.StatusBadGateway},
		{"no images", fetch.ErrNoImages, `{"chapter_url":"https://example.com/c/1"}`, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, &fakeFetcher{t: t, err: tt.fetchErr}, false).Handler()
			rec, out := postChapter(t, h, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status: got %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
			if out.Error == nil || out.Error.Code != tt.want || out.Error.Message == "" || out.Error.Data == nil {
				t.Errorf("error body: got %+v", out.Error)
			}
			if out.Data != nil {
				t.Errorf("no data expected, got %+v", out.Data)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(errors.New("boom")); got != http.StatusInternalServerError {
		t.Errorf("got %d, want 500", got)
	}
	if got := statusFor(fmt.Errorf("%w: %w", errFetch, fetch.ErrInvalidURL)); got != http.StatusBadRequest {
		t.Errorf("invalid url inside fetch error: got %d, want 400", got)
	}
}

// TestHTTPChapterEndToEnd downloads a chapter from a local site with the
// real fetcher.
func TestHTTPChapterEndToEnd(t *testing.T) {
	var page bytes.Buffer
	if err := png.Encode(&page, createTwoPanelPage()); err != nil {
		t.Fatal(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/chapter/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><img src="/img/a.png"><img data-src="/img/b.png" src="/spinner.gif"></body></html>`)
	})
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(page.Bytes())
	})
	site := httptest.NewServer(mux)
	defer site.Close()

	s, err := New(Options{
		Fetcher: fetch.New(5*time.Second, quietLogger()),
		WorkDir: t.TempDir(),
		Log:     quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}

	rec, out := postChapter(t, s.Handler(), fmt.Sprintf(`{"chapter_url":%q}`, site.URL+"/chapter/1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	if out.Data.PageCount != 2 {
		t.Fatalf("pageCount: got %d, want 2", out.Data.PageCount)
	}
	if !strings.HasSuffix(out.Data.Pages[0].Image, "/page_001.png") {
		t.Errorf("image url: got %s", out.Data.Pages[0].Image)
	}
}
