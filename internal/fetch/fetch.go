// Package fetch downloads the page images of a chapter.
//
// A chapter is an HTML page; its images are the img elements whose source
// (src, data-src or data-lazy-src) points at an image file. Images are
// downloaded in document order as page_001.jpg, page_002.jpg and so on, so a
// plain sort of the folder restores the reading order.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/ironsheep/manga-panels/internal/imaging"
)

var (
	// ErrNoImages is returned when a chapter page links no images.
	ErrNoImages = errors.New("no page images found")

	// ErrInvalidURL is returned for chapter URLs that are not absolute http(s) URLs.
	ErrInvalidURL = errors.New("invalid chapter url")
)

// DefaultTimeout bounds each HTTP request.
const DefaultTimeout = 60 * time.Second

// maxPageBytes caps the size of the chapter HTML that is parsed.
const maxPageBytes = 16 << 20

// imageAttrs are the img attributes checked for a source, in order.
var imageAttrs = []string{"data-src", "data-lazy-src", "src"}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}

// Fetcher downloads chapters over HTTP.
type Fetcher struct {
	Client    *http.Client
	UserAgent string

	log logrus.FieldLogger
}

// New creates a Fetcher whose requests time out after timeout. A zero timeout
// uses DefaultTimeout; a nil logger uses the logrus standard logger.
func New(timeout time.Duration, log logrus.FieldLogger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Fetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: "manga-panels/1.0",
		log:       log,
	}
}

// Chapter downloads every page image of the chapter at chapterURL into dir
// and returns the written paths in document order. Any failure aborts the
// download; files already written are left for the caller to clean up.
func (f *Fetcher) Chapter(ctx context.Context, chapterURL, dir string) ([]string, error) {
	urls, err := f.ImageURLs(ctx, chapterURL)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	paths := make([]string, 0, len(urls))
	for i, u := range urls {
		p := filepath.Join(dir, PageFileName(i+1, u))
		if err := f.download(ctx, u, p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	f.logger().WithFields(logrus.Fields{"url": chapterURL, "pages": len(paths)}).Info("chapter downloaded")
	return paths, nil
}

// ImageURLs fetches the chapter page and returns its image URLs.
func (f *Fetcher) ImageURLs(ctx context.Context, chapterURL string) ([]string, error) {
	base, err := url.Parse(chapterURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, chapterURL)
	}

	resp, err := f.get(ctx, chapterURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	urls, err := ParseImageURLs(io.LimitReader(resp.Body, maxPageBytes), resp.Request.URL)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w at %s", ErrNoImages, chapterURL)
	}
	return urls, nil
}

// ParseImageURLs extracts image sources from an HTML document, resolved
// against base, deduplicated and in document order.
func ParseImageURLs(r io.Reader, base *url.URL) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse chapter page: %w", err)
	}

	seen := make(map[string]bool)
	var urls []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "img" {
			if u, ok := imageSource(n, base); ok && !seen[u] {
				seen[u] = true
				urls = append(urls, u)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return urls, nil
}

// imageSource returns the first attribute of n that resolves to an image URL.
func imageSource(n *html.Node, base *url.URL) (string, bool) {
	for _, name := range imageAttrs {
		for _, a := range n.Attr {
			if a.Key != name {
				continue
			}
			v := strings.TrimSpace(a.Val)
			if v == "" || strings.HasPrefix(v, "data:") {
				continue
			}
			ref, err := url.Parse(v)
			if err != nil {
				continue
			}
			u := base.ResolveReference(ref)
			if (u.Scheme == "http" || u.Scheme == "https") && imaging.IsPageFile(u.Path) {
				return u.String(), true
			}
		}
	}
	return "", false
}

// PageFileName names the n-th downloaded page, keeping the URL's extension.
func PageFileName(n int, imageURL string) string {
	ext := ".jpg"
	if u, err := url.Parse(imageURL); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); imaging.IsPageFile("x" + e) {
			ext = e
		}
	}
	return fmt.Sprintf("page_%03d%s", n, ext)
}

func (f *Fetcher) download(ctx context.Context, imageURL, dst string) error {
	resp, err := f.get(ctx, imageURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(dst), err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("failed to download %s: %w", imageURL, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(dst), err)
	}
	f.logger().WithField("file", filepath.Base(dst)).Debug("page downloaded")
	return nil
}

func (f *Fetcher) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{URL: u, Code: resp.StatusCode}
	}
	return resp, nil
}

func (f *Fetcher) logger() logrus.FieldLogger {
	if f.log == nil {
		return logrus.StandardLogger()
	}
	return f.log
}
