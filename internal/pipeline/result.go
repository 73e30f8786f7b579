package pipeline

import (
	"image"

	"github.com/ironsheep/manga-panels/internal/segment"
)

// Page is a decoded page image and the path it was loaded from.
type Page struct {
	Path  string
	Image *image.NRGBA
}

// PageRecord is the panel layout of one page.
type PageRecord struct {
	PageIndex string          `json:"page_index"`
	Image     string          `json:"image"`
	Panels    []segment.Panel `json:"panels"`
	Bubbles   []segment.Panel `json:"bubbles,omitempty"`
}

// ExtractionResult is the layout of a whole chapter.
type ExtractionResult struct {
	Title     string       `json:"title"`
	Author    []string     `json:"author"`
	Tags      []string     `json:"tags"`
	PageCount int          `json:"pageCount"`
	Pages     []PageRecord `json:"pages"`
}

// PageResult is the outcome of processing one page.
type PageResult struct {
	Record PageRecord

	// Crops holds the masked panel crops in traversal order. Empty when the
	// extractor only computes contours.
	Crops []*image.NRGBA

	// Skipped is set for pages left out by the paper filter.
	Skipped bool

	// PaperScore is the page's paper texture score, when it was computed.
	PaperScore float64
}

// newResult assembles an ExtractionResult from processed pages.
func newResult(pages []PageResult) *ExtractionResult {
	records := make([]PageRecord, 0, len(pages))
	for _, p := range pages {
		if p.Skipped {
			continue
		}
		records = append(records, p.Record)
	}
	return &ExtractionResult{
		Title:     "",
		Author:    []string{},
		Tags:      []string{},
		PageCount: len(records),
		Pages:     records,
	}
}
