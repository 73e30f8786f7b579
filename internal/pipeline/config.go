package pipeline

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/ironsheep/manga-panels/internal/imaging"
	"github.com/ironsheep/manga-panels/internal/segment"
)

// ErrInvalidConfig is returned by New when the configuration cannot be used.
var ErrInvalidConfig = errors.New("invalid extractor configuration")

// DefaultImageURLTemplate builds the display URL of a page from its file name.
const DefaultImageURLTemplate = "https://cdn.onepiecechapters.com/file/CDN-M-A-N/{basename}"

// Config controls one Extractor. It is copied by New and never changes
// afterwards.
type Config struct {
	// JustContours skips writing panel crops.
	JustContours bool

	// KeepText skips text erasure.
	KeepText bool

	// MinPanelPct and MaxPanelPct bound a panel's area in percent of the page.
	MinPanelPct float64
	MaxPanelPct float64

	// PaperThreshold is the paper texture score at which a page is skipped.
	// Only used with FilterPaper.
	PaperThreshold float64

	// FilterPaper leaves textured paper scans out of the result.
	FilterPaper bool

	// DetectBubbles reports speech-bubble boxes per page.
	DetectBubbles bool

	// Workers is the number of pages processed at once. 0 means 1.
	Workers int

	// ImageURLTemplate builds each page's image URL; "{basename}" is replaced
	// by the page's file name.
	ImageURLTemplate string

	// FillColor paints erased text and pixels outside a panel's silhouette.
	// The zero value means white.
	FillColor color.NRGBA

	// PanelDir receives panel crops. Empty means "<folder>/panels".
	PanelDir string

	// Threshold is the background binarization level. 0 means 230.
	Threshold uint8
}

// DefaultConfig returns the configuration used by the chapter endpoint:
// contour-only, text kept, panels between 2% and 90% of the page.
func DefaultConfig() Config {
	return Config{
		JustContours:     true,
		KeepText:         true,
		MinPanelPct:      2,
		MaxPanelPct:      90,
		PaperThreshold:   segment.DefaultPaperThreshold,
		Workers:          1,
		ImageURLTemplate: DefaultImageURLTemplate,
		FillColor:        imaging.White,
		Threshold:        segment.DefaultThreshold,
	}
}

// needsText reports whether a run calls the text detector.
func (c Config) needsText() bool {
	return !c.KeepText || c.DetectBubbles
}

// normalized fills zero values with defaults and validates the result.
func (c Config) normalized() (Config, segment.Window, error) {
	w, err := segment.NewWindow(c.MinPanelPct, c.MaxPanelPct)
	if err != nil {
		return c, segment.Window{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Workers < 0 {
		return c, segment.Window{}, fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.FilterPaper && (c.PaperThreshold <= 0 || c.PaperThreshold > 1) {
		return c, segment.Window{}, fmt.Errorf("%w: paper threshold must be in (0, 1], got %v", ErrInvalidConfig, c.PaperThreshold)
	}

	if c.Workers == 0 {
		c.Workers = 1
	}
	if c.ImageURLTemplate == "" {
		c.ImageURLTemplate = DefaultImageURLTemplate
	}
	if c.FillColor == (color.NRGBA{}) {
		c.FillColor = imaging.White
	}
	if c.Threshold == 0 {
		c.Threshold = segment.DefaultThreshold
	}
	return c, w, nil
}
