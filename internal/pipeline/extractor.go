package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/manga-panels/internal/imaging"
	"github.com/ironsheep/manga-panels/internal/segment"
	"github.com/ironsheep/manga-panels/internal/textdetect"
)

// State is a stage of an extraction run.
type State string

// Extraction run states, in order.
const (
	StateLoading           State = "LOADING"
	StatePerPageProcessing State = "PER_PAGE_PROCESSING"
	StateAggregating       State = "AGGREGATING"
	StateDone              State = "DONE"
)

// Store persists finished extraction results. source identifies the input,
// typically the page folder.
type Store interface {
	Save(ctx context.Context, source string, res *ExtractionResult) error
}

// Extractor segments pages into panels with a fixed configuration.
//
// An Extractor is safe for concurrent use; the text detector it wraps is
// serialized unless it declares itself concurrent-safe.
type Extractor struct {
	cfg       Config
	segmenter segment.Segmenter
	masker    *textdetect.Masker
	store     Store
	log       logrus.FieldLogger
}

// New validates cfg and builds an Extractor.
//
// detector may be nil when the configuration never needs text detection
// (KeepText set and DetectBubbles unset). store may be nil, in which case
// results are only returned. A nil logger uses the logrus standard logger.
func New(cfg Config, detector textdetect.Detector, store Store, log logrus.FieldLogger) (*Extractor, error) {
	cfg, window, err := cfg.normalized()
	if err != nil {
		return nil, err
	}
	if cfg.needsText() && detector == nil {
		return nil, fmt.Errorf("%w: text removal or bubble detection needs a text detector", ErrInvalidConfig)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	e := &Extractor{
		cfg:       cfg,
		segmenter: segment.Segmenter{Window: window, Threshold: cfg.Threshold},
		store:     store,
		log:       log,
	}
	if detector != nil {
		e.masker = textdetect.NewMasker(detector, cfg.FillColor)
	}
	return e, nil
}

// Config returns the extractor's configuration with defaults applied.
func (e *Extractor) Config() Config {
	return e.cfg
}

// Extract processes every page image directly inside folder and returns the
// chapter layout. Panel crops are written to the panel directory unless the
// extractor only computes contours. The result is persisted through the
// store before it is returned.
func (e *Extractor) Extract(ctx context.Context, folder string) (*ExtractionResult, error) {
	log := e.log.WithField("folder", folder)

	e.enter(log, StateLoading)
	paths, err := imaging.ListPages(folder)
	if err != nil {
		return nil, err
	}
	log.WithField("pages", len(paths)).Info("pages listed")

	// Text detection needs the whole batch up front; otherwise each page is
	// decoded by the worker that processes it.
	var loaded []*image.NRGBA
	var masks []*image.Alpha
	if e.cfg.needsText() {
		loaded = make([]*image.NRGBA, len(paths))
		for i, p := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if loaded[i], err = imaging.LoadPage(p); err != nil {
				return nil, err
			}
		}
		if masks, err = e.masker.Masks(ctx, loaded); err != nil {
			return nil, err
		}
	}

	panelDir := e.cfg.PanelDir
	if panelDir == "" {
		panelDir = filepath.Join(folder, "panels")
	}
	if !e.cfg.JustContours {
		if err := os.MkdirAll(panelDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create panel directory: %w", err)
		}
	}

	e.enter(log, StatePerPageProcessing)
	results := make([]PageResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			var img *image.NRGBA
			var mask *image.Alpha
			if loaded != nil {
				img, mask = loaded[i], masks[i]
				// Drop the batch reference so the page can be freed once done.
				loaded[i] = nil
			} else {
				var err error
				if img, err = imaging.LoadPage(path); err != nil {
					return err
				}
			}

			res, err := e.processPage(path, img, mask)
			if err != nil {
				return err
			}
			if err := e.writeCrops(panelDir, path, res.Crops); err != nil {
				return err
			}
			res.Crops = nil
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.enter(log, StateAggregating)
	out := newResult(results)
	if e.store != nil {
		if err := e.store.Save(ctx, folder, out); err != nil {
			return nil, fmt.Errorf("failed to persist result: %w", err)
		}
	}

	e.enter(log, StateDone)
	log.WithField("pages", out.PageCount).Info("extraction finished")
	return out, nil
}

// ExtractImages processes already decoded pages, in the given order.
//
// Pages are not modified; text is erased on copies. Pages whose bounds do not
// start at the origin are copied too, so text masks line up with them. Crops
// are returned in each PageResult instead of being written to disk, and
// nothing is persisted.
func (e *Extractor) ExtractImages(ctx context.Context, pages []Page) ([]PageResult, error) {
	var masks []*image.Alpha
	imgs := make([]*image.NRGBA, len(pages))
	for i, p := range pages {
		if p.Image == nil {
			return nil, fmt.Errorf("page %s has no image", p.Path)
		}
		imgs[i] = p.Image
		if !e.cfg.KeepText || p.Image.Bounds().Min != (image.Point{}) {
			imgs[i] = imaging.Clone(p.Image)
		}
	}
	if e.cfg.needsText() {
		var err error
		if masks, err = e.masker.Masks(ctx, imgs); err != nil {
			return nil, err
		}
	}

	results := make([]PageResult, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, p := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var mask *image.Alpha
			if masks != nil {
				mask = masks[i]
			}
			res, err := e.processPage(p.Path, imgs[i], mask)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Aggregate builds the ExtractionResult of processed pages, leaving out
// skipped ones.
func Aggregate(pages []PageResult) *ExtractionResult {
	return newResult(pages)
}

// processPage runs the per-page steps on img. textMask is nil when no text
// detection ran. img is modified when text is erased.
func (e *Extractor) processPage(path string, img *image.NRGBA, textMask *image.Alpha) (PageResult, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	log := e.log.WithField("page", filepath.Base(path))

	res := PageResult{Record: PageRecord{
		PageIndex: path,
		Image:     e.imageURL(path),
	}}

	if e.cfg.DetectBubbles && textMask != nil {
		boxes := segment.SpeechBubbles(img, textMask, e.cfg.Threshold, segment.DefaultMinBubblePixels)
		for _, r := range boxes {
			res.Record.Bubbles = append(res.Record.Bubbles, segment.Normalize(r, w, h))
		}
		segment.SortByY(res.Record.Bubbles)
	}

	if !e.cfg.KeepText && textMask != nil {
		e.masker.Erase(img, textMask)
	}

	if e.cfg.FilterPaper {
		var textured bool
		textured, res.PaperScore = segment.IsPaperTextured(img, e.cfg.PaperThreshold)
		if textured {
			log.WithField("score", res.PaperScore).Info("skipping textured paper page")
			res.Skipped = true
			return res, nil
		}
	}

	candidates := e.segmenter.Candidates(img)

	if !e.cfg.JustContours {
		res.Crops = make([]*image.NRGBA, 0, len(candidates))
		for j, c := range candidates {
			crop, err := segment.CropPanel(img, c, e.cfg.FillColor)
			if err != nil {
				return res, fmt.Errorf("failed to crop panel %d of %s: %w", j, filepath.Base(path), err)
			}
			res.Crops = append(res.Crops, crop)
		}
	}

	res.Record.Panels = segment.Panels(candidates, w, h)
	log.WithField("panels", len(res.Record.Panels)).Debug("page segmented")
	return res, nil
}

func (e *Extractor) writeCrops(dir, pagePath string, crops []*image.NRGBA) error {
	for j, crop := range crops {
		if err := imaging.Save(crop, filepath.Join(dir, imaging.PanelFileName(pagePath, j))); err != nil {
			return err
		}
	}
	return nil
}

func (e *Extractor) imageURL(path string) string {
	return strings.ReplaceAll(e.cfg.ImageURLTemplate, "{basename}", filepath.Base(path))
}

func (e *Extractor) enter(log logrus.FieldLogger, s State) {
	log.WithField("state", s).Debug("extraction state")
}
