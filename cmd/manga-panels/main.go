package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/manga-panels/internal/config"
	"github.com/ironsheep/manga-panels/internal/fetch"
	"github.com/ironsheep/manga-panels/internal/imaging"
	"github.com/ironsheep/manga-panels/internal/pipeline"
	"github.com/ironsheep/manga-panels/internal/segment"
	"github.com/ironsheep/manga-panels/internal/server"
	"github.com/ironsheep/manga-panels/internal/store"
	"github.com/ironsheep/manga-panels/internal/textdetect"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("manga-panels - comic page panel extraction")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  manga-panels [serve]            Run the HTTP API on $PORT")
	fmt.Println("  manga-panels mcp                Run the MCP server on stdin/stdout")
	fmt.Println("  manga-panels extract [flags] <folder>")
	fmt.Println("                                  Extract panels from a folder of pages")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  PORT, PANELS_WORK_DIR, PANELS_OUTPUT, PANELS_IMAGE_URL_TEMPLATE,")
	fmt.Println("  PANELS_MIN_PCT, PANELS_MAX_PCT, PANELS_JUST_CONTOURS, PANELS_KEEP_TEXT,")
	fmt.Println("  PANELS_PAPER_TH, PANELS_FILTER_PAPER, PANELS_DETECT_BUBBLES, PANELS_WORKERS,")
	fmt.Println("  PANELS_FILL_COLOR, PANELS_OCR_LANG, PANELS_OCR_MIN_CONF, PANELS_FETCH_TIMEOUT,")
	fmt.Println("  PANELS_KEEP_DOWNLOADS,")
	fmt.Println("  DATABASE_URL, PANELS_LOG_LEVEL=debug, PANELS_LOG_FORMAT=json")
	fmt.Println()
	fmt.Println("Run 'manga-panels extract -h' for extraction flags.")
}

func main() {
	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Printf("manga-panels %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		case "serve", "mcp", "extract":
			cmd, args = args[0], args[1:]
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
			usage()
			os.Exit(2)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	// Logs go to stderr (stdout is for MCP protocol)
	log := cfg.Logger()
	log.WithFields(logrus.Fields{"version": Version, "built": BuildTime, "commit": GitCommit}).Debug("manga-panels starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "serve":
		err = runServe(ctx, cfg, log)
	case "mcp":
		err = runMCP(ctx, cfg, log)
	case "extract":
		err = runExtract(ctx, cfg, log, args)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal(cmd + " failed")
	}
}

// openStore writes results to the output file and, when DATABASE_URL is set,
// to PostgreSQL. The returned function closes the database.
func openStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (pipeline.Store, func(), error) {
	stores := store.Multi{store.NewFileStore(cfg.OutputPath)}
	if cfg.DatabaseURL == "" {
		return stores, func() {}, nil
	}

	pg, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	log.Info("persisting results to postgres")
	return append(stores, pg), func() {
		if err := pg.Close(); err != nil {
			log.WithError(err).Warn("failed to close postgres")
		}
	}, nil
}

// newExtractor builds an extractor for pc, with a Tesseract detector when
// pc removes text or detects bubbles.
func newExtractor(pc pipeline.Config, cfg *config.Config, st pipeline.Store, log logrus.FieldLogger) (*pipeline.Extractor, error) {
	var detector textdetect.Detector
	if !pc.KeepText || pc.DetectBubbles {
		detector = newTesseract(cfg)
	}
	return pipeline.New(pc, detector, st, log)
}

func newTesseract(cfg *config.Config) *textdetect.Tesseract {
	t := textdetect.NewTesseract(cfg.OCRLanguage)
	t.MinConfidence = cfg.OCRMinConfidence
	return t
}

func newServer(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*server.Server, func(), error) {
	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	chapter, err := pipeline.New(pipeline.DefaultConfig(), nil, st, log)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	folder, err := newExtractor(cfg.Extractor, cfg, st, log)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	server.Version = Version
	srv, err := server.New(server.Options{
		Chapter:       chapter,
		Folder:        folder,
		Fetcher:       fetch.New(cfg.FetchTimeout, log),
		WorkDir:       cfg.WorkDir,
		KeepDownloads: cfg.KeepDownloads,
		Text:          newTesseract(cfg),
		Log:           log,
	})
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return srv, closeStore, nil
}

func runServe(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) error {
	srv, closeStore, err := newServer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()
	return srv.ListenAndServe(ctx, ":"+cfg.Port)
}

func runMCP(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) error {
	srv, closeStore, err := newServer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()
	return srv.Run(ctx)
}

func runExtract(ctx context.Context, cfg *config.Config, log logrus.FieldLogger, args []string) error {
	pc := cfg.Extractor
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	fs.Float64Var(&pc.MinPanelPct, "min", pc.MinPanelPct, "smallest panel area in percent of the page")
	fs.Float64Var(&pc.MaxPanelPct, "max", pc.MaxPanelPct, "largest panel area in percent of the page")
	fs.BoolVar(&pc.JustContours, "just-contours", pc.JustContours, "only compute panel boxes, write no crops")
	fs.BoolVar(&pc.KeepText, "keep-text", pc.KeepText, "skip text removal")
	fs.BoolVar(&pc.DetectBubbles, "bubbles", pc.DetectBubbles, "report speech bubbles")
	fs.BoolVar(&pc.FilterPaper, "filter-paper", pc.FilterPaper, "skip textured paper scans")
	fs.Float64Var(&pc.PaperThreshold, "paper-th", pc.PaperThreshold, "paper texture score at which a page is skipped")
	fs.IntVar(&pc.Workers, "workers", pc.Workers, "pages processed at once")
	fs.StringVar(&pc.PanelDir, "panel-dir", pc.PanelDir, "directory for panel crops (default <folder>/panels)")
	fill := fs.String("fill", "", "fill colour for masked pixels, #RRGGBB")
	output := fs.String("output", cfg.OutputPath, "result JSON file")
	overlayDir := fs.String("overlay", "", "write each page with numbered panel outlines into this directory")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("extract needs exactly one folder, got %d arguments", fs.NArg())
	}
	folder := fs.Arg(0)
	if *fill != "" {
		c, err := imaging.ParseColor(*fill)
		if err != nil {
			return err
		}
		pc.FillColor = c
	}
	cfg.OutputPath = *output

	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	e, err := newExtractor(pc, cfg, st, log)
	if err != nil {
		return err
	}
	res, err := e.Extract(ctx, folder)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"pages": res.PageCount, "output": cfg.OutputPath}).Info("extraction finished")

	if *overlayDir != "" {
		return writeOverlays(res, *overlayDir)
	}
	return nil
}

// writeOverlays redraws every page of res with its panel boxes.
func writeOverlays(res *pipeline.ExtractionResult, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create overlay directory: %w", err)
	}
	for _, page := range res.Pages {
		img, err := imaging.LoadPage(page.PageIndex)
		if err != nil {
			return err
		}
		w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())

		rects := make([]image.Rectangle, 0, len(page.Panels))
		for _, p := range page.Panels {
			x, y, pw, ph, err := segment.ParsePath(p.Path)
			if err != nil {
				return fmt.Errorf("%s: %w", page.PageIndex, err)
			}
			rects = append(rects, image.Rect(
				int(x*w/100+0.5), int(y*h/100+0.5),
				int((x+pw)*w/100+0.5), int((y+ph)*h/100+0.5),
			))
		}

		name := strings.TrimSuffix(filepath.Base(page.PageIndex), filepath.Ext(page.PageIndex)) + "_panels.png"
		if err := imaging.Save(imaging.DrawPanels(img, rects, imaging.OverlayColor, 2), filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}
