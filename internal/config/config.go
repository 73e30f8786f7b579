// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/manga-panels/internal/fetch"
	"github.com/ironsheep/manga-panels/internal/imaging"
	"github.com/ironsheep/manga-panels/internal/pipeline"
	"github.com/ironsheep/manga-panels/internal/store"
	"github.com/ironsheep/manga-panels/internal/textdetect"
)

// Config holds every setting of the service and the CLI.
type Config struct {
	Port          string
	WorkDir       string
	OutputPath    string
	KeepDownloads bool
	FetchTimeout  time.Duration
	DatabaseURL   string
	OCRLanguage   string
	LogLevel      logrus.Level
	LogFormat     string

	// OCRMinConfidence drops detected words below this confidence, 0 to 1.
	OCRMinConfidence float64

	// Extractor is the pipeline configuration used by the CLI and the MCP
	// tools. The chapter endpoint always runs contour-only with text kept.
	Extractor pipeline.Config
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads the configuration from the environment. Malformed values are
// reported together in one error.
func Load() (*Config, error) {
	var errs []string
	fail := func(k string, err error) {
		errs = append(errs, fmt.Sprintf("%s: %v", k, err))
	}

	def := pipeline.DefaultConfig()
	c := &Config{
		Port:        getEnv("PORT", "8000"),
		WorkDir:     getEnv("PANELS_WORK_DIR", "images"),
		OutputPath:  getEnv("PANELS_OUTPUT", store.DefaultFileName),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		OCRLanguage: getEnv("PANELS_OCR_LANG", textdetect.DefaultLanguage),
		LogFormat:   strings.ToLower(getEnv("PANELS_LOG_FORMAT", "text")),
		Extractor:   def,
	}
	c.Extractor.ImageURLTemplate = getEnv("PANELS_IMAGE_URL_TEMPLATE", def.ImageURLTemplate)

	var err error
	if c.Extractor.MinPanelPct, err = getFloat("PANELS_MIN_PCT", def.MinPanelPct); err != nil {
		fail("PANELS_MIN_PCT", err)
	}
	if c.Extractor.MaxPanelPct, err = getFloat("PANELS_MAX_PCT", def.MaxPanelPct); err != nil {
		fail("PANELS_MAX_PCT", err)
	}
	if c.Extractor.PaperThreshold, err = getFloat("PANELS_PAPER_TH", def.PaperThreshold); err != nil {
		fail("PANELS_PAPER_TH", err)
	}
	if c.Extractor.JustContours, err = getBool("PANELS_JUST_CONTOURS", def.JustContours); err != nil {
		fail("PANELS_JUST_CONTOURS", err)
	}
	if c.Extractor.KeepText, err = getBool("PANELS_KEEP_TEXT", def.KeepText); err != nil {
		fail("PANELS_KEEP_TEXT", err)
	}
	if c.Extractor.FilterPaper, err = getBool("PANELS_FILTER_PAPER", false); err != nil {
		fail("PANELS_FILTER_PAPER", err)
	}
	if c.Extractor.DetectBubbles, err = getBool("PANELS_DETECT_BUBBLES", false); err != nil {
		fail("PANELS_DETECT_BUBBLES", err)
	}
	if c.Extractor.Workers, err = getInt("PANELS_WORKERS", def.Workers); err != nil {
		fail("PANELS_WORKERS", err)
	}
	if c.Extractor.FillColor, err = imaging.ParseColor(getEnv("PANELS_FILL_COLOR", "")); err != nil {
		fail("PANELS_FILL_COLOR", err)
	}
	if c.KeepDownloads, err = getBool("PANELS_KEEP_DOWNLOADS", false); err != nil {
		fail("PANELS_KEEP_DOWNLOADS", err)
	}
	if c.FetchTimeout, err = getDuration("PANELS_FETCH_TIMEOUT", fetch.DefaultTimeout); err != nil {
		fail("PANELS_FETCH_TIMEOUT", err)
	}
	if c.OCRMinConfidence, err = getFloat("PANELS_OCR_MIN_CONF", 0); err != nil {
		fail("PANELS_OCR_MIN_CONF", err)
	} else if c.OCRMinConfidence < 0 || c.OCRMinConfidence > 1 {
		fail("PANELS_OCR_MIN_CONF", fmt.Errorf("want a value in [0, 1], got %v", c.OCRMinConfidence))
	}
	if c.LogLevel, err = logrus.ParseLevel(getEnv("PANELS_LOG_LEVEL", "info")); err != nil {
		fail("PANELS_LOG_LEVEL", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		fail("PANELS_LOG_FORMAT", fmt.Errorf("want text or json, got %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return c, nil
}

// Logger builds a logrus logger writing to stderr with the configured level
// and format.
func (c *Config) Logger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(c.LogLevel)
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

func getFloat(k string, def float64) (float64, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func getBool(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}
