package textdetect

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

// Tesseract detects words with the Tesseract engine.
//
// Each Detect call opens one client and reuses it for every image of the
// batch. A Tesseract client is not safe for concurrent use, so Tesseract does
// not implement ConcurrentSafe.
type Tesseract struct {
	// Language is a Tesseract language code such as "eng" or "jpn".
	Language string

	// MinConfidence drops words whose confidence (0.0 to 1.0) is lower.
	MinConfidence float64

	clientFactory func() *gosseract.Client
}

// NewTesseract creates a Tesseract detector for the given language.
func NewTesseract(language string) *Tesseract {
	if language == "" {
		language = DefaultLanguage
	}
	return &Tesseract{Language: language, clientFactory: gosseract.NewClient}
}

// Detect returns the word boxes of every image as four-point polygons.
func (t *Tesseract) Detect(ctx context.Context, imgs []image.Image) ([][]Polygon, error) {
	factory := t.clientFactory
	if factory == nil {
		factory = gosseract.NewClient
	}
	client := factory()
	defer client.Close()

	if err := client.SetLanguage(t.Language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	results := make([][]Polygon, 0, len(imgs))
	for i, img := range imgs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		polys, err := t.detectWithClient(client, img)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		results = append(results, polys)
	}
	return results, nil
}

func (t *Tesseract) detectWithClient(client *gosseract.Client, img image.Image) ([]Polygon, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("failed to get word boxes: %w", err)
	}
	return wordPolygons(boxes, t.MinConfidence), nil
}

// wordPolygons keeps the non-empty words at or above minConf. Boxes are
// relative to the encoded image's top-left corner and stay that way, which
// is the zero-origin space text masks are drawn in.
func wordPolygons(boxes []gosseract.BoundingBox, minConf float64) []Polygon {
	polys := make([]Polygon, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" || box.Confidence/100.0 < minConf {
			continue
		}
		polys = append(polys, BoxPolygon(box.Box))
	}
	return polys
}

// Info describes the text detection backend.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Language  string `json:"language"`
	Backend   string `json:"backend"`
}

// Info reports the Tesseract version in use.
func (t *Tesseract) Info() Info {
	factory := t.clientFactory
	if factory == nil {
		factory = gosseract.NewClient
	}
	client := factory()
	defer client.Close()

	version := client.Version()
	return Info{
		Available: version != "",
		Version:   version,
		Language:  t.Language,
		Backend:   "gosseract",
	}
}
