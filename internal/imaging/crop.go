package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// CropResult contains a cropped image encoded as base64 PNG.
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// CropMasked extracts the rectangle r from img and paints every pixel that is
// not marked in keep with fill.
//
// keep must cover the same coordinate space as img (typically a full-page mask
// produced by PolygonMask). The result is a zero-origin image of r's size, so
// pixel content survives only inside the masked silhouette even though the
// crop itself is rectangular.
func CropMasked(img image.Image, r image.Rectangle, keep *image.Alpha, fill color.NRGBA) (*image.NRGBA, error) {
	bounds := img.Bounds()
	if !r.In(bounds) {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", r, bounds)
	}
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region %v", r)
	}

	cropped := imaging.Crop(img, r)
	for y := 0; y < r.Dy(); y++ {
		row := cropped.Pix[y*cropped.Stride:]
		for x := 0; x < r.Dx(); x++ {
			if keep.AlphaAt(r.Min.X+x, r.Min.Y+y).A != 0 {
				continue
			}
			i := x * 4
			row[i], row[i+1], row[i+2], row[i+3] = fill.R, fill.G, fill.B, fill.A
		}
	}

	return cropped, nil
}

// EncodePNG encodes img as base64 PNG.
func EncodePNG(img image.Image) (*CropResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &CropResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// savableExtensions are the formats imaging.Save can encode.
var savableExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// PanelFileName names the j-th panel crop of a page, keeping the page's
// extension when it can be encoded and falling back to PNG otherwise.
func PanelFileName(pagePath string, j int) string {
	base := filepath.Base(pagePath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	if !savableExtensions[strings.ToLower(ext)] {
		ext = ".png"
	}
	return fmt.Sprintf("%s_%d%s", name, j, ext)
}

// Save writes img to path, choosing the encoder from the extension.
func Save(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", filepath.Base(path), err)
	}
	return nil
}
