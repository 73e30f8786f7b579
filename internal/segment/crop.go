package segment

import (
	"image"
	"image/color"

	"github.com/ironsheep/manga-panels/internal/imaging"
)

// CropPanel cuts a candidate's bounding box out of img and paints every pixel
// outside the candidate's silhouette with fill.
//
// Candidate coordinates are relative to the top-left corner of img.
func CropPanel(img image.Image, c Candidate, fill color.Color) (*image.NRGBA, error) {
	b := img.Bounds()
	poly := c.Polygon()
	for i := range poly {
		poly[i].X += float64(b.Min.X)
		poly[i].Y += float64(b.Min.Y)
	}

	keep := image.NewAlpha(b)
	imaging.FillPolygon(keep, poly)

	return imaging.CropMasked(img, c.Bounds.Add(b.Min), keep, color.NRGBAModel.Convert(fill).(color.NRGBA))
}
