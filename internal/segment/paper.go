package segment

import (
	"image"

	"github.com/ironsheep/manga-panels/internal/imaging"
)

// DefaultPaperThreshold is the share of mid-tone pixels at which a page is
// considered a textured paper scan.
const DefaultPaperThreshold = 0.35

// Mid-tone band [paperLow, paperHigh) of the paper texture score.
const (
	paperLow  = 50
	paperHigh = 200
)

// PaperScore returns the fraction of channel-0 pixels whose value lies in the
// mid-tone band. Clean scans are mostly white paper and black ink; textured
// or yellowed paper fills the band.
func PaperScore(img image.Image) float64 {
	hist := imaging.Histogram(imaging.ChannelZero(img))
	total, mid := 0, 0
	for v, n := range hist {
		total += n
		if v >= paperLow && v < paperHigh {
			mid += n
		}
	}
	if total == 0 {
		return 0
	}
	return float64(mid) / float64(total)
}

// IsPaperTextured reports whether the page's paper score reaches th, along
// with the score. Such pages segment poorly and are skipped when paper
// filtering is on.
func IsPaperTextured(img image.Image, th float64) (bool, float64) {
	score := PaperScore(img)
	return score >= th, score
}
