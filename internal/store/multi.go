package store

import (
	"context"

	"github.com/ironsheep/manga-panels/internal/pipeline"
)

// Multi saves to every store in order, stopping at the first error.
type Multi []pipeline.Store

// Save implements pipeline.Store.
func (m Multi) Save(ctx context.Context, source string, res *pipeline.ExtractionResult) error {
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Save(ctx, source, res); err != nil {
			return err
		}
	}
	return nil
}
