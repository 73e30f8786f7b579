package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/manga-panels/internal/pipeline"
)

// DefaultFileName is the file written by a FileStore with no path.
const DefaultFileName = "output.json"

// FileStore writes each result to a single JSON file, replacing the previous one.
type FileStore struct {
	Path string
}

// NewFileStore returns a FileStore writing to path, or DefaultFileName when
// path is empty.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFileName
	}
	return &FileStore{Path: path}
}

// Save writes res as indented JSON. The file is written to a temporary name
// and renamed, so readers never see a partial result.
func (s *FileStore) Save(ctx context.Context, _ string, res *pipeline.ExtractionResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".output-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write result: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(s.Path), err)
	}
	return nil
}

// Load reads a result previously written by Save.
func (s *FileStore) Load() (*pipeline.ExtractionResult, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result: %w", err)
	}
	var res pipeline.ExtractionResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return &res, nil
}
