package store

import (
	"context"
	"errors"
	"testing"

	"github.com/ironsheep/manga-panels/internal/pipeline"
)

type recordingStore struct {
	name string
	log  *[]string
	err  error
}

func (r recordingStore) Save(_ context.Context, source string, _ *pipeline.ExtractionResult) error {
	*r.log = append(*r.log, r.name+":"+source)
	return r.err
}

func TestMultiSavesInOrder(t *testing.T) {
	var log []string
	m := Multi{recordingStore{name: "a", log: &log}, nil, recordingStore{name: "b", log: &log}}

	if err := m.Save(context.Background(), "src", sampleResult()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if len(log) != 2 || log[0] != "a:src" || log[1] != "b:src" {
		t.Errorf("got %v", log)
	}
}

func TestMultiStopsAtFirstError(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	m := Multi{
		recordingStore{name: "a", log: &log, err: boom},
		recordingStore{name: "b", log: &log},
	}

	if err := m.Save(context.Background(), "src", sampleResult()); !errors.Is(err, boom) {
		t.Errorf("got %v, want %v", err, boom)
	}
	if len(log) != 1 {
		t.Errorf("second store should not run: %v", log)
	}
}
