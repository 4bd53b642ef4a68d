package ingestion

import (
	"context"
)

// Fetcher downloads a URL. Errors should be *outcome.Error values.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type FetchStage struct {
	fetcher Fetcher
}

func NewFetchStage(f Fetcher) *FetchStage {
	return &FetchStage{fetcher: f}
}

func (s *FetchStage) Name() string { return "fetch" }

func (s *FetchStage) Execute(ctx context.Context, rc *RecordContext) error {
	data, err := s.fetcher.Fetch(ctx, rc.Record.URL)
	if err != nil {
		return err
	}
	rc.Raw = data
	return nil
}
