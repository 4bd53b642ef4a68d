package ingestion

import (
	"context"

	"github.com/maraichr/imagesync/internal/imageurl"
	"github.com/maraichr/imagesync/pkg/outcome"
)

// ResolveStage rejects records without a URL and picks the extension.
type ResolveStage struct {
	resolver *imageurl.Resolver
	urlField string
}

func NewResolveStage(resolver *imageurl.Resolver, urlField string) *ResolveStage {
	return &ResolveStage{resolver: resolver, urlField: urlField}
}

func (s *ResolveStage) Name() string { return "resolve" }

func (s *ResolveStage) Execute(_ context.Context, rc *RecordContext) error {
	if !rc.Record.HasURL {
		return outcome.MissingField(s.urlField)
	}

	rc.Extension, rc.Defaulted = s.resolver.Resolve(rc.Record.URL)
	if rc.Defaulted {
		rc.Annotate(outcome.KindExtensionDefaulted)
	}
	return nil
}
