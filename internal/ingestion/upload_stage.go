package ingestion

import (
	"context"

	"github.com/maraichr/imagesync/internal/store"
)

// UploadStage writes the payload to the sink under <prefix>/<id><ext>.
type UploadStage struct {
	sink   store.Sink
	prefix string
}

func NewUploadStage(sink store.Sink, prefix string) *UploadStage {
	return &UploadStage{sink: sink, prefix: prefix}
}

func (s *UploadStage) Name() string { return "upload" }

func (s *UploadStage) Execute(ctx context.Context, rc *RecordContext) error {
	rc.Key = store.ObjectKey(s.prefix, rc.Record.ID, rc.KeyExtension)
	return s.sink.Put(ctx, rc.Key, rc.Payload)
}
