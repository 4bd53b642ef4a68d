package ingestion

import (
	"context"

	"github.com/maraichr/imagesync/internal/records"
	"github.com/maraichr/imagesync/internal/transcode"
	"github.com/maraichr/imagesync/pkg/outcome"
)

// Stage represents a step in the per-record pipeline. A stage that returns
// an error ends the record; the error's outcome kind selects the log.
type Stage interface {
	Name() string
	Execute(ctx context.Context, rc *RecordContext) error
}

// RecordContext carries state through the pipeline stages for one record.
type RecordContext struct {
	Record records.Record

	// Set by resolve stage
	Extension string
	Defaulted bool

	// Set by fetch stage
	Raw []byte

	// Set by transcode stage
	Payload      *transcode.Payload
	KeyExtension string

	// Set by upload stage
	Key string

	annotations []outcome.Kind
}

// Annotate records a non-terminal outcome. The pipeline drains annotations
// after every stage, so they are logged before the next stage runs.
func (rc *RecordContext) Annotate(k outcome.Kind) {
	rc.annotations = append(rc.annotations, k)
}

func (rc *RecordContext) drainAnnotations() []outcome.Kind {
	a := rc.annotations
	rc.annotations = nil
	return a
}

// release drops the buffers so nothing outlives the record.
func (rc *RecordContext) release() {
	rc.Raw = nil
	rc.Payload = nil
}
