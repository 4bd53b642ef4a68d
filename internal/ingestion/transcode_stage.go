package ingestion

import (
	"context"

	"github.com/maraichr/imagesync/internal/transcode"
)

// TranscodeStage re-encodes the downloaded bytes. With passthrough set, the
// bytes are uploaded as downloaded under the resolved extension.
type TranscodeStage struct {
	transcoder  *transcode.Transcoder
	passthrough bool
}

func NewTranscodeStage(t *transcode.Transcoder, passthrough bool) *TranscodeStage {
	return &TranscodeStage{transcoder: t, passthrough: passthrough}
}

func (s *TranscodeStage) Name() string { return "transcode" }

func (s *TranscodeStage) Execute(_ context.Context, rc *RecordContext) error {
	if s.passthrough {
		p, err := s.transcoder.Passthrough(rc.Raw, rc.Extension)
		if err != nil {
			return err
		}
		rc.Payload = p
		rc.KeyExtension = rc.Extension
		return nil
	}

	p, err := s.transcoder.Transcode(rc.Raw)
	if err != nil {
		return err
	}
	rc.Raw = nil
	rc.Payload = p
	rc.KeyExtension = p.Format.Extension()
	return nil
}
