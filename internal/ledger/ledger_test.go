package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maraichr/imagesync/internal/runlog"
	"github.com/maraichr/imagesync/pkg/outcome"
)

func TestValkey_Keys(t *testing.T) {
	l := NewValkey(nil, "0b6c", 0)
	assert.Equal(t, "imagesync:run:0b6c:outcomes", l.OutcomesKey())
	assert.Equal(t, "imagesync:run:0b6c:summary", l.SummaryKey())
}

func TestSummaryFields(t *testing.T) {
	fields := summaryFields(runlog.Counters{Records: 5, MissingField: 1, UploadSucceeded: 3, UploadFailed: 1, NoExtension: 2})

	got := map[string]string{}
	for _, f := range fields {
		got[f[0]] = f[1]
	}
	assert.Equal(t, "5", got["records"])
	assert.Equal(t, "1", got["missing_field"])
	assert.Equal(t, "2", got["no_extension"])
	assert.Equal(t, "3", got["upload_succeeded"])
	assert.Equal(t, "1", got["upload_failed"])
	assert.Len(t, fields, 7)
}

func TestNop(t *testing.T) {
	var l Ledger = Nop{}
	assert.NoError(t, l.Record(context.Background(), "x", outcome.KindMissingField))
	assert.NoError(t, l.Finish(context.Background(), runlog.Counters{}))
}
