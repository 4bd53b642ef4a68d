// Package ledger records per-record outcomes and run totals outside the
// local log directory.
package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/maraichr/imagesync/internal/runlog"
	"github.com/maraichr/imagesync/pkg/outcome"
)

const keyPrefix = "imagesync:run:"

// Ledger receives every terminal outcome and the final totals of a run.
type Ledger interface {
	Record(ctx context.Context, id string, kind outcome.Kind) error
	Finish(ctx context.Context, c runlog.Counters) error
}

// Nop discards everything.
type Nop struct{}

func (Nop) Record(context.Context, string, outcome.Kind) error { return nil }
func (Nop) Finish(context.Context, runlog.Counters) error      { return nil }

// Valkey stores outcomes in the hash imagesync:run:<run>:outcomes and totals
// in imagesync:run:<run>:summary. Both expire after ttl.
type Valkey struct {
	client valkey.Client
	runID  string
	ttl    time.Duration
}

func NewValkey(client valkey.Client, runID string, ttl time.Duration) *Valkey {
	return &Valkey{client: client, runID: runID, ttl: ttl}
}

func (l *Valkey) OutcomesKey() string { return keyPrefix + l.runID + ":outcomes" }
func (l *Valkey) SummaryKey() string  { return keyPrefix + l.runID + ":summary" }

func (l *Valkey) Record(ctx context.Context, id string, kind outcome.Kind) error {
	resp := l.client.Do(ctx, l.client.B().Hset().
		Key(l.OutcomesKey()).
		FieldValue().FieldValue(id, string(kind)).
		Build())
	if err := resp.Error(); err != nil {
		return fmt.Errorf("hset outcome: %w", err)
	}
	return nil
}

func (l *Valkey) Finish(ctx context.Context, c runlog.Counters) error {
	fields := summaryFields(c)
	cmd := l.client.B().Hset().Key(l.SummaryKey()).FieldValue()
	for _, f := range fields {
		cmd = cmd.FieldValue(f[0], f[1])
	}

	cmds := valkey.Commands{cmd.Build()}
	if l.ttl > 0 {
		secs := int64(l.ttl / time.Second)
		cmds = append(cmds,
			l.client.B().Expire().Key(l.SummaryKey()).Seconds(secs).Build(),
			l.client.B().Expire().Key(l.OutcomesKey()).Seconds(secs).Build(),
		)
	}

	for _, resp := range l.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return fmt.Errorf("write run summary: %w", err)
		}
	}
	return nil
}

func summaryFields(c runlog.Counters) [][2]string {
	return [][2]string{
		{"records", strconv.Itoa(c.Records)},
		{"missing_field", strconv.Itoa(c.MissingField)},
		{"download_failed", strconv.Itoa(c.DownloadFailed)},
		{"no_extension", strconv.Itoa(c.NoExtension)},
		{"processing_failed", strconv.Itoa(c.ProcessingFailed)},
		{"upload_failed", strconv.Itoa(c.UploadFailed)},
		{"upload_succeeded", strconv.Itoa(c.UploadSucceeded)},
	}
}
