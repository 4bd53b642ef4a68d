package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/maraichr/imagesync/internal/ledger"
	"github.com/maraichr/imagesync/internal/records"
	"github.com/maraichr/imagesync/internal/runlog"
	"github.com/maraichr/imagesync/pkg/outcome"
)

// Pipeline drives every record of the source through the stages, one record
// at a time.
//
// Each record ends in exactly one terminal outcome: missing field, download
// failed, processing failed, upload failed or upload succeeded. A stage
// error ends the record and its outcome kind selects the log it is written
// to. Extension defaulting is an overlay logged as soon as the resolve stage
// reports it. A panic inside a stage is recovered and counted as a
// processing failure so the batch always runs to completion.
type Pipeline struct {
	source records.Source
	stages []Stage
	run    *runlog.Log
	ledger ledger.Ledger
	out    io.Writer
	logger *slog.Logger
}

func NewPipeline(source records.Source, stages []Stage, run *runlog.Log, l ledger.Ledger, out io.Writer, logger *slog.Logger) *Pipeline {
	if l == nil {
		l = ledger.Nop{}
	}
	return &Pipeline{source: source, stages: stages, run: run, ledger: l, out: out, logger: logger}
}

// Run processes the whole source, then appends the totals to every log,
// writes the summary and copies it to the pipeline's output. The run log is
// closed even if iteration fails. A cancelled context stops before the next
// record.
func (p *Pipeline) Run(ctx context.Context) (counters runlog.Counters, err error) {
	p.logger.Info("pipeline started", slog.String("log_dir", p.run.Dir()))

	defer func() {
		if cerr := p.run.Close(p.out); cerr != nil {
			p.logger.Error("close run logs", slog.String("error", cerr.Error()))
			if err == nil {
				err = fmt.Errorf("close run logs: %w", cerr)
			}
		}
		counters = p.run.Counters()
	}()

	iterErr := p.source.Each(ctx, func(rec records.Record) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.processRecord(ctx, rec)
		return nil
	})

	c := p.run.Counters()
	if ferr := p.ledger.Finish(context.WithoutCancel(ctx), c); ferr != nil {
		p.logger.Warn("ledger finish failed", slog.String("error", ferr.Error()))
	}

	if iterErr != nil {
		p.logger.Error("pipeline stopped early",
			slog.Int("records", c.Records),
			slog.String("error", iterErr.Error()))
		return c, fmt.Errorf("iterate records: %w", iterErr)
	}

	p.logger.Info("pipeline completed",
		slog.Int("records", c.Records),
		slog.Int("upload_succeeded", c.UploadSucceeded),
		slog.Int("failed", c.Records-c.UploadSucceeded))
	return c, nil
}

func (p *Pipeline) processRecord(ctx context.Context, rec records.Record) {
	p.run.Examined()
	rc := &RecordContext{Record: rec}
	defer rc.release()

	p.logger.Debug("record started", slog.String("_id", rec.ID), slog.String("url", rec.URL))

	err := p.executeStages(ctx, rc)
	kind := outcome.KindOf(err)

	switch kind {
	case outcome.KindMissingField:
		p.run.MissingField(rec.ID, rec.Name)
	case outcome.KindDownloadFailed:
		p.run.DownloadFailed(rec.ID, rec.Name, err)
	case outcome.KindUploadFailed:
		p.run.UploadFailed(rec.ID, rec.Name, err)
	case outcome.KindUploadSucceeded:
		p.run.UploadSucceeded(rec.ID, rec.Name, rc.Key)
	default:
		kind = outcome.KindProcessingFailed
		p.run.ProcessingFailed(rec.ID, rec.Name, err)
	}

	if lerr := p.ledger.Record(ctx, rec.ID, kind); lerr != nil {
		p.logger.Warn("ledger record failed",
			slog.String("_id", rec.ID),
			slog.String("error", lerr.Error()))
	}
}

// executeStages runs the stages in order, stopping at the first error.
func (p *Pipeline) executeStages(ctx context.Context, rc *RecordContext) (err error) {
	var current string
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("stage panicked",
				slog.String("stage", current),
				slog.String("_id", rc.Record.ID),
				slog.Any("panic", r))
			err = outcome.Panicked(r)
		}
	}()

	for _, stage := range p.stages {
		current = stage.Name()
		err := stage.Execute(ctx, rc)
		p.drainAnnotations(rc)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) drainAnnotations(rc *RecordContext) {
	for _, k := range rc.drainAnnotations() {
		if k == outcome.KindExtensionDefaulted {
			p.run.ExtensionDefaulted(rc.Record.ID, rc.Record.Name)
		}
	}
}
