// Package runlog owns the per-run outcome counters and the plain-text
// failure logs written alongside them.
package runlog

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Category is a log file with its own counter.
type Category int

const (
	MissingField Category = iota
	DownloadFailed
	NoExtension
	ProcessingFailed
	UploadFailed
	numCategories
)

const SummaryFile = "summary.txt"

// Counters holds the run totals. MissingField, DownloadFailed,
// ProcessingFailed, UploadSucceeded and UploadFailed partition Records;
// NoExtension overlays them.
type Counters struct {
	Records          int
	MissingField     int
	DownloadFailed   int
	NoExtension      int
	ProcessingFailed int
	UploadSucceeded  int
	UploadFailed     int
}

// Terminal returns the number of records with a terminal outcome.
func (c Counters) Terminal() int {
	return c.MissingField + c.DownloadFailed + c.ProcessingFailed + c.UploadSucceeded + c.UploadFailed
}

// Log is the run context shared by the pipeline stages. It is not safe for
// concurrent use.
type Log struct {
	dir      string
	urlField string
	files    [numCategories]*os.File
	counters Counters
	logger   *slog.Logger
	closed   bool
}

// RunLogFile is the structured log written next to the category files.
const RunLogFile = "run.log"

// ResetDir removes the files a previous run left in dir and creates dir if
// needed. Only the run's own artifacts are removed; anything else in dir is
// left alone.
func ResetDir(dir, urlField string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	for _, name := range Artifacts(urlField) {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}

// Artifacts lists every file name a run writes into its log directory.
func Artifacts(urlField string) []string {
	l := &Log{urlField: urlField}
	names := make([]string, 0, numCategories+2)
	for c := Category(0); c < numCategories; c++ {
		names = append(names, l.FileName(c))
	}
	return append(names, SummaryFile, RunLogFile)
}

// Open creates (truncating) one log file per category in dir. urlField
// names the missing-field log, e.g. no_img_url.txt.
func Open(dir, urlField string, logger *slog.Logger) (*Log, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	l := &Log{dir: dir, urlField: urlField, logger: logger}
	for c := Category(0); c < numCategories; c++ {
		f, err := os.Create(filepath.Join(dir, l.FileName(c)))
		if err != nil {
			l.closeFiles()
			return nil, fmt.Errorf("create %s: %w", l.FileName(c), err)
		}
		l.files[c] = f
	}
	return l, nil
}

// FileName returns the base name of the category's log file.
func (l *Log) FileName(c Category) string {
	switch c {
	case MissingField:
		return "no_" + l.urlField + ".txt"
	case DownloadFailed:
		return "download_failed.txt"
	case NoExtension:
		return "no_extension.txt"
	case ProcessingFailed:
		return "image_processing_failed.txt"
	case UploadFailed:
		return "upload_failed.txt"
	}
	return ""
}

// Label returns the category name used in totals lines.
func (l *Log) Label(c Category) string {
	switch c {
	case MissingField:
		return "no " + l.urlField
	case DownloadFailed:
		return "download failed"
	case NoExtension:
		return "no extension"
	case ProcessingFailed:
		return "image processing failed"
	case UploadFailed:
		return "upload failed"
	}
	return ""
}

// Dir returns the directory holding the log files.
func (l *Log) Dir() string { return l.dir }

// Counters returns a snapshot of the run totals.
func (l *Log) Counters() Counters { return l.counters }

// Examined counts a record pulled from the source.
func (l *Log) Examined() { l.counters.Records++ }

func (l *Log) MissingField(id, name string) {
	l.counters.MissingField++
	l.write(MissingField, id, name, nil)
}

func (l *Log) ExtensionDefaulted(id, name string) {
	l.counters.NoExtension++
	l.write(NoExtension, id, name, nil)
}

func (l *Log) DownloadFailed(id, name string, err error) {
	l.counters.DownloadFailed++
	l.write(DownloadFailed, id, name, err)
}

func (l *Log) ProcessingFailed(id, name string, err error) {
	l.counters.ProcessingFailed++
	l.write(ProcessingFailed, id, name, err)
}

func (l *Log) UploadFailed(id, name string, err error) {
	l.counters.UploadFailed++
	l.write(UploadFailed, id, name, err)
}

func (l *Log) UploadSucceeded(id, name, key string) {
	l.counters.UploadSucceeded++
	l.logger.Info("upload succeeded",
		slog.String("_id", id),
		slog.String("name", name),
		slog.String("key", key))
}

// Line formats a log entry.
func Line(id, name string, err error) string {
	if err != nil {
		return fmt.Sprintf("_id: %s, name: %s, error: %s", id, name, err.Error())
	}
	return fmt.Sprintf("_id: %s, name: %s", id, name)
}

func (l *Log) write(c Category, id, name string, err error) {
	line := Line(id, name, err)

	attrs := []any{slog.String("_id", id), slog.String("name", name)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.logger.Warn(l.Label(c), attrs...)

	if l.closed {
		return
	}
	if _, werr := fmt.Fprintln(l.files[c], line); werr != nil {
		l.logger.Error("write log line",
			slog.String("file", l.FileName(c)),
			slog.String("error", werr.Error()))
	}
}

// SummaryLines returns the totals in the order they are written.
func (l *Log) SummaryLines() []string {
	c := l.counters
	return []string{
		fmt.Sprintf("Total records: %d", c.Records),
		l.total(MissingField),
		l.total(DownloadFailed),
		l.total(NoExtension),
		l.total(ProcessingFailed),
		l.total(UploadFailed),
		fmt.Sprintf("Total upload succeeded: %d", c.UploadSucceeded),
	}
}

func (l *Log) count(c Category) int {
	switch c {
	case MissingField:
		return l.counters.MissingField
	case DownloadFailed:
		return l.counters.DownloadFailed
	case NoExtension:
		return l.counters.NoExtension
	case ProcessingFailed:
		return l.counters.ProcessingFailed
	case UploadFailed:
		return l.counters.UploadFailed
	}
	return 0
}

func (l *Log) total(c Category) string {
	return fmt.Sprintf("Total %s: %d", l.Label(c), l.count(c))
}

// Close appends each category's total to its file, writes summary.txt,
// copies the summary to out (if non-nil) and closes every file. Calling
// Close more than once is a no-op.
func (l *Log) Close(out io.Writer) error {
	if l.closed {
		return nil
	}
	l.closed = true

	var errs []error
	for c := Category(0); c < numCategories; c++ {
		if _, err := fmt.Fprintln(l.files[c], l.total(c)); err != nil {
			errs = append(errs, fmt.Errorf("write total to %s: %w", l.FileName(c), err))
		}
	}
	errs = append(errs, l.closeFiles())

	summary, err := os.Create(filepath.Join(l.dir, SummaryFile))
	if err != nil {
		errs = append(errs, fmt.Errorf("create summary: %w", err))
	} else {
		w := io.Writer(summary)
		if out != nil {
			w = io.MultiWriter(summary, out)
		}
		for _, line := range l.SummaryLines() {
			if _, err := fmt.Fprintln(w, line); err != nil {
				errs = append(errs, fmt.Errorf("write summary: %w", err))
				break
			}
		}
		if err := summary.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close summary: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (l *Log) closeFiles() error {
	var errs []error
	for c, f := range l.files {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", l.FileName(Category(c)), err))
		}
		l.files[c] = nil
	}
	return errors.Join(errs...)
}
