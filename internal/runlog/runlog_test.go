package runlog

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestLog_WritesCategoriesAndTotals(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(dir, "img_url", discardLogger())
	require.NoError(t, err)

	l.Examined()
	l.MissingField("a1", "Alpha")
	l.Examined()
	l.ExtensionDefaulted("b2", "Beta")
	l.DownloadFailed("b2", "Beta", errors.New("unexpected status code 404"))
	l.Examined()
	l.ProcessingFailed("c3", "", errors.New("decode image: bad header"))
	l.Examined()
	l.UploadSucceeded("d4", "Delta", "images/d4.webp")

	var out bytes.Buffer
	require.NoError(t, l.Close(&out))

	assert.Equal(t, []string{
		"_id: a1, name: Alpha",
		"Total no img_url: 1",
	}, readLines(t, filepath.Join(dir, "no_img_url.txt")))

	assert.Equal(t, []string{
		"_id: b2, name: Beta, error: unexpected status code 404",
		"Total download failed: 1",
	}, readLines(t, filepath.Join(dir, "download_failed.txt")))

	assert.Equal(t, []string{
		"_id: b2, name: Beta",
		"Total no extension: 1",
	}, readLines(t, filepath.Join(dir, "no_extension.txt")))

	assert.Equal(t, []string{
		"_id: c3, name: , error: decode image: bad header",
		"Total image processing failed: 1",
	}, readLines(t, filepath.Join(dir, "image_processing_failed.txt")))

	assert.Equal(t, []string{"Total upload failed: 0"}, readLines(t, filepath.Join(dir, "upload_failed.txt")))

	summary := readLines(t, filepath.Join(dir, SummaryFile))
	assert.Equal(t, []string{
		"Total records: 4",
		"Total no img_url: 1",
		"Total download failed: 1",
		"Total no extension: 1",
		"Total image processing failed: 1",
		"Total upload failed: 0",
		"Total upload succeeded: 1",
	}, summary)
	assert.Equal(t, strings.Join(summary, "\n")+"\n", out.String())

	c := l.Counters()
	assert.Equal(t, c.Records, c.Terminal())
	assert.Equal(t, 1, c.NoExtension)
}

func TestLog_CloseTwice(t *testing.T) {
	l, err := Open(t.TempDir(), "img_url", discardLogger())
	require.NoError(t, err)

	require.NoError(t, l.Close(nil))
	require.NoError(t, l.Close(nil))

	// Writes after close still count and mirror to the console.
	l.MissingField("late", "")
	assert.Equal(t, 1, l.Counters().MissingField)
}

func TestLog_OpenTruncatesPreviousRun(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "download_failed.txt"), []byte("stale\n"), 0o644))

	l, err := Open(dir, "img_url", discardLogger())
	require.NoError(t, err)
	require.NoError(t, l.Close(nil))

	assert.Equal(t, []string{"Total download failed: 0"}, readLines(t, filepath.Join(dir, "download_failed.txt")))
}

func TestResetDir_RemovesOnlyRunArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range []string{"no_img_url.txt", "download_failed.txt", "summary.txt", "run.log", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "keep"), 0o755))

	require.NoError(t, ResetDir(dir, "img_url"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"keep", "notes.txt"}, names)
}

func TestResetDir_CreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "logs")

	require.NoError(t, ResetDir(dir, "img_url"))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestArtifacts(t *testing.T) {
	assert.Equal(t, []string{
		"no_thumb.txt", "download_failed.txt", "no_extension.txt",
		"image_processing_failed.txt", "upload_failed.txt", "summary.txt", "run.log",
	}, Artifacts("thumb"))
}

func TestLine(t *testing.T) {
	assert.Equal(t, "_id: 1, name: n", Line("1", "n", nil))
	assert.Equal(t, "_id: 1, name: n, error: boom", Line("1", "n", errors.New("boom")))
}
