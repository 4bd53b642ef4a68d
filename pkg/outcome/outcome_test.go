package outcome

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUploadSucceeded, KindOf(nil))
	assert.Equal(t, KindDownloadFailed, KindOf(DownloadStatus(404)))
	assert.Equal(t, KindProcessingFailed, KindOf(errors.New("boom")))

	wrapped := fmt.Errorf("stage fetch: %w", DownloadStatus(500))
	assert.Equal(t, KindDownloadFailed, KindOf(wrapped))
}

func TestDownloadStatus_CarriesCode(t *testing.T) {
	e := DownloadStatus(404)
	assert.Equal(t, 404, e.StatusCode())
	assert.Contains(t, e.Error(), "404")
}

func TestWrap_Unwraps(t *testing.T) {
	cause := errors.New("connection reset by peer")
	e := DownloadFailed(cause)

	require.ErrorIs(t, e, cause)
	assert.Equal(t, "download failed: connection reset by peer", e.Error())
	assert.Equal(t, "download failed", e.Message())
}

func TestReasonOf(t *testing.T) {
	assert.Equal(t, ReasonSizeUnsatisfiable, ReasonOf(SizeUnsatisfiable(0, 1, 2048, 1024)))
	assert.Equal(t, ReasonCredentialsUnavailable, ReasonOf(CredentialsUnavailable(nil)))
	assert.Equal(t, ReasonNone, ReasonOf(errors.New("plain")))
}

func TestKind_Terminal(t *testing.T) {
	assert.True(t, KindMissingField.Terminal())
	assert.True(t, KindUploadSucceeded.Terminal())
	assert.False(t, KindExtensionDefaulted.Terminal())
}
