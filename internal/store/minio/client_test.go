package minio

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maraichr/imagesync/internal/config"
	"github.com/maraichr/imagesync/internal/transcode"
	"github.com/maraichr/imagesync/pkg/outcome"
)

func newTestClient(t *testing.T, srv *httptest.Server, accessKey string) *Client {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	c, err := NewClient(config.MinIOConfig{
		Endpoint:  u.Host,
		AccessKey: accessKey,
		SecretKey: "secret",
		Bucket:    "images",
		Region:    "us-east-1",
	})
	require.NoError(t, err)
	return c
}

func TestPut_Success(t *testing.T) {
	var gotPath, gotType, gotLen string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotLen = r.Header.Get("X-Amz-Decoded-Content-Length")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, "access")
	err := c.Put(context.Background(), "products/abc.webp", &transcode.Payload{Data: []byte("webp-data"), Format: transcode.FormatWebP})
	require.NoError(t, err)

	assert.Equal(t, "/images/products/abc.webp", gotPath)
	assert.Equal(t, "image/webp", gotType)
	// Plain HTTP bodies arrive in aws-chunked framing.
	assert.Equal(t, "9", gotLen)
	assert.Contains(t, string(gotBody), "webp-data")
	assert.Equal(t, "images", c.Bucket())
}

func TestPut_EmptyPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer srv.Close()

	c := newTestClient(t, srv, "access")
	err := c.Put(context.Background(), "k.webp", &transcode.Payload{})
	assert.Equal(t, outcome.ReasonPayloadNotFound, outcome.ReasonOf(err))
	assert.Equal(t, outcome.KindUploadFailed, outcome.KindOf(err))
}

func TestPut_NoCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer srv.Close()

	c := newTestClient(t, srv, "")
	err := c.Put(context.Background(), "k.webp", &transcode.Payload{Data: []byte("x")})
	assert.Equal(t, outcome.ReasonCredentialsUnavailable, outcome.ReasonOf(err))
}

func TestPut_ErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
		reason outcome.Reason
	}{
		{"bad key", http.StatusForbidden, "InvalidAccessKeyId", outcome.ReasonCredentialsUnavailable},
		{"bad signature", http.StatusForbidden, "SignatureDoesNotMatch", outcome.ReasonCredentialsUnavailable},
		{"no bucket", http.StatusNotFound, "NoSuchBucket", outcome.ReasonStoreError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.Copy(io.Discard, r.Body)
				w.Header().Set("Content-Type", "application/xml")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>`+tt.code+`</Code><Message>nope</Message><BucketName>images</BucketName><Resource>/images/k.webp</Resource><RequestId>1</RequestId></Error>`)
			}))
			defer srv.Close()

			c := newTestClient(t, srv, "access")
			err := c.Put(context.Background(), "k.webp", &transcode.Payload{Data: []byte("x"), Format: transcode.FormatWebP})
			require.Error(t, err)
			assert.Equal(t, outcome.KindUploadFailed, outcome.KindOf(err))
			assert.Equal(t, tt.reason, outcome.ReasonOf(err))
		})
	}
}

func TestPut_ServerErrorNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, "access")
	err := c.Put(context.Background(), "k.webp", &transcode.Payload{Data: []byte("x"), Format: transcode.FormatWebP})
	require.Error(t, err)
	assert.Equal(t, outcome.ReasonStoreError, outcome.ReasonOf(err))
	assert.Equal(t, int32(1), hits.Load())
}
