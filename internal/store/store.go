// Package store defines the object store sink that receives encoded images.
package store

import (
	"context"
	"strings"

	"github.com/maraichr/imagesync/internal/transcode"
)

// Sink uploads a payload under key. Failures are *outcome.Error values of
// kind UploadFailed with a payload_not_found, credentials_unavailable or
// store_error reason.
type Sink interface {
	Put(ctx context.Context, key string, p *transcode.Payload) error
	Bucket() string
}

// ObjectKey joins the configured prefix and the generated filename
// "<id><ext>". An empty prefix yields just the filename.
func ObjectKey(prefix, id, ext string) string {
	name := id + ext
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// credentialErrorCodes are S3 error codes that mean the configured
// credentials cannot be used.
var credentialErrorCodes = map[string]struct{}{
	"InvalidAccessKeyId":    {},
	"SignatureDoesNotMatch": {},
	"ExpiredToken":          {},
	"InvalidToken":          {},
	"NoCredentialProviders": {},
}

// IsCredentialErrorCode reports whether an S3 error code is a credential
// failure.
func IsCredentialErrorCode(code string) bool {
	_, ok := credentialErrorCodes[code]
	return ok
}
