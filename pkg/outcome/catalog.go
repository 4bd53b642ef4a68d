package outcome

import "fmt"

// --- Source ---

func MissingField(field string) *Error {
	return New(KindMissingField, ReasonNone, "record has no "+field)
}

// --- Download ---

func DownloadStatus(status int) *Error {
	e := New(KindDownloadFailed, ReasonNone, fmt.Sprintf("unexpected status code %d", status))
	e.statusCode = status
	return e
}

func DownloadFailed(cause error) *Error {
	return Wrap(KindDownloadFailed, ReasonNone, "download failed", cause)
}

func DownloadTooLarge(limit int64) *Error {
	return New(KindDownloadFailed, ReasonNone, fmt.Sprintf("response body exceeds %d bytes", limit))
}

// --- Processing ---

func DecodeFailed(cause error) *Error {
	return Wrap(KindProcessingFailed, ReasonDecode, "decode image", cause)
}

func EncodeFailed(cause error) *Error {
	return Wrap(KindProcessingFailed, ReasonEncode, "encode image", cause)
}

func SizeUnsatisfiable(width, height, size int, limit int64) *Error {
	return New(KindProcessingFailed, ReasonSizeUnsatisfiable,
		fmt.Sprintf("cannot satisfy size ceiling of %d bytes (last attempt %dx%d, %d bytes)", limit, width, height, size))
}

func PayloadTooLarge(size int, limit int64) *Error {
	return New(KindProcessingFailed, ReasonSizeUnsatisfiable,
		fmt.Sprintf("payload of %d bytes exceeds size ceiling of %d bytes", size, limit))
}

func Panicked(v any) *Error {
	return New(KindProcessingFailed, ReasonPanic, fmt.Sprintf("panic: %v", v))
}

// --- Upload ---

func PayloadNotFound(key string) *Error {
	return New(KindUploadFailed, ReasonPayloadNotFound, "payload not found for "+key)
}

func CredentialsUnavailable(cause error) *Error {
	return Wrap(KindUploadFailed, ReasonCredentialsUnavailable, "credentials not available", cause)
}

func StoreError(key string, cause error) *Error {
	return Wrap(KindUploadFailed, ReasonStoreError, "upload "+key, cause)
}
