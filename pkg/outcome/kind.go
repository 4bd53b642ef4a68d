package outcome

// Kind is the machine-readable classification of a record's outcome.
type Kind string

// Terminal outcomes. Exactly one is recorded per record.
const (
	KindMissingField     Kind = "MISSING_FIELD"
	KindDownloadFailed   Kind = "DOWNLOAD_FAILED"
	KindProcessingFailed Kind = "PROCESSING_FAILED"
	KindUploadFailed     Kind = "UPLOAD_FAILED"
	KindUploadSucceeded  Kind = "UPLOAD_SUCCEEDED"
)

// Overlay outcomes. Recorded in addition to a terminal outcome.
const (
	KindExtensionDefaulted Kind = "EXTENSION_DEFAULTED"
)

// Terminal reports whether k ends a record's processing.
func (k Kind) Terminal() bool {
	switch k {
	case KindMissingField, KindDownloadFailed, KindProcessingFailed,
		KindUploadFailed, KindUploadSucceeded:
		return true
	}
	return false
}

// Reason refines a Kind. Only processing and upload failures carry one.
type Reason string

const (
	ReasonNone Reason = ""

	// Processing.
	ReasonDecode            Reason = "decode"
	ReasonEncode            Reason = "encode"
	ReasonSizeUnsatisfiable Reason = "size_unsatisfiable"
	ReasonPanic             Reason = "panic"

	// Upload.
	ReasonPayloadNotFound        Reason = "payload_not_found"
	ReasonCredentialsUnavailable Reason = "credentials_unavailable"
	ReasonStoreError             Reason = "store_error"
)
