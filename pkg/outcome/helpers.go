package outcome

import "errors"

// As returns the *Error wrapped by err, if any.
func As(err error) (*Error, bool) {
	var oe *Error
	if errors.As(err, &oe) {
		return oe, true
	}
	return nil, false
}

// KindOf returns the outcome kind carried by err. Unclassified errors are
// reported as processing failures; a nil error is a success.
func KindOf(err error) Kind {
	if err == nil {
		return KindUploadSucceeded
	}
	if oe, ok := As(err); ok {
		return oe.kind
	}
	return KindProcessingFailed
}

// ReasonOf returns the reason carried by err, or ReasonNone.
func ReasonOf(err error) Reason {
	if oe, ok := As(err); ok {
		return oe.reason
	}
	return ReasonNone
}
