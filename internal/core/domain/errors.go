package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a job failure.
type Kind string

const (
	KindInvalidSource       Kind = "InvalidSource"
	KindRecordNotFound      Kind = "RecordNotFound"
	KindDownloadFailed      Kind = "DownloadFailed"
	KindTranscodeFailed     Kind = "TranscodeFailed"
	KindSourceUnavailable   Kind = "SourceUnavailable"
	KindExtractionFailed    Kind = "ExtractionFailed"
	KindTranscriptionFailed Kind = "TranscriptionFailed"
	KindUnexpected          Kind = "UnexpectedError"
)

// Error is a classified job failure.
type Error struct {
	Kind      Kind
	Message   string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified error.
func NewError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err, Retryable: kind == KindExtractionFailed}
}

// Errorf builds a classified error with a formatted message and no cause.
func Errorf(kind Kind, format string, args ...any) *Error {
	return NewError(kind, fmt.Sprintf(format, args...), nil)
}

// AsError extracts a classified error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the classification of err, or KindUnexpected.
func KindOf(err error) Kind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return KindUnexpected
}

// IsRetryable reports whether err is a classified retryable failure.
func IsRetryable(err error) bool {
	e, ok := AsError(err)
	return ok && e.Retryable
}

// Classify returns err as a classified error, wrapping unknown errors as
// UnexpectedError.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := AsError(err); ok {
		return e
	}
	return NewError(KindUnexpected, "unexpected error during processing", err)
}
