package common

import (
	"errors"
	"fmt"
)

// FailureKind tags a failure with the pipeline stage that produced it.
type FailureKind string

const (
	// FailureReader covers everything up to and including content
	// preparation: unreadable files, unsupported formats, broken
	// document archives.
	FailureReader FailureKind = "reader"

	// FailureExtraction covers the AI call and its result handling:
	// transport errors, non-2xx responses, schema violations.
	FailureExtraction FailureKind = "extraction"

	// FailureExport covers pushing a finished recipe to an external
	// target.
	FailureExport FailureKind = "export"
)

// Failure is an error with a stage tag and a user-presentable message.
// The wrapped cause keeps the full chain available to errors.Is/As.
type Failure struct {
	Kind    FailureKind
	Message string
	Cause   error
}

func (f *Failure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Cause)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// NewReaderFailure wraps err as a content-reading failure.
func NewReaderFailure(message string, err error) *Failure {
	return &Failure{Kind: FailureReader, Message: message, Cause: err}
}

// NewExtractionFailure wraps err as an extraction failure.
func NewExtractionFailure(message string, err error) *Failure {
	return &Failure{Kind: FailureExtraction, Message: message, Cause: err}
}

// NewExportFailure wraps err as an export failure.
func NewExportFailure(message string, err error) *Failure {
	return &Failure{Kind: FailureExport, Message: message, Cause: err}
}

// AsFailure extracts a *Failure from err's chain. When err carries no
// Failure the second return is false and callers should treat the error
// as an untagged internal one.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
