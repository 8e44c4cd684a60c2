// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fault defines the structured error taxonomy surfaced by the
// translation pipeline. Adapter-level failures are converted into one of
// these kinds at the boundary where they occur; raw backend errors never
// reach the caller.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindEmptyInput              Kind = "empty_input"
	KindUnsupportedFormat       Kind = "unsupported_format"
	KindExtraction              Kind = "extraction_failed"
	KindTranscription           Kind = "transcription_failed"
	KindUnsupportedLanguage     Kind = "unsupported_language"
	KindUnsupportedExportFormat Kind = "unsupported_export_format"
	KindMissingFontResource     Kind = "missing_font_resource"
	KindTimeout                 Kind = "timeout"
	KindStoreWrite              Kind = "store_write_failed"
	KindBackend                 Kind = "backend_failed"
)

// Error carries a failure kind plus a human-readable message. The wrapped
// cause is preserved for logs but not exposed over the API.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a fault with the given kind and formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a fault that preserves the underlying cause.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the failure kind from an error chain. Unclassified errors
// report KindBackend so callers always receive a taxonomy value.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindBackend
}

// IsKind reports whether any error in the chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}

// Recoverable reports whether the failure degrades gracefully instead of
// aborting the run. Only the missing font resource qualifies today.
func Recoverable(err error) bool {
	return IsKind(err, KindMissingFontResource)
}
