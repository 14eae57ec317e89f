package notification

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind string

const (
	// ClassificationError
	KindUnrecognized ErrorKind = "UNRECOGNIZED"

	// RenderError
	KindMissingField ErrorKind = "MISSING_FIELD"
	KindInvalidField ErrorKind = "INVALID_FIELD"

	// SourceError
	KindSourceStatus    ErrorKind = "STATUS"
	KindSourceTransport ErrorKind = "TRANSPORT"
	KindSourceEmpty     ErrorKind = "EMPTY"
	KindSourceDecode    ErrorKind = "DECODE"

	// GatewayError
	KindGatewayTransport ErrorKind = "TRANSPORT"
	KindGatewayStatus    ErrorKind = "STATUS"
)

// ClassificationError means no variant rule matched the record.
type ClassificationError struct {
	Kind   ErrorKind
	Fields []string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("%s: record matches no notification variant (fields: %s)", e.Kind, strings.Join(e.Fields, ","))
}

// RenderError means a required field was absent or could not be parsed.
type RenderError struct {
	Kind    ErrorKind
	Variant Variant
	Field   string
	err     error
}

func (e *RenderError) Error() string {
	msg := fmt.Sprintf("%s: %s field %s", e.Kind, e.Variant, e.Field)
	if e.err != nil {
		return msg + ": " + e.err.Error()
	}
	return msg
}

func (e *RenderError) Unwrap() error {
	return e.err
}

// SourceError is a fetch-phase failure for a whole batch.
type SourceError struct {
	Kind     ErrorKind
	Category Category
	Status   int
	err      error
}

func NewSourceError(kind ErrorKind, category Category, status int, err error) *SourceError {
	return &SourceError{Kind: kind, Category: category, Status: status, err: err}
}

func (e *SourceError) Error() string {
	msg := fmt.Sprintf("source %s: %s", e.Category, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.err != nil {
		return msg + ": " + e.err.Error()
	}
	return msg
}

func (e *SourceError) Unwrap() error {
	return e.err
}

// GatewayError is a per-message send failure.
type GatewayError struct {
	Kind   ErrorKind
	Status int
	Body   string
	err    error
}

func NewGatewayError(kind ErrorKind, status int, body string, err error) *GatewayError {
	return &GatewayError{Kind: kind, Status: status, Body: body, err: err}
}

func (e *GatewayError) Error() string {
	msg := "gateway " + string(e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.err != nil {
		msg += ": " + e.err.Error()
	}
	return msg
}

func (e *GatewayError) Unwrap() error {
	return e.err
}

func IsSourceKind(err error, kind ErrorKind) bool {
	var e *SourceError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func IsGatewayKind(err error, kind ErrorKind) bool {
	var e *GatewayError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func IsRenderKind(err error, kind ErrorKind) bool {
	var e *RenderError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
