package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so callers can react without string matching
type Kind string

const (
	KindTransport  Kind = "transport_error"
	KindRejection  Kind = "provider_rejection"
	KindTerminal   Kind = "provider_failure"
	KindTimeout    Kind = "timeout"
	KindExtraction Kind = "extraction_error"
	KindMalformed  Kind = "malformed_response"
	KindParse      Kind = "parse_error"
	KindValidation Kind = "validation_error"
)

// Error is the normalized failure surfaced past adapter and engine boundaries.
// Error() returns only Message, which is what the presentation layer displays.
type Error struct {
	Kind     Kind
	Provider string
	Status   int // HTTP status for rejections, 0 otherwise
	Message  string
	Err      error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind
func New(kind Kind, provider, message string, cause error) *Error {
	return &Error{
		Kind:     kind,
		Provider: provider,
		Message:  message,
		Err:      cause,
	}
}

// Transport wraps a network-level failure. The cause is surfaced verbatim.
func Transport(provider string, cause error) *Error {
	return New(KindTransport, provider, cause.Error(), cause)
}

// Rejection builds a non-success HTTP status error. An empty message falls back
// to "<provider> error <status>".
func Rejection(provider string, status int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("%s error %d", provider, status)
	}
	e := New(KindRejection, provider, message, nil)
	e.Status = status
	return e
}

// Terminal reports an explicit failed job state
func Terminal(provider, detail string) *Error {
	if detail == "" {
		detail = fmt.Sprintf("%s generation failed", provider)
	}
	return New(KindTerminal, provider, detail, nil)
}

// Malformed reports a success status whose body could not be decoded
func Malformed(provider string, cause error) *Error {
	return New(KindMalformed, provider, fmt.Sprintf("%s returned an unreadable response", provider), cause)
}

// Extraction reports a successful payload with no recognizable asset
func Extraction(provider string) *Error {
	return New(KindExtraction, provider, fmt.Sprintf("%s returned no asset in a completed result", provider), nil)
}

// Validation reports a request the core refuses before any provider call
func Validation(message string) *Error {
	return New(KindValidation, "", message, nil)
}

// As returns the *Error in err's chain, if any
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

// Message returns the display message for any error. Normalized errors yield
// their Message even when wrapped by fmt.Errorf.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := As(err); ok {
		return appErr.Message
	}
	return err.Error()
}

// HTTPStatus maps a kind to the status the API layer responds with
func HTTPStatus(err error) int {
	appErr, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindParse, KindMalformed, KindExtraction:
		return http.StatusUnprocessableEntity
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
