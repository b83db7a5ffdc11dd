package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Error kinds. Every error returned by a backend or the client facade matches exactly
// one of them with errors.Is.
var (
	// ErrInvalidRequest indicates a malformed or missing URL or an unencodable body.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrTransport indicates a connection, DNS, TLS or timeout failure before a response.
	ErrTransport = errors.New("transport error")
	// ErrHTTPStatus indicates a response with a status outside 200..299.
	ErrHTTPStatus = errors.New("unexpected HTTP status")
	// ErrDecode indicates a body that could not be decoded into the expected shape.
	ErrDecode = errors.New("decode error")
	// ErrStreamFailure indicates a stream that ended in the failed state.
	ErrStreamFailure = errors.New("stream failure")
	// ErrShutdown indicates a call on a backend that has already been shut down.
	// It is always wrapped in a transport error.
	ErrShutdown = errors.New("backend is shut down")
)

// maxErrorBodyLength caps the body excerpt rendered by HTTPStatusError.Error.
const maxErrorBodyLength = 200

// Error is a failure of one call attempt, tagged with its kind.
type Error struct {
	// Kind is one of the Err* sentinels of this package.
	Kind error
	// Op names the operation, e.g. "plain request" or "upload multipart".
	Op string
	// Method and URL identify the call, when known.
	Method string
	URL    string
	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var builder strings.Builder

	builder.WriteString(e.Kind.Error())

	if e.Op != "" {
		builder.WriteString(": ")
		builder.WriteString(e.Op)
	}

	if e.URL != "" {
		builder.WriteString(" ")

		if e.Method != "" {
			builder.WriteString(e.Method)
			builder.WriteString(" ")
		}

		builder.WriteString(e.URL)
	}

	if e.Cause != nil {
		builder.WriteString(": ")
		builder.WriteString(e.Cause.Error())
	}

	return builder.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Cause}
}

// NewInvalidRequestError builds an ErrInvalidRequest error.
func NewInvalidRequestError(op string, req Request, cause error) *Error {
	return &Error{Kind: ErrInvalidRequest, Op: op, Method: string(req.Method), URL: req.URL, Cause: cause}
}

// NewTransportError builds an ErrTransport error.
func NewTransportError(op string, req Request, cause error) *Error {
	return &Error{Kind: ErrTransport, Op: op, Method: string(req.Method), URL: req.URL, Cause: cause}
}

// NewDecodeError builds an ErrDecode error.
func NewDecodeError(op string, cause error) *Error {
	return &Error{Kind: ErrDecode, Op: op, Cause: cause}
}

// NewStreamFailure builds an ErrStreamFailure error.
func NewStreamFailure(op string, cause error) *Error {
	return &Error{Kind: ErrStreamFailure, Op: op, Cause: cause}
}

// HTTPStatusError is returned when a response arrives with a status outside 200..299.
// Body holds the exact bytes received.
type HTTPStatusError struct {
	Code   int
	Header Header
	Body   []byte
}

// NewHTTPStatusError builds an error from a non-successful response.
func NewHTTPStatusError(resp *Response) *HTTPStatusError {
	return &HTTPStatusError{Code: resp.StatusCode, Header: resp.Header, Body: resp.Body}
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("%s: %d", ErrHTTPStatus, e.Code)
	}

	excerpt := strings.ToValidUTF8(string(e.Body), "�")
	if utf8.RuneCountInString(excerpt) > maxErrorBodyLength {
		excerpt = string([]rune(excerpt)[:maxErrorBodyLength]) + "..."
	}

	return fmt.Sprintf("%s: %d: %s", ErrHTTPStatus, e.Code, excerpt)
}

// Unwrap makes the error match ErrHTTPStatus.
func (e *HTTPStatusError) Unwrap() error {
	return ErrHTTPStatus
}

// StatusCode extracts the HTTP status of an HTTPStatusError anywhere in the chain.
func StatusCode(err error) (int, bool) {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code, true
	}

	return 0, false
}

// IsRetryable reports whether the caller may retry the call that produced err.
// Timeouts, transport failures and non-2xx statuses are recoverable; malformed requests,
// decode errors and calls on a shut down backend are not.
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrShutdown), errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrDecode):
		return false
	case errors.Is(err, ErrTransport), errors.Is(err, ErrHTTPStatus), errors.Is(err, ErrStreamFailure):
		return true
	default:
		return false
	}
}
