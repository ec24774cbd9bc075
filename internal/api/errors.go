package api

import (
	"errors"
	"fmt"

	"github.com/j-veylop/clickdash/internal/alias"
)

var (
	// ErrNotFound is returned when the backend has no analytics for the alias.
	ErrNotFound = errors.New("alias not found")
	// ErrAliasTaken is returned by Shorten when the custom alias is in use.
	ErrAliasTaken = errors.New("alias already exists")
	// ErrInvalidAlias is returned by Shorten when the backend rejects the alias.
	ErrInvalidAlias = errors.New("invalid alias")
	// ErrInvalidURL is returned by Shorten when the backend rejects the URL.
	ErrInvalidURL = errors.New("invalid url")
)

// Kind classifies a failure for presentation.
type Kind int

const (
	KindNone Kind = iota
	KindEmptyInput
	KindNotFound
	KindServer
	KindMalformedResponse
	KindTransport
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindEmptyInput:
		return "empty_input"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server_error"
	case KindMalformedResponse:
		return "malformed_response"
	case KindTransport:
		return "transport_error"
	default:
		return "unknown"
	}
}

// ServerError is a non-success status other than not-found.
type ServerError struct {
	Message string
	Status  int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.Status, e.Message)
}

// MalformedResponseError is a success status whose body could not be decoded.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// TransportError is a request that never produced a response.
type TransportError struct {
	Err error
	Op  string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// KindOf maps any error returned by this package or by alias normalization to
// its Kind.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}

	var (
		serverErr    *ServerError
		malformedErr *MalformedResponseError
		transportErr *TransportError
	)

	switch {
	case errors.Is(err, alias.ErrEmptyInput):
		return KindEmptyInput
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.As(err, &serverErr):
		return KindServer
	case errors.As(err, &malformedErr):
		return KindMalformedResponse
	case errors.As(err, &transportErr):
		return KindTransport
	default:
		return KindUnknown
	}
}
