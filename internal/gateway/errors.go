package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed call so callers can react without inspecting
// status codes.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindNotFound     Kind = "not_found"
	KindTransport    Kind = "transport"
	KindServer       Kind = "server"
)

// Error is returned for every failed request. Status is 0 when the server
// was never reached. Payload holds the decoded error body, if any.
type Error struct {
	Kind    Kind
	Status  int
	Payload map[string]any
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a gateway *Error of kind k.
func IsKind(err error, k Kind) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == k
}

// KindForStatus maps a non-2xx status to a Kind.
func KindForStatus(status int) Kind {
	switch {
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindUnauthorized
	case status >= 500:
		return KindServer
	case status >= 400:
		return KindValidation
	}
	return KindTransport
}

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: fmt.Sprintf("network error: %v", err), Err: err}
}

// statusError builds the error for a non-2xx response. The message prefers
// the body's "error" field, then "message", then a generic one.
func statusError(status int, payload map[string]any) *Error {
	msg := fmt.Sprintf("Error %d", status)
	for _, key := range []string{"error", "message"} {
		if s, ok := payload[key].(string); ok && s != "" {
			msg = s
			break
		}
	}
	kind := KindForStatus(status)
	if payload == nil {
		// A body the API did not write (proxy page, router 404) says nothing
		// about the user or the request.
		kind = KindTransport
	}
	return &Error{Kind: kind, Status: status, Payload: payload, Message: msg}
}
