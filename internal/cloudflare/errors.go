package cloudflare

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies an API failure.
type ErrorKind int

const (
	// KindValidation means the request was rejected locally, before any
	// network call was made.
	KindValidation ErrorKind = iota
	// KindTimeout means the request exceeded its deadline.
	KindTimeout
	// KindNetwork covers connection and transport failures.
	KindNetwork
	// KindBadResponse means Cloudflare returned something that was not a
	// valid v4 envelope.
	KindBadResponse
	// KindRejected means Cloudflare answered with success=false.
	KindRejected
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindBadResponse:
		return "bad-response"
	case KindRejected:
		return "rejected"
	}
	return "unknown"
}

// APIError is the single error type raised by the client. Message is
// safe to show to a user; Errors carries the raw provider error list
// when Kind is KindRejected.
type APIError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Errors     []ResponseError
}

func (e *APIError) Error() string { return e.Message }

func rejectedError(status int, errs []ResponseError) *APIError {
	msgs := make([]string, 0, len(errs))
	for _, re := range errs {
		if re.Message != "" {
			msgs = append(msgs, re.Message)
		}
	}
	text := strings.Join(msgs, "; ")
	if text == "" {
		text = "Unknown API error"
	}
	return &APIError{Kind: KindRejected, Message: text, StatusCode: status, Errors: errs}
}

func validationError(format string, args ...any) *APIError {
	return &APIError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is the provider's 404-equivalent.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsValidation reports whether err was raised before any network call.
func IsValidation(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindValidation
}

// IsTransport reports whether err is a timeout, network, or malformed
// response failure, i.e. something a re-issued command might not hit.
func IsTransport(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Kind {
	case KindTimeout, KindNetwork, KindBadResponse:
		return true
	}
	return false
}
