package api

import (
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/rostr/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrRateLimited = errors.New("too many requests")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// NewKind returns an error of kind whose message is shown to clients.
func NewKind(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// WrapKind marks err as kind and prefixes it with op.
func WrapKind(kind error, op string, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, msg: fmt.Sprintf("%s: %v", op, err)}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps an error kind to an HTTP status and a short code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, ErrRateLimited), errors.Is(err, service.ErrQueueFull):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
