package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrEventNotFound     = errors.New("event not found")
	ErrMalformedResponse = errors.New("malformed upstream response")
	ErrCapacityExceeded  = errors.New("saved events limit reached")
	ErrAlreadySaved      = errors.New("event already saved")
	ErrSlotNotFound      = errors.New("storage slot not found")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Unwrap lets callers match any validation failure with ErrInvalidArgument.
func (e ValidationError) Unwrap() error {
	return ErrInvalidArgument
}

// UpstreamError means the upstream answered with a non-success status.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (%d): %s", e.StatusCode, e.Body)
}

// TransportError means no HTTP status could be obtained at all.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsUpstreamFailure reports whether err is an UpstreamError or TransportError.
func IsUpstreamFailure(err error) bool {
	var upstream *UpstreamError
	var transport *TransportError
	return errors.As(err, &upstream) || errors.As(err, &transport)
}
