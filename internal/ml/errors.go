// Package ml provides the client for the place-probability model service.
package ml

import "errors"

var (
	// ErrServiceUnavailable indicates the model service is unreachable
	ErrServiceUnavailable = errors.New("ml service unavailable")

	// ErrInvalidResponse indicates an unparseable response from the model service
	ErrInvalidResponse = errors.New("invalid response from ml service")

	// ErrScoreOutOfRange indicates a returned probability outside [0,1]
	ErrScoreOutOfRange = errors.New("ml score out of range")
)
