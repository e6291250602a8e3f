package models

import "errors"

// Sentinel errors for the aggregation pipeline. Callers match these with
// errors.Is and map them onto HTTP status codes at the handler layer.
var (
	// ErrInsufficientData means a recommendation was requested before any
	// source slot held data.
	ErrInsufficientData = errors.New("insufficient data: no source analyses available yet")

	// ErrUpstream wraps any transport, status or decode failure from an
	// external data source or the recommendation engine.
	ErrUpstream = errors.New("upstream request failed")

	// ErrInvalidSourceKey means a source key outside the closed set was
	// used. Reaching this from inside the fan-out path is a programming
	// error, not a user error.
	ErrInvalidSourceKey = errors.New("invalid source key")
)
