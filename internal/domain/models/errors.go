package models

import "errors"

// Error taxonomy of the analysis core. Request-path errors (ErrNotFound,
// ErrInsufficientData, ErrDataUnavailable) propagate to the caller; stream and
// training failures are contained in their owning component and only logged.
var (
	// ErrNotFound means the ticker does not resolve to any known instrument.
	ErrNotFound = errors.New("instrument not found")

	// ErrInsufficientData means there are too few candles for the requested
	// indicator lengths or the strategy profile minimum.
	ErrInsufficientData = errors.New("insufficient candle data")

	// ErrModelNotReady means no classifier snapshot has been trained yet.
	// The decision pipeline falls back to hold; callers never see this error.
	ErrModelNotReady = errors.New("model not ready")

	// ErrDataUnavailable means the upstream historical source failed to serve
	// the requested range.
	ErrDataUnavailable = errors.New("historical data unavailable")
)
