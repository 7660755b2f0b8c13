// Package spiral detects spiral arms in a polar prime plot and extrapolates them.
package spiral

import "errors"

var (
	// ErrInvalidAngleDelta reports an angle delta that is not a positive finite number.
	ErrInvalidAngleDelta = errors.New("angle delta must be a positive finite number")
	// ErrPredictionCountOutOfRange reports a prediction count outside the supported range.
	ErrPredictionCountOutOfRange = errors.New("prediction count out of range")
	// ErrInvalidExtensionLength reports a requested extension shorter than the known primes.
	ErrInvalidExtensionLength = errors.New("extension length is shorter than the known primes")
	// ErrUnknownPolicy reports an unsupported arm-grouping policy.
	ErrUnknownPolicy = errors.New("unknown grouping policy")
	// ErrUnknownAngleMode reports an unsupported angle mode.
	ErrUnknownAngleMode = errors.New("unknown angle mode")
)
