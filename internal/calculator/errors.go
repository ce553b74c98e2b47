package calculator

import "errors"

var (
	// ErrInvalidSweep is returned when a sweep asks for fewer than one or more
	// than MaxSweepSteps points.
	ErrInvalidSweep = errors.New("sweep steps must be between 1 and 101")
)
