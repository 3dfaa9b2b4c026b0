package models

import "errors"

var (
	// ErrInsufficientHistory marks a ticker with fewer bars than the
	// largest indicator lookback. Recoverable: the ticker is skipped.
	ErrInsufficientHistory = errors.New("insufficient history for indicator lookback")

	// ErrLabelUndefined marks a bar whose next-day close is unknown.
	// Recoverable: the row is dropped, never labeled with a default.
	ErrLabelUndefined = errors.New("label undefined for final bar")

	// ErrLeakage is raised when a temporal invariant is violated: test
	// information reaching the training side. Fatal, aborts the run.
	ErrLeakage = errors.New("temporal leakage detected")

	// ErrNoPositives is raised when the training subset contains no
	// positive labels, leaving the class weight undefined. Fatal.
	ErrNoPositives = errors.New("no positive examples in training data")
)
