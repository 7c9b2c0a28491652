package plagiarism

import "errors"

var (
	// ErrInvalidArgument is returned for non-positive k, t < k, non-positive
	// window sizes and hash sizes outside (0, MaxHashSize].
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMalformedFingerprint is returned when a fingerprint's values and
	// positions differ in length or positions repeat.
	ErrMalformedFingerprint = errors.New("malformed fingerprint")

	// ErrEmptyWindow is returned when a minimum is requested over no values.
	ErrEmptyWindow = errors.New("empty window")
)
