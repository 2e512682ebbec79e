package digest

import "errors"

var (
	// ErrUnreadableFile wraps open and read failures on a target file.
	ErrUnreadableFile = errors.New("unreadable file")

	// ErrUnsupportedAlgorithm is returned for algorithm names the engine
	// cannot construct a hash state for.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
)
