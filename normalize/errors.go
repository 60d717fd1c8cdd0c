package normalize

import "errors"

var (
	// ErrLoggerRequired is returned when a nil logger is supplied.
	ErrLoggerRequired = errors.New("logger is required")
)
