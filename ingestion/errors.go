package ingestion

import "errors"

var (
	// ErrDocumentStoreRequired is returned when a document store is not provided.
	ErrDocumentStoreRequired = errors.New("document store required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrInvalidMaxAttempts is returned when retry attempts is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")

	// ErrInvalidDimensions is returned when the expected vector length is not positive.
	ErrInvalidDimensions = errors.New("dimensions must be greater than 0")

	// ErrUnknownFailurePolicy is returned when a failure policy name is not recognized.
	ErrUnknownFailurePolicy = errors.New("unknown failure policy")
)
