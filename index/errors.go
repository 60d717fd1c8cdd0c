package index

import "errors"

var (
	// ErrStoreRequired is returned when an index store is not provided.
	ErrStoreRequired = errors.New("index store required")

	// ErrIndexNameRequired is returned when the index name is empty.
	ErrIndexNameRequired = errors.New("index name required")

	// ErrIndexAlreadyExists is returned by Store.CreateIndex when the index is present.
	ErrIndexAlreadyExists = errors.New("index already exists")

	// ErrIndexNotFound is returned by stores when the named index does not exist.
	ErrIndexNotFound = errors.New("index not found")

	// ErrUnsupportedQuery is returned when a store cannot run a query shape.
	ErrUnsupportedQuery = errors.New("query not supported by this index store")
)
