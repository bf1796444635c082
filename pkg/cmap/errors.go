package cmap

import "errors"

var (
	// ErrInvalidBucketCount is the panic value for a bucket count below one.
	ErrInvalidBucketCount = errors.New("cmap: bucket count must be at least 1")

	// ErrDestroyed is the panic value for any use of a table after Destroy.
	ErrDestroyed = errors.New("cmap: table has been destroyed")

	// ErrUnknownHasher is returned by HasherByName for an unsupported name.
	ErrUnknownHasher = errors.New("cmap: unknown hasher")
)
