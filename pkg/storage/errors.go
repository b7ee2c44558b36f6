package storage

import "errors"

// Storage errors returned by System implementations.
var (
	ErrNotFound         = errors.New("storage: key not found")
	ErrExists           = errors.New("storage: key already exists")
	ErrPermissionDenied = errors.New("storage: permission denied")

	// ErrInvalidKey covers empty keys and keys that escape the base path.
	ErrInvalidKey = errors.New("storage: invalid key")
)
