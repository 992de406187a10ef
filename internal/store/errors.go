package store

import (
	"errors"
	"fmt"
)

// StorageError represents a schema or I/O failure in the persistent store.
//
// A StorageError is fatal to the operation that triggered it but not to the
// store: subsequent operations reinitialize the connection on demand.
type StorageError struct {
	// Op names the failed operation, e.g. "insert billing month".
	Op string

	// Err is the underlying driver or I/O error.
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage: %s", e.Op)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err is (or wraps) a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
