package dreams

import (
	"errors"
	"fmt"
)

var (
	ErrDreamNotFound = errors.New("dream not found")
)

// StorageError wraps a failure of the underlying database during a store operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("dream store %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
