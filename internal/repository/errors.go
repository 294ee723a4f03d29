package repository

import (
	"errors"
	"fmt"
)

// ErrDuplicateIdentifier matches any DuplicateIdentifierError via errors.Is.
var ErrDuplicateIdentifier = errors.New("duplicate identifier")

// DuplicateIdentifierError reports a (id_type, id_value) pair that already
// belongs to a patient. Err is the driver's constraint violation.
type DuplicateIdentifierError struct {
	IDType  string
	IDValue string
	Err     error
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("duplicate identifier %s=%q: %v", e.IDType, e.IDValue, e.Err)
}

func (e *DuplicateIdentifierError) Unwrap() error {
	return e.Err
}

func (e *DuplicateIdentifierError) Is(target error) bool {
	return target == ErrDuplicateIdentifier
}

// ErrStoreUnavailable matches connection and transaction failures.
var ErrStoreUnavailable = errors.New("store unavailable")

// StoreError wraps a failure to reach the store or to begin/commit a transaction.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}
