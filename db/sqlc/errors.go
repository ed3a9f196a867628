package db

import (
	"errors"

	"github.com/lib/pq"
)

const (
	DuplicateEntry      pq.ErrorCode = "23505"
	EntryTooLong        pq.ErrorCode = "22001"
	SerializationFailed pq.ErrorCode = "40001"
)

// IsErrorCode reports whether err is a postgres error with the given code.
func IsErrorCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == code
	}
	return false
}

// ConstraintName returns the violated constraint, if err carries one.
func ConstraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}
