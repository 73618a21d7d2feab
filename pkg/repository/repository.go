// Package repository holds the storage contracts shared by the ledger
// repositories and the errors they report.
package repository

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when a record with the same key exists.
	ErrAlreadyExists = errors.New("record already exists")
)
