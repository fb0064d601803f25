// Package repository holds the hand-written SQL data access layer.
package repository

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when an insert violates a uniqueness
	// constraint, e.g. a second expiry record for the same version.
	ErrAlreadyExists = errors.New("record already exists")
)
