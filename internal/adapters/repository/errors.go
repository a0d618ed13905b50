package repository

import (
	"errors"
	"strings"
)

// Sentinel kinds for repository errors.
var (
	ErrNotFound       = errors.New("record not found")
	ErrConflict       = errors.New("record already exists")
	ErrRosterFull     = errors.New("roster is full")
	ErrUnknownDriver  = errors.New("unsupported database driver")
	ErrEmptyCatalog   = errors.New("no pitcher seasons to import")
	ErrInvalidSeasons = errors.New("pitcher season requires idfg, name and season")
)

// isUniqueViolation reports whether err is a unique constraint failure from
// either sqlite or postgres.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "sqlstate 23505")
}
