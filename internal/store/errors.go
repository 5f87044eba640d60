package store

import (
	"strings"

	domainerrors "github.com/itsmingjie/sveltesociety.dev/internal/errors"
)

// Sentinel errors returned by store implementations. They are the domain
// sentinels, so errors.Is works across layers without translation.
var (
	ErrNotFound      = domainerrors.ErrNotFound
	ErrAlreadyExists = domainerrors.ErrAlreadyExists
	ErrConflict      = domainerrors.ErrConflict
)

// IsUniqueViolation reports whether err is a SQLite UNIQUE or PRIMARY KEY
// constraint failure.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports whether err is a SQLite FOREIGN KEY
// constraint failure.
func IsForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
