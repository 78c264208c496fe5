package storage

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/Annany2002/opentextbook-backend/internal/domain"
)

// Specific errors for repository operations
var (
	ErrUserNotFound        = fmt.Errorf("user %w", domain.ErrNotFound)
	ErrGenreNotFound       = fmt.Errorf("genre %w", domain.ErrNotFound)
	ErrBookNotFound        = fmt.Errorf("book %w", domain.ErrNotFound)
	ErrPageNotFound        = fmt.Errorf("page %w", domain.ErrNotFound)
	ErrUsernameExists      = fmt.Errorf("username %w", domain.ErrDuplicate)
	ErrEmailExists         = fmt.Errorf("email %w", domain.ErrDuplicate)
	ErrGenreExists         = fmt.Errorf("genre %w", domain.ErrDuplicate)
	ErrPageNumberExists    = fmt.Errorf("page number %w", domain.ErrDuplicate)
	ErrConstraintViolation = errors.New("constraint violation")
)

func constraintError(err error) (sqlite3.Error, bool) {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return sqliteErr, true
	}
	return sqlite3.Error{}, false
}

func isUniqueViolation(err error) bool {
	sqliteErr, ok := constraintError(err)
	return ok && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func isForeignKeyViolation(err error) bool {
	sqliteErr, ok := constraintError(err)
	return ok && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}
