package domain

import "errors"

// Error categories. Concrete errors in other packages wrap one of these so
// callers can branch with errors.Is without knowing every specific value.
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("already exists")
	ErrUnauthorized = errors.New("unauthorized")
)
