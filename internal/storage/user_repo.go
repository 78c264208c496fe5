// internal/storage/user_repo.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Annany2002/opentextbook-backend/internal/domain"
)

const userColumns = `user_id, username, email, first_name, last_name, birthday, password_hash, created_at`

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.UserId, &user.Username, &user.Email, &user.FirstName, &user.LastName,
		&user.Birthday, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new user. The email is stored lowercase.
func CreateUser(ctx context.Context, db DBTX, user *domain.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	sqlStatement := `INSERT INTO users (user_id, username, email, first_name, last_name, birthday, password_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, sqlStatement, user.UserId, user.Username, user.Email,
		user.FirstName, user.LastName, user.Birthday, user.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "users.email") {
				return ErrEmailExists
			}
			if strings.Contains(err.Error(), "users.username") {
				return ErrUsernameExists
			}
		}
		customLog.Warnf("Storage: Failed to insert user %s: %v", user.Username, err)
		return fmt.Errorf("database error during user creation: %w", err)
	}

	return nil
}

func findUser(ctx context.Context, db DBTX, where string, args ...any) (*domain.User, error) {
	sqlStatement := `SELECT ` + userColumns + ` FROM users WHERE ` + where + ` LIMIT 1`
	user, err := scanUser(db.QueryRowContext(ctx, sqlStatement, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		customLog.Warnf("Storage: Failed to find user (%s): %v", where, err)
		return nil, fmt.Errorf("database error finding user: %w", err)
	}
	return user, nil
}

// FindUserByID retrieves a user by id.
func FindUserByID(ctx context.Context, db DBTX, userID string) (*domain.User, error) {
	return findUser(ctx, db, `user_id = ?`, userID)
}

// FindUserByUsername retrieves a user by exact username.
func FindUserByUsername(ctx context.Context, db DBTX, username string) (*domain.User, error) {
	return findUser(ctx, db, `username = ?`, username)
}

// FindUserByEmail retrieves a user by email, ignoring letter case.
func FindUserByEmail(ctx context.Context, db DBTX, email string) (*domain.User, error) {
	return findUser(ctx, db, `email = ?`, strings.ToLower(strings.TrimSpace(email)))
}

// FindUserByLogin resolves a login identifier: a username, or an email address.
// A username match wins over an email match.
func FindUserByLogin(ctx context.Context, db DBTX, identifier string) (*domain.User, error) {
	return findUser(ctx, db, `username = ? OR email = ? ORDER BY (username = ?) DESC`,
		identifier, strings.ToLower(strings.TrimSpace(identifier)), identifier)
}

// UsernameExists reports whether the username is taken.
func UsernameExists(ctx context.Context, db DBTX, username string) (bool, error) {
	return exists(ctx, db, `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`, username)
}

// EmailExists reports whether the email is taken, ignoring letter case.
func EmailExists(ctx context.Context, db DBTX, email string) (bool, error) {
	return exists(ctx, db, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, strings.ToLower(strings.TrimSpace(email)))
}

// UpdateUserProfile overwrites names, birthday and password hash.
func UpdateUserProfile(ctx context.Context, db DBTX, userID, firstName, lastName string, birthday time.Time, passwordHash string) error {
	sqlStatement := `UPDATE users SET first_name = ?, last_name = ?, birthday = ?, password_hash = ? WHERE user_id = ?`
	result, err := db.ExecContext(ctx, sqlStatement, firstName, lastName, birthday, passwordHash, userID)
	if err != nil {
		customLog.Warnf("Storage: Failed to update user %s: %v", userID, err)
		return fmt.Errorf("database error during user update: %w", err)
	}
	return expectAffected(result, ErrUserNotFound)
}

func exists(ctx context.Context, db DBTX, query string, args ...any) (bool, error) {
	var found bool
	if err := db.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		customLog.Warnf("Storage: Existence check failed: %v", err)
		return false, fmt.Errorf("database error during lookup: %w", err)
	}
	return found, nil
}

// expectAffected turns "no rows matched" into notFound.
func expectAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to confirm write: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
