package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Annany2002/opentextbook-backend/internal/domain"
)

// CreateGenre inserts a genre label. Labels compare case-sensitively.
func CreateGenre(ctx context.Context, db DBTX, label string) (*domain.Genre, error) {
	result, err := db.ExecContext(ctx, `INSERT INTO genres (genre) VALUES (?)`, label)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrGenreExists
		}
		customLog.Warnf("Storage: Failed to insert genre '%s': %v", label, err)
		return nil, fmt.Errorf("database error creating genre: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read genre id: %w", err)
	}
	return &domain.Genre{ID: id, Genre: label}, nil
}

func findGenre(ctx context.Context, db DBTX, where string, arg any) (*domain.Genre, error) {
	var g domain.Genre
	err := db.QueryRowContext(ctx, `SELECT genre_id, genre FROM genres WHERE `+where+` LIMIT 1`, arg).Scan(&g.ID, &g.Genre)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGenreNotFound
		}
		customLog.Warnf("Storage: Failed to find genre (%s = %v): %v", where, arg, err)
		return nil, fmt.Errorf("database error finding genre: %w", err)
	}
	return &g, nil
}

// FindGenreByLabel resolves a label to its genre row.
func FindGenreByLabel(ctx context.Context, db DBTX, label string) (*domain.Genre, error) {
	return findGenre(ctx, db, `genre = ?`, label)
}

// FindGenreByID retrieves a genre by id.
func FindGenreByID(ctx context.Context, db DBTX, id int64) (*domain.Genre, error) {
	return findGenre(ctx, db, `genre_id = ?`, id)
}

// GenreExists reports whether the exact label is already present.
func GenreExists(ctx context.Context, db DBTX, label string) (bool, error) {
	return exists(ctx, db, `SELECT EXISTS(SELECT 1 FROM genres WHERE genre = ?)`, label)
}

// ListGenres returns every genre ordered by label.
func ListGenres(ctx context.Context, db DBTX) ([]domain.Genre, error) {
	rows, err := db.QueryContext(ctx, `SELECT genre_id, genre FROM genres ORDER BY genre`)
	if err != nil {
		customLog.Warnf("Storage: Error listing genres: %v", err)
		return nil, fmt.Errorf("database error listing genres: %w", err)
	}
	defer rows.Close()

	genres := make([]domain.Genre, 0)
	for rows.Next() {
		var g domain.Genre
		if err := rows.Scan(&g.ID, &g.Genre); err != nil {
			return nil, fmt.Errorf("failed processing genre list: %w", err)
		}
		genres = append(genres, g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading genre list: %w", err)
	}
	return genres, nil
}
