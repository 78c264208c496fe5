package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Annany2002/opentextbook-backend/internal/core"
	"github.com/Annany2002/opentextbook-backend/internal/domain"
)

const bookColumns = `book_id, title, description, genre_id, author_id, created_at`

func scanBook(row rowScanner) (*domain.Book, error) {
	var b domain.Book
	if err := row.Scan(&b.ID, &b.Title, &b.Description, &b.GenreID, &b.AuthorID, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBook inserts a book and returns the stored row.
func CreateBook(ctx context.Context, db DBTX, title, description string, genreID int64, authorID string) (*domain.Book, error) {
	sqlStatement := `INSERT INTO books (title, description, genre_id, author_id) VALUES (?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, sqlStatement, title, description, genreID, authorID)
	if err != nil {
		if _, ok := constraintError(err); ok {
			customLog.Warnf("Storage: Constraint violation creating book '%s': %v", title, err)
			return nil, fmt.Errorf("%w: %v", ErrConstraintViolation, err)
		}
		customLog.Warnf("Storage: Failed to insert book '%s': %v", title, err)
		return nil, fmt.Errorf("database error creating book: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read book id: %w", err)
	}
	return FindBookByID(ctx, db, id)
}

// FindBookByID retrieves a book by id.
func FindBookByID(ctx context.Context, db DBTX, id int64) (*domain.Book, error) {
	book, err := scanBook(db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE book_id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		customLog.Warnf("Storage: Failed to find book %d: %v", id, err)
		return nil, fmt.Errorf("database error finding book: %w", err)
	}
	return book, nil
}

// ListBooks returns books paginated and ordered per opts. A nil opts returns
// every book by id.
func ListBooks(ctx context.Context, db DBTX, opts *core.ListQueryOptions) ([]domain.Book, error) {
	if opts == nil {
		opts = &core.ListQueryOptions{SortOrder: core.DefaultOrder}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = -1 // sqlite: no upper bound
	}
	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = "book_id"
	}
	order := "ASC"
	if opts.SortOrder == "desc" {
		order = "DESC"
	}

	// nolint:gosec // sortBy comes from core.BookSortColumns, order is one of two literals
	query := fmt.Sprintf(`SELECT %s FROM books ORDER BY %s %s, book_id ASC LIMIT ? OFFSET ?`, bookColumns, sortBy, order)
	return queryBooks(ctx, db, query, limit, opts.Offset)
}

// ListBooksByAuthor returns the books a user wrote, oldest first.
func ListBooksByAuthor(ctx context.Context, db DBTX, authorID string) ([]domain.Book, error) {
	return queryBooks(ctx, db, `SELECT `+bookColumns+` FROM books WHERE author_id = ? ORDER BY book_id`, authorID)
}

func queryBooks(ctx context.Context, db DBTX, query string, args ...any) ([]domain.Book, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		customLog.Warnf("Storage: Error listing books: %v", err)
		return nil, fmt.Errorf("database error listing books: %w", err)
	}
	defer rows.Close()

	books := make([]domain.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed processing book list: %w", err)
		}
		books = append(books, *b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading book list: %w", err)
	}
	return books, nil
}

// UpdateBook overwrites title, genre and description. Id and author never change.
func UpdateBook(ctx context.Context, db DBTX, id int64, title, description string, genreID int64) error {
	sqlStatement := `UPDATE books SET title = ?, description = ?, genre_id = ? WHERE book_id = ?`
	result, err := db.ExecContext(ctx, sqlStatement, title, description, genreID, id)
	if err != nil {
		if _, ok := constraintError(err); ok {
			return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
		}
		customLog.Warnf("Storage: Failed to update book %d: %v", id, err)
		return fmt.Errorf("database error updating book: %w", err)
	}
	return expectAffected(result, ErrBookNotFound)
}

// DeleteBook removes the book row only. Children must be gone first.
func DeleteBook(ctx context.Context, db DBTX, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM books WHERE book_id = ?`, id)
	if err != nil {
		customLog.Warnf("Storage: Error deleting book %d: %v", id, err)
		return fmt.Errorf("database error deleting book: %w", err)
	}
	return expectAffected(result, ErrBookNotFound)
}
