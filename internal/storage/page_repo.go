package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Annany2002/opentextbook-backend/internal/domain"
)

const pageColumns = `page_id, book_id, chapter_name, page_number, body`

func scanPage(row rowScanner) (*domain.Page, error) {
	var p domain.Page
	if err := row.Scan(&p.ID, &p.BookID, &p.ChapterName, &p.PageNumber, &p.Body); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePage inserts a page. A taken (book, page number) pair yields
// ErrPageNumberExists; an unknown book yields ErrBookNotFound.
func CreatePage(ctx context.Context, db DBTX, bookID int64, chapterName string, pageNumber int, body string) (*domain.Page, error) {
	sqlStatement := `INSERT INTO pages (book_id, chapter_name, page_number, body) VALUES (?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, sqlStatement, bookID, chapterName, pageNumber, body)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, ErrPageNumberExists
		case isForeignKeyViolation(err):
			return nil, ErrBookNotFound
		}
		if _, ok := constraintError(err); ok {
			return nil, fmt.Errorf("%w: %v", ErrConstraintViolation, err)
		}
		customLog.Warnf("Storage: Failed to insert page %d of book %d: %v", pageNumber, bookID, err)
		return nil, fmt.Errorf("database error creating page: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read page id: %w", err)
	}
	return &domain.Page{ID: id, BookID: bookID, ChapterName: chapterName, PageNumber: pageNumber, Body: body}, nil
}

// FindPageByID retrieves a page by id.
func FindPageByID(ctx context.Context, db DBTX, id int64) (*domain.Page, error) {
	page, err := scanPage(db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE page_id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPageNotFound
		}
		customLog.Warnf("Storage: Failed to find page %d: %v", id, err)
		return nil, fmt.Errorf("database error finding page: %w", err)
	}
	return page, nil
}

// ListPagesByBook returns a book's pages in ascending page number order.
func ListPagesByBook(ctx context.Context, db DBTX, bookID int64) ([]domain.Page, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE book_id = ? ORDER BY page_number ASC`, bookID)
	if err != nil {
		customLog.Warnf("Storage: Error listing pages of book %d: %v", bookID, err)
		return nil, fmt.Errorf("database error listing pages: %w", err)
	}
	defer rows.Close()

	pages := make([]domain.Page, 0)
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed processing page list: %w", err)
		}
		pages = append(pages, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading page list: %w", err)
	}
	return pages, nil
}

// PageNumberTaken reports whether another page of the book already uses the
// number. excludePageID (0 for none) is ignored in the check.
func PageNumberTaken(ctx context.Context, db DBTX, bookID int64, pageNumber int, excludePageID int64) (bool, error) {
	return exists(ctx, db,
		`SELECT EXISTS(SELECT 1 FROM pages WHERE book_id = ? AND page_number = ? AND page_id != ?)`,
		bookID, pageNumber, excludePageID)
}

// UpdatePage overwrites chapter name, page number and body.
func UpdatePage(ctx context.Context, db DBTX, id int64, chapterName string, pageNumber int, body string) error {
	sqlStatement := `UPDATE pages SET chapter_name = ?, page_number = ?, body = ? WHERE page_id = ?`
	result, err := db.ExecContext(ctx, sqlStatement, chapterName, pageNumber, body, id)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPageNumberExists
		}
		if _, ok := constraintError(err); ok {
			return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
		}
		customLog.Warnf("Storage: Failed to update page %d: %v", id, err)
		return fmt.Errorf("database error updating page: %w", err)
	}
	return expectAffected(result, ErrPageNotFound)
}

// DeletePage removes one page.
func DeletePage(ctx context.Context, db DBTX, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM pages WHERE page_id = ?`, id)
	if err != nil {
		customLog.Warnf("Storage: Error deleting page %d: %v", id, err)
		return fmt.Errorf("database error deleting page: %w", err)
	}
	return expectAffected(result, ErrPageNotFound)
}

// DeletePagesByBook removes every page of a book and returns how many went.
func DeletePagesByBook(ctx context.Context, db DBTX, bookID int64) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM pages WHERE book_id = ?`, bookID)
	if err != nil {
		customLog.Warnf("Storage: Error deleting pages of book %d: %v", bookID, err)
		return 0, fmt.Errorf("database error deleting pages: %w", err)
	}
	return result.RowsAffected()
}
