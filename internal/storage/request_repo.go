package storage

import (
	"context"
	"fmt"

	"github.com/Annany2002/opentextbook-backend/internal/domain"
)

// CreateAccessRequest appends a request. Requests are never edited.
func CreateAccessRequest(ctx context.Context, db DBTX, bookID int64, userID, message string) (*domain.AccessRequest, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO access_requests (book_id, user_id, message) VALUES (?, ?, ?)`, bookID, userID, message)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrBookNotFound
		}
		customLog.Warnf("Storage: Failed to insert access request for book %d: %v", bookID, err)
		return nil, fmt.Errorf("database error creating access request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read access request id: %w", err)
	}

	var req domain.AccessRequest
	err = db.QueryRowContext(ctx,
		`SELECT request_id, book_id, user_id, message, created_at FROM access_requests WHERE request_id = ?`, id).
		Scan(&req.ID, &req.BookID, &req.UserID, &req.Message, &req.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("database error reading access request: %w", err)
	}
	return &req, nil
}

// ListAccessRequestsForAuthor returns requests made on the author's books, newest first.
func ListAccessRequestsForAuthor(ctx context.Context, db DBTX, authorID string) ([]domain.AccessRequestSummary, error) {
	sqlStatement := `
	SELECT r.request_id, r.book_id, r.user_id, r.message, r.created_at, b.title, u.username
	FROM access_requests r
	JOIN books b ON b.book_id = r.book_id
	JOIN users u ON u.user_id = r.user_id
	WHERE b.author_id = ?
	ORDER BY r.created_at DESC, r.request_id DESC`

	rows, err := db.QueryContext(ctx, sqlStatement, authorID)
	if err != nil {
		customLog.Warnf("Storage: Error listing access requests for %s: %v", authorID, err)
		return nil, fmt.Errorf("database error listing access requests: %w", err)
	}
	defer rows.Close()

	requests := make([]domain.AccessRequestSummary, 0)
	for rows.Next() {
		var s domain.AccessRequestSummary
		if err := rows.Scan(&s.ID, &s.BookID, &s.UserID, &s.Message, &s.CreatedAt, &s.BookTitle, &s.Requester); err != nil {
			return nil, fmt.Errorf("failed processing access request list: %w", err)
		}
		requests = append(requests, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading access request list: %w", err)
	}
	return requests, nil
}

// DeleteAccessRequestsByBook removes every request on a book.
func DeleteAccessRequestsByBook(ctx context.Context, db DBTX, bookID int64) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM access_requests WHERE book_id = ?`, bookID)
	if err != nil {
		customLog.Warnf("Storage: Error deleting access requests of book %d: %v", bookID, err)
		return 0, fmt.Errorf("database error deleting access requests: %w", err)
	}
	return result.RowsAffected()
}
