// internal/domain/models.go
package domain

import "time"

// User defines the structure for user data in the DB
type User struct {
	UserId       string    `json:"user_id"`
	Username     string    `json:"userName"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Birthday     time.Time `json:"birthday"`
	PasswordHash string    `json:"-"` // never leaves the server
	CreatedAt    time.Time `json:"created_at"`
}

// Genre is a user-extensible category label.
type Genre struct {
	ID    int64  `json:"id"`
	Genre string `json:"genre"`
}

// Book is authored by exactly one user and filed under exactly one genre.
type Book struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	GenreID     int64     `json:"genreID"`
	AuthorID    string    `json:"authorID"`
	CreatedAt   time.Time `json:"created_at"`
}

// Page belongs to one book; PageNumber is unique within that book.
type Page struct {
	ID          int64  `json:"id"`
	BookID      int64  `json:"bookID"`
	ChapterName string `json:"chapterName"`
	PageNumber  int    `json:"pageNumber"`
	Body        string `json:"body"`
}

// AccessRequest is a message from a reader to a book's author.
type AccessRequest struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"bookID"`
	UserID    string    `json:"userID"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// AccessRequestSummary is an access request as shown to the book's author.
type AccessRequestSummary struct {
	AccessRequest
	BookTitle string `json:"bookTitle"`
	Requester string `json:"requester"`
}
