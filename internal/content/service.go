// Package content holds the business rules for genres, books, pages and
// access requests on top of the storage package.
package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Annany2002/opentextbook-backend/internal/core"
	"github.com/Annany2002/opentextbook-backend/internal/domain"
	"github.com/Annany2002/opentextbook-backend/internal/logger"
	"github.com/Annany2002/opentextbook-backend/internal/storage"
)

var customLog = logger.NewLogger()

// DescriptionMaxLength is the longest accepted book description, in characters.
const DescriptionMaxLength = 200

// Service is the content repository used by the HTTP handlers.
type Service struct {
	db *sql.DB

	// pageNumberTaken backs the page number rule.
	pageNumberTaken func(ctx context.Context, db storage.DBTX, bookID int64, pageNumber int, excludePageID int64) (bool, error)
}

// NewService returns a Service backed by db.
func NewService(db *sql.DB) *Service {
	return &Service{db: db, pageNumberTaken: storage.PageNumberTaken}
}

// BookInput is a submitted book form.
type BookInput struct {
	Title       string
	Genre       string
	Description string
}

// PageInput is a submitted page form. PageNumber is kept as submitted and
// parsed after validation.
type PageInput struct {
	ChapterName string
	PageNumber  string
	Body        string
}

// BookDetail is everything the book view shows.
type BookDetail struct {
	Book   *domain.Book  `json:"book"`
	Genre  *domain.Genre `json:"genre"`
	Author *domain.User  `json:"author"`
	Pages  []domain.Page `json:"pages"`
}

// PageDetail is everything the page view shows.
type PageDetail struct {
	Page   *domain.Page `json:"page"`
	Book   *domain.Book `json:"book"`
	Author *domain.User `json:"author"`
}

// --- Genres ---

func (s *Service) genreRules() core.Rules {
	return core.Rules{
		core.Check("genre", "Genre is required", core.Required()),
		core.Check("genre", "Genre already exist, add a new one or just cancel", core.Custom(
			func(ctx context.Context, value string, _ core.Form) (bool, error) {
				taken, err := storage.GenreExists(ctx, s.db, value)
				return !taken, err
			})).WithCause(storage.ErrGenreExists),
	}
}

// CreateGenre adds a genre label. Labels are unique and compared case-sensitively.
func (s *Service) CreateGenre(ctx context.Context, label string) (*domain.Genre, error) {
	errs, err := s.genreRules().Validate(ctx, core.Form{"genre": label})
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs
	}
	genre, err := storage.CreateGenre(ctx, s.db, label)
	if errors.Is(err, storage.ErrGenreExists) {
		return nil, core.Conflict("genre", "Genre already exist, add a new one or just cancel", err)
	}
	return genre, err
}

// ListGenres returns every genre ordered by label.
func (s *Service) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	return storage.ListGenres(ctx, s.db)
}

// --- Books ---

func (s *Service) bookRules(titleMessage string) core.Rules {
	return core.Rules{
		core.Check("title", titleMessage, core.Required()),
		core.Check("genre", "Please choose or add a genre for your book", core.Required()),
		core.Check("genre", "Genre does not exist, please add it first", core.Custom(
			func(ctx context.Context, value string, _ core.Form) (bool, error) {
				if value == "" {
					return true, nil
				}
				return storage.GenreExists(ctx, s.db, value)
			})),
		core.Check("description", "Please add a brief description of your book", core.Required()),
		core.Check("description", "Please limit your description to 200 characters", core.MaxLength(DescriptionMaxLength)),
	}
}

func (in BookInput) form() core.Form {
	return core.Form{"title": in.Title, "genre": in.Genre, "description": in.Description}
}

// resolveGenre runs after validation, so a miss here means the genre vanished in between.
func (s *Service) resolveGenre(ctx context.Context, db storage.DBTX, label string) (*domain.Genre, error) {
	genre, err := storage.FindGenreByLabel(ctx, db, label)
	if errors.Is(err, storage.ErrGenreNotFound) {
		return nil, core.Invalid("genre", "Genre does not exist, please add it first")
	}
	return genre, err
}

// CreateBook validates the input and stores a book written by authorID.
func (s *Service) CreateBook(ctx context.Context, authorID string, in BookInput) (*domain.Book, error) {
	errs, err := s.bookRules("Please add a title for your book").Validate(ctx, in.form())
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs
	}

	genre, err := s.resolveGenre(ctx, s.db, in.Genre)
	if err != nil {
		return nil, err
	}
	book, err := storage.CreateBook(ctx, s.db, in.Title, in.Description, genre.ID, authorID)
	if err != nil {
		return nil, err
	}
	customLog.Infof("Content: Book %d created by %s", book.ID, authorID)
	return book, nil
}

// UpdateBook overwrites a book's title, genre and description.
func (s *Service) UpdateBook(ctx context.Context, bookID int64, in BookInput) (*domain.Book, error) {
	if _, err := storage.FindBookByID(ctx, s.db, bookID); err != nil {
		return nil, err
	}

	errs, err := s.bookRules("Title is required").Validate(ctx, in.form())
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs
	}

	var updated *domain.Book
	err = storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		genre, err := s.resolveGenre(ctx, tx, in.Genre)
		if err != nil {
			return err
		}
		if err := storage.UpdateBook(ctx, tx, bookID, in.Title, in.Description, genre.ID); err != nil {
			return err
		}
		updated, err = storage.FindBookByID(ctx, tx, bookID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetBook returns one book.
func (s *Service) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	return storage.FindBookByID(ctx, s.db, id)
}

// GetBookDetail returns a book with its genre, author and ordered pages.
// A missing author is reported as not found.
func (s *Service) GetBookDetail(ctx context.Context, id int64) (*BookDetail, error) {
	book, err := storage.FindBookByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	genre, err := storage.FindGenreByID(ctx, s.db, book.GenreID)
	if err != nil {
		return nil, err
	}
	author, err := storage.FindUserByID(ctx, s.db, book.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("author of book %d: %w", id, err)
	}
	pages, err := storage.ListPagesByBook(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return &BookDetail{Book: book, Genre: genre, Author: author, Pages: pages}, nil
}

// ListBooks returns books per opts (nil means defaults).
func (s *Service) ListBooks(ctx context.Context, opts *core.ListQueryOptions) ([]domain.Book, error) {
	return storage.ListBooks(ctx, s.db, opts)
}

// ListBooksByAuthor returns the books a user wrote.
func (s *Service) ListBooksByAuthor(ctx context.Context, userID string) ([]domain.Book, error) {
	return storage.ListBooksByAuthor(ctx, s.db, userID)
}

// DeleteBook removes a book along with its access requests and pages, all
// or nothing.
func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := storage.FindBookByID(ctx, tx, id); err != nil {
			return err
		}
		requests, err := storage.DeleteAccessRequestsByBook(ctx, tx, id)
		if err != nil {
			return err
		}
		pages, err := storage.DeletePagesByBook(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := storage.DeleteBook(ctx, tx, id); err != nil {
			return err
		}
		customLog.Infof("Content: Book %d deleted with %d pages and %d access requests", id, pages, requests)
		return nil
	})
}

// --- Pages ---

// pageRules checks a page form. numberTaken reports whether a valid page
// number is already used within the page's book.
func (s *Service) pageRules(numberTaken func(ctx context.Context, n int) (bool, error)) core.Rules {
	return core.Rules{
		core.Check("chapterName", "Chapter name should not be empty", core.Required()),
		core.Check("pageNumber", "Page number should not be empty", core.Required()),
		core.Check("pageNumber", "Page number should not be equal or less than 0", core.PositiveInt()),
		core.Check("pageNumber", "Page number already exists", core.Custom(
			func(ctx context.Context, value string, _ core.Form) (bool, error) {
				n, err := strconv.Atoi(strings.TrimSpace(value))
				if err != nil || n <= 0 {
					return true, nil
				}
				taken, err := numberTaken(ctx, n)
				return !taken, err
			})).WithCause(storage.ErrPageNumberExists),
		core.Check("body", "Page should not be empty", core.Required()),
	}
}

func (in PageInput) form() core.Form {
	return core.Form{"chapterName": in.ChapterName, "pageNumber": in.PageNumber, "body": in.Body}
}

// pageNumber parses an input that already passed PositiveInt.
func (in PageInput) pageNumber() (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(in.PageNumber))
	if err != nil || n <= 0 {
		return 0, core.Invalid("pageNumber", "Page number should not be equal or less than 0")
	}
	return n, nil
}

// CreatePage adds a page to a book. Page numbers are unique per book.
func (s *Service) CreatePage(ctx context.Context, bookID int64, in PageInput) (*domain.Page, error) {
	rules := s.pageRules(func(ctx context.Context, n int) (bool, error) {
		return s.pageNumberTaken(ctx, s.db, bookID, n, 0)
	})
	errs, err := rules.Validate(ctx, in.form())
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs
	}
	number, err := in.pageNumber()
	if err != nil {
		return nil, err
	}

	if _, err := storage.FindBookByID(ctx, s.db, bookID); err != nil {
		return nil, err
	}
	page, err := storage.CreatePage(ctx, s.db, bookID, in.ChapterName, number, in.Body)
	if errors.Is(err, storage.ErrPageNumberExists) {
		return nil, core.Conflict("pageNumber", "Page number already exists", err)
	}
	return page, err
}

// UpdatePage overwrites a page. Keeping its own number is always allowed.
func (s *Service) UpdatePage(ctx context.Context, pageID int64, in PageInput) (*domain.Page, error) {
	rules := s.pageRules(func(ctx context.Context, n int) (bool, error) {
		current, err := storage.FindPageByID(ctx, s.db, pageID)
		if errors.Is(err, storage.ErrPageNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return s.pageNumberTaken(ctx, s.db, current.BookID, n, pageID)
	})
	errs, err := rules.Validate(ctx, in.form())
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs
	}
	number, err := in.pageNumber()
	if err != nil {
		return nil, err
	}

	var updated *domain.Page
	err = storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := storage.UpdatePage(ctx, tx, pageID, in.ChapterName, number, in.Body); err != nil {
			return err
		}
		updated, err = storage.FindPageByID(ctx, tx, pageID)
		return err
	})
	if errors.Is(err, storage.ErrPageNumberExists) {
		return nil, core.Conflict("pageNumber", "Page number already exists", err)
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetPage returns one page.
func (s *Service) GetPage(ctx context.Context, id int64) (*domain.Page, error) {
	return storage.FindPageByID(ctx, s.db, id)
}

// GetPageDetail returns a page with its book and the book's author.
func (s *Service) GetPageDetail(ctx context.Context, id int64) (*PageDetail, error) {
	page, err := storage.FindPageByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	book, err := storage.FindBookByID(ctx, s.db, page.BookID)
	if err != nil {
		return nil, err
	}
	author, err := storage.FindUserByID(ctx, s.db, book.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("author of book %d: %w", book.ID, err)
	}
	return &PageDetail{Page: page, Book: book, Author: author}, nil
}

// ListPages returns a book's pages ascending by page number.
func (s *Service) ListPages(ctx context.Context, bookID int64) ([]domain.Page, error) {
	if _, err := storage.FindBookByID(ctx, s.db, bookID); err != nil {
		return nil, err
	}
	return storage.ListPagesByBook(ctx, s.db, bookID)
}

// DeletePage removes one page.
func (s *Service) DeletePage(ctx context.Context, id int64) error {
	return storage.DeletePage(ctx, s.db, id)
}

// --- Access requests ---

// CreateAccessRequest records a reader's message to the author of a book.
func (s *Service) CreateAccessRequest(ctx context.Context, bookID int64, requesterID, message string) (*domain.AccessRequest, error) {
	if strings.TrimSpace(message) == "" {
		return nil, core.Invalid("request", "Please send the author a request message.")
	}
	if _, err := storage.FindBookByID(ctx, s.db, bookID); err != nil {
		return nil, err
	}
	return storage.CreateAccessRequest(ctx, s.db, bookID, requesterID, message)
}

// ListAccessRequestsForAuthor returns the requests a user received, newest first.
func (s *Service) ListAccessRequestsForAuthor(ctx context.Context, userID string) ([]domain.AccessRequestSummary, error) {
	return storage.ListAccessRequestsForAuthor(ctx, s.db, userID)
}
