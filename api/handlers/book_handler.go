// api/handlers/book_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/opentextbook-backend/api/middleware"
	"github.com/Annany2002/opentextbook-backend/api/models"
	"github.com/Annany2002/opentextbook-backend/internal/content"
	"github.com/Annany2002/opentextbook-backend/internal/core"
	"github.com/Annany2002/opentextbook-backend/internal/render"
	"github.com/Annany2002/opentextbook-backend/internal/session"
)

// BookHandler serves books, pages, genres and access requests.
type BookHandler struct {
	Content  *content.Service
	Renderer render.Renderer
}

// NewBookHandler creates a new BookHandler with dependencies.
func NewBookHandler(svc *content.Service, r render.Renderer) *BookHandler {
	return &BookHandler{Content: svc, Renderer: r}
}

// Index renders the landing page with every book.
func (h *BookHandler) Index(c *gin.Context) {
	books, err := h.Content.ListBooks(c.Request.Context(), nil)
	if err != nil {
		_ = c.Error(err)
		return
	}
	page(c, h.Renderer, "index", gin.H{"books": books})
}

// ListBooks handles GET /books/all, returning the books as a JSON array.
// Supports limit, offset, sort (id, title, created) and order.
func (h *BookHandler) ListBooks(c *gin.Context) {
	opts, err := core.ParseListQueryOptions(c.Request.URL.Query(), core.BookSortColumns)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	books, err := h.Content.ListBooks(c.Request.Context(), opts)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, books)
}

// --- Genres ---

func (h *BookHandler) GenreForm(c *gin.Context) {
	page(c, h.Renderer, "add_genre", nil)
}

func (h *BookHandler) CreateGenre(c *gin.Context) {
	var req models.GenreRequest
	if !bindForm(c, &req) {
		return
	}
	middleware.SetForm(c, "add_genre", req, nil)

	if _, err := h.Content.CreateGenre(c.Request.Context(), req.Genre); err != nil {
		_ = c.Error(err)
		return
	}
	redirect(c, session.FlashSuccess, "Genre successfully created", "/books/add")
}

// --- Books ---

func (h *BookHandler) AddBookForm(c *gin.Context) {
	genres, err := h.Content.ListGenres(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	page(c, h.Renderer, "add_book", gin.H{"genres": genres})
}

// CreateBook stores a book authored by the signed-in user.
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req models.BookRequest
	if !bindForm(c, &req) {
		return
	}
	ctx := c.Request.Context()
	genres, err := h.Content.ListGenres(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}
	middleware.SetForm(c, "add_book", req, gin.H{"genres": genres})

	book, err := h.Content.CreateBook(ctx, middleware.CurrentUser(c).UserId, req.Input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	customLog.Printf("Book %d created", book.ID)
	redirect(c, session.FlashSuccess, "Book successfully created", "/users/profile")
}

// ShowBook renders a book with its genre, author and pages.
func (h *BookHandler) ShowBook(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	detail, err := h.Content.GetBookDetail(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	page(c, h.Renderer, "books", gin.H{"book": detail.Book, "genre": detail.Genre, "author": detail.Author, "pages": detail.Pages})
}

func (h *BookHandler) ModifyBookForm(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	book, err := h.Content.GetBook(ctx, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	genres, err := h.Content.ListGenres(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}
	page(c, h.Renderer, "modify_book", gin.H{"book": book, "genres": genres})
}

func (h *BookHandler) ModifyBook(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req models.BookRequest
	if !bindForm(c, &req) {
		return
	}
	ctx := c.Request.Context()
	genres, err := h.Content.ListGenres(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}
	middleware.SetForm(c, "modify_book", req, gin.H{"bookId": id, "genres": genres})

	book, err := h.Content.UpdateBook(ctx, id, req.Input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	redirect(c, session.FlashSuccess, "Book updated Successfully", bookPath(book.ID))
}

func (h *BookHandler) DeleteBookForm(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	detail, err := h.Content.GetBookDetail(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	page(c, h.Renderer, "delete_book", gin.H{"book": detail.Book, "genre": detail.Genre, "author": detail.Author, "pages": detail.Pages})
}

// DeleteBook removes a book with its pages and access requests.
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.Content.DeleteBook(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	middleware.Flash(c, session.FlashSuccess, "Book successfully deleted")
	c.String(http.StatusOK, "Successfully deleted")
}

// --- Pages ---

// CreatePage adds a page to the book named in the path.
func (h *BookHandler) CreatePage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req models.PageRequest
	if !bindForm(c, &req) {
		return
	}
	ctx := c.Request.Context()
	detail, err := h.Content.GetBookDetail(ctx, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	middleware.SetForm(c, "books", req, gin.H{"book": detail.Book, "genre": detail.Genre, "author": detail.Author, "pages": detail.Pages})

	if _, err := h.Content.CreatePage(ctx, id, req.Input()); err != nil {
		_ = c.Error(err)
		return
	}
	redirect(c, session.FlashSuccess, "Page successfully created", bookPath(id))
}

// ShowPage renders a single page.
func (h *BookHandler) ShowPage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	detail, err := h.Content.GetPageDetail(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	page(c, h.Renderer, "page", gin.H{"page": detail.Page, "book": detail.Book, "author": detail.Author})
}

func (h *BookHandler) ModifyPageForm(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	detail, err := h.Content.GetPageDetail(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	page(c, h.Renderer, "modify_page", gin.H{"page": detail.Page, "book": detail.Book})
}

func (h *BookHandler) ModifyPage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req models.PageRequest
	if !bindForm(c, &req) {
		return
	}
	ctx := c.Request.Context()
	detail, err := h.Content.GetPageDetail(ctx, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	middleware.SetForm(c, "modify_page", req, gin.H{"page": detail.Page, "book": detail.Book})

	updated, err := h.Content.UpdatePage(ctx, id, req.Input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	redirect(c, session.FlashSuccess, "Page updated Successfully", pagePath(updated.ID))
}

func (h *BookHandler) DeletePage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.Content.DeletePage(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	middleware.Flash(c, session.FlashSuccess, "Page successfully deleted")
	c.String(http.StatusOK, "Successfully deleted")
}

// --- Access requests ---

func (h *BookHandler) RequestAccessForm(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	book, err := h.Content.GetBook(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	page(c, h.Renderer, "request_access", gin.H{"book": book})
}

// RequestAccess sends the author of a book a message from the signed-in user.
func (h *BookHandler) RequestAccess(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req models.AccessRequestRequest
	if !bindForm(c, &req) {
		return
	}
	ctx := c.Request.Context()
	book, err := h.Content.GetBook(ctx, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	middleware.SetForm(c, "request_access", req, gin.H{"book": book})

	if _, err := h.Content.CreateAccessRequest(ctx, id, middleware.CurrentUser(c).UserId, req.Request); err != nil {
		_ = c.Error(err)
		return
	}
	redirect(c, session.FlashSuccess, "Request successfully sent to author", bookPath(id))
}

func bookPath(id int64) string {
	return "/books/" + strconv.FormatInt(id, 10)
}

func pagePath(id int64) string {
	return "/books/page/" + strconv.FormatInt(id, 10)
}
