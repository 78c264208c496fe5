package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/opentextbook-backend/config"
	"github.com/Annany2002/opentextbook-backend/internal/core"
	"github.com/Annany2002/opentextbook-backend/internal/domain"
)

// testDB opens a fresh database in a temp directory.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.Config{DatabaseDir: t.TempDir(), DatabaseFile: "test_textbook.db"}
	db, err := ConnectDatabase(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})
	return db
}

func seedUser(t *testing.T, db *sql.DB, username, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		UserId:       uuid.New().String(),
		Username:     username,
		Email:        email,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Birthday:     time.Date(1990, 12, 10, 0, 0, 0, 0, time.UTC),
		PasswordHash: "hash",
	}
	require.NoError(t, CreateUser(context.Background(), db, user))
	return user
}

func seedBook(t *testing.T, db *sql.DB, author *domain.User, genre string) *domain.Book {
	t.Helper()
	ctx := context.Background()
	g, err := FindGenreByLabel(ctx, db, genre)
	if errors.Is(err, ErrGenreNotFound) {
		g, err = CreateGenre(ctx, db, genre)
	}
	require.NoError(t, err)
	book, err := CreateBook(ctx, db, "Go in Practice", "A short book", g.ID, author.UserId)
	require.NoError(t, err)
	return book
}

func TestUsers(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	ada := seedUser(t, db, "ada", "Ada@Example.com")

	t.Run("email stored lowercase", func(t *testing.T) {
		found, err := FindUserByID(ctx, db, ada.UserId)
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", found.Email)
		assert.Equal(t, 1990, found.Birthday.Year())
	})

	t.Run("duplicate email ignores case", func(t *testing.T) {
		err := CreateUser(ctx, db, &domain.User{UserId: uuid.New().String(), Username: "other", Email: "ADA@example.COM", PasswordHash: "h"})
		assert.ErrorIs(t, err, ErrEmailExists)
		assert.ErrorIs(t, err, domain.ErrDuplicate)
	})

	t.Run("duplicate username", func(t *testing.T) {
		err := CreateUser(ctx, db, &domain.User{UserId: uuid.New().String(), Username: "ada", Email: "new@example.com", PasswordHash: "h"})
		assert.ErrorIs(t, err, ErrUsernameExists)
	})

	t.Run("login by username or email", func(t *testing.T) {
		byName, err := FindUserByLogin(ctx, db, "ada")
		require.NoError(t, err)
		assert.Equal(t, ada.UserId, byName.UserId)

		byEmail, err := FindUserByLogin(ctx, db, "ADA@EXAMPLE.COM")
		require.NoError(t, err)
		assert.Equal(t, ada.UserId, byEmail.UserId)

		_, err = FindUserByLogin(ctx, db, "nobody")
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("existence checks", func(t *testing.T) {
		taken, err := UsernameExists(ctx, db, "ada")
		require.NoError(t, err)
		assert.True(t, taken)

		taken, err = EmailExists(ctx, db, "ada@EXAMPLE.com")
		require.NoError(t, err)
		assert.True(t, taken)

		taken, err = UsernameExists(ctx, db, "grace")
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("update profile", func(t *testing.T) {
		bday := time.Date(1985, 1, 2, 0, 0, 0, 0, time.UTC)
		require.NoError(t, UpdateUserProfile(ctx, db, ada.UserId, "Augusta", "King", bday, "newhash"))
		found, err := FindUserByID(ctx, db, ada.UserId)
		require.NoError(t, err)
		assert.Equal(t, "Augusta", found.FirstName)
		assert.Equal(t, "newhash", found.PasswordHash)

		err = UpdateUserProfile(ctx, db, "missing", "a", "b", bday, "h")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestGenres(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	_, err := CreateGenre(ctx, db, "Fantasy")
	require.NoError(t, err)
	_, err = CreateGenre(ctx, db, "Biography")
	require.NoError(t, err)

	_, err = CreateGenre(ctx, db, "Fantasy")
	assert.ErrorIs(t, err, ErrGenreExists)

	// labels compare case-sensitively
	_, err = CreateGenre(ctx, db, "fantasy")
	assert.NoError(t, err)

	genres, err := ListGenres(ctx, db)
	require.NoError(t, err)
	require.Len(t, genres, 3)
	assert.Equal(t, "Biography", genres[0].Genre)

	_, err = FindGenreByLabel(ctx, db, "Horror")
	assert.ErrorIs(t, err, ErrGenreNotFound)
}

func TestBooks(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	ada := seedUser(t, db, "ada", "ada@example.com")
	book := seedBook(t, db, ada, "Fantasy")

	t.Run("find", func(t *testing.T) {
		found, err := FindBookByID(ctx, db, book.ID)
		require.NoError(t, err)
		assert.Equal(t, "Go in Practice", found.Title)
		assert.Equal(t, ada.UserId, found.AuthorID)

		_, err = FindBookByID(ctx, db, 9999)
		assert.ErrorIs(t, err, ErrBookNotFound)
	})

	t.Run("description over limit rejected by schema", func(t *testing.T) {
		long := make([]byte, 201)
		for i := range long {
			long[i] = 'a'
		}
		_, err := CreateBook(ctx, db, "Too long", string(long), book.GenreID, ada.UserId)
		assert.ErrorIs(t, err, ErrConstraintViolation)
	})

	t.Run("unknown genre rejected", func(t *testing.T) {
		_, err := CreateBook(ctx, db, "Orphan", "desc", 4242, ada.UserId)
		assert.ErrorIs(t, err, ErrConstraintViolation)
	})

	t.Run("update keeps author", func(t *testing.T) {
		require.NoError(t, UpdateBook(ctx, db, book.ID, "Go in Action", "Updated", book.GenreID))
		found, err := FindBookByID(ctx, db, book.ID)
		require.NoError(t, err)
		assert.Equal(t, "Go in Action", found.Title)
		assert.Equal(t, ada.UserId, found.AuthorID)

		assert.ErrorIs(t, UpdateBook(ctx, db, 9999, "x", "y", book.GenreID), ErrBookNotFound)
	})

	t.Run("list and sort", func(t *testing.T) {
		_, err := CreateBook(ctx, db, "Algorithms", "desc", book.GenreID, ada.UserId)
		require.NoError(t, err)

		books, err := ListBooks(ctx, db, nil)
		require.NoError(t, err)
		require.Len(t, books, 2)
		assert.Equal(t, book.ID, books[0].ID)

		byTitle, err := ListBooks(ctx, db, &core.ListQueryOptions{Limit: 1, SortBy: "title", SortOrder: "asc"})
		require.NoError(t, err)
		require.Len(t, byTitle, 1)
		assert.Equal(t, "Algorithms", byTitle[0].Title)

		rest, err := ListBooks(ctx, db, &core.ListQueryOptions{Offset: 1, SortOrder: "asc"})
		require.NoError(t, err)
		require.Len(t, rest, 1, "offset without limit")

		mine, err := ListBooksByAuthor(ctx, db, ada.UserId)
		require.NoError(t, err)
		assert.Len(t, mine, 2)
	})
}

func TestPages(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	ada := seedUser(t, db, "ada", "ada@example.com")
	book := seedBook(t, db, ada, "Fantasy")

	for _, n := range []int{3, 1, 2} {
		_, err := CreatePage(ctx, db, book.ID, "Intro", n, "body")
		require.NoError(t, err)
	}

	t.Run("listed ascending", func(t *testing.T) {
		pages, err := ListPagesByBook(ctx, db, book.ID)
		require.NoError(t, err)
		require.Len(t, pages, 3)
		for i, p := range pages {
			assert.Equal(t, i+1, p.PageNumber)
		}
	})

	t.Run("duplicate number", func(t *testing.T) {
		_, err := CreatePage(ctx, db, book.ID, "Again", 2, "body")
		assert.ErrorIs(t, err, ErrPageNumberExists)
		assert.ErrorIs(t, err, domain.ErrDuplicate)
	})

	t.Run("unknown book", func(t *testing.T) {
		_, err := CreatePage(ctx, db, 9999, "Lost", 1, "body")
		assert.ErrorIs(t, err, ErrBookNotFound)
	})

	t.Run("update excludes itself", func(t *testing.T) {
		pages, err := ListPagesByBook(ctx, db, book.ID)
		require.NoError(t, err)
		first := pages[0]

		taken, err := PageNumberTaken(ctx, db, book.ID, first.PageNumber, first.ID)
		require.NoError(t, err)
		assert.False(t, taken)

		taken, err = PageNumberTaken(ctx, db, book.ID, 2, first.ID)
		require.NoError(t, err)
		assert.True(t, taken)

		require.NoError(t, UpdatePage(ctx, db, first.ID, "Renamed", first.PageNumber, "new body"))
		assert.ErrorIs(t, UpdatePage(ctx, db, first.ID, "Clash", 2, "x"), ErrPageNumberExists)
	})

	t.Run("delete", func(t *testing.T) {
		pages, err := ListPagesByBook(ctx, db, book.ID)
		require.NoError(t, err)
		require.NoError(t, DeletePage(ctx, db, pages[0].ID))
		assert.ErrorIs(t, DeletePage(ctx, db, pages[0].ID), ErrPageNotFound)

		n, err := DeletePagesByBook(ctx, db, book.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})
}

func TestAccessRequests(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	ada := seedUser(t, db, "ada", "ada@example.com")
	grace := seedUser(t, db, "grace", "grace@example.com")
	book := seedBook(t, db, ada, "Fantasy")

	_, err := CreateAccessRequest(ctx, db, book.ID, grace.UserId, "first")
	require.NoError(t, err)
	_, err = CreateAccessRequest(ctx, db, book.ID, grace.UserId, "second")
	require.NoError(t, err)

	_, err = CreateAccessRequest(ctx, db, 9999, grace.UserId, "lost")
	assert.ErrorIs(t, err, ErrBookNotFound)

	received, err := ListAccessRequestsForAuthor(ctx, db, ada.UserId)
	require.NoError(t, err)
	require.Len(t, received, 2)
	assert.Equal(t, "second", received[0].Message)
	assert.Equal(t, "grace", received[0].Requester)
	assert.Equal(t, "Go in Practice", received[0].BookTitle)

	none, err := ListAccessRequestsForAuthor(ctx, db, grace.UserId)
	require.NoError(t, err)
	assert.Empty(t, none)

	n, err := DeleteAccessRequestsByBook(ctx, db, book.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestWithTxRollsBack(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := WithTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := CreateGenre(ctx, tx, "Fantasy"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	exists, err := GenreExists(ctx, db, "Fantasy")
	require.NoError(t, err)
	assert.False(t, exists)
}
