// internal/storage/database.go
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // Driver registration

	"github.com/Annany2002/opentextbook-backend/config"
	"github.com/Annany2002/opentextbook-backend/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every repository
// function can run inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Schema. Uniqueness and range rules live here as constraints; repository
// functions translate their violations into domain errors.
var schema = []struct {
	name string
	sql  string
}{
	{"users", `
	CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY NOT NULL,
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL COLLATE NOCASE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		birthday DATE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`},
	{"genres", `
	CREATE TABLE IF NOT EXISTS genres (
		genre_id INTEGER PRIMARY KEY AUTOINCREMENT,
		genre TEXT UNIQUE NOT NULL
	);`},
	{"books", `
	CREATE TABLE IF NOT EXISTS books (
		book_id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL CHECK (length(description) <= 200),
		genre_id INTEGER NOT NULL,
		author_id TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (genre_id) REFERENCES genres(genre_id),
		FOREIGN KEY (author_id) REFERENCES users(user_id)
	);`},
	{"books author index", `CREATE INDEX IF NOT EXISTS idx_books_author ON books(author_id);`},
	{"pages", `
	CREATE TABLE IF NOT EXISTS pages (
		page_id INTEGER PRIMARY KEY AUTOINCREMENT,
		book_id INTEGER NOT NULL,
		chapter_name TEXT NOT NULL,
		page_number INTEGER NOT NULL CHECK (page_number > 0),
		body TEXT NOT NULL,
		UNIQUE (book_id, page_number),
		FOREIGN KEY (book_id) REFERENCES books(book_id)
	);`},
	{"access_requests", `
	CREATE TABLE IF NOT EXISTS access_requests (
		request_id INTEGER PRIMARY KEY AUTOINCREMENT,
		book_id INTEGER NOT NULL,
		user_id TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (book_id) REFERENCES books(book_id),
		FOREIGN KEY (user_id) REFERENCES users(user_id)
	);`},
	{"access_requests book index", `CREATE INDEX IF NOT EXISTS idx_access_requests_book ON access_requests(book_id);`},
}

// ConnectDatabase initializes the connection pool for the SQLite database
// and ensures every table exists.
func ConnectDatabase(cfg *config.Config) (*sql.DB, error) {
	dbPath := filepath.Join(cfg.DatabaseDir, cfg.DatabaseFile)
	customLog.Printf("Storage: Initializing database: %s", dbPath)

	if err := os.MkdirAll(cfg.DatabaseDir, 0o750); err != nil {
		customLog.Warnf("Storage: Error creating data directory '%s': %v", cfg.DatabaseDir, err)
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// Foreign keys on, WAL, 5s busy timeout, and write transactions take the lock up front
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		customLog.Warnf("Storage: Failed to open db '%s': %v", dbPath, err)
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		customLog.Warnf("Storage: Failed to ping db '%s': %v", dbPath, err)
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	customLog.Println("Storage: Database connection successful.")

	for _, stmt := range schema {
		if _, err = db.Exec(stmt.sql); err != nil {
			db.Close()
			customLog.Warnf("Storage: Failed to create %s: %v", stmt.name, err)
			return nil, fmt.Errorf("failed to ensure %s: %w", stmt.name, err)
		}
		customLog.Debugf("Storage: %s ensured.", stmt.name)
	}

	return db, nil
}

// WithTx runs fn inside one transaction, committing on success and rolling
// back on any error.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			customLog.Warnf("Storage: Rollback failed: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
