package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/edgard/groupwatch/migrations"

	_ "modernc.org/sqlite" //revive:disable:blank-imports
)

// SQLite stores records in the group_chats table of a SQLite database.
type SQLite struct {
	db     *sqlx.DB
	path   string
	logger *slog.Logger
}

// OpenSQLite connects to the SQLite database file at path.
func OpenSQLite(path string, logger *slog.Logger) (*SQLite, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &SQLite{
		db:     db,
		path:   path,
		logger: logger.With("component", "sqlite_store"),
	}, nil
}

// Init applies the embedded migrations.
func (s *SQLite) Init(ctx context.Context) error {
	if err := ApplyMigrations(s.db.DB, ExtractDBNameFromPath(s.path)); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	s.logger.InfoContext(ctx, "Database ready", "path", s.path)
	return nil
}

// Contains reports whether chatID is stored.
func (s *SQLite) Contains(ctx context.Context, chatID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM group_chats WHERE chat_id = ?);`, chatID)
	if err != nil {
		return false, fmt.Errorf("failed to look up chat %s: %w", chatID, err)
	}
	return exists, nil
}

// Append inserts rec. An existing chat_id is left untouched.
func (s *SQLite) Append(ctx context.Context, rec GroupRecord) error {
	query := `
        INSERT INTO group_chats (timestamp, group_name, chat_id)
        VALUES (:timestamp, :group_name, :chat_id)
        ON CONFLICT(chat_id) DO NOTHING;
    `

	result, err := s.db.NamedExecContext(ctx, query, rec)
	if err != nil {
		return fmt.Errorf("failed to insert chat %s: %w", rec.ChatID, err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		s.logger.WarnContext(ctx, "Chat already stored, insert ignored", "chat_id", rec.ChatID)
	}
	return nil
}

// List returns all records ordered by insertion.
func (s *SQLite) List(ctx context.Context) ([]GroupRecord, error) {
	var records []GroupRecord
	err := s.db.SelectContext(ctx, &records,
		`SELECT timestamp, group_name, chat_id FROM group_chats ORDER BY id ASC;`)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return records, nil
}

// ErrIntegrityCheck is returned by Maintain when SQLite reports damage.
var ErrIntegrityCheck = errors.New("database integrity check failed")

// Maintain runs PRAGMA quick_check. It only reads the database.
func (s *SQLite) Maintain(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (quick_check)...")

	var results []string
	err := s.db.SelectContext(ctx, &results, "PRAGMA quick_check;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return fmt.Errorf("database maintenance (quick_check) timed out: %w", err)
	case err != nil:
		return fmt.Errorf("failed to execute quick_check: %w", err)
	}

	if len(results) != 1 || results[0] != "ok" {
		s.logger.ErrorContext(ctx, "Database integrity check reported problems", "problems", results)
		return fmt.Errorf("%w: %s", ErrIntegrityCheck, strings.Join(results, "; "))
	}

	s.logger.InfoContext(ctx, "Database maintenance (quick_check) completed successfully")
	return nil
}

// Close closes the connection pool.
func (s *SQLite) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// ApplyMigrations runs database migrations using embedded files.
func ApplyMigrations(db *sql.DB, dbName string) error {
	if db == nil {
		return errors.New("database connection is nil, cannot apply migrations")
	}
	if dbName == "" {
		return errors.New("database name/path for migration driver is empty")
	}

	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create embed source driver instance: %w", err)
	}

	dbDriver, err := sqlite.WithInstance(db, &sqlite.Config{DatabaseName: dbName})
	if err != nil {
		return fmt.Errorf("failed to create sqlite database driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// ExtractDBNameFromPath extracts the database file path from a possibly URL-formatted path.
func ExtractDBNameFromPath(path string) string {
	path = strings.TrimPrefix(path, "file:")

	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}

	if decoded, err := url.PathUnescape(path); err == nil {
		return decoded
	}

	return path
}
