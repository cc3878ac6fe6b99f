package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	apierrors "github.com/electroluxcode/score-analyzer/internal/errors"
	"github.com/electroluxcode/score-analyzer/pkg/contracts/domain"
)

// DefaultConfigName labels the seeded assignment config.
const DefaultConfigName = "默认赋分规则"

// DefaultConfigID is the stable ID of the seeded assignment config.
var DefaultConfigID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("score-analyzer/assignment-configs/default")).String()

// Store is the SQLite-backed workspace.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// Open opens (creating when needed) the database at path, applies the
// schema and seeds the default assignment config.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, apierrors.NewStorageError("resolve database path", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, apierrors.NewStorageError("create database directory", err)
	}

	db, err := sql.Open("sqlite", connectionString(absPath))
	if err != nil {
		return nil, apierrors.NewStorageError("open database", err)
	}
	// One writer keeps SQLite free of SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, apierrors.NewStorageError("ping database", err)
	}

	s := &Store{
		db:     db,
		path:   absPath,
		logger: logger.With(slog.String("component", "storage")),
		now:    time.Now,
	}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s.logger.InfoContext(ctx, "database opened", slog.String("path", absPath))
	return s, nil
}

func connectionString(path string) string {
	return "file:" + path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)"
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return apierrors.NewStorageError("apply schema", err)
	}

	data, err := encodeConfig(domain.DefaultAssignmentConfig())
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO assignment_configs
		(id, name, config, is_default, is_active, created_at) VALUES (?, ?, ?, 1, 0, ?)`,
		DefaultConfigID, DefaultConfigName, data, s.now().UnixNano())
	if err != nil {
		return apierrors.NewStorageError("seed default assignment config", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.logger.InfoContext(ctx, "default assignment config seeded", slog.String("id", DefaultConfigID))
	}
	return s.ensureActiveConfig(ctx, s.db)
}

// Path returns the absolute database path.
func (s *Store) Path() string {
	return s.path
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return apierrors.NewStorageError("ping database", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn in a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apierrors.NewStorageError("begin transaction", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return apierrors.NewStorageError("commit transaction", err)
	}
	return nil
}

func newID() string {
	return uuid.New().String()
}

func mustAffect(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apierrors.NewStorageError(fmt.Sprintf("update %s", resource), err)
	}
	if n == 0 {
		return apierrors.NewNotFoundError(resource)
	}
	return nil
}
