// Package runs persists generation run history in a local SQLite
// database.
package runs

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	request TEXT NOT NULL,
	status TEXT NOT NULL,
	skill_name TEXT NOT NULL DEFAULT '',
	artifact_dir TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
`

// Run is one recorded generation run.
type Run struct {
	ID          string    `db:"id" json:"id"`
	Request     string    `db:"request" json:"request"`
	Status      string    `db:"status" json:"status"`
	SkillName   string    `db:"skill_name" json:"skill_name"`
	ArtifactDir string    `db:"artifact_dir" json:"artifact_dir"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// NewRun creates a run record with a fresh id and timestamp.
func NewRun(request, status, skillName, artifactDir string) *Run {
	return &Run{
		ID:          uuid.New().String(),
		Request:     request,
		Status:      status,
		SkillName:   skillName,
		ArtifactDir: artifactDir,
		CreatedAt:   time.Now(),
	}
}

// DefaultDBPath returns the default location of the run history database.
func DefaultDBPath() (string, error) {
	if basePath := os.Getenv("SKILLFORGE_BASE_PATH"); basePath != "" {
		return filepath.Join(basePath, "runs.db"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, ".skillforge", "runs.db"), nil
}

// Store is a SQLite-backed run history store.
type Store struct {
	dbPath string
	db     *sqlx.DB
}

// NewStore opens or creates the run database at dbPath.
func NewStore(ctx context.Context, dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create database directory")
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	if err := configureDatabase(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to configure database")
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to initialize schema")
	}

	return &Store{dbPath: dbPath, db: db}, nil
}

// configureDatabase sets up SQLite pragmas for WAL mode operation.
func configureDatabase(ctx context.Context, db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=1000",
		"PRAGMA temp_store=memory",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return errors.Wrapf(err, "failed to execute pragma: %s", pragma)
		}
	}

	db.SetMaxIdleConns(1)
	db.SetMaxOpenConns(1)

	var journalMode string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode); err != nil {
		return errors.Wrap(err, "failed to query journal mode")
	}
	if strings.ToLower(journalMode) != "wal" {
		return errors.Errorf("WAL mode not enabled. Current mode: %s", journalMode)
	}

	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts a run record.
func (s *Store) Save(ctx context.Context, run *Run) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO runs (id, request, status, skill_name, artifact_dir, created_at)
		VALUES (:id, :request, :status, :skill_name, :artifact_dir, :created_at)`, run)
	if err != nil {
		return errors.Wrap(err, "failed to save run")
	}
	return nil
}

// List returns runs most recent first, capped at limit. A non-positive
// limit returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT * FROM runs ORDER BY created_at DESC, id"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var result []Run
	if err := s.db.SelectContext(ctx, &result, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to list runs")
	}
	return result, nil
}

// ErrNotFound is returned when a run id does not exist.
var ErrNotFound = errors.New("run not found")

// Get returns a single run by id.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.db.GetContext(ctx, &run, "SELECT * FROM runs WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get run")
	}
	return &run, nil
}

// Delete removes a run by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "failed to delete run")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check delete result")
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
