package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique index.
// The indexes are the authoritative duplicate signal; handler-level
// pre-checks only exist to produce friendlier messages.
var ErrDuplicate = errors.New("duplicate")

// Store owns the sqlite handle and the per-entity repositories.
type Store struct {
	db *sql.DB

	Projects     *ProjectRepo
	Environments *EnvironmentRepo
	Resources    *ResourceRepo
	Contacts     *ContactRepo
	Links        *LinkRepo
}

// Open opens (creating if needed) the catalog database and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return New(db)
}

// New wraps an existing handle, running migrations first.
func New(db *sql.DB) (*Store, error) {
	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{
		db:           db,
		Projects:     &ProjectRepo{db: db},
		Environments: &EnvironmentRepo{db: db},
		Resources:    &ResourceRepo{db: db},
		Contacts:     &ContactRepo{db: db},
		Links:        &LinkRepo{db: db},
	}, nil
}

// Close closes the underlying handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// The store declares no foreign keys; referential integrity is enforced by
// the tool handlers. Uniqueness, however, lives here: name/email natural
// keys carry case-insensitive unique indexes so creation is atomic rather
// than check-then-act.
func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL COLLATE NOCASE,
		description TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_name ON projects(name);

	CREATE TABLE IF NOT EXISTS environments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL COLLATE NOCASE,
		description TEXT NOT NULL DEFAULT '',
		project_id INTEGER NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_environments_project_name ON environments(project_id, name);

	CREATE TABLE IF NOT EXISTS resources (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL COLLATE NOCASE,
		description TEXT NOT NULL,
		health_check_url TEXT NOT NULL DEFAULT '',
		alive_check_url TEXT NOT NULL DEFAULT '',
		headers TEXT NOT NULL DEFAULT '',
		is_ih_service INTEGER NOT NULL DEFAULT 0,
		type TEXT NOT NULL,
		project_id INTEGER NOT NULL,
		env_id INTEGER NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_resources_scope_name ON resources(project_id, env_id, name);
	CREATE INDEX IF NOT EXISTS idx_resources_project ON resources(project_id);

	CREATE TABLE IF NOT EXISTS contacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL COLLATE NOCASE,
		phone TEXT NOT NULL DEFAULT ''
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_contacts_email ON contacts(email);

	CREATE TABLE IF NOT EXISTS resource_contacts (
		resource_id INTEGER NOT NULL,
		contact_id INTEGER NOT NULL,
		role TEXT NOT NULL,
		PRIMARY KEY (resource_id, contact_id)
	);
	`
	_, err := db.Exec(schema)
	return err
}

// CascadeCounts reports what a cascading delete removed alongside the parent.
type CascadeCounts struct {
	Environments int64
	Resources    int64
	Links        int64
}

// DeleteProjectCascade removes a project and everything under it
// (associations, resources, environments) in one transaction.
func (s *Store) DeleteProjectCascade(ctx context.Context, projectID int64) (CascadeCounts, error) {
	var counts CascadeCounts

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return counts, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM resource_contacts
		WHERE resource_id IN (SELECT id FROM resources WHERE project_id = ?)
	`, projectID)
	if err != nil {
		return counts, fmt.Errorf("delete associations: %w", err)
	}
	counts.Links, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM resources WHERE project_id = ?`, projectID)
	if err != nil {
		return counts, fmt.Errorf("delete resources: %w", err)
	}
	counts.Resources, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM environments WHERE project_id = ?`, projectID)
	if err != nil {
		return counts, fmt.Errorf("delete environments: %w", err)
	}
	counts.Environments, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, projectID)
	if err != nil {
		return counts, fmt.Errorf("delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return CascadeCounts{}, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return CascadeCounts{}, fmt.Errorf("commit transaction: %w", err)
	}
	return counts, nil
}

// DeleteEnvironmentCascade removes an environment, its resources, and their
// associations in one transaction.
func (s *Store) DeleteEnvironmentCascade(ctx context.Context, envID int64) (CascadeCounts, error) {
	var counts CascadeCounts

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return counts, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM resource_contacts
		WHERE resource_id IN (SELECT id FROM resources WHERE env_id = ?)
	`, envID)
	if err != nil {
		return counts, fmt.Errorf("delete associations: %w", err)
	}
	counts.Links, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM resources WHERE env_id = ?`, envID)
	if err != nil {
		return counts, fmt.Errorf("delete resources: %w", err)
	}
	counts.Resources, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM environments WHERE id = ?`, envID)
	if err != nil {
		return counts, fmt.Errorf("delete environment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return CascadeCounts{}, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return CascadeCounts{}, fmt.Errorf("commit transaction: %w", err)
	}
	return counts, nil
}

// mapConstraintErr converts a sqlite unique-index violation into ErrDuplicate.
func mapConstraintErr(err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		return ErrDuplicate
	}
	return err
}
