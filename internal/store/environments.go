package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Environment is a named deployment target within a project.
type Environment struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ProjectID   int64  `json:"projectId"`
}

// EnvironmentPatch carries a partial update; nil fields are left untouched.
type EnvironmentPatch struct {
	Name        *string
	Description *string
}

// EnvironmentRepo provides row access for environments.
type EnvironmentRepo struct {
	db *sql.DB
}

// Create inserts an environment. Name uniqueness is scoped per project by
// the unique index; existence of the project is the caller's concern.
func (r *EnvironmentRepo) Create(ctx context.Context, name, description string, projectID int64) (*Environment, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("environment name cannot be empty")
	}
	if projectID <= 0 {
		return nil, fmt.Errorf("environment projectId is required")
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO environments (name, description, project_id) VALUES (?, ?, ?)
	`, name, description, projectID)
	if err != nil {
		return nil, fmt.Errorf("insert environment: %w", mapConstraintErr(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read assigned id: %w", err)
	}
	return &Environment{ID: id, Name: name, Description: description, ProjectID: projectID}, nil
}

// GetByID looks up an environment by id.
func (r *EnvironmentRepo) GetByID(ctx context.Context, id int64) (*Environment, error) {
	var e Environment
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, project_id FROM environments WHERE id = ?
	`, id).Scan(&e.ID, &e.Name, &e.Description, &e.ProjectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query environment: %w", err)
	}
	return &e, nil
}

// GetByName looks up an environment by name within a project,
// case-insensitively.
func (r *EnvironmentRepo) GetByName(ctx context.Context, projectID int64, name string) (*Environment, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("environment name cannot be empty")
	}
	var e Environment
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, project_id FROM environments
		WHERE project_id = ? AND name = ?
	`, projectID, name).Scan(&e.ID, &e.Name, &e.Description, &e.ProjectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query environment: %w", err)
	}
	return &e, nil
}

// List returns environments in insertion order, optionally scoped to one
// project (projectID > 0).
func (r *EnvironmentRepo) List(ctx context.Context, projectID int64) ([]Environment, error) {
	query := `SELECT id, name, description, project_id FROM environments`
	args := []any{}
	if projectID > 0 {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query environments: %w", err)
	}
	defer rows.Close()

	envs := []Environment{}
	for rows.Next() {
		var e Environment
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.ProjectID); err != nil {
			return nil, fmt.Errorf("scan environment: %w", err)
		}
		envs = append(envs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate environments: %w", err)
	}
	return envs, nil
}

// Update rewrites only the supplied fields. An empty patch is rejected.
func (r *EnvironmentRepo) Update(ctx context.Context, id int64, patch EnvironmentPatch) error {
	sets, args := []string{}, []any{}
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return fmt.Errorf("environment name cannot be empty")
		}
		sets, args = append(sets, "name = ?"), append(args, *patch.Name)
	}
	if patch.Description != nil {
		sets, args = append(sets, "description = ?"), append(args, *patch.Description)
	}
	if len(sets) == 0 {
		return fmt.Errorf("no fields to update")
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx,
		"UPDATE environments SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update environment: %w", mapConstraintErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the environment row only; see Store.DeleteEnvironmentCascade.
func (r *EnvironmentRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM environments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete environment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByProject bulk-deletes all environments under a project and reports
// how many rows went away.
func (r *EnvironmentRepo) DeleteByProject(ctx context.Context, projectID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM environments WHERE project_id = ?`, projectID)
	if err != nil {
		return 0, fmt.Errorf("delete environments: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
