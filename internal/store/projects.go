package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Project is the root of the catalog hierarchy.
type Project struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProjectPatch carries a partial update; nil fields are left untouched.
type ProjectPatch struct {
	Name        *string
	Description *string
}

// ProjectRepo provides row access for projects.
type ProjectRepo struct {
	db *sql.DB
}

// Create inserts a project and returns it with its assigned id.
// Name uniqueness is enforced by the store's unique index.
func (r *ProjectRepo) Create(ctx context.Context, name, description string) (*Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("project name cannot be empty")
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("project description cannot be empty")
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (name, description) VALUES (?, ?)
	`, name, description)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", mapConstraintErr(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read assigned id: %w", err)
	}
	return &Project{ID: id, Name: name, Description: description}, nil
}

// GetByID looks up a project by id.
func (r *ProjectRepo) GetByID(ctx context.Context, id int64) (*Project, error) {
	var p Project
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description FROM projects WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query project: %w", err)
	}
	return &p, nil
}

// GetByName looks up a project by name, case-insensitively.
func (r *ProjectRepo) GetByName(ctx context.Context, name string) (*Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("project name cannot be empty")
	}
	var p Project
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description FROM projects WHERE name = ?
	`, name).Scan(&p.ID, &p.Name, &p.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query project: %w", err)
	}
	return &p, nil
}

// List returns all projects in insertion order.
func (r *ProjectRepo) List(ctx context.Context) ([]Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description FROM projects ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// Update rewrites only the supplied fields. An empty patch is rejected.
func (r *ProjectRepo) Update(ctx context.Context, id int64, patch ProjectPatch) error {
	sets, args := []string{}, []any{}
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return fmt.Errorf("project name cannot be empty")
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
		"UPDATE projects SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update project: %w", mapConstraintErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the project row only; callers wanting the children gone
// use Store.DeleteProjectCascade.
func (r *ProjectRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
