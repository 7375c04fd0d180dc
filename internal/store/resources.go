package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ResourceTypes is the closed set of accepted resource kinds.
var ResourceTypes = []string{"service", "database", "api", "queue", "cache", "storage"}

// Resource is a monitored unit (service, database, ...) belonging to a
// project + environment pair.
type Resource struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	HealthCheckURL string `json:"healthCheckUrl,omitempty"`
	AliveCheckURL  string `json:"aliveCheckUrl,omitempty"`
	Headers        string `json:"headers,omitempty"`
	IsIHService    bool   `json:"isIhService"`
	Type           string `json:"type"`
	ProjectID      int64  `json:"projectId"`
	EnvID          int64  `json:"envId"`
}

// DecodeHeaders parses the serialized header map. An empty column yields an
// empty map; malformed stored text is surfaced as an error.
func (r *Resource) DecodeHeaders() (map[string]string, error) {
	if strings.TrimSpace(r.Headers) == "" {
		return map[string]string{}, nil
	}
	headers := map[string]string{}
	if err := json.Unmarshal([]byte(r.Headers), &headers); err != nil {
		return nil, fmt.Errorf("parse stored headers for resource %q: %w", r.Name, err)
	}
	return headers, nil
}

// EncodeHeaders serializes a header map for storage. Nil or empty maps
// serialize to the empty string.
func EncodeHeaders(headers map[string]string) (string, error) {
	if len(headers) == 0 {
		return "", nil
	}
	data, err := json.Marshal(headers)
	if err != nil {
		return "", fmt.Errorf("serialize headers: %w", err)
	}
	return string(data), nil
}

// ValidResourceType reports whether t is in the accepted set.
func ValidResourceType(t string) bool {
	for _, v := range ResourceTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ResourcePatch carries a partial update; nil fields are left untouched.
// Clearing an optional field takes an explicit empty string, not omission.
type ResourcePatch struct {
	Name           *string
	Description    *string
	HealthCheckURL *string
	AliveCheckURL  *string
	Headers        *string
	IsIHService    *bool
	Type           *string
}

// ResourceFilter narrows List to an equality-matched scope.
type ResourceFilter struct {
	ProjectID int64
	EnvID     int64
	Type      string
}

// ResourceRepo provides row access for resources.
type ResourceRepo struct {
	db *sql.DB
}

// Create inserts a resource after field and format checks. Scope uniqueness
// of the name is enforced by the (project, env, name) unique index.
func (r *ResourceRepo) Create(ctx context.Context, res *Resource) (*Resource, error) {
	if strings.TrimSpace(res.Name) == "" {
		return nil, fmt.Errorf("resource name cannot be empty")
	}
	if strings.TrimSpace(res.Description) == "" {
		return nil, fmt.Errorf("resource description cannot be empty")
	}
	if !ValidResourceType(res.Type) {
		return nil, fmt.Errorf("invalid resource type %q (want one of %s)", res.Type, strings.Join(ResourceTypes, ", "))
	}
	if res.ProjectID <= 0 || res.EnvID <= 0 {
		return nil, fmt.Errorf("resource projectId and envId are required")
	}
	if res.Headers != "" {
		if _, err := res.DecodeHeaders(); err != nil {
			return nil, err
		}
	}

	out, err := r.db.ExecContext(ctx, `
		INSERT INTO resources (name, description, health_check_url, alive_check_url, headers, is_ih_service, type, project_id, env_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, res.Name, res.Description, res.HealthCheckURL, res.AliveCheckURL, res.Headers, res.IsIHService, res.Type, res.ProjectID, res.EnvID)
	if err != nil {
		return nil, fmt.Errorf("insert resource: %w", mapConstraintErr(err))
	}
	id, err := out.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read assigned id: %w", err)
	}
	created := *res
	created.ID = id
	return &created, nil
}

const resourceColumns = `id, name, description, health_check_url, alive_check_url, headers, is_ih_service, type, project_id, env_id`

func scanResource(scan func(dest ...any) error) (*Resource, error) {
	var res Resource
	err := scan(&res.ID, &res.Name, &res.Description, &res.HealthCheckURL, &res.AliveCheckURL,
		&res.Headers, &res.IsIHService, &res.Type, &res.ProjectID, &res.EnvID)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetByID looks up a resource by id.
func (r *ResourceRepo) GetByID(ctx context.Context, id int64) (*Resource, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = ?`, id)
	res, err := scanResource(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query resource: %w", err)
	}
	return res, nil
}

// GetByName looks up a resource by name within a (project, environment)
// scope, case-insensitively.
func (r *ResourceRepo) GetByName(ctx context.Context, projectID, envID int64, name string) (*Resource, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("resource name cannot be empty")
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT `+resourceColumns+` FROM resources
		WHERE project_id = ? AND env_id = ? AND name = ?
	`, projectID, envID, name)
	res, err := scanResource(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query resource: %w", err)
	}
	return res, nil
}

// List returns resources matching the filter in insertion order. A zero
// filter returns everything; no match yields an empty slice, not an error.
func (r *ResourceRepo) List(ctx context.Context, f ResourceFilter) ([]Resource, error) {
	where, args := []string{}, []any{}
	if f.ProjectID > 0 {
		where, args = append(where, "project_id = ?"), append(args, f.ProjectID)
	}
	if f.EnvID > 0 {
		where, args = append(where, "env_id = ?"), append(args, f.EnvID)
	}
	if f.Type != "" {
		where, args = append(where, "type = ?"), append(args, f.Type)
	}

	query := `SELECT ` + resourceColumns + ` FROM resources`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query resources: %w", err)
	}
	defer rows.Close()

	resources := []Resource{}
	for rows.Next() {
		res, err := scanResource(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		resources = append(resources, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resources: %w", err)
	}
	return resources, nil
}

// Update rewrites only the supplied fields. An empty patch is rejected.
func (r *ResourceRepo) Update(ctx context.Context, id int64, patch ResourcePatch) error {
	sets, args := []string{}, []any{}
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return fmt.Errorf("resource name cannot be empty")
		}
		sets, args = append(sets, "name = ?"), append(args, *patch.Name)
	}
	if patch.Description != nil {
		sets, args = append(sets, "description = ?"), append(args, *patch.Description)
	}
	if patch.HealthCheckURL != nil {
		sets, args = append(sets, "health_check_url = ?"), append(args, *patch.HealthCheckURL)
	}
	if patch.AliveCheckURL != nil {
		sets, args = append(sets, "alive_check_url = ?"), append(args, *patch.AliveCheckURL)
	}
	if patch.Headers != nil {
		if *patch.Headers != "" {
			tmp := Resource{Headers: *patch.Headers}
			if _, err := tmp.DecodeHeaders(); err != nil {
				return err
			}
		}
		sets, args = append(sets, "headers = ?"), append(args, *patch.Headers)
	}
	if patch.IsIHService != nil {
		sets, args = append(sets, "is_ih_service = ?"), append(args, *patch.IsIHService)
	}
	if patch.Type != nil {
		if !ValidResourceType(*patch.Type) {
			return fmt.Errorf("invalid resource type %q (want one of %s)", *patch.Type, strings.Join(ResourceTypes, ", "))
		}
		sets, args = append(sets, "type = ?"), append(args, *patch.Type)
	}
	if len(sets) == 0 {
		return fmt.Errorf("no fields to update")
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx,
		"UPDATE resources SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update resource: %w", mapConstraintErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a resource row by id.
func (r *ResourceRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM resources WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByProject bulk-deletes a project's resources, returning the count.
func (r *ResourceRepo) DeleteByProject(ctx context.Context, projectID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM resources WHERE project_id = ?`, projectID)
	if err != nil {
		return 0, fmt.Errorf("delete resources: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// DeleteByEnvironment bulk-deletes an environment's resources, returning the count.
func (r *ResourceRepo) DeleteByEnvironment(ctx context.Context, envID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM resources WHERE env_id = ?`, envID)
	if err != nil {
		return 0, fmt.Errorf("delete resources: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
