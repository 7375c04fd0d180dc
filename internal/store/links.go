package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ResourceContact links a contact to a resource with a free-form role
// ("owner", "oncall", ...). A (resource, contact) pair appears at most once.
type ResourceContact struct {
	ResourceID int64  `json:"resourceId"`
	ContactID  int64  `json:"contactId"`
	Role       string `json:"role"`
}

// ResourceContactDetail is a joined view used by the detail listing.
type ResourceContactDetail struct {
	ResourceContact
	ResourceName     string `json:"resourceName"`
	ContactFirstName string `json:"contactFirstName"`
	ContactLastName  string `json:"contactLastName"`
	ContactEmail     string `json:"contactEmail"`
}

// LinkRepo provides row access for resource-contact associations.
type LinkRepo struct {
	db *sql.DB
}

// Create inserts an association. Pair uniqueness is enforced by the
// composite primary key.
func (r *LinkRepo) Create(ctx context.Context, link *ResourceContact) error {
	if link.ResourceID <= 0 || link.ContactID <= 0 {
		return fmt.Errorf("resourceId and contactId are required")
	}
	if strings.TrimSpace(link.Role) == "" {
		return fmt.Errorf("role cannot be empty")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO resource_contacts (resource_id, contact_id, role) VALUES (?, ?, ?)
	`, link.ResourceID, link.ContactID, link.Role)
	if err != nil {
		return fmt.Errorf("insert association: %w", mapConstraintErr(err))
	}
	return nil
}

// Get looks up the association for a (resource, contact) pair.
func (r *LinkRepo) Get(ctx context.Context, resourceID, contactID int64) (*ResourceContact, error) {
	var link ResourceContact
	err := r.db.QueryRowContext(ctx, `
		SELECT resource_id, contact_id, role FROM resource_contacts
		WHERE resource_id = ? AND contact_id = ?
	`, resourceID, contactID).Scan(&link.ResourceID, &link.ContactID, &link.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query association: %w", err)
	}
	return &link, nil
}

// List returns associations in insertion order, optionally filtered by
// resource and/or contact (ids > 0 filter).
func (r *LinkRepo) List(ctx context.Context, resourceID, contactID int64) ([]ResourceContact, error) {
	where, args := []string{}, []any{}
	if resourceID > 0 {
		where, args = append(where, "resource_id = ?"), append(args, resourceID)
	}
	if contactID > 0 {
		where, args = append(where, "contact_id = ?"), append(args, contactID)
	}

	query := `SELECT resource_id, contact_id, role FROM resource_contacts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY rowid`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query associations: %w", err)
	}
	defer rows.Close()

	links := []ResourceContact{}
	for rows.Next() {
		var link ResourceContact
		if err := rows.Scan(&link.ResourceID, &link.ContactID, &link.Role); err != nil {
			return nil, fmt.Errorf("scan association: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate associations: %w", err)
	}
	return links, nil
}

// ListDetails returns the joined view ordered by resource name, then
// contact name.
func (r *LinkRepo) ListDetails(ctx context.Context, resourceID, contactID int64) ([]ResourceContactDetail, error) {
	where, args := []string{}, []any{}
	if resourceID > 0 {
		where, args = append(where, "rc.resource_id = ?"), append(args, resourceID)
	}
	if contactID > 0 {
		where, args = append(where, "rc.contact_id = ?"), append(args, contactID)
	}

	query := `
		SELECT rc.resource_id, rc.contact_id, rc.role,
		       r.name, c.first_name, c.last_name, c.email
		FROM resource_contacts rc
		JOIN resources r ON r.id = rc.resource_id
		JOIN contacts c ON c.id = rc.contact_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY r.name COLLATE NOCASE, c.last_name COLLATE NOCASE, c.first_name COLLATE NOCASE`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query association details: %w", err)
	}
	defer rows.Close()

	details := []ResourceContactDetail{}
	for rows.Next() {
		var d ResourceContactDetail
		if err := rows.Scan(&d.ResourceID, &d.ContactID, &d.Role,
			&d.ResourceName, &d.ContactFirstName, &d.ContactLastName, &d.ContactEmail); err != nil {
			return nil, fmt.Errorf("scan association detail: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate association details: %w", err)
	}
	return details, nil
}

// UpdateRole rewrites the role of an existing association.
func (r *LinkRepo) UpdateRole(ctx context.Context, resourceID, contactID int64, role string) error {
	if strings.TrimSpace(role) == "" {
		return fmt.Errorf("role cannot be empty")
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE resource_contacts SET role = ? WHERE resource_id = ? AND contact_id = ?
	`, role, resourceID, contactID)
	if err != nil {
		return fmt.Errorf("update association: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the association for a (resource, contact) pair.
func (r *LinkRepo) Delete(ctx context.Context, resourceID, contactID int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM resource_contacts WHERE resource_id = ? AND contact_id = ?
	`, resourceID, contactID)
	if err != nil {
		return fmt.Errorf("delete association: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByResource bulk-deletes all associations of a resource.
func (r *LinkRepo) DeleteByResource(ctx context.Context, resourceID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM resource_contacts WHERE resource_id = ?`, resourceID)
	if err != nil {
		return 0, fmt.Errorf("delete associations: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// DeleteByContact bulk-deletes all associations of a contact.
func (r *LinkRepo) DeleteByContact(ctx context.Context, contactID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM resource_contacts WHERE contact_id = ?`, contactID)
	if err != nil {
		return 0, fmt.Errorf("delete associations: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
