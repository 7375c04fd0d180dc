package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// Contact is a person that can be associated with resources.
type Contact struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// ContactPatch carries a partial update; nil fields are left untouched.
type ContactPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
}

// ContactRepo provides row access for contacts.
type ContactRepo struct {
	db *sql.DB
}

func validEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("malformed email address %q", email)
	}
	return nil
}

// Create inserts a contact after format checks. Email uniqueness is
// enforced by the store's unique index.
func (r *ContactRepo) Create(ctx context.Context, c *Contact) (*Contact, error) {
	if strings.TrimSpace(c.FirstName) == "" {
		return nil, fmt.Errorf("contact firstName cannot be empty")
	}
	if strings.TrimSpace(c.LastName) == "" {
		return nil, fmt.Errorf("contact lastName cannot be empty")
	}
	if err := validEmail(c.Email); err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO contacts (first_name, last_name, email, phone) VALUES (?, ?, ?, ?)
	`, c.FirstName, c.LastName, c.Email, c.Phone)
	if err != nil {
		return nil, fmt.Errorf("insert contact: %w", mapConstraintErr(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read assigned id: %w", err)
	}
	created := *c
	created.ID = id
	return &created, nil
}

// GetByID looks up a contact by id.
func (r *ContactRepo) GetByID(ctx context.Context, id int64) (*Contact, error) {
	var c Contact
	err := r.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, phone FROM contacts WHERE id = ?
	`, id).Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query contact: %w", err)
	}
	return &c, nil
}

// GetByEmail looks up a contact by email, case-insensitively.
func (r *ContactRepo) GetByEmail(ctx context.Context, email string) (*Contact, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("contact email cannot be empty")
	}
	var c Contact
	err := r.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, phone FROM contacts WHERE email = ?
	`, email).Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query contact: %w", err)
	}
	return &c, nil
}

// List returns all contacts ordered by last name, then first name.
func (r *ContactRepo) List(ctx context.Context) ([]Contact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, email, phone FROM contacts
		ORDER BY last_name COLLATE NOCASE, first_name COLLATE NOCASE
	`)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	contacts := []Contact{}
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return contacts, nil
}

// Update rewrites only the supplied fields. An empty patch is rejected.
func (r *ContactRepo) Update(ctx context.Context, id int64, patch ContactPatch) error {
	sets, args := []string{}, []any{}
	if patch.FirstName != nil {
		if strings.TrimSpace(*patch.FirstName) == "" {
			return fmt.Errorf("contact firstName cannot be empty")
		}
		sets, args = append(sets, "first_name = ?"), append(args, *patch.FirstName)
	}
	if patch.LastName != nil {
		if strings.TrimSpace(*patch.LastName) == "" {
			return fmt.Errorf("contact lastName cannot be empty")
		}
		sets, args = append(sets, "last_name = ?"), append(args, *patch.LastName)
	}
	if patch.Email != nil {
		if err := validEmail(*patch.Email); err != nil {
			return err
		}
		sets, args = append(sets, "email = ?"), append(args, *patch.Email)
	}
	if patch.Phone != nil {
		sets, args = append(sets, "phone = ?"), append(args, *patch.Phone)
	}
	if len(sets) == 0 {
		return fmt.Errorf("no fields to update")
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx,
		"UPDATE contacts SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update contact: %w", mapConstraintErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a contact row by id.
func (r *ContactRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
