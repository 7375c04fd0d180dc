package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "catalog_test_*.db")
	require.NoError(t, err)
	tmpFile.Close()

	db, err := sql.Open("sqlite3", tmpFile.Name())
	require.NoError(t, err)

	st, err := New(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		st.Close()
		os.Remove(tmpFile.Name())
	})
	return st
}

func TestProjectCreateAndGet(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	created, err := st.Projects.Create(ctx, "Acme", "Flagship project")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	byName, err := st.Projects.GetByName(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)
	assert.Equal(t, "Acme", byName.Name)
	assert.Equal(t, "Flagship project", byName.Description)

	byID, err := st.Projects.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, byName, byID)
}

func TestProjectCreateRejectsEmptyFields(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	_, err := st.Projects.Create(ctx, "", "desc")
	assert.Error(t, err)
	_, err = st.Projects.Create(ctx, "name", "  ")
	assert.Error(t, err)
}

func TestProjectDuplicateNameCaseInsensitive(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	_, err := st.Projects.Create(ctx, "Acme", "first")
	require.NoError(t, err)

	_, err = st.Projects.Create(ctx, "acme", "second")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))

	projects, err := st.Projects.List(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestProjectUpdatePartialPatch(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	p, err := st.Projects.Create(ctx, "Acme", "before")
	require.NoError(t, err)

	desc := "after"
	require.NoError(t, st.Projects.Update(ctx, p.ID, ProjectPatch{Description: &desc}))

	got, err := st.Projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, "after", got.Description)

	err = st.Projects.Update(ctx, p.ID, ProjectPatch{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fields to update")
}

func TestProjectUpdateNotFound(t *testing.T) {
	st := setupTestStore(t)
	name := "x"
	err := st.Projects.Update(context.Background(), 999999, ProjectPatch{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnvironmentScopedUniqueness(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	p1, err := st.Projects.Create(ctx, "one", "d")
	require.NoError(t, err)
	p2, err := st.Projects.Create(ctx, "two", "d")
	require.NoError(t, err)

	_, err = st.Environments.Create(ctx, "prod", "", p1.ID)
	require.NoError(t, err)

	// Same name in a different project is fine.
	_, err = st.Environments.Create(ctx, "prod", "", p2.ID)
	require.NoError(t, err)

	// Same name in the same project collides, case-insensitively.
	_, err = st.Environments.Create(ctx, "PROD", "", p1.ID)
	assert.ErrorIs(t, err, ErrDuplicate)

	envs, err := st.Environments.List(ctx, p1.ID)
	require.NoError(t, err)
	assert.Len(t, envs, 1)
}

func TestEnvironmentListUnscoped(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	p, err := st.Projects.Create(ctx, "p", "d")
	require.NoError(t, err)
	_, err = st.Environments.Create(ctx, "dev", "", p.ID)
	require.NoError(t, err)
	_, err = st.Environments.Create(ctx, "prod", "", p.ID)
	require.NoError(t, err)

	envs, err := st.Environments.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, envs, 2)
	// Insertion order.
	assert.Equal(t, "dev", envs[0].Name)
	assert.Equal(t, "prod", envs[1].Name)
}

func seedScope(t *testing.T, st *Store) (projectID, envID int64) {
	t.Helper()
	ctx := context.Background()
	p, err := st.Projects.Create(ctx, "scope", "d")
	require.NoError(t, err)
	e, err := st.Environments.Create(ctx, "prod", "", p.ID)
	require.NoError(t, err)
	return p.ID, e.ID
}

func TestResourceRoundTrip(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()
	projectID, envID := seedScope(t, st)

	headers, err := EncodeHeaders(map[string]string{"apikey": "s3cret", "X-Trace": "on"})
	require.NoError(t, err)

	created, err := st.Resources.Create(ctx, &Resource{
		Name:           "billing-api",
		Description:    "Billing backend",
		HealthCheckURL: "http://billing.internal/health",
		Headers:        headers,
		IsIHService:    true,
		Type:           "api",
		ProjectID:      projectID,
		EnvID:          envID,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := st.Resources.GetByName(ctx, projectID, envID, "Billing-API")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.IsIHService)

	decoded, err := got.DecodeHeaders()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"apikey": "s3cret", "X-Trace": "on"}, decoded)
}

func TestResourceInvalidType(t *testing.T) {
	st := setupTestStore(t)
	projectID, envID := seedScope(t, st)

	_, err := st.Resources.Create(context.Background(), &Resource{
		Name: "x", Description: "d", Type: "mainframe", ProjectID: projectID, EnvID: envID,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid resource type")
}

func TestResourceScopedUniqueness(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()
	projectID, envID := seedScope(t, st)

	_, err := st.Resources.Create(ctx, &Resource{
		Name: "api", Description: "d", Type: "api", ProjectID: projectID, EnvID: envID,
	})
	require.NoError(t, err)

	_, err = st.Resources.Create(ctx, &Resource{
		Name: "API", Description: "d", Type: "api", ProjectID: projectID, EnvID: envID,
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestResourceListFilterNoMatches(t *testing.T) {
	st := setupTestStore(t)

	resources, err := st.Resources.List(context.Background(), ResourceFilter{ProjectID: 42, EnvID: 7})
	require.NoError(t, err)
	assert.NotNil(t, resources)
	assert.Empty(t, resources)
}

func TestResourceUpdateEmptyPatch(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()
	projectID, envID := seedScope(t, st)

	created, err := st.Resources.Create(ctx, &Resource{
		Name: "api", Description: "d", Type: "api", ProjectID: projectID, EnvID: envID,
	})
	require.NoError(t, err)

	err = st.Resources.Update(ctx, created.ID, ResourcePatch{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fields to update")

	got, err := st.Resources.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "api", got.Name)
}

func TestResourceUpdateRejectsMalformedHeaders(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()
	projectID, envID := seedScope(t, st)

	created, err := st.Resources.Create(ctx, &Resource{
		Name: "api", Description: "d", Type: "api", ProjectID: projectID, EnvID: envID,
	})
	require.NoError(t, err)

	bad := "{not json"
	err = st.Resources.Update(ctx, created.ID, ResourcePatch{Headers: &bad})
	assert.Error(t, err)
}

func TestContactEmailValidationAndUniqueness(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	_, err := st.Contacts.Create(ctx, &Contact{FirstName: "Ada", LastName: "Lovelace", Email: "not-an-email"})
	assert.Error(t, err)

	first, err := st.Contacts.Create(ctx, &Contact{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	_, err = st.Contacts.Create(ctx, &Contact{FirstName: "A.", LastName: "L.", Email: "ADA@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestContactListOrdering(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	for _, c := range []Contact{
		{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"},
		{FirstName: "Alan", LastName: "Turing", Email: "alan@example.com"},
		{FirstName: "Ada", LastName: "Hopper", Email: "ada.h@example.com"},
	} {
		c := c
		_, err := st.Contacts.Create(ctx, &c)
		require.NoError(t, err)
	}

	contacts, err := st.Contacts.List(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 3)
	assert.Equal(t, "Ada", contacts[0].FirstName)
	assert.Equal(t, "Grace", contacts[1].FirstName)
	assert.Equal(t, "Turing", contacts[2].LastName)
}

func TestContactDeleteNotFound(t *testing.T) {
	st := setupTestStore(t)
	err := st.Contacts.Delete(context.Background(), 999999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLinkUniquePair(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()
	projectID, envID := seedScope(t, st)

	res, err := st.Resources.Create(ctx, &Resource{
		Name: "api", Description: "d", Type: "api", ProjectID: projectID, EnvID: envID,
	})
	require.NoError(t, err)
	contact, err := st.Contacts.Create(ctx, &Contact{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})
	require.NoError(t, err)

	require.NoError(t, st.Links.Create(ctx, &ResourceContact{ResourceID: res.ID, ContactID: contact.ID, Role: "owner"}))

	err = st.Links.Create(ctx, &ResourceContact{ResourceID: res.ID, ContactID: contact.ID, Role: "backup"})
	assert.ErrorIs(t, err, ErrDuplicate)

	link, err := st.Links.Get(ctx, res.ID, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner", link.Role)
}

func TestLinkDetailsOrdering(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()
	projectID, envID := seedScope(t, st)

	zeta, err := st.Resources.Create(ctx, &Resource{Name: "zeta", Description: "d", Type: "service", ProjectID: projectID, EnvID: envID})
	require.NoError(t, err)
	alpha, err := st.Resources.Create(ctx, &Resource{Name: "alpha", Description: "d", Type: "service", ProjectID: projectID, EnvID: envID})
	require.NoError(t, err)
	contact, err := st.Contacts.Create(ctx, &Contact{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})
	require.NoError(t, err)

	require.NoError(t, st.Links.Create(ctx, &ResourceContact{ResourceID: zeta.ID, ContactID: contact.ID, Role: "owner"}))
	require.NoError(t, st.Links.Create(ctx, &ResourceContact{ResourceID: alpha.ID, ContactID: contact.ID, Role: "owner"}))

	details, err := st.Links.ListDetails(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "alpha", details[0].ResourceName)
	assert.Equal(t, "zeta", details[1].ResourceName)
}

func TestDeleteProjectCascade(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	p, err := st.Projects.Create(ctx, "doomed", "d")
	require.NoError(t, err)
	e, err := st.Environments.Create(ctx, "prod", "", p.ID)
	require.NoError(t, err)
	res, err := st.Resources.Create(ctx, &Resource{Name: "api", Description: "d", Type: "api", ProjectID: p.ID, EnvID: e.ID})
	require.NoError(t, err)
	contact, err := st.Contacts.Create(ctx, &Contact{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})
	require.NoError(t, err)
	require.NoError(t, st.Links.Create(ctx, &ResourceContact{ResourceID: res.ID, ContactID: contact.ID, Role: "owner"}))

	counts, err := st.DeleteProjectCascade(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Environments)
	assert.Equal(t, int64(1), counts.Resources)
	assert.Equal(t, int64(1), counts.Links)

	_, err = st.Projects.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.Environments.GetByID(ctx, e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.Resources.GetByID(ctx, res.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Contacts survive a project cascade; only the links go.
	_, err = st.Contacts.GetByID(ctx, contact.ID)
	assert.NoError(t, err)
}

func TestDeleteProjectCascadeNotFound(t *testing.T) {
	st := setupTestStore(t)
	_, err := st.DeleteProjectCascade(context.Background(), 999999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteEnvironmentCascade(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	p, err := st.Projects.Create(ctx, "p", "d")
	require.NoError(t, err)
	keep, err := st.Environments.Create(ctx, "dev", "", p.ID)
	require.NoError(t, err)
	doomed, err := st.Environments.Create(ctx, "prod", "", p.ID)
	require.NoError(t, err)
	_, err = st.Resources.Create(ctx, &Resource{Name: "api", Description: "d", Type: "api", ProjectID: p.ID, EnvID: doomed.ID})
	require.NoError(t, err)

	counts, err := st.DeleteEnvironmentCascade(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Resources)

	_, err = st.Environments.GetByID(ctx, keep.ID)
	assert.NoError(t, err)
}
