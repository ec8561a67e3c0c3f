package service

import (
	"context"
	"testing"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactService_TenantIsolation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acme := testutil.CreateCompany(t, env.db, "Acme")
	other := testutil.CreateCompany(t, env.db, "Other")
	ann := testutil.CreateProfile(t, env.db, acme.ID, domain.ProfileRoleAdmin, "Ann")
	zed := testutil.CreateProfile(t, env.db, other.ID, domain.ProfileRoleAdmin, "Zed")

	contact := testutil.CreateContact(t, env.db, ann.ID, "Kari Nordmann", fixedNow)
	asZed := testutil.AsUser(ctx, zed)

	_, err := env.contacts.GetByID(asZed, contact.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	name := "Hijacked"
	_, err = env.contacts.Update(asZed, contact.ID, &domain.UpdateContactRequest{Fullname: &name})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, env.contacts.Delete(asZed, contact.ID), ErrNotFound)

	list, err := env.contacts.List(asZed)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}

func TestContactService_CRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acme := testutil.CreateCompany(t, env.db, "Acme")
	ann := testutil.CreateProfile(t, env.db, acme.ID, domain.ProfileRoleAdmin, "Ann")
	asAnn := testutil.AsUser(ctx, ann)

	created, err := env.contacts.Create(asAnn, &domain.CreateContactRequest{Fullname: "Ola Nordmann", Email: "ola@example.com"})
	require.NoError(t, err)
	assert.Equal(t, ann.ID, created.CreatedBy)

	phone := "+47 123"
	updated, err := env.contacts.Update(asAnn, created.ID, &domain.UpdateContactRequest{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, "Ola Nordmann", updated.Fullname)

	unchanged, err := env.contacts.Update(asAnn, created.ID, &domain.UpdateContactRequest{})
	require.NoError(t, err)
	assert.Equal(t, updated, unchanged)

	found, err := env.contacts.Search(asAnn, "nord", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)

	require.NoError(t, env.contacts.Delete(asAnn, created.ID))
	_, err = env.contacts.GetByID(asAnn, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContactService_Stats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acme := testutil.CreateCompany(t, env.db, "Acme")
	ann := testutil.CreateProfile(t, env.db, acme.ID, domain.ProfileRoleAdmin, "Ann")

	testutil.CreateContact(t, env.db, ann.ID, "old", fixedNow.AddDate(0, -2, 0))
	testutil.CreateContact(t, env.db, ann.ID, "feb", fixedNow.AddDate(0, -1, 0))
	testutil.CreateContact(t, env.db, ann.ID, "march 1", fixedNow.AddDate(0, 0, -14))
	testutil.CreateContact(t, env.db, ann.ID, "march 2", fixedNow)

	stats, err := env.contacts.Stats(testutil.AsUser(ctx, ann))
	require.NoError(t, err)
	assert.Equal(t, domain.ContactStatsDTO{Total: 4, NewThisMonth: 2, GrowthRate: "50.0"}, *stats)
}
