package service

import (
	"context"
	"testing"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_SeenLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acme := testutil.CreateCompany(t, env.db, "Acme")
	ann := testutil.CreateProfile(t, env.db, acme.ID, domain.ProfileRoleAdmin, "Ann")
	bob := testutil.CreateProfile(t, env.db, acme.ID, domain.ProfileRoleUser, "Bob")
	asAnn := testutil.AsUser(ctx, ann)

	first, err := env.notifications.Create(ctx, &domain.CreateNotificationRequest{ProfileID: ann.ID, Content: "one"})
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationTypeGeneral, first.Type)
	_, err = env.notifications.Create(ctx, &domain.CreateNotificationRequest{ProfileID: ann.ID, Content: "two"})
	require.NoError(t, err)
	_, err = env.notifications.Create(ctx, &domain.CreateNotificationRequest{ProfileID: bob.ID, Content: "bob's"})
	require.NoError(t, err)

	_, err = env.notifications.Create(ctx, &domain.CreateNotificationRequest{ProfileID: ann.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)

	count, err := env.notifications.Count(asAnn)
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationCountDTO{Total: 2, Unread: 2}, *count)

	require.NoError(t, env.notifications.MarkSeen(asAnn, first.ID))
	unread, err := env.notifications.List(asAnn, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "two", unread[0].Content)

	assert.ErrorIs(t, env.notifications.MarkSeen(testutil.AsUser(ctx, bob), first.ID), ErrNotFound)

	n, err := env.notifications.MarkAllSeen(asAnn)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = env.notifications.MarkAllSeen(asAnn)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, env.notifications.Delete(asAnn, first.ID))
	all, err := env.notifications.List(asAnn, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	bobs, err := env.notifications.Count(testutil.AsUser(ctx, bob))
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationCountDTO{Total: 1, Unread: 1}, *bobs)
}
