package service

import (
	"context"
	"testing"
	"time"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomService_OverviewOrdersByActivity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acme := testutil.CreateCompany(t, env.db, "Acme")
	ann := testutil.CreateProfile(t, env.db, acme.ID, domain.ProfileRoleAdmin, "Ann")
	bob := testutil.CreateProfile(t, env.db, acme.ID, domain.ProfileRoleUser, "Bob")

	quiet := testutil.CreateRoom(t, env.db, ann.ID, "quiet", bob.ID)
	busy := testutil.CreateRoom(t, env.db, ann.ID, "busy", bob.ID)
	older := testutil.CreateRoom(t, env.db, ann.ID, "older", bob.ID)

	base := time.Now().UTC().Add(time.Hour)
	testutil.CreateMessage(t, env.db, older.ID, ann.ID, "a while ago", base)
	testutil.CreateMessage(t, env.db, busy.ID, ann.ID, "first", base.Add(time.Minute))
	last := testutil.CreateMessage(t, env.db, busy.ID, ann.ID, "second", base.Add(2*time.Minute))

	overview, err := env.rooms.Overview(testutil.AsUser(ctx, bob))
	require.NoError(t, err)
	require.Len(t, overview, 3)

	assert.Equal(t, []int64{busy.ID, older.ID, quiet.ID},
		[]int64{overview[0].ID, overview[1].ID, overview[2].ID})

	require.NotNil(t, overview[0].LatestMessage)
	assert.Equal(t, last.ID, overview[0].LatestMessage.ID)
	assert.Equal(t, 2, overview[0].UnreadCount)
	assert.Equal(t, 1, overview[1].UnreadCount)
	assert.Nil(t, overview[2].LatestMessage)
	assert.Zero(t, overview[2].UnreadCount)

	mine, err := env.rooms.Overview(testutil.AsUser(ctx, ann))
	require.NoError(t, err)
	for _, r := range mine {
		assert.Zero(t, r.UnreadCount, "sender has nothing unread in %s", r.Name)
	}
}

func TestRoomService_CreateAndMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acme := testutil.CreateCompany(t, env.db, "Acme")
	other := testutil.CreateCompany(t, env.db, "Other")
	ann := testutil.CreateProfile(t, env.db, acme.ID, domain.ProfileRoleAdmin, "Ann")
	bob := testutil.CreateProfile(t, env.db, acme.ID, domain.ProfileRoleUser, "Bob")
	zed := testutil.CreateProfile(t, env.db, other.ID, domain.ProfileRoleUser, "Zed")

	_, err := env.rooms.Create(testutil.AsUser(ctx, ann), &domain.CreateRoomRequest{Name: "x", MemberIDs: []int64{zed.ID}})
	assert.ErrorIs(t, err, ErrInvalidInput, "members must share the company")

	room, err := env.rooms.Create(testutil.AsUser(ctx, ann), &domain.CreateRoomRequest{
		Name:      " deals ",
		MemberIDs: []int64{bob.ID, bob.ID, ann.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "deals", room.Name)

	members, err := env.rooms.Members(testutil.AsUser(ctx, bob), room.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	err = env.rooms.Delete(testutil.AsUser(ctx, bob), room.ID)
	assert.ErrorIs(t, err, ErrForbidden, "only the creator deletes")

	err = env.rooms.RemoveMember(testutil.AsUser(ctx, bob), room.ID, ann.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, env.rooms.Leave(testutil.AsUser(ctx, bob), room.ID))
	_, err = env.rooms.Members(testutil.AsUser(ctx, bob), room.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, env.rooms.Delete(testutil.AsUser(ctx, ann), room.ID))
	overview, err := env.rooms.Overview(testutil.AsUser(ctx, ann))
	require.NoError(t, err)
	assert.Empty(t, overview)
	assert.NotNil(t, overview)
}
