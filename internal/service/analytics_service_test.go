package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pulse-crm/crm-api/internal/analytics"
	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jsonKeys returns the key structure of v, descending into objects only
func jsonKeys(t *testing.T, v interface{}) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var tree map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &tree))
	return shape(tree).(map[string]interface{})
}

func shape(v interface{}) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, child := range x {
			out[k] = shape(child)
		}
		return out
	case []interface{}:
		return "array"
	case nil:
		return "null"
	default:
		return "scalar"
	}
}

func TestAnalyticsService_EmptyTenantShape(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acme := testutil.CreateCompany(t, env.db, "Acme")
	ann := testutil.CreateProfile(t, env.db, acme.ID, domain.ProfileRoleAdmin, "Ann")

	page, err := env.analytics.Company(testutil.AsUser(ctx, ann))
	require.NoError(t, err)

	assert.Equal(t, acme.ID, page.Company.ID)
	assert.Zero(t, page.Deals.Total)
	assert.Equal(t, "0", page.Tasks.CompletionRate)
	assert.Len(t, page.Deals.Pipeline, len(domain.DealStages))

	got := jsonKeys(t, page)
	want := jsonKeys(t, analytics.EmptyCompanyAnalytics())
	for _, section := range []string{"contacts", "deals", "interactions", "products", "tasks", "team", "messages"} {
		assert.Equal(t, want[section], got[section], section)
	}
}

func TestAnalyticsService_PopulatedPage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acme := testutil.CreateCompany(t, env.db, "Acme")
	other := testutil.CreateCompany(t, env.db, "Other")
	ann := testutil.CreateProfile(t, env.db, acme.ID, domain.ProfileRoleAdmin, "Ann")
	bob := testutil.CreateProfile(t, env.db, acme.ID, domain.ProfileRoleUser, "Bob")
	zed := testutil.CreateProfile(t, env.db, other.ID, domain.ProfileRoleAdmin, "Zed")

	testutil.CreateContact(t, env.db, ann.ID, "c1", fixedNow.AddDate(0, 0, -1))
	testutil.CreateContact(t, env.db, bob.ID, "c2", fixedNow.AddDate(0, -1, 0))
	testutil.CreateContact(t, env.db, zed.ID, "foreign", fixedNow)

	testutil.CreateDeal(t, env.db, ann.ID, "won", domain.DealStageClosedWon, 1000)
	testutil.CreateDeal(t, env.db, bob.ID, "open", domain.DealStageProposal, 500)
	testutil.CreateDeal(t, env.db, zed.ID, "foreign", domain.DealStageClosedWon, 99999)

	testutil.CreateInteraction(t, env.db, ann.ID, "call", fixedNow.Add(-time.Hour))
	testutil.CreateTask(t, env.db, bob.ID, "late", domain.TaskStatusPending, testutil.Date(fixedNow.AddDate(0, 0, -2)))

	room := testutil.CreateRoom(t, env.db, ann.ID, "company", bob.ID)
	require.NoError(t, env.db.Model(acme).Update("room_id", room.ID).Error)
	testutil.CreateMessage(t, env.db, room.ID, bob.ID, "morning", fixedNow.Add(-2*time.Hour))

	page, err := env.analytics.Company(testutil.AsUser(ctx, ann))
	require.NoError(t, err)

	assert.Equal(t, 2, page.Contacts.Total)
	require.Len(t, page.Contacts.ByCreator, 2)
	assert.Equal(t, 2, page.Deals.Total)
	assert.InDelta(t, 1500, page.Deals.TotalValue, 0.001)
	require.Len(t, page.Deals.RecentWins, 1)
	assert.Equal(t, "won", page.Deals.RecentWins[0].Title)
	assert.Equal(t, 1, page.Interactions.Total)
	require.Len(t, page.Tasks.Overdue, 1)
	assert.Equal(t, 2, page.Team.Total)
	require.NotEmpty(t, page.Team.TopPerformers)
	assert.Equal(t, ann.ID, page.Team.TopPerformers[0].ProfileID)
	assert.Equal(t, domain.MessagesSummaryDTO{UnreadCount: 1, TotalToday: 1}, page.Messages)
}

func TestAnalyticsService_RequiresProfile(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.analytics.Company(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}
