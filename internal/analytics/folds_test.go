package analytics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

var fixedNow = time.Date(2024, time.March, 15, 14, 30, 0, 0, time.UTC)

func day(offset int) *datatypes.Date {
	d := datatypes.Date(time.Date(2024, time.March, 15+offset, 0, 0, 0, 0, time.UTC))
	return &d
}

func TestRate(t *testing.T) {
	tests := []struct {
		matching, total int
		want            string
	}{
		{0, 0, "0"},
		{5, 0, "0"},
		{3, 12, "25.0"},
		{1, 3, "33.3"},
		{2, 3, "66.7"},
		{4, 4, "100.0"},
		{0, 7, "0.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Rate(tt.matching, tt.total), "Rate(%d, %d)", tt.matching, tt.total)
	}
}

func TestPerDay(t *testing.T) {
	assert.Equal(t, "0", perDay(0, 30))
	assert.Equal(t, "1.0", perDay(30, 30))
	assert.Equal(t, "0.1", perDay(3, 30))
}

func TestTimeBoundaries(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	now := time.Date(2024, time.March, 15, 0, 30, 0, 0, loc)

	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, loc), MonthStart(now))
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, loc), Today(now))
	assert.Equal(t, now.Add(-7*24*time.Hour), Since(now, 7))

	boundary := Since(now, 7)
	assert.True(t, AtOrAfter(boundary, boundary), "boundary is inclusive")
	assert.False(t, AtOrAfter(boundary.Add(-time.Nanosecond), boundary))
}

func TestTopN_KeepsInputOrderForTies(t *testing.T) {
	type item struct {
		name  string
		value float64
	}
	items := []item{{"a", 10}, {"b", 20}, {"c", 10}, {"d", 20}, {"e", 5}}

	top := TopN(items, 3, func(i item) float64 { return i.value })

	require.Len(t, top, 3)
	assert.Equal(t, []string{"b", "d", "a"}, []string{top[0].name, top[1].name, top[2].name})
	assert.Equal(t, "a", items[0].name, "input must not be reordered")

	assert.NotNil(t, TopN[item](nil, 5, func(i item) float64 { return i.value }))
}

func TestUnreadCount(t *testing.T) {
	// Messages 1 (from A) and 2 (from B); A has viewed 2. Candidates for A are
	// the messages not sent by A.
	assert.Equal(t, 0, UnreadCount([]int64{2}, []int64{2}))
	assert.Equal(t, 1, UnreadCount([]int64{1}, []int64{2}), "B has not viewed message 1")
	assert.Equal(t, 2, UnreadCount([]int64{3, 4}, nil))
	assert.Equal(t, 0, UnreadCount(nil, []int64{1, 2}))
}

func TestDealPipeline_AllStagesPresent(t *testing.T) {
	deals := []domain.Deal{
		{Stage: domain.DealStageLead, Value: 100},
		{Stage: domain.DealStageLead, Value: 300},
		{Stage: domain.DealStageClosedWon, Value: 1000},
	}

	pipeline := DealPipeline(deals)

	require.Len(t, pipeline, 6)
	for i, stage := range domain.DealStages {
		assert.Equal(t, stage, pipeline[i].Stage)
	}
	assert.Equal(t, 2, pipeline[0].Count)
	assert.Equal(t, 400.0, pipeline[0].TotalValue)
	assert.Equal(t, 200.0, pipeline[0].AverageValue)
	assert.Equal(t, 1, pipeline[4].Count)
	for _, i := range []int{1, 2, 3, 5} {
		assert.Zero(t, pipeline[i].Count)
		assert.Zero(t, pipeline[i].AverageValue)
	}

	summary := SummarizePipeline(deals)
	assert.Equal(t, 3, summary.TotalDeals)
	assert.Equal(t, 1400.0, summary.TotalValue)
	assert.Equal(t, 1, summary.WonDeals)
	assert.Equal(t, 1000.0, summary.WonValue)
	assert.Equal(t, "33.3", summary.ConversionRate)
}

func TestDealAnalytics(t *testing.T) {
	base := fixedNow.Add(-48 * time.Hour)
	deals := []domain.Deal{
		{ID: 1, Stage: domain.DealStageClosedWon, Value: 50, UpdatedAt: base},
		{ID: 2, Stage: domain.DealStageClosedLost, Value: 900, UpdatedAt: base},
		{ID: 3, Stage: domain.DealStageProposal, Value: 200, UpdatedAt: base},
		{ID: 4, Stage: domain.DealStageClosedWon, Value: 75, UpdatedAt: base.Add(time.Hour)},
	}

	got := DealAnalytics(deals)

	assert.Equal(t, 4, got.Total)
	assert.Equal(t, 1225.0, got.TotalValue)
	assert.Len(t, got.Pipeline, 6)
	assert.Equal(t, 2, got.ByStage["closed_won"])
	assert.Equal(t, 0, got.ByStage["lead"])

	require.Len(t, got.RecentWins, 2)
	assert.Equal(t, int64(4), got.RecentWins[0].ID)

	ids := make([]int64, 0, len(got.TopDeals))
	for _, d := range got.TopDeals {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []int64{3, 4, 1}, ids, "closed_lost excluded, by value desc")
}

func TestPartitionTasks(t *testing.T) {
	tasks := []domain.Task{
		{ID: 1, Status: domain.TaskStatusPending, DueDate: day(-3)},
		{ID: 2, Status: domain.TaskStatusCompleted, DueDate: day(-5)},
		{ID: 3, Status: domain.TaskStatusInProgress, DueDate: day(-10)},
		{ID: 4, Status: domain.TaskStatusPending, DueDate: day(0)},
		{ID: 5, Status: domain.TaskStatusPending, DueDate: day(7)},
		{ID: 6, Status: domain.TaskStatusPending, DueDate: day(8)},
		{ID: 7, Status: domain.TaskStatusPending},
		{ID: 8, Status: domain.TaskStatusCanceled, DueDate: day(2)},
		{ID: 9, Status: domain.TaskStatusPending, DueDate: day(3)},
	}

	overdue, upcoming := PartitionTasks(tasks, fixedNow)

	assert.Equal(t, []int64{3, 1}, taskIDs(overdue))
	assert.Equal(t, []int64{4, 9, 5}, taskIDs(upcoming))
}

func TestPartitionTasks_CapsUpcoming(t *testing.T) {
	var tasks []domain.Task
	for i := 0; i < 15; i++ {
		tasks = append(tasks, domain.Task{ID: int64(i + 1), Status: domain.TaskStatusPending, DueDate: day(i % 7)})
	}

	overdue, upcoming := PartitionTasks(tasks, fixedNow)

	assert.Empty(t, overdue)
	assert.NotNil(t, overdue)
	assert.Len(t, upcoming, UpcomingLimit)
}

func TestTaskStats(t *testing.T) {
	tasks := []domain.Task{
		{Status: domain.TaskStatusCompleted, Priority: domain.TaskPriorityHigh, DueDate: day(-2)},
		{Status: domain.TaskStatusPending, Priority: domain.TaskPriorityHigh, DueDate: day(-1)},
		{Status: domain.TaskStatusInProgress, Priority: domain.TaskPriorityLow},
		{Status: domain.TaskStatusCanceled, Priority: domain.TaskPriorityMedium, DueDate: day(-9)},
	}

	stats := TaskStats(tasks, fixedNow)

	assert.Equal(t, domain.TaskStatsDTO{
		Total:          4,
		Completed:      1,
		Pending:        1,
		InProgress:     1,
		Overdue:        1,
		HighPriority:   2,
		CompletionRate: "25.0",
	}, stats)

	analytics := TaskAnalytics(tasks, fixedNow)
	assert.Equal(t, 2, analytics.Pending)
	assert.Equal(t, 1, analytics.ByStatus["canceled"])
	assert.Equal(t, 0, analytics.ByPriority["unknown"])
	assert.Len(t, analytics.ByPriority, 3)
}

func TestOpenTasksByPriority(t *testing.T) {
	tasks := []domain.Task{
		{ID: 1, Status: domain.TaskStatusPending, Priority: domain.TaskPriorityLow},
		{ID: 2, Status: domain.TaskStatusPending, Priority: domain.TaskPriorityHigh},
		{ID: 3, Status: domain.TaskStatusCompleted, Priority: domain.TaskPriorityHigh},
		{ID: 4, Status: domain.TaskStatusInProgress, Priority: domain.TaskPriorityMedium},
		{ID: 5, Status: domain.TaskStatusPending, Priority: domain.TaskPriorityHigh},
	}
	assert.Equal(t, []int64{2, 5, 4, 1}, taskIDs(OpenTasksByPriority(tasks)))
}

func TestInteractionTypeCounts(t *testing.T) {
	interactions := []domain.Interaction{
		{Type: "call"},
		{Type: "demo"},
		{Type: ""},
		{Type: "call"},
		{Type: "webinar"},
		{Type: "demo"},
	}

	got := InteractionTypeCounts(interactions)

	assert.Equal(t, []domain.TypeCount{
		{Type: "call", Count: 2},
		{Type: "email", Count: 0},
		{Type: "meeting", Count: 0},
		{Type: "note", Count: 0},
		{Type: "other", Count: 1},
		{Type: "demo", Count: 2},
		{Type: "webinar", Count: 1},
	}, got)
}

func TestInteractionStats(t *testing.T) {
	interactions := []domain.Interaction{
		{Type: "call", CreatedAt: fixedNow.Add(-time.Hour)},
		{Type: "email", CreatedAt: Since(fixedNow, 7)},
		{Type: "email", CreatedAt: Since(fixedNow, 20)},
		{Type: "note", CreatedAt: Since(fixedNow, 45)},
	}

	stats := InteractionStats(interactions, fixedNow)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.ThisWeek)
	assert.Equal(t, 3, stats.ThisMonth)
	assert.Equal(t, "0.1", stats.AveragePerDay)
	assert.Equal(t, "0", InteractionStats(nil, fixedNow).AveragePerDay)
}

func TestMonthBuckets_FirstSeenOrder(t *testing.T) {
	times := []time.Time{
		time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 28, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, []domain.MonthBucket{
		{Month: "Mar 2024", Count: 2},
		{Month: "Jan 2024", Count: 1},
	}, MonthBuckets(times, time.UTC))
}

func TestContactStatsAndAnalytics(t *testing.T) {
	contacts := []domain.Contact{
		{ID: 3, CreatedBy: 2, CreatedAt: fixedNow.Add(-time.Hour)},
		{ID: 2, CreatedBy: 1, CreatedAt: MonthStart(fixedNow)},
		{ID: 1, CreatedBy: 2, CreatedAt: MonthStart(fixedNow).Add(-time.Second)},
	}

	stats := ContactStats(contacts, fixedNow)
	assert.Equal(t, domain.ContactStatsDTO{Total: 3, NewThisMonth: 2, GrowthRate: "66.7"}, stats)

	creators := map[int64]domain.Profile{2: {ID: 2, Fullname: "Kari Nordmann"}}
	got := ContactAnalytics(contacts, creators, time.UTC)
	assert.Equal(t, []domain.CreatorCount{
		{ProfileID: 2, Fullname: "Kari Nordmann", Count: 2},
		{ProfileID: 1, Count: 1},
	}, got.ByCreator)
	assert.Len(t, got.Recent, 3)
	assert.Len(t, got.ByMonth, 2)
}

func TestProductAnalytics(t *testing.T) {
	p1, p2 := int64(1), int64(2)
	products := []domain.Product{
		{ID: 1, Name: "Basic", UnitPrice: 10},
		{ID: 2, Name: "Pro", UnitPrice: 30},
		{ID: 3, Name: "Idle", UnitPrice: 5},
	}
	deals := []domain.Deal{
		{ProductID: &p1, Stage: domain.DealStageClosedWon, Value: 100},
		{ProductID: &p1, Stage: domain.DealStageLead, Value: 999},
		{ProductID: &p2, Stage: domain.DealStageClosedWon, Value: 400},
		{ProductID: &p2, Stage: domain.DealStageClosedWon, Value: 100},
		{Stage: domain.DealStageClosedWon, Value: 50},
	}

	got := ProductAnalytics(products, deals)

	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 45.0, got.TotalValue)
	require.Len(t, got.TopPerforming, 3)
	assert.Equal(t, int64(2), got.TopPerforming[0].Product.ID)
	assert.Equal(t, 500.0, got.TopPerforming[0].Revenue)
	assert.Equal(t, "100.0", got.TopPerforming[0].ConversionRate)
	assert.Equal(t, 2, got.TopPerforming[1].DealsCount)
	assert.Equal(t, "50.0", got.TopPerforming[1].ConversionRate)
	assert.Equal(t, "0", got.TopPerforming[2].ConversionRate)
}

func TestTeamAnalytics(t *testing.T) {
	profiles := []domain.Profile{
		{ID: 1, Role: domain.ProfileRoleAdmin, Fullname: "Ada"},
		{ID: 2, Role: domain.ProfileRoleUser, Fullname: "Bo"},
		{ID: 3, Role: domain.ProfileRoleUser, Fullname: "Cy"},
	}
	deals := []domain.Deal{
		{ProfileID: 2, Value: 500},
		{ProfileID: 1, Value: 100},
		{ProfileID: 2, Value: 50},
	}

	stats := TeamStats(profiles)
	assert.Equal(t, 1, stats.Admins)
	assert.Equal(t, 2, stats.Users)
	assert.Equal(t, map[string]int{"admin": 1, "user": 2}, stats.RoleDistribution)

	team := TeamAnalytics(profiles, deals)
	assert.Equal(t, 3, team.Active)
	require.Len(t, team.TopPerformers, 3)
	assert.Equal(t, domain.PerformerDTO{ProfileID: 2, Fullname: "Bo", DealsCount: 2, DealsValue: 550}, team.TopPerformers[0])
	assert.Equal(t, int64(3), team.TopPerformers[2].ProfileID)
}

func TestEmptyCompanyAnalytics_MatchesPopulatedShape(t *testing.T) {
	empty := analyticsJSON(t, EmptyCompanyAnalytics())

	pid := int64(1)
	populated := domain.CompanyAnalyticsDTO{
		Contacts:     ContactAnalytics([]domain.Contact{{ID: 1, CreatedBy: 1, CreatedAt: fixedNow}}, nil, time.UTC),
		Deals:        DealAnalytics([]domain.Deal{{ID: 1, ProfileID: 1, Stage: domain.DealStageClosedWon, Value: 5, ProductID: &pid}}),
		Interactions: InteractionAnalytics([]domain.Interaction{{ID: 1, Type: "call", CreatedAt: fixedNow}}, time.UTC),
		Products:     ProductAnalytics([]domain.Product{{ID: 1}}, nil),
		Tasks:        TaskAnalytics([]domain.Task{{ID: 1, Status: domain.TaskStatusPending, DueDate: day(-1)}}, fixedNow),
		Team:         TeamAnalytics([]domain.Profile{{ID: 1, Role: domain.ProfileRoleAdmin}}, nil),
	}
	full := analyticsJSON(t, populated)

	assertSameShape(t, full, empty, "$")

	deals := empty["deals"].(map[string]interface{})
	assert.Len(t, deals["pipeline"], 6)
	assert.Equal(t, "0", empty["tasks"].(map[string]interface{})["completionRate"])
}

func TestEmptyCompanyAnalytics_CompanyKeysStable(t *testing.T) {
	room, creator := int64(7), int64(1)
	populated := domain.CompanyAnalyticsDTO{
		Company: domain.CompanyDTO{ID: 1, Name: "Acme", Industry: "Logistics", RoomID: &room, CreatedBy: &creator},
	}

	keys := func(v domain.CompanyAnalyticsDTO) []string {
		company := analyticsJSON(t, v)["company"].(map[string]interface{})
		out := make([]string, 0, len(company))
		for k := range company {
			out = append(out, k)
		}
		return out
	}

	want := []string{"companyId", "name", "industry", "roomId", "createdBy", "createdAt"}
	assert.ElementsMatch(t, want, keys(EmptyCompanyAnalytics()))
	assert.ElementsMatch(t, want, keys(populated))
}

func TestEmptyDashboard_ListsAreEmptyArrays(t *testing.T) {
	raw, err := json.Marshal(EmptyDashboard())
	require.NoError(t, err)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))
	for _, key := range []string{"users", "contacts", "tasks", "deals", "rooms"} {
		assert.Equal(t, []interface{}{}, got[key], key)
	}
}

func analyticsJSON(t *testing.T, v domain.CompanyAnalyticsDTO) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

// assertSameShape checks that every key of want is present in got with the same
// JSON kind. Arrays and maps must never decode as null.
func assertSameShape(t *testing.T, want, got interface{}, path string) {
	t.Helper()
	switch w := want.(type) {
	case map[string]interface{}:
		g, ok := got.(map[string]interface{})
		require.True(t, ok, "%s: expected object, got %T", path, got)
		for key, value := range w {
			gv, present := g[key]
			if !present {
				// omitempty fields on populated items are not part of the shape
				continue
			}
			assertSameShape(t, value, gv, path+"."+key)
		}
	case []interface{}:
		_, ok := got.([]interface{})
		assert.True(t, ok, "%s: expected array, got %T", path, got)
	default:
		assert.IsType(t, want, got, path)
	}
}

func taskIDs(tasks []domain.Task) []int64 {
	ids := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}
