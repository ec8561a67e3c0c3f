package domain

// Summary types returned by the analytics endpoints. Every slice in these types
// is serialized as [] rather than null and every map carries its canonical keys,
// so an empty tenant has the same shape as a populated one.

// StageBucket aggregates the deals of one pipeline stage
type StageBucket struct {
	Stage        DealStage `json:"stage"`
	Count        int       `json:"count"`
	TotalValue   float64   `json:"totalValue"`
	AverageValue float64   `json:"averageValue"`
}

type PipelineSummary struct {
	TotalDeals     int     `json:"totalDeals"`
	TotalValue     float64 `json:"totalValue"`
	WonDeals       int     `json:"wonDeals"`
	WonValue       float64 `json:"wonValue"`
	ConversionRate string  `json:"conversionRate"`
}

type PipelineStatsDTO struct {
	Stages  []StageBucket   `json:"stages"`
	Summary PipelineSummary `json:"summary"`
}

// PipelinePoint is the chart-friendly form of a stage bucket
type PipelinePoint struct {
	Stage DealStage `json:"stage"`
	Count int       `json:"count"`
	Value float64   `json:"value"`
}

type DealAnalyticsDTO struct {
	Total      int             `json:"total"`
	TotalValue float64         `json:"totalValue"`
	Pipeline   []PipelinePoint `json:"pipeline"`
	ByStage    map[string]int  `json:"byStage"`
	RecentWins []DealDTO       `json:"recentWins"`
	TopDeals   []DealDTO       `json:"topDeals"`
}

// MonthBucket counts rows in one calendar month, labelled "Jan 2006"
type MonthBucket struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// TypeCount counts rows carrying one tag
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type CreatorCount struct {
	ProfileID int64  `json:"profileId"`
	Fullname  string `json:"fullname"`
	Count     int    `json:"count"`
}

type ContactStatsDTO struct {
	Total        int    `json:"total"`
	NewThisMonth int    `json:"newThisMonth"`
	GrowthRate   string `json:"growthRate"`
}

type ContactAnalyticsDTO struct {
	Total     int            `json:"total"`
	Recent    []ContactDTO   `json:"recent"`
	ByMonth   []MonthBucket  `json:"byMonth"`
	ByCreator []CreatorCount `json:"byCreator"`
}

type TaskStatsDTO struct {
	Total          int    `json:"total"`
	Completed      int    `json:"completed"`
	Pending        int    `json:"pending"`
	InProgress     int    `json:"inProgress"`
	Overdue        int    `json:"overdue"`
	HighPriority   int    `json:"highPriority"`
	CompletionRate string `json:"completionRate"`
}

type TaskAnalyticsDTO struct {
	Total          int            `json:"total"`
	Completed      int            `json:"completed"`
	Pending        int            `json:"pending"`
	Overdue        []TaskDTO      `json:"overdue"`
	Upcoming       []TaskDTO      `json:"upcoming"`
	ByStatus       map[string]int `json:"byStatus"`
	ByPriority     map[string]int `json:"byPriority"`
	CompletionRate string         `json:"completionRate"`
}

type InteractionStatsDTO struct {
	Total         int         `json:"total"`
	ThisWeek      int         `json:"thisWeek"`
	ThisMonth     int         `json:"thisMonth"`
	ByType        []TypeCount `json:"byType"`
	AveragePerDay string      `json:"averagePerDay"`
}

type InteractionAnalyticsDTO struct {
	Total   int              `json:"total"`
	Recent  []InteractionDTO `json:"recent"`
	ByType  []TypeCount      `json:"byType"`
	ByMonth []MonthBucket    `json:"byMonth"`
}

type ProductPerformanceDTO struct {
	Product        ProductDTO `json:"product"`
	DealsCount     int        `json:"dealsCount"`
	WonDealsCount  int        `json:"wonDealsCount"`
	Revenue        float64    `json:"revenue"`
	ConversionRate string     `json:"conversionRate"`
}

type ProductAnalyticsDTO struct {
	Total         int                     `json:"total"`
	TotalValue    float64                 `json:"totalValue"`
	Recent        []ProductDTO            `json:"recent"`
	TopPerforming []ProductPerformanceDTO `json:"topPerforming"`
}

type TeamStatsDTO struct {
	Total            int            `json:"total"`
	Admins           int            `json:"admins"`
	Users            int            `json:"users"`
	RoleDistribution map[string]int `json:"roleDistribution"`
	Members          []ProfileDTO   `json:"members"`
}

type PerformerDTO struct {
	ProfileID  int64   `json:"profileId"`
	Fullname   string  `json:"fullname"`
	DealsCount int     `json:"dealsCount"`
	DealsValue float64 `json:"dealsValue"`
}

type TeamAnalyticsDTO struct {
	Total         int            `json:"total"`
	Active        int            `json:"active"`
	Members       []ProfileDTO   `json:"members"`
	ByRole        map[string]int `json:"byRole"`
	TopPerformers []PerformerDTO `json:"topPerformers"`
}

type DealPerformance struct {
	Total          int     `json:"total"`
	Won            int     `json:"won"`
	Value          float64 `json:"value"`
	ConversionRate string  `json:"conversionRate"`
}

type TaskPerformance struct {
	Total          int    `json:"total"`
	Completed      int    `json:"completed"`
	CompletionRate string `json:"completionRate"`
}

type InteractionPerformance struct {
	Total int `json:"total"`
}

type PerformanceMetricsDTO struct {
	ProfileID    int64                  `json:"profileId"`
	Deals        DealPerformance        `json:"deals"`
	Tasks        TaskPerformance        `json:"tasks"`
	Interactions InteractionPerformance `json:"interactions"`
}

type MessagesSummaryDTO struct {
	UnreadCount int `json:"unreadCount"`
	TotalToday  int `json:"totalToday"`
}

// CompanyAnalyticsDTO is the full analytics page for one tenant
type CompanyAnalyticsDTO struct {
	Company      CompanyDTO              `json:"company"`
	Contacts     ContactAnalyticsDTO     `json:"contacts"`
	Deals        DealAnalyticsDTO        `json:"deals"`
	Interactions InteractionAnalyticsDTO `json:"interactions"`
	Products     ProductAnalyticsDTO     `json:"products"`
	Tasks        TaskAnalyticsDTO        `json:"tasks"`
	Team         TeamAnalyticsDTO        `json:"team"`
	Messages     MessagesSummaryDTO      `json:"messages"`
}

type DashboardStatsDTO struct {
	ContactsThisMonth    int     `json:"contactsThisMonth"`
	TotalInteractions    int     `json:"totalInteractions"`
	InteractionsThisWeek int     `json:"interactionsThisWeek"`
	TotalMessages        int64   `json:"totalMessages"`
	TotalRooms           int     `json:"totalRooms"`
	TotalDeals           int     `json:"totalDeals"`
	TotalDealsValue      float64 `json:"totalDealsValue"`
}

// DashboardDTO is the landing page for the signed-in profile
type DashboardDTO struct {
	User     *ProfileDTO       `json:"user"`
	Users    []ProfileDTO      `json:"users"`
	Contacts []ContactDTO      `json:"contacts"`
	Tasks    []TaskDTO         `json:"tasks"`
	Deals    []DealDTO         `json:"deals"`
	Rooms    []RoomOverviewDTO `json:"rooms"`
	Stats    DashboardStatsDTO `json:"stats"`
}
