package model

import "time"

type Direction int

const (
	DirectionEarn  Direction = 1
	DirectionSpend Direction = 2
)

func (d Direction) String() string {
	switch d {
	case DirectionEarn:
		return "earn"
	case DirectionSpend:
		return "spend"
	default:
		return "unknown"
	}
}

type SourceType string

const (
	SourceDailyCheckin   SourceType = "daily_checkin"
	SourceTaskPublish    SourceType = "task_publish"
	SourceTaskCompletion SourceType = "task_completion"
	SourcePost           SourceType = "post"
	SourceComment        SourceType = "comment"
	SourceManual         SourceType = "manual"
)

func (s SourceType) Valid() bool {
	switch s {
	case SourceDailyCheckin, SourceTaskPublish, SourceTaskCompletion, SourcePost, SourceComment, SourceManual:
		return true
	}
	return false
}

type PointsProfile struct {
	UserID      string
	TotalPoints int
	Level       int
	UpdatedAt   time.Time
}

// PointsRecord is an immutable ledger entry. Points is always a positive
// magnitude; Direction carries the sign.
type PointsRecord struct {
	ID           string
	UserID       string
	Direction    Direction
	SourceType   SourceType
	SourceID     *string
	Points       int
	BalanceAfter int
	Title        string
	Description  string
	CreatedAt    time.Time
}

// Signed returns the balance delta the record applied.
func (r *PointsRecord) Signed() int {
	if r.Direction == DirectionSpend {
		return -r.Points
	}
	return r.Points
}

type PointsSummary struct {
	TotalPoints     int
	Level           int
	LevelProgress   int
	NextLevelPoints int
	TodayEarned     int
	WeekEarned      int
	MonthEarned     int
}

type DailyPoints struct {
	Date   time.Time
	Earned int
	Spent  int
}

type PointsStatistics struct {
	TotalEarned    int
	TotalSpent     int
	CurrentBalance int
	EarnedBySource map[SourceType]int
	SpentBySource  map[SourceType]int
	DailyHistory   []*DailyPoints
}

type EarnWay struct {
	SourceType  SourceType
	Title       string
	Description string
	Points      string
	Conditions  string
	DailyLimit  *int
	IsActive    bool
}

type Pagination struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}
