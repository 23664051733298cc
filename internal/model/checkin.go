package model

import "time"

type CheckinRecord struct {
	ID              string
	UserID          string
	CheckinDate     time.Time
	ConsecutiveDays int
	PointsEarned    int
	CreatedAt       time.Time
}

type CheckinStatus struct {
	HasCheckedInToday bool
	ConsecutiveDays   int
	TotalDays         int
	TodayPoints       int
	TomorrowPoints    int
	LastCheckinDate   *time.Time
	NextCheckinDate   time.Time
}

type CheckinResult struct {
	Record      *CheckinRecord
	TotalPoints int
}

type CheckinRule struct {
	Day         int
	Points      int
	Description string
	IsBonus     bool
}
