package service

import (
	"strconv"

	"campus_circle/internal/model"
)

const (
	publishCost  = 5
	levelStep    = 100
	postPoints   = 3
	commentPoint = 1
)

var checkinTiers = []struct {
	minDays int
	points  int
}{
	{30, 50},
	{14, 25},
	{7, 15},
	{6, 10},
	{5, 9},
	{4, 8},
	{3, 7},
	{2, 6},
}

// CheckinPoints returns the award for a check-in that makes a streak of
// consecutiveDays. The highest matching tier wins.
func CheckinPoints(consecutiveDays int) int {
	for _, tier := range checkinTiers {
		if consecutiveDays >= tier.minDays {
			return tier.points
		}
	}
	return 5
}

// TaskPublishCost is charged to the creator of a points-funded task.
func TaskPublishCost() int {
	return publishCost
}

func ActionPoints(source model.SourceType) int {
	switch source {
	case model.SourcePost:
		return postPoints
	case model.SourceComment:
		return commentPoint
	default:
		return 0
	}
}

func LevelFor(totalPoints int) int {
	if totalPoints < 0 {
		return 1
	}
	return totalPoints/levelStep + 1
}

func NextLevelPoints(level int) int {
	return level*levelStep + levelStep
}

// LevelProgress is the percentage of the way to the next level.
func LevelProgress(totalPoints int) int {
	if totalPoints < 0 {
		return 0
	}
	return totalPoints % levelStep * 100 / levelStep
}

func CheckinRules() []model.CheckinRule {
	return []model.CheckinRule{
		{Day: 1, Points: CheckinPoints(1), Description: "First check-in"},
		{Day: 2, Points: CheckinPoints(2), Description: "2 days in a row"},
		{Day: 3, Points: CheckinPoints(3), Description: "3 days in a row"},
		{Day: 4, Points: CheckinPoints(4), Description: "4 days in a row"},
		{Day: 5, Points: CheckinPoints(5), Description: "5 days in a row"},
		{Day: 6, Points: CheckinPoints(6), Description: "6 days in a row"},
		{Day: 7, Points: CheckinPoints(7), Description: "7-day streak bonus", IsBonus: true},
		{Day: 14, Points: CheckinPoints(14), Description: "14-day streak bonus", IsBonus: true},
		{Day: 30, Points: CheckinPoints(30), Description: "30-day streak bonus", IsBonus: true},
	}
}

func EarnWays() []model.EarnWay {
	once := 1
	return []model.EarnWay{
		{
			SourceType:  model.SourceDailyCheckin,
			Title:       "Daily check-in",
			Description: "Check in every day, longer streaks earn more",
			Points:      "5-50",
			Conditions:  "Once per day",
			DailyLimit:  &once,
			IsActive:    true,
		},
		{
			SourceType:  model.SourcePost,
			Title:       "Publish a post",
			Description: "Share quality content with the community",
			Points:      strconv.Itoa(ActionPoints(model.SourcePost)),
			Conditions:  "Post must pass review",
			IsActive:    true,
		},
		{
			SourceType:  model.SourceComment,
			Title:       "Write a comment",
			Description: "Join the discussion",
			Points:      strconv.Itoa(ActionPoints(model.SourceComment)),
			Conditions:  "Comment must follow the rules",
			IsActive:    true,
		},
		{
			SourceType:  model.SourceTaskCompletion,
			Title:       "Complete a task",
			Description: "Finish campus tasks for rewards",
			Points:      "10-100",
			Conditions:  "Task completion is reviewed",
			IsActive:    true,
		},
	}
}
