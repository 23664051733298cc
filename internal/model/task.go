package model

import "time"

type RewardType int

const (
	RewardPoints RewardType = 1
	RewardOther  RewardType = 2
)

type TaskStatus int

const (
	TaskDraft  TaskStatus = 0
	TaskOpen   TaskStatus = 1
	TaskClosed TaskStatus = 2
)

type ParticipationStatus int

const (
	ParticipationWithdrawn ParticipationStatus = 0
	ParticipationActive    ParticipationStatus = 1
	ParticipationCompleted ParticipationStatus = 2
)

func (s ParticipationStatus) String() string {
	switch s {
	case ParticipationWithdrawn:
		return "withdrawn"
	case ParticipationActive:
		return "active"
	case ParticipationCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

type Task struct {
	ID                  string
	CategoryID          int
	Title               string
	Description         string
	Requirements        []any
	RewardType          RewardType
	RewardValue         int
	RewardDescription   *string
	MaxParticipants     *int
	CurrentParticipants int
	DifficultyLevel     int
	EstimatedTime       *int
	StartTime           *time.Time
	EndTime             time.Time
	LocationRequired    bool
	LocationAddress     *string
	ImageRequired       bool
	Status              TaskStatus
	CreatedBy           string
	CreatedAt           time.Time
	UpdatedAt           time.Time

	CreatorName   *string
	CreatorAvatar *string
	CategoryName  *string
	CategoryColor *string
}

// Expired reports whether the task can no longer be joined at now.
func (t *Task) Expired(now time.Time) bool {
	return !t.EndTime.After(now)
}

// Full reports whether the participant count reached the advertised cap.
// Joining does not consult it.
func (t *Task) Full() bool {
	return t.MaxParticipants != nil && t.CurrentParticipants >= *t.MaxParticipants
}

type CreateTaskRequest struct {
	CategoryID        int
	Title             string
	Description       string
	Requirements      []any
	RewardType        RewardType
	RewardValue       int
	RewardDescription *string
	MaxParticipants   *int
	DifficultyLevel   int
	EstimatedTime     *int
	StartTime         *time.Time
	EndTime           *time.Time
	LocationRequired  bool
	LocationAddress   *string
	ImageRequired     bool
	CreatedBy         string
}

type Participation struct {
	ID         string
	TaskID     string
	UserID     string
	Status     ParticipationStatus
	Progress   int
	StartedAt  time.Time
	UpdatedAt  time.Time
	UserName   *string
	UserAvatar *string
}

type TaskSort string

const (
	SortLatest TaskSort = "latest"
	SortHot    TaskSort = "hot"
	SortUrgent TaskSort = "urgent"
	SortReward TaskSort = "reward"
)

type TaskQuery struct {
	Page        int
	Limit       int
	CategoryIDs []int64
	Status      TaskStatus
	Sort        TaskSort
	Search      string
}

type TaskList struct {
	Tasks      []*Task
	Pagination Pagination
}

type TaskDetail struct {
	Task         *Task
	Participants []*Participation
}

type TaskCategory struct {
	ID          int
	Name        string
	Description string
	Icon        string
	Color       string
	SortOrder   int
	Status      int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
