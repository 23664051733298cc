package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campus_circle/internal/model"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientPoints  = errors.New("insufficient points")
	ErrAlreadyCheckedIn    = errors.New("already checked in today")
	ErrTaskNotFound        = errors.New("task does not exist or is closed")
	ErrSelfParticipation   = errors.New("cannot join a task you published")
	ErrTaskExpired         = errors.New("task has expired")
	ErrAlreadyJoined       = errors.New("already joined this task")
)

// ValidationError is a user-correctable input error. Message is safe to show
// to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

type InsufficientPointsError struct {
	Required  int
	Available int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: %d required, %d available", e.Required, e.Available)
}

func (e *InsufficientPointsError) Is(target error) bool {
	return target == ErrInsufficientPoints
}

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInsufficient
	KindNotFound
	KindConflict
)

// KindOf classifies an error returned by this package.
func KindOf(err error) Kind {
	var ve *ValidationError
	switch {
	case err == nil:
		return KindInternal
	case errors.As(err, &ve):
		return KindValidation
	case errors.Is(err, ErrInsufficientPoints), errors.Is(err, ErrInsufficientBalance):
		return KindInsufficient
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrTaskNotFound):
		return KindNotFound
	case errors.Is(err, ErrAlreadyCheckedIn), errors.Is(err, ErrAlreadyJoined),
		errors.Is(err, ErrSelfParticipation), errors.Is(err, ErrTaskExpired):
		return KindConflict
	default:
		return KindInternal
	}
}

type Service struct {
	*PointsService
	*CheckinService
	*TaskService
	*MemberService
}

func NewService(pointsService *PointsService, checkinService *CheckinService, taskService *TaskService, memberService *MemberService) *Service {
	return &Service{
		PointsService:  pointsService,
		CheckinService: checkinService,
		TaskService:    taskService,
		MemberService:  memberService,
	}
}

// Transactor runs fn as one atomic unit. Repository calls made with the
// context handed to fn take part in the unit.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Ledger interface {
	Post(ctx context.Context, req PostRequest) (*model.PointsRecord, error)
}

type PointsServiceI interface {
	Ledger
	Profile(ctx context.Context, userID string) (*model.PointsSummary, error)
	History(ctx context.Context, userID string, filter HistoryFilter, page, limit int) ([]*model.PointsRecord, model.Pagination, error)
	Statistics(ctx context.Context, userID string) (*model.PointsStatistics, error)
	ManualAdd(ctx context.Context, req ManualAddRequest) (*model.PointsRecord, error)
	AwardAction(ctx context.Context, userID string, source model.SourceType, sourceID *string) (*model.PointsRecord, error)
}

type PointsRepository interface {
	GetPointsProfile(ctx context.Context, userID string) (*model.PointsProfile, error)
	LockPointsProfile(ctx context.Context, userID string) (*model.PointsProfile, error)
	UpdatePointsProfile(ctx context.Context, profile *model.PointsProfile) error
	InsertPointsRecord(ctx context.Context, rec *model.PointsRecord) error
	ListPointsRecords(ctx context.Context, userID string, direction *model.Direction, limit, offset int) ([]*model.PointsRecord, int, error)
	SumEarnedSince(ctx context.Context, userID string, since time.Time) (int, error)
	PointsBySource(ctx context.Context, userID string) (earned, spent map[model.SourceType]int, err error)
	DailyPoints(ctx context.Context, userID string, since time.Time) ([]*model.DailyPoints, error)
}

type CheckinServiceI interface {
	Status(ctx context.Context, userID string) (*model.CheckinStatus, error)
	Checkin(ctx context.Context, userID string) (*model.CheckinResult, error)
	CheckinHistory(ctx context.Context, userID string, page, limit int) ([]*model.CheckinRecord, model.Pagination, error)
}

type CheckinRepository interface {
	GetCheckin(ctx context.Context, userID string, day time.Time) (*model.CheckinRecord, error)
	InsertCheckin(ctx context.Context, rec *model.CheckinRecord) error
	CountCheckins(ctx context.Context, userID string) (int, error)
	LastCheckinDate(ctx context.Context, userID string) (*time.Time, error)
	ListCheckins(ctx context.Context, userID string, limit, offset int) ([]*model.CheckinRecord, int, error)
}

type TaskServiceI interface {
	CreateTask(ctx context.Context, req *model.CreateTaskRequest) (*model.Task, error)
	JoinTask(ctx context.Context, taskID, userID string) (*model.Participation, error)
	ListTasks(ctx context.Context, q model.TaskQuery) (*model.TaskList, error)
	TaskDetail(ctx context.Context, taskID string) (*model.TaskDetail, error)
	Categories(ctx context.Context) ([]*model.TaskCategory, error)
}

type TaskRepository interface {
	LockPointsProfile(ctx context.Context, userID string) (*model.PointsProfile, error)
	InsertTask(ctx context.Context, t *model.Task) error
	LockTask(ctx context.Context, taskID string) (*model.Task, error)
	GetTask(ctx context.Context, taskID string) (*model.Task, error)
	ListTasks(ctx context.Context, q model.TaskQuery) ([]*model.Task, int, error)
	HasParticipation(ctx context.Context, taskID, userID string) (bool, error)
	InsertParticipation(ctx context.Context, p *model.Participation) error
	IncrementParticipants(ctx context.Context, taskID string, now time.Time) error
	ListParticipants(ctx context.Context, taskID string) ([]*model.Participation, error)
	ListTaskCategories(ctx context.Context) ([]*model.TaskCategory, error)
}

type MemberServiceI interface {
	Sync(ctx context.Context, userID, nickname string, avatarURL *string) (*model.Member, error)
	Member(ctx context.Context, userID string) (*model.Member, error)
	Leaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error)
}

type MemberRepository interface {
	UpsertMember(ctx context.Context, m *model.Member) error
	GetMember(ctx context.Context, userID string) (*model.Member, error)
	TopMembers(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error)
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func offset(page, limit int) int {
	return (page - 1) * limit
}

func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

const maxPageSize = 100
