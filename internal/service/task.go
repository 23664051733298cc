package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"campus_circle/internal/model"
	"campus_circle/internal/repository"
)

const (
	maxTitleLength   = 200
	defaultTaskLimit = 20
)

type TaskService struct {
	tx     Transactor
	repo   TaskRepository
	ledger Ledger
	now    func() time.Time
}

func NewTaskService(tx Transactor, repo TaskRepository, ledger Ledger) *TaskService {
	return &TaskService{
		tx:     tx,
		repo:   repo,
		ledger: ledger,
		now:    time.Now,
	}
}

// CreateTask publishes a task. A points-funded task requires the creator to
// hold at least the reward value plus the publish cost, and only the publish
// cost is deducted.
func (s *TaskService) CreateTask(ctx context.Context, req *model.CreateTaskRequest) (*model.Task, error) {
	now := s.now()
	if err := validateCreateTask(req, now); err != nil {
		return nil, err
	}

	t := &model.Task{
		ID:                  newID(),
		CategoryID:          req.CategoryID,
		Title:               req.Title,
		Description:         req.Description,
		Requirements:        req.Requirements,
		RewardType:          req.RewardType,
		RewardValue:         req.RewardValue,
		RewardDescription:   req.RewardDescription,
		MaxParticipants:     req.MaxParticipants,
		CurrentParticipants: 0,
		DifficultyLevel:     req.DifficultyLevel,
		EstimatedTime:       req.EstimatedTime,
		StartTime:           req.StartTime,
		EndTime:             *req.EndTime,
		LocationRequired:    req.LocationRequired,
		LocationAddress:     req.LocationAddress,
		ImageRequired:       req.ImageRequired,
		Status:              model.TaskOpen,
		CreatedBy:           req.CreatedBy,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if t.CategoryID == 0 {
		t.CategoryID = 1
	}
	if t.RewardType == 0 {
		t.RewardType = model.RewardPoints
	}
	if t.DifficultyLevel == 0 {
		t.DifficultyLevel = 1
	}

	var created *model.Task
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if t.RewardType == model.RewardPoints {
			available := 0
			profile, err := s.repo.LockPointsProfile(ctx, t.CreatedBy)
			switch {
			case err == nil:
				available = profile.TotalPoints
			case !errors.Is(err, repository.ErrNotFound):
				return err
			}

			required := t.RewardValue + TaskPublishCost()
			if available < required {
				return &InsufficientPointsError{Required: required, Available: available}
			}
		}

		if err := s.repo.InsertTask(ctx, t); err != nil {
			return err
		}

		if t.RewardType == model.RewardPoints {
			_, err := s.ledger.Post(ctx, PostRequest{
				UserID:      t.CreatedBy,
				Direction:   model.DirectionSpend,
				Amount:      TaskPublishCost(),
				SourceType:  model.SourceTaskPublish,
				SourceID:    &t.ID,
				Title:       "Task published",
				Description: fmt.Sprintf("Publishing a task cost %d points", TaskPublishCost()),
			})
			if err != nil {
				return err
			}
		}

		var err error
		created, err = s.repo.GetTask(ctx, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// JoinTask registers userID as a participant. The participant cap is not
// checked here.
func (s *TaskService) JoinTask(ctx context.Context, taskID, userID string) (*model.Participation, error) {
	now := s.now()

	var p *model.Participation
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		t, err := s.repo.LockTask(ctx, taskID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTaskNotFound
			}
			return err
		}
		if t.Status != model.TaskOpen {
			return ErrTaskNotFound
		}
		if t.CreatedBy == userID {
			return ErrSelfParticipation
		}
		if t.Expired(now) {
			return ErrTaskExpired
		}

		joined, err := s.repo.HasParticipation(ctx, taskID, userID)
		if err != nil {
			return err
		}
		if joined {
			return ErrAlreadyJoined
		}

		p = &model.Participation{
			ID:        newID(),
			TaskID:    taskID,
			UserID:    userID,
			Status:    model.ParticipationActive,
			Progress:  0,
			StartedAt: now,
			UpdatedAt: now,
		}
		if err = s.repo.InsertParticipation(ctx, p); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyJoined
			}
			return err
		}

		return s.repo.IncrementParticipants(ctx, taskID, now)
	})
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (s *TaskService) ListTasks(ctx context.Context, q model.TaskQuery) (*model.TaskList, error) {
	q.Page, q.Limit = normalizePage(q.Page, q.Limit, defaultTaskLimit)
	switch q.Sort {
	case model.SortLatest, model.SortHot, model.SortUrgent, model.SortReward:
	default:
		q.Sort = model.SortLatest
	}
	q.Search = strings.TrimSpace(q.Search)

	tasks, total, err := s.repo.ListTasks(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return &model.TaskList{
		Tasks:      tasks,
		Pagination: model.NewPagination(q.Page, q.Limit, total),
	}, nil
}

func (s *TaskService) TaskDetail(ctx context.Context, taskID string) (*model.TaskDetail, error) {
	t, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	participants, err := s.repo.ListParticipants(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}

	return &model.TaskDetail{Task: t, Participants: participants}, nil
}

func (s *TaskService) Categories(ctx context.Context) ([]*model.TaskCategory, error) {
	return s.repo.ListTaskCategories(ctx)
}

// validateCreateTask reports the first failing rule.
func validateCreateTask(req *model.CreateTaskRequest, now time.Time) error {
	switch {
	case strings.TrimSpace(req.Title) == "":
		return invalid("task title is required")
	case utf8.RuneCountInString(req.Title) > maxTitleLength:
		return invalid("task title must be at most %d characters", maxTitleLength)
	case strings.TrimSpace(req.Description) == "":
		return invalid("task description is required")
	case req.EndTime == nil:
		return invalid("end time is required")
	case !req.EndTime.After(now):
		return invalid("end time must be later than the current time")
	case req.RewardValue < 0:
		return invalid("reward value cannot be negative")
	}
	return nil
}
