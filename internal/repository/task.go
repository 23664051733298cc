package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"campus_circle/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type task struct {
	ID                  string         `db:"id"`
	CategoryID          int            `db:"category_id"`
	Title               string         `db:"title"`
	Description         string         `db:"description"`
	Requirements        sql.NullString `db:"requirements"`
	RewardType          int            `db:"reward_type"`
	RewardValue         int            `db:"reward_value"`
	RewardDescription   *string        `db:"reward_description"`
	MaxParticipants     *int           `db:"max_participants"`
	CurrentParticipants int            `db:"current_participants"`
	DifficultyLevel     int            `db:"difficulty_level"`
	EstimatedTime       *int           `db:"estimated_time"`
	StartTime           *time.Time     `db:"start_time"`
	EndTime             time.Time      `db:"end_time"`
	LocationRequired    bool           `db:"location_required"`
	LocationAddress     *string        `db:"location_address"`
	ImageRequired       bool           `db:"image_required"`
	Status              int            `db:"status"`
	CreatedBy           string         `db:"created_by"`
	CreatedAt           time.Time      `db:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at"`

	CreatorName   *string `db:"creator_name"`
	CreatorAvatar *string `db:"creator_avatar"`
	CategoryName  *string `db:"category_name"`
	CategoryColor *string `db:"category_color"`
}

type participation struct {
	ID         string    `db:"id"`
	TaskID     string    `db:"task_id"`
	UserID     string    `db:"user_id"`
	Status     int       `db:"status"`
	Progress   int       `db:"progress"`
	StartedAt  time.Time `db:"started_at"`
	UpdatedAt  time.Time `db:"updated_at"`
	UserName   *string   `db:"user_name"`
	UserAvatar *string   `db:"user_avatar"`
}

type taskCategory struct {
	ID          int       `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Icon        string    `db:"icon"`
	Color       string    `db:"color"`
	SortOrder   int       `db:"sort_order"`
	Status      int       `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

var taskColumns = []string{
	"id", "category_id", "title", "description", "requirements", "reward_type", "reward_value",
	"reward_description", "max_participants", "current_participants", "difficulty_level",
	"estimated_time", "start_time", "end_time", "location_required", "location_address",
	"image_required", "status", "created_by", "created_at", "updated_at",
}

// Fixed ORDER BY clauses; user input only selects among them.
var taskOrder = map[model.TaskSort][]string{
	model.SortLatest: {"t.created_at DESC"},
	model.SortHot:    {"t.current_participants DESC", "t.created_at DESC"},
	model.SortUrgent: {"t.end_time ASC", "t.created_at DESC"},
	model.SortReward: {"t.reward_value DESC", "t.created_at DESC"},
}

var searchEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func qualified(prefix string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = prefix + "." + c
	}
	return out
}

func taskView() squirrel.SelectBuilder {
	columns := append(qualified("t", taskColumns),
		"u.nickname AS creator_name",
		"u.avatar_url AS creator_avatar",
		"tc.name AS category_name",
		"tc.color AS category_color",
	)
	return squirrel.
		Select(columns...).
		From("tasks t").
		LeftJoin("users u ON t.created_by = u.id").
		LeftJoin("task_categories tc ON t.category_id = tc.id").
		PlaceholderFormat(squirrel.Dollar)
}

func (r *Repository) InsertTask(ctx context.Context, t *model.Task) error {
	requirements := t.Requirements
	if requirements == nil {
		requirements = []any{}
	}
	reqJSON, err := json.Marshal(requirements)
	if err != nil {
		return fmt.Errorf("failed to encode task requirements: %w", err)
	}

	query, args, err := squirrel.
		Insert("tasks").
		Columns(taskColumns...).
		Values(
			t.ID,
			t.CategoryID,
			t.Title,
			t.Description,
			string(reqJSON),
			int(t.RewardType),
			t.RewardValue,
			t.RewardDescription,
			t.MaxParticipants,
			t.CurrentParticipants,
			t.DifficultyLevel,
			t.EstimatedTime,
			t.StartTime,
			t.EndTime,
			t.LocationRequired,
			t.LocationAddress,
			t.ImageRequired,
			int(t.Status),
			t.CreatedBy,
			t.CreatedAt,
			t.UpdatedAt,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build task insert query: %w", err)
	}

	if _, err = r.conn(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

// LockTask reads a task row with a row lock held until the surrounding
// transaction ends.
func (r *Repository) LockTask(ctx context.Context, taskID string) (*model.Task, error) {
	query, args, err := squirrel.
		Select(taskColumns...).
		From("tasks").
		Where(squirrel.Eq{"id": taskID}).
		Suffix("FOR UPDATE").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build task lock query: %w", err)
	}

	return r.getTask(ctx, query, args)
}

// GetTask returns a task with creator and category details. Draft tasks are
// not visible.
func (r *Repository) GetTask(ctx context.Context, taskID string) (*model.Task, error) {
	query, args, err := taskView().
		Where(squirrel.Eq{"t.id": taskID}).
		Where(squirrel.NotEq{"t.status": int(model.TaskDraft)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build task query: %w", err)
	}

	return r.getTask(ctx, query, args)
}

func (r *Repository) getTask(ctx context.Context, query string, args []interface{}) (*model.Task, error) {
	var row task
	err := sqlx.GetContext(ctx, r.conn(ctx), &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return row.toModel()
}

func (r *Repository) ListTasks(ctx context.Context, q model.TaskQuery) ([]*model.Task, int, error) {
	where := squirrel.And{squirrel.Eq{"t.status": int(q.Status)}}
	if len(q.CategoryIDs) > 0 {
		where = append(where, squirrel.Expr("t.category_id = ANY(?)", pq.Int64Array(q.CategoryIDs)))
	}
	if q.Search != "" {
		term := "%" + searchEscaper.Replace(q.Search) + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"t.title": term},
			squirrel.ILike{"t.description": term},
		})
	}

	countQuery, countArgs, err := squirrel.
		Select("COUNT(*)").
		From("tasks t").
		Where(where).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build task count query: %w", err)
	}

	var total int
	if err = sqlx.GetContext(ctx, r.conn(ctx), &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	order, ok := taskOrder[q.Sort]
	if !ok {
		order = taskOrder[model.SortLatest]
	}

	query, args, err := taskView().
		Where(where).
		OrderBy(order...).
		Limit(uint64(q.Limit)).
		Offset(uint64((q.Page - 1) * q.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build task list query: %w", err)
	}

	var rows []*task
	if err = sqlx.SelectContext(ctx, r.conn(ctx), &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]*model.Task, len(rows))
	for i, row := range rows {
		if tasks[i], err = row.toModel(); err != nil {
			return nil, 0, err
		}
	}

	return tasks, total, nil
}

// HasParticipation reports whether the user holds a non-withdrawn
// participation in the task.
func (r *Repository) HasParticipation(ctx context.Context, taskID, userID string) (bool, error) {
	query, args, err := squirrel.
		Select("1").
		Prefix("SELECT EXISTS (").
		From("user_tasks").
		Where(squirrel.Eq{"task_id": taskID, "user_id": userID}).
		Where(squirrel.NotEq{"status": int(model.ParticipationWithdrawn)}).
		Suffix(")").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build participation query: %w", err)
	}

	var exists bool
	if err = sqlx.GetContext(ctx, r.conn(ctx), &exists, query, args...); err != nil {
		return false, fmt.Errorf("failed to check participation: %w", err)
	}

	return exists, nil
}

func (r *Repository) InsertParticipation(ctx context.Context, p *model.Participation) error {
	query, args, err := squirrel.
		Insert("user_tasks").
		Columns("id", "task_id", "user_id", "status", "progress", "started_at", "updated_at").
		Values(p.ID, p.TaskID, p.UserID, int(p.Status), p.Progress, p.StartedAt, p.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build participation insert query: %w", err)
	}

	if _, err = r.conn(ctx).ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert participation: %w", err)
	}

	return nil
}

func (r *Repository) IncrementParticipants(ctx context.Context, taskID string, now time.Time) error {
	query, args, err := squirrel.
		Update("tasks").
		Set("current_participants", squirrel.Expr("current_participants + 1")).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": taskID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build participant update query: %w", err)
	}

	result, err := r.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update participant count: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *Repository) ListParticipants(ctx context.Context, taskID string) ([]*model.Participation, error) {
	query, args, err := squirrel.
		Select(
			"ut.id", "ut.task_id", "ut.user_id", "ut.status", "ut.progress", "ut.started_at", "ut.updated_at",
			"u.nickname AS user_name", "u.avatar_url AS user_avatar",
		).
		From("user_tasks ut").
		LeftJoin("users u ON ut.user_id = u.id").
		Where(squirrel.Eq{"ut.task_id": taskID}).
		Where(squirrel.NotEq{"ut.status": int(model.ParticipationWithdrawn)}).
		OrderBy("ut.started_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build participants query: %w", err)
	}

	var rows []*participation
	if err = sqlx.SelectContext(ctx, r.conn(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	out := make([]*model.Participation, len(rows))
	for i, p := range rows {
		out[i] = &model.Participation{
			ID:         p.ID,
			TaskID:     p.TaskID,
			UserID:     p.UserID,
			Status:     model.ParticipationStatus(p.Status),
			Progress:   p.Progress,
			StartedAt:  p.StartedAt,
			UpdatedAt:  p.UpdatedAt,
			UserName:   p.UserName,
			UserAvatar: p.UserAvatar,
		}
	}

	return out, nil
}

func (r *Repository) ListTaskCategories(ctx context.Context) ([]*model.TaskCategory, error) {
	query, args, err := squirrel.
		Select("id", "name", "description", "icon", "color", "sort_order", "status", "created_at", "updated_at").
		From("task_categories").
		Where(squirrel.Eq{"status": 1}).
		OrderBy("sort_order ASC", "created_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build categories query: %w", err)
	}

	var rows []*taskCategory
	if err = sqlx.SelectContext(ctx, r.conn(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list task categories: %w", err)
	}

	out := make([]*model.TaskCategory, len(rows))
	for i, c := range rows {
		out[i] = &model.TaskCategory{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Icon:        c.Icon,
			Color:       c.Color,
			SortOrder:   c.SortOrder,
			Status:      c.Status,
			CreatedAt:   c.CreatedAt,
			UpdatedAt:   c.UpdatedAt,
		}
	}

	return out, nil
}

func (t *task) toModel() (*model.Task, error) {
	requirements := []any{}
	if t.Requirements.Valid && t.Requirements.String != "" {
		if err := json.Unmarshal([]byte(t.Requirements.String), &requirements); err != nil {
			return nil, fmt.Errorf("failed to decode requirements of task %s: %w", t.ID, err)
		}
	}

	return &model.Task{
		ID:                  t.ID,
		CategoryID:          t.CategoryID,
		Title:               t.Title,
		Description:         t.Description,
		Requirements:        requirements,
		RewardType:          model.RewardType(t.RewardType),
		RewardValue:         t.RewardValue,
		RewardDescription:   t.RewardDescription,
		MaxParticipants:     t.MaxParticipants,
		CurrentParticipants: t.CurrentParticipants,
		DifficultyLevel:     t.DifficultyLevel,
		EstimatedTime:       t.EstimatedTime,
		StartTime:           t.StartTime,
		EndTime:             t.EndTime,
		LocationRequired:    t.LocationRequired,
		LocationAddress:     t.LocationAddress,
		ImageRequired:       t.ImageRequired,
		Status:              model.TaskStatus(t.Status),
		CreatedBy:           t.CreatedBy,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
		CreatorName:         t.CreatorName,
		CreatorAvatar:       t.CreatorAvatar,
		CategoryName:        t.CategoryName,
		CategoryColor:       t.CategoryColor,
	}, nil
}
