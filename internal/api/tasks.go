package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"campus_circle/internal/model"
	"campus_circle/internal/service"
	"campus_circle/pkg/auth"
	"campus_circle/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultRewardValue = 10

type taskRoutes struct {
	ts service.TaskServiceI
}

func NewTaskRoutes(handler *gin.RouterGroup, ts service.TaskServiceI, a *auth.JWTAuth) {
	r := &taskRoutes{ts: ts}
	h := handler.Group("/tasks")
	{
		h.GET("", r.ListTasks)
		h.GET("/:taskId", r.GetTaskDetail)
		h.POST("", a.Middleware(), r.CreateTask)
		h.POST("/:taskId/join", a.Middleware(), r.JoinTask)
	}

	handler.GET("/task-categories", r.GetCategories)
}

type CreateTaskRequest struct {
	CategoryID        int        `json:"category_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Requirements      []any      `json:"requirements"`
	RewardType        int        `json:"reward_type"`
	RewardValue       *int       `json:"reward_value"`
	RewardDescription *string    `json:"reward_description"`
	MaxParticipants   *int       `json:"max_participants"`
	DifficultyLevel   int        `json:"difficulty_level"`
	EstimatedTime     *int       `json:"estimated_time"`
	StartTime         *time.Time `json:"start_time"`
	EndTime           *time.Time `json:"end_time"`
	LocationRequired  bool       `json:"location_required"`
	LocationAddress   *string    `json:"location_address"`
	ImageRequired     bool       `json:"image_required"`
}

type TaskResponse struct {
	ID                  string     `json:"id"`
	CategoryID          int        `json:"category_id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Requirements        []any      `json:"requirements"`
	RewardType          int        `json:"reward_type"`
	RewardValue         int        `json:"reward_value"`
	RewardDescription   *string    `json:"reward_description"`
	MaxParticipants     *int       `json:"max_participants"`
	CurrentParticipants int        `json:"current_participants"`
	DifficultyLevel     int        `json:"difficulty_level"`
	EstimatedTime       *int       `json:"estimated_time"`
	StartTime           *time.Time `json:"start_time"`
	EndTime             time.Time  `json:"end_time"`
	LocationRequired    bool       `json:"location_required"`
	LocationAddress     *string    `json:"location_address"`
	ImageRequired       bool       `json:"image_required"`
	Status              int        `json:"status"`
	CreatedBy           string     `json:"created_by"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	CreatorName         *string    `json:"creator_name"`
	CreatorAvatar       *string    `json:"creator_avatar"`
	CategoryName        *string    `json:"category_name"`
	CategoryColor       *string    `json:"category_color"`
	IsFull              bool       `json:"is_full"`
}

type ParticipationResponse struct {
	ID         string    `json:"id"`
	TaskID     string    `json:"task_id"`
	UserID     string    `json:"user_id"`
	Status     int       `json:"status"`
	Progress   int       `json:"progress"`
	StartedAt  time.Time `json:"started_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	UserName   *string   `json:"user_name,omitempty"`
	UserAvatar *string   `json:"user_avatar,omitempty"`
}

type TaskListResponse struct {
	Tasks      []TaskResponse     `json:"tasks"`
	Pagination PaginationResponse `json:"pagination"`
}

type TaskDetailResponse struct {
	Task         TaskResponse            `json:"task"`
	Participants []ParticipationResponse `json:"participants"`
}

type TaskCategoryResponse struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	SortOrder   int       `json:"sort_order"`
	Status      int       `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r *taskRoutes) ListTasks(c *gin.Context) {
	categoryIDs, err := parseCategoryIDs(c.Query("category_id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid category_id")
		return
	}

	status := queryInt(c, "status", int(model.TaskOpen))
	if status == 0 {
		status = int(model.TaskOpen)
	}

	list, err := r.ts.ListTasks(c.Request.Context(), model.TaskQuery{
		Page:        queryInt(c, "page", 1),
		Limit:       queryInt(c, "limit", 0),
		CategoryIDs: categoryIDs,
		Status:      model.TaskStatus(status),
		Sort:        model.TaskSort(c.Query("sort")),
		Search:      c.Query("search"),
	})
	if err != nil {
		respondError(c, err, "list tasks")
		return
	}

	out := make([]TaskResponse, len(list.Tasks))
	for i, t := range list.Tasks {
		out[i] = newTaskResponse(t)
	}

	ok(c, http.StatusOK, "", TaskListResponse{
		Tasks:      out,
		Pagination: newPaginationResponse(list.Pagination),
	})
}

func (r *taskRoutes) GetTaskDetail(c *gin.Context) {
	taskID := c.Param("taskId")

	detail, err := r.ts.TaskDetail(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, err, "get task detail", zap.String("task_id", taskID))
		return
	}

	participants := make([]ParticipationResponse, len(detail.Participants))
	for i, p := range detail.Participants {
		participants[i] = newParticipationResponse(p)
	}

	ok(c, http.StatusOK, "", TaskDetailResponse{
		Task:         newTaskResponse(detail.Task),
		Participants: participants,
	})
}

func (r *taskRoutes) CreateTask(c *gin.Context) {
	log := logger.Logger()

	user, exists := currentUser(c)
	if !exists {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Info("failed to bind request", zap.Error(err))
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	rewardValue := defaultRewardValue
	if req.RewardValue != nil {
		rewardValue = *req.RewardValue
	}

	task, err := r.ts.CreateTask(c.Request.Context(), &model.CreateTaskRequest{
		CategoryID:        req.CategoryID,
		Title:             req.Title,
		Description:       req.Description,
		Requirements:      req.Requirements,
		RewardType:        model.RewardType(req.RewardType),
		RewardValue:       rewardValue,
		RewardDescription: req.RewardDescription,
		MaxParticipants:   req.MaxParticipants,
		DifficultyLevel:   req.DifficultyLevel,
		EstimatedTime:     req.EstimatedTime,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		LocationRequired:  req.LocationRequired,
		LocationAddress:   req.LocationAddress,
		ImageRequired:     req.ImageRequired,
		CreatedBy:         user.UserID,
	})
	if err != nil {
		respondError(c, err, "create task", zap.String("user_id", user.UserID))
		return
	}

	ok(c, http.StatusCreated, "Task published", newTaskResponse(task))
}

func (r *taskRoutes) JoinTask(c *gin.Context) {
	user, exists := currentUser(c)
	if !exists {
		return
	}

	taskID := c.Param("taskId")
	p, err := r.ts.JoinTask(c.Request.Context(), taskID, user.UserID)
	if err != nil {
		respondError(c, err, "join task", zap.String("user_id", user.UserID), zap.String("task_id", taskID))
		return
	}

	ok(c, http.StatusCreated, "Joined task", newParticipationResponse(p))
}

func (r *taskRoutes) GetCategories(c *gin.Context) {
	categories, err := r.ts.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err, "get task categories")
		return
	}

	out := make([]TaskCategoryResponse, len(categories))
	for i, cat := range categories {
		out[i] = TaskCategoryResponse{
			ID:          cat.ID,
			Name:        cat.Name,
			Description: cat.Description,
			Icon:        cat.Icon,
			Color:       cat.Color,
			SortOrder:   cat.SortOrder,
			Status:      cat.Status,
			CreatedAt:   cat.CreatedAt,
			UpdatedAt:   cat.UpdatedAt,
		}
	}

	ok(c, http.StatusOK, "", gin.H{"categories": out})
}

// parseCategoryIDs reads a comma separated list such as "1,3".
func parseCategoryIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func newTaskResponse(t *model.Task) TaskResponse {
	requirements := t.Requirements
	if requirements == nil {
		requirements = []any{}
	}
	return TaskResponse{
		ID:                  t.ID,
		CategoryID:          t.CategoryID,
		Title:               t.Title,
		Description:         t.Description,
		Requirements:        requirements,
		RewardType:          int(t.RewardType),
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
		Status:              int(t.Status),
		CreatedBy:           t.CreatedBy,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
		CreatorName:         t.CreatorName,
		CreatorAvatar:       t.CreatorAvatar,
		CategoryName:        t.CategoryName,
		CategoryColor:       t.CategoryColor,
		IsFull:              t.Full(),
	}
}

func newParticipationResponse(p *model.Participation) ParticipationResponse {
	return ParticipationResponse{
		ID:         p.ID,
		TaskID:     p.TaskID,
		UserID:     p.UserID,
		Status:     int(p.Status),
		Progress:   p.Progress,
		StartedAt:  p.StartedAt,
		UpdatedAt:  p.UpdatedAt,
		UserName:   p.UserName,
		UserAvatar: p.UserAvatar,
	}
}
