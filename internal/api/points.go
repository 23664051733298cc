package api

import (
	"net/http"
	"time"

	"campus_circle/internal/middleware"
	"campus_circle/internal/model"
	"campus_circle/internal/service"
	"campus_circle/pkg/auth"
	"campus_circle/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type pointsRoutes struct {
	ps service.PointsServiceI
}

func NewPointsRoutes(handler *gin.RouterGroup, ps service.PointsServiceI, a *auth.JWTAuth, authz *middleware.Authorization) {
	r := &pointsRoutes{ps: ps}
	h := handler.Group("/points")
	{
		h.GET("/earn-ways", r.GetEarnWays)

		h.GET("/profile", a.Middleware(), r.GetProfile)
		h.GET("/history", a.Middleware(), r.GetHistory)
		h.GET("/statistics", a.Middleware(), r.GetStatistics)
		h.POST("/add", a.Middleware(), authz.AdminOnly(), r.AddPoints)
	}
}

type PointsProfileResponse struct {
	TotalPoints     int `json:"total_points"`
	TodayEarned     int `json:"today_earned"`
	WeekEarned      int `json:"week_earned"`
	MonthEarned     int `json:"month_earned"`
	Level           int `json:"level"`
	LevelProgress   int `json:"level_progress"`
	NextLevelPoints int `json:"next_level_points"`
}

type PointsRecordResponse struct {
	ID           string    `json:"id"`
	Type         int       `json:"type"`
	SourceType   string    `json:"source_type"`
	SourceID     *string   `json:"source_id"`
	Points       int       `json:"points"`
	BalanceAfter int       `json:"balance_after"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

type PointsHistoryResponse struct {
	Records    []PointsRecordResponse `json:"records"`
	Pagination PaginationResponse     `json:"pagination"`
}

type DailyPointsResponse struct {
	Date    string `json:"date"`
	Earned  int    `json:"earned"`
	Spent   int    `json:"spent"`
	Balance int    `json:"balance"`
}

type PointsStatisticsResponse struct {
	TotalEarned    int                   `json:"total_earned"`
	TotalSpent     int                   `json:"total_spent"`
	CurrentBalance int                   `json:"current_balance"`
	EarnedBySource map[string]int        `json:"earned_by_source"`
	SpentBySource  map[string]int        `json:"spent_by_source"`
	DailyHistory   []DailyPointsResponse `json:"daily_history"`
}

type EarnWayResponse struct {
	SourceType  string `json:"source_type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      string `json:"points"`
	Conditions  string `json:"conditions"`
	DailyLimit  *int   `json:"daily_limit"`
	IsActive    bool   `json:"is_active"`
}

type AddPointsRequest struct {
	UserID      string  `json:"user_id"`
	Points      int     `json:"points"`
	SourceType  string  `json:"source_type"`
	SourceID    *string `json:"source_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
}

type AddPointsResponse struct {
	RecordID    string `json:"record_id"`
	Points      int    `json:"points"`
	TotalPoints int    `json:"total_points"`
}

func (r *pointsRoutes) GetProfile(c *gin.Context) {
	user, exists := currentUser(c)
	if !exists {
		return
	}

	summary, err := r.ps.Profile(c.Request.Context(), user.UserID)
	if err != nil {
		respondError(c, err, "get points profile", zap.String("user_id", user.UserID))
		return
	}

	ok(c, http.StatusOK, "", PointsProfileResponse{
		TotalPoints:     summary.TotalPoints,
		TodayEarned:     summary.TodayEarned,
		WeekEarned:      summary.WeekEarned,
		MonthEarned:     summary.MonthEarned,
		Level:           summary.Level,
		LevelProgress:   summary.LevelProgress,
		NextLevelPoints: summary.NextLevelPoints,
	})
}

func (r *pointsRoutes) GetHistory(c *gin.Context) {
	user, exists := currentUser(c)
	if !exists {
		return
	}

	filter := service.HistoryFilter(c.Query("type"))
	records, page, err := r.ps.History(c.Request.Context(), user.UserID, filter, queryInt(c, "page", 1), queryInt(c, "limit", 0))
	if err != nil {
		respondError(c, err, "get points history", zap.String("user_id", user.UserID))
		return
	}

	out := make([]PointsRecordResponse, len(records))
	for i, rec := range records {
		out[i] = newPointsRecordResponse(rec)
	}

	ok(c, http.StatusOK, "", PointsHistoryResponse{
		Records:    out,
		Pagination: newPaginationResponse(page),
	})
}

func (r *pointsRoutes) GetStatistics(c *gin.Context) {
	user, exists := currentUser(c)
	if !exists {
		return
	}

	stats, err := r.ps.Statistics(c.Request.Context(), user.UserID)
	if err != nil {
		respondError(c, err, "get points statistics", zap.String("user_id", user.UserID))
		return
	}

	response := PointsStatisticsResponse{
		TotalEarned:    stats.TotalEarned,
		TotalSpent:     stats.TotalSpent,
		CurrentBalance: stats.CurrentBalance,
		EarnedBySource: make(map[string]int, len(stats.EarnedBySource)),
		SpentBySource:  make(map[string]int, len(stats.SpentBySource)),
		DailyHistory:   make([]DailyPointsResponse, len(stats.DailyHistory)),
	}
	for k, v := range stats.EarnedBySource {
		response.EarnedBySource[string(k)] = v
	}
	for k, v := range stats.SpentBySource {
		response.SpentBySource[string(k)] = v
	}
	for i, d := range stats.DailyHistory {
		response.DailyHistory[i] = DailyPointsResponse{
			Date:    d.Date.Format(dateLayout),
			Earned:  d.Earned,
			Spent:   d.Spent,
			Balance: stats.CurrentBalance,
		}
	}

	ok(c, http.StatusOK, "", response)
}

func (r *pointsRoutes) GetEarnWays(c *gin.Context) {
	ways := service.EarnWays()

	out := make([]EarnWayResponse, len(ways))
	for i, w := range ways {
		out[i] = EarnWayResponse{
			SourceType:  string(w.SourceType),
			Title:       w.Title,
			Description: w.Description,
			Points:      w.Points,
			Conditions:  w.Conditions,
			DailyLimit:  w.DailyLimit,
			IsActive:    w.IsActive,
		}
	}

	ok(c, http.StatusOK, "", gin.H{"earn_ways": out})
}

// AddPoints credits points to user_id, or to the caller when it is omitted.
func (r *pointsRoutes) AddPoints(c *gin.Context) {
	log := logger.Logger()

	user, exists := currentUser(c)
	if !exists {
		return
	}

	var req AddPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Info("failed to bind request", zap.Error(err))
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	target := req.UserID
	if target == "" {
		target = user.UserID
	}

	rec, err := r.ps.ManualAdd(c.Request.Context(), service.ManualAddRequest{
		UserID:      target,
		Points:      req.Points,
		SourceType:  model.SourceType(req.SourceType),
		SourceID:    req.SourceID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err, "add points", zap.String("user_id", target), zap.String("admin_id", user.UserID))
		return
	}

	ok(c, http.StatusOK, "Points added", AddPointsResponse{
		RecordID:    rec.ID,
		Points:      rec.Points,
		TotalPoints: rec.BalanceAfter,
	})
}

func newPointsRecordResponse(rec *model.PointsRecord) PointsRecordResponse {
	return PointsRecordResponse{
		ID:           rec.ID,
		Type:         int(rec.Direction),
		SourceType:   string(rec.SourceType),
		SourceID:     rec.SourceID,
		Points:       rec.Points,
		BalanceAfter: rec.BalanceAfter,
		Title:        rec.Title,
		Description:  rec.Description,
		CreatedAt:    rec.CreatedAt,
	}
}
