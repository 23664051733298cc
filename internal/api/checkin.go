package api

import (
	"fmt"
	"net/http"
	"time"

	"campus_circle/internal/model"
	"campus_circle/internal/service"
	"campus_circle/pkg/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type checkinRoutes struct {
	cs service.CheckinServiceI
}

func NewCheckinRoutes(handler *gin.RouterGroup, cs service.CheckinServiceI, a *auth.JWTAuth) {
	r := &checkinRoutes{cs: cs}
	h := handler.Group("/checkin")
	{
		h.GET("/rules", r.GetRules)

		h.GET("/status", a.Middleware(), r.GetStatus)
		h.POST("", a.Middleware(), r.Checkin)
		h.GET("/history", a.Middleware(), r.GetHistory)
	}
}

type CheckinStatusResponse struct {
	HasCheckedInToday bool      `json:"has_checked_in_today"`
	ConsecutiveDays   int       `json:"consecutive_days"`
	TotalCheckinDays  int       `json:"total_checkin_days"`
	TodayPoints       int       `json:"today_points"`
	TomorrowPoints    int       `json:"tomorrow_points"`
	LastCheckinDate   *string   `json:"last_checkin_date"`
	NextCheckinDate   time.Time `json:"next_checkin_date"`
}

type CheckinResponse struct {
	CheckinID       string `json:"checkin_id"`
	ConsecutiveDays int    `json:"consecutive_days"`
	PointsEarned    int    `json:"points_earned"`
	TotalPoints     int    `json:"total_points"`
	CheckinDate     string `json:"checkin_date"`
}

type CheckinRecordResponse struct {
	ID              string    `json:"id"`
	CheckinDate     string    `json:"checkin_date"`
	ConsecutiveDays int       `json:"consecutive_days"`
	PointsEarned    int       `json:"points_earned"`
	CreatedAt       time.Time `json:"created_at"`
}

type CheckinHistoryResponse struct {
	Checkins   []CheckinRecordResponse `json:"checkins"`
	Pagination PaginationResponse      `json:"pagination"`
}

type CheckinRuleResponse struct {
	Day         int    `json:"day"`
	Points      int    `json:"points"`
	Description string `json:"description"`
	IsBonus     bool   `json:"is_bonus"`
}

type CheckinRulesResponse struct {
	Rules       []CheckinRuleResponse `json:"rules"`
	Description string                `json:"description"`
}

func (r *checkinRoutes) GetStatus(c *gin.Context) {
	user, exists := currentUser(c)
	if !exists {
		return
	}

	status, err := r.cs.Status(c.Request.Context(), user.UserID)
	if err != nil {
		respondError(c, err, "get checkin status", zap.String("user_id", user.UserID))
		return
	}

	response := CheckinStatusResponse{
		HasCheckedInToday: status.HasCheckedInToday,
		ConsecutiveDays:   status.ConsecutiveDays,
		TotalCheckinDays:  status.TotalDays,
		TodayPoints:       status.TodayPoints,
		TomorrowPoints:    status.TomorrowPoints,
		NextCheckinDate:   status.NextCheckinDate,
	}
	if status.LastCheckinDate != nil {
		last := status.LastCheckinDate.Format(dateLayout)
		response.LastCheckinDate = &last
	}

	ok(c, http.StatusOK, "", response)
}

func (r *checkinRoutes) Checkin(c *gin.Context) {
	user, exists := currentUser(c)
	if !exists {
		return
	}

	result, err := r.cs.Checkin(c.Request.Context(), user.UserID)
	if err != nil {
		respondError(c, err, "check in", zap.String("user_id", user.UserID))
		return
	}

	rec := result.Record
	message := fmt.Sprintf("Checked in! %d days in a row, earned %d points", rec.ConsecutiveDays, rec.PointsEarned)
	ok(c, http.StatusOK, message, CheckinResponse{
		CheckinID:       rec.ID,
		ConsecutiveDays: rec.ConsecutiveDays,
		PointsEarned:    rec.PointsEarned,
		TotalPoints:     result.TotalPoints,
		CheckinDate:     rec.CheckinDate.Format(dateLayout),
	})
}

func (r *checkinRoutes) GetHistory(c *gin.Context) {
	user, exists := currentUser(c)
	if !exists {
		return
	}

	records, page, err := r.cs.CheckinHistory(c.Request.Context(), user.UserID, queryInt(c, "page", 1), queryInt(c, "limit", 0))
	if err != nil {
		respondError(c, err, "get checkin history", zap.String("user_id", user.UserID))
		return
	}

	out := make([]CheckinRecordResponse, len(records))
	for i, rec := range records {
		out[i] = newCheckinRecordResponse(rec)
	}

	ok(c, http.StatusOK, "", CheckinHistoryResponse{
		Checkins:   out,
		Pagination: newPaginationResponse(page),
	})
}

func (r *checkinRoutes) GetRules(c *gin.Context) {
	rules := service.CheckinRules()

	out := make([]CheckinRuleResponse, len(rules))
	for i, rule := range rules {
		out[i] = CheckinRuleResponse{
			Day:         rule.Day,
			Points:      rule.Points,
			Description: rule.Description,
			IsBonus:     rule.IsBonus,
		}
	}

	ok(c, http.StatusOK, "", CheckinRulesResponse{
		Rules:       out,
		Description: "Consecutive check-ins earn more points; missing a day restarts the streak",
	})
}

func newCheckinRecordResponse(rec *model.CheckinRecord) CheckinRecordResponse {
	return CheckinRecordResponse{
		ID:              rec.ID,
		CheckinDate:     rec.CheckinDate.Format(dateLayout),
		ConsecutiveDays: rec.ConsecutiveDays,
		PointsEarned:    rec.PointsEarned,
		CreatedAt:       rec.CreatedAt,
	}
}
