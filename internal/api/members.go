package api

import (
	"net/http"
	"time"

	"campus_circle/internal/model"
	"campus_circle/internal/service"
	"campus_circle/pkg/auth"
	"campus_circle/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type memberRoutes struct {
	ms service.MemberServiceI
}

func NewMemberRoutes(handler *gin.RouterGroup, ms service.MemberServiceI, a *auth.JWTAuth) {
	r := &memberRoutes{ms: ms}

	handler.GET("/leaderboard", r.GetLeaderboard)

	h := handler.Group("/members", a.Middleware())
	{
		h.GET("/me", r.GetMe)
		h.PUT("/me", r.SyncMe)
	}
}

type MemberResponse struct {
	ID        string    `json:"id"`
	Nickname  string    `json:"nickname"`
	AvatarURL *string   `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

type SyncMemberRequest struct {
	Nickname  string  `json:"nickname"`
	AvatarURL *string `json:"avatar_url"`
}

type LeaderboardEntryResponse struct {
	Rank        int     `json:"rank"`
	UserID      string  `json:"user_id"`
	Nickname    string  `json:"nickname"`
	AvatarURL   *string `json:"avatar_url"`
	TotalPoints int     `json:"total_points"`
	Level       int     `json:"level"`
}

func newMemberResponse(m *model.Member) MemberResponse {
	return MemberResponse{
		ID:        m.ID,
		Nickname:  m.Nickname,
		AvatarURL: m.AvatarURL,
		CreatedAt: m.CreatedAt,
	}
}

func (r *memberRoutes) GetMe(c *gin.Context) {
	user, exists := currentUser(c)
	if !exists {
		return
	}

	m, err := r.ms.Member(c.Request.Context(), user.UserID)
	if err != nil {
		respondError(c, err, "get member", zap.String("user_id", user.UserID))
		return
	}

	ok(c, http.StatusOK, "", newMemberResponse(m))
}

func (r *memberRoutes) SyncMe(c *gin.Context) {
	log := logger.Logger()

	user, exists := currentUser(c)
	if !exists {
		return
	}

	var req SyncMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Info("failed to bind request", zap.Error(err))
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	m, err := r.ms.Sync(c.Request.Context(), user.UserID, req.Nickname, req.AvatarURL)
	if err != nil {
		respondError(c, err, "sync member", zap.String("user_id", user.UserID))
		return
	}

	ok(c, http.StatusOK, "Member synced", newMemberResponse(m))
}

func (r *memberRoutes) GetLeaderboard(c *gin.Context) {
	entries, err := r.ms.Leaderboard(c.Request.Context(), queryInt(c, "limit", 0))
	if err != nil {
		respondError(c, err, "get leaderboard")
		return
	}

	out := make([]LeaderboardEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = LeaderboardEntryResponse{
			Rank:        e.Rank,
			UserID:      e.UserID,
			Nickname:    e.Nickname,
			AvatarURL:   e.AvatarURL,
			TotalPoints: e.TotalPoints,
			Level:       e.Level,
		}
	}

	ok(c, http.StatusOK, "", out)
}
