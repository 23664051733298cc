package api

import (
	"context"
	"net/http"
	"time"

	"campus_circle/internal/middleware"
	"campus_circle/internal/service"
	"campus_circle/pkg/auth"
	"campus_circle/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterDeps struct {
	Points  service.PointsServiceI
	Checkin service.CheckinServiceI
	Tasks   service.TaskServiceI
	Members service.MemberServiceI
	Auth    *auth.JWTAuth
	DB      Pinger
}

// NewRouter builds the engine with every route mounted under /api/v1.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api/v1")
	NewHealthRoutes(a, deps.DB)
	NewCheckinRoutes(a, deps.Checkin, deps.Auth)
	NewPointsRoutes(a, deps.Points, deps.Auth, middleware.NewAuthorization())
	NewTaskRoutes(a, deps.Tasks, deps.Auth)
	NewMemberRoutes(a, deps.Members, deps.Auth)

	return router
}

type healthRoutes struct {
	db Pinger
}

func NewHealthRoutes(handler *gin.RouterGroup, db Pinger) {
	r := &healthRoutes{db: db}
	handler.GET("/health", r.Health)
}

func (r *healthRoutes) Health(c *gin.Context) {
	if r.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := r.db.Ping(ctx); err != nil {
			logger.Logger().Error("database ping failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, Response{Success: false, Message: "database unavailable"})
			return
		}
	}

	ok(c, http.StatusOK, "Server is running", gin.H{"timestamp": time.Now().UTC()})
}
