package api

import (
	"errors"
	"net/http"
	"strconv"

	"campus_circle/internal/model"
	"campus_circle/internal/service"
	"campus_circle/pkg/auth"
	"campus_circle/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const internalErrorMessage = "internal server error"

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type PaginationResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func ok(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Message: message})
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch service.KindOf(err) {
	case service.KindValidation, service.KindInsufficient:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		if errors.Is(err, service.ErrAlreadyCheckedIn) || errors.Is(err, service.ErrAlreadyJoined) {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err in the envelope. Internal errors are logged with
// their cause and answered with a generic message.
func respondError(c *gin.Context, err error, action string, fields ...zap.Field) {
	log := logger.Logger()

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("failed to "+action, append(fields, zap.Error(err))...)
		fail(c, status, internalErrorMessage)
		return
	}

	log.Info(action+" rejected", append(fields, zap.Error(err))...)
	fail(c, status, err.Error())
}

// currentUser reads the identity set by the bearer token middleware.
func currentUser(c *gin.Context) (*auth.UserClaims, bool) {
	user, exists := auth.UserFromContext(c)
	if !exists {
		logger.Logger().Error("auth user not found in context")
		fail(c, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return user, true
}

func newPaginationResponse(p model.Pagination) PaginationResponse {
	return PaginationResponse{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	}
}

// queryInt returns the integer query parameter key, or def when it is absent
// or malformed.
func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}
