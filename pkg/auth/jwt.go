package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"campus_circle/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	ContextKey = "auth_user"
	RoleAdmin  = "admin"
	RoleUser   = "user"

	bearerPrefix = "Bearer "
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the token payload. UserID is the opaque account id issued by the
// identity system.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type UserClaims struct {
	UserID string
	Role   string
}

func (u *UserClaims) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type JWTAuth struct {
	secret   []byte
	tokenTTL time.Duration
}

func NewJWTAuth(secret string, tokenTTL time.Duration) *JWTAuth {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &JWTAuth{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

func (a *JWTAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Info("missing authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authorization header is required"})
			return
		}

		if !strings.HasPrefix(authHeader, bearerPrefix) {
			log.Info("invalid authorization header format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid authorization format"})
			return
		}

		user, err := a.Parse(strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix)))
		if err != nil {
			log.Info("invalid bearer token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid or expired token"})
			return
		}

		c.Set(ContextKey, user)
		c.Next()
	}
}

// Parse validates an HS256 token and returns its identity.
func (a *JWTAuth) Parse(tokenString string) (*UserClaims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	role := claims.Role
	if role == "" {
		role = RoleUser
	}

	return &UserClaims{UserID: claims.UserID, Role: role}, nil
}

// IssueToken signs a token for userID. Accounts are managed elsewhere; this
// is used by tooling and tests.
func (a *JWTAuth) IssueToken(userID, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// UserFromContext returns the identity placed by Middleware.
func UserFromContext(c *gin.Context) (*UserClaims, bool) {
	v, exists := c.Get(ContextKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*UserClaims)
	return user, ok
}
