package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Context keys set by Authenticate for downstream handlers.
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

// Claims carried in access tokens. Token issuance belongs to the external
// auth service; this middleware only validates and extracts the subject.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	secret []byte
	redis  *redis.Client
	claims *cache.Cache
}

func NewAuthMiddleware(secret string, redisClient *redis.Client) *AuthMiddleware {
	return &AuthMiddleware{
		secret: []byte(secret),
		redis:  redisClient,
		claims: cache.New(time.Minute, 5*time.Minute),
	}
}

// Authenticate verifies the bearer token and sets user id and role in context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWithError(c, http.StatusUnauthorized, "invalid authorization format")
			return
		}

		claims, err := m.validateToken(c.Request.Context(), parts[1])
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "invalid token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

// RequireRole rejects callers whose token role does not match.
func (m *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextUserRole) != role {
			abortWithError(c, http.StatusForbidden, "insufficient role")
			return
		}
		c.Next()
	}
}

func abortWithError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{
		Code:      status,
		Message:   message,
		RequestID: c.GetString(ContextRequestID),
	})
	c.Abort()
}

func (m *AuthMiddleware) validateToken(ctx context.Context, token string) (*Claims, error) {
	if cached, found := m.claims.Get(token); found {
		return cached.(*Claims), nil
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if err := m.checkRevoked(ctx, token); err != nil {
		return nil, err
	}

	m.claims.Set(token, claims, cache.DefaultExpiration)
	return claims, nil
}

// checkRevoked consults the shared revocation list. Redis being down fails
// open: revocation is best-effort, token expiry is the hard boundary.
func (m *AuthMiddleware) checkRevoked(ctx context.Context, token string) error {
	if m.redis == nil {
		return nil
	}
	revoked, err := m.redis.Exists(ctx, "revoked:"+token).Result()
	if err != nil {
		return nil
	}
	if revoked > 0 {
		return fmt.Errorf("token revoked")
	}
	return nil
}
