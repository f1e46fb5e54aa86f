package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/storelocator/internal/model"
	"github.com/suteetoe/storelocator/pkg/jwtutil"
	"github.com/suteetoe/storelocator/pkg/logger"
	"github.com/suteetoe/storelocator/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthResult identifies the caller of an authenticated request.
type AuthResult struct {
	UserID   string
	IsAPIKey bool
}

const authContextKey = "auth"

// AuthFromEcho retrieves the resolved identity from the Echo context, or nil
// when the route was not behind DualAuthMiddleware.
func AuthFromEcho(c echo.Context) *AuthResult {
	auth, ok := c.Get(authContextKey).(*AuthResult)
	if !ok {
		return nil
	}
	return auth
}

// DualAuthMiddleware resolves the caller either from an API-key bearer token
// (tokens carrying the key prefix, matched by hash against active keys) or
// from a provider-issued session token. Requests that resolve neither way
// get 401. API-key lookups fail closed: a database error reads as "no key".
func DualAuthMiddleware(db *gorm.DB, jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing authorization header")
				prometheus.RecordAuthError("missing_header")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format")
				prometheus.RecordAuthError("invalid_header")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
			}

			token := parts[1]

			if strings.HasPrefix(token, model.APIKeyPrefix) {
				auth := authenticateAPIKey(db, log, token)
				if auth == nil {
					prometheus.RecordAuthError("api_key_not_found")
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
				}
				c.Set(authContextKey, auth)
				return next(c)
			}

			claims, err := jwtUtil.ValidateToken(token)
			if err != nil {
				log.Warn("Invalid or expired session token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
			}

			c.Set(authContextKey, &AuthResult{UserID: claims.Subject, IsAPIKey: false})
			return next(c)
		}
	}
}

func authenticateAPIKey(db *gorm.DB, log *zap.Logger, apiKey string) *AuthResult {
	hashedKey := model.HashAPIKey(apiKey)

	var key model.APIKey
	result := db.Where("hashed_key = ? AND is_active = ?", hashedKey, true).First(&key)
	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			log.Error("API key lookup failed", zap.Error(result.Error))
		}
		return nil
	}

	prometheus.RecordAPIKeyOperation("authenticate")

	// Best-effort usage stamp; an error here must not fail the request.
	now := time.Now()
	if err := db.Model(&model.APIKey{}).Where("id = ?", key.ID).Update("last_used", now).Error; err != nil {
		log.Warn("Failed to update API key last_used", zap.Error(err))
	}

	return &AuthResult{UserID: key.UserID, IsAPIKey: true}
}
