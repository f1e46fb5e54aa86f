package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/storelocator/internal/middleware"
	"github.com/suteetoe/storelocator/internal/model"
	"github.com/suteetoe/storelocator/pkg/logger"
	"github.com/suteetoe/storelocator/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// APIKeyHandler serves API key management endpoints. Key management is only
// available to session-authenticated callers: a request that authenticated
// with an API key cannot inspect or rotate keys.
type APIKeyHandler struct {
	db *gorm.DB
}

// NewAPIKeyHandler creates an API key handler
func NewAPIKeyHandler(db *gorm.DB) *APIKeyHandler {
	return &APIKeyHandler{db: db}
}

// sessionUser returns the resolved identity, rejecting API-key callers.
func sessionUser(c echo.Context) (string, bool) {
	auth := middleware.AuthFromEcho(c)
	if auth == nil || auth.IsAPIKey {
		return "", false
	}
	return auth.UserID, true
}

// Get returns metadata about the caller's key, or hasKey=false
func (h *APIKeyHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordAPIKeyOperation("get")

	userID, ok := sessionUser(c)
	if !ok {
		prometheus.RecordAuthError("api_key_management_requires_session")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var key model.APIKey
	result := h.db.Where("user_id = ?", userID).First(&key)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusOK, echo.Map{"hasKey": false})
		}
		log.Error("Failed to look up API key", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"hasKey":    true,
		"name":      key.Name,
		"isActive":  key.IsActive,
		"lastUsed":  key.LastUsed,
		"createdAt": key.CreatedAt,
	})
}

// Generate creates or replaces the caller's key and returns the secret once.
// The upsert on the user_id unique index means exactly one key row ever
// exists per user.
func (h *APIKeyHandler) Generate(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordAPIKeyOperation("generate")

	userID, ok := sessionUser(c)
	if !ok {
		prometheus.RecordAuthError("api_key_management_requires_session")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	newKey, err := model.GenerateAPIKey()
	if err != nil {
		log.Error("Failed to generate API key", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	key := model.APIKey{
		UserID:    userID,
		HashedKey: model.HashAPIKey(newKey),
		Name:      model.DefaultAPIKeyName,
		IsActive:  true,
		LastUsed:  nil,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	result := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"hashed_key", "name", "is_active", "last_used", "updated_at"}),
	}).Create(&key)
	if result.Error != nil {
		log.Error("Failed to store API key", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	log.Info("API key generated", zap.String("user_id", userID))

	return c.JSON(http.StatusOK, echo.Map{
		"apiKey":  newKey,
		"message": "API key generated successfully",
	})
}

// Delete removes the caller's key
func (h *APIKeyHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordAPIKeyOperation("delete")

	userID, ok := sessionUser(c)
	if !ok {
		prometheus.RecordAuthError("api_key_management_requires_session")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if result := h.db.Where("user_id = ?", userID).Delete(&model.APIKey{}); result.Error != nil {
		log.Error("Failed to delete API key", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	log.Info("API key deleted", zap.String("user_id", userID))

	return c.JSON(http.StatusOK, echo.Map{"message": "API key deleted successfully"})
}
