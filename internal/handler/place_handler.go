package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/storelocator/internal/middleware"
	"github.com/suteetoe/storelocator/internal/model"
	"github.com/suteetoe/storelocator/pkg/config"
	"github.com/suteetoe/storelocator/pkg/logger"
	"github.com/suteetoe/storelocator/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PlaceHandler serves the legacy per-user place routes. New clients should
// use the brand-scoped routes; these stay for pre-migration data.
type PlaceHandler struct {
	db  *gorm.DB
	geo *config.GeoConfig
}

// NewPlaceHandler creates a place handler
func NewPlaceHandler(db *gorm.DB, geoConf *config.GeoConfig) *PlaceHandler {
	return &PlaceHandler{db: db, geo: geoConf}
}

// Near handles GET /places/near for the caller's own places
func (h *PlaceHandler) Near(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordPlaceOperation("near")

	auth := middleware.AuthFromEcho(c)
	if auth == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	params, ok := parseNearParams(c, h.geo)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Latitude and longitude are required and must be valid numbers",
		})
	}

	defer prometheus.ObserveGeoQuery("user", time.Now())

	results, err := findNearbyPlaces(h.db, model.PersonalScope(auth.UserID), params)
	if err != nil {
		log.Error("Failed to query nearby places", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, results)
}

// Create handles POST /places. The legacy store refuses an exact duplicate of
// an existing coordinate pair for the same owner.
func (h *PlaceHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordPlaceOperation("create")

	auth := middleware.AuthFromEcho(c)
	if auth == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	var req placeRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse place creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if fields := validatePlaceRequest(&req); fields != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	var existing model.Place
	result := h.db.Where("lat = ? AND lng = ? AND user_id = ?", *req.Lat, *req.Lng, auth.UserID).First(&existing)
	if result.Error == nil {
		log.Warn("Duplicate place rejected",
			zap.String("user_id", auth.UserID),
			zap.Float64("lat", *req.Lat),
			zap.Float64("lng", *req.Lng))
		return c.JSON(http.StatusConflict, echo.Map{"error": "A place with these coordinates already exists"})
	}
	if result.Error != gorm.ErrRecordNotFound {
		log.Error("Failed to check for duplicate place", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	place := model.NewPlace(req.Name, req.Address, req.City, req.State, *req.Lat, *req.Lng,
		model.PersonalScope(auth.UserID))

	if result := h.db.Create(&place); result.Error != nil {
		log.Error("Failed to create place", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	log.Info("Place created",
		zap.String("name", place.Name),
		zap.Uint("id", place.ID),
		zap.String("user_id", auth.UserID))

	return c.JSON(http.StatusCreated, place)
}

// ListByUser handles GET /places/user?userId=, the unauthenticated legacy
// listing
func (h *PlaceHandler) ListByUser(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordPlaceOperation("list")

	userID := c.QueryParam("userId")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userId is required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var places []model.Place
	if result := h.db.Where("user_id = ?", userID).Find(&places); result.Error != nil {
		log.Error("Failed to list places", zap.String("user_id", userID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, places)
}

// Delete handles DELETE /places?id=. The delete is scoped to the caller, so a
// record owned by someone else reads as not found rather than forbidden.
func (h *PlaceHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordPlaceOperation("delete")

	auth := middleware.AuthFromEcho(c)
	if auth == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	rawID := c.QueryParam("id")
	if rawID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id is required"})
	}
	placeID, err := strconv.ParseUint(rawID, 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id must be a number"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := h.db.Where("id = ? AND user_id = ?", placeID, auth.UserID).Delete(&model.Place{})
	if result.Error != nil {
		log.Error("Failed to delete place", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Place not found or you are not authorized"})
	}

	log.Info("Place deleted", zap.Uint64("id", placeID), zap.String("user_id", auth.UserID))

	return c.JSON(http.StatusOK, echo.Map{"message": "Place deleted successfully"})
}
