package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/storelocator/internal/access"
	"github.com/suteetoe/storelocator/internal/middleware"
	"github.com/suteetoe/storelocator/internal/model"
	"github.com/suteetoe/storelocator/pkg/config"
	"github.com/suteetoe/storelocator/pkg/logger"
	"github.com/suteetoe/storelocator/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BrandPlaceHandler serves the brand-scoped place routes
type BrandPlaceHandler struct {
	db  *gorm.DB
	geo *config.GeoConfig
}

// NewBrandPlaceHandler creates a brand place handler
func NewBrandPlaceHandler(db *gorm.DB, geoConf *config.GeoConfig) *BrandPlaceHandler {
	return &BrandPlaceHandler{db: db, geo: geoConf}
}

// Near handles GET /brands/:id/places/near for any member of the brand
func (h *BrandPlaceHandler) Near(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordPlaceOperation("near")

	auth := middleware.AuthFromEcho(c)
	if auth == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	brandID, ok := brandIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid brand ID"})
	}

	if access.ValidateBrandAccess(h.db, auth.UserID, brandID, "") == nil {
		prometheus.RecordAuthError("brand_access_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Forbidden"})
	}

	params, ok := parseNearParams(c, h.geo)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "lat and lng are required"})
	}

	defer prometheus.ObserveGeoQuery("brand", time.Now())

	results, err := findNearbyPlaces(h.db, model.BrandScope(brandID), params)
	if err != nil {
		log.Error("Failed to query nearby places",
			zap.Uint("brand_id", brandID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch nearby places"})
	}

	return c.JSON(http.StatusOK, results)
}

// Create handles POST /brands/:id/places for any member of the brand. Unlike
// the legacy store there is no duplicate-coordinate check.
func (h *BrandPlaceHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordPlaceOperation("create")

	auth := middleware.AuthFromEcho(c)
	if auth == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	brandID, ok := brandIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid brand ID"})
	}

	if access.ValidateBrandAccess(h.db, auth.UserID, brandID, "") == nil {
		prometheus.RecordAuthError("brand_access_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Forbidden"})
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

	place := model.NewPlace(req.Name, req.Address, req.City, req.State, *req.Lat, *req.Lng,
		model.BrandScope(brandID))

	if result := h.db.Create(&place); result.Error != nil {
		log.Error("Failed to create place", zap.Uint("brand_id", brandID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create place"})
	}

	log.Info("Place created",
		zap.String("name", place.Name),
		zap.Uint("id", place.ID),
		zap.Uint("brand_id", brandID),
		zap.String("user_id", auth.UserID))

	return c.JSON(http.StatusCreated, place)
}
