package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/storelocator/internal/access"
	"github.com/suteetoe/storelocator/internal/middleware"
	"github.com/suteetoe/storelocator/internal/model"
	"github.com/suteetoe/storelocator/pkg/logger"
	"github.com/suteetoe/storelocator/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BrandHandler serves brand lifecycle endpoints
type BrandHandler struct {
	db *gorm.DB
}

// NewBrandHandler creates a brand handler
func NewBrandHandler(db *gorm.DB) *BrandHandler {
	return &BrandHandler{db: db}
}

// brandWithRole enriches a brand with the caller's membership role.
type brandWithRole struct {
	model.Brand
	Role string `json:"role"`
}

func brandIDParam(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// List handles GET /brands, returning every brand the caller belongs to with
// the caller's role, newest first
func (h *BrandHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordBrandOperation("list")

	auth := middleware.AuthFromEcho(c)
	if auth == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var memberships []model.BrandMember
	if result := h.db.Where("user_id = ?", auth.UserID).Find(&memberships); result.Error != nil {
		log.Error("Failed to list memberships", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch brands"})
	}

	roleByBrand := make(map[uint]string, len(memberships))
	brandIDs := make([]uint, 0, len(memberships))
	for _, m := range memberships {
		roleByBrand[m.BrandID] = m.Role
		brandIDs = append(brandIDs, m.BrandID)
	}

	brands := []model.Brand{}
	if len(brandIDs) > 0 {
		if result := h.db.Where("id IN ?", brandIDs).Order("created_at DESC").Find(&brands); result.Error != nil {
			log.Error("Failed to list brands", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch brands"})
		}
	}

	response := make([]brandWithRole, 0, len(brands))
	for _, b := range brands {
		response = append(response, brandWithRole{Brand: b, Role: roleByBrand[b.ID]})
	}

	return c.JSON(http.StatusOK, response)
}

// Create handles POST /brands. The brand and its owner membership are created
// in one transaction so a crash cannot leave a brand without an owner.
func (h *BrandHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordBrandOperation("create")

	auth := middleware.AuthFromEcho(c)
	if auth == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse brand creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if fields := validateBrandName(req.Name, true, req.Description); fields != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	brand := model.Brand{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     auth.UserID,
	}

	now := time.Now()
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&brand); result.Error != nil {
			return result.Error
		}
		membership := model.BrandMember{
			BrandID:    brand.ID,
			UserID:     auth.UserID,
			Role:       model.RoleOwner,
			AcceptedAt: &now,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		log.Error("Failed to create brand", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create brand"})
	}

	log.Info("Brand created",
		zap.String("name", brand.Name),
		zap.Uint("id", brand.ID),
		zap.String("owner_id", brand.OwnerID))

	return c.JSON(http.StatusCreated, brandWithRole{Brand: brand, Role: model.RoleOwner})
}

// Get handles GET /brands/:id for any member of the brand
func (h *BrandHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordBrandOperation("access")

	auth := middleware.AuthFromEcho(c)
	if auth == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	brandID, ok := brandIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid brand ID"})
	}

	membership := access.ValidateBrandAccess(h.db, auth.UserID, brandID, "")
	if membership == nil {
		prometheus.RecordAuthError("brand_access_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Forbidden"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var brand model.Brand
	if result := h.db.First(&brand, brandID); result.Error != nil {
		log.Error("Brand not found", zap.Uint("id", brandID), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Brand not found"})
	}

	return c.JSON(http.StatusOK, brandWithRole{Brand: brand, Role: membership.Role})
}

// Update handles PUT /brands/:id, applying a partial patch. Requires admin or
// above.
func (h *BrandHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordBrandOperation("update")

	auth := middleware.AuthFromEcho(c)
	if auth == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	brandID, ok := brandIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid brand ID"})
	}

	membership := access.ValidateBrandAccess(h.db, auth.UserID, brandID, model.RoleAdmin)
	if membership == nil {
		prometheus.RecordAuthError("brand_admin_required")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Forbidden - Admin access required"})
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse brand update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if fields := validateBrandName(*req.Name, true, ""); fields != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
		}
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		if fields := validateBrandName("-", false, *req.Description); fields != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
		}
		updates["description"] = *req.Description
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var brand model.Brand
	if result := h.db.First(&brand, brandID); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Brand not found"})
	}

	if len(updates) > 0 {
		if result := h.db.Model(&brand).Updates(updates); result.Error != nil {
			log.Error("Failed to update brand", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update brand"})
		}
	}

	log.Info("Brand updated", zap.Uint("id", brandID), zap.String("user_id", auth.UserID))

	return c.JSON(http.StatusOK, brandWithRole{Brand: brand, Role: membership.Role})
}

// Delete handles DELETE /brands/:id. Owner only; places, members and the
// brand row go in one transaction.
func (h *BrandHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordBrandOperation("delete")

	auth := middleware.AuthFromEcho(c)
	if auth == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	brandID, ok := brandIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid brand ID"})
	}

	if access.ValidateBrandAccess(h.db, auth.UserID, brandID, model.RoleOwner) == nil {
		prometheus.RecordAuthError("brand_owner_required")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Forbidden - Owner access required"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if result := tx.Where("brand_id = ?", brandID).Delete(&model.Place{}); result.Error != nil {
			return result.Error
		}
		if result := tx.Where("brand_id = ?", brandID).Delete(&model.BrandMember{}); result.Error != nil {
			return result.Error
		}
		return tx.Delete(&model.Brand{}, brandID).Error
	})
	if err != nil {
		log.Error("Failed to delete brand", zap.Uint("id", brandID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete brand"})
	}

	log.Info("Brand deleted", zap.Uint("id", brandID), zap.String("user_id", auth.UserID))

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// validateBrandName validates brand name/description constraints. When
// nameRequired is false only the description is checked.
func validateBrandName(name string, nameRequired bool, description string) map[string]string {
	fields := map[string]string{}
	if nameRequired {
		if name == "" {
			fields["name"] = "Brand name is required"
		} else if len(name) > 100 {
			fields["name"] = "Brand name must be at most 100 characters"
		}
	}
	if len(description) > 500 {
		fields["description"] = "Description must be at most 500 characters"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
