package handler

import (
	"net/http"
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

// MemberHandler serves the brand member roster endpoints
type MemberHandler struct {
	db *gorm.DB
}

// NewMemberHandler creates a member handler
func NewMemberHandler(db *gorm.DB) *MemberHandler {
	return &MemberHandler{db: db}
}

// List handles GET /brands/:id/members for any member, oldest first
func (h *MemberHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordMemberOperation("list")

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

	defer prometheus.TrackDBOperation("query")(time.Now())

	var members []model.BrandMember
	if result := h.db.Where("brand_id = ?", brandID).Order("created_at ASC").Find(&members); result.Error != nil {
		log.Error("Failed to list members", zap.Uint("brand_id", brandID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch members"})
	}

	return c.JSON(http.StatusOK, members)
}

// Add handles POST /brands/:id/members. Admin or above; a user already on the
// roster is a conflict.
func (h *MemberHandler) Add(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordMemberOperation("add")

	auth := middleware.AuthFromEcho(c)
	if auth == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	brandID, ok := brandIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid brand ID"})
	}

	if access.ValidateBrandAccess(h.db, auth.UserID, brandID, model.RoleAdmin) == nil {
		prometheus.RecordAuthError("brand_admin_required")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Forbidden - Admin access required"})
	}

	var req struct {
		UserID string `json:"userId"`
		Role   string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse add member request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Role == "" {
		req.Role = model.RoleMember
	}

	fields := map[string]string{}
	if req.UserID == "" {
		fields["userId"] = "User ID is required"
	}
	if !model.ValidRole(req.Role) {
		fields["role"] = "role must be one of owner, admin, member"
	}
	if len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	var existing model.BrandMember
	result := h.db.Where("brand_id = ? AND user_id = ?", brandID, req.UserID).First(&existing)
	if result.Error == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "User is already a member of this brand"})
	}
	if result.Error != gorm.ErrRecordNotFound {
		log.Error("Failed to check existing membership", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to add member"})
	}

	now := time.Now()
	member := model.BrandMember{
		BrandID:    brandID,
		UserID:     req.UserID,
		Role:       req.Role,
		InvitedBy:  auth.UserID,
		AcceptedAt: &now,
	}

	if result := h.db.Create(&member); result.Error != nil {
		log.Error("Failed to add member", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to add member"})
	}

	log.Info("Member added",
		zap.Uint("brand_id", brandID),
		zap.String("user_id", req.UserID),
		zap.String("role", req.Role),
		zap.String("invited_by", auth.UserID))

	return c.JSON(http.StatusCreated, member)
}

// UpdateRole handles PUT /brands/:id/members/:userId. Admin or above; the
// last owner cannot be demoted.
func (h *MemberHandler) UpdateRole(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordMemberOperation("update_role")

	auth := middleware.AuthFromEcho(c)
	if auth == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	brandID, ok := brandIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid brand ID"})
	}
	targetUserID := c.Param("userId")

	if access.ValidateBrandAccess(h.db, auth.UserID, brandID, model.RoleAdmin) == nil {
		prometheus.RecordAuthError("brand_admin_required")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Forbidden - Admin access required"})
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse role update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if !model.ValidRole(req.Role) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation failed",
			"fields": map[string]string{"role": "role must be one of owner, admin, member"},
		})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var target model.BrandMember
	result := h.db.Where("brand_id = ? AND user_id = ?", brandID, targetUserID).First(&target)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Member not found"})
		}
		log.Error("Failed to look up member", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update member role"})
	}

	// Demoting a current owner is refused when they are the only one left.
	if req.Role != model.RoleOwner && target.Role == model.RoleOwner {
		lastOwner, err := h.isLastOwner(brandID)
		if err != nil {
			log.Error("Failed to count owners", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update member role"})
		}
		if lastOwner {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cannot remove the last owner of the brand"})
		}
	}

	if result := h.db.Model(&target).Update("role", req.Role); result.Error != nil {
		log.Error("Failed to update member role", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update member role"})
	}

	log.Info("Member role updated",
		zap.Uint("brand_id", brandID),
		zap.String("user_id", targetUserID),
		zap.String("role", req.Role))

	return c.JSON(http.StatusOK, target)
}

// Remove handles DELETE /brands/:id/members/:userId. Self-removal is always
// allowed; removing someone else needs admin or above. The last owner can
// never be removed either way.
func (h *MemberHandler) Remove(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordMemberOperation("remove")

	auth := middleware.AuthFromEcho(c)
	if auth == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	brandID, ok := brandIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid brand ID"})
	}
	targetUserID := c.Param("userId")

	isSelfRemoval := auth.UserID == targetUserID
	if !isSelfRemoval {
		if access.ValidateBrandAccess(h.db, auth.UserID, brandID, model.RoleAdmin) == nil {
			prometheus.RecordAuthError("brand_admin_required")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Forbidden - Admin access required"})
		}
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	var target model.BrandMember
	result := h.db.Where("brand_id = ? AND user_id = ?", brandID, targetUserID).First(&target)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Member not found"})
		}
		log.Error("Failed to look up member", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to remove member"})
	}

	if target.Role == model.RoleOwner {
		lastOwner, err := h.isLastOwner(brandID)
		if err != nil {
			log.Error("Failed to count owners", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to remove member"})
		}
		if lastOwner {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cannot remove the last owner of the brand"})
		}
	}

	if result := h.db.Delete(&target); result.Error != nil {
		log.Error("Failed to remove member", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to remove member"})
	}

	log.Info("Member removed",
		zap.Uint("brand_id", brandID),
		zap.String("user_id", targetUserID),
		zap.Bool("self_removal", isSelfRemoval))

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *MemberHandler) isLastOwner(brandID uint) (bool, error) {
	var ownerCount int64
	result := h.db.Model(&model.BrandMember{}).
		Where("brand_id = ? AND role = ?", brandID, model.RoleOwner).
		Count(&ownerCount)
	if result.Error != nil {
		return false, result.Error
	}
	return ownerCount <= 1, nil
}
