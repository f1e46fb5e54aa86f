// Package access implements the brand role gate used before every
// brand-scoped operation.
package access

import (
	"github.com/suteetoe/storelocator/internal/model"
	"github.com/suteetoe/storelocator/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// roleRank orders roles by privilege: owner > admin > member.
var roleRank = map[string]int{
	model.RoleMember: 1,
	model.RoleAdmin:  2,
	model.RoleOwner:  3,
}

// RoleRank returns the numeric rank of a role, 0 for unknown roles.
func RoleRank(role string) int {
	return roleRank[role]
}

// HasRequiredRole reports whether role meets or exceeds requiredRole.
func HasRequiredRole(role, requiredRole string) bool {
	return roleRank[role] >= roleRank[requiredRole]
}

// ValidateBrandAccess looks up the caller's membership in a brand and, when
// requiredRole is non-empty, checks it against the role hierarchy. It returns
// nil on any refusal, including database errors — the gate fails closed.
// Callers map nil to 403; a missing identity is the resolver's 401 instead.
func ValidateBrandAccess(db *gorm.DB, userID string, brandID uint, requiredRole string) *model.BrandMember {
	var membership model.BrandMember
	result := db.Where("brand_id = ? AND user_id = ?", brandID, userID).First(&membership)
	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			logger.GetLogger().Error("brand access lookup failed",
				zap.Uint("brand_id", brandID),
				zap.String("user_id", userID),
				zap.Error(result.Error))
		}
		return nil
	}

	if requiredRole != "" && !HasRequiredRole(membership.Role, requiredRole) {
		return nil
	}

	return &membership
}
