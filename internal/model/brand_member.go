package model

import (
	"time"
)

// Member roles in ascending order of privilege.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
	RoleOwner  = "owner"
)

// ValidRole reports whether s is one of the defined member roles.
func ValidRole(s string) bool {
	switch s {
	case RoleMember, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// BrandMember binds one user to one brand with a role. The composite unique
// index keeps a user from holding more than one membership per brand.
type BrandMember struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	BrandID    uint       `json:"brandId" gorm:"uniqueIndex:idx_brand_members_brand_user;index;not null"`
	UserID     string     `json:"userId" gorm:"type:varchar(100);uniqueIndex:idx_brand_members_brand_user;index;not null"`
	Role       string     `json:"role" gorm:"type:varchar(50);not null;default:'member'"`
	InvitedBy  string     `json:"invitedBy,omitempty" gorm:"type:varchar(100)"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}
