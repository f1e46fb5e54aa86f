package model

import (
	"time"
)

// Brand represents a tenant owning a set of places and a member roster
type Brand struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null"`
	Description string    `json:"description,omitempty" gorm:"type:varchar(500)"`
	OwnerID     string    `json:"ownerId" gorm:"type:varchar(100);index;not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
