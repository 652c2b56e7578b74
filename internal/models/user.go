package models

import (
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Profile is a signed-in account.
type Profile struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName string    `gorm:"size:100" json:"display_name"`
	Password    string    `gorm:"not null" json:"-"` // Hash
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UserRole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_user_role" json:"user_id"`
	Role      string    `gorm:"size:20;not null;uniqueIndex:idx_user_role" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
