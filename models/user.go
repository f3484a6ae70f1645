// models/user.go
package models

import (
	"time"
)

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Password string `gorm:"not null" json:"-"`

	// Progression
	Level int `gorm:"default:1" json:"level"`
	XP    int `gorm:"default:0" json:"xp"`

	// Coaching quota usage, monotonic
	CoachingCount int `gorm:"default:0" json:"coaching_count"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Achievements []Achievement `gorm:"foreignKey:UserID" json:"achievements,omitempty"`
	Badges       []Badge       `gorm:"foreignKey:UserID" json:"badges,omitempty"`
}
