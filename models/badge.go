// models/badge.go
package models

import "time"

const (
	BadgeFirstAchievement = "first_achievement"
	BadgeFiveAchievements = "five_achievements"
)

// Badge marks a milestone a user has reached. At most one badge per
// (user_id, type) pair, enforced by a composite unique index.
type Badge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_badges_user_type" json:"user_id"`
	Type      string    `gorm:"not null;uniqueIndex:idx_badges_user_type" json:"type"`
	AwardedAt time.Time `json:"awarded_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"-"`
}
