// models/achievement.go
package models

import "time"

// Achievement is a single logged accomplishment. Title is encrypted at rest
// (see the encryption package); every read path decrypts before returning.
// CoachingResponse is stored as plaintext.
type Achievement struct {
	ID               uint    `gorm:"primaryKey" json:"id"`
	UserID           uint    `gorm:"not null;index" json:"user_id"`
	Title            string  `gorm:"not null" json:"title"`
	AchievementDate  string  `gorm:"not null" json:"achievement_date"` // YYYY-MM-DD
	CoachingResponse *string `json:"coaching_response,omitempty"`
	XPEarned         int     `gorm:"default:10" json:"xp_earned"`

	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"-"`
}
