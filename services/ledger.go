// services/ledger.go - Achievement Ledger Business Logic
package services

import (
	"errors"
	"fmt"
	"time"

	"bragbook/encryption"
	"bragbook/models"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// XPPerAchievement is the fixed XP value of every achievement.
	XPPerAchievement = 10

	// XPPerLevel is how much XP each level takes.
	XPPerLevel = 50

	// DefaultCoachingLimit caps AI coaching requests per user.
	DefaultCoachingLimit = 5
)

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("achievement belongs to another user")
	ErrQuotaExceeded       = errors.New("coaching limit reached")
	ErrCoachingUnavailable = errors.New("coaching is not available")
)

// ValidationError rejects bad input before any write happens.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Coach produces feedback text for an achievement title. Implemented by
// CoachService; swapped out in tests.
type Coach interface {
	Configured() bool
	Coach(title string) (string, error)
}

type Ledger struct {
	db            *gorm.DB
	coach         Coach
	events        *EventHub
	coachingLimit int
	validate      *validator.Validate
}

func NewLedger(db *gorm.DB, coach Coach, events *EventHub, coachingLimit int) *Ledger {
	if coachingLimit <= 0 {
		coachingLimit = DefaultCoachingLimit
	}
	return &Ledger{
		db:            db,
		coach:         coach,
		events:        events,
		coachingLimit: coachingLimit,
		validate:      validator.New(),
	}
}

type CreateAchievementInput struct {
	Title           string `json:"title" validate:"required,max=500"`
	AchievementDate string `json:"achievement_date" validate:"required,datetime=2006-01-02"`
}

// CreateResult is what a successful create reports back, including the
// progression side effects so callers can surface them immediately.
type CreateResult struct {
	Achievement models.Achievement `json:"achievement"`
	XP          int                `json:"xp"`
	Level       int                `json:"level"`
	LeveledUp   bool               `json:"leveled_up"`
	NewBadges   []string           `json:"new_badges"`
}

// LevelForXP derives the level from total XP. Level 1 starts at 0 XP.
func LevelForXP(xp int) int {
	return xp/XPPerLevel + 1
}

// BadgesForCount is the milestone rule table: it maps an achievement count
// to the badge types that count unlocks. Pure function, no storage access.
func BadgesForCount(count int64) []string {
	switch count {
	case 1:
		return []string{models.BadgeFirstAchievement}
	case 5:
		return []string{models.BadgeFiveAchievements}
	}
	return nil
}

// CreateAchievement records an achievement and applies all progression side
// effects in one transaction. XP is re-derived from the fresh achievement
// count rather than incremented, so a retried partial run can never
// double-award XP.
func (l *Ledger) CreateAchievement(userID uint, input CreateAchievementInput) (*CreateResult, error) {
	if err := l.validate.Struct(input); err != nil {
		return nil, &ValidationError{Message: validationMessage(err)}
	}

	ciphertext, err := encryption.EncryptText(input.Title)
	if err != nil {
		return nil, err
	}

	achievement := models.Achievement{
		UserID:          userID,
		Title:           ciphertext,
		AchievementDate: input.AchievementDate,
		XPEarned:        XPPerAchievement,
	}

	result := &CreateResult{}

	err = l.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Create(&achievement).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Achievement{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}

		oldLevel := user.Level
		user.XP = int(count) * XPPerAchievement
		user.Level = LevelForXP(user.XP)

		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		newBadges := make([]string, 0, 1)
		for _, badgeType := range BadgesForCount(count) {
			awarded, err := awardBadge(tx, userID, badgeType)
			if err != nil {
				return err
			}
			if awarded {
				newBadges = append(newBadges, badgeType)
			}
		}

		result.XP = user.XP
		result.Level = user.Level
		result.LeveledUp = user.Level > oldLevel
		result.NewBadges = newBadges
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Hand the caller back the plaintext title, everything else as persisted
	achievement.Title = input.Title
	result.Achievement = achievement

	if l.events != nil {
		l.events.Publish(userID, ProgressEvent{
			Type:          EventProgress,
			AchievementID: achievement.ID,
			XP:            result.XP,
			Level:         result.Level,
			LeveledUp:     result.LeveledUp,
			NewBadges:     result.NewBadges,
		})
	}

	return result, nil
}

// awardBadge inserts a badge unless the user already holds one of that type.
// The existence check is a fast path; the (user_id, type) unique index plus
// ON CONFLICT DO NOTHING is what actually guarantees exactly-once under
// concurrent creates.
func awardBadge(tx *gorm.DB, userID uint, badgeType string) (bool, error) {
	var existing int64
	if err := tx.Model(&models.Badge{}).
		Where("user_id = ? AND type = ?", userID, badgeType).
		Count(&existing).Error; err != nil {
		return false, err
	}
	if existing > 0 {
		return false, nil
	}

	badge := models.Badge{
		UserID:    userID,
		Type:      badgeType,
		AwardedAt: time.Now(),
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&badge)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListAchievements returns the user's achievements newest-date first, with
// equal dates broken by id descending, titles decrypted.
func (l *Ledger) ListAchievements(userID uint) ([]models.Achievement, error) {
	var achievements []models.Achievement
	if err := l.db.Where("user_id = ?", userID).
		Order("achievement_date DESC, id DESC").
		Find(&achievements).Error; err != nil {
		return nil, err
	}

	for i := range achievements {
		achievements[i].Title = encryption.DecryptText(achievements[i].Title)
	}
	return achievements, nil
}

// GetAchievement fetches a single achievement with its title decrypted.
func (l *Ledger) GetAchievement(id uint) (*models.Achievement, error) {
	var achievement models.Achievement
	if err := l.db.First(&achievement, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	achievement.Title = encryption.DecryptText(achievement.Title)
	return &achievement, nil
}

// GetUser fetches a user by id.
func (l *Ledger) GetUser(userID uint) (*models.User, error) {
	var user models.User
	if err := l.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetBadges returns all badges a user has earned.
func (l *Ledger) GetBadges(userID uint) ([]models.Badge, error) {
	var badges []models.Badge
	if err := l.db.Where("user_id = ?", userID).Order("awarded_at").Find(&badges).Error; err != nil {
		return nil, err
	}
	return badges, nil
}

// RequestCoaching asks the AI coach for feedback on one achievement. The
// caller must own the achievement and have quota left. The response is
// persisted on the achievement and counted against the user's quota. No
// progression or badge side effects.
func (l *Ledger) RequestCoaching(userID, achievementID uint) (string, error) {
	if l.coach == nil || !l.coach.Configured() {
		return "", ErrCoachingUnavailable
	}

	user, err := l.GetUser(userID)
	if err != nil {
		return "", err
	}
	if user.CoachingCount >= l.coachingLimit {
		return "", ErrQuotaExceeded
	}

	achievement, err := l.GetAchievement(achievementID)
	if err != nil {
		return "", err
	}
	if achievement.UserID != userID {
		return "", ErrUnauthorized
	}

	text, err := l.coach.Coach(achievement.Title)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCoachingUnavailable, err)
	}

	err = l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Achievement{}).
			Where("id = ?", achievementID).
			Update("coaching_response", text).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("coaching_count", gorm.Expr("coaching_count + 1")).Error
	})
	if err != nil {
		return "", err
	}

	return text, nil
}

func validationMessage(err error) string {
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return "invalid input"
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch fe.Field() {
		case "Title":
			if fe.Tag() == "required" {
				return "Title is required"
			}
			return "Title is too long"
		case "AchievementDate":
			return "Achievement date must be a valid YYYY-MM-DD date"
		}
	}
	return err.Error()
}
