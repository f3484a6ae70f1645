// handlers/achievements.go
package handlers

import (
	"errors"
	"log"

	"bragbook/middleware"
	"bragbook/services"

	"github.com/gofiber/fiber/v2"
)

var ledger *services.Ledger

// InitAchievementHandlers wires the achievement ledger into the handlers
func InitAchievementHandlers(l *services.Ledger) {
	if l == nil {
		panic("Ledger not initialized before InitAchievementHandlers")
	}
	ledger = l
}

// GetAchievements returns the caller's achievements, newest first
// GET /api/achievements
func GetAchievements(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	achievements, err := ledger.ListAchievements(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch achievements"})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"achievements": achievements,
	})
}

// CreateAchievement records a new achievement and its progression effects
// POST /api/achievements
func CreateAchievement(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var input services.CreateAchievementInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := ledger.CreateAchievement(userID, input)
	if err != nil {
		var validationErr *services.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return c.Status(400).JSON(fiber.Map{"error": validationErr.Message})
		case errors.Is(err, services.ErrNotFound):
			return c.Status(404).JSON(fiber.Map{"error": "User not found"})
		default:
			log.Printf("❌ Achievement creation failed: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "Failed to create achievement"})
		}
	}

	return c.Status(201).JSON(fiber.Map{
		"success":     true,
		"achievement": result.Achievement,
		"xp":          result.XP,
		"level":       result.Level,
		"leveled_up":  result.LeveledUp,
		"new_badges":  result.NewBadges,
	})
}

// CoachAchievement asks the AI coach for feedback on one achievement
// POST /api/achievements/:id/coach
func CoachAchievement(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	achievementID, err := c.ParamsInt("id")
	if err != nil || achievementID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid achievement id"})
	}

	text, err := ledger.RequestCoaching(userID, uint(achievementID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCoachingUnavailable):
			return c.Status(503).JSON(fiber.Map{
				"error": "AI coaching is not available right now.",
			})
		case errors.Is(err, services.ErrQuotaExceeded):
			return c.Status(403).JSON(fiber.Map{"error": "Coaching limit reached"})
		case errors.Is(err, services.ErrNotFound):
			return c.Status(404).JSON(fiber.Map{"error": "Achievement not found"})
		case errors.Is(err, services.ErrUnauthorized):
			return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
		default:
			log.Printf("❌ Coaching failed: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "Failed to get coaching advice"})
		}
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"coaching_response": text,
	})
}

// GetBadges returns the caller's badges
// GET /api/badges
func GetBadges(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	badges, err := ledger.GetBadges(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch badges"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"badges":  badges,
	})
}
