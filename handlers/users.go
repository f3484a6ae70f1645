// handlers/users.go
package handlers

import (
	"bragbook/database"
	"bragbook/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetCurrentUser returns the caller's profile with badges
// GET /api/users/me
func GetCurrentUser(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := ledger.GetUser(userID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	db := database.GetDB()
	if err := db.Where("user_id = ?", userID).Find(&user.Badges).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch badges"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    userInfo(*user),
		"badges":  user.Badges,
	})
}
