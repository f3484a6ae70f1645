// database/migrate.go - Database Migration Runner
package database

import (
	"log"

	"bragbook/models"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Achievement{},
		&models.Badge{},
	); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	createIndexes()

	log.Println("✅ All migrations completed successfully")
}

// createIndexes creates indexes the models don't declare via tags.
// The badges (user_id, type) unique index comes from the model and is the
// source of truth for badge idempotence; these are read-path helpers.
func createIndexes() {
	db := GetDB()

	// Achievement list ordering: date DESC, id DESC
	db.Exec("CREATE INDEX IF NOT EXISTS idx_achievements_user_date ON achievements(user_id, achievement_date DESC, id DESC)")

	// User lookups
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_level ON users(level DESC)")
}
