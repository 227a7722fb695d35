package database

import (
	"gorm.io/gorm"

	"github.com/forkful/backend/internal/models"
)

// RunMigrations brings the schema up to date. Order matters: reference
// tables and users before the tables holding foreign keys into them.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.Ingredient{},
		&models.Tag{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCart{},
	)
}
