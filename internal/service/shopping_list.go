package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forkful/backend/internal/models"
)

// ShoppingListService renders the consolidated shopping list for the
// recipes in a user's cart.
type ShoppingListService struct {
	db *gorm.DB
}

// NewShoppingListService creates a new ShoppingListService instance
func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// shoppingListItem is one grouped row of the aggregation query.
type shoppingListItem struct {
	Name            string
	MeasurementUnit string
	Total           int64
}

// Build sums ingredient amounts across every recipe in the user's cart and
// renders one line per ingredient. Lines are ordered by ingredient name
// ascending so the output is stable for a given cart. Returns ErrEmptyCart
// when nothing is queued.
func (s *ShoppingListService) Build(ctx context.Context, userID uuid.UUID) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	var cartSize int64
	if err := s.db.WithContext(ctx).Model(&models.ShoppingCart{}).
		Where("user_id = ?", userID).
		Count(&cartSize).Error; err != nil {
		return "", err
	}
	if cartSize == 0 {
		return "", ErrEmptyCart
	}

	var items []shoppingListItem
	err := s.db.WithContext(ctx).Model(&models.RecipeIngredient{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC").
		Scan(&items).Error
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Shopping list for %s\n", user.Username)
	fmt.Fprintf(&b, "Generated at %s\n\n", time.Now().UTC().Format("2006-01-02 15:04"))
	for _, item := range items {
		fmt.Fprintf(&b, "%s: %d %s\n", item.Name, item.Total, item.MeasurementUnit)
	}
	return b.String(), nil
}

// Filename returns the attachment filename for the user's shopping list.
func (s *ShoppingListService) Filename(ctx context.Context, userID uuid.UUID) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_shopping_list.txt", user.Username), nil
}
