package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/forkful/backend/internal/models"
	"github.com/forkful/backend/internal/types"
)

// RecipeService owns the recipe aggregate: the recipe row, its ingredient
// lines and its tag links. Creates and updates touch all three tables in a
// single transaction so a failed write leaves the previous state intact.
type RecipeService struct {
	db *gorm.DB
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

func validateRecipeInput(input *types.RecipeInput) error {
	if input.CookingTime <= 0 {
		return validationErr("cooking_time", "must be a positive number of minutes")
	}
	if len(input.TagIDs) == 0 {
		return validationErr("tags", "at least one tag is required")
	}
	if len(input.Ingredients) == 0 {
		return validationErr("ingredients", "at least one ingredient is required")
	}
	seen := make(map[uuid.UUID]struct{}, len(input.Ingredients))
	for _, line := range input.Ingredients {
		if line.Amount <= 0 {
			return validationErr("ingredients", "amount must be positive")
		}
		if _, dup := seen[line.ID]; dup {
			return validationErr("ingredients", "duplicate ingredient in submission")
		}
		seen[line.ID] = struct{}{}
	}
	return nil
}

// resolveTags loads the submitted tag set and rejects unknown ids.
func resolveTags(tx *gorm.DB, ids []uuid.UUID) ([]models.Tag, error) {
	var tags []models.Tag
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, validationErr("tags", "unknown tag id")
	}
	return tags, nil
}

func checkIngredientsExist(tx *gorm.DB, lines []types.IngredientLineInput) error {
	ids := make([]uuid.UUID, len(lines))
	for i, line := range lines {
		ids[i] = line.ID
	}
	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return validationErr("ingredients", "unknown ingredient id")
	}
	return nil
}

// Create persists a new recipe with its lines and tag links atomically.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, input *types.RecipeInput) (*types.RecipeView, error) {
	if err := validateRecipeInput(input); err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		Name:        input.Name,
		Image:       input.Image,
		Text:        input.Text,
		CookingTime: input.CookingTime,
		AuthorID:    authorID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveTags(tx, input.TagIDs)
		if err != nil {
			return err
		}
		if err := checkIngredientsExist(tx, input.Ingredients); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		for _, line := range input.Ingredients {
			ri := models.RecipeIngredient{
				RecipeID:     recipe.ID,
				IngredientID: line.ID,
				Amount:       line.Amount,
			}
			if err := tx.Create(&ri).Error; err != nil {
				return err
			}
		}
		return tx.Model(&recipe).Association("Tags").Append(tags)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipe.ID, &authorID)
}

// Update replaces the recipe fields, tag set and ingredient-line set with
// the submitted ones. Lines omitted from the submission are removed, new
// ones inserted, existing ones with a changed amount updated. Only the
// author or an admin may update.
func (s *RecipeService) Update(ctx context.Context, recipeID, actorID uuid.UUID, input *types.RecipeInput) (*types.RecipeView, error) {
	if err := validateRecipeInput(input); err != nil {
		return nil, err
	}

	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.checkMutationAllowed(ctx, &recipe, actorID); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveTags(tx, input.TagIDs)
		if err != nil {
			return err
		}
		if err := checkIngredientsExist(tx, input.Ingredients); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":         input.Name,
			"image":        input.Image,
			"text":         input.Text,
			"cooking_time": input.CookingTime,
		}
		if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}

		var existing []models.RecipeIngredient
		if err := tx.Where("recipe_id = ?", recipe.ID).Find(&existing).Error; err != nil {
			return err
		}
		current := make(map[uuid.UUID]models.RecipeIngredient, len(existing))
		for _, line := range existing {
			current[line.IngredientID] = line
		}
		submitted := make(map[uuid.UUID]struct{}, len(input.Ingredients))
		for _, line := range input.Ingredients {
			submitted[line.ID] = struct{}{}
			prev, ok := current[line.ID]
			switch {
			case !ok:
				ri := models.RecipeIngredient{
					RecipeID:     recipe.ID,
					IngredientID: line.ID,
					Amount:       line.Amount,
				}
				if err := tx.Create(&ri).Error; err != nil {
					return err
				}
			case prev.Amount != line.Amount:
				if err := tx.Model(&prev).Update("amount", line.Amount).Error; err != nil {
					return err
				}
			}
		}
		for ingredientID, line := range current {
			if _, keep := submitted[ingredientID]; !keep {
				if err := tx.Delete(&models.RecipeIngredient{}, "id = ?", line.ID).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipe.ID, &actorID)
}

// Delete removes a recipe and everything referencing it. Cascades are
// explicit statements inside one transaction.
func (s *RecipeService) Delete(ctx context.Context, recipeID, actorID uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.checkMutationAllowed(ctx, &recipe, actorID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.ShoppingCart{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

func (s *RecipeService) checkMutationAllowed(ctx context.Context, recipe *models.Recipe, actorID uuid.UUID) error {
	if recipe.AuthorID == actorID {
		return nil
	}
	var actor models.User
	if err := s.db.WithContext(ctx).First(&actor, "id = ?", actorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPermissionDenied
		}
		return err
	}
	if !actor.IsAdmin() {
		return ErrPermissionDenied
	}
	return nil
}

// Get returns the materialized recipe view for the given viewer. A nil
// viewer is anonymous; both membership flags come back false.
func (s *RecipeService) Get(ctx context.Context, recipeID uuid.UUID, viewerID *uuid.UUID) (*types.RecipeView, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.buildView(ctx, &recipe, viewerID)
}

// List returns recipe views newest first, narrowed by the filter. The
// favorite and cart filters are viewer-relative and ignored for anonymous
// viewers.
func (s *RecipeService) List(ctx context.Context, filter types.RecipeFilter, viewerID *uuid.UUID) ([]*types.RecipeView, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("published_at DESC")

	if filter.AuthorID != nil {
		query = query.Where("author_id = ?", *filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		query = query.Where("recipes.id IN (?)",
			s.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs))
	}
	if viewerID != nil {
		if filter.IsFavorited {
			query = query.Where("recipes.id IN (?)",
				s.db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", *viewerID))
		}
		if filter.IsInShoppingCart {
			query = query.Where("recipes.id IN (?)",
				s.db.Model(&models.ShoppingCart{}).Select("recipe_id").Where("user_id = ?", *viewerID))
		}
	}
	if filter.Limit > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.Limit
		}
		query = query.Offset(offset).Limit(filter.Limit)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}

	views := make([]*types.RecipeView, 0, len(recipes))
	for i := range recipes {
		view, err := s.buildView(ctx, &recipes[i], viewerID)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Favorite adds the (user, recipe) favorite edge.
func (s *RecipeService) Favorite(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeShortView, error) {
	return s.addMembership(ctx, userID, recipeID, &models.Favorite{UserID: userID, RecipeID: recipeID}, &models.Favorite{})
}

// Unfavorite removes the (user, recipe) favorite edge.
func (s *RecipeService) Unfavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.removeMembership(ctx, userID, recipeID, &models.Favorite{})
}

// AddToCart queues the recipe on the user's shopping cart.
func (s *RecipeService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeShortView, error) {
	return s.addMembership(ctx, userID, recipeID, &models.ShoppingCart{UserID: userID, RecipeID: recipeID}, &models.ShoppingCart{})
}

// RemoveFromCart removes the recipe from the user's shopping cart.
func (s *RecipeService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.removeMembership(ctx, userID, recipeID, &models.ShoppingCart{})
}

func (s *RecipeService) addMembership(ctx context.Context, userID, recipeID uuid.UUID, edge interface{}, model interface{}) (*types.RecipeShortView, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(model).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyExists
	}

	if err := s.db.WithContext(ctx).Create(edge).Error; err != nil {
		return nil, err
	}
	return &types.RecipeShortView{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}, nil
}

func (s *RecipeService) removeMembership(ctx context.Context, userID, recipeID uuid.UUID, model interface{}) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RecipeService) buildView(ctx context.Context, recipe *models.Recipe, viewerID *uuid.UUID) (*types.RecipeView, error) {
	view := &types.RecipeView{
		ID: recipe.ID,
		Author: types.UserView{
			ID:        recipe.Author.ID,
			Email:     recipe.Author.Email,
			Username:  recipe.Author.Username,
			FirstName: recipe.Author.FirstName,
			LastName:  recipe.Author.LastName,
		},
		Name:        recipe.Name,
		Image:       recipe.Image,
		Text:        recipe.Text,
		CookingTime: recipe.CookingTime,
		PublishedAt: recipe.PublishedAt,
	}

	view.Tags = make([]types.TagView, len(recipe.Tags))
	for i, tag := range recipe.Tags {
		view.Tags[i] = types.TagView{ID: tag.ID, Name: tag.Name, Color: tag.Color, Slug: tag.Slug}
	}
	view.Ingredients = make([]types.IngredientLineView, len(recipe.Ingredients))
	for i, line := range recipe.Ingredients {
		view.Ingredients[i] = types.IngredientLineView{
			ID:              line.IngredientID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		}
	}

	if viewerID == nil {
		return view, nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", *viewerID, recipe.ID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	view.IsFavorited = count > 0

	if err := s.db.WithContext(ctx).Model(&models.ShoppingCart{}).
		Where("user_id = ? AND recipe_id = ?", *viewerID, recipe.ID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	view.IsInShoppingCart = count > 0

	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("follower_id = ? AND followed_id = ?", *viewerID, recipe.AuthorID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	view.Author.IsSubscribed = count > 0

	return view, nil
}
