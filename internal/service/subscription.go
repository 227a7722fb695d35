package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forkful/backend/internal/models"
	"github.com/forkful/backend/internal/types"
)

// SubscriptionService manages the directed follow edges between users.
type SubscriptionService struct {
	db *gorm.DB
}

// NewSubscriptionService creates a new SubscriptionService instance
func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Subscribe adds a follow edge from follower to followed. Subscribing to
// yourself is an error; subscribing twice is not, the second call reports
// created=false and leaves the edge as is.
func (s *SubscriptionService) Subscribe(ctx context.Context, followerID, followedID uuid.UUID) (*types.SubscriptionView, bool, error) {
	if followerID == followedID {
		return nil, false, ErrSelfSubscribe
	}

	var followed models.User
	if err := s.db.WithContext(ctx).First(&followed, "id = ?", followedID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrNotFound
		}
		return nil, false, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error; err != nil {
		return nil, false, err
	}

	created := false
	if count == 0 {
		edge := models.Subscription{FollowerID: followerID, FollowedID: followedID}
		if err := s.db.WithContext(ctx).Create(&edge).Error; err != nil {
			return nil, false, err
		}
		created = true
	}

	view, err := s.buildView(ctx, &followed, 0)
	if err != nil {
		return nil, false, err
	}
	return view, created, nil
}

// Unsubscribe removes the follow edge. Removing a missing edge is
// ErrNotFound.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, followerID, followedID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Subscriptions lists the authors the user follows, each with their
// recipes. recipesLimit > 0 truncates each author's recipe sample.
func (s *SubscriptionService) Subscriptions(ctx context.Context, userID uuid.UUID, recipesLimit, page, limit int) ([]*types.SubscriptionView, error) {
	query := s.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.followed_id = users.id").
		Where("subscriptions.follower_id = ?", userID).
		Order("subscriptions.created_at DESC")
	if limit > 0 {
		offset := 0
		if page > 1 {
			offset = (page - 1) * limit
		}
		query = query.Offset(offset).Limit(limit)
	}

	var authors []models.User
	if err := query.Find(&authors).Error; err != nil {
		return nil, err
	}

	views := make([]*types.SubscriptionView, 0, len(authors))
	for i := range authors {
		view, err := s.buildView(ctx, &authors[i], recipesLimit)
		if err != nil {
			return nil, err
		}
		view.IsSubscribed = true
		views = append(views, view)
	}
	return views, nil
}

func (s *SubscriptionService) buildView(ctx context.Context, author *models.User, recipesLimit int) (*types.SubscriptionView, error) {
	var recipesCount int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ?", author.ID).
		Count(&recipesCount).Error; err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Where("author_id = ?", author.ID).
		Order("published_at DESC")
	if recipesLimit > 0 {
		query = query.Limit(recipesLimit)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}

	shorts := make([]types.RecipeShortView, len(recipes))
	for i, recipe := range recipes {
		shorts[i] = types.RecipeShortView{
			ID:          recipe.ID,
			Name:        recipe.Name,
			Image:       recipe.Image,
			CookingTime: recipe.CookingTime,
		}
	}

	return &types.SubscriptionView{
		UserView: types.UserView{
			ID:        author.ID,
			Email:     author.Email,
			Username:  author.Username,
			FirstName: author.FirstName,
			LastName:  author.LastName,
		},
		Recipes:      shorts,
		RecipesCount: recipesCount,
	}, nil
}
