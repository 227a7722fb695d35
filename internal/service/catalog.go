package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forkful/backend/internal/models"
)

// CatalogService serves the flat ingredient and tag reference tables.
// Creation is used by the seed command and admins; the public API surface
// is read-only.
type CatalogService struct {
	db       *gorm.DB
	validate *validator.Validate
}

// NewCatalogService creates a new CatalogService instance
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{
		db:       db,
		validate: validator.New(),
	}
}

// ListIngredients returns ingredients ordered by name, optionally narrowed
// to a case-insensitive name prefix.
func (s *CatalogService) ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	query := s.db.WithContext(ctx).Order("name ASC")
	if namePrefix != "" {
		query = query.Where("LOWER(name) LIKE ?", strings.ToLower(namePrefix)+"%")
	}
	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// GetIngredient retrieves an ingredient by ID
func (s *CatalogService) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ingredient, nil
}

// CreateIngredient inserts a new ingredient. The (name, unit) pair is
// deduplicated.
func (s *CatalogService) CreateIngredient(ctx context.Context, name, unit string) (*models.Ingredient, error) {
	if name == "" {
		return nil, validationErr("name", "required")
	}
	if unit == "" {
		return nil, validationErr("measurement_unit", "required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).
		Where("name = ? AND measurement_unit = ?", name, unit).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyExists
	}

	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := s.db.WithContext(ctx).Create(&ingredient).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

// ListTags returns all tags ordered by name
func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// GetTag retrieves a tag by ID
func (s *CatalogService) GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tag, nil
}

// CreateTag inserts a new tag. Name and slug are unique, color must be a
// six-digit hex code like #49B64E.
func (s *CatalogService) CreateTag(ctx context.Context, name, color, slug string) (*models.Tag, error) {
	if name == "" {
		return nil, validationErr("name", "required")
	}
	if err := s.validate.Var(color, "required,hexcolor"); err != nil || len(color) != 7 {
		return nil, validationErr("color", "must be a six-digit hex color code")
	}
	if slug == "" {
		return nil, validationErr("slug", "required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Tag{}).
		Where("name = ? OR slug = ?", name, slug).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyExists
	}

	tag := models.Tag{Name: name, Color: color, Slug: slug}
	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}
