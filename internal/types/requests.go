package types

import "github.com/google/uuid"

// RegisterRequest represents the request body for user registration
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required,max=150"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SetPasswordRequest represents the request body for a password change
type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// IngredientLineInput is one submitted (ingredient, amount) pair.
type IngredientLineInput struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int       `json:"amount" binding:"required"`
}

// RecipeInput represents the request body for creating or replacing a
// recipe. Updates submit the full tag and ingredient sets, not a merge.
type RecipeInput struct {
	Name        string                `json:"name" binding:"required,max=200"`
	Image       string                `json:"image"`
	Text        string                `json:"text" binding:"required"`
	CookingTime int                   `json:"cooking_time"`
	TagIDs      []uuid.UUID           `json:"tags"`
	Ingredients []IngredientLineInput `json:"ingredients"`
}

// RecipeFilter narrows recipe listings.
type RecipeFilter struct {
	AuthorID         *uuid.UUID
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
	Page             int
	Limit            int
}
