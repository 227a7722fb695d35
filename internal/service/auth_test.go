package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")

	token, err := svc.Register(context.Background(), "alice@example.com", "alice", "Alice", "Smith", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	loginToken, err := svc.Login(context.Background(), "alice@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, loginToken)

	_, err = svc.Login(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicateEmailAndUsername(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")

	_, err := svc.Register(context.Background(), "alice@example.com", "alice", "Alice", "Smith", "password123")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "alice@example.com", "alice2", "Alice", "Smith", "password123")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "email", vErr.Field)

	_, err = svc.Register(context.Background(), "other@example.com", "alice", "Alice", "Smith", "password123")
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "username", vErr.Field)
}

func TestSetPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")

	token, err := svc.Register(context.Background(), "alice@example.com", "alice", "Alice", "Smith", "password123")
	require.NoError(t, err)
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	var vErr *ValidationError
	err = svc.SetPassword(context.Background(), claims.UserID, "wrong", "newpassword")
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "current_password", vErr.Field)

	err = svc.SetPassword(context.Background(), claims.UserID, "password123", "password123")
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "new_password", vErr.Field)

	require.NoError(t, svc.SetPassword(context.Background(), claims.UserID, "password123", "newpassword"))

	_, err = svc.Login(context.Background(), "alice@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), "alice@example.com", "newpassword")
	assert.NoError(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)

	other := NewAuthService(db, "other-secret")
	token, err := other.Register(context.Background(), "bob@example.com", "bob", "Bob", "Jones", "password123")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestDeleteUserCascades(t *testing.T) {
	db := setupTestDB(t)
	auth := NewAuthService(db, "test-secret")
	recipes := NewRecipeService(db)
	subs := NewSubscriptionService(db)

	author := createTestUser(t, db, "author")
	fan := createTestUser(t, db, "fan")

	view, err := recipes.Create(context.Background(), author.ID, validRecipeInput(t, db))
	require.NoError(t, err)
	_, err = recipes.Favorite(context.Background(), fan.ID, view.ID)
	require.NoError(t, err)
	_, err = recipes.AddToCart(context.Background(), fan.ID, view.ID)
	require.NoError(t, err)
	_, _, err = subs.Subscribe(context.Background(), fan.ID, author.ID)
	require.NoError(t, err)

	require.NoError(t, auth.DeleteUser(context.Background(), author.ID))

	_, err = recipes.Get(context.Background(), view.ID, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	followed, err := subs.Subscriptions(context.Background(), fan.ID, 0, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, followed)

	_, err = auth.GetUser(context.Background(), author.ID, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
