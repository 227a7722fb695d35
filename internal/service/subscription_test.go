package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeToSelf(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSubscriptionService(db)
	user := createTestUser(t, db, "loner")

	_, _, err := svc.Subscribe(context.Background(), user.ID, user.ID)
	assert.ErrorIs(t, err, ErrSelfSubscribe)
}

func TestSubscribeIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSubscriptionService(db)
	follower := createTestUser(t, db, "follower")
	author := createTestUser(t, db, "author")

	view, created, err := svc.Subscribe(context.Background(), follower.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, author.Username, view.Username)

	_, created, err = svc.Subscribe(context.Background(), follower.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestSubscribeUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSubscriptionService(db)
	follower := createTestUser(t, db, "follower")

	_, _, err := svc.Subscribe(context.Background(), follower.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnsubscribe(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSubscriptionService(db)
	follower := createTestUser(t, db, "follower")
	author := createTestUser(t, db, "author")

	_, _, err := svc.Subscribe(context.Background(), follower.ID, author.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Unsubscribe(context.Background(), follower.ID, author.ID))
	assert.ErrorIs(t, svc.Unsubscribe(context.Background(), follower.ID, author.ID), ErrNotFound)
}

func TestSubscriptionsListing(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSubscriptionService(db)
	recipes := NewRecipeService(db)

	follower := createTestUser(t, db, "follower")
	author := createTestUser(t, db, "author")
	_, err := recipes.Create(context.Background(), author.ID, validRecipeInput(t, db))
	require.NoError(t, err)
	_, err = recipes.Create(context.Background(), author.ID, validRecipeInput(t, db))
	require.NoError(t, err)

	_, _, err = svc.Subscribe(context.Background(), follower.ID, author.ID)
	require.NoError(t, err)

	subs, err := svc.Subscriptions(context.Background(), follower.ID, 0, 0, 0)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, author.Username, subs[0].Username)
	assert.True(t, subs[0].IsSubscribed)
	assert.EqualValues(t, 2, subs[0].RecipesCount)
	assert.Len(t, subs[0].Recipes, 2)

	// recipes_limit truncates the per-author sample but not the count.
	limited, err := svc.Subscriptions(context.Background(), follower.ID, 1, 0, 0)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Len(t, limited[0].Recipes, 1)
	assert.EqualValues(t, 2, limited[0].RecipesCount)
}
