package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkful/backend/internal/types"
)

func TestCreateRecipeEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.registerUser(t, "author")
	tag := env.createTag(t, "breakfast")
	flour := env.createIngredient(t, "flour", "g")
	milk := env.createIngredient(t, "milk", "ml")

	body := recipeBody(tag, line(flour.ID, 200), line(milk.ID, 300))
	w := env.request(t, http.MethodPost, "/api/v1/recipes", token, body)
	require.Equal(t, http.StatusCreated, w.Code)

	var view types.RecipeView
	decodeJSON(t, w, &view)
	assert.Equal(t, "Pancakes", view.Name)
	assert.Equal(t, "author", view.Author.Username)
	assert.Len(t, view.Tags, 1)
	assert.Len(t, view.Ingredients, 2)
	assert.False(t, view.IsFavorited)
}

func TestCreateRecipeRequiresAuth(t *testing.T) {
	env := setupTestEnv(t)
	tag := env.createTag(t, "breakfast")
	flour := env.createIngredient(t, "flour", "g")

	w := env.request(t, http.MethodPost, "/api/v1/recipes", "", recipeBody(tag, line(flour.ID, 200)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateRecipeValidationResponse(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.registerUser(t, "author")
	tag := env.createTag(t, "breakfast")
	flour := env.createIngredient(t, "flour", "g")

	body := recipeBody(tag, line(flour.ID, 200), line(flour.ID, 100))
	w := env.request(t, http.MethodPost, "/api/v1/recipes", token, body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	decodeJSON(t, w, &resp)
	assert.Contains(t, resp.Errors, "ingredients")
}

func TestUpdateRecipeForbiddenForStranger(t *testing.T) {
	env := setupTestEnv(t)
	_, authorToken := env.registerUser(t, "author")
	_, strangerToken := env.registerUser(t, "stranger")
	tag := env.createTag(t, "breakfast")
	flour := env.createIngredient(t, "flour", "g")

	body := recipeBody(tag, line(flour.ID, 200))
	w := env.request(t, http.MethodPost, "/api/v1/recipes", authorToken, body)
	require.Equal(t, http.StatusCreated, w.Code)
	var view types.RecipeView
	decodeJSON(t, w, &view)

	path := fmt.Sprintf("/api/v1/recipes/%s", view.ID)
	w = env.request(t, http.MethodPatch, path, strangerToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, http.MethodPatch, path, authorToken, body)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFavoriteEndpointSequence(t *testing.T) {
	env := setupTestEnv(t)
	_, authorToken := env.registerUser(t, "author")
	_, fanToken := env.registerUser(t, "fan")
	tag := env.createTag(t, "breakfast")
	flour := env.createIngredient(t, "flour", "g")

	w := env.request(t, http.MethodPost, "/api/v1/recipes", authorToken, recipeBody(tag, line(flour.ID, 200)))
	require.Equal(t, http.StatusCreated, w.Code)
	var view types.RecipeView
	decodeJSON(t, w, &view)

	path := fmt.Sprintf("/api/v1/recipes/%s/favorite", view.ID)

	w = env.request(t, http.MethodPost, path, fanToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var short types.RecipeShortView
	decodeJSON(t, w, &short)
	assert.Equal(t, view.ID, short.ID)

	w = env.request(t, http.MethodPost, path, fanToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, http.MethodDelete, path, fanToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.request(t, http.MethodDelete, path, fanToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShoppingCartAndDownload(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.registerUser(t, "shopper")
	tag := env.createTag(t, "dinner")
	flour := env.createIngredient(t, "flour", "g")
	milk := env.createIngredient(t, "milk", "ml")

	w := env.request(t, http.MethodGet, "/api/v1/recipes/download_shopping_cart", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	first := recipeBody(tag, line(flour.ID, 200))
	w = env.request(t, http.MethodPost, "/api/v1/recipes", token, first)
	require.Equal(t, http.StatusCreated, w.Code)
	var a types.RecipeView
	decodeJSON(t, w, &a)

	second := recipeBody(tag, line(flour.ID, 300), line(milk.ID, 100))
	second["name"] = "Crepes"
	w = env.request(t, http.MethodPost, "/api/v1/recipes", token, second)
	require.Equal(t, http.StatusCreated, w.Code)
	var b types.RecipeView
	decodeJSON(t, w, &b)

	for _, id := range []string{a.ID.String(), b.ID.String()} {
		w = env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/recipes/%s/shopping_cart", id), token, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = env.request(t, http.MethodGet, "/api/v1/recipes/download_shopping_cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "shopper_shopping_list.txt")
	assert.Contains(t, w.Body.String(), "flour: 500 g")
	assert.Contains(t, w.Body.String(), "milk: 100 ml")
}

func TestGetRecipeAnonymous(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.registerUser(t, "author")
	tag := env.createTag(t, "breakfast")
	flour := env.createIngredient(t, "flour", "g")

	w := env.request(t, http.MethodPost, "/api/v1/recipes", token, recipeBody(tag, line(flour.ID, 200)))
	require.Equal(t, http.StatusCreated, w.Code)
	var view types.RecipeView
	decodeJSON(t, w, &view)

	w = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/recipes/%s", view.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got types.RecipeView
	decodeJSON(t, w, &got)
	assert.False(t, got.IsFavorited)
	assert.False(t, got.Author.IsSubscribed)
}

func TestDeleteRecipeEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.registerUser(t, "author")
	tag := env.createTag(t, "breakfast")
	flour := env.createIngredient(t, "flour", "g")

	w := env.request(t, http.MethodPost, "/api/v1/recipes", token, recipeBody(tag, line(flour.ID, 200)))
	require.Equal(t, http.StatusCreated, w.Code)
	var view types.RecipeView
	decodeJSON(t, w, &view)

	path := fmt.Sprintf("/api/v1/recipes/%s", view.ID)
	w = env.request(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.request(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
