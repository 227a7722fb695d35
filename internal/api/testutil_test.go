package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/forkful/backend/internal/database"
	"github.com/forkful/backend/internal/models"
	"github.com/forkful/backend/internal/service"
)

type testEnv struct {
	db      *gorm.DB
	router  *gin.Engine
	auth    *service.AuthService
	recipes *service.RecipeService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))

	authService := service.NewAuthService(db, "test-secret")
	recipeService := service.NewRecipeService(db)
	shoppingListService := service.NewShoppingListService(db)
	subscriptionService := service.NewSubscriptionService(db)
	catalogService := service.NewCatalogService(db)

	router := gin.New()
	v1 := router.Group("/api/v1")
	NewAuthHandler(authService).RegisterRoutes(v1)
	NewUserHandler(authService, subscriptionService).RegisterRoutes(v1)
	NewCatalogHandler(catalogService).RegisterRoutes(v1)
	NewRecipeHandler(authService, recipeService, shoppingListService, nil).RegisterRoutes(v1)

	return &testEnv{
		db:      db,
		router:  router,
		auth:    authService,
		recipes: recipeService,
	}
}

// registerUser creates an account through the service layer and returns
// the user row together with a valid bearer token.
func (e *testEnv) registerUser(t *testing.T, username string) (*models.User, string) {
	t.Helper()
	token, err := e.auth.Register(context.Background(), username+"@example.com", username, "Test", "User", "password123")
	require.NoError(t, err)

	var user models.User
	require.NoError(t, e.db.Where("username = ?", username).First(&user).Error)
	return &user, token
}

func (e *testEnv) createTag(t *testing.T, name string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Color: "#49B64E", Slug: name}
	require.NoError(t, e.db.Create(tag).Error)
	return tag
}

func (e *testEnv) createIngredient(t *testing.T, name, unit string) *models.Ingredient {
	t.Helper()
	ing := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, e.db.Create(ing).Error)
	return ing
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func recipeBody(tag *models.Tag, lines ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"name":         "Pancakes",
		"image":        "pancakes.png",
		"text":         "Mix and fry.",
		"cooking_time": 20,
		"tags":         []uuid.UUID{tag.ID},
		"ingredients":  lines,
	}
}

func line(id uuid.UUID, amount int) map[string]interface{} {
	return map[string]interface{}{"id": id, "amount": amount}
}
