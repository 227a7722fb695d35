package server

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/forkful/backend/config"
	"github.com/forkful/backend/internal/api"
	"github.com/forkful/backend/internal/middleware"
	"github.com/forkful/backend/internal/router"
	"github.com/forkful/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	addr   string
}

// New creates a new server instance wired with all services and routes.
// The redis client is optional; without it recipe writes are not rate
// limited.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	authService := service.NewAuthService(db, cfg.JWTSecret)
	recipeService := service.NewRecipeService(db)
	shoppingListService := service.NewShoppingListService(db)
	subscriptionService := service.NewSubscriptionService(db)
	catalogService := service.NewCatalogService(db)

	var writeLimiter *middleware.RateLimiter
	if redisClient != nil {
		writeLimiter = middleware.NewRecipeWriteRateLimiter(redisClient)
	}

	engine := router.SetupRouter(
		api.NewAuthHandler(authService),
		api.NewUserHandler(authService, subscriptionService),
		api.NewCatalogHandler(catalogService),
		api.NewRecipeHandler(authService, recipeService, shoppingListService, writeLimiter),
		cfg.AllowedOrigins,
	)

	return &Server{
		router: engine,
		db:     db,
		addr:   cfg.ServerHost + ":" + cfg.ServerPort,
	}
}

// Start starts the server and blocks until it stops.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:    s.addr,
		Handler: s.router,
	}

	log.Printf("Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
