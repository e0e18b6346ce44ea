package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/cuistot/backend/config"
	"github.com/pageza/cuistot/backend/internal/api"
	"github.com/pageza/cuistot/backend/internal/middleware"
	"github.com/pageza/cuistot/backend/internal/router"
	"github.com/pageza/cuistot/backend/internal/service"
)

// generationLockTTL bounds how long a crashed generator can hold a title
const generationLockTTL = 2 * time.Minute

// Dependencies are the external systems the server talks to. Redis and
// Presigner are optional.
type Dependencies struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Provider  service.TextProvider
	Presigner service.ObjectPresigner
	Now       func() time.Time
}

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	log    *zap.Logger
}

// New wires services, handlers and routes
func New(cfg *config.Config, deps Dependencies, log *zap.Logger) *Server {
	if cfg.Environment != config.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	recipes := service.NewRecipeService(deps.DB, log)
	users := service.NewUserService(deps.DB)
	ratings := service.NewRatingService(deps.DB)
	auth := service.NewAuthService(deps.DB, cfg.JWTSecret)
	images := service.NewImageService(deps.Presigner)
	prompts := service.NewPrompter(cfg.LLM.Language, deps.Now)

	var locker service.TitleLocker
	if deps.Redis != nil {
		locker = service.NewRedisLocker(deps.Redis, generationLockTTL, log)
	}
	resolver := service.NewRecipeResolver(recipes, deps.Provider, prompts, locker, log)
	generators := service.NewGenerators(deps.Provider, prompts, log)

	secure := cfg.Environment == config.Production
	handlers := router.Handlers{
		Auth:    api.NewAuthHandler(auth, users, secure),
		User:    api.NewUserHandler(users, recipes),
		Recipe:  api.NewRecipeHandler(recipes, resolver, generators, log),
		Comment: api.NewCommentHandler(recipes, ratings),
		Image:   api.NewImageHandler(recipes, images),
		Health:  api.Health(deps.DB, deps.Redis),
	}
	engine := router.SetupRouter(handlers, router.Options{
		Tokens:        auth,
		Users:         users,
		Limiter:       middleware.NewGenerationRateLimiter(deps.Redis, cfg.GenerationsPerHour, log.Named("rate_limit")),
		CORSOrigins:   cfg.CORSAllowedOrigins,
		SecureCookies: secure,
		Log:           log,
	})

	return &Server{
		router: engine,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
			// generation can take a while with retries
			WriteTimeout: 3 * time.Minute,
		},
		log: log,
	}
}

// Handler exposes the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.log.Info("starting server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
