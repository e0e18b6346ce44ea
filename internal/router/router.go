package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pageza/cuistot/backend/internal/api"
	"github.com/pageza/cuistot/backend/internal/middleware"
)

// Handlers groups the API handlers mounted under /api
type Handlers struct {
	Auth    *api.AuthHandler
	User    *api.UserHandler
	Recipe  *api.RecipeHandler
	Comment *api.CommentHandler
	Image   *api.ImageHandler
	Health  gin.HandlerFunc
}

// Options carries the cross-cutting pieces of the router
type Options struct {
	Tokens        middleware.TokenValidator
	Users         middleware.UserLoader
	Limiter       *middleware.RateLimiter
	CORSOrigins   []string
	SecureCookies bool
	Log           *zap.Logger
}

// SetupRouter configures the application routes
func SetupRouter(h Handlers, opts Options) *gin.Engine {
	api.RegisterValidation()

	router := gin.New()
	router.Use(
		middleware.Recovery(opts.Log),
		middleware.RequestLogger(opts.Log.Named("http")),
		middleware.CORS(opts.CORSOrigins),
	)

	if h.Health != nil {
		router.GET("/healthz", h.Health)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var limit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if opts.Limiter != nil {
		limit = opts.Limiter.RateLimitMiddleware()
	}
	requireAuth := middleware.RequireAuth()

	apiGroup := router.Group("/api")
	apiGroup.Use(middleware.Session(opts.Tokens, opts.Users, opts.SecureCookies, opts.Log.Named("session")))

	auth := apiGroup.Group("/auth")
	{
		auth.POST("", middleware.GuestOnly(), h.Auth.Login)
		auth.POST("/register", middleware.GuestOnly(), h.Auth.Register)
		auth.DELETE("", requireAuth, h.Auth.Logout)
		auth.GET("", requireAuth, h.Auth.Me)
	}

	user := apiGroup.Group("/user", requireAuth)
	{
		user.GET("/favorites", h.User.Favorites)
		user.GET("/settings", h.User.Settings)
		user.POST("/settings", h.User.UpdateSettings)
	}

	recipes := apiGroup.Group("/recipes")
	{
		recipes.GET("", limit, h.Recipe.Search)
		recipes.GET("/ranked", limit, h.Recipe.Ranked)
		recipes.GET("/last", h.Recipe.Last)
		recipes.GET("/seasons", limit, h.Recipe.Seasons)

		recipes.GET("/:name", limit, h.Recipe.Get)
		recipes.GET("/:name/rating", h.Recipe.Rating)
		recipes.GET("/:name/ingredients", h.Recipe.Ingredients)
		recipes.GET("/:name/similar", limit, h.Recipe.Similar)
		recipes.GET("/:name/sideDish", limit, h.Recipe.SideDish)
		recipes.GET("/:name/listCourse", limit, h.Recipe.ListCourse)
		recipes.PUT("/:name/favorite", requireAuth, h.Recipe.ToggleFavorite)

		recipes.GET("/:name/comments", h.Comment.List)
		recipes.POST("/:name/comments", requireAuth, h.Comment.Create)
		recipes.GET("/:name/comments/:id", h.Comment.Replies)
		recipes.POST("/:name/comments/:id", requireAuth, h.Comment.Reply)

		recipes.GET("/:name/image", h.Image.Download)
		recipes.PUT("/:name/image", requireAuth, h.Image.Upload)
	}

	return router
}
