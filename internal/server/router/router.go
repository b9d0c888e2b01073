package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/server/handlers"
	"github.com/mamadbah2/stockledger/internal/server/middleware"
)

// Deps groups what the routes are served by.
type Deps struct {
	Stocks      *handlers.StockHandler
	Categories  *handlers.CategoryHandler
	Auth        *handlers.AuthHandler
	Tokens      middleware.TokenParser
	RateLimiter *middleware.IPRateLimiter
	Store       handlers.Pinger
}

// New wires the Gin engine with required routes and middlewares.
func New(deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	r.GET("/healthz", handlers.Health(deps.Store))

	api := r.Group("/api")
	if deps.RateLimiter != nil {
		api.Use(deps.RateLimiter.Middleware())
	}
	requireAuth := middleware.RequireAuth(deps.Tokens)

	authRoutes := api.Group("/auth")
	authRoutes.POST("/register", deps.Auth.Register)
	authRoutes.POST("/login", deps.Auth.Login)
	authRoutes.GET("/me", requireAuth, deps.Auth.Me)

	api.GET("/locations", deps.Stocks.Locations)

	stocks := api.Group("/stocks")
	stocks.GET("", deps.Stocks.List)
	stocks.GET("/summary", deps.Stocks.Summary)
	stocks.GET("/dashboard", deps.Stocks.Dashboard)
	stocks.GET("/:id", deps.Stocks.Get)
	stocks.POST("", requireAuth, deps.Stocks.Create)
	stocks.PUT("/:id", requireAuth, deps.Stocks.Update)
	stocks.PATCH("/:id", requireAuth, deps.Stocks.Update)
	stocks.DELETE("/:id", requireAuth, deps.Stocks.Delete)

	categories := api.Group("/categories")
	categories.GET("", deps.Categories.List)
	categories.GET("/:id", deps.Categories.Get)
	categories.POST("", requireAuth, deps.Categories.Create)
	categories.PUT("/:id", requireAuth, deps.Categories.Update)
	categories.DELETE("/:id", requireAuth, deps.Categories.Delete)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}
