package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/judyrop/restaurant-backend/config"
	"github.com/judyrop/restaurant-backend/internal/auth"
	"github.com/judyrop/restaurant-backend/internal/catalog"
	"github.com/judyrop/restaurant-backend/internal/orders"
	"github.com/judyrop/restaurant-backend/internal/recipe"
)

type Server struct {
	db        *gorm.DB
	log       *zap.Logger
	hasher    *auth.Hasher
	tokens    *auth.TokenProvider
	catalog   *catalog.Service
	orders    *orders.Service
	suggester *recipe.Suggester
}

// SetupRouter wires every service and returns the gin engine. Tests call this
// directly against an in-memory database.
func SetupRouter(db *gorm.DB, cfg *config.Config, log *zap.Logger, generator recipe.Generator) *gin.Engine {
	s := &Server{
		db:        db,
		log:       log,
		hasher:    auth.NewHasher(cfg.BcryptCost),
		tokens:    auth.NewTokenProvider(cfg.JWTSecret, cfg.TokenTTL),
		catalog:   catalog.NewService(db, log),
		orders:    orders.NewService(db, log),
		suggester: recipe.NewSuggester(generator, log),
	}

	r := gin.Default()
	r.Use(PrometheusMiddleware())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Welcome to the restaurant ordering backend API!")
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// Public endpoints.
	api.POST("/auth/register", s.register)
	api.POST("/auth/login", s.login)
	api.GET("/categories", s.listCategories)
	api.GET("/menu", s.listMenu)
	api.GET("/menu/:id", s.getMenuItem)
	api.POST("/recipe-suggestion", s.recipeSuggestion)

	// Authenticated endpoints.
	authed := api.Group("")
	authed.Use(auth.TokenRequired(db, s.tokens))
	authed.GET("/auth/me", s.me)
	authed.POST("/orders", s.createOrder)
	authed.GET("/orders/my", s.listMyOrders)
	authed.GET("/orders/:id", s.getOrder)

	// Admin endpoints. AdminRequired always runs behind TokenRequired.
	admin := api.Group("/admin")
	admin.Use(auth.TokenRequired(db, s.tokens), auth.AdminRequired())
	admin.POST("/menu", s.addMenuItem)
	admin.GET("/orders", s.adminListOrders)
	admin.PUT("/orders/:id/status", s.adminUpdateOrderStatus)

	return r
}

// internalError logs the real cause and answers with a generic 500 so
// database details never leak to clients.
func (s *Server) internalError(c *gin.Context, msg string, err error) {
	s.log.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
