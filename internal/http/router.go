package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/logger"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With("component", "http")

	router := gin.New()
	router.Use(requestLogger(log))
	router.Use(gin.Recovery())
	router.Use(securityHeaders())
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(corsMiddleware(cfg.AllowedOrigins))
	}
	if cfg.Identity != nil {
		router.Use(cfg.Identity.Handler())
	}
	if cfg.DemoMiddleware != nil && cfg.DemoMiddleware.IsEnabled() {
		router.Use(cfg.DemoMiddleware.Handler())
	}

	// Health endpoints
	health := NewHealthController(cfg.HealthChecks, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	api := router.Group("/api")

	// Catalog search
	if cfg.Catalog != nil {
		catalogController := NewCatalogController(cfg.Catalog, log)
		api.GET("/catalog/search", catalogController.Search)
	}

	// Shelves
	shelves := NewShelvesController(cfg.Shelves, cfg.Reconciler, log)
	api.GET("/shelves/counts", shelves.Counts)
	api.GET("/shelves/counters", shelves.Counters)
	api.POST("/shelves/:shelf/books", shelves.AddBook)
	api.GET("/shelves/:shelf/books", shelves.ListBooks)

	// Admin: limited to ADMIN_UIDS
	admin := api.Group("/admin")
	if cfg.Identity != nil {
		admin.Use(cfg.Identity.RequireAdmin())
	}
	admin.POST("/shelves/reconcile", shelves.Reconcile)
	if cfg.TaskStatus != nil {
		tasksController := NewTasksController(cfg.TaskStatus, log)
		admin.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	// Books: covers and reviews. :id is a shelf entry id.
	if cfg.CoverCache != nil {
		coversController := NewCoversController(cfg.CoverCache, cfg.Entries, log)
		api.GET("/books/:id/cover", coversController.GetCover)
	}
	reviews := NewReviewsController(cfg.Reviews, cfg.Profiles, cfg.Entries, log)
	api.GET("/books/rating", reviews.Rating)
	api.POST("/books/:id/reviews", reviews.Submit)
	api.GET("/books/:id/reviews", reviews.List)
	api.GET("/me/reviews/stats", reviews.MyStats)

	// Friends and profiles
	socialController := NewSocialController(cfg.Social, log)
	api.GET("/users", socialController.Users)
	api.GET("/friends", socialController.Friends)
	api.POST("/friends/:uid/toggle", socialController.Toggle)
	api.GET("/profile", socialController.GetProfile)
	api.PUT("/profile", socialController.SaveProfile)

	// Aggregated views
	views := NewProfileController(cfg.Profiles, log)
	api.GET("/dashboard", views.Dashboard)
	api.GET("/friends/:uid/profile", views.FriendProfile)

	return router
}
