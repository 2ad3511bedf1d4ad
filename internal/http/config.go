package http

import (
	"github.com/mrlokans/bookshelf/internal/demo"
	"github.com/mrlokans/bookshelf/internal/identity"
	"github.com/mrlokans/bookshelf/internal/logger"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core services
	Catalog  CatalogSearcher
	Shelves  ShelfService
	Entries  EntryGetter
	Reviews  ReviewService
	Social   SocialService
	Profiles interface {
		ProfileViews
		CardRater
	}

	// Identity middleware; required for every /api route
	Identity *identity.Middleware

	// Read-only demo mode (optional)
	DemoMiddleware *demo.Middleware

	// Cover caching (optional)
	CoverCache CoverCache

	// Task queue (optional). Without it reconciliation runs within the request.
	Reconciler ReconcileEnqueuer
	TaskStatus TaskStatuser

	// Dependencies reported by /health
	HealthChecks map[string]Pinger

	// CORS origins of the browser front end (optional)
	AllowedOrigins []string

	// Application info
	Version string

	Logger *logger.Logger
}
