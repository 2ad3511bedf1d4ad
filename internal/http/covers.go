package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/library"
	"github.com/mrlokans/bookshelf/internal/logger"
)

// EntryGetter loads a shelf entry by id.
type EntryGetter interface {
	Entry(ctx context.Context, id string) (*entities.ShelfEntry, error)
}

// CoverCache returns the local path of a cached cover, fetching it when missing.
type CoverCache interface {
	GetCover(ctx context.Context, entryID, coverURL string) (string, error)
}

// CoversController handles book cover requests.
type CoversController struct {
	cache   CoverCache
	entries EntryGetter
	log     *logger.Logger
}

// NewCoversController creates a new CoversController.
func NewCoversController(cache CoverCache, entries EntryGetter, log *logger.Logger) *CoversController {
	return &CoversController{
		cache:   cache,
		entries: entries,
		log:     log,
	}
}

// GetCover serves a cached cover image of a shelf entry.
// GET /api/books/:id/cover
func (cc *CoversController) GetCover(c *gin.Context) {
	entry, err := cc.entries.Entry(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, cc.log, err)
		return
	}

	if entry.ThumbnailURL == "" || entry.ThumbnailURL == library.PlaceholderCover {
		c.Redirect(http.StatusTemporaryRedirect, library.PlaceholderCover)
		return
	}

	cachePath, err := cc.cache.GetCover(c.Request.Context(), entry.ID, entry.ThumbnailURL)
	if err != nil || cachePath == "" {
		if err != nil {
			cc.log.Debug("cover cache miss, redirecting", "entry_id", entry.ID, "error", err)
		}
		c.Redirect(http.StatusTemporaryRedirect, entry.ThumbnailURL)
		return
	}

	c.File(cachePath)
}
