package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/library"
	"github.com/mrlokans/bookshelf/internal/logger"
)

// ShelfService defines the shelf operations used by ShelvesController.
type ShelfService interface {
	AddToShelf(ctx context.Context, ownerID string, book catalog.Book, shelf entities.Shelf) (*entities.ShelfEntry, error)
	ListShelf(ctx context.Context, ownerID string, shelf entities.Shelf) ([]entities.ShelfEntry, error)
	CountsByShelf(ctx context.Context, ownerID string, shelves []entities.Shelf) (map[entities.Shelf]int64, error)
	StoredCounters(ctx context.Context, ownerID string) (map[entities.Shelf]int64, error)
	ReconcileCounters(ctx context.Context, ownerID string) ([]library.CounterDrift, error)
}

// ReconcileEnqueuer schedules counter reconciliation in the background.
type ReconcileEnqueuer interface {
	EnqueueReconcile(ctx context.Context, ownerID string) (string, error)
}

type ShelvesController struct {
	shelves  ShelfService
	enqueuer ReconcileEnqueuer
	log      *logger.Logger
}

// NewShelvesController creates the controller. enqueuer may be nil, in which
// case reconciliation runs within the request.
func NewShelvesController(shelves ShelfService, enqueuer ReconcileEnqueuer, log *logger.Logger) *ShelvesController {
	return &ShelvesController{shelves: shelves, enqueuer: enqueuer, log: log}
}

// AddBookRequest is the catalog book being shelved.
type AddBookRequest struct {
	ExternalID   string   `json:"external_id"`
	Title        string   `json:"title"`
	Authors      []string `json:"authors"`
	ThumbnailURL string   `json:"thumbnail_url"`
}

// AddBook handles POST /api/shelves/:shelf/books
func (sc *ShelvesController) AddBook(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	shelf, ok := parseShelfParam(c, c.Param("shelf"), "", sc.log)
	if !ok {
		return
	}

	var req AddBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	book := catalog.Book{
		ExternalID:   req.ExternalID,
		Title:        req.Title,
		Authors:      req.Authors,
		ThumbnailURL: req.ThumbnailURL,
	}
	entry, err := sc.shelves.AddToShelf(c.Request.Context(), user.UID, book, shelf)
	if err != nil {
		respondError(c, sc.log, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// ListBooks handles GET /api/shelves/:shelf/books
func (sc *ShelvesController) ListBooks(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	shelf, ok := parseShelfParam(c, c.Param("shelf"), "", sc.log)
	if !ok {
		return
	}

	books, err := sc.shelves.ListShelf(c.Request.Context(), user.UID, shelf)
	if err != nil {
		respondError(c, sc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"shelf": shelf, "books": books})
}

// Counts handles GET /api/shelves/counts
func (sc *ShelvesController) Counts(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	counts, err := sc.shelves.CountsByShelf(c.Request.Context(), user.UID, entities.AllShelves)
	if err != nil {
		respondError(c, sc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"counts": counts})
}

// Counters handles GET /api/shelves/counters
func (sc *ShelvesController) Counters(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	counters, err := sc.shelves.StoredCounters(c.Request.Context(), user.UID)
	if err != nil {
		respondError(c, sc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"counters": counters})
}

// ReconcileRequest optionally limits reconciliation to one owner.
type ReconcileRequest struct {
	OwnerID string `json:"owner_id" form:"owner_id"`
}

// Reconcile handles POST /api/admin/shelves/reconcile
func (sc *ShelvesController) Reconcile(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	var req ReconcileRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	if sc.enqueuer != nil {
		taskID, err := sc.enqueuer.EnqueueReconcile(c.Request.Context(), req.OwnerID)
		if err != nil {
			respondError(c, sc.log, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"task_id":  taskID,
			"owner_id": req.OwnerID,
			"message":  "reconciliation enqueued",
		})
		return
	}

	drift, err := sc.shelves.ReconcileCounters(c.Request.Context(), req.OwnerID)
	if err != nil {
		respondError(c, sc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"drift": drift})
}
