package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/logger"
)

// CatalogSearcher looks up books in the external catalog.
type CatalogSearcher interface {
	Search(ctx context.Context, query string) ([]catalog.Book, error)
}

type CatalogController struct {
	searcher CatalogSearcher
	log      *logger.Logger
}

func NewCatalogController(searcher CatalogSearcher, log *logger.Logger) *CatalogController {
	return &CatalogController{searcher: searcher, log: log}
}

// Search handles GET /api/catalog/search?q=
func (cc *CatalogController) Search(c *gin.Context) {
	books, err := cc.searcher.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, cc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": books})
}
