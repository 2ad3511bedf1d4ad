package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/logger"
	"github.com/mrlokans/bookshelf/internal/profile"
	"github.com/mrlokans/bookshelf/internal/ratings"
)

// ReviewService defines the review operations used by ReviewsController.
type ReviewService interface {
	SubmitReview(ctx context.Context, bookID string, author ratings.Author, comment string, rating int) (*entities.Review, error)
	ReviewsForBook(ctx context.Context, bookID string) ([]entities.Review, error)
	ReviewStatsForUser(ctx context.Context, uid string) (ratings.Stats, error)
}

// CardRater computes the average shown on a book card.
type CardRater interface {
	BookCardRating(ctx context.Context, ref profile.BookRef) (*ratings.Average, error)
}

type ReviewsController struct {
	reviews ReviewService
	rater   CardRater
	entries EntryGetter
	log     *logger.Logger
}

func NewReviewsController(reviews ReviewService, rater CardRater, entries EntryGetter, log *logger.Logger) *ReviewsController {
	return &ReviewsController{reviews: reviews, rater: rater, entries: entries, log: log}
}

// SubmitReviewRequest is the body of a new review.
type SubmitReviewRequest struct {
	Comment string `json:"comment"`
	Rating  int    `json:"rating"`
}

// BookReviewsResponse is the book detail view of the reviews.
type BookReviewsResponse struct {
	BookID  string            `json:"book_id"`
	Mine    *entities.Review  `json:"mine"`
	Others  []entities.Review `json:"others"`
	Count   int               `json:"count"`
	Average ratings.Average   `json:"average"`
}

// resolveBookID maps the :id shelf entry to the id its reviews are tagged
// with. An explicit external_id query parameter skips the entry lookup.
func (rc *ReviewsController) resolveBookID(c *gin.Context) (string, bool) {
	ref := profile.BookRef{ExternalBookID: c.Query("external_id"), EntryID: c.Param("id")}
	if ref.ExternalBookID == "" {
		entry, err := rc.entries.Entry(c.Request.Context(), ref.EntryID)
		if err != nil {
			respondError(c, rc.log, err)
			return "", false
		}
		ref = profile.BookRef{ExternalBookID: entry.ExternalBookID, EntryID: entry.ID}
	}

	bookID, ok := profile.ResolveBookID(ref)
	if !ok {
		respondBadRequest(c, "book id is required")
		return "", false
	}
	return bookID, true
}

// Submit handles POST /api/books/:id/reviews
func (rc *ReviewsController) Submit(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	bookID, ok := rc.resolveBookID(c)
	if !ok {
		return
	}

	review, err := rc.reviews.SubmitReview(c.Request.Context(), bookID, reviewAuthor(user), req.Comment, req.Rating)
	if err != nil {
		respondError(c, rc.log, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// List handles GET /api/books/:id/reviews
func (rc *ReviewsController) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	bookID, ok := rc.resolveBookID(c)
	if !ok {
		return
	}

	reviews, err := rc.reviews.ReviewsForBook(c.Request.Context(), bookID)
	if err != nil {
		respondError(c, rc.log, err)
		return
	}

	partition := ratings.PartitionByAuthor(reviews, user.UID)
	c.JSON(http.StatusOK, BookReviewsResponse{
		BookID:  bookID,
		Mine:    partition.Mine,
		Others:  partition.Others,
		Count:   len(reviews),
		Average: ratings.AverageRating(reviews),
	})
}

// Rating handles GET /api/books/rating?external_id=&id=
// Responds with a null average when neither id is given.
func (rc *ReviewsController) Rating(c *gin.Context) {
	ref := profile.BookRef{ExternalBookID: c.Query("external_id"), EntryID: c.Query("id")}

	avg, err := rc.rater.BookCardRating(c.Request.Context(), ref)
	if err != nil {
		respondError(c, rc.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"average": avg})
}

// MyStats handles GET /api/me/reviews/stats
func (rc *ReviewsController) MyStats(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := rc.reviews.ReviewStatsForUser(c.Request.Context(), user.UID)
	if err != nil {
		respondError(c, rc.log, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
