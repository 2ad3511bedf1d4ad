// Package ratings implements the review aggregator: review submission, per-book
// listings and rating statistics.
package ratings

import (
	"context"
	"strings"

	"github.com/mrlokans/bookshelf/internal/entities"
	domainerrors "github.com/mrlokans/bookshelf/internal/errors"
	"github.com/mrlokans/bookshelf/internal/logger"
	"github.com/mrlokans/bookshelf/internal/validation"
)

// AnonymousAuthor is the display name used when the author has neither a name nor an email.
const AnonymousAuthor = "Anonymous"

// Store is the persistence the aggregator needs.
type Store interface {
	CreateReview(ctx context.Context, review *entities.Review) error
	ReviewsByBook(ctx context.Context, bookID string) ([]entities.Review, error)
	ReviewsByAuthor(ctx context.Context, uid string) ([]entities.Review, error)
}

// Author identifies the caller submitting a review.
type Author struct {
	UID         string
	DisplayName string
	Email       string
}

// Name is the display name stored with a review.
func (a Author) Name() string {
	if name := strings.TrimSpace(a.DisplayName); name != "" {
		return name
	}
	if a.Email != "" {
		return a.Email
	}
	return AnonymousAuthor
}

type submission struct {
	BookID    string `json:"book_id" validate:"required"`
	AuthorUID string `json:"author_uid" validate:"required"`
	Comment   string `json:"comment" validate:"required"`
	Rating    int    `json:"rating" validate:"gte=1,lte=5"`
}

// Stats summarizes the reviews written by one user.
type Stats struct {
	Count   int     `json:"count"`
	Average Average `json:"average"`
}

// Partition splits a book's reviews for display.
type Partition struct {
	Mine   *entities.Review  `json:"mine"`
	Others []entities.Review `json:"others"`
}

// Service is the review aggregator.
type Service struct {
	store     Store
	validator *validation.Validator
	log       *logger.Logger
}

// NewService creates a review aggregator.
func NewService(store Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		store:     store,
		validator: validation.New(),
		log:       log.With("service", "ratings"),
	}
}

// SubmitReview validates and stores a review. A second submission by the same
// author for the same book is stored as another review.
func (s *Service) SubmitReview(ctx context.Context, bookID string, author Author, comment string, rating int) (*entities.Review, error) {
	in := submission{
		BookID:    strings.TrimSpace(bookID),
		AuthorUID: author.UID,
		Comment:   strings.TrimSpace(comment),
		Rating:    rating,
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	review := &entities.Review{
		BookID:            in.BookID,
		AuthorUID:         in.AuthorUID,
		AuthorDisplayName: author.Name(),
		Comment:           in.Comment,
		Rating:            in.Rating,
	}
	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, s.fail(ctx, "failed to submit review", err, "book", in.BookID)
	}
	return review, nil
}

// ReviewsForBook returns every review tagged with bookID.
func (s *Service) ReviewsForBook(ctx context.Context, bookID string) ([]entities.Review, error) {
	if bookID == "" {
		return nil, domainerrors.Validation("book id is required")
	}

	reviews, err := s.store.ReviewsByBook(ctx, bookID)
	if err != nil {
		return nil, s.fail(ctx, "failed to load reviews", err, "book", bookID)
	}
	if reviews == nil {
		reviews = []entities.Review{}
	}
	return reviews, nil
}

// BookRating averages the reviews of one book.
func (s *Service) BookRating(ctx context.Context, bookID string) (Average, error) {
	reviews, err := s.ReviewsForBook(ctx, bookID)
	if err != nil {
		return Average{}, err
	}
	return AverageRating(reviews), nil
}

// ReviewStatsForUser counts and averages the reviews uid wrote across all books.
func (s *Service) ReviewStatsForUser(ctx context.Context, uid string) (Stats, error) {
	if uid == "" {
		return Stats{}, domainerrors.Validation("user id is required")
	}

	reviews, err := s.store.ReviewsByAuthor(ctx, uid)
	if err != nil {
		return Stats{}, s.fail(ctx, "failed to load user reviews", err, "uid", uid)
	}
	return Stats{Count: len(reviews), Average: AverageRating(reviews)}, nil
}

// PartitionByAuthor selects the first review written by uid as Mine. Others
// holds the reviews written by anyone else, in their original order.
// Further reviews by uid appear in neither.
func PartitionByAuthor(reviews []entities.Review, uid string) Partition {
	p := Partition{Others: make([]entities.Review, 0, len(reviews))}
	for i := range reviews {
		review := reviews[i]
		if uid != "" && review.AuthorUID == uid {
			if p.Mine == nil {
				p.Mine = &review
			}
			continue
		}
		p.Others = append(p.Others, review)
	}
	return p
}

func (s *Service) fail(ctx context.Context, msg string, err error, keysAndValues ...any) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	s.log.Error(msg, append(keysAndValues, "error", err)...)
	return domainerrors.Persistence(msg, err)
}
