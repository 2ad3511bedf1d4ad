// Package reviews provides database operations for the "reviews" collection.
//
// # Interface Implementation
//
//	var _ ratings.Store = (*Repository)(nil)
//
// # Usage
//
//	repo := reviews.NewRepository(db)
//	list, err := repo.ReviewsByBook(ctx, "abc")
package reviews

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles all review database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reviews repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateReview stores a review. Rating bounds are not checked here.
func (r *Repository) CreateReview(ctx context.Context, review *entities.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// ReviewsByBook returns every review tagged with bookID in creation order.
func (r *Repository) ReviewsByBook(ctx context.Context, bookID string) ([]entities.Review, error) {
	return r.find(ctx, "book_id = ?", bookID)
}

// ReviewsByAuthor returns every review written by uid across all books.
func (r *Repository) ReviewsByAuthor(ctx context.Context, uid string) ([]entities.Review, error) {
	return r.find(ctx, "author_uid = ?", uid)
}

func (r *Repository) find(ctx context.Context, query string, arg string) ([]entities.Review, error) {
	list := make([]entities.Review, 0)
	err := r.db.WithContext(ctx).
		Where(query, arg).
		Order("created_at ASC, id ASC").
		Find(&list).Error
	return list, err
}
