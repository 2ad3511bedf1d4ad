// Package friends provides database operations for the directed friend relation
// (friends/{owner}/list/{target}).
//
// # Interface Implementation
//
//	var _ social.FriendStore = (*Repository)(nil)
package friends

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles all friend link database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new friends repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListFriendLinks returns the owner's outgoing links ordered by target uid.
func (r *Repository) ListFriendLinks(ctx context.Context, ownerID string) ([]entities.FriendLink, error) {
	links := make([]entities.FriendLink, 0)
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("target_uid ASC").
		Find(&links).Error
	return links, err
}

// ToggleFriendLink deletes the link if it exists and creates it otherwise.
// The existence check and the write share one transaction.
// Returns the membership after the toggle.
func (r *Repository) ToggleFriendLink(ctx context.Context, link entities.FriendLink) (bool, error) {
	var member bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entities.FriendLink
		err := tx.Where("owner_id = ? AND target_uid = ?", link.OwnerID, link.TargetUID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return fmt.Errorf("delete friend link: %w", err)
			}
			member = false
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			if link.AddedAt.IsZero() {
				link.AddedAt = time.Now()
			}
			if err := tx.Create(&link).Error; err != nil {
				return fmt.Errorf("create friend link: %w", err)
			}
			member = true
			return nil
		default:
			return fmt.Errorf("read friend link: %w", err)
		}
	})
	return member, err
}
