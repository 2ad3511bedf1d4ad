// Package users provides database operations for the "users" collection (public profiles).
//
// # Interface Implementation
//
//	var _ social.ProfileStore = (*Repository)(nil)
//
// # Usage
//
//	repo := users.NewRepository(db)
//	profile, err := repo.GetProfile(ctx, uid)
package users

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookshelf/internal/entities"
	domainerrors "github.com/mrlokans/bookshelf/internal/errors"
)

// Repository handles all profile database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetProfile retrieves a profile by uid. A missing record wraps errors.ErrNotFound.
func (r *Repository) GetProfile(ctx context.Context, uid string) (*entities.UserProfile, error) {
	var profile entities.UserProfile
	err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("profile %s: %w", uid, domainerrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListProfiles returns every stored profile ordered by display name.
func (r *Repository) ListProfiles(ctx context.Context) ([]entities.UserProfile, error) {
	profiles := make([]entities.UserProfile, 0)
	err := r.db.WithContext(ctx).Order("display_name ASC, uid ASC").Find(&profiles).Error
	return profiles, err
}

// UpsertProfile creates the profile or merges the editable fields into the existing one.
func (r *Repository) UpsertProfile(ctx context.Context, profile *entities.UserProfile) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "email", "bio", "avatar", "updated_at"}),
	}).Create(profile).Error
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", profile.UID, err)
	}
	return nil
}
