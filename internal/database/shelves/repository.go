// Package shelves provides database operations for the "books" collection:
// shelf membership per user and the incrementally maintained shelf counters.
//
// # Interface Implementation
//
//	var _ library.Store = (*Repository)(nil)
//	var _ library.CounterStore = (*Repository)(nil)
//
// # Usage
//
//	repo := shelves.NewRepository(db)
//	entries, err := repo.ListShelf(ctx, uid, entities.ShelfRead)
package shelves

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookshelf/internal/entities"
	domainerrors "github.com/mrlokans/bookshelf/internal/errors"
)

// Repository handles all shelf database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new shelves repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateEntry inserts a shelf entry and bumps the owner's counter for that shelf
// in the same transaction. No uniqueness check is made.
func (r *Repository) CreateEntry(ctx context.Context, entry *entities.ShelfEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("create shelf entry: %w", err)
		}

		counter := entities.ShelfCounter{
			OwnerID:   entry.OwnerID,
			Shelf:     entry.Shelf,
			Count:     1,
			UpdatedAt: time.Now(),
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "owner_id"}, {Name: "shelf"}},
			DoUpdates: clause.Assignments(map[string]any{
				"entry_count": gorm.Expr("entry_count + 1"),
				"updated_at":  counter.UpdatedAt,
			}),
		}).Create(&counter).Error
		if err != nil {
			return fmt.Errorf("increment shelf counter: %w", err)
		}
		return nil
	})
}

// GetEntry retrieves a shelf entry by ID.
func (r *Repository) GetEntry(ctx context.Context, id string) (*entities.ShelfEntry, error) {
	var entry entities.ShelfEntry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("shelf entry %s: %w", id, domainerrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListShelf returns the owner's entries on one shelf, oldest first.
func (r *Repository) ListShelf(ctx context.Context, ownerID string, shelf entities.Shelf) ([]entities.ShelfEntry, error) {
	entries := make([]entities.ShelfEntry, 0)
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND shelf = ?", ownerID, shelf).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

// CountShelf returns the number of entries the owner has on one shelf.
func (r *Repository) CountShelf(ctx context.Context, ownerID string, shelf entities.Shelf) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.ShelfEntry{}).
		Where("owner_id = ? AND shelf = ?", ownerID, shelf).
		Count(&count).Error
	return count, err
}

// Counters returns the stored counters for an owner. Shelves without a counter are absent.
func (r *Repository) Counters(ctx context.Context, ownerID string) (map[entities.Shelf]int64, error) {
	var rows []entities.ShelfCounter
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[entities.Shelf]int64, len(rows))
	for _, row := range rows {
		counts[row.Shelf] = row.Count
	}
	return counts, nil
}

// SetCounters overwrites the owner's counters with the given values.
func (r *Repository) SetCounters(ctx context.Context, ownerID string, counts map[entities.Shelf]int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for shelf, count := range counts {
			counter := entities.ShelfCounter{OwnerID: ownerID, Shelf: shelf, Count: count, UpdatedAt: now}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "owner_id"}, {Name: "shelf"}},
				DoUpdates: clause.AssignmentColumns([]string{"entry_count", "updated_at"}),
			}).Create(&counter).Error
			if err != nil {
				return fmt.Errorf("set counter %s/%s: %w", ownerID, shelf, err)
			}
		}
		return nil
	})
}

// ReconcileOwner recounts the owner's shelves and overwrites every counter that
// drifted, all in one transaction. The connection pool holds a single sqlite
// connection, so CreateEntry cannot interleave with it.
func (r *Repository) ReconcileOwner(ctx context.Context, ownerID string, shelves []entities.Shelf) ([]entities.CounterDrift, error) {
	var drifts []entities.CounterDrift
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []entities.ShelfCounter
		if err := tx.Where("owner_id = ?", ownerID).Find(&rows).Error; err != nil {
			return fmt.Errorf("load counters of %s: %w", ownerID, err)
		}
		stored := make(map[entities.Shelf]int64, len(rows))
		for _, row := range rows {
			stored[row.Shelf] = row.Count
		}

		now := time.Now()
		for _, shelf := range shelves {
			var actual int64
			err := tx.Model(&entities.ShelfEntry{}).
				Where("owner_id = ? AND shelf = ?", ownerID, shelf).
				Count(&actual).Error
			if err != nil {
				return fmt.Errorf("count %s/%s: %w", ownerID, shelf, err)
			}
			if stored[shelf] == actual {
				continue
			}

			counter := entities.ShelfCounter{OwnerID: ownerID, Shelf: shelf, Count: actual, UpdatedAt: now}
			err = tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "owner_id"}, {Name: "shelf"}},
				DoUpdates: clause.AssignmentColumns([]string{"entry_count", "updated_at"}),
			}).Create(&counter).Error
			if err != nil {
				return fmt.Errorf("set counter %s/%s: %w", ownerID, shelf, err)
			}
			drifts = append(drifts, entities.CounterDrift{OwnerID: ownerID, Shelf: shelf, Stored: stored[shelf], Actual: actual})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return drifts, nil
}

// CounterOwners returns every owner that has shelf entries or stored counters, sorted.
func (r *Repository) CounterOwners(ctx context.Context) ([]string, error) {
	var fromEntries, fromCounters []string
	db := r.db.WithContext(ctx)

	if err := db.Model(&entities.ShelfEntry{}).Distinct().Pluck("owner_id", &fromEntries).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&entities.ShelfCounter{}).Distinct().Pluck("owner_id", &fromCounters).Error; err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(fromEntries)+len(fromCounters))
	owners := make([]string, 0, len(fromEntries)+len(fromCounters))
	for _, owner := range append(fromEntries, fromCounters...) {
		if !seen[owner] {
			seen[owner] = true
			owners = append(owners, owner)
		}
	}
	sort.Strings(owners)
	return owners, nil
}
