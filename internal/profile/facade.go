// Package profile composes the shelf, review and social services into the
// user-facing views: the caller's dashboard, a friend's profile and the rating
// shown on a book card.
package profile

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/logger"
	"github.com/mrlokans/bookshelf/internal/ratings"
	"github.com/mrlokans/bookshelf/internal/social"
)

const (
	DefaultDashboardShelf = entities.ShelfReading
	DefaultFriendShelf    = entities.ShelfRead
)

// ShelfReader is the part of the shelf service the facade reads from.
type ShelfReader interface {
	CountsByShelf(ctx context.Context, ownerID string, shelves []entities.Shelf) (map[entities.Shelf]int64, error)
	ListShelf(ctx context.Context, ownerID string, shelf entities.Shelf) ([]entities.ShelfEntry, error)
}

// ReviewReader is the part of the review aggregator the facade reads from.
type ReviewReader interface {
	ReviewStatsForUser(ctx context.Context, uid string) (ratings.Stats, error)
	BookRating(ctx context.Context, bookID string) (ratings.Average, error)
}

// ProfileReader loads public profiles.
type ProfileReader interface {
	PublicProfile(ctx context.Context, uid string) (*entities.UserProfile, error)
}

// Dashboard is the caller's own overview.
type Dashboard struct {
	ShelfCounts      map[entities.Shelf]int64 `json:"shelf_counts"`
	SelectedShelf    entities.Shelf           `json:"selected_shelf"`
	Books            []entities.ShelfEntry    `json:"books"`
	ReviewCount      int                      `json:"review_count"`
	AverageOwnRating ratings.Average          `json:"average_own_rating"`
}

// FriendProfile is another user's public profile with one of their shelves.
type FriendProfile struct {
	Profile entities.UserProfile  `json:"profile"`
	Avatar  string                `json:"avatar"`
	Shelf   entities.Shelf        `json:"shelf"`
	Books   []entities.ShelfEntry `json:"books"`
}

// BookRef is how a book card identifies its book. Either field may be empty.
type BookRef struct {
	ExternalBookID string
	EntryID        string
}

// ResolveBookID picks the id reviews are tagged with: the catalog id when
// present, otherwise the local entry id.
func ResolveBookID(ref BookRef) (string, bool) {
	if ref.ExternalBookID != "" {
		return ref.ExternalBookID, true
	}
	if ref.EntryID != "" {
		return ref.EntryID, true
	}
	return "", false
}

// Facade produces the aggregated views.
type Facade struct {
	shelves  ShelfReader
	reviews  ReviewReader
	profiles ProfileReader
	log      *logger.Logger
}

// NewFacade creates the profile facade.
func NewFacade(shelves ShelfReader, reviews ReviewReader, profiles ProfileReader, log *logger.Logger) *Facade {
	if log == nil {
		log = logger.NewNop()
	}
	return &Facade{
		shelves:  shelves,
		reviews:  reviews,
		profiles: profiles,
		log:      log.With("service", "profile"),
	}
}

// DashboardView reads shelf counts, the selected shelf and the caller's review
// stats concurrently. The reads are independent and may observe different instants.
// Any failure fails the whole view.
func (f *Facade) DashboardView(ctx context.Context, ownerID string, selected entities.Shelf) (*Dashboard, error) {
	if selected == "" {
		selected = DefaultDashboardShelf
	}

	var (
		counts map[entities.Shelf]int64
		books  []entities.ShelfEntry
		stats  ratings.Stats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = f.shelves.CountsByShelf(gctx, ownerID, entities.AllShelves)
		return err
	})
	g.Go(func() error {
		var err error
		books, err = f.shelves.ListShelf(gctx, ownerID, selected)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = f.reviews.ReviewStatsForUser(gctx, ownerID)
		return err
	})

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	return &Dashboard{
		ShelfCounts:      counts,
		SelectedShelf:    selected,
		Books:            books,
		ReviewCount:      stats.Count,
		AverageOwnRating: stats.Average,
	}, nil
}

// FriendProfileView reads targetUID's profile and then one of their shelves.
// A user without a profile record yields a NotFound error and their shelves are not read.
func (f *Facade) FriendProfileView(ctx context.Context, targetUID string, shelf entities.Shelf) (*FriendProfile, error) {
	if shelf == "" {
		shelf = DefaultFriendShelf
	}

	profile, err := f.profiles.PublicProfile(ctx, targetUID)
	if err != nil {
		return nil, err
	}

	books, err := f.shelves.ListShelf(ctx, targetUID, shelf)
	if err != nil {
		return nil, err
	}

	return &FriendProfile{
		Profile: *profile,
		Avatar:  social.AvatarURL(*profile),
		Shelf:   shelf,
		Books:   books,
	}, nil
}

// BookCardRating returns the average rating of the referenced book. When no id
// can be resolved it returns nil without querying.
func (f *Facade) BookCardRating(ctx context.Context, ref BookRef) (*ratings.Average, error) {
	bookID, ok := ResolveBookID(ref)
	if !ok {
		f.log.Warn("book card has no id, skipping rating query")
		return nil, nil
	}

	avg, err := f.reviews.BookRating(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return &avg, nil
}
