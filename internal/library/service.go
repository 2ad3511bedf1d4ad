// Package library implements the shelf repository: adding catalog books to a
// user's shelves, listing a shelf and deriving per-shelf counts.
package library

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
	domainerrors "github.com/mrlokans/bookshelf/internal/errors"
	"github.com/mrlokans/bookshelf/internal/logger"
)

// Fallbacks applied when the catalog omits a field.
const (
	FallbackTitle    = "Untitled"
	FallbackAuthor   = "Unknown"
	PlaceholderCover = "https://via.placeholder.com/128x193?text=No+Cover"
)

// ErrCountersUnsupported is returned by counter operations when the store keeps no counters.
var ErrCountersUnsupported = domainerrors.Validation("shelf counters are not maintained by the configured store")

// Store is the persistence the shelf repository needs.
type Store interface {
	CreateEntry(ctx context.Context, entry *entities.ShelfEntry) error
	GetEntry(ctx context.Context, id string) (*entities.ShelfEntry, error)
	ListShelf(ctx context.Context, ownerID string, shelf entities.Shelf) ([]entities.ShelfEntry, error)
	CountShelf(ctx context.Context, ownerID string, shelf entities.Shelf) (int64, error)
}

// CounterStore is implemented by stores that maintain shelf counters incrementally.
// ReconcileOwner must count, compare and overwrite in one transaction so that an
// entry added meanwhile is either fully counted or not seen at all.
type CounterStore interface {
	Counters(ctx context.Context, ownerID string) (map[entities.Shelf]int64, error)
	ReconcileOwner(ctx context.Context, ownerID string, shelves []entities.Shelf) ([]entities.CounterDrift, error)
	CounterOwners(ctx context.Context) ([]string, error)
}

// CoverQueue schedules caching of an entry's cover image.
type CoverQueue interface {
	EnqueueCoverCache(ctx context.Context, entryID, coverURL string) error
}

// Config holds the collaborators of the service. Counters and Covers are optional.
type Config struct {
	Store    Store
	Counters CounterStore
	Covers   CoverQueue
	Logger   *logger.Logger
}

// Service is the shelf repository.
type Service struct {
	store    Store
	counters CounterStore
	covers   CoverQueue
	log      *logger.Logger
}

// NewService creates a shelf service.
func NewService(cfg Config) *Service {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		store:    cfg.Store,
		counters: cfg.Counters,
		covers:   cfg.Covers,
		log:      log.With("service", "library"),
	}
}

// ParseShelf converts user input into a Shelf.
func ParseShelf(value string) (entities.Shelf, error) {
	shelf := entities.Shelf(strings.ToLower(strings.TrimSpace(value)))
	if !shelf.Valid() {
		return "", domainerrors.ValidationWithDetails("unknown shelf", map[string]string{
			"shelf": "must be one of reading, read, wishlist",
		})
	}
	return shelf, nil
}

// NewEntry builds the shelf entry for a catalog result, applying the fallbacks
// for a missing title, author or cover. A cover outside the catalog's image
// hosts is replaced by the placeholder, since covers are fetched server side.
func NewEntry(ownerID string, book catalog.Book, shelf entities.Shelf) *entities.ShelfEntry {
	title := strings.TrimSpace(book.Title)
	if title == "" {
		title = FallbackTitle
	}
	author := FallbackAuthor
	if len(book.Authors) > 0 && strings.TrimSpace(book.Authors[0]) != "" {
		author = book.Authors[0]
	}
	thumbnail := book.ThumbnailURL
	if !catalog.IsImageURL(thumbnail, catalog.ImageHosts) {
		thumbnail = PlaceholderCover
	}

	return &entities.ShelfEntry{
		OwnerID:        ownerID,
		ExternalBookID: book.ExternalID,
		Title:          title,
		Author:         author,
		ThumbnailURL:   thumbnail,
		Shelf:          shelf,
	}
}

// AddToShelf persists a new entry for the catalog book. Re-adding the same book
// creates another entry. The cover is cached in the background when a queue is configured.
func (s *Service) AddToShelf(ctx context.Context, ownerID string, book catalog.Book, shelf entities.Shelf) (*entities.ShelfEntry, error) {
	if ownerID == "" {
		return nil, domainerrors.Validation("owner is required")
	}
	if !shelf.Valid() {
		return nil, domainerrors.Validationf("unknown shelf %q", shelf)
	}

	entry := NewEntry(ownerID, book, shelf)
	if err := s.store.CreateEntry(ctx, entry); err != nil {
		return nil, s.fail(ctx, "failed to add book to shelf", err, "owner", ownerID, "shelf", shelf)
	}

	if s.covers != nil && entry.ThumbnailURL != PlaceholderCover {
		if err := s.covers.EnqueueCoverCache(ctx, entry.ID, entry.ThumbnailURL); err != nil {
			s.log.Warn("failed to enqueue cover caching", "entry", entry.ID, "error", err)
		}
	}

	s.log.Debug("book added to shelf", "owner", ownerID, "shelf", shelf, "entry", entry.ID)
	return entry, nil
}

// Entry returns a single shelf entry.
func (s *Service) Entry(ctx context.Context, id string) (*entities.ShelfEntry, error) {
	entry, err := s.store.GetEntry(ctx, id)
	if domainerrors.Is(err, domainerrors.ErrNotFound) {
		return nil, domainerrors.NotFoundf("shelf entry %s not found", id)
	}
	if err != nil {
		return nil, s.fail(ctx, "failed to load shelf entry", err, "entry", id)
	}
	return entry, nil
}

// ListShelf returns the owner's entries on one shelf. No entries is an empty slice.
func (s *Service) ListShelf(ctx context.Context, ownerID string, shelf entities.Shelf) ([]entities.ShelfEntry, error) {
	if !shelf.Valid() {
		return nil, domainerrors.Validationf("unknown shelf %q", shelf)
	}

	entries, err := s.store.ListShelf(ctx, ownerID, shelf)
	if err != nil {
		return nil, s.fail(ctx, "failed to list shelf", err, "owner", ownerID, "shelf", shelf)
	}
	if entries == nil {
		entries = []entities.ShelfEntry{}
	}
	return entries, nil
}

// CountsByShelf issues one count query per shelf concurrently. A shelf without
// entries maps to 0. The counts are not taken from a single snapshot.
func (s *Service) CountsByShelf(ctx context.Context, ownerID string, shelves []entities.Shelf) (map[entities.Shelf]int64, error) {
	for _, shelf := range shelves {
		if !shelf.Valid() {
			return nil, domainerrors.Validationf("unknown shelf %q", shelf)
		}
	}

	var mu sync.Mutex
	counts := make(map[entities.Shelf]int64, len(shelves))
	unique := make([]entities.Shelf, 0, len(shelves))
	for _, shelf := range shelves {
		if _, seen := counts[shelf]; !seen {
			counts[shelf] = 0
			unique = append(unique, shelf)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, shelf := range unique {
		g.Go(func() error {
			n, err := s.store.CountShelf(gctx, ownerID, shelf)
			if err != nil {
				return err
			}
			mu.Lock()
			counts[shelf] = n
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, s.fail(ctx, "failed to count shelves", err, "owner", ownerID)
	}
	return counts, nil
}

// StoredCounters returns the incrementally maintained counters for every shelf.
func (s *Service) StoredCounters(ctx context.Context, ownerID string) (map[entities.Shelf]int64, error) {
	if s.counters == nil {
		return nil, ErrCountersUnsupported
	}

	stored, err := s.counters.Counters(ctx, ownerID)
	if err != nil {
		return nil, s.fail(ctx, "failed to read shelf counters", err, "owner", ownerID)
	}

	counts := make(map[entities.Shelf]int64, len(entities.AllShelves))
	for _, shelf := range entities.AllShelves {
		counts[shelf] = stored[shelf]
	}
	return counts, nil
}

// CounterDrift is a counter that disagreed with the recomputed count.
type CounterDrift = entities.CounterDrift

// ReconcileCounters recomputes the counts of ownerID (every owner when empty)
// and overwrites drifted counters. Each owner is reconciled atomically by the
// store; owners are not reconciled against each other. Returns the corrected drift.
func (s *Service) ReconcileCounters(ctx context.Context, ownerID string) ([]CounterDrift, error) {
	if s.counters == nil {
		return nil, ErrCountersUnsupported
	}

	owners := []string{ownerID}
	if ownerID == "" {
		var err error
		owners, err = s.counters.CounterOwners(ctx)
		if err != nil {
			return nil, s.fail(ctx, "failed to list counter owners", err)
		}
	}

	drifts := make([]CounterDrift, 0)
	for _, owner := range owners {
		ownerDrift, err := s.counters.ReconcileOwner(ctx, owner, entities.AllShelves)
		if err != nil {
			return nil, s.fail(ctx, "failed to reconcile shelf counters", err, "owner", owner)
		}
		drifts = append(drifts, ownerDrift...)
	}

	s.log.Info("shelf counters reconciled", "owners", len(owners), "drifted", len(drifts))
	return drifts, nil
}

func (s *Service) fail(ctx context.Context, msg string, err error, keysAndValues ...any) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	s.log.Error(msg, append(keysAndValues, "error", err)...)
	return domainerrors.Persistence(msg, err)
}
