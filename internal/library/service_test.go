package library

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/shelves"
	"github.com/mrlokans/bookshelf/internal/entities"
	domainerrors "github.com/mrlokans/bookshelf/internal/errors"
)

const duneCover = "http://books.google.com/books/content?id=B1hSG45JCX4C&printsec=frontcover&img=1"

type fakeStore struct {
	mu        sync.Mutex
	entries   []entities.ShelfEntry
	failWrite error
	failCount map[entities.Shelf]error
	counted   []entities.Shelf
}

func (f *fakeStore) CreateEntry(_ context.Context, entry *entities.ShelfEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite != nil {
		return f.failWrite
	}
	entry.ID = fmt.Sprintf("entry-%d", len(f.entries)+1)
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeStore) GetEntry(_ context.Context, id string) (*entities.ShelfEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, fmt.Errorf("entry %s: %w", id, domainerrors.ErrNotFound)
}

func (f *fakeStore) ListShelf(_ context.Context, ownerID string, shelf entities.Shelf) ([]entities.ShelfEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.ShelfEntry
	for _, e := range f.entries {
		if e.OwnerID == ownerID && e.Shelf == shelf {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) CountShelf(_ context.Context, ownerID string, shelf entities.Shelf) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counted = append(f.counted, shelf)
	if err := f.failCount[shelf]; err != nil {
		return 0, err
	}
	var n int64
	for _, e := range f.entries {
		if e.OwnerID == ownerID && e.Shelf == shelf {
			n++
		}
	}
	return n, nil
}

type fakeCoverQueue struct {
	enqueued map[string]string
	err      error
}

func (q *fakeCoverQueue) EnqueueCoverCache(_ context.Context, entryID, coverURL string) error {
	if q.err != nil {
		return q.err
	}
	if q.enqueued == nil {
		q.enqueued = make(map[string]string)
	}
	q.enqueued[entryID] = coverURL
	return nil
}

func TestService_AddToShelf_ThenList(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(Config{Store: store})
	ctx := context.Background()

	_, err := svc.AddToShelf(ctx, "u1", catalog.Book{ExternalID: "abc", Title: "Dune"}, entities.ShelfReading)
	require.NoError(t, err)

	entries, err := svc.ListShelf(ctx, "u1", entities.ShelfReading)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entities.ShelfReading, entries[0].Shelf)
	assert.Equal(t, "abc", entries[0].ExternalBookID)
}

func TestNewEntry_Fallbacks(t *testing.T) {
	entry := NewEntry("u1", catalog.Book{ExternalID: "x"}, entities.ShelfWishlist)

	assert.Equal(t, FallbackTitle, entry.Title)
	assert.Equal(t, FallbackAuthor, entry.Author)
	assert.Equal(t, PlaceholderCover, entry.ThumbnailURL)

	entry = NewEntry("u1", catalog.Book{Title: "Dune", Authors: []string{"Frank Herbert", "Brian Herbert"}, ThumbnailURL: duneCover}, entities.ShelfRead)
	assert.Equal(t, "Dune", entry.Title)
	assert.Equal(t, "Frank Herbert", entry.Author)
	assert.Equal(t, duneCover, entry.ThumbnailURL)
	assert.Empty(t, entry.ExternalBookID)
}

func TestNewEntry_ForeignCoverHostUsesPlaceholder(t *testing.T) {
	for _, cover := range []string{
		"http://127.0.0.1:6379/x",
		"http://169.254.169.254/latest/meta-data/",
		"https://covers.example.com/dune.jpg",
		"ftp://books.google.com/dune.jpg",
	} {
		entry := NewEntry("u1", catalog.Book{Title: "Dune", ThumbnailURL: cover}, entities.ShelfRead)
		assert.Equal(t, PlaceholderCover, entry.ThumbnailURL, cover)
	}
}

func TestService_AddToShelf_Validation(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(Config{Store: store})

	_, err := svc.AddToShelf(context.Background(), "", catalog.Book{Title: "Dune"}, entities.ShelfRead)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = svc.AddToShelf(context.Background(), "u1", catalog.Book{Title: "Dune"}, entities.Shelf("favorites"))
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	assert.Empty(t, store.entries)
}

func TestService_AddToShelf_PersistenceError(t *testing.T) {
	svc := NewService(Config{Store: &fakeStore{failWrite: errors.New("disk full")}})

	_, err := svc.AddToShelf(context.Background(), "u1", catalog.Book{Title: "Dune"}, entities.ShelfRead)

	assert.ErrorIs(t, err, domainerrors.ErrPersistence)
	assert.Contains(t, err.Error(), "disk full")
}

func TestService_AddToShelf_EnqueuesCover(t *testing.T) {
	queue := &fakeCoverQueue{}
	svc := NewService(Config{Store: &fakeStore{}, Covers: queue})
	ctx := context.Background()

	entry, err := svc.AddToShelf(ctx, "u1", catalog.Book{Title: "Dune", ThumbnailURL: duneCover}, entities.ShelfRead)
	require.NoError(t, err)
	assert.Equal(t, duneCover, queue.enqueued[entry.ID])

	placeholder, err := svc.AddToShelf(ctx, "u1", catalog.Book{Title: "No cover"}, entities.ShelfRead)
	require.NoError(t, err)
	assert.NotContains(t, queue.enqueued, placeholder.ID)

	internal, err := svc.AddToShelf(ctx, "u1", catalog.Book{Title: "Internal", ThumbnailURL: "http://127.0.0.1:6379/x"}, entities.ShelfRead)
	require.NoError(t, err)
	assert.Equal(t, PlaceholderCover, internal.ThumbnailURL)
	assert.NotContains(t, queue.enqueued, internal.ID)
}

func TestService_AddToShelf_CoverQueueFailureIsNotReturned(t *testing.T) {
	svc := NewService(Config{Store: &fakeStore{}, Covers: &fakeCoverQueue{err: errors.New("queue down")}})

	entry, err := svc.AddToShelf(context.Background(), "u1", catalog.Book{Title: "Dune", ThumbnailURL: duneCover}, entities.ShelfRead)

	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
}

func TestService_ListShelf_EmptyIsNotError(t *testing.T) {
	svc := NewService(Config{Store: &fakeStore{}})

	entries, err := svc.ListShelf(context.Background(), "u1", entities.ShelfRead)

	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestService_CountsByShelf_ZeroForEmptyShelf(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(Config{Store: store})
	ctx := context.Background()

	_, err := svc.AddToShelf(ctx, "u1", catalog.Book{Title: "A"}, entities.ShelfReading)
	require.NoError(t, err)
	_, err = svc.AddToShelf(ctx, "u1", catalog.Book{Title: "B"}, entities.ShelfReading)
	require.NoError(t, err)

	counts, err := svc.CountsByShelf(ctx, "u1", entities.AllShelves)

	require.NoError(t, err)
	assert.Equal(t, map[entities.Shelf]int64{
		entities.ShelfReading:  2,
		entities.ShelfRead:     0,
		entities.ShelfWishlist: 0,
	}, counts)
}

func TestService_CountsByShelf_OneQueryPerShelf(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(Config{Store: store})

	_, err := svc.CountsByShelf(context.Background(), "u1", []entities.Shelf{entities.ShelfRead, entities.ShelfRead, entities.ShelfWishlist})

	require.NoError(t, err)
	assert.ElementsMatch(t, []entities.Shelf{entities.ShelfRead, entities.ShelfWishlist}, store.counted)
}

func TestService_CountsByShelf_AnyFailureFailsAll(t *testing.T) {
	store := &fakeStore{failCount: map[entities.Shelf]error{entities.ShelfRead: errors.New("timeout")}}
	svc := NewService(Config{Store: store})

	counts, err := svc.CountsByShelf(context.Background(), "u1", entities.AllShelves)

	assert.Nil(t, counts)
	assert.ErrorIs(t, err, domainerrors.ErrPersistence)
}

func TestService_Entry_NotFound(t *testing.T) {
	svc := NewService(Config{Store: &fakeStore{}})

	_, err := svc.Entry(context.Background(), "missing")

	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestParseShelf(t *testing.T) {
	shelf, err := ParseShelf(" Reading ")
	require.NoError(t, err)
	assert.Equal(t, entities.ShelfReading, shelf)

	_, err = ParseShelf("favourites")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = ParseShelf("")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestService_CountersUnsupported(t *testing.T) {
	svc := NewService(Config{Store: &fakeStore{}})

	_, err := svc.StoredCounters(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrCountersUnsupported)

	_, err = svc.ReconcileCounters(context.Background(), "")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func setupSQLite(t *testing.T) *shelves.Repository {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "library.db"), "silent")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return shelves.NewRepository(db.DB)
}

func TestService_SQLite_CountersFollowAdds(t *testing.T) {
	repo := setupSQLite(t)
	svc := NewService(Config{Store: repo, Counters: repo})
	ctx := context.Background()

	for _, title := range []string{"A", "B"} {
		_, err := svc.AddToShelf(ctx, "u1", catalog.Book{ExternalID: title, Title: title}, entities.ShelfRead)
		require.NoError(t, err)
	}

	stored, err := svc.StoredCounters(ctx, "u1")
	require.NoError(t, err)
	counts, err := svc.CountsByShelf(ctx, "u1", entities.AllShelves)
	require.NoError(t, err)

	assert.Equal(t, counts, stored)
	assert.Equal(t, int64(2), stored[entities.ShelfRead])
	assert.Equal(t, int64(0), stored[entities.ShelfWishlist])
}

func TestService_SQLite_ReconcileCorrectsDrift(t *testing.T) {
	repo := setupSQLite(t)
	svc := NewService(Config{Store: repo, Counters: repo})
	ctx := context.Background()

	_, err := svc.AddToShelf(ctx, "u1", catalog.Book{Title: "A"}, entities.ShelfReading)
	require.NoError(t, err)
	_, err = svc.AddToShelf(ctx, "u2", catalog.Book{Title: "B"}, entities.ShelfWishlist)
	require.NoError(t, err)
	require.NoError(t, repo.SetCounters(ctx, "u1", map[entities.Shelf]int64{entities.ShelfReading: 5}))

	drifts, err := svc.ReconcileCounters(ctx, "")
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, CounterDrift{OwnerID: "u1", Shelf: entities.ShelfReading, Stored: 5, Actual: 1}, drifts[0])

	stored, err := svc.StoredCounters(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored[entities.ShelfReading])

	drifts, err = svc.ReconcileCounters(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestService_SQLite_AddDuringReconcileIsNotLost(t *testing.T) {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "library.db"), "silent")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := shelves.NewRepository(db.DB)
	svc := NewService(Config{Store: repo, Counters: repo})
	ctx := context.Background()

	_, err = svc.AddToShelf(ctx, "u1", catalog.Book{Title: "A"}, entities.ShelfReading)
	require.NoError(t, err)

	// Add another entry as soon as reconciliation has counted the reading shelf.
	var once sync.Once
	added := make(chan error, 1)
	err = db.DB.Callback().Query().After("gorm:query").Register("test:add_during_reconcile", func(tx *gorm.DB) {
		if tx.Statement.Table != "books" {
			return
		}
		once.Do(func() {
			go func() {
				_, err := svc.AddToShelf(context.Background(), "u1", catalog.Book{Title: "B"}, entities.ShelfReading)
				added <- err
			}()
		})
	})
	require.NoError(t, err)

	_, err = svc.ReconcileCounters(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, <-added)

	counts, err := svc.CountsByShelf(ctx, "u1", entities.AllShelves)
	require.NoError(t, err)
	stored, err := svc.StoredCounters(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[entities.ShelfReading])
	assert.Equal(t, counts, stored)
}
