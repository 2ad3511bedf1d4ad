package demo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/friends"
	"github.com/mrlokans/bookshelf/internal/database/reviews"
	"github.com/mrlokans/bookshelf/internal/database/shelves"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/library"
	"github.com/mrlokans/bookshelf/internal/ratings"
	"github.com/mrlokans/bookshelf/internal/social"
)

func TestSeed(t *testing.T) {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "demo.db"), "silent")
	require.NoError(t, err)
	defer db.Close()

	shelfRepo := shelves.NewRepository(db.DB)
	librarySvc := library.NewService(library.Config{Store: shelfRepo, Counters: shelfRepo})
	ratingsSvc := ratings.NewService(reviews.NewRepository(db.DB), nil)
	socialSvc := social.NewService(users.NewRepository(db.DB), friends.NewRepository(db.DB), nil)
	ctx := context.Background()

	require.NoError(t, Seed(ctx, librarySvc, ratingsSvc, socialSvc))

	counts, err := librarySvc.CountsByShelf(ctx, "demo-mary", entities.AllShelves)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[entities.ShelfRead])
	assert.Equal(t, int64(1), counts[entities.ShelfReading])

	avg, err := ratingsSvc.BookRating(ctx, "demo-meditations")
	require.NoError(t, err)
	assert.Equal(t, "4.0", avg.String())

	adaFriends, err := socialSvc.ListFriends(ctx, "demo-ada")
	require.NoError(t, err)
	assert.Contains(t, adaFriends, "demo-mary")
	assert.Equal(t, "Mary Shelley", adaFriends["demo-mary"].DisplayName)

	drift, err := librarySvc.ReconcileCounters(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, drift)
}
