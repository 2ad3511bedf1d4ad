package friends

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := filepath.Join(t.TempDir(), "test_friends.db")

	db, err := gorm.Open(sqlite.Open(dbPath+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.FriendLink{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	cleanup := func() {
		sqlDB.Close()
	}

	return NewRepository(db), cleanup
}

func TestRepository_ToggleFriendLink_Alternates(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	link := entities.FriendLink{OwnerID: "u1", TargetUID: "u2", DisplayName: "Bob", Avatar: "https://img/bob.png"}

	member, err := repo.ToggleFriendLink(ctx, link)
	require.NoError(t, err)
	assert.True(t, member)

	links, err := repo.ListFriendLinks(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "u2", links[0].TargetUID)
	assert.Equal(t, "Bob", links[0].DisplayName)
	assert.False(t, links[0].AddedAt.IsZero())

	member, err = repo.ToggleFriendLink(ctx, link)
	require.NoError(t, err)
	assert.False(t, member)

	links, err = repo.ListFriendLinks(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestRepository_LinksAreDirected(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	_, err := repo.ToggleFriendLink(ctx, entities.FriendLink{OwnerID: "u1", TargetUID: "u2"})
	require.NoError(t, err)

	links, err := repo.ListFriendLinks(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestRepository_ToggleFriendLink_ConcurrentTogglesConverge(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	// An even number of serialized toggles always ends with no link.
	const toggles = 6
	var wg sync.WaitGroup
	errs := make(chan error, toggles)
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ToggleFriendLink(ctx, entities.FriendLink{OwnerID: "u1", TargetUID: "u2"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	links, err := repo.ListFriendLinks(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, links)
}
