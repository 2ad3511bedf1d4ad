package users

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/entities"
	domainerrors "github.com/mrlokans/bookshelf/internal/errors"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := filepath.Join(t.TempDir(), "test_users.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.UserProfile{})
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}

	return NewRepository(db), cleanup
}

func TestRepository_UpsertProfile_CreatesAndMerges(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.UpsertProfile(ctx, &entities.UserProfile{UID: "u1", DisplayName: "Ann", Bio: "reader"}))
	require.NoError(t, repo.UpsertProfile(ctx, &entities.UserProfile{UID: "u1", DisplayName: "Ann B.", Bio: "avid reader"}))

	profile, err := repo.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ann B.", profile.DisplayName)
	assert.Equal(t, "avid reader", profile.Bio)

	all, err := repo.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRepository_GetProfile_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetProfile(context.Background(), "ghost")

	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestRepository_ListProfiles_OrderedByName(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.UpsertProfile(ctx, &entities.UserProfile{UID: "u2", DisplayName: "Zed"}))
	require.NoError(t, repo.UpsertProfile(ctx, &entities.UserProfile{UID: "u1", DisplayName: "Amy"}))

	all, err := repo.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Amy", all[0].DisplayName)
	assert.Equal(t, "Zed", all[1].DisplayName)
}
