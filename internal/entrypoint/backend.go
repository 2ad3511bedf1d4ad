package entrypoint

import (
	"context"
	"fmt"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/friends"
	"github.com/mrlokans/bookshelf/internal/database/reviews"
	"github.com/mrlokans/bookshelf/internal/database/shelves"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/firestore"
	http_controllers "github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/library"
	"github.com/mrlokans/bookshelf/internal/ratings"
	"github.com/mrlokans/bookshelf/internal/social"
)

// Backend is the document store selected by STORE_BACKEND.
type Backend struct {
	Shelves  library.Store
	Counters library.CounterStore // nil when the backend keeps no counters
	Reviews  ratings.Store
	Profiles social.ProfileStore
	Friends  social.FriendStore
	Pinger   http_controllers.Pinger
	Close    func() error
}

// OpenBackend connects to the configured document store.
func OpenBackend(ctx context.Context, cfg config.Store) (*Backend, error) {
	switch cfg.Backend {
	case config.StoreBackendSQLite, "":
		db, err := database.NewDatabase(cfg.DatabasePath, cfg.DatabaseLogLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		shelfRepo := shelves.NewRepository(db.DB)
		return &Backend{
			Shelves:  shelfRepo,
			Counters: shelfRepo,
			Reviews:  reviews.NewRepository(db.DB),
			Profiles: users.NewRepository(db.DB),
			Friends:  friends.NewRepository(db.DB),
			Pinger:   db,
			Close:    db.Close,
		}, nil

	case config.StoreBackendFirestore:
		if cfg.FirestoreProjectID == "" {
			return nil, fmt.Errorf("FIRESTORE_PROJECT_ID is required for the firestore backend")
		}
		store, err := firestore.NewStore(ctx, cfg.FirestoreProjectID)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Shelves:  store,
			Reviews:  store,
			Profiles: store,
			Friends:  store,
			Pinger:   store,
			Close:    store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
