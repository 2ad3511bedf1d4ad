// Package database provides the sqlite-backed document store.
//
// # Architecture
//
// Each collection of the document store lives in its own sub-package:
//
//	database/
//	├── database.go   # Connection setup and migrations
//	├── shelves/      # "books" collection: shelf entries and shelf counters
//	├── reviews/      # "reviews" collection
//	├── friends/      # "friends/{owner}/list" relation
//	└── users/        # "users" collection: public profiles
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./bookshelf.db", "warn")
//
//	shelfRepo := shelves.NewRepository(db.DB)
//	entries, err := shelfRepo.ListShelf(ctx, uid, entities.ShelfReading)
//
// # Interface Implementations
//
//   - shelves.Repository: library.Store, library.CounterStore
//   - reviews.Repository: ratings.Store
//   - friends.Repository: social.FriendStore
//   - users.Repository: social.ProfileStore
//
// The same interfaces are implemented by internal/firestore for the networked backend.
// Reads are equality filters over one or two fields; joins are composed by callers.
package database
