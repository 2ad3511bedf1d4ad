// Command generate_demo creates a demo database with sample users, shelves,
// reviews and friendships.
// Usage: go run ./cmd/generate_demo [-db path/to/demo.db]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/friends"
	"github.com/mrlokans/bookshelf/internal/database/reviews"
	"github.com/mrlokans/bookshelf/internal/database/shelves"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/demo"
	"github.com/mrlokans/bookshelf/internal/library"
	"github.com/mrlokans/bookshelf/internal/logger"
	"github.com/mrlokans/bookshelf/internal/ratings"
	"github.com/mrlokans/bookshelf/internal/social"
)

const defaultDemoDatabasePath = "./demo/demo.db"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log, err := logger.New("development")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Generating demo database", "path", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatal("Failed to remove existing demo database", "error", err)
	}

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0o755); err != nil {
		log.Fatal("Failed to create demo directory", "error", err)
	}

	db, err := database.NewDatabase(*dbPath, "warn")
	if err != nil {
		log.Fatal("Failed to create database", "error", err)
	}
	defer db.Close()

	shelfRepo := shelves.NewRepository(db.DB)
	librarySvc := library.NewService(library.Config{Store: shelfRepo, Counters: shelfRepo, Logger: log})
	ratingsSvc := ratings.NewService(reviews.NewRepository(db.DB), log)
	socialSvc := social.NewService(users.NewRepository(db.DB), friends.NewRepository(db.DB), log)

	if err := demo.Seed(context.Background(), librarySvc, ratingsSvc, socialSvc); err != nil {
		log.Fatal("Failed to seed demo data", "error", err)
	}

	log.Info("Demo database generated", "users", len(demo.Users))
}
