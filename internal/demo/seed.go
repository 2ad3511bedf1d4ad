package demo

import (
	"context"
	"fmt"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/ratings"
	"github.com/mrlokans/bookshelf/internal/social"
)

// Shelver, Reviewer and Befriender are the service operations the seed uses.
type (
	Shelver interface {
		AddToShelf(ctx context.Context, ownerID string, book catalog.Book, shelf entities.Shelf) (*entities.ShelfEntry, error)
	}
	Reviewer interface {
		SubmitReview(ctx context.Context, bookID string, author ratings.Author, comment string, rating int) (*entities.Review, error)
	}
	Befriender interface {
		SaveProfile(ctx context.Context, caller social.Caller, in social.ProfileInput) (*entities.UserProfile, error)
		ToggleByID(ctx context.Context, ownerID, targetUID string) (bool, error)
	}
)

// User is a demo account.
type User struct {
	UID  string
	Name string
	Bio  string
}

// Users are the demo accounts, in creation order.
var Users = []User{
	{UID: "demo-ada", Name: "Ada Lovelace", Bio: "Notes on analytical engines and poetry."},
	{UID: "demo-mary", Name: "Mary Shelley", Bio: "Gothic fiction, mostly at night."},
	{UID: "demo-leo", Name: "Leo Tolstoy", Bio: "Long novels only."},
}

type placement struct {
	uid    string
	shelf  entities.Shelf
	book   catalog.Book
	review string
	rating int
}

// Public domain books. The ids are stable placeholders, not real catalog ids.
var (
	meditations  = catalog.Book{ExternalID: "demo-meditations", Title: "Meditations", Authors: []string{"Marcus Aurelius"}}
	frankenstein = catalog.Book{ExternalID: "demo-frankenstein", Title: "Frankenstein", Authors: []string{"Mary Shelley"}}
	warAndPeace  = catalog.Book{ExternalID: "demo-war-and-peace", Title: "War and Peace", Authors: []string{"Leo Tolstoy"}}
	pride        = catalog.Book{ExternalID: "demo-pride", Title: "Pride and Prejudice", Authors: []string{"Jane Austen"}}
)

var placements = []placement{
	{uid: "demo-ada", shelf: entities.ShelfRead, book: meditations, review: "Short chapters, long echoes.", rating: 5},
	{uid: "demo-ada", shelf: entities.ShelfReading, book: frankenstein},
	{uid: "demo-ada", shelf: entities.ShelfWishlist, book: warAndPeace},
	{uid: "demo-mary", shelf: entities.ShelfRead, book: frankenstein, review: "I may be biased.", rating: 4},
	{uid: "demo-mary", shelf: entities.ShelfRead, book: meditations, review: "Calming before a storm.", rating: 3},
	{uid: "demo-mary", shelf: entities.ShelfReading, book: pride},
	{uid: "demo-leo", shelf: entities.ShelfRead, book: warAndPeace, review: "Could have been longer.", rating: 5},
	{uid: "demo-leo", shelf: entities.ShelfWishlist, book: pride},
}

// friendships are directed: owner -> target.
var friendships = [][2]string{
	{"demo-ada", "demo-mary"},
	{"demo-mary", "demo-ada"},
	{"demo-leo", "demo-ada"},
}

// Seed creates the demo users, their shelves, reviews and friendships.
// Seeding is not idempotent; run it against an empty store.
func Seed(ctx context.Context, shelves Shelver, reviews Reviewer, people Befriender) error {
	for _, u := range Users {
		caller := social.Caller{UID: u.UID, DisplayName: u.Name}
		if _, err := people.SaveProfile(ctx, caller, social.ProfileInput{DisplayName: u.Name, Bio: u.Bio}); err != nil {
			return fmt.Errorf("save profile %s: %w", u.UID, err)
		}
	}

	names := make(map[string]string, len(Users))
	for _, u := range Users {
		names[u.UID] = u.Name
	}

	for _, p := range placements {
		if _, err := shelves.AddToShelf(ctx, p.uid, p.book, p.shelf); err != nil {
			return fmt.Errorf("shelve %q for %s: %w", p.book.Title, p.uid, err)
		}
		if p.review == "" {
			continue
		}
		author := ratings.Author{UID: p.uid, DisplayName: names[p.uid]}
		if _, err := reviews.SubmitReview(ctx, p.book.ExternalID, author, p.review, p.rating); err != nil {
			return fmt.Errorf("review %q by %s: %w", p.book.Title, p.uid, err)
		}
	}

	for _, f := range friendships {
		if _, err := people.ToggleByID(ctx, f[0], f[1]); err != nil {
			return fmt.Errorf("befriend %s -> %s: %w", f[0], f[1], err)
		}
	}
	return nil
}
