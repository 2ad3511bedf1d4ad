package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shelf is a user-chosen categorization of a book.
type Shelf string

const (
	ShelfReading  Shelf = "reading"
	ShelfRead     Shelf = "read"
	ShelfWishlist Shelf = "wishlist"
)

// AllShelves lists every shelf in display order.
var AllShelves = []Shelf{ShelfReading, ShelfRead, ShelfWishlist}

// Valid reports whether s is one of the known shelves.
func (s Shelf) Valid() bool {
	switch s {
	case ShelfReading, ShelfRead, ShelfWishlist:
		return true
	}
	return false
}

// ShelfEntry is one book placed on one user's shelf. Entries are never updated,
// and re-adding the same book to the same shelf creates another entry.
type ShelfEntry struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id" firestore:"-"`
	OwnerID        string    `gorm:"index:idx_books_owner_shelf,priority:1;size:128;not null" json:"owner_id" firestore:"uid"`
	ExternalBookID string    `gorm:"index;size:128" json:"external_book_id" firestore:"googleId"` // Empty for legacy entries
	Title          string    `gorm:"size:512" json:"title" firestore:"title"`
	Author         string    `gorm:"size:256" json:"author" firestore:"author"`
	ThumbnailURL   string    `gorm:"size:2048" json:"thumbnail_url" firestore:"thumbnail"`
	Shelf          Shelf     `gorm:"index:idx_books_owner_shelf,priority:2;size:20;not null" json:"shelf" firestore:"shelf"`
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
}

func (ShelfEntry) TableName() string {
	return "books"
}

func (e *ShelfEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// ShelfCounter is the incrementally maintained number of entries on one shelf.
// The per-shelf queries stay authoritative; counters are reconciled against them.
type ShelfCounter struct {
	OwnerID   string    `gorm:"primaryKey;size:128" json:"owner_id"`
	Shelf     Shelf     `gorm:"primaryKey;size:20" json:"shelf"`
	Count     int64     `gorm:"column:entry_count;not null;default:0" json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ShelfCounter) TableName() string {
	return "shelf_counters"
}

// CounterDrift is a stored counter that disagreed with the recomputed count.
type CounterDrift struct {
	OwnerID string `json:"owner_id"`
	Shelf   Shelf  `json:"shelf"`
	Stored  int64  `json:"stored"`
	Actual  int64  `json:"actual"`
}
