package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is one user's opinion on one book. BookID is the catalog id of the book,
// or the local shelf entry id when the catalog id is absent.
// Rating bounds and a non-empty comment are enforced by the review service, not the store.
type Review struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id" firestore:"-"`
	BookID            string    `gorm:"index;size:128;not null" json:"book_id" firestore:"bookId"`
	AuthorUID         string    `gorm:"index;size:128;not null" json:"author_uid" firestore:"uid"`
	AuthorDisplayName string    `gorm:"size:256" json:"author_display_name" firestore:"user"`
	Comment           string    `gorm:"type:text" json:"comment" firestore:"comment"`
	Rating            int       `gorm:"not null" json:"rating" firestore:"rating"`
	CreatedAt         time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
}

func (Review) TableName() string {
	return "reviews"
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
