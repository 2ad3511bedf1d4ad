// Package firestore is the Cloud Firestore backend of the document store. One
// Store serves every collection: books, reviews, users and friends/{owner}/list.
//
// # Interface Implementation
//
//	var _ library.Store = (*Store)(nil)
//	var _ ratings.Store = (*Store)(nil)
//	var _ social.ProfileStore = (*Store)(nil)
//	var _ social.FriendStore = (*Store)(nil)
//
// Shelf counters are not maintained by this backend.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	gfs "cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mrlokans/bookshelf/internal/entities"
	domainerrors "github.com/mrlokans/bookshelf/internal/errors"
)

const (
	booksCollection   = "books"
	reviewsCollection = "reviews"
	usersCollection   = "users"
	friendsCollection = "friends"
	friendsSubList    = "list"
)

// Store implements the store interfaces on top of a Firestore client.
type Store struct {
	client *gfs.Client
}

// NewStore connects to the Firestore project. FIRESTORE_EMULATOR_HOST is honored by the client.
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	client, err := gfs.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &Store{client: client}, nil
}

// NewStoreWithClient wraps an existing client.
func NewStoreWithClient(client *gfs.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Ping reads at most one profile document to confirm the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	q := s.client.Collection(usersCollection).Limit(1)
	if err := each(ctx, q, func(*gfs.DocumentSnapshot) error { return nil }); err != nil {
		return fmt.Errorf("ping firestore: %w", err)
	}
	return nil
}

func (s *Store) friendList(ownerID string) *gfs.CollectionRef {
	return s.client.Collection(friendsCollection).Doc(ownerID).Collection(friendsSubList)
}

// CreateEntry adds a document to books. The id is assigned by Firestore.
func (s *Store) CreateEntry(ctx context.Context, entry *entities.ShelfEntry) error {
	ref := s.client.Collection(booksCollection).NewDoc()
	wr, err := ref.Create(ctx, entry)
	if err != nil {
		return fmt.Errorf("create shelf entry: %w", err)
	}
	entry.ID = ref.ID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = wr.UpdateTime
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, id string) (*entities.ShelfEntry, error) {
	doc, err := s.client.Collection(booksCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("shelf entry %s: %w", id, domainerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get shelf entry %s: %w", id, err)
	}
	return decodeEntry(doc)
}

// ListShelf returns the owner's entries on one shelf, oldest first.
func (s *Store) ListShelf(ctx context.Context, ownerID string, shelf entities.Shelf) ([]entities.ShelfEntry, error) {
	q := s.client.Collection(booksCollection).
		Where("uid", "==", ownerID).
		Where("shelf", "==", string(shelf))

	entries := make([]entities.ShelfEntry, 0)
	err := each(ctx, q, func(doc *gfs.DocumentSnapshot) error {
		entry, err := decodeEntry(doc)
		if err != nil {
			return err
		}
		entries = append(entries, *entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list shelf: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

// CountShelf uses a count aggregation so no documents are transferred.
func (s *Store) CountShelf(ctx context.Context, ownerID string, shelf entities.Shelf) (int64, error) {
	q := s.client.Collection(booksCollection).
		Where("uid", "==", ownerID).
		Where("shelf", "==", string(shelf))

	res, err := q.NewAggregationQuery().WithCount("count").Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("count shelf: %w", err)
	}
	v, ok := res["count"].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("count shelf: unexpected aggregation result %T", res["count"])
	}
	return v.GetIntegerValue(), nil
}

func (s *Store) CreateReview(ctx context.Context, review *entities.Review) error {
	ref := s.client.Collection(reviewsCollection).NewDoc()
	wr, err := ref.Create(ctx, review)
	if err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	review.ID = ref.ID
	if review.CreatedAt.IsZero() {
		review.CreatedAt = wr.UpdateTime
	}
	return nil
}

func (s *Store) ReviewsByBook(ctx context.Context, bookID string) ([]entities.Review, error) {
	return s.reviewsWhere(ctx, "bookId", bookID)
}

func (s *Store) ReviewsByAuthor(ctx context.Context, uid string) ([]entities.Review, error) {
	return s.reviewsWhere(ctx, "uid", uid)
}

func (s *Store) reviewsWhere(ctx context.Context, field, value string) ([]entities.Review, error) {
	q := s.client.Collection(reviewsCollection).Where(field, "==", value)

	reviews := make([]entities.Review, 0)
	err := each(ctx, q, func(doc *gfs.DocumentSnapshot) error {
		var r entities.Review
		if err := doc.DataTo(&r); err != nil {
			return fmt.Errorf("decode review %s: %w", doc.Ref.ID, err)
		}
		r.ID = doc.Ref.ID
		reviews = append(reviews, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list reviews by %s: %w", field, err)
	}

	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.Before(reviews[j].CreatedAt)
	})
	return reviews, nil
}

func (s *Store) GetProfile(ctx context.Context, uid string) (*entities.UserProfile, error) {
	doc, err := s.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("profile %s: %w", uid, domainerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", uid, err)
	}

	var p entities.UserProfile
	if err := doc.DataTo(&p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", uid, err)
	}
	p.UID = doc.Ref.ID
	return &p, nil
}

func (s *Store) ListProfiles(ctx context.Context) ([]entities.UserProfile, error) {
	profiles := make([]entities.UserProfile, 0)
	err := each(ctx, s.client.Collection(usersCollection).Query, func(doc *gfs.DocumentSnapshot) error {
		var p entities.UserProfile
		if err := doc.DataTo(&p); err != nil {
			return fmt.Errorf("decode profile %s: %w", doc.Ref.ID, err)
		}
		p.UID = doc.Ref.ID
		profiles = append(profiles, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		if profiles[i].DisplayName != profiles[j].DisplayName {
			return profiles[i].DisplayName < profiles[j].DisplayName
		}
		return profiles[i].UID < profiles[j].UID
	})
	return profiles, nil
}

// UpsertProfile merges the editable fields into users/{uid}.
func (s *Store) UpsertProfile(ctx context.Context, profile *entities.UserProfile) error {
	data := map[string]any{
		"displayName": profile.DisplayName,
		"bio":         profile.Bio,
		"avatar":      profile.Avatar,
	}
	if profile.Email != "" {
		data["email"] = profile.Email
	}

	if _, err := s.client.Collection(usersCollection).Doc(profile.UID).Set(ctx, data, gfs.MergeAll); err != nil {
		return fmt.Errorf("upsert profile %s: %w", profile.UID, err)
	}
	return nil
}

func (s *Store) ListFriendLinks(ctx context.Context, ownerID string) ([]entities.FriendLink, error) {
	links := make([]entities.FriendLink, 0)
	err := each(ctx, s.friendList(ownerID).Query, func(doc *gfs.DocumentSnapshot) error {
		var link entities.FriendLink
		if err := doc.DataTo(&link); err != nil {
			return fmt.Errorf("decode friend link %s: %w", doc.Ref.ID, err)
		}
		link.OwnerID = ownerID
		link.TargetUID = doc.Ref.ID
		links = append(links, link)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list friend links: %w", err)
	}

	sort.Slice(links, func(i, j int) bool { return links[i].TargetUID < links[j].TargetUID })
	return links, nil
}

// ToggleFriendLink reads and writes friends/{owner}/list/{target} in one transaction.
func (s *Store) ToggleFriendLink(ctx context.Context, link entities.FriendLink) (bool, error) {
	ref := s.friendList(link.OwnerID).Doc(link.TargetUID)

	var member bool
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *gfs.Transaction) error {
		_, err := tx.Get(ref)
		switch {
		case err == nil:
			member = false
			return tx.Delete(ref)
		case status.Code(err) == codes.NotFound:
			member = true
			return tx.Create(ref, link)
		default:
			return err
		}
	})
	if err != nil {
		return false, fmt.Errorf("toggle friend link: %w", err)
	}
	return member, nil
}

func decodeEntry(doc *gfs.DocumentSnapshot) (*entities.ShelfEntry, error) {
	var entry entities.ShelfEntry
	if err := doc.DataTo(&entry); err != nil {
		return nil, fmt.Errorf("decode shelf entry %s: %w", doc.Ref.ID, err)
	}
	entry.ID = doc.Ref.ID
	return &entry, nil
}

func each(ctx context.Context, q gfs.Query, fn func(doc *gfs.DocumentSnapshot) error) error {
	it := q.Documents(ctx)
	defer it.Stop()

	for {
		doc, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
}
