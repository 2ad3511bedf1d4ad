package entities

import "time"

// UserProfile is the public profile record of a user, keyed by the identity provider's uid.
type UserProfile struct {
	UID         string    `gorm:"primaryKey;size:128" json:"uid" firestore:"-"`
	DisplayName string    `gorm:"size:100" json:"display_name" firestore:"displayName"`
	Email       string    `gorm:"size:255" json:"email,omitempty" firestore:"email,omitempty"`
	Bio         string    `gorm:"size:500" json:"bio" firestore:"bio"`
	Avatar      string    `gorm:"size:2048" json:"avatar" firestore:"avatar"`
	CreatedAt   time.Time `json:"created_at" firestore:"-"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"-"`
}

func (UserProfile) TableName() string {
	return "users"
}

// Summary returns the listing view of the profile.
func (p UserProfile) Summary() UserSummary {
	return UserSummary{
		UID:         p.UID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Avatar:      p.Avatar,
	}
}

// UserSummary is a user as shown in candidate and friend lists.
type UserSummary struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Avatar      string `json:"avatar"`
}

// FriendLink is the directed relation "OwnerID considers TargetUID a friend".
// Presence of the record is the only truth of membership; DisplayName and
// Avatar are snapshots taken when the link was created.
type FriendLink struct {
	OwnerID     string    `gorm:"primaryKey;size:128" json:"owner_id" firestore:"-"`
	TargetUID   string    `gorm:"primaryKey;size:128" json:"target_uid" firestore:"-"`
	DisplayName string    `gorm:"size:100" json:"display_name" firestore:"displayName"`
	Avatar      string    `gorm:"size:2048" json:"avatar" firestore:"avatar"`
	AddedAt     time.Time `json:"added_at" firestore:"addedAt"`
}

func (FriendLink) TableName() string {
	return "friend_links"
}
