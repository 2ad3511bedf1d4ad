// Package social implements the friend graph (a directed, per-owner list of
// followed users) and the public user profiles it is built on.
package social

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/mrlokans/bookshelf/internal/entities"
	domainerrors "github.com/mrlokans/bookshelf/internal/errors"
	"github.com/mrlokans/bookshelf/internal/logger"
	"github.com/mrlokans/bookshelf/internal/validation"
)

// ProfileStore is the persistence of the users collection.
type ProfileStore interface {
	GetProfile(ctx context.Context, uid string) (*entities.UserProfile, error)
	ListProfiles(ctx context.Context) ([]entities.UserProfile, error)
	UpsertProfile(ctx context.Context, profile *entities.UserProfile) error
}

// FriendStore is the persistence of the friend relation.
// ToggleFriendLink must check and write atomically where the backend allows it.
type FriendStore interface {
	ListFriendLinks(ctx context.Context, ownerID string) ([]entities.FriendLink, error)
	ToggleFriendLink(ctx context.Context, link entities.FriendLink) (bool, error)
}

// Caller is the authenticated user as described by the identity provider.
type Caller struct {
	UID         string
	DisplayName string
	Email       string
}

// ProfileInput holds the editable profile fields.
type ProfileInput struct {
	DisplayName string `json:"display_name" validate:"max=100"`
	Bio         string `json:"bio" validate:"max=500"`
	Avatar      string `json:"avatar" validate:"omitempty,url"`
}

// Service is the friend graph and profile service.
type Service struct {
	profiles  ProfileStore
	friends   FriendStore
	validator *validation.Validator
	log       *logger.Logger
	now       func() time.Time
}

// NewService creates the social service.
func NewService(profiles ProfileStore, friends FriendStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		profiles:  profiles,
		friends:   friends,
		validator: validation.New(),
		log:       log.With("service", "social"),
		now:       time.Now,
	}
}

// AvatarURL returns the stored avatar or a generated initials image.
func AvatarURL(profile entities.UserProfile) string {
	if profile.Avatar != "" {
		return profile.Avatar
	}
	name := profile.DisplayName
	if name == "" {
		name = "User"
	}
	escaped := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return "https://ui-avatars.com/api/?name=" + escaped + "&background=8b5cf6&color=fff&bold=true"
}

// ListCandidateUsers returns every known user except excludeUID.
func (s *Service) ListCandidateUsers(ctx context.Context, excludeUID string) ([]entities.UserSummary, error) {
	profiles, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, s.fail(ctx, "failed to list users", err)
	}

	users := make([]entities.UserSummary, 0, len(profiles))
	for _, p := range profiles {
		if p.UID == excludeUID {
			continue
		}
		summary := p.Summary()
		summary.Avatar = AvatarURL(p)
		users = append(users, summary)
	}
	return users, nil
}

// ListFriends returns the owner's friend links keyed by target uid.
func (s *Service) ListFriends(ctx context.Context, ownerID string) (map[string]entities.FriendLink, error) {
	if ownerID == "" {
		return nil, domainerrors.Validation("owner is required")
	}

	links, err := s.friends.ListFriendLinks(ctx, ownerID)
	if err != nil {
		return nil, s.fail(ctx, "failed to list friends", err, "owner", ownerID)
	}

	friends := make(map[string]entities.FriendLink, len(links))
	for _, link := range links {
		friends[link.TargetUID] = link
	}
	return friends, nil
}

// Toggle inverts the owner's membership of target and returns the new state.
// A new link snapshots the target's display name and avatar.
func (s *Service) Toggle(ctx context.Context, ownerID string, target entities.UserSummary) (bool, error) {
	switch {
	case ownerID == "":
		return false, domainerrors.Validation("owner is required")
	case target.UID == "":
		return false, domainerrors.Validation("target user is required")
	case target.UID == ownerID:
		return false, domainerrors.Validation("cannot add yourself as a friend")
	}

	member, err := s.friends.ToggleFriendLink(ctx, entities.FriendLink{
		OwnerID:     ownerID,
		TargetUID:   target.UID,
		DisplayName: target.DisplayName,
		Avatar:      target.Avatar,
		AddedAt:     s.now(),
	})
	if err != nil {
		return false, s.fail(ctx, "failed to toggle friend", err, "owner", ownerID, "target", target.UID)
	}

	s.log.Info("friend toggled", "owner", ownerID, "target", target.UID, "member", member)
	return member, nil
}

// ToggleByID loads the target's profile and toggles it.
func (s *Service) ToggleByID(ctx context.Context, ownerID, targetUID string) (bool, error) {
	if targetUID == ownerID {
		return false, domainerrors.Validation("cannot add yourself as a friend")
	}

	profile, err := s.PublicProfile(ctx, targetUID)
	if err != nil {
		return false, err
	}
	return s.Toggle(ctx, ownerID, profile.Summary())
}

// PublicProfile returns the stored profile of uid, or a NotFound error.
func (s *Service) PublicProfile(ctx context.Context, uid string) (*entities.UserProfile, error) {
	if uid == "" {
		return nil, domainerrors.Validation("user id is required")
	}

	profile, err := s.profiles.GetProfile(ctx, uid)
	if domainerrors.Is(err, domainerrors.ErrNotFound) {
		return nil, domainerrors.NotFoundf("user %s has no profile", uid)
	}
	if err != nil {
		return nil, s.fail(ctx, "failed to load profile", err, "uid", uid)
	}
	return profile, nil
}

// Profile returns the caller's stored profile, or one derived from the identity
// when nothing has been saved yet.
func (s *Service) Profile(ctx context.Context, caller Caller) (*entities.UserProfile, error) {
	profile, err := s.PublicProfile(ctx, caller.UID)
	if domainerrors.Is(err, domainerrors.ErrNotFound) {
		return &entities.UserProfile{
			UID:         caller.UID,
			DisplayName: fallbackName(caller),
			Email:       caller.Email,
		}, nil
	}
	return profile, err
}

// SaveProfile validates and stores the caller's profile. An empty display name
// falls back to the identity's name or email.
func (s *Service) SaveProfile(ctx context.Context, caller Caller, in ProfileInput) (*entities.UserProfile, error) {
	if caller.UID == "" {
		return nil, domainerrors.Validation("user id is required")
	}
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Bio = strings.TrimSpace(in.Bio)
	in.Avatar = strings.TrimSpace(in.Avatar)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	if in.DisplayName == "" {
		in.DisplayName = fallbackName(caller)
	}

	now := s.now()
	profile := &entities.UserProfile{
		UID:         caller.UID,
		DisplayName: in.DisplayName,
		Email:       caller.Email,
		Bio:         in.Bio,
		Avatar:      in.Avatar,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
		return nil, s.fail(ctx, "failed to save profile", err, "uid", caller.UID)
	}
	return profile, nil
}

func fallbackName(caller Caller) string {
	if caller.DisplayName != "" {
		return caller.DisplayName
	}
	return caller.Email
}

func (s *Service) fail(ctx context.Context, msg string, err error, keysAndValues ...any) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	s.log.Error(msg, append(keysAndValues, "error", err)...)
	return domainerrors.Persistence(msg, err)
}
