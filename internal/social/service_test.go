package social

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/friends"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/entities"
	domainerrors "github.com/mrlokans/bookshelf/internal/errors"
)

type fakeProfiles struct {
	profiles map[string]entities.UserProfile
	err      error
}

func newFakeProfiles(profiles ...entities.UserProfile) *fakeProfiles {
	f := &fakeProfiles{profiles: make(map[string]entities.UserProfile)}
	for _, p := range profiles {
		f.profiles[p.UID] = p
	}
	return f
}

func (f *fakeProfiles) GetProfile(_ context.Context, uid string) (*entities.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[uid]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", uid, domainerrors.ErrNotFound)
	}
	return &p, nil
}

func (f *fakeProfiles) ListProfiles(_ context.Context) ([]entities.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]entities.UserProfile, 0, len(f.profiles))
	for _, p := range f.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out, nil
}

func (f *fakeProfiles) UpsertProfile(_ context.Context, profile *entities.UserProfile) error {
	if f.err != nil {
		return f.err
	}
	f.profiles[profile.UID] = *profile
	return nil
}

type fakeFriends struct {
	links map[string]map[string]entities.FriendLink
	err   error
}

func newFakeFriends() *fakeFriends {
	return &fakeFriends{links: make(map[string]map[string]entities.FriendLink)}
}

func (f *fakeFriends) ListFriendLinks(_ context.Context, ownerID string) ([]entities.FriendLink, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]entities.FriendLink, 0)
	for _, link := range f.links[ownerID] {
		out = append(out, link)
	}
	return out, nil
}

func (f *fakeFriends) ToggleFriendLink(_ context.Context, link entities.FriendLink) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	owned := f.links[link.OwnerID]
	if owned == nil {
		owned = make(map[string]entities.FriendLink)
		f.links[link.OwnerID] = owned
	}
	if _, ok := owned[link.TargetUID]; ok {
		delete(owned, link.TargetUID)
		return false, nil
	}
	owned[link.TargetUID] = link
	return true, nil
}

func TestService_Toggle_Scenario(t *testing.T) {
	svc := NewService(newFakeProfiles(), newFakeFriends(), nil)
	ctx := context.Background()
	target := entities.UserSummary{UID: "u2", DisplayName: "Bob"}

	member, err := svc.Toggle(ctx, "u1", target)
	require.NoError(t, err)
	assert.True(t, member)

	list, err := svc.ListFriends(ctx, "u1")
	require.NoError(t, err)
	assert.Contains(t, list, "u2")
	assert.Equal(t, "Bob", list["u2"].DisplayName)

	member, err = svc.Toggle(ctx, "u1", target)
	require.NoError(t, err)
	assert.False(t, member)

	list, err = svc.ListFriends(ctx, "u1")
	require.NoError(t, err)
	assert.NotContains(t, list, "u2")
}

func TestService_Toggle_Validation(t *testing.T) {
	friendStore := newFakeFriends()
	svc := NewService(newFakeProfiles(), friendStore, nil)
	ctx := context.Background()

	_, err := svc.Toggle(ctx, "u1", entities.UserSummary{UID: "u1"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = svc.Toggle(ctx, "u1", entities.UserSummary{})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = svc.Toggle(ctx, "", entities.UserSummary{UID: "u2"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	assert.Empty(t, friendStore.links)
}

func TestService_Toggle_PersistenceError(t *testing.T) {
	friendStore := newFakeFriends()
	friendStore.err = errors.New("unavailable")
	svc := NewService(newFakeProfiles(), friendStore, nil)

	_, err := svc.Toggle(context.Background(), "u1", entities.UserSummary{UID: "u2"})

	assert.ErrorIs(t, err, domainerrors.ErrPersistence)
}

func TestService_ToggleByID_SnapshotsProfile(t *testing.T) {
	profiles := newFakeProfiles(entities.UserProfile{UID: "u2", DisplayName: "Bob", Avatar: "https://img/bob.png"})
	svc := NewService(profiles, newFakeFriends(), nil)
	ctx := context.Background()

	member, err := svc.ToggleByID(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.True(t, member)

	list, err := svc.ListFriends(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "https://img/bob.png", list["u2"].Avatar)
	assert.False(t, list["u2"].AddedAt.IsZero())
}

func TestService_ToggleByID_UnknownUser(t *testing.T) {
	svc := NewService(newFakeProfiles(), newFakeFriends(), nil)

	_, err := svc.ToggleByID(context.Background(), "u1", "ghost")

	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestService_ListCandidateUsers_ExcludesCaller(t *testing.T) {
	profiles := newFakeProfiles(
		entities.UserProfile{UID: "u1", DisplayName: "Ann"},
		entities.UserProfile{UID: "u2", DisplayName: "Bob Smith"},
	)
	svc := NewService(profiles, newFakeFriends(), nil)

	users, err := svc.ListCandidateUsers(context.Background(), "u1")

	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u2", users[0].UID)
	assert.Equal(t, "https://ui-avatars.com/api/?name=Bob%20Smith&background=8b5cf6&color=fff&bold=true", users[0].Avatar)
}

func TestAvatarURL(t *testing.T) {
	assert.Equal(t, "https://img/a.png", AvatarURL(entities.UserProfile{Avatar: "https://img/a.png"}))
	assert.Contains(t, AvatarURL(entities.UserProfile{}), "name=User&")
}

func TestService_Profile_FallsBackToIdentity(t *testing.T) {
	svc := NewService(newFakeProfiles(), newFakeFriends(), nil)

	profile, err := svc.Profile(context.Background(), Caller{UID: "u1", Email: "ann@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "u1", profile.UID)
	assert.Equal(t, "ann@example.com", profile.DisplayName)
}

func TestService_SaveProfile(t *testing.T) {
	profiles := newFakeProfiles()
	svc := NewService(profiles, newFakeFriends(), nil)
	ctx := context.Background()
	caller := Caller{UID: "u1", DisplayName: "Ann"}

	saved, err := svc.SaveProfile(ctx, caller, ProfileInput{Bio: " reader ", Avatar: "https://img/ann.png"})
	require.NoError(t, err)
	assert.Equal(t, "Ann", saved.DisplayName)
	assert.Equal(t, "reader", saved.Bio)

	profile, err := svc.PublicProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "https://img/ann.png", profile.Avatar)
}

func TestService_SaveProfile_Validation(t *testing.T) {
	profiles := newFakeProfiles()
	svc := NewService(profiles, newFakeFriends(), nil)

	_, err := svc.SaveProfile(context.Background(), Caller{UID: "u1"}, ProfileInput{Avatar: "not a url"})

	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Empty(t, profiles.profiles)
}

func TestService_SQLite_ToggleAlternates(t *testing.T) {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "social.db"), "silent")
	require.NoError(t, err)
	defer db.Close()

	svc := NewService(users.NewRepository(db.DB), friends.NewRepository(db.DB), nil)
	ctx := context.Background()

	_, err = svc.SaveProfile(ctx, Caller{UID: "u2", DisplayName: "Bob"}, ProfileInput{})
	require.NoError(t, err)

	for i, want := range []bool{true, false, true} {
		member, err := svc.ToggleByID(ctx, "u1", "u2")
		require.NoError(t, err)
		assert.Equal(t, want, member, "toggle %d", i)

		list, err := svc.ListFriends(ctx, "u1")
		require.NoError(t, err)
		_, present := list["u2"]
		assert.Equal(t, want, present, "toggle %d", i)
	}
}
