package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sajag-gupta/riseup/domain"
	"github.com/sajag-gupta/riseup/dto"
	"github.com/sajag-gupta/riseup/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserFixture() (UserService, *userRepo, *analyticsRepo) {
	users := newUserRepo(artistUser("a1", "The Risers"), fanUser("f1"), &domain.User{ID: "root", Role: domain.RoleAdmin})
	songs := newSongRepo(&domain.Song{ID: "s1", ArtistID: "a1", Title: "Open Road"})
	analytics := &analyticsRepo{}
	return NewUserService(users, songs, analytics, nil), users, analytics
}

func TestFollowIsIdempotent(t *testing.T) {
	svc, users, analytics := newUserFixture()
	fan := callerOf(users.byID["f1"])
	ctx := context.Background()

	require.NoError(t, svc.Follow(ctx, fan, "a1"))
	require.NoError(t, svc.Follow(ctx, fan, "a1"))

	artist := users.byID["a1"].Artist
	assert.Equal(t, int64(1), artist.FollowerCount)
	assert.Equal(t, []string{"f1"}, artist.Followers)
	assert.Equal(t, []string{"a1"}, users.byID["f1"].Following)
	assert.Equal(t, 1, analytics.count(domain.ActionFollow))

	view, err := svc.GetArtist(ctx, fan, "a1")
	require.NoError(t, err)
	require.NotNil(t, view.Following)
	assert.True(t, *view.Following)

	require.NoError(t, svc.Unfollow(ctx, fan, "a1"))
	require.NoError(t, svc.Unfollow(ctx, fan, "a1"))
	assert.Equal(t, int64(0), artist.FollowerCount)
	assert.Empty(t, users.byID["f1"].Following)
	assert.Equal(t, 1, analytics.count(domain.ActionUnfollow))
}

func TestFollowTargets(t *testing.T) {
	svc, users, _ := newUserFixture()
	ctx := context.Background()

	err := svc.Follow(ctx, callerOf(users.byID["a1"]), "a1")
	assert.True(t, errors.Is(err, ErrInvalidInput))

	err = svc.Follow(ctx, callerOf(users.byID["a1"]), "f1")
	assert.True(t, errors.Is(err, ErrNotFound), "fans cannot be followed")
}

func TestGetArtistAnonymous(t *testing.T) {
	svc, _, _ := newUserFixture()

	view, err := svc.GetArtist(context.Background(), Caller{}, "a1")
	require.NoError(t, err)
	assert.Nil(t, view.Following)
	assert.Equal(t, "The Risers", view.Name)
}

func TestFavoritesAndPlaylists(t *testing.T) {
	svc, _, _ := newUserFixture()
	ctx := context.Background()

	require.NoError(t, svc.AddFavorite(ctx, "f1", "s1"))
	assert.True(t, errors.Is(svc.AddFavorite(ctx, "f1", "missing"), ErrNotFound))

	favs, err := svc.ListFavorites(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, "s1", favs[0].ID)

	p, err := svc.CreatePlaylist(ctx, "f1", "  Road trip ")
	require.NoError(t, err)
	assert.Equal(t, "Road trip", p.Name)

	require.NoError(t, svc.AddSongToPlaylist(ctx, "f1", p.ID, "s1"))
	assert.True(t, errors.Is(svc.AddSongToPlaylist(ctx, "f1", "nope", "s1"), ErrNotFound))

	u, err := svc.GetProfile(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, u.Playlists[0].SongIDs)

	require.NoError(t, svc.RemoveSongFromPlaylist(ctx, "f1", p.ID, "s1"))
	assert.Empty(t, u.Playlists[0].SongIDs)
}

func TestFavoritesForMissingUser(t *testing.T) {
	svc, _, _ := newUserFixture()
	ctx := context.Background()

	err := svc.AddFavorite(ctx, "ghost", "s1")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, repository.ErrNotFound), "repository errors do not leak")

	err = svc.RemoveFavorite(ctx, "ghost", "s1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListArtistsTotalExcludesBanned(t *testing.T) {
	svc, users, _ := newUserFixture()
	users.byID["a2"] = artistUser("a2", "Banned Band")
	users.byID["a2"].Banned = true

	list, err := svc.ListArtists(context.Background(), dto.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "a1", list.Items[0].ID)
}

func TestAdminUpdateUser(t *testing.T) {
	svc, users, _ := newUserFixture()
	admin := callerOf(users.byID["root"])
	ctx := context.Background()

	role := domain.RoleArtist
	banned := true
	u, err := svc.AdminUpdateUser(ctx, admin, "f1", &dto.AdminUpdateUserRequest{Role: &role, Banned: &banned})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleArtist, u.Role)
	assert.NotNil(t, u.Artist)
	assert.True(t, u.Banned)

	_, err = svc.AdminUpdateUser(ctx, admin, "root", &dto.AdminUpdateUserRequest{Banned: &banned})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	list, err := svc.ListArtists(ctx, dto.ListQuery{})
	require.NoError(t, err)
	for _, a := range list.Items {
		assert.NotEqual(t, "f1", a.ID, "banned artists are hidden")
	}
}

func TestVerifyArtist(t *testing.T) {
	svc, users, _ := newUserFixture()
	admin := callerOf(users.byID["root"])

	u, err := svc.VerifyArtist(context.Background(), admin, "a1", true)
	require.NoError(t, err)
	assert.True(t, u.Artist.Verified)

	_, err = svc.VerifyArtist(context.Background(), admin, "f1", true)
	assert.True(t, errors.Is(err, ErrNotFound))
}
