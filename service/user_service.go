package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/sajag-gupta/riseup/domain"
	"github.com/sajag-gupta/riseup/dto"
	"github.com/sajag-gupta/riseup/logger"
	"github.com/sajag-gupta/riseup/media"
	"github.com/sajag-gupta/riseup/repository"
)

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest, avatar *multipart.FileHeader) (*domain.User, error)

	Follow(ctx context.Context, caller Caller, artistID string) error
	Unfollow(ctx context.Context, caller Caller, artistID string) error

	ListFavorites(ctx context.Context, userID string) ([]*domain.Song, error)
	AddFavorite(ctx context.Context, userID, songID string) error
	RemoveFavorite(ctx context.Context, userID, songID string) error

	CreatePlaylist(ctx context.Context, userID, name string) (*domain.Playlist, error)
	AddSongToPlaylist(ctx context.Context, userID, playlistID, songID string) error
	RemoveSongFromPlaylist(ctx context.Context, userID, playlistID, songID string) error

	ListArtists(ctx context.Context, q dto.ListQuery) (*dto.ListResponse[dto.PublicArtist], error)
	GetArtist(ctx context.Context, caller Caller, artistID string) (*dto.PublicArtist, error)
	UpdateArtistProfile(ctx context.Context, caller Caller, req *dto.UpdateArtistProfileRequest) (*domain.User, error)

	ListUsers(ctx context.Context, q dto.ListQuery) (*dto.ListResponse[*domain.User], error)
	AdminUpdateUser(ctx context.Context, admin Caller, userID string, req *dto.AdminUpdateUserRequest) (*domain.User, error)
	VerifyArtist(ctx context.Context, admin Caller, artistID string, verified bool) (*domain.User, error)
}

type userService struct {
	users     repository.UserRepository
	songs     repository.SongRepository
	analytics repository.AnalyticsRepository
	assets    *assets
}

func NewUserService(users repository.UserRepository, songs repository.SongRepository, analytics repository.AnalyticsRepository, uploader media.Uploader) UserService {
	return &userService{
		users:     users,
		songs:     songs,
		analytics: analytics,
		assets:    newAssets(uploader, nil),
	}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	return lookup(u, err, "user")
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest, avatar *multipart.FileHeader) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}

	batch := s.assets.batch()
	if avatar != nil {
		asset, err := batch.put(ctx, avatar, folderAvatars, media.KindImage)
		if err != nil {
			return nil, err
		}
		updates["avatar"] = asset.URL
	}

	if err := s.users.Update(ctx, userID, updates); err != nil {
		batch.rollback(ctx)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("user")
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.GetProfile(ctx, userID)
}

func (s *userService) findArtist(ctx context.Context, artistID string) (*domain.User, error) {
	found, err := s.users.FindByID(ctx, artistID)
	u, err := lookup(found, err, "artist")
	if err != nil {
		return nil, err
	}
	if !u.IsArtist() {
		return nil, notFound("artist")
	}
	return u, nil
}

// Follow is idempotent: following an artist twice leaves one follower entry
// and one count.
func (s *userService) Follow(ctx context.Context, caller Caller, artistID string) error {
	if caller.UserID == artistID {
		return invalid("you cannot follow yourself")
	}
	if _, err := s.findArtist(ctx, artistID); err != nil {
		return err
	}

	err := s.users.AddFollower(ctx, artistID, caller.UserID)
	if errors.Is(err, repository.ErrNoChange) {
		return s.users.AddFollowing(ctx, caller.UserID, artistID)
	}
	if err != nil {
		return fmt.Errorf("follow: %w", err)
	}
	if err := s.users.AddFollowing(ctx, caller.UserID, artistID); err != nil {
		return fmt.Errorf("follow: %w", err)
	}

	record(ctx, s.analytics, domain.AnalyticsEvent{
		UserID:   caller.UserID,
		ArtistID: artistID,
		Action:   domain.ActionFollow,
		Context:  domain.ContextArtist,
	})
	return nil
}

func (s *userService) Unfollow(ctx context.Context, caller Caller, artistID string) error {
	if _, err := s.findArtist(ctx, artistID); err != nil {
		return err
	}

	err := s.users.RemoveFollower(ctx, artistID, caller.UserID)
	changed := err == nil
	if err != nil && !errors.Is(err, repository.ErrNoChange) {
		return fmt.Errorf("unfollow: %w", err)
	}
	if err := s.users.RemoveFollowing(ctx, caller.UserID, artistID); err != nil {
		return fmt.Errorf("unfollow: %w", err)
	}

	if changed {
		record(ctx, s.analytics, domain.AnalyticsEvent{
			UserID:   caller.UserID,
			ArtistID: artistID,
			Action:   domain.ActionUnfollow,
			Context:  domain.ContextArtist,
		})
	}
	return nil
}

func (s *userService) ListFavorites(ctx context.Context, userID string) ([]*domain.Song, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(u.Favorites) == 0 {
		return []*domain.Song{}, nil
	}
	page := repository.Page{Number: 1, Size: repository.MaxPageSize}
	return s.songs.List(ctx, repository.SongFilter{IDs: u.Favorites}, page)
}

func (s *userService) AddFavorite(ctx context.Context, userID, songID string) error {
	if err := s.songExists(ctx, songID); err != nil {
		return err
	}
	return userUpdate(s.users.AddFavorite(ctx, userID, songID), "add favorite")
}

// userUpdate maps a membership write on a missing user to ErrNotFound.
func userUpdate(err error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("user")
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *userService) songExists(ctx context.Context, songID string) error {
	song, err := s.songs.FindByID(ctx, songID)
	_, err = lookup(song, err, "song")
	return err
}

func (s *userService) RemoveFavorite(ctx context.Context, userID, songID string) error {
	return userUpdate(s.users.RemoveFavorite(ctx, userID, songID), "remove favorite")
}

func (s *userService) CreatePlaylist(ctx context.Context, userID, name string) (*domain.Playlist, error) {
	p := domain.Playlist{
		ID:        newID(),
		Name:      strings.TrimSpace(name),
		SongIDs:   []string{},
		CreatedAt: time.Now(),
	}
	if p.Name == "" {
		return nil, invalid("playlist name is required")
	}
	if err := s.users.AddPlaylist(ctx, userID, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("user")
		}
		return nil, fmt.Errorf("create playlist: %w", err)
	}
	return &p, nil
}

func (s *userService) AddSongToPlaylist(ctx context.Context, userID, playlistID, songID string) error {
	if err := s.songExists(ctx, songID); err != nil {
		return err
	}
	err := s.users.AddSongToPlaylist(ctx, userID, playlistID, songID)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("playlist")
	}
	return err
}

func (s *userService) RemoveSongFromPlaylist(ctx context.Context, userID, playlistID, songID string) error {
	err := s.users.RemoveSongFromPlaylist(ctx, userID, playlistID, songID)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("playlist")
	}
	return err
}

func pageOf(q dto.ListQuery) repository.Page {
	p := repository.Page{Number: q.Page, Size: q.Limit}
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = repository.DefaultPageSize
	}
	if p.Size > repository.MaxPageSize {
		p.Size = repository.MaxPageSize
	}
	return p
}

func (s *userService) ListArtists(ctx context.Context, q dto.ListQuery) (*dto.ListResponse[dto.PublicArtist], error) {
	filter := repository.UserFilter{Role: domain.RoleArtist, Query: q.Q, Genre: q.Genre, HideBanned: true}
	page := pageOf(q)

	artists, err := s.users.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list artists: %w", err)
	}
	total, err := s.users.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count artists: %w", err)
	}

	items := make([]dto.PublicArtist, 0, len(artists))
	for _, a := range artists {
		items = append(items, dto.NewPublicArtist(a))
	}
	return &dto.ListResponse[dto.PublicArtist]{Items: items, Page: page.Number, Limit: page.Size, Total: total}, nil
}

func (s *userService) GetArtist(ctx context.Context, caller Caller, artistID string) (*dto.PublicArtist, error) {
	a, err := s.findArtist(ctx, artistID)
	if err != nil {
		return nil, err
	}
	out := dto.NewPublicArtist(a)
	if !caller.Anonymous() {
		following := false
		for _, id := range a.Artist.Followers {
			if id == caller.UserID {
				following = true
				break
			}
		}
		out.Following = &following
	}
	return &out, nil
}

func (s *userService) UpdateArtistProfile(ctx context.Context, caller Caller, req *dto.UpdateArtistProfileRequest) (*domain.User, error) {
	u, err := s.findArtist(ctx, caller.UserID)
	if err != nil {
		return nil, forbidden("only artists have an artist profile")
	}

	updates := map[string]interface{}{}
	if req.Bio != nil {
		updates["artist.bio"] = strings.TrimSpace(*req.Bio)
	}
	if req.Genres != nil {
		updates["artist.genres"] = req.Genres
	}
	if req.SocialLinks != nil {
		updates["artist.social_links"] = *req.SocialLinks
	}
	if err := s.users.Update(ctx, u.ID, updates); err != nil {
		return nil, fmt.Errorf("update artist profile: %w", err)
	}

	logger.Info(logger.EventContentChange, "Artist profile updated", logger.Fields("artist_id", u.ID))
	return s.GetProfile(ctx, u.ID)
}

func (s *userService) ListUsers(ctx context.Context, q dto.ListQuery) (*dto.ListResponse[*domain.User], error) {
	filter := repository.UserFilter{Role: domain.Role(q.Role), Query: q.Q}
	page := pageOf(q)

	users, err := s.users.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	total, err := s.users.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	return &dto.ListResponse[*domain.User]{Items: users, Page: page.Number, Limit: page.Size, Total: total}, nil
}

func (s *userService) AdminUpdateUser(ctx context.Context, admin Caller, userID string, req *dto.AdminUpdateUserRequest) (*domain.User, error) {
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return nil, err
	}
	if admin.UserID == userID {
		return nil, invalid("admins cannot change their own role or ban status")
	}

	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, invalid("unknown role %q", *req.Role)
		}
		if err := s.users.SetRole(ctx, userID, *req.Role); err != nil {
			return nil, fmt.Errorf("set role: %w", err)
		}
	}
	if req.Banned != nil {
		if err := s.users.SetBanned(ctx, userID, *req.Banned); err != nil {
			return nil, fmt.Errorf("set banned: %w", err)
		}
	}

	logger.Security(logger.EventAdminActivity, "User updated by admin", logger.Fields(
		"admin_id", admin.UserID,
		"user_id", userID,
		"role", req.Role,
		"banned", req.Banned,
	))
	return s.GetProfile(ctx, userID)
}

func (s *userService) VerifyArtist(ctx context.Context, admin Caller, artistID string, verified bool) (*domain.User, error) {
	if _, err := s.findArtist(ctx, artistID); err != nil {
		return nil, err
	}
	if err := s.users.SetVerified(ctx, artistID, verified); err != nil {
		return nil, fmt.Errorf("verify artist: %w", err)
	}
	logger.Security(logger.EventAdminActivity, "Artist verification changed", logger.Fields(
		"admin_id", admin.UserID,
		"artist_id", artistID,
		"verified", verified,
	))
	return s.GetProfile(ctx, artistID)
}
