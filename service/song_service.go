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
	"github.com/sajag-gupta/riseup/metrics"
	"github.com/sajag-gupta/riseup/repository"
)

type SongService interface {
	List(ctx context.Context, caller Caller, q dto.ListQuery) (*dto.ListResponse[*domain.Song], error)
	Get(ctx context.Context, caller Caller, id string) (*domain.Song, error)
	Create(ctx context.Context, caller Caller, req *dto.CreateSongRequest, audio, artwork *multipart.FileHeader) (*domain.Song, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdateSongRequest, artwork *multipart.FileHeader) (*domain.Song, error)
	Delete(ctx context.Context, caller Caller, id string) error

	Play(ctx context.Context, caller Caller, id string) (*domain.Song, error)
	Like(ctx context.Context, caller Caller, id string) (*domain.Song, error)
	Unlike(ctx context.Context, caller Caller, id string) (*domain.Song, error)
}

type songService struct {
	songs         repository.SongRepository
	users         repository.UserRepository
	subscriptions repository.SubscriptionRepository
	analytics     repository.AnalyticsRepository
	assets        *assets
}

func NewSongService(
	songs repository.SongRepository,
	users repository.UserRepository,
	subscriptions repository.SubscriptionRepository,
	analytics repository.AnalyticsRepository,
	uploader media.Uploader,
	m *metrics.Metrics,
) SongService {
	return &songService{
		songs:         songs,
		users:         users,
		subscriptions: subscriptions,
		analytics:     analytics,
		assets:        newAssets(uploader, m),
	}
}

func (s *songService) find(ctx context.Context, id string) (*domain.Song, error) {
	song, err := s.songs.FindByID(ctx, id)
	return lookup(song, err, "song")
}

// canStream reports whether caller may hear a song. Subscriber-only songs
// need an active subscription to the artist unless the caller owns the song
// or is an admin.
func (s *songService) canStream(ctx context.Context, caller Caller, song *domain.Song) (bool, error) {
	if song.Visibility != domain.VisibilitySubscribers {
		return true, nil
	}
	if caller.Anonymous() {
		return false, nil
	}
	if caller.IsAdmin() || caller.Owns(song.ArtistID) {
		return true, nil
	}
	_, err := s.subscriptions.FindActive(ctx, caller.UserID, song.ArtistID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check subscription: %w", err)
	}
	return true, nil
}

func (s *songService) List(ctx context.Context, caller Caller, q dto.ListQuery) (*dto.ListResponse[*domain.Song], error) {
	filter := repository.SongFilter{
		ArtistID: q.ArtistID,
		Genre:    q.Genre,
		Query:    q.Q,
		Sort:     repository.SongSort(q.Sort),
	}
	page := pageOf(q)

	songs, err := s.songs.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	total, err := s.songs.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count songs: %w", err)
	}

	// Gated songs stay listed but without a playable URL.
	allowed := map[string]bool{}
	for _, song := range songs {
		if song.Visibility != domain.VisibilitySubscribers {
			continue
		}
		ok, seen := allowed[song.ArtistID]
		if !seen {
			if ok, err = s.canStream(ctx, caller, song); err != nil {
				return nil, err
			}
			allowed[song.ArtistID] = ok
		}
		if !ok {
			song.FileURL = ""
		}
	}

	return &dto.ListResponse[*domain.Song]{Items: songs, Page: page.Number, Limit: page.Size, Total: total}, nil
}

func (s *songService) Get(ctx context.Context, caller Caller, id string) (*domain.Song, error) {
	song, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.canStream(ctx, caller, song)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, forbidden("this song is for subscribers only")
	}
	return song, nil
}

func (s *songService) artistName(ctx context.Context, caller Caller) (string, error) {
	u, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", forbidden("artist account not found")
		}
		return "", fmt.Errorf("find artist: %w", err)
	}
	if !u.IsArtist() {
		return "", forbidden("only artists can upload songs")
	}
	return u.Name, nil
}

func (s *songService) Create(ctx context.Context, caller Caller, req *dto.CreateSongRequest, audio, artwork *multipart.FileHeader) (*domain.Song, error) {
	if audio == nil {
		return nil, invalid("audio file is required")
	}
	name, err := s.artistName(ctx, caller)
	if err != nil {
		return nil, err
	}

	batch := s.assets.batch()
	file, err := batch.put(ctx, audio, folderAudio, media.KindAudio)
	if err != nil {
		return nil, err
	}
	art, err := batch.put(ctx, artwork, folderArtwork, media.KindImage)
	if err != nil {
		batch.rollback(ctx)
		return nil, err
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = domain.VisibilityPublic
	}
	now := time.Now()
	song := &domain.Song{
		ID:              newID(),
		ArtistID:        caller.UserID,
		ArtistName:      name,
		Title:           strings.TrimSpace(req.Title),
		Genre:           strings.TrimSpace(req.Genre),
		Duration:        req.Duration,
		FileURL:         file.URL,
		FilePublicID:    file.PublicID,
		ArtworkURL:      art.URL,
		ArtworkPublicID: art.PublicID,
		Visibility:      visibility,
		LikedBy:         []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.songs.Create(ctx, song); err != nil {
		batch.rollback(ctx)
		return nil, fmt.Errorf("create song: %w", err)
	}

	logger.Info(logger.EventContentChange, "Song uploaded", logger.Fields(
		"song_id", song.ID,
		"artist_id", song.ArtistID,
	))
	return song, nil
}

// owned fetches a song the caller may modify. Admins may modify any song.
func (s *songService) owned(ctx context.Context, caller Caller, id string) (*domain.Song, error) {
	song, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(song.ArtistID) && !caller.IsAdmin() {
		logger.Security(logger.EventAccessDenied, "Song modification by non-owner", logger.Fields(
			"song_id", id,
			"user_id", caller.UserID,
		))
		return nil, forbidden("you do not own this song")
	}
	return song, nil
}

func (s *songService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdateSongRequest, artwork *multipart.FileHeader) (*domain.Song, error) {
	song, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Genre != nil {
		updates["genre"] = strings.TrimSpace(*req.Genre)
	}
	if req.Duration != nil {
		updates["duration"] = *req.Duration
	}
	if req.Visibility != nil {
		updates["visibility"] = *req.Visibility
	}

	batch := s.assets.batch()
	if artwork != nil {
		art, err := batch.put(ctx, artwork, folderArtwork, media.KindImage)
		if err != nil {
			return nil, err
		}
		updates["artwork_url"] = art.URL
		updates["artwork_public_id"] = art.PublicID
	}

	if err := s.songs.Update(ctx, id, updates); err != nil {
		batch.rollback(ctx)
		return nil, fmt.Errorf("update song: %w", err)
	}
	if artwork != nil {
		s.assets.destroy(ctx, song.ArtworkPublicID, media.KindImage)
	}

	logger.Info(logger.EventContentChange, "Song updated", logger.Fields("song_id", id))
	return s.find(ctx, id)
}

func (s *songService) Delete(ctx context.Context, caller Caller, id string) error {
	song, err := s.owned(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.songs.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("song")
		}
		return fmt.Errorf("delete song: %w", err)
	}
	s.assets.destroy(ctx, song.FilePublicID, media.KindAudio)
	s.assets.destroy(ctx, song.ArtworkPublicID, media.KindImage)

	event := logger.EventContentChange
	if caller.IsAdmin() && !caller.Owns(song.ArtistID) {
		event = logger.EventAdminActivity
	}
	logger.Info(event, "Song deleted", logger.Fields(
		"song_id", id,
		"deleted_by", caller.UserID,
	))
	return nil
}

func (s *songService) Play(ctx context.Context, caller Caller, id string) (*domain.Song, error) {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return nil, err
	}
	song, err := s.songs.IncrementPlays(ctx, id)
	if err != nil {
		return lookup(song, err, "song")
	}
	if err := s.users.IncrementArtistStats(ctx, song.ArtistID, 1, 0); err != nil {
		logger.Warn(logger.EventDBError, "Failed to bump artist plays", logger.Fields(
			"artist_id", song.ArtistID,
			"error", err.Error(),
		))
	}

	record(ctx, s.analytics, domain.AnalyticsEvent{
		UserID:   caller.UserID,
		ArtistID: song.ArtistID,
		SongID:   song.ID,
		Action:   domain.ActionPlay,
		Context:  domain.ContextSong,
	})
	return song, nil
}

func (s *songService) Like(ctx context.Context, caller Caller, id string) (*domain.Song, error) {
	song, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.songs.Like(ctx, id, caller.UserID)
	if errors.Is(err, repository.ErrNoChange) {
		return song, nil
	}
	if err != nil {
		return nil, fmt.Errorf("like song: %w", err)
	}
	record(ctx, s.analytics, domain.AnalyticsEvent{
		UserID:   caller.UserID,
		ArtistID: song.ArtistID,
		SongID:   id,
		Action:   domain.ActionLike,
		Context:  domain.ContextSong,
	})
	return s.find(ctx, id)
}

func (s *songService) Unlike(ctx context.Context, caller Caller, id string) (*domain.Song, error) {
	song, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.songs.Unlike(ctx, id, caller.UserID)
	if errors.Is(err, repository.ErrNoChange) {
		return song, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unlike song: %w", err)
	}
	record(ctx, s.analytics, domain.AnalyticsEvent{
		UserID:   caller.UserID,
		ArtistID: song.ArtistID,
		SongID:   id,
		Action:   domain.ActionUnlike,
		Context:  domain.ContextSong,
	})
	return s.find(ctx, id)
}
