package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sajag-gupta/riseup/domain"
	"github.com/sajag-gupta/riseup/dto"
	"github.com/sajag-gupta/riseup/repository"
)

const (
	summaryWindow = 30 * 24 * time.Hour
	topSongCount  = 5
)

type AnalyticsService interface {
	// Track appends an interaction. Play events go through the song play
	// path, which applies the subscriber gate and bumps the counters.
	Track(ctx context.Context, caller Caller, req *dto.TrackEventRequest) error
	ArtistSummary(ctx context.Context, caller Caller) (*dto.ArtistDashboard, error)
	PlatformStats(ctx context.Context) (*dto.PlatformStats, error)
}

// PlayRecorder counts a play for a caller allowed to stream the song.
type PlayRecorder interface {
	Play(ctx context.Context, caller Caller, id string) (*domain.Song, error)
}

type AnalyticsDeps struct {
	Plays         PlayRecorder
	Analytics     repository.AnalyticsRepository
	Users         repository.UserRepository
	Songs         repository.SongRepository
	Events        repository.EventRepository
	Merch         repository.MerchRepository
	Orders        repository.OrderRepository
	Subscriptions repository.SubscriptionRepository
}

type analyticsService struct {
	AnalyticsDeps
	now func() time.Time
}

func NewAnalyticsService(deps AnalyticsDeps) AnalyticsService {
	return &analyticsService{AnalyticsDeps: deps, now: time.Now}
}

func (s *analyticsService) Track(ctx context.Context, caller Caller, req *dto.TrackEventRequest) error {
	if req.Action == domain.ActionPlay && req.SongID != "" {
		if s.Plays == nil {
			return fmt.Errorf("%w: play counting is not configured", ErrUnavailable)
		}
		_, err := s.Plays.Play(ctx, caller, req.SongID)
		return err
	}

	event := domain.AnalyticsEvent{
		ID:        newID(),
		UserID:    caller.UserID,
		ArtistID:  req.ArtistID,
		SongID:    req.SongID,
		Action:    req.Action,
		Context:   req.Context,
		Metadata:  req.Metadata,
		CreatedAt: s.now(),
	}
	if err := s.Analytics.Insert(ctx, &event); err != nil {
		return fmt.Errorf("record analytics event: %w", err)
	}
	return nil
}

func (s *analyticsService) ArtistSummary(ctx context.Context, caller Caller) (*dto.ArtistDashboard, error) {
	artist, err := s.Users.FindByID(ctx, caller.UserID)
	if artist, err = lookup(artist, err, "artist"); err != nil {
		return nil, err
	}
	if !artist.IsArtist() {
		return nil, forbidden("dashboard is only available to artists")
	}

	songCount, err := s.Songs.CountByArtist(ctx, artist.ID)
	if err != nil {
		return nil, fmt.Errorf("count songs: %w", err)
	}
	plays, err := s.Songs.SumPlaysByArtist(ctx, artist.ID)
	if err != nil {
		return nil, fmt.Errorf("sum plays: %w", err)
	}
	subscribers, err := s.Subscriptions.CountActiveByArtist(ctx, artist.ID)
	if err != nil {
		return nil, fmt.Errorf("count subscribers: %w", err)
	}
	actions, err := s.Analytics.CountByAction(ctx, artist.ID, s.now().Add(-summaryWindow))
	if err != nil {
		return nil, fmt.Errorf("count actions: %w", err)
	}
	top, err := s.Songs.List(ctx,
		repository.SongFilter{ArtistID: artist.ID, Sort: repository.SongSortPopular},
		repository.Page{Number: 1, Size: topSongCount},
	)
	if err != nil {
		return nil, fmt.Errorf("top songs: %w", err)
	}

	return &dto.ArtistDashboard{
		Artist:      dto.NewPublicArtist(artist),
		SongCount:   songCount,
		TotalPlays:  plays,
		Followers:   artist.Artist.FollowerCount,
		Subscribers: subscribers,
		Revenue:     artist.Artist.TotalRevenue,
		Actions:     actions,
		TopSongs:    top,
	}, nil
}

func (s *analyticsService) PlatformStats(ctx context.Context) (*dto.PlatformStats, error) {
	var (
		stats dto.PlatformStats
		err   error
	)
	counts := []struct {
		name string
		dst  *int64
		fn   func() (int64, error)
	}{
		{"users", &stats.Users, func() (int64, error) { return s.Users.Count(ctx, repository.UserFilter{}) }},
		{"artists", &stats.Artists, func() (int64, error) {
			return s.Users.Count(ctx, repository.UserFilter{Role: domain.RoleArtist})
		}},
		{"fans", &stats.Fans, func() (int64, error) { return s.Users.Count(ctx, repository.UserFilter{Role: domain.RoleFan}) }},
		{"songs", &stats.Songs, func() (int64, error) { return s.Songs.Count(ctx, repository.SongFilter{}) }},
		{"events", &stats.Events, func() (int64, error) { return s.Events.Count(ctx, repository.EventFilter{}) }},
		{"merch", &stats.Merch, func() (int64, error) { return s.Merch.Count(ctx, repository.MerchFilter{}) }},
		{"orders", &stats.Orders, func() (int64, error) { return s.Orders.Count(ctx, repository.OrderFilter{}) }},
		{"paid orders", &stats.PaidOrders, func() (int64, error) {
			return s.Orders.Count(ctx, repository.OrderFilter{Status: domain.OrderStatusPaid})
		}},
	}
	for _, c := range counts {
		if *c.dst, err = c.fn(); err != nil {
			return nil, fmt.Errorf("count %s: %w", c.name, err)
		}
	}

	if stats.Revenue, err = s.Orders.SumPaidRevenue(ctx); err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	if stats.Actions, err = s.Analytics.CountByAction(ctx, "", s.now().Add(-summaryWindow)); err != nil {
		return nil, fmt.Errorf("count actions: %w", err)
	}
	return &stats, nil
}
