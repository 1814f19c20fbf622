package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sajag-gupta/riseup/domain"
	"github.com/sajag-gupta/riseup/dto"
	"github.com/sajag-gupta/riseup/logger"
	"github.com/sajag-gupta/riseup/mailer"
	"github.com/sajag-gupta/riseup/repository"
)

// subscriptionPeriod sets the advisory end date of a new subscription.
const subscriptionPeriod = 30 * 24 * time.Hour

type SubscriptionService interface {
	Subscribe(ctx context.Context, caller Caller, req *dto.SubscribeRequest) (*domain.Subscription, error)
	ListMine(ctx context.Context, caller Caller) ([]*domain.Subscription, error)
	ListSubscribers(ctx context.Context, caller Caller, q dto.ListQuery) (*dto.ListResponse[*domain.Subscription], error)
	Cancel(ctx context.Context, caller Caller, id string) (*domain.Subscription, error)
	HasActive(ctx context.Context, fanID, artistID string) (bool, error)
}

type subscriptionService struct {
	subscriptions repository.SubscriptionRepository
	users         repository.UserRepository
	analytics     repository.AnalyticsRepository
	mail          mailer.EmailService
	runner        Runner
}

func NewSubscriptionService(
	subscriptions repository.SubscriptionRepository,
	users repository.UserRepository,
	analytics repository.AnalyticsRepository,
	mail mailer.EmailService,
	runner Runner,
) SubscriptionService {
	if runner == nil {
		runner = NewAsyncRunner()
	}
	return &subscriptionService{
		subscriptions: subscriptions,
		users:         users,
		analytics:     analytics,
		mail:          mail,
		runner:        runner,
	}
}

func (s *subscriptionService) Subscribe(ctx context.Context, caller Caller, req *dto.SubscribeRequest) (*domain.Subscription, error) {
	if caller.Owns(req.ArtistID) {
		return nil, invalid("you cannot subscribe to yourself")
	}
	price, ok := domain.TierPrices[req.Tier]
	if !ok {
		return nil, invalid("unknown tier %q", req.Tier)
	}
	artist, err := s.users.FindByID(ctx, req.ArtistID)
	if artist, err = lookup(artist, err, "artist"); err != nil {
		return nil, err
	}
	if !artist.IsArtist() {
		return nil, notFound("artist")
	}

	existing, err := s.HasActive(ctx, caller.UserID, artist.ID)
	if err != nil {
		return nil, err
	}
	if existing {
		return nil, fmt.Errorf("%w: already subscribed to this artist", ErrConflict)
	}

	now := time.Now()
	sub := &domain.Subscription{
		ID:        newID(),
		FanID:     caller.UserID,
		ArtistID:  artist.ID,
		Tier:      req.Tier,
		Amount:    price,
		Active:    true,
		StartDate: now,
		EndDate:   now.Add(subscriptionPeriod),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.subscriptions.Create(ctx, sub); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: already subscribed to this artist", ErrConflict)
		}
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	if err := s.users.AddSubscription(ctx, caller.UserID, sub.ID); err != nil {
		logger.Warn(logger.EventDBError, "Failed to link subscription to fan", logger.Fields(
			"subscription_id", sub.ID,
			"error", err.Error(),
		))
	}

	record(ctx, s.analytics, domain.AnalyticsEvent{
		UserID:   caller.UserID,
		ArtistID: artist.ID,
		Action:   domain.ActionSubscribe,
		Context:  domain.ContextArtist,
		Metadata: map[string]interface{}{"tier": string(sub.Tier)},
	})
	logger.Info(logger.EventGeneral, "Subscription created", logger.Fields(
		"subscription_id", sub.ID,
		"fan_id", sub.FanID,
		"artist_id", sub.ArtistID,
		"tier", string(sub.Tier),
	))

	if s.mail != nil {
		to, name, artistName := caller.Email, caller.Name, artist.Name
		s.runner.Go("subscription-confirmation", func(ctx context.Context) error {
			return s.mail.SendSubscriptionConfirmation(to, name, artistName, sub)
		})
	}
	return sub, nil
}

func (s *subscriptionService) ListMine(ctx context.Context, caller Caller) ([]*domain.Subscription, error) {
	subs, err := s.subscriptions.ListByFan(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}

func (s *subscriptionService) ListSubscribers(ctx context.Context, caller Caller, q dto.ListQuery) (*dto.ListResponse[*domain.Subscription], error) {
	page := pageOf(q)
	subs, err := s.subscriptions.ListByArtist(ctx, caller.UserID, page)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	total, err := s.subscriptions.CountActiveByArtist(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("count subscribers: %w", err)
	}
	return &dto.ListResponse[*domain.Subscription]{Items: subs, Page: page.Number, Limit: page.Size, Total: total}, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, caller Caller, id string) (*domain.Subscription, error) {
	sub, err := s.subscriptions.FindByID(ctx, id)
	if sub, err = lookup(sub, err, "subscription"); err != nil {
		return nil, err
	}
	if !caller.Owns(sub.FanID) && !caller.IsAdmin() {
		return nil, forbidden("not your subscription")
	}

	err = s.subscriptions.Deactivate(ctx, id)
	if errors.Is(err, repository.ErrNoChange) {
		return nil, fmt.Errorf("%w: subscription is already cancelled", ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("cancel subscription: %w", err)
	}
	if err := s.users.RemoveSubscription(ctx, sub.FanID, sub.ID); err != nil {
		logger.Warn(logger.EventDBError, "Failed to unlink subscription from fan", logger.Fields(
			"subscription_id", sub.ID,
			"error", err.Error(),
		))
	}

	sub.Active = false
	sub.UpdatedAt = time.Now()
	logger.Info(logger.EventGeneral, "Subscription cancelled", logger.Fields(
		"subscription_id", sub.ID,
		"cancelled_by", caller.UserID,
	))
	return sub, nil
}

func (s *subscriptionService) HasActive(ctx context.Context, fanID, artistID string) (bool, error) {
	_, err := s.subscriptions.FindActive(ctx, fanID, artistID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check subscription: %w", err)
	}
	return true, nil
}
