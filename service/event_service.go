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

type EventService interface {
	List(ctx context.Context, q dto.ListQuery) (*dto.ListResponse[*domain.Event], error)
	Get(ctx context.Context, id string) (*domain.Event, error)
	Create(ctx context.Context, caller Caller, req *dto.CreateEventRequest, image *multipart.FileHeader) (*domain.Event, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdateEventRequest, image *multipart.FileHeader) (*domain.Event, error)
	Delete(ctx context.Context, caller Caller, id string) error
}

type eventService struct {
	events repository.EventRepository
	users  repository.UserRepository
	assets *assets
}

func NewEventService(events repository.EventRepository, users repository.UserRepository, uploader media.Uploader, m *metrics.Metrics) EventService {
	return &eventService{events: events, users: users, assets: newAssets(uploader, m)}
}

func parseEventDate(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, invalid("date must be RFC3339")
	}
	if !t.After(time.Now()) {
		return time.Time{}, invalid("date must be in the future")
	}
	return t.UTC(), nil
}

func (s *eventService) find(ctx context.Context, id string) (*domain.Event, error) {
	e, err := s.events.FindByID(ctx, id)
	return lookup(e, err, "event")
}

func (s *eventService) List(ctx context.Context, q dto.ListQuery) (*dto.ListResponse[*domain.Event], error) {
	filter := repository.EventFilter{ArtistID: q.ArtistID, City: q.City, Query: q.Q, Upcoming: q.Upcoming}
	page := pageOf(q)

	events, err := s.events.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	total, err := s.events.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	return &dto.ListResponse[*domain.Event]{Items: events, Page: page.Number, Limit: page.Size, Total: total}, nil
}

func (s *eventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	return s.find(ctx, id)
}

func (s *eventService) Create(ctx context.Context, caller Caller, req *dto.CreateEventRequest, image *multipart.FileHeader) (*domain.Event, error) {
	artist, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil || !artist.IsArtist() {
		return nil, forbidden("only artists can create events")
	}
	date, err := parseEventDate(req.Date)
	if err != nil {
		return nil, err
	}

	batch := s.assets.batch()
	img, err := batch.put(ctx, image, folderEvents, media.KindImage)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	event := &domain.Event{
		ID:            newID(),
		ArtistID:      artist.ID,
		ArtistName:    artist.Name,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		Venue:         strings.TrimSpace(req.Venue),
		City:          strings.TrimSpace(req.City),
		Date:          date,
		TicketPrice:   req.TicketPrice,
		Capacity:      req.Capacity,
		Attendees:     []string{},
		ImageURL:      img.URL,
		ImagePublicID: img.PublicID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.events.Create(ctx, event); err != nil {
		batch.rollback(ctx)
		return nil, fmt.Errorf("create event: %w", err)
	}

	logger.Info(logger.EventContentChange, "Event created", logger.Fields(
		"event_id", event.ID,
		"artist_id", event.ArtistID,
	))
	return event, nil
}

func (s *eventService) owned(ctx context.Context, caller Caller, id string) (*domain.Event, error) {
	event, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(event.ArtistID) && !caller.IsAdmin() {
		logger.Security(logger.EventAccessDenied, "Event modification by non-owner", logger.Fields(
			"event_id", id,
			"user_id", caller.UserID,
		))
		return nil, forbidden("you do not own this event")
	}
	return event, nil
}

func (s *eventService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdateEventRequest, image *multipart.FileHeader) (*domain.Event, error) {
	event, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Venue != nil {
		updates["venue"] = strings.TrimSpace(*req.Venue)
	}
	if req.City != nil {
		updates["city"] = strings.TrimSpace(*req.City)
	}
	if req.Date != nil {
		date, err := parseEventDate(*req.Date)
		if err != nil {
			return nil, err
		}
		updates["date"] = date
	}
	if req.TicketPrice != nil {
		updates["ticket_price"] = *req.TicketPrice
	}
	if req.Capacity != nil {
		if *req.Capacity < event.TicketsSold {
			return nil, invalid("capacity cannot be below the %d tickets already sold", event.TicketsSold)
		}
		updates["capacity"] = *req.Capacity
	}

	batch := s.assets.batch()
	if image != nil {
		img, err := batch.put(ctx, image, folderEvents, media.KindImage)
		if err != nil {
			return nil, err
		}
		updates["image_url"] = img.URL
		updates["image_public_id"] = img.PublicID
	}

	if err := s.events.Update(ctx, id, updates); err != nil {
		batch.rollback(ctx)
		return nil, fmt.Errorf("update event: %w", err)
	}
	if image != nil {
		s.assets.destroy(ctx, event.ImagePublicID, media.KindImage)
	}

	logger.Info(logger.EventContentChange, "Event updated", logger.Fields("event_id", id))
	return s.find(ctx, id)
}

func (s *eventService) Delete(ctx context.Context, caller Caller, id string) error {
	event, err := s.owned(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.events.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("event")
		}
		return fmt.Errorf("delete event: %w", err)
	}
	s.assets.destroy(ctx, event.ImagePublicID, media.KindImage)

	logger.Info(logger.EventContentChange, "Event deleted", logger.Fields(
		"event_id", id,
		"deleted_by", caller.UserID,
	))
	return nil
}
