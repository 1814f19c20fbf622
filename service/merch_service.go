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

const maxMerchImages = 5

type MerchService interface {
	List(ctx context.Context, q dto.ListQuery) (*dto.ListResponse[*domain.Merch], error)
	Get(ctx context.Context, id string) (*domain.Merch, error)
	Create(ctx context.Context, caller Caller, req *dto.CreateMerchRequest, images []*multipart.FileHeader) (*domain.Merch, error)
	// Update replaces all images when new ones are supplied.
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdateMerchRequest, images []*multipart.FileHeader) (*domain.Merch, error)
	Delete(ctx context.Context, caller Caller, id string) error
}

type merchService struct {
	merch  repository.MerchRepository
	users  repository.UserRepository
	assets *assets
}

func NewMerchService(merch repository.MerchRepository, users repository.UserRepository, uploader media.Uploader, m *metrics.Metrics) MerchService {
	return &merchService{merch: merch, users: users, assets: newAssets(uploader, m)}
}

func (s *merchService) find(ctx context.Context, id string) (*domain.Merch, error) {
	m, err := s.merch.FindByID(ctx, id)
	return lookup(m, err, "merch item")
}

func (s *merchService) List(ctx context.Context, q dto.ListQuery) (*dto.ListResponse[*domain.Merch], error) {
	filter := repository.MerchFilter{ArtistID: q.ArtistID, Category: q.Category, Query: q.Q, InStock: q.InStock}
	page := pageOf(q)

	items, err := s.merch.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list merch: %w", err)
	}
	total, err := s.merch.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count merch: %w", err)
	}
	return &dto.ListResponse[*domain.Merch]{Items: items, Page: page.Number, Limit: page.Size, Total: total}, nil
}

func (s *merchService) Get(ctx context.Context, id string) (*domain.Merch, error) {
	return s.find(ctx, id)
}

func (s *merchService) uploadImages(ctx context.Context, batch *uploadBatch, files []*multipart.FileHeader) ([]domain.Asset, error) {
	if len(files) > maxMerchImages {
		return nil, invalid("at most %d images are allowed", maxMerchImages)
	}
	out := make([]domain.Asset, 0, len(files))
	for _, f := range files {
		asset, err := batch.put(ctx, f, folderMerch, media.KindImage)
		if err != nil {
			batch.rollback(ctx)
			return nil, err
		}
		out = append(out, asset)
	}
	return out, nil
}

func (s *merchService) Create(ctx context.Context, caller Caller, req *dto.CreateMerchRequest, images []*multipart.FileHeader) (*domain.Merch, error) {
	artist, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil || !artist.IsArtist() {
		return nil, forbidden("only artists can sell merch")
	}

	batch := s.assets.batch()
	assets, err := s.uploadImages(ctx, batch, images)
	if err != nil {
		return nil, err
	}

	category := strings.ToLower(strings.TrimSpace(req.Category))
	if category == "" {
		category = "other"
	}
	now := time.Now()
	item := &domain.Merch{
		ID:          newID(),
		ArtistID:    artist.ID,
		ArtistName:  artist.Name,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    category,
		Price:       req.Price,
		Stock:       req.Stock,
		Images:      assets,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.merch.Create(ctx, item); err != nil {
		batch.rollback(ctx)
		return nil, fmt.Errorf("create merch: %w", err)
	}

	logger.Info(logger.EventContentChange, "Merch created", logger.Fields(
		"merch_id", item.ID,
		"artist_id", item.ArtistID,
	))
	return item, nil
}

func (s *merchService) owned(ctx context.Context, caller Caller, id string) (*domain.Merch, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(item.ArtistID) && !caller.IsAdmin() {
		logger.Security(logger.EventAccessDenied, "Merch modification by non-owner", logger.Fields(
			"merch_id", id,
			"user_id", caller.UserID,
		))
		return nil, forbidden("you do not own this merch item")
	}
	return item, nil
}

func (s *merchService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdateMerchRequest, images []*multipart.FileHeader) (*domain.Merch, error) {
	item, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = strings.ToLower(strings.TrimSpace(*req.Category))
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}

	batch := s.assets.batch()
	if len(images) > 0 {
		assets, err := s.uploadImages(ctx, batch, images)
		if err != nil {
			return nil, err
		}
		updates["images"] = assets
	}

	if err := s.merch.Update(ctx, id, updates); err != nil {
		batch.rollback(ctx)
		return nil, fmt.Errorf("update merch: %w", err)
	}
	if len(images) > 0 {
		for _, old := range item.Images {
			s.assets.destroy(ctx, old.PublicID, media.KindImage)
		}
	}

	logger.Info(logger.EventContentChange, "Merch updated", logger.Fields("merch_id", id))
	return s.find(ctx, id)
}

func (s *merchService) Delete(ctx context.Context, caller Caller, id string) error {
	item, err := s.owned(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.merch.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("merch item")
		}
		return fmt.Errorf("delete merch: %w", err)
	}
	for _, img := range item.Images {
		s.assets.destroy(ctx, img.PublicID, media.KindImage)
	}

	logger.Info(logger.EventContentChange, "Merch deleted", logger.Fields(
		"merch_id", id,
		"deleted_by", caller.UserID,
	))
	return nil
}
