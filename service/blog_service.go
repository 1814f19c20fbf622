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

const excerptLength = 200

type BlogService interface {
	List(ctx context.Context, caller Caller, q dto.ListQuery) (*dto.ListResponse[*domain.Blog], error)
	Get(ctx context.Context, caller Caller, id string) (*domain.Blog, error)
	Create(ctx context.Context, caller Caller, req *dto.CreateBlogRequest, cover *multipart.FileHeader) (*domain.Blog, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdateBlogRequest, cover *multipart.FileHeader) (*domain.Blog, error)
	Delete(ctx context.Context, caller Caller, id string) error
}

type blogService struct {
	blogs  repository.BlogRepository
	users  repository.UserRepository
	assets *assets
}

func NewBlogService(blogs repository.BlogRepository, users repository.UserRepository, uploader media.Uploader, m *metrics.Metrics) BlogService {
	return &blogService{blogs: blogs, users: users, assets: newAssets(uploader, m)}
}

// excerptOf cuts content at a word boundary.
func excerptOf(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	if len([]rune(content)) <= excerptLength {
		return content
	}
	cut := string([]rune(content)[:excerptLength])
	if i := strings.LastIndex(cut, " "); i > excerptLength/2 {
		cut = cut[:i]
	}
	return cut + "..."
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func (s *blogService) find(ctx context.Context, id string) (*domain.Blog, error) {
	b, err := s.blogs.FindByID(ctx, id)
	return lookup(b, err, "blog")
}

// List shows drafts only to their author, or to admins.
func (s *blogService) List(ctx context.Context, caller Caller, q dto.ListQuery) (*dto.ListResponse[*domain.Blog], error) {
	filter := repository.BlogFilter{AuthorID: q.ArtistID, Tag: q.Tag, Query: q.Q, PublishedOnly: true}
	if caller.IsAdmin() || (q.ArtistID != "" && caller.Owns(q.ArtistID)) {
		filter.PublishedOnly = false
	}
	page := pageOf(q)

	blogs, err := s.blogs.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	total, err := s.blogs.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count blogs: %w", err)
	}
	return &dto.ListResponse[*domain.Blog]{Items: blogs, Page: page.Number, Limit: page.Size, Total: total}, nil
}

func (s *blogService) Get(ctx context.Context, caller Caller, id string) (*domain.Blog, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.Published && !caller.Owns(b.AuthorID) && !caller.IsAdmin() {
		return nil, notFound("blog")
	}
	return b, nil
}

func (s *blogService) Create(ctx context.Context, caller Caller, req *dto.CreateBlogRequest, cover *multipart.FileHeader) (*domain.Blog, error) {
	author, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, forbidden("author account not found")
	}
	if !author.IsArtist() && author.Role != domain.RoleAdmin {
		return nil, forbidden("only artists and admins can write blogs")
	}

	batch := s.assets.batch()
	img, err := batch.put(ctx, cover, folderBlogs, media.KindImage)
	if err != nil {
		return nil, err
	}

	excerpt := strings.TrimSpace(req.Excerpt)
	if excerpt == "" {
		excerpt = excerptOf(req.Content)
	}
	published := true
	if req.Published != nil {
		published = *req.Published
	}
	now := time.Now()
	blog := &domain.Blog{
		ID:            newID(),
		AuthorID:      author.ID,
		AuthorName:    author.Name,
		Title:         strings.TrimSpace(req.Title),
		Content:       req.Content,
		Excerpt:       excerpt,
		Tags:          cleanTags(req.Tags),
		CoverURL:      img.URL,
		CoverPublicID: img.PublicID,
		Published:     published,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.blogs.Create(ctx, blog); err != nil {
		batch.rollback(ctx)
		return nil, fmt.Errorf("create blog: %w", err)
	}

	logger.Info(logger.EventContentChange, "Blog created", logger.Fields(
		"blog_id", blog.ID,
		"author_id", blog.AuthorID,
	))
	return blog, nil
}

func (s *blogService) owned(ctx context.Context, caller Caller, id string) (*domain.Blog, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(b.AuthorID) && !caller.IsAdmin() {
		logger.Security(logger.EventAccessDenied, "Blog modification by non-author", logger.Fields(
			"blog_id", id,
			"user_id", caller.UserID,
		))
		return nil, forbidden("you are not the author of this blog")
	}
	return b, nil
}

func (s *blogService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdateBlogRequest, cover *multipart.FileHeader) (*domain.Blog, error) {
	blog, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		updates["content"] = *req.Content
		if req.Excerpt == nil {
			updates["excerpt"] = excerptOf(*req.Content)
		}
	}
	if req.Excerpt != nil {
		updates["excerpt"] = strings.TrimSpace(*req.Excerpt)
	}
	if req.Tags != nil {
		updates["tags"] = cleanTags(req.Tags)
	}
	if req.Published != nil {
		updates["published"] = *req.Published
	}

	batch := s.assets.batch()
	if cover != nil {
		img, err := batch.put(ctx, cover, folderBlogs, media.KindImage)
		if err != nil {
			return nil, err
		}
		updates["cover_url"] = img.URL
		updates["cover_public_id"] = img.PublicID
	}

	if err := s.blogs.Update(ctx, id, updates); err != nil {
		batch.rollback(ctx)
		return nil, fmt.Errorf("update blog: %w", err)
	}
	if cover != nil {
		s.assets.destroy(ctx, blog.CoverPublicID, media.KindImage)
	}
	return s.find(ctx, id)
}

func (s *blogService) Delete(ctx context.Context, caller Caller, id string) error {
	blog, err := s.owned(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.blogs.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("blog")
		}
		return fmt.Errorf("delete blog: %w", err)
	}
	s.assets.destroy(ctx, blog.CoverPublicID, media.KindImage)

	event := logger.EventContentChange
	if caller.IsAdmin() && !caller.Owns(blog.AuthorID) {
		event = logger.EventAdminActivity
	}
	logger.Info(event, "Blog deleted", logger.Fields(
		"blog_id", id,
		"deleted_by", caller.UserID,
	))
	return nil
}
