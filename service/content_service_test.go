package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"github.com/sajag-gupta/riseup/domain"
	"github.com/sajag-gupta/riseup/dto"
	"github.com/sajag-gupta/riseup/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventCreateAndOwnership(t *testing.T) {
	users := newUserRepo(artistUser("a1", "The Risers"), artistUser("a2", "The Fallers"), fanUser("f1"))
	events := newEventRepo()
	svc := NewEventService(events, users, nil, nil)
	ctx := context.Background()

	req := &dto.CreateEventRequest{
		Title: " Live ", Venue: "Hall", City: "Pune", Capacity: 100, TicketPrice: 300,
		Date: time.Now().Add(72 * time.Hour).Format(time.RFC3339),
	}
	_, err := svc.Create(ctx, callerOf(users.byID["f1"]), req, nil)
	assert.True(t, errors.Is(err, ErrForbidden), "fans cannot create events")

	event, err := svc.Create(ctx, callerOf(users.byID["a1"]), req, nil)
	require.NoError(t, err)
	assert.Equal(t, "Live", event.Title)
	assert.Equal(t, "The Risers", event.ArtistName)

	title := "Hijacked"
	_, err = svc.Update(ctx, callerOf(users.byID["a2"]), event.ID, &dto.UpdateEventRequest{Title: &title}, nil)
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.True(t, errors.Is(svc.Delete(ctx, callerOf(users.byID["a2"]), event.ID), ErrForbidden))

	past := time.Now().Add(-time.Hour).Format(time.RFC3339)
	_, err = svc.Update(ctx, callerOf(users.byID["a1"]), event.ID, &dto.UpdateEventRequest{Date: &past}, nil)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	events.byID[event.ID].TicketsSold = 60
	capacity := 50
	_, err = svc.Update(ctx, callerOf(users.byID["a1"]), event.ID, &dto.UpdateEventRequest{Capacity: &capacity}, nil)
	assert.True(t, errors.Is(err, ErrInvalidInput), "capacity below tickets sold")
}

func TestMerchCreateAndOwnership(t *testing.T) {
	users := newUserRepo(artistUser("a1", "The Risers"))
	svc := NewMerchService(newMerchRepo(), users, nil, nil)
	owner := callerOf(users.byID["a1"])
	req := &dto.CreateMerchRequest{Name: "Cap", Price: 300, Stock: 5}

	item, err := svc.Create(context.Background(), owner, req, nil)
	require.NoError(t, err)
	assert.Equal(t, "other", item.Category)
	assert.Empty(t, item.Images)

	_, err = svc.Create(context.Background(), owner, req, make([]*multipart.FileHeader, maxMerchImages+1))
	assert.True(t, errors.Is(err, ErrInvalidInput))

	rival := Caller{UserID: "a9", Role: domain.RoleArtist}
	assert.True(t, errors.Is(svc.Delete(context.Background(), rival, item.ID), ErrForbidden))
	assert.NoError(t, svc.Delete(context.Background(), owner, item.ID))
}

func TestBlogDraftVisibility(t *testing.T) {
	users := newUserRepo(artistUser("a1", "The Risers"), fanUser("f1"))
	blogs := &blogRepo{byID: map[string]*domain.Blog{}}
	svc := NewBlogService(blogs, users, nil, nil)
	ctx := context.Background()
	draft := false

	_, err := svc.Create(ctx, callerOf(users.byID["f1"]), &dto.CreateBlogRequest{Title: "Hi", Content: "x"}, nil)
	assert.True(t, errors.Is(err, ErrForbidden))

	blog, err := svc.Create(ctx, callerOf(users.byID["a1"]), &dto.CreateBlogRequest{
		Title: "Studio diary", Content: "Day one.", Tags: []string{"Studio", "studio", " Tour "}, Published: &draft,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"studio", "tour"}, blog.Tags)
	assert.Equal(t, "Day one.", blog.Excerpt)

	_, err = svc.Get(ctx, callerOf(users.byID["f1"]), blog.ID)
	assert.True(t, errors.Is(err, ErrNotFound), "drafts are hidden from readers")
	_, err = svc.Get(ctx, callerOf(users.byID["a1"]), blog.ID)
	assert.NoError(t, err)

	public, err := svc.List(ctx, Caller{}, dto.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, public.Items)
	own, err := svc.List(ctx, callerOf(users.byID["a1"]), dto.ListQuery{ArtistID: "a1"})
	require.NoError(t, err)
	assert.Len(t, own.Items, 1)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short text", excerptOf("short\n\ntext"))

	long := strings.Repeat("word ", 100)
	ex := excerptOf(long)
	assert.True(t, strings.HasSuffix(ex, "..."))
	assert.LessOrEqual(t, len(ex), excerptLength+3)
	assert.False(t, strings.HasSuffix(strings.TrimSuffix(ex, "..."), " "))
}

type blogRepo struct {
	byID map[string]*domain.Blog
}

func (r *blogRepo) Create(_ context.Context, b *domain.Blog) error {
	r.byID[b.ID] = b
	return nil
}

func (r *blogRepo) FindByID(_ context.Context, id string) (*domain.Blog, error) {
	b, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return b, nil
}

func (r *blogRepo) List(_ context.Context, filter repository.BlogFilter, _ repository.Page) ([]*domain.Blog, error) {
	var out []*domain.Blog
	for _, b := range r.byID {
		if filter.AuthorID != "" && b.AuthorID != filter.AuthorID {
			continue
		}
		if filter.PublishedOnly && !b.Published {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *blogRepo) Count(ctx context.Context, filter repository.BlogFilter) (int64, error) {
	blogs, _ := r.List(ctx, filter, repository.Page{})
	return int64(len(blogs)), nil
}

func (r *blogRepo) Update(_ context.Context, id string, updates map[string]interface{}) error {
	b, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if v, ok := updates["published"].(bool); ok {
		b.Published = v
	}
	return nil
}

func (r *blogRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}
