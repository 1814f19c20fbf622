package repository

import (
	"context"
	"testing"
	"time"

	"github.com/sajag-gupta/riseup/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMemoryCartStoreRoundTripAndIsolation(t *testing.T) {
	store := NewMemoryCartStore(time.Hour)
	ctx := context.Background()

	empty, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", empty.UserID)
	assert.Empty(t, empty.Items)

	cart := &domain.Cart{
		UserID: "u1",
		Items:  []domain.CartItem{{Type: domain.ItemTypeMerch, ID: "m1", Price: 10, Quantity: 2}},
	}
	require.NoError(t, store.Save(ctx, cart))

	// Mutating the caller's copy must not leak into the store.
	cart.Items[0].Quantity = 99

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)

	require.NoError(t, store.Delete(ctx, "u1"))
	got, err = store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestMemoryCartStoreExpires(t *testing.T) {
	s := NewMemoryCartStore(time.Minute).(*memoryCartStore)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, s.Save(ctx, &domain.Cart{UserID: "u1", Items: []domain.CartItem{{ID: "x", Quantity: 1}}}))

	now = now.Add(2 * time.Minute)
	got, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestPageNormalize(t *testing.T) {
	p := Page{Number: 0, Size: 1000}.normalize()
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, MaxPageSize, p.Size)

	p = Page{Number: 3}.normalize()
	assert.Equal(t, DefaultPageSize, p.Size)
}

func TestEscapeRegex(t *testing.T) {
	assert.Equal(t, `a\.b\*c`, escapeRegex("a.b*c"))
	assert.Equal(t, "plain", escapeRegex("plain"))
}

func TestSongFilterBSON(t *testing.T) {
	f := SongFilter{ArtistID: "a1", Genre: "rock", Query: "love"}.bson()
	assert.Equal(t, "a1", f["artist_id"])
	assert.Equal(t, "rock", f["genre"])
	assert.Contains(t, f, "$or")
}

func TestUserFilterHidesBanned(t *testing.T) {
	f := UserFilter{Role: domain.RoleArtist, HideBanned: true}.bson()
	assert.Equal(t, domain.RoleArtist, f["role"])
	assert.Equal(t, bson.M{"$ne": true}, f["banned"])

	assert.NotContains(t, UserFilter{Role: domain.RoleArtist}.bson(), "banned")
}
