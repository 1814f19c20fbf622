package service

import (
	"context"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/sajag-gupta/riseup/domain"
	"github.com/sajag-gupta/riseup/logger"
	"github.com/sajag-gupta/riseup/payment"
	"github.com/sajag-gupta/riseup/repository"
)

func TestMain(m *testing.M) {
	logger.Init(logger.Config{ServiceName: "riseup-test", Output: io.Discard})
	os.Exit(m.Run())
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func without(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

// userRepo keeps users in memory and mirrors the guarded updates of the
// Mongo repository.
type userRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.User
	CreateErr error
	creates   int
}

func newUserRepo(users ...*domain.User) *userRepo {
	r := &userRepo{byID: map[string]*domain.User{}}
	for _, u := range users {
		r.byID[u.ID] = u
	}
	return r
}

func (r *userRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return r.CreateErr
	}
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	r.creates++
	r.byID[u.ID] = u
	return nil
}

func (r *userRepo) get(id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *userRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *userRepo) Update(_ context.Context, id string, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(id)
	if err != nil {
		return err
	}
	if v, ok := updates["name"].(string); ok {
		u.Name = v
	}
	if v, ok := updates["avatar"].(string); ok {
		u.Avatar = v
	}
	return nil
}

func (r *userRepo) List(_ context.Context, filter repository.UserFilter, _ repository.Page) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.byID {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.HideBanned && u.Banned {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *userRepo) Count(ctx context.Context, filter repository.UserFilter) (int64, error) {
	users, _ := r.List(ctx, filter, repository.Page{})
	return int64(len(users)), nil
}

func (r *userRepo) AddFollower(_ context.Context, artistID, followerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(artistID)
	if err != nil || u.Artist == nil || contains(u.Artist.Followers, followerID) {
		return repository.ErrNoChange
	}
	u.Artist.Followers = append(u.Artist.Followers, followerID)
	u.Artist.FollowerCount++
	return nil
}

func (r *userRepo) RemoveFollower(_ context.Context, artistID, followerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(artistID)
	if err != nil || u.Artist == nil || !contains(u.Artist.Followers, followerID) {
		return repository.ErrNoChange
	}
	u.Artist.Followers = without(u.Artist.Followers, followerID)
	u.Artist.FollowerCount--
	return nil
}

func (r *userRepo) AddFollowing(_ context.Context, userID, artistID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(userID)
	if err != nil {
		return err
	}
	if !contains(u.Following, artistID) {
		u.Following = append(u.Following, artistID)
	}
	return nil
}

func (r *userRepo) RemoveFollowing(_ context.Context, userID, artistID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(userID)
	if err != nil {
		return err
	}
	u.Following = without(u.Following, artistID)
	return nil
}

func (r *userRepo) AddFavorite(_ context.Context, userID, songID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(userID)
	if err != nil {
		return err
	}
	if !contains(u.Favorites, songID) {
		u.Favorites = append(u.Favorites, songID)
	}
	return nil
}

func (r *userRepo) RemoveFavorite(_ context.Context, userID, songID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(userID)
	if err != nil {
		return err
	}
	u.Favorites = without(u.Favorites, songID)
	return nil
}

func (r *userRepo) AddPlaylist(_ context.Context, userID string, p domain.Playlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(userID)
	if err != nil {
		return err
	}
	u.Playlists = append(u.Playlists, p)
	return nil
}

func (r *userRepo) AddSongToPlaylist(_ context.Context, userID, playlistID, songID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(userID)
	if err != nil {
		return err
	}
	for i := range u.Playlists {
		if u.Playlists[i].ID == playlistID {
			if !contains(u.Playlists[i].SongIDs, songID) {
				u.Playlists[i].SongIDs = append(u.Playlists[i].SongIDs, songID)
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *userRepo) RemoveSongFromPlaylist(_ context.Context, userID, playlistID, songID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(userID)
	if err != nil {
		return err
	}
	for i := range u.Playlists {
		if u.Playlists[i].ID == playlistID {
			u.Playlists[i].SongIDs = without(u.Playlists[i].SongIDs, songID)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *userRepo) AddSubscription(_ context.Context, userID, subscriptionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(userID)
	if err != nil {
		return err
	}
	u.Subscriptions = append(u.Subscriptions, subscriptionID)
	return nil
}

func (r *userRepo) RemoveSubscription(_ context.Context, userID, subscriptionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(userID)
	if err != nil {
		return err
	}
	u.Subscriptions = without(u.Subscriptions, subscriptionID)
	return nil
}

func (r *userRepo) IncrementArtistStats(_ context.Context, artistID string, plays int64, revenue float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(artistID)
	if err != nil {
		return err
	}
	if u.Artist != nil {
		u.Artist.TotalPlays += plays
		u.Artist.TotalRevenue += revenue
	}
	return nil
}

func (r *userRepo) SetVerified(_ context.Context, artistID string, verified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(artistID)
	if err != nil {
		return err
	}
	u.Artist.Verified = verified
	return nil
}

func (r *userRepo) SetBanned(_ context.Context, userID string, banned bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(userID)
	if err != nil {
		return err
	}
	u.Banned = banned
	return nil
}

func (r *userRepo) SetRole(_ context.Context, userID string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.get(userID)
	if err != nil {
		return err
	}
	u.Role = role
	if role == domain.RoleArtist && u.Artist == nil {
		u.Artist = domain.NewArtistProfile()
	}
	return nil
}

type songRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Song
}

func newSongRepo(songs ...*domain.Song) *songRepo {
	r := &songRepo{byID: map[string]*domain.Song{}}
	for _, s := range songs {
		r.byID[s.ID] = s
	}
	return r
}

func (r *songRepo) Create(_ context.Context, s *domain.Song) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[s.ID] = s
	return nil
}

func (r *songRepo) FindByID(_ context.Context, id string) (*domain.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *songRepo) List(_ context.Context, filter repository.SongFilter, _ repository.Page) ([]*domain.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Song
	for _, s := range r.byID {
		if filter.ArtistID != "" && s.ArtistID != filter.ArtistID {
			continue
		}
		if filter.IDs != nil && !contains(filter.IDs, s.ID) {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *songRepo) Count(ctx context.Context, filter repository.SongFilter) (int64, error) {
	songs, _ := r.List(ctx, filter, repository.Page{})
	return int64(len(songs)), nil
}

func (r *songRepo) Update(_ context.Context, id string, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if v, ok := updates["title"].(string); ok {
		s.Title = v
	}
	if v, ok := updates["genre"].(string); ok {
		s.Genre = v
	}
	return nil
}

func (r *songRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *songRepo) IncrementPlays(_ context.Context, id string) (*domain.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	s.Plays++
	cp := *s
	return &cp, nil
}

func (r *songRepo) Like(_ context.Context, songID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[songID]
	if !ok || contains(s.LikedBy, userID) {
		return repository.ErrNoChange
	}
	s.LikedBy = append(s.LikedBy, userID)
	s.Likes++
	return nil
}

func (r *songRepo) Unlike(_ context.Context, songID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[songID]
	if !ok || !contains(s.LikedBy, userID) {
		return repository.ErrNoChange
	}
	s.LikedBy = without(s.LikedBy, userID)
	s.Likes--
	return nil
}

func (r *songRepo) CountByArtist(ctx context.Context, artistID string) (int64, error) {
	return r.Count(ctx, repository.SongFilter{ArtistID: artistID})
}

func (r *songRepo) SumPlaysByArtist(_ context.Context, artistID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, s := range r.byID {
		if s.ArtistID == artistID {
			total += s.Plays
		}
	}
	return total, nil
}

type merchRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Merch
}

func newMerchRepo(items ...*domain.Merch) *merchRepo {
	r := &merchRepo{byID: map[string]*domain.Merch{}}
	for _, m := range items {
		r.byID[m.ID] = m
	}
	return r
}

func (r *merchRepo) Create(_ context.Context, m *domain.Merch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[m.ID] = m
	return nil
}

func (r *merchRepo) FindByID(_ context.Context, id string) (*domain.Merch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *merchRepo) List(context.Context, repository.MerchFilter, repository.Page) ([]*domain.Merch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Merch
	for _, m := range r.byID {
		out = append(out, m)
	}
	return out, nil
}

func (r *merchRepo) Count(context.Context, repository.MerchFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

func (r *merchRepo) Update(_ context.Context, id string, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if v, ok := updates["price"].(float64); ok {
		m.Price = v
	}
	if v, ok := updates["stock"].(int); ok {
		m.Stock = v
	}
	return nil
}

func (r *merchRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *merchRepo) RecordSale(_ context.Context, id string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok || m.Stock < qty {
		return repository.ErrNoChange
	}
	m.Stock -= qty
	m.Sold += int64(qty)
	return nil
}

type eventRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Event
}

func newEventRepo(events ...*domain.Event) *eventRepo {
	r := &eventRepo{byID: map[string]*domain.Event{}}
	for _, e := range events {
		r.byID[e.ID] = e
	}
	return r
}

func (r *eventRepo) Create(_ context.Context, e *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[e.ID] = e
	return nil
}

func (r *eventRepo) FindByID(_ context.Context, id string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *eventRepo) List(context.Context, repository.EventFilter, repository.Page) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Event
	for _, e := range r.byID {
		out = append(out, e)
	}
	return out, nil
}

func (r *eventRepo) Count(context.Context, repository.EventFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

func (r *eventRepo) Update(_ context.Context, id string, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if v, ok := updates["title"].(string); ok {
		e.Title = v
	}
	if v, ok := updates["capacity"].(int); ok {
		e.Capacity = v
	}
	return nil
}

func (r *eventRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *eventRepo) ReserveTickets(_ context.Context, id, userID string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok || e.TicketsSold+qty > e.Capacity {
		return repository.ErrNoChange
	}
	e.TicketsSold += qty
	if !contains(e.Attendees, userID) {
		e.Attendees = append(e.Attendees, userID)
	}
	return nil
}

type orderRepo struct {
	mu          sync.Mutex
	byID        map[string]*domain.Order
	attached    map[string]string
	transitions int
	// afterFind runs between a gateway-order lookup and the caller's next
	// write, standing in for a concurrent request.
	afterFind func()
}

func newOrderRepo() *orderRepo {
	return &orderRepo{byID: map[string]*domain.Order{}, attached: map[string]string{}}
}

func (r *orderRepo) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.byID[o.ID] = &cp
	return nil
}

func (r *orderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *orderRepo) FindByRazorpayOrderID(_ context.Context, razorpayOrderID string) (*domain.Order, error) {
	r.mu.Lock()
	var found *domain.Order
	for _, o := range r.byID {
		if o.RazorpayOrderID == razorpayOrderID {
			cp := *o
			found = &cp
			break
		}
	}
	afterFind := r.afterFind
	r.mu.Unlock()

	if found == nil {
		return nil, repository.ErrNotFound
	}
	if afterFind != nil {
		afterFind()
	}
	return found, nil
}

func (r *orderRepo) List(_ context.Context, filter repository.OrderFilter, _ repository.Page) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.byID {
		if filter.UserID != "" && o.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (r *orderRepo) Count(ctx context.Context, filter repository.OrderFilter) (int64, error) {
	orders, _ := r.List(ctx, filter, repository.Page{})
	return int64(len(orders)), nil
}

func (r *orderRepo) TransitionStatus(_ context.Context, id string, from, to domain.OrderStatus, set map[string]interface{}) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok || o.Status != from {
		return nil, repository.ErrNoChange
	}
	r.transitions++
	o.Status = to
	if v, ok := set["razorpay_payment_id"].(string); ok {
		o.RazorpayPaymentID = v
	}
	if v, ok := set["paid_at"].(time.Time); ok {
		o.PaidAt = &v
	}
	if v, ok := set["refund_id"].(string); ok {
		o.RefundID = v
	}
	cp := *o
	return &cp, nil
}

func (r *orderRepo) AttachPaymentRef(_ context.Context, id, paymentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok || o.Status != domain.OrderStatusPending {
		return repository.ErrNoChange
	}
	r.attached[id] = paymentID
	return nil
}

func (r *orderRepo) SetTickets(_ context.Context, id string, tickets []domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Tickets = tickets
	return nil
}

func (r *orderRepo) SumPaidRevenue(context.Context) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total float64
	for _, o := range r.byID {
		if o.Status == domain.OrderStatusPaid {
			total += o.Summary.Total
		}
	}
	return total, nil
}

type subscriptionRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Subscription
	// staleReads makes FindActive miss, as a request racing another one would.
	staleReads bool
}

func newSubscriptionRepo(subs ...*domain.Subscription) *subscriptionRepo {
	r := &subscriptionRepo{byID: map[string]*domain.Subscription{}}
	for _, s := range subs {
		r.byID[s.ID] = s
	}
	return r
}

func (r *subscriptionRepo) Create(_ context.Context, s *domain.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.Active {
		for _, other := range r.byID {
			if other.Active && other.FanID == s.FanID && other.ArtistID == s.ArtistID {
				return repository.ErrDuplicate
			}
		}
	}
	r.byID[s.ID] = s
	return nil
}

func (r *subscriptionRepo) FindByID(_ context.Context, id string) (*domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *subscriptionRepo) FindActive(_ context.Context, fanID, artistID string) (*domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.staleReads {
		return nil, repository.ErrNotFound
	}
	for _, s := range r.byID {
		if s.FanID == fanID && s.ArtistID == artistID && s.Active {
			return s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *subscriptionRepo) ListByFan(_ context.Context, fanID string) ([]*domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Subscription
	for _, s := range r.byID {
		if s.FanID == fanID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *subscriptionRepo) ListByArtist(_ context.Context, artistID string, _ repository.Page) ([]*domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Subscription
	for _, s := range r.byID {
		if s.ArtistID == artistID && s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *subscriptionRepo) CountActiveByArtist(ctx context.Context, artistID string) (int64, error) {
	subs, _ := r.ListByArtist(ctx, artistID, repository.Page{})
	return int64(len(subs)), nil
}

func (r *subscriptionRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok || !s.Active {
		return repository.ErrNoChange
	}
	s.Active = false
	return nil
}

type analyticsRepo struct {
	mu     sync.Mutex
	events []domain.AnalyticsEvent
}

func (r *analyticsRepo) Insert(_ context.Context, e *domain.AnalyticsEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *e)
	return nil
}

func (r *analyticsRepo) CountByAction(_ context.Context, artistID string, since time.Time) (map[domain.AnalyticsAction]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[domain.AnalyticsAction]int64{}
	for _, e := range r.events {
		if (artistID == "" || e.ArtistID == artistID) && !e.CreatedAt.Before(since) {
			out[e.Action]++
		}
	}
	return out, nil
}

func (r *analyticsRepo) count(action domain.AnalyticsAction) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Action == action {
			n++
		}
	}
	return n
}

// gateway signs with a fixed secret and hands out sequential order ids.
type gateway struct {
	secret  string
	created int
	refunds int
}

const testSecret = "rzp_test_secret"

func newGateway() *gateway { return &gateway{secret: testSecret} }

func (g *gateway) CreateOrder(_ context.Context, amountPaise int64, _, receipt string) (string, error) {
	g.created++
	return "order_rzp_" + receipt, nil
}

func (g *gateway) VerifySignature(orderID, paymentID, signature string) bool {
	return payment.VerifySignature(g.secret, orderID, paymentID, signature)
}

func (g *gateway) Refund(context.Context, string, int64) (string, error) {
	g.refunds++
	return "rfnd_1", nil
}

func (g *gateway) KeyID() string { return "rzp_test_key" }

type mailbox struct {
	mu      sync.Mutex
	welcome []string
	orders  []string
	tickets []string
	subs    []string
}

func (m *mailbox) SendWelcome(to, _ string, _ domain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcome = append(m.welcome, to)
	return nil
}

func (m *mailbox) SendOrderConfirmation(to, _ string, _ *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, to)
	return nil
}

func (m *mailbox) SendTicket(to, _ string, _ *domain.Order, _ map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets = append(m.tickets, to)
	return nil
}

func (m *mailbox) SendSubscriptionConfirmation(to, _, _ string, _ *domain.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, to)
	return nil
}

type ticketIssuer struct {
	calls int
}

func (t *ticketIssuer) Issue(_ context.Context, order *domain.Order) ([]domain.Ticket, error) {
	t.calls++
	var out []domain.Ticket
	for _, item := range order.Items {
		if item.Type != domain.ItemTypeEvent {
			continue
		}
		for n := 0; n < item.Quantity; n++ {
			out = append(out, domain.Ticket{EventID: item.ID, Code: order.ID})
		}
	}
	return out, nil
}

func artistUser(id, name string) *domain.User {
	return &domain.User{ID: id, Name: name, Email: id + "@riseup.test", Role: domain.RoleArtist, Artist: domain.NewArtistProfile()}
}

func fanUser(id string) *domain.User {
	return &domain.User{ID: id, Name: "Fan " + id, Email: id + "@riseup.test", Role: domain.RoleFan}
}

func callerOf(u *domain.User) Caller {
	return Caller{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}
