package domain

import "time"

type AnalyticsAction string

const (
	ActionPlay      AnalyticsAction = "play"
	ActionLike      AnalyticsAction = "like"
	ActionUnlike    AnalyticsAction = "unlike"
	ActionFollow    AnalyticsAction = "follow"
	ActionUnfollow  AnalyticsAction = "unfollow"
	ActionPurchase  AnalyticsAction = "purchase"
	ActionSearch    AnalyticsAction = "search"
	ActionView      AnalyticsAction = "view"
	ActionSubscribe AnalyticsAction = "subscribe"
)

var AnalyticsActions = []AnalyticsAction{
	ActionPlay, ActionLike, ActionUnlike, ActionFollow, ActionUnfollow,
	ActionPurchase, ActionSearch, ActionView, ActionSubscribe,
}

type AnalyticsContext string

const (
	ContextSong     AnalyticsContext = "song"
	ContextArtist   AnalyticsContext = "artist"
	ContextEvent    AnalyticsContext = "event"
	ContextMerch    AnalyticsContext = "merch"
	ContextBlog     AnalyticsContext = "blog"
	ContextSearch   AnalyticsContext = "search"
	ContextCheckout AnalyticsContext = "checkout"
)

var AnalyticsContexts = []AnalyticsContext{
	ContextSong, ContextArtist, ContextEvent, ContextMerch,
	ContextBlog, ContextSearch, ContextCheckout,
}

// AnalyticsEvent is an append-only interaction record.
type AnalyticsEvent struct {
	ID        string                 `bson:"id" json:"id"`
	UserID    string                 `bson:"user_id,omitempty" json:"user_id,omitempty"`
	ArtistID  string                 `bson:"artist_id,omitempty" json:"artist_id,omitempty"`
	SongID    string                 `bson:"song_id,omitempty" json:"song_id,omitempty"`
	Action    AnalyticsAction        `bson:"action" json:"action"`
	Context   AnalyticsContext       `bson:"context" json:"context"`
	Metadata  map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt time.Time              `bson:"created_at" json:"created_at"`
}
