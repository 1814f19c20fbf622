package domain

import "time"

type Tier string

const (
	TierBasic   Tier = "basic"
	TierPremium Tier = "premium"
	TierVIP     Tier = "vip"
)

// TierPrices are monthly prices in rupees.
var TierPrices = map[Tier]float64{
	TierBasic:   99,
	TierPremium: 199,
	TierVIP:     499,
}

func (t Tier) Valid() bool {
	_, ok := TierPrices[t]
	return ok
}

// Subscription is a fan-to-artist relationship. EndDate is advisory:
// nothing expires a subscription automatically.
type Subscription struct {
	ID        string    `bson:"id" json:"id"`
	FanID     string    `bson:"fan_id" json:"fan_id"`
	ArtistID  string    `bson:"artist_id" json:"artist_id"`
	Tier      Tier      `bson:"tier" json:"tier"`
	Amount    float64   `bson:"amount" json:"amount"`
	Active    bool      `bson:"active" json:"active"`
	StartDate time.Time `bson:"start_date" json:"start_date"`
	EndDate   time.Time `bson:"end_date" json:"end_date"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
