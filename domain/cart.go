package domain

import "time"

type ItemType string

const (
	ItemTypeMerch ItemType = "merch"
	ItemTypeEvent ItemType = "event"
)

func (t ItemType) Valid() bool {
	return t == ItemTypeMerch || t == ItemTypeEvent
}

type CartItem struct {
	Type     ItemType `bson:"type" json:"type"`
	ID       string   `bson:"id" json:"id"`
	Name     string   `bson:"name" json:"name"`
	Price    float64  `bson:"price" json:"price"`
	Quantity int      `bson:"quantity" json:"quantity"`
	Image    string   `bson:"image,omitempty" json:"image,omitempty"`
	ArtistID string   `bson:"artist_id" json:"artist_id"`
}

func (i CartItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

type CartSummary struct {
	Subtotal float64 `bson:"subtotal" json:"subtotal"`
	Discount float64 `bson:"discount" json:"discount"`
	Tax      float64 `bson:"tax" json:"tax"`
	Total    float64 `bson:"total" json:"total"`
}

// Cart is keyed by user. Summary is derived from Items and PromoCode and
// must be recomputed after every mutation.
type Cart struct {
	UserID    string      `bson:"user_id" json:"user_id"`
	Items     []CartItem  `bson:"items" json:"items"`
	PromoCode string      `bson:"promo_code,omitempty" json:"promo_code,omitempty"`
	Summary   CartSummary `bson:"summary" json:"summary"`
	UpdatedAt time.Time   `bson:"updated_at" json:"updated_at"`
}

func (c *Cart) Find(t ItemType, id string) int {
	for i, item := range c.Items {
		if item.Type == t && item.ID == id {
			return i
		}
	}
	return -1
}
