package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusPaid     OrderStatus = "PAID"
	OrderStatusFailed   OrderStatus = "FAILED"
	OrderStatusRefunded OrderStatus = "REFUNDED"
)

// CanTransition lists the only status changes an order accepts.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return to == OrderStatusPaid || to == OrderStatusFailed
	case OrderStatusPaid:
		return to == OrderStatusRefunded
	}
	return false
}

type OrderItem struct {
	Type     ItemType `bson:"type" json:"type"`
	ID       string   `bson:"id" json:"id"`
	ArtistID string   `bson:"artist_id" json:"artist_id"`
	Name     string   `bson:"name" json:"name"`
	Price    float64  `bson:"price" json:"price"`
	Quantity int      `bson:"quantity" json:"quantity"`
	Image    string   `bson:"image,omitempty" json:"image,omitempty"`
}

type Ticket struct {
	EventID string `bson:"event_id" json:"event_id"`
	Code    string `bson:"code" json:"code"`
	QRURL   string `bson:"qr_url,omitempty" json:"qr_url,omitempty"`
}

type Order struct {
	ID                string      `bson:"id" json:"id"`
	UserID            string      `bson:"user_id" json:"user_id"`
	Items             []OrderItem `bson:"items" json:"items"`
	Summary           CartSummary `bson:"summary" json:"summary"`
	PromoCode         string      `bson:"promo_code,omitempty" json:"promo_code,omitempty"`
	Currency          string      `bson:"currency" json:"currency"`
	Status            OrderStatus `bson:"status" json:"status"`
	RazorpayOrderID   string      `bson:"razorpay_order_id" json:"razorpay_order_id"`
	RazorpayPaymentID string      `bson:"razorpay_payment_id,omitempty" json:"razorpay_payment_id,omitempty"`
	RefundID          string      `bson:"refund_id,omitempty" json:"refund_id,omitempty"`
	Tickets           []Ticket    `bson:"tickets,omitempty" json:"tickets,omitempty"`
	CreatedAt         time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time   `bson:"updated_at" json:"updated_at"`
	PaidAt            *time.Time  `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
}

// AmountPaise is the order total in the smallest currency unit.
func (o *Order) AmountPaise() int64 {
	return int64(o.Summary.Total*100 + 0.5)
}
