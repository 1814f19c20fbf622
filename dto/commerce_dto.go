package dto

import "github.com/sajag-gupta/riseup/domain"

type AddCartItemRequest struct {
	Type     domain.ItemType `json:"type" binding:"required,item_type"`
	ID       string          `json:"id" binding:"required"`
	Quantity int             `json:"quantity" binding:"omitempty,min=1,max=99"`
}

type UpdateCartItemRequest struct {
	// Quantity 0 removes the line.
	Quantity *int `json:"quantity" binding:"required,min=0,max=99"`
}

type ApplyPromoRequest struct {
	Code string `json:"code" binding:"required,max=32"`
}

type CheckoutResponse struct {
	Order           *domain.Order `json:"order"`
	RazorpayOrderID string        `json:"razorpay_order_id"`
	Amount          int64         `json:"amount"`
	Currency        string        `json:"currency"`
	KeyID           string        `json:"key_id"`
}

type VerifyPaymentRequest struct {
	OrderID           string `json:"order_id" binding:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

type SubscribeRequest struct {
	ArtistID string      `json:"artist_id" binding:"required"`
	Tier     domain.Tier `json:"tier" binding:"required,tier"`
}
