// Package payment creates gateway orders and verifies payment callbacks.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/razorpay/razorpay-go"
)

var ErrUnavailable = errors.New("payment gateway is not configured")

type Gateway interface {
	// CreateOrder registers amountPaise with the gateway and returns the
	// gateway order id.
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (string, error)
	VerifySignature(orderID, paymentID, signature string) bool
	// Refund returns amountPaise of a captured payment and yields the
	// gateway refund id.
	Refund(ctx context.Context, paymentID string, amountPaise int64) (string, error)
	KeyID() string
}

type razorpayGateway struct {
	client *razorpay.Client
	keyID  string
	secret string
}

func NewRazorpay(keyID, keySecret string) Gateway {
	return &razorpayGateway{
		client: razorpay.NewClient(keyID, keySecret),
		keyID:  keyID,
		secret: keySecret,
	}
}

func (g *razorpayGateway) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	body, err := g.client.Order.Create(map[string]interface{}{
		"amount":          amountPaise,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay create order: %w", err)
	}
	id, ok := body["id"].(string)
	if !ok || id == "" {
		return "", errors.New("razorpay create order: response has no id")
	}
	return id, nil
}

func (g *razorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(g.secret, orderID, paymentID, signature)
}

func (g *razorpayGateway) Refund(ctx context.Context, paymentID string, amountPaise int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	body, err := g.client.Payment.Refund(paymentID, int(amountPaise), map[string]interface{}{}, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay refund: %w", err)
	}
	id, _ := body["id"].(string)
	return id, nil
}

func (g *razorpayGateway) KeyID() string {
	return g.keyID
}

// Sign returns the hex HMAC-SHA256 of "orderID|paymentID".
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifySignature(secret, orderID, paymentID, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

type disabled struct{}

func NewDisabled() Gateway {
	return disabled{}
}

func (disabled) CreateOrder(context.Context, int64, string, string) (string, error) {
	return "", ErrUnavailable
}

func (disabled) VerifySignature(string, string, string) bool { return false }

func (disabled) Refund(context.Context, string, int64) (string, error) {
	return "", ErrUnavailable
}

func (disabled) KeyID() string { return "" }
