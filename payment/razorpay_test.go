package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	secret := "rzp_secret"
	sig := Sign(secret, "order_1", "pay_1")

	assert.Len(t, sig, 64)
	assert.True(t, VerifySignature(secret, "order_1", "pay_1", sig))

	assert.False(t, VerifySignature(secret, "order_1", "pay_2", sig), "different payment id")
	assert.False(t, VerifySignature("other", "order_1", "pay_1", sig), "different secret")
	assert.False(t, VerifySignature(secret, "order_1", "pay_1", sig[:63]+"0"), "tampered signature")
	assert.False(t, VerifySignature(secret, "order_1", "pay_1", ""), "empty signature")
	assert.False(t, VerifySignature("", "order_1", "pay_1", Sign("", "order_1", "pay_1")), "empty secret")
}

func TestGatewayUsesConfiguredSecret(t *testing.T) {
	g := NewRazorpay("rzp_key", "rzp_secret")
	assert.Equal(t, "rzp_key", g.KeyID())
	assert.True(t, g.VerifySignature("o", "p", Sign("rzp_secret", "o", "p")))
}

func TestDisabledGateway(t *testing.T) {
	g := NewDisabled()
	_, err := g.CreateOrder(context.Background(), 100, "INR", "r")
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.False(t, g.VerifySignature("o", "p", "s"))
	_, err = g.Refund(context.Background(), "pay_1", 100)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Empty(t, g.KeyID())
}
