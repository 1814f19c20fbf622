package mailer

import (
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/sajag-gupta/riseup/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	addr string
	from string
	to   []string
	msg  string
}

func newCapturing() (*emailService, *captured) {
	c := &captured{}
	svc := NewEmailService("smtp.test", "2525", "user", "pass", "Rise Up <noreply@riseup.test>", "http://app.test/").(*emailService)
	svc.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		c.addr, c.from, c.to, c.msg = addr, from, to, string(msg)
		return nil
	}
	return svc, c
}

func TestOrderConfirmationListsLinesAndTotals(t *testing.T) {
	svc, c := newCapturing()
	order := &domain.Order{
		ID: "ord-1",
		Items: []domain.OrderItem{
			{Name: "Tour Tee", Quantity: 2, Price: 500},
			{Name: "<script>", Quantity: 1, Price: 25},
		},
		Summary: domain.CartSummary{Subtotal: 1025, Discount: 102.5, Tax: 166.05, Total: 1088.55},
	}

	require.NoError(t, svc.SendOrderConfirmation("fan@riseup.test", "Fan", order))

	assert.Equal(t, "smtp.test:2525", c.addr)
	assert.Equal(t, "noreply@riseup.test", c.from)
	assert.Equal(t, []string{"fan@riseup.test"}, c.to)
	assert.Contains(t, c.msg, "Subject: Order ord-1 confirmed")
	assert.Contains(t, c.msg, "Tour Tee")
	assert.Contains(t, c.msg, "₹1088.55")
	assert.Contains(t, c.msg, "-₹102.50")
	assert.Contains(t, c.msg, "http://app.test/orders/ord-1")
	assert.False(t, strings.Contains(c.msg, "<script>"), "item names must be escaped")
}

func TestTicketEmailUsesEventTitles(t *testing.T) {
	svc, c := newCapturing()
	order := &domain.Order{
		ID:      "ord-2",
		Tickets: []domain.Ticket{{EventID: "e1", Code: "ord-2:e1:1", QRURL: "https://cdn.test/qr.png"}},
	}

	require.NoError(t, svc.SendTicket("fan@riseup.test", "Fan", order, map[string]string{"e1": "Live at Mumbai"}))
	assert.Contains(t, c.msg, "Live at Mumbai")
	assert.Contains(t, c.msg, "ord-2:e1:1")
	assert.Contains(t, c.msg, "https://cdn.test/qr.png")
}

func TestSubscriptionEmail(t *testing.T) {
	svc, c := newCapturing()
	sub := &domain.Subscription{Tier: domain.TierPremium, Amount: 199, EndDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}

	require.NoError(t, svc.SendSubscriptionConfirmation("fan@riseup.test", "Fan", "Band", sub))
	assert.Contains(t, c.msg, "premium tier")
	assert.Contains(t, c.msg, "01 Mar 2025")
}

func TestUnconfiguredSMTPDoesNotSend(t *testing.T) {
	svc := NewEmailService("smtp.test", "587", "", "", "noreply@riseup.test", "http://app.test").(*emailService)
	svc.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send must not be called without credentials")
		return nil
	}
	assert.NoError(t, svc.SendWelcome("fan@riseup.test", "Fan", domain.RoleFan))
}

func TestEnvelopeAddress(t *testing.T) {
	assert.Equal(t, "a@b.c", envelopeAddress("Name <a@b.c>"))
	assert.Equal(t, "a@b.c", envelopeAddress("a@b.c"))
}
