package domain

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPending, OrderStatusFailed, true},
		{OrderStatusPaid, OrderStatusRefunded, true},
		{OrderStatusPaid, OrderStatusPaid, false},
		{OrderStatusPaid, OrderStatusPending, false},
		{OrderStatusFailed, OrderStatusPaid, false},
		{OrderStatusRefunded, OrderStatusPaid, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.ok {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.ok, got)
		}
	}
}

func TestOrderAmountPaiseRounds(t *testing.T) {
	o := &Order{Summary: CartSummary{Total: 1061.99}}
	if got := o.AmountPaise(); got != 106199 {
		t.Fatalf("expected 106199 paise, got %d", got)
	}
}

func TestEventRemaining(t *testing.T) {
	e := &Event{Capacity: 10, TicketsSold: 12}
	if e.Remaining() != 0 {
		t.Fatalf("oversold event should report zero remaining")
	}
	e.TicketsSold = 4
	if e.Remaining() != 6 {
		t.Fatalf("expected 6 remaining, got %d", e.Remaining())
	}
}

func TestCartFind(t *testing.T) {
	c := &Cart{Items: []CartItem{{Type: ItemTypeMerch, ID: "m1"}, {Type: ItemTypeEvent, ID: "m1"}}}
	if c.Find(ItemTypeEvent, "m1") != 1 {
		t.Fatalf("expected event line at index 1")
	}
	if c.Find(ItemTypeMerch, "nope") != -1 {
		t.Fatalf("expected missing line to return -1")
	}
}
