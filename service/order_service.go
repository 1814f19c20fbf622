package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sajag-gupta/riseup/domain"
	"github.com/sajag-gupta/riseup/dto"
	"github.com/sajag-gupta/riseup/logger"
	"github.com/sajag-gupta/riseup/mailer"
	"github.com/sajag-gupta/riseup/metrics"
	"github.com/sajag-gupta/riseup/payment"
	"github.com/sajag-gupta/riseup/repository"
)

// TicketIssuer creates the tickets for the event lines of a paid order.
type TicketIssuer interface {
	Issue(ctx context.Context, order *domain.Order) ([]domain.Ticket, error)
}

type OrderService interface {
	Checkout(ctx context.Context, caller Caller) (*dto.CheckoutResponse, error)
	// Verify settles a PENDING order after the client completes payment.
	// Verifying an order that is already PAID returns it unchanged.
	Verify(ctx context.Context, caller Caller, req *dto.VerifyPaymentRequest) (*domain.Order, error)
	MarkFailed(ctx context.Context, caller Caller, id string) (*domain.Order, error)
	Get(ctx context.Context, caller Caller, id string) (*domain.Order, error)
	ListMine(ctx context.Context, caller Caller, q dto.ListQuery) (*dto.ListResponse[*domain.Order], error)
	ListAll(ctx context.Context, q dto.ListQuery) (*dto.ListResponse[*domain.Order], error)
	Refund(ctx context.Context, caller Caller, id string) (*domain.Order, error)
}

type OrderDeps struct {
	Orders    repository.OrderRepository
	Carts     repository.CartStore
	Merch     repository.MerchRepository
	Events    repository.EventRepository
	Users     repository.UserRepository
	Analytics repository.AnalyticsRepository
	Gateway   payment.Gateway
	Mail      mailer.EmailService
	Tickets   TicketIssuer
	Runner    Runner
	Metrics   *metrics.Metrics
	Currency  string
}

type orderService struct {
	OrderDeps
}

func NewOrderService(deps OrderDeps) OrderService {
	if deps.Gateway == nil {
		deps.Gateway = payment.NewDisabled()
	}
	if deps.Runner == nil {
		deps.Runner = NewAsyncRunner()
	}
	if deps.Currency == "" {
		deps.Currency = "INR"
	}
	return &orderService{OrderDeps: deps}
}

func (s *orderService) find(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.Orders.FindByID(ctx, id)
	return lookup(o, err, "order")
}

func (s *orderService) Checkout(ctx context.Context, caller Caller) (*dto.CheckoutResponse, error) {
	cart, err := s.Carts.Get(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	// Lines are priced from the catalog as it is now.
	priced := &domain.Cart{UserID: caller.UserID, PromoCode: cart.PromoCode}
	items := make([]domain.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		l, err := resolve(ctx, s.Merch, s.Events, item.Type, item.ID)
		if err != nil {
			return nil, err
		}
		if err := checkAvailable(l, item.Quantity); err != nil {
			return nil, err
		}
		l.item.Quantity = item.Quantity
		priced.Items = append(priced.Items, l.item)
		items = append(items, domain.OrderItem{
			Type:     l.item.Type,
			ID:       l.item.ID,
			ArtistID: l.item.ArtistID,
			Name:     l.item.Name,
			Price:    l.item.Price,
			Quantity: l.item.Quantity,
			Image:    l.item.Image,
		})
	}
	Recalculate(priced)

	now := time.Now()
	order := &domain.Order{
		ID:        newID(),
		UserID:    caller.UserID,
		Items:     items,
		Summary:   priced.Summary,
		PromoCode: priced.PromoCode,
		Currency:  s.Currency,
		Status:    domain.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if order.AmountPaise() <= 0 {
		return nil, invalid("order total must be greater than zero")
	}

	gatewayID, err := s.Gateway.CreateOrder(ctx, order.AmountPaise(), order.Currency, order.ID)
	if err != nil {
		logger.PaymentStep(logger.EventGatewayError, "Gateway order creation failed", logger.Payment{
			OrderID: order.ID,
			UserID:  order.UserID,
			Amount:  order.Summary.Total,
		}, err)
		return nil, paymentError(err)
	}
	order.RazorpayOrderID = gatewayID

	if err := s.Orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.Metrics.OrderStatus(string(order.Status))

	priced.UpdatedAt = now
	if err := s.Carts.Save(ctx, priced); err != nil {
		logger.Warn(logger.EventCacheError, "Failed to save repriced cart", logger.Fields(
			"user_id", caller.UserID,
			"error", err.Error(),
		))
	}

	logger.Info(logger.EventOrderCreated, "Order created", logger.Fields(
		"order_id", order.ID,
		"user_id", order.UserID,
		"total", order.Summary.Total,
		"items", len(order.Items),
	))

	return &dto.CheckoutResponse{
		Order:           order,
		RazorpayOrderID: gatewayID,
		Amount:          order.AmountPaise(),
		Currency:        order.Currency,
		KeyID:           s.Gateway.KeyID(),
	}, nil
}

func (s *orderService) Verify(ctx context.Context, caller Caller, req *dto.VerifyPaymentRequest) (*domain.Order, error) {
	order, err := s.Orders.FindByRazorpayOrderID(ctx, req.RazorpayOrderID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && order.ID != req.OrderID) {
		// A gateway order that does not belong to the claimed order is
		// treated like a forged signature.
		return nil, s.rejectPayment(ctx, req, "unknown gateway order")
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	if !caller.Owns(order.UserID) {
		return nil, forbidden("not your order")
	}

	switch order.Status {
	case domain.OrderStatusPaid:
		return order, nil
	case domain.OrderStatusPending:
	default:
		return nil, fmt.Errorf("%w: order is %s", ErrConflict, order.Status)
	}

	if !s.Gateway.VerifySignature(order.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		err := s.Orders.AttachPaymentRef(ctx, order.ID, req.RazorpayPaymentID)
		if err != nil && !errors.Is(err, repository.ErrNoChange) {
			logger.Warn(logger.EventDBError, "Failed to record rejected payment", logger.Fields(
				"order_id", order.ID,
				"error", err.Error(),
			))
		}
		return nil, s.rejectPayment(ctx, req, "signature mismatch")
	}

	paidAt := time.Now()
	paid, err := s.Orders.TransitionStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusPaid, map[string]interface{}{
		"razorpay_payment_id": req.RazorpayPaymentID,
		"paid_at":             paidAt,
	})
	if errors.Is(err, repository.ErrNoChange) {
		// Lost a race with another verify; whichever won ran the side effects.
		current, err := s.find(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		if current.Status == domain.OrderStatusPaid {
			return current, nil
		}
		return nil, fmt.Errorf("%w: order is %s", ErrConflict, current.Status)
	}
	if err != nil {
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	s.Metrics.PaymentVerification(true)
	s.Metrics.OrderStatus(string(paid.Status))
	logger.PaymentStep(logger.EventPaymentVerified, "Payment verified", logger.Payment{
		OrderID:        paid.ID,
		UserID:         paid.UserID,
		GatewayOrderID: paid.RazorpayOrderID,
		PaymentID:      req.RazorpayPaymentID,
		Amount:         paid.Summary.Total,
	}, nil)

	s.fulfil(ctx, caller, paid)
	return paid, nil
}

func (s *orderService) rejectPayment(ctx context.Context, req *dto.VerifyPaymentRequest, reason string) error {
	s.Metrics.PaymentVerification(false)
	logger.PaymentStep(logger.EventPaymentRejected, "Payment verification rejected", logger.Payment{
		OrderID:        req.OrderID,
		GatewayOrderID: req.RazorpayOrderID,
		PaymentID:      req.RazorpayPaymentID,
		Reason:         reason,
	}, nil)
	return ErrInvalidSignature
}

// revenueByArtist splits the order's line totals by the artist who sells
// each line.
func revenueByArtist(order *domain.Order) map[string]float64 {
	out := map[string]float64{}
	for _, item := range order.Items {
		out[item.ArtistID] += item.Price * float64(item.Quantity)
	}
	for artist, v := range out {
		out[artist] = round2(v)
	}
	return out
}

// fulfil applies the effects of a payment. None of them can fail the
// verification, which has already been committed.
func (s *orderService) fulfil(ctx context.Context, caller Caller, order *domain.Order) {
	eventTitles := map[string]string{}
	for _, item := range order.Items {
		var err error
		switch item.Type {
		case domain.ItemTypeMerch:
			err = s.Merch.RecordSale(ctx, item.ID, item.Quantity)
		case domain.ItemTypeEvent:
			eventTitles[item.ID] = item.Name
			err = s.Events.ReserveTickets(ctx, item.ID, order.UserID, item.Quantity)
		}
		if errors.Is(err, repository.ErrNoChange) {
			logger.Warn(logger.EventGeneral, "Paid order exceeds remaining inventory", logger.Fields(
				"order_id", order.ID,
				"item_type", string(item.Type),
				"item_id", item.ID,
				"quantity", item.Quantity,
			))
		} else if err != nil {
			logger.Error(logger.EventDBError, "Failed to record sale", logger.Fields(
				"order_id", order.ID,
				"item_id", item.ID,
				"error", err.Error(),
			))
		}
	}

	for artistID, revenue := range revenueByArtist(order) {
		if err := s.Users.IncrementArtistStats(ctx, artistID, 0, revenue); err != nil {
			logger.Error(logger.EventDBError, "Failed to credit artist revenue", logger.Fields(
				"order_id", order.ID,
				"artist_id", artistID,
				"error", err.Error(),
			))
		}
		record(ctx, s.Analytics, domain.AnalyticsEvent{
			UserID:   order.UserID,
			ArtistID: artistID,
			Action:   domain.ActionPurchase,
			Context:  domain.ContextCheckout,
			Metadata: map[string]interface{}{"order_id": order.ID, "amount": revenue},
		})
	}

	if err := s.Carts.Delete(ctx, order.UserID); err != nil {
		logger.Warn(logger.EventCacheError, "Failed to clear cart after payment", logger.Fields(
			"user_id", order.UserID,
			"error", err.Error(),
		))
	}

	to, name := caller.Email, caller.Name
	if len(eventTitles) > 0 && s.Tickets != nil {
		s.Runner.Go("issue-tickets", func(ctx context.Context) error {
			tickets, err := s.Tickets.Issue(ctx, order)
			if err != nil {
				return fmt.Errorf("issue tickets for %s: %w", order.ID, err)
			}
			if err := s.Orders.SetTickets(ctx, order.ID, tickets); err != nil {
				return fmt.Errorf("save tickets for %s: %w", order.ID, err)
			}
			withTickets := *order
			withTickets.Tickets = tickets
			if s.Mail == nil {
				return nil
			}
			return s.Mail.SendTicket(to, name, &withTickets, eventTitles)
		})
	}
	if s.Mail != nil {
		s.Runner.Go("order-confirmation", func(ctx context.Context) error {
			return s.Mail.SendOrderConfirmation(to, name, order)
		})
	}
}

func (s *orderService) MarkFailed(ctx context.Context, caller Caller, id string) (*domain.Order, error) {
	order, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderStatusFailed {
		return order, nil
	}
	failed, err := s.Orders.TransitionStatus(ctx, id, domain.OrderStatusPending, domain.OrderStatusFailed, nil)
	if errors.Is(err, repository.ErrNoChange) {
		return nil, fmt.Errorf("%w: only pending orders can be marked failed", ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("mark order failed: %w", err)
	}
	s.Metrics.OrderStatus(string(failed.Status))
	logger.PaymentStep(logger.EventPaymentFailed, "Order marked failed", logger.Payment{
		OrderID:        id,
		UserID:         caller.UserID,
		GatewayOrderID: failed.RazorpayOrderID,
	}, nil)
	return failed, nil
}

func (s *orderService) Get(ctx context.Context, caller Caller, id string) (*domain.Order, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(order.UserID) && !caller.IsAdmin() {
		return nil, forbidden("not your order")
	}
	return order, nil
}

func (s *orderService) list(ctx context.Context, filter repository.OrderFilter, q dto.ListQuery) (*dto.ListResponse[*domain.Order], error) {
	page := pageOf(q)
	orders, err := s.Orders.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	total, err := s.Orders.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	return &dto.ListResponse[*domain.Order]{Items: orders, Page: page.Number, Limit: page.Size, Total: total}, nil
}

func (s *orderService) ListMine(ctx context.Context, caller Caller, q dto.ListQuery) (*dto.ListResponse[*domain.Order], error) {
	return s.list(ctx, repository.OrderFilter{UserID: caller.UserID, Status: domain.OrderStatus(q.Status)}, q)
}

func (s *orderService) ListAll(ctx context.Context, q dto.ListQuery) (*dto.ListResponse[*domain.Order], error) {
	return s.list(ctx, repository.OrderFilter{Status: domain.OrderStatus(q.Status)}, q)
}

func (s *orderService) Refund(ctx context.Context, caller Caller, id string) (*domain.Order, error) {
	if !caller.IsAdmin() {
		return nil, forbidden("only admins can refund orders")
	}
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransition(domain.OrderStatusRefunded) {
		return nil, fmt.Errorf("%w: order is %s", ErrConflict, order.Status)
	}

	refundID, err := s.Gateway.Refund(ctx, order.RazorpayPaymentID, order.AmountPaise())
	if err != nil {
		logger.PaymentStep(logger.EventGatewayError, "Gateway refund failed", logger.Payment{
			OrderID:   id,
			PaymentID: order.RazorpayPaymentID,
			Amount:    order.Summary.Total,
		}, err)
		return nil, paymentError(err)
	}

	refunded, err := s.Orders.TransitionStatus(ctx, id, domain.OrderStatusPaid, domain.OrderStatusRefunded, map[string]interface{}{
		"refund_id": refundID,
	})
	if errors.Is(err, repository.ErrNoChange) {
		return nil, fmt.Errorf("%w: order was already refunded", ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("mark order refunded: %w", err)
	}

	for artistID, revenue := range revenueByArtist(refunded) {
		if err := s.Users.IncrementArtistStats(ctx, artistID, 0, -revenue); err != nil {
			logger.Error(logger.EventDBError, "Failed to debit artist revenue", logger.Fields(
				"order_id", id,
				"artist_id", artistID,
				"error", err.Error(),
			))
		}
	}

	s.Metrics.OrderStatus(string(refunded.Status))
	logger.PaymentStep(logger.EventPaymentRefunded, "Order refunded", logger.Payment{
		OrderID:   id,
		UserID:    refunded.UserID,
		PaymentID: refunded.RazorpayPaymentID,
		Amount:    refunded.Summary.Total,
		Reason:    "refunded by admin " + caller.UserID + ", refund " + refundID,
	}, nil)
	return refunded, nil
}
