package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sajag-gupta/riseup/domain"
	"github.com/sajag-gupta/riseup/dto"
	"github.com/sajag-gupta/riseup/logger"
	"github.com/sajag-gupta/riseup/repository"
)

const (
	TaxRate         = 0.18
	MaxLineQuantity = 99
)

// PromoCodes maps a code to its percentage discount.
var PromoCodes = map[string]float64{
	"SAVE10":  10,
	"SAVE20":  20,
	"FIRST15": 15,
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Recalculate derives the summary from the lines and promo code. Tax is
// charged on the discounted amount.
func Recalculate(cart *domain.Cart) {
	var subtotal float64
	for _, item := range cart.Items {
		subtotal += item.LineTotal()
	}
	subtotal = round2(subtotal)

	discount := round2(subtotal * PromoCodes[cart.PromoCode] / 100)
	tax := round2((subtotal - discount) * TaxRate)

	cart.Summary = domain.CartSummary{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    round2(subtotal - discount + tax),
	}
}

type CartService interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, req *dto.AddCartItemRequest) (*domain.Cart, error)
	// UpdateQuantity sets a line's quantity. Zero removes the line.
	UpdateQuantity(ctx context.Context, userID string, itemType domain.ItemType, id string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID string, itemType domain.ItemType, id string) (*domain.Cart, error)
	ApplyPromo(ctx context.Context, userID, code string) (*domain.Cart, error)
	RemovePromo(ctx context.Context, userID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) error
}

type cartService struct {
	carts  repository.CartStore
	merch  repository.MerchRepository
	events repository.EventRepository
}

func NewCartService(carts repository.CartStore, merch repository.MerchRepository, events repository.EventRepository) CartService {
	return &cartService{carts: carts, merch: merch, events: events}
}

// line is the current sellable state of a cart item.
type line struct {
	item      domain.CartItem
	available int
}

// resolve loads the merch item or event behind a cart line and reports how
// many units can still be bought.
func resolve(ctx context.Context, merch repository.MerchRepository, events repository.EventRepository, itemType domain.ItemType, id string) (*line, error) {
	switch itemType {
	case domain.ItemTypeMerch:
		m, err := merch.FindByID(ctx, id)
		if m, err = lookup(m, err, "merch item"); err != nil {
			return nil, err
		}
		return &line{
			item: domain.CartItem{
				Type:     itemType,
				ID:       m.ID,
				Name:     m.Name,
				Price:    m.Price,
				Image:    m.PrimaryImage(),
				ArtistID: m.ArtistID,
			},
			available: m.Stock,
		}, nil
	case domain.ItemTypeEvent:
		e, err := events.FindByID(ctx, id)
		if e, err = lookup(e, err, "event"); err != nil {
			return nil, err
		}
		available := e.Remaining()
		if !e.Date.After(time.Now()) {
			available = 0
		}
		return &line{
			item: domain.CartItem{
				Type:     itemType,
				ID:       e.ID,
				Name:     e.Title,
				Price:    e.TicketPrice,
				Image:    e.ImageURL,
				ArtistID: e.ArtistID,
			},
			available: available,
		}, nil
	}
	return nil, invalid("unknown item type %q", itemType)
}

func checkAvailable(l *line, quantity int) error {
	if quantity > MaxLineQuantity {
		return invalid("at most %d of one item per order", MaxLineQuantity)
	}
	if quantity > l.available {
		if l.available == 0 {
			return invalid("%s is no longer available", l.item.Name)
		}
		return invalid("only %d of %s available", l.available, l.item.Name)
	}
	return nil
}

func (s *cartService) load(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	cart.UserID = userID
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return cart, nil
}

func (s *cartService) save(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	if len(cart.Items) == 0 {
		cart.PromoCode = ""
	}
	Recalculate(cart)
	cart.UpdatedAt = time.Now()
	if err := s.carts.Save(ctx, cart); err != nil {
		logger.Error(logger.EventCacheError, "Failed to save cart", logger.Fields(
			"user_id", cart.UserID,
			"error", err.Error(),
		))
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return cart, nil
}

func (s *cartService) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	Recalculate(cart)
	return cart, nil
}

func (s *cartService) AddItem(ctx context.Context, userID string, req *dto.AddCartItemRequest) (*domain.Cart, error) {
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	l, err := resolve(ctx, s.merch, s.events, req.Type, req.ID)
	if err != nil {
		return nil, err
	}

	if i := cart.Find(req.Type, req.ID); i >= 0 {
		total := cart.Items[i].Quantity + quantity
		if err := checkAvailable(l, total); err != nil {
			return nil, err
		}
		// Refresh the snapshot so the cart shows the current price.
		l.item.Quantity = total
		cart.Items[i] = l.item
	} else {
		if err := checkAvailable(l, quantity); err != nil {
			return nil, err
		}
		l.item.Quantity = quantity
		cart.Items = append(cart.Items, l.item)
	}
	return s.save(ctx, cart)
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID string, itemType domain.ItemType, id string, quantity int) (*domain.Cart, error) {
	if quantity < 0 {
		return nil, invalid("quantity cannot be negative")
	}
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := cart.Find(itemType, id)
	if i < 0 {
		return nil, notFound("cart item")
	}

	if quantity == 0 {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		return s.save(ctx, cart)
	}

	l, err := resolve(ctx, s.merch, s.events, itemType, id)
	if err != nil {
		return nil, err
	}
	if err := checkAvailable(l, quantity); err != nil {
		return nil, err
	}
	l.item.Quantity = quantity
	cart.Items[i] = l.item
	return s.save(ctx, cart)
}

func (s *cartService) RemoveItem(ctx context.Context, userID string, itemType domain.ItemType, id string) (*domain.Cart, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := cart.Find(itemType, id)
	if i < 0 {
		return nil, notFound("cart item")
	}
	cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	return s.save(ctx, cart)
}

func (s *cartService) ApplyPromo(ctx context.Context, userID, code string) (*domain.Cart, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if _, ok := PromoCodes[code]; !ok {
		return nil, ErrInvalidPromo
	}
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}
	cart.PromoCode = code
	return s.save(ctx, cart)
}

func (s *cartService) RemovePromo(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.PromoCode = ""
	return s.save(ctx, cart)
}

func (s *cartService) Clear(ctx context.Context, userID string) error {
	if err := s.carts.Delete(ctx, userID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
