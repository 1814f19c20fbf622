package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sajag-gupta/riseup/domain"
	"github.com/sajag-gupta/riseup/dto"
	"github.com/sajag-gupta/riseup/middleware"
	"github.com/sajag-gupta/riseup/service"
)

// CommerceHandler serves the cart, orders and fan subscriptions.
type CommerceHandler struct {
	carts  service.CartService
	orders service.OrderService
	subs   service.SubscriptionService
}

func NewCommerceHandler(carts service.CartService, orders service.OrderService, subs service.SubscriptionService) *CommerceHandler {
	return &CommerceHandler{carts: carts, orders: orders, subs: subs}
}

func (h *CommerceHandler) RegisterRoutes(api *gin.RouterGroup, g Guards) {
	cart := api.Group("/cart", g.Auth)
	cart.GET("", h.GetCart)
	cart.DELETE("", h.ClearCart)
	cart.POST("/items", h.AddItem)
	cart.PATCH("/items/:type/:id", h.UpdateItem)
	cart.DELETE("/items/:type/:id", h.RemoveItem)
	cart.POST("/promo", h.ApplyPromo)
	cart.DELETE("/promo", h.RemovePromo)

	orders := api.Group("/orders", g.Auth)
	orders.POST("/checkout", h.Checkout)
	orders.POST("/verify", h.VerifyPayment)
	orders.GET("/me", h.ListMyOrders)
	orders.GET("/:id", h.GetOrder)
	orders.POST("/:id/fail", h.MarkFailed)

	subs := api.Group("/subscriptions", g.Auth)
	subs.POST("", h.Subscribe)
	subs.GET("/me", h.ListMySubscriptions)
	subs.GET("/artist", g.Artist, h.ListSubscribers)
	subs.DELETE("/:id", h.CancelSubscription)
}

// Cart

func (h *CommerceHandler) GetCart(c *gin.Context) {
	cart, err := h.carts.Get(c.Request.Context(), middleware.CallerFrom(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CommerceHandler) ClearCart(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), middleware.CallerFrom(c).UserID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

func (h *CommerceHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if !bind(c, &req) {
		return
	}
	cart, err := h.carts.AddItem(c.Request.Context(), middleware.CallerFrom(c).UserID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CommerceHandler) UpdateItem(c *gin.Context) {
	itemType, ok := pathItemType(c)
	if !ok {
		return
	}
	var req dto.UpdateCartItemRequest
	if !bind(c, &req) {
		return
	}
	cart, err := h.carts.UpdateQuantity(c.Request.Context(), middleware.CallerFrom(c).UserID, itemType, c.Param("id"), *req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CommerceHandler) RemoveItem(c *gin.Context) {
	itemType, ok := pathItemType(c)
	if !ok {
		return
	}
	cart, err := h.carts.RemoveItem(c.Request.Context(), middleware.CallerFrom(c).UserID, itemType, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CommerceHandler) ApplyPromo(c *gin.Context) {
	var req dto.ApplyPromoRequest
	if !bind(c, &req) {
		return
	}
	cart, err := h.carts.ApplyPromo(c.Request.Context(), middleware.CallerFrom(c).UserID, req.Code)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CommerceHandler) RemovePromo(c *gin.Context) {
	cart, err := h.carts.RemovePromo(c.Request.Context(), middleware.CallerFrom(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func pathItemType(c *gin.Context) (domain.ItemType, bool) {
	t := domain.ItemType(c.Param("type"))
	if !t.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "type must be merch or event"})
		return "", false
	}
	return t, true
}

// Orders

func (h *CommerceHandler) Checkout(c *gin.Context) {
	resp, err := h.orders.Checkout(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CommerceHandler) VerifyPayment(c *gin.Context) {
	var req dto.VerifyPaymentRequest
	if !bind(c, &req) {
		return
	}
	order, err := h.orders.Verify(c.Request.Context(), middleware.CallerFrom(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment verified", "order": order})
}

func (h *CommerceHandler) ListMyOrders(c *gin.Context) {
	q, ok := bindQuery(c)
	if !ok {
		return
	}
	list, err := h.orders.ListMine(c.Request.Context(), middleware.CallerFrom(c), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CommerceHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *CommerceHandler) MarkFailed(c *gin.Context) {
	order, err := h.orders.MarkFailed(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Subscriptions

func (h *CommerceHandler) Subscribe(c *gin.Context) {
	var req dto.SubscribeRequest
	if !bind(c, &req) {
		return
	}
	sub, err := h.subs.Subscribe(c.Request.Context(), middleware.CallerFrom(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *CommerceHandler) ListMySubscriptions(c *gin.Context) {
	subs, err := h.subs.ListMine(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

func (h *CommerceHandler) ListSubscribers(c *gin.Context) {
	q, ok := bindQuery(c)
	if !ok {
		return
	}
	list, err := h.subs.ListSubscribers(c.Request.Context(), middleware.CallerFrom(c), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CommerceHandler) CancelSubscription(c *gin.Context) {
	sub, err := h.subs.Cancel(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}
