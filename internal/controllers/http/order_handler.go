package http

import (
	"net/http"

	"harvesthub/internal/domain"
	"harvesthub/internal/infra/cache"
	"harvesthub/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	orders, err := h.orders.Checkout(ctx, currentUser(c).ID, services.CheckoutInput{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		DeliveryNotes:   req.DeliveryNotes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateLists(ctx, orders...)
	c.JSON(http.StatusCreated, OrdersResponse{
		Success: true,
		Message: "Orders created successfully",
		Count:   len(orders),
		Orders:  orders,
	})
}

func (h *Handler) GetMyOrders(c *gin.Context) {
	userID := currentUser(c).ID
	h.cachedList(c, cache.CustomerOrdersKey(userID), func() ([]domain.Order, error) {
		return h.orders.ListForCustomer(c.Request.Context(), userID)
	})
}

func (h *Handler) GetFarmerOrders(c *gin.Context) {
	userID := currentUser(c).ID
	h.cachedList(c, cache.SellerOrdersKey(userID), func() ([]domain.Order, error) {
		return h.orders.ListForSeller(c.Request.Context(), userID)
	})
}

// cachedList serves an order list from the list cache, loading and storing
// it on a miss.
func (h *Handler) cachedList(c *gin.Context, key string, load func() ([]domain.Order, error)) {
	ctx := c.Request.Context()
	if orders, ok := h.lists.Get(ctx, key); ok {
		c.JSON(http.StatusOK, OrdersResponse{Success: true, Count: len(orders), Orders: orders})
		return
	}

	orders, err := load()
	if err != nil {
		respondError(c, err)
		return
	}
	h.lists.Set(ctx, key, orders)
	c.JSON(http.StatusOK, OrdersResponse{Success: true, Count: len(orders), Orders: orders})
}

func (h *Handler) GetOrderById(c *gin.Context) {
	order, err := h.orders.GetOrderById(c.Request.Context(), currentUser(c).ID, c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, OrderResponse{Success: true, Order: order})
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	order, err := h.orders.UpdateStatus(ctx, currentUser(c).ID, c.Param("orderId"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateLists(ctx, *order)
	c.JSON(http.StatusOK, OrderResponse{Success: true, Message: "Order status updated", Order: order})
}

func (h *Handler) CancelOrder(c *gin.Context) {
	ctx := c.Request.Context()
	order, err := h.orders.Cancel(ctx, currentUser(c).ID, c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateLists(ctx, *order)
	c.JSON(http.StatusOK, OrderResponse{Success: true, Message: "Order cancelled successfully", Order: order})
}

// OrderFeed streams the caller's order events over a websocket.
func (h *Handler) OrderFeed(c *gin.Context) {
	userID := currentUser(c).ID
	if err := h.feed.Serve(c.Writer, c.Request, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("order feed upgrade failed")
	}
}
