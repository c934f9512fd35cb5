package http

import (
	"context"
	"net/http"

	"harvesthub/internal/domain"
	"harvesthub/internal/infra"
	"harvesthub/internal/infra/cache"
	"harvesthub/internal/services"

	"github.com/gin-gonic/gin"
)

// Feed upgrades a request into a live stream of userID's order events.
type Feed interface {
	Serve(w http.ResponseWriter, r *http.Request, userID string) error
}

type Handler struct {
	carts    *services.CartService
	orders   *services.OrderService
	payments *services.PaymentService
	lists    infra.OrderListCache
	feed     Feed
	secret   string
}

func NewHandler(carts *services.CartService, orders *services.OrderService, payments *services.PaymentService,
	lists infra.OrderListCache, feed Feed, accessTokenSecret string) *Handler {
	return &Handler{
		carts:    carts,
		orders:   orders,
		payments: payments,
		lists:    lists,
		feed:     feed,
		secret:   accessTokenSecret,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api", Auth(h.secret))

	cart := api.Group("/cart")
	cart.POST("/add", h.AddToCart)
	cart.DELETE("/remove/:productId", h.RemoveFromCart)
	cart.GET("", h.GetCart)
	cart.DELETE("/clear", h.ClearCart)
	cart.PATCH("/quantity/:productId", h.UpdateCartQuantity)

	orders := api.Group("/orders")
	orders.POST("/create", h.CreateOrder)
	orders.GET("/my-orders", h.GetMyOrders)
	orders.GET("/farmer-orders", RequireRole(domain.RoleFarmer), h.GetFarmerOrders)
	orders.GET("/farmer-orders/export", RequireRole(domain.RoleFarmer), h.ExportFarmerOrders)
	orders.GET("/feed", h.OrderFeed)
	orders.GET("/:orderId", h.GetOrderById)
	orders.PATCH("/status/:orderId", RequireRole(domain.RoleFarmer), h.UpdateOrderStatus)
	orders.PATCH("/cancel/:orderId", h.CancelOrder)

	payments := api.Group("/payments")
	payments.POST("/initialize", h.InitializePayment)
	payments.POST("/verify", h.VerifyPayment)
	payments.GET("/details/:orderId", h.GetPaymentDetails)
}

// invalidateLists drops the cached order lists of every party on the orders.
func (h *Handler) invalidateLists(ctx context.Context, orders ...domain.Order) {
	if len(orders) == 0 {
		return
	}
	h.lists.Invalidate(ctx, cache.KeysFor(orders...)...)
}
