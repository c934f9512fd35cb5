package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) InitializePayment(c *gin.Context) {
	var req InitializePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	checkout, err := h.payments.Initialize(c.Request.Context(), currentUser(c).ID, req.OrderIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, PaymentInitResponse{Success: true, Data: checkout})
}

func (h *Handler) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	orders, err := h.payments.Verify(ctx, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	h.invalidateLists(ctx, orders...)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, OrdersResponse{
		Success: true,
		Message: "Payment verified successfully",
		Count:   len(orders),
		Orders:  orders,
	})
}

func (h *Handler) GetPaymentDetails(c *gin.Context) {
	details, err := h.payments.Details(c.Request.Context(), currentUser(c).ID, c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, PaymentDetailsResponse{Success: true, Data: details})
}
