package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := h.carts.Add(c.Request.Context(), currentUser(c).ID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CartResponse{Success: true, Message: "Product added to cart", Cart: view})
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	view, err := h.carts.Remove(c.Request.Context(), currentUser(c).ID, c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CartResponse{Success: true, Message: "Product removed from cart", Cart: view})
}

func (h *Handler) GetCart(c *gin.Context) {
	view, err := h.carts.Get(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CartResponse{Success: true, Cart: view})
}

func (h *Handler) ClearCart(c *gin.Context) {
	view, err := h.carts.Clear(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CartResponse{Success: true, Message: "Cart cleared", Cart: view})
}

func (h *Handler) UpdateCartQuantity(c *gin.Context) {
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := h.carts.SetQuantity(c.Request.Context(), currentUser(c).ID, c.Param("productId"), req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CartResponse{Success: true, Message: "Cart updated", Cart: view})
}
