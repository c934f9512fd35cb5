package http

import (
	"errors"
	"net/http"

	"harvesthub/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{domain.ErrOrderNotFound, http.StatusNotFound},
	{domain.ErrProductNotFound, http.StatusNotFound},
	{domain.ErrCartNotFound, http.StatusNotFound},
	{domain.ErrCartItemNotFound, http.StatusNotFound},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrNoPendingOrders, http.StatusNotFound},

	{domain.ErrCartEmpty, http.StatusBadRequest},
	{domain.ErrInsufficientStock, http.StatusBadRequest},
	{domain.ErrSelfPurchase, http.StatusBadRequest},
	{domain.ErrInvalidQuantity, http.StatusBadRequest},
	{domain.ErrIncompleteAddress, http.StatusBadRequest},
	{domain.ErrInvalidPaymentMethod, http.StatusBadRequest},
	{domain.ErrUnknownStatus, http.StatusBadRequest},
	{domain.ErrInvalidTransition, http.StatusBadRequest},
	{domain.ErrOrderNotCancellable, http.StatusBadRequest},
	{domain.ErrInvalidSignature, http.StatusBadRequest},
	{domain.ErrPaymentDetailsRequired, http.StatusBadRequest},

	{domain.ErrNotOrderSeller, http.StatusForbidden},
	{domain.ErrNotOrderCustomer, http.StatusForbidden},
	{domain.ErrNotOrderParty, http.StatusForbidden},

	{domain.ErrStatusConflict, http.StatusConflict},
	{domain.ErrDuplicate, http.StatusConflict},

	{domain.ErrGateway, http.StatusBadGateway},
}

func statusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("url", c.Request.URL.String()).Msg("request failed")
	}
	c.JSON(status, ErrorResponse{Message: err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
}
