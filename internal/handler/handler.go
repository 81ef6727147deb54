package handler

import (
	"errors"
	"net/http"

	"nextmove-cargo/internal/logging"
	"nextmove-cargo/internal/middleware"
	"nextmove-cargo/internal/payment"
	"nextmove-cargo/internal/service"
	"nextmove-cargo/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// errorStatus maps service errors onto HTTP status codes.
var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{payment.ErrInvalidSignature, http.StatusUnauthorized},

	{service.ErrOfferNotFound, http.StatusNotFound},
	{service.ErrShipmentNotFound, http.StatusNotFound},
	{service.ErrPODNotFound, http.StatusNotFound},
	{service.ErrSessionNotFound, http.StatusNotFound},
	{service.ErrNoOpenSession, http.StatusNotFound},
	{service.ErrCouponNotFound, http.StatusNotFound},
	{service.ErrTransactionNotFound, http.StatusNotFound},
	{service.ErrNotificationNotFound, http.StatusNotFound},
	{payment.ErrUnknownProvider, http.StatusNotFound},

	{service.ErrRFQNotOpen, http.StatusConflict},
	{service.ErrOfferNotPending, http.StatusConflict},
	{service.ErrShipmentStatusConflict, http.StatusConflict},
	{service.ErrInvalidTransition, http.StatusConflict},
	{service.ErrPODNotAllowed, http.StatusConflict},
	{service.ErrPODAlreadyReviewed, http.StatusConflict},
	{service.ErrSessionAlreadyOpen, http.StatusConflict},
	{service.ErrSessionClosed, http.StatusConflict},
	{service.ErrCouponCodeTaken, http.StatusConflict},
	{service.ErrShipmentAlreadyPaid, http.StatusConflict},

	{service.ErrCouponInactive, http.StatusUnprocessableEntity},
	{service.ErrCouponExpired, http.StatusUnprocessableEntity},
	{service.ErrCouponExhausted, http.StatusUnprocessableEntity},
	{service.ErrCouponMinAmount, http.StatusUnprocessableEntity},

	{service.ErrOfferRFQMismatch, http.StatusBadRequest},
	{service.ErrInvalidTrackingNumber, http.StatusBadRequest},
	{service.ErrInvalidStatus, http.StatusBadRequest},
	{service.ErrPODNoDocuments, http.StatusBadRequest},
	{service.ErrReviewNotesRequired, http.StatusBadRequest},
	{service.ErrInvalidReviewOutcome, http.StatusBadRequest},
	{service.ErrInvalidAmount, http.StatusBadRequest},
	{service.ErrInvalidCoupon, http.StatusBadRequest},
	{payment.ErrMissingReference, http.StatusBadRequest},

	{service.ErrCheckoutFailed, http.StatusBadGateway},
}

func statusFor(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// writeError renders a service error; unexpected errors are logged and hidden.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logging.Error("request failed", map[string]interface{}{
			"path":  c.FullPath(),
			"error": err,
		})
		msg = "Internal server error"
	}
	c.JSON(status, response.Error(status, msg))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, msg))
}

// viewer builds the service caller from the token claims set by RequireRole.
func viewer(c *gin.Context) (service.Viewer, bool) {
	id, role, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return service.Viewer{}, false
	}
	return service.Viewer{ID: id, Role: role}, true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
