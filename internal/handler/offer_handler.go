package handler

import (
	"net/http"

	"nextmove-cargo/internal/middleware"
	"nextmove-cargo/internal/model"
	"nextmove-cargo/internal/service"
	"nextmove-cargo/pkg/response"

	"github.com/gin-gonic/gin"
)

type OfferHandler struct {
	automation service.AutomationService
}

func NewOfferHandler(automation service.AutomationService) *OfferHandler {
	return &OfferHandler{automation: automation}
}

func (h *OfferHandler) RegisterRoutes(router *gin.RouterGroup) {
	rfqs := router.Group("/api/rfqs")
	rfqs.Use(middleware.RequireRole(model.RoleClient))
	{
		rfqs.POST("/:id/offers/:offerId/accept", h.AcceptOffer)
	}
}

// AcceptOffer godoc
// @Summary      Accept an offer
// @Description  Accepts the offer, rejects the other pending offers on the request and creates the shipment.
// @Description  Repeating the call returns the existing shipment with already_processed=true.
// @Tags         offers
// @Security     BearerAuth
// @Produce      json
// @Param        id       path      string  true  "RFQ ID"
// @Param        offerId  path      string  true  "Offer ID"
// @Success      201      {object}  response.Response{data=service.AcceptanceResult}
// @Success      200      {object}  response.Response{data=service.AcceptanceResult}
// @Failure      409      {object}  response.Response
// @Router       /api/rfqs/{id}/offers/{offerId}/accept [post]
func (h *OfferHandler) AcceptOffer(c *gin.Context) {
	v, ok := viewer(c)
	if !ok {
		return
	}
	rfqID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	offerID, ok := uuidParam(c, "offerId")
	if !ok {
		return
	}

	result, err := h.automation.HandleOfferAcceptance(c.Request.Context(), offerID, rfqID, &v.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusCreated
	if result.AlreadyProcessed {
		status = http.StatusOK
	}
	c.JSON(status, response.Success(status, result))
}
