package handler

import (
	"net/http"

	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/apierror"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/dto"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/middleware"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct{ svc service.PaymentService }

func NewPaymentHandler(svc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// Process godoc
// @Summary Processes one payment against a sale
// @Description Declines return 200 with success=false; only transport faults
// @Description and validation failures are HTTP errors.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ProcessPaymentRequest true "Payment request"
// @Success 200 {object} dto.ProcessPaymentResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/payments [post]
func (h *PaymentHandler) Process(c *gin.Context) {
	var req dto.ProcessPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operatorID, err := middleware.GetClaims(c).OperatorID()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid operator id in token"))
		return
	}

	resp, err := h.svc.Process(c.Request.Context(), operatorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
