package handler

import (
	"net/http"
	"strconv"

	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/apierror"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/dto"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/infra"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/middleware"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DrawerHandler struct {
	svc          service.DrawerService
	reports      service.ReportService
	businessName string
}

func NewDrawerHandler(svc service.DrawerService, reports service.ReportService, businessName string) *DrawerHandler {
	return &DrawerHandler{svc: svc, reports: reports, businessName: businessName}
}

// Open godoc
// @Summary Opens a cash drawer for the authenticated operator
// @Tags drawers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenDrawerRequest true "Opening data"
// @Success 201 {object} dto.DrawerResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/drawers/open [post]
func (h *DrawerHandler) Open(c *gin.Context) {
	var req dto.OpenDrawerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operatorID, err := middleware.GetClaims(c).OperatorID()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid operator id in token"))
		return
	}

	resp, err := h.svc.Open(c.Request.Context(), operatorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close godoc
// @Summary Closes the operator's drawer with the counted balance
// @Tags drawers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Drawer ID"
// @Param body body dto.CloseDrawerRequest true "Counted balance"
// @Success 200 {object} dto.DrawerResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/drawers/{id}/close [post]
func (h *DrawerHandler) Close(c *gin.Context) {
	drawerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid drawer id"))
		return
	}
	var req dto.CloseDrawerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operatorID, err := middleware.GetClaims(c).OperatorID()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid operator id in token"))
		return
	}

	resp, err := h.svc.Close(c.Request.Context(), operatorID, drawerID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reconcile godoc
// @Summary Reconciles a closed drawer against the counted balance
// @Tags drawers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Drawer ID"
// @Param body body dto.ReconcileDrawerRequest true "Counted balance and notes"
// @Success 200 {object} dto.ReconcileResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/drawers/{id}/reconcile [post]
func (h *DrawerHandler) Reconcile(c *gin.Context) {
	drawerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid drawer id"))
		return
	}
	var req dto.ReconcileDrawerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	supervisorID, err := middleware.GetClaims(c).OperatorID()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid operator id in token"))
		return
	}

	resp, err := h.svc.Reconcile(c.Request.Context(), supervisorID, drawerID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ManualTransaction godoc
// @Summary Records a manual payin, payout or adjustment on the drawer ledger
// @Tags drawers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Drawer ID"
// @Param body body dto.ManualTransactionRequest true "Manual transaction"
// @Success 201 {object} dto.LedgerEntryResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/drawers/{id}/transactions [post]
func (h *DrawerHandler) ManualTransaction(c *gin.Context) {
	drawerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid drawer id"))
		return
	}
	var req dto.ManualTransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operatorID, err := middleware.GetClaims(c).OperatorID()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid operator id in token"))
		return
	}

	resp, err := h.svc.AddManualTransaction(c.Request.Context(), operatorID, drawerID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Current returns the authenticated operator's dashboard: the open drawer (or
// none), its ledger, and today's shift figures.
func (h *DrawerHandler) Current(c *gin.Context) {
	operatorID, err := middleware.GetClaims(c).OperatorID()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid operator id in token"))
		return
	}
	resp, err := h.reports.DrawerState(c.Request.Context(), operatorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History returns a paginated list of drawers, newest first.
func (h *DrawerHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	resp, err := h.svc.History(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Report godoc
// @Summary Returns the shift report for one drawer
// @Tags drawers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Drawer ID"
// @Success 200 {object} dto.DrawerReportResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/drawers/{id}/report [get]
func (h *DrawerHandler) Report(c *gin.Context) {
	drawerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid drawer id"))
		return
	}
	resp, err := h.reports.DrawerReport(c.Request.Context(), drawerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReportPDF renders the shift report as a downloadable PDF.
func (h *DrawerHandler) ReportPDF(c *gin.Context) {
	drawerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid drawer id"))
		return
	}
	report, err := h.reports.DrawerReport(c.Request.Context(), drawerID)
	if err != nil {
		respondError(c, err)
		return
	}
	pdf, err := infra.GenerateDrawerReportPDF(report, h.businessName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=drawer-"+drawerID.String()+".pdf")
	c.Data(http.StatusOK, "application/pdf", pdf)
}
