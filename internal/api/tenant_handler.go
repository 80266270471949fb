package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ixiclinic-admin-go/internal/core"
	"ixiclinic-admin-go/internal/middleware"
	"ixiclinic-admin-go/internal/models"
)

// TenantHandler handles the per-account detail endpoints: child records,
// membership operations and owner linking.
type TenantHandler struct {
	accountService core.AccountService
	auditService   core.AuditService
	logger         *zap.Logger
}

// NewTenantHandler creates a new TenantHandler.
func NewTenantHandler(as core.AccountService, aus core.AuditService, logger *zap.Logger) *TenantHandler {
	return &TenantHandler{accountService: as, auditService: aus, logger: logger}
}

func (h *TenantHandler) mapTenantErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrAccountNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrAccountNotFound.Error()}
	case errors.Is(err, core.ErrUnknownPlan):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Unknown plan", Details: err.Error()}
	case errors.Is(err, core.ErrOwnerUserNotFound):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Owner user not found", Details: err.Error()}
	case errors.Is(err, core.ErrNoOwnerLinked):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: core.ErrNoOwnerLinked.Error()}
	default:
		h.logger.Error("tenant handler internal error", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// GetSummary handles GET /accounts/:accountId/summary.
func (h *TenantHandler) GetSummary(c *gin.Context) {
	summary, err := h.accountService.GetAccountSummary(c.Request.Context(), c.Param("accountId"))
	if err != nil {
		h.mapTenantErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ListPatients handles GET /accounts/:accountId/patients.
func (h *TenantHandler) ListPatients(c *gin.Context) {
	patients, err := h.accountService.ListPatients(c.Request.Context(), c.Param("accountId"))
	if err != nil {
		h.mapTenantErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, patients)
}

// ListUsers handles GET /accounts/:accountId/users.
func (h *TenantHandler) ListUsers(c *gin.Context) {
	users, err := h.accountService.ListUsers(c.Request.Context(), c.Param("accountId"))
	if err != nil {
		h.mapTenantErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// ListAppointments handles GET /accounts/:accountId/appointments.
func (h *TenantHandler) ListAppointments(c *gin.Context) {
	appointments, err := h.accountService.ListAppointments(c.Request.Context(), c.Param("accountId"))
	if err != nil {
		h.mapTenantErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

// ListInvoices handles GET /accounts/:accountId/invoices.
func (h *TenantHandler) ListInvoices(c *gin.Context) {
	invoices, err := h.accountService.ListInvoices(c.Request.Context(), c.Param("accountId"))
	if err != nil {
		h.mapTenantErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// ListActions handles GET /accounts/:accountId/actions (the audit trail).
func (h *TenantHandler) ListActions(c *gin.Context) {
	actions, err := h.auditService.ListByAccount(c.Request.Context(), c.Param("accountId"))
	if err != nil {
		h.mapTenantErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, actions)
}

// AssignFreeMembership handles POST /accounts/:accountId/membership/free.
func (h *TenantHandler) AssignFreeMembership(c *gin.Context) {
	var req models.FreeMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	if err := h.accountService.AssignFreeMembership(c.Request.Context(), c.GetString(middleware.ContextAdminID), c.Param("accountId"), req); err != nil {
		h.mapTenantErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Free membership assigned"})
}

// ExtendTrial handles POST /accounts/:accountId/membership/extend-trial.
func (h *TenantHandler) ExtendTrial(c *gin.Context) {
	var req models.ExtendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	if err := h.accountService.ExtendTrial(c.Request.Context(), c.GetString(middleware.ContextAdminID), c.Param("accountId"), req); err != nil {
		h.mapTenantErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Trial extended"})
}

// ExtendMembership handles POST /accounts/:accountId/membership/extend.
func (h *TenantHandler) ExtendMembership(c *gin.Context) {
	var req models.ExtendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	if err := h.accountService.ExtendMembership(c.Request.Context(), c.GetString(middleware.ContextAdminID), c.Param("accountId"), req); err != nil {
		h.mapTenantErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Membership extended"})
}

// ChangePlan handles POST /accounts/:accountId/membership/change-plan.
func (h *TenantHandler) ChangePlan(c *gin.Context) {
	var req models.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	if err := h.accountService.ChangePlan(c.Request.Context(), c.GetString(middleware.ContextAdminID), c.Param("accountId"), req); err != nil {
		h.mapTenantErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Plan changed"})
}

// AssignOwner handles POST /accounts/:accountId/owner.
func (h *TenantHandler) AssignOwner(c *gin.Context) {
	var req models.AssignOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	if err := h.accountService.AssignOwner(c.Request.Context(), c.GetString(middleware.ContextAdminID), c.Param("accountId"), req); err != nil {
		h.mapTenantErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Owner assigned"})
}

// UnassignOwner handles DELETE /accounts/:accountId/owner.
func (h *TenantHandler) UnassignOwner(c *gin.Context) {
	var req models.UnassignOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	if err := h.accountService.UnassignOwner(c.Request.Context(), c.GetString(middleware.ContextAdminID), c.Param("accountId"), req); err != nil {
		h.mapTenantErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Owner unassigned"})
}
