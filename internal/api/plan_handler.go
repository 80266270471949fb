package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ixiclinic-admin-go/internal/core"
	"ixiclinic-admin-go/internal/middleware"
	"ixiclinic-admin-go/internal/models"
	"ixiclinic-admin-go/internal/plans"
)

// PlanHandler handles the plan catalog and pricing endpoints.
type PlanHandler struct {
	pricingService core.PricingService
	logger         *zap.Logger
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(ps core.PricingService, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{pricingService: ps, logger: logger}
}

func (h *PlanHandler) mapPlanErrorToStatus(c *gin.Context, err error) {
	if errors.Is(err, plans.ErrPlanNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: plans.ErrPlanNotFound.Error()})
		return
	}
	h.logger.Error("plan handler internal error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
}

// ListPlans handles GET /plans (?type=&tier=).
func (h *PlanHandler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, h.pricingService.ListPlans(c.Request.Context(), c.Query("type"), c.Query("tier")))
}

// GetPlan handles GET /plans/:planName.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	plan, err := h.pricingService.GetPlan(c.Request.Context(), c.Param("planName"))
	if err != nil {
		h.mapPlanErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// GetEffectivePrice handles GET /plans/:planName/price?users=N, applying
// volume discounts for the given seat count.
func (h *PlanHandler) GetEffectivePrice(c *gin.Context) {
	users, err := strconv.Atoi(c.DefaultQuery("users", "1"))
	if err != nil || users < 1 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "users must be a positive integer"})
		return
	}

	name := c.Param("planName")
	price, err := h.pricingService.EffectivePrice(c.Request.Context(), name, users)
	if err != nil {
		h.mapPlanErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": name, "users": users, "price": price})
}

// UpdatePlanPrice handles PUT /plans/:planName/price.
func (h *PlanHandler) UpdatePlanPrice(c *gin.Context) {
	var req models.UpdatePlanPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	plan, err := h.pricingService.UpdatePlanPrice(c.Request.Context(), c.GetString(middleware.ContextAdminID), c.Param("planName"), req)
	if err != nil {
		h.mapPlanErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Reconcile handles GET /plans/reconcile: compare local prices with the
// payment provider and report mismatches.
func (h *PlanHandler) Reconcile(c *gin.Context) {
	report, err := h.pricingService.Reconcile(c.Request.Context())
	if err != nil {
		h.mapPlanErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ApplyDifferences handles POST /plans/reconcile/apply: push local prices to
// the provider for every mismatch.
func (h *PlanHandler) ApplyDifferences(c *gin.Context) {
	report, err := h.pricingService.ApplyDifferences(c.Request.Context(), c.GetString(middleware.ContextAdminID))
	if err != nil {
		h.mapPlanErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
