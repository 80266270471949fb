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
	"ixiclinic-admin-go/internal/paypal"
)

// SubscriptionHandler handles the provider-side subscription endpoints.
type SubscriptionHandler struct {
	subscriptionService core.SubscriptionService
	logger              *zap.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(ss core.SubscriptionService, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: ss, logger: logger}
}

func (h *SubscriptionHandler) mapSubscriptionErrorToStatus(c *gin.Context, err error) {
	if errors.Is(err, paypal.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Subscription resource not found", Details: err.Error()})
		return
	}
	h.logger.Error("subscription handler internal error", zap.Error(err))
	c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Payment provider request failed"})
}

// ListSubscriptions handles GET /subscriptions (?status=).
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	subs, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.mapSubscriptionErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

// ListProblems handles GET /subscriptions/problems: subscriptions with failed
// payments or outstanding balances.
func (h *SubscriptionHandler) ListProblems(c *gin.Context) {
	subs, err := h.subscriptionService.ProblemSubscriptions(c.Request.Context())
	if err != nil {
		h.mapSubscriptionErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

// GetUsageMetrics handles GET /subscriptions/metrics: counts and revenue
// across every configured plan.
func (h *SubscriptionHandler) GetUsageMetrics(c *gin.Context) {
	usage, err := h.subscriptionService.UsageMetrics(c.Request.Context())
	if err != nil {
		h.mapSubscriptionErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, usage)
}

// GetSubscription handles GET /subscriptions/:subscriptionId.
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	sub, err := h.subscriptionService.GetSubscription(c.Request.Context(), c.Param("subscriptionId"))
	if err != nil {
		h.mapSubscriptionErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"subscription": sub,
		"localStatus":  core.LocalSubscriptionStatus(sub.Status),
	})
}

func (h *SubscriptionHandler) lifecycleAction(c *gin.Context, call func(ctx *gin.Context, adminID, subID, reason string) error, message string) {
	var req models.SubscriptionActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	if err := call(c, c.GetString(middleware.ContextAdminID), c.Param("subscriptionId"), req.Reason); err != nil {
		h.mapSubscriptionErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// Cancel handles POST /subscriptions/:subscriptionId/cancel.
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	h.lifecycleAction(c, func(ctx *gin.Context, adminID, subID, reason string) error {
		return h.subscriptionService.CancelSubscription(ctx.Request.Context(), adminID, subID, reason)
	}, "Subscription cancelled")
}

// Suspend handles POST /subscriptions/:subscriptionId/suspend.
func (h *SubscriptionHandler) Suspend(c *gin.Context) {
	h.lifecycleAction(c, func(ctx *gin.Context, adminID, subID, reason string) error {
		return h.subscriptionService.SuspendSubscription(ctx.Request.Context(), adminID, subID, reason)
	}, "Subscription suspended")
}

// Activate handles POST /subscriptions/:subscriptionId/activate.
func (h *SubscriptionHandler) Activate(c *gin.Context) {
	h.lifecycleAction(c, func(ctx *gin.Context, adminID, subID, reason string) error {
		return h.subscriptionService.ActivateSubscription(ctx.Request.Context(), adminID, subID, reason)
	}, "Subscription activated")
}

// Revise handles POST /subscriptions/:subscriptionId/revise.
func (h *SubscriptionHandler) Revise(c *gin.Context) {
	var req models.ReviseSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	if err := h.subscriptionService.ReviseSubscription(c.Request.Context(), c.GetString(middleware.ContextAdminID), c.Param("subscriptionId"), req.PlanID); err != nil {
		h.mapSubscriptionErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Subscription revised"})
}

// ListTransactions handles GET /subscriptions/:subscriptionId/transactions
// (?days=N, default 90).
func (h *SubscriptionHandler) ListTransactions(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "90"))
	txns, err := h.subscriptionService.ListTransactions(c.Request.Context(), c.Param("subscriptionId"), days)
	if err != nil {
		h.mapSubscriptionErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, txns)
}

// ListWebhookEvents handles GET /webhook-events (?pageSize=N).
func (h *SubscriptionHandler) ListWebhookEvents(c *gin.Context) {
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	events, err := h.subscriptionService.ListWebhookEvents(c.Request.Context(), pageSize)
	if err != nil {
		h.mapSubscriptionErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// GetWebhookEvent handles GET /webhook-events/:eventId.
func (h *SubscriptionHandler) GetWebhookEvent(c *gin.Context) {
	event, err := h.subscriptionService.GetWebhookEvent(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		h.mapSubscriptionErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}
