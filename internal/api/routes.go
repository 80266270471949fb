package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ixiclinic-admin-go/internal/core"
	"ixiclinic-admin-go/internal/db"
	"ixiclinic-admin-go/internal/middleware"
)

// SetupRoutes configures all dashboard routes. Global middleware (logging,
// recovery, CORS) is applied to the router before this is called, in main.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	accountService core.AccountService,
	auditService core.AuditService,
	pricingService core.PricingService,
	subscriptionService core.SubscriptionService,
	metricsService core.MetricsService,
) {
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firebaseAuthClient == nil {
		logger.Fatal("Firebase Auth client is not initialized, routes cannot be secured")
	}
	authMW := middleware.NewAuthMiddleware(firebaseAuthClient, logger)

	accountHandler := NewAccountHandler(accountService, logger)
	tenantHandler := NewTenantHandler(accountService, auditService, logger)
	planHandler := NewPlanHandler(pricingService, logger)
	subscriptionHandler := NewSubscriptionHandler(subscriptionService, logger)
	metricsHandler := NewMetricsHandler(metricsService, logger)

	// Every dashboard route requires an authenticated admin.
	apiV1 := router.Group("/api/v1", authMW.RequireAdmin())
	{
		accounts := apiV1.Group("/accounts")
		{
			accounts.GET("", accountHandler.ListAccounts)
			accounts.POST("", accountHandler.CreateAccount)
			accounts.GET("/:accountId", accountHandler.GetAccount)
			accounts.PUT("/:accountId", accountHandler.UpdateAccount)
			accounts.DELETE("/:accountId", accountHandler.DeleteAccount)

			accounts.GET("/:accountId/summary", tenantHandler.GetSummary)
			accounts.GET("/:accountId/patients", tenantHandler.ListPatients)
			accounts.GET("/:accountId/users", tenantHandler.ListUsers)
			accounts.GET("/:accountId/appointments", tenantHandler.ListAppointments)
			accounts.GET("/:accountId/invoices", tenantHandler.ListInvoices)
			accounts.GET("/:accountId/actions", tenantHandler.ListActions)

			membership := accounts.Group("/:accountId/membership")
			{
				membership.POST("/free", tenantHandler.AssignFreeMembership)
				membership.POST("/extend-trial", tenantHandler.ExtendTrial)
				membership.POST("/extend", tenantHandler.ExtendMembership)
				membership.POST("/change-plan", tenantHandler.ChangePlan)
			}

			accounts.POST("/:accountId/owner", tenantHandler.AssignOwner)
			accounts.DELETE("/:accountId/owner", tenantHandler.UnassignOwner)
		}

		plansGroup := apiV1.Group("/plans")
		{
			plansGroup.GET("", planHandler.ListPlans)
			plansGroup.GET("/reconcile", planHandler.Reconcile)
			plansGroup.POST("/reconcile/apply", planHandler.ApplyDifferences)
			plansGroup.GET("/:planName", planHandler.GetPlan)
			plansGroup.GET("/:planName/price", planHandler.GetEffectivePrice)
			plansGroup.PUT("/:planName/price", planHandler.UpdatePlanPrice)
		}

		subscriptions := apiV1.Group("/subscriptions")
		{
			subscriptions.GET("", subscriptionHandler.ListSubscriptions)
			subscriptions.GET("/problems", subscriptionHandler.ListProblems)
			subscriptions.GET("/metrics", subscriptionHandler.GetUsageMetrics)
			subscriptions.GET("/:subscriptionId", subscriptionHandler.GetSubscription)
			subscriptions.POST("/:subscriptionId/cancel", subscriptionHandler.Cancel)
			subscriptions.POST("/:subscriptionId/suspend", subscriptionHandler.Suspend)
			subscriptions.POST("/:subscriptionId/activate", subscriptionHandler.Activate)
			subscriptions.POST("/:subscriptionId/revise", subscriptionHandler.Revise)
			subscriptions.GET("/:subscriptionId/transactions", subscriptionHandler.ListTransactions)
		}

		webhookEvents := apiV1.Group("/webhook-events")
		{
			webhookEvents.GET("", subscriptionHandler.ListWebhookEvents)
			webhookEvents.GET("/:eventId", subscriptionHandler.GetWebhookEvent)
		}

		metrics := apiV1.Group("/metrics")
		{
			metrics.GET("/dashboard", metricsHandler.GetDashboardMetrics)
			metrics.GET("/quick-stats", metricsHandler.GetQuickStats)
		}

		alerts := apiV1.Group("/alerts")
		{
			alerts.GET("", metricsHandler.ListAlerts)
			alerts.POST("/:alertId/resolve", metricsHandler.ResolveAlert)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	logger.Info("API routes configured under /api/v1 and /health")
}
