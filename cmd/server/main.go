package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"ixiclinic-admin-go/internal/api"
	"ixiclinic-admin-go/internal/config"
	"ixiclinic-admin-go/internal/core"
	"ixiclinic-admin-go/internal/db"
	"ixiclinic-admin-go/internal/identity"
	"ixiclinic-admin-go/internal/middleware"
	"ixiclinic-admin-go/internal/paypal"
	"ixiclinic-admin-go/internal/plans"
)

func main() {
	// A local .env is a dev convenience; deployed environments set real vars.
	_ = godotenv.Load()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded",
		zap.String("port", appConfig.Port),
		zap.Bool("paypalSandbox", appConfig.PayPalSandbox),
		zap.Int("mappedPlans", len(appConfig.PlanIDs)),
	)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInit()
	if err := db.InitFirestore(initCtx, appConfig, zapLogger); err != nil {
		zapLogger.Fatal("Failed to initialize Firebase Admin SDK", zap.Error(err))
	}

	firestoreClient := db.GetFirestoreClient()
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firestoreClient == nil || firebaseAuthClient == nil {
		zapLogger.Fatal("Firestore or Firebase Auth client is nil after initialization")
	}

	// Repositories
	accountRepo := db.NewFirestoreAccountRepository(firestoreClient, zapLogger)
	patientRepo := db.NewFirestorePatientRepository(firestoreClient, zapLogger)
	clinicUserRepo := db.NewFirestoreClinicUserRepository(firestoreClient, zapLogger)
	appointmentRepo := db.NewFirestoreAppointmentRepository(firestoreClient, zapLogger)
	invoiceRepo := db.NewFirestoreInvoiceRepository(firestoreClient, zapLogger)
	purgeRepo := db.NewFirestorePurgeRepository(firestoreClient, zapLogger)
	actionRepo := db.NewFirestoreAdminActionRepository(firestoreClient, zapLogger)
	alertRepo := db.NewFirestoreAlertRepository(firestoreClient, zapLogger)

	// External clients
	identityService := identity.NewFirebaseIdentity(firebaseAuthClient, zapLogger)
	paypalClient := paypal.NewClient(appConfig.PayPalBaseURL(), appConfig.PayPalClientID, appConfig.PayPalClientSecret, zapLogger)

	// Core services
	catalog := plans.NewCatalog()
	auditService := core.NewAuditService(actionRepo)
	accountService := core.NewAccountService(
		accountRepo, patientRepo, clinicUserRepo, appointmentRepo, invoiceRepo,
		purgeRepo, identityService, catalog, auditService, zapLogger,
	)
	pricingService := core.NewPricingService(catalog, paypalClient, appConfig.PlanIDs, auditService, zapLogger)
	subscriptionService := core.NewSubscriptionService(paypalClient, appConfig.PlanIDs, auditService, zapLogger)
	metricsService := core.NewMetricsService(
		accountRepo, patientRepo, clinicUserRepo, appointmentRepo, alertRepo, catalog, zapLogger,
	)

	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()

	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	if appConfig.ClientURL != "" {
		router.Use(middleware.CORSMiddleware(appConfig))
	} else {
		zapLogger.Warn("CORS middleware skipped: CLIENT_URL is not configured")
	}

	api.SetupRoutes(
		router,
		zapLogger,
		accountService,
		auditService,
		pricingService,
		subscriptionService,
		metricsService,
	)

	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	zapLogger.Info("Starting HTTP server", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if err := firestoreClient.Close(); err != nil {
		zapLogger.Warn("Failed to close Firestore client", zap.Error(err))
	}
	zapLogger.Info("Server exiting gracefully")
}
