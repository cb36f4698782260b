package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	billingapp "github.com/Fvasquez2556/agua-loti-sub000/internal/application/billing"
	meteringapp "github.com/Fvasquez2556/agua-loti-sub000/internal/application/metering"
	registryapp "github.com/Fvasquez2556/agua-loti-sub000/internal/application/registry"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/infrastructure/auth"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/infrastructure/cache"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/infrastructure/config"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/infrastructure/fel"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/infrastructure/logger"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/infrastructure/notification"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/infrastructure/persistence"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/infrastructure/printing"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/interfaces/http/handler"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/interfaces/http/middleware"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting water billing backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	clientRepo := persistence.NewGormClientRepository(db.DB)
	readingRepo := persistence.NewGormReadingRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	sequenceRepo := persistence.NewGormSequenceRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Billing policy from config
	tariff := billing.Tariff{
		BaseFee:         decimal.NewFromFloat(cfg.Billing.BaseFee),
		AllowanceLiters: decimal.NewFromFloat(cfg.Billing.AllowanceLiters),
		SurchargeRate:   decimal.NewFromFloat(cfg.Billing.SurchargeRate),
	}
	moraPolicy := billing.MoraPolicy{
		MonthlyRate: decimal.NewFromFloat(cfg.Billing.MoraMonthlyRate),
	}

	// Optional collaborators: certification, ticket rendering, notifications.
	// All of them are best-effort side channels the services tolerate as nil.
	var certifier billing.Certifier
	if cfg.Certification.Enabled {
		httpCertifier, err := fel.NewHTTPCertifier(cfg.Certification)
		if err != nil {
			log.Fatal("Failed to initialize certifier", zap.Error(err))
		}
		certifier = httpCertifier
		log.Info("FEL certification enabled", zap.String("base_url", cfg.Certification.BaseURL))
	}

	var renderer billing.TicketRenderer
	ticketRenderer, err := printing.NewFileTicketRenderer(cfg.Printing, log)
	if err != nil {
		log.Warn("Ticket rendering disabled", zap.Error(err))
	} else {
		renderer = ticketRenderer
	}

	var notifier billing.NotificationSender
	if cfg.Mail.Enabled {
		emailSender, err := notification.NewEmailSender(cfg.Mail, log)
		if err != nil {
			log.Warn("Email notifications disabled", zap.Error(err))
		} else {
			notifier = emailSender
		}
	}

	// Application services
	numbers := billingapp.NewNumberGenerator(sequenceRepo, invoiceRepo, log)
	clientService := registryapp.NewClientService(clientRepo, log)
	readingService := meteringapp.NewReadingService(readingRepo, clientRepo, log)
	invoiceService := billingapp.NewInvoiceService(
		invoiceRepo, readingRepo, clientRepo, numbers, certifier,
		tariff, moraPolicy, cfg.Billing.DueInDays, log,
	)
	paymentService := billingapp.NewPaymentService(
		txScope, clientRepo, certifier, renderer, notifier, moraPolicy, log,
	)
	reconnectionService := billingapp.NewReconnectionService(
		txScope, numbers, certifier, moraPolicy,
		decimal.NewFromFloat(cfg.Billing.ReconnectionFee), cfg.Billing.OverdueThreshold, log,
	)
	noteService := billingapp.NewNoteService(invoiceRepo, numbers, certifier, log)
	maintenanceService := billingapp.NewMaintenanceService(txScope, log)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		blacklist = redisBlacklist
	}

	// Idempotency store guarding payment and reconnection retries
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// HTTP handlers
	clientHandler := handler.NewClientHandler(clientService)
	readingHandler := handler.NewReadingHandler(readingService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	noteHandler := handler.NewNoteHandler(noteService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	reconnectionHandler := handler.NewReconnectionHandler(reconnectionService)
	maintenanceHandler := handler.NewMaintenanceHandler(maintenanceService)
	systemHandler := handler.NewSystemHandler(db.DB)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check outside API versioning and authentication
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	r.Use(middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/api/v1/system/info",
		},
		Logger: log,
	}))

	idempotency := middleware.Idempotency(middleware.IdempotencyConfig{
		Store:  idempotencyStore,
		Logger: log,
	})

	// Client registry
	registryRoutes := router.NewDomainGroup("registry", "/registry")
	registryRoutes.POST("/clients", clientHandler.Create)
	registryRoutes.GET("/clients", clientHandler.List)
	registryRoutes.GET("/clients/:id", clientHandler.GetByID)
	registryRoutes.PUT("/clients/:id/contact", clientHandler.UpdateContact)
	registryRoutes.POST("/clients/:id/suspend", clientHandler.Suspend)
	registryRoutes.POST("/clients/:id/activate", clientHandler.Activate)
	registryRoutes.POST("/clients/:id/deactivate", clientHandler.Deactivate)

	// Meter readings
	meteringRoutes := router.NewDomainGroup("metering", "/metering")
	meteringRoutes.POST("/readings", readingHandler.Capture)
	meteringRoutes.GET("/readings/:id", readingHandler.GetByID)
	meteringRoutes.POST("/readings/:id/process", readingHandler.Process)
	meteringRoutes.POST("/readings/:id/correct", readingHandler.Correct)
	meteringRoutes.GET("/clients/:clientId/readings", readingHandler.ListByClient)

	// Billing: invoices, notes, payments, reconnections
	billingRoutes := router.NewDomainGroup("billing", "/billing")
	billingRoutes.POST("/invoices", invoiceHandler.Generate)
	billingRoutes.GET("/invoices/:id", invoiceHandler.GetByID)
	billingRoutes.POST("/invoices/:id/void", invoiceHandler.Void)
	billingRoutes.GET("/invoices/:id/mora", invoiceHandler.AssessMora)
	billingRoutes.POST("/invoices/:id/annul", noteHandler.AnnulCertified)
	billingRoutes.GET("/clients/:clientId/invoices", invoiceHandler.ListByClient)

	billingRoutes.POST("/notes", noteHandler.Issue)

	billingRoutes.POST("/payments", idempotency, paymentHandler.Register)
	billingRoutes.GET("/payments/:id", paymentHandler.GetByID)
	billingRoutes.POST("/payments/:id/confirm", paymentHandler.ConfirmCheck)
	billingRoutes.POST("/payments/:id/cancel", paymentHandler.Cancel)
	billingRoutes.POST("/certifications/retry", paymentHandler.RetryCertifications)

	billingRoutes.GET("/clients/:clientId/reconnection/check", reconnectionHandler.Check)
	billingRoutes.GET("/clients/:clientId/reconnection/quote", reconnectionHandler.Quote)
	billingRoutes.GET("/clients/:clientId/reconnections", reconnectionHandler.History)
	billingRoutes.POST("/reconnections", idempotency, reconnectionHandler.Process)

	// Maintenance: cascade deletion, gated by capability
	maintenanceRoutes := router.NewDomainGroup("maintenance", "/maintenance")
	maintenanceRoutes.Use(middleware.RequirePermission(auth.PermissionInvoicesManage,
		middleware.PermissionConfig{Logger: log}))
	maintenanceRoutes.POST("/invoices/delete", maintenanceHandler.DeleteInvoices)

	// System
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)

	r.Register(registryRoutes).
		Register(meteringRoutes).
		Register(billingRoutes).
		Register(maintenanceRoutes).
		Register(systemRoutes)

	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
