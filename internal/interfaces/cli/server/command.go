// Package server implements the `server` CLI command: it wires the full
// pipeline (repositories, use cases, worker pool, scheduler, HTTP) and runs
// it until interrupted.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	appnotif "nomadly/internal/application/notification"
	paymentUC "nomadly/internal/application/payment/usecases"
	regUC "nomadly/internal/application/registration/usecases"
	"nomadly/internal/infrastructure/cache"
	"nomadly/internal/infrastructure/config"
	"nomadly/internal/infrastructure/database"
	"nomadly/internal/infrastructure/dnsprovider"
	"nomadly/internal/infrastructure/email"
	"nomadly/internal/infrastructure/exchangerate"
	"nomadly/internal/infrastructure/migration"
	"nomadly/internal/infrastructure/paymentgateway"
	"nomadly/internal/infrastructure/registrar"
	"nomadly/internal/infrastructure/repository"
	"nomadly/internal/infrastructure/scheduler"
	"nomadly/internal/infrastructure/telegram"
	httpRouter "nomadly/internal/interfaces/http"
	"nomadly/internal/interfaces/http/handlers"
	"nomadly/internal/shared/goroutine"
	"nomadly/internal/shared/logger"
)

var (
	env         string
	autoMigrate bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the payment fulfillment server with the configured gateway, registrar, and DNS integrations.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run pending database migrations on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Server.Mode = mapEnvToGinMode(env)

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode == "debug"); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	log := logger.NewLogger()
	log.Infow("starting server", "environment", env)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	if autoMigrate {
		if err := migration.Up(database.Get(), ""); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Infow("migrations applied")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	db := database.Get()
	orderRepo := repository.NewOrderRepository(db)
	domainRepo := repository.NewDomainRepository(db)
	walletRepo := repository.NewWalletTransactionRepository(db)
	contactRepo := repository.NewContactRepository(db)
	recordRepo := repository.NewNotificationRecordRepository(db)

	registrarClient := registrar.NewOpenProviderClient(&cfg.Registrar, log.Named("registrar"))
	dnsClient := dnsprovider.NewCloudflareClient(&cfg.DNSProvider, log.Named("dns"))
	gatewayClient := paymentgateway.NewBlockBeeClient(&cfg.Gateway, log.Named("gateway"))
	rateService := exchangerate.NewCoinGeckoService(&cfg.ExchangeRate, log.Named("rates"))
	chatSender := telegram.NewBotService(&cfg.Telegram, log.Named("telegram"))
	emailSender := email.NewSMTPSender(&cfg.Email, log.Named("email"))

	dispatcher := appnotif.NewDispatcher(chatSender, emailSender, recordRepo, log)

	fulfillUC := regUC.NewFulfillDomainOrderUseCase(
		domainRepo,
		contactRepo,
		registrarClient,
		dnsClient,
		cfg.Registrar.DefaultNameservers,
		log,
	)
	fulfillUC.SetContactCache(cache.NewContactHandleStore(redisClient))
	fulfillUC.SetDefaultRecordIP(cfg.DNSProvider.DefaultRecordIP)

	tolerance := decimal.New(int64(cfg.Payment.ToleranceUSDCents), -2)
	reconcileUC := paymentUC.NewReconcileUseCase(walletRepo, rateService, tolerance, log)

	confirmUC := paymentUC.NewHandleConfirmationUseCase(
		orderRepo,
		reconcileUC,
		fulfillUC,
		dispatcher,
		cfg.Payment.ConfirmationThresholds,
		cfg.Payment.DefaultConfirmations,
		time.Duration(cfg.Payment.FulfillmentBudgetSeconds)*time.Second,
		log,
	)

	createOrderUC := paymentUC.NewCreatePaymentOrderUseCase(
		orderRepo,
		gatewayClient,
		rateService,
		cfg.Gateway.CallbackURL,
		log,
	)

	retryUC := paymentUC.NewRetryIncompleteRegistrationsUseCase(orderRepo, fulfillUC, dispatcher, log)
	updateNSUC := regUC.NewUpdateNameserversUseCase(domainRepo, registrarClient, log)

	pool := goroutine.NewPool(cfg.Payment.WorkerPoolSize, cfg.Payment.WorkerQueueSize, log)
	defer pool.Stop()

	schedulerManager, err := scheduler.NewSchedulerManager(log)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := schedulerManager.RegisterRegistrationRetryJob(retryUC, 5*time.Minute); err != nil {
		return fmt.Errorf("failed to register retry job: %w", err)
	}
	schedulerManager.Start()
	defer func() {
		if err := schedulerManager.Stop(); err != nil {
			log.Errorw("failed to stop scheduler", "error", err)
		}
	}()

	processTimeout := time.Duration(cfg.Payment.FulfillmentBudgetSeconds+5) * time.Second
	webhookHandler := handlers.NewWebhookHandler(confirmUC, pool, processTimeout, log)
	orderHandler := handlers.NewOrderHandler(createOrderUC, log)
	domainHandler := handlers.NewDomainHandler(updateNSUC, log)
	healthHandler := handlers.NewHealthHandler("1.0.0")

	router := httpRouter.NewRouter(webhookHandler, orderHandler, domainHandler, healthHandler, log)
	router.SetupRoutes(cfg)

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	goroutine.SafeGo(log, "http-server", func() {
		log.Infow("server starting", "address", cfg.Server.GetAddr(), "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", "error", err)
		}
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
