package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/audit"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/auth"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/exchange"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/fees"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/handler"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/kyc"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/metrics"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/middleware"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/notification"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/payment"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/profit"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/repository/postgres"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/settlement"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/transfer"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/wallet"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/cache"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/config"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/mailer"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/validator"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New("wallet-platform")

	if err := cfg.ValidateCore(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Starting wallet platform", map[string]interface{}{
		"port": cfg.Server.Port,
	})

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	log.Info("Database connected", nil)

	redisCache, err := cache.NewRedisCache(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal("Failed to connect to Redis", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer redisCache.Close()
	redisClient := redisCache.Client()

	log.Info("Redis connected", nil)

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	walletRepo := postgres.NewWalletRepository(db)
	txRepo := postgres.NewTransactionRepository(db)
	settlementRepo := postgres.NewSettlementRepository(db)
	agentCashRepo := postgres.NewAgentCashRepository(db)
	feeRepo := postgres.NewFeeSettingsRepository(db)
	exchangeRepo := postgres.NewExchangeRateRepository(db)
	kycRepo := postgres.NewKYCRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	profitRepo := postgres.NewProfitRepository(db)
	txm := postgres.NewTxManager(db)

	// Metrics
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// Notifications
	var mail *mailer.Mailer
	if cfg.Email.SMTPUsername != "" {
		mail = mailer.New(mailer.Config{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.SMTPUsername,
			Password: cfg.Email.SMTPPassword,
			From:     cfg.Email.SMTPFrom,
			UseTLS:   cfg.Email.SMTPUseTLS,
		})
	}
	hub := notification.NewHub(log)
	notifier := notification.NewService(hub, mail, userRepo, log)

	// Services
	feeService := fees.NewService(feeRepo, redisCache, log)
	exchangeService := exchange.NewService(exchangeRepo, redisCache, txm, log)
	otpStore := transfer.NewRedisStore(redisCache)
	transferService := transfer.NewService(
		userRepo, walletRepo, txRepo, profitRepo,
		feeService, txm, otpStore, notifier, m, cfg.Transfer, log,
	)
	paymentService := payment.NewService(
		userRepo, walletRepo, txRepo, agentCashRepo, profitRepo,
		feeService, txm, notifier, m, log,
	)
	settlementService := settlement.NewService(
		settlementRepo, walletRepo, agentCashRepo, profitRepo,
		feeService, txm, notifier, m, log,
	)
	authService := auth.NewService(userRepo, walletRepo, txm, cfg.JWT, log)
	walletService := wallet.NewService(walletRepo, txRepo)
	kycService := kyc.NewService(kycRepo, userRepo, txm, notifier, log)
	auditService := audit.NewService(auditRepo, log)
	profitService := profit.NewService(profitRepo, txm, log)

	// Handlers
	val := validator.New()
	blacklist := middleware.NewRedisTokenBlacklist(redisClient)
	authHandler := handler.NewAuthHandler(authService, blacklist, val, log)
	walletHandler := handler.NewWalletHandler(walletService, log)
	transferHandler := handler.NewTransferHandler(transferService, val, log)
	paymentHandler := handler.NewPaymentHandler(paymentService, val, log)
	settlementHandler := handler.NewSettlementHandler(settlementService, val, log)
	feesHandler := handler.NewFeesHandler(feeService, val, log)
	exchangeHandler := handler.NewExchangeHandler(exchangeService, val, log)
	kycHandler := handler.NewKYCHandler(kycService, val, log)
	auditHandler := handler.NewAuditHandler(auditService, log)
	profitHandler := handler.NewProfitHandler(profitService, val, log)
	wsHandler := handler.NewWSHandler(hub, log)
	systemHandler := handler.NewSystemHandler(db, redisClient, log)

	// Router
	r := mux.NewRouter()

	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CorrelationID)
	r.Use(middleware.NewLoggingMiddleware(log).Log)
	r.Use(middleware.NewMetricsMiddleware(m).Measure)
	r.Use(middleware.BodyLimit(1 << 20))
	r.Use(middleware.NewRateLimiter(redisClient, cfg.RateLimit.PublicPerMinute, time.Minute).Limit)

	authMW := middleware.NewAuthMiddleware(cfg.JWT.Secret, blacklist)
	idemMW := middleware.NewIdempotencyMiddleware(redisClient, 24*time.Hour)
	auditMW := middleware.NewAuditMiddleware(auditService)

	// Probes and metrics (no auth)
	r.HandleFunc("/health", systemHandler.Health).Methods("GET")
	r.HandleFunc("/ready", systemHandler.Ready).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods("GET")

	// Public API
	public := r.PathPrefix("/api/v1").Subrouter()
	public.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	public.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	public.HandleFunc("/exchange-rates", exchangeHandler.Rates).Methods("GET")

	// Authenticated API
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(authMW.Authenticate)
	api.Use(middleware.NewRateLimiter(redisClient, cfg.RateLimit.AuthedPerMinute, time.Minute).Limit)

	api.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")
	api.HandleFunc("/wallets", walletHandler.Balances).Methods("GET")
	api.HandleFunc("/wallets/{id}/history", walletHandler.History).Methods("GET")
	api.HandleFunc("/fees", feesHandler.Settings).Methods("GET")
	api.HandleFunc("/fees/quote", feesHandler.Quote).Methods("GET")
	api.HandleFunc("/kyc", kycHandler.Submit).Methods("POST")
	api.HandleFunc("/kyc/status", kycHandler.Status).Methods("GET")
	api.HandleFunc("/ws", wsHandler.Connect).Methods("GET")

	// Money movement goes through the idempotency gate.
	api.Handle("/transfers/initiate", idemMW.Require(http.HandlerFunc(transferHandler.Initiate))).Methods("POST")
	api.Handle("/transfers/confirm", idemMW.Require(http.HandlerFunc(transferHandler.Confirm))).Methods("POST")
	api.HandleFunc("/transfers/resend", transferHandler.Resend).Methods("POST")
	api.Handle("/payments/qr", idemMW.Require(http.HandlerFunc(paymentHandler.PayQR))).Methods("POST")

	// Agent API
	agent := api.PathPrefix("/agent").Subrouter()
	agent.Use(authMW.RequireRole(domain.RoleAgent))
	agent.Handle("/deposits", idemMW.Require(http.HandlerFunc(paymentHandler.Deposit))).Methods("POST")
	agent.Handle("/withdrawals", idemMW.Require(http.HandlerFunc(paymentHandler.Withdraw))).Methods("POST")
	agent.HandleFunc("/settlements", settlementHandler.Create).Methods("POST")
	agent.HandleFunc("/settlements", settlementHandler.ListMine).Methods("GET")

	// Admin API
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(authMW.RequireRole(domain.RoleAdmin))
	admin.Use(auditMW.Record)
	admin.HandleFunc("/settlements", settlementHandler.Action).Methods("POST")
	admin.HandleFunc("/settlements/all", settlementHandler.ListAll).Methods("GET")
	admin.HandleFunc("/agents/with-cash", settlementHandler.AgentsWithCash).Methods("GET")
	admin.HandleFunc("/fees", feesHandler.UpdateSettings).Methods("PUT")
	admin.HandleFunc("/exchange-rates", exchangeHandler.SetRates).Methods("POST")
	admin.HandleFunc("/exchange-rates/history", exchangeHandler.History).Methods("GET")
	admin.HandleFunc("/kyc/pending", kycHandler.Pending).Methods("GET")
	admin.HandleFunc("/kyc/review", kycHandler.Review).Methods("POST")
	admin.HandleFunc("/audit-logs", auditHandler.List).Methods("GET")
	admin.HandleFunc("/platform-profits", profitHandler.Overview).Methods("GET")
	admin.HandleFunc("/platform-profits", profitHandler.Withdraw).Methods("POST")

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Wallet platform started", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down wallet platform...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Wallet platform forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Wallet platform stopped gracefully", nil)
}
