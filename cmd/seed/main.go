// Seeding tool for local development: creates the admin account, a demo
// agent and merchant, default fee settings, and initial exchange rates.
//
// Env overrides:
//
//	SEED_ADMIN_PHONE=+963991111111 SEED_ADMIN_PASSWORD=Admin123!
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/kanawattown-a11y/bank-basha-sub000/internal/domain"
	"github.com/kanawattown-a11y/bank-basha-sub000/internal/repository/postgres"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/config"
	"github.com/kanawattown-a11y/bank-basha-sub000/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log := logger.New("seed")

	cfg := config.Load()
	if err := cfg.ValidateCore(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{"error": err.Error()})
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	walletRepo := postgres.NewWalletRepository(db)
	feeRepo := postgres.NewFeeSettingsRepository(db)
	exchangeRepo := postgres.NewExchangeRateRepository(db)
	ctx := context.Background()

	adminID := ensureUser(ctx, userRepo, walletRepo, log,
		getenv("SEED_ADMIN_PHONE", "+963991111111"),
		getenv("SEED_ADMIN_PASSWORD", "Admin123!"),
		"Platform", "Admin", domain.RoleAdmin)
	ensureUser(ctx, userRepo, walletRepo, log,
		getenv("SEED_AGENT_PHONE", "+963992222222"),
		getenv("SEED_AGENT_PASSWORD", "Agent123!"),
		"Demo", "Agent", domain.RoleAgent)
	ensureUser(ctx, userRepo, walletRepo, log,
		getenv("SEED_MERCHANT_PHONE", "+963993333333"),
		getenv("SEED_MERCHANT_PASSWORD", "Merchant123!"),
		"Demo", "Merchant", domain.RoleMerchant)

	ensureFeeSettings(ctx, feeRepo, log, adminID)
	ensureExchangeRates(ctx, exchangeRepo, log, adminID)

	fmt.Println("OK: admin, demo accounts, fees, and rates seeded")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func ensureUser(ctx context.Context, users *postgres.UserRepository, wallets *postgres.WalletRepository, log logger.Logger, phone, password, first, last string, role domain.Role) uuid.UUID {
	exists, err := users.ExistsByPhone(ctx, phone)
	if err != nil {
		log.Fatal("ExistsByPhone failed", map[string]interface{}{"error": err.Error()})
	}
	if exists {
		u, err := users.FindByPhone(ctx, phone)
		if err != nil {
			log.Fatal("FindByPhone failed", map[string]interface{}{"error": err.Error()})
		}
		log.Info("User already seeded", map[string]interface{}{"phone": phone, "role": role})
		return u.ID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Hash failed", map[string]interface{}{"error": err.Error()})
	}

	now := time.Now()
	u := &domain.User{
		ID:           uuid.New(),
		Phone:        phone,
		PasswordHash: string(hash),
		FirstName:    first,
		LastName:     last,
		Role:         role,
		KYCStatus:    domain.KYCStatusVerified,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, u); err != nil {
		log.Fatal("Create user failed", map[string]interface{}{"error": err.Error()})
	}

	for _, currency := range domain.Currencies {
		w := &domain.Wallet{
			ID:        uuid.New(),
			UserID:    u.ID,
			Currency:  currency,
			Balance:   decimal.Zero,
			Status:    domain.WalletStatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := wallets.Create(ctx, w); err != nil {
			log.Fatal("Create wallet failed", map[string]interface{}{"error": err.Error()})
		}
	}

	log.Info("User created", map[string]interface{}{"phone": phone, "role": role})
	return u.ID
}

func ensureFeeSettings(ctx context.Context, repo *postgres.FeeSettingsRepository, log logger.Logger, adminID uuid.UUID) {
	for _, currency := range domain.Currencies {
		if _, err := repo.GetByCurrency(ctx, currency); err == nil {
			log.Info("Fee settings already seeded", map[string]interface{}{"currency": currency})
			continue
		}
		settings := &domain.FeeSettings{
			ID:                           uuid.New(),
			Currency:                     currency,
			DepositFeePercent:            decimal.NewFromFloat(1),
			DepositFeeFixed:              decimal.Zero,
			WithdrawalFeePercent:         decimal.NewFromFloat(1.5),
			WithdrawalFeeFixed:           decimal.Zero,
			TransferFeePercent:           decimal.NewFromFloat(0.5),
			TransferFeeFixed:             decimal.Zero,
			QRPaymentFeePercent:          decimal.NewFromFloat(1),
			QRPaymentFeeFixed:            decimal.Zero,
			ServiceFeePercent:            decimal.NewFromFloat(1),
			ServiceFeeFixed:              decimal.Zero,
			AgentCommissionPercent:       decimal.NewFromFloat(50),
			SettlementPlatformCommission: decimal.NewFromFloat(2),
			SettlementAgentCommission:    decimal.NewFromFloat(1),
			UpdatedBy:                    &adminID,
			UpdatedAt:                    time.Now(),
		}
		if err := repo.Upsert(ctx, settings); err != nil {
			log.Fatal("Seed fee settings failed", map[string]interface{}{"error": err.Error()})
		}
		log.Info("Fee settings seeded", map[string]interface{}{"currency": currency})
	}
}

func ensureExchangeRates(ctx context.Context, repo *postgres.ExchangeRateRepository, log logger.Logger, adminID uuid.UUID) {
	seed := map[domain.RateType]decimal.Decimal{
		domain.RateTypeDeposit:  decimal.NewFromInt(14800),
		domain.RateTypeWithdraw: decimal.NewFromInt(15200),
	}
	for rateType, rate := range seed {
		if _, err := repo.FindActive(ctx, rateType); err == nil {
			log.Info("Exchange rate already seeded", map[string]interface{}{"type": rateType})
			continue
		}
		now := time.Now()
		r := &domain.ExchangeRate{
			ID:        uuid.New(),
			Type:      rateType,
			Rate:      rate,
			IsActive:  true,
			UpdatedBy: &adminID,
			UpdatedAt: now,
			CreatedAt: now,
		}
		if err := repo.Create(ctx, r); err != nil {
			log.Fatal("Seed exchange rate failed", map[string]interface{}{"error": err.Error()})
		}
		log.Info("Exchange rate seeded", map[string]interface{}{"type": rateType, "rate": rate.String()})
	}
}
