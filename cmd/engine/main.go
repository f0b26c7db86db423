// Command engine wires the payment authorization core's components
// together and runs a single sample intent end to end. It is a
// demonstration harness, not a network service: the §1 Non-goals exclude
// a transport/API layer from this core.
package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/arjuniyer/caps-payment-core/internal/domain/money"
	"github.com/arjuniyer/caps-payment-core/internal/domain/payment"
	"github.com/arjuniyer/caps-payment-core/internal/infrastructure/config"
	"github.com/arjuniyer/caps-payment-core/internal/infrastructure/persistence/memory"
	"github.com/arjuniyer/caps-payment-core/internal/infrastructure/persistence/postgres"
	serviceaudit "github.com/arjuniyer/caps-payment-core/internal/service/audit"
	"github.com/arjuniyer/caps-payment-core/internal/service/brand"
	"github.com/arjuniyer/caps-payment-core/internal/service/execution"
	"github.com/arjuniyer/caps-payment-core/internal/service/fraud"
	"github.com/arjuniyer/caps-payment-core/internal/service/orchestrator"
	"github.com/arjuniyer/caps-payment-core/internal/service/policy"
	"github.com/arjuniyer/caps-payment-core/internal/service/router"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration file")
		userID     = flag.String("user", "demo-user", "User to run the sample intent as")
		merchant   = flag.String("merchant", "coffeehouse@upi", "Merchant VPA to pay")
		amount     = flag.Float64("amount", 150, "Payment amount")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	repo, err := newRepository(cfg)
	if err != nil {
		logger.Fatal("failed to initialize fraud repository", zap.Error(err))
	}

	registry := brand.LoadRegistry(cfg.BrandRegistryPath, logger)
	ledger := serviceaudit.NewMemoryLedger(logger)
	store := fraud.NewStore(repo, ledger, cfg.RiskConfig(), logger)
	policyEngine := policy.NewEngine(cfg.PolicyConfig(), registry, logger)
	rtr := router.New()
	execEngine := execution.New(cfg.ExecutionConfig(), ledger, store, logger)

	users := memory.NewUserStore(sampleUser(*userID))
	orch := orchestrator.New(policyEngine, rtr, execEngine, store, users, ledger, cfg.PolicyConfig(), logger)

	intentAmount, err := money.FromFloat(*amount, money.DefaultCurrency)
	if err != nil {
		logger.Fatal("invalid amount", zap.Error(err))
	}
	intent := payment.Intent{
		Type:        payment.IntentPayment,
		Amount:      &intentAmount,
		MerchantVPA: *merchant,
	}

	resp, err := orch.Process(context.Background(), intent, *userID, nil)
	if err != nil {
		logger.Fatal("processing failed", zap.Error(err))
	}

	logger.Info("intent processed",
		zap.String("status", string(resp.Status)),
		zap.String("decision", string(resp.PolicyDecision)),
		zap.Float64("risk_score", resp.RiskInfo.Score),
	)
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func newRepository(cfg *config.Config) (fraud.Repository, error) {
	if cfg.Persistence.DSN == "" {
		return memory.New(), nil
	}
	pool, err := postgres.Open(context.Background(), cfg.Persistence.DSN, int32(cfg.Persistence.MaxConns))
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(context.Background(), pool); err != nil {
		return nil, err
	}
	return postgres.New(pool), nil
}

// sampleUser seeds a clean payer snapshot for the demo run. Account
// persistence and session tracking are out of scope for this core (§1).
func sampleUser(userID string) payment.UserContext {
	balance, _ := money.FromFloat(5000, money.DefaultCurrency)
	spentToday, _ := money.FromFloat(0, money.DefaultCurrency)
	return payment.UserContext{
		UserID:          userID,
		WalletBalance:   balance,
		DailySpendToday: spentToday,
		IsKnownDevice:   true,
		TrustScore:      0.8,
	}
}
