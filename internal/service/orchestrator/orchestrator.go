// Package orchestrator implements the §6 external interface: the single
// entry point that strings the Policy Engine, Decision Router, Execution
// Engine, and Fraud Intelligence Store together for one intent.
package orchestrator

import (
	"context"
	"time"

	"go.uber.org/zap"

	domainaudit "github.com/arjuniyer/caps-payment-core/internal/domain/audit"
	"github.com/arjuniyer/caps-payment-core/internal/domain/payment"
	serviceaudit "github.com/arjuniyer/caps-payment-core/internal/service/audit"
	"github.com/arjuniyer/caps-payment-core/internal/service/execution"
	"github.com/arjuniyer/caps-payment-core/internal/service/fraud"
	"github.com/arjuniyer/caps-payment-core/internal/service/policy"
	"github.com/arjuniyer/caps-payment-core/internal/service/router"
)

// UserContextProvider resolves the per-payer snapshot for a user_id. The
// surrounding session-tracking system that maintains this data is out of
// scope for this core (§1); this interface is the seam it plugs into.
type UserContextProvider interface {
	GetUserContext(ctx context.Context, userID string) (payment.UserContext, error)
}

// Orchestrator wires every component into the Process(...) entry point.
type Orchestrator struct {
	policyEngine *policy.Engine
	router       *router.Router
	execEngine   *execution.Engine
	fraudReader  fraud.Reader
	users        UserContextProvider
	ledger       serviceaudit.Ledger
	dailyLimit   policy.Config
	logger       *zap.Logger
	now          func() time.Time
}

// New constructs an Orchestrator from its collaborators.
func New(
	policyEngine *policy.Engine,
	rtr *router.Router,
	execEngine *execution.Engine,
	fraudReader fraud.Reader,
	users UserContextProvider,
	ledger serviceaudit.Ledger,
	cfg policy.Config,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		policyEngine: policyEngine,
		router:       rtr,
		execEngine:   execEngine,
		fraudReader:  fraudReader,
		users:        users,
		ledger:       ledger,
		dailyLimit:   cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// Process runs one intent end to end. ctxOverride, when non-nil, replaces
// the UserContextProvider lookup — used by callers that already hold a
// fresher snapshot than the provider would return.
func (o *Orchestrator) Process(ctx context.Context, intent payment.Intent, userID string, ctxOverride *payment.UserContext) (Response, error) {
	if intent.Type == payment.IntentUnknown {
		return Response{Status: StatusError, Intent: intent, ErrorMessage: "unrecognized intent"}, nil
	}

	userCtx, err := o.resolveUser(ctx, userID, ctxOverride)
	if err != nil {
		o.logger.Error("user context unavailable, failing closed", zap.String("user_id", userID), zap.Error(err))
		return Response{Status: StatusError, Intent: intent, ErrorMessage: "user context unavailable"}, nil
	}

	if intent.Type != payment.IntentPayment {
		return o.processNonPayment(ctx, intent, userID, userCtx), nil
	}

	merchantCtx, err := o.fraudReader.GetMerchantContext(ctx, intent.MerchantVPA)
	if err != nil {
		o.logger.Error("merchant context unavailable, failing closed", zap.String("merchant_vpa", intent.MerchantVPA), zap.Error(err))
		return Response{Status: StatusError, Intent: intent, ErrorMessage: "merchant context unavailable"}, nil
	}

	result := o.policyEngine.Evaluate(intent, userCtx, merchantCtx)
	o.ledger.LogEvent(domainaudit.EventPolicyEvaluated, map[string]interface{}{
		"merchant_vpa": intent.MerchantVPA,
		"user_id":      userID,
		"decision":     string(result.Decision),
		"risk_score":   result.RiskScore,
	})

	record, err := o.router.Route(intent, result, userID)
	if err != nil {
		o.logger.Error("decision routing failed", zap.Error(err))
		return Response{Status: StatusError, Intent: intent, ErrorMessage: "unable to route decision"}, nil
	}

	if result.Decision != payment.DecisionApprove {
		o.execEngine.History.Save(record)
		return o.respond(StatusDenied, intent, result.Decision, nil, result, userID, userCtx), nil
	}

	execResult := o.execEngine.Execute(ctx, record)
	status := StatusExecuted
	if !execResult.Success {
		status = StatusFailed
	}
	return o.respond(status, intent, result.Decision, &execResult, result, userID, userCtx), nil
}

func (o *Orchestrator) resolveUser(ctx context.Context, userID string, override *payment.UserContext) (payment.UserContext, error) {
	if override != nil {
		return *override, nil
	}
	return o.users.GetUserContext(ctx, userID)
}

// processNonPayment handles BALANCE_INQUIRY and TRANSACTION_HISTORY: these
// never reach the Policy Engine or the Execution Engine's settlement path,
// only its read-only query operations.
func (o *Orchestrator) processNonPayment(ctx context.Context, intent payment.Intent, userID string, userCtx payment.UserContext) Response {
	start, end := recentWindow(o.now())
	recent := o.execEngine.GetTransactionHistory(userID, recentTransactionLimit, start, end)
	return Response{
		Status:    StatusProcessed,
		Intent:    intent,
		UserState: userStateFrom(userCtx, o.dailyLimit.DailyLimit, recent),
	}
}

func (o *Orchestrator) respond(status Status, intent payment.Intent, decision payment.Decision, execResult *execution.Result, result payment.PolicyResult, userID string, userCtx payment.UserContext) Response {
	start, end := recentWindow(o.now())
	recent := o.execEngine.GetTransactionHistory(userID, recentTransactionLimit, start, end)
	return Response{
		Status:          status,
		Intent:          intent,
		PolicyDecision:  decision,
		ExecutionResult: execResult,
		RiskInfo:        riskInfoFrom(result),
		UserState:       userStateFrom(userCtx, o.dailyLimit.DailyLimit, recent),
	}
}
