// Package service translates case-domain operations into engine calls.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tracerail/task-bridge/internal/config"
	"github.com/tracerail/task-bridge/internal/domain/entity"
	"github.com/tracerail/task-bridge/internal/engine"
)

// ErrCaseNotFound is returned when a case does not exist for the requesting
// tenant. Tenant mismatches surface as this error too, so probing for foreign
// case ids reveals nothing.
var ErrCaseNotFound = errors.New("case not found")

// SignalSentStatus is echoed after a decision signal was handed to the engine.
const SignalSentStatus = "Signal Sent"

// CaseService is the domain-facing facade used by the API layer.
type CaseService interface {
	CreateCase(ctx context.Context, nc entity.NewCase) (string, error)
	GetByID(ctx context.Context, caseID, tenantID string) (*entity.Case, error)
	SubmitDecision(ctx context.Context, caseID string, decision entity.Decision, tenantID string) (*entity.DecisionResult, error)
	ListCases(ctx context.Context, query string, limit int) ([]engine.ExecutionSummary, error)
}

type caseService struct {
	engine engine.Client
	cfg    config.CasesConfig
	logger *zap.Logger
}

// NewCaseService creates a CaseService bound to the shared engine handle.
func NewCaseService(engineClient engine.Client, cfg config.CasesConfig, logger *zap.Logger) CaseService {
	return &caseService{
		engine: engineClient,
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCase generates a fresh case id and starts the case workflow. It
// returns as soon as the engine accepts the start; it does not wait for the
// workflow to reach any particular state.
func (s *caseService) CreateCase(ctx context.Context, nc entity.NewCase) (string, error) {
	caseID := s.cfg.IDPrefix + uuid.NewString()

	payload := map[string]interface{}{
		"submitter_name":  nc.SubmitterName,
		"submitter_email": nc.SubmitterEmail,
		"amount":          nc.Amount,
		"currency":        nc.Currency,
		"category":        nc.Category,
	}
	if nc.Title != "" {
		payload["title"] = nc.Title
	}
	if nc.TenantID != "" {
		payload["tenant_id"] = nc.TenantID
	}

	err := s.engine.StartCase(ctx, caseID, s.cfg.ProcessName, s.cfg.ProcessVersion, payload, s.cfg.TaskQueue)
	if err != nil {
		return "", fmt.Errorf("create case: %w", err)
	}

	s.logger.Info("Case created",
		zap.String("case_id", caseID),
		zap.String("category", nc.Category))
	return caseID, nil
}

// GetByID queries the execution's current state and shapes it into the Case
// view model scoped to the given tenant.
func (s *caseService) GetByID(ctx context.Context, caseID, tenantID string) (*entity.Case, error) {
	var c entity.Case
	if err := s.engine.QueryCase(ctx, caseID, s.cfg.StateQuery, &c); err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("get case %q: %w", caseID, err)
	}

	// Executions without a tenant in their snapshot predate tenant scoping
	// and are treated as unscoped.
	if c.TenantID != "" && c.TenantID != tenantID {
		s.logger.Warn("Cross-tenant case access denied",
			zap.String("case_id", caseID),
			zap.String("requested_tenant", tenantID))
		return nil, ErrCaseNotFound
	}

	if c.CaseID == "" {
		c.CaseID = caseID
	}
	if c.Status == "" {
		c.Status = entity.CaseStatusPending
	}
	return &c, nil
}

// SubmitDecision verifies tenant ownership and forwards the decision signal.
// The signal is fire-and-forget: the engine's workflow logic decides how to
// interpret it, and the bridge does not wait for that.
func (s *caseService) SubmitDecision(ctx context.Context, caseID string, decision entity.Decision, tenantID string) (*entity.DecisionResult, error) {
	// The ownership check is the tenant enforcement point; the engine itself
	// is not tenant-partitioned.
	if _, err := s.GetByID(ctx, caseID, tenantID); err != nil {
		return nil, err
	}

	if err := s.engine.SignalCase(ctx, caseID, s.cfg.DecisionSignal, decision); err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("submit decision for case %q: %w", caseID, err)
	}

	s.logger.Info("Decision signal sent",
		zap.String("case_id", caseID),
		zap.String("decision", decision.Decision))

	return &entity.DecisionResult{
		CaseID:  caseID,
		Status:  SignalSentStatus,
		Message: fmt.Sprintf("Decision '%s' forwarded to case workflow.", decision.Decision),
	}, nil
}

// ListCases lists recent case executions via the engine's visibility store.
func (s *caseService) ListCases(ctx context.Context, query string, limit int) ([]engine.ExecutionSummary, error) {
	summaries, err := s.engine.ListCases(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	return summaries, nil
}
