package http

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tracerail/task-bridge/internal/config"
	"github.com/tracerail/task-bridge/internal/engine"
)

// statePattern matches both provider states defined in the consumer contract.
var statePattern = regexp.MustCompile(
	`case with ID ([\w-]+) (?:exists|is ready for a decision) for tenant with ID ([\w-]+)`,
)

// PactHandler seeds deterministic engine state for contract verification. It
// bypasses the case service on purpose: fixtures use well-known ids, not
// generated ones.
type PactHandler struct {
	engine engine.Client
	cases  config.CasesConfig
	pact   config.PactConfig
	logger *zap.Logger
}

// NewPactHandler creates the provider-state setup handler.
func NewPactHandler(engineClient engine.Client, cases config.CasesConfig, pact config.PactConfig, logger *zap.Logger) *PactHandler {
	return &PactHandler{
		engine: engineClient,
		cases:  cases,
		pact:   pact,
		logger: logger,
	}
}

// ProviderStateRequest is the payload sent by the pact verifier.
type ProviderStateRequest struct {
	Consumer string `json:"consumer"`
	State    string `json:"state" binding:"required"`
}

// SetupProviderState handles POST /_pact/provider_states. Recognized states
// are recreated idempotently: any execution with the fixture id is terminated
// first, then a fresh one is started with canned payload data. Unrecognized
// states return a benign result so partially implemented fixture sets still
// verify.
func (h *PactHandler) SetupProviderState(c *gin.Context) {
	var req ProviderStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider state payload"})
		return
	}

	h.logger.Info("Received provider state setup request", zap.String("state", req.State))

	match := statePattern.FindStringSubmatch(req.State)
	if match == nil {
		h.logger.Warn("Provider state not recognized", zap.String("state", req.State))
		c.JSON(http.StatusOK, gin.H{"result": "State not found"})
		return
	}

	caseID, tenantID := match[1], match[2]
	ctx := c.Request.Context()

	err := h.engine.TerminateCase(ctx, caseID, "Resetting state for pact verification")
	if err != nil && !errors.Is(err, engine.ErrNotFound) {
		h.writeError(c, err)
		return
	}

	payload := map[string]interface{}{
		"submitter_name": "Pact Test",
		"tenant_id":      tenantID,
	}
	err = h.engine.StartCase(ctx, caseID, h.cases.ProcessName, h.cases.ProcessVersion, payload, h.pact.TaskQueue)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.Info("Provider state ready",
		zap.String("case_id", caseID),
		zap.String("tenant_id", tenantID))
	c.JSON(http.StatusOK, gin.H{"result": "ok"})
}

func (h *PactHandler) writeError(c *gin.Context, err error) {
	if errors.Is(err, engine.ErrUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "workflow engine is not available"})
		return
	}
	h.logger.Error("Failed to set up provider state", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set up provider state"})
}
