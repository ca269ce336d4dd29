package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tracerail/task-bridge/internal/auth"
	"github.com/tracerail/task-bridge/internal/domain/entity"
	"github.com/tracerail/task-bridge/internal/engine"
	"github.com/tracerail/task-bridge/internal/service"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	cases  service.CaseService
	engine engine.Client
	logger *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(cases service.CaseService, engineClient engine.Client, logger *zap.Logger) *Handlers {
	return &Handlers{
		cases:  cases,
		engine: engineClient,
		logger: logger,
	}
}

// CreateCaseRequest is the payload for opening a new case. Validation runs
// once here, before anything reaches the case service.
type CreateCaseRequest struct {
	SubmitterName  string  `json:"submitter_name" binding:"required"`
	SubmitterEmail string  `json:"submitter_email" binding:"required,email"`
	Amount         float64 `json:"amount" binding:"required,gt=0"`
	Currency       string  `json:"currency" binding:"required"`
	Category       string  `json:"category" binding:"required"`
	Title          string  `json:"title"`
}

// CreateCaseResponse carries the id of a freshly created case.
type CreateCaseResponse struct {
	CaseID string `json:"caseId"`
}

// DecisionRequest is the payload for submitting a decision on a case.
type DecisionRequest struct {
	Decision string                 `json:"decision" binding:"required"`
	Reviewer string                 `json:"reviewer"`
	Comments string                 `json:"comments"`
	Metadata map[string]interface{} `json:"metadata"`
}

// DecisionResponse confirms a decision signal was sent.
type DecisionResponse struct {
	CaseID  string `json:"caseId"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthResponse reports the bridge's view of the engine connection.
type HealthResponse struct {
	Status    string `json:"status"`
	Connected bool   `json:"connected"`
	Target    string `json:"target,omitempty"`
	Namespace string `json:"namespace,omitempty"`
	Timestamp string `json:"timestamp"`
}

// writeError is the single place where case service and engine failures
// become HTTP outcomes. Raw engine diagnostics go to the log only; response
// bodies carry a stable status and a non-sensitive detail string.
func (h *Handlers) writeError(c *gin.Context, err error, detail string) {
	switch {
	case errors.Is(err, service.ErrCaseNotFound), errors.Is(err, engine.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": detail + " not found"})
	case errors.Is(err, engine.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "workflow engine is not available"})
	case errors.Is(err, engine.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": detail + " already exists"})
	default:
		h.logger.Error("Engine operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "a workflow engine error occurred"})
	}
}

// Root handles GET / with a small landing page.
func (h *Handlers) Root(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, `<html>
    <head><title>TraceRail Task Bridge</title></head>
    <body style="font-family: sans-serif; padding: 2em;">
        <h1>TraceRail Task Bridge</h1>
        <p>This service is running. Access tenant-specific data via <code>/api/v1/tenants/{tenantId}/...</code></p>
        <ul>
            <li><a href="/health">Health Check</a></li>
            <li><a href="/metrics">Metrics</a></li>
        </ul>
    </body>
</html>`)
}

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	connected := h.engine != nil && h.engine.Connected()

	status := "healthy"
	if !connected {
		status = "unhealthy"
	}

	resp := HealthResponse{
		Status:    status,
		Connected: connected,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if connected {
		resp.Target = h.engine.Target()
		resp.Namespace = h.engine.Namespace()
	}

	c.JSON(http.StatusOK, resp)
}

// CreateCase handles POST /api/v1/cases
func (h *Handlers) CreateCase(c *gin.Context) {
	var req CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case payload: " + err.Error()})
		return
	}

	caseID, err := h.cases.CreateCase(c.Request.Context(), entity.NewCase{
		SubmitterName:  req.SubmitterName,
		SubmitterEmail: req.SubmitterEmail,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Category:       req.Category,
		Title:          req.Title,
	})
	if err != nil {
		h.writeError(c, err, "case")
		return
	}

	c.JSON(http.StatusCreated, CreateCaseResponse{CaseID: caseID})
}

// GetCase handles GET /api/v1/tenants/:tenantId/cases/:caseId
func (h *Handlers) GetCase(c *gin.Context) {
	tenantID, ok := auth.TenantFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "tenant not authorized"})
		return
	}
	caseID := c.Param("caseId")

	found, err := h.cases.GetByID(c.Request.Context(), caseID, tenantID)
	if err != nil {
		h.writeError(c, err, "case '"+caseID+"'")
		return
	}

	c.JSON(http.StatusOK, found)
}

// SubmitDecision handles POST /api/v1/tenants/:tenantId/cases/:caseId/decision
func (h *Handlers) SubmitDecision(c *gin.Context) {
	tenantID, ok := auth.TenantFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "tenant not authorized"})
		return
	}
	caseID := c.Param("caseId")

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid decision payload: " + err.Error()})
		return
	}

	result, err := h.cases.SubmitDecision(c.Request.Context(), caseID, entity.Decision{
		Decision: req.Decision,
		Reviewer: req.Reviewer,
		Comments: req.Comments,
		Metadata: req.Metadata,
	}, tenantID)
	if err != nil {
		h.writeError(c, err, "case '"+caseID+"'")
		return
	}

	c.JSON(http.StatusOK, DecisionResponse{
		CaseID:  result.CaseID,
		Status:  result.Status,
		Message: result.Message,
	})
}

// ListWorkflowsRequest holds the query parameters for listing executions.
type ListWorkflowsRequest struct {
	Query string `form:"query"`
	Limit int    `form:"limit"`
}

// ListWorkflows handles GET /api/v1/workflows
func (h *Handlers) ListWorkflows(c *gin.Context) {
	var req ListWorkflowsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	if req.Limit <= 0 || req.Limit > 1000 {
		req.Limit = 50
	}

	summaries, err := h.cases.ListCases(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		h.writeError(c, err, "workflows")
		return
	}

	c.JSON(http.StatusOK, summaries)
}
