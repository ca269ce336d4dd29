// Package engine adapts the remote Temporal workflow engine to the bridge.
// It owns the single long-lived connection handle and exposes the four
// primitives the case lifecycle is built on: start, signal, query, terminate.
package engine

import (
	"context"
	"time"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/workflowservice/v1"
	sdkclient "go.temporal.io/sdk/client"
	"go.uber.org/zap"
)

// ExecutionSummary describes one workflow execution in a listing.
type ExecutionSummary struct {
	CaseID       string     `json:"caseId"`
	RunID        string     `json:"runId"`
	WorkflowType string     `json:"workflowType"`
	Status       string     `json:"status"`
	StartTime    time.Time  `json:"startTime"`
	CloseTime    *time.Time `json:"closeTime,omitempty"`
}

// Client is the bridge's view of the workflow engine. Implementations must
// not retry start, signal or terminate: idempotency rules belong to the
// engine, and a bridge-side retry could duplicate side effects.
type Client interface {
	// StartCase starts a new case workflow under the given id. It fails with
	// ErrAlreadyExists when an execution with that id is still active.
	StartCase(ctx context.Context, caseID, processName, processVersion string, payload map[string]interface{}, taskQueue string) error

	// SignalCase delivers a one-way signal into a running execution.
	SignalCase(ctx context.Context, caseID, signalName string, payload interface{}) error

	// QueryCase runs a read-only state query and decodes the snapshot into
	// result, which must be a pointer.
	QueryCase(ctx context.Context, caseID, queryName string, result interface{}) error

	// TerminateCase forcefully closes an execution with the given reason.
	TerminateCase(ctx context.Context, caseID, reason string) error

	// ListCases lists recent executions matching a visibility query.
	ListCases(ctx context.Context, query string, limit int) ([]ExecutionSummary, error)

	// Connected reports whether a live connection handle exists.
	Connected() bool

	// Target returns the engine address this handle points at.
	Target() string

	// Namespace returns the engine namespace this handle is scoped to.
	Namespace() string

	// Close releases the connection handle. Called exactly once at shutdown.
	Close()
}

// Config holds the settings for a Temporal connection handle.
type Config struct {
	Target       string
	Namespace    string
	WorkflowType string
	CallTimeout  time.Duration
}

// TemporalClient is the production Client backed by one go.temporal.io/sdk
// connection, created at process start and shared by all requests.
type TemporalClient struct {
	temporal sdkclient.Client
	cfg      Config
	logger   *zap.Logger
}

// Dial establishes the engine connection handle.
func Dial(cfg Config, logger *zap.Logger) (*TemporalClient, error) {
	c, err := sdkclient.Dial(sdkclient.Options{
		HostPort:  cfg.Target,
		Namespace: cfg.Namespace,
		Logger:    newSDKLogger(logger),
	})
	if err != nil {
		return nil, translateError(err)
	}

	logger.Info("Connected to Temporal",
		zap.String("target", cfg.Target),
		zap.String("namespace", cfg.Namespace))

	return &TemporalClient{temporal: c, cfg: cfg, logger: logger}, nil
}

// callContext bounds every engine round-trip so a stalled engine surfaces as
// an error instead of a hung request.
func (c *TemporalClient) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.cfg.CallTimeout)
}

// StartCase implements Client.
func (c *TemporalClient) StartCase(ctx context.Context, caseID, processName, processVersion string, payload map[string]interface{}, taskQueue string) error {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	opts := sdkclient.StartWorkflowOptions{
		ID:        caseID,
		TaskQueue: taskQueue,
		// The engine must reject duplicate active ids rather than hand back
		// the existing run.
		WorkflowExecutionErrorWhenAlreadyStarted: true,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}

	_, err := c.temporal.ExecuteWorkflow(ctx, opts, c.cfg.WorkflowType, processName, processVersion, payload)
	if err != nil {
		c.logger.Error("Failed to start case workflow",
			zap.String("case_id", caseID),
			zap.String("task_queue", taskQueue),
			zap.Error(err))
		return translateError(err)
	}

	c.logger.Info("Started case workflow",
		zap.String("case_id", caseID),
		zap.String("task_queue", taskQueue))
	return nil
}

// SignalCase implements Client.
func (c *TemporalClient) SignalCase(ctx context.Context, caseID, signalName string, payload interface{}) error {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	if err := c.temporal.SignalWorkflow(ctx, caseID, "", signalName, payload); err != nil {
		c.logger.Error("Failed to signal case workflow",
			zap.String("case_id", caseID),
			zap.String("signal", signalName),
			zap.Error(err))
		return translateError(err)
	}

	c.logger.Info("Signaled case workflow",
		zap.String("case_id", caseID),
		zap.String("signal", signalName))
	return nil
}

// QueryCase implements Client.
func (c *TemporalClient) QueryCase(ctx context.Context, caseID, queryName string, result interface{}) error {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	val, err := c.temporal.QueryWorkflow(ctx, caseID, "", queryName)
	if err != nil {
		return translateError(err)
	}
	if err := val.Get(result); err != nil {
		return translateError(err)
	}
	return nil
}

// TerminateCase implements Client.
func (c *TemporalClient) TerminateCase(ctx context.Context, caseID, reason string) error {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	if err := c.temporal.TerminateWorkflow(ctx, caseID, "", reason); err != nil {
		return translateError(err)
	}

	c.logger.Info("Terminated case workflow",
		zap.String("case_id", caseID),
		zap.String("reason", reason))
	return nil
}

// ListCases implements Client.
func (c *TemporalClient) ListCases(ctx context.Context, query string, limit int) ([]ExecutionSummary, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.temporal.ListWorkflow(ctx, &workflowservice.ListWorkflowExecutionsRequest{
		Namespace: c.cfg.Namespace,
		PageSize:  int32(limit),
		Query:     query,
	})
	if err != nil {
		return nil, translateError(err)
	}

	summaries := make([]ExecutionSummary, 0, len(resp.GetExecutions()))
	for _, info := range resp.GetExecutions() {
		summary := ExecutionSummary{
			CaseID:       info.GetExecution().GetWorkflowId(),
			RunID:        info.GetExecution().GetRunId(),
			WorkflowType: info.GetType().GetName(),
			Status:       info.GetStatus().String(),
		}
		if info.GetStartTime() != nil {
			summary.StartTime = info.GetStartTime().AsTime()
		}
		if info.GetCloseTime() != nil {
			closeTime := info.GetCloseTime().AsTime()
			summary.CloseTime = &closeTime
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Connected implements Client.
func (c *TemporalClient) Connected() bool {
	return c.temporal != nil
}

// Target implements Client.
func (c *TemporalClient) Target() string {
	return c.cfg.Target
}

// Namespace implements Client.
func (c *TemporalClient) Namespace() string {
	return c.cfg.Namespace
}

// Close implements Client.
func (c *TemporalClient) Close() {
	if c.temporal != nil {
		c.temporal.Close()
		c.logger.Info("Temporal client connection closed")
	}
}
