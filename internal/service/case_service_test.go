package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tracerail/task-bridge/internal/config"
	"github.com/tracerail/task-bridge/internal/domain/entity"
	"github.com/tracerail/task-bridge/internal/engine"
)

// Mock engine client
type mockEngine struct {
	startFunc     func(ctx context.Context, caseID, processName, processVersion string, payload map[string]interface{}, taskQueue string) error
	signalFunc    func(ctx context.Context, caseID, signalName string, payload interface{}) error
	queryFunc     func(ctx context.Context, caseID, queryName string, result interface{}) error
	terminateFunc func(ctx context.Context, caseID, reason string) error
	listFunc      func(ctx context.Context, query string, limit int) ([]engine.ExecutionSummary, error)
}

func (m *mockEngine) StartCase(ctx context.Context, caseID, processName, processVersion string, payload map[string]interface{}, taskQueue string) error {
	if m.startFunc != nil {
		return m.startFunc(ctx, caseID, processName, processVersion, payload, taskQueue)
	}
	return nil
}

func (m *mockEngine) SignalCase(ctx context.Context, caseID, signalName string, payload interface{}) error {
	if m.signalFunc != nil {
		return m.signalFunc(ctx, caseID, signalName, payload)
	}
	return nil
}

func (m *mockEngine) QueryCase(ctx context.Context, caseID, queryName string, result interface{}) error {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, caseID, queryName, result)
	}
	return nil
}

func (m *mockEngine) TerminateCase(ctx context.Context, caseID, reason string) error {
	if m.terminateFunc != nil {
		return m.terminateFunc(ctx, caseID, reason)
	}
	return nil
}

func (m *mockEngine) ListCases(ctx context.Context, query string, limit int) ([]engine.ExecutionSummary, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, query, limit)
	}
	return []engine.ExecutionSummary{}, nil
}

func (m *mockEngine) Connected() bool   { return true }
func (m *mockEngine) Target() string    { return "localhost:7233" }
func (m *mockEngine) Namespace() string { return "default" }
func (m *mockEngine) Close()            {}

func testCasesConfig() config.CasesConfig {
	return config.CasesConfig{
		IDPrefix:       "case-",
		WorkflowType:   "FlexibleCaseWorkflow",
		ProcessName:    "expense_approval",
		ProcessVersion: "1.0.0",
		TaskQueue:      "cases-task-queue",
		DecisionSignal: "decision",
		StateQuery:     "get_current_state",
	}
}

func newTestService(eng engine.Client) CaseService {
	return NewCaseService(eng, testCasesConfig(), zap.NewNop())
}

func TestCreateCase(t *testing.T) {
	var gotCaseID, gotProcess, gotVersion, gotQueue string
	var gotPayload map[string]interface{}

	eng := &mockEngine{
		startFunc: func(ctx context.Context, caseID, processName, processVersion string, payload map[string]interface{}, taskQueue string) error {
			gotCaseID = caseID
			gotProcess = processName
			gotVersion = processVersion
			gotPayload = payload
			gotQueue = taskQueue
			return nil
		},
	}
	svc := newTestService(eng)

	caseID, err := svc.CreateCase(context.Background(), entity.NewCase{
		SubmitterName:  "Alice",
		SubmitterEmail: "alice@example.com",
		Amount:         123.45,
		Currency:       "USD",
		Category:       "Office Supplies",
		Title:          "New Keyboard and Mouse",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, caseID)
	assert.True(t, strings.HasPrefix(caseID, "case-"))
	assert.Equal(t, caseID, gotCaseID)
	assert.Equal(t, "expense_approval", gotProcess)
	assert.Equal(t, "1.0.0", gotVersion)
	assert.Equal(t, "cases-task-queue", gotQueue)
	assert.Equal(t, "Alice", gotPayload["submitter_name"])
	assert.Equal(t, 123.45, gotPayload["amount"])
	assert.Equal(t, "New Keyboard and Mouse", gotPayload["title"])
}

func TestCreateCaseGeneratesUniqueIDs(t *testing.T) {
	svc := newTestService(&mockEngine{})

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		caseID, err := svc.CreateCase(context.Background(), entity.NewCase{
			SubmitterName:  "Alice",
			SubmitterEmail: "alice@example.com",
			Amount:         1,
			Currency:       "USD",
			Category:       "Travel",
		})
		require.NoError(t, err)
		assert.False(t, seen[caseID], "duplicate case id %s", caseID)
		seen[caseID] = true
	}
}

func TestCreateCaseEngineUnavailable(t *testing.T) {
	svc := newTestService(engine.NewDisabled())

	_, err := svc.CreateCase(context.Background(), entity.NewCase{
		SubmitterName:  "Alice",
		SubmitterEmail: "alice@example.com",
		Amount:         1,
		Currency:       "USD",
		Category:       "Travel",
	})
	assert.ErrorIs(t, err, engine.ErrUnavailable)
}

func TestGetByID(t *testing.T) {
	eng := &mockEngine{
		queryFunc: func(ctx context.Context, caseID, queryName string, result interface{}) error {
			assert.Equal(t, "get_current_state", queryName)
			c := result.(*entity.Case)
			*c = entity.Case{
				CaseID:   caseID,
				TenantID: "acme",
				Title:    "New Keyboard and Mouse",
				Submitter: entity.Submitter{
					Name:  "Alice",
					Email: "alice@example.com",
				},
				CaseData: entity.CaseData{Amount: 123.45, Currency: "USD", Category: "Office Supplies"},
				Status:   entity.CaseStatusPending,
			}
			return nil
		},
	}
	svc := newTestService(eng)

	found, err := svc.GetByID(context.Background(), "case-123", "acme")
	require.NoError(t, err)
	assert.Equal(t, "case-123", found.CaseID)
	assert.Equal(t, "New Keyboard and Mouse", found.Title)
	assert.Equal(t, "Alice", found.Submitter.Name)
	assert.Equal(t, 123.45, found.CaseData.Amount)
}

func TestGetByIDNotFound(t *testing.T) {
	eng := &mockEngine{
		queryFunc: func(ctx context.Context, caseID, queryName string, result interface{}) error {
			return engine.ErrNotFound
		},
	}
	svc := newTestService(eng)

	_, err := svc.GetByID(context.Background(), "case-missing", "acme")
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestGetByIDTenantMismatch(t *testing.T) {
	eng := &mockEngine{
		queryFunc: func(ctx context.Context, caseID, queryName string, result interface{}) error {
			c := result.(*entity.Case)
			*c = entity.Case{CaseID: caseID, TenantID: "acme"}
			return nil
		},
	}
	svc := newTestService(eng)

	// A guessed case id from another tenant must look like a missing case.
	_, err := svc.GetByID(context.Background(), "case-123", "globex")
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestGetByIDUnscopedCase(t *testing.T) {
	eng := &mockEngine{
		queryFunc: func(ctx context.Context, caseID, queryName string, result interface{}) error {
			c := result.(*entity.Case)
			*c = entity.Case{Status: entity.CaseStatusPending}
			return nil
		},
	}
	svc := newTestService(eng)

	found, err := svc.GetByID(context.Background(), "case-legacy", "acme")
	require.NoError(t, err)
	assert.Equal(t, "case-legacy", found.CaseID)
}

func TestSubmitDecision(t *testing.T) {
	var gotSignal string
	var gotPayload interface{}

	eng := &mockEngine{
		queryFunc: func(ctx context.Context, caseID, queryName string, result interface{}) error {
			c := result.(*entity.Case)
			*c = entity.Case{CaseID: caseID, TenantID: "acme"}
			return nil
		},
		signalFunc: func(ctx context.Context, caseID, signalName string, payload interface{}) error {
			gotSignal = signalName
			gotPayload = payload
			return nil
		},
	}
	svc := newTestService(eng)

	result, err := svc.SubmitDecision(context.Background(), "case-123", entity.Decision{
		Decision: "approved",
		Reviewer: "bob",
	}, "acme")
	require.NoError(t, err)

	assert.Equal(t, "case-123", result.CaseID)
	assert.Equal(t, SignalSentStatus, result.Status)
	assert.Equal(t, "decision", gotSignal)

	decision, ok := gotPayload.(entity.Decision)
	require.True(t, ok)
	assert.Equal(t, "approved", decision.Decision)
}

func TestSubmitDecisionNotFound(t *testing.T) {
	eng := &mockEngine{
		queryFunc: func(ctx context.Context, caseID, queryName string, result interface{}) error {
			return engine.ErrNotFound
		},
	}
	svc := newTestService(eng)

	_, err := svc.SubmitDecision(context.Background(), "case-missing", entity.Decision{Decision: "approved"}, "acme")
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestSubmitDecisionTenantMismatch(t *testing.T) {
	signalled := false
	eng := &mockEngine{
		queryFunc: func(ctx context.Context, caseID, queryName string, result interface{}) error {
			c := result.(*entity.Case)
			*c = entity.Case{CaseID: caseID, TenantID: "acme"}
			return nil
		},
		signalFunc: func(ctx context.Context, caseID, signalName string, payload interface{}) error {
			signalled = true
			return nil
		},
	}
	svc := newTestService(eng)

	_, err := svc.SubmitDecision(context.Background(), "case-123", entity.Decision{Decision: "approved"}, "globex")
	assert.ErrorIs(t, err, ErrCaseNotFound)
	assert.False(t, signalled, "signal must not reach a foreign tenant's case")
}

func TestSubmitDecisionEngineUnavailable(t *testing.T) {
	svc := newTestService(engine.NewDisabled())

	_, err := svc.SubmitDecision(context.Background(), "case-123", entity.Decision{Decision: "approved"}, "acme")
	assert.ErrorIs(t, err, engine.ErrUnavailable)
}

func TestListCases(t *testing.T) {
	eng := &mockEngine{
		listFunc: func(ctx context.Context, query string, limit int) ([]engine.ExecutionSummary, error) {
			assert.Equal(t, 50, limit)
			return []engine.ExecutionSummary{
				{CaseID: "case-1", WorkflowType: "FlexibleCaseWorkflow", Status: "Running"},
			}, nil
		},
	}
	svc := newTestService(eng)

	summaries, err := svc.ListCases(context.Background(), "", 50)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "case-1", summaries[0].CaseID)
}
