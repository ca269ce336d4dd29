package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracerail/task-bridge/internal/engine"
)

const pactState = "case with ID ER-2024-08-124 exists for tenant with ID acme"

func TestProviderStateCreatesExecution(t *testing.T) {
	eng := newFakeEngine()
	router := newTestRouter(eng)

	w := doJSON(router, http.MethodPost, "/_pact/provider_states", map[string]string{
		"consumer": "frontend",
		"state":    pactState,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["result"])

	payload, ok := eng.executions["ER-2024-08-124"]
	require.True(t, ok, "fixture execution was not started")
	assert.Equal(t, "Pact Test", payload["submitter_name"])
	assert.Equal(t, "acme", payload["tenant_id"])
}

func TestProviderStateIsIdempotent(t *testing.T) {
	eng := newFakeEngine()
	router := newTestRouter(eng)

	for i := 0; i < 3; i++ {
		w := doJSON(router, http.MethodPost, "/_pact/provider_states", map[string]string{
			"consumer": "frontend",
			"state":    pactState,
		}, nil)
		require.Equal(t, http.StatusOK, w.Code, "run %d", i)
	}

	// Each rerun replaces the prior execution instead of failing on it.
	assert.Equal(t, 3, eng.starts)
	assert.Equal(t, 2, eng.terminates)
	assert.Contains(t, eng.executions, "ER-2024-08-124")
}

func TestProviderStateDecisionVariant(t *testing.T) {
	eng := newFakeEngine()
	router := newTestRouter(eng)

	w := doJSON(router, http.MethodPost, "/_pact/provider_states", map[string]string{
		"consumer": "frontend",
		"state":    "case with ID ER-2024-08-124 is ready for a decision for tenant with ID acme",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, eng.executions, "ER-2024-08-124")
}

func TestProviderStateUnrecognized(t *testing.T) {
	eng := newFakeEngine()
	router := newTestRouter(eng)

	w := doJSON(router, http.MethodPost, "/_pact/provider_states", map[string]string{
		"consumer": "frontend",
		"state":    "a user with name Bob exists",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "State not found", resp["result"])
	assert.Empty(t, eng.executions)
}

func TestProviderStateMissingBody(t *testing.T) {
	router := newTestRouter(newFakeEngine())

	w := doJSON(router, http.MethodPost, "/_pact/provider_states", map[string]string{
		"consumer": "frontend",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProviderStateEngineUnavailable(t *testing.T) {
	router := newTestRouter(engine.NewDisabled())

	w := doJSON(router, http.MethodPost, "/_pact/provider_states", map[string]string{
		"consumer": "frontend",
		"state":    pactState,
	}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestProviderStateRouteHiddenInProduction(t *testing.T) {
	cfg := testConfig()
	cfg.Pact.Enabled = false

	eng := newFakeEngine()
	router := newRouterWithConfig(cfg, eng)

	w := doJSON(router, http.MethodPost, "/_pact/provider_states", map[string]string{
		"consumer": "frontend",
		"state":    pactState,
	}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
