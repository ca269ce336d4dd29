package engine

import "context"

// Disabled is the testing-mode connection handle. It never dials the engine
// and answers every call with ErrUnavailable so callers fail fast instead of
// attempting a per-request connection.
type Disabled struct{}

// NewDisabled returns a handle for processes that run without an engine.
func NewDisabled() *Disabled {
	return &Disabled{}
}

func (*Disabled) StartCase(context.Context, string, string, string, map[string]interface{}, string) error {
	return ErrUnavailable
}

func (*Disabled) SignalCase(context.Context, string, string, interface{}) error {
	return ErrUnavailable
}

func (*Disabled) QueryCase(context.Context, string, string, interface{}) error {
	return ErrUnavailable
}

func (*Disabled) TerminateCase(context.Context, string, string) error {
	return ErrUnavailable
}

func (*Disabled) ListCases(context.Context, string, int) ([]ExecutionSummary, error) {
	return nil, ErrUnavailable
}

func (*Disabled) Connected() bool { return false }

func (*Disabled) Target() string { return "" }

func (*Disabled) Namespace() string { return "" }

func (*Disabled) Close() {}
