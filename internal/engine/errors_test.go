package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.temporal.io/api/serviceerror"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "nil passes through",
			err:  nil,
			want: nil,
		},
		{
			name: "not found maps to ErrNotFound",
			err:  serviceerror.NewNotFound("workflow execution not found for id"),
			want: ErrNotFound,
		},
		{
			name: "already started maps to ErrAlreadyExists",
			err:  serviceerror.NewWorkflowExecutionAlreadyStarted("already started", "request-id", "run-id"),
			want: ErrAlreadyExists,
		},
		{
			name: "anything else maps to ErrRemote",
			err:  errors.New("connection reset by peer"),
			want: ErrRemote,
		},
		{
			name: "deadline exceeded maps to ErrRemote",
			err:  context.DeadlineExceeded,
			want: ErrRemote,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestTranslateErrorKeepsDiagnostic(t *testing.T) {
	got := translateError(errors.New("frontend unreachable"))
	assert.ErrorIs(t, got, ErrRemote)
	assert.Contains(t, got.Error(), "frontend unreachable")
}

func TestDisabledClientFailsFast(t *testing.T) {
	ctx := context.Background()
	disabled := NewDisabled()

	assert.False(t, disabled.Connected())

	err := disabled.StartCase(ctx, "case-1", "expense_approval", "1.0.0", nil, "cases-task-queue")
	assert.ErrorIs(t, err, ErrUnavailable)

	err = disabled.SignalCase(ctx, "case-1", "decision", nil)
	assert.ErrorIs(t, err, ErrUnavailable)

	var out map[string]interface{}
	err = disabled.QueryCase(ctx, "case-1", "get_current_state", &out)
	assert.ErrorIs(t, err, ErrUnavailable)

	err = disabled.TerminateCase(ctx, "case-1", "cleanup")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = disabled.ListCases(ctx, "", 10)
	assert.ErrorIs(t, err, ErrUnavailable)

	// Close on a disabled handle is a no-op and must not panic.
	disabled.Close()
}
