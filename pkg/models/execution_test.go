package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflowExecution_LifecycleTransitions(t *testing.T) {
	now := time.Now()
	exec := NewWorkflowExecution("exec-1", "wf-1", "org-1", "start", nil, now)
	assert.Equal(t, ExecutionStatusRunning, exec.Status())

	require.NoError(t, exec.Pause())
	assert.Equal(t, ExecutionStatusPaused, exec.Status())

	require.NoError(t, exec.Resume())
	assert.Equal(t, ExecutionStatusRunning, exec.Status())

	require.NoError(t, exec.Complete(now.Add(time.Second)))
	assert.Equal(t, ExecutionStatusCompleted, exec.Status())
	assert.False(t, exec.CompletedAt().IsZero())

	_, ok := exec.CurrentNodeID()
	assert.False(t, ok)
}

func TestWorkflowExecution_TerminalIsAbsorbing(t *testing.T) {
	now := time.Now()
	exec := NewWorkflowExecution("exec-1", "wf-1", "org-1", "start", nil, now)
	require.NoError(t, exec.Cancel(now))

	err := exec.Resume()
	require.Error(t, err)
	var invalid *InvalidStateError
	require.ErrorAs(t, err, &invalid)
}

func TestWorkflowExecution_FailRecordsReason(t *testing.T) {
	now := time.Now()
	exec := NewWorkflowExecution("exec-1", "wf-1", "org-1", "start", nil, now)
	require.NoError(t, exec.Fail("step limit exceeded", now))
	assert.Equal(t, ExecutionStatusFailed, exec.Status())
	assert.Equal(t, "step limit exceeded", exec.ErrorMessage())
}

func TestWorkflowExecution_AdvanceToRecordsPath(t *testing.T) {
	now := time.Now()
	exec := NewWorkflowExecution("exec-1", "wf-1", "org-1", "start", nil, now)
	exec.AdvanceTo("next", now, now.Add(time.Millisecond), "")

	cur, ok := exec.CurrentNodeID()
	require.True(t, ok)
	assert.Equal(t, NodeID("next"), cur)
	assert.Equal(t, 1, exec.StepCount())
	require.Len(t, exec.Path(), 1)
	assert.Equal(t, NodeID("start"), exec.Path()[0].NodeID)
}

func TestWorkflowExecution_DurationMeasuresAgainstNowWhileActive(t *testing.T) {
	start := time.Now()
	exec := NewWorkflowExecution("exec-1", "wf-1", "org-1", "start", nil, start)
	later := start.Add(5 * time.Second)
	assert.Equal(t, 5*time.Second, exec.Duration(later))
}
