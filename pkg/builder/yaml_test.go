package builder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const overheatYAML = `
metadata:
  name: Overheat Response
nodes:
  - id: start
    type: START
  - id: decide
    type: DECISION
    conditions:
      field: temp
      operator: gt
      value: 80.0
  - id: alert
    type: ACTION
    action: '"paged"'
  - id: end
    type: END
edges:
  - from: start
    to: decide
  - from: decide
    to: alert
    when: "true"
  - from: decide
    to: end
    when: "false"
  - from: alert
    to: end
`

func TestLoadWorkflowYAML_BuildsValidWorkflow(t *testing.T) {
	wf, err := LoadWorkflowYAML("wf-1", "org-1", []byte(overheatYAML), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Overheat Response", wf.Name())
	assert.Len(t, wf.Nodes(), 4)
	assert.Len(t, wf.Edges(), 4)

	node, ok := wf.FindNode("decide")
	require.True(t, ok)
	assert.True(t, node.HasConditions())
}

func TestLoadWorkflowYAML_GeneratesIDWhenEmpty(t *testing.T) {
	wf, err := LoadWorkflowYAML("", "org-1", []byte(overheatYAML), time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, wf.ID())
}

func TestLoadWorkflowYAML_RejectsMissingName(t *testing.T) {
	_, err := LoadWorkflowYAML("wf-1", "org-1", []byte("nodes: []"), time.Now())
	require.Error(t, err)
}

func TestLoadWorkflowYAML_RejectsUnknownNodeType(t *testing.T) {
	doc := `
metadata:
  name: Bad
nodes:
  - id: n1
    type: NOT_A_TYPE
`
	_, err := LoadWorkflowYAML("wf-1", "org-1", []byte(doc), time.Now())
	require.Error(t, err)
}

func TestLoadWorkflowYAML_RejectsUnknownEdgeWhen(t *testing.T) {
	doc := `
metadata:
  name: Bad Edge
nodes:
  - id: a
    type: START
  - id: b
    type: END
edges:
  - from: a
    to: b
    when: maybe
`
	_, err := LoadWorkflowYAML("wf-1", "org-1", []byte(doc), time.Now())
	require.Error(t, err)
}

func TestLoadWorkflowYAML_InvalidYAML(t *testing.T) {
	_, err := LoadWorkflowYAML("wf-1", "org-1", []byte("not: [valid"), time.Now())
	require.Error(t, err)
}
