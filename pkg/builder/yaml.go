package builder

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/smilemakc/telemetryflow/pkg/models"
)

// yamlWorkflow is the top-level shape of a workflow definition document,
// grounded on the teacher's YAML workflow importer: metadata plus a flat
// node/edge list rather than a nested graph structure, since that is the
// format a human or a generator tool would hand-author.
type yamlWorkflow struct {
	Metadata struct {
		Name string `yaml:"name"`
	} `yaml:"metadata"`
	Nodes []yamlNode `yaml:"nodes"`
	Edges []yamlEdge `yaml:"edges,omitempty"`
}

type yamlNode struct {
	ID         string                 `yaml:"id"`
	Type       string                 `yaml:"type"`
	Label      string                 `yaml:"label,omitempty"`
	Conditions interface{}            `yaml:"conditions,omitempty"`
	Task       string                 `yaml:"task,omitempty"`
	Action     string                 `yaml:"action,omitempty"`
	Config     map[string]interface{} `yaml:"config,omitempty"`
	Position   *struct {
		X float64 `yaml:"x"`
		Y float64 `yaml:"y"`
	} `yaml:"position,omitempty"`
}

type yamlEdge struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
	When string `yaml:"when,omitempty"` // "true" | "false" | "" (default)
}

// LoadWorkflowYAML parses a YAML workflow definition document into a
// validated models.Workflow, the text format a workflow author or an
// external generator would hand in when there is no UI building the
// graph interactively. id may be empty, in which case a fresh
// WorkflowID is generated.
func LoadWorkflowYAML(id models.WorkflowID, organizationID string, raw []byte, now time.Time) (*models.Workflow, error) {
	var doc yamlWorkflow
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse workflow yaml: %w", err)
	}
	if doc.Metadata.Name == "" {
		return nil, fmt.Errorf("workflow yaml: metadata.name is required")
	}

	wb := NewWorkflow(id, doc.Metadata.Name, organizationID)
	for _, n := range doc.Nodes {
		nodeType, err := parseNodeType(n.Type)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}

		opts := []NodeOption{}
		if n.Position != nil {
			opts = append(opts, WithPosition(n.Position.X, n.Position.Y))
		}
		if n.Conditions != nil {
			opts = append(opts, WithConditions(n.Conditions))
		}
		if n.Task != "" {
			opts = append(opts, WithTask(n.Task))
		}
		if n.Action != "" {
			opts = append(opts, WithAction(n.Action))
		}
		for k, v := range n.Config {
			opts = append(opts, WithConfigValue(k, v))
		}

		wb.AddNode(NewNode(models.NodeID(n.ID), nodeType, n.Label, opts...).Build())
	}

	for _, e := range doc.Edges {
		var edgeOpts []EdgeOption
		switch e.When {
		case "true":
			edgeOpts = append(edgeOpts, WhenTrue())
		case "false":
			edgeOpts = append(edgeOpts, WhenFalse())
		case "":
		default:
			return nil, fmt.Errorf("edge %s->%s: unknown when %q, want \"true\" or \"false\"", e.From, e.To, e.When)
		}
		wb.AddEdge(NewEdge(models.NodeID(e.From), models.NodeID(e.To), edgeOpts...).Build())
	}

	return wb.Build(now)
}

func parseNodeType(raw string) (models.NodeType, error) {
	switch models.NodeType(raw) {
	case models.NodeTypeStart, models.NodeTypeEnd, models.NodeTypeDecision,
		models.NodeTypeCondition, models.NodeTypeTask, models.NodeTypeAction,
		models.NodeTypeInput, models.NodeTypeOutput:
		return models.NodeType(raw), nil
	default:
		return "", fmt.Errorf("unknown node type %q", raw)
	}
}
