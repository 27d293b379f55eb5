package engine

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/itchyny/gojq"
	"github.com/smilemakc/telemetryflow/pkg/models"
)

// runTask evaluates a TASK node's `configuration.task` jq filter against
// the execution's context map, storing the result under "task_result".
// Grounded on the teacher's "jq" transform case: parse, compile, run,
// take the first emitted value.
func runTask(node models.WorkflowNode, exec *models.WorkflowExecution) error {
	raw, ok := node.Configuration["task"]
	if !ok || raw == "" {
		exec.Context()["task_result"] = nil
		return nil
	}
	filterStr, ok := raw.(string)
	if !ok {
		return fmt.Errorf("node %s: task configuration must be a string jq filter", node.ID)
	}

	query, err := gojq.Parse(filterStr)
	if err != nil {
		return fmt.Errorf("node %s: failed to parse task filter: %w", node.ID, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return fmt.Errorf("node %s: failed to compile task filter: %w", node.ID, err)
	}

	iter := code.Run(jqInput(exec))
	v, hasResult := iter.Next()
	if !hasResult {
		return fmt.Errorf("node %s: task filter produced no output", node.ID)
	}
	if err, ok := v.(error); ok {
		return fmt.Errorf("node %s: task filter execution error: %w", node.ID, err)
	}

	exec.Context()["task_result"] = v
	return nil
}

// runAction evaluates an ACTION node's `configuration.action` expr-lang
// expression against the execution's context map, storing the result
// under "action_result". Compiled programs are cached per Engine
// instance, keyed by the raw expression string.
func (e *Engine) runAction(node models.WorkflowNode, exec *models.WorkflowExecution) error {
	raw, ok := node.Configuration["action"]
	if !ok {
		return nil
	}
	exprStr, ok := raw.(string)
	if !ok {
		return fmt.Errorf("node %s: action configuration must be a string expression", node.ID)
	}

	env := exprEnv(exec)
	program, err := e.actions.compileAndCache(exprStr, env)
	if err != nil {
		return fmt.Errorf("node %s: %w", node.ID, err)
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return fmt.Errorf("node %s: failed to evaluate action: %w", node.ID, err)
	}

	exec.Context()["action_result"] = result
	return nil
}

// jqInput builds the input document a TASK node's jq filter runs
// against: the execution's mutable context plus its trigger telemetry,
// if any.
func jqInput(exec *models.WorkflowExecution) interface{} {
	input := map[string]interface{}{
		"context": exec.Context(),
	}
	if trig := exec.TriggerData(); trig != nil {
		input["trigger"] = telemetryToMap(trig)
	}
	return input
}

// exprEnv builds the environment an ACTION node's expr-lang expression
// evaluates against.
func exprEnv(exec *models.WorkflowExecution) map[string]interface{} {
	env := map[string]interface{}{
		"context": exec.Context(),
	}
	if trig := exec.TriggerData(); trig != nil {
		env["trigger"] = telemetryToMap(trig)
	}
	return env
}

func telemetryToMap(d *models.TelemetryData) map[string]interface{} {
	metrics := make(map[string]interface{}, len(d.Metrics))
	for k, v := range d.Metrics {
		metrics[k] = v.Raw()
	}
	m := map[string]interface{}{
		"deviceId":       string(d.DeviceID),
		"organizationId": d.OrganizationID,
		"metrics":        metrics,
		"timestamp":      d.Timestamp,
	}
	if d.Location != nil {
		m["location"] = map[string]interface{}{"lat": d.Location.Lat, "lon": d.Location.Lon}
	}
	return m
}
