package engine

import "time"

// MaxNodeSteps bounds the number of node transitions a single execution
// may take before the engine fails it with a step-limit error — the
// cycle-detection backstop required when a graph (legally, per the
// validator) contains a cycle.
const MaxNodeSteps = 10_000

// DefaultStepTimeout is the per-step deadline applied when
// ExecutionOptions does not override it.
const DefaultStepTimeout = 5 * time.Second
