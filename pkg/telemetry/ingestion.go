package telemetry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/smilemakc/telemetryflow/internal/logger"
	"github.com/smilemakc/telemetryflow/pkg/engine"
	"github.com/smilemakc/telemetryflow/pkg/models"
	"github.com/smilemakc/telemetryflow/pkg/threshold"
)

// Pipeline ingests TelemetryData records: persisting them, firing any
// matching organization thresholds, and updating the rolling aggregate
// window. Per spec.md §4.6, per-record failures are isolated and never
// stop the stream, mirroring the teacher's executeWave's collect-errors
// discipline rather than aborting a whole wave on one node's failure.
//
// Persistence is the "caller" side of spec.md §7's retry split: the
// execution engine never retries internally, but a repository write
// made from here may, via an optional engine.RetryPolicy.
type Pipeline struct {
	repo       TelemetryRepository
	thresholds *threshold.Registry
	rolling    *RollingWindow
	log        *logger.Logger
	retry      *engine.RetryPolicy

	errorCount atomic.Int64
}

// PipelineOption configures optional Pipeline behavior.
type PipelineOption func(*Pipeline)

// WithRetryPolicy makes every repository write in Ingest retry according
// to rp before the failure is logged and counted. Without this option
// persistence is attempted exactly once, the prior behavior.
func WithRetryPolicy(rp *engine.RetryPolicy) PipelineOption {
	return func(p *Pipeline) { p.retry = rp }
}

// NewPipeline wires a repository, threshold registry, and rolling window
// into an ingestion pipeline. log may be nil, in which case the default
// package logger is used.
func NewPipeline(repo TelemetryRepository, thresholds *threshold.Registry, rolling *RollingWindow, log *logger.Logger, opts ...PipelineOption) *Pipeline {
	if log == nil {
		log = logger.Default()
	}
	p := &Pipeline{repo: repo, thresholds: thresholds, rolling: rolling, log: log}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ErrorCount returns the number of records that failed ingestion since
// the pipeline was created.
func (p *Pipeline) ErrorCount() int64 { return p.errorCount.Load() }

// persist runs fn once, or through p.retry's backoff loop when a retry
// policy is configured.
func (p *Pipeline) persist(ctx context.Context, fn func() error) error {
	if p.retry == nil {
		return fn()
	}
	return p.retry.Execute(ctx, fn)
}

// Ingest runs the quality-gated record through persistence, the
// threshold bridge, and the rolling aggregate, returning any firing
// events. A persistence failure is logged and counted, not returned,
// per spec.md §4.6 — the caller always gets its threshold events even
// if the write failed, since a dropped record still crossed a
// threshold.
func (p *Pipeline) Ingest(ctx context.Context, data *models.TelemetryData) []models.WorkflowTriggerEvent {
	if err := p.persist(ctx, func() error { return p.repo.SaveTimeSeries(ctx, data) }); err != nil {
		p.errorCount.Add(1)
		p.log.ErrorContext(ctx, "telemetry ingestion: persist failed",
			"deviceId", string(data.DeviceID), "organizationId", data.OrganizationID, "error", err.Error())
	}
	if data.Location != nil {
		if err := p.persist(ctx, func() error { return p.repo.SaveSpatialData(ctx, data) }); err != nil {
			p.errorCount.Add(1)
			p.log.ErrorContext(ctx, "telemetry ingestion: persist spatial failed",
				"deviceId", string(data.DeviceID), "organizationId", data.OrganizationID, "error", err.Error())
		}
	}

	for name, v := range data.Metrics {
		if n, err := v.Numeric(); err == nil {
			p.rolling.Record(data.OrganizationID, string(data.DeviceID), name, n)
		}
	}

	if p.thresholds == nil {
		return nil
	}
	return p.thresholds.Fire(data, time.Now())
}

// IngestBatch ingests each record independently, isolating per-record
// failures so one bad record never drops the rest of the batch. It
// returns the combined trigger events across every successfully
// evaluated record, in input order.
func (p *Pipeline) IngestBatch(ctx context.Context, records []*models.TelemetryData) []models.WorkflowTriggerEvent {
	var events []models.WorkflowTriggerEvent
	for _, d := range records {
		events = append(events, p.Ingest(ctx, d)...)
	}
	return events
}
