package telemetry

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"time"

	"github.com/smilemakc/telemetryflow/pkg/models"
)

// maxCacheTTL bounds how long an Analyze result may be cached, per
// spec.md §4.6 ("Results MAY be cached for ≤ 30 s").
const maxCacheTTL = 30 * time.Second

var percentileRanks = []int{25, 50, 75, 95, 99}

// anomalyStdDevThreshold flags a value as anomalous once it sits this
// many standard deviations from the metric's mean.
const anomalyStdDevThreshold = 3.0

// TrendDirection summarizes the sign of a metric's least-squares slope
// across the analyzed window.
type TrendDirection string

const (
	TrendUp   TrendDirection = "UP"
	TrendDown TrendDirection = "DOWN"
	TrendFlat TrendDirection = "FLAT"
)

// MetricAnalysis is the per-metric statistical summary spec.md §4.6
// names: min/max/avg/stdDev/count plus the 25/50/75/95/99th
// percentiles.
type MetricAnalysis struct {
	Min         float64
	Max         float64
	Avg         float64
	StdDev      float64
	Count       int
	Percentiles map[int]float64
}

// Anomaly flags a single reading that deviates from its metric's mean by
// at least anomalyStdDevThreshold standard deviations.
type Anomaly struct {
	Metric     string
	DeviceID   models.DeviceID
	Timestamp  time.Time
	Value      float64
	StdDevsOff float64
}

// TelemetryAnalysis is the result of Analyzer.Analyze: a deterministic
// function of the queried data, per spec.md §4.6.
type TelemetryAnalysis struct {
	Metrics   map[string]MetricAnalysis
	Anomalies []Anomaly
	Trends    map[string]TrendDirection
}

// AnalysisCache abstracts the ≤30s result cache Analyzer consults,
// keyed by (orgId, from, to, queryHash). Two implementations are
// provided: MapCache (in-process) and RedisCache (shared across engine
// instances).
type AnalysisCache interface {
	Get(ctx context.Context, key string) (*TelemetryAnalysis, bool, error)
	Set(ctx context.Context, key string, analysis *TelemetryAnalysis, ttl time.Duration) error
}

// Analyzer computes TelemetryAnalysis over a queried data set, optionally
// consulting an AnalysisCache first.
type Analyzer struct {
	cache AnalysisCache
}

// NewAnalyzer constructs an Analyzer. A nil cache disables caching
// entirely; Analyze still works, just always recomputes.
func NewAnalyzer(cache AnalysisCache) *Analyzer {
	return &Analyzer{cache: cache}
}

// Analyze computes per-metric statistics, anomalies, and trends over
// data, consulting and populating the cache keyed by query's
// organization, time range, and a hash of its remaining fields.
func (a *Analyzer) Analyze(ctx context.Context, query models.TelemetryQuery, data []*models.TelemetryData) (*TelemetryAnalysis, error) {
	key := analysisCacheKey(query)
	if a.cache != nil {
		if cached, ok, err := a.cache.Get(ctx, key); err == nil && ok {
			return cached, nil
		}
	}

	result := computeAnalysis(data, query.MetricNames)

	if a.cache != nil {
		_ = a.cache.Set(ctx, key, result, maxCacheTTL)
	}
	return result, nil
}

func analysisCacheKey(query models.TelemetryQuery) string {
	h := fnv.New64a()
	var aggregation string
	if query.Aggregation != nil {
		aggregation = string(*query.Aggregation)
	}
	fmt.Fprintf(h, "%v|%v|%s|%v|%v|%v|%v|%v", query.DeviceIDs, query.MetricNames, aggregation, query.BucketSize, query.Limit, query.Center, query.RadiusKm, query.BoundingBox)
	return fmt.Sprintf("analysis:%s:%d:%d:%x", query.OrganizationID, query.From.UnixNano(), query.To.UnixNano(), h.Sum64())
}

type metricSample struct {
	deviceID  models.DeviceID
	timestamp time.Time
	value     float64
}

func computeAnalysis(data []*models.TelemetryData, wantMetrics []string) *TelemetryAnalysis {
	want := make(map[string]bool, len(wantMetrics))
	for _, m := range wantMetrics {
		want[m] = true
	}

	byMetric := make(map[string][]metricSample)
	for _, d := range data {
		for name, v := range d.Metrics {
			if len(want) > 0 && !want[name] {
				continue
			}
			n, err := v.Numeric()
			if err != nil {
				continue
			}
			byMetric[name] = append(byMetric[name], metricSample{deviceID: d.DeviceID, timestamp: d.Timestamp, value: n})
		}
	}

	result := &TelemetryAnalysis{
		Metrics: make(map[string]MetricAnalysis, len(byMetric)),
		Trends:  make(map[string]TrendDirection, len(byMetric)),
	}

	names := make([]string, 0, len(byMetric))
	for name := range byMetric {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		samples := byMetric[name]
		sort.Slice(samples, func(i, j int) bool { return samples[i].timestamp.Before(samples[j].timestamp) })

		stats := summarize(samples)
		result.Metrics[name] = stats
		result.Trends[name] = trendOf(samples)
		result.Anomalies = append(result.Anomalies, anomaliesOf(name, samples, stats)...)
	}

	return result
}

func summarize(samples []metricSample) MetricAnalysis {
	n := len(samples)
	sorted := make([]float64, n)
	var sum float64
	min, max := math.Inf(1), math.Inf(-1)
	for i, s := range samples {
		sorted[i] = s.value
		sum += s.value
		if s.value < min {
			min = s.value
		}
		if s.value > max {
			max = s.value
		}
	}
	avg := sum / float64(n)

	var variance float64
	for _, v := range sorted {
		d := v - avg
		variance += d * d
	}
	variance /= float64(n)

	sort.Float64s(sorted)
	percentiles := make(map[int]float64, len(percentileRanks))
	for _, p := range percentileRanks {
		percentiles[p] = nearestRank(sorted, p)
	}

	return MetricAnalysis{
		Min:         min,
		Max:         max,
		Avg:         avg,
		StdDev:      math.Sqrt(variance),
		Count:       n,
		Percentiles: percentiles,
	}
}

// nearestRank implements the nearest-rank percentile method over a
// sorted slice.
func nearestRank(sorted []float64, percentile int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := int(math.Ceil(float64(percentile)/100.0*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}

func anomaliesOf(metric string, samples []metricSample, stats MetricAnalysis) []Anomaly {
	if stats.StdDev == 0 {
		return nil
	}
	var out []Anomaly
	for _, s := range samples {
		off := (s.value - stats.Avg) / stats.StdDev
		if off < 0 {
			off = -off
		}
		if off >= anomalyStdDevThreshold {
			out = append(out, Anomaly{
				Metric:     metric,
				DeviceID:   s.deviceID,
				Timestamp:  s.timestamp,
				Value:      s.value,
				StdDevsOff: off,
			})
		}
	}
	return out
}

// trendOf returns the sign of the least-squares slope of value over
// index (a proxy for time, since samples are already sorted by
// timestamp).
func trendOf(samples []metricSample) TrendDirection {
	n := float64(len(samples))
	if n < 2 {
		return TrendFlat
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, s := range samples {
		x := float64(i)
		sumX += x
		sumY += s.value
		sumXY += x * s.value
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return TrendFlat
	}
	slope := (n*sumXY - sumX*sumY) / denom

	const flatThreshold = 1e-9
	switch {
	case slope > flatThreshold:
		return TrendUp
	case slope < -flatThreshold:
		return TrendDown
	default:
		return TrendFlat
	}
}
