package telemetry

import (
	"context"
	"time"

	"github.com/smilemakc/telemetryflow/pkg/models"
)

// WorkflowSortField names a column WorkflowRepository.Search may sort by.
type WorkflowSortField string

const (
	WorkflowSortName      WorkflowSortField = "NAME"
	WorkflowSortCreatedAt WorkflowSortField = "CREATED_AT"
	WorkflowSortUpdatedAt WorkflowSortField = "UPDATED_AT"
	WorkflowSortStatus    WorkflowSortField = "STATUS"
	WorkflowSortNodeCount WorkflowSortField = "NODE_COUNT"
)

// SortDirection is ascending or descending.
type SortDirection string

const (
	SortAscending  SortDirection = "ASC"
	SortDescending SortDirection = "DESC"
)

// WorkflowSearchQuery describes a filtered, sorted, paginated workflow
// search, per spec.md §6's `search(WorkflowSearchQuery)`.
type WorkflowSearchQuery struct {
	OrganizationID string
	NameContains   string
	Status         *models.WorkflowStatus
	NodeType       *models.NodeType
	CreatedAfter   *time.Time
	CreatedBefore  *time.Time
	UpdatedAfter   *time.Time
	SortBy         WorkflowSortField
	SortDirection  SortDirection
	Offset         int
	Limit          int
}

// WorkflowSearchResult is the paginated result of a workflow search.
type WorkflowSearchResult struct {
	Workflows  []*models.Workflow
	TotalCount int
	Offset     int
	Limit      int
}

// WorkflowStatistics summarizes an organization's workflow population,
// per spec.md §6's `statistics(orgId)`.
type WorkflowStatistics struct {
	Total       int
	Active      int
	Completed   int
	Draft       int
	AvgNodes    float64
	AvgEdges    float64
	LastCreated time.Time
	LastUpdated time.Time
}

// WorkflowRepository is the persistence port for Workflow aggregates.
// The core ships no implementation; this interface exists purely so the
// engine and ingestion pipeline can be driven against a caller-supplied
// adapter, per spec.md §6's explicit non-goal of bundling a storage
// engine. Grounded on internal/domain/repository.WorkflowRepository's
// method-per-query shape, adapted to return pkg/models types directly.
type WorkflowRepository interface {
	Save(ctx context.Context, workflow *models.Workflow) error
	FindByID(ctx context.Context, id models.WorkflowID) (*models.Workflow, error)
	Delete(ctx context.Context, id models.WorkflowID) error
	Exists(ctx context.Context, id models.WorkflowID) (bool, error)

	FindByOrganization(ctx context.Context, organizationID string) ([]*models.Workflow, error)
	FindByStatus(ctx context.Context, status models.WorkflowStatus) ([]*models.Workflow, error)
	FindByOrganizationAndStatus(ctx context.Context, organizationID string, status models.WorkflowStatus) ([]*models.Workflow, error)
	FindByNameContaining(ctx context.Context, organizationID, substring string) ([]*models.Workflow, error)
	FindCreatedBetween(ctx context.Context, organizationID string, from, to time.Time) ([]*models.Workflow, error)
	FindUpdatedAfter(ctx context.Context, organizationID string, since time.Time) ([]*models.Workflow, error)
	FindByNodeType(ctx context.Context, organizationID string, nodeType models.NodeType) ([]*models.Workflow, error)
	FindByNodeID(ctx context.Context, nodeID models.NodeID) (*models.Workflow, error)

	Search(ctx context.Context, query WorkflowSearchQuery) (*WorkflowSearchResult, error)
	Statistics(ctx context.Context, organizationID string) (*WorkflowStatistics, error)
}

// TelemetryQueryResult is the page returned by TelemetryRepository.Query.
type TelemetryQueryResult struct {
	Data          []*models.TelemetryData
	TotalCount    int
	HasMore       bool
	NextPageToken string
}

// AggregatedPoint is one time bucket of an aggregation result.
type AggregatedPoint struct {
	Timestamp time.Time
	Metric    string
	Value     float64
	Count     int
	Aggregate models.AggregationType
}

// MetricStatistics summarizes one metric over a device and time window.
type MetricStatistics struct {
	DeviceID models.DeviceID
	Metric   string
	Min      float64
	Max      float64
	Avg      float64
	StdDev   float64
	Count    int
}

// DeviceSummary summarizes one device's reporting activity over a
// window, as returned by TelemetryRepository.DeviceSummaries.
type DeviceSummary struct {
	DeviceID      models.DeviceID
	RecordCount   int
	FirstSeen     time.Time
	LastSeen      time.Time
	MetricsByName []string
}

// TelemetryRepository is the persistence port for TelemetryData records.
// Grounded on the same method-per-query idiom as WorkflowRepository,
// expanded per spec.md §6's write/read/aggregation/management groups.
type TelemetryRepository interface {
	SaveTimeSeries(ctx context.Context, data *models.TelemetryData) error
	SaveSpatialData(ctx context.Context, data *models.TelemetryData) error
	SaveBatch(ctx context.Context, data []*models.TelemetryData) error

	QueryTimeSeries(ctx context.Context, deviceID *models.DeviceID, from, to time.Time, metrics []string) ([]*models.TelemetryData, error)
	QueryRecentData(ctx context.Context, organizationID string, duration time.Duration) ([]*models.TelemetryData, error)
	QueryRealTimeData(ctx context.Context, organizationID string) ([]*models.TelemetryData, error)
	QuerySpatial(ctx context.Context, box models.BoundingBox) ([]*models.TelemetryData, error)
	QueryByRadius(ctx context.Context, center models.GeoLocation, radiusKm float64) ([]*models.TelemetryData, error)
	QueryByRadiusBetween(ctx context.Context, center models.GeoLocation, radiusKm float64, from, to time.Time) ([]*models.TelemetryData, error)
	QueryByMetric(ctx context.Context, organizationID, metric string, from, to time.Time) ([]*models.TelemetryData, error)
	Query(ctx context.Context, query models.TelemetryQuery) (*TelemetryQueryResult, error)

	Aggregate(ctx context.Context, query models.TelemetryQuery, aggType models.AggregationType, interval time.Duration) ([]AggregatedPoint, error)
	MetricStatistics(ctx context.Context, deviceID models.DeviceID, metric string, from, to time.Time) (*MetricStatistics, error)
	DeviceSummaries(ctx context.Context, organizationID string, from, to time.Time) ([]DeviceSummary, error)

	DeleteOldData(ctx context.Context, organizationID string, olderThan time.Time) (int64, error)
	DeleteByDevice(ctx context.Context, deviceID models.DeviceID) (int64, error)
	Count(ctx context.Context, organizationID string) (int64, error)
	LatestTimestamp(ctx context.Context, deviceID models.DeviceID) (time.Time, error)
	EarliestTimestamp(ctx context.Context, deviceID models.DeviceID) (time.Time, error)
	ActiveDevices(ctx context.Context, organizationID string, since time.Time) ([]models.DeviceID, error)
}
