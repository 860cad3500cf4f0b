package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	PlansGeneratedTotal      metric.Int64Counter
	PlanEditsTotal           metric.Int64Counter
	PlanBuildDurationSeconds metric.Float64Histogram
	VersionConflictsTotal    metric.Int64Counter
	DbQueryDurationSeconds   metric.Float64Histogram
	DbQueryErrorsTotal       metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments once, using the
// meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("TripPlanner")
		var err error
		m := &AppMetrics{}

		m.PlansGeneratedTotal, err = meter.Int64Counter(
			"plans_generated_total",
			metric.WithDescription("Total number of itinerary plans generated"),
			metric.WithUnit("{plan}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create plans_generated_total: %v", err)
		}

		m.PlanEditsTotal, err = meter.Int64Counter(
			"plan_edits_total",
			metric.WithDescription("Total number of plan edit operations (remove, replace, regenerate, rollback)"),
			metric.WithUnit("{edit}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create plan_edits_total: %v", err)
		}

		m.PlanBuildDurationSeconds, err = meter.Float64Histogram(
			"plan_build_duration_seconds",
			metric.WithDescription("Duration of full plan builds in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create plan_build_duration_seconds: %v", err)
		}

		m.VersionConflictsTotal, err = meter.Int64Counter(
			"plan_version_conflicts_total",
			metric.WithDescription("Total number of optimistic concurrency conflicts on plan edits"),
			metric.WithUnit("{conflict}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create plan_version_conflicts_total: %v", err)
		}

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance. Panics if
// InitAppMetrics was not called at startup.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
