package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics holds the automation pipeline instruments.
type OTelMetrics struct {
	TasksCreatedTotal    metric.Int64Counter
	TasksDispatchedTotal metric.Int64Counter
	TasksSkippedTotal    metric.Int64Counter
	PushDuration         metric.Float64Histogram
	PendingTasks         metric.Int64UpDownCounter
}

var (
	metrics *OTelMetrics
	meter   = otel.Meter("estatelink")
)

// InitMetrics registers the pipeline instruments with the global meter.
func InitMetrics() error {
	var err error

	metrics = &OTelMetrics{}

	metrics.TasksCreatedTotal, err = meter.Int64Counter(
		"automation_tasks_created_total",
		metric.WithDescription("Total number of automation tasks created by the scanner"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return err
	}

	metrics.TasksDispatchedTotal, err = meter.Int64Counter(
		"automation_tasks_dispatched_total",
		metric.WithDescription("Total number of dispatch outcomes by status"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return err
	}

	metrics.TasksSkippedTotal, err = meter.Int64Counter(
		"automation_tasks_skipped_total",
		metric.WithDescription("Total number of scan candidates skipped by reason"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return err
	}

	metrics.PushDuration, err = meter.Float64Histogram(
		"line_push_duration_seconds",
		metric.WithDescription("Time spent on LINE push calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics.PendingTasks, err = meter.Int64UpDownCounter(
		"automation_tasks_pending",
		metric.WithDescription("Number of tasks currently in the pending state"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// GetMetrics returns the global instance, or nil before InitMetrics.
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordTaskCreated counts one scanner-created task.
func (m *OTelMetrics) RecordTaskCreated(ctx context.Context, taskType string) {
	m.TasksCreatedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("task_type", taskType),
	))
	m.PendingTasks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("task_type", taskType),
	))
}

// RecordTaskSkipped counts one scan candidate skipped for the given reason.
func (m *OTelMetrics) RecordTaskSkipped(ctx context.Context, taskType, reason string) {
	m.TasksSkippedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("reason", reason),
	))
}

// RecordDispatchOutcome counts one dispatch outcome and releases the pending
// slot the task held.
func (m *OTelMetrics) RecordDispatchOutcome(ctx context.Context, taskType, status string, pushSeconds float64) {
	m.TasksDispatchedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
	m.PendingTasks.Add(ctx, -1, metric.WithAttributes(
		attribute.String("task_type", taskType),
	))
	if pushSeconds > 0 {
		m.PushDuration.Record(ctx, pushSeconds, metric.WithAttributes(
			attribute.String("status", status),
		))
	}
}
