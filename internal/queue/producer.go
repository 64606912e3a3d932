package queue

import (
	"time"

	"go.uber.org/zap"

	"EstateLink/internal/model"
	"EstateLink/pkg/logger"
	"EstateLink/storage/mq"
)

// Dispatch outcomes are published as domain events so the wider CRM (audit
// trail, ops dashboard) can react. Publishing is best-effort: a broker
// outage must never fail a dispatch that already went out.

// PublishTaskExecuted announces a successfully delivered task.
func PublishTaskExecuted(task *model.AutomationTask) {
	publishTaskEvent("task.executed", task)
}

// PublishTaskFailed announces a task that reached the failed state.
func PublishTaskFailed(task *model.AutomationTask) {
	publishTaskEvent("task.failed", task)
}

func publishTaskEvent(eventKey string, task *model.AutomationTask) {
	event := model.TaskEvent{
		EventKey:   eventKey,
		OccurredAt: time.Now().Format(time.RFC3339),
		TaskCode:   task.TaskCode,
		TaskType:   string(task.TaskType),
		Status:     string(task.Status),
		Payload: map[string]interface{}{
			"customer_id": task.CustomerID,
			"project_id":  task.ProjectID,
			"retry_count": task.RetryCount,
		},
	}

	if err := mq.PublishMessage(mq.EventsExchange, eventKey, event); err != nil {
		logger.Logger.Warn("Failed to publish task event",
			zap.String("event_key", eventKey),
			zap.Int64("task_code", task.TaskCode),
			zap.Error(err),
		)
		return
	}

	logger.Logger.Debug("Published task event",
		zap.String("event_key", eventKey),
		zap.Int64("task_code", task.TaskCode),
	)
}
