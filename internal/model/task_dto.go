package model

import "time"

// ========== Automation task DTOs ==========

// TaskItem is the list representation of a task.
type TaskItem struct {
	ID          int64      `json:"id"`
	TaskCode    string     `json:"task_code"`
	TaskType    string     `json:"task_type"`
	Channel     string     `json:"channel"`
	Status      string     `json:"status"`
	CustomerID  *int64     `json:"customer_id,omitempty"`
	ProjectID   *int64     `json:"project_id,omitempty"`
	RetryCount  int        `json:"retry_count"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	ExecutedAt  *time.Time `json:"executed_at,omitempty"`
}

// TaskDetail adds payload and result to the list view.
type TaskDetail struct {
	TaskItem
	Payload JSONB `json:"payload"`
	Result  JSONB `json:"result,omitempty"`
}

// TaskQuery are the list filters of the ops surface.
type TaskQuery struct {
	Status   string `query:"status"`
	TaskType string `query:"task_type"`
	Limit    int    `query:"limit"`
	Offset   int    `query:"offset"`
}

// CreateTaskRequest creates a task manually from the ops UI.
type CreateTaskRequest struct {
	TaskType    string `json:"task_type" binding:"required"`
	CustomerID  int64  `json:"customer_id" binding:"required"`
	ProjectID   int64  `json:"project_id" binding:"required"`
	ScheduledAt string `json:"scheduled_at" binding:"required"` // RFC 3339
	Message     string `json:"message" binding:"required"`
}

// TaskStats aggregates counts per status and per type.
type TaskStats struct {
	ByStatus map[string]int64 `json:"by_status"`
	ByType   map[string]int64 `json:"by_type"`
	Total    int64            `json:"total"`
}

// ========== Job trigger DTOs ==========

// JobRequest triggers a scan or dispatch run from the ops surface.
type JobRequest struct {
	DryRun bool `json:"dry_run"`
	Limit  int  `json:"limit"` // dispatch only; 0 means the configured default
}

// ========== Domain events ==========

// TaskEvent is published on the events exchange after a dispatch outcome.
type TaskEvent struct {
	EventKey   string                 `json:"event_key"`
	OccurredAt string                 `json:"occurred_at"`
	TaskCode   int64                  `json:"task_code"`
	TaskType   string                 `json:"task_type"`
	Status     string                 `json:"status"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}
