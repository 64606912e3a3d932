package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"EstateLink/internal/model"
	"EstateLink/pkg/snowflake"
	"EstateLink/utils"
)

// ErrTaskNotPending is returned when a status transition loses the
// compare-and-swap against a concurrent transition. Pending is the only
// state a task can leave.
var ErrTaskNotPending = errors.New("task is not pending")

// TaskRepository persists automation tasks and guards their state machine.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// HasPendingTask reports whether a pending task already exists for the
// (type, customer, project, calendar day) tuple. The scanner calls this
// before every insert; time-of-day is ignored.
func (r *TaskRepository) HasPendingTask(ctx context.Context, taskType model.TaskType, customerID, projectID int64, day time.Time) (bool, error) {
	dayStart := utils.DateOnly(day)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.AutomationTask{}).
		Where("task_type = ?", taskType).
		Where("customer_id = ?", customerID).
		Where("project_id = ?", projectID).
		Where("status = ?", model.TaskStatusPending).
		Where("scheduled_at >= ? AND scheduled_at < ?", dayStart, dayEnd).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check pending task: %w", err)
	}

	return count > 0, nil
}

// CreateTask inserts a new pending task on the LINE channel.
func (r *TaskRepository) CreateTask(ctx context.Context, taskType model.TaskType, customerID, projectID int64, scheduledAt time.Time, payload model.JSONB) (*model.AutomationTask, error) {
	code, err := snowflake.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate task code: %w", err)
	}

	task := &model.AutomationTask{
		TaskCode:    code,
		TaskType:    taskType,
		CustomerID:  &customerID,
		ProjectID:   &projectID,
		Status:      model.TaskStatusPending,
		Channel:     model.TaskChannelLine,
		Payload:     payload,
		ScheduledAt: scheduledAt,
	}

	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// GetDueTasks returns pending tasks with scheduled_at <= now, oldest first,
// with the customer and project context the dispatcher needs.
func (r *TaskRepository) GetDueTasks(ctx context.Context, now time.Time, limit int) ([]*model.AutomationTask, error) {
	var tasks []*model.AutomationTask
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Project").
		Where("status = ?", model.TaskStatusPending).
		Where("scheduled_at <= ?", now).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load due tasks: %w", err)
	}

	return tasks, nil
}

// MarkExecuted moves a pending task to executed. The update is conditioned
// on status = pending so a concurrent cancel cannot be overwritten.
func (r *TaskRepository) MarkExecuted(ctx context.Context, task *model.AutomationTask, result model.JSONB, executedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.AutomationTask{}).
		Where("id = ? AND status = ?", task.ID, model.TaskStatusPending).
		Updates(map[string]interface{}{
			"status":      model.TaskStatusExecuted,
			"result":      result,
			"executed_at": executedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark task executed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTaskNotPending
	}

	task.Status = model.TaskStatusExecuted
	task.Result = result
	task.ExecutedAt = &executedAt
	return nil
}

// MarkFailed moves a pending task to failed and increments retry_count.
func (r *TaskRepository) MarkFailed(ctx context.Context, task *model.AutomationTask, result model.JSONB, executedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.AutomationTask{}).
		Where("id = ? AND status = ?", task.ID, model.TaskStatusPending).
		Updates(map[string]interface{}{
			"status":      model.TaskStatusFailed,
			"result":      result,
			"executed_at": executedAt,
			"retry_count": gorm.Expr("retry_count + 1"),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark task failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTaskNotPending
	}

	task.Status = model.TaskStatusFailed
	task.Result = result
	task.ExecutedAt = &executedAt
	task.RetryCount++
	return nil
}

// Cancel moves a pending task to cancelled.
func (r *TaskRepository) Cancel(ctx context.Context, task *model.AutomationTask) error {
	res := r.db.WithContext(ctx).
		Model(&model.AutomationTask{}).
		Where("id = ? AND status = ?", task.ID, model.TaskStatusPending).
		Update("status", model.TaskStatusCancelled)
	if res.Error != nil {
		return fmt.Errorf("failed to cancel task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTaskNotPending
	}

	task.Status = model.TaskStatusCancelled
	return nil
}

// GetByCode loads a task with its context by task code.
func (r *TaskRepository) GetByCode(ctx context.Context, code int64) (*model.AutomationTask, error) {
	var task model.AutomationTask
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Project").
		Where("task_code = ?", code).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// TaskFilter narrows List results.
type TaskFilter struct {
	Status   model.TaskStatus
	TaskType model.TaskType
	Limit    int
	Offset   int
}

// List returns tasks for the ops surface, newest scheduled first.
func (r *TaskRepository) List(ctx context.Context, filter TaskFilter) ([]*model.AutomationTask, error) {
	q := r.db.WithContext(ctx).Model(&model.AutomationTask{})

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.TaskType != "" {
		q = q.Where("task_type = ?", filter.TaskType)
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}

	var tasks []*model.AutomationTask
	err := q.Order("scheduled_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// Stats aggregates counts per status and per type.
func (r *TaskRepository) Stats(ctx context.Context) (*model.TaskStats, error) {
	type row struct {
		Key   string
		Count int64
	}

	stats := &model.TaskStats{
		ByStatus: make(map[string]int64),
		ByType:   make(map[string]int64),
	}

	var byStatus []row
	err := r.db.WithContext(ctx).
		Model(&model.AutomationTask{}).
		Select("status AS key, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by status: %w", err)
	}
	for _, r := range byStatus {
		stats.ByStatus[r.Key] = r.Count
		stats.Total += r.Count
	}

	var byType []row
	err = r.db.WithContext(ctx).
		Model(&model.AutomationTask{}).
		Select("task_type AS key, COUNT(*) AS count").
		Group("task_type").
		Scan(&byType).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by type: %w", err)
	}
	for _, r := range byType {
		stats.ByType[r.Key] = r.Count
	}

	return stats, nil
}
