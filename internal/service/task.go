package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"gorm.io/gorm"

	"EstateLink/internal/model"
	"EstateLink/internal/repository"
	"EstateLink/pkg/errors"
	"EstateLink/storage/database"
)

// TaskService is the ops surface over automation tasks: listing, manual
// creation and cancellation. The scanner and dispatcher talk to the
// repository directly; this layer only translates for the API.
type TaskService struct {
	repo  *repository.TaskRepository
	store *repository.ContractStore
}

var (
	taskService *TaskService
	taskOnce    sync.Once
)

func Task() *TaskService {
	taskOnce.Do(func() {
		taskService = &TaskService{
			repo:  repository.NewTaskRepository(database.DB()),
			store: repository.NewContractStore(database.DB()),
		}
	})
	return taskService
}

// List returns tasks matching the query filters.
func (s *TaskService) List(ctx context.Context, query model.TaskQuery) ([]model.TaskItem, error) {
	if query.TaskType != "" && !model.ValidTaskType(model.TaskType(query.TaskType)) {
		return nil, errors.TaskTypeInvalid
	}

	tasks, err := s.repo.List(ctx, repository.TaskFilter{
		Status:   model.TaskStatus(query.Status),
		TaskType: model.TaskType(query.TaskType),
		Limit:    query.Limit,
		Offset:   query.Offset,
	})
	if err != nil {
		return nil, err
	}

	items := make([]model.TaskItem, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, toTaskItem(task))
	}

	return items, nil
}

// Get returns one task with payload and result.
func (s *TaskService) Get(ctx context.Context, code int64) (*model.TaskDetail, error) {
	task, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.TaskNotFound
		}
		return nil, err
	}

	return toTaskDetail(task), nil
}

// Create inserts a manually authored task. The same dedup rule the scanner
// uses applies: one pending task per (type, customer, project, day).
func (s *TaskService) Create(ctx context.Context, req model.CreateTaskRequest, scheduledAt time.Time) (*model.TaskDetail, error) {
	taskType := model.TaskType(req.TaskType)
	if !model.ValidTaskType(taskType) {
		return nil, errors.TaskTypeInvalid
	}

	customer, err := s.store.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.CustomerNotFound
		}
		return nil, err
	}

	project, err := s.store.GetProject(ctx, req.ProjectID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ProjectNotFound
		}
		return nil, err
	}

	exists, err := s.repo.HasPendingTask(ctx, taskType, customer.ID, project.ID, scheduledAt)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.TaskDuplicate
	}

	payload := model.JSONB{
		"customer_name": customer.Name,
		"company_name":  customer.CompanyName,
		"project_name":  project.Name,
		"message":       req.Message,
		"manual":        true,
	}

	task, err := s.repo.CreateTask(ctx, taskType, customer.ID, project.ID, scheduledAt, payload)
	if err != nil {
		return nil, err
	}

	return toTaskDetail(task), nil
}

// Cancel moves a pending task to cancelled.
func (s *TaskService) Cancel(ctx context.Context, code int64) (*model.TaskDetail, error) {
	task, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.TaskNotFound
		}
		return nil, err
	}

	if err := s.repo.Cancel(ctx, task); err != nil {
		if err == repository.ErrTaskNotPending {
			return nil, errors.TaskNotCancellable
		}
		return nil, err
	}

	return toTaskDetail(task), nil
}

// Stats aggregates task counts for the ops dashboard.
func (s *TaskService) Stats(ctx context.Context) (*model.TaskStats, error) {
	return s.repo.Stats(ctx)
}

func toTaskItem(task *model.AutomationTask) model.TaskItem {
	return model.TaskItem{
		ID:          task.ID,
		TaskCode:    strconv.FormatInt(task.TaskCode, 10),
		TaskType:    string(task.TaskType),
		Channel:     string(task.Channel),
		Status:      string(task.Status),
		CustomerID:  task.CustomerID,
		ProjectID:   task.ProjectID,
		RetryCount:  task.RetryCount,
		ScheduledAt: task.ScheduledAt,
		ExecutedAt:  task.ExecutedAt,
	}
}

func toTaskDetail(task *model.AutomationTask) *model.TaskDetail {
	return &model.TaskDetail{
		TaskItem: toTaskItem(task),
		Payload:  task.Payload,
		Result:   task.Result,
	}
}
