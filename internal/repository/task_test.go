package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"EstateLink/internal/model"
	"EstateLink/pkg/logger"
	"EstateLink/pkg/snowflake"
)

func TestMain(m *testing.M) {
	logger.Init()
	if err := snowflake.Init(1, 1); err != nil {
		panic(err)
	}
	m.Run()
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Branch{},
		&model.Customer{},
		&model.Project{},
		&model.AutomationTask{},
	))

	return db
}

func seedContract(t *testing.T, db *gorm.DB, lineUserID string) (*model.Customer, *model.Project) {
	t.Helper()

	customer := &model.Customer{
		BranchID:   1,
		Name:       "田中太郎",
		LineUserID: lineUserID,
	}
	require.NoError(t, db.Create(customer).Error)

	payDay := time.Date(2025, 6, 10, 0, 0, 0, 0, time.Local)
	project := &model.Project{
		BranchID:   1,
		CustomerID: customer.ID,
		Name:       "グランメゾン101",
		Status:     model.ProjectStatusActive,
		MonthlyFee: 65000,
		NextPayDay: &payDay,
	}
	require.NoError(t, db.Create(project).Error)

	return customer, project
}

func TestCreateTaskDefaults(t *testing.T) {
	db := openTestDB(t)
	repo := NewTaskRepository(db)
	customer, project := seedContract(t, db, "U123")
	ctx := context.Background()

	scheduledAt := time.Date(2025, 6, 3, 0, 0, 0, 0, time.Local)
	task, err := repo.CreateTask(ctx, model.TaskTypePaymentReminder, customer.ID, project.ID, scheduledAt, model.JSONB{"message": "hello"})
	require.NoError(t, err)

	assert.NotZero(t, task.TaskCode)
	assert.Equal(t, model.TaskStatusPending, task.Status)
	assert.Equal(t, model.TaskChannelLine, task.Channel)
	assert.Equal(t, 0, task.RetryCount)
	assert.Nil(t, task.ExecutedAt)

	loaded, err := repo.GetByCode(ctx, task.TaskCode)
	require.NoError(t, err)
	assert.Equal(t, "hello", loaded.Message())
	require.NotNil(t, loaded.Customer)
	assert.Equal(t, "U123", loaded.Customer.LineUserID)
}

func TestHasPendingTaskDayWindow(t *testing.T) {
	db := openTestDB(t)
	repo := NewTaskRepository(db)
	customer, project := seedContract(t, db, "U123")
	ctx := context.Background()

	scheduledAt := time.Date(2025, 6, 3, 9, 30, 0, 0, time.Local)
	_, err := repo.CreateTask(ctx, model.TaskTypePaymentReminder, customer.ID, project.ID, scheduledAt, model.JSONB{"message": "m"})
	require.NoError(t, err)

	// Same calendar day, different time of day.
	sameDay := time.Date(2025, 6, 3, 23, 0, 0, 0, time.Local)
	exists, err := repo.HasPendingTask(ctx, model.TaskTypePaymentReminder, customer.ID, project.ID, sameDay)
	require.NoError(t, err)
	assert.True(t, exists)

	nextDay := scheduledAt.AddDate(0, 0, 1)
	exists, err = repo.HasPendingTask(ctx, model.TaskTypePaymentReminder, customer.ID, project.ID, nextDay)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.HasPendingTask(ctx, model.TaskTypeRenewalReminder, customer.ID, project.ID, sameDay)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.HasPendingTask(ctx, model.TaskTypePaymentReminder, customer.ID+1, project.ID, sameDay)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestHasPendingTaskIgnoresTerminalTasks(t *testing.T) {
	db := openTestDB(t)
	repo := NewTaskRepository(db)
	customer, project := seedContract(t, db, "U123")
	ctx := context.Background()

	scheduledAt := time.Date(2025, 6, 3, 0, 0, 0, 0, time.Local)
	task, err := repo.CreateTask(ctx, model.TaskTypePaymentReminder, customer.ID, project.ID, scheduledAt, model.JSONB{"message": "m"})
	require.NoError(t, err)

	require.NoError(t, repo.Cancel(ctx, task))

	exists, err := repo.HasPendingTask(ctx, model.TaskTypePaymentReminder, customer.ID, project.ID, scheduledAt)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGetDueTasksOrderAndLimit(t *testing.T) {
	db := openTestDB(t)
	repo := NewTaskRepository(db)
	customer, project := seedContract(t, db, "U123")
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local)
	for i := 0; i < 3; i++ {
		_, err := repo.CreateTask(ctx, model.TaskTypePaymentReminder, customer.ID, project.ID, base.AddDate(0, 0, i), model.JSONB{"message": "m"})
		require.NoError(t, err)
	}
	// Not yet due.
	_, err := repo.CreateTask(ctx, model.TaskTypeRenewalReminder, customer.ID, project.ID, base.AddDate(0, 0, 30), model.JSONB{"message": "m"})
	require.NoError(t, err)

	now := base.AddDate(0, 0, 10)

	due, err := repo.GetDueTasks(ctx, now, 100)
	require.NoError(t, err)
	require.Len(t, due, 3)
	assert.True(t, due[0].ScheduledAt.Before(due[1].ScheduledAt))
	assert.True(t, due[1].ScheduledAt.Before(due[2].ScheduledAt))
	require.NotNil(t, due[0].Customer)
	require.NotNil(t, due[0].Project)

	limited, err := repo.GetDueTasks(ctx, now, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestMarkExecutedIsTerminal(t *testing.T) {
	db := openTestDB(t)
	repo := NewTaskRepository(db)
	customer, project := seedContract(t, db, "U123")
	ctx := context.Background()

	scheduledAt := time.Date(2025, 6, 3, 0, 0, 0, 0, time.Local)
	task, err := repo.CreateTask(ctx, model.TaskTypePaymentReminder, customer.ID, project.ID, scheduledAt, model.JSONB{"message": "m"})
	require.NoError(t, err)

	executedAt := scheduledAt.Add(10 * time.Hour)
	result := model.JSONB{"line_user_id": "U123"}
	require.NoError(t, repo.MarkExecuted(ctx, task, result, executedAt))

	assert.Equal(t, model.TaskStatusExecuted, task.Status)
	assert.True(t, task.Terminal())
	require.NotNil(t, task.ExecutedAt)

	// Every further transition loses the pending CAS.
	assert.ErrorIs(t, repo.MarkExecuted(ctx, task, result, executedAt), ErrTaskNotPending)
	assert.ErrorIs(t, repo.MarkFailed(ctx, task, result, executedAt), ErrTaskNotPending)
	assert.ErrorIs(t, repo.Cancel(ctx, task), ErrTaskNotPending)

	loaded, err := repo.GetByCode(ctx, task.TaskCode)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusExecuted, loaded.Status)
	assert.Equal(t, "U123", loaded.Result["line_user_id"])
}

func TestMarkFailedIncrementsRetryCount(t *testing.T) {
	db := openTestDB(t)
	repo := NewTaskRepository(db)
	customer, project := seedContract(t, db, "U123")
	ctx := context.Background()

	scheduledAt := time.Date(2025, 6, 3, 0, 0, 0, 0, time.Local)
	task, err := repo.CreateTask(ctx, model.TaskTypePaymentReminder, customer.ID, project.ID, scheduledAt, model.JSONB{"message": "m"})
	require.NoError(t, err)

	require.NoError(t, repo.MarkFailed(ctx, task, model.JSONB{"error": "boom"}, scheduledAt))

	assert.Equal(t, model.TaskStatusFailed, task.Status)
	assert.Equal(t, 1, task.RetryCount)

	loaded, err := repo.GetByCode(ctx, task.TaskCode)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.RetryCount)
	assert.Equal(t, "boom", loaded.Result["error"])
}

func TestCancelPendingTask(t *testing.T) {
	db := openTestDB(t)
	repo := NewTaskRepository(db)
	customer, project := seedContract(t, db, "U123")
	ctx := context.Background()

	scheduledAt := time.Date(2025, 6, 3, 0, 0, 0, 0, time.Local)
	task, err := repo.CreateTask(ctx, model.TaskTypePaymentReminder, customer.ID, project.ID, scheduledAt, model.JSONB{"message": "m"})
	require.NoError(t, err)

	require.NoError(t, repo.Cancel(ctx, task))
	assert.Equal(t, model.TaskStatusCancelled, task.Status)

	// A cancelled task never reaches the dispatcher.
	due, err := repo.GetDueTasks(ctx, scheduledAt.AddDate(0, 0, 1), 100)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestListFilters(t *testing.T) {
	db := openTestDB(t)
	repo := NewTaskRepository(db)
	customer, project := seedContract(t, db, "U123")
	ctx := context.Background()

	scheduledAt := time.Date(2025, 6, 3, 0, 0, 0, 0, time.Local)
	payment, err := repo.CreateTask(ctx, model.TaskTypePaymentReminder, customer.ID, project.ID, scheduledAt, model.JSONB{"message": "m"})
	require.NoError(t, err)
	_, err = repo.CreateTask(ctx, model.TaskTypeRenewalReminder, customer.ID, project.ID, scheduledAt.AddDate(0, 0, 1), model.JSONB{"message": "m"})
	require.NoError(t, err)

	require.NoError(t, repo.Cancel(ctx, payment))

	all, err := repo.List(ctx, TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cancelled, err := repo.List(ctx, TaskFilter{Status: model.TaskStatusCancelled})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, model.TaskTypePaymentReminder, cancelled[0].TaskType)

	renewals, err := repo.List(ctx, TaskFilter{TaskType: model.TaskTypeRenewalReminder})
	require.NoError(t, err)
	assert.Len(t, renewals, 1)
}

func TestStatsAggregation(t *testing.T) {
	db := openTestDB(t)
	repo := NewTaskRepository(db)
	customer, project := seedContract(t, db, "U123")
	ctx := context.Background()

	base := time.Date(2025, 6, 3, 0, 0, 0, 0, time.Local)
	first, err := repo.CreateTask(ctx, model.TaskTypePaymentReminder, customer.ID, project.ID, base, model.JSONB{"message": "m"})
	require.NoError(t, err)
	_, err = repo.CreateTask(ctx, model.TaskTypePaymentReminder, customer.ID, project.ID, base.AddDate(0, 0, 1), model.JSONB{"message": "m"})
	require.NoError(t, err)
	_, err = repo.CreateTask(ctx, model.TaskTypeRenewalReminder, customer.ID, project.ID, base, model.JSONB{"message": "m"})
	require.NoError(t, err)

	require.NoError(t, repo.MarkExecuted(ctx, first, model.JSONB{}, base))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.ByStatus["pending"])
	assert.Equal(t, int64(1), stats.ByStatus["executed"])
	assert.Equal(t, int64(2), stats.ByType["payment_reminder"])
	assert.Equal(t, int64(1), stats.ByType["renewal_reminder"])
}
