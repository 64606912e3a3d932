package scanner

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
	"EstateLink/internal/repository"
	"EstateLink/pkg/clock"
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

type fixture struct {
	db      *gorm.DB
	repo    *repository.TaskRepository
	store   *repository.ContractStore
	scanner *Scanner
	clk     *clock.Fixed
}

func newFixture(t *testing.T, year int, month time.Month, day int) *fixture {
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

	repo := repository.NewTaskRepository(db)
	store := repository.NewContractStore(db)
	clk := clock.Date(year, month, day)

	return &fixture{
		db:      db,
		repo:    repo,
		store:   store,
		scanner: NewScanner(store, repo, clk),
		clk:     clk,
	}
}

func date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
	return &d
}

func (f *fixture) seedProject(t *testing.T, lineUserID string, nextPayDay, endDay *time.Time) (*model.Customer, *model.Project) {
	t.Helper()

	customer := &model.Customer{
		BranchID:    1,
		Name:        "田中太郎",
		CompanyName: "",
		LineUserID:  lineUserID,
	}
	require.NoError(t, f.db.Create(customer).Error)

	project := &model.Project{
		BranchID:   1,
		CustomerID: customer.ID,
		Name:       "グランメゾン101",
		Status:     model.ProjectStatusActive,
		MonthlyFee: 65000,
		NextPayDay: nextPayDay,
		EndDay:     endDay,
	}
	require.NoError(t, f.db.Create(project).Error)

	return customer, project
}

func (f *fixture) taskCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&model.AutomationTask{}).Count(&count).Error)
	return count
}

func TestScanCreatesPaymentAndRenewalTasks(t *testing.T) {
	// Today 2025-06-03. Pay day 06-10 puts both payment offsets (-7 = today,
	// -3 = 06-07) in range; end day 08-02 puts both renewal offsets
	// (-60 = today, -30 = 07-03) in range.
	f := newFixture(t, 2025, time.June, 3)
	f.seedProject(t, "U123", date(2025, time.June, 10), date(2025, time.August, 2))
	ctx := context.Background()

	report, err := f.scanner.Scan(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, 1, report.ScannedProjects)
	assert.Equal(t, 2, report.CreatedPayment)
	assert.Equal(t, 2, report.CreatedRenewal)
	assert.Equal(t, 4, report.Created())
	assert.Equal(t, 0, report.SkippedNoChannelID)
	assert.Equal(t, 0, report.SkippedAlreadyExist)
	assert.Equal(t, int64(4), f.taskCount(t))

	var tasks []*model.AutomationTask
	require.NoError(t, f.db.Order("scheduled_at ASC").Where("task_type = ?", model.TaskTypePaymentReminder).Find(&tasks).Error)
	require.Len(t, tasks, 2)

	// Tasks land on the send day at midnight, message rendered up front.
	assert.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, time.Local).Unix(), tasks[0].ScheduledAt.Unix())
	assert.Equal(t, time.Date(2025, 6, 7, 0, 0, 0, 0, time.Local).Unix(), tasks[1].ScheduledAt.Unix())
	assert.Contains(t, tasks[0].Message(), "65,000")
	assert.Contains(t, tasks[0].Message(), "2025/06/10")
	assert.Contains(t, tasks[0].Message(), "田中太郎様")
	assert.Equal(t, model.TaskStatusPending, tasks[0].Status)
}

func TestScanIsIdempotent(t *testing.T) {
	f := newFixture(t, 2025, time.June, 3)
	f.seedProject(t, "U123", date(2025, time.June, 10), date(2025, time.August, 2))
	ctx := context.Background()

	first, err := f.scanner.Scan(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 4, first.Created())

	second, err := f.scanner.Scan(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, 0, second.Created())
	assert.Equal(t, 4, second.SkippedAlreadyExist)
	assert.Equal(t, int64(4), f.taskCount(t))
}

func TestScanSkipsCustomersWithoutLineID(t *testing.T) {
	f := newFixture(t, 2025, time.June, 3)
	f.seedProject(t, "", date(2025, time.June, 10), nil)
	ctx := context.Background()

	report, err := f.scanner.Scan(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Created())
	assert.Equal(t, 2, report.SkippedNoChannelID)
	assert.Equal(t, int64(0), f.taskCount(t))
}

func TestScanFiltersPastSendDays(t *testing.T) {
	// Pay day 06-05: -7 = 05-29 (past, dropped), -3 = 06-02 (past, dropped).
	f := newFixture(t, 2025, time.June, 3)
	f.seedProject(t, "U123", date(2025, time.June, 5), nil)
	ctx := context.Background()

	report, err := f.scanner.Scan(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Created())
	assert.Equal(t, int64(0), f.taskCount(t))
}

func TestScanPartialWindow(t *testing.T) {
	// Pay day 06-08: -7 = 06-01 (past), -3 = 06-05 (future) -> one task.
	f := newFixture(t, 2025, time.June, 3)
	f.seedProject(t, "U123", date(2025, time.June, 8), nil)
	ctx := context.Background()

	report, err := f.scanner.Scan(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, 1, report.CreatedPayment)
	assert.Equal(t, int64(1), f.taskCount(t))
}

func TestScanIgnoresInactiveProjects(t *testing.T) {
	f := newFixture(t, 2025, time.June, 3)
	customer, project := f.seedProject(t, "U123", date(2025, time.June, 10), nil)
	_ = customer
	require.NoError(t, f.db.Model(project).Update("status", model.ProjectStatusTerminated).Error)
	ctx := context.Background()

	report, err := f.scanner.Scan(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, 0, report.ScannedProjects)
	assert.Equal(t, int64(0), f.taskCount(t))
}

func TestScanDryRunWritesNothing(t *testing.T) {
	f := newFixture(t, 2025, time.June, 3)
	f.seedProject(t, "U123", date(2025, time.June, 10), date(2025, time.August, 2))
	ctx := context.Background()

	report, err := f.scanner.Scan(ctx, true)
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, 4, report.Created())
	assert.Equal(t, int64(0), f.taskCount(t))

	// A real run after the dry run still creates everything.
	real, err := f.scanner.Scan(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 4, real.Created())
}

func TestScanSkipsProjectsWithoutDates(t *testing.T) {
	f := newFixture(t, 2025, time.June, 3)
	f.seedProject(t, "U123", nil, nil)
	ctx := context.Background()

	report, err := f.scanner.Scan(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, 1, report.ScannedProjects)
	assert.Equal(t, 0, report.Created())
}

func TestRenderPaymentReminder(t *testing.T) {
	customer := &model.Customer{Name: "田中太郎"}
	project := &model.Project{Name: "グランメゾン101", MonthlyFee: 65000}
	payDay := time.Date(2025, 6, 10, 0, 0, 0, 0, time.Local)

	msg := RenderPaymentReminder(customer, project, payDay, 7)

	assert.Contains(t, msg, "田中太郎様")
	assert.Contains(t, msg, "グランメゾン101")
	assert.Contains(t, msg, "65,000円")
	assert.Contains(t, msg, "2025/06/10")
	assert.Contains(t, msg, "あと7日")
	assert.NotContains(t, msg, "\n\n\n")
}

func TestRenderGreetingWithCompany(t *testing.T) {
	customer := &model.Customer{Name: "田中太郎", CompanyName: "株式会社サンプル"}
	project := &model.Project{Name: "グランメゾン101"}
	endDay := time.Date(2025, 8, 2, 0, 0, 0, 0, time.Local)

	msg := RenderRenewalReminder(customer, project, endDay, 30)

	assert.Contains(t, msg, "株式会社サンプル")
	assert.Contains(t, msg, "田中太郎様")
	assert.Contains(t, msg, "2025/08/02")
	assert.Contains(t, msg, "あと30日")
}
