package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"EstateLink/internal/model"
	"EstateLink/internal/repository"
	"EstateLink/pkg/clock"
	"EstateLink/pkg/logger"
	"EstateLink/pkg/metrics"
	"EstateLink/utils"
)

// Reminder offsets, in days before the contract date.
var (
	paymentOffsets = []int{7, 3}
	renewalOffsets = []int{60, 30}
)

// ScanReport summarizes one scan run.
type ScanReport struct {
	RunID               string    `json:"run_id"`
	DryRun              bool      `json:"dry_run"`
	ScannedProjects     int       `json:"scanned_projects"`
	CreatedPayment      int       `json:"created_payment"`
	CreatedRenewal      int       `json:"created_renewal"`
	SkippedNoChannelID  int       `json:"skipped_no_channel_id"`
	SkippedAlreadyExist int       `json:"skipped_already_exists"`
	StartedAt           time.Time `json:"started_at"`
	FinishedAt          time.Time `json:"finished_at"`
}

func (r *ScanReport) Created() int {
	return r.CreatedPayment + r.CreatedRenewal
}

// Scanner walks active contracts and schedules the reminder tasks they are
// due for. Scanning is idempotent: re-running on the same day creates
// nothing new because every candidate is deduplicated against pending tasks.
type Scanner struct {
	store *repository.ContractStore
	repo  *repository.TaskRepository
	clk   clock.Clock
}

func NewScanner(store *repository.ContractStore, repo *repository.TaskRepository, clk clock.Clock) *Scanner {
	if clk == nil {
		clk = clock.System()
	}
	return &Scanner{store: store, repo: repo, clk: clk}
}

// Scan creates the payment and renewal reminder tasks implied by the current
// contract data. With dryRun set it only counts what a real run would create.
func (s *Scanner) Scan(ctx context.Context, dryRun bool) (*ScanReport, error) {
	report := &ScanReport{RunID: uuid.NewString(), DryRun: dryRun, StartedAt: s.clk.Now()}
	today := utils.DateOnly(s.clk.Now())

	projects, err := s.store.ActiveProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan aborted: %w", err)
	}
	report.ScannedProjects = len(projects)

	for _, project := range projects {
		if err := s.scanProject(ctx, project, today, dryRun, report); err != nil {
			return nil, err
		}
	}

	report.FinishedAt = s.clk.Now()
	logger.Logger.Info("Scan finished",
		zap.String("run_id", report.RunID),
		zap.Bool("dry_run", dryRun),
		zap.Int("scanned_projects", report.ScannedProjects),
		zap.Int("created_payment", report.CreatedPayment),
		zap.Int("created_renewal", report.CreatedRenewal),
		zap.Int("skipped_no_channel_id", report.SkippedNoChannelID),
		zap.Int("skipped_already_exists", report.SkippedAlreadyExist))

	return report, nil
}

func (s *Scanner) scanProject(ctx context.Context, project *model.Project, today time.Time, dryRun bool, report *ScanReport) error {
	customer := project.Customer
	if customer == nil {
		logger.Logger.Warn("Project has no customer, skipping",
			zap.Int64("project_id", project.ID))
		return nil
	}

	if project.NextPayDay != nil {
		for _, offset := range paymentOffsets {
			if err := s.scanPayment(ctx, customer, project, *project.NextPayDay, offset, today, dryRun, report); err != nil {
				return err
			}
		}
	}

	if project.EndDay != nil {
		for _, offset := range renewalOffsets {
			if err := s.scanRenewal(ctx, customer, project, *project.EndDay, offset, today, dryRun, report); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Scanner) scanPayment(ctx context.Context, customer *model.Customer, project *model.Project, nextPayDay time.Time, offset int, today time.Time, dryRun bool, report *ScanReport) error {
	sendDay := utils.DateOnly(nextPayDay).AddDate(0, 0, -offset)
	if sendDay.Before(today) {
		return nil
	}

	created, err := s.createIfAbsent(ctx, model.TaskTypePaymentReminder, customer, project, sendDay, dryRun, report, func() model.JSONB {
		payload := model.PaymentReminderPayload{
			CustomerName: customer.Name,
			CompanyName:  customer.CompanyName,
			ProjectName:  project.Name,
			NextPayDay:   utils.DateOnly(nextPayDay),
			Amount:       project.MonthlyFee,
			DaysBefore:   offset,
			Message:      RenderPaymentReminder(customer, project, nextPayDay, offset),
		}
		return payload.ToJSONB()
	})
	if err != nil {
		return err
	}
	if created {
		report.CreatedPayment++
	}
	return nil
}

func (s *Scanner) scanRenewal(ctx context.Context, customer *model.Customer, project *model.Project, endDay time.Time, offset int, today time.Time, dryRun bool, report *ScanReport) error {
	sendDay := utils.DateOnly(endDay).AddDate(0, 0, -offset)
	if sendDay.Before(today) {
		return nil
	}

	created, err := s.createIfAbsent(ctx, model.TaskTypeRenewalReminder, customer, project, sendDay, dryRun, report, func() model.JSONB {
		payload := model.RenewalReminderPayload{
			CustomerName: customer.Name,
			CompanyName:  customer.CompanyName,
			ProjectName:  project.Name,
			EndDay:       utils.DateOnly(endDay),
			DaysBefore:   offset,
			Message:      RenderRenewalReminder(customer, project, endDay, offset),
		}
		return payload.ToJSONB()
	})
	if err != nil {
		return err
	}
	if created {
		report.CreatedRenewal++
	}
	return nil
}

// createIfAbsent applies the shared candidate filters (channel present, not
// already scheduled for that day) and then inserts, unless dry-running.
func (s *Scanner) createIfAbsent(ctx context.Context, taskType model.TaskType, customer *model.Customer, project *model.Project, sendDay time.Time, dryRun bool, report *ScanReport, buildPayload func() model.JSONB) (bool, error) {
	if !customer.HasChannelID() {
		report.SkippedNoChannelID++
		if m := metrics.GetMetrics(); m != nil {
			m.RecordTaskSkipped(ctx, string(taskType), "no_channel_id")
		}
		logger.Logger.Debug("Customer has no LINE user ID, skipping",
			zap.Int64("customer_id", customer.ID),
			zap.String("task_type", string(taskType)))
		return false, nil
	}

	exists, err := s.repo.HasPendingTask(ctx, taskType, customer.ID, project.ID, sendDay)
	if err != nil {
		return false, err
	}
	if exists {
		report.SkippedAlreadyExist++
		if m := metrics.GetMetrics(); m != nil {
			m.RecordTaskSkipped(ctx, string(taskType), "already_exists")
		}
		return false, nil
	}

	if dryRun {
		logger.Logger.Info("Would create task",
			zap.String("task_type", string(taskType)),
			zap.Int64("customer_id", customer.ID),
			zap.Int64("project_id", project.ID),
			zap.Time("scheduled_at", sendDay))
		return true, nil
	}

	task, err := s.repo.CreateTask(ctx, taskType, customer.ID, project.ID, sendDay, buildPayload())
	if err != nil {
		return false, err
	}

	if m := metrics.GetMetrics(); m != nil {
		m.RecordTaskCreated(ctx, string(taskType))
	}

	logger.Logger.Info("Task created",
		zap.Int64("task_code", task.TaskCode),
		zap.String("task_type", string(taskType)),
		zap.Int64("customer_id", customer.ID),
		zap.Int64("project_id", project.ID),
		zap.Time("scheduled_at", sendDay))

	return true, nil
}
