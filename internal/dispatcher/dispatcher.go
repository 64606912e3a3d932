package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"EstateLink/internal/model"
	"EstateLink/internal/queue"
	"EstateLink/internal/repository"
	"EstateLink/pkg/clock"
	"EstateLink/pkg/line"
	"EstateLink/pkg/logger"
	"EstateLink/pkg/metrics"
	"EstateLink/utils"
)

// DispatchReport summarizes one dispatch run. Skipped counts tasks that were
// closed without a delivery attempt: data defects (missing channel, missing
// message) and tasks that lost the pending state to a concurrent transition.
type DispatchReport struct {
	RunID      string    `json:"run_id"`
	DryRun     bool      `json:"dry_run"`
	Fetched    int       `json:"fetched"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Dispatcher drains due pending tasks through the LINE gateway, one at a
// time. Sequential delivery with a pause between pushes keeps the run well
// under the Messaging API rate limits.
type Dispatcher struct {
	repo   *repository.TaskRepository
	client line.Client
	clk    clock.Clock
	delay  time.Duration
}

func NewDispatcher(repo *repository.TaskRepository, client line.Client, clk clock.Clock, delay time.Duration) *Dispatcher {
	if clk == nil {
		clk = clock.System()
	}
	return &Dispatcher{repo: repo, client: client, clk: clk, delay: delay}
}

// Dispatch processes up to limit due tasks. With dryRun set it only reports
// what a real run would attempt; no push happens and no task changes state.
func (d *Dispatcher) Dispatch(ctx context.Context, dryRun bool, limit int) (*DispatchReport, error) {
	report := &DispatchReport{RunID: uuid.NewString(), DryRun: dryRun, StartedAt: d.clk.Now()}

	tasks, err := d.repo.GetDueTasks(ctx, d.clk.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("dispatch aborted: %w", err)
	}
	report.Fetched = len(tasks)

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		d.dispatchOne(ctx, task, dryRun, report)
	}

	report.FinishedAt = d.clk.Now()
	logger.Logger.Info("Dispatch finished",
		zap.String("run_id", report.RunID),
		zap.Bool("dry_run", dryRun),
		zap.Int("fetched", report.Fetched),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped))

	return report, nil
}

// dispatchOne settles exactly one task. A panic while handling a task is
// contained here so one poisoned payload cannot take down the whole batch.
func (d *Dispatcher) dispatchOne(ctx context.Context, task *model.AutomationTask, dryRun bool, report *DispatchReport) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		logger.Logger.Error("Panic while dispatching task",
			zap.Int64("task_code", task.TaskCode),
			zap.Any("panic", r))

		if dryRun {
			return
		}
		result := model.JSONB{"error": fmt.Sprintf("panic: %v", r)}
		if err := d.repo.MarkFailed(ctx, task, result, d.clk.Now()); err == nil {
			report.Failed++
			d.recordOutcome(ctx, task, "failed", 0)
			queue.PublishTaskFailed(task)
		}
	}()

	recipient := ""
	if task.Customer != nil {
		recipient = task.Customer.LineUserID
	}
	message := task.Message()

	if recipient == "" {
		d.closeDefective(ctx, task, "customer has no LINE user ID", dryRun, report)
		return
	}
	if message == "" {
		d.closeDefective(ctx, task, "payload has no rendered message", dryRun, report)
		return
	}

	if dryRun {
		logger.Logger.Info("Would push task",
			zap.Int64("task_code", task.TaskCode),
			zap.String("task_type", string(task.TaskType)),
			zap.String("line_user_id", recipient))
		report.Succeeded++
		return
	}

	pushStart := d.clk.Now()
	res, pushErr := d.client.Push(ctx, recipient, message)
	pushSeconds := d.clk.Now().Sub(pushStart).Seconds()

	if pushErr != nil {
		result := model.JSONB{"error": pushErr.Error()}
		if res != nil {
			result["response"] = model.JSONB{
				"status_code": res.StatusCode,
				"request_id":  res.RequestID,
				"body":        res.Body,
			}
		}
		d.settle(ctx, task, result, false, report)
	} else {
		result := model.JSONB{
			"sent_at":      d.clk.Now().Format(time.RFC3339),
			"line_user_id": recipient,
			"response": model.JSONB{
				"status_code": res.StatusCode,
				"request_id":  res.RequestID,
			},
		}
		d.settle(ctx, task, result, true, report)
	}

	d.recordOutcome(ctx, task, string(task.Status), pushSeconds)

	// Pause after every delivery attempt, successful or not.
	if d.delay > 0 {
		utils.SleepContext(ctx, d.delay)
	}
}

// closeDefective fails a task that cannot be attempted at all. These count
// as skipped, not failed: nothing was pushed.
func (d *Dispatcher) closeDefective(ctx context.Context, task *model.AutomationTask, reason string, dryRun bool, report *DispatchReport) {
	logger.Logger.Warn("Task is not deliverable",
		zap.Int64("task_code", task.TaskCode),
		zap.String("reason", reason))

	report.Skipped++
	if dryRun {
		return
	}

	result := model.JSONB{"error": reason}
	if err := d.repo.MarkFailed(ctx, task, result, d.clk.Now()); err != nil {
		if errors.Is(err, repository.ErrTaskNotPending) {
			return
		}
		logger.Logger.Error("Failed to close defective task",
			zap.Int64("task_code", task.TaskCode),
			zap.Error(err))
		return
	}

	d.recordOutcome(ctx, task, "failed", 0)
	queue.PublishTaskFailed(task)
}

func (d *Dispatcher) settle(ctx context.Context, task *model.AutomationTask, result model.JSONB, delivered bool, report *DispatchReport) {
	var err error
	if delivered {
		err = d.repo.MarkExecuted(ctx, task, result, d.clk.Now())
	} else {
		err = d.repo.MarkFailed(ctx, task, result, d.clk.Now())
	}

	if err != nil {
		if errors.Is(err, repository.ErrTaskNotPending) {
			// Lost the CAS to a concurrent cancel; the other transition wins.
			logger.Logger.Warn("Task left pending state during dispatch",
				zap.Int64("task_code", task.TaskCode))
			report.Skipped++
			return
		}
		logger.Logger.Error("Failed to settle task",
			zap.Int64("task_code", task.TaskCode),
			zap.Bool("delivered", delivered),
			zap.Error(err))
		report.Failed++
		return
	}

	if delivered {
		report.Succeeded++
		logger.Logger.Info("Task executed",
			zap.Int64("task_code", task.TaskCode),
			zap.String("task_type", string(task.TaskType)))
		queue.PublishTaskExecuted(task)
	} else {
		report.Failed++
		logger.Logger.Warn("Task failed",
			zap.Int64("task_code", task.TaskCode),
			zap.String("task_type", string(task.TaskType)),
			zap.Int("retry_count", task.RetryCount))
		queue.PublishTaskFailed(task)
	}
}

func (d *Dispatcher) recordOutcome(ctx context.Context, task *model.AutomationTask, status string, pushSeconds float64) {
	if m := metrics.GetMetrics(); m != nil {
		m.RecordDispatchOutcome(ctx, string(task.TaskType), status, pushSeconds)
	}
}
