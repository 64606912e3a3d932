package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"EstateLink/config"
	"EstateLink/internal/cache"
	"EstateLink/internal/dispatcher"
	"EstateLink/internal/repository"
	"EstateLink/internal/scanner"
	"EstateLink/pkg/clock"
	"EstateLink/pkg/errors"
	"EstateLink/pkg/line"
	"EstateLink/pkg/logger"
	"EstateLink/storage/database"
)

const (
	scanLockKey     = "job:scan"
	dispatchLockKey = "job:dispatch"

	// Generous upper bound on a single run; the lock is released on return.
	jobLockTTL = 30 * time.Minute
)

// JobService runs the scan and dispatch jobs. A Redis lock per job keeps a
// scheduler tick and a manual API trigger from running the same job twice.
type JobService struct {
	scanner    *scanner.Scanner
	dispatcher *dispatcher.Dispatcher
}

var (
	jobService *JobService
	jobOnce    sync.Once
)

func Job() *JobService {
	jobOnce.Do(func() {
		db := database.DB()
		repo := repository.NewTaskRepository(db)
		store := repository.NewContractStore(db)
		clk := clock.System()
		delay := time.Duration(config.Cfg.DispatchDelayMs) * time.Millisecond

		jobService = &JobService{
			scanner:    scanner.NewScanner(store, repo, clk),
			dispatcher: dispatcher.NewDispatcher(repo, line.GetClient(), clk, delay),
		}
	})
	return jobService
}

// RunScan executes one scan run under the scan lock.
func (s *JobService) RunScan(ctx context.Context, dryRun bool) (*scanner.ScanReport, error) {
	ok, err := cache.TryLock(ctx, scanLockKey, jobLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.JobAlreadyRunning
	}
	defer func() {
		if err := cache.Unlock(context.Background(), scanLockKey); err != nil {
			logger.Logger.Warn("Failed to release scan lock", zap.Error(err))
		}
	}()

	return s.scanner.Scan(ctx, dryRun)
}

// RunDispatch executes one dispatch run under the dispatch lock. A limit of
// zero falls back to the configured batch size.
func (s *JobService) RunDispatch(ctx context.Context, dryRun bool, limit int) (*dispatcher.DispatchReport, error) {
	if limit <= 0 {
		limit = config.Cfg.DispatchBatchSize
	}

	ok, err := cache.TryLock(ctx, dispatchLockKey, jobLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.JobAlreadyRunning
	}
	defer func() {
		if err := cache.Unlock(context.Background(), dispatchLockKey); err != nil {
			logger.Logger.Warn("Failed to release dispatch lock", zap.Error(err))
		}
	}()

	return s.dispatcher.Dispatch(ctx, dryRun, limit)
}
