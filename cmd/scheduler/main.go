package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"EstateLink/config"
	"EstateLink/internal/service"
	pkgerrors "EstateLink/pkg/errors"
	"EstateLink/pkg/line"
	"EstateLink/pkg/logger"
	"EstateLink/pkg/metrics"
	"EstateLink/pkg/otel"
	"EstateLink/pkg/snowflake"
	"EstateLink/storage"
)

func main() {
	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Scheduler received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	otelShutdown, err := otel.InitOpenTelemetry(ctx, otel.Config{
		ServiceName:    config.Cfg.ServiceName + "-scheduler",
		ServiceVersion: "1.0.0",
		Environment:    config.Cfg.Environment,
		OTLPEndpoint:   config.Cfg.OTLPEndpoint,
	})
	if err != nil {
		logger.Logger.Warn("Failed to initialize OpenTelemetry, telemetry disabled", zap.Error(err))
	} else {
		defer func() {
			if err := otelShutdown(context.Background()); err != nil {
				logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
			}
		}()
	}

	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Fatal("Failed to initialize pipeline metrics", zap.Error(err))
	}

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage for scheduler", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake for scheduler", zap.Error(err))
	}

	if err := line.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize LINE client for scheduler", zap.Error(err))
	}

	logger.Logger.Info("Scheduler service starting",
		zap.String("service", config.Cfg.ServiceName+"-scheduler"),
		zap.String("environment", config.Cfg.Environment),
		zap.Int("scan_hour", config.Cfg.ScanHour),
		zap.Int("dispatch_hour", config.Cfg.DispatchHour),
	)

	go runDailyLoop(ctx, "scan", config.Cfg.ScanHour, func(runCtx context.Context) error {
		_, err := service.Job().RunScan(runCtx, false)
		return err
	})
	go runDailyLoop(ctx, "dispatch", config.Cfg.DispatchHour, func(runCtx context.Context) error {
		_, err := service.Job().RunDispatch(runCtx, false, 0)
		return err
	})

	<-ctx.Done()

	logger.Logger.Info("Scheduler service shutting down gracefully")
}

// runDailyLoop runs the job once a day at the given local hour. In
// development it ticks every minute instead, for local debugging.
func runDailyLoop(ctx context.Context, name string, hour int, run func(context.Context) error) {
	if config.Cfg.Environment == "development" {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		logger.Logger.Info("Daily loop running in development mode with 1m interval",
			zap.String("job", name))

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runOnce(ctx, name, run)
			}
		}
	}

	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}

		delay := time.Until(next)
		logger.Logger.Info("Scheduled next job run",
			zap.String("job", name),
			zap.Time("next_run", next),
			zap.Duration("delay", delay),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			runOnce(ctx, name, run)
		}
	}
}

func runOnce(ctx context.Context, name string, run func(context.Context) error) {
	runCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	if err := run(runCtx); err != nil {
		if errors.Is(err, pkgerrors.JobAlreadyRunning) {
			logger.Logger.Warn("Job run skipped, another run holds the lock",
				zap.String("job", name))
			return
		}
		logger.Logger.Error("Job run failed",
			zap.String("job", name),
			zap.Error(err))
	}
}
