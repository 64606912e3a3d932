package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"EstateLink/config"
	"EstateLink/internal/service"
	"EstateLink/pkg/line"
	"EstateLink/pkg/logger"
	"EstateLink/pkg/snowflake"
	"EstateLink/storage"
)

// estatectl runs the automation jobs from the command line, against the
// same database and LINE gateway the services use. It is the operator's
// tool for one-off runs and dry-run previews.

var (
	dryRun bool
	limit  int
)

var rootCmd = &cobra.Command{
	Use:   "estatectl",
	Short: "EstateLink automation operations tool",
	Long:  "Run the contract scan and task dispatch jobs directly, without going through the admin API.",
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan active contracts and create due reminder tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(func(ctx context.Context) error {
			report, err := service.Job().RunScan(ctx, dryRun)
			if err != nil {
				return err
			}
			return printJSON(report)
		})
	},
}

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Deliver due pending tasks through the LINE gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(func(ctx context.Context) error {
			report, err := service.Job().RunDispatch(ctx, dryRun, limit)
			if err != nil {
				return err
			}
			return printJSON(report)
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task counts per status and type",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(func(ctx context.Context) error {
			stats, err := service.Task().Stats(ctx)
			if err != nil {
				return err
			}
			return printJSON(stats)
		})
	},
}

func init() {
	scanCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be created without writing")
	dispatchCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be sent without pushing")
	dispatchCmd.Flags().IntVar(&limit, "limit", 0, "max tasks per run (0 = configured default)")

	rootCmd.AddCommand(scanCmd, dispatchCmd, statsCmd)
}

// withRuntime brings up the shared runtime around one command.
func withRuntime(run func(context.Context) error) error {
	logger.Init()
	defer logger.Sync()

	if err := storage.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		return fmt.Errorf("failed to initialize snowflake: %w", err)
	}

	if err := line.Init(); err != nil {
		return fmt.Errorf("failed to initialize LINE client: %w", err)
	}

	ctx := context.Background()
	if err := run(ctx); err != nil {
		logger.Logger.Error("Command failed", zap.Error(err))
		return err
	}

	return nil
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
