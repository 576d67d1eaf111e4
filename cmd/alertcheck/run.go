package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/sentinel/sentinel-backend/internal/notify"
	"github.com/dafibh/sentinel/sentinel-backend/internal/repository/postgres"
	"github.com/dafibh/sentinel/sentinel-backend/internal/service"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagUserID         string
	flagNotify         bool
	flagFailOnSkipped  bool
	flagRunConcurrency int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the alert check once and print the report",
	RunE:  runAlertCheck,
}

func init() {
	runCmd.Flags().StringVar(&flagUserID, "user-id", "", "Only evaluate this user (UUID)")
	runCmd.Flags().BoolVar(&flagNotify, "notify", false, "Publish new alerts to the AMQP exchange")
	runCmd.Flags().BoolVar(&flagFailOnSkipped, "fail-on-skipped", false, "Exit non-zero when any entity was skipped")
	runCmd.Flags().IntVarP(&flagRunConcurrency, "concurrency", "c", 0, "Users evaluated in parallel (default from ALERT_CHECK_CONCURRENCY)")
	rootCmd.AddCommand(runCmd)
}

func runAlertCheck(cmd *cobra.Command, _ []string) error {
	var userFilter *uuid.UUID
	if flagUserID != "" {
		id, err := uuid.Parse(flagUserID)
		if err != nil {
			return fmt.Errorf("invalid --user-id: %w", err)
		}
		userFilter = &id
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, pool, err := openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	concurrency := cfg.AlertCheck.Concurrency
	if flagRunConcurrency > 0 {
		concurrency = flagRunConcurrency
	}

	alertCheckService := service.NewAlertCheckService(
		postgres.NewUserRepository(pool),
		postgres.NewBudgetRepository(pool),
		postgres.NewGoalRepository(pool),
		postgres.NewExpenseRepository(pool),
		postgres.NewAlertRepository(pool),
		log.Logger,
		concurrency,
	)

	if flagNotify {
		if cfg.AMQP.URL == "" {
			return fmt.Errorf("--notify requires AMQP_URL")
		}
		publisher, err := notify.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, log.Logger)
		if err != nil {
			return err
		}
		defer publisher.Close()
		alertCheckService.SetPublisher(publisher)
	}

	if cfg.SentryDSN != "" {
		reporter, err := notify.NewSentryReporter(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Env,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Sentry initialization failed")
		} else {
			defer reporter.Flush(5 * time.Second)
			alertCheckService.SetFailureReporter(reporter)
		}
	}

	report, err := alertCheckService.RunAlertCheck(ctx, userFilter)
	if report != nil {
		if encErr := writeReport(cmd, report); encErr != nil {
			return encErr
		}
	}
	if err != nil {
		return err
	}

	if flagFailOnSkipped && len(report.Skipped) > 0 {
		return fmt.Errorf("%d entities skipped", len(report.Skipped))
	}
	return nil
}

func writeReport(cmd *cobra.Command, report *service.AlertCheckReport) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
