package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/segyhp/lendtrack/internal/app"
	"github.com/segyhp/lendtrack/internal/config"
	"github.com/segyhp/lendtrack/internal/observability"
	"github.com/segyhp/lendtrack/internal/service"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = 5 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Logging.Level).With(zap.String("component", "scheduler"))
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.Tracing.OTLPEndpoint, cfg.Tracing.ServiceName+"-scheduler")
	if err != nil {
		logger.Fatal("failed to initialize tracing", zap.Error(err))
	}

	a, err := app.New(ctx, cfg, observability.NewMetrics(), logger)
	if err != nil {
		logger.Fatal("failed to initialize dependencies", zap.Error(err))
	}
	defer a.Close()

	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(cfg.Location()),
		cron.WithChain(cron.Recover(cronLogger{logger}), cron.SkipIfStillRunning(cronLogger{logger})),
	)
	if err := setupCronJobs(c, cfg, a.Collection, logger); err != nil {
		logger.Fatal("failed to schedule jobs", zap.Error(err))
	}

	c.Start()
	logger.Info("scheduler started",
		zap.String("reconcile_cron", cfg.Scheduler.ReconcileCron),
		zap.String("overdue_cron", cfg.Scheduler.OverdueCron),
	)

	<-ctx.Done()
	logger.Info("shutting down scheduler")

	// Wait for running jobs
	<-c.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Warn("flushing traces", zap.Error(err))
	}
	logger.Info("scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, collection *service.CollectionService, logger *zap.Logger) error {
	// Corrects stored balances that drifted from the payment ledger
	if _, err := c.AddFunc(cfg.Scheduler.ReconcileCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		report, err := collection.Reconcile(ctx)
		if err != nil {
			logger.Error("reconcile job failed", zap.Error(err))
			return
		}
		logger.Info("reconcile job finished",
			zap.Int("checked", report.Checked),
			zap.Int("corrected", report.Corrected),
		)
	}); err != nil {
		return err
	}

	// Logs the overdue list for the collectors and warms the dashboard cache
	if _, err := c.AddFunc(cfg.Scheduler.OverdueCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		items, err := collection.OverdueMembers(ctx)
		if err != nil {
			logger.Error("overdue job failed", zap.Error(err))
			return
		}
		for _, item := range items {
			logger.Info("member overdue",
				zap.String("member_id", item.MemberID.String()),
				zap.String("name", item.MemberName),
				zap.String("phone", item.Phone),
				zap.Int("days_overdue", item.DaysOverdue),
				zap.String("amount_due", item.AmountDue.StringFixed(2)),
			)
		}

		if _, err := collection.Dashboard(ctx); err != nil {
			logger.Warn("warming dashboard failed", zap.Error(err))
		}
		logger.Info("overdue job finished", zap.Int("overdue", len(items)))
	}); err != nil {
		return err
	}

	return nil
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
