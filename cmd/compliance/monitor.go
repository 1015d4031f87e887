package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ersonp/compliance-core/internal/infrastructure/monitor"
)

func newMonitorCmd() *cobra.Command {
	var schedule string

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Re-evaluate compliance on a schedule",
		Long: "Loads the tenant's view on a cron schedule, logging the score, pending cases, expiring documents " +
			"and insights after each run. Metrics are served when metrics.addr is configured.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd, schedule)
		},
	}

	cmd.Flags().StringVarP(&schedule, "schedule", "s", "", "Cron schedule (default: monitor.schedule from config)")

	return cmd
}

func runMonitor(cmd *cobra.Command, schedule string) error {
	ctx := cmd.Context()

	return withInternalDeps(func(d *internalDeps) error {
		if schedule == "" {
			schedule = d.Config.Monitor.Schedule
		}

		if addr := d.Config.Metrics.Addr; addr != "" {
			go serveMetrics(ctx, addr, d.Metrics.Handler(), d.Logger)
		}

		scheduler := monitor.NewScheduler(d.compliance, schedule, d.Logger)
		if err := scheduler.Start(ctx); err != nil {
			return err
		}
		defer scheduler.Stop()

		scheduler.RunOnce(ctx)

		if next := scheduler.NextRun(); next != nil {
			fmt.Printf("Monitoring tenant %s on %q, next run at %s\n", d.Tenant, schedule, next.Format(time.RFC3339))
		}

		<-ctx.Done()
		return nil
	})
}

func serveMetrics(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics listener failed", zap.Error(err))
	}
}
