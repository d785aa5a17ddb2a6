package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/riddhika-19/openboxcodelearn/internal/config"
	"github.com/riddhika-19/openboxcodelearn/internal/metrics"
	"github.com/riddhika-19/openboxcodelearn/internal/schedule"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the weekly report scheduler in the foreground",
	Long: "Run the weekly report fan-out on a cron schedule and serve Prometheus " +
		"metrics until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		job := schedule.NewJob(a.repo, a.trigger, a.log, a.metrics)
		s, err := schedule.New(ctx, a.cfg.WeeklySchedule, job)
		if err != nil {
			return err
		}

		if addr := a.cfg.MetricsAddr; addr != "" {
			srv := &http.Server{
				Addr:              addr,
				Handler:           metricsMux(a.registry),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.log.Error("metrics server failed", "addr", addr, "error", err)
					stop()
				}
			}()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
			a.log.Info("serving metrics", "addr", addr)
		}

		a.log.Info("scheduler started", "cron", s.Spec(), "store", a.cfg.Store)
		fmt.Fprintf(cmd.OutOrStdout(), "Weekly reports scheduled on %q. Press Ctrl+C to stop.\n", s.Spec())
		s.Run(ctx)
		a.log.Info("scheduler stopped")
		return nil
	},
}

func init() {
	f := scheduleCmd.Flags()
	f.String("cron", "", "Six-field cron spec for the weekly fan-out (overrides OPENBOX_SCHEDULE_WEEKLY)")
	f.String("metrics-addr", "", "Listen address for /metrics; empty keeps the configured value")

	if err := v.BindPFlag(config.KeyWeekly, f.Lookup("cron")); err != nil {
		panic(err)
	}
	if err := v.BindPFlag(config.KeyMetricsAddr, f.Lookup("metrics-addr")); err != nil {
		panic(err)
	}
}

func metricsMux(g prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(g))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
