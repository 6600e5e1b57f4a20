package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/aravindh-murugesan/updatesentry-go/internal/metrics"
	"github.com/aravindh-murugesan/updatesentry-go/internal/workflow"
	"github.com/go-co-op/gocron-ui/server"
	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"
)

var (
	evaluateSchedule string
	bindAddress      string
)

var daemonCommand = &cobra.Command{
	Use:     "daemon",
	Short:   "Run UpdateSentry in daemon mode",
	GroupID: "updatesentry",
	Long:    `Starts UpdateSentry as a background service that re-evaluates the update decision on a cron schedule, exposes the scheduler dashboard and serves Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		banner := fmt.Sprintf("UpdateSentry - Daemon Mode \n\nVersion: %s\nBuild Date: %s", UpdatesentryVersion, UpdatesentryDate)
		fmt.Println(headerStyle.Render(banner))

		cfg := loadConfig()
		dlog := workflow.SetupLogger(cfg.LogLevel, cfg.BundleID).With("component", "daemon")
		m := metrics.NewMetrics()

		// The runner, and with it the engine lock, is shared by every scheduled run.
		runner, err := workflow.NewRunner(cfg, dlog, m)
		if err != nil {
			return err
		}
		defer runner.Close()

		s, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}
		s.Start()
		dlog.Info("Scheduler started")

		var evaluationJob gocron.Job

		evaluationJob, err = s.NewJob(
			gocron.CronJob(
				evaluateSchedule,
				false,
			),
			gocron.NewTask(func() {
				decision := runner.Run(context.Background(), time.Now().UTC())

				if evaluationJob != nil {
					if nextRun, err := evaluationJob.NextRun(); err == nil {
						dlog.Info("Evaluation completed",
							"tier", decision.Tier.String(),
							"next_run", nextRun.Format(time.RFC3339),
							"job_id", evaluationJob.ID())
					}
				}
			}),
			gocron.WithName("Update Decision Evaluation"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		)
		if err != nil {
			_ = s.Shutdown()
			return err
		}

		dlog.Info("Job Scheduled",
			"job_name", evaluationJob.Name(),
			"job_id", evaluationJob.ID(),
			"schedule", evaluateSchedule)

		ui := server.NewServer(s, portFromAddress(bindAddress), server.WithTitle("UpdateSentry - Dashboard"))

		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		mux.Handle("/", ui.Router)

		httpServer := &http.Server{
			Addr:              bindAddress,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErr := make(chan error, 1)
		go func() {
			dlog.Info("Dashboard and metrics server started", "address", bindAddress)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()

		// Block until a signal arrives or the HTTP server dies
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigChan:
			dlog.Warn("Shutting down scheduler due to system signal...")
		case err := <-serverErr:
			dlog.Error("Failed to start UI server", "error", err)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)

		return s.Shutdown()
	},
}

// portFromAddress extracts the port of host:port, defaulting to 8080.
func portFromAddress(address string) int {
	_, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return 8080
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 8080
	}
	return port
}

func init() {
	rootCommand.AddCommand(daemonCommand)
	daemonCommand.Flags().StringVar(&evaluateSchedule, "schedule", "0 */6 * * *", "Cron schedule for evaluations")
	daemonCommand.Flags().StringVar(&bindAddress, "bind-address", "0.0.0.0:8080", "Address to bind the dashboard and metrics server")
}
