package main

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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nglaser3/stochvol/infrastructure/geometry"
	"github.com/nglaser3/stochvol/infrastructure/middleware"
	"github.com/nglaser3/stochvol/infrastructure/results"
	"github.com/nglaser3/stochvol/infrastructure/sampler"
	"github.com/nglaser3/stochvol/infrastructure/triggers"
	"github.com/nglaser3/stochvol/internal/application"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a calculation session from a YAML config",
	Long: `Runs a calculation session to convergence or sample exhaustion and
prints the volume report. Interrupting the run (Ctrl-C) stops it
cleanly: completed batches are kept and reported as partial results.`,
	RunE: runSession,
}

var (
	runConfigPath      string
	runMetricsAddr     string
	runVerbose         bool
	runTrace           bool
	runClassifyTimeout time.Duration
	runClassifyRate    float64
)

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "session config file (required)")
	runCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "enable debug logging")
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "emit OpenTelemetry spans around trigger checks")
	runCmd.Flags().DurationVar(&runClassifyTimeout, "classify-timeout", 0, "per-batch classification deadline (0 disables)")
	runCmd.Flags().Float64Var(&runClassifyRate, "classify-rate", 0, "classification rate limit in points/sec (0 disables)")
	runCmd.MarkFlagRequired("config")
}

func newLogger() (*zap.Logger, error) {
	if runVerbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func runSession(cmd *cobra.Command, _ []string) error {
	cfg, err := application.LoadSessionConfig(runConfigPath)
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	params, err := cfg.SessionParams()
	if err != nil {
		return err
	}
	classifier, err := geometry.FromConfig(cfg.Domains, params.Box)
	if err != nil {
		return err
	}

	opts := []application.Option{
		application.WithID(cfg.Metadata.Name),
		application.WithLogger(logger),
	}

	if len(cfg.Triggers) > 0 {
		tc, err := triggers.NewController(cfg.TriggerSpecs()...)
		if err != nil {
			return err
		}
		opts = append(opts, application.WithTriggers(tc))
	}
	if runTrace {
		opts = append(opts, application.WithObserver(middleware.NewOTelConvergenceObserver()))
	}

	var mws []middleware.Middleware
	if runClassifyTimeout > 0 {
		mws = append(mws, middleware.TimeoutMiddleware(runClassifyTimeout))
	}
	if runClassifyRate > 0 {
		burst := int(runClassifyRate)
		if burst < 1 {
			burst = 1
		}
		mws = append(mws, middleware.RateLimitMiddleware(rate.Limit(runClassifyRate), burst))
	}

	if runMetricsAddr != "" {
		reg := prometheus.NewRegistry()
		collector := middleware.NewPrometheusMetrics(reg)
		opts = append(opts, application.WithMetrics(collector))
		mws = append(mws, middleware.MetricsMiddleware(collector))
		srv := serveMetrics(reg, runMetricsAddr, logger)
		defer shutdownMetrics(srv, logger)
	}
	classifier = middleware.Chain(classifier, mws...)

	session, err := application.NewSession(
		params,
		classifier,
		sampler.NewUniform(params.Box, cfg.Sampling.Seed),
		opts...,
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snap, runErr := session.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if runErr != nil {
		logger.Warn("run interrupted, reporting partial results")
	}

	agg := results.NewAggregator(results.WithDensities(cfg.Densities()))
	res, err := agg.Finalize(snap)
	if err != nil {
		return err
	}
	if err := results.Report(os.Stdout, res); err != nil {
		return err
	}

	if cfg.Snapshot != nil {
		store, err := openStore(cfg.Snapshot.Format, cfg.Snapshot.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		// Not the command context: an interrupted run must still be able
		// to persist its partial counts.
		if err := store.Save(context.Background(), snap); err != nil {
			return err
		}
		logger.Info("snapshot saved",
			zap.String("format", cfg.Snapshot.Format),
			zap.String("path", cfg.Snapshot.Path),
		)
	}

	// An interrupt is the documented clean-stop path: once the partial
	// report (and snapshot, if configured) is out, the run succeeded.
	return nil
}

func serveMetrics(reg *prometheus.Registry, addr string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))
	return srv
}

func shutdownMetrics(srv *http.Server, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("metrics server shutdown", zap.Error(err))
	}
}
