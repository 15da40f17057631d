package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/slok/godispatch/dispatch"
	"github.com/slok/godispatch/metrics"
	"github.com/slok/godispatch/remote"
)

const (
	totalRequests    = 20
	concurrencyLimit = 5
)

type cmdConfig struct {
	requests      int
	concurrency   int
	metricsListen string
	debug         bool
}

func newCmdConfig(args []string) (cmdConfig, error) {
	cfg := cmdConfig{}

	fs := flag.NewFlagSet("godispatch", flag.ContinueOnError)
	fs.IntVar(&cfg.requests, "requests", totalRequests, "number of requests to dispatch")
	fs.IntVar(&cfg.concurrency, "concurrency", concurrencyLimit, "max number of calls in flight")
	fs.StringVar(&cfg.metricsListen, "metrics.listen-address", "", "address to serve the Prometheus metrics, disabled if empty")
	fs.BoolVar(&cfg.debug, "debug", false, "enable development logging")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// runner has the collaborators of a run, tests replace them.
type runner struct {
	caller   remote.Caller
	out      io.Writer
	waitBase time.Duration
}

func (r runner) run(ctx context.Context, args []string) error {
	cfg, err := newCmdConfig(args)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.debug)
	if err != nil {
		return fmt.Errorf("could not create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	rec := metrics.NewPrometheusRecorder(reg)

	if cfg.metricsListen != "" {
		srv := &http.Server{
			Addr:    cfg.metricsListen,
			Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		}
		go func() {
			logger.Info("serving metrics", zap.String("addr", cfg.metricsListen))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer func() { _ = srv.Close() }()
	}

	d := dispatch.New(dispatch.Config{
		Requests:        cfg.requests,
		Concurrency:     cfg.concurrency,
		Caller:          r.caller,
		WaitBase:        r.waitBase,
		Logger:          logger,
		MetricsRecorder: rec,
	})

	results, err := d.Run(ctx)
	if err != nil {
		logger.Error("dispatch aborted", zap.Error(err))
		return err
	}

	fmt.Fprintln(r.out, "All requests completed.")
	for _, result := range results {
		fmt.Fprintln(r.out, result)
	}

	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := runner{
		caller: remote.NewSimulator(remote.SimulatorConfig{}),
		out:    os.Stdout,
	}
	if err := r.run(ctx, os.Args[1:]); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
