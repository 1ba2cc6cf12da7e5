package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/basui01/brigade/checkpoint"
	"github.com/basui01/brigade/config"
	"github.com/basui01/brigade/internal/telemetry"
	brigadelog "github.com/basui01/brigade/log"
	"github.com/basui01/brigade/job"
	"github.com/basui01/brigade/scheduler"
)

// runtime bundles everything a run/resume/serve invocation assembles from
// flags and config before it can drive a job.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	jobLog  *brigadelog.Logger
	store   checkpoint.Store
	worker  string
	jobOpts job.Options
	telem   *telemetry.Providers
}

func parseRunFlags(name string, args []string) (configPath, workerName, jobID string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(&configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&workerName, "worker", "echo", "built-in worker to drive the job with")
	fs.StringVar(&jobID, "job-id", "brigade-job", "job id for the redis/sql store backends")
	fs.Parse(args)
	return configPath, workerName, jobID
}

// setup loads config, opens the job log and checkpoint store, wires
// metrics/tracer/rate-limiting, and checks that the requested worker is a
// known built-in.
func setup(ctx context.Context, configPath, workerName, jobID string) (*runtime, error) {
	cliLogger := newLogger()

	loader := config.NewLoader().WithValidator((*config.Config).Validate)
	if configPath != "" {
		loader = loader.WithConfigPath(configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	jobLog, err := brigadelog.NewLogger(cfg.Job.CheckpointPath)
	if err != nil {
		return nil, fmt.Errorf("open job log: %w", err)
	}

	store, err := openStore(ctx, cfg.Store, cfg.Job.CheckpointPath, jobID)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	if _, err := lookupWorker(workerName); err != nil {
		store.Close()
		return nil, err
	}

	telemProviders, err := telemetry.Init(cfg.Telemetry, cliLogger)
	if err != nil {
		cliLogger.Warn("telemetry init failed, continuing without tracing", zap.Error(err))
		telemProviders = &telemetry.Providers{}
	}

	var limiter *rate.Limiter
	if cfg.Job.RateLimitRPS > 0 {
		burst := cfg.Job.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.Job.RateLimitRPS), burst)
	}

	return &runtime{
		cfg:    cfg,
		logger: cliLogger,
		jobLog: jobLog,
		store:  store,
		worker: workerName,
		telem:  telemProviders,
		jobOpts: job.Options{
			Concurrency: cfg.Job.Concurrency,
			MaxRetries:  cfg.Job.MaxRetries,
			ItemTimeout: cfg.Job.ItemTimeout,
			Limiter:     limiter,
			Metrics:     scheduler.NewMetrics("brigade"),
			Tracer:      otel.Tracer("brigade/job"),
		},
	}, nil
}

func (rt *runtime) close(ctx context.Context) {
	rt.jobLog.Sync()
	if err := rt.store.Close(); err != nil {
		rt.logger.Warn("error closing store", zap.Error(err))
	}
	if err := rt.telem.Shutdown(ctx); err != nil {
		rt.logger.Warn("error shutting down telemetry", zap.Error(err))
	}
	rt.logger.Sync()
}

// loadInput reads the ordered array of raw item payloads a fresh run
// seeds from. Ignored entirely when a checkpoint already exists.
func loadInput(path string) ([]json.RawMessage, error) {
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input file %s: %w", path, err)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("parse input file %s as a JSON array: %w", path, err)
	}
	return items, nil
}

// signalContext returns a context canceled on SIGINT/SIGTERM, so an
// in-flight Scheduler dispatch loop drains via its errgroup.Wait() instead
// of the process dying mid-flush.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runRun(args []string) {
	configPath, workerName, jobID := parseRunFlags("run", args)
	ctx, cancel := signalContext()
	defer cancel()

	rt, err := setup(ctx, configPath, workerName, jobID)
	if err != nil {
		fail(nil, "setup failed", err)
	}
	defer rt.close(context.Background())

	input, err := loadInput(rt.cfg.Job.InputPath)
	if err != nil {
		fail(rt.logger, "load input failed", err)
	}

	worker, _ := lookupWorker(rt.worker)
	j := job.New(rt.store, rt.jobLog, rt.jobOpts)

	start := time.Now()
	_, summary, err := j.Start(ctx, input, worker)
	if err != nil {
		fail(rt.logger, "run failed", err)
	}

	rt.logger.Info("run finished",
		zap.Int("completed", summary.Completed),
		zap.Int("failed", summary.Failed),
		zap.Int("awaiting", summary.Awaiting),
		zap.Duration("elapsed", time.Since(start)),
	)
}
