package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/basui01/brigade/api"
	"github.com/basui01/brigade/internal/metrics"
	"github.com/basui01/brigade/job"
)

// runServe runs a job to completion like runRun while also exposing the
// bridge HTTP API (package api) for the duration of the run, so a
// supervisor can watch /pending and answer suspended items as they appear
// instead of waiting for the run to finish. Fulfilling or retrying an item
// while the Scheduler is still actively flushing the same checkpoint can
// be overwritten by the Scheduler's next flush (see package api's doc
// comment on the concurrency caveat); serve is best suited to jobs whose
// workers suspend early and stay suspended; for jobs that interleave
// suspensions with continued dispatch, prefer running 'brigade run'
// followed by 'brigade resume' with api consulted in between.
func runServe(args []string) {
	configPath, workerName, jobID := parseRunFlags("serve", args)
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

	collector := metrics.NewCollector("brigade", rt.logger)
	apiServer := api.NewServer(rt.cfg.Server, rt.store, rt.logger, collector)
	if err := apiServer.Start(); err != nil {
		fail(rt.logger, "bridge API failed to start", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), rt.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			rt.logger.Warn("bridge API shutdown error", zap.Error(err))
		}
	}()

	worker, _ := lookupWorker(rt.worker)
	j := job.New(rt.store, rt.jobLog, rt.jobOpts)

	start := time.Now()
	_, summary, err := j.Start(ctx, input, worker)
	if err != nil {
		fail(rt.logger, "run failed", err)
	}

	rt.logger.Info("serve run finished",
		zap.Int("completed", summary.Completed),
		zap.Int("failed", summary.Failed),
		zap.Int("awaiting", summary.Awaiting),
		zap.Duration("elapsed", time.Since(start)),
	)
}
