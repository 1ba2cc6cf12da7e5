package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/basui01/brigade/job"
)

func runResume(args []string) {
	configPath, workerName, jobID := parseRunFlags("resume", args)
	ctx, cancel := signalContext()
	defer cancel()

	rt, err := setup(ctx, configPath, workerName, jobID)
	if err != nil {
		fail(nil, "setup failed", err)
	}
	defer rt.close(context.Background())

	worker, _ := lookupWorker(rt.worker)
	j := job.New(rt.store, rt.jobLog, rt.jobOpts)

	start := time.Now()
	_, summary, err := j.Resume(ctx, worker)
	if err != nil {
		fail(rt.logger, "resume failed", err)
	}

	rt.logger.Info("resume finished",
		zap.Int("completed", summary.Completed),
		zap.Int("failed", summary.Failed),
		zap.Int("awaiting", summary.Awaiting),
		zap.Duration("elapsed", time.Since(start)),
	)
}
