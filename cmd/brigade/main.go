// Command brigade is a thin reference wrapper around the brigade library:
// it loads configuration, opens a checkpoint store, and drives a job
// through one of a small built-in set of demonstration workers. Real
// integrations import job/checkpoint/invoke directly and supply their own
// invoke.Worker; brigade itself exists so the library can be exercised
// end-to-end from a shell without writing Go.
//
// Usage:
//
//	brigade run     --config config.yaml --worker echo
//	brigade resume  --config config.yaml --worker echo
//	brigade serve   --config config.yaml --worker echo
//	brigade version
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runRun(os.Args[2:])
	case "resume":
		runResume(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("brigade %s\n", Version)
	fmt.Printf("  build time: %s\n", BuildTime)
	fmt.Printf("  git commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`brigade - fault-tolerant batch orchestrator for long-running agent tasks

Usage:
  brigade <command> [options]

Commands:
  run       Create (or resume, if a checkpoint already exists) and run a job to completion
  resume    Resume a previously created job; fails if no checkpoint exists
  serve     Run a job (like 'run') while also exposing the bridge API for agent-mediated suspension
  version   Show version information
  help      Show this help message

Options (run/resume/serve):
  --config <path>    Path to a YAML config file (optional; defaults + env still apply)
  --worker <name>     Built-in worker to drive the job with: echo, uppercase (default "echo")
  --job-id <id>       Job id used by the redis/sql store backends (default "brigade-job")

Examples:
  brigade run --config brigade.yaml --worker uppercase
  brigade resume --config brigade.yaml
  brigade serve --config brigade.yaml --worker echo`)
}

// newLogger builds brigade's process-level zap logger for CLI output (not
// the per-job log.Logger, which is opened separately beside the
// checkpoint once a config is loaded).
func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func fail(logger *zap.Logger, msg string, err error) {
	if logger != nil {
		logger.Error(msg, zap.Error(err))
	} else {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	}
	os.Exit(1)
}
