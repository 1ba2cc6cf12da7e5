package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/basui01/brigade/checkpoint"
	"github.com/basui01/brigade/config"
	"github.com/basui01/brigade/internal/metrics"
	internalserver "github.com/basui01/brigade/internal/server"
)

// Server is the bridge HTTP surface: checkpoint visibility plus fulfill and
// retry, fronted by recovery/logging/metrics middleware.
type Server struct {
	manager *internalserver.Manager
}

// NewServer builds a Server over store, routed and wrapped per cfg.
func NewServer(cfg config.ServerConfig, store checkpoint.Store, logger *zap.Logger, collector *metrics.Collector) *Server {
	h := NewHandler(store, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc("/checkpoint", h.HandleCheckpoint)
	mux.HandleFunc("/pending", h.HandlePending)
	mux.HandleFunc("/fulfill", h.HandleFulfill)
	mux.HandleFunc("/retry", h.HandleRetry)
	mux.Handle("/metrics", promhttp.Handler())

	handler := Chain(mux,
		Recovery(logger),
		RequestID(),
		RequestLogger(logger),
		Metrics(collector),
	)

	managerCfg := internalserver.Config{
		Addr:            addrFromPort(cfg.HTTPPort),
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		IdleTimeout:     2 * cfg.ReadTimeout,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}

	return &Server{manager: internalserver.NewManager(handler, managerCfg, logger)}
}

// Start begins serving in the background.
func (s *Server) Start() error {
	return s.manager.Start()
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.manager.Shutdown(ctx)
}

// Errors returns the channel serve failures are reported on.
func (s *Server) Errors() <-chan error {
	return s.manager.Errors()
}

func addrFromPort(port int) string {
	if port <= 0 {
		port = 8089
	}
	return fmt.Sprintf(":%d", port)
}
