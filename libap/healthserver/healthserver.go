// Package healthserver provides a shared health/metrics server for
// apocryphad's Kubernetes-style liveness/readiness probes.
package healthserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Start starts a health/metrics server on the specified port.
// This provides:
//   - /healthz - liveness probe (always returns 200 if the process is alive)
//   - /readyz  - readiness probe (calls readyChecker; ready once the root
//     document has loaded from disk)
//   - /metrics - Prometheus metrics endpoint
//
// The server runs in a goroutine and does not block. The returned
// *http.Server should be Shutdown by the caller during graceful exit.
func Start(logger *zap.Logger, port int, readyChecker func() bool) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if readyChecker != nil && readyChecker() {
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write([]byte("ready")); err != nil {
				logger.Error("failed to write ready response", zap.Error(err))
			}
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, err := w.Write([]byte("not ready")); err != nil {
				logger.Error("failed to write not ready response", zap.Error(err))
			}
		}
	})

	addr := fmt.Sprintf("0.0.0.0:%d", port)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 40 * time.Second,
	}

	go func() {
		logger.Info("starting health/metrics server", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server error", zap.Error(err))
		}
	}()

	return server
}

// Stop shuts the health server down, waiting up to the given context's
// deadline for in-flight requests to finish.
func Stop(ctx context.Context, server *http.Server) error {
	return server.Shutdown(ctx)
}
