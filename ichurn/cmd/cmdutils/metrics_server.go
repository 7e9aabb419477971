package cmdutils

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/pinpt/ichurn/ichurn/metrics"
	"github.com/pinpt/ichurn/ichurn/pkg/logger"
)

// ServeMetrics serves m on addr at /metrics until the returned stop func is called.
func ServeMetrics(addr string, m *metrics.Metrics, log logger.Logger) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "err", err.Error())
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
