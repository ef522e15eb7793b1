package exporter

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves the metrics endpoint; any other path is a 404.
func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return mux
}

// Serve runs the metrics HTTP server until the context is cancelled, then
// shuts down gracefully: the listener stops accepting and in-flight
// requests are allowed to finish. A bind failure is returned as-is and is
// fatal to exporter mode.
func Serve(ctx context.Context, addr string, metrics *Metrics) error {
	server := &http.Server{
		Addr:    addr,
		Handler: metrics.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		_ = server.Shutdown(context.Background())
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
