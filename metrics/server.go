package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an HTTP handler exposing the given collectors along with
// the Go runtime collector.
func Handler(cs ...prometheus.Collector) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(cs...)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Serve serves GET /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, cs ...prometheus.Collector) error {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", Handler(cs...))
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("couldn't start metrics server: %w", err)
	}
	srv := http.Server{
		Handler:     mux,
		ReadTimeout: 5 * time.Second,
		BaseContext: func(l net.Listener) context.Context { return ctx },
	}
	go func() {
		slog.InfoContext(ctx, "metrics server", slog.Any("addr", l.Addr()))
		err := srv.Serve(l)
		if errors.Is(err, http.ErrServerClosed) {
			return
		}
		slog.ErrorContext(ctx, "metrics server closed", slog.Any("error", err))
	}()
	<-ctx.Done()
	// ctx is done, so shutdown gets its own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
