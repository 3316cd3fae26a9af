package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"GoCommando/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Serve exposes m and the Go runtime collectors on listen until ctx is done.
func Serve(ctx context.Context, listen string, m *Metrics) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(m.Collectors()...)

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true}))

	l, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("couldn't start metrics server: %w", err)
	}
	srv := http.Server{
		Handler:     mux,
		ReadTimeout: 5 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	go func() {
		core.LogInfoF("Serving metrics on %s", l.Addr())
		if err := srv.Serve(l); !errors.Is(err, http.ErrServerClosed) {
			core.LogErrorF("Metrics server closed: %s", err)
		}
	}()
	<-ctx.Done()
	// ctx is already done, so shutdown gets its own deadline.
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}
