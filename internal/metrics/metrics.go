package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tradelog_sessions_active",
		Help: "Stream sessions currently in the Streaming state",
	})
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradelog_events_total",
		Help: "Trade events received, partitioned by symbol and filter mode",
	}, []string{"symbol", "mode"})
	FragmentsWrittenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradelog_fragments_written_total",
		Help: "Fragments appended to logs, partitioned by log label",
	}, []string{"label"})
	SessionErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradelog_session_errors_total",
		Help: "Sessions ended by an error, partitioned by error kind",
	}, []string{"kind"})
	ReconnectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradelog_feed_reconnects_total",
		Help: "Feed reconnect attempts, partitioned by result",
	}, []string{"result"})
)

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
