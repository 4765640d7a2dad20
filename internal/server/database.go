package server

import (
	"context"
	"net/http"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/purchase-orders/internal/repository"
)

const healthTimeout = 2 * time.Second

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Dialect  string `json:"dialect,omitempty"`
}

// Healthz handles GET /healthz. It reports 503 when the store does not answer a ping.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	if s.deps.DB == nil {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "disabled"})
		return
	}
	if err := repository.HealthCheck(r.Context(), s.deps.DB, healthTimeout, s.logger); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Database: err.Error(), Dialect: s.deps.DB.Dialect()})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "ok", Dialect: s.deps.DB.Dialect()})
}

// RegisterHealth registers the standard grpc.health.v1 service on gs and returns it so
// callers can flip the status on shutdown.
func RegisterHealth(gs *grpc.Server) *health.Server {
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return hs
}

// WatchDatabase pings db every interval and mirrors the result into hs until ctx ends.
func (s *Server) WatchDatabase(ctx context.Context, hs *health.Server, interval time.Duration) {
	if s.deps.DB == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := repository.HealthCheck(ctx, s.deps.DB, healthTimeout, s.logger)
			if ok := err == nil; ok != serving {
				serving = ok
				status := healthpb.HealthCheckResponse_SERVING
				if !ok {
					status = healthpb.HealthCheckResponse_NOT_SERVING
				}
				hs.SetServingStatus("", status)
				s.logger.Warn("health.status.changed", "serving", ok, "err", err)
			}
		}
	}
}
