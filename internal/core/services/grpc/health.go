package grpc

import (
	"sync"

	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/ports"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported for the dashboard.
const ServiceName = "heatmap.Dashboard"

var _ ports.StateListener = (*HealthReporter)(nil)

// HealthReporter mirrors the dashboard poll outcome into the standard gRPC
// health service. It reports NOT_SERVING until the first poll succeeds and
// after any failed poll.
type HealthReporter struct {
	server *health.Server

	mu      sync.Mutex
	status  healthpb.HealthCheckResponse_ServingStatus
	version uint64
}

// NewHealthReporter creates a reporter with everything NOT_SERVING.
func NewHealthReporter() *HealthReporter {
	h := &HealthReporter{server: health.NewServer()}
	h.mu.Lock()
	h.setLocked(healthpb.HealthCheckResponse_NOT_SERVING)
	h.mu.Unlock()
	return h
}

// NewGrpcServer returns a gRPC server exposing the health service.
func NewGrpcServer(h *HealthReporter) *grpc.Server {
	s := grpc.NewServer()
	healthpb.RegisterHealthServer(s, h.server)
	reflection.Register(s)
	return s
}

// OnStateChange implements ports.StateListener. States older than the last
// one seen are ignored.
func (h *HealthReporter) OnStateChange(state domain.DashboardState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if state.Version < h.version {
		return
	}
	h.version = state.Version

	switch {
	case state.PollFailures > 0:
		h.setLocked(healthpb.HealthCheckResponse_NOT_SERVING)
	case state.Polled:
		h.setLocked(healthpb.HealthCheckResponse_SERVING)
	}
}

// Status returns the currently reported status.
func (h *HealthReporter) Status() healthpb.HealthCheckResponse_ServingStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Shutdown marks every service NOT_SERVING ahead of a graceful stop.
func (h *HealthReporter) Shutdown() {
	h.server.Shutdown()
}

func (h *HealthReporter) setLocked(status healthpb.HealthCheckResponse_ServingStatus) {
	if h.status == status {
		return
	}
	h.status = status
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
}
