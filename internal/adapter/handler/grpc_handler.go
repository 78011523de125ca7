package handler

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ReadinessSource reports whether the mirrors are loaded and settled.
type ReadinessSource interface {
	Ready() bool
}

// GRPCHealth publishes warehouse readiness through the standard gRPC health
// service, both for the server as a whole and for the named service.
type GRPCHealth struct {
	server  *health.Server
	source  ReadinessSource
	service string
}

func NewGRPCHealth(source ReadinessSource, service string) *GRPCHealth {
	h := &GRPCHealth{
		server:  health.NewServer(),
		source:  source,
		service: service,
	}
	h.Refresh()
	return h
}

func (h *GRPCHealth) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

// Refresh sets the serving status from the current readiness.
func (h *GRPCHealth) Refresh() healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if h.source.Ready() {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(h.service, status)
	return status
}

// Run refreshes every interval until ctx is done, then marks everything
// not serving.
func (h *GRPCHealth) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Refresh()
		}
	}
}

func (h *GRPCHealth) Check(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := h.server.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}
