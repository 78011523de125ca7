package handler

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

const (
	timeout = 2 * time.Second
	tick    = 10 * time.Millisecond
)

type readiness struct{ ready atomic.Bool }

func (r *readiness) Ready() bool { return r.ready.Load() }

func TestGRPCHealth_Refresh(t *testing.T) {
	src := &readiness{}
	h := NewGRPCHealth(src, "warehouse")
	ctx := context.Background()

	status, err := h.Check(ctx, "warehouse")
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status)

	src.ready.Store(true)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, h.Refresh())

	status, err = h.Check(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status)

	_, err = h.Check(ctx, "unknown")
	assert.Error(t, err)
}

func TestGRPCHealth_OverTheWire(t *testing.T) {
	src := &readiness{}
	h := NewGRPCHealth(src, "warehouse")

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	h.Register(srv)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx, tick)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	client := healthpb.NewHealthClient(conn)

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: "warehouse"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	src.ready.Store(true)
	require.Eventually(t, func() bool {
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: "warehouse"})
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
	}, timeout, tick)
}
