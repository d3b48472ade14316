package handler

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func setupHealthServer(t *testing.T) (*GRPCHandler, grpc_health_v1.HealthClient) {
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	h := NewGRPCHandler()
	h.Register(srv)

	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return h, grpc_health_v1.NewHealthClient(conn)
}

func TestHealth_Serving(t *testing.T) {
	_, client := setupHealthServer(t)

	for _, svc := range []string{"", OrderServiceName} {
		resp, err := client.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: svc})
		require.NoError(t, err)
		assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())
	}
}

func TestHealth_NotServingAfterFlip(t *testing.T) {
	h, client := setupHealthServer(t)

	h.SetServing(false)

	resp, err := client.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: OrderServiceName})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}
