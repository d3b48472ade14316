package handler

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// OrderServiceName is the service name reported by the gRPC health service.
const OrderServiceName = "orders.v1.OrderService"

// GRPCHandler exposes the standard grpc.health.v1 service for the order API.
type GRPCHandler struct {
	health *health.Server
}

func NewGRPCHandler() *GRPCHandler {
	h := &GRPCHandler{health: health.NewServer()}
	h.SetServing(true)
	return h
}

func (h *GRPCHandler) Register(s *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(s, h.health)
	reflection.Register(s)
}

// SetServing flips both the overall and the per-service status.
func (h *GRPCHandler) SetServing(serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(OrderServiceName, status)
}
