package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"locationapp-backend/internal/api/grpc/interceptor"
	"locationapp-backend/internal/service"
)

// NewServer builds the gRPC listener: health checks, reflection for grpcurl
// and the operator service. The returned health server lets the caller flip
// the serving status during shutdown.
func NewServer(auth service.AuthService, ops OpsServer) (*grpc.Server, *health.Server) {
	authInterceptor := interceptor.NewAuthInterceptor(auth)
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptor.Logging(), authInterceptor.Unary()),
	)

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthSrv.SetServingStatus(opsServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, healthSrv)

	RegisterOpsServer(s, ops)
	reflection.Register(s)
	return s, healthSrv
}
