package main

import (
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/HatiCode/storecast/pkg/rpc"
)

// grpcServer serves the Predictor service next to the standard health
// service and server reflection.
type grpcServer struct {
	server *grpc.Server
	health *health.Server
	lis    net.Listener
	logger *slog.Logger
}

func newGRPCServer(addr string, predictor rpc.Predictor, logger *slog.Logger) (*grpcServer, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	server := grpc.NewServer(grpc.UnaryInterceptor(rpc.UnaryLoggingInterceptor(logger)))
	rpc.Register(server, rpc.NewServer(predictor, logger))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(rpc.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(server)

	return &grpcServer{
		server: server,
		health: healthServer,
		lis:    lis,
		logger: logger,
	}, nil
}

// Serve blocks until the server stops.
func (s *grpcServer) Serve() error {
	s.logger.Info("grpc server listening", "address", s.lis.Addr().String())
	return s.server.Serve(s.lis)
}

// Stop marks the services as not serving and drains in-flight calls.
func (s *grpcServer) Stop() {
	s.logger.Info("stopping grpc server")
	s.health.Shutdown()
	s.server.GracefulStop()
}
