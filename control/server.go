// Package control serves the grpc health and reflection services of a running engine.
package control

import (
	"net"
	"os"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name that reports whether signatures are loaded.
const ServiceName = "nids.Engine"

// Server is the control plane of the engine.
type Server interface {
	// Serve listens on network ("tcp" or "unix") and address and blocks until Stop.
	Serve(network string, address string) error
	// SetServing reports the engine as ready or not ready.
	SetServing(serving bool)
	// Addr is the address Serve listens on, or nil before Serve started listening.
	Addr() net.Addr
	Stop()
}

type serverImpl struct {
	logger zerolog.Logger
	grpc   *grpc.Server
	health *health.Server
	ready  chan struct{}
	lis    net.Listener
}

// NewServer creates a control Server. Everything reports NOT_SERVING until SetServing(true).
func NewServer(logger zerolog.Logger) Server {
	s := &serverImpl{
		logger: logger,
		grpc:   grpc.NewServer(),
		health: health.NewServer(),
		ready:  make(chan struct{}),
	}

	healthpb.RegisterHealthServer(s.grpc, s.health)
	reflection.Register(s.grpc)
	s.SetServing(false)

	return s
}

func (s *serverImpl) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	s.logger.Info().Str("status", status.String()).Msg("Control health status changed")
}

func (s *serverImpl) Serve(network string, address string) error {
	if network == "unix" {
		// A stale socket from an earlier run makes Listen fail.
		if err := os.Remove(address); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	lis, err := net.Listen(network, address)
	if err != nil {
		s.logger.Error().Err(err).Str("network", network).Str("address", address).Msg("Failed to listen")
		return err
	}

	s.lis = lis
	close(s.ready)
	s.logger.Info().Str("address", lis.Addr().String()).Msg("Control server listening")

	return s.grpc.Serve(lis)
}

func (s *serverImpl) Addr() net.Addr {
	select {
	case <-s.ready:
		return s.lis.Addr()
	default:
		return nil
	}
}

func (s *serverImpl) Stop() {
	s.grpc.GracefulStop()
}
