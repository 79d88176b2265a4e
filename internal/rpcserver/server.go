// Package rpcserver implements the `tangram serve ADDR` daemon: a bare
// gRPC server exposing only the standard health-checking and
// server-reflection services, so editor/IDE tooling can probe liveness
// against a long-running tangram process without any hand-authored
// .proto file (SPEC_FULL.md "Daemon mode").
//
// Grounded on the teacher's internal/evaluator/builtins_grpc.go, which
// builds a *grpc.Server, binds it with net.Listen, and serves/stops it
// the same way this package does — generalized here from a
// script-driven RPC endpoint to a fixed, built-in service set.
package rpcserver

import (
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Server wraps a grpc.Server configured with the health and reflection
// services, and the health server's status control surface.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
}

// New builds a Server that reports itself serving as soon as Serve is
// called, until Stop is invoked.
func New() *Server {
	s := grpc.NewServer()
	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)
	reflection.Register(s)
	return &Server{grpc: s, health: h}
}

// Serve binds addr and blocks, serving RPCs until the listener closes
// or Stop is called. It marks the server SERVING before accepting
// connections and NOT_SERVING after Stop returns.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("rpcserver: listening on %s: %w", addr, err)
	}
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	defer s.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return s.grpc.Serve(lis)
}

// Stop gracefully drains in-flight RPCs and shuts the server down.
func (s *Server) Stop() {
	s.grpc.GracefulStop()
}
