package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"fxledger/internal/config"
)

// Server hosts the ledger over HTTP and, when configured, gRPC.
type Server struct {
	cfg    config.Server
	router *Router
	log    *slog.Logger

	httpServer *http.Server
	grpcServer *grpc.Server
}

// NewServer creates a Server configured from the given Config.
func NewServer(cfg config.Server, router *Router, log *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		router: router,
		log:    log,
	}
	s.httpServer = &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: s.Handler(),
	}
	if cfg.GRPCAddr() != "" {
		s.grpcServer = grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor(log)))
		NewGRPCService(router, log).RegisterGRPC(s.grpcServer)
	}
	return s
}

// Handler returns the HTTP handler: GET on the configured metrics path
// serves Prometheus, every other request goes to the ledger core untouched.
// Paths are not cleaned: /api//add_user reaches the router and gets its 404.
func (s *Server) Handler() http.Handler {
	core := HTTPHandler(s.router, s.log, s.cfg.MaxBodyBytes)
	if s.cfg.MetricsPath == "" {
		return core
	}
	metrics := promhttp.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == s.cfg.MetricsPath {
			metrics.ServeHTTP(w, r)
			return
		}
		core.ServeHTTP(w, r)
	})
}

// ListenAndServe starts the HTTP and gRPC listeners and blocks until the
// context is cancelled or a listener fails. Both servers are shut down
// before it returns.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.httpServer.Addr, err)
	}
	var grpcLis net.Listener
	if s.grpcServer != nil {
		grpcLis, err = net.Listen("tcp", s.cfg.GRPCAddr())
		if err != nil {
			httpLis.Close()
			return fmt.Errorf("listening on %s: %w", s.cfg.GRPCAddr(), err)
		}
	}
	return s.Serve(ctx, httpLis, grpcLis)
}

// Serve is ListenAndServe on existing listeners. grpcLis may be nil when
// gRPC is disabled.
func (s *Server) Serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("HTTP server listening", "addr", httpLis.Addr().String())
		if err := s.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if s.grpcServer != nil && grpcLis != nil {
		g.Go(func() error {
			s.log.Info("gRPC server listening", "addr", grpcLis.Addr().String())
			if err := s.grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown performs a graceful shutdown of the HTTP and gRPC servers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down ledger server")

	if s.grpcServer != nil {
		done := make(chan struct{})
		go func() {
			s.grpcServer.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			s.grpcServer.Stop()
		}
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
