package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server exposes /metrics and /health. An empty address disables it.
type Server struct {
	server *http.Server
	logger *zap.Logger
}

func NewServer(addr string, logger *zap.Logger) *Server {
	if addr == "" {
		return &Server{logger: logger}
	}

	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	})

	return mux
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	if s.server == nil {
		return
	}

	go func() {
		s.logger.Info("metrics server listening", zap.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	return s.server.Shutdown(ctx)
}
