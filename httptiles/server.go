package httptiles

import (
	"context"
	"log"
	"net/http"
	"time"
)

// Server wraps an http.Server lifecycle around a mux of one or more
// mounted TileContainers, with graceful shutdown.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
}

// NewServer builds a Server listening on addr and serving mux, wrapped in
// a request-logging middleware.
func NewServer(addr string, mux *http.ServeMux, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "http: ", log.LstdFlags)
	}
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      loggingMiddleware(logger)(mux),
			ErrorLog:     logger,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
		logger: logger,
	}
}

func loggingMiddleware(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Printf("%s %s %s %s", r.Method, r.URL.Path, r.RemoteAddr, time.Since(start))
		})
	}
}

// ListenAndServe blocks serving requests until Shutdown is called, at which
// point it returns nil instead of http.ErrServerClosed.
func (s *Server) ListenAndServe() error {
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully drains in-flight requests, bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
