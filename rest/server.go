package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pouriya/restcommander-sub000/mcp"
	"github.com/pouriya/restcommander-sub000/service"
)

const shutdownTimeout = 5 * time.Second

// AssetServer returns the content and MIME type of a static file path
// relative to the static root.
type AssetServer func(path string) (data []byte, mimeType string, ok bool)

// Server exposes the command tree over HTTP.
type Server struct {
	service    *service.Service
	logger     *slog.Logger
	mcp        *mcp.Handler
	assets     AssetServer
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithAssetServer replaces the static asset source.
func WithAssetServer(assets AssetServer) Option {
	return func(s *Server) { s.assets = assets }
}

// WithMCP mounts an MCP handler at api/mcp.
func WithMCP(handler *mcp.Handler) Option {
	return func(s *Server) { s.mcp = handler }
}

// New creates a server backed by svc.
func New(svc *service.Service, opts ...Option) *Server {
	s := &Server{service: svc, logger: svc.Logger()}
	for _, opt := range opts {
		opt(s)
	}
	if s.assets == nil {
		s.assets = DirectoryAssets(svc.Config().WWW.StaticDirectory)
	}
	return s
}

// Handler builds the router, mounted below the configured base path.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(s.logRequests)
	router.Use(s.allowIP)
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusMethodNotAllowed, &envelope{Reason: "HTTP method not allowed", Code: codeRequest})
	})

	router.Get("/", s.handleRoot)
	router.Get("/static/*", s.handleStatic)
	router.Route("/api", func(r chi.Router) {
		r.Get("/public/captcha", s.handleCaptcha)
		r.Get("/public/configuration", s.handleConfiguration)
		r.Post("/auth/token", s.handleLogin)
		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/auth/test", s.handleTestAuth)
			r.Get("/testAuth", s.handleTestAuth)
			r.Get("/run/*", s.handleRun)
			r.Post("/run/*", s.handleRun)
			r.Get("/state/*", s.handleState)
			r.Get("/commands", s.handleCommands)
			r.Get("/reload/commands", s.handleReload)
			r.Post("/setPassword", s.handleSetPassword)
			r.Get("/reports", s.handleReports)
			if s.mcp != nil {
				r.Handle("/mcp", s.mcp)
			}
		})
	})

	base := strings.TrimSuffix(s.service.Config().Server.HTTPBasePath, "/")
	if base == "" {
		return router
	}
	root := chi.NewRouter()
	root.Mount(base, router)
	return root
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	cfg := s.service.Config().Server
	s.httpServer = &http.Server{
		Addr:              cfg.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("started HTTP server", "address", cfg.Address(), "base_path", cfg.HTTPBasePath, "tls", cfg.TLS())
		var err error
		if cfg.TLS() {
			err = s.httpServer.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("failed to serve on %v: %w", cfg.Address(), err)
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("stopping HTTP server")
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("handled request",
			"from", r.RemoteAddr,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(started))
	})
}

func (s *Server) allowIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _ := clientAddress(r)
		if err := s.service.Gate().CheckIP(ip); err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.service.Gate().Authorize(tokenOf(r)); err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func tokenOf(r *http.Request) string {
	if method, token, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok && strings.EqualFold(method, "Bearer") {
		return strings.TrimSpace(token)
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}
