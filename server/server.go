package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sagarc03/switchyard"
	"github.com/sagarc03/switchyard/config"
	"github.com/sagarc03/switchyard/database"
	"github.com/sagarc03/switchyard/filesystem"
	switchyardhttp "github.com/sagarc03/switchyard/http"
)

// DefaultShutdownTimeout applies when the configured timeout is not positive.
const DefaultShutdownTimeout = 10 * time.Second

// Server owns the open resources and the http.Server serving them.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       database.Database
	files    *filesystem.Store
	registry *switchyard.Registry
	http     *http.Server
}

// New opens the database and the upload directory and wires the handler
// stack. Close releases both.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	secrets, err := Secrets(cfg, logger)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Info("connected to database", "type", cfg.Database.Type, "auto_migrate", cfg.Database.AutoMigrate)

	files, err := filesystem.Open(cfg.Storage.Path)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	reg, err := NewRegistry(cfg, Deps{
		Catalog: db.Catalog(),
		Tokens:  db.Tokens(),
		Files:   files,
		Secrets: secrets,
	})
	if err != nil {
		_ = files.Close()
		_ = db.Close()
		return nil, err
	}

	dispatcher := switchyard.NewDispatcher(reg, switchyard.DispatcherConfig{
		Timeout: cfg.Server.DispatchTimeout,
		Logger:  logger,
	})

	adapter := switchyardhttp.NewAdapter(dispatcher, switchyardhttp.AdapterConfig{
		MaxUploadSize: cfg.Server.MaxUploadSize,
		Logger:        logger,
	})

	router := switchyardhttp.NewRouter(switchyardhttp.RouterConfig{
		CORS: cfg.CORS,
		Docs: cfg.Docs,
	}, adapter, reg)

	return &Server{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		files:    files,
		registry: reg,
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}, nil
}

// Handler returns the outer router.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Registry returns the sealed route registry.
func (s *Server) Registry() *switchyard.Registry {
	return s.registry
}

// Run listens on the configured port until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", ln.Addr().String())
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server...")
	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Close releases the database and the upload directory.
func (s *Server) Close() error {
	return errors.Join(s.files.Close(), s.db.Close())
}
