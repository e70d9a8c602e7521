package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/buzzword-dodge/internal/catalog"
	"github.com/vovakirdan/buzzword-dodge/internal/config"
	"github.com/vovakirdan/buzzword-dodge/internal/core"
	"github.com/vovakirdan/buzzword-dodge/internal/oracle"
	"github.com/vovakirdan/buzzword-dodge/internal/storage"
)

// SSHServerConfig describes a shared Buzzword Dodge server. Every session
// plays the same tuning and catalog and posts to one leaderboard.
type SSHServerConfig struct {
	Address string

	// HostKeyPath may start with ~. Empty means ~/.buzzword/host_key,
	// created on first start.
	HostKeyPath string

	// DBPath is the shared leaderboard. A database that cannot be opened
	// leaves the server running with saving disabled.
	DBPath string

	IdleTimeout time.Duration
	TickRate    int

	Game    config.GameConfig
	Catalog *catalog.Catalog
	Scorer  oracle.Scorer
}

// DefaultSSHServerConfig returns the settings `buzzword serve` starts from.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      "~/.buzzword/scores.db",
		IdleTimeout: 30 * time.Minute,
		TickRate:    60,
		Game:        config.DefaultGameConfig(),
	}
}

// SSHServer hands each SSH session its own game Model.
type SSHServer struct {
	config   SSHServerConfig
	server   *ssh.Server
	store    *storage.Store
	logger   *log.Logger
	sessions atomic.Int64
}

// NewSSHServer opens the leaderboard and prepares the listener.
// Nothing is bound until ListenAndServe.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "buzzword-ssh",
	})

	if cfg.Scorer == nil {
		cfg.Scorer = oracle.Offline{}
	}
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}

	keyPath, err := resolveHostKeyPath(cfg.HostKeyPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(keyPath), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", err)
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open scores database, runs will not be saved", "error", err)
		store = nil
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	// Middleware runs bottom-up: log, require a terminal, then play.
	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(keyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			activeterm.Middleware(),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// resolveHostKeyPath expands ~ and applies the default key location.
func resolveHostKeyPath(path string) (string, error) {
	if path == "" {
		if path = config.UserPath("host_key"); path == "" {
			return "", errors.New("cannot locate home directory for the host key")
		}
		return path, nil
	}
	return config.ExpandHome(path)
}

// teaHandler starts a run for one player. The SSH user doubles as the
// suggested leaderboard name.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, _ := sess.Pty()

	rc := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.TickRate,
		Seed:     time.Now().UnixNano(),
	}

	m := NewModel(Options{
		Game:     s.config.Game,
		Catalog:  s.config.Catalog,
		Scorer:   s.config.Scorer,
		Store:    s.store,
		Logger:   s.logger.With("user", sess.User()),
		Nickname: sess.User(),
	}, rc)

	return m, []tea.ProgramOption{tea.WithAltScreen()}
}

func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		started := time.Now()
		active := s.sessions.Add(1)
		s.logger.Info("player connected",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
			"active", active,
		)

		next(sess)

		s.logger.Info("player left",
			"user", sess.User(),
			"played", time.Since(started).Round(time.Second),
			"active", s.sessions.Add(-1),
		)
	}
}

// ActiveSessions reports how many players are connected.
func (s *SSHServer) ActiveSessions() int64 {
	return s.sessions.Load()
}

// ListenAndServe blocks until SIGINT/SIGTERM or a listener failure.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address, "leaderboard", s.store != nil)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.closeStore()
		return fmt.Errorf("listen on %s: %w", s.config.Address, err)
	case <-done:
	}

	s.logger.Info("shutting down", "active", s.ActiveSessions())
	return s.Shutdown()
}

// Shutdown waits up to ten seconds for sessions to finish, then closes
// the leaderboard.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	s.closeStore()
	return err
}

func (s *SSHServer) closeStore() {
	if s.store != nil {
		s.store.Close()
		s.store = nil
	}
}

// Addr returns the configured listen address.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
