package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/harmony/internal/auth"
	"github.com/theirongolddev/harmony/internal/clients"
	"github.com/theirongolddev/harmony/internal/config"
	"github.com/theirongolddev/harmony/internal/invoice"
	"github.com/theirongolddev/harmony/internal/ledger"
	"github.com/theirongolddev/harmony/internal/remote"
	"github.com/theirongolddev/harmony/internal/store"
)

// appEnv is the wiring shared by every command that touches data.
type appEnv struct {
	kv       store.KV
	remote   *remote.Client
	mgr      *clients.Manager
	dir      *auth.Directory
	sessions *auth.Sessions
}

func openEnv(ctx context.Context) (*appEnv, error) {
	if cfg.Storage.Backend == store.BackendSQLite || cfg.Storage.Backend == "" {
		if err := os.MkdirAll(filepath.Dir(config.SQLitePath(cfg)), 0o750); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	kv, err := store.Open(ctx, store.Options{
		Backend:     cfg.Storage.Backend,
		Path:        config.SQLitePath(cfg),
		RedisURL:    cfg.Storage.RedisURL,
		RedisPrefix: cfg.Storage.RedisPrefix,
	})
	if err != nil {
		return nil, err
	}

	rc := remote.NewClient(cfg.Remote.URL,
		remote.WithTimeout(config.RemoteTimeout(cfg)),
		remote.WithLogger(log),
	)
	mgr := clients.New(kv, clients.MirrorFor(rc), log)
	if err := mgr.Load(ctx); err != nil {
		_ = kv.Close()
		return nil, err
	}

	dir, err := directoryFrom(cfg)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	log.Debug().
		Str("backend", cfg.Storage.Backend).
		Bool("remote", rc != nil).
		Int("active", len(mgr.Active())).
		Int("history", len(mgr.History())).
		Msg("environment ready")

	return &appEnv{
		kv:       kv,
		remote:   rc,
		mgr:      mgr,
		dir:      dir,
		sessions: auth.NewSessions(kv, dir),
	}, nil
}

// close waits for in-flight mirror calls before closing storage.
func (e *appEnv) close() {
	e.mgr.Wait()
	if err := e.kv.Close(); err != nil {
		log.Warn().Err(err).Msg("closing store")
	}
}

// session returns the logged-in session or a hint to log in.
func (e *appEnv) session(ctx context.Context) (auth.Session, error) {
	s, err := e.sessions.Require(ctx)
	if errors.Is(err, auth.ErrNoSession) {
		return s, errors.New("no hay sesión activa: ejecuta `harmony login`")
	}
	return s, err
}

// admin returns the session only when it has the admin role.
func (e *appEnv) admin(ctx context.Context) (auth.Session, error) {
	s, err := e.session(ctx)
	if err != nil {
		return s, err
	}
	if err := s.RequireAdmin(); err != nil {
		return s, fmt.Errorf("%s no puede hacer esto: %w", s.Username, err)
	}
	return s, nil
}

func (e *appEnv) ledgerFor(s auth.Session) *ledger.Ledger {
	return ledger.New(e.kv, s.Username)
}

// directoryFrom adds the configured users to the built-in ones.
func directoryFrom(c config.Config) (*auth.Directory, error) {
	extra := make([]auth.User, 0, len(c.Auth.Users))
	for _, u := range c.Auth.Users {
		role, err := auth.ParseRole(u.Role)
		if err != nil {
			return nil, fmt.Errorf("user %q: %w", u.Name, err)
		}
		extra = append(extra, auth.User{Name: u.Name, Role: role, PINHash: []byte(u.PINHash)})
	}
	return auth.NewDirectory(extra...), nil
}

// business returns the invoice letterhead with config overrides applied.
func business(c config.Config) invoice.Business {
	b := invoice.DefaultBusiness
	if c.Invoice.BusinessName != "" {
		b.Name = c.Invoice.BusinessName
	}
	if c.Invoice.NIT != "" {
		b.NIT = c.Invoice.NIT
	}
	if c.Invoice.City != "" {
		b.City = c.Invoice.City
	}
	return b
}
