package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/theirongolddev/harmony/internal/store"
)

// Session is the logged-in identity.
type Session struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the session may perform admin-only actions.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// RequireAdmin returns ErrForbidden for non-admin sessions.
func (s Session) RequireAdmin() error {
	if !s.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

const (
	defaultScanDelay    = 2000 * time.Millisecond
	defaultConfirmDelay = 800 * time.Millisecond
)

// Sessions persists the current session in a KV store.
type Sessions struct {
	kv           store.KV
	dir          *Directory
	scanDelay    time.Duration
	confirmDelay time.Duration
}

// SessionOption configures Sessions.
type SessionOption func(*Sessions)

// WithBiometricDelays overrides the simulated scan and confirm delays.
func WithBiometricDelays(scan, confirm time.Duration) SessionOption {
	return func(s *Sessions) {
		s.scanDelay = scan
		s.confirmDelay = confirm
	}
}

// NewSessions creates a session store backed by kv.
func NewSessions(kv store.KV, dir *Directory, opts ...SessionOption) *Sessions {
	s := &Sessions{
		kv:           kv,
		dir:          dir,
		scanDelay:    defaultScanDelay,
		confirmDelay: defaultConfirmDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login authenticates and persists the session. With the biometric flag
// on, it first waits out the simulated scan; ctx cancels the wait.
func (s *Sessions) Login(ctx context.Context, username, pin string) (Session, error) {
	u, err := s.dir.Authenticate(username, pin)
	if err != nil {
		return Session{}, err
	}

	enabled, err := s.BiometricEnabled(ctx)
	if err != nil {
		return Session{}, err
	}
	if enabled {
		if err := s.scan(ctx); err != nil {
			return Session{}, err
		}
	}

	sess := Session{Username: u.Name, Role: u.Role}
	role, err := json.Marshal(sess.Role)
	if err != nil {
		return Session{}, err
	}
	if err := s.kv.Set(ctx, store.KeySession, role); err != nil {
		return Session{}, fmt.Errorf("saving session: %w", err)
	}
	if err := s.kv.Set(ctx, store.KeyUsername, []byte(sess.Username)); err != nil {
		return Session{}, fmt.Errorf("saving username: %w", err)
	}
	return sess, nil
}

// Current returns the persisted session, if any.
func (s *Sessions) Current(ctx context.Context) (Session, bool, error) {
	rawRole, ok, err := s.kv.Get(ctx, store.KeySession)
	if err != nil || !ok {
		return Session{}, false, err
	}
	var role Role
	if err := json.Unmarshal(rawRole, &role); err != nil {
		return Session{}, false, fmt.Errorf("decoding session: %w", err)
	}
	name, _, err := s.kv.Get(ctx, store.KeyUsername)
	if err != nil {
		return Session{}, false, err
	}
	return Session{Username: string(name), Role: role}, true, nil
}

// Require returns the current session or ErrNoSession.
func (s *Sessions) Require(ctx context.Context) (Session, error) {
	sess, ok, err := s.Current(ctx)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// Logout clears the persisted session.
func (s *Sessions) Logout(ctx context.Context) error {
	return s.kv.Delete(ctx, store.KeySession, store.KeyUsername)
}

// BiometricEnabled reports the device-level biometric flag.
func (s *Sessions) BiometricEnabled(ctx context.Context) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, store.KeyBiometric)
	if err != nil || !ok {
		return false, err
	}
	return string(raw) == "true", nil
}

// SetBiometric toggles the biometric flag.
func (s *Sessions) SetBiometric(ctx context.Context, on bool) error {
	v := "false"
	if on {
		v = "true"
	}
	return s.kv.Set(ctx, store.KeyBiometric, []byte(v))
}

func (s *Sessions) scan(ctx context.Context) error {
	for _, d := range []time.Duration{s.scanDelay, s.confirmDelay} {
		if d <= 0 {
			continue
		}
		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}
