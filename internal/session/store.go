// Package session holds the client-side authentication state: who is
// signed in, whether an auth call is in flight, and whether the session
// just ended. The backend stays the source of truth; this store only
// caches what the identity probe last returned.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/danielwetzel/ragchat/internal/client"
	"github.com/danielwetzel/ragchat/internal/models"
)

// Store is the auth state store. Create one per process and inject it;
// there is no package-level instance.
type Store struct {
	api    *client.Client
	logger *slog.Logger

	mu        sync.Mutex
	user      *models.User
	isLoading bool
	isLogout  bool
}

// Snapshot is a point-in-time copy of the auth state for rendering.
type Snapshot struct {
	User      *models.User
	IsLoading bool
	IsLogout  bool
}

// New creates an empty (anonymous) store.
func New(api *client.Client, logger *slog.Logger) *Store {
	return &Store{api: api, logger: logger}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{IsLoading: s.isLoading, IsLogout: s.isLogout}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// Authenticated reports whether an identity is currently loaded.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// Login exchanges credentials and, on success, immediately probes the
// identity endpoint to populate the user. Returns true only when both
// succeed. isLoading is reset on every exit path.
//
// isLoading is advisory, not a lock: the UI disables its submit action
// while it is set, which is what keeps logins serialized.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.api.Login(ctx, email, password); err != nil {
		// Issuance failure: still anonymous, not a logout.
		s.logger.Debug("login rejected", "error", err)
		return false
	}

	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		s.logger.Warn("login succeeded but identity probe failed", "error", err)
		s.setUser(nil, true)
		return false
	}

	s.setUser(user, false)
	s.logger.Info("logged in", "email", user.Email)
	return true
}

// Register creates an account. It never logs the new user in and
// mutates no identity state.
func (s *Store) Register(ctx context.Context, email, password, confirmPassword string) bool {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.api.Register(ctx, email, password, confirmPassword); err != nil {
		s.logger.Debug("registration rejected", "error", err)
		return false
	}
	return true
}

// GetCurrentUser probes the identity endpoint using the ambient
// credential. This is the only path by which the store self-detects an
// expired session: any failure clears the user and flags the logout.
func (s *Store) GetCurrentUser(ctx context.Context) bool {
	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		if client.IsUnauthorized(err) {
			s.logger.Debug("identity probe unauthorized, session expired")
		} else {
			s.logger.Warn("identity probe failed", "error", err)
		}
		s.setUser(nil, true)
		return false
	}

	s.setUser(user, false)
	return true
}

// Logout tells the backend first, while the credential is still in the
// jar, so the server-side session actually gets invalidated. The local
// wipe is unconditional; from the client's point of view logout always
// succeeds, reachable backend or not.
func (s *Store) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		s.logger.Warn("server-side logout failed", "error", err)
	}

	s.setUser(nil, true)
	s.api.ClearCredentials()
}

// ClearAuth resets the local state without any network call.
func (s *Store) ClearAuth() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.isLoading = false
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = v
}

func (s *Store) setUser(u *models.User, loggedOut bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
	s.isLogout = loggedOut
}
