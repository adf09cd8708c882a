package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/klinik-sejahtera/clinic-portal/internal/api/metrics"
	"github.com/klinik-sejahtera/clinic-portal/internal/core/domain"
	"github.com/klinik-sejahtera/clinic-portal/internal/core/ports"
)

// Session is the in-memory authentication state for one browser session: the
// portal's single source of truth for "who is logged in" under that session
// cookie. It moves through the explicit state machine
// uninitialized → loading → authenticated | unauthenticated.
type Session struct {
	id string

	mu           sync.Mutex
	state        domain.SessionState
	user         *domain.UserProfile
	accessToken  string
	refreshToken string

	// ready is closed exactly once, when initialization completes (success
	// or failure). Consumers must not treat the session as known before
	// State stops reporting loading.
	ready   chan struct{}
	started bool
}

func newSession(id string) *Session {
	return &Session{
		id:    id,
		state: domain.StateUninitialized,
		ready: make(chan struct{}),
	}
}

// ID returns the session identifier (the cookie value).
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the current user profile, or nil when no user is attached.
// During initialization this may already hold the optimistically trusted
// persisted copy while State still reports loading.
func (s *Session) User() *domain.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// AccessToken returns the bearer token page handlers forward upstream.
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// RefreshToken returns the stored refresh token. The portal never exchanges
// it (no silent refresh flow); it is only read for expiry hints.
func (s *Session) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshToken
}

// Await blocks until initialization has completed or ctx is done.
func (s *Session) Await(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// transition moves the state machine, enforcing the legal transition table.
func (s *Session) transition(next domain.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(next)
}

func (s *Session) transitionLocked(next domain.SessionState) error {
	if !s.state.CanTransitionTo(next) {
		return domain.ErrInvalidTransition
	}
	s.state = next
	return nil
}

// Manager owns every live Session and performs the side-effecting operations
// against the persisted store and the clinic backend. It is constructed once
// at the application root and injected wherever session state is needed; a
// fresh Manager per test gives full isolation.
type Manager struct {
	store   ports.SessionStore
	backend ports.AuthAPI
	audit   ports.AuditRecorder
	log     zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager wires a session manager. A nil audit recorder disables the
// audit trail.
func NewManager(store ports.SessionStore, backend ports.AuthAPI, audit ports.AuditRecorder, log zerolog.Logger) *Manager {
	if audit == nil {
		audit = ports.NoOpAudit{}
	}
	return &Manager{
		store:    store,
		backend:  backend,
		audit:    audit,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// Resume returns the Session for sessionID, creating it and kicking off
// initialization on first sight. The returned session may still be loading;
// callers decide whether to wait (Await) or render a waiting state. An
// already-authenticated session is re-checked against the store, so the
// in-memory copy never outlives the persisted record.
func (m *Manager) Resume(ctx context.Context, sessionID string) *Session {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if !ok {
		s = newSession(sessionID)
		m.sessions[sessionID] = s
	}
	start := !s.started
	s.started = true
	m.mu.Unlock()

	if start {
		// Read the persisted record synchronously. Absent (or partial)
		// record: land unauthenticated right away, with no backend call and
		// no retained entry, so unknown cookie values cost one store read
		// each instead of a permanent map slot.
		rec, err := m.store.Load(ctx, sessionID)
		if err != nil {
			if !errors.Is(err, domain.ErrSessionNotFound) {
				m.log.Warn().Err(err).Str("session", sessionID).Msg("session store read failed")
			}
			_ = s.transition(domain.StateLoading)
			_ = s.transition(domain.StateUnauthenticated)
			close(s.ready)
			m.forget(sessionID)
			return s
		}
		go m.initialize(s, rec)
		return s
	}

	// The store expires sessions on its own (TTL tied to the refresh
	// token); an authenticated session whose record has vanished is revoked
	// here rather than trusted from memory.
	if s.State() == domain.StateAuthenticated {
		if _, err := m.store.Load(ctx, sessionID); err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				m.revoke(ctx, s, domain.ErrSessionInvalid)
			} else {
				m.log.Warn().Err(err).Str("session", sessionID).Msg("session store read failed")
			}
		}
	}
	return s
}

// initialize performs the optimistic-then-revalidate startup sequence over
// an already-loaded record. It runs once per session; the ready channel
// close is the loading flag flipping from true to false.
func (m *Manager) initialize(s *Session, rec domain.SessionRecord) {
	defer close(s.ready)
	ctx := context.Background()

	_ = s.transition(domain.StateLoading)

	// 1. Optimistically trust the persisted user while revalidation is in
	//    flight. A corrupt user blob counts as an invalid session.
	var cached domain.UserProfile
	if err := json.Unmarshal([]byte(rec.UserJSON), &cached); err != nil {
		m.revoke(ctx, s, fmt.Errorf("%w: %v", domain.ErrSessionInvalid, err))
		return
	}
	s.mu.Lock()
	s.user = &cached
	s.accessToken = rec.AccessToken
	s.refreshToken = rec.RefreshToken
	s.mu.Unlock()

	// 2. Revalidate against the backend. Any error — 401, 5xx, network —
	//    revokes the session rather than keeping a stale one (fail-closed).
	fresh, err := m.backend.Profile(ctx, rec.AccessToken)
	if err != nil {
		metrics.RevalidationsTotal.WithLabelValues("revoked").Inc()
		m.revoke(ctx, s, err)
		return
	}
	metrics.RevalidationsTotal.WithLabelValues("ok").Inc()

	// 3. Replace the cached user with the fresh server copy and keep the
	//    persisted copy in sync.
	userJSON, err := json.Marshal(fresh)
	if err != nil {
		m.revoke(ctx, s, err)
		return
	}
	rec.UserJSON = string(userJSON)
	if err := m.store.Save(ctx, s.id, rec); err != nil {
		m.log.Warn().Err(err).Str("session", s.id).Msg("failed to sync revalidated user")
	}

	s.mu.Lock()
	s.user = fresh
	_ = s.transitionLocked(domain.StateAuthenticated)
	s.mu.Unlock()

	m.audit.Record(domain.AuditEvent{
		Action:    domain.AuditRevalidated,
		SessionID: s.id,
		Username:  fresh.Username,
		Role:      fresh.Role,
		Success:   true,
	})
	m.log.Debug().Str("session", s.id).Str("user", fresh.Username).Msg("session revalidated")
}

// forget drops the in-memory entry; the next Resume for the same ID
// rebuilds from the store. Callers holding the old pointer keep seeing its
// unauthenticated state.
func (m *Manager) forget(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}

// revoke clears every persisted key, resets the session to unauthenticated,
// and drops it from memory. Called on any doubt about token validity.
func (m *Manager) revoke(ctx context.Context, s *Session, cause error) {
	if err := m.store.Clear(ctx, s.id); err != nil {
		m.log.Warn().Err(err).Str("session", s.id).Msg("failed to clear revoked session")
	}

	s.mu.Lock()
	username := ""
	role := domain.Role("")
	if s.user != nil {
		username = s.user.Username
		role = s.user.Role
	}
	s.user = nil
	s.accessToken = ""
	s.refreshToken = ""
	if s.state == domain.StateAuthenticated || s.state == domain.StateLoading {
		_ = s.transitionLocked(domain.StateUnauthenticated)
	}
	s.mu.Unlock()

	m.audit.Record(domain.AuditEvent{
		Action:    domain.AuditSessionRevoked,
		SessionID: s.id,
		Username:  username,
		Role:      role,
		Success:   false,
		Error:     cause.Error(),
	})
	m.log.Info().Err(cause).Str("session", s.id).Msg("session revoked")
	m.forget(s.id)
}

// Login authenticates against the backend and, on success, creates a fresh
// authenticated session with all three values persisted in one write. A
// backend failure propagates to the caller untouched: no retry, no partial
// state mutation.
func (m *Manager) Login(ctx context.Context, creds ports.Credentials) (*Session, error) {
	res, err := m.backend.Login(ctx, creds)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, err
	}
	s, err := m.establish(ctx, res, domain.AuditLogin)
	if err != nil {
		return nil, err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return s, nil
}

// Register is symmetric to Login against the registration endpoint. The
// backend assigns the patient role.
func (m *Manager) Register(ctx context.Context, reg ports.Registration) (*Session, error) {
	res, err := m.backend.Register(ctx, reg)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("failure").Inc()
		return nil, err
	}
	s, err := m.establish(ctx, res, domain.AuditRegister)
	if err != nil {
		return nil, err
	}
	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return s, nil
}

// establish persists tokens+user for a new session ID and registers the
// in-memory session as authenticated.
func (m *Manager) establish(ctx context.Context, res *ports.AuthResult, action domain.AuditAction) (*Session, error) {
	userJSON, err := json.Marshal(res.User)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	rec := domain.SessionRecord{
		AccessToken:  res.Tokens.Access,
		RefreshToken: res.Tokens.Refresh,
		UserJSON:     string(userJSON),
	}
	if err := m.store.Save(ctx, id, rec); err != nil {
		return nil, err
	}

	s := newSession(id)
	s.started = true
	close(s.ready)
	user := res.User
	s.mu.Lock()
	s.state = domain.StateAuthenticated
	s.user = &user
	s.accessToken = rec.AccessToken
	s.refreshToken = rec.RefreshToken
	s.mu.Unlock()

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	m.audit.Record(domain.AuditEvent{
		Action:    action,
		SessionID: id,
		Username:  user.Username,
		Role:      user.Role,
		Success:   true,
	})
	m.log.Info().Str("session", id).Str("user", user.Username).Str("role", user.Role.String()).Msg("session established")
	return s, nil
}

// Logout clears every persisted session key, resets the in-memory state,
// and drops the session from the manager. It never calls the backend and is
// idempotent: logging out twice is the same as once.
func (m *Manager) Logout(ctx context.Context, sessionID string) error {
	if err := m.store.Clear(ctx, sessionID); err != nil {
		return err
	}

	m.mu.Lock()
	s := m.sessions[sessionID]
	m.mu.Unlock()

	username := ""
	if s != nil {
		s.mu.Lock()
		if s.user != nil {
			username = s.user.Username
		}
		s.user = nil
		s.accessToken = ""
		s.refreshToken = ""
		if s.state == domain.StateAuthenticated {
			_ = s.transitionLocked(domain.StateUnauthenticated)
		}
		s.mu.Unlock()
	}

	m.forget(sessionID)

	m.audit.Record(domain.AuditEvent{
		Action:    domain.AuditLogout,
		SessionID: sessionID,
		Username:  username,
		Success:   true,
	})
	return nil
}

// UpdateUser replaces the in-memory user and the persisted copy with the
// given profile in one step, as seen by callers. Used after successful
// profile edits.
func (m *Manager) UpdateUser(ctx context.Context, sessionID string, profile domain.UserProfile) error {
	m.mu.Lock()
	s := m.sessions[sessionID]
	m.mu.Unlock()
	if s == nil {
		return domain.ErrNotAuthenticated
	}

	userJSON, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != domain.StateAuthenticated {
		return domain.ErrNotAuthenticated
	}
	rec := domain.SessionRecord{
		AccessToken:  s.accessToken,
		RefreshToken: s.refreshToken,
		UserJSON:     string(userJSON),
	}
	if err := m.store.Save(ctx, sessionID, rec); err != nil {
		return err
	}
	s.user = &profile
	return nil
}
