package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AdminToken token issued locally after a successful admin login
const AdminToken = "admin-authenticated"

const keyPrefix = "waitlist:session:"

// State persisted session flags
type State struct {
	Privileged bool      `json:"isAdmin"`
	Token      string    `json:"authToken,omitempty"`
	Since      time.Time `json:"since,omitempty"`
}

// Session viewer privilege context.
// Set on login success; cleared on logout, on a 401 and on entry without
// carry-over. Privilege is trusted as-is; the backend does authorization.
type Session struct {
	mu     sync.RWMutex
	state  State
	store  Store
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

// New name distinguishes concurrent sessions in a shared store
func New(store Store, name string, ttl time.Duration, logger *zap.Logger) *Session {
	return &Session{
		store:  store,
		key:    keyPrefix + name,
		ttl:    ttl,
		logger: logger,
	}
}

// Restore loads the stored state; a missing entry is an anonymous session
func (s *Session) Restore(ctx context.Context) error {
	raw, err := s.store.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.set(State{})
			return nil
		}
		return fmt.Errorf("failed to load session: %w", err)
	}

	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		// unreadable state is dropped rather than trusted
		s.logger.Warn("Discarding corrupt session state", zap.String("key", s.key), zap.Error(err))
		s.set(State{})
		return s.store.Delete(ctx, s.key)
	}
	s.set(st)
	return nil
}

// Login marks the session privileged
func (s *Session) Login(ctx context.Context, token string) error {
	st := State{Privileged: true, Token: token, Since: time.Now()}
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.store.Set(ctx, s.key, string(raw), s.ttl); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.set(st)
	s.logger.Info("Session privileged", zap.String("key", s.key))
	return nil
}

// Clear drops privilege and token
func (s *Session) Clear(ctx context.Context) error {
	s.set(State{})
	if err := s.store.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Enter is the home entry point: the session survives only with carry-over
func (s *Session) Enter(ctx context.Context, carryOver bool) error {
	if carryOver {
		return s.Restore(ctx)
	}
	return s.Clear(ctx)
}

func (s *Session) IsPrivileged() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Privileged
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Invalidate is called by the transport on a 401
func (s *Session) Invalidate() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Clear(ctx); err != nil {
		s.logger.Error("Failed to clear invalidated session", zap.Error(err))
		return
	}
	s.logger.Warn("Session invalidated by backend", zap.String("key", s.key))
}

func (s *Session) set(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}
