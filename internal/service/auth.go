package service

import (
	"context"
	"fmt"

	"wellbeing-waitlist/internal/session"

	"go.uber.org/zap"
)

// SessionContext the privilege lifecycle driven by Auth
type SessionContext interface {
	Viewer
	Login(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	Enter(ctx context.Context, carryOver bool) error
}

var _ SessionContext = (*session.Session)(nil)

// Auth admin login, logout and the home entry point
type Auth struct {
	backend Backend
	session SessionContext
	logger  *zap.Logger
}

func NewAuth(backend Backend, sess SessionContext, logger *zap.Logger) *Auth {
	return &Auth{backend: backend, session: sess, logger: logger}
}

// Login checks password with the backend; on success the session becomes
// privileged. A rejected password surfaces the backend's own message.
func (a *Auth) Login(ctx context.Context, password string) error {
	if err := a.backend.AdminLogin(ctx, password); err != nil {
		a.logger.Warn("Admin login failed", zap.Error(err))
		return err
	}
	if err := a.session.Login(ctx, session.AdminToken); err != nil {
		return fmt.Errorf("failed to persist login: %w", err)
	}
	return nil
}

func (a *Auth) Logout(ctx context.Context) error {
	return a.session.Clear(ctx)
}

// Enter the home page: privilege survives only when coming from the
// privileged area
func (a *Auth) Enter(ctx context.Context, carryOver bool) error {
	return a.session.Enter(ctx, carryOver)
}
