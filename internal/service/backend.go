package service

import (
	"context"
	"errors"

	"wellbeing-waitlist/internal/client"
	"wellbeing-waitlist/internal/models"
)

// Backend the waitlist REST operations; implemented by client.WaitlistClient
type Backend interface {
	FetchPatients(ctx context.Context, cured *bool) ([]models.Patient, error)
	RegisterPatient(ctx context.Context, reg models.Registration) (*models.Patient, error)
	AdminLogin(ctx context.Context, password string) error
	MarkCured(ctx context.Context, id int64) error
	DeletePatient(ctx context.Context, id int64) error
}

var _ Backend = (*client.WaitlistClient)(nil)

// User-facing messages
const (
	MsgCured          = "Patient marked as cured successfully"
	MsgDeleted        = "Patient record deleted successfully"
	MsgRegistered     = "Patient registered successfully"
	MsgLoggedIn       = "Admin login successful - Full access granted"
	MsgLoggedOut      = "Logged out"
	MsgSessionExpired = "Session expired. Please login again."
)

var (
	ErrNoPendingDelete = errors.New("no deletion awaiting confirmation")
	ErrDeleteInFlight  = errors.New("deletion already in progress")
	ErrNotLoaded       = errors.New("patient not in the waitlist")
	ErrValidation      = errors.New("validation failed")
	ErrSessionExpired  = errors.New("session expired")
	ErrAdminRequired   = errors.New("admin access required")
)

// ValidationError a rejected form field; matches ErrValidation
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// UserMessage renders err for the message line
func UserMessage(err error) string {
	var ve *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, ErrSessionExpired):
		return MsgSessionExpired
	case errors.Is(err, ErrNoPendingDelete), errors.Is(err, ErrDeleteInFlight), errors.Is(err, ErrNotLoaded),
		errors.Is(err, ErrAdminRequired):
		return capitalize(err.Error())
	default:
		return client.Message(err)
	}
}

// expire wraps a 401 outside the login flow; the transport has already
// cleared the session
func expire(err error) error {
	if client.IsUnauthorized(err) {
		return errors.Join(ErrSessionExpired, err)
	}
	return err
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
