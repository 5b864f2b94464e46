package service

import (
	"context"
	"sync"

	"wellbeing-waitlist/internal/client"
	"wellbeing-waitlist/internal/models"
)

type fakeBackend struct {
	mu sync.Mutex

	patients   []models.Patient
	filters    []*bool
	cured      []int64
	deleted    []int64
	registered []models.Registration
	passwords  []string

	fetchErr    error
	cureErr     error
	deleteErr   error
	registerErr error
	loginErr    error

	// deleteGate, when set, blocks DeletePatient until closed
	deleteGate    chan struct{}
	deleteStarted chan struct{}
}

func (f *fakeBackend) FetchPatients(_ context.Context, cured *bool) ([]models.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, cured)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]models.Patient, 0, len(f.patients))
	for _, p := range f.patients {
		if cured != nil && p.Cured != *cured {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeBackend) RegisterPatient(_ context.Context, reg models.Registration) (*models.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, reg)
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.Patient{
		ID:             int64(len(f.registered)),
		Name:           reg.Name,
		Age:            reg.Age,
		Gender:         reg.Gender,
		Problem:        reg.Problem,
		EmergencyLevel: 64,
	}, nil
}

func (f *fakeBackend) AdminLogin(_ context.Context, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwords = append(f.passwords, password)
	return f.loginErr
}

func (f *fakeBackend) MarkCured(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cured = append(f.cured, id)
	return f.cureErr
}

func (f *fakeBackend) DeletePatient(ctx context.Context, id int64) error {
	f.mu.Lock()
	gate, started := f.deleteGate, f.deleteStarted
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeBackend) curedIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.cured...)
}

func (f *fakeBackend) deletedIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.deleted...)
}

func notFound() error {
	return &client.APIError{Kind: client.KindClientError, Status: 404, Message: "Patient not found", Op: "test"}
}

func unauthorized(msg string) error {
	return &client.APIError{Kind: client.KindUnauthorized, Status: 401, Message: msg, Op: "test"}
}
