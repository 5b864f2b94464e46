package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"wellbeing-waitlist/internal/models"

	"go.uber.org/zap"
)

var genders = map[string]bool{"Male": true, "Female": true, "Other": true}

// Intake the registration form
type Intake struct {
	backend Backend
	logger  *zap.Logger
}

func NewIntake(backend Backend, logger *zap.Logger) *Intake {
	return &Intake{backend: backend, logger: logger}
}

// Validate checks the form in the order it is presented: gender, age, then
// the backend's name and problem constraints.
func Validate(reg models.Registration) error {
	if !genders[reg.Gender] {
		return &ValidationError{Field: "gender", Message: "Please select a gender"}
	}
	if reg.Age < 1 || reg.Age > 150 {
		return &ValidationError{Field: "age", Message: "Please enter a valid age between 1 and 150"}
	}

	name := strings.TrimSpace(reg.Name)
	if name == "" {
		return &ValidationError{Field: "name", Message: "Name is mandatory"}
	}
	if n := utf8.RuneCountInString(name); n < 2 || n > 50 {
		return &ValidationError{Field: "name", Message: "Name must be between 2 and 50 characters"}
	}

	problem := strings.TrimSpace(reg.Problem)
	if problem == "" {
		return &ValidationError{Field: "problem", Message: "Must write your problem"}
	}
	if n := utf8.RuneCountInString(problem); n < 5 || n > 200 {
		return &ValidationError{Field: "problem", Message: "Problem description must be between 5 and 200 characters"}
	}
	return nil
}

// Register validates and submits the form; nothing is sent when validation fails
func (i *Intake) Register(ctx context.Context, reg models.Registration) (*models.Patient, error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Problem = strings.TrimSpace(reg.Problem)

	if err := Validate(reg); err != nil {
		i.logger.Debug("Registration rejected", zap.Error(err))
		return nil, err
	}

	p, err := i.backend.RegisterPatient(ctx, reg)
	if err != nil {
		err = expire(err)
		i.logger.Error("Failed to register patient", zap.Error(err))
		return nil, err
	}
	return p, nil
}
