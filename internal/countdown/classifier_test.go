package countdown

import (
	"testing"
	"time"

	"wellbeing-waitlist/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCureDuration(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{100, 30},
		{90, 30},
		{89, 60},
		{70, 60},
		{69, 120},
		{50, 120},
		{49, 180},
		{0, 180},
		{-5, 180},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CureDuration(tt.level), "level %d", tt.level)
	}
}

func patientAt(id int64, level int, arrival time.Time) models.Patient {
	return models.Patient{
		ID:             id,
		Name:           "Patient",
		Age:            30,
		Gender:         "Other",
		Problem:        "Headache and dizziness",
		EmergencyLevel: level,
		ArrivalTime:    models.ArrivalTime{Time: arrival},
	}
}

func TestNewTimedPatient(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		level         int
		arrival       time.Time
		wantTotal     int
		wantRemaining int
	}{
		{"just arrived", 95, now, 30, 30},
		{"partially elapsed", 75, now.Add(-20 * time.Second), 60, 40},
		{"fractional seconds floor", 55, now.Add(-1500 * time.Millisecond), 120, 119},
		{"long expired clamps to zero", 40, now.Add(-time.Hour), 180, 0},
		{"future arrival clamps to total", 95, now.Add(10 * time.Second), 30, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp := NewTimedPatient(patientAt(1, tt.level, tt.arrival), now)
			assert.Equal(t, tt.wantTotal, tp.TotalTime)
			assert.Equal(t, tt.wantRemaining, tp.RemainingTime)
		})
	}
}
