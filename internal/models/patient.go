package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Patient waitlist record as owned by the backend
type Patient struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	Age            int         `json:"age"`
	Gender         string      `json:"gender"`
	Problem        string      `json:"problem"`
	EmergencyLevel int         `json:"emergencyLevel"`
	ArrivalTime    ArrivalTime `json:"arrivalTime"`
	Cured          bool        `json:"cured"`
}

// TimedPatient a Patient with its local cure countdown (seconds)
type TimedPatient struct {
	Patient
	TotalTime     int `json:"totalTime"`
	RemainingTime int `json:"remainingTime"`
}

// Expired the countdown reached zero but the backend has not confirmed the cure yet
func (p TimedPatient) Expired() bool {
	return !p.Cured && p.RemainingTime == 0
}

// Registration registration form payload (POST /register)
type Registration struct {
	Name    string `json:"name"`
	Age     int    `json:"age"`
	Gender  string `json:"gender"`
	Problem string `json:"problem"`
}

// CureNotification transient "patient cured" banner
type CureNotification struct {
	NotificationID string    `json:"notificationId"`
	PatientID      int64     `json:"patientId"`
	Name           string    `json:"name"`
	Timestamp      time.Time `json:"timestamp"`
}

// ArrivalTime accepts ISO timestamps with or without zone; zoneless values
// (LocalDateTime on the backend) are read in the local zone.
type ArrivalTime struct {
	time.Time
}

var arrivalLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseArrivalTime parses a backend arrival timestamp
func ParseArrivalTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for i, layout := range arrivalLayouts {
		var (
			t   time.Time
			err error
		)
		if i == 0 {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, time.Local)
		}
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid arrival time %q", s)
}

func (a *ArrivalTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		a.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("arrival time must be a string: %w", err)
	}
	if s == "" {
		a.Time = time.Time{}
		return nil
	}
	t, err := ParseArrivalTime(s)
	if err != nil {
		return err
	}
	a.Time = t
	return nil
}

func (a ArrivalTime) MarshalJSON() ([]byte, error) {
	if a.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(a.Time.Format(time.RFC3339Nano))
}
