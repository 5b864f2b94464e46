package countdown

import (
	"math"
	"time"

	"wellbeing-waitlist/internal/models"
)

// cure duration bands, evaluated highest level first
var cureBands = []struct {
	minLevel int
	seconds  int
}{
	{90, 30},
	{70, 60},
	{50, 120},
}

const defaultCureSeconds = 180

// CureDuration total allotted cure time in seconds for an emergency level
func CureDuration(emergencyLevel int) int {
	for _, b := range cureBands {
		if emergencyLevel >= b.minLevel {
			return b.seconds
		}
	}
	return defaultCureSeconds
}

// NewTimedPatient derives the countdown for p as seen at now.
// remaining = clamp(total - floor(elapsed), 0, total); a future arrival
// (clock skew) gives a negative elapsed and therefore a full countdown.
func NewTimedPatient(p models.Patient, now time.Time) models.TimedPatient {
	total := CureDuration(p.EmergencyLevel)
	return models.TimedPatient{
		Patient:       p,
		TotalTime:     total,
		RemainingTime: remainingAt(p, total, now),
	}
}

func remainingAt(p models.Patient, total int, now time.Time) int {
	elapsed := int64(math.Floor(now.Sub(p.ArrivalTime.Time).Seconds()))
	remaining := int64(total) - elapsed
	if remaining < 0 {
		return 0
	}
	if remaining > int64(total) {
		return total
	}
	return int(remaining)
}
