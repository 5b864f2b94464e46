package view

import (
	"fmt"

	"wellbeing-waitlist/internal/countdown"
	"wellbeing-waitlist/internal/models"
)

// Progress band colours, by remaining share of the allotted time
const (
	BandGreen  = "green"
	BandYellow = "yellow"
	BandRed    = "red"
)

// PriorityLabel clinical priority bucket for an emergency level
func PriorityLabel(level int) string {
	switch {
	case level >= 90:
		return "Critical"
	case level >= 70:
		return "High"
	case level >= 50:
		return "Medium"
	default:
		return "Low"
	}
}

// FormatTime seconds as m:ss
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// Progress elapsed share of the countdown in percent
func Progress(remaining, total int) float64 {
	if total <= 0 {
		return 100
	}
	return 100 - float64(remaining)/float64(total)*100
}

// Band colour of the progress bar: green above 66% remaining, yellow above 33%
func Band(remaining, total int) string {
	if total <= 0 {
		return BandRed
	}
	pct := float64(remaining) / float64(total) * 100
	switch {
	case pct > 66:
		return BandGreen
	case pct > 33:
		return BandYellow
	default:
		return BandRed
	}
}

// TimeColumn "Completed", "Curing Now..." or "m:ss of m:ss"
func TimeColumn(p models.TimedPatient) string {
	switch {
	case p.Cured:
		return "Completed"
	case p.RemainingTime == 0:
		return "Curing Now..."
	default:
		return FormatTime(p.RemainingTime) + " of " + FormatTime(p.TotalTime)
	}
}

// StatusColumn privileged-only status text
func StatusColumn(p models.TimedPatient) string {
	if p.Cured {
		return "Cured"
	}
	return "In Treatment"
}

// Row one rendered line of the waitlist
type Row struct {
	Queue    int
	ID       int64
	Name     string
	Age      int
	Gender   string
	Problem  string
	Priority string
	Time     string
	Progress float64
	Band     string
	Status   string
	Cured    bool
}

// Rows display rows in priority order. Cured records are hidden from
// non-privileged viewers; Status is only filled for privileged ones.
func Rows(patients []models.TimedPatient, privileged bool) []Row {
	visible := make([]models.TimedPatient, 0, len(patients))
	for _, p := range patients {
		if p.Cured && !privileged {
			continue
		}
		visible = append(visible, p)
	}
	countdown.SortByPriority(visible)

	rows := make([]Row, 0, len(visible))
	for i, p := range visible {
		row := Row{
			Queue:    i + 1,
			ID:       p.ID,
			Name:     p.Name,
			Age:      p.Age,
			Gender:   p.Gender,
			Problem:  p.Problem,
			Priority: fmt.Sprintf("%s (%d)", PriorityLabel(p.EmergencyLevel), p.EmergencyLevel),
			Time:     TimeColumn(p),
			Progress: Progress(p.RemainingTime, p.TotalTime),
			Band:     Band(p.RemainingTime, p.TotalTime),
			Cured:    p.Cured,
		}
		if privileged {
			row.Status = StatusColumn(p)
		}
		rows = append(rows, row)
	}
	return rows
}
