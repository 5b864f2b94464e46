package view

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"wellbeing-waitlist/internal/models"
)

const (
	progressWidth  = 20
	problemMaxRune = 32
)

// Render writes the waitlist table, the cure banners and the message line
func Render(w io.Writer, rows []Row, privileged bool, notes []models.CureNotification, message string) error {
	for _, n := range notes {
		if _, err := fmt.Fprintf(w, "*** Patient cured successfully: %s ***\n", n.Name); err != nil {
			return err
		}
	}
	if message != "" {
		if _, err := fmt.Fprintln(w, message); err != nil {
			return err
		}
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No patients found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := []string{"QUEUE", "ID", "NAME", "AGE", "GENDER", "PROBLEM", "PRIORITY", "TIME TO CURE", "PROGRESS"}
	if privileged {
		header = append(header, "STATUS")
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, r := range rows {
		cols := []string{
			fmt.Sprintf("#%d", r.Queue),
			fmt.Sprintf("%d", r.ID),
			r.Name,
			fmt.Sprintf("%d", r.Age),
			r.Gender,
			truncate(r.Problem, problemMaxRune),
			r.Priority,
			r.Time,
			progressCell(r),
		}
		if privileged {
			cols = append(cols, r.Status)
		}
		fmt.Fprintln(tw, strings.Join(cols, "\t"))
	}
	return tw.Flush()
}

func progressCell(r Row) string {
	if r.Cured {
		return "Cured"
	}
	filled := int(r.Progress / 100 * progressWidth)
	if filled < 0 {
		filled = 0
	}
	if filled > progressWidth {
		filled = progressWidth
	}
	return fmt.Sprintf("[%s%s] %3.0f%% %s",
		strings.Repeat("#", filled), strings.Repeat(".", progressWidth-filled), r.Progress, r.Band)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
