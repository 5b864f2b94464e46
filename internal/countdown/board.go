package countdown

import (
	"sort"
	"time"

	"wellbeing-waitlist/internal/models"
)

// Board the loaded countdowns. Not safe for concurrent use; Engine guards it.
type Board struct {
	entries []*entry
	index   map[int64]*entry
}

type entry struct {
	models.TimedPatient
	// triggered the cure side-effect already fired for this record
	triggered bool
}

func NewBoard() *Board {
	return &Board{index: make(map[int64]*entry)}
}

// Load replaces the board with records as seen at now.
// A record already on the board keeps its TotalTime; its remaining time is
// re-derived from arrival against that TotalTime. Trigger state is not
// carried over, so a record the backend still reports uncured fires again
// and a failed cure is retried.
func (b *Board) Load(records []models.Patient, now time.Time) {
	entries := make([]*entry, 0, len(records))
	index := make(map[int64]*entry, len(records))

	for _, p := range records {
		if _, dup := index[p.ID]; dup {
			continue
		}
		var e *entry
		if prev, ok := b.index[p.ID]; ok {
			e = &entry{
				TimedPatient: models.TimedPatient{
					Patient:       p,
					TotalTime:     prev.TotalTime,
					RemainingTime: remainingAt(p, prev.TotalTime, now),
				},
			}
		} else {
			e = &entry{TimedPatient: NewTimedPatient(p, now)}
		}
		entries = append(entries, e)
		index[p.ID] = e
	}

	b.entries = entries
	b.index = index
}

// Tick advances every countdown by one second and returns the records that
// reached zero for the first time. Those are marked triggered.
func (b *Board) Tick() []models.TimedPatient {
	var expired []models.TimedPatient
	for _, e := range b.entries {
		if e.Cured {
			continue
		}
		if e.RemainingTime > 0 {
			e.RemainingTime--
		}
		if e.RemainingTime == 0 && !e.triggered {
			e.triggered = true
			expired = append(expired, e.TimedPatient)
		}
	}
	return expired
}

// Remove drops the record; false when it was not loaded
func (b *Board) Remove(id int64) bool {
	if _, ok := b.index[id]; !ok {
		return false
	}
	delete(b.index, id)
	for i, e := range b.entries {
		if e.ID == id {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			break
		}
	}
	return true
}

// MarkCured sets cured without touching the timers
func (b *Board) MarkCured(id int64) bool {
	e, ok := b.index[id]
	if !ok {
		return false
	}
	e.Cured = true
	return true
}

func (b *Board) Get(id int64) (models.TimedPatient, bool) {
	e, ok := b.index[id]
	if !ok {
		return models.TimedPatient{}, false
	}
	return e.TimedPatient, true
}

func (b *Board) Len() int {
	return len(b.entries)
}

// Snapshot copies the records in load order
func (b *Board) Snapshot() []models.TimedPatient {
	out := make([]models.TimedPatient, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.TimedPatient
	}
	return out
}

// SortByPriority display order: emergency level descending, then remaining
// time ascending. Stable, so equal keys keep load order.
func SortByPriority(patients []models.TimedPatient) {
	sort.SliceStable(patients, func(i, j int) bool {
		if patients[i].EmergencyLevel != patients[j].EmergencyLevel {
			return patients[i].EmergencyLevel > patients[j].EmergencyLevel
		}
		return patients[i].RemainingTime < patients[j].RemainingTime
	})
}
