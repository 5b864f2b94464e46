package countdown

import (
	"sync"
	"time"

	"wellbeing-waitlist/internal/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// DefaultNotificationTTL how long a cure banner stays visible
const DefaultNotificationTTL = 3 * time.Second

// Notifications transient cure banners, each retracted after ttl.
// Retraction timers are tracked so Close can cancel them.
type Notifications struct {
	mu     sync.Mutex
	clock  clockwork.Clock
	ttl    time.Duration
	active []models.CureNotification
	timers map[string]clockwork.Timer
	closed bool
}

func NewNotifications(clock clockwork.Clock, ttl time.Duration) *Notifications {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	return &Notifications{
		clock:  clock,
		ttl:    ttl,
		timers: make(map[string]clockwork.Timer),
	}
}

// Push shows a banner for p and schedules its retraction
func (n *Notifications) Push(p models.TimedPatient) models.CureNotification {
	note := models.CureNotification{
		NotificationID: uuid.NewString(),
		PatientID:      p.ID,
		Name:           p.Name,
		Timestamp:      n.clock.Now(),
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return note
	}

	n.active = append(n.active, note)
	n.timers[note.NotificationID] = n.clock.AfterFunc(n.ttl, func() {
		n.retract(note.NotificationID)
	})
	return note
}

func (n *Notifications) retract(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.timers, id)
	for i, note := range n.active {
		if note.NotificationID == id {
			n.active = append(n.active[:i], n.active[i+1:]...)
			return
		}
	}
}

// Active banners currently visible, oldest first
func (n *Notifications) Active() []models.CureNotification {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]models.CureNotification, len(n.active))
	copy(out, n.active)
	return out
}

// Close cancels pending retractions and clears the banners
func (n *Notifications) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for id, t := range n.timers {
		t.Stop()
		delete(n.timers, id)
	}
	n.active = nil
	n.closed = true
}
