package service

import (
	"context"
	"sync"

	"wellbeing-waitlist/internal/countdown"
	"wellbeing-waitlist/internal/models"
	"wellbeing-waitlist/internal/notify"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Viewer privilege of whoever is looking at the list
type Viewer interface {
	IsPrivileged() bool
}

// Waitlist the details view: loaded records with live countdowns, cure and
// delete actions, and the message line.
//
// The local projection of a cure or delete is applied only after the
// backend acknowledged it; on failure the message line shows why and the
// list is left as it was.
type Waitlist struct {
	backend   Backend
	viewer    Viewer
	publisher notify.Publisher
	engine    *countdown.Engine
	logger    *zap.Logger

	// ctx scopes side-effects started by the tick loop
	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	message    string
	pending    int64
	hasPending bool
	deleting   map[int64]bool
}

func NewWaitlist(
	backend Backend,
	viewer Viewer,
	publisher notify.Publisher,
	clock clockwork.Clock,
	opts countdown.Options,
	logger *zap.Logger,
) *Waitlist {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Waitlist{
		backend:   backend,
		viewer:    viewer,
		publisher: publisher,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		deleting:  make(map[int64]bool),
	}
	w.engine = countdown.NewEngine(clock, countdown.Hooks{
		OnExpire: w.autoCure,
		OnNotify: w.publish,
	}, opts, logger)
	return w
}

// Load fetches the list for the current viewer and (re)starts the countdowns.
// Non-privileged viewers only see uncured records.
func (w *Waitlist) Load(ctx context.Context) error {
	var filter *bool
	if !w.viewer.IsPrivileged() {
		uncured := false
		filter = &uncured
	}

	records, err := w.backend.FetchPatients(ctx, filter)
	if err != nil {
		err = expire(err)
		w.setMessage(UserMessage(err))
		w.logger.Error("Failed to load waitlist", zap.Error(err))
		return err
	}

	if filter != nil {
		w.CancelDelete()
	}
	w.engine.Load(records)
	w.logger.Info("Waitlist loaded",
		zap.Int("count", len(records)),
		zap.Bool("privileged", w.viewer.IsPrivileged()),
	)
	return nil
}

// MarkCured the admin "Mark Cured" action
func (w *Waitlist) MarkCured(ctx context.Context, id int64) error {
	if err := w.requireAdmin(); err != nil {
		return err
	}
	return w.cure(ctx, id, true)
}

func (w *Waitlist) autoCure(p models.TimedPatient) {
	_ = w.cure(w.ctx, p.ID, false)
}

func (w *Waitlist) cure(ctx context.Context, id int64, loud bool) error {
	if err := w.backend.MarkCured(ctx, id); err != nil {
		err = expire(err)
		w.setMessage(UserMessage(err))
		w.logger.Error("Failed to mark patient cured",
			zap.Int64("patient_id", id),
			zap.Bool("automatic", !loud),
			zap.Error(err),
		)
		return err
	}

	if w.viewer.IsPrivileged() {
		w.engine.MarkCured(id)
	} else {
		w.engine.Remove(id)
	}
	if loud {
		w.setMessage(MsgCured)
	}
	w.logger.Info("Patient cured", zap.Int64("patient_id", id), zap.Bool("automatic", !loud))
	return nil
}

func (w *Waitlist) publish(n models.CureNotification) {
	if w.publisher == nil {
		return
	}
	if err := w.publisher.Publish(w.ctx, n); err != nil {
		w.logger.Warn("Failed to publish cure notification",
			zap.Int64("patient_id", n.PatientID),
			zap.Error(err),
		)
	}
}

// RequestDelete asks for confirmation; nothing is deleted yet
func (w *Waitlist) RequestDelete(id int64) error {
	if err := w.requireAdmin(); err != nil {
		return err
	}
	if _, ok := w.engine.Get(id); !ok {
		return ErrNotLoaded
	}
	w.mu.Lock()
	w.pending = id
	w.hasPending = true
	w.mu.Unlock()
	return nil
}

// PendingDelete the id awaiting confirmation
func (w *Waitlist) PendingDelete() (int64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending, w.hasPending
}

func (w *Waitlist) CancelDelete() {
	w.mu.Lock()
	w.hasPending = false
	w.pending = 0
	w.mu.Unlock()
}

// ConfirmDelete sends the pending deletion. On failure the record and the
// pending confirmation are kept.
func (w *Waitlist) ConfirmDelete(ctx context.Context) error {
	if err := w.requireAdmin(); err != nil {
		w.CancelDelete()
		return err
	}
	w.mu.Lock()
	if !w.hasPending {
		w.mu.Unlock()
		return ErrNoPendingDelete
	}
	id := w.pending
	if w.deleting[id] {
		w.mu.Unlock()
		return ErrDeleteInFlight
	}
	w.deleting[id] = true
	w.mu.Unlock()

	err := w.backend.DeletePatient(ctx, id)

	w.mu.Lock()
	delete(w.deleting, id)
	if err == nil && w.hasPending && w.pending == id {
		w.hasPending = false
		w.pending = 0
	}
	w.mu.Unlock()

	if err != nil {
		err = expire(err)
		w.setMessage(UserMessage(err))
		w.logger.Error("Failed to delete patient", zap.Int64("patient_id", id), zap.Error(err))
		return err
	}

	w.engine.Remove(id)
	w.setMessage(MsgDeleted)
	return nil
}

// Deleting reports whether a delete request for id is outstanding
func (w *Waitlist) Deleting(id int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.deleting[id]
}

// requireAdmin rejects explicit actions from a non-privileged viewer.
// Auto-cures on expiry are not gated.
func (w *Waitlist) requireAdmin() error {
	if w.viewer.IsPrivileged() {
		return nil
	}
	w.setMessage(UserMessage(ErrAdminRequired))
	w.logger.Warn("Admin action rejected")
	return ErrAdminRequired
}

func (w *Waitlist) Privileged() bool {
	return w.viewer.IsPrivileged()
}

// Snapshot records in load order; sort for display with countdown.SortByPriority
func (w *Waitlist) Snapshot() []models.TimedPatient {
	return w.engine.Snapshot()
}

func (w *Waitlist) Get(id int64) (models.TimedPatient, bool) {
	return w.engine.Get(id)
}

func (w *Waitlist) Notifications() []models.CureNotification {
	return w.engine.Notifications()
}

// Changes signals that the view should be re-rendered
func (w *Waitlist) Changes() <-chan struct{} {
	return w.engine.Changes()
}

// Tick advances the countdowns by one step outside the schedule
func (w *Waitlist) Tick() {
	w.engine.Tick()
}

// Settle waits for side-effects started by the tick loop
func (w *Waitlist) Settle() {
	w.engine.Wait()
}

func (w *Waitlist) Message() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.message
}

func (w *Waitlist) SetMessage(msg string) {
	w.setMessage(msg)
}

func (w *Waitlist) setMessage(msg string) {
	w.mu.Lock()
	w.message = msg
	w.mu.Unlock()
}

// Close tears the view down: countdowns stop and in-flight side-effects are
// cancelled and awaited.
func (w *Waitlist) Close() {
	w.engine.Close()
	w.cancel()
	w.engine.Wait()
	w.logger.Debug("Waitlist closed")
}
