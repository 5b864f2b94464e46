package countdown

import (
	"context"
	"sync"
	"time"

	"wellbeing-waitlist/internal/models"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const DefaultTickInterval = time.Second

// Hooks callbacks raised by the tick loop. Both run on their own goroutine,
// outside the engine lock.
type Hooks struct {
	// OnExpire fires once per record whose countdown reached zero
	OnExpire func(p models.TimedPatient)
	// OnNotify fires for every cure banner pushed
	OnNotify func(n models.CureNotification)
}

// Options engine tuning; zero values fall back to defaults
type Options struct {
	TickInterval    time.Duration
	NotificationTTL time.Duration
}

// Engine triage countdown engine.
// The tick schedule runs only while the board is non-empty and is re-armed
// whenever the board goes from empty to non-empty.
type Engine struct {
	mu       sync.Mutex
	board    *Board
	clock    clockwork.Clock
	interval time.Duration
	hooks    Hooks
	logger   *zap.Logger

	notes *Notifications

	task *RepeatingTask
	// gen identifies the live schedule; ticks from a stopped one are ignored
	gen    uint64
	closed bool

	changes chan struct{}
	effects sync.WaitGroup
}

func NewEngine(clock clockwork.Clock, hooks Hooks, opts Options, logger *zap.Logger) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	return &Engine{
		board:    NewBoard(),
		clock:    clock,
		interval: opts.TickInterval,
		hooks:    hooks,
		logger:   logger,
		notes:    NewNotifications(clock, opts.NotificationTTL),
		changes:  make(chan struct{}, 1),
	}
}

// Load replaces the loaded records, deriving countdowns at the current time
func (e *Engine) Load(records []models.Patient) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.board.Load(records, e.clock.Now())
	stale := e.reconcileLocked()
	count := e.board.Len()
	e.mu.Unlock()

	stopTask(stale)
	e.logger.Debug("Loaded countdowns", zap.Int("count", count))
	e.notifyChange()
}

// Tick applies one countdown step to the whole board: decrement, detect
// zero-crossings, notify and dispatch the cure side-effect.
func (e *Engine) Tick() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.tickLocked()
	e.mu.Unlock()
	e.notifyChange()
}

func (e *Engine) scheduledTick(gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.gen {
		e.mu.Unlock()
		return
	}
	e.tickLocked()
	e.mu.Unlock()
	e.notifyChange()
}

func (e *Engine) tickLocked() {
	expired := e.board.Tick()
	for _, p := range expired {
		note := e.notes.Push(p)
		e.logger.Info("Countdown elapsed",
			zap.Int64("patient_id", p.ID),
			zap.String("name", p.Name),
			zap.Int("emergency_level", p.EmergencyLevel),
		)
		if e.hooks.OnNotify != nil {
			e.dispatch(func() { e.hooks.OnNotify(note) })
		}
		if e.hooks.OnExpire != nil {
			p := p
			e.dispatch(func() { e.hooks.OnExpire(p) })
		}
	}
}

// dispatch runs an effect asynchronously; caller holds e.mu
func (e *Engine) dispatch(f func()) {
	e.effects.Add(1)
	go func() {
		defer e.effects.Done()
		f()
	}()
}

// Remove drops a record (deleted, or cured for a non-privileged viewer)
func (e *Engine) Remove(id int64) bool {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}
	ok := e.board.Remove(id)
	stale := e.reconcileLocked()
	e.mu.Unlock()

	stopTask(stale)
	if ok {
		e.notifyChange()
	}
	return ok
}

// MarkCured sets the local cured flag, leaving the timers as they are
func (e *Engine) MarkCured(id int64) bool {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}
	ok := e.board.MarkCured(id)
	e.mu.Unlock()

	if ok {
		e.notifyChange()
	}
	return ok
}

func (e *Engine) Get(id int64) (models.TimedPatient, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.board.Get(id)
}

// Snapshot consistent copy of the board; never observes a partial tick
func (e *Engine) Snapshot() []models.TimedPatient {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.board.Snapshot()
}

func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.board.Len()
}

// Running reports whether the tick schedule is armed
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.task != nil
}

// Notifications visible cure banners
func (e *Engine) Notifications() []models.CureNotification {
	return e.notes.Active()
}

// Changes receives a signal after every state change (coalesced)
func (e *Engine) Changes() <-chan struct{} {
	return e.changes
}

// Wait blocks until dispatched side-effects have returned
func (e *Engine) Wait() {
	e.effects.Wait()
}

// Close tears the engine down: the schedule is stopped, banners and their
// timers dropped, and later ticks or mutations are ignored.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	stale := e.task
	e.task = nil
	e.gen++
	e.board = NewBoard()
	e.mu.Unlock()

	stopTask(stale)
	if stale != nil {
		<-stale.Done()
	}
	e.notes.Close()
	e.logger.Debug("Countdown engine closed")
}

// reconcileLocked arms or disarms the schedule to match the board size and
// returns a schedule to stop once the lock is released.
func (e *Engine) reconcileLocked() *RepeatingTask {
	switch {
	case e.board.Len() > 0 && e.task == nil:
		e.gen++
		gen := e.gen
		e.task = Every(context.Background(), e.clock, e.interval, func(time.Time) {
			e.scheduledTick(gen)
		})
		e.logger.Debug("Countdown schedule armed", zap.Duration("interval", e.interval))
		return nil
	case e.board.Len() == 0 && e.task != nil:
		stale := e.task
		e.task = nil
		e.gen++
		e.logger.Debug("Countdown schedule disarmed")
		return stale
	default:
		return nil
	}
}

func (e *Engine) notifyChange() {
	select {
	case e.changes <- struct{}{}:
	default:
	}
}

func stopTask(t *RepeatingTask) {
	if t != nil {
		t.Stop()
	}
}
