// Package tracker owns the per-user sampling lifecycle: the session timer
// state machine, the interval-choice grace wait and the mutual-exclusion
// lock serializing interval reads and writes against the running timer.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"checkyourtime/internal/domain"
	"checkyourtime/internal/service"
)

// DefaultGracePeriod is how long a freshly started session waits for the
// user to pick a different interval before sampling begins.
const DefaultGracePeriod = 10 * time.Second

// ErrSessionOpen refuses a start while a session is already active.
var ErrSessionOpen = errors.New("session already open")

// State of one user's session timer.
type State int

const (
	// StateIdle: no timer task exists for the user.
	StateIdle State = iota
	// StateWaitingChoice: session created, grace wait for an interval choice.
	StateWaitingChoice
	// StateRunning: the sampling loop is sleeping and ticking.
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateWaitingChoice:
		return "waiting-choice"
	case StateRunning:
		return "running"
	default:
		return "idle"
	}
}

// SampleFunc is invoked on every sampling tick with the interval that was
// just slept through.
type SampleFunc func(ctx context.Context, userID, sessionID int64, intervalSeconds int)

// RunningFunc is invoked once per session when the grace period ends and
// the sampling loop is about to begin, with the interval of the first wait.
type RunningFunc func(ctx context.Context, userID, sessionID int64, intervalSeconds int)

// StartResult describes a successfully opened session.
type StartResult struct {
	SessionID       int64
	IntervalSeconds int
	GracePeriod     time.Duration
}

// userState is the explicit per-user session context replacing ad-hoc
// global lock/task maps. Created at first session start and kept for the
// process lifetime so the interval lock stays stable.
type userState struct {
	// intervalMu serializes interval reads/writes between the running
	// timer and the interval-change handler.
	intervalMu sync.Mutex

	state       State
	cancelTask  context.CancelFunc // cancels the grace wait and the sampling loop
	cancelGrace context.CancelFunc // cancels only the grace wait
	done        chan struct{}      // closed when the timer goroutine exits
}

// Manager is the session registry: it maps user ids to their session
// context and drives the Idle -> WaitingChoice -> Running -> Idle machine.
type Manager struct {
	mu    sync.Mutex
	users map[int64]*userState

	store     service.TrackerService
	clock     Clock
	grace     time.Duration
	sample    SampleFunc
	onRunning RunningFunc
	log       *slog.Logger
}

// NewManager builds the registry. Both hooks are fixed at construction
// time so timer goroutines read them without synchronization; onRunning
// may be nil.
func NewManager(store service.TrackerService, clock Clock, grace time.Duration, sample SampleFunc, onRunning RunningFunc, logger *slog.Logger) *Manager {
	if clock == nil {
		clock = SystemClock{}
	}
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		users:     make(map[int64]*userState),
		store:     store,
		clock:     clock,
		grace:     grace,
		sample:    sample,
		onRunning: onRunning,
		log:       logger,
	}
}

// StartSession registers the user, enforces the start preconditions and
// opens the session, moving the user to WaitingChoice. The caller prompts
// for an interval and then calls RunTimer.
//
// Failure modes: service.ErrUnfilledActivities when earlier activities are
// still unlabeled, ErrSessionOpen when a session (or its timer) already
// exists.
func (m *Manager) StartSession(ctx context.Context, u domain.User) (*StartResult, error) {
	if err := m.store.RegisterUserIfAbsent(ctx, u); err != nil {
		return nil, err
	}
	if err := m.store.CheckNoUnfilledActivities(ctx, u.TelegramID); err != nil {
		return nil, err
	}

	sessionID, isNew, err := m.store.GetOrCreateActiveSession(ctx, u.TelegramID)
	if err != nil {
		return nil, err
	}
	if !isNew {
		return nil, ErrSessionOpen
	}

	m.mu.Lock()
	st := m.users[u.TelegramID]
	if st == nil {
		st = &userState{}
		m.users[u.TelegramID] = st
	}
	// The store invariant makes a second active session impossible, but a
	// stale timer task must not be doubled either.
	if st.state != StateIdle {
		m.mu.Unlock()
		return nil, ErrSessionOpen
	}
	st.state = StateWaitingChoice
	m.mu.Unlock()

	interval, err := m.IntervalSeconds(ctx, u.TelegramID)
	if err != nil {
		// The session row was just created; close it again so the user can
		// retry a start without an explicit stop.
		if _, stopErr := m.store.StopActiveSession(ctx, u.TelegramID); stopErr != nil {
			m.log.Error("closing session after failed start", "user_id", u.TelegramID, "error", stopErr)
		}
		m.setState(u.TelegramID, StateIdle)
		return nil, err
	}
	return &StartResult{SessionID: sessionID, IntervalSeconds: interval, GracePeriod: m.grace}, nil
}

// RunTimer launches the user's timer task: the grace wait followed by the
// sampling loop. A no-op unless the user is in WaitingChoice, so at most
// one task ever runs per user.
func (m *Manager) RunTimer(userID, sessionID int64) {
	m.mu.Lock()
	st := m.users[userID]
	if st == nil || st.state != StateWaitingChoice || st.cancelTask != nil {
		m.mu.Unlock()
		return
	}
	taskCtx, cancelTask := context.WithCancel(context.Background())
	graceCtx, cancelGrace := context.WithCancel(taskCtx)
	st.cancelTask = cancelTask
	st.cancelGrace = cancelGrace
	st.done = make(chan struct{})
	done := st.done
	m.mu.Unlock()

	go m.runTimer(taskCtx, graceCtx, userID, sessionID, done)
}

func (m *Manager) runTimer(ctx, graceCtx context.Context, userID, sessionID int64, done chan struct{}) {
	defer close(done)
	defer m.clearTask(userID)

	// Grace wait: the user may still pick a different interval. An interval
	// choice cancels only this wait, never the sampling loop below.
	select {
	case <-m.clock.After(m.grace):
	case <-graceCtx.Done():
		if ctx.Err() != nil {
			return // session stopped during the grace period
		}
	}

	m.setState(userID, StateRunning)
	m.log.Info("session timer running", "user_id", userID, "session_id", sessionID)

	first := true
	for {
		if ctx.Err() != nil {
			return
		}
		interval, err := m.IntervalSeconds(ctx, userID)
		if err != nil {
			m.log.Error("reading sampling interval", "user_id", userID, "error", err)
			return
		}
		if first {
			first = false
			if m.onRunning != nil {
				m.onRunning(ctx, userID, sessionID, interval)
			}
		}

		select {
		case <-m.clock.After(time.Duration(interval) * time.Second):
		case <-ctx.Done():
			// Cancelled mid-sleep: exit without sending a sample prompt.
			return
		}

		m.sample(ctx, userID, sessionID, interval)
	}
}

// StopSession closes the active session and cancels the user's timer task,
// if any. Returns whether a session was actually stopped; when nothing was
// active, nothing is cancelled either.
func (m *Manager) StopSession(ctx context.Context, userID int64) (bool, error) {
	stopped, err := m.store.StopActiveSession(ctx, userID)
	if err != nil || !stopped {
		return stopped, err
	}

	m.mu.Lock()
	st := m.users[userID]
	var cancel context.CancelFunc
	if st != nil {
		cancel = st.cancelTask
	}
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	m.log.Info("session stopped", "user_id", userID)
	return true, nil
}

// CancelGraceWait ends the interval-choice grace period early. Harmless
// once the grace period has elapsed: the sampling loop waits on a different
// context and is not affected.
func (m *Manager) CancelGraceWait(userID int64) {
	m.mu.Lock()
	st := m.users[userID]
	var cancel context.CancelFunc
	if st != nil {
		cancel = st.cancelGrace
	}
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// IntervalSeconds reads the user's sampling interval under the per-user
// lock so the running timer never observes a torn value.
func (m *Manager) IntervalSeconds(ctx context.Context, userID int64) (int, error) {
	if st := m.lookup(userID); st != nil {
		st.intervalMu.Lock()
		defer st.intervalMu.Unlock()
	}
	return m.store.GetIntervalSeconds(ctx, userID)
}

// SetInterval writes the user's sampling interval under the same lock. A
// user that never started a session has no lock and no timer yet; they are
// registered first so the write cannot miss.
func (m *Manager) SetInterval(ctx context.Context, u domain.User, seconds int) error {
	if st := m.lookup(u.TelegramID); st != nil {
		st.intervalMu.Lock()
		defer st.intervalMu.Unlock()
		return m.store.SetIntervalSeconds(ctx, u.TelegramID, seconds)
	}

	if err := m.store.RegisterUserIfAbsent(ctx, u); err != nil {
		return err
	}
	return m.store.SetIntervalSeconds(ctx, u.TelegramID, seconds)
}

// Now exposes the manager's clock so callers anchor time-dependent work
// (stats ranges, first-prompt estimates) to the same source the timer uses.
func (m *Manager) Now() time.Time {
	return m.clock.Now()
}

// UserState reports the user's current timer state.
func (m *Manager) UserState(userID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st := m.users[userID]; st != nil {
		return st.state
	}
	return StateIdle
}

func (m *Manager) lookup(userID int64) *userState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[userID]
}

func (m *Manager) setState(userID int64, s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st := m.users[userID]; st != nil {
		st.state = s
	}
}

// clearTask resets the user's timer bookkeeping when the goroutine exits,
// keeping the state entry (and its interval lock) alive.
func (m *Manager) clearTask(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st := m.users[userID]; st != nil {
		st.state = StateIdle
		st.cancelTask = nil
		st.cancelGrace = nil
	}
}
