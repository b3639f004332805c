// Package refresh schedules token renewal. A Scheduler owns at most one
// pending timer: arming a new schedule first cancels the prior handle, so a
// session can never have two refresh attempts in flight. A refresh failure
// halts the scheduler; it never retries on its own.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/oauthkit/go-session-client/credentials"
	"github.com/oauthkit/go-session-client/token"
)

// State is the scheduler's lifecycle state.
type State string

const (
	// StateIdle means no schedule is armed.
	StateIdle State = "idle"
	// StateScheduled means a timer is pending for the next refresh.
	StateScheduled State = "scheduled"
	// StateRefreshing means the timer fired and the refresh call is in flight.
	StateRefreshing State = "refreshing"
	// StateHalted is terminal for the handle: a refresh failed and the
	// caller must prompt re-authentication.
	StateHalted State = "halted"
)

// DefaultOffset is the safety margin subtracted from the token lifetime so
// the refresh fires before the token lapses, never after.
const DefaultOffset = 60 * time.Second

// Refresher performs a single refresh attempt. Implemented by session.Client.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler is the timer state machine driving automatic token renewal.
type Scheduler struct {
	refresher Refresher
	store     credentials.Store
	offset    time.Duration
	nowFunc   func() time.Time
	log       zerolog.Logger
	haltFunc  func(error)

	lock       sync.Mutex
	state      State
	timer      *time.Timer
	cancelCtx  context.CancelFunc
	generation uint64
	delay      time.Duration
}

// Option defines a function type to modify the Scheduler instance.
type Option func(*Scheduler)

// WithOffset sets the safety margin before token expiry.
func WithOffset(offset time.Duration) Option {
	return func(s *Scheduler) {
		s.offset = offset
	}
}

// WithNowFunc sets the now time function (primarily for testing)
func WithNowFunc(nowFunc func() time.Time) Option {
	return func(s *Scheduler) {
		s.nowFunc = nowFunc
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Scheduler) {
		s.log = log
	}
}

// WithHaltFunc registers a callback invoked once when the scheduler halts.
// State remains pull-based; this is a convenience for UI collaborators.
func WithHaltFunc(haltFunc func(error)) Option {
	return func(s *Scheduler) {
		s.haltFunc = haltFunc
	}
}

// New initializes a Scheduler with its required dependencies.
func New(refresher Refresher, store credentials.Store, options ...Option) (*Scheduler, error) {
	if refresher == nil {
		return nil, errors.New("[refresh.New] refresher is required")
	}
	if store == nil {
		return nil, errors.New("[refresh.New] credential store is required")
	}

	s := &Scheduler{
		refresher: refresher,
		store:     store,
		offset:    DefaultOffset,
		nowFunc:   time.Now,
		log:       zerolog.Nop(),
		state:     StateIdle,
	}

	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// StartupCheck arms a schedule from the stored access token, when one exists
// and has not expired. It reports whether a schedule was armed.
func (s *Scheduler) StartupCheck() bool {
	raw, err := s.store.Get(token.AccessTokenKey)
	if err != nil || token.IsExpired(raw, s.nowFunc()) {
		return false
	}
	return s.Schedule(raw) == nil
}

// Schedule arms the refresh timer from the given access token's expiry,
// replacing (and cancelling) any prior handle. The delay is the remaining
// token lifetime minus the offset, floored at zero.
func (s *Scheduler) Schedule(rawAccessToken string) error {
	claims, err := token.Decode(rawAccessToken)
	if err != nil {
		return errors.Wrap(err, "[Scheduler.Schedule]")
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.scheduleLocked(claims.ExpiresAt())
	return nil
}

// Cancel releases the live handle: the timer is stopped, any in-flight
// refresh is cancelled and its result discarded, and the state returns to
// Idle. Cancel is idempotent and safe to call from any state.
func (s *Scheduler) Cancel() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.releaseHandleLocked()
	s.generation++
	s.state = StateIdle
	s.log.Debug().Msg("refresh schedule cancelled")
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state
}

// Delay returns the fire delay computed for the current schedule.
func (s *Scheduler) Delay() time.Duration {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.delay
}

// scheduleLocked arms a fresh handle for the given expiry. Callers hold the lock.
func (s *Scheduler) scheduleLocked(expiry time.Time) {
	s.releaseHandleLocked()

	delay := expiry.Sub(s.nowFunc()) - s.offset
	if delay < 0 {
		delay = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancelCtx = cancel
	s.generation++
	s.delay = delay
	s.state = StateScheduled

	gen := s.generation
	s.timer = time.AfterFunc(delay, func() {
		s.fire(gen, ctx)
	})

	s.log.Debug().Dur("delay", delay).Time("expiry", expiry).Msg("refresh scheduled")
}

// releaseHandleLocked stops the timer and cancels the handle context.
// Callers hold the lock.
func (s *Scheduler) releaseHandleLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancelCtx != nil {
		s.cancelCtx()
		s.cancelCtx = nil
	}
}

// fire runs when the timer elapses. The generation check makes the handle
// single-shot: a timer that fired just as its schedule was cancelled or
// replaced finds a newer generation and gives up without side effects.
func (s *Scheduler) fire(gen uint64, ctx context.Context) {
	s.lock.Lock()
	if s.generation != gen || s.state != StateScheduled {
		s.lock.Unlock()
		return
	}
	s.state = StateRefreshing
	s.lock.Unlock()

	err := s.refresher.Refresh(ctx)

	s.lock.Lock()
	if s.generation != gen {
		// Cancelled while the refresh was in flight; the session client
		// saw the cancelled context and did not persist anything.
		s.lock.Unlock()
		return
	}

	if err != nil {
		s.releaseHandleLocked()
		s.state = StateHalted
		haltFunc := s.haltFunc
		s.lock.Unlock()

		s.log.Error().Err(err).Msg("refresh failed, scheduler halted")
		if haltFunc != nil {
			haltFunc(err)
		}
		return
	}

	// Reschedule from the freshly stored token.
	raw, storeErr := s.store.Get(token.AccessTokenKey)
	var claims *token.Claims
	if storeErr == nil {
		claims, storeErr = token.Decode(raw)
	}
	if storeErr != nil {
		s.releaseHandleLocked()
		s.state = StateHalted
		haltFunc := s.haltFunc
		s.lock.Unlock()

		s.log.Error().Err(storeErr).Msg("refreshed token unreadable, scheduler halted")
		if haltFunc != nil {
			haltFunc(storeErr)
		}
		return
	}

	s.scheduleLocked(claims.ExpiresAt())
	s.lock.Unlock()
}
