package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned without calling the guarded function while the breaker is open
var ErrOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

type Config struct {
	MaxFailures     int           // consecutive failures before opening, default 5
	Cooldown        time.Duration // time spent open before a trial call, default 30s
	HalfOpenSuccess int           // trial successes needed to close, default 1
	Now             func() time.Time
}

// Breaker stops calling a failing dependency for a cooldown period.
type Breaker struct {
	mu           sync.Mutex
	state        State
	failures     int
	successes    int
	openedAt     time.Time
	cfg          Config
	onTransition func(from, to State)
}

func New(cfg Config) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.HalfOpenSuccess <= 0 {
		cfg.HalfOpenSuccess = 1
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Breaker{
		state: StateClosed,
		cfg:   cfg,
	}
}

// OnTransition registers a callback fired after every state change.
// It runs with the breaker unlocked.
func (b *Breaker) OnTransition(fn func(from, to State)) {
	b.mu.Lock()
	b.onTransition = fn
	b.mu.Unlock()
}

// Call runs fn unless the breaker is open.
func (b *Breaker) Call(fn func() error) error {
	b.mu.Lock()
	var from, to State
	changed := false
	if b.state == StateOpen {
		if b.cfg.Now().Sub(b.openedAt) < b.cfg.Cooldown {
			b.mu.Unlock()
			return ErrOpen
		}
		from, to, changed = b.setState(StateHalfOpen)
		b.successes = 0
	}
	b.mu.Unlock()
	b.notify(from, to, changed)

	err := fn()

	b.mu.Lock()
	if err != nil {
		from, to, changed = b.onFailure()
	} else {
		from, to, changed = b.onSuccess()
	}
	b.mu.Unlock()
	b.notify(from, to, changed)

	return err
}

func (b *Breaker) onFailure() (State, State, bool) {
	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.cfg.MaxFailures {
		b.openedAt = b.cfg.Now()
		b.successes = 0
		return b.setState(StateOpen)
	}
	return b.state, b.state, false
}

func (b *Breaker) onSuccess() (State, State, bool) {
	switch b.state {
	case StateHalfOpen:
		b.successes++
		if b.successes >= b.cfg.HalfOpenSuccess {
			b.failures = 0
			return b.setState(StateClosed)
		}
	case StateClosed:
		b.failures = 0
	}
	return b.state, b.state, false
}

func (b *Breaker) setState(next State) (State, State, bool) {
	prev := b.state
	b.state = next
	return prev, next, prev != next
}

func (b *Breaker) notify(from, to State, changed bool) {
	if !changed {
		return
	}
	b.mu.Lock()
	fn := b.onTransition
	b.mu.Unlock()
	if fn != nil {
		fn(from, to)
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset closes the breaker and clears its counters
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}
