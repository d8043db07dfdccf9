package clients

import (
	"sync"
	"time"
)

// State is the position of a Breaker.
type State int

const (
	// StateClosed admits every call.
	StateClosed State = iota

	// StateOpen rejects calls until the cool-down has elapsed.
	StateOpen

	// StateHalfOpen admits a bounded number of probe calls.
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

// Outcome is how an admitted call ended.
type Outcome int

const (
	// OutcomeSuccess counts toward closing the breaker.
	OutcomeSuccess Outcome = iota

	// OutcomeFailure counts toward opening it.
	OutcomeFailure

	// OutcomeIgnored releases the admission without counting, as for a
	// call the caller abandoned.
	OutcomeIgnored
)

// CircuitBreakerConfig tunes a Breaker.
type CircuitBreakerConfig struct {
	// MaxFailures consecutive failures open a closed breaker.
	MaxFailures int

	// Timeout is the cool-down before an open breaker admits probes.
	Timeout time.Duration

	// HalfOpenLimit bounds concurrent probes, and that many consecutive
	// probe successes close the breaker.
	HalfOpenLimit int
}

// Counts are the breaker's tallies for its current generation.
type Counts struct {
	Requests             uint32
	TotalFailures        uint32
	ConsecutiveFailures  uint32
	ConsecutiveSuccesses uint32
}

// Breaker guards one tree backend. Each state change starts a new
// generation; outcomes reported for an admission from an older generation
// are dropped, so a slow call cannot close or reopen a breaker that has
// already moved on.
type Breaker struct {
	name string
	cfg  CircuitBreakerConfig
	now  func() time.Time

	mu         sync.Mutex
	state      State
	generation uint64
	counts     Counts
	openedAt   time.Time
	probes     int

	onStateChange func(name string, from, to State)
}

// NewBreaker returns a closed breaker. Limits below one are raised to one.
func NewBreaker(name string, cfg CircuitBreakerConfig) *Breaker {
	if cfg.MaxFailures < 1 {
		cfg.MaxFailures = 1
	}

	if cfg.HalfOpenLimit < 1 {
		cfg.HalfOpenLimit = 1
	}

	return &Breaker{name: name, cfg: cfg, now: time.Now}
}

// OnStateChange registers fn to run, on its own goroutine, after each
// state change.
func (b *Breaker) OnStateChange(fn func(name string, from, to State)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.onStateChange = fn
}

// Acquire admits a call or returns ErrCircuitOpen. The returned func must
// be called exactly once with the call's outcome.
func (b *Breaker) Acquire() (func(Outcome), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance()

	switch b.state {
	case StateOpen:
		return nil, ErrCircuitOpen
	case StateHalfOpen:
		if b.probes >= b.cfg.HalfOpenLimit {
			return nil, ErrCircuitOpen
		}

		b.probes++
	}

	b.counts.Requests++
	gen := b.generation

	var once sync.Once

	return func(o Outcome) {
		once.Do(func() { b.report(gen, o) })
	}, nil
}

// State returns the current state, moving an expired open breaker to
// half-open first.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance()

	return b.state
}

// Counts returns the tallies for the current generation.
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.counts
}

func (b *Breaker) report(gen uint64, o Outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance()

	if gen != b.generation {
		return
	}

	if b.state == StateHalfOpen {
		b.probes--
	}

	switch o {
	case OutcomeSuccess:
		b.counts.ConsecutiveFailures = 0
		b.counts.ConsecutiveSuccesses++

		if b.state == StateHalfOpen && int(b.counts.ConsecutiveSuccesses) >= b.cfg.HalfOpenLimit {
			b.setState(StateClosed)
		}

	case OutcomeFailure:
		b.counts.TotalFailures++
		b.counts.ConsecutiveSuccesses = 0
		b.counts.ConsecutiveFailures++

		if b.state == StateHalfOpen || int(b.counts.ConsecutiveFailures) >= b.cfg.MaxFailures {
			b.setState(StateOpen)
		}
	}
}

// advance moves an open breaker whose cool-down has passed to half-open.
// Callers hold mu.
func (b *Breaker) advance() {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cfg.Timeout {
		b.setState(StateHalfOpen)
	}
}

// setState starts a new generation in state to. Callers hold mu.
func (b *Breaker) setState(to State) {
	from := b.state
	if from == to {
		return
	}

	b.state = to
	b.generation++
	b.counts = Counts{}
	b.probes = 0

	if to == StateOpen {
		b.openedAt = b.now()
	}

	if fn := b.onStateChange; fn != nil {
		go fn(b.name, from, to)
	}
}
