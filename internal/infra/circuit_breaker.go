package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ── Circuit Breaker ───────────────────────────────────────────────────────────
// Guards outbound SMTP so the report workers fail fast while the relay is down
// instead of holding a worker for the full dial timeout on every job.

// CBState is the breaker position.
type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// ErrCircuitOpen is returned by Execute without calling fn.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int           // consecutive failures that open the breaker
	SuccessThreshold int           // consecutive half-open successes that close it
	OpenTimeout      time.Duration // time spent open before a probe is allowed
}

// DefaultCBConfig is tuned for a mail relay: a few failures open it and it
// probes again after two minutes.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             "smtp",
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      2 * time.Minute,
	}
}

type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu        sync.Mutex
	state     CBState
	fallos    int
	aciertos  int
	abiertoEn time.Time
}

// NewCircuitBreaker starts closed. Non-positive settings fall back to 5
// failures, 2 successes and a one minute timeout.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = time.Minute
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// State reports the position, moving an expired open breaker to half-open.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.estadoLocked()
}

// Execute runs fn unless the breaker is open and records the outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	if cb.estadoLocked() == CBOpen {
		cb.mu.Unlock()
		return ErrCircuitOpen
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.registrarFallo()
	} else {
		cb.registrarAcierto()
	}
	return err
}

func (cb *CircuitBreaker) estadoLocked() CBState {
	if cb.state == CBOpen && cb.now().Sub(cb.abiertoEn) >= cb.cfg.OpenTimeout {
		cb.pasarA(CBHalfOpen)
	}
	return cb.state
}

func (cb *CircuitBreaker) registrarFallo() {
	cb.fallos++
	if cb.state == CBHalfOpen || cb.fallos >= cb.cfg.FailureThreshold {
		cb.abiertoEn = cb.now()
		cb.pasarA(CBOpen)
	}
}

func (cb *CircuitBreaker) registrarAcierto() {
	if cb.state != CBHalfOpen {
		cb.fallos = 0
		return
	}
	cb.aciertos++
	if cb.aciertos >= cb.cfg.SuccessThreshold {
		cb.pasarA(CBClosed)
	}
}

// pasarA resets the counters on every move. Caller holds mu.
func (cb *CircuitBreaker) pasarA(to CBState) {
	if to == cb.state {
		return
	}
	log.Warn().Str("breaker", cb.cfg.Name).Str("from", cb.state.String()).Str("to", to.String()).Msg("circuit breaker state change")
	cb.state = to
	cb.fallos = 0
	cb.aciertos = 0
}
