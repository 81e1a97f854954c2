// Package circuitbreaker guards the sweep against a degraded or
// unreachable chain node. Repeated query failures open the circuit and
// pause sampling instead of hammering a node that cannot answer.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// State represents the current state of the circuit breaker
type State int

// Circuit breaker states
const (
	StateClosed   State = iota // Normal operation
	StateOpen                  // Tripped, no new operations allowed
	StateHalfOpen              // Testing if the node has recovered
)

// ErrOpen is returned by Allow while the circuit is open.
var ErrOpen = errors.New("circuit breaker open: chain queries suspended")

// CircuitBreaker trips after a run of consecutive chain query failures
// and blocks further queries until a reset delay has passed. After the
// delay it moves to half-open and lets queries through again; a run of
// consecutive successes closes the circuit, any failure re-opens it.
type CircuitBreaker struct {
	// Consecutive failures required to trip the circuit
	failureThreshold int

	// Current state of the circuit breaker (Closed, Open, HalfOpen)
	state State

	// Timestamp of the last circuit trip
	lastTrip time.Time

	// Duration before auto-reset attempt
	resetDelay time.Duration

	// Mutex for thread safety
	mu sync.RWMutex

	// Count of consecutive failed queries
	failureCount int

	// Count of consecutive successful queries in HalfOpen state
	successCount int

	// Number of successful queries required to close the circuit
	successThreshold int

	// Event callback for monitoring/alerting
	onTripCallback func(reason string)
}

// New creates a new CircuitBreaker tripping after failureThreshold
// consecutive failures.
func New(failureThreshold int) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		state:            StateClosed,
		resetDelay:       5 * time.Minute,
		successThreshold: 3,
	}
}

// WithResetDelay sets a custom reset delay and returns the circuit breaker
func (cb *CircuitBreaker) WithResetDelay(delay time.Duration) *CircuitBreaker {
	cb.resetDelay = delay
	return cb
}

// WithSuccessThreshold sets the number of successful queries needed to close the circuit
func (cb *CircuitBreaker) WithSuccessThreshold(threshold int) *CircuitBreaker {
	cb.successThreshold = threshold
	return cb
}

// WithTripCallback sets a callback function that is called when the circuit trips
func (cb *CircuitBreaker) WithTripCallback(callback func(reason string)) *CircuitBreaker {
	cb.onTripCallback = callback
	return cb
}

// Allow reports whether a chain query may proceed. While the circuit
// is open it returns ErrOpen until the reset delay has elapsed, at
// which point the circuit moves to half-open and queries resume.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.RLock()
	state := cb.state
	lastTripTime := cb.lastTrip
	cb.mu.RUnlock()

	if state == StateOpen {
		if time.Since(lastTripTime) > cb.resetDelay {
			cb.transitionToHalfOpen()
			return nil
		}
		return ErrOpen
	}
	return nil
}

// RecordSuccess notes a successful chain query. In half-open state a
// run of successes closes the circuit again.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount = 0
	if cb.state == StateHalfOpen {
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.state = StateClosed
			cb.successCount = 0
			logrus.Info("Circuit breaker closed: chain node has recovered")
		}
	}
}

// RecordFailure notes a failed chain query. Enough consecutive
// failures, or any failure while half-open, trip the circuit.
func (cb *CircuitBreaker) RecordFailure(reason string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.trip(reason)
		return
	}

	cb.failureCount++
	if cb.failureCount >= cb.failureThreshold {
		cb.trip(reason)
	}
}

// GetState returns the current state of the circuit breaker
func (cb *CircuitBreaker) GetState() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// Reset forcibly resets the circuit breaker to closed state
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failureCount = 0
	cb.successCount = 0
	logrus.Info("Circuit breaker manually reset to closed state")
}

// transitionToHalfOpen changes the circuit state to half-open for testing recovery
func (cb *CircuitBreaker) transitionToHalfOpen() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == StateOpen {
		cb.state = StateHalfOpen
		cb.successCount = 0
		logrus.Info("Circuit breaker half-open: testing chain node recovery")
	}
}

// trip sets the circuit breaker to open state with the current time.
// Callers must hold the write lock.
func (cb *CircuitBreaker) trip(reason string) {
	cb.state = StateOpen
	cb.lastTrip = time.Now()
	cb.failureCount = 0
	cb.successCount = 0
	logrus.Warnf("Circuit breaker tripped: %s", reason)

	if cb.onTripCallback != nil {
		go cb.onTripCallback(reason)
	}
}
