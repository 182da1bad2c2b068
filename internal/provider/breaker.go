package provider

import (
	"sync"
	"time"
)

type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half_open"
)

// BreakerConfig tunes the upstream circuit breaker.
type BreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

func (cfg BreakerConfig) normalize() BreakerConfig {
	defaults := DefaultBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return cfg
}

// Breaker stops hammering the provider after consecutive transport failures.
// Decode failures do not count; the provider answered.
type Breaker struct {
	mu sync.Mutex

	failureThreshold int
	openTimeout      time.Duration
	halfOpenMaxReq   int

	state               BreakerState
	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
	halfOpenSuccesses   int
	now                 func() time.Time
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	cfg = cfg.normalize()
	return &Breaker{
		failureThreshold: cfg.FailureThreshold,
		openTimeout:      cfg.OpenTimeout,
		halfOpenMaxReq:   cfg.HalfOpenMaxReq,
		state:            BreakerClosed,
		now:              time.Now,
	}
}

func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerOpen {
		if b.now().Sub(b.openedAt) < b.openTimeout {
			return ErrCircuitOpen
		}
		b.toHalfOpen()
	}

	if b.state == BreakerHalfOpen {
		if b.halfOpenInFlight >= b.halfOpenMaxReq {
			return ErrCircuitOpen
		}
		b.halfOpenInFlight++
	}
	return nil
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		b.consecutiveFailures = 0
	case BreakerHalfOpen:
		if b.halfOpenInFlight > 0 {
			b.halfOpenInFlight--
		}
		b.halfOpenSuccesses++
		if b.halfOpenSuccesses >= b.halfOpenMaxReq && b.halfOpenInFlight == 0 {
			b.toClosed()
		}
	}
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		b.consecutiveFailures++
		if b.consecutiveFailures >= b.failureThreshold {
			b.toOpen()
		}
	case BreakerHalfOpen:
		if b.halfOpenInFlight > 0 {
			b.halfOpenInFlight--
		}
		b.toOpen()
	case BreakerOpen:
		b.openedAt = b.now()
	}
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.openTimeout {
		return BreakerHalfOpen
	}
	return b.state
}

func (b *Breaker) toClosed() {
	b.state = BreakerClosed
	b.consecutiveFailures = 0
	b.halfOpenInFlight = 0
	b.halfOpenSuccesses = 0
	b.openedAt = time.Time{}
}

func (b *Breaker) toOpen() {
	b.state = BreakerOpen
	b.openedAt = b.now()
	b.halfOpenInFlight = 0
	b.halfOpenSuccesses = 0
}

func (b *Breaker) toHalfOpen() {
	b.state = BreakerHalfOpen
	b.halfOpenInFlight = 0
	b.halfOpenSuccesses = 0
}
