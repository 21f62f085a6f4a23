// Package simulate stands in for remote calls. Every "server" interaction in
// the console goes through a Simulator so failure handling can be exercised
// by pinning the failure rate to 0 or 1.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// ErrSimulated is returned when a call is chosen to fail.
var ErrSimulated = errors.New("simulated server error")

// Simulator delays results and fails a fixed fraction of calls.
type Simulator struct {
	Delay       time.Duration
	FailureRate float64 // in [0,1)

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds a Simulator. A nil rng uses a randomly seeded generator.
func New(delay time.Duration, failureRate float64, rng *rand.Rand) (*Simulator, error) {
	if failureRate < 0 || failureRate > 1 {
		return nil, fmt.Errorf("failure rate %v outside [0,1]", failureRate)
	}
	if delay < 0 {
		delay = 0
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Simulator{Delay: delay, FailureRate: failureRate, rng: rng}, nil
}

// Always returns a Simulator that never fails and never waits.
func Always() *Simulator {
	return &Simulator{rng: rand.New(rand.NewPCG(1, 2))}
}

// Never returns a Simulator whose every call fails without waiting.
func Never() *Simulator {
	return &Simulator{FailureRate: 1, rng: rand.New(rand.NewPCG(1, 2))}
}

func (s *Simulator) fail() bool {
	if s.FailureRate <= 0 {
		return false
	}
	if s.FailureRate >= 1 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s.rng.Float64() < s.FailureRate
}

// wait blocks for the configured delay. A cancelled context returns early.
func (s *Simulator) wait(ctx context.Context) error {
	if s.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Call delivers value after the simulator's delay, or ErrSimulated with the
// configured probability.
func Call[T any](ctx context.Context, s *Simulator, value T) (T, error) {
	var zero T
	if s == nil {
		return value, nil
	}
	if err := s.wait(ctx); err != nil {
		return zero, err
	}
	if s.fail() {
		return zero, ErrSimulated
	}
	return value, nil
}
