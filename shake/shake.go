// Package shake runs bounded viewport oscillations.
//
// Each session applies a random offset, waits, then applies the exact inverse,
// so a session that finishes (or aborts) leaves the viewport where it found it.
// Sessions are independent: overlapping sessions are neither merged nor cancelled.
package shake

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/powermode/config"
	"github.com/lixenwraith/powermode/core"
	"github.com/lixenwraith/powermode/vmath"
)

// Viewport is the host scrolling primitive
type Viewport interface {
	HorizontalOffset() int
	SetHorizontalOffset(offset int) error
	// ScrollVertical moves the view by dy rows relative to its current position
	ScrollVertical(dy int) error
}

// Animator starts shake sessions against one viewport
type Animator struct {
	viewport Viewport
	cfg      *config.Store
	seeds    *vmath.SeedSource
	after    func(time.Duration) <-chan time.Time
	logger   *slog.Logger

	running atomic.Int64
}

// Option configures an Animator
type Option func(*Animator)

// WithSeeds sets the seed source for per-session random generators
func WithSeeds(seeds *vmath.SeedSource) Option {
	return func(a *Animator) { a.seeds = seeds }
}

// WithTimer replaces time.After for step delays
func WithTimer(after func(time.Duration) <-chan time.Time) Option {
	return func(a *Animator) { a.after = after }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(a *Animator) { a.logger = logger }
}

func NewAnimator(viewport Viewport, cfg *config.Store, opts ...Option) *Animator {
	a := &Animator{
		viewport: viewport,
		cfg:      cfg,
		seeds:    vmath.NewSeedSource(uint64(time.Now().UnixNano())),
		after:    time.After,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Running returns the number of sessions still in flight
func (a *Animator) Running() int {
	return int(a.running.Load())
}

// Steps returns the oscillation count for a magnitude under the current config
func (a *Animator) Steps(magnitude int) int {
	return max(min(magnitude, a.cfg.Load().MaxShakeAmount), 0)
}

// Shake starts a session sized by magnitude and returns without blocking
// Cancelling ctx restores the current step and ends the session
func (a *Animator) Shake(ctx context.Context, magnitude int) *Session {
	snap := a.cfg.Load()
	s := &Session{
		steps:  max(min(magnitude, snap.MaxShakeAmount), 0),
		amount: snap.ExplosionAmount,
		delay:  snap.ExplosionDelay,
		done:   make(chan struct{}),
	}
	if s.steps == 0 {
		close(s.done)
		return s
	}

	rng := a.seeds.NewRand()
	a.running.Add(1)
	core.Go(func() {
		defer a.running.Add(-1)
		defer close(s.done)
		s.err = a.run(ctx, s, rng)
		if s.err != nil {
			a.logger.Debug("shake aborted", "completed", s.Completed(), "steps", s.steps, "err", s.err)
		}
	})
	return s
}

func (a *Animator) run(ctx context.Context, s *Session, rng vmath.Rand) error {
	for i := 0; i < s.steps; i++ {
		dx := vmath.Sign(rng) * s.amount
		dy := vmath.Sign(rng) * s.amount

		if err := a.viewport.SetHorizontalOffset(a.viewport.HorizontalOffset() + dx); err != nil {
			return fmt.Errorf("step %d: apply horizontal: %w", i, err)
		}
		if err := a.viewport.ScrollVertical(dy); err != nil {
			restoreErr := a.viewport.SetHorizontalOffset(a.viewport.HorizontalOffset() - dx)
			return fmt.Errorf("step %d: apply vertical: %w", i, joinRestore(err, restoreErr))
		}

		var cancelled error
		select {
		case <-a.after(s.delay):
		case <-ctx.Done():
			cancelled = ctx.Err()
		}

		if err := a.restore(dx, dy); err != nil {
			return fmt.Errorf("step %d: restore: %w", i, err)
		}
		s.completed.Add(1)

		if cancelled != nil {
			return cancelled
		}
	}
	return nil
}

// restore applies the inverse of one step; both axes are attempted even if one fails
func (a *Animator) restore(dx, dy int) error {
	errX := a.viewport.SetHorizontalOffset(a.viewport.HorizontalOffset() - dx)
	errY := a.viewport.ScrollVertical(-dy)
	if errX != nil {
		return joinRestore(errX, errY)
	}
	return errY
}

func joinRestore(err, restoreErr error) error {
	if restoreErr == nil {
		return err
	}
	return fmt.Errorf("%w (restore failed: %v)", err, restoreErr)
}

// Session is one in-flight or finished shake
type Session struct {
	steps  int
	amount int
	delay  time.Duration

	completed atomic.Int64
	done      chan struct{}
	err       error
}

// Steps returns the planned oscillation count
func (s *Session) Steps() int { return s.steps }

// Completed returns the number of steps applied and restored so far
func (s *Session) Completed() int { return int(s.completed.Load()) }

// Done closes when the session has restored its last step
func (s *Session) Done() <-chan struct{} { return s.done }

// Err reports why the session stopped early; valid after Done closes
func (s *Session) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Wait blocks until the session ends and returns Err
func (s *Session) Wait() error {
	<-s.done
	return s.err
}
