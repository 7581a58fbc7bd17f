// Package particle pools the explosion handles spawned by power mode edits.
//
// Handles are constructed against a host Surface and cycled between idle and
// checked-out; the pool grows lazily under burst demand and never shrinks.
package particle

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/powermode/core"
)

// Handle is a reusable explosion slot owned by a Pool
type Handle struct {
	id     uint64
	pool   *Pool
	effect Effect

	mu  sync.Mutex
	pos core.Point

	active atomic.Bool
}

// ID returns the handle identity, stable for the handle's lifetime
func (h *Handle) ID() uint64 { return h.id }

// Active reports whether the handle is checked out
func (h *Handle) Active() bool { return h.active.Load() }

// Position returns the last explosion position (top = Y, left = X)
func (h *Handle) Position() core.Point {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pos
}

// Explode plays the handle's effect at pos and returns to the pool on completion
// The returned channel closes once the handle has been released
func (h *Handle) Explode(pos core.Point) <-chan struct{} {
	h.mu.Lock()
	h.pos = pos
	h.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	h.effect.Explode(pos, func() {
		once.Do(func() {
			h.pool.Release(h)
			close(done)
		})
	})
	return done
}

// Stats is a point-in-time view of pool occupancy
type Stats struct {
	Idle        int
	Outstanding int
	Created     int
}

// Pool manages reusable particle handles
type Pool struct {
	surface Surface
	lookup  ServiceLookup

	mu   sync.Mutex
	idle []*Handle

	nextID      atomic.Uint64
	created     atomic.Int64
	outstanding atomic.Int64

	onGrow func(created int)
}

// PoolOption configures a Pool
type PoolOption func(*Pool)

// WithGrowHook registers fn to run after every handle construction with the new total
func WithGrowHook(fn func(created int)) PoolOption {
	return func(p *Pool) { p.onGrow = fn }
}

// NewPool creates a pool pre-warmed with warm handles
func NewPool(surface Surface, lookup ServiceLookup, warm int, opts ...PoolOption) (*Pool, error) {
	if surface == nil || lookup == nil {
		return nil, ErrHostUnavailable
	}
	p := &Pool{
		surface: surface,
		lookup:  lookup,
		idle:    make([]*Handle, 0, max(warm, 0)),
	}
	for _, opt := range opts {
		opt(p)
	}

	for i := 0; i < warm; i++ {
		h, err := p.construct()
		if err != nil {
			return nil, fmt.Errorf("prewarm handle %d/%d: %w", i+1, warm, err)
		}
		p.idle = append(p.idle, h)
	}
	return p, nil
}

// construct builds a handle against the host; called without the pool lock
func (p *Pool) construct() (*Handle, error) {
	svc, err := p.lookup()
	if err != nil {
		return nil, fmt.Errorf("%w: service lookup: %w", ErrHostUnavailable, err)
	}
	if svc == nil {
		return nil, fmt.Errorf("%w: service lookup returned nil", ErrHostUnavailable)
	}
	effect, err := p.surface.NewEffect(svc)
	if err != nil {
		return nil, fmt.Errorf("%w: new effect: %w", ErrHostUnavailable, err)
	}
	if effect == nil {
		return nil, fmt.Errorf("%w: surface returned nil effect", ErrHostUnavailable)
	}

	h := &Handle{
		id:     p.nextID.Add(1),
		pool:   p,
		effect: effect,
	}
	created := int(p.created.Add(1))
	if p.onGrow != nil {
		p.onGrow(created)
	}
	return h, nil
}

// Acquire checks out an idle handle, constructing one when none is idle
func (p *Pool) Acquire() (*Handle, error) {
	p.mu.Lock()
	if n := len(p.idle); n > 0 {
		h := p.idle[n-1]
		p.idle[n-1] = nil
		p.idle = p.idle[:n-1]
		h.active.Store(true)
		p.outstanding.Add(1)
		p.mu.Unlock()
		return h, nil
	}
	p.mu.Unlock()

	h, err := p.construct()
	if err != nil {
		return nil, err
	}
	h.active.Store(true)
	p.outstanding.Add(1)
	return h, nil
}

// Release returns a handle to the idle set
// Nil, foreign and already-idle handles are ignored so the set never holds duplicates
func (p *Pool) Release(h *Handle) {
	if h == nil || h.pool != p {
		return
	}
	if !h.active.CompareAndSwap(true, false) {
		return
	}
	p.outstanding.Add(-1)

	p.mu.Lock()
	p.idle = append(p.idle, h)
	p.mu.Unlock()
}

// Stats returns current occupancy
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	idle := len(p.idle)
	p.mu.Unlock()
	return Stats{
		Idle:        idle,
		Outstanding: int(p.outstanding.Load()),
		Created:     int(p.created.Load()),
	}
}
