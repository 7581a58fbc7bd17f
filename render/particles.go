package render

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/powermode/config"
	"github.com/lixenwraith/powermode/core"
	"github.com/lixenwraith/powermode/particle"
	"github.com/lixenwraith/powermode/vmath"
)

// ErrLayerClosed is returned by Lookup once the layer has been torn down
var ErrLayerClosed = errors.New("render: particle layer closed")

// Spark kinematics in cells per second; rows are roughly twice as tall as columns
const (
	sparkMaxVX   = 14
	sparkMinVY   = 3
	sparkMaxVY   = 9
	sparkGravity = 20.0
)

// Projector maps buffer positions to screen cells
type Projector interface {
	ToScreen(p core.Point) (x, y int, visible bool)
}

// ParticleLayer is the host surface for power mode sparks
// Effects are advanced by Update on the frame goroutine and drawn by Render
type ParticleLayer struct {
	proj Projector
	cfg  *config.Store
	svc  *particle.Services

	mu   sync.Mutex
	live []*spark

	closed atomic.Bool
}

// NewParticleLayer creates a layer projecting through proj
func NewParticleLayer(proj Projector, cfg *config.Store, clock core.Clock, rng vmath.Rand) *ParticleLayer {
	return &ParticleLayer{
		proj: proj,
		cfg:  cfg,
		svc: &particle.Services{
			Clock: clock,
			Rand:  &lockedRand{rng: rng},
		},
	}
}

// Lookup resolves the layer's services for effect construction
func (l *ParticleLayer) Lookup() (*particle.Services, error) {
	if l.closed.Load() {
		return nil, ErrLayerClosed
	}
	return l.svc, nil
}

// NewEffect builds one reusable spark slot
func (l *ParticleLayer) NewEffect(svc *particle.Services) (particle.Effect, error) {
	if svc == nil || svc.Clock == nil || svc.Rand == nil {
		return nil, errors.New("render: incomplete particle services")
	}
	if l.closed.Load() {
		return nil, ErrLayerClosed
	}
	return &spark{layer: l, svc: svc}, nil
}

// Live returns the number of sparks in flight
func (l *ParticleLayer) Live() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.live)
}

// Update advances sparks to now and completes expired ones
func (l *ParticleLayer) Update(now time.Time) {
	lifetime := l.cfg.Load().ParticleLifetime

	var finished []func()
	l.mu.Lock()
	kept := l.live[:0]
	for _, s := range l.live {
		age := now.Sub(s.born)
		if age >= lifetime {
			if s.done != nil {
				finished = append(finished, s.done)
			}
			s.done = nil
			s.inFlight = false
			continue
		}
		s.advance(age)
		s.stage = stageOf(age, lifetime)
		kept = append(kept, s)
	}
	clear(l.live[len(kept):])
	l.live = kept
	l.mu.Unlock()

	// Completion releases pool handles, which must not happen under l.mu
	for _, done := range finished {
		done()
	}
}

// Close completes every live spark and rejects further construction
func (l *ParticleLayer) Close() {
	if !l.closed.CompareAndSwap(false, true) {
		return
	}
	l.mu.Lock()
	live := l.live
	l.live = nil

	var finished []func()
	for _, s := range live {
		s.inFlight = false
		if s.done != nil {
			finished = append(finished, s.done)
			s.done = nil
		}
	}
	l.mu.Unlock()

	for _, done := range finished {
		done()
	}
}

func (l *ParticleLayer) IsVisible() bool {
	snap := l.cfg.Load()
	return snap.PowerModeEnabled && snap.ParticlesEnabled
}

func (l *ParticleLayer) Render(ctx Context, screen tcell.Screen) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, s := range l.live {
		p := core.Point{X: int(math.Round(s.x)), Y: int(math.Round(s.y))}
		x, y, ok := l.proj.ToScreen(p)
		if !ok || y >= ctx.EditorHeight() {
			continue
		}
		_, _, under, _ := screen.GetContent(x, y)
		bg, _, _ := under.Decompose()
		style := under.Foreground(sparkPalette[s.stage].Color()).Background(bg)
		screen.SetContent(x, y, sparkGlyphs[s.stage], nil, style)
	}
}

// spark is one pooled effect; motion fields are guarded by layer.mu
type spark struct {
	layer *ParticleLayer
	svc   *particle.Services

	ox, oy float64
	vx, vy float64
	x, y   float64
	born   time.Time
	stage  int
	done   func()

	// inFlight marks membership in layer.live
	inFlight bool
}

func (s *spark) Explode(pos core.Point, done func()) {
	rng := s.svc.Rand
	vx := float64(rng.Intn(2*sparkMaxVX+1)-sparkMaxVX)
	vy := -float64(sparkMinVY + rng.Intn(sparkMaxVY-sparkMinVY+1))

	s.layer.mu.Lock()
	if s.layer.closed.Load() {
		s.layer.mu.Unlock()
		done()
		return
	}
	s.ox, s.oy = float64(pos.X), float64(pos.Y)
	s.x, s.y = s.ox, s.oy
	s.vx, s.vy = vx, vy
	s.born = s.svc.Clock.Now()
	s.stage = 0
	// A handle released early and reacquired restarts its spark in place
	s.done = done
	if !s.inFlight {
		s.inFlight = true
		s.layer.live = append(s.layer.live, s)
	}
	s.layer.mu.Unlock()
}

// advance places the spark on its ballistic arc at age
func (s *spark) advance(age time.Duration) {
	t := age.Seconds()
	s.x = s.ox + s.vx*t
	s.y = s.oy + s.vy*t + 0.5*sparkGravity*t*t
}

func stageOf(age, lifetime time.Duration) int {
	if lifetime <= 0 {
		return len(sparkPalette) - 1
	}
	idx := int(float64(age) / float64(lifetime) * float64(len(sparkPalette)))
	return min(max(idx, 0), len(sparkPalette)-1)
}

// lockedRand serialises a shared random source across input goroutines
type lockedRand struct {
	mu  sync.Mutex
	rng vmath.Rand
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}
