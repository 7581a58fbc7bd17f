// Package trigger decides, per edit, whether to spawn particles and shake the view.
package trigger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/powermode/combo"
	"github.com/lixenwraith/powermode/config"
	"github.com/lixenwraith/powermode/core"
	"github.com/lixenwraith/powermode/metrics"
	"github.com/lixenwraith/powermode/particle"
	"github.com/lixenwraith/powermode/shake"
	"github.com/lixenwraith/powermode/vmath"
)

// PartyParticleCount replaces the per-press count for party-sized edits
const PartyParticleCount = 200

// PoolWarmFactor sizes the pre-warmed pool relative to ParticlesPerPress
const PoolWarmFactor = 3

// ErrNilView is returned by New when no host view is supplied
var ErrNilView = errors.New("trigger: nil view")

// View is the host viewport geometry the trigger reads
type View interface {
	Bounds() core.Rect
	Caret() core.Point
}

// Sound plays optional audio feedback; intensity is the particle count
type Sound interface {
	Play(kind core.SoundType, intensity int)
}

// Options carries the trigger's collaborators
// Surface and Lookup are required; Viewport defaults to the view when it implements shake.Viewport
type Options struct {
	Config   *config.Store
	Clock    core.Clock
	Surface  particle.Surface
	Lookup   particle.ServiceLookup
	Viewport shake.Viewport
	Seeds    *vmath.SeedSource
	Sound    Sound
	Metrics  *metrics.Metrics
	Logger   *slog.Logger

	// ShakeTimer overrides time.After for shake step delays
	ShakeTimer func(time.Duration) <-chan time.Time
}

// Result describes what one edit produced
type Result struct {
	Suppressed bool // power mode off, trigger closed, or debounced
	Activated  bool
	Party      bool
	Particles  int
	Err        error // host failure that cut particle spawning short
	Shake      *shake.Session
}

// Trigger reacts to one view's edit stream
type Trigger struct {
	view     View
	cfg      *config.Store
	clock    core.Clock
	tracker  *combo.Tracker
	debounce *combo.Debouncer
	pool     *particle.Pool
	animator *shake.Animator
	sound    Sound
	metrics  *metrics.Metrics
	logger   *slog.Logger

	// rng is only touched on the edit path
	rngMu sync.Mutex
	rng   *vmath.FastRand

	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool
}

// New builds a trigger bound to view
func New(view View, opts Options) (*Trigger, error) {
	if view == nil {
		return nil, ErrNilView
	}
	if opts.Config == nil {
		opts.Config = config.MustNewStore(config.Default())
	}
	if opts.Clock == nil {
		opts.Clock = core.NewTimeProvider()
	}
	if opts.Seeds == nil {
		opts.Seeds = vmath.NewSeedSource(uint64(time.Now().UnixNano()))
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	snap := opts.Config.Load()
	pool, err := particle.NewPool(opts.Surface, opts.Lookup, PoolWarmFactor*snap.ParticlesPerPress,
		particle.WithGrowHook(opts.Metrics.PoolGrew))
	if err != nil {
		return nil, err
	}

	viewport := opts.Viewport
	if viewport == nil {
		viewport, _ = view.(shake.Viewport)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &Trigger{
		view:     view,
		cfg:      opts.Config,
		clock:    opts.Clock,
		tracker:  combo.NewTracker(opts.Config),
		debounce: combo.NewDebouncer(combo.MinEditSpacing),
		pool:     pool,
		sound:    opts.Sound,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		rng:      opts.Seeds.NewRand(),
		ctx:      ctx,
		cancel:   cancel,
	}
	if viewport != nil {
		shakeOpts := []shake.Option{shake.WithSeeds(opts.Seeds), shake.WithLogger(opts.Logger)}
		if opts.ShakeTimer != nil {
			shakeOpts = append(shakeOpts, shake.WithTimer(opts.ShakeTimer))
		}
		t.animator = shake.NewAnimator(viewport, opts.Config, shakeOpts...)
	}
	return t, nil
}

// OnChange handles one host notification made of several sub-edits
func (t *Trigger) OnChange(deltas []int) Result {
	return t.OnEdit(core.SumDeltas(deltas).SizeDelta)
}

// OnEdit handles one edit of the given signed size
func (t *Trigger) OnEdit(delta int) Result {
	snap := t.cfg.Load()
	if !snap.PowerModeEnabled || t.closed.Load() {
		t.metrics.ObserveEdit(metrics.OutcomeDisabled)
		return Result{Suppressed: true}
	}

	now := t.clock.Now()
	if !t.debounce.Allow(now) {
		t.metrics.ObserveEdit(metrics.OutcomeSuppressed)
		return Result{Suppressed: true}
	}

	magnitude := core.Abs(delta)
	activated := t.tracker.RegisterEdit(now)
	t.metrics.SetStreak(t.tracker.Streak())
	if !activated {
		t.metrics.ObserveEdit(metrics.OutcomeIdle)
		return Result{}
	}
	t.metrics.ObserveEdit(metrics.OutcomeActivated)

	res := Result{Activated: true}
	if snap.ParticlesEnabled {
		t.spawnParticles(snap, magnitude, &res)
	}
	if snap.ShakeEnabled && t.animator != nil {
		res.Shake = t.startShake(magnitude)
	}
	if snap.SoundEnabled && t.sound != nil && res.Particles > 0 {
		kind := core.SoundPop
		if res.Party {
			kind = core.SoundParty
		}
		t.sound.Play(kind, res.Particles)
	}
	return res
}

func (t *Trigger) spawnParticles(snap config.Config, magnitude int, res *Result) {
	count := snap.ParticlesPerPress
	res.Party = snap.PartyModeEnabled && magnitude >= snap.PartyModeThreshold
	var bounds core.Rect
	if res.Party {
		count = PartyParticleCount
		bounds = t.view.Bounds()
	}
	caret := t.view.Caret()

	t.rngMu.Lock()
	defer t.rngMu.Unlock()

	for i := 0; i < count; i++ {
		h, err := t.pool.Acquire()
		if err != nil {
			// Host failure ends this edit's particles only
			res.Err = err
			t.metrics.ParticleFailure()
			t.logger.Debug("particle spawn failed", "spawned", res.Particles, "want", count, "err", err)
			break
		}
		pos := caret
		if res.Party {
			pos = vmath.RandomPoint(bounds, t.rng)
		}
		h.Explode(pos)
		res.Particles++
	}

	t.metrics.AddParticles(res.Particles, res.Party)
	st := t.pool.Stats()
	t.metrics.SetPool(st.Created, st.Outstanding)
}

func (t *Trigger) startShake(magnitude int) *shake.Session {
	s := t.animator.Shake(t.ctx, magnitude)
	if s.Steps() == 0 {
		return nil
	}
	if t.metrics != nil {
		core.Go(func() { t.metrics.ShakeFinished(s.Wait()) })
	}
	return s
}

// Streak returns the current combo length
func (t *Trigger) Streak() int {
	return t.tracker.Streak()
}

// PoolStats returns particle pool occupancy
func (t *Trigger) PoolStats() particle.Stats {
	return t.pool.Stats()
}

// ShakesRunning returns the number of shake sessions in flight
func (t *Trigger) ShakesRunning() int {
	if t.animator == nil {
		return 0
	}
	return t.animator.Running()
}

// Close stops in-flight shake sessions (each restores its offset) and ignores further edits
func (t *Trigger) Close() {
	if t.closed.CompareAndSwap(false, true) {
		t.cancel()
	}
}
