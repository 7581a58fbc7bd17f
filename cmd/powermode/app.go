package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/powermode/config"
	"github.com/lixenwraith/powermode/core"
	"github.com/lixenwraith/powermode/editor"
	"github.com/lixenwraith/powermode/metrics"
	"github.com/lixenwraith/powermode/render"
	"github.com/lixenwraith/powermode/trigger"
	"github.com/lixenwraith/powermode/vmath"
)

// frameInterval paces particle updates and redraws
const frameInterval = 16 * time.Millisecond

// AppOptions carries the collaborators NewApp does not build itself
type AppOptions struct {
	Config  *config.Store
	Clock   core.Clock
	Metrics *metrics.Metrics
	Sound   trigger.Sound
	Logger  *slog.Logger
	Seed    uint64

	// ShakeTimer overrides time.After for shake steps
	ShakeTimer func(time.Duration) <-chan time.Time
}

// App is the terminal editor with power mode attached
type App struct {
	screen  tcell.Screen
	cfg     *config.Store
	clock   core.Clock
	logger  *slog.Logger
	buf     *editor.Buffer
	view    *editor.View
	layer   *render.ParticleLayer
	trig    *trigger.Trigger
	status  *render.StatusRenderer
	orch    *render.Orchestrator
	metrics *metrics.Metrics
}

// NewApp wires buffer, view, trigger and renderers onto screen
func NewApp(screen tcell.Screen, buf *editor.Buffer, opts AppOptions) (*App, error) {
	if opts.Config == nil {
		opts.Config = config.MustNewStore(config.Default())
	}
	if opts.Clock == nil {
		opts.Clock = core.NewTimeProvider()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}

	w, h := screen.Size()
	view := editor.NewView(buf, w, h-1)
	seeds := vmath.NewSeedSource(opts.Seed)
	layer := render.NewParticleLayer(view, opts.Config, opts.Clock, seeds.NewRand())

	trig, err := trigger.New(view, trigger.Options{
		Config:     opts.Config,
		Clock:      opts.Clock,
		Surface:    layer,
		Lookup:     layer.Lookup,
		Seeds:      seeds,
		Sound:      opts.Sound,
		Metrics:    opts.Metrics,
		Logger:     opts.Logger,
		ShakeTimer: opts.ShakeTimer,
	})
	if err != nil {
		return nil, fmt.Errorf("power mode: %w", err)
	}

	a := &App{
		screen:  screen,
		cfg:     opts.Config,
		clock:   opts.Clock,
		logger:  opts.Logger,
		buf:     buf,
		view:    view,
		layer:   layer,
		trig:    trig,
		status:  render.NewStatusRenderer(trig, buf, opts.Config),
		orch:    render.NewOrchestrator(screen),
		metrics: opts.Metrics,
	}
	a.orch.Register(render.NewTextRenderer(view), render.PriorityText)
	a.orch.Register(layer, render.PriorityParticle)
	a.orch.Register(a.status, render.PriorityUI)

	buf.OnChange(a.onChange)
	return a, nil
}

func (a *App) onChange(deltas []int) {
	res := a.trig.OnChange(deltas)
	if res.Err != nil {
		a.logger.Debug("power mode effect failed", "particles", res.Particles, "err", res.Err)
	}
}

// HandleEvent processes a tcell event and returns false if the editor should exit
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev)
	case *tcell.EventResize:
		w, h := a.screen.Size()
		a.view.Resize(w, h-1)
		a.screen.Sync()
	}
	return true
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	switch editor.HandleKey(a.buf, ev) {
	case editor.ActionQuit:
		return false
	case editor.ActionSave:
		if err := a.buf.Save(); err != nil {
			a.logger.Warn("save failed", "err", err)
			a.status.SetMessage(err.Error())
		} else {
			a.status.SetMessage("saved " + a.buf.Path())
		}
	case editor.ActionToggle:
		err := a.cfg.Update(func(c *config.Config) { c.PowerModeEnabled = !c.PowerModeEnabled })
		if err != nil {
			a.logger.Warn("toggle power mode", "err", err)
		}
	case editor.ActionEdit, editor.ActionMove:
		a.status.SetMessage("")
		a.view.FollowCaret()
	}
	return true
}

// Frame advances particles to now and redraws
func (a *App) Frame(now time.Time) {
	a.layer.Update(now)
	w, h := a.screen.Size()
	a.orch.RenderFrame(render.Context{Now: now, ScreenWidth: w, ScreenHeight: h})
}

// Run drives input and frames until quit or ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 256)
	core.Go(func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	})

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	a.Frame(a.clock.Now())
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok || !a.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			a.Frame(a.clock.Now())
		}
	}
}

// Close stops shakes, completes live sparks and ignores further edits
func (a *App) Close() {
	a.trig.Close()
	a.layer.Close()
}
