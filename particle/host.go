package particle

import (
	"errors"
	"log/slog"

	"github.com/lixenwraith/powermode/core"
	"github.com/lixenwraith/powermode/vmath"
)

// ErrHostUnavailable is returned when an effect cannot be built because the host
// surface or its service lookup is missing or failing
var ErrHostUnavailable = errors.New("particle host unavailable")

// Effect is one drawable explosion slot on the host surface
// Explode must return promptly and call done exactly once when the animation ends
type Effect interface {
	Explode(pos core.Point, done func())
}

// Services is the host-wide handle needed to construct effects
type Services struct {
	Clock  core.Clock
	Rand   vmath.Rand
	Logger *slog.Logger
}

// ServiceLookup resolves the host services at construction time
type ServiceLookup func() (*Services, error)

// Surface is the rendering layer effects are placed on
type Surface interface {
	NewEffect(svc *Services) (Effect, error)
}

// SurfaceFunc adapts a function to Surface
type SurfaceFunc func(svc *Services) (Effect, error)

func (f SurfaceFunc) NewEffect(svc *Services) (Effect, error) {
	return f(svc)
}
