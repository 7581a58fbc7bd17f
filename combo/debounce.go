package combo

import (
	"time"

	"golang.org/x/time/rate"
)

// MinEditSpacing is the shortest gap between two edits that both reach the tracker
const MinEditSpacing = 10 * time.Millisecond

// Debouncer drops edits arriving faster than its spacing
// Backed by a burst-1 token bucket so the caller's clock decides elapsed time
type Debouncer struct {
	limiter *rate.Limiter
}

func NewDebouncer(spacing time.Duration) *Debouncer {
	if spacing <= 0 {
		return &Debouncer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Debouncer{limiter: rate.NewLimiter(rate.Every(spacing), 1)}
}

// Allow reports whether an edit at now may proceed; rejected edits do not reset the window
func (d *Debouncer) Allow(now time.Time) bool {
	return d.limiter.AllowN(now, 1)
}
