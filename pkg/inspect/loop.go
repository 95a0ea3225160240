package inspect

import (
	"context"
	"time"
)

// Default poll intervals.
const (
	DefaultActiveInterval = 100 * time.Millisecond
	DefaultIdleInterval   = time.Second
)

// Cadence sets how often Loop polls. Active applies while the last frame was
// drawable, Idle otherwise: a live graph is redrawn continuously, while an
// empty roster is only rechecked now and then.
type Cadence struct {
	Active time.Duration
	Idle   time.Duration
}

// DefaultCadence returns the default poll intervals.
func DefaultCadence() Cadence {
	return Cadence{Active: DefaultActiveInterval, Idle: DefaultIdleInterval}
}

// Interval returns the wait after a frame in state s.
func (c Cadence) Interval(s State) time.Duration {
	d := c.Idle
	if s == StateNormal {
		d = c.Active
	}
	if d <= 0 {
		d = DefaultActiveInterval
	}
	return d
}

// Loop polls until ctx is done, passing every frame to fn. It returns
// ctx.Err(). Frames produced after cancellation are not delivered.
func (in *Inspector) Loop(ctx context.Context, c Cadence, fn func(*Frame)) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		f := in.Poll(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fn(f)
		timer.Reset(c.Interval(f.State))
	}
}
