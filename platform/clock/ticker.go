package clock

import (
	"context"
	"sync/atomic"
	"time"
)

// Epoch counts wall-clock ticks. Views derived from "now" key their memo on
// the current epoch so a tick invalidates them without any I/O.
type Epoch struct {
	n atomic.Uint64
}

// Current returns the tick count.
func (e *Epoch) Current() uint64 { return e.n.Load() }

// Bump advances the epoch by one.
func (e *Epoch) Bump() uint64 { return e.n.Add(1) }

// RunTicker bumps epoch every interval until ctx is cancelled.
func RunTicker(ctx context.Context, interval time.Duration, epoch *Epoch, onTick func(uint64)) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n := epoch.Bump()
			if onTick != nil {
				onTick(n)
			}
		}
	}
}
