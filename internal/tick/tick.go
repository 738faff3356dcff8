// Package tick implements the fixed-interval clock that drives every room's
// simulation step, grounded on the original server's tokio interval +
// broadcast channel: a dropped tick is skipped, never queued or caught up.
package tick

import (
	"context"
	"sync"
	"time"

	"github.com/tilekeeper/server/internal/object"
)

// Event is one simulation step.
type Event struct {
	Tick object.Tick
	Time time.Time
}

// SubscriberCapacity bounds each subscriber's channel. A room actor that
// falls behind never sees a backlog — ticks it can't keep up with vanish.
const SubscriberCapacity = 8

// Source produces Events at a fixed interval and fans them out to every
// subscriber. Safe for concurrent Subscribe/Run.
type Source struct {
	interval time.Duration

	mu   sync.Mutex
	subs []chan Event
}

// NewSource creates a tick source with the given interval.
func NewSource(interval time.Duration) *Source {
	return &Source{interval: interval}
}

// Subscribe registers a new subscriber and returns its receive-only channel.
// The channel is never closed; it stops receiving when Run's context is
// canceled.
func (s *Source) Subscribe() <-chan Event {
	ch := make(chan Event, SubscriberCapacity)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// Run drives the clock until ctx is canceled. time.Ticker already drops
// ticks a slow receiver didn't pick up rather than bursting to catch up,
// which is exactly the skip behavior the original tokio interval used.
func (s *Source) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var n object.Tick
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n++
			evt := Event{Tick: n, Time: now}
			s.broadcast(evt)
		}
	}
}

func (s *Source) broadcast(evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// subscriber's buffer is full; drop this tick for them.
		}
	}
}

// IsNth reports whether t is a multiple of rate, used for slow periodic
// work (e.g. respawn scans) piggybacking on the main tick.
func IsNth(t object.Tick, rate uint32) bool {
	if rate == 0 {
		return false
	}
	return uint32(t)%rate == 0
}
