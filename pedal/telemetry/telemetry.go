// Package telemetry carries control snapshots off the control loop. Emit
// never blocks; a slow drainer loses snapshots, which are counted.
package telemetry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pion/logging"

	"github.com/cwbudde/algo-chaosdelay/pedal/control"
)

const (
	defaultCapacity    = 64
	dropReportInterval = 5 * time.Second
)

// Sink is a bounded, non-blocking snapshot queue.
type Sink struct {
	ch      chan control.Snapshot
	log     logging.LeveledLogger
	latest  atomic.Pointer[control.Snapshot]
	emitted atomic.Uint64
	dropped atomic.Uint64
}

// New returns a sink holding up to capacity undrained snapshots. A nil log
// disables logging in Drain.
func New(capacity int, log logging.LeveledLogger) *Sink {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Sink{ch: make(chan control.Snapshot, capacity), log: log}
}

// Emit queues s, or counts a drop when the queue is full.
func (s *Sink) Emit(snap control.Snapshot) {
	s.latest.Store(&snap)
	select {
	case s.ch <- snap:
		s.emitted.Add(1)
	default:
		s.dropped.Add(1)
	}
}

// Latest returns the most recent snapshot, drained or not.
func (s *Sink) Latest() (control.Snapshot, bool) {
	p := s.latest.Load()
	if p == nil {
		return control.Snapshot{}, false
	}
	return *p, true
}

// Emitted returns the number of queued snapshots.
func (s *Sink) Emitted() uint64 { return s.emitted.Load() }

// Dropped returns the number of snapshots lost to a full queue.
func (s *Sink) Dropped() uint64 { return s.dropped.Load() }

// Snapshots exposes the queue for callers that drain it themselves.
func (s *Sink) Snapshots() <-chan control.Snapshot { return s.ch }

// Drain logs every snapshot at debug level and passes it to fn (which may
// be nil) until ctx is done. New drops are reported at warn level at most
// every few seconds.
func (s *Sink) Drain(ctx context.Context, fn func(control.Snapshot)) error {
	ticker := time.NewTicker(dropReportInterval)
	defer ticker.Stop()

	var reported uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap := <-s.ch:
			if s.log != nil {
				s.log.Debugf("%s", snap)
			}
			if fn != nil {
				fn(snap)
			}
		case <-ticker.C:
			if d := s.dropped.Load(); d > reported {
				if s.log != nil {
					s.log.Warnf("telemetry dropped %d snapshots (%d total)", d-reported, d)
				}
				reported = d
			}
		}
	}
}
