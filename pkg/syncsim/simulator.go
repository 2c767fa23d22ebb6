// Package syncsim drives the displayed sync status of edited items.
//
// A mutation marks items pending; the Simulator then moves each tracked
// item to syncing and finally to synced on timers. Status changes are
// written through a StatusSink so that an item deleted in the meantime is
// simply dropped instead of being resurrected by a late timer.
package syncsim

import (
	"sync"
	"time"

	"github.com/OpenMined/SyftUI-sub000/pkg/events"
	"github.com/OpenMined/SyftUI-sub000/pkg/models"
)

const (
	// DefaultPendingDelay is how long an item stays pending
	DefaultPendingDelay = time.Second
	// DefaultSyncingDelay is how long an item stays syncing
	DefaultSyncingDelay = 2 * time.Second
)

// Notifier is told which items were edited or removed. A real sync
// backend can implement it in place of the Simulator.
type Notifier interface {
	Track(ids ...string)
	Forget(ids ...string)
	Close()
}

// StatusSink applies a status to an item. It returns false when the item
// no longer exists.
type StatusSink interface {
	SetStatus(id string, status models.SyncStatus) bool
}

// SinkFunc adapts a function to StatusSink
type SinkFunc func(id string, status models.SyncStatus) bool

// SetStatus calls f(id, status)
func (f SinkFunc) SetStatus(id string, status models.SyncStatus) bool {
	return f(id, status)
}

// StatusEvent is published after every applied status change
type StatusEvent struct {
	ID     string            `json:"id"`
	Status models.SyncStatus `json:"status"`
	At     time.Time         `json:"at"`
}

// Config holds the simulated delays
type Config struct {
	PendingDelay time.Duration
	SyncingDelay time.Duration
}

// DefaultConfig returns the default delays
func DefaultConfig() Config {
	return Config{PendingDelay: DefaultPendingDelay, SyncingDelay: DefaultSyncingDelay}
}

type cycle struct {
	gen   uint64
	timer *time.Timer
}

// Simulator implements Notifier with timers
type Simulator struct {
	cfg    Config
	sink   StatusSink
	events *events.Broadcaster[StatusEvent]

	mu     sync.Mutex
	cycles map[string]*cycle
	gen    uint64
	closed bool
}

// New creates a simulator writing through sink
func New(cfg Config, sink StatusSink) *Simulator {
	if cfg.PendingDelay <= 0 {
		cfg.PendingDelay = DefaultPendingDelay
	}
	if cfg.SyncingDelay <= 0 {
		cfg.SyncingDelay = DefaultSyncingDelay
	}
	return &Simulator{
		cfg:    cfg,
		sink:   sink,
		events: events.NewBroadcaster[StatusEvent](),
		cycles: make(map[string]*cycle),
	}
}

// Events returns the status change feed
func (s *Simulator) Events() *events.Broadcaster[StatusEvent] {
	return s.events
}

// Track starts (or restarts) the status cycle of each id
func (s *Simulator) Track(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for _, id := range ids {
		s.stopLocked(id)
		s.gen++
		c := &cycle{gen: s.gen}
		id, gen := id, c.gen
		c.timer = time.AfterFunc(s.cfg.PendingDelay, func() {
			s.advance(id, gen, models.StatusSyncing)
		})
		s.cycles[id] = c
	}
}

// Forget cancels the cycles of ids, typically after a delete
func (s *Simulator) Forget(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.stopLocked(id)
	}
}

// Active returns the number of items with a running cycle
func (s *Simulator) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cycles)
}

// Tracking reports whether id has a running cycle
func (s *Simulator) Tracking(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cycles[id]
	return ok
}

// Close stops every timer and the event feed
func (s *Simulator) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for id := range s.cycles {
		s.stopLocked(id)
	}
	s.mu.Unlock()
	s.events.Close()
}

func (s *Simulator) stopLocked(id string) {
	if c, ok := s.cycles[id]; ok {
		c.timer.Stop()
		delete(s.cycles, id)
	}
}

// current reports whether gen is still the live cycle of id
func (s *Simulator) current(id string, gen uint64) bool {
	c, ok := s.cycles[id]
	return ok && c.gen == gen && !s.closed
}

// advance runs on a timer goroutine. The sink is called without holding
// the lock since it usually takes the store's own lock.
func (s *Simulator) advance(id string, gen uint64, status models.SyncStatus) {
	s.mu.Lock()
	live := s.current(id, gen)
	s.mu.Unlock()
	if !live {
		return
	}

	applied := s.sink.SetStatus(id, status)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(id, gen) {
		return
	}
	if !applied {
		delete(s.cycles, id)
		return
	}
	s.events.Publish(StatusEvent{ID: id, Status: status, At: time.Now()})
	if status != models.StatusSyncing {
		delete(s.cycles, id)
		return
	}
	s.cycles[id].timer = time.AfterFunc(s.cfg.SyncingDelay, func() {
		s.advance(id, gen, models.StatusSynced)
	})
}

// Nop is a Notifier that ignores everything
type Nop struct{}

// Track does nothing; statuses stay as they are
func (Nop) Track(...string) {}

// Forget does nothing
func (Nop) Forget(...string) {}

// Close does nothing
func (Nop) Close() {}
