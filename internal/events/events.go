// Package events implements the in-process signal channel used to announce
// cross-cutting state changes. Signals carry a name and no payload; every
// listener subscribed at the moment a signal is raised is invoked
// synchronously, in subscription order. The bus is an explicit object handed
// to each component rather than an ambient global, so dependencies stay
// visible and testable.
package events

import "sync"

// Signal names a broadcast event.
type Signal string

const (
	// EnvironmentChanged is raised after an environment is saved, created,
	// deleted or switched.
	EnvironmentChanged Signal = "environment-changed"
	// UserProfileChanged is raised after profile edits.
	UserProfileChanged Signal = "user-profile-changed"
	// SettingsChanged is raised after preference saves.
	SettingsChanged Signal = "settings-changed"
)

type subscriber struct {
	id int64
	fn func()
}

// Bus is a named-signal broadcaster.
type Bus struct {
	mu     sync.Mutex
	nextID int64
	subs   map[Signal][]subscriber
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Signal][]subscriber)}
}

// Subscribe registers fn for a signal and returns an unsubscribe function.
// Listeners are invoked in subscription order.
func (b *Bus) Subscribe(sig Signal, fn func()) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[sig] = append(b.subs[sig], subscriber{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[sig]
		for i := range subs {
			if subs[i].id == id {
				b.subs[sig] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish invokes all current listeners for a signal, synchronously.
// Listeners added or removed by a running listener take effect on the next
// Publish, not the current one.
func (b *Bus) Publish(sig Signal) {
	b.mu.Lock()
	subs := make([]subscriber, len(b.subs[sig]))
	copy(subs, b.subs[sig])
	b.mu.Unlock()

	for _, s := range subs {
		s.fn()
	}
}
