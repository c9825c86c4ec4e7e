// Package realtime fans out story change notifications to connected
// clients.
package realtime

import (
	"log/slog"
	"sync"
	"time"
)

const (
	EventAnchorsUpdated = "anchors.updated"
	EventScenesUpdated  = "scenes.updated"
	EventImageUpdated   = "image.updated"
	EventStoryDeleted   = "story.deleted"
)

type Event struct {
	Type    string    `json:"type"`
	StoryID string    `json:"story_id"`
	SceneID string    `json:"scene_id,omitempty"`
	At      time.Time `json:"at"`
}

type Publisher interface {
	Publish(evt Event)
}

type Subscriber interface {
	Subscribe(storyID string) (<-chan Event, func())
}

// Broker is an in-process pub/sub keyed by story id. Publish never blocks:
// a subscriber whose buffer is full misses the event.
type Broker struct {
	mu     sync.RWMutex
	subs   map[string]map[chan Event]struct{}
	buffer int
	now    func() time.Time
}

var (
	_ Publisher  = (*Broker)(nil)
	_ Subscriber = (*Broker)(nil)
)

func NewBroker(buffer int) *Broker {
	return &Broker{
		subs:   make(map[string]map[chan Event]struct{}),
		buffer: max(buffer, 1),
		now:    time.Now,
	}
}

// Subscribe registers a listener for storyID. The returned cancel func
// unregisters it and closes the channel; it is safe to call more than once.
func (b *Broker) Subscribe(storyID string) (<-chan Event, func()) {
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	if b.subs[storyID] == nil {
		b.subs[storyID] = make(map[chan Event]struct{})
	}
	b.subs[storyID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[storyID], ch)
			if len(b.subs[storyID]) == 0 {
				delete(b.subs, storyID)
			}
			close(ch)
		})
	}
	return ch, cancel
}

func (b *Broker) Publish(evt Event) {
	if evt.At.IsZero() {
		evt.At = b.now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs[evt.StoryID] {
		select {
		case ch <- evt:
		default:
			slog.Warn("dropped realtime event", "type", evt.Type, "story_id", evt.StoryID)
		}
	}
}

// Subscribers returns the number of listeners for storyID.
func (b *Broker) Subscribers(storyID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[storyID])
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
