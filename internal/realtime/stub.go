package realtime

import "sync"

// RecordingPublisher keeps every published event.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []Event
}

var _ Publisher = (*RecordingPublisher)(nil)

func (p *RecordingPublisher) Publish(evt Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, evt)
}

func (p *RecordingPublisher) Published() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.Events...)
}
