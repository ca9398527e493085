package aggregate

import (
	"sync"
	"time"

	"boardd/pkg/logger"
	"boardd/pkg/models"
	"boardd/pkg/telemetry"
)

// Stream fans aggregate mutations out to in-process subscribers. Sequence
// numbers are assigned under the publish lock, so every subscriber
// observes events in the same order. Delivery is at-least-once from the
// consumer's point of view: a slow subscriber loses events rather than
// blocking writers, and the drop is counted.
type Stream struct {
	mu     sync.Mutex
	seq    uint64
	nextID int
	subs   map[int]chan models.ChangeEvent
	buffer int
	closed bool
}

// DefaultSubscriberBuffer is used when no buffer size is configured.
const DefaultSubscriberBuffer = 128

// NewStream returns a stream whose subscriber channels hold up to buffer
// undelivered events each.
func NewStream(buffer int) *Stream {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Stream{subs: make(map[int]chan models.ChangeEvent), buffer: buffer}
}

// Publish assigns the event its sequence number and delivers it to all
// current subscribers. Returns the assigned sequence.
func (s *Stream) Publish(ev models.ChangeEvent) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.seq
	}
	s.seq++
	ev.Seq = s.seq
	if ev.TS == 0 {
		ev.TS = time.Now().UTC().UnixMilli()
	}
	for id, ch := range s.subs {
		select {
		case ch <- ev:
			telemetry.ChangeEventsEmitted.Inc()
		default:
			telemetry.ChangeEventsDropped.Inc()
			logger.Warn("change_event_dropped", "subscriber", id, "seq", ev.Seq)
		}
	}
	return ev.Seq
}

// Subscribe registers a new consumer. The returned cancel func removes
// the subscription and closes its channel; it is safe to call twice.
func (s *Stream) Subscribe() (<-chan models.ChangeEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan models.ChangeEvent, s.buffer)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

// Close removes all subscribers and stops further publishes.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
