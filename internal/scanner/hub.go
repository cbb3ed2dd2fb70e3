// internal/scanner/hub.go
package scanner

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// The camera and the barcode decoder live in the client; the backend only
// brokers decoded barcodes between the scanning device and the UI that is
// waiting for them. A Session is that broker: the device publishes decoded
// strings into it, a subscriber drains them as events, and Stop releases the
// session on every teardown path.

var ErrSessionClosed = errors.New("scan session is closed")

// Event is one successful barcode decode.
type Event struct {
	Barcode string    `json:"barcode"`
	At      time.Time `json:"at"`
}

// eventBuffer bounds how many undelivered decodes a session holds before
// older ones are dropped.
const eventBuffer = 16

type Session struct {
	ID string

	hub    *Hub
	events chan Event
	done   chan struct{}

	mu       sync.Mutex
	closed   bool
	lastSeen time.Time
}

// Events is the stream of decoded barcodes. The channel is closed when the
// session stops.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Done is closed when the session stops.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Publish delivers a decoded barcode to the session's subscriber. When the
// subscriber is not draining fast enough the oldest undelivered event is
// dropped in favor of the new one.
func (s *Session) Publish(barcode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	s.lastSeen = time.Now()

	event := Event{Barcode: barcode, At: time.Now()}
	for {
		select {
		case s.events <- event:
			return nil
		default:
			select {
			case <-s.events:
				logrus.WithField("session_id", s.ID).Warn("Scan event buffer full, dropping oldest")
			default:
			}
		}
	}
}

// Stop releases the session. It is safe to call from any teardown path, any
// number of times.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	close(s.events)
	s.mu.Unlock()

	s.hub.remove(s.ID)
	logrus.WithField("session_id", s.ID).Debug("Scan session stopped")
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Hub tracks live scan sessions and reclaims the ones whose owners went away
// without stopping them.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*Session
	idleTTL  time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

func NewHub(idleTTL time.Duration) *Hub {
	h := &Hub{
		sessions: make(map[string]*Session),
		idleTTL:  idleTTL,
		stop:     make(chan struct{}),
	}
	go h.reclaimIdle()
	return h
}

// Open creates a new scan session.
func (h *Hub) Open() *Session {
	s := &Session{
		ID:       uuid.New().String(),
		hub:      h,
		events:   make(chan Event, eventBuffer),
		done:     make(chan struct{}),
		lastSeen: time.Now(),
	}

	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()

	logrus.WithField("session_id", s.ID).Debug("Scan session opened")
	return s
}

func (h *Hub) Get(id string) (*Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	return s, ok
}

// Close stops the janitor and every live session.
func (h *Hub) Close() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})

	h.mu.Lock()
	live := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		live = append(live, s)
	}
	h.mu.Unlock()

	for _, s := range live {
		s.Stop()
	}
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
}

func (h *Hub) reclaimIdle() {
	ticker := time.NewTicker(h.idleTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			h.mu.Lock()
			var stale []*Session
			for _, s := range h.sessions {
				if time.Since(s.idleSince()) > h.idleTTL {
					stale = append(stale, s)
				}
			}
			h.mu.Unlock()

			for _, s := range stale {
				logrus.WithField("session_id", s.ID).Info("Reclaiming idle scan session")
				s.Stop()
			}
		}
	}
}
