// Package events fans out change notifications to connected clients.
package events

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/sagniknandigit/internship-management/pkg/models"
)

// Topics published by the services.
const (
	TopicInternships  = "internships"
	TopicApplications = "applications"
	TopicInterviews   = "interviews"
	TopicUpdates      = "updates"
	TopicUsers        = "users"
	TopicMentoring    = "mentoring"
)

// Event tells subscribers that a collection changed. Clients refetch.
type Event struct {
	Topic  string `json:"topic"`
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
	// Roles and UserIDs restrict delivery; both empty means everyone.
	Roles   []models.Role `json:"-"`
	UserIDs []string      `json:"-"`
}

// VisibleTo applies the audience restriction.
func (e Event) VisibleTo(u models.User) bool {
	if len(e.Roles) == 0 && len(e.UserIDs) == 0 {
		return true
	}
	return slices.Contains(e.Roles, u.Role) || slices.Contains(e.UserIDs, u.ID)
}

// Publisher is what services depend on.
type Publisher interface {
	Publish(Event)
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(Event) {}

type subscriber struct {
	user models.User
	ch   chan Event
}

// Hub delivers events to subscribers without blocking publishers; a
// subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	buffer int
	closed bool
	logger *slog.Logger
}

func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{subs: map[*subscriber]struct{}{}, buffer: buffer, logger: logger}
}

// Subscribe registers u. The returned cancel func must be called once the
// caller stops reading; it closes the channel.
func (h *Hub) Subscribe(u models.User) (<-chan Event, func()) {
	s := &subscriber{user: u, ch: make(chan Event, h.buffer)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(s.ch)
		return s.ch, func() {}
	}
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			if _, ok := h.subs[s]; ok {
				delete(h.subs, s)
				close(s.ch)
			}
			h.mu.Unlock()
		})
	}
}

func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		if !e.VisibleTo(s.user) {
			continue
		}
		select {
		case s.ch <- e:
		default:
			h.logger.Debug("events: subscriber buffer full, dropping", "user", s.user.ID, "topic", e.Topic)
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		close(s.ch)
		delete(h.subs, s)
	}
}
