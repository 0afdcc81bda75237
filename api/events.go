package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sagniknandigit/internship-management/internal/events"
	"github.com/sagniknandigit/internship-management/internal/metrics"
	"github.com/sagniknandigit/internship-management/internal/users"
	"github.com/sagniknandigit/internship-management/pkg/models"
)

// EventsHandler streams change events as Server-Sent Events. The session is
// rechecked before every event and heartbeat; a stream ends once its token is
// revoked or its user is suspended, deleted or given another role.
type EventsHandler struct {
	hub       *events.Hub
	users     *users.Service
	heartbeat time.Duration
}

func NewEventsHandler(hub *events.Hub, svc *users.Service, heartbeat time.Duration) *EventsHandler {
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	return &EventsHandler{hub: hub, users: svc, heartbeat: heartbeat}
}

func (h *EventsHandler) sessionValid(r *http.Request, actor models.User) bool {
	u, err := h.users.Revalidate(r.Context(), currentClaims(r))
	if err != nil {
		logger.Info("events: session ended", slog.String("user", actor.ID), slog.Any("err", err))
		return false
	}
	if u.Role != actor.Role {
		logger.Info("events: role changed, closing stream", slog.String("user", actor.ID), slog.String("role", string(u.Role)))
		return false
	}
	return true
}

func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)
	rc := http.NewResponseController(w)
	// the server write timeout would otherwise cut the stream
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logger.Warn("events: clear write deadline", slog.Any("err", err))
	}

	ch, cancel := h.hub.Subscribe(actor)
	defer cancel()
	metrics.EventSubscribers.Inc()
	defer metrics.EventSubscribers.Dec()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		logger.Warn("events: flush unsupported", slog.Any("err", err))
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if !h.sessionValid(r, actor) {
				return
			}
			fmt.Fprint(w, ": ping\n\n")
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if !h.sessionValid(r, actor) {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Error("events: encode", slog.Any("err", err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Topic, data)
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
