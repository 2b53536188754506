// Package notifier carries the realtime handoff: after a successful
// publish the post service hands a lightweight summary here for
// broadcast. The wire transport behind the hub is a separate concern;
// consumers subscribe to the hub and bridge to whatever channel the
// frontend speaks.
package notifier

import (
	"context"
	"log/slog"
	"sync"

	"darkroom/internal/domain/models"
)

type Notifier interface {
	PublishedPost(ctx context.Context, summary models.PostSummary)
}

// Hub is an in-process fan-out of publish events. Slow subscribers are
// skipped rather than blocking the publishing request.
type Hub struct {
	log *slog.Logger

	mu     sync.RWMutex
	nextID int64
	subs   map[int64]chan models.PostSummary
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:  log,
		subs: make(map[int64]chan models.PostSummary),
	}
}

// Subscribe registers a listener. The returned cancel func must be
// called when the listener goes away.
func (h *Hub) Subscribe() (<-chan models.PostSummary, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	ch := make(chan models.PostSummary, 16)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}

	return ch, cancel
}

func (h *Hub) PublishedPost(_ context.Context, summary models.PostSummary) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- summary:
		default:
			h.log.Warn("dropping publish event for slow subscriber",
				slog.Int64("post_id", summary.ID),
			)
		}
	}
}

// Noop discards publish events; used when no realtime channel is
// configured.
type Noop struct{}

func (Noop) PublishedPost(context.Context, models.PostSummary) {}
