package hub

import (
	"context"
	"ctchen222/knn-tic-tac-toe/internal/room"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("hub")

// Hub tracks the live room of every session. A session is driven by at most
// one connection: registering a second room for the same session closes the
// connection of the first.
type Hub struct {
	rooms      map[string]*room.Room
	register   chan *room.Room
	unregister chan *room.Room
	count      chan chan int
	done       chan struct{}
	active     metric.Int64UpDownCounter
}

// NewHub creates a new hub.
func NewHub() *Hub {
	active, err := meter.Int64UpDownCounter("sessions.active", metric.WithDescription("Sessions with a live connection"))
	if err != nil {
		slog.Warn("Failed to create sessions.active counter", "error", err)
	}
	return &Hub{
		rooms:      make(map[string]*room.Room),
		register:   make(chan *room.Room),
		unregister: make(chan *room.Room),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		active:     active,
	}
}

// Run serves registrations until ctx is done, then closes every live connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case r := <-h.register:
			if old, ok := h.rooms[r.ID]; ok && old != r {
				slog.InfoContext(ctx, "Session opened on another connection, closing the old one", "session.id", r.ID, "player.id", old.Player.ID)
				old.Kick()
			} else {
				h.addActive(ctx, 1)
			}
			h.rooms[r.ID] = r

		case r := <-h.unregister:
			if cur, ok := h.rooms[r.ID]; ok && cur == r {
				delete(h.rooms, r.ID)
				h.addActive(ctx, -1)
				slog.InfoContext(ctx, "Session released", "session.id", r.ID)
			}

		case reply := <-h.count:
			reply <- len(h.rooms)

		case <-ctx.Done():
			slog.Info("Hub stopping, closing live sessions", "sessions", len(h.rooms))
			for id, r := range h.rooms {
				r.Kick()
				delete(h.rooms, id)
			}
			return
		}
	}
}

func (h *Hub) addActive(ctx context.Context, n int64) {
	if h.active != nil {
		h.active.Add(ctx, n)
	}
}

// Register makes r the live room of its session.
func (h *Hub) Register(r *room.Room) {
	select {
	case h.register <- r:
	case <-h.done:
		r.Kick()
	}
}

// Unregister releases r if it is still the live room of its session.
func (h *Hub) Unregister(r *room.Room) {
	select {
	case h.unregister <- r:
	case <-h.done:
	}
}

// ActiveRooms returns the number of sessions with a live connection, or 0 once the hub has stopped.
func (h *Hub) ActiveRooms() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}
