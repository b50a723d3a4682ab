package room

import (
	"context"
	"ctchen222/knn-tic-tac-toe/pkg/proto"
	"encoding/json"
	"log/slog"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// send writes a message to the player's connection.
func (r *Room) send(ctx context.Context, message *proto.ServerToClientMessage) {
	_, span := tracer.Start(ctx, "room.send", trace.WithAttributes(
		attribute.String("session.id", r.ID),
		attribute.String("message.type", message.Type),
	))
	defer span.End()

	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error marshalling message")
		return
	}

	if err := r.Player.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.ErrorContext(ctx, "error writing message to player", "player.id", r.Player.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error writing message to player")
	}
}

func (r *Room) sendError(ctx context.Context, text string) {
	r.send(ctx, &proto.ServerToClientMessage{Type: proto.TypeError, Text: text})
}

// ReadPump reads messages from the player's connection until it fails and
// handles them one at a time. It closes the connection on return.
func (r *Room) ReadPump(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "room.ReadPump", trace.WithAttributes(
		attribute.String("player.id", r.Player.ID),
		attribute.String("session.id", r.ID),
	))
	defer span.End()

	defer func() {
		r.Player.Conn.Close()
		slog.InfoContext(ctx, "Player disconnected", "player.id", r.Player.ID, "session.id", r.ID)
	}()

	for {
		_, msg, err := r.Player.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.WarnContext(ctx, "Player connection error", "player.id", r.Player.ID, "session.id", r.ID, "error", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, "Player connection error")
			}
			return
		}
		r.HandleMessage(ctx, msg)
	}
}
