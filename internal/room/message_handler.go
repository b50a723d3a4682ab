package room

import (
	"context"
	"ctchen222/knn-tic-tac-toe/internal/validator"
	"ctchen222/knn-tic-tac-toe/pkg/proto"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HandleMessage handles a message from the player. It acts as a dispatcher.
func (r *Room) HandleMessage(ctx context.Context, rawMessage []byte) {
	ctx, span := tracer.Start(ctx, "room.HandleMessage", trace.WithAttributes(
		attribute.String("player.id", r.Player.ID),
		attribute.String("session.id", r.ID),
	))
	defer span.End()

	var message proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		slog.ErrorContext(ctx, "error unmarshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		r.sendError(ctx, "Malformed message")
		return
	}

	if err := validator.GetValidator().Struct(message); err != nil {
		slog.WarnContext(ctx, "invalid message from player", "player.id", r.Player.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		r.sendError(ctx, "Invalid message")
		return
	}

	span.SetAttributes(attribute.String("message.type", message.Type))

	switch message.Type {
	case proto.TypeClick:
		r.handleClick(ctx, *message.Position)
	case proto.TypeReset:
		r.handleReset(ctx)
	}
}

// handleClick plays the player's move and the computer's reply.
func (r *Room) handleClick(ctx context.Context, pos int) {
	ctx, span := tracer.Start(ctx, "room.handleClick", trace.WithAttributes(
		attribute.String("session.id", r.ID),
		attribute.Int("move.position", pos),
	))
	defer span.End()

	out, err := r.game.Click(ctx, pos)
	if err != nil {
		slog.WarnContext(ctx, "invalid click from player", "player.id", r.Player.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid click")
		r.sendError(ctx, err.Error())
		return
	}
	if out.Ignored {
		span.SetAttributes(attribute.Bool("move.ignored", true))
		return
	}
	if out.ComputerMove != nil {
		span.SetAttributes(
			attribute.Int("bot.position", out.ComputerMove.Position),
			attribute.String("bot.strategy", string(out.ComputerMove.Strategy)),
		)
	}

	if out.Finished() {
		span.SetAttributes(attribute.String("game.result", string(out.Result)))
		r.record(ctx, out)
	}
	r.save(ctx)
}

// handleReset starts a fresh game on the player's request.
func (r *Room) handleReset(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "room.handleReset", trace.WithAttributes(
		attribute.String("session.id", r.ID),
	))
	defer span.End()

	slog.InfoContext(ctx, "Player reset the game", "player.id", r.Player.ID, "session.id", r.ID)
	r.game.Reset()
	r.save(ctx)
}
