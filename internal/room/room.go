package room

import (
	"context"
	"ctchen222/knn-tic-tac-toe/internal/bot"
	"ctchen222/knn-tic-tac-toe/internal/game"
	"ctchen222/knn-tic-tac-toe/internal/player"
	"ctchen222/knn-tic-tac-toe/internal/repository"
	"ctchen222/knn-tic-tac-toe/internal/session"
	"ctchen222/knn-tic-tac-toe/pkg/proto"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("room")
	meter  = otel.Meter("room")
)

// SelectorFactory builds the computer opponent for a difficulty.
type SelectorFactory func(difficulty bot.Difficulty) session.MoveSelector

// Room connects one player's websocket to a game session. It renders the
// session's commands as protocol messages and persists the session after
// every interaction.
type Room struct {
	ID         string
	Player     *player.Player
	Difficulty bot.Difficulty

	game        *session.Session
	sessions    repository.SessionRepository
	results     repository.ResultRepository
	newSelector SelectorFactory
	finished    metric.Int64Counter
	now         func() time.Time
}

// NewRoom creates a room for p. Call Open before reading messages.
func NewRoom(p *player.Player, sessions repository.SessionRepository, results repository.ResultRepository, newSelector SelectorFactory) *Room {
	finished, err := meter.Int64Counter("games.finished", metric.WithDescription("Finished games by result"))
	if err != nil {
		slog.Warn("Failed to create games.finished counter", "error", err)
	}
	return &Room{
		Player:      p,
		sessions:    sessions,
		results:     results,
		newSelector: newSelector,
		finished:    finished,
		now:         time.Now,
	}
}

// Open resumes the session requestedID if it belongs to the player, or
// starts a new one, and tells the client which session it is in. An empty
// difficulty keeps the resumed session's difficulty.
func (r *Room) Open(ctx context.Context, requestedID, difficulty string) {
	ctx, span := tracer.Start(ctx, "room.Open", trace.WithAttributes(
		attribute.String("player.id", r.Player.ID),
		attribute.String("session.requested_id", requestedID),
	))
	defer span.End()

	snap := r.resume(ctx, requestedID)
	if snap != nil {
		if difficulty == "" {
			difficulty = snap.Difficulty
		}
		r.ID = snap.ID
		r.Difficulty = bot.ParseDifficulty(difficulty)
		r.game = session.Restore(snap.ID, snap.Board, r.newSelector(r.Difficulty), r)
		slog.InfoContext(ctx, "Session resumed", "session.id", r.ID, "player.id", r.Player.ID)
	} else {
		r.ID = uuid.New().String()
		r.Difficulty = bot.ParseDifficulty(difficulty)
		r.game = session.New(r.ID, r.newSelector(r.Difficulty), r)
		slog.InfoContext(ctx, "Session created", "session.id", r.ID, "player.id", r.Player.ID)
	}
	span.SetAttributes(
		attribute.String("session.id", r.ID),
		attribute.String("game.difficulty", string(r.Difficulty)),
	)

	board := r.game.Board()
	r.send(ctx, &proto.ServerToClientMessage{
		Type:       proto.TypeSession,
		SessionID:  r.ID,
		Board:      board[:],
		Difficulty: string(r.Difficulty),
	})
	r.save(ctx)
}

func (r *Room) resume(ctx context.Context, id string) *repository.Snapshot {
	if id == "" {
		return nil
	}
	snap, err := r.sessions.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrSessionNotFound) {
			slog.ErrorContext(ctx, "Failed to load session, starting a new one", "session.id", id, "error", err)
			trace.SpanFromContext(ctx).RecordError(err)
		}
		return nil
	}
	if snap.PlayerID != r.Player.ID {
		slog.WarnContext(ctx, "Session belongs to another player", "session.id", id, "player.id", r.Player.ID)
		return nil
	}
	return snap
}

// Session returns the game session of the room.
func (r *Room) Session() *session.Session {
	return r.game
}

// save persists the current board. Failures are logged and do not affect play.
func (r *Room) save(ctx context.Context) {
	snap := &repository.Snapshot{
		ID:         r.ID,
		PlayerID:   r.Player.ID,
		Board:      r.game.Board(),
		Difficulty: string(r.Difficulty),
		UpdatedAt:  r.now(),
	}
	if err := r.sessions.Save(ctx, snap); err != nil {
		slog.ErrorContext(ctx, "Failed to save session", "session.id", r.ID, "error", err)
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save session")
	}
}

// record stores a finished game in the history.
func (r *Room) record(ctx context.Context, out session.Outcome) {
	if r.finished != nil {
		r.finished.Add(ctx, 1, metric.WithAttributes(
			attribute.String("game.result", string(out.Result)),
			attribute.String("game.difficulty", string(r.Difficulty)),
		))
	}

	rec, err := repository.NewGameRecord(r.ID, r.Player.ID, out.Result, out.Winner, out.FinalBoard, r.now())
	if err == nil {
		err = r.results.Record(ctx, rec)
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to record game result", "session.id", r.ID, "result", out.Result, "error", err)
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to record game result")
		return
	}
	slog.InfoContext(ctx, "Game recorded", "session.id", r.ID, "player.id", r.Player.ID, "result", out.Result)
}

// SetCell implements session.Renderer.
func (r *Room) SetCell(pos int, mark game.PlayerMark) {
	r.send(context.Background(), proto.CellMessage(pos, mark))
}

// ShowMessage implements session.Renderer.
func (r *Room) ShowMessage(text string) {
	r.send(context.Background(), &proto.ServerToClientMessage{Type: proto.TypeMessage, Text: text})
}

// Reset implements session.Renderer.
func (r *Room) Reset() {
	r.send(context.Background(), &proto.ServerToClientMessage{Type: proto.TypeReset})
}

// Kick closes the player's connection, which ends ReadPump.
func (r *Room) Kick() {
	if err := r.Player.Conn.Close(); err != nil {
		slog.Warn("Failed to close player connection", "player.id", r.Player.ID, "error", err)
	}
}
