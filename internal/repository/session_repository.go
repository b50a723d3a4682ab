package repository

import (
	"context"
	"ctchen222/knn-tic-tac-toe/internal/game"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

//go:generate mockgen -source=session_repository.go -destination=mocks/session_repository_mock.go -package=mocks

var tracer = otel.Tracer("repository")

// ErrSessionNotFound is returned when no snapshot exists for a session ID.
var ErrSessionNotFound = errors.New("session not found")

// Redis hash fields of a session snapshot.
const (
	FieldBoard      = "board"
	FieldPlayerID   = "player_id"
	FieldDifficulty = "difficulty"
	FieldUpdatedAt  = "updated_at"
)

// Snapshot is the persisted state of a session between interactions.
type Snapshot struct {
	ID         string
	PlayerID   string
	Board      game.Board
	Difficulty string
	UpdatedAt  time.Time
}

// SessionRepository stores session snapshots so a player can resume after reconnecting.
type SessionRepository interface {
	Save(ctx context.Context, snap *Snapshot) error
	FindByID(ctx context.Context, id string) (*Snapshot, error)
	Delete(ctx context.Context, id string) error
}

type redisSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionRepository creates a new Redis-based SessionRepository. Snapshots expire after ttl.
func NewSessionRepository(rdb *redis.Client, ttl time.Duration) SessionRepository {
	return &redisSessionRepository{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Save writes the snapshot and refreshes its expiry.
func (r *redisSessionRepository) Save(ctx context.Context, snap *Snapshot) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Save", trace.WithAttributes(
		attribute.String("session.id", snap.ID),
	))
	defer span.End()

	boardJSON, err := json.Marshal(snap.Board)
	if err != nil {
		return fmt.Errorf("failed to marshal board: %w", err)
	}

	key := sessionKey(snap.ID)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key,
		FieldBoard, boardJSON,
		FieldPlayerID, snap.PlayerID,
		FieldDifficulty, snap.Difficulty,
		FieldUpdatedAt, snap.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save session in redis: %w", err)
	}
	return nil
}

// FindByID retrieves a session snapshot from Redis.
func (r *redisSessionRepository) FindByID(ctx context.Context, id string) (*Snapshot, error) {
	ctx, span := tracer.Start(ctx, "SessionRepository.FindByID", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	data, err := r.rdb.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrSessionNotFound
	}

	var cells []game.PlayerMark
	if err := json.Unmarshal([]byte(data[FieldBoard]), &cells); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board: %w", err)
	}
	board, ok := game.ParseBoard(cells)
	if !ok {
		return nil, fmt.Errorf("stored board for session %s is malformed", id)
	}

	updatedAt, _ := time.Parse(time.RFC3339Nano, data[FieldUpdatedAt])

	return &Snapshot{
		ID:         id,
		PlayerID:   data[FieldPlayerID],
		Board:      board,
		Difficulty: data[FieldDifficulty],
		UpdatedAt:  updatedAt,
	}, nil
}

// Delete removes a session snapshot.
func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Delete", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	return r.rdb.Del(ctx, sessionKey(id)).Err()
}
