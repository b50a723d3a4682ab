package repository

import (
	"context"
	"ctchen222/knn-tic-tac-toe/internal/game"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

//go:generate mockgen -source=result_repository.go -destination=mocks/result_repository_mock.go -package=mocks

// GameRecord is a finished game as stored in the history table.
type GameRecord struct {
	ID         int64     `db:"id" json:"id"`
	SessionID  string    `db:"session_id" json:"session_id"`
	PlayerID   string    `db:"player_id" json:"player_id"`
	Result     string    `db:"result" json:"result"`
	Winner     string    `db:"winner" json:"winner"`
	Board      string    `db:"board" json:"board"`
	Moves      int       `db:"moves" json:"moves"`
	FinishedAt time.Time `db:"finished_at" json:"finished_at"`
}

// NewGameRecord builds a history record for a finished board.
func NewGameRecord(sessionID, playerID string, result game.GameResult, winner game.PlayerMark, board game.Board, finishedAt time.Time) (*GameRecord, error) {
	boardJSON, err := json.Marshal(board)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal board: %w", err)
	}
	return &GameRecord{
		SessionID:  sessionID,
		PlayerID:   playerID,
		Result:     string(result),
		Winner:     string(winner),
		Board:      string(boardJSON),
		Moves:      game.CellCount - len(game.EmptyCells(board)),
		FinishedAt: finishedAt.UTC(),
	}, nil
}

// PlayerStats aggregates the finished games of one player.
type PlayerStats struct {
	PlayerID     string `db:"player_id" json:"player_id"`
	Games        int    `db:"games" json:"games"`
	HumanWins    int    `db:"human_wins" json:"wins"`
	ComputerWins int    `db:"computer_wins" json:"losses"`
	Ties         int    `db:"ties" json:"ties"`
	Aborted      int    `db:"aborted" json:"aborted"`
}

// ResultRepository stores and aggregates finished games.
type ResultRepository interface {
	Record(ctx context.Context, rec *GameRecord) error
	StatsByPlayer(ctx context.Context, playerID string) (*PlayerStats, error)
	RecentByPlayer(ctx context.Context, playerID string, limit int) ([]GameRecord, error)
}

type sqliteResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new SQLite-based ResultRepository.
func NewResultRepository(db *sqlx.DB) ResultRepository {
	return &sqliteResultRepository{db: db}
}

// Record inserts a finished game.
func (r *sqliteResultRepository) Record(ctx context.Context, rec *GameRecord) error {
	ctx, span := tracer.Start(ctx, "ResultRepository.Record")
	defer span.End()

	query := `INSERT INTO game_results (session_id, player_id, result, winner, board, moves, finished_at)
		VALUES (:session_id, :player_id, :result, :winner, :board, :moves, :finished_at)`
	res, err := r.db.NamedExecContext(ctx, query, rec)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to record game result: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

// StatsByPlayer counts the results of every finished game of a player.
func (r *sqliteResultRepository) StatsByPlayer(ctx context.Context, playerID string) (*PlayerStats, error) {
	ctx, span := tracer.Start(ctx, "ResultRepository.StatsByPlayer")
	defer span.End()

	query := `SELECT
		COUNT(*) AS games,
		COALESCE(SUM(CASE WHEN result = ? THEN 1 ELSE 0 END), 0) AS human_wins,
		COALESCE(SUM(CASE WHEN result = ? THEN 1 ELSE 0 END), 0) AS computer_wins,
		COALESCE(SUM(CASE WHEN result = ? THEN 1 ELSE 0 END), 0) AS ties,
		COALESCE(SUM(CASE WHEN result = ? THEN 1 ELSE 0 END), 0) AS aborted
		FROM game_results WHERE player_id = ?`

	stats := PlayerStats{PlayerID: playerID}
	err := r.db.GetContext(ctx, &stats, query,
		string(game.ResultHumanWin), string(game.ResultComputerWin), string(game.ResultTie), string(game.ResultAborted), playerID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get stats for player: %w", err)
	}
	stats.PlayerID = playerID
	return &stats, nil
}

// RecentByPlayer returns the latest finished games of a player, newest first.
func (r *sqliteResultRepository) RecentByPlayer(ctx context.Context, playerID string, limit int) ([]GameRecord, error) {
	ctx, span := tracer.Start(ctx, "ResultRepository.RecentByPlayer")
	defer span.End()

	records := []GameRecord{}
	query := `SELECT id, session_id, player_id, result, winner, board, moves, finished_at
		FROM game_results WHERE player_id = ? ORDER BY finished_at DESC, id DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &records, query, playerID, limit); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list games for player: %w", err)
	}
	return records, nil
}
