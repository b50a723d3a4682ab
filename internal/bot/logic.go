package bot

import (
	"context"
	"ctchen222/knn-tic-tac-toe/internal/game"
	"errors"
	"log/slog"
	"math/rand/v2"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ErrNoLegalMove is returned when the computer is asked to move on a full board.
var ErrNoLegalMove = errors.New("no valid moves available for AI")

var (
	tracer = otel.Tracer("bot")
	meter  = otel.Meter("bot")
)

// Strategy names the rule that produced a move.
type Strategy string

const (
	StrategyWin       Strategy = "win"
	StrategyBlock     Strategy = "block"
	StrategyNeighbors Strategy = "neighbors"
	StrategyFallback  Strategy = "fallback"
	StrategyRandom    Strategy = "random"
)

// Move is a chosen board position together with the rule that chose it.
type Move struct {
	Position int
	Strategy Strategy
}

// Difficulty selects how the computer plays.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyKNN    Difficulty = "knn"
)

// ParseDifficulty maps a query value to a Difficulty, defaulting to k-NN.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(s) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyMedium:
		return DifficultyMedium
	default:
		return DifficultyKNN
	}
}

// Calculator chooses computer moves for one difficulty.
type Calculator struct {
	Examples   []Example
	K          int
	Difficulty Difficulty

	moves metric.Int64Counter
}

// NewCalculator creates a calculator over the given example store.
func NewCalculator(examples []Example, k int, difficulty Difficulty) *Calculator {
	moves, err := meter.Int64Counter("bot.moves", metric.WithDescription("Computer moves by strategy"))
	if err != nil {
		slog.Warn("Failed to create bot.moves counter", "error", err)
	}
	return &Calculator{
		Examples:   examples,
		K:          k,
		Difficulty: difficulty,
		moves:      moves,
	}
}

// NextMove determines the computer's next move based on the configured difficulty.
func (c *Calculator) NextMove(ctx context.Context, board game.Board) (Move, error) {
	ctx, span := tracer.Start(ctx, "bot.NextMove", trace.WithAttributes(
		attribute.String("bot.difficulty", string(c.Difficulty)),
	))
	defer span.End()

	var (
		move Move
		err  error
	)
	switch c.Difficulty {
	case DifficultyEasy:
		move, err = easyMove(board)
	case DifficultyMedium:
		move, err = mediumMove(board)
	default:
		move, err = SelectMove(board, c.Examples, c.K)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "No legal move")
		return move, err
	}

	span.SetAttributes(
		attribute.Int("move.position", move.Position),
		attribute.String("move.strategy", string(move.Strategy)),
	)
	if c.moves != nil {
		c.moves.Add(ctx, 1, metric.WithAttributes(attribute.String("strategy", string(move.Strategy))))
	}
	return move, nil
}

// easyMove makes a completely random move.
func easyMove(board game.Board) (Move, error) {
	available := game.EmptyCells(board)
	if len(available) == 0 {
		return Move{Position: -1}, ErrNoLegalMove
	}
	return Move{Position: available[rand.IntN(len(available))], Strategy: StrategyRandom}, nil
}

// mediumMove will win if it can, block if it must, otherwise move randomly.
func mediumMove(board game.Board) (Move, error) {
	if pos, ok := FindTwoInARow(board, game.Computer); ok {
		return Move{Position: pos, Strategy: StrategyWin}, nil
	}
	if pos, ok := FindTwoInARow(board, game.Human); ok {
		return Move{Position: pos, Strategy: StrategyBlock}, nil
	}
	return easyMove(board)
}

// FindTwoInARow returns the empty cell of the first line holding exactly two
// of mark and one empty cell.
func FindTwoInARow(board game.Board, mark game.PlayerMark) (int, bool) {
	for _, line := range game.WinLines {
		count, empty := 0, -1
		for _, pos := range line {
			switch board[pos] {
			case mark:
				count++
			case game.None:
				empty = pos
			}
		}
		if count == 2 && empty != -1 {
			return empty, true
		}
	}
	return -1, false
}
