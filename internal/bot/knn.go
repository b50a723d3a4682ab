package bot

import (
	"cmp"
	"ctchen222/knn-tic-tac-toe/internal/game"
	"log/slog"
	"math"
	"slices"
)

// DefaultNeighbors is the number of examples consulted when no tactical move exists.
const DefaultNeighbors = 3

// Example pairs a recorded board with the move recommended for it.
type Example struct {
	Board game.NumericBoard
	Move  int
}

// NewExample encodes board and pairs it with move.
func NewExample(board game.Board, move int) Example {
	return Example{Board: game.ToNumeric(board), Move: move}
}

const (
	x = game.PlayerX
	o = game.PlayerO
)

var defaultExamples = []Example{
	NewExample(game.Board{x, o, x, o, x, o, "", "", ""}, 6),
	NewExample(game.Board{o, x, o, x, o, x, "", "", ""}, 6),
	NewExample(game.Board{x, x, o, o, x, "", o, "", ""}, 5),
	NewExample(game.Board{x, o, x, o, x, o, x, "", o}, 7),
}

// DefaultExamples returns a copy of the built-in example store.
func DefaultExamples() []Example {
	return slices.Clone(defaultExamples)
}

type neighbor struct {
	distance float64
	move     int
}

// SelectMove picks the computer's move: take a win, block the human, or
// follow the majority of the k nearest examples. When none of the
// recommended cells is free it falls back to the first empty cell.
// It returns ErrNoLegalMove when the board is full.
func SelectMove(board game.Board, examples []Example, k int) (Move, error) {
	slog.Debug("Selecting computer move", "board", board)

	if pos, ok := FindTwoInARow(board, game.Computer); ok {
		slog.Debug("Computer winning move", "position", pos)
		return Move{Position: pos, Strategy: StrategyWin}, nil
	}
	if pos, ok := FindTwoInARow(board, game.Human); ok {
		slog.Debug("Computer blocking move", "position", pos)
		return Move{Position: pos, Strategy: StrategyBlock}, nil
	}

	candidates := nearestMoves(board, examples, k)
	valid := candidates[:0]
	for _, pos := range candidates {
		if game.ValidPosition(pos) && board[pos] == game.None {
			valid = append(valid, pos)
		}
	}

	if len(valid) == 0 {
		empty := game.EmptyCells(board)
		if len(empty) == 0 {
			return Move{Position: -1}, ErrNoLegalMove
		}
		slog.Debug("No valid moves from neighbors, falling back to first available cell", "position", empty[0])
		return Move{Position: empty[0], Strategy: StrategyFallback}, nil
	}

	slog.Debug("Valid neighbor moves", "moves", valid)
	return Move{Position: mostFrequent(valid), Strategy: StrategyNeighbors}, nil
}

// nearestMoves returns the moves of the k examples closest to board.
// Examples at equal distance keep their store order.
func nearestMoves(board game.Board, examples []Example, k int) []int {
	current := game.ToNumeric(board)
	dists := make([]neighbor, 0, len(examples))
	for _, ex := range examples {
		dists = append(dists, neighbor{distance: euclidean(current, ex.Board), move: ex.Move})
	}
	slices.SortStableFunc(dists, func(a, b neighbor) int {
		return cmp.Compare(a.distance, b.distance)
	})
	slog.Debug("Example distances", "distances", dists)

	k = max(min(k, len(dists)), 0)
	moves := make([]int, 0, k)
	for _, n := range dists[:k] {
		moves = append(moves, n.move)
	}
	return moves
}

func euclidean(a, b game.NumericBoard) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// mostFrequent returns the most common value; ties go to the value seen first.
func mostFrequent(moves []int) int {
	counts := make(map[int]int, len(moves))
	best, bestCount := moves[0], 0
	for _, m := range moves {
		counts[m]++
	}
	for _, m := range moves {
		if counts[m] > bestCount {
			best, bestCount = m, counts[m]
		}
	}
	return best
}
