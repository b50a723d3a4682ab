package bot

import (
	"context"
	"ctchen222/knn-tic-tac-toe/internal/game"
	"errors"
	"slices"
	"testing"
)

const (
	X = game.PlayerX
	O = game.PlayerO
	e = game.None
)

func TestFindTwoInARow(t *testing.T) {
	tests := []struct {
		name      string
		board     game.Board
		mark      game.PlayerMark
		wantPos   int
		wantFound bool
	}{
		{
			name:    "No winning move - empty board",
			board:   game.Board{},
			mark:    X,
			wantPos: -1, wantFound: false,
		},
		{
			name:    "X can win - first row",
			board:   game.Board{X, X, e, O, O, e, e, e, e},
			mark:    X,
			wantPos: 2, wantFound: true,
		},
		{
			name:    "O can win - second column",
			board:   game.Board{X, O, e, X, O, e, e, e, e},
			mark:    O,
			wantPos: 7, wantFound: true,
		},
		{
			name:    "X can win - gap in the middle of a row",
			board:   game.Board{e, e, e, X, e, X, O, O, e},
			mark:    X,
			wantPos: 4, wantFound: true,
		},
		{
			name:    "X can win - main diagonal",
			board:   game.Board{X, e, e, e, X, e, e, e, e},
			mark:    X,
			wantPos: 8, wantFound: true,
		},
		{
			name:    "O can win - anti-diagonal",
			board:   game.Board{e, e, O, e, O, e, e, e, e},
			mark:    O,
			wantPos: 6, wantFound: true,
		},
		{
			name:    "Blocked line is not a threat",
			board:   game.Board{X, X, O, e, e, e, e, e, e},
			mark:    X,
			wantPos: -1, wantFound: false,
		},
		{
			name:    "Rows are checked before columns",
			board:   game.Board{X, e, e, X, X, e, e, e, e},
			mark:    X,
			wantPos: 5, wantFound: true,
		},
		{
			name:    "Full board, no win possible",
			board:   game.Board{X, O, X, O, X, O, O, X, O},
			mark:    X,
			wantPos: -1, wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, found := FindTwoInARow(tt.board, tt.mark)
			if found != tt.wantFound || pos != tt.wantPos {
				t.Errorf("FindTwoInARow() got (%d, %v), want (%d, %v)", pos, found, tt.wantPos, tt.wantFound)
			}
			again, foundAgain := FindTwoInARow(tt.board, tt.mark)
			if again != pos || foundAgain != found {
				t.Errorf("FindTwoInARow() is not idempotent: (%d, %v) then (%d, %v)", pos, found, again, foundAgain)
			}
		})
	}
}

func TestEasyMove(t *testing.T) {
	t.Run("Only one spot left", func(t *testing.T) {
		board := game.Board{X, O, X, O, X, O, X, e, O}
		move, err := easyMove(board)
		if err != nil || move.Position != 7 {
			t.Errorf("easyMove should pick the only available spot 7, but got (%d, %v)", move.Position, err)
		}
	})

	t.Run("Multiple spots left", func(t *testing.T) {
		board := game.Board{X, e, e, e, O, e, e, e, e}
		for i := 0; i < 50; i++ {
			move, err := easyMove(board)
			if err != nil {
				t.Fatalf("easyMove returned an error: %v", err)
			}
			if board[move.Position] != e {
				t.Errorf("easyMove returned an occupied cell %d", move.Position)
			}
		}
	})

	t.Run("Full board", func(t *testing.T) {
		board := game.Board{X, O, X, O, X, O, O, X, O}
		if _, err := easyMove(board); !errors.Is(err, ErrNoLegalMove) {
			t.Errorf("easyMove on a full board should return ErrNoLegalMove, got %v", err)
		}
	})
}

func TestMediumMove(t *testing.T) {
	tests := []struct {
		name         string
		board        game.Board
		wantPos      int
		wantStrategy Strategy
	}{
		{
			name:         "Bot can win",
			board:        game.Board{O, O, e, X, X, e, X, e, e},
			wantPos:      2,
			wantStrategy: StrategyWin,
		},
		{
			name:         "Bot must block opponent",
			board:        game.Board{X, X, e, O, e, e, e, e, e},
			wantPos:      2,
			wantStrategy: StrategyBlock,
		},
		{
			name:         "No immediate win or block, random move",
			board:        game.Board{X, e, e, e, O, e, e, e, e},
			wantPos:      -1,
			wantStrategy: StrategyRandom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			move, err := mediumMove(tt.board)
			if err != nil {
				t.Fatalf("mediumMove returned an error: %v", err)
			}
			if move.Strategy != tt.wantStrategy {
				t.Errorf("mediumMove() strategy got %s, want %s", move.Strategy, tt.wantStrategy)
			}
			if tt.wantPos == -1 {
				if tt.board[move.Position] != e {
					t.Errorf("mediumMove returned a non-empty spot %d for random move", move.Position)
				}
			} else if move.Position != tt.wantPos {
				t.Errorf("mediumMove() got %d, want %d", move.Position, tt.wantPos)
			}
		})
	}
}

func TestCalculatorNextMove(t *testing.T) {
	tests := []struct {
		name       string
		board      game.Board
		difficulty Difficulty
		want       []int
		wantErr    error
	}{
		{
			name:       "k-NN difficulty - winning move",
			board:      game.Board{O, O, e, X, X, e, X, e, e},
			difficulty: DifficultyKNN,
			want:       []int{2},
		},
		{
			name:       "Medium difficulty - blocking move",
			board:      game.Board{X, X, e, O, e, e, e, e, e},
			difficulty: DifficultyMedium,
			want:       []int{2},
		},
		{
			name:       "Easy difficulty - random valid move",
			board:      game.Board{X, O, X, O, X, O, e, e, O},
			difficulty: DifficultyEasy,
			want:       []int{6, 7},
		},
		{
			name:       "Full board - k-NN difficulty",
			board:      game.Board{X, O, X, O, X, O, O, X, O},
			difficulty: DifficultyKNN,
			wantErr:    ErrNoLegalMove,
		},
		{
			name:       "Full board - easy difficulty",
			board:      game.Board{X, O, X, O, X, O, O, X, O},
			difficulty: DifficultyEasy,
			wantErr:    ErrNoLegalMove,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCalculator(DefaultExamples(), DefaultNeighbors, tt.difficulty)
			move, err := c.NextMove(context.Background(), tt.board)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NextMove() error got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NextMove() returned an error: %v", err)
			}
			if !slices.Contains(tt.want, move.Position) {
				t.Errorf("NextMove() got %d, want one of %v", move.Position, tt.want)
			}
		})
	}
}

func TestParseDifficulty(t *testing.T) {
	tests := map[string]Difficulty{
		"easy":   DifficultyEasy,
		"medium": DifficultyMedium,
		"knn":    DifficultyKNN,
		"":       DifficultyKNN,
		"hard":   DifficultyKNN,
	}
	for in, want := range tests {
		if got := ParseDifficulty(in); got != want {
			t.Errorf("ParseDifficulty(%q) got %s, want %s", in, got, want)
		}
	}
}
