package session

import (
	"context"
	"ctchen222/knn-tic-tac-toe/internal/bot"
	"ctchen222/knn-tic-tac-toe/internal/game"
	"errors"
	"fmt"
	"log/slog"
)

//go:generate mockgen -source=session.go -destination=mocks/session_mock.go -package=mocks

// ErrInvalidPosition is returned for clicks outside the board.
var ErrInvalidPosition = errors.New("invalid board position")

// State is the turn state of a session.
type State int

const (
	AwaitingHuman State = iota
	Evaluating
	AwaitingOpponent
	Terminal
)

func (s State) String() string {
	switch s {
	case AwaitingHuman:
		return "awaiting_human"
	case Evaluating:
		return "evaluating"
	case AwaitingOpponent:
		return "awaiting_opponent"
	case Terminal:
		return "terminal"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MoveSelector picks the computer's move for a board.
type MoveSelector interface {
	NextMove(ctx context.Context, board game.Board) (bot.Move, error)
}

// Renderer receives the drawing commands of a session.
type Renderer interface {
	// SetCell shows mark on the cell at pos and disables it.
	SetCell(pos int, mark game.PlayerMark)
	// ShowMessage displays an informational message to the player.
	ShowMessage(text string)
	// Reset clears every cell and re-enables input.
	Reset()
}

// Outcome describes what a single click did.
type Outcome struct {
	Ignored      bool
	HumanMove    int
	ComputerMove *bot.Move
	Result       game.GameResult
	Winner       game.PlayerMark
	FinalBoard   game.Board
	Reason       string
}

// Finished reports whether the click ended the game.
func (o Outcome) Finished() bool {
	return o.Result != ""
}

// Session owns the board and turn of one game against the computer.
// It is not safe for concurrent use.
type Session struct {
	ID       string
	board    game.Board
	turn     game.PlayerMark
	state    State
	selector MoveSelector
	renderer Renderer
}

// New creates a session with an empty board and the human to move.
func New(id string, selector MoveSelector, renderer Renderer) *Session {
	return &Session{
		ID:       id,
		turn:     game.Human,
		state:    AwaitingHuman,
		selector: selector,
		renderer: renderer,
	}
}

// Restore recreates a session from a saved board. A saved board that is
// already decided starts over.
func Restore(id string, board game.Board, selector MoveSelector, renderer Renderer) *Session {
	s := New(id, selector, renderer)
	if game.CheckWinner(board) != game.None || game.IsBoardFull(board) {
		return s
	}
	s.board = board
	return s
}

// Board returns a copy of the current board.
func (s *Session) Board() game.Board {
	return s.board
}

// Turn returns the mark expected to move next.
func (s *Session) Turn() game.PlayerMark {
	return s.turn
}

func (s *Session) State() State {
	return s.state
}

// Click plays the human's move at pos and, if the game goes on, the
// computer's reply. Clicks on occupied cells are ignored.
func (s *Session) Click(ctx context.Context, pos int) (Outcome, error) {
	if !game.ValidPosition(pos) {
		return Outcome{}, fmt.Errorf("%w: %d", ErrInvalidPosition, pos)
	}
	if s.state != AwaitingHuman || s.board[pos] != game.None {
		return Outcome{Ignored: true, HumanMove: pos}, nil
	}

	out := Outcome{HumanMove: pos}
	s.place(pos, game.Human)
	if s.evaluate(ctx, &out) {
		return out, nil
	}

	s.turn = game.Computer
	s.state = AwaitingOpponent
	move, err := s.selector.NextMove(ctx, s.board)
	if err == nil && (!game.ValidPosition(move.Position) || s.board[move.Position] != game.None) {
		err = fmt.Errorf("%w: computer chose cell %d", bot.ErrNoLegalMove, move.Position)
	}
	if err != nil {
		slog.ErrorContext(ctx, "Computer could not move, resetting game", "session.id", s.ID, "error", err)
		s.finish(&out, game.ResultAborted, game.None, capitalize(err.Error())+".")
		return out, nil
	}

	out.ComputerMove = &move
	s.place(move.Position, game.Computer)
	if s.evaluate(ctx, &out) {
		return out, nil
	}

	s.turn = game.Human
	s.state = AwaitingHuman
	return out, nil
}

// Reset starts a fresh game.
func (s *Session) Reset() {
	s.board = game.Board{}
	s.turn = game.Human
	s.state = AwaitingHuman
	s.renderer.Reset()
}

func (s *Session) place(pos int, mark game.PlayerMark) {
	s.board[pos] = mark
	s.renderer.SetCell(pos, mark)
}

// evaluate checks for a winner or a tie and finishes the game if found.
func (s *Session) evaluate(ctx context.Context, out *Outcome) bool {
	s.state = Evaluating

	if winner := game.CheckWinner(s.board); winner != game.None {
		result := game.ResultHumanWin
		if winner == game.Computer {
			result = game.ResultComputerWin
		}
		slog.InfoContext(ctx, "Game won", "session.id", s.ID, "winner", winner)
		s.finish(out, result, winner, fmt.Sprintf("Player %s wins!", winner))
		return true
	}
	if game.IsBoardFull(s.board) {
		slog.InfoContext(ctx, "Game tied", "session.id", s.ID)
		s.finish(out, game.ResultTie, game.None, "It's a tie!")
		return true
	}
	return false
}

func (s *Session) finish(out *Outcome, result game.GameResult, winner game.PlayerMark, message string) {
	s.state = Terminal
	out.Result = result
	out.Winner = winner
	out.FinalBoard = s.board
	out.Reason = message

	s.renderer.ShowMessage(message)
	s.Reset()
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
