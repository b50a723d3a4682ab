package proto

import "ctchen222/knn-tic-tac-toe/internal/game"

// Client message types.
const (
	TypeClick = "click"
	TypeReset = "reset"
)

// Server message types.
const (
	TypeSession = "session"
	TypeCell    = "cell"
	TypeMessage = "message"
	TypeError   = "error"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type     string `json:"type" validate:"required,oneof=click reset"`
	Position *int   `json:"position,omitempty" validate:"required_if=Type click,omitempty,min=0,max=8"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type       string            `json:"type" validate:"required"`
	SessionID  string            `json:"sessionId,omitempty"`
	Position   *int              `json:"position,omitempty"`
	Mark       game.PlayerMark   `json:"mark,omitempty"`
	Text       string            `json:"text,omitempty"`
	Board      []game.PlayerMark `json:"board,omitempty"`
	Difficulty string            `json:"difficulty,omitempty"`
}

// CellMessage tells the client to draw mark at pos and disable the cell.
func CellMessage(pos int, mark game.PlayerMark) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeCell, Position: &pos, Mark: mark}
}
