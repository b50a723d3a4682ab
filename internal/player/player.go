package player

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// Player is the human side of a game, identified by a guest or account ID.
type Player struct {
	ID   string
	Conn Connection
}

// NewPlayer creates a player bound to a connection.
func NewPlayer(id string, conn Connection) *Player {
	return &Player{ID: id, Conn: conn}
}
