package room

import (
	"context"
	"ctchen222/knn-tic-tac-toe/internal/bot"
	"ctchen222/knn-tic-tac-toe/internal/game"
	"ctchen222/knn-tic-tac-toe/internal/player"
	"ctchen222/knn-tic-tac-toe/internal/repository"
	repomocks "ctchen222/knn-tic-tac-toe/internal/repository/mocks"
	"ctchen222/knn-tic-tac-toe/internal/session"
	sessionmocks "ctchen222/knn-tic-tac-toe/internal/session/mocks"
	"ctchen222/knn-tic-tac-toe/pkg/proto"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	X = game.PlayerX
	O = game.PlayerO
	e = game.None
)

// fakeConn is a fake connection that replays incoming frames and records outgoing ones.
type fakeConn struct {
	incoming [][]byte
	written  []proto.ServerToClientMessage
	closed   bool
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	var msg proto.ServerToClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return err
	}
	c.written = append(c.written, msg)
	return nil
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	if len(c.incoming) == 0 {
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
	msg := c.incoming[0]
	c.incoming = c.incoming[1:]
	return websocket.TextMessage, msg, nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func (c *fakeConn) types() []string {
	out := make([]string, 0, len(c.written))
	for _, m := range c.written {
		out = append(out, m.Type)
	}
	return out
}

type fixture struct {
	room     *Room
	conn     *fakeConn
	selector *sessionmocks.MockMoveSelector
	sessions *repomocks.MockSessionRepository
	results  *repomocks.MockResultRepository
	built    []bot.Difficulty
}

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		conn:     &fakeConn{},
		selector: sessionmocks.NewMockMoveSelector(ctrl),
		sessions: repomocks.NewMockSessionRepository(ctrl),
		results:  repomocks.NewMockResultRepository(ctrl),
	}
	f.room = NewRoom(player.NewPlayer("player-1", f.conn), f.sessions, f.results, func(d bot.Difficulty) session.MoveSelector {
		f.built = append(f.built, d)
		return f.selector
	})
	f.room.now = func() time.Time { return fixedNow }
	return f
}

func click(pos int) []byte {
	data, _ := json.Marshal(proto.ClientToServerMessage{Type: proto.TypeClick, Position: &pos})
	return data
}

func TestOpen_NewSession(t *testing.T) {
	f := newFixture(t)
	var saved *repository.Snapshot
	f.sessions.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, snap *repository.Snapshot) error {
		saved = snap
		return nil
	})

	f.room.Open(context.Background(), "", "medium")

	require.NotEmpty(t, f.room.ID)
	assert.Equal(t, bot.DifficultyMedium, f.room.Difficulty)
	assert.Equal(t, []bot.Difficulty{bot.DifficultyMedium}, f.built)
	require.Len(t, f.conn.written, 1)
	msg := f.conn.written[0]
	assert.Equal(t, proto.TypeSession, msg.Type)
	assert.Equal(t, f.room.ID, msg.SessionID)
	assert.Len(t, msg.Board, game.CellCount)
	assert.Equal(t, "medium", msg.Difficulty)

	require.NotNil(t, saved)
	assert.Equal(t, f.room.ID, saved.ID)
	assert.Equal(t, "player-1", saved.PlayerID)
	assert.Equal(t, game.Board{}, saved.Board)
	assert.Equal(t, fixedNow, saved.UpdatedAt)
}

func TestOpen_ResumesOwnSession(t *testing.T) {
	f := newFixture(t)
	board := game.Board{X, e, e, e, O, e, e, e, e}
	f.sessions.EXPECT().FindByID(gomock.Any(), "s-42").Return(&repository.Snapshot{
		ID: "s-42", PlayerID: "player-1", Board: board, Difficulty: "easy",
	}, nil)
	f.sessions.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	f.room.Open(context.Background(), "s-42", "")

	assert.Equal(t, "s-42", f.room.ID)
	assert.Equal(t, bot.DifficultyEasy, f.room.Difficulty)
	assert.Equal(t, board, f.room.Session().Board())
	require.Len(t, f.conn.written, 1)
	assert.Equal(t, []game.PlayerMark{X, e, e, e, O, e, e, e, e}, f.conn.written[0].Board)
}

func TestOpen_StartsFreshWhenSessionUnusable(t *testing.T) {
	tests := []struct {
		name string
		snap *repository.Snapshot
		err  error
	}{
		{name: "not found", err: repository.ErrSessionNotFound},
		{name: "redis failure", err: errors.New("connection refused")},
		{name: "other player", snap: &repository.Snapshot{ID: "s-42", PlayerID: "player-2", Board: game.Board{X}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.sessions.EXPECT().FindByID(gomock.Any(), "s-42").Return(tt.snap, tt.err)
			f.sessions.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

			f.room.Open(context.Background(), "s-42", "")

			assert.NotEqual(t, "s-42", f.room.ID)
			assert.Equal(t, bot.DifficultyKNN, f.room.Difficulty)
			assert.Equal(t, game.Board{}, f.room.Session().Board())
		})
	}
}

func TestHandleMessage_ClickPlaysBothMoves(t *testing.T) {
	f := newFixture(t)
	f.sessions.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	f.room.Open(context.Background(), "", "")

	f.selector.EXPECT().NextMove(gomock.Any(), game.Board{X, e, e, e, e, e, e, e, e}).
		Return(bot.Move{Position: 4, Strategy: bot.StrategyNeighbors}, nil)

	f.room.HandleMessage(context.Background(), click(0))

	require.Equal(t, []string{proto.TypeSession, proto.TypeCell, proto.TypeCell}, f.conn.types())
	human, computer := f.conn.written[1], f.conn.written[2]
	require.NotNil(t, human.Position)
	assert.Equal(t, 0, *human.Position)
	assert.Equal(t, X, human.Mark)
	require.NotNil(t, computer.Position)
	assert.Equal(t, 4, *computer.Position)
	assert.Equal(t, O, computer.Mark)
	assert.Equal(t, game.Board{X, e, e, e, O, e, e, e, e}, f.room.Session().Board())
}

func TestHandleMessage_WinIsRecorded(t *testing.T) {
	f := newFixture(t)
	f.sessions.EXPECT().FindByID(gomock.Any(), "s-1").Return(&repository.Snapshot{
		ID: "s-1", PlayerID: "player-1", Board: game.Board{X, X, e, O, O, e, e, e, e},
	}, nil)
	f.sessions.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	f.room.Open(context.Background(), "s-1", "knn")

	var recorded *repository.GameRecord
	f.results.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, rec *repository.GameRecord) error {
		recorded = rec
		return nil
	})
	f.sessions.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, snap *repository.Snapshot) error {
		assert.Equal(t, game.Board{}, snap.Board)
		return nil
	})

	f.room.HandleMessage(context.Background(), click(2))

	assert.Equal(t, []string{proto.TypeSession, proto.TypeCell, proto.TypeMessage, proto.TypeReset}, f.conn.types())
	assert.Equal(t, "Player X wins!", f.conn.written[2].Text)

	require.NotNil(t, recorded)
	assert.Equal(t, "s-1", recorded.SessionID)
	assert.Equal(t, "player-1", recorded.PlayerID)
	assert.Equal(t, string(game.ResultHumanWin), recorded.Result)
	assert.Equal(t, string(X), recorded.Winner)
	assert.Equal(t, 5, recorded.Moves)
	assert.Equal(t, fixedNow, recorded.FinishedAt)
}

func TestHandleMessage_RecordFailureDoesNotStopPlay(t *testing.T) {
	f := newFixture(t)
	f.sessions.EXPECT().FindByID(gomock.Any(), "s-1").Return(&repository.Snapshot{
		ID: "s-1", PlayerID: "player-1", Board: game.Board{X, X, e, O, O, e, e, e, e},
	}, nil)
	f.sessions.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	f.room.Open(context.Background(), "s-1", "")
	f.results.EXPECT().Record(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	f.room.HandleMessage(context.Background(), click(2))

	assert.Equal(t, session.AwaitingHuman, f.room.Session().State())
	assert.Equal(t, game.Board{}, f.room.Session().Board())
}

func TestHandleMessage_Rejected(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "malformed json", raw: []byte("{not json")},
		{name: "unknown type", raw: []byte(`{"type":"move","position":1}`)},
		{name: "click without position", raw: []byte(`{"type":"click"}`)},
		{name: "position out of range", raw: []byte(`{"type":"click","position":9}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.sessions.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
			f.room.Open(context.Background(), "", "")

			f.room.HandleMessage(context.Background(), tt.raw)

			assert.Equal(t, []string{proto.TypeSession, proto.TypeError}, f.conn.types())
			assert.Equal(t, game.Board{}, f.room.Session().Board())
		})
	}
}

func TestHandleMessage_OccupiedCellIgnored(t *testing.T) {
	f := newFixture(t)
	f.sessions.EXPECT().FindByID(gomock.Any(), "s-1").Return(&repository.Snapshot{
		ID: "s-1", PlayerID: "player-1", Board: game.Board{X, e, e, e, O, e, e, e, e},
	}, nil)
	f.sessions.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	f.room.Open(context.Background(), "s-1", "")

	f.room.HandleMessage(context.Background(), click(4))

	assert.Equal(t, []string{proto.TypeSession}, f.conn.types())
}

func TestHandleMessage_Reset(t *testing.T) {
	f := newFixture(t)
	f.sessions.EXPECT().FindByID(gomock.Any(), "s-1").Return(&repository.Snapshot{
		ID: "s-1", PlayerID: "player-1", Board: game.Board{X, e, e, e, O, e, e, e, e},
	}, nil)
	f.sessions.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	f.room.Open(context.Background(), "s-1", "")

	f.room.HandleMessage(context.Background(), []byte(`{"type":"reset"}`))

	assert.Equal(t, []string{proto.TypeSession, proto.TypeReset}, f.conn.types())
	assert.Equal(t, game.Board{}, f.room.Session().Board())
}

func TestReadPump_HandlesMessagesUntilClose(t *testing.T) {
	f := newFixture(t)
	f.sessions.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(3)
	f.room.Open(context.Background(), "", "")

	f.selector.EXPECT().NextMove(gomock.Any(), gomock.Any()).
		Return(bot.Move{Position: 4, Strategy: bot.StrategyNeighbors}, nil)
	f.conn.incoming = [][]byte{click(0), []byte(`{"type":"reset"}`)}

	f.room.ReadPump(context.Background())

	assert.True(t, f.conn.closed)
	assert.Equal(t, []string{proto.TypeSession, proto.TypeCell, proto.TypeCell, proto.TypeReset}, f.conn.types())
}
