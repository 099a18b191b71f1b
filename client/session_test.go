package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/mazerace/model"
)

// refereeServer plays the server side of one short game: it assigns Red,
// echoes the first move and declares the mover the winner.
func refereeServer(t *testing.T, finish bool) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		if err := conn.WriteMessage(websocket.TextMessage, []byte(redStarts)); err != nil {
			return
		}
		if !finish {
			_, _, _ = conn.ReadMessage()
			return
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		req, err := model.DecodeMoveRequest(data)
		if err != nil {
			t.Logf("decode: %v", err)
			return
		}
		_ = conn.WriteJSON(model.MoveFrame{Type: model.TypeMove, Move: req.Move})
		_ = conn.WriteJSON(model.WinFrame{Type: model.TypeGameWin, Winner: req.Move.Color.String()})
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_, _, _ = conn.ReadMessage()
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestSessionPlaysOneGame(t *testing.T) {
	srv := refereeServer(t, true)
	defer srv.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := Connect(ctx, wsURL(srv), Options{Size: 4, EnforceTurns: true})
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- s.Loop(ctx) }()

	require.Eventually(t, func() bool { return s.View().State == Ready }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, s.Move(model.Right))

	var loopErr error
	select {
	case loopErr = <-done:
	case <-ctx.Done():
		t.Fatal("session did not end")
	}
	assert.ErrorIs(t, loopErr, ErrClosed)
	var te *TransportError
	assert.ErrorAs(t, loopErr, &te)

	v := s.View()
	assert.Equal(t, Ended, v.State)
	assert.Equal(t, "Red", v.Winner)
	assert.Equal(t, model.Position{X: 1, Y: 0}, v.Red.Pos)
	assert.Equal(t, model.RedTrail, v.Grid.Rows()[0][0])
}

func TestSessionStopsOnCancel(t *testing.T) {
	srv := refereeServer(t, false)
	defer srv.Close()
	ctx, cancel := context.WithCancel(context.Background())

	s, err := Connect(ctx, wsURL(srv), Options{EnforceTurns: true})
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- s.Loop(ctx) }()

	require.Eventually(t, func() bool { return s.View().State == Ready }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, model.Red, s.View().Local)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session ignored cancel")
	}
}

func TestConnectFailure(t *testing.T) {
	srv := refereeServer(t, false)
	url := wsURL(srv)
	srv.Close()

	_, err := Connect(context.Background(), url, Options{})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "dial", te.Op)
}

func TestQueuesNeverBlock(t *testing.T) {
	s := NewSession(Options{}, nil)
	for i := 0; i < cap(s.moves); i++ {
		assert.True(t, s.Move(model.Up))
	}
	assert.False(t, s.Move(model.Up))

	for i := 0; i < cap(s.outbound); i++ {
		require.NoError(t, s.send(model.NewMoveRequest(model.Red, model.Position{})))
	}
	err := s.send(model.NewMoveRequest(model.Red, model.Position{}))
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, Unassigned, s.View().State)
}

func TestNoticeClearsAfterNextEvent(t *testing.T) {
	s := NewSession(Options{}, nil)
	s.publish(errors.New("move refused"))
	assert.Equal(t, "move refused", s.View().Notice)

	s.publish(nil)
	assert.Empty(t, s.View().Notice)
}
