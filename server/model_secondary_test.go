package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/mazerace/model"
)

func TestSeatStatusHTTP(t *testing.T) {
	assert.Equal(t, http.StatusSwitchingProtocols, SeatGranted.HTTPStatus())
	assert.Equal(t, http.StatusServiceUnavailable, SeatNoMaze.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, SeatStatus(9).HTTPStatus())
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "waiting", GS_WAIT.String())
	assert.Equal(t, "won", GS_OVER.String())
	assert.Equal(t, "game-state(7)", GameSessionState(7).String())
	assert.Equal(t, "left", PS_ERR.String())
	assert.Equal(t, "player-state(0)", PlayerSessionState(0).String())
}

func TestNoMazeRefusesSeat(t *testing.T) {
	gameServer, err := NewGameServer(Settings{Seed: 1})
	require.NoError(t, err)
	gameServer.MazeFactory = func() (*model.Grid, error) { return nil, errors.New("generator broke") }
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go gameServer.Loop(ctx)
	srv := httptest.NewServer(gameServer.HandleHttpCall())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Empty(t, gameServer.GameSessions)
}
