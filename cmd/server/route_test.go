package main

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/mazerace/config"
	"github.com/zucenko/mazerace/server"
)

func TestRoutes(t *testing.T) {
	gameServer, err := server.NewGameServer(server.Settings{Size: 5, Seed: 1})
	require.NoError(t, err)
	s := Server{GameServer: gameServer}
	s.routes()

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://localhost:8080"+URI_QR, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nothing-here", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommandFlags(t *testing.T) {
	cfg := &config.Config{}
	cmd := newCmd(cfg)
	require.NoError(t, cmd.ParseFlags([]string{"-p", "9000", "-n", "31", "--enforce-turns=false"}))
	cmd.PreRun(cmd, nil)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 31, cfg.Size)
	assert.False(t, cfg.EnforceTurns)
	assert.Equal(t, "0.0.0.0", cfg.Bind)
	assert.NoError(t, cfg.Validate())
}

func TestServeFailsOnBusyPort(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()
	port := busy.Addr().(*net.TCPAddr).Port

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, &config.Config{Bind: "127.0.0.1", Port: port, Size: 5, Seed: 1})
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.NoError(t, ctx.Err(), "returned before the context ended")
	case <-time.After(2 * time.Second):
		t.Fatalf("serve still running after listening on busy port %d failed", port)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	free, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := free.Addr().(*net.TCPAddr).Port
	require.NoError(t, free.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, &config.Config{Bind: "127.0.0.1", Port: port, Size: 5, Seed: 1})
	}()
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve ignored cancel")
	}
}
