package client

import (
	"errors"
	"fmt"

	"github.com/zucenko/mazerace/model"
)

var (
	ErrNotReady        = errors.New("not ready: identity and snapshot not received")
	ErrGameOver        = errors.New("game over")
	ErrMovePending     = errors.New("previous move not confirmed yet")
	ErrIdentityChanged = errors.New("snapshot reassigns the local color")
	ErrNoPosition      = errors.New("snapshot lacks a player position")
	ErrQueueFull       = errors.New("outbound queue full")
	ErrClosed          = errors.New("connection closed")
)

type ProtocolError = model.ProtocolError

type IllegalMoveError = model.IllegalMoveError

// TransportError ends the session. Nothing reconnects.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError is an error message sent by the server.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "server: " + e.Message
}
