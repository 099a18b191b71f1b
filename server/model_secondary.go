package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/zucenko/mazerace/model"
)

// SeatStatus is the lobby's answer to a player asking to join a race.
type SeatStatus int

const (
	SeatGranted SeatStatus = iota
	// SeatNoMaze means no maze could be built for a new race.
	SeatNoMaze
)

// HTTPStatus is what the joining request is answered with.
func (st SeatStatus) HTTPStatus() int {
	switch st {
	case SeatGranted:
		return http.StatusSwitchingProtocols
	case SeatNoMaze:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (gss GameSessionState) String() string {
	switch gss {
	case GS_NEW:
		return "new"
	case GS_WAIT:
		return "waiting"
	case GS_PLAY:
		return "racing"
	case GS_ERR:
		return "aborted"
	case GS_OVER:
		return "won"
	default:
		return fmt.Sprintf("game-state(%d)", int(gss))
	}
}

func (ps PlayerSessionState) String() string {
	switch ps {
	case PS_NEW:
		return "seated"
	case PS_PLAY:
		return "racing"
	case PS_OVER:
		return "finished"
	case PS_ERR:
		return "left"
	default:
		return fmt.Sprintf("player-state(%d)", int(ps))
	}
}

// Seat names the session a player is going to join.
type Seat struct {
	Status  SeatStatus
	Session *GameSession
}

type SeatRequest struct {
	Reply chan Seat
}

// Join hands an upgraded connection to its session. GameOver is closed
// once the session has no more use for the connection.
type Join struct {
	Conn     *websocket.Conn
	GameOver chan struct{}
}

type PlayerEvent struct {
	Color   model.Color
	Request model.MoveRequest
	// Problem is set when the frame could not be decoded.
	Problem string
}
