package server

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/mazerace/model"
)

// Settings configure every game a GameServer starts.
type Settings struct {
	Size         int
	EnforceTurns bool
	MazeFile     string
	Seed         int64
}

type GameServer struct {
	Settings     Settings
	GameSessions []*GameSession
	SeatRequests chan SeatRequest
	Upgrader     *websocket.Upgrader
	MazeFactory  func() (*model.Grid, error)

	rnd   *rand.Rand
	seats map[*GameSession]int
}

type GameSessionState int

const (
	GS_NEW GameSessionState = iota
	GS_WAIT
	GS_PLAY
	GS_ERR
	GS_OVER
)

type GameSession struct {
	Id        uuid.UUID
	State     GameSessionState
	Grid      *model.Grid
	Players   *model.Players
	Turn      model.Turn
	Validator model.Validator
	// Goals maps each color to the cell that wins the race for it.
	Goals map[model.Color]model.Position

	PlayerSessions []*PlayerSession
	Errors         chan model.Color
	Events         chan PlayerEvent
	Joins          chan Join

	done chan struct{}
	log  *log.Entry
}

type PlayerSessionState int

const (
	PS_NEW PlayerSessionState = iota + 1
	PS_PLAY
	PS_OVER
	PS_ERR
)

type PlayerSession struct {
	State       PlayerSessionState
	Color       model.Color
	GameSession *GameSession
	Conn        *websocket.Conn
	GameOver    chan struct{}

	MessagesToSend chan interface{}

	log *log.Entry
}
